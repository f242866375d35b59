package services

import (
	"context"
	"net/http"
	"time"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/logger"
	"github.com/ArowuTest/orgfees-backend/internal/repositories"
	"github.com/ArowuTest/orgfees-backend/pkg/jwt"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// SessionMeta describes the client a session is opened for
type SessionMeta struct {
	UserAgent string
	IP        string
}

// AuthResult is a freshly issued token pair
type AuthResult struct {
	User           *models.User
	Permissions    []models.Permission
	AccessToken    string
	AccessExpires  time.Time
	RefreshToken   string
	RefreshExpires time.Time
}

// Profile is the response of GET /auth/me
type Profile struct {
	User        *models.User        `json:"user"`
	Permissions []models.Permission `json:"permissions"`
}

// AuthService handles login, token rotation and request authentication
type AuthService struct {
	userRepo    repositories.UserRepository
	roleRepo    repositories.RoleRepository
	sessionRepo repositories.SessionRepository
	tokens      *jwt.TokenService
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userRepo repositories.UserRepository,
	roleRepo repositories.RoleRepository,
	sessionRepo repositories.SessionRepository,
	tokens *jwt.TokenService,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		roleRepo:    roleRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
	}
}

// Login checks the credentials and opens a new session
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest, meta SessionMeta) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if repositories.IsNotFound(err) {
			// Same answer as a wrong password
			return nil, apperrors.Wrap(apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password")
		}
		return nil, apperrors.Internal(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvalidCredentials, http.StatusUnauthorized, "invalid email or password")
	}
	if !user.Active {
		return nil, apperrors.Wrap(apperrors.ErrAccountDisabled, http.StatusForbidden, "account is disabled")
	}

	session := &models.Session{
		User:      user.ID,
		TokenID:   uuid.NewString(),
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
		Valid:     true,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, apperrors.Internal(err)
	}

	user.LastLogin = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		logger.Warn().Err(err).Str("user", user.ID.Hex()).Msg("Failed to record last login")
	}

	logger.Info().Str("user", user.Email).Str("session", session.ID.Hex()).Msg("User logged in")
	return s.issue(ctx, user, session)
}

// Refresh rotates the session token id and issues a new token pair. Presenting a
// refresh token whose id was already rotated invalidates the whole session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, meta SessionMeta) (*AuthResult, error) {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, apperrors.Wrap(err, http.StatusUnauthorized, "invalid refresh token")
	}
	sessionID, err := primitive.ObjectIDFromHex(claims.SessionID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid refresh token")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.Wrap(apperrors.ErrSessionExpired, http.StatusUnauthorized, "session expired")
		}
		return nil, apperrors.Internal(err)
	}
	if !session.Valid || time.Now().After(session.ExpiresAt) || session.User.Hex() != claims.UserID {
		return nil, apperrors.Wrap(apperrors.ErrSessionExpired, http.StatusUnauthorized, "session expired")
	}

	if claims.ID != session.TokenID {
		logger.Warn().Str("session", session.ID.Hex()).Str("ip", meta.IP).Msg("Refresh token reuse detected, invalidating session")
		session.Valid = false
		if err := s.sessionRepo.Update(ctx, session); err != nil {
			return nil, apperrors.Internal(err)
		}
		return nil, apperrors.Wrap(apperrors.ErrSessionExpired, http.StatusUnauthorized, "session expired")
	}

	user, err := s.userRepo.FindByID(ctx, session.User)
	if err != nil || !user.Active {
		session.Valid = false
		_ = s.sessionRepo.Update(ctx, session)
		return nil, apperrors.Unauthorized("session expired")
	}

	session.TokenID = uuid.NewString()
	session.UserAgent = meta.UserAgent
	session.IP = meta.IP
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return nil, apperrors.Internal(err)
	}
	return s.issue(ctx, user, session)
}

// Logout invalidates the session of a refresh token. Unknown or malformed tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil
	}
	sessionID, err := primitive.ObjectIDFromHex(claims.SessionID)
	if err != nil {
		return nil
	}
	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil
		}
		return apperrors.Internal(err)
	}
	session.Valid = false
	if err := s.sessionRepo.Update(ctx, session); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

// Authenticate resolves an access token into the acting user and its effective permissions
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.Actor, error) {
	claims, err := s.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return nil, apperrors.Wrap(err, http.StatusUnauthorized, "invalid or expired access token")
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperrors.Unauthorized("invalid or expired access token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if repositories.IsNotFound(err) {
			return nil, apperrors.Unauthorized("user no longer exists")
		}
		return nil, apperrors.Internal(err)
	}
	if !user.Active {
		return nil, apperrors.Wrap(apperrors.ErrAccountDisabled, http.StatusUnauthorized, "account is disabled")
	}

	roles, err := s.roleRepo.FindByIDs(ctx, user.Roles)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return models.NewActor(user, roles), nil
}

// Me returns the acting user's account with its effective permissions
func (s *AuthService) Me(ctx context.Context, actor *models.Actor) (*Profile, error) {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, repoError(err, "user")
	}
	return &Profile{User: user, Permissions: actor.PermissionList()}, nil
}

// ChangePassword replaces the actor's password and signs out every session
func (s *AuthService) ChangePassword(ctx context.Context, actor *models.Actor, req *models.ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return repoError(err, "user")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.OldPassword)) != nil {
		return apperrors.BadRequest("current password is incorrect")
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.Password = hash
	if err := s.userRepo.Update(ctx, user); err != nil {
		return apperrors.Internal(err)
	}
	if err := s.sessionRepo.InvalidateByUser(ctx, user.ID); err != nil {
		return apperrors.Internal(err)
	}
	logger.Info().Str("user", user.Email).Msg("Password changed")
	return nil
}

func (s *AuthService) issue(ctx context.Context, user *models.User, session *models.Session) (*AuthResult, error) {
	access, accessExp, err := s.tokens.IssueAccessToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	refresh, refreshExp, err := s.tokens.IssueRefreshToken(user.ID.Hex(), session.ID.Hex(), session.TokenID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	roles, err := s.roleRepo.FindByIDs(ctx, user.Roles)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return &AuthResult{
		User:           user,
		Permissions:    models.NewActor(user, roles).PermissionList(),
		AccessToken:    access,
		AccessExpires:  accessExp,
		RefreshToken:   refresh,
		RefreshExpires: refreshExp,
	}, nil
}
