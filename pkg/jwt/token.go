package jwt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token errors
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrExpiredToken   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")
)

// TokenType distinguishes access from refresh tokens signed by the same service
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// Config defines the signing secrets and lifetimes
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

// Claims defines the JWT payload. Refresh tokens carry the session id and its
// current token id in RegisteredClaims.ID; access tokens leave SessionID empty.
type Claims struct {
	UserID    string    `json:"uid"`
	Role      string    `json:"role,omitempty"`
	SessionID string    `json:"sid,omitempty"`
	TokenType TokenType `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService signs and validates access and refresh tokens
type TokenService struct {
	config Config
	now    func() time.Time
}

// NewTokenService creates a new TokenService
func NewTokenService(config Config) *TokenService {
	return &TokenService{config: config, now: time.Now}
}

// AccessTTL returns the lifetime of access tokens
func (s *TokenService) AccessTTL() time.Duration { return s.config.AccessTTL }

// RefreshTTL returns the lifetime of refresh tokens
func (s *TokenService) RefreshTTL() time.Duration { return s.config.RefreshTTL }

// IssueAccessToken signs a short-lived access token for a user
func (s *TokenService) IssueAccessToken(userID, role string) (string, time.Time, error) {
	expires := s.now().Add(s.config.AccessTTL)
	claims := &Claims{
		UserID:           userID,
		Role:             role,
		TokenType:        AccessToken,
		RegisteredClaims: s.registered(userID, uuid.NewString(), expires),
	}
	signed, err := s.sign(claims, s.config.AccessSecret)
	return signed, expires, err
}

// IssueRefreshToken signs a refresh token bound to a session and its current token id
func (s *TokenService) IssueRefreshToken(userID, sessionID, tokenID string) (string, time.Time, error) {
	expires := s.now().Add(s.config.RefreshTTL)
	claims := &Claims{
		UserID:           userID,
		SessionID:        sessionID,
		TokenType:        RefreshToken,
		RegisteredClaims: s.registered(userID, tokenID, expires),
	}
	signed, err := s.sign(claims, s.config.RefreshSecret)
	return signed, expires, err
}

// ParseAccessToken validates an access token
func (s *TokenService) ParseAccessToken(token string) (*Claims, error) {
	return s.parse(token, s.config.AccessSecret, AccessToken)
}

// ParseRefreshToken validates a refresh token
func (s *TokenService) ParseRefreshToken(token string) (*Claims, error) {
	claims, err := s.parse(token, s.config.RefreshSecret, RefreshToken)
	if err != nil {
		return nil, err
	}
	if claims.SessionID == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) registered(subject, id string, expires time.Time) jwt.RegisteredClaims {
	now := s.now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(expires),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    s.config.Issuer,
		Subject:   subject,
		ID:        id,
	}
}

func (s *TokenService) sign(claims *Claims, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", claims.TokenType, err)
	}
	return signed, nil
}

func (s *TokenService) parse(tokenString, secret string, want TokenType) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	opts := []jwt.ParserOption{jwt.WithTimeFunc(s.now)}
	if s.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.config.Issuer))
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != want {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

// ExtractBearerToken strips the "Bearer " scheme from an Authorization header
func ExtractBearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
