package middleware

import (
	"context"
	"net/http"

	"github.com/ArowuTest/orgfees-backend/internal/models"
	"github.com/ArowuTest/orgfees-backend/internal/pkg/apperrors"
	"github.com/ArowuTest/orgfees-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
	actorKey           = "actor"
)

// Authenticator resolves an access token into the acting user
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*models.Actor, error)
}

// AuthMiddleware authenticates the request from the access token cookie or an Authorization: Bearer header
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(AccessTokenCookie)
		if token == "" {
			token = jwt.ExtractBearerToken(c.GetHeader("Authorization"))
		}
		if token == "" {
			abort(c, apperrors.Unauthorized("authentication required"))
			return
		}

		actor, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			abort(c, err)
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequirePermission rejects actors lacking any of perms
func RequirePermission(perms ...models.Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor == nil {
			abort(c, apperrors.Unauthorized("authentication required"))
			return
		}
		if !actor.Can(perms...) {
			abort(c, apperrors.Wrap(apperrors.ErrPermissionDenied, http.StatusForbidden, "you do not have permission to perform this action"))
			return
		}
		c.Next()
	}
}

// GetActor returns the authenticated user of the request, or nil
func GetActor(c *gin.Context) *models.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*models.Actor)
	return actor
}

func abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
