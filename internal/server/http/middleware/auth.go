package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/fueldelivery/internal/domain/errors"
	"github.com/polkiloo/fueldelivery/internal/domain/model"
	pkgAuth "github.com/polkiloo/fueldelivery/internal/pkg/auth"
)

const (
	// ActorContextKey is a gin context key for the authenticated model.Actor.
	ActorContextKey = "actor"
	authCookieName  = "fueldelivery_token"
)

// ActorResolver turns a bearer token into the calling actor.
type ActorResolver interface {
	ParseToken(token string) (int64, error)
	Actor(ctx context.Context, userID int64) (model.Actor, error)
}

// AuthRequired ensures user is authenticated and active before accessing handler.
func AuthRequired(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}

		userID, err := resolver.ParseToken(token)
		if err != nil {
			if errors.Is(err, pkgAuth.ErrInvalidToken) {
				abort(c, http.StatusUnauthorized, "invalid token")
				return
			}
			_ = c.Error(err)
			abort(c, http.StatusInternalServerError, "internal server error")
			return
		}

		actor, err := resolver.Actor(c.Request.Context(), userID)
		if err != nil {
			switch {
			case errors.Is(err, pkgAuth.ErrInvalidToken):
				abort(c, http.StatusUnauthorized, "invalid token")
			case errors.Is(err, domainErrors.ErrInactiveAccount):
				abort(c, http.StatusForbidden, "account is inactive")
			default:
				_ = c.Error(err)
				abort(c, http.StatusInternalServerError, "internal server error")
			}
			return
		}

		c.Set(ActorContextKey, actor)
		c.Next()
	}
}

// CurrentActor returns the actor stored by AuthRequired.
func CurrentActor(c *gin.Context) (model.Actor, bool) {
	val, ok := c.Get(ActorContextKey)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := val.(model.Actor)
	return actor, ok
}

// RequireRoles rejects actors whose role is not listed.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	allowed := make(map[model.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if _, ok := allowed[actor.Role]; !ok {
			abort(c, http.StatusForbidden, "insufficient permissions")
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes auth token cookie to response.
func SetAuthCookie(c *gin.Context, token string) {
	c.SetCookie(authCookieName, token, 0, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": message})
}
