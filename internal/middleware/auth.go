package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/djenkins26/products-app/internal/models"
	"github.com/djenkins26/products-app/internal/service"
	"github.com/djenkins26/products-app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	userContextKey        = "user"
	authFailureContextKey = "auth_failure"
)

// TokenAuthenticator resolves a bearer token to a user.
type TokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// CurrentUser returns the authenticated user or nil.
func CurrentUser(c *gin.Context) *models.User {
	value, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

// SetCurrentUser attaches user to the request context.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(userContextKey, user)
}

// Authenticate resolves the Authorization header, if any, and attaches the
// user to the context. It never rejects: requests without a usable token
// continue unauthenticated and RequireAuth decides whether that is fatal.
// Only a failing credential store aborts the request.
func Authenticate(auth TokenAuthenticator, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		token := utils.ParseAuthorization(authHeader)
		if token == "" {
			c.Set(authFailureContextKey, "Authorization header must be in the format '<scheme> <token>'")
			c.Next()
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, service.ErrUnauthenticated) {
				c.Set(authFailureContextKey, "Invalid token")
				c.Next()
				return
			}
			log.Error().Err(err).Str("request_id", RequestIDFromContext(c)).Msg("token lookup failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Error authenticating request"})
			return
		}

		SetCurrentUser(c, user)
		c.Next()
	}
}

// RequireAuth rejects requests that Authenticate could not attach a user to.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) != nil {
			c.Next()
			return
		}

		message := "Authorization header is required"
		if failure := c.GetString(authFailureContextKey); failure != "" {
			message = failure
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
	}
}
