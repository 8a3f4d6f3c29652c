package handlers

import (
	"errors"
	"net/http"

	"github.com/djenkins26/products-app/internal/middleware"
	"github.com/djenkins26/products-app/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// respondError writes the HTTP form of err. Unrecognized errors are logged
// and reported as 500 without leaking the cause.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Validation failed",
			"fields": validation.Fields,
		})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
	case errors.Is(err, service.ErrNotOwner):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Only the owner can modify this product"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, service.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
	default:
		log.Error().
			Err(err).
			Str("request_id", middleware.RequestIDFromContext(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func respondBadBody(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}
