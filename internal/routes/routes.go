package routes

import (
	"github.com/djenkins26/products-app/internal/handlers"
	"github.com/djenkins26/products-app/internal/middleware"
	"github.com/djenkins26/products-app/internal/monitoring"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Dependencies are the handlers and collaborators the router is built from.
type Dependencies struct {
	Products      *handlers.ProductHandler
	Auth          *handlers.AuthHandler
	Status        *handlers.StatusHandler
	Authenticator middleware.TokenAuthenticator
	Metrics       *monitoring.Metrics
	Gatherer      prometheus.Gatherer
	Log           zerolog.Logger
}

// Setup registers every route. Reads are public; anything that changes
// state requires a resolved bearer token.
func Setup(router *gin.Engine, deps Dependencies) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware(deps.Log))
	router.Use(deps.Metrics.Middleware())
	router.Use(middleware.Authenticate(deps.Authenticator, deps.Log))

	router.GET("/health", deps.Status.Health)
	router.GET("/api/status", deps.Status.Status)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	router.POST("/sign-up", deps.Auth.SignUp)
	router.POST("/sign-in", deps.Auth.SignIn)

	router.GET("/products", deps.Products.List)
	router.GET("/products/:id", deps.Products.Get)

	protected := router.Group("/")
	protected.Use(middleware.RequireAuth())
	{
		protected.POST("/products", deps.Products.Create)
		protected.PATCH("/products/:id", deps.Products.Update)
		protected.DELETE("/products/:id", deps.Products.Delete)

		protected.DELETE("/sign-out", deps.Auth.SignOut)
		protected.PATCH("/change-password", deps.Auth.ChangePassword)
	}
}
