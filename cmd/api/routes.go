package main

import (
	"time"

	"petshop-api/internal/auth"
	"petshop-api/internal/httpapi"

	"github.com/gin-gonic/gin"
)

type routeDeps struct {
	Handlers httpapi.Handlers
	Health   httpapi.Health
	Verifier auth.TokenVerifier
	// Clock is used by the token middleware; nil means time.Now.
	Clock func() time.Time
}

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, d routeDeps) {
	// public
	r.GET("/healthz", d.Health.Live)
	r.GET("/readyz", d.Health.Ready)

	h := d.Handlers
	admin := r.Group("/api/v1/admin")
	{
		admin.POST("/register", h.Register)
		admin.POST("/login", h.Login)
	}

	// protected: every route below requires a valid bearer token
	protected := admin.Group("")
	protected.Use(auth.RequireAccessToken(d.Verifier, d.Clock))
	{
		protected.POST("/reset-password-token", h.ResetPassword)
		protected.POST("/logout", h.Logout)
		protected.GET("/me", h.Me)
	}
}
