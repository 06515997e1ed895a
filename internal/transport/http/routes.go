package http

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the API surface on the router.
func RegisterRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.Health)

	auth := r.Group("/api/v1/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.GET("/me", h.RequireSession(), h.Me)

	wallet := r.Group("/api/v1/wallet")
	wallet.Use(h.RequireSession())
	wallet.GET("", h.Wallet)
}
