// Package api monta o roteador HTTP do portal.
package api

import (
	"net/http"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/api/handler"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/api/middleware"
	"github.com/AgilizeTecnologia/alo-consumidor/internal/auth"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter registra todas as rotas do portal.
func NewRouter(h *handler.Handler, authSvc *auth.Service) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authGroup := r.Group("/api/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/verify", h.Verify)
		authGroup.POST("/login", h.Login)
		authGroup.POST("/resend-code", h.ResendCode)
	}

	apiGroup := r.Group("/api")
	{
		apiGroup.POST("/complaints", middleware.OptionalJWT(authSvc), h.CreateComplaint)
		apiGroup.GET("/complaints", middleware.JWTAuth(authSvc), h.ListComplaints)
		apiGroup.GET("/complaints/:protocol", h.GetComplaintByProtocol)
		apiGroup.POST("/ai/analyze-complaint", h.AnalyzeComplaint)
		apiGroup.POST("/surveys", h.CreateSurvey)
	}

	r.GET("/ws", h.ServeWebSocket)

	return r
}
