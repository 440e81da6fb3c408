// Package middleware reúne os middlewares HTTP do portal.
package middleware

import (
	"net/http"
	"strings"

	"github.com/AgilizeTecnologia/alo-consumidor/internal/auth"

	"github.com/gin-gonic/gin"
)

// JWTAuth exige um token válido e coloca user_id e cpf no contexto.
func JWTAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := parse(svc, c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token inválido ou expirado"})
			return
		}
		c.Set("user_id", claims.UserID)
		c.Set("cpf", claims.CPF)
		c.Next()
	}
}

// OptionalJWT preenche o contexto quando há token válido, sem nunca barrar.
func OptionalJWT(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := parse(svc, c); ok {
			c.Set("user_id", claims.UserID)
			c.Set("cpf", claims.CPF)
		}
		c.Next()
	}
}

func parse(svc *auth.Service, c *gin.Context) (*auth.Claims, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil, false
	}
	claims, err := svc.ParseToken(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		return nil, false
	}
	return claims, true
}
