package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"remold-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Jerarquía de roles: un rol autoriza todo lo que autorizan los inferiores
var nivelRol = map[string]int{
	models.RolOperador:   1,
	models.RolSupervisor: 2,
	models.RolAdmin:      3,
}

// AuthMiddleware valida el token Bearer y deja userID y rol en el contexto
func AuthMiddleware(secret string) gin.HandlerFunc {
	secretBytes := []byte(secret)

	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "❌ Token de autenticación requerido",
			})
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "❌ Formato de autorización inválido",
			})
			return
		}

		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
			}
			return secretBytes, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "❌ Token inválido o expirado",
			})
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "❌ Token inválido o expirado",
			})
			return
		}

		userID, ok := claims["userID"].(float64)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "❌ Token inválido o expirado",
			})
			return
		}

		rol, _ := claims["rol"].(string)
		usuario, _ := claims["usuario"].(string)

		c.Set("userID", int(userID))
		c.Set("usuario", usuario)
		c.Set("rol", rol)
		c.Next()
	}
}

// RequireRol exige el rol mínimo indicado; corre después de AuthMiddleware
func RequireRol(rolMinimo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rol := c.GetString("rol")

		if nivelRol[rol] < nivelRol[rolMinimo] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "❌ No tienes permisos para esta operación",
			})
			return
		}

		c.Next()
	}
}
