package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"remold-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
)

const secretPrueba = "secreto-de-prueba"

func firmarToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func tokenValido(t *testing.T, rol string) string {
	return firmarToken(t, secretPrueba, jwt.MapClaims{
		"userID":  float64(7),
		"usuario": "operador1",
		"rol":     rol,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
}

func routerProtegido(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	cadena := append([]gin.HandlerFunc{AuthMiddleware(secretPrueba)}, handlers...)
	cadena = append(cadena, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"userID":  c.GetInt("userID"),
			"usuario": c.GetString("usuario"),
			"rol":     c.GetString("rol"),
		})
	})
	router.GET("/protegido", cadena...)
	return router
}

func hacerPeticion(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protegido", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareSinHeader(t *testing.T) {
	w := hacerPeticion(routerProtegido(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareFormatoInvalido(t *testing.T) {
	w := hacerPeticion(routerProtegido(), "Basic abc123")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareTokenExpirado(t *testing.T) {
	token := firmarToken(t, secretPrueba, jwt.MapClaims{
		"userID": float64(7),
		"rol":    models.RolOperador,
		"exp":    time.Now().Add(-time.Hour).Unix(),
	})

	w := hacerPeticion(routerProtegido(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareFirmaIncorrecta(t *testing.T) {
	token := firmarToken(t, "otro-secreto", jwt.MapClaims{
		"userID": float64(7),
		"rol":    models.RolOperador,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})

	w := hacerPeticion(routerProtegido(), "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareTokenValidoPropagaContexto(t *testing.T) {
	w := hacerPeticion(routerProtegido(), "Bearer "+tokenValido(t, models.RolOperador))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userID":7`)
	assert.Contains(t, w.Body.String(), `"usuario":"operador1"`)
	assert.Contains(t, w.Body.String(), `"rol":"operador"`)
}

func TestRequireRolJerarquia(t *testing.T) {
	tests := []struct {
		name       string
		rolUsuario string
		rolMinimo  string
		esperado   int
	}{
		{"operador no accede a supervisor", models.RolOperador, models.RolSupervisor, http.StatusForbidden},
		{"operador no accede a admin", models.RolOperador, models.RolAdmin, http.StatusForbidden},
		{"supervisor accede a supervisor", models.RolSupervisor, models.RolSupervisor, http.StatusOK},
		{"supervisor no accede a admin", models.RolSupervisor, models.RolAdmin, http.StatusForbidden},
		{"admin accede a todo", models.RolAdmin, models.RolOperador, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := routerProtegido(RequireRol(tt.rolMinimo))
			w := hacerPeticion(router, "Bearer "+tokenValido(t, tt.rolUsuario))
			assert.Equal(t, tt.esperado, w.Code)
		})
	}
}

func TestRequireRolDesconocidoRechazado(t *testing.T) {
	router := routerProtegido(RequireRol(models.RolOperador))
	w := hacerPeticion(router, "Bearer "+tokenValido(t, "invitado"))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
