package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"remold-service/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const secretEventos = "secreto-de-prueba"

func routerEventos() *gin.Engine {
	gin.SetMode(gin.TestMode)
	hub := realtime.NewHub(nil, zap.NewNop())
	handler := NewRealtimeHandler(hub, secretEventos, []string{"http://localhost:5173"}, zap.NewNop())

	router := gin.New()
	router.GET("/eventos/ws", handler.Eventos)
	return router
}

func tokenEventos(t *testing.T, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": float64(1),
		"rol":    "operador",
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	assert.NoError(t, err)
	return token
}

func TestEventosSinTokenRechazado(t *testing.T) {
	router := routerEventos()

	req := httptest.NewRequest(http.MethodGet, "/eventos/ws", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEventosTokenConFirmaAjenaRechazado(t *testing.T) {
	router := routerEventos()

	req := httptest.NewRequest(http.MethodGet, "/eventos/ws?token="+tokenEventos(t, "otro-secreto"), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEventosTokenValidoPasaAlUpgrade(t *testing.T) {
	router := routerEventos()

	// Sin headers de handshake el upgrade falla, pero la autenticación
	// ya pasó: no debe responder 401
	req := httptest.NewRequest(http.MethodGet, "/eventos/ws?token="+tokenEventos(t, secretEventos), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestEventosTokenPorHeaderTambienValido(t *testing.T) {
	router := routerEventos()

	req := httptest.NewRequest(http.MethodGet, "/eventos/ws", nil)
	req.Header.Set("Authorization", "Bearer "+tokenEventos(t, secretEventos))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}
