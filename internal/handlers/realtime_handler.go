package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"remold-service/internal/realtime"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RealtimeHandler actualiza conexiones a WebSocket y las registra en el hub.
// El navegador no puede mandar el header Authorization en el handshake, así
// que el token viaja como query param y se valida antes del upgrade.
type RealtimeHandler struct {
	hub      *realtime.Hub
	secret   []byte
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewRealtimeHandler crea una nueva instancia del handler
func NewRealtimeHandler(hub *realtime.Hub, jwtSecret string, allowedOrigins []string, logger *zap.Logger) *RealtimeHandler {
	permitidos := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		permitidos[origin] = true
	}

	return &RealtimeHandler{
		hub:    hub,
		secret: []byte(jwtSecret),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Clientes sin Origin (no navegadores) ya pasaron el token
				origin := r.Header.Get("Origin")
				return origin == "" || permitidos[origin]
			},
		},
		logger: logger,
	}
}

func (h *RealtimeHandler) tokenValido(tokenString string) bool {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("método de firma inesperado: %v", t.Header["alg"])
		}
		return h.secret, nil
	})
	return err == nil && token.Valid
}

// Eventos maneja GET /eventos/ws: suscripción a eventos de stock y producción
func (h *RealtimeHandler) Eventos(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "websocket_eventos"))

	tokenString := c.Query("token")
	if tokenString == "" {
		tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "❌ Token de autenticación requerido",
		})
		return
	}
	if !h.tokenValido(tokenString) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "❌ Token inválido o expirado",
		})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Error actualizando a WebSocket", zap.Error(err))
		return
	}

	logger.Info("Conexión WebSocket establecida",
		zap.String("client_ip", c.ClientIP()))

	h.hub.Registrar(conn)
}

// Estado maneja GET /eventos/estado: clientes conectados a esta instancia
func (h *RealtimeHandler) Estado(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Estado del canal de eventos",
		"data": gin.H{
			"clientes_conectados": h.hub.Clientes(),
		},
	})
}
