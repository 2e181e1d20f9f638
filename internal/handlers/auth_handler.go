package handlers

import (
	"errors"
	"net/http"

	"remold-service/internal/models"
	"remold-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AuthHandler maneja las peticiones de autenticación
type AuthHandler struct {
	authService services.AuthService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAuthHandler crea una nueva instancia del handler
func NewAuthHandler(authService services.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
		logger:      logger,
	}
}

// Login maneja POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "login"))

	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Datos de entrada inválidos",
			"error":   err.Error(),
		})
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrCredenciales) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "❌ Usuario o contraseña incorrectos",
			})
			return
		}
		logger.Error("Error en login", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error procesando el login",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Login exitoso",
		"data":    response,
	})
}

// Registrar maneja POST /auth/registrar (solo admin)
func (h *AuthHandler) Registrar(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "registrar_usuario"))

	var req models.RegistrarUsuarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Datos de entrada inválidos",
			"error":   err.Error(),
		})
		return
	}

	usuario, err := h.authService.Registrar(c.Request.Context(), &req)
	if err != nil {
		logger.Error("Error registrando usuario", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error registrando usuario",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Usuario registrado correctamente",
		"data":    usuario,
	})
}

// Me maneja GET /auth/me: el usuario del token actual
func (h *AuthHandler) Me(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "me"))

	userID := c.GetInt("userID")
	usuario, err := h.authService.GetUsuario(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, services.ErrNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Usuario no encontrado",
			})
			return
		}
		logger.Error("Error obteniendo usuario", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo usuario",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Usuario obtenido correctamente",
		"data":    usuario,
	})
}
