package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"remold-service/internal/models"
	"remold-service/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// FinanzasHandler maneja las peticiones de configuración financiera y costeo
type FinanzasHandler struct {
	finanzasService services.FinanzasService
	logger          *zap.Logger
}

// NewFinanzasHandler crea una nueva instancia del handler
func NewFinanzasHandler(finanzasService services.FinanzasService, logger *zap.Logger) *FinanzasHandler {
	return &FinanzasHandler{
		finanzasService: finanzasService,
		logger:          logger,
	}
}

// GetConfiguracion maneja GET /finanzas/configuracion
func (h *FinanzasHandler) GetConfiguracion(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "get_configuracion"))

	config, err := h.finanzasService.GetConfiguracion(c.Request.Context())
	if err != nil {
		logger.Error("Error obteniendo configuración", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo configuración financiera",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Configuración obtenida correctamente",
		"data":    config,
	})
}

// ActualizarConfiguracion maneja PUT /finanzas/configuracion
func (h *FinanzasHandler) ActualizarConfiguracion(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "actualizar_configuracion"))

	var req models.ActualizarConfiguracionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}

	config, err := h.finanzasService.ActualizarConfiguracion(c.Request.Context(), &req)
	if err != nil {
		logger.Error("Error actualizando configuración", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error actualizando configuración financiera",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Configuración actualizada correctamente",
		"data":    config,
	})
}

// CostoReceta maneja GET /finanzas/costo-receta/:id
func (h *FinanzasHandler) CostoReceta(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "costo_receta"))

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ ID de receta inválido",
			"error":   "El ID debe ser un número válido",
		})
		return
	}

	costo, err := h.finanzasService.CostoReceta(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Receta no encontrada",
			})
			return
		}
		logger.Error("Error calculando costo de receta", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error calculando costo de receta",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Costo de receta calculado correctamente",
		"data":    costo,
	})
}
