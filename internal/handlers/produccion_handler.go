package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"remold-service/internal/models"
	"remold-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProduccionHandler maneja las peticiones HTTP de producción diaria
type ProduccionHandler struct {
	produccionService services.ProduccionService
	validator         *validator.Validate
	logger            *zap.Logger
}

// NewProduccionHandler crea una nueva instancia del handler
func NewProduccionHandler(produccionService services.ProduccionService, logger *zap.Logger) *ProduccionHandler {
	return &ProduccionHandler{
		produccionService: produccionService,
		validator:         validator.New(),
		logger:            logger,
	}
}

// Resumen maneja POST /produccion/resumen: previsualización sin escritura
func (h *ProduccionHandler) Resumen(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "resumen_produccion"))

	var req models.ResumenProduccionRequest
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

	resumen, err := h.produccionService.Resumen(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Receta no encontrada",
			})
			return
		}
		logger.Error("Error calculando resumen", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error calculando resumen de producción",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Resumen calculado correctamente",
		"data":    resumen,
	})
}

// Registrar maneja POST /produccion: confirma la corrida y ajusta stock
func (h *ProduccionHandler) Registrar(c *gin.Context) {
	start := time.Now()
	logger := h.logger.With(zap.String("handler", "registrar_produccion"))

	var req models.RegistrarProduccionRequest
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

	req.IDUsuario = c.GetInt("userID")

	produccion, err := h.produccionService.Registrar(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoEncontrado):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Receta no encontrada",
			})
		case errors.Is(err, services.ErrRecetaArchivada):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "❌ La receta está archivada",
			})
		case errors.Is(err, services.ErrStockInsuficiente):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"message": "❌ Stock insuficiente para registrar la producción",
				"error":   err.Error(),
			})
		case errors.Is(err, services.ErrVersionConflicto):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "❌ El stock fue modificado por otra operación, intenta de nuevo",
			})
		default:
			logger.Error("Error registrando producción", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "❌ Error registrando producción",
				"error":   err.Error(),
			})
		}
		return
	}

	logger.Info("Producción registrada",
		zap.Int("id_produccion", produccion.ID),
		zap.String("producto", produccion.NombreProducto),
		zap.Int("cantidad_producida", produccion.CantidadProducida),
		zap.Int("perdida_produccion", produccion.PerdidaProduccion),
		zap.Duration("latency", time.Since(start)))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": fmt.Sprintf("✅ Producción registrada: %d unidades de %s abonadas al stock", produccion.CantidadProducida, produccion.NombreProducto),
		"data":    produccion,
	})
}

// List maneja GET /produccion con filtros opcionales
func (h *ProduccionHandler) List(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "list_produccion"))

	filter := &models.ProduccionFilter{}

	if idRecetaStr := c.Query("receta"); idRecetaStr != "" {
		if idReceta, err := strconv.Atoi(idRecetaStr); err == nil {
			filter.IDReceta = &idReceta
		}
	}
	if fechaDesdeStr := c.Query("fecha_desde"); fechaDesdeStr != "" {
		if fechaDesde, err := time.Parse("2006-01-02", fechaDesdeStr); err == nil {
			filter.FechaDesde = &fechaDesde
		}
	}
	if fechaHastaStr := c.Query("fecha_hasta"); fechaHastaStr != "" {
		if fechaHasta, err := time.Parse("2006-01-02", fechaHastaStr); err == nil {
			filter.FechaHasta = &fechaHasta
		}
	}
	if limitStr := c.Query("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	producciones, err := h.produccionService.List(c.Request.Context(), filter)
	if err != nil {
		logger.Error("Error obteniendo producciones", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo producciones",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Producciones obtenidas correctamente",
		"data": gin.H{
			"producciones": producciones,
			"total":        len(producciones),
		},
	})
}

// GetByID maneja GET /produccion/:id
func (h *ProduccionHandler) GetByID(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "get_produccion"))

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ ID de producción inválido",
			"error":   "El ID debe ser un número válido",
		})
		return
	}

	produccion, err := h.produccionService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Producción no encontrada",
			})
			return
		}
		logger.Error("Error obteniendo producción", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo producción",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Producción obtenida correctamente",
		"data":    produccion,
	})
}

// Eliminar maneja DELETE /produccion/:id: reversa stock según el snapshot
func (h *ProduccionHandler) Eliminar(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "eliminar_produccion"))

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ ID de producción inválido",
			"error":   "El ID debe ser un número válido",
		})
		return
	}

	idUsuario := c.GetInt("userID")

	if err := h.produccionService.Eliminar(c.Request.Context(), id, idUsuario); err != nil {
		switch {
		case errors.Is(err, services.ErrNoEncontrado):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Producción no encontrada",
			})
		case errors.Is(err, services.ErrVersionConflicto):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "❌ El stock fue modificado por otra operación, intenta de nuevo",
			})
		default:
			logger.Error("Error eliminando producción", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "❌ Error eliminando producción",
				"error":   err.Error(),
			})
		}
		return
	}

	logger.Info("Producción eliminada", zap.Int("id_produccion", id))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Producción eliminada y stock repuesto según la receta",
	})
}
