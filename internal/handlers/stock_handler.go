package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"remold-service/internal/models"
	"remold-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// StockHandler maneja las peticiones HTTP relacionadas con stock
type StockHandler struct {
	stockService services.StockService
	validator    *validator.Validate
	logger       *zap.Logger
}

// NewStockHandler crea una nueva instancia del handler
func NewStockHandler(stockService services.StockService, logger *zap.Logger) *StockHandler {
	return &StockHandler{
		stockService: stockService,
		validator:    validator.New(),
		logger:       logger,
	}
}

// movimiento aplica un movimiento manual (entrada o salida) forzando la operación
func (h *StockHandler) movimiento(c *gin.Context, operacion string) {
	start := time.Now()
	logger := h.logger.With(
		zap.String("handler", "movimiento_stock"),
		zap.String("operacion", operacion),
	)

	var req models.MovimientoStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Error binding JSON", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}

	// La ruta manda sobre lo que venga en el body
	req.Operacion = operacion
	req.IDUsuario = c.GetInt("userID")

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Datos de entrada inválidos",
			"error":   err.Error(),
		})
		return
	}

	stock, err := h.stockService.AplicarMovimiento(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNoEncontrado):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Item no encontrado en stock",
			})
		case errors.Is(err, services.ErrVersionConflicto):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "❌ El stock fue modificado por otra operación, intenta de nuevo",
			})
		default:
			logger.Error("Error aplicando movimiento", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "❌ Error aplicando movimiento de stock",
				"error":   err.Error(),
			})
		}
		return
	}

	logger.Info("Movimiento aplicado",
		zap.String("item_id", stock.ItemID),
		zap.String("cantidad_nueva", stock.Cantidad.String()),
		zap.Duration("latency", time.Since(start)))

	mensaje := "✅ Entrada de stock registrada correctamente"
	if operacion == models.OperacionRemover {
		mensaje = "✅ Salida de stock registrada correctamente"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": mensaje,
		"data":    stock,
	})
}

// Entrada maneja POST /stock/entrada
func (h *StockHandler) Entrada(c *gin.Context) {
	h.movimiento(c, models.OperacionAgregar)
}

// Salida maneja POST /stock/salida
func (h *StockHandler) Salida(c *gin.Context) {
	h.movimiento(c, models.OperacionRemover)
}

// List maneja GET /stock?tipo=material|producto
func (h *StockHandler) List(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "list_stock"))

	tipoItem := c.Query("tipo")
	if tipoItem != "" && tipoItem != models.TipoItemMaterial && tipoItem != models.TipoItemProducto {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Tipo de item inválido",
			"error":   "El tipo debe ser material o producto",
		})
		return
	}

	stock, err := h.stockService.List(c.Request.Context(), tipoItem)
	if err != nil {
		logger.Error("Error obteniendo stock", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo stock",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Stock obtenido correctamente",
		"data": gin.H{
			"items": stock,
			"total": len(stock),
		},
	})
}

// GetByItem maneja GET /stock/:tipo/:itemId
func (h *StockHandler) GetByItem(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "get_stock_item"))

	tipoItem := c.Param("tipo")
	itemID := c.Param("itemId")

	if tipoItem != models.TipoItemMaterial && tipoItem != models.TipoItemProducto {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Tipo de item inválido",
			"error":   "El tipo debe ser material o producto",
		})
		return
	}

	stock, err := h.stockService.GetByItem(c.Request.Context(), itemID, tipoItem)
	if err != nil {
		logger.Error("Error obteniendo stock del item", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo stock del item",
			"error":   err.Error(),
		})
		return
	}

	if stock == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"message": "❌ Item no encontrado en stock",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Stock obtenido correctamente",
		"data":    stock,
	})
}

// Bajo maneja GET /stock/bajo: items en o bajo su mínimo
func (h *StockHandler) Bajo(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "stock_bajo"))

	items, err := h.stockService.ListBajoMinimo(c.Request.Context())
	if err != nil {
		logger.Error("Error obteniendo stock bajo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo stock bajo mínimo",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Items bajo mínimo obtenidos",
		"data": gin.H{
			"items": items,
			"total": len(items),
		},
	})
}

// ActualizarMinimo maneja PUT /stock/:tipo/:itemId/minimo
func (h *StockHandler) ActualizarMinimo(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "actualizar_minimo"))

	tipoItem := c.Param("tipo")
	itemID := c.Param("itemId")

	var req models.ActualizarMinimoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}

	if req.CantidadMinima.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ La cantidad mínima no puede ser negativa",
		})
		return
	}

	if err := h.stockService.ActualizarMinimo(c.Request.Context(), itemID, tipoItem, req.CantidadMinima); err != nil {
		logger.Error("Error actualizando mínimo", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error actualizando cantidad mínima",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Cantidad mínima actualizada correctamente",
	})
}

// Movimientos maneja GET /stock/movimientos con filtros
func (h *StockHandler) Movimientos(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "movimientos_stock"))

	filter := &models.StockMovimientoFilter{}

	if itemID := c.Query("item"); itemID != "" {
		filter.ItemID = &itemID
	}
	if tipoItem := c.Query("tipo_item"); tipoItem != "" {
		filter.TipoItem = &tipoItem
	}
	if tipoMovimiento := c.Query("tipo"); tipoMovimiento != "" {
		filter.TipoMovimiento = &tipoMovimiento
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

	movimientos, err := h.stockService.ListMovimientos(c.Request.Context(), filter)
	if err != nil {
		logger.Error("Error obteniendo movimientos", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo movimientos",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Movimientos obtenidos correctamente",
		"data": gin.H{
			"movimientos": movimientos,
			"total":       len(movimientos),
		},
	})
}
