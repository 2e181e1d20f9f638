package handlers

import (
	"net/http"
	"strconv"

	"remold-service/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// DashboardHandler maneja las peticiones de agregados del panel
type DashboardHandler struct {
	dashboardService services.DashboardService
	logger           *zap.Logger
}

// NewDashboardHandler crea una nueva instancia del handler
func NewDashboardHandler(dashboardService services.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

func parseDias(c *gin.Context) int {
	dias := 30
	if diasStr := c.Query("dias"); diasStr != "" {
		if parsed, err := strconv.Atoi(diasStr); err == nil {
			dias = parsed
		}
	}
	return dias
}

// Resumen maneja GET /dashboard/resumen
func (h *DashboardHandler) Resumen(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "dashboard_resumen"))

	resumen, err := h.dashboardService.Resumen(c.Request.Context())
	if err != nil {
		logger.Error("Error obteniendo resumen", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo resumen del dashboard",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Resumen obtenido correctamente",
		"data":    resumen,
	})
}

// ProduccionDiaria maneja GET /dashboard/produccion-diaria?dias=30
func (h *DashboardHandler) ProduccionDiaria(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "dashboard_produccion_diaria"))

	serie, err := h.dashboardService.ProduccionDiaria(c.Request.Context(), parseDias(c))
	if err != nil {
		logger.Error("Error obteniendo serie diaria", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo producción diaria",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Producción diaria obtenida correctamente",
		"data": gin.H{
			"serie": serie,
			"total": len(serie),
		},
	})
}

// ConsumoMateriales maneja GET /dashboard/consumo-materiales?dias=30
func (h *DashboardHandler) ConsumoMateriales(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "dashboard_consumo_materiales"))

	consumo, err := h.dashboardService.ConsumoMateriales(c.Request.Context(), parseDias(c))
	if err != nil {
		logger.Error("Error obteniendo consumo de materiales", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo consumo de materiales",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Consumo de materiales obtenido correctamente",
		"data": gin.H{
			"materiales": consumo,
			"total":      len(consumo),
		},
	})
}

// Valorizacion maneja GET /dashboard/valorizacion
func (h *DashboardHandler) Valorizacion(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "dashboard_valorizacion"))

	items, err := h.dashboardService.Valorizacion(c.Request.Context())
	if err != nil {
		logger.Error("Error obteniendo valorización", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo valorización de inventario",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Valorización obtenida correctamente",
		"data": gin.H{
			"items": items,
			"total": len(items),
		},
	})
}

// CacheStats maneja GET /dashboard/cache-stats
func (h *DashboardHandler) CacheStats(c *gin.Context) {
	stats := h.dashboardService.CacheStats(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Estadísticas de caché obtenidas",
		"data":    stats,
	})
}
