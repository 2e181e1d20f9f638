package routes

import (
	"remold-service/internal/handlers"
	"remold-service/internal/middleware"
	"remold-service/internal/models"

	"github.com/gin-gonic/gin"
)

// Handlers agrupa los handlers que montan rutas
type Handlers struct {
	Auth       *handlers.AuthHandler
	Receta     *handlers.RecetaHandler
	Produccion *handlers.ProduccionHandler
	Stock      *handlers.StockHandler
	Finanzas   *handlers.FinanzasHandler
	Dashboard  *handlers.DashboardHandler
	Realtime   *handlers.RealtimeHandler
}

// SetupRoutes configura todas las rutas de la aplicación
func SetupRoutes(router *gin.Engine, h *Handlers, healthChecker *middleware.HealthChecker, jwtSecret string) {
	auth := middleware.AuthMiddleware(jwtSecret)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", h.Auth.Login)
			authGroup.POST("/registrar", auth, middleware.RequireRol(models.RolAdmin), h.Auth.Registrar)
			authGroup.GET("/me", auth, h.Auth.Me)
		}

		// Recetas routes
		recetas := v1.Group("/recetas", auth)
		{
			recetas.GET("", h.Receta.List)
			recetas.GET("/:id", h.Receta.GetByID)
			recetas.POST("", middleware.RequireRol(models.RolSupervisor), h.Receta.Crear)
			recetas.PUT("/:id", middleware.RequireRol(models.RolSupervisor), h.Receta.Actualizar)
			recetas.PATCH("/:id/archivar", middleware.RequireRol(models.RolSupervisor), h.Receta.Archivar)
			recetas.DELETE("/:id", middleware.RequireRol(models.RolSupervisor), h.Receta.Eliminar)
		}

		// Producción routes
		produccion := v1.Group("/produccion", auth)
		{
			produccion.POST("/resumen", h.Produccion.Resumen)
			produccion.POST("", h.Produccion.Registrar)
			produccion.GET("", h.Produccion.List)
			produccion.GET("/:id", h.Produccion.GetByID)
			produccion.DELETE("/:id", middleware.RequireRol(models.RolSupervisor), h.Produccion.Eliminar)
		}

		// Stock routes
		stock := v1.Group("/stock", auth)
		{
			stock.POST("/entrada", h.Stock.Entrada)
			stock.POST("/salida", h.Stock.Salida)
			stock.GET("", h.Stock.List)
			stock.GET("/bajo", h.Stock.Bajo)
			stock.GET("/movimientos", h.Stock.Movimientos)
			stock.GET("/:tipo/:itemId", h.Stock.GetByItem)
			stock.PUT("/:tipo/:itemId/minimo", middleware.RequireRol(models.RolSupervisor), h.Stock.ActualizarMinimo)
		}

		// Finanzas routes
		finanzas := v1.Group("/finanzas", auth)
		{
			finanzas.GET("/configuracion", h.Finanzas.GetConfiguracion)
			finanzas.PUT("/configuracion", middleware.RequireRol(models.RolSupervisor), h.Finanzas.ActualizarConfiguracion)
			finanzas.GET("/costo-receta/:id", h.Finanzas.CostoReceta)
		}

		// Dashboard routes
		dashboard := v1.Group("/dashboard", auth)
		{
			dashboard.GET("/resumen", h.Dashboard.Resumen)
			dashboard.GET("/produccion-diaria", h.Dashboard.ProduccionDiaria)
			dashboard.GET("/consumo-materiales", h.Dashboard.ConsumoMateriales)
			dashboard.GET("/valorizacion", h.Dashboard.Valorizacion)
			dashboard.GET("/cache-stats", h.Dashboard.CacheStats)
		}

		// Eventos realtime. El handshake WebSocket del navegador no lleva
		// header Authorization, así que la ruta queda fuera del middleware
		// y el handler valida el token (?token=) antes del upgrade.
		eventos := v1.Group("/eventos")
		{
			eventos.GET("/ws", h.Realtime.Eventos)
			eventos.GET("/estado", auth, h.Realtime.Estado)
		}
	}

	// Health check (mantener en raíz para compatibilidad)
	router.GET("/health", healthChecker.HealthCheck)

	// API info en raíz
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Remold Service API",
			"version": "1.0.0",
			"status":  "running",
			"endpoints": gin.H{
				"health": "/health",
				"api":    "/api/v1",
				"produccion": gin.H{
					"resumen":   "POST /api/v1/produccion/resumen",
					"registrar": "POST /api/v1/produccion",
					"historial": "GET /api/v1/produccion",
				},
				"stock": gin.H{
					"entrada":     "POST /api/v1/stock/entrada",
					"salida":      "POST /api/v1/stock/salida",
					"listado":     "GET /api/v1/stock",
					"bajo_minimo": "GET /api/v1/stock/bajo",
					"movimientos": "GET /api/v1/stock/movimientos",
				},
				"recetas":  "GET /api/v1/recetas",
				"finanzas": "GET /api/v1/finanzas/configuracion",
				"eventos":  "WS /api/v1/eventos/ws",
			},
		})
	})
}
