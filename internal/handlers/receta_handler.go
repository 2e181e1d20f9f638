package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"remold-service/internal/models"
	"remold-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// RecetaHandler maneja las peticiones HTTP de recetas
type RecetaHandler struct {
	recetaService services.RecetaService
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewRecetaHandler crea una nueva instancia del handler
func NewRecetaHandler(recetaService services.RecetaService, logger *zap.Logger) *RecetaHandler {
	return &RecetaHandler{
		recetaService: recetaService,
		validator:     validator.New(),
		logger:        logger,
	}
}

func (h *RecetaHandler) parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ ID de receta inválido",
			"error":   "El ID debe ser un número válido",
		})
		return 0, false
	}
	return id, true
}

// Crear maneja POST /recetas
func (h *RecetaHandler) Crear(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "crear_receta"))

	var req models.CrearRecetaRequest
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

	receta, err := h.recetaService.Crear(c.Request.Context(), &req)
	if err != nil {
		logger.Error("Error creando receta", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error creando receta",
			"error":   err.Error(),
		})
		return
	}

	logger.Info("Receta creada",
		zap.Int("id_receta", receta.ID),
		zap.String("producto", receta.NombreProducto))

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "✅ Receta creada correctamente",
		"data":    receta,
	})
}

// List maneja GET /recetas?archivadas=true
func (h *RecetaHandler) List(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "list_recetas"))

	incluirArchivadas := c.Query("archivadas") == "true"

	recetas, err := h.recetaService.List(c.Request.Context(), incluirArchivadas)
	if err != nil {
		logger.Error("Error obteniendo recetas", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo recetas",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Recetas obtenidas correctamente",
		"data": gin.H{
			"recetas": recetas,
			"total":   len(recetas),
		},
	})
}

// GetByID maneja GET /recetas/:id
func (h *RecetaHandler) GetByID(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "get_receta"))

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	receta, err := h.recetaService.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Receta no encontrada",
			})
			return
		}
		logger.Error("Error obteniendo receta", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error obteniendo receta",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Receta obtenida correctamente",
		"data":    receta,
	})
}

// Actualizar maneja PUT /recetas/:id
func (h *RecetaHandler) Actualizar(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "actualizar_receta"))

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req models.ActualizarRecetaRequest
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

	receta, err := h.recetaService.Actualizar(c.Request.Context(), id, &req)
	if err != nil {
		if errors.Is(err, services.ErrNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Receta no encontrada",
			})
			return
		}
		logger.Error("Error actualizando receta", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error actualizando receta",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Receta actualizada correctamente",
		"data":    receta,
	})
}

// Archivar maneja PATCH /recetas/:id/archivar
func (h *RecetaHandler) Archivar(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "archivar_receta"))

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req struct {
		Archivada bool `json:"archivada"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "❌ Error en el formato de datos",
			"error":   err.Error(),
		})
		return
	}

	if err := h.recetaService.Archivar(c.Request.Context(), id, req.Archivada); err != nil {
		if errors.Is(err, services.ErrNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Receta no encontrada",
			})
			return
		}
		logger.Error("Error archivando receta", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error archivando receta",
			"error":   err.Error(),
		})
		return
	}

	mensaje := "✅ Receta archivada correctamente"
	if !req.Archivada {
		mensaje = "✅ Receta desarchivada correctamente"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": mensaje,
	})
}

// Eliminar maneja DELETE /recetas/:id
func (h *RecetaHandler) Eliminar(c *gin.Context) {
	logger := h.logger.With(zap.String("handler", "eliminar_receta"))

	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.recetaService.Eliminar(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrNoEncontrado) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "❌ Receta no encontrada",
			})
			return
		}
		if errors.Is(err, services.ErrRecetaEnUso) {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"message": "❌ La receta tiene producciones registradas, archívala en su lugar",
			})
			return
		}
		logger.Error("Error eliminando receta", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"message": "❌ Error eliminando receta",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "✅ Receta eliminada correctamente",
	})
}
