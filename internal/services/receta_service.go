package services

import (
	"context"
	"fmt"

	"remold-service/internal/models"
	"remold-service/internal/repository"

	"go.uber.org/zap"
)

// RecetaService define la interfaz para recetas de producción
type RecetaService interface {
	Crear(ctx context.Context, req *models.CrearRecetaRequest) (*models.Receta, error)
	GetByID(ctx context.Context, id int) (*models.Receta, error)
	List(ctx context.Context, incluirArchivadas bool) ([]*models.Receta, error)
	Actualizar(ctx context.Context, id int, req *models.ActualizarRecetaRequest) (*models.Receta, error)
	Archivar(ctx context.Context, id int, archivada bool) error
	Eliminar(ctx context.Context, id int) error
}

// recetaService implementa RecetaService
type recetaService struct {
	repo           repository.RecetaRepository
	produccionRepo repository.ProduccionRepository
	events         EventPublisher
	resumen        ResumenInvalidator
	logger         *zap.Logger
}

// NewRecetaService crea una nueva instancia del servicio
func NewRecetaService(repo repository.RecetaRepository, produccionRepo repository.ProduccionRepository, events EventPublisher, resumen ResumenInvalidator, logger *zap.Logger) RecetaService {
	return &recetaService{
		repo:           repo,
		produccionRepo: produccionRepo,
		events:         events,
		resumen:        resumen,
		logger:         logger,
	}
}

func materialesDesdeRequest(materiales []models.RecetaMaterialRequest) ([]models.RecetaMaterial, error) {
	vistos := make(map[string]bool, len(materiales))
	resultado := make([]models.RecetaMaterial, 0, len(materiales))

	for _, material := range materiales {
		if !material.CantidadNecesaria.IsPositive() {
			return nil, fmt.Errorf("la cantidad necesaria de %s debe ser mayor que cero", material.NombreMaterial)
		}
		if vistos[material.IDMaterial] {
			return nil, fmt.Errorf("el material %s está repetido en la receta", material.IDMaterial)
		}
		vistos[material.IDMaterial] = true

		resultado = append(resultado, models.RecetaMaterial{
			IDMaterial:        material.IDMaterial,
			NombreMaterial:    material.NombreMaterial,
			CantidadNecesaria: material.CantidadNecesaria,
			Unidad:            material.Unidad,
		})
	}

	return resultado, nil
}

// Crear registra una nueva receta
func (s *recetaService) Crear(ctx context.Context, req *models.CrearRecetaRequest) (*models.Receta, error) {
	materiales, err := materialesDesdeRequest(req.Materiales)
	if err != nil {
		return nil, err
	}

	receta := &models.Receta{
		NombreProducto: req.NombreProducto,
		Materiales:     materiales,
	}

	if err := s.repo.Crear(ctx, receta); err != nil {
		return nil, fmt.Errorf("error creando receta: %w", err)
	}

	s.logger.Info("Receta creada",
		zap.Int("id_receta", receta.ID),
		zap.String("producto", receta.NombreProducto),
		zap.Int("materiales", len(receta.Materiales)))

	s.invalidarResumen(ctx)
	s.notificar(receta)
	return receta, nil
}

// GetByID obtiene una receta con sus materiales
func (s *recetaService) GetByID(ctx context.Context, id int) (*models.Receta, error) {
	receta, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if receta == nil {
		return nil, fmt.Errorf("%w: receta %d", ErrNoEncontrado, id)
	}
	return receta, nil
}

// List obtiene las recetas, por defecto solo las activas
func (s *recetaService) List(ctx context.Context, incluirArchivadas bool) ([]*models.Receta, error) {
	return s.repo.List(ctx, incluirArchivadas)
}

// Actualizar reemplaza nombre y materiales de la receta
func (s *recetaService) Actualizar(ctx context.Context, id int, req *models.ActualizarRecetaRequest) (*models.Receta, error) {
	existente, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	materiales, err := materialesDesdeRequest(req.Materiales)
	if err != nil {
		return nil, err
	}

	existente.NombreProducto = req.NombreProducto
	existente.Materiales = materiales

	if err := s.repo.Actualizar(ctx, existente); err != nil {
		return nil, fmt.Errorf("error actualizando receta: %w", err)
	}

	s.notificar(existente)
	return existente, nil
}

// Archivar archiva o desarchiva una receta. Las archivadas no aparecen en
// el formulario de producción pero siguen resolubles para el historial.
func (s *recetaService) Archivar(ctx context.Context, id int, archivada bool) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	if err := s.repo.SetArchivada(ctx, id, archivada); err != nil {
		return err
	}

	s.logger.Info("Receta archivada/desarchivada",
		zap.Int("id_receta", id),
		zap.Bool("archivada", archivada))

	s.invalidarResumen(ctx)
	return nil
}

// Eliminar borra una receta solo si ninguna producción la referencia;
// si está en uso, el cliente debe archivarla en su lugar
func (s *recetaService) Eliminar(ctx context.Context, id int) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	enUso, err := s.produccionRepo.ExistePorReceta(ctx, id)
	if err != nil {
		return fmt.Errorf("error verificando producciones: %w", err)
	}
	if enUso {
		return fmt.Errorf("%w: receta %d", ErrRecetaEnUso, id)
	}

	if err := s.repo.Eliminar(ctx, id); err != nil {
		return err
	}

	s.logger.Info("Receta eliminada", zap.Int("id_receta", id))
	s.invalidarResumen(ctx)
	return nil
}

func (s *recetaService) notificar(receta *models.Receta) {
	if s.events != nil {
		s.events.Broadcast(models.NuevoEvento(models.EventoRecetaActualizada, receta))
	}
}

// invalidarResumen descarta el resumen del panel: el contador de recetas
// activas cambia con crear, archivar y eliminar
func (s *recetaService) invalidarResumen(ctx context.Context) {
	if s.resumen != nil {
		s.resumen.InvalidarResumen(ctx)
	}
}
