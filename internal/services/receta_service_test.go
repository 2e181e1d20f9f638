package services

import (
	"context"
	"testing"

	"remold-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func nuevoRecetaServiceTest(repo *MockRecetaRepository, produccionRepo *MockProduccionRepository) RecetaService {
	return NewRecetaService(repo, produccionRepo, nil, nil, zap.NewNop())
}

func TestCrearRecetaRechazaMaterialRepetido(t *testing.T) {
	repo := new(MockRecetaRepository)
	produccionRepo := new(MockProduccionRepository)
	svc := nuevoRecetaServiceTest(repo, produccionRepo)

	_, err := svc.Crear(context.Background(), &models.CrearRecetaRequest{
		NombreProducto: "Neumático 175/70",
		Materiales: []models.RecetaMaterialRequest{
			{IDMaterial: "caucho", NombreMaterial: "Caucho", CantidadNecesaria: dec("2.5"), Unidad: "kg"},
			{IDMaterial: "caucho", NombreMaterial: "Caucho", CantidadNecesaria: dec("1"), Unidad: "kg"},
		},
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Crear")
}

func TestCrearRecetaRechazaCantidadNoPositiva(t *testing.T) {
	repo := new(MockRecetaRepository)
	produccionRepo := new(MockProduccionRepository)
	svc := nuevoRecetaServiceTest(repo, produccionRepo)

	_, err := svc.Crear(context.Background(), &models.CrearRecetaRequest{
		NombreProducto: "Neumático 175/70",
		Materiales: []models.RecetaMaterialRequest{
			{IDMaterial: "caucho", NombreMaterial: "Caucho", CantidadNecesaria: dec("0"), Unidad: "kg"},
		},
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Crear")
}

func TestEliminarRecetaEnUsoBloqueado(t *testing.T) {
	repo := new(MockRecetaRepository)
	produccionRepo := new(MockProduccionRepository)
	svc := nuevoRecetaServiceTest(repo, produccionRepo)

	repo.On("GetByID", mock.Anything, 1).Return(recetaNeumatico(), nil).Once()
	produccionRepo.On("ExistePorReceta", mock.Anything, 1).Return(true, nil).Once()

	err := svc.Eliminar(context.Background(), 1)

	assert.ErrorIs(t, err, ErrRecetaEnUso)
	repo.AssertNotCalled(t, "Eliminar")
}

func TestEliminarRecetaSinProducciones(t *testing.T) {
	repo := new(MockRecetaRepository)
	produccionRepo := new(MockProduccionRepository)
	svc := nuevoRecetaServiceTest(repo, produccionRepo)

	repo.On("GetByID", mock.Anything, 1).Return(recetaNeumatico(), nil).Once()
	produccionRepo.On("ExistePorReceta", mock.Anything, 1).Return(false, nil).Once()
	repo.On("Eliminar", mock.Anything, 1).Return(nil).Once()

	err := svc.Eliminar(context.Background(), 1)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestArchivarRecetaInvalidaResumenDelPanel(t *testing.T) {
	repo := new(MockRecetaRepository)
	produccionRepo := new(MockProduccionRepository)
	invalidador := new(MockResumenInvalidator)
	svc := NewRecetaService(repo, produccionRepo, nil, invalidador, zap.NewNop())

	repo.On("GetByID", mock.Anything, 1).Return(recetaNeumatico(), nil).Once()
	repo.On("SetArchivada", mock.Anything, 1, true).Return(nil).Once()
	invalidador.On("InvalidarResumen", mock.Anything).Once()

	err := svc.Archivar(context.Background(), 1, true)

	assert.NoError(t, err)
	invalidador.AssertExpectations(t)
}

func TestArchivarRecetaInexistente(t *testing.T) {
	repo := new(MockRecetaRepository)
	produccionRepo := new(MockProduccionRepository)
	svc := nuevoRecetaServiceTest(repo, produccionRepo)

	repo.On("GetByID", mock.Anything, 42).Return(nil, nil).Once()

	err := svc.Archivar(context.Background(), 42, true)

	assert.ErrorIs(t, err, ErrNoEncontrado)
	repo.AssertNotCalled(t, "SetArchivada")
}
