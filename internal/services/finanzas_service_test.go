package services

import (
	"context"
	"encoding/json"
	"testing"

	"remold-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func nuevoFinanzasServiceTest(repo *MockFinanzasRepository, recetaRepo *MockRecetaRepository, stockRepo *MockStockRepository) FinanzasService {
	return NewFinanzasService(repo, recetaRepo, stockRepo, zap.NewNop())
}

func TestGetConfiguracionAplicaDefaults(t *testing.T) {
	repo := new(MockFinanzasRepository)
	svc := nuevoFinanzasServiceTest(repo, new(MockRecetaRepository), new(MockStockRepository))

	repo.On("GetTodas", mock.Anything).Return(map[string]json.RawMessage{}, nil).Once()

	config, err := svc.GetConfiguracion(context.Background())

	assert.NoError(t, err)
	assert.True(t, dec("30").Equal(config.MargenObjetivo), "margen por defecto 30")
	assert.True(t, config.CostoManoObraHora.IsZero())
	assert.Equal(t, "CLP", config.Moneda)
}

func TestGetConfiguracionMezclaGuardadosYDefaults(t *testing.T) {
	repo := new(MockFinanzasRepository)
	svc := nuevoFinanzasServiceTest(repo, new(MockRecetaRepository), new(MockStockRepository))

	repo.On("GetTodas", mock.Anything).Return(map[string]json.RawMessage{
		models.ClaveMargenObjetivo: json.RawMessage(`"40"`),
		models.ClaveMoneda:         json.RawMessage(`"USD"`),
	}, nil).Once()

	config, err := svc.GetConfiguracion(context.Background())

	assert.NoError(t, err)
	assert.True(t, dec("40").Equal(config.MargenObjetivo))
	assert.Equal(t, "USD", config.Moneda)
	assert.True(t, config.CostosIndirectos.IsZero(), "clave no guardada conserva el default")
}

func TestActualizarConfiguracionRechazaNegativos(t *testing.T) {
	repo := new(MockFinanzasRepository)
	svc := nuevoFinanzasServiceTest(repo, new(MockRecetaRepository), new(MockStockRepository))

	_, err := svc.ActualizarConfiguracion(context.Background(), &models.ActualizarConfiguracionRequest{
		MargenObjetivo: decPtr("-5"),
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "Set")
}

func TestCostoRecetaConMargen(t *testing.T) {
	repo := new(MockFinanzasRepository)
	recetaRepo := new(MockRecetaRepository)
	stockRepo := new(MockStockRepository)
	svc := nuevoFinanzasServiceTest(repo, recetaRepo, stockRepo)

	recetaRepo.On("GetByID", mock.Anything, 1).Return(recetaNeumatico(), nil).Once()
	repo.On("GetTodas", mock.Anything).Return(map[string]json.RawMessage{
		models.ClaveMargenObjetivo:    json.RawMessage(`"30"`),
		models.ClaveCostoManoObraHora: json.RawMessage(`"10"`),
		models.ClaveCostosIndirectos:  json.RawMessage(`"5"`),
	}, nil).Once()
	stockRepo.On("GetByItem", mock.Anything, mock.Anything, "caucho", "material").
		Return(filaStock("caucho", "100", "8"), nil).Once()
	// Lona sin stock: su costo unitario cuenta como cero
	stockRepo.On("GetByItem", mock.Anything, mock.Anything, "lona", "material").
		Return(nil, nil).Once()

	costo, err := svc.CostoReceta(context.Background(), 1)

	assert.NoError(t, err)
	// caucho 2.5 kg × 8 = 20, lona 0.8 m × 0 = 0
	assert.True(t, dec("20").Equal(costo.CostoMateriales))
	assert.True(t, dec("35").Equal(costo.CostoTotal), "20 + 10 mano de obra + 5 indirectos")
	assert.True(t, dec("50").Equal(costo.PrecioSugerido), "35 / (1 - 0.30)")
	assert.Len(t, costo.Detalle, 2)
	assert.True(t, costo.Detalle[1].CostoUnitario.IsZero())
}

func TestCostoRecetaMargenCienNoDivide(t *testing.T) {
	repo := new(MockFinanzasRepository)
	recetaRepo := new(MockRecetaRepository)
	stockRepo := new(MockStockRepository)
	svc := nuevoFinanzasServiceTest(repo, recetaRepo, stockRepo)

	recetaRepo.On("GetByID", mock.Anything, 1).Return(recetaNeumatico(), nil).Once()
	repo.On("GetTodas", mock.Anything).Return(map[string]json.RawMessage{
		models.ClaveMargenObjetivo: json.RawMessage(`"100"`),
	}, nil).Once()
	stockRepo.On("GetByItem", mock.Anything, mock.Anything, "caucho", "material").
		Return(filaStock("caucho", "100", "8"), nil).Once()
	stockRepo.On("GetByItem", mock.Anything, mock.Anything, "lona", "material").
		Return(nil, nil).Once()

	costo, err := svc.CostoReceta(context.Background(), 1)

	assert.NoError(t, err)
	assert.True(t, costo.PrecioSugerido.Equal(costo.CostoTotal), "margen del 100 por ciento cae al costo total")
}

func TestCostoRecetaInexistente(t *testing.T) {
	repo := new(MockFinanzasRepository)
	recetaRepo := new(MockRecetaRepository)
	svc := nuevoFinanzasServiceTest(repo, recetaRepo, new(MockStockRepository))

	recetaRepo.On("GetByID", mock.Anything, 99).Return(nil, nil).Once()

	_, err := svc.CostoReceta(context.Background(), 99)

	assert.ErrorIs(t, err, ErrNoEncontrado)
}
