package services

import (
	"context"
	"testing"

	"remold-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func dec(valor string) decimal.Decimal {
	return decimal.RequireFromString(valor)
}

func decPtr(valor string) *decimal.Decimal {
	d := dec(valor)
	return &d
}

func nuevoStockServiceTest(repo *MockStockRepository) *stockService {
	return &stockService{
		repo:   repo,
		logger: zap.NewNop(),
	}
}

func filaStock(itemID string, cantidad, costo string) *models.Stock {
	return &models.Stock{
		ID:            1,
		ItemID:        itemID,
		NombreItem:    "Caucho",
		TipoItem:      models.TipoItemMaterial,
		Unidad:        "kg",
		Cantidad:      dec(cantidad),
		CostoUnitario: dec(costo),
		ValorTotal:    dec(cantidad).Mul(dec(costo)),
		Version:       1,
	}
}

func TestAplicarMovimientoTxRemoverClampEnCero(t *testing.T) {
	repo := new(MockStockRepository)
	svc := nuevoStockServiceTest(repo)

	repo.On("GetByItem", mock.Anything, mock.Anything, "caucho", "material").
		Return(filaStock("caucho", "10", "5"), nil).Once()
	repo.On("UpdateConVersion", mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil).Once()
	repo.On("CrearMovimiento", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	stock, err := svc.AplicarMovimientoTx(context.Background(), nil, &models.MovimientoStockRequest{
		ItemID:    "caucho",
		TipoItem:  models.TipoItemMaterial,
		Cantidad:  dec("25"),
		Operacion: models.OperacionRemover,
		Motivo:    "ajuste",
	})

	assert.NoError(t, err)
	assert.True(t, stock.Cantidad.IsZero(), "remover más de lo disponible debe dejar cero, no negativo")
	repo.AssertExpectations(t)
}

func TestAplicarMovimientoTxAgregarConPrecioRecalculaPromedio(t *testing.T) {
	repo := new(MockStockRepository)
	svc := nuevoStockServiceTest(repo)

	repo.On("GetByItem", mock.Anything, mock.Anything, "caucho", "material").
		Return(filaStock("caucho", "10", "100"), nil).Once()
	repo.On("UpdateConVersion", mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil).Once()
	repo.On("CrearMovimiento", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	stock, err := svc.AplicarMovimientoTx(context.Background(), nil, &models.MovimientoStockRequest{
		ItemID:         "caucho",
		TipoItem:       models.TipoItemMaterial,
		Cantidad:       dec("10"),
		Operacion:      models.OperacionAgregar,
		PrecioUnitario: decPtr("200"),
		Motivo:         "compra",
	})

	assert.NoError(t, err)
	assert.True(t, dec("20").Equal(stock.Cantidad))
	assert.True(t, dec("150").Equal(stock.CostoUnitario), "costo promedio ponderado: (10*100 + 10*200) / 20")
	assert.True(t, dec("3000").Equal(stock.ValorTotal))
	repo.AssertExpectations(t)
}

func TestAplicarMovimientoTxAgregarSinPrecioMantieneCosto(t *testing.T) {
	repo := new(MockStockRepository)
	svc := nuevoStockServiceTest(repo)

	repo.On("GetByItem", mock.Anything, mock.Anything, "caucho", "material").
		Return(filaStock("caucho", "10", "100"), nil).Once()
	repo.On("UpdateConVersion", mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil).Once()
	repo.On("CrearMovimiento", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	stock, err := svc.AplicarMovimientoTx(context.Background(), nil, &models.MovimientoStockRequest{
		ItemID:    "caucho",
		TipoItem:  models.TipoItemMaterial,
		Cantidad:  dec("5"),
		Operacion: models.OperacionAgregar,
		Motivo:    "reversa",
	})

	assert.NoError(t, err)
	assert.True(t, dec("15").Equal(stock.Cantidad))
	assert.True(t, dec("100").Equal(stock.CostoUnitario), "sin precio la entrada no cambia el costo")
	repo.AssertExpectations(t)
}

func TestAplicarMovimientoTxCreaFilaEnPrimeraEntrada(t *testing.T) {
	repo := new(MockStockRepository)
	svc := nuevoStockServiceTest(repo)

	repo.On("GetByItem", mock.Anything, mock.Anything, "nuevo", "material").
		Return(nil, nil).Once()
	repo.On("Create", mock.Anything, mock.Anything, mock.MatchedBy(func(s *models.Stock) bool {
		return s.ItemID == "nuevo" && dec("7").Equal(s.Cantidad) && dec("12").Equal(s.CostoUnitario)
	})).Return(nil).Once()
	repo.On("CrearMovimiento", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	stock, err := svc.AplicarMovimientoTx(context.Background(), nil, &models.MovimientoStockRequest{
		ItemID:         "nuevo",
		TipoItem:       models.TipoItemMaterial,
		NombreItem:     "Lona",
		Unidad:         "m",
		Cantidad:       dec("7"),
		Operacion:      models.OperacionAgregar,
		PrecioUnitario: decPtr("12"),
		Motivo:         "compra inicial",
	})

	assert.NoError(t, err)
	assert.Equal(t, "Lona", stock.NombreItem)
	assert.True(t, dec("84").Equal(stock.ValorTotal))
	repo.AssertExpectations(t)
}

func TestAplicarMovimientoTxRemoverSobreInexistenteFalla(t *testing.T) {
	repo := new(MockStockRepository)
	svc := nuevoStockServiceTest(repo)

	repo.On("GetByItem", mock.Anything, mock.Anything, "fantasma", "material").
		Return(nil, nil).Once()

	_, err := svc.AplicarMovimientoTx(context.Background(), nil, &models.MovimientoStockRequest{
		ItemID:    "fantasma",
		TipoItem:  models.TipoItemMaterial,
		Cantidad:  dec("1"),
		Operacion: models.OperacionRemover,
		Motivo:    "ajuste",
	})

	assert.ErrorIs(t, err, ErrNoEncontrado)
	repo.AssertExpectations(t)
}

func TestAplicarMovimientoTxReintentaUnaVezAnteConflicto(t *testing.T) {
	repo := new(MockStockRepository)
	svc := nuevoStockServiceTest(repo)

	// Cada lectura devuelve una fila fresca, como haría la base de datos
	repo.On("GetByItem", mock.Anything, mock.Anything, "caucho", "material").
		Return(filaStock("caucho", "10", "5"), nil).Once()
	repo.On("GetByItem", mock.Anything, mock.Anything, "caucho", "material").
		Return(filaStock("caucho", "10", "5"), nil).Once()
	repo.On("UpdateConVersion", mock.Anything, mock.Anything, mock.Anything).
		Return(false, nil).Once()
	repo.On("UpdateConVersion", mock.Anything, mock.Anything, mock.Anything).
		Return(true, nil).Once()
	repo.On("CrearMovimiento", mock.Anything, mock.Anything, mock.Anything).
		Return(nil).Once()

	stock, err := svc.AplicarMovimientoTx(context.Background(), nil, &models.MovimientoStockRequest{
		ItemID:    "caucho",
		TipoItem:  models.TipoItemMaterial,
		Cantidad:  dec("3"),
		Operacion: models.OperacionRemover,
		Motivo:    "ajuste",
	})

	assert.NoError(t, err)
	assert.True(t, dec("7").Equal(stock.Cantidad))
	repo.AssertExpectations(t)
}

func TestAplicarMovimientoTxConflictoPersistenteDevuelveError(t *testing.T) {
	repo := new(MockStockRepository)
	svc := nuevoStockServiceTest(repo)

	repo.On("GetByItem", mock.Anything, mock.Anything, "caucho", "material").
		Return(filaStock("caucho", "10", "5"), nil).Once()
	repo.On("GetByItem", mock.Anything, mock.Anything, "caucho", "material").
		Return(filaStock("caucho", "10", "5"), nil).Once()
	repo.On("UpdateConVersion", mock.Anything, mock.Anything, mock.Anything).
		Return(false, nil).Twice()

	_, err := svc.AplicarMovimientoTx(context.Background(), nil, &models.MovimientoStockRequest{
		ItemID:    "caucho",
		TipoItem:  models.TipoItemMaterial,
		Cantidad:  dec("3"),
		Operacion: models.OperacionRemover,
		Motivo:    "ajuste",
	})

	assert.ErrorIs(t, err, ErrVersionConflicto)
	repo.AssertExpectations(t)
}

func TestNotificarActualizacionInvalidaResumenDelPanel(t *testing.T) {
	repo := new(MockStockRepository)
	invalidador := new(MockResumenInvalidator)
	svc := &stockService{
		repo:    repo,
		resumen: invalidador,
		logger:  zap.NewNop(),
	}

	invalidador.On("InvalidarResumen", mock.Anything).Once()

	svc.NotificarActualizacion(context.Background(), filaStock("caucho", "10", "5"))

	invalidador.AssertExpectations(t)
}

func TestActualizarMinimoInvalidaResumenDelPanel(t *testing.T) {
	repo := new(MockStockRepository)
	invalidador := new(MockResumenInvalidator)
	svc := &stockService{
		repo:    repo,
		resumen: invalidador,
		logger:  zap.NewNop(),
	}

	repo.On("ActualizarMinimo", mock.Anything, "caucho", "material", mock.Anything).Return(nil).Once()
	invalidador.On("InvalidarResumen", mock.Anything).Once()

	err := svc.ActualizarMinimo(context.Background(), "caucho", "material", dec("5"))

	assert.NoError(t, err)
	invalidador.AssertExpectations(t)
}

func TestAplicarMovimientoTxCantidadNegativaRechazada(t *testing.T) {
	repo := new(MockStockRepository)
	svc := nuevoStockServiceTest(repo)

	_, err := svc.AplicarMovimientoTx(context.Background(), nil, &models.MovimientoStockRequest{
		ItemID:    "caucho",
		TipoItem:  models.TipoItemMaterial,
		Cantidad:  dec("-5"),
		Operacion: models.OperacionAgregar,
		Motivo:    "ajuste",
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "GetByItem")
}
