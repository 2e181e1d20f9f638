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

// recetaNeumatico receta de prueba: 2.5 kg de caucho y 0.8 m de lona
// por unidad producida
func recetaNeumatico() *models.Receta {
	return &models.Receta{
		ID:             1,
		NombreProducto: "Neumático 175/70",
		Materiales: []models.RecetaMaterial{
			{IDMaterial: "caucho", NombreMaterial: "Caucho", CantidadNecesaria: dec("2.5"), Unidad: "kg"},
			{IDMaterial: "lona", NombreMaterial: "Lona", CantidadNecesaria: dec("0.8"), Unidad: "m"},
		},
	}
}

func TestConstruirResumenDescomposicionDeDeduccion(t *testing.T) {
	receta := recetaNeumatico()

	// 10 producidas, 1 defectuosa, 0.5 kg de pérdida adicional de caucho
	resumen := construirResumen(receta, 10, 1,
		map[string]decimal.Decimal{"caucho": dec("0.5")},
		map[string]decimal.Decimal{"caucho": dec("30"), "lona": dec("20")})

	assert.Len(t, resumen.Materiales, 2)

	caucho := resumen.Materiales[0]
	assert.Equal(t, "caucho", caucho.IDMaterial)
	assert.True(t, dec("25").Equal(caucho.ConsumoReceta), "2.5 kg × 10 unidades")
	assert.True(t, dec("2.5").Equal(caucho.CompensacionPerdida), "2.5 kg × 1 defectuosa")
	assert.True(t, dec("0.5").Equal(caucho.PerdidaAdicional))
	assert.True(t, dec("28").Equal(caucho.DeduccionTotal))
	assert.True(t, caucho.Suficiente)

	lona := resumen.Materiales[1]
	assert.True(t, dec("8").Equal(lona.ConsumoReceta))
	assert.True(t, dec("0.8").Equal(lona.CompensacionPerdida))
	assert.True(t, lona.PerdidaAdicional.IsZero())
	assert.True(t, dec("8.8").Equal(lona.DeduccionTotal))
	assert.True(t, lona.Suficiente)

	assert.True(t, resumen.TodosSuficientes)
}

func TestConstruirResumenMarcaInsuficiente(t *testing.T) {
	receta := recetaNeumatico()

	// Caucho justo por debajo de la deducción total de 28
	resumen := construirResumen(receta, 10, 1,
		map[string]decimal.Decimal{"caucho": dec("0.5")},
		map[string]decimal.Decimal{"caucho": dec("27.9"), "lona": dec("20")})

	assert.False(t, resumen.TodosSuficientes)
	assert.False(t, resumen.Materiales[0].Suficiente)
	assert.True(t, resumen.Materiales[1].Suficiente)
}

func TestConstruirResumenMaterialSinStockEsInsuficiente(t *testing.T) {
	receta := recetaNeumatico()

	// Lona sin fila de stock: disponible cero
	resumen := construirResumen(receta, 1, 0, nil,
		map[string]decimal.Decimal{"caucho": dec("10")})

	assert.False(t, resumen.TodosSuficientes)
	assert.True(t, resumen.Materiales[1].StockDisponible.IsZero())
	assert.False(t, resumen.Materiales[1].Suficiente)
}

func TestValidarPerdidas(t *testing.T) {
	receta := recetaNeumatico()

	assert.NoError(t, validarPerdidas(receta, nil))
	assert.NoError(t, validarPerdidas(receta, map[string]decimal.Decimal{"caucho": dec("1")}))

	err := validarPerdidas(receta, map[string]decimal.Decimal{"acero": dec("1")})
	assert.Error(t, err, "material fuera de la receta")

	err = validarPerdidas(receta, map[string]decimal.Decimal{"caucho": dec("-1")})
	assert.Error(t, err, "pérdida negativa")
}

func TestMovimientosRegistroAbonaTotalProducido(t *testing.T) {
	receta := recetaNeumatico()
	resumen := construirResumen(receta, 10, 1,
		map[string]decimal.Decimal{"caucho": dec("0.5")},
		map[string]decimal.Decimal{"caucho": dec("30"), "lona": dec("20")})
	produccion := &models.Produccion{
		ID:                42,
		NombreProducto:    receta.NombreProducto,
		CantidadProducida: 10,
		PerdidaProduccion: 1,
	}

	movimientos := movimientosRegistro(produccion, resumen, "item-producto", 7)

	assert.Len(t, movimientos, 3)

	// Las salidas de material llevan la deducción total de cada fila
	assert.Equal(t, models.OperacionRemover, movimientos[0].Operacion)
	assert.True(t, dec("28").Equal(movimientos[0].Cantidad), "caucho: 25 + 2.5 + 0.5")
	assert.Equal(t, models.OperacionRemover, movimientos[1].Operacion)
	assert.True(t, dec("8.8").Equal(movimientos[1].Cantidad), "lona: 8 + 0.8")

	// El abono al producto es por el TOTAL producido: las defectuosas
	// no se restan del stock de producto terminado
	abono := movimientos[2]
	assert.Equal(t, models.OperacionAgregar, abono.Operacion)
	assert.Equal(t, models.TipoItemProducto, abono.TipoItem)
	assert.Equal(t, "item-producto", abono.ItemID)
	assert.True(t, dec("10").Equal(abono.Cantidad), "se abonan 10, no 10-1")
	for _, mov := range movimientos {
		assert.Equal(t, 7, mov.IDUsuario)
	}
}

func TestMovimientosReversaSoloReponePorcionDeReceta(t *testing.T) {
	produccion := &models.Produccion{
		ID:                42,
		NombreProducto:    "Neumático 175/70",
		CantidadProducida: 10,
		PerdidaProduccion: 1,
		MaterialesConsumidos: []models.ProduccionConsumo{
			{IDMaterial: "caucho", NombreMaterial: "Caucho", CantidadConsumida: dec("25"), Unidad: "kg"},
			{IDMaterial: "lona", NombreMaterial: "Lona", CantidadConsumida: dec("8"), Unidad: "m"},
		},
		PerdidasMaterial: []models.ProduccionPerdida{
			{IDMaterial: "caucho", NombreMaterial: "Caucho", CantidadPerdida: dec("0.5"), Unidad: "kg"},
		},
	}

	movimientos := movimientosReversa(produccion, "item-producto", 7)

	assert.Len(t, movimientos, 3)

	// Se repone solo el consumo de receta del snapshot: la compensación
	// por defectuosas y la pérdida adicional quedan como historial
	assert.Equal(t, models.OperacionAgregar, movimientos[0].Operacion)
	assert.True(t, dec("25").Equal(movimientos[0].Cantidad), "se reponen 25, no los 28 deducidos")
	assert.Equal(t, models.OperacionAgregar, movimientos[1].Operacion)
	assert.True(t, dec("8").Equal(movimientos[1].Cantidad))

	// El descuento del producto es por el total abonado al registrar
	descuento := movimientos[2]
	assert.Equal(t, models.OperacionRemover, descuento.Operacion)
	assert.Equal(t, models.TipoItemProducto, descuento.TipoItem)
	assert.True(t, dec("10").Equal(descuento.Cantidad))
}

func TestMovimientosReversaSinFilaDeProducto(t *testing.T) {
	produccion := &models.Produccion{
		ID:                42,
		NombreProducto:    "Neumático 175/70",
		CantidadProducida: 10,
		MaterialesConsumidos: []models.ProduccionConsumo{
			{IDMaterial: "caucho", NombreMaterial: "Caucho", CantidadConsumida: dec("25"), Unidad: "kg"},
		},
	}

	movimientos := movimientosReversa(produccion, "", 7)

	// Sin fila de producto se omite el descuento y solo se reponen materiales
	assert.Len(t, movimientos, 1)
	assert.Equal(t, models.OperacionAgregar, movimientos[0].Operacion)
	assert.Equal(t, models.TipoItemMaterial, movimientos[0].TipoItem)
}

func nuevoProduccionServiceTest(repo *MockProduccionRepository, recetaRepo *MockRecetaRepository, stockRepo *MockStockRepository) ProduccionService {
	stock := NewStockService(stockRepo, nil, nil, nil, zap.NewNop())
	return NewProduccionService(repo, recetaRepo, stock, nil, zap.NewNop())
}

func TestResumenConsultaStockPorMaterial(t *testing.T) {
	repo := new(MockProduccionRepository)
	recetaRepo := new(MockRecetaRepository)
	stockRepo := new(MockStockRepository)
	svc := nuevoProduccionServiceTest(repo, recetaRepo, stockRepo)

	recetaRepo.On("GetByID", mock.Anything, 1).Return(recetaNeumatico(), nil).Once()
	stockRepo.On("GetByItem", mock.Anything, mock.Anything, "caucho", "material").
		Return(filaStock("caucho", "100", "5"), nil).Once()
	stockRepo.On("GetByItem", mock.Anything, mock.Anything, "lona", "material").
		Return(nil, nil).Once()

	resumen, err := svc.Resumen(context.Background(), &models.ResumenProduccionRequest{
		IDReceta:          1,
		CantidadProducida: 4,
		PerdidaProduccion: 0,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Neumático 175/70", resumen.NombreProducto)
	assert.True(t, dec("100").Equal(resumen.Materiales[0].StockDisponible))
	assert.True(t, resumen.Materiales[0].Suficiente)
	assert.True(t, resumen.Materiales[1].StockDisponible.IsZero(), "lona sin fila de stock")
	assert.False(t, resumen.TodosSuficientes)
	recetaRepo.AssertExpectations(t)
	stockRepo.AssertExpectations(t)
}

func TestResumenRecetaInexistente(t *testing.T) {
	repo := new(MockProduccionRepository)
	recetaRepo := new(MockRecetaRepository)
	stockRepo := new(MockStockRepository)
	svc := nuevoProduccionServiceTest(repo, recetaRepo, stockRepo)

	recetaRepo.On("GetByID", mock.Anything, 99).Return(nil, nil).Once()

	_, err := svc.Resumen(context.Background(), &models.ResumenProduccionRequest{
		IDReceta:          99,
		CantidadProducida: 1,
	})

	assert.ErrorIs(t, err, ErrNoEncontrado)
}

func TestResumenPerdidaMayorQueProducido(t *testing.T) {
	repo := new(MockProduccionRepository)
	recetaRepo := new(MockRecetaRepository)
	stockRepo := new(MockStockRepository)
	svc := nuevoProduccionServiceTest(repo, recetaRepo, stockRepo)

	_, err := svc.Resumen(context.Background(), &models.ResumenProduccionRequest{
		IDReceta:          1,
		CantidadProducida: 5,
		PerdidaProduccion: 6,
	})

	assert.Error(t, err)
	recetaRepo.AssertNotCalled(t, "GetByID")
}

func TestRegistrarRecetaArchivadaRechazada(t *testing.T) {
	repo := new(MockProduccionRepository)
	recetaRepo := new(MockRecetaRepository)
	stockRepo := new(MockStockRepository)
	svc := nuevoProduccionServiceTest(repo, recetaRepo, stockRepo)

	receta := recetaNeumatico()
	receta.Archivada = true
	recetaRepo.On("GetByID", mock.Anything, 1).Return(receta, nil).Once()

	_, err := svc.Registrar(context.Background(), &models.RegistrarProduccionRequest{
		IDReceta:          1,
		CantidadProducida: 10,
		FechaProduccion:   "2026-08-28",
	})

	assert.ErrorIs(t, err, ErrRecetaArchivada)
	repo.AssertNotCalled(t, "BeginTx")
}

func TestRegistrarFechaInvalida(t *testing.T) {
	repo := new(MockProduccionRepository)
	recetaRepo := new(MockRecetaRepository)
	stockRepo := new(MockStockRepository)
	svc := nuevoProduccionServiceTest(repo, recetaRepo, stockRepo)

	_, err := svc.Registrar(context.Background(), &models.RegistrarProduccionRequest{
		IDReceta:          1,
		CantidadProducida: 10,
		FechaProduccion:   "28/08/2026",
	})

	assert.Error(t, err)
	recetaRepo.AssertNotCalled(t, "GetByID")
}
