package services

import (
	"context"
	"database/sql"
	"encoding/json"

	"remold-service/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockStockRepository struct {
	mock.Mock
}

func (m *MockStockRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sql.Tx), args.Error(1)
}

func (m *MockStockRepository) GetByItem(ctx context.Context, tx *sql.Tx, itemID, tipoItem string) (*models.Stock, error) {
	args := m.Called(ctx, tx, itemID, tipoItem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stock), args.Error(1)
}

func (m *MockStockRepository) GetByNombre(ctx context.Context, tx *sql.Tx, nombreItem, tipoItem string) (*models.Stock, error) {
	args := m.Called(ctx, tx, nombreItem, tipoItem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stock), args.Error(1)
}

func (m *MockStockRepository) Create(ctx context.Context, tx *sql.Tx, stock *models.Stock) error {
	args := m.Called(ctx, tx, stock)
	return args.Error(0)
}

func (m *MockStockRepository) UpdateConVersion(ctx context.Context, tx *sql.Tx, stock *models.Stock) (bool, error) {
	args := m.Called(ctx, tx, stock)
	return args.Bool(0), args.Error(1)
}

func (m *MockStockRepository) ActualizarMinimo(ctx context.Context, itemID, tipoItem string, minimo decimal.Decimal) error {
	args := m.Called(ctx, itemID, tipoItem, minimo)
	return args.Error(0)
}

func (m *MockStockRepository) List(ctx context.Context, tipoItem string) ([]*models.Stock, error) {
	args := m.Called(ctx, tipoItem)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Stock), args.Error(1)
}

func (m *MockStockRepository) ListBajoMinimo(ctx context.Context) ([]*models.Stock, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Stock), args.Error(1)
}

func (m *MockStockRepository) CrearMovimiento(ctx context.Context, tx *sql.Tx, mov *models.StockMovimiento) error {
	args := m.Called(ctx, tx, mov)
	return args.Error(0)
}

func (m *MockStockRepository) ListMovimientos(ctx context.Context, filter *models.StockMovimientoFilter) ([]*models.StockMovimiento, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.StockMovimiento), args.Error(1)
}

func (m *MockStockRepository) ValorPorTipo(ctx context.Context, tipoItem string) (decimal.Decimal, error) {
	args := m.Called(ctx, tipoItem)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockStockRepository) ContarBajoMinimo(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStockRepository) Valorizacion(ctx context.Context) ([]*models.ValorizacionItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ValorizacionItem), args.Error(1)
}

type MockRecetaRepository struct {
	mock.Mock
}

func (m *MockRecetaRepository) Crear(ctx context.Context, receta *models.Receta) error {
	args := m.Called(ctx, receta)
	return args.Error(0)
}

func (m *MockRecetaRepository) GetByID(ctx context.Context, id int) (*models.Receta, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Receta), args.Error(1)
}

func (m *MockRecetaRepository) List(ctx context.Context, incluirArchivadas bool) ([]*models.Receta, error) {
	args := m.Called(ctx, incluirArchivadas)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Receta), args.Error(1)
}

func (m *MockRecetaRepository) Actualizar(ctx context.Context, receta *models.Receta) error {
	args := m.Called(ctx, receta)
	return args.Error(0)
}

func (m *MockRecetaRepository) SetArchivada(ctx context.Context, id int, archivada bool) error {
	args := m.Called(ctx, id, archivada)
	return args.Error(0)
}

func (m *MockRecetaRepository) Eliminar(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecetaRepository) ContarActivas(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockProduccionRepository struct {
	mock.Mock
}

func (m *MockProduccionRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sql.Tx), args.Error(1)
}

func (m *MockProduccionRepository) Crear(ctx context.Context, tx *sql.Tx, produccion *models.Produccion) error {
	args := m.Called(ctx, tx, produccion)
	return args.Error(0)
}

func (m *MockProduccionRepository) GetByID(ctx context.Context, id int) (*models.Produccion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Produccion), args.Error(1)
}

func (m *MockProduccionRepository) List(ctx context.Context, filter *models.ProduccionFilter) ([]*models.Produccion, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Produccion), args.Error(1)
}

func (m *MockProduccionRepository) Eliminar(ctx context.Context, tx *sql.Tx, id int) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockProduccionRepository) ExistePorReceta(ctx context.Context, idReceta int) (bool, error) {
	args := m.Called(ctx, idReceta)
	return args.Bool(0), args.Error(1)
}

func (m *MockProduccionRepository) Contar(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockProduccionRepository) UnidadesEnRango(ctx context.Context, desde, hasta string) (int, int, error) {
	args := m.Called(ctx, desde, hasta)
	return args.Int(0), args.Int(1), args.Error(2)
}

func (m *MockProduccionRepository) SerieDiaria(ctx context.Context, dias int) ([]*models.ProduccionDiariaPunto, error) {
	args := m.Called(ctx, dias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ProduccionDiariaPunto), args.Error(1)
}

func (m *MockProduccionRepository) ConsumoMateriales(ctx context.Context, dias int) ([]*models.ConsumoMaterialPunto, error) {
	args := m.Called(ctx, dias)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ConsumoMaterialPunto), args.Error(1)
}

type MockUsuarioRepository struct {
	mock.Mock
}

func (m *MockUsuarioRepository) GetByUsuario(ctx context.Context, usuario string) (*models.Usuario, error) {
	args := m.Called(ctx, usuario)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Usuario), args.Error(1)
}

func (m *MockUsuarioRepository) GetByID(ctx context.Context, id int) (*models.Usuario, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Usuario), args.Error(1)
}

func (m *MockUsuarioRepository) Crear(ctx context.Context, usuario *models.Usuario) error {
	args := m.Called(ctx, usuario)
	return args.Error(0)
}

type MockFinanzasRepository struct {
	mock.Mock
}

func (m *MockFinanzasRepository) Get(ctx context.Context, clave string) (json.RawMessage, error) {
	args := m.Called(ctx, clave)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(json.RawMessage), args.Error(1)
}

func (m *MockFinanzasRepository) GetTodas(ctx context.Context) (map[string]json.RawMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]json.RawMessage), args.Error(1)
}

func (m *MockFinanzasRepository) Set(ctx context.Context, clave string, valor json.RawMessage) error {
	args := m.Called(ctx, clave, valor)
	return args.Error(0)
}

type MockResumenInvalidator struct {
	mock.Mock
}

func (m *MockResumenInvalidator) InvalidarResumen(ctx context.Context) {
	m.Called(ctx)
}
