package services

import (
	"context"
	"database/sql"
	"fmt"

	"remold-service/internal/models"
	"remold-service/internal/repository"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockCache abstrae el caché de filas de stock (implementado en internal/cache)
type StockCache interface {
	Get(ctx context.Context, tipoItem, itemID string) *models.Stock
	Set(ctx context.Context, stock *models.Stock)
	Invalidate(ctx context.Context, tipoItem, itemID string)
}

// EventPublisher abstrae el canal realtime (implementado en internal/realtime)
type EventPublisher interface {
	Broadcast(evento models.Evento)
}

// ResumenInvalidator descarta los agregados cacheados del panel tras una
// escritura (implementado por el servicio de dashboard)
type ResumenInvalidator interface {
	InvalidarResumen(ctx context.Context)
}

// StockService define la interfaz para el primitivo de stock y sus consultas
type StockService interface {
	// Primitivo de actualización (upsert con agregar/remover)
	AplicarMovimiento(ctx context.Context, req *models.MovimientoStockRequest) (*models.Stock, error)
	// Variante que participa en la transacción del llamador. No toca el
	// caché ni emite eventos: eso es responsabilidad del dueño de la tx
	// después del commit.
	AplicarMovimientoTx(ctx context.Context, tx *sql.Tx, req *models.MovimientoStockRequest) (*models.Stock, error)

	// Consultas
	GetByItem(ctx context.Context, itemID, tipoItem string) (*models.Stock, error)
	GetByItemTx(ctx context.Context, tx *sql.Tx, itemID, tipoItem string) (*models.Stock, error)
	GetByNombreTx(ctx context.Context, tx *sql.Tx, nombreItem, tipoItem string) (*models.Stock, error)
	List(ctx context.Context, tipoItem string) ([]*models.Stock, error)
	ListBajoMinimo(ctx context.Context) ([]*models.Stock, error)
	ActualizarMinimo(ctx context.Context, itemID, tipoItem string, minimo decimal.Decimal) error
	ListMovimientos(ctx context.Context, filter *models.StockMovimientoFilter) ([]*models.StockMovimiento, error)

	// Notificación post-commit para flujos transaccionales externos
	NotificarActualizacion(ctx context.Context, stock *models.Stock)
}

// stockService implementa StockService
type stockService struct {
	repo    repository.StockRepository
	cache   StockCache
	events  EventPublisher
	resumen ResumenInvalidator
	logger  *zap.Logger
}

// NewStockService crea una nueva instancia del servicio
func NewStockService(repo repository.StockRepository, cache StockCache, events EventPublisher, resumen ResumenInvalidator, logger *zap.Logger) StockService {
	return &stockService{
		repo:    repo,
		cache:   cache,
		events:  events,
		resumen: resumen,
		logger:  logger,
	}
}

// AplicarMovimiento ejecuta el primitivo en su propia transacción
func (s *stockService) AplicarMovimiento(ctx context.Context, req *models.MovimientoStockRequest) (*models.Stock, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("error iniciando transacción: %w", err)
	}
	defer tx.Rollback()

	stock, err := s.AplicarMovimientoTx(ctx, tx, req)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error confirmando transacción: %w", err)
	}

	s.NotificarActualizacion(ctx, stock)
	return stock, nil
}

// AplicarMovimientoTx aplica agregar/remover sobre la fila (item_id, tipo_item):
//   - agregar sobre item inexistente crea la fila; remover falla
//   - agregar con precio recalcula el costo promedio ponderado
//   - remover queda en max(0, cantidad - solicitado), nunca negativo
//   - el update exige la versión leída; ante conflicto se relee y
//     reintenta una vez
func (s *stockService) AplicarMovimientoTx(ctx context.Context, tx *sql.Tx, req *models.MovimientoStockRequest) (*models.Stock, error) {
	logger := s.logger.With(
		zap.String("operation", "aplicar_movimiento"),
		zap.String("item_id", req.ItemID),
		zap.String("tipo_item", req.TipoItem),
		zap.String("operacion", req.Operacion),
		zap.String("cantidad", req.Cantidad.String()),
	)

	if req.Cantidad.IsNegative() {
		return nil, fmt.Errorf("la cantidad no puede ser negativa")
	}

	stock, err := s.repo.GetByItem(ctx, tx, req.ItemID, req.TipoItem)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo stock actual: %w", err)
	}

	if stock == nil {
		if req.Operacion == models.OperacionRemover {
			return nil, fmt.Errorf("%w: item %s (%s)", ErrNoEncontrado, req.ItemID, req.TipoItem)
		}
		return s.crearFila(ctx, tx, req, logger)
	}

	for intento := 0; ; intento++ {
		anterior := stock.Cantidad
		nueva, costo := s.calcular(stock, req)

		stock.Cantidad = nueva
		stock.CostoUnitario = costo
		stock.ValorTotal = nueva.Mul(costo)
		if req.CantidadMinima != nil {
			stock.CantidadMinima = *req.CantidadMinima
		}

		ok, err := s.repo.UpdateConVersion(ctx, tx, stock)
		if err != nil {
			return nil, fmt.Errorf("error actualizando stock: %w", err)
		}
		if ok {
			if err := s.registrarMovimiento(ctx, tx, req, stock, anterior); err != nil {
				return nil, err
			}
			logger.Info("Movimiento de stock aplicado",
				zap.String("cantidad_anterior", anterior.String()),
				zap.String("cantidad_nueva", nueva.String()))
			return stock, nil
		}

		// Conflicto de versión: otro escritor ganó. Releer y reintentar una vez.
		if intento >= 1 {
			logger.Warn("Conflicto de versión persistente en stock")
			return nil, fmt.Errorf("%w: item %s", ErrVersionConflicto, req.ItemID)
		}
		logger.Debug("Conflicto de versión, releyendo stock")
		stock, err = s.repo.GetByItem(ctx, tx, req.ItemID, req.TipoItem)
		if err != nil {
			return nil, fmt.Errorf("error releyendo stock: %w", err)
		}
		if stock == nil {
			return nil, fmt.Errorf("%w: item %s (%s)", ErrNoEncontrado, req.ItemID, req.TipoItem)
		}
	}
}

// crearFila crea la fila de stock en la primera entrada de un item
func (s *stockService) crearFila(ctx context.Context, tx *sql.Tx, req *models.MovimientoStockRequest, logger *zap.Logger) (*models.Stock, error) {
	costo := decimal.Zero
	if req.PrecioUnitario != nil {
		costo = *req.PrecioUnitario
	}
	minimo := decimal.Zero
	if req.CantidadMinima != nil {
		minimo = *req.CantidadMinima
	}

	stock := &models.Stock{
		ItemID:         req.ItemID,
		NombreItem:     req.NombreItem,
		TipoItem:       req.TipoItem,
		Unidad:         req.Unidad,
		Cantidad:       req.Cantidad,
		CostoUnitario:  costo,
		ValorTotal:     req.Cantidad.Mul(costo),
		CantidadMinima: minimo,
	}

	if err := s.repo.Create(ctx, tx, stock); err != nil {
		return nil, fmt.Errorf("error creando stock: %w", err)
	}

	if err := s.registrarMovimiento(ctx, tx, req, stock, decimal.Zero); err != nil {
		return nil, err
	}

	logger.Info("Fila de stock creada",
		zap.String("nombre_item", req.NombreItem),
		zap.String("cantidad", req.Cantidad.String()))

	return stock, nil
}

// calcular determina cantidad nueva y costo según la operación
func (s *stockService) calcular(stock *models.Stock, req *models.MovimientoStockRequest) (decimal.Decimal, decimal.Decimal) {
	if req.Operacion == models.OperacionAgregar {
		nueva := stock.Cantidad.Add(req.Cantidad)
		costo := stock.CostoUnitario
		if req.PrecioUnitario != nil && req.PrecioUnitario.IsPositive() {
			costo = CostoPromedioPonderado(stock.Cantidad, stock.CostoUnitario, req.Cantidad, *req.PrecioUnitario)
		}
		return nueva, costo
	}

	// remover: clamp en cero, nunca negativo
	nueva := stock.Cantidad.Sub(req.Cantidad)
	if nueva.IsNegative() {
		nueva = decimal.Zero
	}
	return nueva, stock.CostoUnitario
}

func (s *stockService) registrarMovimiento(ctx context.Context, tx *sql.Tx, req *models.MovimientoStockRequest, stock *models.Stock, anterior decimal.Decimal) error {
	tipo := models.MovimientoEntrada
	if req.Operacion == models.OperacionRemover {
		tipo = models.MovimientoSalida
	}

	mov := &models.StockMovimiento{
		ItemID:           stock.ItemID,
		NombreItem:       stock.NombreItem,
		TipoItem:         stock.TipoItem,
		TipoMovimiento:   tipo,
		Cantidad:         req.Cantidad,
		CantidadAnterior: anterior,
		CantidadNueva:    stock.Cantidad,
		Motivo:           req.Motivo,
		IDUsuario:        req.IDUsuario,
	}

	if err := s.repo.CrearMovimiento(ctx, tx, mov); err != nil {
		return fmt.Errorf("error registrando movimiento: %w", err)
	}
	return nil
}

// NotificarActualizacion invalida cachés (fila de stock + resumen del
// panel) y emite el evento realtime. Los flujos transaccionales la llaman
// después del commit, una vez por fila tocada.
func (s *stockService) NotificarActualizacion(ctx context.Context, stock *models.Stock) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, stock.TipoItem, stock.ItemID)
	}
	if s.resumen != nil {
		s.resumen.InvalidarResumen(ctx)
	}
	if s.events != nil {
		s.events.Broadcast(models.NuevoEvento(models.EventoStockActualizado, stock))
	}
}

// GetByItem obtiene la fila de stock de un item, con caché
func (s *stockService) GetByItem(ctx context.Context, itemID, tipoItem string) (*models.Stock, error) {
	if s.cache != nil {
		if stock := s.cache.Get(ctx, tipoItem, itemID); stock != nil {
			return stock, nil
		}
	}

	stock, err := s.repo.GetByItem(ctx, nil, itemID, tipoItem)
	if err != nil {
		return nil, err
	}

	if stock != nil && s.cache != nil {
		s.cache.Set(ctx, stock)
	}

	return stock, nil
}

// GetByItemTx lee la fila dentro de la transacción del llamador, sin caché
func (s *stockService) GetByItemTx(ctx context.Context, tx *sql.Tx, itemID, tipoItem string) (*models.Stock, error) {
	return s.repo.GetByItem(ctx, tx, itemID, tipoItem)
}

// GetByNombreTx busca la fila por nombre de item dentro de la transacción
func (s *stockService) GetByNombreTx(ctx context.Context, tx *sql.Tx, nombreItem, tipoItem string) (*models.Stock, error) {
	return s.repo.GetByNombre(ctx, tx, nombreItem, tipoItem)
}

// List obtiene el stock completo, opcionalmente por tipo
func (s *stockService) List(ctx context.Context, tipoItem string) ([]*models.Stock, error) {
	return s.repo.List(ctx, tipoItem)
}

// ListBajoMinimo obtiene items con stock en o bajo el mínimo
func (s *stockService) ListBajoMinimo(ctx context.Context) ([]*models.Stock, error) {
	return s.repo.ListBajoMinimo(ctx)
}

// ActualizarMinimo cambia el nivel mínimo de un item
func (s *stockService) ActualizarMinimo(ctx context.Context, itemID, tipoItem string, minimo decimal.Decimal) error {
	if err := s.repo.ActualizarMinimo(ctx, itemID, tipoItem, minimo); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, tipoItem, itemID)
	}
	// El mínimo entra en el contador de items bajo mínimo del panel
	if s.resumen != nil {
		s.resumen.InvalidarResumen(ctx)
	}
	return nil
}

// ListMovimientos obtiene el historial de movimientos
func (s *stockService) ListMovimientos(ctx context.Context, filter *models.StockMovimientoFilter) ([]*models.StockMovimiento, error) {
	return s.repo.ListMovimientos(ctx, filter)
}
