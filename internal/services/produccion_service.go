package services

import (
	"context"
	"fmt"
	"time"

	"remold-service/internal/models"
	"remold-service/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProduccionService define la interfaz para el registro de producción diaria
// y su conciliación contra stock
type ProduccionService interface {
	// Resumen calcula el resumen consolidado de materiales sin escribir nada
	Resumen(ctx context.Context, req *models.ResumenProduccionRequest) (*models.ResumenProduccion, error)
	// Registrar persiste la corrida y aplica las deducciones/abono de stock
	Registrar(ctx context.Context, req *models.RegistrarProduccionRequest) (*models.Produccion, error)
	GetByID(ctx context.Context, id int) (*models.Produccion, error)
	List(ctx context.Context, filter *models.ProduccionFilter) ([]*models.Produccion, error)
	// Eliminar reversa el stock y borra el registro del ledger
	Eliminar(ctx context.Context, id, idUsuario int) error
}

// produccionService implementa ProduccionService
type produccionService struct {
	repo       repository.ProduccionRepository
	recetaRepo repository.RecetaRepository
	stock      StockService
	events     EventPublisher
	logger     *zap.Logger
}

// NewProduccionService crea una nueva instancia del servicio
func NewProduccionService(repo repository.ProduccionRepository, recetaRepo repository.RecetaRepository, stock StockService, events EventPublisher, logger *zap.Logger) ProduccionService {
	return &produccionService{
		repo:       repo,
		recetaRepo: recetaRepo,
		stock:      stock,
		events:     events,
		logger:     logger,
	}
}

// construirResumen arma el resumen consolidado: una fila por material con
//
//	consumo_receta       = cantidad_necesaria × cantidad_producida
//	compensacion_perdida = cantidad_necesaria × perdida_produccion
//	perdida_adicional    = valor ingresado por el usuario (0 si no hay)
//	deduccion_total      = suma de los tres
//
// y el flag de suficiencia contra el stock disponible entregado.
func construirResumen(receta *models.Receta, cantidadProducida, perdidaProduccion int, perdidasAdicionales map[string]decimal.Decimal, disponible map[string]decimal.Decimal) *models.ResumenProduccion {
	resumen := &models.ResumenProduccion{
		NombreProducto:   receta.NombreProducto,
		TodosSuficientes: true,
	}

	cantidad := decimal.NewFromInt(int64(cantidadProducida))
	perdida := decimal.NewFromInt(int64(perdidaProduccion))

	for _, material := range receta.Materiales {
		consumo := material.CantidadNecesaria.Mul(cantidad)
		compensacion := material.CantidadNecesaria.Mul(perdida)

		adicional := decimal.Zero
		if valor, ok := perdidasAdicionales[material.IDMaterial]; ok {
			adicional = valor
		}

		total := consumo.Add(compensacion).Add(adicional)
		stockDisponible := disponible[material.IDMaterial]
		suficiente := stockDisponible.GreaterThanOrEqual(total)
		if !suficiente {
			resumen.TodosSuficientes = false
		}

		resumen.Materiales = append(resumen.Materiales, models.ResumenMaterial{
			IDMaterial:          material.IDMaterial,
			NombreMaterial:      material.NombreMaterial,
			Unidad:              material.Unidad,
			ConsumoReceta:       consumo,
			CompensacionPerdida: compensacion,
			PerdidaAdicional:    adicional,
			DeduccionTotal:      total,
			StockDisponible:     stockDisponible,
			Suficiente:          suficiente,
		})
	}

	return resumen
}

// validarPerdidas rechaza pérdidas negativas o de materiales fuera de la receta
func validarPerdidas(receta *models.Receta, perdidas map[string]decimal.Decimal) error {
	enReceta := make(map[string]bool, len(receta.Materiales))
	for _, material := range receta.Materiales {
		enReceta[material.IDMaterial] = true
	}

	for idMaterial, valor := range perdidas {
		if !enReceta[idMaterial] {
			return fmt.Errorf("el material %s no pertenece a la receta", idMaterial)
		}
		if valor.IsNegative() {
			return fmt.Errorf("la pérdida adicional del material %s no puede ser negativa", idMaterial)
		}
	}
	return nil
}

// movimientosRegistro arma el plan de movimientos de stock de un registro:
// una salida por material por su deduccion_total y una entrada al producto
// terminado por el TOTAL producido (las defectuosas no se restan del abono)
func movimientosRegistro(produccion *models.Produccion, resumen *models.ResumenProduccion, productoItemID string, idUsuario int) []*models.MovimientoStockRequest {
	movimientos := make([]*models.MovimientoStockRequest, 0, len(resumen.Materiales)+1)

	for _, fila := range resumen.Materiales {
		movimientos = append(movimientos, &models.MovimientoStockRequest{
			ItemID:     fila.IDMaterial,
			TipoItem:   models.TipoItemMaterial,
			NombreItem: fila.NombreMaterial,
			Unidad:     fila.Unidad,
			Cantidad:   fila.DeduccionTotal,
			Operacion:  models.OperacionRemover,
			Motivo:     fmt.Sprintf("Producción #%d: %s", produccion.ID, produccion.NombreProducto),
			IDUsuario:  idUsuario,
		})
	}

	movimientos = append(movimientos, &models.MovimientoStockRequest{
		ItemID:     productoItemID,
		TipoItem:   models.TipoItemProducto,
		NombreItem: produccion.NombreProducto,
		Unidad:     "unidad",
		Cantidad:   decimal.NewFromInt(int64(produccion.CantidadProducida)),
		Operacion:  models.OperacionAgregar,
		Motivo:     fmt.Sprintf("Producción #%d", produccion.ID),
		IDUsuario:  idUsuario,
	})

	return movimientos
}

// movimientosReversa arma el plan de reversa de una producción: repone a
// cada material SOLO el consumo de receta del snapshot (las deducciones
// por pérdida quedan como historial) y remueve del producto terminado el
// total producido. productoItemID vacío omite el descuento del producto.
func movimientosReversa(produccion *models.Produccion, productoItemID string, idUsuario int) []*models.MovimientoStockRequest {
	movimientos := make([]*models.MovimientoStockRequest, 0, len(produccion.MaterialesConsumidos)+1)

	for _, consumo := range produccion.MaterialesConsumidos {
		movimientos = append(movimientos, &models.MovimientoStockRequest{
			ItemID:     consumo.IDMaterial,
			TipoItem:   models.TipoItemMaterial,
			NombreItem: consumo.NombreMaterial,
			Unidad:     consumo.Unidad,
			Cantidad:   consumo.CantidadConsumida,
			Operacion:  models.OperacionAgregar,
			Motivo:     fmt.Sprintf("Reversa producción #%d", produccion.ID),
			IDUsuario:  idUsuario,
		})
	}

	if productoItemID != "" {
		movimientos = append(movimientos, &models.MovimientoStockRequest{
			ItemID:     productoItemID,
			TipoItem:   models.TipoItemProducto,
			NombreItem: produccion.NombreProducto,
			Cantidad:   decimal.NewFromInt(int64(produccion.CantidadProducida)),
			Operacion:  models.OperacionRemover,
			Motivo:     fmt.Sprintf("Reversa producción #%d", produccion.ID),
			IDUsuario:  idUsuario,
		})
	}

	return movimientos
}

func (s *produccionService) cargarReceta(ctx context.Context, idReceta int) (*models.Receta, error) {
	receta, err := s.recetaRepo.GetByID(ctx, idReceta)
	if err != nil {
		return nil, fmt.Errorf("error obteniendo receta: %w", err)
	}
	if receta == nil {
		return nil, fmt.Errorf("%w: receta %d", ErrNoEncontrado, idReceta)
	}
	return receta, nil
}

// Resumen calcula el resumen consolidado para la previsualización del formulario
func (s *produccionService) Resumen(ctx context.Context, req *models.ResumenProduccionRequest) (*models.ResumenProduccion, error) {
	if req.PerdidaProduccion > req.CantidadProducida {
		return nil, fmt.Errorf("la pérdida de producción (%d) no puede superar la cantidad producida (%d)",
			req.PerdidaProduccion, req.CantidadProducida)
	}

	receta, err := s.cargarReceta(ctx, req.IDReceta)
	if err != nil {
		return nil, err
	}
	if err := validarPerdidas(receta, req.PerdidasAdicionales); err != nil {
		return nil, err
	}

	disponible := make(map[string]decimal.Decimal, len(receta.Materiales))
	for _, material := range receta.Materiales {
		stock, err := s.stock.GetByItem(ctx, material.IDMaterial, models.TipoItemMaterial)
		if err != nil {
			return nil, fmt.Errorf("error obteniendo stock de %s: %w", material.IDMaterial, err)
		}
		if stock != nil {
			disponible[material.IDMaterial] = stock.Cantidad
		}
	}

	return construirResumen(receta, req.CantidadProducida, req.PerdidaProduccion, req.PerdidasAdicionales, disponible), nil
}

// Registrar ejecuta la conciliación completa en una sola transacción:
//  1. recalcula el resumen con lecturas dentro de la tx y rechaza si algún
//     material es insuficiente (precondición dura, nunca se confía en el
//     resumen calculado por el cliente)
//  2. inserta el registro de producción con el snapshot de consumo de
//     receta y las pérdidas adicionales como historial
//  3. deduce deduccion_total de cada material
//  4. abona el TOTAL de unidades producidas al producto terminado (las
//     defectuosas no se restan), creando la fila con un item_id generado
//     la primera vez
//
// Cualquier error revierte todo: no quedan deducciones parciales.
func (s *produccionService) Registrar(ctx context.Context, req *models.RegistrarProduccionRequest) (*models.Produccion, error) {
	logger := s.logger.With(
		zap.String("operation", "registrar_produccion"),
		zap.Int("id_receta", req.IDReceta),
		zap.Int("cantidad_producida", req.CantidadProducida),
		zap.Int("perdida_produccion", req.PerdidaProduccion),
	)

	// Validaciones previas: ninguna escritura hasta que todo esté correcto
	fecha, err := time.Parse("2006-01-02", req.FechaProduccion)
	if err != nil {
		return nil, fmt.Errorf("fecha de producción inválida %q: debe ser YYYY-MM-DD", req.FechaProduccion)
	}
	if req.PerdidaProduccion > req.CantidadProducida {
		return nil, fmt.Errorf("la pérdida de producción (%d) no puede superar la cantidad producida (%d)",
			req.PerdidaProduccion, req.CantidadProducida)
	}

	receta, err := s.cargarReceta(ctx, req.IDReceta)
	if err != nil {
		return nil, err
	}
	if receta.Archivada {
		return nil, fmt.Errorf("%w: %s", ErrRecetaArchivada, receta.NombreProducto)
	}
	if err := validarPerdidas(receta, req.PerdidasAdicionales); err != nil {
		return nil, err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("error iniciando transacción: %w", err)
	}
	defer tx.Rollback()

	// Releer stock dentro de la transacción para la puerta de suficiencia
	disponible := make(map[string]decimal.Decimal, len(receta.Materiales))
	for _, material := range receta.Materiales {
		stock, err := s.stock.GetByItemTx(ctx, tx, material.IDMaterial, models.TipoItemMaterial)
		if err != nil {
			return nil, fmt.Errorf("error obteniendo stock de %s: %w", material.IDMaterial, err)
		}
		if stock != nil {
			disponible[material.IDMaterial] = stock.Cantidad
		}
	}

	resumen := construirResumen(receta, req.CantidadProducida, req.PerdidaProduccion, req.PerdidasAdicionales, disponible)
	if !resumen.TodosSuficientes {
		for _, fila := range resumen.Materiales {
			if !fila.Suficiente {
				return nil, fmt.Errorf("%w: %s requiere %s %s y hay %s",
					ErrStockInsuficiente, fila.NombreMaterial,
					fila.DeduccionTotal.String(), fila.Unidad, fila.StockDisponible.String())
			}
		}
	}

	// 1. Ledger primero: preferimos un registro huérfano a stock mutado
	// sin registro (el orden queda igual aunque la tx lo haga atómico)
	produccion := &models.Produccion{
		IDReceta:          receta.ID,
		NombreProducto:    receta.NombreProducto,
		CantidadProducida: req.CantidadProducida,
		PerdidaProduccion: req.PerdidaProduccion,
		FechaProduccion:   fecha,
		IDUsuario:         req.IDUsuario,
	}
	for _, fila := range resumen.Materiales {
		// El snapshot guarda solo el consumo de receta; las deducciones
		// por pérdida van aparte y no se reponen al eliminar
		produccion.MaterialesConsumidos = append(produccion.MaterialesConsumidos, models.ProduccionConsumo{
			IDMaterial:        fila.IDMaterial,
			NombreMaterial:    fila.NombreMaterial,
			CantidadConsumida: fila.ConsumoReceta,
			Unidad:            fila.Unidad,
		})
		if fila.PerdidaAdicional.IsPositive() {
			produccion.PerdidasMaterial = append(produccion.PerdidasMaterial, models.ProduccionPerdida{
				IDMaterial:      fila.IDMaterial,
				NombreMaterial:  fila.NombreMaterial,
				CantidadPerdida: fila.PerdidaAdicional,
				Unidad:          fila.Unidad,
			})
		}
	}

	if err := s.repo.Crear(ctx, tx, produccion); err != nil {
		return nil, fmt.Errorf("error registrando producción: %w", err)
	}

	// 2. y 3. Plan de movimientos: deduccion_total por material y abono
	// del producto terminado por el TOTAL producido. La primera vez la
	// fila del producto se crea con un item_id generado.
	existente, err := s.stock.GetByNombreTx(ctx, tx, receta.NombreProducto, models.TipoItemProducto)
	if err != nil {
		return nil, fmt.Errorf("error buscando producto terminado: %w", err)
	}
	productoItemID := uuid.NewString()
	if existente != nil {
		productoItemID = existente.ItemID
	}

	movimientos := movimientosRegistro(produccion, resumen, productoItemID, req.IDUsuario)
	tocados := make([]*models.Stock, 0, len(movimientos))
	for _, mov := range movimientos {
		stock, err := s.stock.AplicarMovimientoTx(ctx, tx, mov)
		if err != nil {
			return nil, fmt.Errorf("error aplicando movimiento de %s: %w", mov.NombreItem, err)
		}
		tocados = append(tocados, stock)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error confirmando transacción: %w", err)
	}

	// Post-commit: caché y eventos
	for _, stock := range tocados {
		s.stock.NotificarActualizacion(ctx, stock)
	}
	if s.events != nil {
		s.events.Broadcast(models.NuevoEvento(models.EventoProduccionRegistrada, produccion))
	}

	logger.Info("Producción registrada",
		zap.Int("id_produccion", produccion.ID),
		zap.String("producto", produccion.NombreProducto),
		zap.Int("materiales_deducidos", len(resumen.Materiales)))

	return produccion, nil
}

// GetByID obtiene un registro de producción con su detalle
func (s *produccionService) GetByID(ctx context.Context, id int) (*models.Produccion, error) {
	produccion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if produccion == nil {
		return nil, fmt.Errorf("%w: producción %d", ErrNoEncontrado, id)
	}
	return produccion, nil
}

// List obtiene registros de producción con filtros
func (s *produccionService) List(ctx context.Context, filter *models.ProduccionFilter) ([]*models.Produccion, error) {
	return s.repo.List(ctx, filter)
}

// Eliminar reversa el stock de una producción y borra el registro, todo
// en una transacción:
//  1. repone a cada material SOLO el consumo de receta registrado en el
//     snapshot; las pérdidas (compensación y adicionales) quedan como
//     historial y no se reponen
//  2. remueve del producto terminado el TOTAL producido (consistente con
//     cómo se abonó); si la fila ya no existe se registra un warning y
//     se continúa
//  3. borra la fila del ledger
func (s *produccionService) Eliminar(ctx context.Context, id, idUsuario int) error {
	logger := s.logger.With(
		zap.String("operation", "eliminar_produccion"),
		zap.Int("id_produccion", id),
	)

	produccion, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("error obteniendo producción: %w", err)
	}
	if produccion == nil {
		return fmt.Errorf("%w: producción %d", ErrNoEncontrado, id)
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("error iniciando transacción: %w", err)
	}
	defer tx.Rollback()

	// 1. y 2. Plan de reversa: reponer la porción de receta y descontar
	// el total producido del producto terminado
	productoItemID := ""
	productoStock, err := s.stock.GetByNombreTx(ctx, tx, produccion.NombreProducto, models.TipoItemProducto)
	if err != nil {
		return fmt.Errorf("error buscando producto terminado: %w", err)
	}
	if productoStock == nil {
		logger.Warn("Producto terminado sin fila de stock, se omite el descuento",
			zap.String("producto", produccion.NombreProducto))
	} else {
		productoItemID = productoStock.ItemID
	}

	movimientos := movimientosReversa(produccion, productoItemID, idUsuario)
	tocados := make([]*models.Stock, 0, len(movimientos))
	for _, mov := range movimientos {
		stock, err := s.stock.AplicarMovimientoTx(ctx, tx, mov)
		if err != nil {
			return fmt.Errorf("error reversando movimiento de %s: %w", mov.NombreItem, err)
		}
		tocados = append(tocados, stock)
	}

	// 3. Borrar el registro del ledger
	if err := s.repo.Eliminar(ctx, tx, produccion.ID); err != nil {
		return fmt.Errorf("error eliminando producción: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error confirmando transacción: %w", err)
	}

	for _, stock := range tocados {
		s.stock.NotificarActualizacion(ctx, stock)
	}
	if s.events != nil {
		s.events.Broadcast(models.NuevoEvento(models.EventoProduccionEliminada, produccion))
	}

	logger.Info("Producción eliminada y stock reversado",
		zap.String("producto", produccion.NombreProducto),
		zap.Int("materiales_repuestos", len(produccion.MaterialesConsumidos)))

	return nil
}
