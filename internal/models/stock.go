package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de item en stock
const (
	TipoItemMaterial = "material"
	TipoItemProducto = "producto"
)

// Operaciones sobre stock
const (
	OperacionAgregar = "agregar"
	OperacionRemover = "remover"
)

// Tipos de movimiento registrados en el historial
const (
	MovimientoEntrada = "entrada"
	MovimientoSalida  = "salida"
)

// Stock representa la tabla stock: una fila por (item_id, tipo_item)
type Stock struct {
	ID             int             `json:"id" db:"id"`
	ItemID         string          `json:"item_id" db:"item_id"`
	NombreItem     string          `json:"nombre_item" db:"nombre_item"`
	TipoItem       string          `json:"tipo_item" db:"tipo_item"`
	Unidad         string          `json:"unidad" db:"unidad"`
	Cantidad       decimal.Decimal `json:"cantidad" db:"cantidad"`
	CostoUnitario  decimal.Decimal `json:"costo_unitario" db:"costo_unitario"`
	ValorTotal     decimal.Decimal `json:"valor_total" db:"valor_total"`
	CantidadMinima decimal.Decimal `json:"cantidad_minima" db:"cantidad_minima"`
	Version        int             `json:"version" db:"version"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// BajoMinimo indica si la cantidad actual está en o bajo el mínimo configurado
func (s *Stock) BajoMinimo() bool {
	return s.CantidadMinima.IsPositive() && s.Cantidad.LessThanOrEqual(s.CantidadMinima)
}

// StockMovimiento representa la tabla stock_movimientos
type StockMovimiento struct {
	ID               int             `json:"id" db:"id"`
	ItemID           string          `json:"item_id" db:"item_id"`
	NombreItem       string          `json:"nombre_item" db:"nombre_item"`
	TipoItem         string          `json:"tipo_item" db:"tipo_item"`
	TipoMovimiento   string          `json:"tipo_movimiento" db:"tipo_movimiento"`
	Cantidad         decimal.Decimal `json:"cantidad" db:"cantidad"`
	CantidadAnterior decimal.Decimal `json:"cantidad_anterior" db:"cantidad_anterior"`
	CantidadNueva    decimal.Decimal `json:"cantidad_nueva" db:"cantidad_nueva"`
	Motivo           string          `json:"motivo" db:"motivo"`
	IDUsuario        int             `json:"id_usuario" db:"id_usuario"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// MovimientoStockRequest DTO para el primitivo de actualización de stock
type MovimientoStockRequest struct {
	ItemID         string           `json:"item_id" validate:"required"`
	TipoItem       string           `json:"tipo_item" validate:"required,oneof=material producto"`
	NombreItem     string           `json:"nombre_item"`
	Unidad         string           `json:"unidad"`
	Cantidad       decimal.Decimal  `json:"cantidad" validate:"required"`
	Operacion      string           `json:"operacion" validate:"required,oneof=agregar remover"`
	PrecioUnitario *decimal.Decimal `json:"precio_unitario,omitempty"`
	CantidadMinima *decimal.Decimal `json:"cantidad_minima,omitempty"`
	Motivo         string           `json:"motivo" validate:"required"`
	IDUsuario      int              `json:"-"` // Se obtiene del contexto de autenticación
}

// ActualizarMinimoRequest DTO para cambiar el nivel mínimo de un item
type ActualizarMinimoRequest struct {
	CantidadMinima decimal.Decimal `json:"cantidad_minima" validate:"required"`
}

// StockMovimientoFilter filtros para consultas del historial
type StockMovimientoFilter struct {
	ItemID         *string    `json:"item_id,omitempty"`
	TipoItem       *string    `json:"tipo_item,omitempty"`
	TipoMovimiento *string    `json:"tipo_movimiento,omitempty"`
	FechaDesde     *time.Time `json:"fecha_desde,omitempty"`
	FechaHasta     *time.Time `json:"fecha_hasta,omitempty"`
	Limit          int        `json:"limit,omitempty"`
	Offset         int        `json:"offset,omitempty"`
}
