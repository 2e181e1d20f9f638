package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Produccion representa un registro inmutable de una corrida de producción.
// CantidadProducida siempre guarda el total de unidades fabricadas: las
// unidades defectuosas (PerdidaProduccion) NO se restan del stock de
// producto terminado, es una regla de negocio deliberada.
type Produccion struct {
	ID                   int                 `json:"id" db:"id"`
	IDReceta             int                 `json:"id_receta" db:"id_receta"`
	NombreProducto       string              `json:"nombre_producto" db:"nombre_producto"`
	CantidadProducida    int                 `json:"cantidad_producida" db:"cantidad_producida"`
	PerdidaProduccion    int                 `json:"perdida_produccion" db:"perdida_produccion"`
	FechaProduccion      time.Time           `json:"fecha_produccion" db:"fecha_produccion"`
	MaterialesConsumidos []ProduccionConsumo `json:"materiales_consumidos"`
	PerdidasMaterial     []ProduccionPerdida `json:"perdidas_material,omitempty"`
	IDUsuario            int                 `json:"id_usuario" db:"id_usuario"`
	CreatedAt            time.Time           `json:"created_at" db:"created_at"`
}

// ProduccionConsumo snapshot del consumo según receta (sin pérdidas)
type ProduccionConsumo struct {
	ID                int             `json:"id" db:"id"`
	IDProduccion      int             `json:"id_produccion" db:"id_produccion"`
	IDMaterial        string          `json:"id_material" db:"id_material"`
	NombreMaterial    string          `json:"nombre_material" db:"nombre_material"`
	CantidadConsumida decimal.Decimal `json:"cantidad_consumida" db:"cantidad_consumida"`
	Unidad            string          `json:"unidad" db:"unidad"`
}

// ProduccionPerdida pérdida adicional de material registrada en la corrida.
// Se guarda como historial: al eliminar la producción no se repone.
type ProduccionPerdida struct {
	ID              int             `json:"id" db:"id"`
	IDProduccion    int             `json:"id_produccion" db:"id_produccion"`
	IDMaterial      string          `json:"id_material" db:"id_material"`
	NombreMaterial  string          `json:"nombre_material" db:"nombre_material"`
	CantidadPerdida decimal.Decimal `json:"cantidad_perdida" db:"cantidad_perdida"`
	Unidad          string          `json:"unidad" db:"unidad"`
}

// RegistrarProduccionRequest DTO para registrar producción diaria
type RegistrarProduccionRequest struct {
	IDReceta            int                        `json:"id_receta" validate:"required,gt=0"`
	CantidadProducida   int                        `json:"cantidad_producida" validate:"required,gt=0"`
	PerdidaProduccion   int                        `json:"perdida_produccion" validate:"gte=0"`
	PerdidasAdicionales map[string]decimal.Decimal `json:"perdidas_adicionales,omitempty"` // id_material -> cantidad extra
	FechaProduccion     string                     `json:"fecha_produccion" validate:"required"` // formato 2006-01-02
	IDUsuario           int                        `json:"-"` // Se obtiene del contexto de autenticación
}

// ResumenProduccionRequest DTO para previsualizar el resumen consolidado
type ResumenProduccionRequest struct {
	IDReceta            int                        `json:"id_receta" validate:"required,gt=0"`
	CantidadProducida   int                        `json:"cantidad_producida" validate:"required,gt=0"`
	PerdidaProduccion   int                        `json:"perdida_produccion" validate:"gte=0"`
	PerdidasAdicionales map[string]decimal.Decimal `json:"perdidas_adicionales,omitempty"`
}

// ResumenMaterial una fila del resumen consolidado de materiales:
// deduccion_total = consumo_receta + compensacion_perdida + perdida_adicional
type ResumenMaterial struct {
	IDMaterial          string          `json:"id_material"`
	NombreMaterial      string          `json:"nombre_material"`
	Unidad              string          `json:"unidad"`
	ConsumoReceta       decimal.Decimal `json:"consumo_receta"`
	CompensacionPerdida decimal.Decimal `json:"compensacion_perdida"`
	PerdidaAdicional    decimal.Decimal `json:"perdida_adicional"`
	DeduccionTotal      decimal.Decimal `json:"deduccion_total"`
	StockDisponible     decimal.Decimal `json:"stock_disponible"`
	Suficiente          bool            `json:"suficiente"`
}

// ResumenProduccion resumen consolidado previo a confirmar la producción
type ResumenProduccion struct {
	NombreProducto   string            `json:"nombre_producto"`
	Materiales       []ResumenMaterial `json:"materiales"`
	TodosSuficientes bool              `json:"todos_suficientes"`
}

// ProduccionFilter filtros para consultas del ledger de producción
type ProduccionFilter struct {
	IDReceta   *int       `json:"id_receta,omitempty"`
	FechaDesde *time.Time `json:"fecha_desde,omitempty"`
	FechaHasta *time.Time `json:"fecha_hasta,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}

// ProduccionDiariaPunto punto de la serie diaria para los gráficos
type ProduccionDiariaPunto struct {
	Fecha    string `json:"fecha"`
	Unidades int    `json:"unidades"`
	Perdidas int    `json:"perdidas"`
}

// ConsumoMaterialPunto total consumido por material en un rango de fechas
type ConsumoMaterialPunto struct {
	IDMaterial        string          `json:"id_material"`
	NombreMaterial    string          `json:"nombre_material"`
	Unidad            string          `json:"unidad"`
	CantidadConsumida decimal.Decimal `json:"cantidad_consumida"`
}
