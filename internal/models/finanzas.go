package models

import (
	"github.com/shopspring/decimal"
)

// Claves conocidas de configuración financiera
const (
	ClaveMargenObjetivo    = "margen_objetivo"
	ClaveCostoManoObraHora = "costo_mano_obra_hora"
	ClaveCostosIndirectos  = "costos_indirectos"
	ClaveMoneda            = "moneda"
)

// ConfiguracionFinanciera parámetros financieros del negocio.
// Reemplaza los settings globales en localStorage del front-end: una
// tabla clave/valor accedida por inyección de dependencias.
type ConfiguracionFinanciera struct {
	MargenObjetivo    decimal.Decimal `json:"margen_objetivo"`      // porcentaje, ej: 35
	CostoManoObraHora decimal.Decimal `json:"costo_mano_obra_hora"` // por unidad producida
	CostosIndirectos  decimal.Decimal `json:"costos_indirectos"`    // por unidad producida
	Moneda            string          `json:"moneda"`
}

// ActualizarConfiguracionRequest upsert parcial de configuración
type ActualizarConfiguracionRequest struct {
	MargenObjetivo    *decimal.Decimal `json:"margen_objetivo,omitempty"`
	CostoManoObraHora *decimal.Decimal `json:"costo_mano_obra_hora,omitempty"`
	CostosIndirectos  *decimal.Decimal `json:"costos_indirectos,omitempty"`
	Moneda            *string          `json:"moneda,omitempty"`
}

// CostoMaterial detalle del costo de un material dentro de una receta
type CostoMaterial struct {
	IDMaterial        string          `json:"id_material"`
	NombreMaterial    string          `json:"nombre_material"`
	Unidad            string          `json:"unidad"`
	CantidadNecesaria decimal.Decimal `json:"cantidad_necesaria"`
	CostoUnitario     decimal.Decimal `json:"costo_unitario"`
	Subtotal          decimal.Decimal `json:"subtotal"`
}

// CostoReceta costo por unidad de una receta a costos promedio actuales
type CostoReceta struct {
	IDReceta         int             `json:"id_receta"`
	NombreProducto   string          `json:"nombre_producto"`
	Moneda           string          `json:"moneda"`
	Detalle          []CostoMaterial `json:"detalle"`
	CostoMateriales  decimal.Decimal `json:"costo_materiales"`
	CostoManoObra    decimal.Decimal `json:"costo_mano_obra"`
	CostosIndirectos decimal.Decimal `json:"costos_indirectos"`
	CostoTotal       decimal.Decimal `json:"costo_total"`
	PrecioSugerido   decimal.Decimal `json:"precio_sugerido"`
}
