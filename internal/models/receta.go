package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Receta representa una receta de producción: qué materiales y en qué
// cantidad por unidad se necesitan para fabricar un producto
type Receta struct {
	ID             int              `json:"id" db:"id"`
	NombreProducto string           `json:"nombre_producto" db:"nombre_producto"`
	Archivada      bool             `json:"archivada" db:"archivada"`
	Materiales     []RecetaMaterial `json:"materiales"`
	CreatedAt      time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at" db:"updated_at"`
}

// RecetaMaterial representa la tabla receta_materiales
type RecetaMaterial struct {
	ID                int             `json:"id" db:"id"`
	IDReceta          int             `json:"id_receta" db:"id_receta"`
	IDMaterial        string          `json:"id_material" db:"id_material"`
	NombreMaterial    string          `json:"nombre_material" db:"nombre_material"`
	CantidadNecesaria decimal.Decimal `json:"cantidad_necesaria" db:"cantidad_necesaria"`
	Unidad            string          `json:"unidad" db:"unidad"`
}

// RecetaMaterialRequest un material dentro de una receta
type RecetaMaterialRequest struct {
	IDMaterial        string          `json:"id_material" validate:"required"`
	NombreMaterial    string          `json:"nombre_material" validate:"required"`
	CantidadNecesaria decimal.Decimal `json:"cantidad_necesaria" validate:"required"`
	Unidad            string          `json:"unidad" validate:"required"`
}

// CrearRecetaRequest DTO para registrar una receta
type CrearRecetaRequest struct {
	NombreProducto string                  `json:"nombre_producto" validate:"required"`
	Materiales     []RecetaMaterialRequest `json:"materiales" validate:"required,min=1,dive"`
}

// ActualizarRecetaRequest DTO para modificar una receta existente.
// Los registros de producción guardan su propio snapshot de consumo,
// así que editar la receta nunca reescribe el historial.
type ActualizarRecetaRequest struct {
	NombreProducto string                  `json:"nombre_producto" validate:"required"`
	Materiales     []RecetaMaterialRequest `json:"materiales" validate:"required,min=1,dive"`
}
