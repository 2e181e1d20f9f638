package models

import (
	"github.com/shopspring/decimal"
)

// DashboardResumen contadores principales del panel
type DashboardResumen struct {
	UnidadesHoy        int             `json:"unidades_hoy"`
	UnidadesMes        int             `json:"unidades_mes"`
	PerdidasMes        int             `json:"perdidas_mes"`
	ValorMateriales    decimal.Decimal `json:"valor_materiales"`
	ValorProductos     decimal.Decimal `json:"valor_productos"`
	ItemsBajoMinimo    int             `json:"items_bajo_minimo"`
	RecetasActivas     int             `json:"recetas_activas"`
	ProduccionesTotal  int             `json:"producciones_total"`
}

// ValorizacionItem valor de inventario de un item para los gráficos
type ValorizacionItem struct {
	ItemID     string          `json:"item_id"`
	NombreItem string          `json:"nombre_item"`
	TipoItem   string          `json:"tipo_item"`
	Cantidad   decimal.Decimal `json:"cantidad"`
	ValorTotal decimal.Decimal `json:"valor_total"`
}
