package services

import (
	"github.com/shopspring/decimal"
)

// CostoPromedioPonderado recalcula el costo unitario al ingresar stock
// con precio:
//
//	NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostoPromedioPonderado(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	total := stockActual.Add(cantEntrada)
	if total.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	valor := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return valor.Div(total)
}
