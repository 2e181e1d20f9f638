package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCostoPromedioPonderado(t *testing.T) {
	tests := []struct {
		name         string
		stockActual  string
		costoActual  string
		cantEntrada  string
		costoEntrada string
		esperado     string
	}{
		{
			name:        "promedio entre stock existente y entrada",
			stockActual: "10", costoActual: "100",
			cantEntrada: "10", costoEntrada: "200",
			esperado: "150",
		},
		{
			name:        "entrada sobre stock vacío toma el costo de entrada",
			stockActual: "0", costoActual: "0",
			cantEntrada: "5", costoEntrada: "80",
			esperado: "80",
		},
		{
			name:        "entrada pequeña mueve poco el promedio",
			stockActual: "90", costoActual: "10",
			cantEntrada: "10", costoEntrada: "20",
			esperado: "11",
		},
		{
			name:        "total cero devuelve cero",
			stockActual: "0", costoActual: "50",
			cantEntrada: "0", costoEntrada: "70",
			esperado: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resultado := CostoPromedioPonderado(
				decimal.RequireFromString(tt.stockActual),
				decimal.RequireFromString(tt.costoActual),
				decimal.RequireFromString(tt.cantEntrada),
				decimal.RequireFromString(tt.costoEntrada),
			)
			assert.True(t, decimal.RequireFromString(tt.esperado).Equal(resultado),
				"esperado %s, obtenido %s", tt.esperado, resultado)
		})
	}
}
