package models

import (
	"time"
)

// Tipos de evento del canal realtime
const (
	EventoStockActualizado     = "stock_actualizado"
	EventoProduccionRegistrada = "produccion_registrada"
	EventoProduccionEliminada  = "produccion_eliminada"
	EventoRecetaActualizada    = "receta_actualizada"
)

// Evento payload tipado enviado por websocket a los clientes suscritos
type Evento struct {
	Tipo      string      `json:"tipo"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NuevoEvento construye un evento con timestamp actual
func NuevoEvento(tipo string, payload interface{}) Evento {
	return Evento{
		Tipo:      tipo,
		Payload:   payload,
		Timestamp: time.Now(),
	}
}
