package services

import (
	"errors"
)

// Errores de negocio. Los handlers los mapean a códigos HTTP; todo lo
// demás sube envuelto como error de persistencia.
var (
	ErrNoEncontrado      = errors.New("registro no encontrado")
	ErrStockInsuficiente = errors.New("stock insuficiente")
	ErrVersionConflicto  = errors.New("la fila de stock fue modificada por otra operación")
	ErrRecetaArchivada   = errors.New("la receta está archivada")
	ErrRecetaEnUso       = errors.New("la receta tiene producciones registradas")
	ErrCredenciales      = errors.New("usuario o contraseña incorrectos")
)
