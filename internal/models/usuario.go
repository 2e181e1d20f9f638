package models

import (
	"time"
)

// Roles del sistema
const (
	RolOperador   = "operador"
	RolSupervisor = "supervisor"
	RolAdmin      = "admin"
)

// Usuario representa un usuario del sistema
type Usuario struct {
	ID           int       `json:"id" db:"id"`
	Usuario      string    `json:"usuario" db:"usuario"`
	Nombre       string    `json:"nombre" db:"nombre"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Rol          string    `json:"rol" db:"rol"`
	Activo       bool      `json:"activo" db:"activo"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// LoginRequest DTO para autenticación
type LoginRequest struct {
	Usuario  string `json:"usuario" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token + datos del usuario autenticado
type LoginResponse struct {
	Token   string   `json:"token"`
	Usuario *Usuario `json:"usuario"`
}

// RegistrarUsuarioRequest DTO para crear un usuario (solo admin)
type RegistrarUsuarioRequest struct {
	Usuario  string `json:"usuario" validate:"required,min=3"`
	Nombre   string `json:"nombre" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Rol      string `json:"rol" validate:"required,oneof=operador supervisor admin"`
}
