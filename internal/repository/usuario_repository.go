package repository

import (
	"context"
	"database/sql"
	"fmt"

	"remold-service/internal/models"
)

// UsuarioRepository define la interfaz para usuarios del sistema
type UsuarioRepository interface {
	GetByUsuario(ctx context.Context, usuario string) (*models.Usuario, error)
	GetByID(ctx context.Context, id int) (*models.Usuario, error)
	Crear(ctx context.Context, usuario *models.Usuario) error
}

// usuarioRepository implementa UsuarioRepository
type usuarioRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewUsuarioRepository crea una nueva instancia del repository
func NewUsuarioRepository(db *sql.DB) (UsuarioRepository, error) {
	repo := &usuarioRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

func (r *usuarioRepository) prepareStatements() error {
	statements := map[string]string{
		"get_by_usuario": `
			SELECT id, usuario, nombre, password_hash, rol, activo, created_at, updated_at
			FROM usuarios
			WHERE usuario = $1 AND activo = true
		`,
		"get_by_id": `
			SELECT id, usuario, nombre, password_hash, rol, activo, created_at, updated_at
			FROM usuarios
			WHERE id = $1
		`,
		"create_usuario": `
			INSERT INTO usuarios (usuario, nombre, password_hash, rol, activo)
			VALUES ($1, $2, $3, $4, true)
			RETURNING id, created_at, updated_at
		`,
	}

	for name, query := range statements {
		stmt, err := r.db.Prepare(query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s: %w", name, err)
		}
		r.stmts[name] = stmt
	}

	return nil
}

func scanUsuario(row *sql.Row, u *models.Usuario) error {
	return row.Scan(&u.ID, &u.Usuario, &u.Nombre, &u.PasswordHash, &u.Rol,
		&u.Activo, &u.CreatedAt, &u.UpdatedAt)
}

// GetByUsuario obtiene un usuario activo por nombre de usuario
func (r *usuarioRepository) GetByUsuario(ctx context.Context, usuario string) (*models.Usuario, error) {
	var u models.Usuario
	err := scanUsuario(r.stmts["get_by_usuario"].QueryRowContext(ctx, usuario), &u)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get usuario: %w", err)
	}

	return &u, nil
}

// GetByID obtiene un usuario por id
func (r *usuarioRepository) GetByID(ctx context.Context, id int) (*models.Usuario, error) {
	var u models.Usuario
	err := scanUsuario(r.stmts["get_by_id"].QueryRowContext(ctx, id), &u)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get usuario: %w", err)
	}

	return &u, nil
}

// Crear registra un nuevo usuario
func (r *usuarioRepository) Crear(ctx context.Context, usuario *models.Usuario) error {
	err := r.stmts["create_usuario"].QueryRowContext(ctx,
		usuario.Usuario, usuario.Nombre, usuario.PasswordHash, usuario.Rol,
	).Scan(&usuario.ID, &usuario.CreatedAt, &usuario.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create usuario: %w", err)
	}

	return nil
}
