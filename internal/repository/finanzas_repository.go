package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// FinanzasRepository almacén clave/valor de configuración financiera.
// Reemplaza los settings globales del front-end (localStorage) por una
// tabla consultada vía inyección de dependencias.
type FinanzasRepository interface {
	Get(ctx context.Context, clave string) (json.RawMessage, error)
	GetTodas(ctx context.Context) (map[string]json.RawMessage, error)
	Set(ctx context.Context, clave string, valor json.RawMessage) error
}

// finanzasRepository implementa FinanzasRepository
type finanzasRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewFinanzasRepository crea una nueva instancia del repository
func NewFinanzasRepository(db *sql.DB) (FinanzasRepository, error) {
	repo := &finanzasRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

func (r *finanzasRepository) prepareStatements() error {
	statements := map[string]string{
		"get": `
			SELECT valor FROM configuracion_financiera WHERE clave = $1
		`,
		"get_todas": `
			SELECT clave, valor FROM configuracion_financiera
		`,
		"set": `
			INSERT INTO configuracion_financiera (clave, valor)
			VALUES ($1, $2)
			ON CONFLICT (clave) DO UPDATE SET valor = EXCLUDED.valor, updated_at = NOW()
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

// Get obtiene el valor de una clave; nil si no existe
func (r *finanzasRepository) Get(ctx context.Context, clave string) (json.RawMessage, error) {
	var valor []byte
	err := r.stmts["get"].QueryRowContext(ctx, clave).Scan(&valor)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get configuracion %s: %w", clave, err)
	}

	return json.RawMessage(valor), nil
}

// GetTodas obtiene toda la configuración como mapa clave/valor
func (r *finanzasRepository) GetTodas(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := r.stmts["get_todas"].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get configuracion: %w", err)
	}
	defer rows.Close()

	valores := make(map[string]json.RawMessage)
	for rows.Next() {
		var clave string
		var valor []byte
		if err := rows.Scan(&clave, &valor); err != nil {
			return nil, fmt.Errorf("failed to scan configuracion: %w", err)
		}
		valores[clave] = json.RawMessage(valor)
	}

	return valores, rows.Err()
}

// Set inserta o actualiza el valor de una clave
func (r *finanzasRepository) Set(ctx context.Context, clave string, valor json.RawMessage) error {
	if _, err := r.stmts["set"].ExecContext(ctx, clave, []byte(valor)); err != nil {
		return fmt.Errorf("failed to set configuracion %s: %w", clave, err)
	}
	return nil
}
