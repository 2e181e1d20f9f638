package repository

import (
	"context"
	"database/sql"
	"fmt"

	"remold-service/internal/models"

	"github.com/lib/pq"
)

// RecetaRepository define la interfaz para recetas de producción
type RecetaRepository interface {
	Crear(ctx context.Context, receta *models.Receta) error
	GetByID(ctx context.Context, id int) (*models.Receta, error)
	List(ctx context.Context, incluirArchivadas bool) ([]*models.Receta, error)
	Actualizar(ctx context.Context, receta *models.Receta) error
	SetArchivada(ctx context.Context, id int, archivada bool) error
	Eliminar(ctx context.Context, id int) error
	ContarActivas(ctx context.Context) (int, error)
}

// recetaRepository implementa RecetaRepository
type recetaRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewRecetaRepository crea una nueva instancia del repository
func NewRecetaRepository(db *sql.DB) (RecetaRepository, error) {
	repo := &recetaRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

func (r *recetaRepository) prepareStatements() error {
	statements := map[string]string{
		"create_receta": `
			INSERT INTO recetas (nombre_producto, archivada)
			VALUES ($1, false)
			RETURNING id, created_at, updated_at
		`,
		"create_material": `
			INSERT INTO receta_materiales
			(id_receta, id_material, nombre_material, cantidad_necesaria, unidad)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`,
		"get_receta": `
			SELECT id, nombre_producto, archivada, created_at, updated_at
			FROM recetas
			WHERE id = $1
		`,
		"get_materiales": `
			SELECT id, id_receta, id_material, nombre_material, cantidad_necesaria, unidad
			FROM receta_materiales
			WHERE id_receta = $1
			ORDER BY id
		`,
		"update_receta": `
			UPDATE recetas
			SET nombre_producto = $1, updated_at = NOW()
			WHERE id = $2
		`,
		"delete_materiales": `
			DELETE FROM receta_materiales WHERE id_receta = $1
		`,
		"set_archivada": `
			UPDATE recetas
			SET archivada = $1, updated_at = NOW()
			WHERE id = $2
		`,
		"delete_receta": `
			DELETE FROM recetas WHERE id = $1
		`,
		"contar_activas": `
			SELECT COUNT(*) FROM recetas WHERE archivada = false
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

// Crear inserta la receta con sus materiales en una transacción
func (r *recetaRepository) Crear(ctx context.Context, receta *models.Receta) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.StmtContext(ctx, r.stmts["create_receta"]).QueryRowContext(ctx,
		receta.NombreProducto,
	).Scan(&receta.ID, &receta.CreatedAt, &receta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create receta: %w", err)
	}

	if err := r.insertarMateriales(ctx, tx, receta); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *recetaRepository) insertarMateriales(ctx context.Context, tx *sql.Tx, receta *models.Receta) error {
	for i := range receta.Materiales {
		material := &receta.Materiales[i]
		material.IDReceta = receta.ID
		err := tx.StmtContext(ctx, r.stmts["create_material"]).QueryRowContext(ctx,
			receta.ID, material.IDMaterial, material.NombreMaterial,
			material.CantidadNecesaria, material.Unidad,
		).Scan(&material.ID)
		if err != nil {
			return fmt.Errorf("failed to create material %s: %w", material.IDMaterial, err)
		}
	}
	return nil
}

// GetByID obtiene una receta con sus materiales
func (r *recetaRepository) GetByID(ctx context.Context, id int) (*models.Receta, error) {
	var receta models.Receta
	err := r.stmts["get_receta"].QueryRowContext(ctx, id).Scan(
		&receta.ID, &receta.NombreProducto, &receta.Archivada,
		&receta.CreatedAt, &receta.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get receta: %w", err)
	}

	rows, err := r.stmts["get_materiales"].QueryContext(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get materiales: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var material models.RecetaMaterial
		err := rows.Scan(&material.ID, &material.IDReceta, &material.IDMaterial,
			&material.NombreMaterial, &material.CantidadNecesaria, &material.Unidad)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		receta.Materiales = append(receta.Materiales, material)
	}

	return &receta, rows.Err()
}

// List obtiene las recetas, por defecto solo las activas
func (r *recetaRepository) List(ctx context.Context, incluirArchivadas bool) ([]*models.Receta, error) {
	query := `
		SELECT id, nombre_producto, archivada, created_at, updated_at
		FROM recetas`
	if !incluirArchivadas {
		query += ` WHERE archivada = false`
	}
	query += ` ORDER BY nombre_producto`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list recetas: %w", err)
	}
	defer rows.Close()

	var recetas []*models.Receta
	var ids []int64
	byID := make(map[int]*models.Receta)

	for rows.Next() {
		var receta models.Receta
		err := rows.Scan(&receta.ID, &receta.NombreProducto, &receta.Archivada,
			&receta.CreatedAt, &receta.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan receta: %w", err)
		}
		recetas = append(recetas, &receta)
		ids = append(ids, int64(receta.ID))
		byID[receta.ID] = &receta
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return recetas, nil
	}

	materiales, err := r.db.QueryContext(ctx, `
		SELECT id, id_receta, id_material, nombre_material, cantidad_necesaria, unidad
		FROM receta_materiales
		WHERE id_receta = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list materiales: %w", err)
	}
	defer materiales.Close()

	for materiales.Next() {
		var material models.RecetaMaterial
		err := materiales.Scan(&material.ID, &material.IDReceta, &material.IDMaterial,
			&material.NombreMaterial, &material.CantidadNecesaria, &material.Unidad)
		if err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		if receta, ok := byID[material.IDReceta]; ok {
			receta.Materiales = append(receta.Materiales, material)
		}
	}

	return recetas, materiales.Err()
}

// Actualizar reemplaza nombre y materiales de la receta.
// El historial de producción no se toca: cada registro guarda su snapshot.
func (r *recetaRepository) Actualizar(ctx context.Context, receta *models.Receta) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.StmtContext(ctx, r.stmts["update_receta"]).ExecContext(ctx,
		receta.NombreProducto, receta.ID)
	if err != nil {
		return fmt.Errorf("failed to update receta: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no receta found with id %d", receta.ID)
	}

	if _, err := tx.StmtContext(ctx, r.stmts["delete_materiales"]).ExecContext(ctx, receta.ID); err != nil {
		return fmt.Errorf("failed to delete materiales: %w", err)
	}

	if err := r.insertarMateriales(ctx, tx, receta); err != nil {
		return err
	}

	return tx.Commit()
}

// SetArchivada archiva o desarchiva una receta
func (r *recetaRepository) SetArchivada(ctx context.Context, id int, archivada bool) error {
	result, err := r.stmts["set_archivada"].ExecContext(ctx, archivada, id)
	if err != nil {
		return fmt.Errorf("failed to set archivada: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no receta found with id %d", id)
	}

	return nil
}

// Eliminar borra la receta; los materiales caen por ON DELETE CASCADE
func (r *recetaRepository) Eliminar(ctx context.Context, id int) error {
	result, err := r.stmts["delete_receta"].ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete receta: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no receta found with id %d", id)
	}

	return nil
}

// ContarActivas cuenta las recetas no archivadas
func (r *recetaRepository) ContarActivas(ctx context.Context) (int, error) {
	var count int
	err := r.stmts["contar_activas"].QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count recetas: %w", err)
	}
	return count, nil
}
