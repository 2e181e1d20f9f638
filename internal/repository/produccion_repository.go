package repository

import (
	"context"
	"database/sql"
	"fmt"

	"remold-service/internal/models"

	"github.com/lib/pq"
)

// ProduccionRepository define la interfaz para el ledger de producción
type ProduccionRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)

	Crear(ctx context.Context, tx *sql.Tx, produccion *models.Produccion) error
	GetByID(ctx context.Context, id int) (*models.Produccion, error)
	List(ctx context.Context, filter *models.ProduccionFilter) ([]*models.Produccion, error)
	Eliminar(ctx context.Context, tx *sql.Tx, id int) error
	ExistePorReceta(ctx context.Context, idReceta int) (bool, error)

	// Agregados para el dashboard
	Contar(ctx context.Context) (int, error)
	UnidadesEnRango(ctx context.Context, desde, hasta string) (unidades, perdidas int, err error)
	SerieDiaria(ctx context.Context, dias int) ([]*models.ProduccionDiariaPunto, error)
	ConsumoMateriales(ctx context.Context, dias int) ([]*models.ConsumoMaterialPunto, error)
}

// produccionRepository implementa ProduccionRepository
type produccionRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewProduccionRepository crea una nueva instancia del repository
func NewProduccionRepository(db *sql.DB) (ProduccionRepository, error) {
	repo := &produccionRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

func (r *produccionRepository) prepareStatements() error {
	statements := map[string]string{
		"create_produccion": `
			INSERT INTO producciones
			(id_receta, nombre_producto, cantidad_producida, perdida_produccion,
			 fecha_produccion, id_usuario)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, created_at
		`,
		"create_consumo": `
			INSERT INTO produccion_consumos
			(id_produccion, id_material, nombre_material, cantidad_consumida, unidad)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`,
		"create_perdida": `
			INSERT INTO produccion_perdidas
			(id_produccion, id_material, nombre_material, cantidad_perdida, unidad)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		`,
		"get_produccion": `
			SELECT id, id_receta, nombre_producto, cantidad_producida,
			       perdida_produccion, fecha_produccion, id_usuario, created_at
			FROM producciones
			WHERE id = $1
		`,
		"get_consumos": `
			SELECT id, id_produccion, id_material, nombre_material, cantidad_consumida, unidad
			FROM produccion_consumos
			WHERE id_produccion = $1
			ORDER BY id
		`,
		"get_perdidas": `
			SELECT id, id_produccion, id_material, nombre_material, cantidad_perdida, unidad
			FROM produccion_perdidas
			WHERE id_produccion = $1
			ORDER BY id
		`,
		"delete_produccion": `
			DELETE FROM producciones WHERE id = $1
		`,
		"existe_por_receta": `
			SELECT EXISTS(SELECT 1 FROM producciones WHERE id_receta = $1)
		`,
		"contar": `
			SELECT COUNT(*) FROM producciones
		`,
		"unidades_en_rango": `
			SELECT COALESCE(SUM(cantidad_producida), 0), COALESCE(SUM(perdida_produccion), 0)
			FROM producciones
			WHERE fecha_produccion >= $1 AND fecha_produccion <= $2
		`,
		"serie_diaria": `
			SELECT to_char(fecha_produccion, 'YYYY-MM-DD') AS fecha,
			       COALESCE(SUM(cantidad_producida), 0),
			       COALESCE(SUM(perdida_produccion), 0)
			FROM producciones
			WHERE fecha_produccion >= CURRENT_DATE - $1::int
			GROUP BY fecha_produccion
			ORDER BY fecha_produccion
		`,
		"consumo_materiales": `
			SELECT c.id_material, c.nombre_material, c.unidad,
			       COALESCE(SUM(c.cantidad_consumida), 0)
			FROM produccion_consumos c
			JOIN producciones p ON p.id = c.id_produccion
			WHERE p.fecha_produccion >= CURRENT_DATE - $1::int
			GROUP BY c.id_material, c.nombre_material, c.unidad
			ORDER BY 4 DESC
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

func (r *produccionRepository) stmt(ctx context.Context, tx *sql.Tx, name string) *sql.Stmt {
	if tx != nil {
		return tx.StmtContext(ctx, r.stmts[name])
	}
	return r.stmts[name]
}

// BeginTx abre una transacción sobre el pool compartido
func (r *produccionRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

// Crear inserta el registro de producción con sus snapshots de consumo y
// pérdidas adicionales. El consumo guardado es solo la porción de receta,
// para trazabilidad; las deducciones por pérdida van aparte.
func (r *produccionRepository) Crear(ctx context.Context, tx *sql.Tx, produccion *models.Produccion) error {
	err := r.stmt(ctx, tx, "create_produccion").QueryRowContext(ctx,
		produccion.IDReceta, produccion.NombreProducto, produccion.CantidadProducida,
		produccion.PerdidaProduccion, produccion.FechaProduccion, produccion.IDUsuario,
	).Scan(&produccion.ID, &produccion.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create produccion: %w", err)
	}

	for i := range produccion.MaterialesConsumidos {
		consumo := &produccion.MaterialesConsumidos[i]
		consumo.IDProduccion = produccion.ID
		err := r.stmt(ctx, tx, "create_consumo").QueryRowContext(ctx,
			produccion.ID, consumo.IDMaterial, consumo.NombreMaterial,
			consumo.CantidadConsumida, consumo.Unidad,
		).Scan(&consumo.ID)
		if err != nil {
			return fmt.Errorf("failed to create consumo %s: %w", consumo.IDMaterial, err)
		}
	}

	for i := range produccion.PerdidasMaterial {
		perdida := &produccion.PerdidasMaterial[i]
		perdida.IDProduccion = produccion.ID
		err := r.stmt(ctx, tx, "create_perdida").QueryRowContext(ctx,
			produccion.ID, perdida.IDMaterial, perdida.NombreMaterial,
			perdida.CantidadPerdida, perdida.Unidad,
		).Scan(&perdida.ID)
		if err != nil {
			return fmt.Errorf("failed to create perdida %s: %w", perdida.IDMaterial, err)
		}
	}

	return nil
}

// GetByID obtiene un registro de producción con consumos y pérdidas
func (r *produccionRepository) GetByID(ctx context.Context, id int) (*models.Produccion, error) {
	var p models.Produccion
	err := r.stmts["get_produccion"].QueryRowContext(ctx, id).Scan(
		&p.ID, &p.IDReceta, &p.NombreProducto, &p.CantidadProducida,
		&p.PerdidaProduccion, &p.FechaProduccion, &p.IDUsuario, &p.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get produccion: %w", err)
	}

	if err := r.cargarDetalle(ctx, &p); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *produccionRepository) cargarDetalle(ctx context.Context, p *models.Produccion) error {
	rows, err := r.stmts["get_consumos"].QueryContext(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to get consumos: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.ProduccionConsumo
		err := rows.Scan(&c.ID, &c.IDProduccion, &c.IDMaterial, &c.NombreMaterial,
			&c.CantidadConsumida, &c.Unidad)
		if err != nil {
			return fmt.Errorf("failed to scan consumo: %w", err)
		}
		p.MaterialesConsumidos = append(p.MaterialesConsumidos, c)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	perdidas, err := r.stmts["get_perdidas"].QueryContext(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("failed to get perdidas: %w", err)
	}
	defer perdidas.Close()

	for perdidas.Next() {
		var perdida models.ProduccionPerdida
		err := perdidas.Scan(&perdida.ID, &perdida.IDProduccion, &perdida.IDMaterial,
			&perdida.NombreMaterial, &perdida.CantidadPerdida, &perdida.Unidad)
		if err != nil {
			return fmt.Errorf("failed to scan perdida: %w", err)
		}
		p.PerdidasMaterial = append(p.PerdidasMaterial, perdida)
	}

	return perdidas.Err()
}

// List obtiene registros de producción con filtros dinámicos
func (r *produccionRepository) List(ctx context.Context, filter *models.ProduccionFilter) ([]*models.Produccion, error) {
	query := `
		SELECT id, id_receta, nombre_producto, cantidad_producida,
		       perdida_produccion, fecha_produccion, id_usuario, created_at
		FROM producciones
		WHERE 1=1`
	args := []interface{}{}

	if filter.IDReceta != nil {
		args = append(args, *filter.IDReceta)
		query += fmt.Sprintf(" AND id_receta = $%d", len(args))
	}
	if filter.FechaDesde != nil {
		args = append(args, *filter.FechaDesde)
		query += fmt.Sprintf(" AND fecha_produccion >= $%d", len(args))
	}
	if filter.FechaHasta != nil {
		args = append(args, *filter.FechaHasta)
		query += fmt.Sprintf(" AND fecha_produccion <= $%d", len(args))
	}

	query += " ORDER BY fecha_produccion DESC, id DESC"

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list producciones: %w", err)
	}
	defer rows.Close()

	var producciones []*models.Produccion
	var ids []int64
	byID := make(map[int]*models.Produccion)

	for rows.Next() {
		var p models.Produccion
		err := rows.Scan(&p.ID, &p.IDReceta, &p.NombreProducto, &p.CantidadProducida,
			&p.PerdidaProduccion, &p.FechaProduccion, &p.IDUsuario, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan produccion: %w", err)
		}
		producciones = append(producciones, &p)
		ids = append(ids, int64(p.ID))
		byID[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return producciones, nil
	}

	// Cargar consumos de toda la página en una sola consulta
	consumos, err := r.db.QueryContext(ctx, `
		SELECT id, id_produccion, id_material, nombre_material, cantidad_consumida, unidad
		FROM produccion_consumos
		WHERE id_produccion = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list consumos: %w", err)
	}
	defer consumos.Close()

	for consumos.Next() {
		var c models.ProduccionConsumo
		err := consumos.Scan(&c.ID, &c.IDProduccion, &c.IDMaterial, &c.NombreMaterial,
			&c.CantidadConsumida, &c.Unidad)
		if err != nil {
			return nil, fmt.Errorf("failed to scan consumo: %w", err)
		}
		if p, ok := byID[c.IDProduccion]; ok {
			p.MaterialesConsumidos = append(p.MaterialesConsumidos, c)
		}
	}
	if err := consumos.Err(); err != nil {
		return nil, err
	}

	perdidas, err := r.db.QueryContext(ctx, `
		SELECT id, id_produccion, id_material, nombre_material, cantidad_perdida, unidad
		FROM produccion_perdidas
		WHERE id_produccion = ANY($1)
		ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to list perdidas: %w", err)
	}
	defer perdidas.Close()

	for perdidas.Next() {
		var perdida models.ProduccionPerdida
		err := perdidas.Scan(&perdida.ID, &perdida.IDProduccion, &perdida.IDMaterial,
			&perdida.NombreMaterial, &perdida.CantidadPerdida, &perdida.Unidad)
		if err != nil {
			return nil, fmt.Errorf("failed to scan perdida: %w", err)
		}
		if p, ok := byID[perdida.IDProduccion]; ok {
			p.PerdidasMaterial = append(p.PerdidasMaterial, perdida)
		}
	}

	return producciones, perdidas.Err()
}

// Eliminar borra el registro de producción; consumos y pérdidas caen
// por ON DELETE CASCADE
func (r *produccionRepository) Eliminar(ctx context.Context, tx *sql.Tx, id int) error {
	result, err := r.stmt(ctx, tx, "delete_produccion").ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete produccion: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no produccion found with id %d", id)
	}

	return nil
}

// ExistePorReceta indica si alguna producción referencia la receta
func (r *produccionRepository) ExistePorReceta(ctx context.Context, idReceta int) (bool, error) {
	var existe bool
	err := r.stmts["existe_por_receta"].QueryRowContext(ctx, idReceta).Scan(&existe)
	if err != nil {
		return false, fmt.Errorf("failed to check producciones por receta: %w", err)
	}
	return existe, nil
}

// Contar cuenta los registros de producción
func (r *produccionRepository) Contar(ctx context.Context) (int, error) {
	var count int
	err := r.stmts["contar"].QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count producciones: %w", err)
	}
	return count, nil
}

// UnidadesEnRango suma unidades y pérdidas entre dos fechas (inclusive)
func (r *produccionRepository) UnidadesEnRango(ctx context.Context, desde, hasta string) (int, int, error) {
	var unidades, perdidas int
	err := r.stmts["unidades_en_rango"].QueryRowContext(ctx, desde, hasta).Scan(&unidades, &perdidas)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to get unidades en rango: %w", err)
	}
	return unidades, perdidas, nil
}

// SerieDiaria obtiene la serie de producción por día para los gráficos
func (r *produccionRepository) SerieDiaria(ctx context.Context, dias int) ([]*models.ProduccionDiariaPunto, error) {
	rows, err := r.stmts["serie_diaria"].QueryContext(ctx, dias)
	if err != nil {
		return nil, fmt.Errorf("failed to get serie diaria: %w", err)
	}
	defer rows.Close()

	var puntos []*models.ProduccionDiariaPunto
	for rows.Next() {
		var punto models.ProduccionDiariaPunto
		if err := rows.Scan(&punto.Fecha, &punto.Unidades, &punto.Perdidas); err != nil {
			return nil, fmt.Errorf("failed to scan serie diaria: %w", err)
		}
		puntos = append(puntos, &punto)
	}

	return puntos, rows.Err()
}

// ConsumoMateriales obtiene el total consumido por material en el rango
func (r *produccionRepository) ConsumoMateriales(ctx context.Context, dias int) ([]*models.ConsumoMaterialPunto, error) {
	rows, err := r.stmts["consumo_materiales"].QueryContext(ctx, dias)
	if err != nil {
		return nil, fmt.Errorf("failed to get consumo materiales: %w", err)
	}
	defer rows.Close()

	var puntos []*models.ConsumoMaterialPunto
	for rows.Next() {
		var punto models.ConsumoMaterialPunto
		err := rows.Scan(&punto.IDMaterial, &punto.NombreMaterial, &punto.Unidad, &punto.CantidadConsumida)
		if err != nil {
			return nil, fmt.Errorf("failed to scan consumo material: %w", err)
		}
		puntos = append(puntos, &punto)
	}

	return puntos, rows.Err()
}
