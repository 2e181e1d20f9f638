package repository

import (
	"context"
	"database/sql"
	"fmt"

	"remold-service/internal/models"

	"github.com/shopspring/decimal"
)

// StockRepository define la interfaz para operaciones de stock.
// Los métodos que reciben tx participan en la transacción dada; con tx nil
// ejecutan directo sobre el pool.
type StockRepository interface {
	BeginTx(ctx context.Context) (*sql.Tx, error)

	// Operaciones sobre filas de stock
	GetByItem(ctx context.Context, tx *sql.Tx, itemID, tipoItem string) (*models.Stock, error)
	GetByNombre(ctx context.Context, tx *sql.Tx, nombreItem, tipoItem string) (*models.Stock, error)
	Create(ctx context.Context, tx *sql.Tx, stock *models.Stock) error
	UpdateConVersion(ctx context.Context, tx *sql.Tx, stock *models.Stock) (bool, error)
	ActualizarMinimo(ctx context.Context, itemID, tipoItem string, minimo decimal.Decimal) error

	// Consultas
	List(ctx context.Context, tipoItem string) ([]*models.Stock, error)
	ListBajoMinimo(ctx context.Context) ([]*models.Stock, error)

	// Historial de movimientos
	CrearMovimiento(ctx context.Context, tx *sql.Tx, mov *models.StockMovimiento) error
	ListMovimientos(ctx context.Context, filter *models.StockMovimientoFilter) ([]*models.StockMovimiento, error)

	// Agregados para el dashboard
	ValorPorTipo(ctx context.Context, tipoItem string) (decimal.Decimal, error)
	ContarBajoMinimo(ctx context.Context) (int, error)
	Valorizacion(ctx context.Context) ([]*models.ValorizacionItem, error)
}

// stockRepository implementa StockRepository
type stockRepository struct {
	db    *sql.DB
	stmts map[string]*sql.Stmt
}

// NewStockRepository crea una nueva instancia del repository
func NewStockRepository(db *sql.DB) (StockRepository, error) {
	repo := &stockRepository{
		db:    db,
		stmts: make(map[string]*sql.Stmt),
	}

	if err := repo.prepareStatements(); err != nil {
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	return repo, nil
}

const stockColumns = `id, item_id, nombre_item, tipo_item, unidad, cantidad,
	   costo_unitario, valor_total, cantidad_minima, version, created_at, updated_at`

// prepareStatements prepara todas las consultas SQL para mejor rendimiento
func (r *stockRepository) prepareStatements() error {
	statements := map[string]string{
		"get_by_item": `
			SELECT ` + stockColumns + `
			FROM stock
			WHERE item_id = $1 AND tipo_item = $2
		`,
		"get_by_nombre": `
			SELECT ` + stockColumns + `
			FROM stock
			WHERE nombre_item = $1 AND tipo_item = $2
		`,
		"create_stock": `
			INSERT INTO stock
			(item_id, nombre_item, tipo_item, unidad, cantidad, costo_unitario,
			 valor_total, cantidad_minima, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)
			RETURNING id, version, created_at, updated_at
		`,
		"update_con_version": `
			UPDATE stock
			SET cantidad = $1, costo_unitario = $2, valor_total = $3,
			    cantidad_minima = $4, version = version + 1, updated_at = NOW()
			WHERE id = $5 AND version = $6
		`,
		"actualizar_minimo": `
			UPDATE stock
			SET cantidad_minima = $1, updated_at = NOW()
			WHERE item_id = $2 AND tipo_item = $3
		`,
		"list_all": `
			SELECT ` + stockColumns + `
			FROM stock
			ORDER BY tipo_item, nombre_item
		`,
		"list_by_tipo": `
			SELECT ` + stockColumns + `
			FROM stock
			WHERE tipo_item = $1
			ORDER BY nombre_item
		`,
		"list_bajo_minimo": `
			SELECT ` + stockColumns + `
			FROM stock
			WHERE cantidad_minima > 0 AND cantidad <= cantidad_minima
			ORDER BY cantidad ASC
		`,
		"create_movimiento": `
			INSERT INTO stock_movimientos
			(item_id, nombre_item, tipo_item, tipo_movimiento, cantidad,
			 cantidad_anterior, cantidad_nueva, motivo, id_usuario)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at
		`,
		"valor_por_tipo": `
			SELECT COALESCE(SUM(valor_total), 0)
			FROM stock
			WHERE tipo_item = $1
		`,
		"contar_bajo_minimo": `
			SELECT COUNT(*)
			FROM stock
			WHERE cantidad_minima > 0 AND cantidad <= cantidad_minima
		`,
		"valorizacion": `
			SELECT item_id, nombre_item, tipo_item, cantidad, valor_total
			FROM stock
			ORDER BY valor_total DESC
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

// stmt retorna el statement preparado, asociado a la transacción si existe
func (r *stockRepository) stmt(ctx context.Context, tx *sql.Tx, name string) *sql.Stmt {
	if tx != nil {
		return tx.StmtContext(ctx, r.stmts[name])
	}
	return r.stmts[name]
}

// BeginTx abre una transacción sobre el pool compartido
func (r *stockRepository) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return r.db.BeginTx(ctx, nil)
}

func scanStock(row interface{ Scan(...interface{}) error }, stock *models.Stock) error {
	return row.Scan(
		&stock.ID, &stock.ItemID, &stock.NombreItem, &stock.TipoItem, &stock.Unidad,
		&stock.Cantidad, &stock.CostoUnitario, &stock.ValorTotal, &stock.CantidadMinima,
		&stock.Version, &stock.CreatedAt, &stock.UpdatedAt,
	)
}

// GetByItem obtiene la fila de stock de un item específico
func (r *stockRepository) GetByItem(ctx context.Context, tx *sql.Tx, itemID, tipoItem string) (*models.Stock, error) {
	var stock models.Stock
	err := scanStock(r.stmt(ctx, tx, "get_by_item").QueryRowContext(ctx, itemID, tipoItem), &stock)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock: %w", err)
	}

	return &stock, nil
}

// GetByNombre busca la fila de stock por nombre de item. El flujo de
// producción ubica el producto terminado por nombre, no por id.
func (r *stockRepository) GetByNombre(ctx context.Context, tx *sql.Tx, nombreItem, tipoItem string) (*models.Stock, error) {
	var stock models.Stock
	err := scanStock(r.stmt(ctx, tx, "get_by_nombre").QueryRowContext(ctx, nombreItem, tipoItem), &stock)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stock by nombre: %w", err)
	}

	return &stock, nil
}

// Create crea una nueva fila de stock con version inicial 1
func (r *stockRepository) Create(ctx context.Context, tx *sql.Tx, stock *models.Stock) error {
	err := r.stmt(ctx, tx, "create_stock").QueryRowContext(ctx,
		stock.ItemID, stock.NombreItem, stock.TipoItem, stock.Unidad,
		stock.Cantidad, stock.CostoUnitario, stock.ValorTotal, stock.CantidadMinima,
	).Scan(&stock.ID, &stock.Version, &stock.CreatedAt, &stock.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create stock: %w", err)
	}

	return nil
}

// UpdateConVersion aplica la actualización solo si la versión coincide.
// Retorna false cuando otro escritor modificó la fila entremedio.
func (r *stockRepository) UpdateConVersion(ctx context.Context, tx *sql.Tx, stock *models.Stock) (bool, error) {
	result, err := r.stmt(ctx, tx, "update_con_version").ExecContext(ctx,
		stock.Cantidad, stock.CostoUnitario, stock.ValorTotal,
		stock.CantidadMinima, stock.ID, stock.Version,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return false, nil
	}

	stock.Version++
	return true, nil
}

// ActualizarMinimo cambia el nivel mínimo de un item
func (r *stockRepository) ActualizarMinimo(ctx context.Context, itemID, tipoItem string, minimo decimal.Decimal) error {
	result, err := r.stmts["actualizar_minimo"].ExecContext(ctx, minimo, itemID, tipoItem)
	if err != nil {
		return fmt.Errorf("failed to update cantidad minima: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no stock record found for item %s (%s)", itemID, tipoItem)
	}

	return nil
}

// List obtiene el stock completo, opcionalmente filtrado por tipo
func (r *stockRepository) List(ctx context.Context, tipoItem string) ([]*models.Stock, error) {
	var rows *sql.Rows
	var err error

	if tipoItem == "" {
		rows, err = r.stmts["list_all"].QueryContext(ctx)
	} else {
		rows, err = r.stmts["list_by_tipo"].QueryContext(ctx, tipoItem)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list stock: %w", err)
	}
	defer rows.Close()

	var stocks []*models.Stock
	for rows.Next() {
		var stock models.Stock
		if err := scanStock(rows, &stock); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, &stock)
	}

	return stocks, rows.Err()
}

// ListBajoMinimo obtiene items con cantidad en o bajo el mínimo
func (r *stockRepository) ListBajoMinimo(ctx context.Context) ([]*models.Stock, error) {
	rows, err := r.stmts["list_bajo_minimo"].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock bajo minimo: %w", err)
	}
	defer rows.Close()

	var stocks []*models.Stock
	for rows.Next() {
		var stock models.Stock
		if err := scanStock(rows, &stock); err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, &stock)
	}

	return stocks, rows.Err()
}

// CrearMovimiento registra un movimiento en el historial
func (r *stockRepository) CrearMovimiento(ctx context.Context, tx *sql.Tx, mov *models.StockMovimiento) error {
	err := r.stmt(ctx, tx, "create_movimiento").QueryRowContext(ctx,
		mov.ItemID, mov.NombreItem, mov.TipoItem, mov.TipoMovimiento,
		mov.Cantidad, mov.CantidadAnterior, mov.CantidadNueva,
		mov.Motivo, mov.IDUsuario,
	).Scan(&mov.ID, &mov.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create movimiento: %w", err)
	}

	return nil
}

// ListMovimientos obtiene el historial con filtros dinámicos
func (r *stockRepository) ListMovimientos(ctx context.Context, filter *models.StockMovimientoFilter) ([]*models.StockMovimiento, error) {
	query := `
		SELECT id, item_id, nombre_item, tipo_item, tipo_movimiento, cantidad,
		       cantidad_anterior, cantidad_nueva, motivo, id_usuario, created_at
		FROM stock_movimientos
		WHERE 1=1`
	args := []interface{}{}

	if filter.ItemID != nil {
		args = append(args, *filter.ItemID)
		query += fmt.Sprintf(" AND item_id = $%d", len(args))
	}
	if filter.TipoItem != nil {
		args = append(args, *filter.TipoItem)
		query += fmt.Sprintf(" AND tipo_item = $%d", len(args))
	}
	if filter.TipoMovimiento != nil {
		args = append(args, *filter.TipoMovimiento)
		query += fmt.Sprintf(" AND tipo_movimiento = $%d", len(args))
	}
	if filter.FechaDesde != nil {
		args = append(args, *filter.FechaDesde)
		query += fmt.Sprintf(" AND created_at >= $%d", len(args))
	}
	if filter.FechaHasta != nil {
		args = append(args, *filter.FechaHasta)
		query += fmt.Sprintf(" AND created_at <= $%d", len(args))
	}

	query += " ORDER BY created_at DESC"

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
		return nil, fmt.Errorf("failed to list movimientos: %w", err)
	}
	defer rows.Close()

	var movimientos []*models.StockMovimiento
	for rows.Next() {
		var mov models.StockMovimiento
		err := rows.Scan(
			&mov.ID, &mov.ItemID, &mov.NombreItem, &mov.TipoItem, &mov.TipoMovimiento,
			&mov.Cantidad, &mov.CantidadAnterior, &mov.CantidadNueva,
			&mov.Motivo, &mov.IDUsuario, &mov.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movimiento: %w", err)
		}
		movimientos = append(movimientos, &mov)
	}

	return movimientos, rows.Err()
}

// ValorPorTipo suma el valor total de inventario de un tipo de item
func (r *stockRepository) ValorPorTipo(ctx context.Context, tipoItem string) (decimal.Decimal, error) {
	var valor decimal.Decimal
	err := r.stmts["valor_por_tipo"].QueryRowContext(ctx, tipoItem).Scan(&valor)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get valor por tipo: %w", err)
	}
	return valor, nil
}

// ContarBajoMinimo cuenta items con stock en o bajo el mínimo
func (r *stockRepository) ContarBajoMinimo(ctx context.Context) (int, error) {
	var count int
	err := r.stmts["contar_bajo_minimo"].QueryRowContext(ctx).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count stock bajo minimo: %w", err)
	}
	return count, nil
}

// Valorizacion obtiene el valor de inventario por item
func (r *stockRepository) Valorizacion(ctx context.Context) ([]*models.ValorizacionItem, error) {
	rows, err := r.stmts["valorizacion"].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get valorizacion: %w", err)
	}
	defer rows.Close()

	var items []*models.ValorizacionItem
	for rows.Next() {
		var item models.ValorizacionItem
		err := rows.Scan(&item.ItemID, &item.NombreItem, &item.TipoItem, &item.Cantidad, &item.ValorTotal)
		if err != nil {
			return nil, fmt.Errorf("failed to scan valorizacion: %w", err)
		}
		items = append(items, &item)
	}

	return items, rows.Err()
}
