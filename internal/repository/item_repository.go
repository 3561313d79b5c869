package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

// PostgresItemRepository implements domain.ItemRepository using PostgreSQL
type PostgresItemRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresItemRepository creates a new item repository
func NewPostgresItemRepository(db *sql.DB, logger *slog.Logger) *PostgresItemRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresItemRepository{db: db, logger: logger}
}

const itemColumns = `id, product_id, inventory_id, current_quantity, minimum_stock_level, created_at, updated_at`

// Create inserts an item. Unknown product or inventory ids surface as
// the matching not-found error.
func (r *PostgresItemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
		INSERT INTO items (id, product_id, inventory_id, current_quantity, minimum_stock_level)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		item.ID,
		item.ProductID,
		item.InventoryID,
		item.CurrentQuantity,
		item.MinimumStockLevel,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation {
			if pqErr.Constraint == "items_product_id_fkey" {
				return domain.ErrProductNotFound
			}
			return domain.ErrInventoryNotFound
		}
		r.logger.Error("failed to create item",
			slog.String("item_id", item.ID.String()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetByID retrieves an item without locking it
func (r *PostgresItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return getItem(ctx, r.db, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

// ListByInventory lists the items of one inventory
func (r *PostgresItemRepository) ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE inventory_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, inventoryID)
}

// ListByInventoryIDs lists the items of several inventories in one query
func (r *PostgresItemRepository) ListByInventoryIDs(ctx context.Context, inventoryIDs []uuid.UUID) ([]*domain.Item, error) {
	if len(inventoryIDs) == 0 {
		return []*domain.Item{}, nil
	}
	ids := make([]string, 0, len(inventoryIDs))
	for _, id := range inventoryIDs {
		ids = append(ids, id.String())
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE inventory_id = ANY($1::uuid[]) ORDER BY created_at DESC`
	return r.list(ctx, query, pq.Array(ids))
}

// Update overwrites both quantity columns
func (r *PostgresItemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE items
		SET current_quantity = $1, minimum_stock_level = $2, updated_at = now()
		WHERE id = $3
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query, item.CurrentQuantity, item.MinimumStockLevel, item.ID).Scan(&item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("failed to update item: %w", err)
	}
	return nil
}

// Delete removes an item
func (r *PostgresItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// CountLowStock counts items at or below their minimum level across all owners
func (r *PostgresItemRepository) CountLowStock(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM items WHERE current_quantity <= minimum_stock_level`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count low-stock items: %w", err)
	}
	return count, nil
}

// WithItemLock runs fn inside a transaction. Rows read through
// GetForUpdate are held with SELECT ... FOR UPDATE until commit or rollback.
func (r *PostgresItemRepository) WithItemLock(ctx context.Context, fn func(tx domain.ItemTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(&postgresItemTx{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			r.logger.Error("failed to roll back item transaction", slog.String("error", rbErr.Error()))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *PostgresItemRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list items", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

type postgresItemTx struct {
	tx *sql.Tx
}

func (t *postgresItemTx) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Item, error) {
	return getItem(ctx, t.tx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

func (t *postgresItemTx) GetInventory(ctx context.Context, id uuid.UUID) (*domain.Inventory, error) {
	return getInventory(ctx, t.tx, id)
}

func (t *postgresItemTx) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	return getProduct(ctx, t.tx, id)
}

func (t *postgresItemTx) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	result, err := t.tx.ExecContext(ctx,
		`UPDATE items SET current_quantity = $1, updated_at = now() WHERE id = $2`,
		quantity, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update quantity: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getItem(ctx context.Context, q queryRower, query string, id uuid.UUID) (*domain.Item, error) {
	item, err := scanItem(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

func scanItem(row rowScanner) (*domain.Item, error) {
	item := &domain.Item{}
	err := row.Scan(
		&item.ID,
		&item.ProductID,
		&item.InventoryID,
		&item.CurrentQuantity,
		&item.MinimumStockLevel,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}
