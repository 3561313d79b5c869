package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/aryan0dhankhar/stockroom/internal/domain"
)

// PostgresInventoryRepository implements domain.InventoryRepository using PostgreSQL
type PostgresInventoryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresInventoryRepository creates a new inventory repository
func NewPostgresInventoryRepository(db *sql.DB, logger *slog.Logger) *PostgresInventoryRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresInventoryRepository{db: db, logger: logger}
}

const inventoryColumns = `id, name, description, notification_email, owner_id, created_at, updated_at`

// Create inserts an inventory
func (r *PostgresInventoryRepository) Create(ctx context.Context, inventory *domain.Inventory) error {
	query := `
		INSERT INTO inventories (id, name, description, notification_email, owner_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		inventory.ID,
		inventory.Name,
		inventory.Description,
		inventory.NotificationEmail,
		inventory.OwnerID,
	).Scan(&inventory.CreatedAt, &inventory.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create inventory",
			slog.String("inventory_id", inventory.ID.String()),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create inventory: %w", err)
	}
	return nil
}

// GetByID retrieves an inventory by ID
func (r *PostgresInventoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Inventory, error) {
	return getInventory(ctx, r.db, id)
}

func getInventory(ctx context.Context, q queryRower, id uuid.UUID) (*domain.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventories WHERE id = $1`

	inventory, err := scanInventory(q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInventoryNotFound
		}
		return nil, fmt.Errorf("failed to get inventory: %w", err)
	}
	return inventory, nil
}

// ListByOwner lists all inventories of one owner, newest first
func (r *PostgresInventoryRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Inventory, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventories WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		r.logger.Error("failed to list inventories by owner",
			slog.String("owner_id", ownerID.String()),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to list inventories: %w", err)
	}
	defer rows.Close()

	inventories := []*domain.Inventory{}
	for rows.Next() {
		inventory, err := scanInventory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inventory: %w", err)
		}
		inventories = append(inventories, inventory)
	}
	return inventories, rows.Err()
}

// Update overwrites the mutable columns of an inventory
func (r *PostgresInventoryRepository) Update(ctx context.Context, inventory *domain.Inventory) error {
	query := `
		UPDATE inventories
		SET name = $1, description = $2, notification_email = $3, updated_at = now()
		WHERE id = $4
		RETURNING updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		inventory.Name,
		inventory.Description,
		inventory.NotificationEmail,
		inventory.ID,
	).Scan(&inventory.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrInventoryNotFound
		}
		return fmt.Errorf("failed to update inventory: %w", err)
	}
	return nil
}

// Delete removes an inventory. Items still stored in it block the delete.
func (r *PostgresInventoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM inventories WHERE id = $1`, id)
	if err != nil {
		if isPQCode(err, foreignKeyViolation) {
			return domain.ErrReferencedByItems
		}
		return fmt.Errorf("failed to delete inventory: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrInventoryNotFound
	}
	return nil
}

func scanInventory(row rowScanner) (*domain.Inventory, error) {
	inventory := &domain.Inventory{}
	err := row.Scan(
		&inventory.ID,
		&inventory.Name,
		&inventory.Description,
		&inventory.NotificationEmail,
		&inventory.OwnerID,
		&inventory.CreatedAt,
		&inventory.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return inventory, nil
}
