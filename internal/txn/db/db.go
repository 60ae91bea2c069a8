package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	"carnival-tracker/internal/models"
)

var (
	// ErrDuplicateID is returned when a transaction_id already exists. The
	// unique constraint on the column is the authoritative check; callers may
	// pre-check with TransactionIDExists for a faster user-facing message.
	ErrDuplicateID = errors.New("duplicate transaction id")
	ErrNotFound    = errors.New("transaction not found")
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	_, err := d.Bun.NewInsert().Model(txn).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

func (d *DB) TransactionIDExists(ctx context.Context, transactionID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Transaction)(nil)).
		Where("transaction_id = ?", transactionID).
		Exists(ctx)
}

func (d *DB) GetTransactionByID(ctx context.Context, id int64) (*models.Transaction, error) {
	var txn models.Transaction
	err := d.Bun.NewSelect().
		Model(&txn).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &txn, nil
}

// ListByDesk returns a desk's transactions in insertion order.
func (d *DB) ListByDesk(ctx context.Context, desk string) ([]models.Transaction, error) {
	txns := make([]models.Transaction, 0)
	err := d.Bun.NewSelect().
		Model(&txns).
		Where("desk = ?", desk).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return txns, nil
}

// ListAll returns every transaction across all desks in insertion order.
func (d *DB) ListAll(ctx context.Context) ([]models.Transaction, error) {
	txns := make([]models.Transaction, 0)
	err := d.Bun.NewSelect().
		Model(&txns).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return txns, nil
}

func (d *DB) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := d.Bun.NewDelete().
		Model((*models.Transaction)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("username = ?", username).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// isUniqueViolation matches the driver-specific unique constraint errors for
// the SQLite and Postgres drivers in use.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE=23505")
}
