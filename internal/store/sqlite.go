package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"finance_tracker/internal/domain"

	"github.com/google/uuid"
)

// SQLiteStore keeps transactions in a SQLite file. createdAt is stored as
// ISO-8601 text.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore wraps an open, migrated database
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const sqliteColumns = `id, user_id, amount, description, type, category, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRow(row rowScanner) (domain.Transaction, error) {
	var (
		t         domain.Transaction
		typ       string
		createdAt string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Amount, &t.Description, &typ, &t.Category, &createdAt); err != nil {
		return domain.Transaction{}, err
	}
	ts, err := parseTimestamp(createdAt)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s created_at: %w", t.ID, err)
	}
	t.Type = domain.TransactionType(typ)
	t.CreatedAt = ts
	return t, nil
}

func (s *SQLiteStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+sqliteColumns+` FROM transactions WHERE user_id = ?`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []domain.Transaction{}
	for rows.Next() {
		t, err := scanSQLiteRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (domain.Transaction, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanSQLiteRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *SQLiteStore) Create(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	tx.ID = uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OwnerID, tx.Amount, tx.Description, string(tx.Type), tx.Category, formatTimestamp(tx.CreatedAt))
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
