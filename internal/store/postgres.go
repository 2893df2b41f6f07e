package store

import (
	"context"
	"errors"
	"fmt"

	"finance_tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps transactions in Postgres through a pgx pool
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresStore)(nil)

// NewPostgresStore wraps a connected, migrated pool
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresColumns = `id, user_id, amount, description, type, category, created_at`

func scanPostgresRow(row pgx.Row) (domain.Transaction, error) {
	var (
		t   domain.Transaction
		typ string
	)
	if err := row.Scan(&t.ID, &t.OwnerID, &t.Amount, &t.Description, &typ, &t.Category, &t.CreatedAt); err != nil {
		return domain.Transaction{}, err
	}
	t.Type = domain.TransactionType(typ)
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+postgresColumns+` FROM transactions WHERE user_id = $1`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	out := []domain.Transaction{}
	for rows.Next() {
		t, err := scanPostgresRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Get(ctx context.Context, id string) (domain.Transaction, error) {
	t, err := scanPostgresRow(s.pool.QueryRow(ctx, `SELECT `+postgresColumns+` FROM transactions WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) Create(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	tx.ID = uuid.NewString()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO transactions (`+postgresColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		tx.ID, tx.OwnerID, tx.Amount, tx.Description, string(tx.Type), tx.Category, tx.CreatedAt)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}
	return tx, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
