package store

import (
	"context"
	"errors"
	"fmt"

	"finance_tracker/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore keeps transactions in a SQL table through GORM (MySQL in production)
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// NewGormStore wraps an open GORM handle
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	txs := []domain.Transaction{}
	if err := s.db.WithContext(ctx).Where("user_id = ?", ownerID).Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	for i := range txs {
		txs[i].CreatedAt = txs[i].CreatedAt.UTC()
	}
	return txs, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (domain.Transaction, error) {
	var t domain.Transaction
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&t).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (s *GormStore) Create(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	tx.ID = uuid.NewString()
	if err := s.db.WithContext(ctx).Create(&tx).Error; err != nil {
		return domain.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	return tx, nil
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Transaction{})
	if res.Error != nil {
		return fmt.Errorf("delete transaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
