package store

import (
	"context"
	"fmt"
	"strings"

	"finance_tracker/internal/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// firestoreDoc is the document shape written by the web client era of the
// service, createdAt is kept as an ISO-8601 string.
type firestoreDoc struct {
	UserID      string  `firestore:"userId"`
	Amount      float64 `firestore:"amount"`
	Description string  `firestore:"description"`
	Type        string  `firestore:"type"`
	Category    string  `firestore:"category"`
	CreatedAt   string  `firestore:"createdAt"`
}

func (d firestoreDoc) toDomain(id string) (domain.Transaction, error) {
	createdAt, err := parseTimestamp(d.CreatedAt)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("document %s createdAt: %w", id, err)
	}
	return domain.Transaction{
		ID:          id,
		OwnerID:     d.UserID,
		Amount:      d.Amount,
		Description: d.Description,
		Type:        domain.TransactionType(d.Type),
		Category:    d.Category,
		CreatedAt:   createdAt,
	}, nil
}

// FirestoreStore keeps transactions as documents of one collection
type FirestoreStore struct {
	client     *firestore.Client
	collection string
}

var _ Store = (*FirestoreStore)(nil)

// NewFirestoreStore connects to Firestore with the service account credentials
func NewFirestoreStore(ctx context.Context, projectID, credentialsFile, collection string) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}
	return &FirestoreStore{client: client, collection: collection}, nil
}

// Close releases the underlying client
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) col() *firestore.CollectionRef {
	return s.client.Collection(s.collection)
}

func (s *FirestoreStore) ListByOwner(ctx context.Context, ownerID string) ([]domain.Transaction, error) {
	snaps, err := s.col().Where("userId", "==", ownerID).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	out := make([]domain.Transaction, 0, len(snaps))
	for _, snap := range snaps {
		var doc firestoreDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", snap.Ref.ID, err)
		}
		t, err := doc.toDomain(snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (s *FirestoreStore) Get(ctx context.Context, id string) (domain.Transaction, error) {
	if !validDocID(id) {
		return domain.Transaction{}, domain.ErrNotFound
	}
	snap, err := s.col().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return domain.Transaction{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	var doc firestoreDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.Transaction{}, fmt.Errorf("decode document %s: %w", id, err)
	}
	return doc.toDomain(id)
}

func (s *FirestoreStore) Create(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	ref, _, err := s.col().Add(ctx, firestoreDoc{
		UserID:      tx.OwnerID,
		Amount:      tx.Amount,
		Description: tx.Description,
		Type:        string(tx.Type),
		Category:    tx.Category,
		CreatedAt:   formatTimestamp(tx.CreatedAt),
	})
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	tx.ID = ref.ID
	return tx, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, id string) error {
	if !validDocID(id) {
		return domain.ErrNotFound
	}
	// Exists turns a delete of a missing document into NotFound
	_, err := s.col().Doc(id).Delete(ctx, firestore.Exists)
	if status.Code(err) == codes.NotFound {
		return domain.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return nil
}

func validDocID(id string) bool {
	return id != "" && !strings.Contains(id, "/") && id != "." && id != ".."
}
