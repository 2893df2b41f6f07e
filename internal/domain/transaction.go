package domain

import (
	"strings" // String normalization
	"time"    // Creation timestamps
)

// TransactionType is the direction of a transaction: income or expense
type TransactionType string

const (
	TypeIncome  TransactionType = "income"  // Money coming in
	TypeExpense TransactionType = "expense" // Money going out
)

// DefaultCategory is assigned when a transaction is created without a category
const DefaultCategory = "Other"

// ParseTransactionType normalizes a client supplied type, case-insensitively
func ParseTransactionType(s string) (TransactionType, bool) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case TypeIncome, TypeExpense:
		return t, true
	default:
		return "", false
	}
}

// Transaction Model
type Transaction struct {
	ID          string          `json:"id" gorm:"primaryKey;size:64"`                   // Assigned by the store
	OwnerID     string          `json:"userId" gorm:"column:user_id;size:128;index"`    // Verified subject identifier of the creator
	Amount      float64         `json:"amount" gorm:"not null"`                         // Positive amount
	Description string          `json:"description" gorm:"not null"`                    // Free text description
	Type        TransactionType `json:"type" gorm:"size:16;not null"`                   // income or expense
	Category    string          `json:"category" gorm:"size:64;not null;default:Other"` // Category, "Other" when omitted
	CreatedAt   time.Time       `json:"createdAt" gorm:"index"`                         // Server side creation time (UTC)
}

// TableName keeps the table name aligned with the document collection name
func (Transaction) TableName() string {
	return "transactions"
}

// OwnedBy reports whether uid is the transaction's owner
func (t Transaction) OwnedBy(uid string) bool {
	return uid != "" && t.OwnerID == uid
}

// Identity is the verified caller of a request. It only lives in the request context.
type Identity struct {
	UID   string `json:"uid"`   // Stable subject identifier
	Email string `json:"email"` // Email claim, may be empty
}
