package api

import (
	"context"       // Request context
	"encoding/json" // Raw amount decoding
	"errors"        // Error matching
	"io"            // Empty body detection
	"net/http"      // HTTP status codes
	"strings"       // String manipulation

	"finance_tracker/internal/domain"     // Domain models
	"finance_tracker/internal/middleware" // Caller identity
	"finance_tracker/internal/service"    // Create input

	"github.com/gin-gonic/gin" // Gin web framework
)

// TransactionService is what the handlers need from the service layer
type TransactionService interface {
	List(ctx context.Context, caller domain.Identity) ([]domain.Transaction, error)
	Create(ctx context.Context, caller domain.Identity, in service.CreateInput) (domain.Transaction, error)
	Delete(ctx context.Context, caller domain.Identity, id string) error
	Summary(ctx context.Context, caller domain.Identity) (domain.Summary, error)
}

// CreateTransactionRequest represents a create request.
// Amount accepts a JSON number or a numeric string; any owner field sent by the client is ignored.
type CreateTransactionRequest struct {
	Amount      json.RawMessage `json:"amount"`      // Number or numeric string
	Description string          `json:"description"` // Free text
	Type        string          `json:"type"`        // income or expense, any case
	Category    string          `json:"category"`    // Optional
}

// ListTransactionsHandler returns the caller's transactions, newest first
func ListTransactionsHandler(svc TransactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := middleware.CurrentIdentity(c) // Get identity from context
		if !ok {
			writeError(c, "list", domain.ErrUnauthenticated)
			return
		}
		txs, err := svc.List(c.Request.Context(), caller) // Load transactions
		if err != nil {
			writeError(c, "list", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "transactions": txs}) // Return transactions
	}
}

// CreateTransactionHandler adds a transaction owned by the caller
func CreateTransactionHandler(svc TransactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := middleware.CurrentIdentity(c) // Get identity from context
		if !ok {
			writeError(c, "create", domain.ErrUnauthenticated)
			return
		}
		var req CreateTransactionRequest // Bind JSON request to struct
		// An empty body falls through to the missing fields check
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(c, "create", domain.NewValidationError("Invalid request body", "Body must be a JSON object with amount, description, and type"))
			return
		}
		tx, err := svc.Create(c.Request.Context(), caller, service.CreateInput{
			Amount:      amountText(req.Amount),
			Description: req.Description,
			Type:        req.Type,
			Category:    req.Category,
		})
		if err != nil {
			writeError(c, "create", err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "transaction": tx}) // Return created transaction
	}
}

// DeleteTransactionHandler deletes one of the caller's transactions
func DeleteTransactionHandler(svc TransactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := middleware.CurrentIdentity(c) // Get identity from context
		if !ok {
			writeError(c, "delete", domain.ErrUnauthenticated)
			return
		}
		id := strings.TrimSpace(c.Param("id")) // Transaction id from path
		if id == "" {
			writeError(c, "delete", domain.ErrNotFound)
			return
		}
		if err := svc.Delete(c.Request.Context(), caller, id); err != nil {
			writeError(c, "delete", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Transaction deleted successfully"})
	}
}

// SummaryHandler returns totals and the expense breakdown for the caller
func SummaryHandler(svc TransactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := middleware.CurrentIdentity(c) // Get identity from context
		if !ok {
			writeError(c, "summary", domain.ErrUnauthenticated)
			return
		}
		summary, err := svc.Summary(c.Request.Context(), caller) // Aggregate transactions
		if err != nil {
			writeError(c, "summary", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
	}
}

// amountText returns the amount as text: a JSON string is unquoted, null or absent is empty
func amountText(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return text
}
