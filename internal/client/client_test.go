package client

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"finance_tracker/internal/api"
	"finance_tracker/internal/auth"
	"finance_tracker/internal/service"
	"finance_tracker/internal/store"
	"finance_tracker/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBaseURL(t *testing.T) {
	tests := map[string]string{
		"":                             "http://127.0.0.1:5000/api/",
		"http://localhost:5000":        "http://localhost:5000/api/",
		"http://localhost:5000/":       "http://localhost:5000/api/",
		"http://localhost:5000/api":    "http://localhost:5000/api/",
		"https://fin.example.com/api/": "https://fin.example.com/api/",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeBaseURL(in), in)
	}
}

func newAPIServer(t *testing.T) (*httptest.Server, *rsa.PrivateKey) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	r, err := api.NewRouter(api.RouterConfig{
		Verifier: auth.NewTokenVerifier("proj", auth.StaticKeySource{"k": &key.PublicKey}),
		Service:  service.NewTransactionService(store.NewMemoryStore()),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, key
}

func signedInClient(t *testing.T, baseURL string, key *rsa.PrivateKey, uid string) *Client {
	t.Helper()
	tok, err := utils.GenerateIDToken(key, "k", "proj", uid, "", time.Hour)
	require.NoError(t, err)
	s := NewSession()
	s.SetUser(StaticToken(tok))
	return New(baseURL, s)
}

func TestClientRoundTrip(t *testing.T) {
	srv, key := newAPIServer(t)
	ctx := context.Background()
	alice := signedInClient(t, srv.URL, key, "alice")
	bob := signedInClient(t, srv.URL, key, "bob")

	tx, err := alice.AddTransaction(ctx, NewTransaction{Amount: 12.25, Description: "Taxi", Type: "expense", Category: "Travel"})
	require.NoError(t, err)
	assert.Equal(t, "alice", tx.OwnerID)

	txs, err := alice.ListTransactions(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, tx.ID, txs[0].ID)

	sum, err := alice.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.25, sum.TotalExpense)

	err = bob.DeleteTransaction(ctx, tx.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)

	require.NoError(t, alice.DeleteTransaction(ctx, tx.ID))
	err = alice.DeleteTransaction(ctx, tx.ID)
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestClientWithoutIdentity(t *testing.T) {
	srv, _ := newAPIServer(t)
	s := NewSession()
	s.IdentityWait = 20 * time.Millisecond
	c := New(srv.URL+"/", s)

	_, err := c.ListTransactions(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Unauthorized", apiErr.Code)
	assert.Equal(t, "Invalid or expired token", apiErr.Message)
	assert.Zero(t, s.pending())
}

func TestClientValidationError(t *testing.T) {
	srv, key := newAPIServer(t)
	c := signedInClient(t, srv.URL, key, "alice")

	_, err := c.AddTransaction(context.Background(), NewTransaction{Amount: 5, Description: "x", Type: "gift"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid type", apiErr.Code)
}
