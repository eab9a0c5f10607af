package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/infoyupay/gang-comisiones-backend/internal/async"
	"github.com/infoyupay/gang-comisiones-backend/internal/audit"
	"github.com/infoyupay/gang-comisiones-backend/internal/config"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
	"github.com/infoyupay/gang-comisiones-backend/internal/server"
	"github.com/infoyupay/gang-comisiones-backend/internal/service"
	"github.com/infoyupay/gang-comisiones-backend/internal/storage/memory"
	"github.com/infoyupay/gang-comisiones-backend/internal/vault"
)

const testPassword = "password123"

func newTestServer(t *testing.T) (*server.Server, *memory.Store) {
	t.Helper()
	cfg := config.Config{
		Port:            "0",
		JWTSecret:       "test-secret",
		Workers:         4,
		RateLimitMax:    1000,
		RateLimitWindow: time.Minute,
		TokenTTL:        time.Hour,
	}
	store := memory.NewStore()
	svcs := service.New(store, audit.NewRecorder(), async.NewPool(cfg.Workers), zap.NewNop().Sugar())
	return server.New(cfg, svcs, store, zap.NewNop().Sugar()), store
}

func seedUser(t *testing.T, store *memory.Store, username string, role domain.Role) *domain.User {
	t.Helper()
	ctx := context.Background()
	salt, err := vault.GenerateSalt()
	require.NoError(t, err)
	u := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Salt:         salt,
		PasswordHash: vault.HashPassword(testPassword, salt),
		Role:         role,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}
	tx, err := store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertUser(ctx, u))
	require.NoError(t, tx.Commit(ctx))
	return u
}

func doJSON(t *testing.T, srv *server.Server, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := srv.App().Test(req, -1)
	require.NoError(t, err)
	return resp
}

func loginToken(t *testing.T, srv *server.Server, username, password string) string {
	t.Helper()
	resp := doJSON(t, srv, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token
}

func TestLoginAndCreateBank(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "admin", domain.RoleAdmin)

	token := loginToken(t, srv, "admin", testPassword)

	resp := doJSON(t, srv, http.MethodPost, "/api/banks", token, map[string]string{"name": "Interbank"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var bank domain.Bank
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bank))
	assert.Equal(t, "Interbank", bank.Name)
	assert.True(t, bank.Active)
}

func TestLoginBadCredentials(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "admin", domain.RoleAdmin)

	resp := doJSON(t, srv, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBankCreateForbiddenForCashier(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "cashier", domain.RoleCashier)

	token := loginToken(t, srv, "cashier", testPassword)

	resp := doJSON(t, srv, http.MethodPost, "/api/banks", token, map[string]string{"name": "Interbank"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestBankCreateWithoutToken(t *testing.T) {
	srv, _ := newTestServer(t)

	resp := doJSON(t, srv, http.MethodPost, "/api/banks", "", map[string]string{"name": "Interbank"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBankCreateDuplicateConflicts(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "admin", domain.RoleAdmin)
	token := loginToken(t, srv, "admin", testPassword)

	resp := doJSON(t, srv, http.MethodPost, "/api/banks", token, map[string]string{"name": "Interbank"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, srv, http.MethodPost, "/api/banks", token, map[string]string{"name": "Interbank"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestTransactionFlowOverHTTP(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "admin", domain.RoleAdmin)
	seedUser(t, store, "cashier", domain.RoleCashier)

	adminToken := loginToken(t, srv, "admin", testPassword)
	cashierToken := loginToken(t, srv, "cashier", testPassword)

	resp := doJSON(t, srv, http.MethodPost, "/api/banks", adminToken, map[string]string{"name": "Interbank"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var bank domain.Bank
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bank))

	resp = doJSON(t, srv, http.MethodPost, "/api/concepts", adminToken,
		map[string]any{"name": "transfer fee", "type": "RATE", "value": "0.05"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var concept domain.Concept
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&concept))

	resp = doJSON(t, srv, http.MethodPost, "/api/transactions", cashierToken,
		map[string]any{"bank_id": bank.ID, "concept_id": concept.ID, "amount": "100"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var tr domain.Transaction
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&tr))
	assert.Equal(t, domain.TransactionRegistered, tr.Status)
	assert.True(t, tr.Commission.Equal(decimal.RequireFromString("5")), "commission %s", tr.Commission)

	resp = doJSON(t, srv, http.MethodPost, "/api/reversals", cashierToken,
		map[string]string{"transaction_id": tr.ID, "message": "typo in amount"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var req domain.ReversalRequest
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&req))

	resp = doJSON(t, srv, http.MethodPost, "/api/reversals/"+req.ID+"/resolve", adminToken,
		map[string]any{"answer": "confirmed", "approve": true})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := store.GetTransaction(context.Background(), tr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionReversed, got.Status)
}

func TestFindBankByNameRoute(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "admin", domain.RoleAdmin)
	token := loginToken(t, srv, "admin", testPassword)

	resp := doJSON(t, srv, http.MethodPost, "/api/banks", token, map[string]string{"name": "Banco de la Nacion"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created domain.Bank
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))

	resp = doJSON(t, srv, http.MethodGet, "/api/banks/by-name/Banco%20de%20la%20Nacion", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var found domain.Bank
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&found))
	assert.Equal(t, created.ID, found.ID)

	resp = doJSON(t, srv, http.MethodGet, "/api/banks/by-name/Unknown", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBankRenameKeepsActiveFlag(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "admin", domain.RoleAdmin)
	token := loginToken(t, srv, "admin", testPassword)

	resp := doJSON(t, srv, http.MethodPost, "/api/banks", token, map[string]string{"name": "Interbank"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var bank domain.Bank
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bank))

	inactive := false
	resp = doJSON(t, srv, http.MethodPut, "/api/banks/"+bank.ID, token,
		map[string]any{"name": "Interbank", "active": &inactive})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// A rename without an active field must not reactivate the bank.
	resp = doJSON(t, srv, http.MethodPut, "/api/banks/"+bank.ID, token,
		map[string]string{"name": "Interbank Renamed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var renamed domain.Bank
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&renamed))
	assert.Equal(t, "Interbank Renamed", renamed.Name)
	assert.False(t, renamed.Active)
}

func TestValidationErrorMapsToBadRequest(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "admin", domain.RoleAdmin)
	token := loginToken(t, srv, "admin", testPassword)

	resp := doJSON(t, srv, http.MethodPost, "/api/banks", token, map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnknownBankMapsToNotFound(t *testing.T) {
	srv, store := newTestServer(t)
	seedUser(t, store, "admin", domain.RoleAdmin)
	token := loginToken(t, srv, "admin", testPassword)

	resp := doJSON(t, srv, http.MethodGet, "/api/banks/no-such-id", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
