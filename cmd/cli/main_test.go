package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/martin5169/financial-dashboard/internal/infrastructure/auth"
)

type recordedRequest struct {
	Method  string
	Path    string
	Auth    string
	IdemKey string
	Body    map[string]any
}

func newTestAPI(t *testing.T, status int, response string) (*httptest.Server, *[]recordedRequest) {
	t.Helper()

	var requests []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			Method:  r.Method,
			Path:    r.URL.Path,
			Auth:    r.Header.Get("Authorization"),
			IdemKey: r.Header.Get("Idempotency-Key"),
		}
		data, _ := io.ReadAll(r.Body)
		if len(data) > 0 {
			if err := json.Unmarshal(data, &rec.Body); err != nil {
				t.Errorf("request body is not JSON: %s", data)
			}
		}
		requests = append(requests, rec)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	return srv, &requests
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAccountsList(t *testing.T) {
	srv, requests := newTestAPI(t, http.StatusOK, `{"accounts":[],"total":0}`)

	out, err := execute(t, "--url", srv.URL, "accounts", "list")
	require.NoError(t, err)

	require.Len(t, *requests, 1)
	assert.Equal(t, http.MethodGet, (*requests)[0].Method)
	assert.Equal(t, "/api/v1/accounts", (*requests)[0].Path)
	assert.Empty(t, (*requests)[0].Auth)
	assert.JSONEq(t, `{"accounts":[],"total":0}`, out)
}

func TestAccountsAddSendsOnlySetFlags(t *testing.T) {
	srv, requests := newTestAPI(t, http.StatusCreated, `{"id":"a1"}`)

	_, err := execute(t, "--url", srv.URL, "--token", "tok", "--idempotency-key", "k1",
		"accounts", "add", "--title", "Wallet", "--amount", "1500", "--type", "ARS")
	require.NoError(t, err)

	req := (*requests)[0]
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "Bearer tok", req.Auth)
	assert.Equal(t, "k1", req.IdemKey)
	assert.Equal(t, map[string]any{"title": "Wallet", "amount": "1500", "type": "ARS"}, req.Body)
}

func TestAccountsAddRequiresFields(t *testing.T) {
	srv, requests := newTestAPI(t, http.StatusCreated, `{}`)

	_, err := execute(t, "--url", srv.URL, "accounts", "add", "--title", "Wallet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--amount")
	assert.Contains(t, err.Error(), "--type")
	assert.Empty(t, *requests)
}

func TestTransactionsUpdatePartialPatch(t *testing.T) {
	srv, requests := newTestAPI(t, http.StatusOK, `{"id":"t1","category":"food"}`)

	_, err := execute(t, "--url", srv.URL, "transactions", "update", "t1", "--category", "food")
	require.NoError(t, err)

	req := (*requests)[0]
	assert.Equal(t, http.MethodPatch, req.Method)
	assert.Equal(t, "/api/v1/transactions/t1", req.Path)
	assert.Equal(t, map[string]any{"category": "food"}, req.Body)
}

func TestUpdateWithoutFieldsFails(t *testing.T) {
	srv, requests := newTestAPI(t, http.StatusOK, `{}`)

	_, err := execute(t, "--url", srv.URL, "payments", "update", "p1")
	require.Error(t, err)
	assert.Empty(t, *requests)
}

func TestPaymentsPayAndDelete(t *testing.T) {
	srv, requests := newTestAPI(t, http.StatusOK, `{"id":"p1","status":"paid"}`)

	_, err := execute(t, "--url", srv.URL, "payments", "pay", "p1", "--paid-at", "2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/payments/p1/pay", (*requests)[0].Path)
	assert.Equal(t, map[string]any{"paid_at": "2024-03-15"}, (*requests)[0].Body)

	del, delRequests := newTestAPI(t, http.StatusNoContent, "")
	out, err := execute(t, "--url", del.URL, "payments", "delete", "p1")
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, (*delRequests)[0].Method)
	assert.Equal(t, "ok\n", out)
}

func TestYAMLOutput(t *testing.T) {
	srv, _ := newTestAPI(t, http.StatusOK, `{"ars":"1500","usd":"20"}`)

	out, err := execute(t, "--url", srv.URL, "-o", "yaml", "accounts", "totals")
	require.NoError(t, err)
	assert.Equal(t, "ars: \"1500\"\nusd: \"20\"\n", out)
}

func TestUnsupportedOutput(t *testing.T) {
	_, err := execute(t, "-o", "xml", "debug", "session")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output")
}

func TestAPIErrorMessage(t *testing.T) {
	srv, _ := newTestAPI(t, http.StatusBadRequest, `{"error":"invalid request","message":"amount must be positive"}`)

	_, err := execute(t, "--url", srv.URL, "accounts", "update", "a1", "--amount", "-1")
	require.Error(t, err)
	assert.Equal(t, "request failed (status 400): invalid request: amount must be positive", err.Error())
}

func TestAPIErrorWithoutJSON(t *testing.T) {
	err := apiError(http.StatusTooManyRequests, []byte("rate limit exceeded\n"))
	assert.True(t, strings.HasSuffix(err.Error(), "rate limit exceeded"))
}

func TestDebugCommands(t *testing.T) {
	srv, requests := newTestAPI(t, http.StatusOK, `{"ok":true}`)

	_, err := execute(t, "--url", srv.URL, "debug", "connection")
	require.NoError(t, err)
	_, err = execute(t, "--url", srv.URL, "debug", "session")
	require.NoError(t, err)

	assert.Equal(t, "/api/v1/debug/connection", (*requests)[0].Path)
	assert.Equal(t, "/api/v1/session", (*requests)[1].Path)
}

func TestTokenIsAcceptedByServerSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	out, err := execute(t, "token", "--secret", "local-secret", "--user-id", "user-7", "--email", "u7@example.com", "--ttl", "5m")
	require.NoError(t, err)

	claims, err := auth.NewJWTManager("local-secret").Verify(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "user-7", claims.UserID())
	assert.Equal(t, "u7@example.com", claims.Email)
	assert.Equal(t, "authenticated", claims.Role)
}

func TestTokenValidatesInput(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := execute(t, "token", "--user-id", "u")
	require.ErrorContains(t, err, "JWT secret is required")

	_, err = execute(t, "token", "--secret", "s")
	require.ErrorContains(t, err, "--user-id is required")

	_, err = execute(t, "token", "--secret", "s", "--user-id", "u", "--ttl", "0s")
	require.ErrorContains(t, err, "ttl must be positive")
}
