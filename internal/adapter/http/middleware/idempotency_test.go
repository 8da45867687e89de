package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/martin5169/financial-dashboard/internal/infrastructure/auth"
	"github.com/martin5169/financial-dashboard/internal/infrastructure/metrics"
	"github.com/martin5169/financial-dashboard/internal/usecase"
	"github.com/martin5169/financial-dashboard/internal/usecase/mocks"
)

type fakeIdempotencyStore struct {
	checkAndSetFn func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	updateFn      func(ctx context.Context, key string, response []byte, ttl time.Duration) error
	releaseFn     func(ctx context.Context, key string) error
}

func (f *fakeIdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	if f.checkAndSetFn != nil {
		return f.checkAndSetFn(ctx, key, response, ttl)
	}
	return false, nil, nil
}

func (f *fakeIdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, key, response, ttl)
	}
	return nil
}

func (f *fakeIdempotencyStore) Release(ctx context.Context, key string) error {
	if f.releaseFn != nil {
		return f.releaseFn(ctx, key)
	}
	return nil
}

func newIdempotency(store usecase.IdempotencyStore) *IdempotencyMiddleware {
	return NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop(), nil)
}

func postWithKey(path, key string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{}`))
	req.Header.Set(IdempotencyKeyHeader, key)
	return req
}

func TestIdempotencyMiddleware_StoreErrorFailsRequest(t *testing.T) {
	var called bool
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return false, nil, context.DeadlineExceeded
		},
	}

	rr := httptest.NewRecorder()
	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, postWithKey("/api/v1/accounts", "key-err"))

	if called {
		t.Fatalf("handler should not be called when store errors")
	}

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_ReleasesFailedResponses(t *testing.T) {
	var updated, released bool
	store := &fakeIdempotencyStore{
		updateFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) error {
			updated = true
			return nil
		},
		releaseFn: func(ctx context.Context, key string) error {
			released = true
			return nil
		},
	}

	rr := httptest.NewRecorder()
	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})).ServeHTTP(rr, postWithKey("/api/v1/accounts", "key-fail"))

	if updated {
		t.Fatalf("expected error responses not to be cached")
	}
	if !released {
		t.Fatalf("expected the key to be released so the request can be retried")
	}
}

func TestIdempotencyMiddleware_SkipsNonMutatingRequests(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			t.Error("store should not be consulted for GET")
			return false, nil, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set(IdempotencyKeyHeader, "key")
	rr := httptest.NewRecorder()

	called := false
	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})).ServeHTTP(rr, req)

	if !called {
		t.Fatalf("expected next handler to be called")
	}
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	stored, _ := json.Marshal(storedResponse{Status: http.StatusCreated, Body: []byte(`{"id":"a1"}`)})
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			if key != "POST:/api/v1/accounts:guest:key-123" {
				t.Errorf("unexpected scoped key %q", key)
			}
			return true, stored, nil
		},
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	rr := httptest.NewRecorder()
	NewIdempotencyMiddleware(store, time.Minute, zerolog.Nop(), m).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not be called when cached response exists")
	})).ServeHTTP(rr, postWithKey("/api/v1/accounts", "key-123"))

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected replayed status 201, got %d", rr.Code)
	}
	if rr.Header().Get(IdempotencyReplayHeader) != "true" {
		t.Fatalf("expected %s header to be set", IdempotencyReplayHeader)
	}
	if got := rr.Body.String(); got != `{"id":"a1"}` {
		t.Fatalf("unexpected cached body: %s", got)
	}
	if got := testutil.ToFloat64(m.IdempotencyReplays); got != 1 {
		t.Fatalf("expected one replay recorded, got %v", got)
	}
}

func TestIdempotencyMiddleware_ConflictWhileInFlight(t *testing.T) {
	store := &fakeIdempotencyStore{
		checkAndSetFn: func(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
			return true, []byte(usecase.IdempotencyPending), nil
		},
	}

	rr := httptest.NewRecorder()
	newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler should not run for an in-flight key")
	})).ServeHTTP(rr, postWithKey("/api/v1/payments", "dup"))

	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestIdempotencyMiddleware_DoubleSubmitCreatesOnce(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	calls := 0
	handler := newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"t1"}`))
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, postWithKey("/api/v1/transactions", "submit-1"))
		if rr.Code != http.StatusCreated || !strings.Contains(rr.Body.String(), `"t1"`) {
			t.Fatalf("attempt %d: unexpected response %d %s", i, rr.Code, rr.Body.String())
		}
	}

	if calls != 1 {
		t.Fatalf("expected the handler to run once, ran %d times", calls)
	}
}

func TestIdempotencyMiddleware_KeysAreScopedPerCaller(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	handler := BearerToken(newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _ := auth.AccessToken(r.Context())
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"owner":"` + token + `"}`))
	})))

	send := func(token string) *httptest.ResponseRecorder {
		req := postWithKey("/api/v1/accounts", "shared-key")
		req.Header.Set("Authorization", "Bearer "+token)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr
	}

	first := send("token-a")
	second := send("token-b")

	if second.Header().Get(IdempotencyReplayHeader) != "" {
		t.Fatalf("another caller's response was replayed: %s", second.Body.String())
	}
	if !strings.Contains(first.Body.String(), "token-a") || !strings.Contains(second.Body.String(), "token-b") {
		t.Fatalf("unexpected bodies %q and %q", first.Body.String(), second.Body.String())
	}

	again := send("token-a")
	if again.Header().Get(IdempotencyReplayHeader) != "true" || !strings.Contains(again.Body.String(), "token-a") {
		t.Fatalf("expected replay of the caller's own response, got %q", again.Body.String())
	}
}

func TestIdempotencyMiddleware_ReleasesKeyWhenHandlerPanics(t *testing.T) {
	store := mocks.NewMockIdempotencyStore()
	panicking := true
	handler := Recovery(zerolog.Nop())(newIdempotency(store).Wrap(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if panicking {
			panic("boom")
		}
		w.WriteHeader(http.StatusCreated)
	})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, postWithKey("/api/v1/payments", "retry-me"))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 from recovery, got %d", rr.Code)
	}

	panicking = false
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, postWithKey("/api/v1/payments", "retry-me"))
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected the retry to run, got %d %s", rr.Code, rr.Body.String())
	}
}
