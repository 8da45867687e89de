package rest_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/martin5169/financial-dashboard/internal/infrastructure/dataclient"
)

type request struct {
	method string
	path   string
	query  string
	body   string
	header http.Header
}

// stubService answers every request with the next canned response.
type stubService struct {
	mu        sync.Mutex
	t         *testing.T
	responses []stubResponse
	requests  []request
}

type stubResponse struct {
	status int
	body   string
}

func newStubService(t *testing.T, responses ...stubResponse) (*stubService, *dataclient.Client) {
	t.Helper()

	stub := &stubService{t: t, responses: responses}
	srv := httptest.NewServer(http.HandlerFunc(stub.serve))
	t.Cleanup(srv.Close)

	client, err := dataclient.New(dataclient.Config{URL: srv.URL, APIKey: "anon-key"})
	require.NoError(t, err)

	return stub, client
}

func (s *stubService) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, request{
		method: r.Method,
		path:   r.URL.Path,
		query:  r.URL.RawQuery,
		body:   string(body),
		header: r.Header.Clone(),
	})

	if len(s.responses) == 0 {
		s.t.Errorf("unexpected request %s %s", r.Method, r.URL)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	resp := s.responses[0]
	s.responses = s.responses[1:]
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func (s *stubService) last() request {
	s.t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(s.t, s.requests)
	return s.requests[len(s.requests)-1]
}

func (s *stubService) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
