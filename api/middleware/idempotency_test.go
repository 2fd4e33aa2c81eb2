package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/hourstay-backend/pkg/auth"
	"github.com/angelmondragon/hourstay-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
)

// memoryIdempotencyStore keeps keys in a map and mimics the redis miss reply.
type memoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{entries: map[string]string{}}
}

func (m *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.entries[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *memoryIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key], _ = value.(string)
	return nil
}

func (m *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.entries[key]; taken {
		return false, nil
	}
	m.entries[key], _ = value.(string)
	return true, nil
}

func (m *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

func (m *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (m *memoryIdempotencyStore) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// routedRequest builds a request as chi would hand it to route middleware.
// An empty key leaves the Idempotency-Key header unset.
func routedRequest(method, pattern, key, body string) *http.Request {
	req := httptest.NewRequest(method, pattern, strings.NewReader(body))
	if key != "" {
		req.Header.Set(IdempotencyHeader, key)
	}
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope.Error.Code
}

const markPaidPath = "/api/v1/bonuses/mark-paid"

func TestRouteTTLSelection(t *testing.T) {
	cases := map[string]struct {
		method, pattern string
		ttl             time.Duration
		matched         bool
	}{
		"mark paid":                   {http.MethodPost, markPaidPath, criticalIdempotencyTTL, true},
		"create bonus":                {http.MethodPost, "/api/v1/bonuses", defaultIdempotencyTTL, true},
		"create bonus trailing slash": {http.MethodPost, "/api/v1/bonuses/", defaultIdempotencyTTL, true},
		"balance credit":              {http.MethodPost, "/api/v1/bonuses/credits", criticalIdempotencyTTL, true},
		"withdrawal request":          {http.MethodPost, "/api/v1/withdrawals", criticalIdempotencyTTL, true},
		"withdrawal process":          {http.MethodPost, "/api/v1/withdrawals/{withdrawalId}/process", criticalIdempotencyTTL, true},
		"withdrawal process raw path": {http.MethodPost, "/api/v1/withdrawals/5d0c/process", criticalIdempotencyTTL, true},
		"withdrawal cancel":           {http.MethodPost, "/api/v1/withdrawals/{id}/cancel", defaultIdempotencyTTL, true},
		"withdrawal start":            {http.MethodPost, "/api/v1/withdrawals/{withdrawalId}/start", 0, false},
		"bonus list":                  {http.MethodGet, "/api/v1/bonuses", 0, false},
		"credit list":                 {http.MethodGet, "/api/v1/bonuses/credits", 0, false},
		"login":                       {http.MethodPost, "/api/v1/auth/login", 0, false},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			ttl, matched := routeTTL(tc.method, tc.pattern)
			require.Equal(t, tc.matched, matched)
			if matched {
				assert.Equal(t, tc.ttl, ttl)
			}
		})
	}
}

func TestIdempotencyRequiresKeyOnMatchedRoute(t *testing.T) {
	reached := false
	h := Idempotency(newMemoryIdempotencyStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, routedRequest(http.MethodPost, markPaidPath, "", `{}`))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeValidation), errorCode(t, rec))
	assert.False(t, reached)
}

func TestIdempotencyPassesThroughUnmatchedRoutes(t *testing.T) {
	reached := false
	h := Idempotency(newMemoryIdempotencyStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
	}))

	h.ServeHTTP(httptest.NewRecorder(), routedRequest(http.MethodGet, "/api/v1/bonuses", "", ""))
	assert.True(t, reached)
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	calls := 0
	h := Idempotency(newMemoryIdempotencyStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"paid":3}`))
	}))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, routedRequest(http.MethodPost, markPaidPath, "batch-7", `{"ids":[1,2,3]}`))
	require.Equal(t, http.StatusAccepted, first.Code)
	assert.Empty(t, first.Header().Get("Idempotent-Replay"))

	second := httptest.NewRecorder()
	h.ServeHTTP(second, routedRequest(http.MethodPost, markPaidPath, "batch-7", `{"ids":[1,2,3]}`))

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusAccepted, second.Code)
	assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replay"))
	assert.JSONEq(t, `{"paid":3}`, second.Body.String())
}

func TestIdempotencyRejectsReusedKeyWithDifferentBody(t *testing.T) {
	h := Idempotency(newMemoryIdempotencyStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	h.ServeHTTP(httptest.NewRecorder(), routedRequest(http.MethodPost, markPaidPath, "k", `{"ids":[1]}`))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, routedRequest(http.MethodPost, markPaidPath, "k", `{"ids":[2]}`))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, string(pkgerrors.CodeIdempotency), errorCode(t, rec))
}

func TestIdempotencyScopesKeysPerUser(t *testing.T) {
	calls := 0
	h := Idempotency(newMemoryIdempotencyStore(), nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	}))

	for range 2 {
		req := routedRequest(http.MethodPost, "/api/v1/withdrawals", "same", `{"amount":"10.00"}`)
		principal := auth.Principal{UserID: uuid.New(), Role: enums.UserRoleManager}
		h.ServeHTTP(httptest.NewRecorder(), req.WithContext(WithPrincipal(req.Context(), principal)))
	}
	assert.Equal(t, 2, calls)
}

func TestIdempotencyRejectsInFlightDuplicate(t *testing.T) {
	store := newMemoryIdempotencyStore()
	var duplicate *httptest.ResponseRecorder

	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if duplicate == nil {
			duplicate = httptest.NewRecorder()
			inner := Idempotency(store, nil)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Error("duplicate reached the handler")
			}))
			inner.ServeHTTP(duplicate, routedRequest(http.MethodPost, "/api/v1/withdrawals", "w1", `{"amount":1000}`))
		}
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, routedRequest(http.MethodPost, "/api/v1/withdrawals", "w1", `{"amount":1000}`))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, duplicate)
	assert.Equal(t, http.StatusConflict, duplicate.Code)
}

func TestIdempotencyReleasesKeyAfterServerError(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	h := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	for range 2 {
		h.ServeHTTP(httptest.NewRecorder(), routedRequest(http.MethodPost, markPaidPath, "retry", `{}`))
	}
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, store.size())
}
