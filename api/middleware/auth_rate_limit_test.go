package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/hourstay-backend/pkg/errors"
)

type countingRateStore struct {
	mu   sync.Mutex
	hits map[string]int64
}

func newCountingRateStore() *countingRateStore {
	return &countingRateStore{hits: map[string]int64{}}
}

func (c *countingRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hits[scope]++
	return c.hits[scope] <= limit, c.hits[scope], nil
}

func loginRequest(remoteAddr, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	if remoteAddr != "" {
		req.RemoteAddr = remoteAddr
	}
	return req
}

func statusOK(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func TestAuthRateLimitKeepsBodyForHandler(t *testing.T) {
	const body = `{"email":"manager@hourstay.test","password":"secret"}`
	var seen string
	h := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 2, 2), newCountingRateStore(), nil)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, err := io.ReadAll(r.Body)
			require.NoError(t, err)
			seen = string(raw)
			w.WriteHeader(http.StatusOK)
		}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, loginRequest("1.2.3.4:5678", body))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, seen)
}

func TestAuthRateLimitBlocksRepeatedEmail(t *testing.T) {
	h := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 0, 2), newCountingRateStore(), nil)(http.HandlerFunc(statusOK))

	var codes []int
	var last *httptest.ResponseRecorder
	for range 3 {
		last = httptest.NewRecorder()
		h.ServeHTTP(last, loginRequest("1.2.3.4:5678", `{"email":"blocked@hourstay.test","password":"x"}`))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, string(pkgerrors.CodeRateLimit), errorCode(t, last))
}

func TestAuthRateLimitBlocksRepeatedIPWithRetryAfter(t *testing.T) {
	h := AuthRateLimit(NewAuthRateLimitPolicy("login", time.Minute, 1, 0), newCountingRateStore(), nil)(http.HandlerFunc(statusOK))

	first := httptest.NewRecorder()
	h.ServeHTTP(first, loginRequest("5.6.7.8:1234", `{}`))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, loginRequest("5.6.7.8:1234", `{"email":"someone-else@hourstay.test"}`))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestAuthRateLimitScopeKeys(t *testing.T) {
	store := newCountingRateStore()
	h := AuthRateLimit(NewAuthRateLimitPolicy("", time.Minute, 5, 5), store, nil)(http.HandlerFunc(statusOK))

	req := loginRequest("", `{"email":" Owner@HourStay.test ","password":"secret"}`)
	req.Header.Set("X-Forwarded-For", "9.9.9.9, 10.0.0.1")
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, map[string]int64{
		"login:ip:9.9.9.9": 1,
		"login:email:" + hashValue("owner@hourstay.test"): 1,
	}, store.hits)
}

func TestAuthRateLimitDisabledPolicy(t *testing.T) {
	store := newCountingRateStore()
	h := AuthRateLimit(NewAuthRateLimitPolicy("login", 0, 1, 1), store, nil)(http.HandlerFunc(statusOK))

	for range 3 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, loginRequest("", `{}`))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Empty(t, store.hits)
}

func TestClientIPFallbacks(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.1.1:443"
	assert.Equal(t, "10.1.1.1", clientIP(req))

	req.Header.Set("X-Real-IP", " 172.16.0.9 ")
	assert.Equal(t, "172.16.0.9", clientIP(req))

	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	assert.Equal(t, "203.0.113.5", clientIP(req))
}
