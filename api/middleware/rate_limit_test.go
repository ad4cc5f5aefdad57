package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRateStore struct {
	counts map[string]int64
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (s *fakeRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.counts[key]++
	return s.counts[key], nil
}

func newLimitedHandler(policy AuthRatePolicy, store RateLimitStore) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	return AuthRateLimit(policy, store, testLogger())(next)
}

func loginRequest(remoteAddr, email string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"`+email+`","password":"secret"}`))
	req.RemoteAddr = remoteAddr
	return req
}

func TestAuthRateLimitBlocksIPAfterLimit(t *testing.T) {
	policy := AuthRatePolicy{Name: "login", Window: time.Minute, IPLimit: 3}
	handler := newLimitedHandler(policy, newFakeRateStore())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("10.0.0.1:1234", "a@example.com"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.1:1234", "a@example.com"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")

	// a different client is unaffected
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.2:1234", "a@example.com"))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRateLimitTracksEmailAcrossIPs(t *testing.T) {
	policy := AuthRatePolicy{Name: "login", Window: time.Minute, EmailLimit: 2}
	handler := newLimitedHandler(policy, newFakeRateStore())

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("10.0.0.1:1234", "Target@Example.com"))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// same email, new IP: still counted against the email bucket
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.9:1234", "target@example.com"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	handler := newLimitedHandler(AuthRatePolicy{Name: "login"}, newFakeRateStore())

	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("10.0.0.1:1234", "a@example.com"))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestAuthRateLimitLeavesBodyReadable(t *testing.T) {
	policy := AuthRatePolicy{Name: "login", Window: time.Minute, EmailLimit: 5}
	var seen string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = emailFromBody(body)
		w.Write([]byte("ok"))
	})
	handler := AuthRateLimit(policy, newFakeRateStore(), testLogger())(next)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("10.0.0.1:1234", "reader@example.com"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reader@example.com", seen)
}
