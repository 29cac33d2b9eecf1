package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
)

func TestRateLimiterPerClient(t *testing.T) {
	logger, hook := test.NewNullLogger()
	limiter := NewRateLimiter(0.001, 2, logger)
	handler := limiter.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5000"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1:5002"))
	assert.Equal(t, http.StatusNoContent, call("10.0.0.2:5000"))

	if assert.NotNil(t, hook.LastEntry()) {
		assert.Equal(t, "10.0.0.1", hook.LastEntry().Data["client"])
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.7:443"
	assert.Equal(t, "192.168.1.7", clientIP(req))

	req.RemoteAddr = "192.168.1.7"
	assert.Equal(t, "192.168.1.7", clientIP(req))
}
