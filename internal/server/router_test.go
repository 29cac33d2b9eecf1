package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dailyyield/apiserver/config"
	"github.com/dailyyield/apiserver/internal/handlers"
	"github.com/dailyyield/apiserver/internal/store/memstore"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() config.Config {
	return config.Config{
		Server: config.ServerConfig{
			RequestTimeout: 5 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Auth:    config.AuthConfig{JWTSecret: "router-secret", TokenTTL: time.Hour},
		Signup:  config.SignupConfig{RequireReferral: true, RequireEmail: true},
		Metrics: config.MetricsConfig{Enabled: true},
	}
}

func newTestRouter(t *testing.T, cfg config.Config, limiter *handlers.RateLimiter) *chi.Mux {
	t.Helper()
	logger, _ := test.NewNullLogger()
	repo := memstore.New()
	svc := NewServices(cfg, Repositories{
		Users:     repo,
		Packages:  repo.Packages(),
		Purchases: repo,
	}, nil, nil, logger)
	return NewRouter(cfg, svc, limiter, logger)
}

func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/packages", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dailyyield_http_requests_total")
	assert.Contains(t, rec.Body.String(), `route="/packages"`)
}

func TestRouterWithoutMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Metrics.Enabled = false
	router := newTestRouter(t, cfg, nil)

	rec := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, testConfig(), nil)

	req := httptest.NewRequest(http.MethodOptions, "/buy-package", nil)
	req.Header.Set("Origin", "https://app.dailyyield.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")

	rec := serve(router, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestRouterRateLimitsLogin(t *testing.T) {
	logger, _ := test.NewNullLogger()
	router := newTestRouter(t, testConfig(), handlers.NewRateLimiter(0.001, 1, logger))

	login := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(`{"mobile_number":"1","password":"x"}`))
		req.RemoteAddr = "203.0.113.9:4000"
		return serve(router, req)
	}

	assert.Equal(t, http.StatusNotFound, login().Code)
	rec := login()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Message)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/packages", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
