package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentHandlerUsesRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(InstrumentHandler)
	router.Put("/admin/update-wallet/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues("PUT", "/admin/update-wallet/{id}", "418"))

	req := httptest.NewRequest(http.MethodPut, "/admin/update-wallet/42", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	after := testutil.ToFloat64(httpRequests.WithLabelValues("PUT", "/admin/update-wallet/{id}", "418"))
	assert.Equal(t, before+1, after)
}

func TestRecordAccrual(t *testing.T) {
	beforeUsers := testutil.ToFloat64(accrualUsers)
	beforeAmount := testutil.ToFloat64(accrualAmount)

	RecordAccrual("admin", 10*time.Millisecond, 2, decimal.NewFromInt(22), true)
	RecordAccrual("admin", time.Millisecond, 5, decimal.NewFromInt(100), false)

	assert.Equal(t, beforeUsers+2, testutil.ToFloat64(accrualUsers))
	assert.Equal(t, beforeAmount+22, testutil.ToFloat64(accrualAmount))
	assert.Equal(t, float64(1), testutil.ToFloat64(accrualRuns.WithLabelValues("admin", "false")))
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordPurchase("success")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dailyyield_wallet_purchases_total")
}
