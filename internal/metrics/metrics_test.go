package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveLoanCreated("Home Loan")
	m.ObserveLoanCreated("Home Loan")
	m.ObserveInstallmentPaid(false)
	m.ObserveInstallmentPaid(true)
	m.ObserveError("LOAN_NOT_FOUND")
	m.ObservePortfolio(38102, 95, 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.LoansCreated.WithLabelValues("Home Loan")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.InstallmentsPaid))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LoansCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("LOAN_NOT_FOUND")))
	assert.Equal(t, 38102.0, testutil.ToFloat64(m.MonthlyObligation))
	assert.Equal(t, 95.0, testutil.ToFloat64(m.PaymentHealthScore))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OverdueLoans))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveLoanCreated("Car Loan")
		m.ObserveInstallmentPaid(true)
		m.ObserveDefaulted()
		m.ObserveError("STORE_ERROR")
		m.ObservePortfolio(1, 2, 3)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveDefaulted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "emi_tracker_loans_defaulted_total 1")
}
