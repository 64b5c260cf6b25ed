package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "emi_tracker"

// Metrics is the tracker's Prometheus instrumentation. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	gatherer prometheus.Gatherer

	LoansCreated       *prometheus.CounterVec
	InstallmentsPaid   prometheus.Counter
	LoansCompleted     prometheus.Counter
	LoansDefaulted     prometheus.Counter
	LoansDeleted       prometheus.Counter
	Errors             *prometheus.CounterVec
	MonthlyObligation  prometheus.Gauge
	PaymentHealthScore prometheus.Gauge
	OverdueLoans       prometheus.Gauge
	RemindersSent      prometheus.Counter
}

// New registers the tracker metrics on reg.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		gatherer: reg,
		LoansCreated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_created_total",
			Help:      "Loans created, by loan type.",
		}, []string{"loan_type"}),
		InstallmentsPaid: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "installments_paid_total",
			Help:      "Installments marked as paid.",
		}),
		LoansCompleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_completed_total",
			Help:      "Loans that reached their final installment.",
		}),
		LoansDefaulted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_defaulted_total",
			Help:      "Loans marked as defaulted.",
		}),
		LoansDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loans_deleted_total",
			Help:      "Loans removed from the tracker.",
		}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Failed tracker operations, by error code.",
		}, []string{"code"}),
		MonthlyObligation: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "monthly_obligation",
			Help:      "Sum of monthly payments over active loans at the last portfolio summary.",
		}),
		PaymentHealthScore: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "payment_health_score",
			Help:      "Portfolio payment health score at the last portfolio summary.",
		}),
		OverdueLoans: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overdue_loans",
			Help:      "Active loans past their next due date at the last check.",
		}),
		RemindersSent: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_sent_total",
			Help:      "Due payment reminders emitted by the scheduler.",
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveLoanCreated(loanType string) {
	if m == nil {
		return
	}
	m.LoansCreated.WithLabelValues(loanType).Inc()
}

func (m *Metrics) ObserveInstallmentPaid(completed bool) {
	if m == nil {
		return
	}
	m.InstallmentsPaid.Inc()
	if completed {
		m.LoansCompleted.Inc()
	}
}

func (m *Metrics) ObserveDefaulted() {
	if m == nil {
		return
	}
	m.LoansDefaulted.Inc()
}

func (m *Metrics) ObserveDeleted() {
	if m == nil {
		return
	}
	m.LoansDeleted.Inc()
}

func (m *Metrics) ObserveError(code string) {
	if m == nil || code == "" {
		return
	}
	m.Errors.WithLabelValues(code).Inc()
}

func (m *Metrics) ObservePortfolio(monthlyObligation, healthScore float64, overdue int) {
	if m == nil {
		return
	}
	m.MonthlyObligation.Set(monthlyObligation)
	m.PaymentHealthScore.Set(healthScore)
	m.OverdueLoans.Set(float64(overdue))
}

func (m *Metrics) ObserveOverdue(overdue int) {
	if m == nil {
		return
	}
	m.OverdueLoans.Set(float64(overdue))
}

func (m *Metrics) ObserveReminders(n int) {
	if m == nil {
		return
	}
	m.RemindersSent.Add(float64(n))
}
