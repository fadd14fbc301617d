package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the roster module.
// Tracks saga outcomes, conflicts, deletions and view latency.
type Metrics struct {
	AccountsCreated      prometheus.Counter
	ProvisioningFailures *prometheus.CounterVec
	PartialAccounts      prometheus.Counter
	Conflicts            *prometheus.CounterVec
	Deletions            *prometheus.CounterVec
	AffiliatesSaved      prometheus.Counter
	ProvisioningDuration prometheus.Histogram
	ViewDuration         prometheus.Histogram
}

var durationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1}

// New creates a Metrics instance registered on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the roster metrics on reg. Tests pass a fresh
// prometheus.NewRegistry() to avoid duplicate registration.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AccountsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_accounts_created_total",
			Help: "Total number of leader accounts provisioned",
		}),
		ProvisioningFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_provisioning_failures_total",
			Help: "Account provisioning failures by the stage they stopped in",
		}, []string{"stage"}),
		PartialAccounts: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_partial_accounts_total",
			Help: "Identities or profiles left behind after a failed compensation",
		}),
		Conflicts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_uniqueness_conflicts_total",
			Help: "Email and DPI collisions by reason",
		}, []string{"reason"}),
		Deletions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_deletions_total",
			Help: "Deleted records by kind",
		}, []string{"kind"}),
		AffiliatesSaved: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_affiliates_saved_total",
			Help: "Affiliates created or edited",
		}),
		ProvisioningDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "roster_provisioning_duration_seconds",
			Help:    "Duration of the account provisioning saga",
			Buckets: durationBuckets,
		}),
		ViewDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "roster_view_duration_seconds",
			Help:    "Duration of roster view aggregation",
			Buckets: durationBuckets,
		}),
	}
}

func (m *Metrics) IncrementAccountCreated() {
	m.AccountsCreated.Inc()
}

func (m *Metrics) IncrementProvisioningFailure(stage string) {
	m.ProvisioningFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) IncrementPartialAccount() {
	m.PartialAccounts.Inc()
}

func (m *Metrics) IncrementConflict(reason string) {
	m.Conflicts.WithLabelValues(reason).Inc()
}

func (m *Metrics) IncrementDeletion(kind string) {
	m.Deletions.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementAffiliateSaved() {
	m.AffiliatesSaved.Inc()
}

// ObserveProvisioning records the saga duration.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveProvisioning(start time.Time) {
	m.ProvisioningDuration.Observe(time.Since(start).Seconds())
}

// ObserveView records the duration of a roster view build.
func (m *Metrics) ObserveView(start time.Time) {
	m.ViewDuration.Observe(time.Since(start).Seconds())
}
