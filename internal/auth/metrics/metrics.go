package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks sign-in outcomes and token revocations.
type Metrics struct {
	SignIns       *prometheus.CounterVec
	TokensRevoked prometheus.Counter
}

func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SignIns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_sign_ins_total",
			Help: "Sign-in attempts by outcome",
		}, []string{"outcome"}),
		TokensRevoked: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_tokens_revoked_total",
			Help: "Access tokens revoked on sign-out",
		}),
	}
}

func (m *Metrics) IncrementSignIn(outcome string) {
	m.SignIns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementTokenRevoked() {
	m.TokensRevoked.Inc()
}
