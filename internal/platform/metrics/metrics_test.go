package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry())
	m.ObserveRequest("GET", "/protected", 200, 15*time.Millisecond)
	m.ObserveRequest("GET", "/protected", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "/protected", 403, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/protected", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/protected", "403")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.Latency))
}
