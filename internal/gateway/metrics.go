package gateway

import (
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	duration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "console_gateway_request_duration_seconds",
			Help:    "Duration of requests to the scheduling backend",
			Buckets: prometheus.DefBuckets,
		}, []string{"resource", "method", "status"}),
	}
	reg.MustRegister(m.duration)
	return m
}

func (m *Metrics) observe(path, method string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(resourceOf(path), method, statusClass(status)).Observe(elapsed.Seconds())
}

// resourceOf keeps the first path segment so ids never become label values.
func resourceOf(path string) string {
	path = strings.TrimLeft(path, "/")
	if i := strings.IndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return path
}

func statusClass(status int) string {
	if status == 0 {
		return "network"
	}
	return strconv.Itoa(status/100) + "xx"
}
