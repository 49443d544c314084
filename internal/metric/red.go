// Package metric records RED (rate, errors, duration) metrics for service
// decorators.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	perrors "github.com/mesh-intelligence/campus/internal/platform/errors"
)

// REDClient records calls, errors, and durations of named operations.
type REDClient struct {
	now      func() time.Time
	calls    *prometheus.CounterVec
	errs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the metrics of one service, "service_<subsystem>_*", and
// registers them with reg.
func New(reg prometheus.Registerer, subsystem string) *REDClient {
	c := &REDClient{
		now: time.Now,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "service",
			Subsystem: subsystem,
			Name:      "call_total",
			Help:      "Number of calls",
		}, []string{"method"}),
		errs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "service",
			Subsystem: subsystem,
			Name:      "error_total",
			Help:      "Number of errors encountered",
		}, []string{"method", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "service",
			Subsystem: subsystem,
			Name:      "duration",
			Help:      "Duration of calls",
		}, []string{"method"}),
	}
	reg.MustRegister(c.calls, c.errs, c.duration)
	return c
}

// Record starts timing method. The returned func records the outcome and
// hands err back unchanged.
func (c *REDClient) Record(method string) func(error) error {
	start := c.now()
	return func(err error) error {
		c.calls.WithLabelValues(method).Inc()
		if err != nil {
			c.errs.WithLabelValues(method, perrors.ErrorCode(err)).Inc()
		}
		c.duration.WithLabelValues(method).Observe(c.now().Sub(start).Seconds())
		return err
	}
}
