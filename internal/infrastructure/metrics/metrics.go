// Package metrics exposes the station agent's prometheus collectors.
package metrics

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "storedesk"

// Heartbeat tick outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeTransientError = "transient_error"
	OutcomeSchemaError    = "schema_error"
	OutcomeNoSession      = "no_session"
)

// Metrics groups every collector the agent records. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	HeartbeatTicks     *prometheus.CounterVec
	Logins             *prometheus.CounterVec
	Logouts            prometheus.Counter
	SessionValidations *prometheus.CounterVec
	PageDecisions      *prometheus.CounterVec
	Requests           *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
}

// New builds the collectors and registers them with reg. Collectors already
// registered under the same name are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{}
	var err error

	if m.HeartbeatTicks, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "heartbeat",
		Name:      "ticks_total",
		Help:      "Heartbeat ticks partitioned by outcome.",
	}, []string{"outcome"})); err != nil {
		return nil, err
	}

	if m.Logins, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts partitioned by result.",
	}, []string{"result"})); err != nil {
		return nil, err
	}

	if m.Logouts, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "logouts_total",
		Help:      "Completed logouts.",
	})); err != nil {
		return nil, err
	}

	if m.SessionValidations, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "session_validations_total",
		Help:      "Session validations partitioned by reason (empty reason is valid).",
	}, []string{"reason"})); err != nil {
		return nil, err
	}

	if m.PageDecisions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pages",
		Name:      "access_decisions_total",
		Help:      "Page access decisions partitioned by page and decision.",
	}, []string{"page", "decision"})); err != nil {
		return nil, err
	}

	if m.Requests, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests partitioned by method, route and status code.",
	}, []string{"method", "route", "status"})); err != nil {
		return nil, err
	}

	if m.RequestDuration, err = register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latencies in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})); err != nil {
		return nil, err
	}

	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return c, fmt.Errorf("register collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(C)
		if !ok {
			return c, fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		return existing, nil
	}
	return c, nil
}

func (m *Metrics) HeartbeatTick(outcome string) {
	if m == nil {
		return
	}
	m.HeartbeatTicks.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Login(result string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(result).Inc()
}

func (m *Metrics) Logout() {
	if m == nil {
		return
	}
	m.Logouts.Inc()
}

func (m *Metrics) SessionValidation(reason string) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "valid"
	}
	m.SessionValidations.WithLabelValues(reason).Inc()
}

func (m *Metrics) PageDecision(page, decision string) {
	if m == nil {
		return
	}
	m.PageDecisions.WithLabelValues(page, decision).Inc()
}

// Handler returns a gin middleware recording request count and latency.
func (m *Metrics) Handler() gin.HandlerFunc {
	if m == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := prometheus.Labels{
			"method": c.Request.Method,
			"route":  route,
			"status": strconv.Itoa(c.Writer.Status()),
		}
		m.Requests.With(labels).Inc()
		m.RequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}
