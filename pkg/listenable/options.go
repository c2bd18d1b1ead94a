package listenable

import (
	"context"
	"log/slog"

	"github.com/randalmurphal/listenable/pkg/listenable/observability"
	"github.com/randalmurphal/listenable/pkg/listenable/policy"
)

// proxyConfig holds construction-time settings for a Proxy.
type proxyConfig struct {
	policy  policy.Policy
	equal   func(a, b any) bool
	logger  *slog.Logger
	metrics observability.MetricsRecorder
	spans   observability.SpanManager
	ctx     context.Context
}

func defaultProxyConfig() proxyConfig {
	return proxyConfig{
		policy:  policy.AllowAll(),
		equal:   sameValue,
		metrics: observability.NoopMetrics{},
		spans:   observability.NoopSpanManager{},
		ctx:     context.Background(),
	}
}

// Option configures a Proxy.
type Option func(*proxyConfig)

// WithPolicy sets the key-admission policy.
// Default: policy.AllowAll()
//
// A policy.AllowExisting() policy is snapshotted from the target's keys when
// the proxy is built; keys added to the target later stay inadmissible.
func WithPolicy(p policy.Policy) Option {
	return func(c *proxyConfig) {
		c.policy = p
	}
}

// WithEqual overrides how a write decides whether the value changed.
// Default: == for comparable values, identity for maps and slices.
func WithEqual(fn func(a, b any) bool) Option {
	return func(c *proxyConfig) {
		if fn != nil {
			c.equal = fn
		}
	}
}

// WithLogger enables structured logging of accesses, denials and listener failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *proxyConfig) {
		c.logger = logger
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
func WithMetrics(enabled bool) Option {
	return func(c *proxyConfig) {
		if enabled {
			c.metrics = observability.NewMetricsRecorder()
		} else {
			c.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a custom metrics recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(c *proxyConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables one OpenTelemetry span per operation, with a span event
// per dispatched event.
func WithTracing(enabled bool) Option {
	return func(c *proxyConfig) {
		if enabled {
			c.spans = observability.NewSpanManager()
		} else {
			c.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a custom span manager.
func WithSpanManager(sm observability.SpanManager) Option {
	return func(c *proxyConfig) {
		if sm != nil {
			c.spans = sm
		}
	}
}

// WithContext sets the parent context for operation spans and metrics.
// Default: context.Background()
func WithContext(ctx context.Context) Option {
	return func(c *proxyConfig) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}
