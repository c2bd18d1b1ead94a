package listenable

import (
	"fmt"

	"github.com/randalmurphal/listenable/pkg/listenable/config"
	"github.com/randalmurphal/listenable/pkg/listenable/observability"
	"github.com/randalmurphal/listenable/pkg/listenable/policy"
	"github.com/randalmurphal/listenable/pkg/listenable/target"
)

// Settings is the config-file form of the proxy options.
type Settings struct {
	Policy   policy.Spec `mapstructure:"policy"`
	Metrics  bool        `mapstructure:"metrics"`
	Tracing  bool        `mapstructure:"tracing"`
	LogLevel string      `mapstructure:"log_level"`
}

// LoadSettings decodes cfg into Settings. Unknown keys are rejected.
func LoadSettings(cfg config.Config) (Settings, error) {
	var s Settings
	if err := cfg.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("load settings: %w", err)
	}
	return s, nil
}

// Options converts s into proxy options. A logger is configured only when
// LogLevel is set.
func (s Settings) Options() ([]Option, error) {
	p, err := policy.FromSpec(s.Policy)
	if err != nil {
		return nil, fmt.Errorf("policy: %w", err)
	}

	opts := []Option{
		WithPolicy(p),
		WithMetrics(s.Metrics),
		WithTracing(s.Tracing),
	}
	if s.LogLevel != "" {
		opts = append(opts, WithLogger(observability.NewLogger(observability.ParseLevel(s.LogLevel), nil)))
	}
	return opts, nil
}

// NewFromConfig builds a proxy over t from a loaded config. Options in opts
// are applied after the config-derived ones and take precedence.
func NewFromConfig(t target.Target, cfg config.Config, opts ...Option) (*Proxy, error) {
	s, err := LoadSettings(cfg)
	if err != nil {
		return nil, err
	}

	base, err := s.Options()
	if err != nil {
		return nil, err
	}
	return New(t, append(base, opts...)...), nil
}
