package jwt

import "time"

// Config is parsed from the environment with caarlos0/env. The two
// secrets must differ; FromConfig enforces that via New.
type Config struct {
	AccessSecret  string        `env:"JWT_ACCESS_SECRET,required"`
	RefreshSecret string        `env:"JWT_REFRESH_SECRET,required"`
	AccessTTL     time.Duration `env:"JWT_ACCESS_TTL" envDefault:"15m"`
	RefreshTTL    time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`
}

// FromConfig builds a Service from environment-sourced settings.
func FromConfig(cfg Config, opts ...Option) (*Service, error) {
	base := []Option{
		WithAccessTTL(cfg.AccessTTL),
		WithRefreshTTL(cfg.RefreshTTL),
	}
	return New(cfg.AccessSecret, cfg.RefreshSecret, append(base, opts...)...)
}
