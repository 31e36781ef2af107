package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
)

var (
	storageTypes = []string{"memory", "postgres", "sqlite"}
	authTypes    = []string{"none", "apikey", "jwt", "partnerkey"}
	logFormats   = []string{"", "text", "json"}
)

// Validate checks the configuration and reports every problem found, each
// prefixed with its field path.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535, got %d", c.Server.Port))
	}
	if c.Server.MaxBodySize <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_size must be > 0, got %d", c.Server.MaxBodySize))
	}

	if !slices.Contains(storageTypes, c.Storage.Type) {
		errs = append(errs, fmt.Errorf("storage.type must be one of %q, got %q", storageTypes, c.Storage.Type))
	}
	switch c.Storage.Type {
	case "postgres":
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, errors.New(`storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is "postgres"`))
		}
	case "sqlite":
		if c.Storage.SQLite.Path == "" {
			errs = append(errs, errors.New(`storage.sqlite.path is required when storage.type is "sqlite"`))
		}
	}

	if !slices.Contains(authTypes, c.Auth.Type) {
		errs = append(errs, fmt.Errorf("auth.type must be one of %q, got %q", authTypes, c.Auth.Type))
	}
	if c.Auth.Type == "apikey" {
		if len(c.Auth.APIKeys) == 0 {
			errs = append(errs, errors.New(`auth.api_keys must not be empty when auth.type is "apikey"`))
		}
		for i, k := range c.Auth.APIKeys {
			if k.Key == "" && k.KeyFile == "" {
				errs = append(errs, fmt.Errorf("auth.api_keys[%d]: key or key_file is required", i))
			}
			if k.Subject == "" {
				errs = append(errs, fmt.Errorf("auth.api_keys[%d].subject is required", i))
			}
		}
	}
	if c.Auth.Type == "jwt" {
		if _, err := url.ParseRequestURI(c.Auth.JWT.JWKSURL); err != nil {
			errs = append(errs, fmt.Errorf("auth.jwt.jwks_url must be a URL when auth.type is \"jwt\": %q", c.Auth.JWT.JWKSURL))
		}
	}
	for tier, rpm := range c.Auth.RateLimit.Tiers {
		if rpm < 0 {
			errs = append(errs, fmt.Errorf("auth.rate_limit.tiers.%s must be >= 0, got %d", tier, rpm))
		}
	}

	if cost := c.Platform.BcryptCost; cost != 0 && (cost < 4 || cost > 31) {
		errs = append(errs, fmt.Errorf("platform.bcrypt_cost must be in 4..31, got %d", cost))
	}

	if r := c.Observability.Tracing.SampleRatio; r < 0 || r > 1 {
		errs = append(errs, fmt.Errorf("observability.tracing.sample_ratio must be in [0,1], got %g", r))
	}

	if !slices.Contains(logFormats, c.Debug.Format) {
		errs = append(errs, fmt.Errorf("debug.format must be \"text\" or \"json\", got %q", c.Debug.Format))
	}

	return errors.Join(errs...)
}
