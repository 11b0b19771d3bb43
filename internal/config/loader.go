package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if GRIND_CONFIG is set
//  3. env (prefix GRIND_)
func Load(ctx context.Context) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("GRIND_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: GRIND_LOG_LEVEL, GRIND_LEDGER_BACKEND, ...
	// Keys keep their underscores to match the koanf tags on the struct.
	envProvider := env.Provider("GRIND_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "grind_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	switch cfg.LedgerBackend {
	case LedgerMemory:
	case LedgerSQLite:
		if strings.TrimSpace(cfg.LedgerPath) == "" {
			return nil, fmt.Errorf("%w: sqlite ledger requires ledger_path", ErrInvalidConfig)
		}
	default:
		return nil, fmt.Errorf("%w: unknown ledger_backend %q", ErrInvalidConfig, cfg.LedgerBackend)
	}
	return &cfg, nil
}
