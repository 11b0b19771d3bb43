package config

import "errors"

// Loading failures split into two sentinels so callers can branch with
// errors.Is: ErrLoadConfig covers provider and parse failures, while
// ErrInvalidConfig marks values that parsed but cannot run the engine.
var (
	ErrLoadConfig    = errors.New("load config failed")
	ErrInvalidConfig = errors.New("invalid config")
)
