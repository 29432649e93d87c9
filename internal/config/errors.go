// internal/config/errors.go
package config

import "errors"

// Configuration errors
var (
	// ErrInvalidPort indicates the port number is out of valid range
	ErrInvalidPort = errors.New("server port must be between 1 and 65535")

	// ErrInvalidRateLimit indicates a non-positive rate or burst
	ErrInvalidRateLimit = errors.New("rate limit rps must be > 0 and burst at least 1")

	// ErrInvalidGateMode indicates demo.gate is not rules or truthy
	ErrInvalidGateMode = errors.New("invalid demo gate mode")

	// ErrInvalidLogLevel indicates log_level is not a known level
	ErrInvalidLogLevel = errors.New("invalid log level")

	// ErrMissingModelPath indicates a trained variant has no artifact path
	ErrMissingModelPath = errors.New("model paths for base and subgrade are required")
)
