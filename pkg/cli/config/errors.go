package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrConfigNotFound   = goerr.New("configuration file not found")
	ErrInvalidConfig    = goerr.New("invalid configuration")
	ErrInvalidDuration  = goerr.New("invalid duration")
	ErrMissingName      = goerr.New("name is required")
	ErrInvalidLogLevel  = goerr.New("invalid log level")
	ErrInvalidLogFormat = goerr.New("invalid log format")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	SectionKey    = "section"
	IndexKey      = "index"
	IDKey         = "id"
	ValueKey      = "value"
)
