package config

import (
	"errors"
	"fmt"

	"github.com/rohmanhakim/webgrab/pkg/failure"
)

var ErrFileDoesNotExist = errors.New("config file does not exist")
var ErrReadConfigFail = errors.New("failed to read config file")
var ErrConfigParsingFail = errors.New("failed to parse config file")
var ErrInvalidConfig = errors.New("invalid config")

// ConfigError rejects an invalid run before any fetch attempt is made.
// It is always fatal: a run with a broken config never starts.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: %s: %s", e.Field, e.Message)
}

func (e *ConfigError) Severity() failure.Severity {
	return failure.SeverityFatal
}
