package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// configDTO is the on-disk representation. Durations are written in Go
// syntax ("2s", "500ms"). Zero values mean "keep the default".
type configDTO struct {
	MaxDepth               int      `json:"maxDepth,omitempty" yaml:"maxDepth,omitempty"`
	MaxPages               int      `json:"maxPages,omitempty" yaml:"maxPages,omitempty"`
	Concurrency            int      `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	BaseDelay              string   `json:"baseDelay,omitempty" yaml:"baseDelay,omitempty"`
	Jitter                 string   `json:"jitter,omitempty" yaml:"jitter,omitempty"`
	RandomSeed             int64    `json:"randomSeed,omitempty" yaml:"randomSeed,omitempty"`
	RespectRobots          *bool    `json:"respectRobots,omitempty" yaml:"respectRobots,omitempty"`
	MaxRetries             *int     `json:"maxRetries,omitempty" yaml:"maxRetries,omitempty"`
	BackoffInitialDuration string   `json:"backoffInitialDuration,omitempty" yaml:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64  `json:"backoffMultiplier,omitempty" yaml:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     string   `json:"backoffMaxDuration,omitempty" yaml:"backoffMaxDuration,omitempty"`
	Timeout                string   `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	UserAgent              string   `json:"userAgent,omitempty" yaml:"userAgent,omitempty"`
	AllowCrossDomain       bool     `json:"allowCrossDomain,omitempty" yaml:"allowCrossDomain,omitempty"`
	OutputDir              string   `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`
	ExportFormats          []string `json:"exportFormats,omitempty" yaml:"exportFormats,omitempty"`
}

// WithConfigFile builds a Config from a JSON or YAML file, selected by
// extension (.json, .yaml, .yml). Fields absent from the file keep their
// defaults.
func WithConfigFile(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}

	var dto configDTO
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &dto); err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
		}
	case ".json":
		if err := json.Unmarshal(content, &dto); err != nil {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
		}
	default:
		return Config{}, fmt.Errorf("%w: unsupported config extension %q", ErrConfigParsingFail, filepath.Ext(path))
	}

	return newConfigFromDTO(dto)
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	b := WithDefault()

	if dto.MaxDepth != 0 {
		b = b.WithMaxDepth(dto.MaxDepth)
	}
	if dto.MaxPages != 0 {
		b = b.WithMaxPages(dto.MaxPages)
	}
	if dto.Concurrency != 0 {
		b = b.WithConcurrency(dto.Concurrency)
	}
	if dto.BaseDelay != "" {
		d, err := parseDuration("baseDelay", dto.BaseDelay)
		if err != nil {
			return Config{}, err
		}
		b = b.WithBaseDelay(d)
	}
	if dto.Jitter != "" {
		d, err := parseDuration("jitter", dto.Jitter)
		if err != nil {
			return Config{}, err
		}
		b = b.WithJitter(d)
	}
	if dto.RandomSeed != 0 {
		b = b.WithRandomSeed(dto.RandomSeed)
	}
	if dto.RespectRobots != nil {
		b = b.WithRespectRobots(*dto.RespectRobots)
	}
	// pointer field: zero turns retrying off, absent keeps the default
	if dto.MaxRetries != nil {
		b = b.WithMaxRetries(*dto.MaxRetries)
	}
	if dto.BackoffInitialDuration != "" || dto.BackoffMultiplier != 0 || dto.BackoffMaxDuration != "" {
		base := WithDefault().cfg
		initial := base.backoffInitialDuration
		multiplier := base.backoffMultiplier
		max := base.backoffMaxDuration
		var err error
		if dto.BackoffInitialDuration != "" {
			if initial, err = parseDuration("backoffInitialDuration", dto.BackoffInitialDuration); err != nil {
				return Config{}, err
			}
		}
		if dto.BackoffMultiplier != 0 {
			multiplier = dto.BackoffMultiplier
		}
		if dto.BackoffMaxDuration != "" {
			if max, err = parseDuration("backoffMaxDuration", dto.BackoffMaxDuration); err != nil {
				return Config{}, err
			}
		}
		b = b.WithBackoff(initial, multiplier, max)
	}
	if dto.Timeout != "" {
		d, err := parseDuration("timeout", dto.Timeout)
		if err != nil {
			return Config{}, err
		}
		b = b.WithTimeout(d)
	}
	if dto.UserAgent != "" {
		b = b.WithUserAgent(dto.UserAgent)
	}
	if dto.AllowCrossDomain {
		b = b.WithAllowCrossDomain(true)
	}
	if dto.OutputDir != "" {
		b = b.WithOutputDir(dto.OutputDir)
	}
	if len(dto.ExportFormats) > 0 {
		b = b.WithExportFormats(dto.ExportFormats)
	}

	cfg, err := b.Build()
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseDuration(field, raw string) (time.Duration, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &ConfigError{Field: field, Message: fmt.Sprintf("invalid duration %q", raw)}
	}
	return d, nil
}
