package config

import (
	"fmt"
	"time"
)

// Export formats understood by the aggregator.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatExcel    = "excel"
	FormatMarkdown = "markdown"
)

var knownFormats = map[string]struct{}{
	FormatJSON:     {},
	FormatCSV:      {},
	FormatExcel:    {},
	FormatMarkdown: {},
}

type Config struct {
	//===============
	// Limits
	//===============
	// Maximum number of hyperlink hops from a seed URL
	maxDepth int
	// Maximum number of total pages allowed to be fetched in crawl mode
	maxPages int

	//===============
	// Politeness
	//===============
	// Maximum number of in-flight fetches; per-host ordering is still
	// serialized by the rate limiter.
	concurrency int
	// Minimum waiting time enforced between two requests to the same host.
	baseDelay time.Duration
	// Randomized variation added on top of the base delay.
	jitter time.Duration
	// Controls the random number generator (0 means current time)
	randomSeed int64
	// Whether robots.txt is consulted before visiting a path
	respectRobots bool

	//===============
	// Retry
	//===============
	// Maximum number of additional attempts after a failed first fetch.
	// Zero disables retries entirely.
	maxRetries int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff
	backoffMaxDuration time.Duration

	//===============
	// Fetch
	//===============
	// Maximum duration of a single fetch request
	timeout time.Duration
	// User agent used in the request header
	userAgent string

	//===============
	// Crawl scope
	//===============
	// Whether discovered links outside the seed host may be followed
	allowCrossDomain bool

	//===============
	// Output
	//===============
	// Directory in which export files are written
	outputDir string
	// Formats the aggregator serializes to
	exportFormats []string
}

func (c *Config) MaxDepth() int                         { return c.maxDepth }
func (c *Config) MaxPages() int                         { return c.maxPages }
func (c *Config) Concurrency() int                      { return c.concurrency }
func (c *Config) BaseDelay() time.Duration              { return c.baseDelay }
func (c *Config) Jitter() time.Duration                 { return c.jitter }
func (c *Config) RandomSeed() int64                     { return c.randomSeed }
func (c *Config) RespectRobots() bool                   { return c.respectRobots }
func (c *Config) MaxRetries() int                       { return c.maxRetries }
func (c *Config) BackoffInitialDuration() time.Duration { return c.backoffInitialDuration }
func (c *Config) BackoffMultiplier() float64            { return c.backoffMultiplier }
func (c *Config) BackoffMaxDuration() time.Duration     { return c.backoffMaxDuration }
func (c *Config) Timeout() time.Duration                { return c.timeout }
func (c *Config) UserAgent() string                     { return c.userAgent }
func (c *Config) AllowCrossDomain() bool                { return c.allowCrossDomain }
func (c *Config) OutputDir() string                     { return c.outputDir }

func (c *Config) ExportFormats() []string {
	formats := make([]string, len(c.exportFormats))
	copy(formats, c.exportFormats)
	return formats
}

// Builder assembles a Config through method chaining, deferring
// validation to Build.
type Builder struct {
	cfg Config
}

// WithDefault starts a builder from the default configuration. The
// defaults mirror the interactive tool this engine grew out of: 2s base
// delay, 3 retries, 30s timeout, 50 pages.
func WithDefault() Builder {
	return Builder{cfg: Config{
		maxDepth:               3,
		maxPages:               50,
		concurrency:            3,
		baseDelay:              2 * time.Second,
		jitter:                 500 * time.Millisecond,
		respectRobots:          true,
		maxRetries:             3,
		backoffInitialDuration: 1 * time.Second,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     30 * time.Second,
		timeout:                30 * time.Second,
		userAgent:              defaultUserAgent,
		allowCrossDomain:       false,
		outputDir:              "output",
		exportFormats:          []string{FormatJSON},
	}}
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

func (b Builder) WithMaxDepth(depth int) Builder {
	b.cfg.maxDepth = depth
	return b
}

func (b Builder) WithMaxPages(pages int) Builder {
	b.cfg.maxPages = pages
	return b
}

func (b Builder) WithConcurrency(concurrency int) Builder {
	b.cfg.concurrency = concurrency
	return b
}

func (b Builder) WithBaseDelay(delay time.Duration) Builder {
	b.cfg.baseDelay = delay
	return b
}

func (b Builder) WithJitter(jitter time.Duration) Builder {
	b.cfg.jitter = jitter
	return b
}

func (b Builder) WithRandomSeed(seed int64) Builder {
	b.cfg.randomSeed = seed
	return b
}

func (b Builder) WithRespectRobots(respect bool) Builder {
	b.cfg.respectRobots = respect
	return b
}

func (b Builder) WithMaxRetries(retries int) Builder {
	b.cfg.maxRetries = retries
	return b
}

func (b Builder) WithBackoff(initial time.Duration, multiplier float64, max time.Duration) Builder {
	b.cfg.backoffInitialDuration = initial
	b.cfg.backoffMultiplier = multiplier
	b.cfg.backoffMaxDuration = max
	return b
}

func (b Builder) WithTimeout(timeout time.Duration) Builder {
	b.cfg.timeout = timeout
	return b
}

func (b Builder) WithUserAgent(userAgent string) Builder {
	b.cfg.userAgent = userAgent
	return b
}

func (b Builder) WithAllowCrossDomain(allow bool) Builder {
	b.cfg.allowCrossDomain = allow
	return b
}

func (b Builder) WithOutputDir(dir string) Builder {
	b.cfg.outputDir = dir
	return b
}

func (b Builder) WithExportFormats(formats []string) Builder {
	b.cfg.exportFormats = formats
	return b
}

// Build validates the assembled configuration. An invalid configuration
// is rejected here, before any fetch attempt.
func (b Builder) Build() (Config, error) {
	cfg := b.cfg

	if cfg.maxDepth < 0 {
		return Config{}, &ConfigError{Field: "maxDepth", Message: "must be >= 0"}
	}
	if cfg.maxPages < 1 {
		return Config{}, &ConfigError{Field: "maxPages", Message: "must be >= 1"}
	}
	if cfg.concurrency < 1 {
		return Config{}, &ConfigError{Field: "concurrency", Message: "must be >= 1"}
	}
	if cfg.baseDelay < 0 {
		return Config{}, &ConfigError{Field: "baseDelay", Message: "must be >= 0"}
	}
	if cfg.maxRetries < 0 {
		return Config{}, &ConfigError{Field: "maxRetries", Message: "must be >= 0"}
	}
	if cfg.timeout <= 0 {
		return Config{}, &ConfigError{Field: "timeout", Message: "must be > 0"}
	}
	if cfg.backoffMultiplier < 1 {
		return Config{}, &ConfigError{Field: "backoffMultiplier", Message: "must be >= 1"}
	}
	if cfg.userAgent == "" {
		return Config{}, &ConfigError{Field: "userAgent", Message: "must not be empty"}
	}
	if len(cfg.exportFormats) == 0 {
		return Config{}, &ConfigError{Field: "exportFormats", Message: "at least one format required"}
	}
	seen := make(map[string]struct{}, len(cfg.exportFormats))
	for _, f := range cfg.exportFormats {
		if _, ok := knownFormats[f]; !ok {
			return Config{}, &ConfigError{
				Field:   "exportFormats",
				Message: fmt.Sprintf("unknown format %q", f),
			}
		}
		if _, dup := seen[f]; dup {
			return Config{}, &ConfigError{
				Field:   "exportFormats",
				Message: fmt.Sprintf("duplicate format %q", f),
			}
		}
		seen[f] = struct{}{}
	}

	return cfg, nil
}
