package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rohmanhakim/webgrab/internal/config"
)

var (
	cfgFile          string
	maxDepth         int
	maxPages         int
	concurrency      int
	baseDelay        time.Duration
	jitter           time.Duration
	randomSeed       int64
	maxRetries       int
	timeout          time.Duration
	userAgent        string
	outputDir        string
	outputName       string
	exportFormats    []string
	ignoreRobots     bool
	allowCrossDomain bool
	verbose          bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "webgrab",
	Short: "A polite universal web scraper.",
	Long: `webgrab fetches web pages and turns them into structured, normalized
records: title, metadata, visible text, links, images, contact addresses,
and a Markdown rendition of the content.

It can scrape a single page, crawl a site breadth-first within depth and
page limits, or work through an explicit list of URLs. Results are
exported to JSON, CSV, Excel, or Markdown.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path, JSON or YAML (e.g., /home/myuser/config.yaml)")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "maximum link depth from the seed URL (crawl mode)")
	rootCmd.PersistentFlags().IntVar(&maxPages, "max-pages", 0, "maximum number of pages to fetch (crawl mode)")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of concurrent fetch workers")
	rootCmd.PersistentFlags().DurationVar(&baseDelay, "base-delay", 0, "base delay between HTTP requests to the same host")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to base delay")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().IntVar(&maxRetries, "max-retries", -1, "retries after a failed fetch, 0 disables retrying")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory for export files")
	rootCmd.PersistentFlags().StringVar(&outputName, "output-name", "", "base name for export files (default: mode plus timestamp)")
	rootCmd.PersistentFlags().StringSliceVar(&exportFormats, "format", nil, "export formats: json, csv, excel, markdown (can be repeated)")
	rootCmd.PersistentFlags().BoolVar(&ignoreRobots, "ignore-robots", false, "skip robots.txt checks")
	rootCmd.PersistentFlags().BoolVar(&allowCrossDomain, "allow-cross-domain", false, "follow discovered links outside the seed host (crawl mode)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug-level logging")
}

// InitConfigWithError builds the effective config: the config file when
// given, otherwise defaults overridden by whichever flags were set.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	configBuilder := config.WithDefault()

	if maxDepth > 0 {
		configBuilder = configBuilder.WithMaxDepth(maxDepth)
	}
	if maxPages > 0 {
		configBuilder = configBuilder.WithMaxPages(maxPages)
	}
	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}
	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}
	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}
	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}
	// -1 means the flag was not set; 0 is a valid value that turns
	// retrying off
	if maxRetries >= 0 {
		configBuilder = configBuilder.WithMaxRetries(maxRetries)
	}
	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}
	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}
	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}
	if len(exportFormats) > 0 {
		configBuilder = configBuilder.WithExportFormats(exportFormats)
	}
	if ignoreRobots {
		configBuilder = configBuilder.WithRespectRobots(false)
	}
	if allowCrossDomain {
		configBuilder = configBuilder.WithAllowCrossDomain(true)
	}

	return configBuilder.Build()
}

func newLogger() *zap.Logger {
	var logger *zap.Logger
	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		logger, err = cfg.Build()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot initialize logger: %s\n", err)
		os.Exit(1)
	}
	return logger
}

func ResetFlags() {
	cfgFile = ""
	maxDepth = 0
	maxPages = 0
	concurrency = 0
	baseDelay = 0
	jitter = 0
	randomSeed = 0
	maxRetries = -1
	timeout = 0
	userAgent = ""
	outputDir = ""
	outputName = ""
	exportFormats = nil
	ignoreRobots = false
	allowCrossDomain = false
	verbose = false
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetMaxDepthForTest(depth int) {
	maxDepth = depth
}

func SetMaxPagesForTest(pages int) {
	maxPages = pages
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetMaxRetriesForTest(retries int) {
	maxRetries = retries
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetExportFormatsForTest(formats []string) {
	exportFormats = formats
}

func SetIgnoreRobotsForTest(ignore bool) {
	ignoreRobots = ignore
}
