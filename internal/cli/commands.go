package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rohmanhakim/webgrab/internal/build"
	"github.com/rohmanhakim/webgrab/internal/export"
	"github.com/rohmanhakim/webgrab/internal/scheduler"
)

var urlsFile string

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Fetch and extract a single page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(scheduler.ModeSingle, func(ctx context.Context, s *scheduler.Scheduler) (*export.Bundle, error) {
			bundle := export.NewBundle(scheduler.ModeSingle, args[0])
			record, err := s.ScrapeSingle(ctx, args[0])
			if err != nil {
				return nil, err
			}
			bundle.AddRecord(record)
			bundle.Finish()
			return bundle, nil
		})
	},
}

var crawlCmd = &cobra.Command{
	Use:   "crawl <seed-url>",
	Short: "Crawl a site breadth-first from a seed URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMode(scheduler.ModeCrawl, func(ctx context.Context, s *scheduler.Scheduler) (*export.Bundle, error) {
			return s.CrawlSite(ctx, args[0])
		})
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch [url]...",
	Short: "Scrape an explicit list of URLs",
	Long: `Scrape every URL given as an argument or listed in --urls-file
(one URL per line, blank lines and #-comments ignored). No link
following happens in batch mode.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		urls := args
		if urlsFile != "" {
			fromFile, err := readURLsFile(urlsFile)
			if err != nil {
				return err
			}
			urls = append(urls, fromFile...)
		}
		return runMode(scheduler.ModeBatch, func(ctx context.Context, s *scheduler.Scheduler) (*export.Bundle, error) {
			return s.ScrapeBatch(ctx, urls)
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("webgrab %s (built %s)\n", build.FullVersion(), build.BuildTime)
	},
}

func init() {
	batchCmd.Flags().StringVar(&urlsFile, "urls-file", "", "file with one URL per line")

	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(versionCmd)
}

// runMode wires config, logger, and scheduler around one engine run,
// then exports whatever the run produced. Ctrl-C cancels the run but
// partial results are still exported.
func runMode(
	mode string,
	run func(ctx context.Context, s *scheduler.Scheduler) (*export.Bundle, error),
) error {
	cfg, err := InitConfigWithError()
	if err != nil {
		return err
	}

	logger := newLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scheduler.NewScheduler(cfg, logger)

	bundle, runErr := run(ctx, s)
	if bundle == nil {
		return runErr
	}
	if runErr != nil {
		logger.Warn("run ended early", zap.Error(runErr))
	}

	written, exportErr := export.Export(
		ctx, bundle, cfg.ExportFormats(), cfg.OutputDir(), baseName(mode), logger,
	)
	for _, path := range written {
		fmt.Printf("wrote %s\n", path)
	}
	if exportErr != nil {
		return exportErr
	}

	stats := bundle.Stats()
	fmt.Printf("%s finished: %d pages, %d failures in %s\n",
		mode, stats.PagesOK, stats.PagesErr, stats.Duration().Round(time.Millisecond))
	return nil
}

func baseName(mode string) string {
	if outputName != "" {
		return outputName
	}
	return fmt.Sprintf("%s_%s", mode, time.Now().Format("20060102_150405"))
}

func readURLsFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open urls file: %w", err)
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read urls file: %w", err)
	}
	return urls, nil
}
