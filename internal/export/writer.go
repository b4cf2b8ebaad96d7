package export

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/rohmanhakim/webgrab/internal/config"
	"github.com/rohmanhakim/webgrab/pkg/fileutil"
)

// Writer serializes a bundle into one output format. Write returns the
// path of the primary artifact it produced.
type Writer interface {
	Format() string
	Write(bundle *Bundle, outputDir string, baseName string) (string, error)
}

func writerFor(format string, logger *zap.Logger) (Writer, error) {
	switch format {
	case config.FormatJSON:
		return JSONWriter{}, nil
	case config.FormatCSV:
		return CSVWriter{}, nil
	case config.FormatExcel:
		return ExcelWriter{}, nil
	case config.FormatMarkdown:
		return MarkdownWriter{logger: logger}, nil
	default:
		return nil, &ExportError{Format: format, Message: "unknown format"}
	}
}

// Export writes the bundle in every requested format. Formats are
// isolated from each other: a failing writer is logged and reported,
// but the remaining formats are still attempted. The returned error
// joins all per-format failures.
//
// Export does not observe ctx cancellation. By the time it runs the
// engine has already stopped, and an interrupted run must still get
// its partial bundle onto disk.
func Export(
	ctx context.Context,
	bundle *Bundle,
	formats []string,
	outputDir string,
	baseName string,
	logger *zap.Logger,
) ([]string, error) {
	if err := fileutil.EnsureDir(outputDir); err != nil {
		return nil, &ExportError{
			Format:  "all",
			Message: fmt.Sprintf("cannot create output directory %s", outputDir),
			Cause:   err,
		}
	}

	var written []string
	var failures []error

	for _, format := range formats {
		writer, err := writerFor(format, logger)
		if err != nil {
			logger.Warn("skipping unknown export format", zap.String("format", format))
			failures = append(failures, err)
			continue
		}

		path, err := writer.Write(bundle, outputDir, baseName)
		if err != nil {
			logger.Warn("export format failed",
				zap.String("format", format), zap.Error(err))
			failures = append(failures, &ExportError{
				Format:  format,
				Message: "write failed",
				Cause:   err,
			})
			continue
		}

		logger.Info("export written",
			zap.String("format", format), zap.String("path", path))
		written = append(written, path)
	}

	return written, errors.Join(failures...)
}

func artifactPath(outputDir string, baseName string, ext string) string {
	return filepath.Join(outputDir, baseName+"."+ext)
}
