package export

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"go.uber.org/zap"

	"github.com/rohmanhakim/webgrab/internal/config"
	"github.com/rohmanhakim/webgrab/internal/extractor"
	"github.com/rohmanhakim/webgrab/pkg/fileutil"
)

// MarkdownWriter produces a human-readable run report plus one markdown
// file per page that had convertible content. Page files are named by
// content hash prefix so re-runs overwrite rather than accumulate.
type MarkdownWriter struct {
	logger *zap.Logger
}

func (MarkdownWriter) Format() string {
	return config.FormatMarkdown
}

func (w MarkdownWriter) Write(bundle *Bundle, outputDir string, baseName string) (string, error) {
	pagesDir := filepath.Join(outputDir, baseName+"_pages")
	if err := fileutil.EnsureDir(pagesDir); err != nil {
		return "", err
	}

	records := bundle.Records()
	pageFiles := make(map[string]string, len(records))
	for _, record := range records {
		name, err := w.writePage(pagesDir, record)
		if err != nil {
			w.logger.Warn("page markdown skipped",
				zap.String("url", record.URL), zap.Error(err))
			continue
		}
		if name != "" {
			pageFiles[record.URL] = name
		}
	}

	var buf bytes.Buffer
	if err := w.writeSummary(&buf, bundle, records, pageFiles, baseName); err != nil {
		return "", err
	}

	path := artifactPath(outputDir, baseName, "md")
	if err := fileutil.WriteFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}

func (w MarkdownWriter) writeSummary(
	buf *bytes.Buffer,
	bundle *Bundle,
	records []extractor.PageRecord,
	pageFiles map[string]string,
	baseName string,
) error {
	stats := bundle.Stats()
	md := markdown.NewMarkdown(buf)

	md.H1("Scrape Report")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Mode", stats.Mode},
			{"Seed", "`" + stats.Seed + "`"},
			{"Started", stats.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", stats.Duration().Round(time.Millisecond).String()},
			{"Pages", strconv.Itoa(stats.PagesOK)},
			{"Failures", strconv.Itoa(stats.PagesErr)},
		},
	})
	md.PlainText("")

	md.H2("Pages")
	md.PlainText("")
	if len(records) == 0 {
		md.PlainText("No pages were fetched.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(records))
		for i, record := range records {
			title := record.Title
			if title == "" {
				title = "(untitled)"
			}
			content := "-"
			if name, ok := pageFiles[record.URL]; ok {
				content = fmt.Sprintf("[%s](%s)", name, filepath.Join(baseName+"_pages", name))
			}
			rows[i] = []string{
				title,
				"`" + record.URL + "`",
				strconv.Itoa(record.StatusCode),
				strconv.Itoa(record.WordCount),
				content,
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Title", "URL", "Status", "Words", "Content"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	failures := bundle.Failures()
	if len(failures) > 0 {
		md.H2("Failures")
		md.PlainText("")
		rows := make([][]string, len(failures))
		for i, f := range failures {
			rows[i] = []string{"`" + f.URL + "`", f.Kind, f.Message}
		}
		md.Table(markdown.TableSet{
			Header: []string{"URL", "Kind", "Message"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	return md.Build()
}

// writePage writes the page's converted markdown and returns the file
// name, or empty when the page had no convertible content.
func (w MarkdownWriter) writePage(pagesDir string, record extractor.PageRecord) (string, error) {
	if record.Markdown == "" || record.ContentHash == "" {
		return "", nil
	}

	hashPrefix := record.ContentHash
	if len(hashPrefix) > 12 {
		hashPrefix = hashPrefix[:12]
	}
	name := hashPrefix + ".md"

	content := fmt.Sprintf("# %s\n\nSource: %s\n\n---\n\n%s\n",
		record.Title, record.URL, record.Markdown)
	if err := fileutil.WriteFile(filepath.Join(pagesDir, name), []byte(content)); err != nil {
		return "", err
	}
	return name, nil
}
