package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"time"

	"github.com/rohmanhakim/webgrab/internal/config"
	"github.com/rohmanhakim/webgrab/internal/extractor"
	"github.com/rohmanhakim/webgrab/pkg/fileutil"
)

// listDelimiter joins multi-valued fields into a single tabular cell.
const listDelimiter = "; "

// tableHeader is the flat schema shared by the CSV and Excel writers.
// The column set is fixed so downstream tooling can rely on it.
var tableHeader = []string{
	"url",
	"final_url",
	"title",
	"meta_description",
	"meta_keywords",
	"word_count",
	"status_code",
	"depth",
	"fetched_at",
	"links_count",
	"links",
	"images_count",
	"images",
	"emails_count",
	"emails",
	"phones_count",
	"phones",
	"content_hash",
}

func tableRow(record extractor.PageRecord) []string {
	return []string{
		record.URL,
		record.FinalURL,
		record.Title,
		record.MetaDescription,
		record.MetaKeywords,
		strconv.Itoa(record.WordCount),
		strconv.Itoa(record.StatusCode),
		strconv.Itoa(record.Depth),
		record.FetchedAt.Format(time.RFC3339),
		strconv.Itoa(len(record.Links)),
		strings.Join(record.Links, listDelimiter),
		strconv.Itoa(len(record.Images)),
		strings.Join(record.Images, listDelimiter),
		strconv.Itoa(len(record.Emails)),
		strings.Join(record.Emails, listDelimiter),
		strconv.Itoa(len(record.Phones)),
		strings.Join(record.Phones, listDelimiter),
		record.ContentHash,
	}
}

type CSVWriter struct{}

func (CSVWriter) Format() string {
	return config.FormatCSV
}

func (CSVWriter) Write(bundle *Bundle, outputDir string, baseName string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(tableHeader); err != nil {
		return "", err
	}
	for _, record := range bundle.Records() {
		if err := w.Write(tableRow(record)); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	path := artifactPath(outputDir, baseName, "csv")
	if err := fileutil.WriteFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	return path, nil
}
