package export

import (
	"encoding/json"

	"github.com/rohmanhakim/webgrab/internal/config"
	"github.com/rohmanhakim/webgrab/internal/extractor"
	"github.com/rohmanhakim/webgrab/pkg/fileutil"
)

// jsonDocument is the canonical serialized shape of a run. Records
// round-trip through it without loss.
type jsonDocument struct {
	Stats    RunStats               `json:"stats"`
	Records  []extractor.PageRecord `json:"records"`
	Failures []FailureMarker        `json:"failures"`
}

type JSONWriter struct{}

func (JSONWriter) Format() string {
	return config.FormatJSON
}

func (JSONWriter) Write(bundle *Bundle, outputDir string, baseName string) (string, error) {
	doc := jsonDocument{
		Stats:    bundle.Stats(),
		Records:  bundle.Records(),
		Failures: bundle.Failures(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", err
	}

	path := artifactPath(outputDir, baseName, "json")
	if err := fileutil.WriteFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}
