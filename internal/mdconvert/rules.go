package mdconvert

import (
	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"golang.org/x/net/html"
)

/*
Design Principles
- Semantic fidelity over visual fidelity
- No inferred structure
- GitHub-Flavored Markdown compatibility

Conversion Rules
- Headings map directly (h1-h6 to # - ######)
- Tables converted structurally (GFM)
- Links and images preserved as-is (resolution happens in the extractor)
- DOM order preserved
*/

// Rule converts a sanitized HTML node into markdown. Implementations
// must be deterministic: identical nodes produce identical markdown.
type Rule interface {
	Convert(node *html.Node) (string, error)
}

type StrictConversionRule struct {
	conv *converter.Converter
}

func NewRule() StrictConversionRule {
	return StrictConversionRule{
		conv: converter.NewConverter(
			converter.WithPlugins(
				base.NewBasePlugin(),
				commonmark.NewCommonmarkPlugin(),
				table.NewTablePlugin(),
			),
		),
	}
}

// Convert transforms an HTML node into markdown. A nil node or converter
// failure yields an error; callers degrade to an empty markdown field.
func (s StrictConversionRule) Convert(node *html.Node) (string, error) {
	if node == nil {
		return "", &ConversionError{
			Message:   "cannot convert nil HTML node",
			Retryable: false,
			Cause:     ErrCauseNilNode,
		}
	}

	markdown, err := s.conv.ConvertNode(node)
	if err != nil {
		return "", &ConversionError{
			Message:   err.Error(),
			Retryable: false,
			Cause:     ErrCauseConversionFailure,
		}
	}
	return string(markdown), nil
}
