package sanitizer

// noiseSelectors lists nodes that contribute no visible page content.
// Script and style bodies bleed into text extraction if left in place.
var noiseSelectors = []string{
	"script",
	"style",
	"noscript",
	"template",
	"iframe",
}
