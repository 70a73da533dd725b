package render

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var htmlMarkdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// ToHTML converts markdown to an HTML fragment, used when assembling export
// documents.
func ToHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := htmlMarkdown.Convert([]byte(markdown), &buf); err != nil {
		return "", errors.Wrap(err, "failed to convert markdown to HTML")
	}
	return buf.String(), nil
}
