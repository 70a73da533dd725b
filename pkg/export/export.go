package export

// Package export turns a backend-generated conversation summary into one
// standalone HTML document. The document carries inline print-oriented CSS
// and base64 chart images, so the user can open it in a browser and print it
// to PDF; no PDF generation happens client-side.

import (
	"html/template"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/workopilot/copilot/pkg/api"
	"github.com/workopilot/copilot/pkg/conversation"
)

// MessagesForExport converts a conversation's messages into the export
// request payload, carrying chart images along for inclusion in the
// document.
func MessagesForExport(conv *conversation.Conversation) []api.ExportMessage {
	ret := make([]api.ExportMessage, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		em := api.ExportMessage{
			Role:      string(m.Role),
			Content:   m.Content,
			Timestamp: m.CreatedAt.Format("2006-01-02 15:04"),
		}
		if m.Visualization != nil && m.Visualization.Type != conversation.ChartTypeNone {
			em.HasVisualization = true
			em.VisualizationType = string(m.Visualization.Type)
			em.ImageBase64 = m.Visualization.ImageBase64
		}
		ret = append(ret, em)
	}
	return ret
}

type documentData struct {
	Title          string
	Summary        string
	GeneratedAt    string
	Sections       []sectionData
	Visualizations []api.ExportImage
}

type sectionData struct {
	Title   string
	Content template.HTML
}

var documentTemplate = template.Must(template.New("export").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: Georgia, "Times New Roman", serif; max-width: 48rem; margin: 2rem auto; color: #1a1a1a; line-height: 1.5; }
  h1 { border-bottom: 2px solid #1a1a1a; padding-bottom: 0.3rem; }
  h2 { margin-top: 2rem; }
  .summary { font-style: italic; color: #444; }
  figure { margin: 1.5rem 0; text-align: center; page-break-inside: avoid; }
  figure img { max-width: 100%; }
  figcaption { font-size: 0.85rem; color: #666; }
  footer { margin-top: 3rem; font-size: 0.8rem; color: #888; border-top: 1px solid #ccc; padding-top: 0.5rem; }
  @media print { body { margin: 0; } }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="summary">{{.Summary}}</p>
{{range .Sections}}
<h2>{{.Title}}</h2>
{{.Content}}
{{end}}
{{range .Visualizations}}
<figure>
  <img src="data:image/png;base64,{{.ImageBase64}}" alt="{{.Caption}}">
  <figcaption>{{.Caption}}</figcaption>
</figure>
{{end}}
<footer>Generated {{.GeneratedAt}} from an analytics conversation.</footer>
</body>
</html>
`))

// markdownToHTML is injected so the package does not hard-bind the converter
// in tests; production code uses render.ToHTML.
type MarkdownConverter func(string) (string, error)

// BuildHTML assembles the backend's structured summary into a standalone
// HTML document.
func BuildHTML(resp *api.ExportResponse, convert MarkdownConverter) (string, error) {
	data := documentData{
		Title:          resp.Title,
		Summary:        resp.Summary,
		GeneratedAt:    resp.GeneratedAt,
		Visualizations: resp.Visualizations,
	}

	for _, s := range resp.Sections {
		content, err := convert(s.Content)
		if err != nil {
			return "", errors.Wrapf(err, "failed to render section %q", s.Title)
		}
		data.Sections = append(data.Sections, sectionData{
			Title:   s.Title,
			Content: template.HTML(content),
		})
	}

	var sb strings.Builder
	if err := documentTemplate.Execute(&sb, data); err != nil {
		return "", errors.Wrap(err, "failed to assemble export document")
	}
	return sb.String(), nil
}

// WriteFile writes the assembled document to disk.
func WriteFile(path string, html string) error {
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return errors.Wrapf(err, "failed to write export to %s", path)
	}
	return nil
}
