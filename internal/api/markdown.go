package api

import (
	"bytes"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdown     = goldmark.New(goldmark.WithExtensions(extension.GFM))
	reportPolicy = bluemonday.UGCPolicy()
)

// renderReport turns the generated Markdown into sanitized HTML for the form page.
// Raw HTML in the reply is dropped by goldmark and anything left is filtered by bluemonday.
func renderReport(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return template.HTML(reportPolicy.SanitizeBytes(buf.Bytes())), nil
}
