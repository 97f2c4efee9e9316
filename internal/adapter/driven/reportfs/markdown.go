package reportfs

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Report cells are copied verbatim from credential dumps, so raw HTML in a
// cell is dropped by goldmark and whatever survives conversion still goes
// through the UGC policy, which keeps the table elements.
var (
	reportMarkdown  = goldmark.New(goldmark.WithExtensions(extension.Table))
	reportSanitizer = bluemonday.UGCPolicy()
)

// reportHTML renders a Markdown report (heading plus pipe table) as a
// standalone HTML page titled title.
func reportHTML(title, doc string) (string, error) {
	var buf bytes.Buffer
	if err := reportMarkdown.Convert([]byte(doc), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	body := reportSanitizer.SanitizeBytes(buf.Bytes())

	var sb strings.Builder
	sb.Grow(len(body) + 256)
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	sb.WriteString(html.EscapeString(title))
	sb.WriteString("</title>\n</head>\n<body>\n")
	sb.Write(body)
	sb.WriteString("</body>\n</html>\n")
	return sb.String(), nil
}
