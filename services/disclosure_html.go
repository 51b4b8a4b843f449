package services

import (
	"bytes"
	"fmt"
	"html/template"
)

// disclosureTemplate renders the ordered row list as a self-contained HTML
// document for the PDF renderer. All user-supplied strings pass through
// html/template escaping.
var disclosureTemplate = template.Must(template.New("disclosure").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { font-family: Georgia, serif; font-size: 12px; color: #1a1a1a; }
  h1 { font-size: 18px; margin-bottom: 2px; }
  .meta { color: #555; margin-bottom: 18px; }
  table { width: 100%; border-collapse: collapse; }
  td, th { padding: 4px 8px; text-align: left; vertical-align: top; }
  tr.category td { font-size: 14px; font-weight: bold; border-bottom: 2px solid #1a1a1a; padding-top: 14px; }
  tr.group td { font-weight: bold; padding-top: 8px; }
  tr.institution td { font-style: italic; color: #333; }
  tr.document td { border-bottom: 1px solid #ddd; }
  .new-flag { color: #b00020; font-weight: bold; font-size: 10px; }
  .number { white-space: nowrap; width: 60px; }
  .dated { white-space: nowrap; width: 140px; }
</style>
</head>
<body>
<h1>Disclosure of Documents</h1>
<div class="meta">Case {{.CaseNumber}} &mdash; generated {{.GeneratedAt}} &mdash; {{.DocumentCount}} documents ({{.NewCount}} new since last disclosure)</div>
<table>
{{range .Rows}}{{if eq .Type "CATEGORY"}}<tr class="category"><td colspan="4">{{.Label}}</td></tr>
{{else if eq .Type "GROUP"}}<tr class="group"><td colspan="4">{{.Label}}</td></tr>
{{else if eq .Type "INSTITUTION"}}<tr class="institution"><td colspan="4">{{.Label}}</td></tr>
{{else}}<tr class="document"><td class="number">{{.DocumentNumber}}</td><td>{{.DisplayName}}</td><td class="dated">{{.Dated}}</td><td>{{if .IsNew}}<span class="new-flag">NEW</span>{{end}}</td></tr>
{{end}}{{end}}
</table>
</body>
</html>`))

// RenderDisclosureHTML produces the HTML document for a disclosure result
func RenderDisclosureHTML(result *DisclosureResult, caseNumber string) (string, error) {
	data := struct {
		CaseNumber    string
		GeneratedAt   string
		DocumentCount int
		NewCount      int
		Rows          []DisclosureRow
	}{
		CaseNumber:    caseNumber,
		GeneratedAt:   result.GeneratedAt.Format("02 Jan 2006 15:04"),
		DocumentCount: result.DocumentCount,
		NewCount:      result.NewCount,
		Rows:          result.Rows,
	}

	var buf bytes.Buffer
	if err := disclosureTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render disclosure HTML: %w", err)
	}
	return buf.String(), nil
}

// RenderDisclosurePDF renders the disclosure rows to PDF bytes
func RenderDisclosurePDF(result *DisclosureResult, caseNumber string) ([]byte, error) {
	html, err := RenderDisclosureHTML(result, caseNumber)
	if err != nil {
		return nil, err
	}
	return GeneratePDF(html, DefaultPDFOptions())
}
