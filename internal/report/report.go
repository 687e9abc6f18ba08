// Package report renders a static HTML report for a scanned project: the
// model inventory with missing-metadata flags and the lineage description.
package report

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/dbtlens/internal/lineage"
	"github.com/leapstack-labs/dbtlens/internal/project"
)

// titleCaser renders section headings in title case.
var titleCaser = cases.Title(language.English)

// Data is everything the report template needs.
type Data struct {
	Title       string
	GeneratedAt time.Time
	Project     *project.Project
	Lineage     *lineage.Description
}

// Section pairs a heading with its anchor id.
type Section struct {
	ID    string
	Title string
}

// sections lists the report's parts in render order.
var sections = []Section{
	{ID: "summary", Title: titleCaser.String("project summary")},
	{ID: "models", Title: titleCaser.String("models")},
	{ID: "lineage", Title: titleCaser.String("lineage")},
}

// Render writes the HTML report to w.
func Render(w io.Writer, data Data) error {
	if data.Project == nil {
		return fmt.Errorf("report data has no project")
	}
	if data.GeneratedAt.IsZero() {
		data.GeneratedAt = time.Now()
	}

	return reportTemplate.Execute(w, templateData{
		Data:            data,
		Sections:        sections,
		MissingMetadata: data.Project.MissingMetadata(),
		CoveragePct:     data.Project.MetadataCoverage(),
	})
}

type templateData struct {
	Data
	Sections        []Section
	MissingMetadata []string
	CoveragePct     float64
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: -apple-system, sans-serif; margin: 2rem auto; max-width: 60rem; color: #1a1a2e; }
  h1 { border-bottom: 2px solid #e0e0e0; padding-bottom: .5rem; }
  table { border-collapse: collapse; width: 100%; }
  th, td { text-align: left; padding: .4rem .8rem; border-bottom: 1px solid #e0e0e0; }
  .missing { color: #c0392b; font-weight: 600; }
  .ok { color: #27ae60; }
  pre { background: #f6f6f6; padding: 1rem; overflow-x: auto; }
  .meta { color: #777; font-size: .85rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="meta">Generated {{.GeneratedAt.Format "2006-01-02 15:04:05"}}</p>
<nav>{{range .Sections}}<a href="#{{.ID}}">{{.Title}}</a> {{end}}</nav>

<h2 id="summary">{{(index .Sections 0).Title}}</h2>
<ul>
  <li>{{len .Project.Models}} models scanned</li>
  <li>{{len .MissingMetadata}} models missing metadata</li>
  <li>{{printf "%.1f" .CoveragePct}}% metadata coverage</li>
</ul>

<h2 id="models">{{(index .Sections 1).Title}}</h2>
<table>
  <tr><th>Model</th><th>Path</th><th>Metadata</th><th>References</th></tr>
  {{range .Project.Models}}
  <tr>
    <td>{{.Name}}</td>
    <td>{{.Path}}</td>
    {{if .HasMetadata}}<td class="ok">yes</td>{{else}}<td class="missing">missing</td>{{end}}
    <td>{{range $i, $r := .Refs}}{{if $i}}, {{end}}{{$r}}{{end}}</td>
  </tr>
  {{end}}
</table>

<h2 id="lineage">{{(index .Sections 2).Title}}</h2>
{{if .Lineage}}<pre>{{.Lineage.Text}}</pre>{{else}}<p class="meta">No lineage available.</p>{{end}}
</body>
</html>
`))
