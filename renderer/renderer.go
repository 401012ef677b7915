// Package renderer turns coinfolio snapshots into markdown reports.
//
// Every report is a view struct, built from the engine output by a New*
// function, rendered through embedded text/template files.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed *.md
var templates embed.FS

// RenderHolding renders the Holding view to a markdown string.
func RenderHolding(h *Holding) string {
	partials := map[string]string{
		"holding_title":     "holding_title.md",
		"holding_assets":    "holding_assets.md",
		"holding_anomalies": "holding_anomalies.md",
	}
	if h.HideAnomalies {
		partials["holding_anomalies"] = ""
	}
	return renderTemplate("holding", "holding.md", partials, h)
}

// RenderHistory renders the History view to a markdown string.
func RenderHistory(h *History) string {
	return renderTemplate("history", "history.md", nil, h)
}

// RenderGains renders the Gains view to a markdown string.
func RenderGains(g *Gains) string {
	return renderTemplate("gains", "gains.md", nil, g)
}

// RenderBalances renders the Balances view to a markdown string.
func RenderBalances(b *Balances) string {
	return renderTemplate("balances", "balances.md", nil, b)
}

// RenderAllocation renders the Allocation view to a markdown string.
func RenderAllocation(a *Allocation) string {
	return renderTemplate("allocation", "allocation.md", nil, a)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
