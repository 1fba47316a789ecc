// Package templates embeds the HTML pages.
package templates

import (
	"embed"
	"html/template"
	"strings"
	"time"
)

//go:embed *.html
var files embed.FS

// Funcs are available to every page.
var Funcs = template.FuncMap{
	"clock": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("15:04")
	},
	"join": strings.Join,
}

// Load parses every embedded page into one set. Pages share the "header"
// and "footer" blocks defined in layout.html.
func Load() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(files, "*.html")
}
