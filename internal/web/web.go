// Package web holds the embedded page templates rendered by the controllers.
package web

import (
	"embed"
	"html/template"
	"time"

	"github.com/oneday/onedayclass/internal/pkg/helpers"
)

//go:embed templates/*.html
var templateFS embed.FS

// UploadURLPrefix is the route that serves stored uploads
const UploadURLPrefix = "/course/uploads/"

// Funcs are available in every template
var Funcs = template.FuncMap{
	"uploadURL": func(rel string) string { return UploadURLPrefix + rel },
	"deref":     helpers.Deref,
	"datetime": func(t time.Time) string {
		return t.Format("2006-01-02 15:04")
	},
	"datetimePtr": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
	"add": func(a, b int) int { return a + b },
}

// Templates parses every page. Each page is addressed by its file name, e.g. "login.html".
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}
