// Package web embeds the browser front end.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"svw.info/sheep/internal/domain"
)

//go:embed templates/*.tmpl static/*
var Assets embed.FS

// StaticFS serves /static assets.
func StaticFS() http.FileSystem {
	sub, err := fs.Sub(Assets, "static")
	if err != nil {
		return http.FS(embed.FS{})
	}
	return http.FS(sub)
}

// Templates parses the embedded templates.
func Templates() *template.Template {
	return template.Must(template.ParseFS(Assets, "templates/*.tmpl"))
}

// Index serves the game page sized for field. Only the root path is
// answered; everything else is a 404.
func Index(tmpl *template.Template, field domain.Field) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := tmpl.ExecuteTemplate(w, "index.tmpl", map[string]any{"Field": field}); err != nil {
			http.Error(w, template.HTMLEscapeString(err.Error()), http.StatusInternalServerError)
		}
	}
}
