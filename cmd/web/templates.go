package main

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/myrjola/formtree/internal/errors"
	"github.com/myrjola/formtree/internal/formtree"
	"github.com/myrjola/formtree/internal/models"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

type templates struct {
	preview *template.Template
}

func parseTemplates() (*templates, error) {
	preview, err := template.New("preview").Funcs(template.FuncMap{
		"answered": func(n models.NumberedNode) bool {
			return n.Type == models.TypeBoolean && n.Answer != models.AnswerUnset
		},
	}).ParseFS(templateFS, "templates/preview.gohtml")
	if err != nil {
		return nil, errors.Wrap(err, "parse preview template")
	}
	return &templates{preview: preview}, nil
}

type previewTemplateData struct {
	Questions models.NumberedTree
}

// preview renders the stored form as the numbered submission list.
func (app *application) preview(w http.ResponseWriter, r *http.Request) {
	tree, _, err := app.forms.Get(r.Context())
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	data := previewTemplateData{Questions: formtree.AssignNumbers(tree)}

	buf := new(bytes.Buffer)
	if err = app.templates.preview.ExecuteTemplate(buf, "preview", data); err != nil {
		app.serverError(w, r, errors.Wrap(err, "execute template", slog.String("template", "preview")))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
