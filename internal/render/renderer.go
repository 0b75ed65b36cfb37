package render

import (
	"bytes"
	"html/template"
	"io"
	"strings"

	"github.com/gobuffalo/packr"
)

const pageTemplate = "index.html"

// Page is the data handed to the page template.
type Page struct {
	View    View
	Preview bool
}

type Renderer struct {
	tmpl *template.Template
}

// Templates holds the page templates.
func Templates() packr.Box {
	return packr.NewBox("../../web/templates")
}

// Static holds the public assets served under /static/.
func Static() packr.Box {
	return packr.NewBox("../../web/static")
}

func NewRenderer() (*Renderer, error) {
	src, err := Templates().FindString(pageTemplate)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(pageTemplate).Funcs(template.FuncMap{
		"telURL": telURL,
	}).Parse(src)
	if err != nil {
		return nil, err
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the page for view to w.
func (r *Renderer) Render(w io.Writer, view View, preview bool) error {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, Page{View: view, Preview: preview}); err != nil {
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

// telURL marks links built by PhoneLink as safe. html/template rejects the
// tel scheme otherwise.
func telURL(href string) template.URL {
	if !strings.HasPrefix(href, "tel:+") {
		return ""
	}
	return template.URL(href)
}
