// Package render implements server-side HTML rendering for the hypermedia
// UI. Templates are embedded in the binary; fragments are swapped in by
// htmx on the client.
package render

import (
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer is the echo.Renderer backed by the embedded template set.
type Renderer struct {
	templates *template.Template
}

// New parses the embedded template set.
func New() (*Renderer, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}

	return &Renderer{templates: templates}, nil
}

// Render executes the named template.
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	return errors.Wrapf(r.templates.ExecuteTemplate(w, name, data), "failed to render %s", name)
}

// IsFragment reports whether the request was issued by htmx and should be
// answered with a partial instead of a full page.
func IsFragment(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}
