package preview

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templatesFS embed.FS

var tmpl = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// Render writes the voucher card for v.
func Render(w io.Writer, v View) error {
	if err := tmpl.ExecuteTemplate(w, "voucher", v); err != nil {
		return fmt.Errorf("render voucher: %w", err)
	}
	return nil
}

// HTML renders v into a string fragment.
func HTML(v View) (template.HTML, error) {
	var buf bytes.Buffer
	if err := Render(&buf, v); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
