// Package view renders the site's HTML. Templates are embedded in the
// binary; each page template is parsed together with the shared layout
// so a page only has to define its "content" block. The template
// engine itself is html/template, wrapped in Echo's Renderer interface.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

//go:embed templates/layout.tmpl templates/pages/*.tmpl
var templateFS embed.FS

// Renderer implements echo.Renderer over the embedded template files.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page template against the layout. A parse
// failure is a programming error and surfaces at startup, not at
// request time.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"money": Money,
		"stars": Stars,
		"miles": Miles,
	}
	names, err := fs.Glob(templateFS, "templates/pages/*.tmpl")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, p := range names {
		t, err := template.New("layout.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/layout.tmpl", p)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		pages[strings.TrimSuffix(path.Base(p), ".tmpl")] = t
	}
	return &Renderer{pages: pages}, nil
}

// Render executes the named page inside the layout.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("view: unknown template %q", name)
	}
	return t.ExecuteTemplate(w, "layout.tmpl", data)
}

// Money formats whole cents as a dollar amount with thousands
// separators, e.g. 2350000 -> "$23,500.00".
func Money(cents uint64) string {
	dollars := strconv.FormatUint(cents/100, 10)
	var b strings.Builder
	b.WriteByte('$')
	lead := len(dollars) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(dollars[:lead])
	for i := lead; i < len(dollars); i += 3 {
		b.WriteByte(',')
		b.WriteString(dollars[i : i+3])
	}
	fmt.Fprintf(&b, ".%02d", cents%100)
	return b.String()
}

// Stars renders an integer rating as filled and empty stars out of five.
func Stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// Miles formats an odometer reading with thousands separators.
func Miles(miles uint32) string {
	s := strconv.FormatUint(uint64(miles), 10)
	var b strings.Builder
	lead := len(s) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(s[:lead])
	for i := lead; i < len(s); i += 3 {
		b.WriteByte(',')
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
