package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/flash"
	"github.com/Skotchmaster/storefront/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	UploadsPrefix    = "/static/uploads/"
	PlaceholderImage = "/static/img/default.svg"
)

// Page is the data every template receives.
type Page struct {
	Title   string
	User    *auth.Identity
	Flashes []flash.Message
	CSRF    string
	Errors  map[string]string
	Form    map[string]string
	Data    any
}

func (p Page) Err(field string) string {
	return p.Errors[field]
}

func (p Page) Value(field string) string {
	return p.Form[field]
}

type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"money":    Money,
	"imageURL": ImageURL,
	"add":      func(a, b int) int { return a + b },
	"sub":      func(a, b int) int { return a - b },
}

// New parses every page together with the shared layout.
func New() (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: map[string]*template.Template{}}
	for _, name := range names {
		short := strings.TrimSuffix(strings.TrimPrefix(name, "templates/"), ".html")
		if short == "layout" {
			continue
		}
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[short] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

// Static holds the embedded assets served under /static.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Money formats an amount as Brazilian reais, e.g. "R$ 21,98".
func Money(d decimal.Decimal) string {
	return "R$ " + strings.Replace(d.StringFixed(2), ".", ",", 1)
}

func ImageURL(name string) string {
	if name == "" || name == models.DefaultImage {
		return PlaceholderImage
	}
	return UploadsPrefix + name
}
