// Package widget defines the calculator widgets and derives the MCP tool and
// resource catalog from them. Each widget is one canonical record; the tool,
// resource, and resource-template views are projections of it, so their
// descriptor metadata cannot drift apart.
package widget

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/widgetforge/calcapp/calc"
)

// MimeType is the content type the host expects for widget HTML resources.
const MimeType = "text/html+skybridge"

// Widget is the canonical record for one calculator widget. Immutable after
// the registry is built.
type Widget struct {
	ID           string
	Title        string
	Description  string
	TemplateURI  string
	Invoking     string
	Invoked      string
	ResponseText string

	// Op is the fixed operation for the single-purpose widgets. The super
	// calculator selects its operation from the call arguments instead.
	Op        calc.Operation
	SelectsOp bool
}

// Definitions returns the static widget set. The slice is fresh on every call
// so callers cannot mutate the canonical data.
func Definitions() []Widget {
	return []Widget{
		{
			ID:           "add",
			Title:        "Add Numbers",
			Description:  "Add two numbers and show the result in the addition widget",
			TemplateURI:  "ui://widget/add.html",
			Invoking:     "Adding the numbers",
			Invoked:      "Added the numbers",
			ResponseText: "Rendered the addition result.",
			Op:           calc.OpAdd,
		},
		{
			ID:           "subtract",
			Title:        "Subtract Numbers",
			Description:  "Subtract the second number from the first and show the result",
			TemplateURI:  "ui://widget/subtract.html",
			Invoking:     "Subtracting the numbers",
			Invoked:      "Subtracted the numbers",
			ResponseText: "Rendered the subtraction result.",
			Op:           calc.OpSubtract,
		},
		{
			ID:           "multiply",
			Title:        "Multiply Numbers",
			Description:  "Multiply two numbers and show the result in the multiplication widget",
			TemplateURI:  "ui://widget/multiply.html",
			Invoking:     "Multiplying the numbers",
			Invoked:      "Multiplied the numbers",
			ResponseText: "Rendered the multiplication result.",
			Op:           calc.OpMultiply,
		},
		{
			ID:           "divide",
			Title:        "Divide Numbers",
			Description:  "Divide the first number by the second and show the result",
			TemplateURI:  "ui://widget/divide.html",
			Invoking:     "Dividing the numbers",
			Invoked:      "Divided the numbers",
			ResponseText: "Rendered the division result.",
			Op:           calc.OpDivide,
		},
		{
			ID:           "super-calculator",
			Title:        "Super Calculator",
			Description:  "Run any of the four arithmetic operations and show the result",
			TemplateURI:  "ui://widget/super-calculator.html",
			Invoking:     "Crunching the numbers",
			Invoked:      "Crunched the numbers",
			ResponseText: "Rendered the calculator result.",
			SelectsOp:    true,
		},
	}
}

// Registry holds the widgets with lookups by id and by template URI.
type Registry struct {
	widgets   []Widget
	byID      map[string]*Widget
	byURI     map[string]*Widget
	assetsDir string
	domain    string
}

// NewRegistry builds the registry from the static definitions. assetsDir is
// where built widget bundles live; domain is the externally reachable origin
// baked into generated shells and the CSP allow-list. A widget without an
// on-disk payload is not an error, it falls back to a generated shell.
func NewRegistry(assetsDir, domain string) *Registry {
	r := &Registry{
		widgets:   Definitions(),
		byID:      make(map[string]*Widget),
		byURI:     make(map[string]*Widget),
		assetsDir: assetsDir,
		domain:    domain,
	}

	for i := range r.widgets {
		w := &r.widgets[i]
		r.byID[w.ID] = w
		r.byURI[w.TemplateURI] = w

		if _, err := os.Stat(r.htmlPath(w)); err != nil {
			log.Warn("widget payload not found, using generated shell",
				"widget", w.ID, "path", r.htmlPath(w))
		}
	}

	return r
}

// All returns the widgets in definition order.
func (r *Registry) All() []*Widget {
	all := make([]*Widget, len(r.widgets))
	for i := range r.widgets {
		all[i] = &r.widgets[i]
	}
	return all
}

// ByID looks a widget up by its identifier.
func (r *Registry) ByID(id string) (*Widget, bool) {
	w, ok := r.byID[id]
	return w, ok
}

// ByURI looks a widget up by its template URI.
func (r *Registry) ByURI(uri string) (*Widget, bool) {
	w, ok := r.byURI[uri]
	return w, ok
}

// Domain returns the configured widget domain.
func (r *Registry) Domain() string {
	return r.domain
}

// HTML returns the widget's payload. The file is read on every call so edits
// to a built bundle show up on the next resources/read without a restart.
// When the file is missing the generated shell is returned instead.
func (r *Registry) HTML(w *Widget) string {
	data, err := os.ReadFile(r.htmlPath(w))
	if err != nil {
		return r.shell(w)
	}
	return string(data)
}

func (r *Registry) htmlPath(w *Widget) string {
	return filepath.Join(r.assetsDir, w.ID+".html")
}

// shell is the minimal HTML document loading the widget bundle from the
// configured domain.
func (r *Registry) shell(w *Widget) string {
	return fmt.Sprintf(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
</head>
<body>
<div id="calc-root"></div>
<script type="module" src="https://%s/assets/%s.js"></script>
</body>
</html>
`, w.Title, r.domain, w.ID)
}
