package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
	"github.com/itsneelabh/storefront/api"
)

// layoutTemplate is the shared page shell every page set executes
const layoutTemplate = "layout"

// Pages lists every page template. Each is parsed into its own set
// together with the layout.
var Pages = []string{
	"home.html",
	"products.html",
	"product.html",
	"categories.html",
	"new_arrivals.html",
	"cart.html",
	"checkout.html",
	"orders.html",
	"dashboard.html",
	"wishlist.html",
	"login.html",
	"signup.html",
	"merchant.html",
	"admin.html",
	"error.html",
}

// HTMLRenderer keeps one template set per page
type HTMLRenderer struct {
	Templates map[string]*template.Template
}

// Instance implements gin's render.HTMLRender
func (r *HTMLRenderer) Instance(name string, data interface{}) render.Render {
	t, ok := r.Templates[name]
	if !ok {
		return missingTemplate(name)
	}
	return render.HTML{Template: t, Name: layoutTemplate, Data: data}
}

type missingTemplate string

func (m missingTemplate) Render(http.ResponseWriter) error {
	return fmt.Errorf("template %q not found", string(m))
}

func (m missingTemplate) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

// LoadTemplates parses templates/layout.html with each page from fsys
func LoadTemplates(fsys fs.FS) (*HTMLRenderer, error) {
	templates := make(map[string]*template.Template, len(Pages))
	for _, name := range Pages {
		t, err := template.New(name).Funcs(TemplateFuncs).ParseFS(fsys, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		templates[name] = t
	}
	return &HTMLRenderer{Templates: templates}, nil
}

// TemplateFuncs are available to every page
var TemplateFuncs = template.FuncMap{
	"money":       money,
	"stars":       stars,
	"date":        date,
	"statusClass": statusClass,
	"title":       titleCase,
}

// money formats an amount in dollars. Nil pointers render empty.
func money(v interface{}) string {
	switch n := v.(type) {
	case float64:
		return fmt.Sprintf("$%.2f", api.RoundCents(n))
	case *float64:
		if n == nil {
			return ""
		}
		return fmt.Sprintf("$%.2f", api.RoundCents(*n))
	case int:
		return fmt.Sprintf("$%d.00", n)
	default:
		return ""
	}
}

// stars draws a rating out of five, rounded to the nearest star
func stars(rating interface{}) string {
	var r float64
	switch n := rating.(type) {
	case float64:
		r = n
	case int:
		r = float64(n)
	}
	full := int(math.Round(r))
	if full < 0 {
		full = 0
	}
	if full > 5 {
		full = 5
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", 5-full)
}

// date formats a timestamp as "Jan 2, 2006"; zero times render empty
func date(v interface{}) string {
	var t time.Time
	switch ts := v.(type) {
	case api.Timestamp:
		t = ts.Time
	case *api.Timestamp:
		if ts == nil {
			return ""
		}
		t = ts.Time
	case time.Time:
		t = ts
	}
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// statusClass is the badge class for an order status
func statusClass(s api.OrderStatus) string {
	switch s {
	case api.OrderPending:
		return "badge badge-warning"
	case api.OrderPaid:
		return "badge badge-info"
	case api.OrderShipped:
		return "badge badge-primary"
	case api.OrderDelivered:
		return "badge badge-success"
	case api.OrderCancelled:
		return "badge badge-danger"
	default:
		return "badge"
	}
}

func titleCase(s interface{}) string {
	str := fmt.Sprint(s)
	if str == "" {
		return ""
	}
	return strings.ToUpper(str[:1]) + str[1:]
}
