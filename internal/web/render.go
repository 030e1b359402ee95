package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/username/team-calendar/internal/calendar"
	"github.com/username/team-calendar/internal/dashboard"
	"github.com/username/team-calendar/pkg/dateutil"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Layout is the options of the page shell shared by every page
type Layout struct {
	Title     string
	Subtitle  string
	BuildDate string

	ShowSignOut bool
	ShowLegend  bool

	// Refresh reloads the page every few seconds while events are loading
	Refresh bool

	Email     string
	CSRFField template.HTML
}

type authPage struct {
	Layout Layout
	Mode   string
	Email  string
	Error  string
	Notice string
}

type dashboardPage struct {
	Layout     Layout
	Tab        string
	View       dashboard.View
	Categories []category
	Weekdays   []string
}

// category is the display side of an event type
type category struct {
	Type  calendar.EventType
	Label string
	Short string
	Class string
}

var categories = []category{
	{Type: calendar.EventTypeLSM, Label: "LSM event", Short: "LSM", Class: "lsm"},
	{Type: calendar.EventTypeBOH, Label: "BOH", Short: "BOH", Class: "boh"},
	{Type: calendar.EventTypeFOH, Label: "FOH", Short: "FOH", Class: "foh"},
	{Type: calendar.EventTypeVisitor, Label: "Visitor", Short: "Visitor", Class: "visitor"},
	{Type: calendar.EventTypeHoliday, Label: "Holiday", Short: "Holiday", Class: "holiday"},
	{Type: calendar.EventTypeBirthday, Label: "Birthday / Anniversary", Short: "Bday", Class: "birthday"},
}

var weekdays = []string{"S", "M", "T", "W", "T", "F", "S"}

func lookupCategory(t calendar.EventType) (category, bool) {
	for _, c := range categories {
		if c.Type == t {
			return c, true
		}
	}
	return category{}, false
}

func categoryLabel(t calendar.EventType) string {
	if c, ok := lookupCategory(t); ok {
		return c.Label
	}
	return string(t)
}

func categoryClass(t calendar.EventType) string {
	if c, ok := lookupCategory(t); ok {
		return c.Class
	}
	return "other"
}

// cellClass picks one highlight per cell: holiday, then events, then today, then selection
func cellClass(c dashboard.Cell) string {
	switch {
	case c.Blank:
		return "calendar-cell blank"
	case len(c.Holidays) > 0:
		return "calendar-cell holiday"
	case len(c.Events) > 0:
		return "calendar-cell event"
	case c.Today:
		return "calendar-cell today"
	case c.Selected:
		return "calendar-cell selected"
	}
	return "calendar-cell"
}

// formatDate renders a YYYY-MM-DD string with layout, or returns it unchanged if malformed
func formatDate(layout, date string) string {
	t, err := dateutil.ParseDate(date, time.UTC)
	if err != nil {
		return date
	}
	return t.Format(layout)
}

var funcs = template.FuncMap{
	"categories":    func() []category { return categories },
	"categoryLabel": categoryLabel,
	"categoryClass": categoryClass,
	"cellClass":     cellClass,
	"longDate":      func(date string) string { return formatDate("January 2, 2006", date) },
	"shortDate":     func(date string) string { return formatDate("Mon, Jan 2", date) },
	"holidayNames": func(hs []calendar.Holiday) string {
		var buf bytes.Buffer
		for i, h := range hs {
			if i > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(h.Name)
		}
		return buf.String()
	},
	"firstEvents": func(events []calendar.Event, n int) []calendar.Event {
		if len(events) > n {
			return events[:n]
		}
		return events
	},
	"isEvent": func(item calendar.UpcomingItem) bool { return item.Kind == calendar.KindEvent },
}

// renderer holds one template set per page, each parsed together with the layout
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{"auth.html", "dashboard.html"} {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		r.pages[page] = t
	}
	return r, nil
}

// render executes into a buffer first so a template error never leaves a half-written page
func (r *renderer) render(w http.ResponseWriter, status int, page string, data interface{}) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %s", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
