package ui

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/gramoorja/landedcost/internal/report"
)

// content embeds all static assets and page templates for the web UI.
//
//go:embed static/* templates/*
var content embed.FS

var page = template.Must(template.ParseFS(content, "templates/index.html"))

// Level is the severity of the banner shown above the form.
type Level string

const (
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Banner is a one-line message shown above the form.
type Banner struct {
	Level   Level
	Message string
}

// Page is everything the form template needs.
type Page struct {
	Title    string
	Subtitle string
	HasLogo  bool
	// Date is today's date, already formatted as dd-mm-yyyy.
	Date string
	// Footer is the contact block printed under the form.
	Footer []string

	// Blocked hides the form when no catalog could be loaded.
	Blocked bool
	Banner  *Banner

	ConnectionTypes []string
	SubCategories   []string

	ConsumerName   string
	ConsumerNumber string
	ConnectionType string
	SubCategory    string
	FAC            string
	TaxOnSale      string
	DutyPercent    string

	// Rows is the breakdown table; nil until a calculation succeeds.
	Rows       []report.Row
	LandedCost string
}

// NewPage returns a Page with the fixed headings and the default footer.
func NewPage() Page {
	return Page{Title: report.Title, Subtitle: report.Subtitle, Footer: report.DefaultFooter}
}

// Render writes the form page.
func Render(w io.Writer, p Page) error {
	return page.Execute(w, p)
}

// Handler returns an http.Handler that serves the embedded static assets.
func Handler() http.Handler {
	sub, err := fs.Sub(content, "static")
	if err != nil {
		// This should never happen in a correctly built binary.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
