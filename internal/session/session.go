// Package session ties one catalog snapshot, the report settings and a clock
// into the object every interaction is handled against.
package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gramoorja/landedcost/internal/cost"
	"github.com/gramoorja/landedcost/internal/report"
	"github.com/gramoorja/landedcost/internal/tariff"
)

// ErrMissingSelection is returned when a calculation is attempted before both
// the connection type and the sub category are chosen.
var ErrMissingSelection = errors.New("select both connection type and sub category")

// Form is what the user typed and picked.
type Form struct {
	ConsumerName   string      `json:"consumer_name"`
	ConsumerNumber string      `json:"consumer_number"`
	ConnectionType string      `json:"connection_type"`
	SubCategory    string      `json:"sub_category"`
	Inputs         cost.Inputs `json:"inputs"`
}

// Consumer returns the report metadata of the form.
func (f Form) Consumer() report.ConsumerInfo {
	return report.ConsumerInfo{Name: f.ConsumerName, AccountNumber: f.ConsumerNumber}
}

// Session is the explicit per-interaction context.
type Session struct {
	Catalog *tariff.Catalog
	Report  report.Options
	Now     func() time.Time
}

// New returns a Session over cat using the wall clock.
func New(cat *tariff.Catalog, opts report.Options) *Session {
	return &Session{Catalog: cat, Report: opts, Now: time.Now}
}

func (s *Session) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// ConnectionTypes lists the choices of the first selection field.
func (s *Session) ConnectionTypes() []string {
	return s.Catalog.ConnectionTypes()
}

// SubCategories lists the choices of the second selection field.
func (s *Session) SubCategories(connectionType string) []string {
	return s.Catalog.SubCategories(connectionType)
}

// Calculate looks up the selected tariff and computes the breakdown.
func (s *Session) Calculate(f Form) (cost.Breakdown, error) {
	ct := strings.TrimSpace(f.ConnectionType)
	sc := strings.TrimSpace(f.SubCategory)
	if ct == "" || sc == "" {
		return cost.Breakdown{}, ErrMissingSelection
	}
	row, err := s.Catalog.Lookup(ct, sc)
	if err != nil {
		return cost.Breakdown{}, err
	}
	return cost.Compute(row, f.Inputs)
}

// Export calculates and renders the report, dated by the session clock.
func (s *Session) Export(f Form) ([]byte, error) {
	b, err := s.Calculate(f)
	if err != nil {
		return nil, err
	}
	doc, err := report.Render(b, f.Consumer(), report.Metadata{Date: s.now()}, s.Report)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", report.Filename, err)
	}
	return doc, nil
}
