package api

import (
	"bytes"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gramoorja/landedcost/internal/cost"
	"github.com/gramoorja/landedcost/internal/metrics"
	"github.com/gramoorja/landedcost/internal/report"
	"github.com/gramoorja/landedcost/internal/session"
	"github.com/gramoorja/landedcost/internal/tariff"
	"github.com/gramoorja/landedcost/internal/ui"
)

// uiState reads the form fields the page posts back.
func uiState(r *http.Request) ui.Page {
	p := ui.NewPage()
	p.ConsumerName = r.FormValue("consumer_name")
	p.ConsumerNumber = r.FormValue("consumer_number")
	p.ConnectionType = r.FormValue("connection_type")
	p.SubCategory = r.FormValue("sub_category")
	p.FAC = r.FormValue("fac")
	p.TaxOnSale = r.FormValue("tax_on_sale")
	p.DutyPercent = r.FormValue("electricity_duty_percent")
	return p
}

func formFromPage(p ui.Page) (session.Form, error) {
	in, err := cost.ParseInputs(p.FAC, p.TaxOnSale, p.DutyPercent)
	if err != nil {
		return session.Form{}, err
	}
	return session.Form{
		ConsumerName:   p.ConsumerName,
		ConsumerNumber: p.ConsumerNumber,
		ConnectionType: p.ConnectionType,
		SubCategory:    p.SubCategory,
		Inputs:         in,
	}, nil
}

func (s *server) now() time.Time {
	if s.deps.Now != nil {
		return s.deps.Now()
	}
	return time.Now()
}

func (s *server) hasLogo() bool {
	if s.deps.Report.LogoPath == "" {
		return false
	}
	_, err := os.Stat(s.deps.Report.LogoPath)
	return err == nil
}

// preparePage fills the selection lists from the current catalog. The
// returned session is nil when no catalog is loaded; the page is then blocked.
func (s *server) preparePage(p *ui.Page) *session.Session {
	p.HasLogo = s.hasLogo()
	p.Date = s.now().Format(report.DateLayout)
	if len(s.deps.Report.Footer) > 0 {
		p.Footer = s.deps.Report.Footer
	}
	sess, err := s.session()
	if err != nil {
		p.Blocked = true
		p.Banner = &ui.Banner{Level: ui.LevelError, Message: err.Error()}
		return nil
	}
	if ws := sess.Catalog.Warnings(); len(ws) > 0 {
		p.Banner = &ui.Banner{Level: ui.LevelWarning, Message: ws[0]}
	}
	p.ConnectionTypes = sess.ConnectionTypes()
	p.SubCategories = sess.SubCategories(p.ConnectionType)
	return sess
}

func (s *server) renderPage(w http.ResponseWriter, status int, p ui.Page) {
	var buf bytes.Buffer
	if err := ui.Render(&buf, p); err != nil {
		log.Printf("ui: render page failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

// pageError shows err above the form. Catalog errors block the form.
func pageError(p *ui.Page, err error) {
	level := ui.LevelError
	if errors.Is(err, tariff.ErrNotFound) || errors.Is(err, session.ErrMissingSelection) {
		level = ui.LevelWarning
	}
	var loadErr *tariff.LoadError
	if errors.As(err, &loadErr) {
		p.Blocked = true
	}
	p.Banner = &ui.Banner{Level: level, Message: userMessage(err)}
}

func (s *server) handleUIIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/ui/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	p := uiState(r)
	status := http.StatusOK
	if s.preparePage(&p) == nil {
		status = http.StatusServiceUnavailable
	}
	s.renderPage(w, status, p)
}

func (s *server) handleUICalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/ui/", http.StatusSeeOther)
		return
	}
	p := uiState(r)
	sess := s.preparePage(&p)
	if sess == nil {
		s.renderPage(w, http.StatusServiceUnavailable, p)
		return
	}

	f, err := formFromPage(p)
	if err == nil {
		var b cost.Breakdown
		b, err = sess.Calculate(f)
		recordCalculation(err)
		if err == nil {
			p.Rows = report.Rows(b, f.Consumer())
			p.LandedCost = b.LandedCost.StringFixed(2)
			s.renderPage(w, http.StatusOK, p)
			return
		}
	}
	pageError(&p, err)
	s.renderPage(w, statusFor(err), p)
}

func (s *server) handleUIReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/ui/", http.StatusSeeOther)
		return
	}
	p := uiState(r)
	sess := s.preparePage(&p)
	if sess == nil {
		s.renderPage(w, http.StatusServiceUnavailable, p)
		return
	}

	f, err := formFromPage(p)
	if err == nil {
		var doc []byte
		doc, err = sess.Export(f)
		recordCalculation(err)
		if err == nil {
			metrics.ReportsRenderedTotal.WithLabelValues("download").Inc()
			writePDF(w, doc)
			return
		}
	}
	if status := statusFor(err); status >= http.StatusInternalServerError {
		log.Printf("ui: export failed: %v", err)
	}
	pageError(&p, err)
	s.renderPage(w, statusFor(err), p)
}

func (s *server) handleLogo(w http.ResponseWriter, r *http.Request) {
	if !s.hasLogo() {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.deps.Report.LogoPath)
}
