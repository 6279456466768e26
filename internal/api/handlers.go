package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gramoorja/landedcost/internal/cost"
	"github.com/gramoorja/landedcost/internal/metrics"
	"github.com/gramoorja/landedcost/internal/notification"
	"github.com/gramoorja/landedcost/internal/report"
	"github.com/gramoorja/landedcost/internal/session"
)

const maxBodyBytes = 1 << 20

// CalculateResponse is the body of POST /api/calculate.
type CalculateResponse struct {
	Breakdown cost.Breakdown `json:"breakdown"`
	Rows      []report.Row   `json:"rows"`
}

type emailRequest struct {
	session.Form
	To string `json:"to"`
}

func (s *server) handleConnectionTypes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, err := s.session()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"connection_types": sess.ConnectionTypes()})
}

func (s *server) handleSubCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	sess, err := s.session()
	if err != nil {
		writeError(w, err)
		return
	}
	ct := r.URL.Query().Get("connection_type")
	writeJSON(w, http.StatusOK, map[string][]string{"sub_categories": sess.SubCategories(ct)})
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var f session.Form
	if !decodeBody(w, r, &f) {
		return
	}
	sess, err := s.session()
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := sess.Calculate(f)
	recordCalculation(err)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CalculateResponse{Breakdown: b, Rows: report.Rows(b, f.Consumer())})
}

func (s *server) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var f session.Form
	if !decodeBody(w, r, &f) {
		return
	}
	sess, err := s.session()
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := sess.Export(f)
	recordCalculation(err)
	if err != nil {
		writeError(w, err)
		return
	}
	metrics.ReportsRenderedTotal.WithLabelValues("download").Inc()
	writePDF(w, doc)
}

func (s *server) handleReportEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.deps.Mailer == nil || !s.deps.Mailer.Enabled() {
		writeError(w, notification.ErrNotConfigured)
		return
	}
	var req emailRequest
	if !decodeBody(w, r, &req) {
		return
	}
	to, err := notification.ParseRecipient(req.To)
	if err != nil {
		writeError(w, err)
		return
	}
	sess, err := s.session()
	if err != nil {
		writeError(w, err)
		return
	}
	doc, err := sess.Export(req.Form)
	recordCalculation(err)
	if err != nil {
		writeError(w, err)
		return
	}

	id := RequestID(r.Context())
	mailer := s.deps.Mailer
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		att := notification.Attachment{Filename: report.Filename, ContentType: report.ContentType, Data: doc}
		if err := mailer.SendReport(ctx, to, att); err != nil {
			log.Printf("api: email report to %s failed id=%s: %v", to, id, err)
			return
		}
		metrics.ReportsRenderedTotal.WithLabelValues("email").Inc()
		log.Printf("api: emailed report to %s id=%s", to, id)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued", "request_id": id})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("invalid request body: %v", err)})
		return false
	}
	return true
}

func writePDF(w http.ResponseWriter, doc []byte) {
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", report.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc); err != nil {
		log.Printf("api: write report failed: %v", err)
	}
}

func recordCalculation(err error) {
	if err != nil {
		metrics.CalculationsTotal.WithLabelValues("error").Inc()
		return
	}
	metrics.CalculationsTotal.WithLabelValues("ok").Inc()
}
