package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gramoorja/landedcost/internal/metrics"
	"github.com/gramoorja/landedcost/internal/notification"
	"github.com/gramoorja/landedcost/internal/report"
	"github.com/gramoorja/landedcost/internal/session"
	"github.com/gramoorja/landedcost/internal/storage"
	"github.com/gramoorja/landedcost/internal/tariff"
	"github.com/gramoorja/landedcost/internal/ui"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Catalog *tariff.Holder
	Report  report.Options

	// Mailer is optional; without it /api/report/email answers 503.
	Mailer *notification.Service
	// Storage is optional; when set, readiness also pings it.
	Storage storage.Storage
	// Now defaults to time.Now.
	Now func() time.Time
}

type server struct {
	deps Deps
}

// session returns a Session bound to the catalog snapshot served right now.
func (s *server) session() (*session.Session, error) {
	cat, err := s.deps.Catalog.Current()
	if err != nil {
		return nil, err
	}
	sess := session.New(cat, s.deps.Report)
	if s.deps.Now != nil {
		sess.Now = s.deps.Now
	}
	return sess, nil
}

// NewMux constructs the HTTP handler, wiring in the calculator API, the web
// UI, metrics and health endpoints.
func NewMux(d Deps) http.Handler {
	s := &server{deps: d}
	mux := http.NewServeMux()

	// Metrics endpoint.
	mux.Handle("/metrics", promhttp.Handler())

	// Health / readiness / liveness.
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("live"))
	})
	mux.HandleFunc("/readyz", s.handleReady)

	// Calculator API.
	mux.Handle("/api/connection-types", instrument("/api/connection-types", s.handleConnectionTypes))
	mux.Handle("/api/sub-categories", instrument("/api/sub-categories", s.handleSubCategories))
	mux.Handle("/api/calculate", instrument("/api/calculate", s.handleCalculate))
	mux.Handle("/api/report", instrument("/api/report", s.handleReport))
	mux.Handle("/api/report/email", instrument("/api/report/email", s.handleReportEmail))

	// Web UI
	mux.Handle("/ui/static/", http.StripPrefix("/ui/static/", ui.Handler()))
	mux.HandleFunc("/ui/logo", s.handleLogo)
	mux.Handle("/ui/calculate", instrument("/ui/calculate", s.handleUICalculate))
	mux.Handle("/ui/report", instrument("/ui/report", s.handleUIReport))
	mux.Handle("/ui/", instrument("/ui/", s.handleUIIndex))
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/ui/", http.StatusFound)
	})

	return withRequestID(mux)
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.deps.Catalog.Current(); err != nil {
		log.Printf("readyz: catalog not loaded: %v", err)
		http.Error(w, "catalog not loaded", http.StatusServiceUnavailable)
		return
	}
	if s.deps.Storage != nil {
		if err := s.deps.Storage.Ping(r.Context()); err != nil {
			log.Printf("readyz: db ping failed: %v", err)
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

type requestIDKey struct{}

// RequestID returns the id assigned to the request by the server middleware.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID tags every request with an X-Request-ID, reusing the caller's
// when present, and logs the outcome.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
		log.Printf("api: %s %s %d %s id=%s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Microsecond), id)
	})
}

// instrument records request count, duration and error responses for path.
func instrument(path string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		metrics.RequestsTotal.WithLabelValues(path).Inc()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			metrics.RequestDurationSeconds.WithLabelValues(path).Observe(time.Since(start).Seconds())
			if rec.status >= 400 {
				metrics.RequestErrorsTotal.WithLabelValues(path, strconv.Itoa(rec.status)).Inc()
			}
		}()
		h(rec, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
