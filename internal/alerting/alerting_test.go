package alerting

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gramoorja/landedcost/internal/config"
)

func TestFromConfig_DetectsWebhookType(t *testing.T) {
	cases := map[string]string{
		"https://hooks.slack.com/services/x":  "slack",
		"https://discord.com/api/webhooks/1": "discord",
		"https://example.org/hook":           "generic",
	}
	for url, want := range cases {
		cfg := FromConfig(config.AlertConfig{WebhookURL: url})
		if cfg.WebhookType != want {
			t.Errorf("%s: webhook type = %q, want %q", url, cfg.WebhookType, want)
		}
		if !cfg.Enabled {
			t.Errorf("%s: expected alerting enabled", url)
		}
	}

	if FromConfig(config.AlertConfig{}).Enabled {
		t.Error("expected alerting disabled without webhook URL")
	}
}

func TestSendReloadAlert_Payloads(t *testing.T) {
	for _, typ := range []string{"slack", "discord", "generic"} {
		t.Run(typ, func(t *testing.T) {
			var body []byte
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ct := r.Header.Get("Content-Type"); ct != "application/json" {
					t.Errorf("content type = %q", ct)
				}
				body, _ = io.ReadAll(r.Body)
			}))
			defer srv.Close()

			a := NewAlerter(AlertConfig{Enabled: true, WebhookURL: srv.URL, WebhookType: typ, MinFailuresBeforeAlert: 1, Timeout: time.Second})
			err := a.SendReloadAlert(context.Background(), ReloadAlert{
				JobName:             "reload_catalog",
				Source:              "database.xlsx",
				Error:               "missing required columns: Sub Category",
				ConsecutiveFailures: 3,
				Timestamp:           time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			})
			if err != nil {
				t.Fatalf("SendReloadAlert failed: %v", err)
			}
			if !json.Valid(body) {
				t.Fatalf("payload is not JSON: %s", body)
			}
			if !strings.Contains(string(body), "database.xlsx") {
				t.Errorf("payload does not name the source: %s", body)
			}
		})
	}
}

func TestSendReloadAlert_WebhookError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewAlerter(AlertConfig{Enabled: true, WebhookURL: srv.URL, MinFailuresBeforeAlert: 1, Timeout: time.Second})
	if err := a.SendReloadAlert(context.Background(), ReloadAlert{ConsecutiveFailures: 1}); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestSendReloadAlert_Disabled(t *testing.T) {
	a := NewAlerter(AlertConfig{})
	if err := a.SendReloadAlert(context.Background(), ReloadAlert{ConsecutiveFailures: 5}); err != nil {
		t.Fatalf("disabled alerter returned error: %v", err)
	}
}
