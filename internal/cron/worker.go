package cron

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gramoorja/landedcost/internal/alerting"
	"github.com/gramoorja/landedcost/internal/metrics"
)

const JobName = "reload_catalog"

// Schedule decides when the next run happens after a given time.
type Schedule interface {
	Next(time.Time) time.Time
}

type everySeconds time.Duration

func (e everySeconds) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

// ParseInterval accepts integer seconds ("300") or a standard five-field cron
// expression ("*/15 * * * *").
func ParseInterval(setting string) (Schedule, error) {
	setting = strings.TrimSpace(setting)
	if setting == "" {
		return nil, errors.New("empty reload interval")
	}
	if v, err := strconv.Atoi(setting); err == nil {
		if v <= 0 {
			return nil, fmt.Errorf("reload interval must be positive, got %d", v)
		}
		return everySeconds(time.Duration(v) * time.Second), nil
	}
	sched, err := cron.ParseStandard(setting)
	if err != nil {
		return nil, fmt.Errorf("parse reload interval %q: %w", setting, err)
	}
	return sched, nil
}

// ReloadFunc reloads the catalog; it should keep the previous snapshot on error.
type ReloadFunc func(ctx context.Context) error

// Reloader periodically reloads the tariff catalog and raises an alert once
// consecutive failures reach the alerter's threshold.
type Reloader struct {
	schedule Schedule
	reload   ReloadFunc
	alerter  *alerting.Alerter
	source   string

	failures int
}

func NewReloader(schedule Schedule, reload ReloadFunc, alerter *alerting.Alerter, source string) *Reloader {
	return &Reloader{schedule: schedule, reload: reload, alerter: alerter, source: source}
}

// Run blocks until ctx is cancelled.
func (r *Reloader) Run(ctx context.Context) error {
	next := r.schedule.Next(time.Now())
	log.Printf("cron: %s scheduled, first run at %s", JobName, next.Format(time.RFC3339))

	for {
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		r.RunOnce(ctx)
		next = r.schedule.Next(time.Now())
	}
}

// RunOnce executes a single reload and records metrics and alerts.
func (r *Reloader) RunOnce(ctx context.Context) error {
	started := time.Now()
	err := r.reload(ctx)
	metrics.UpdateJobMetrics(JobName, started, err)
	dur := time.Since(started)

	if err == nil {
		if r.failures > 0 {
			log.Printf("cron: job %s recovered after %d failures", JobName, r.failures)
		}
		r.failures = 0
		log.Printf("cron: job %s completed successfully (duration=%s)", JobName, dur)
		return nil
	}

	r.failures++
	log.Printf("cron: job %s completed with error: %v (duration=%s)", JobName, err, dur)
	if r.alerter != nil {
		alert := alerting.ReloadAlert{
			JobName:             JobName,
			Source:              r.source,
			Error:               err.Error(),
			ConsecutiveFailures: r.failures,
			Duration:            dur,
			Timestamp:           started,
		}
		if aerr := r.alerter.SendReloadAlert(ctx, alert); aerr != nil {
			log.Printf("cron: send alert failed: %v", aerr)
		}
	}
	return err
}

// Failures is the current count of consecutive failed runs.
func (r *Reloader) Failures() int { return r.failures }
