package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/gramoorja/landedcost/internal/alerting"
	"github.com/gramoorja/landedcost/internal/api"
	"github.com/gramoorja/landedcost/internal/cron"
	"github.com/gramoorja/landedcost/internal/migrate"
	"github.com/gramoorja/landedcost/internal/notification"
	"github.com/gramoorja/landedcost/internal/tariff"
)

func newServeCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form and the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return a.serve(cmd.Context())
		},
	}
	cmd.Flags().IntVar(&port, "port", 8000, "listen port")
	return cmd
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional auto-migration: run `goose up` on startup when enabled.
	if a.cfg.DB.AutoMigrate && a.cfg.DB.Driver != "memory" {
		if err := migrate.Up(ctx, a.cfg.DB.Driver, a.cfg.DB.DSN); err != nil {
			log.Printf("auto-migration failed: %v", err)
		}
	}

	src, st, err := a.catalogSource(ctx)
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
	}

	holder := tariff.NewHolder(src)
	if err := holder.Reload(ctx); err != nil {
		// Keep serving so the UI can show the problem; /readyz stays red.
		log.Printf("serve: catalog unavailable: %v", err)
	}

	if a.cfg.Catalog.ReloadInterval != "" {
		sched, err := cron.ParseInterval(a.cfg.Catalog.ReloadInterval)
		if err != nil {
			return err
		}
		alerter := alerting.NewAlerter(alerting.FromConfig(a.cfg.Alert))
		reloader := cron.NewReloader(sched, holder.Reload, alerter, src.Name())
		go func() {
			if err := reloader.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("serve: reloader stopped: %v", err)
			}
		}()
	}

	handler := api.NewMux(api.Deps{
		Catalog: holder,
		Report:  a.reportOptions(),
		Mailer:  notification.NewService(a.cfg.Email),
		Storage: st,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("landedcost listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("landedcost shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
