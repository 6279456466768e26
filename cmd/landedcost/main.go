package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gramoorja/landedcost/internal/config"
	"github.com/gramoorja/landedcost/internal/report"
	"github.com/gramoorja/landedcost/internal/storage"
	"github.com/gramoorja/landedcost/internal/tariff"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("landedcost: %v", err)
	}
}

// app carries the resolved configuration into every subcommand.
type app struct {
	configPath  string
	catalogFile string

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "landedcost",
		Short:         "Landed cost of electricity calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if path == "" {
				path = os.Getenv("LANDEDCOST_CONFIG")
			}
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			if a.catalogFile != "" {
				cfg.Catalog.Source = "file"
				cfg.Catalog.Path = a.catalogFile
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "TOML config file (default $LANDEDCOST_CONFIG)")
	root.PersistentFlags().StringVar(&a.catalogFile, "catalog", "", "CSV or XLSX tariff file, overrides the configured source")

	root.AddCommand(
		newServeCmd(a),
		newCalcCmd(a),
		newReportCmd(a),
		newCatalogCmd(a),
		newMigrateCmd(a),
	)
	return root
}

func (a *app) reportOptions() report.Options {
	return report.Options{
		LogoPath:     a.cfg.Report.LogoPath,
		LogoRequired: a.cfg.Report.LogoRequired,
		Footer:       a.cfg.Report.Footer,
		Compress:     a.cfg.Report.Compress,
	}
}

func (a *app) openStorage(ctx context.Context) (storage.Storage, error) {
	return storage.Open(ctx, storage.Config{Driver: a.cfg.DB.Driver, DSN: a.cfg.DB.DSN})
}

// catalogSource resolves the configured dataset. The returned storage is nil
// for file sources; callers close it otherwise.
func (a *app) catalogSource(ctx context.Context) (tariff.Source, storage.Storage, error) {
	switch a.cfg.Catalog.Source {
	case "", "file":
		return tariff.FileSource{Path: a.cfg.Catalog.Path}, nil, nil
	case "db":
		st, err := a.openStorage(ctx)
		if err != nil {
			return nil, nil, err
		}
		return tariff.StorageSource{Label: a.cfg.DB.Driver, Store: st}, st, nil
	default:
		return nil, nil, fmt.Errorf("unknown catalog source %q", a.cfg.Catalog.Source)
	}
}

// loadCatalog loads the dataset once, for the one-shot commands.
func (a *app) loadCatalog(ctx context.Context) (*tariff.Catalog, error) {
	src, st, err := a.catalogSource(ctx)
	if err != nil {
		return nil, err
	}
	if st != nil {
		defer st.Close()
	}
	return tariff.Load(ctx, src)
}
