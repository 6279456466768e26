package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gramoorja/landedcost/internal/tariff"
)

func newCatalogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect or import the tariff catalog",
	}
	cmd.AddCommand(newCatalogListCmd(a), newCatalogImportCmd(a))
	return cmd
}

func newCatalogListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List connection types and their sub categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, ct := range cat.ConnectionTypes() {
				fmt.Fprintln(w, ct)
				for _, sc := range cat.SubCategories(ct) {
					row, _ := cat.Lookup(ct, sc)
					fmt.Fprintf(w, "  %s\tenergy=%s wheeling=%s\n", sc, row.EnergyCharge.StringFixed(2), row.WheelingCharge.StringFixed(2))
				}
			}
			for _, warn := range cat.Warnings() {
				fmt.Fprintf(w, "warning: %s\n", warn)
			}
			return nil
		},
	}
}

func newCatalogImportCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a CSV or XLSX file and replace the tariffs table",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cat, err := tariff.Load(ctx, tariff.FileSource{Path: file})
			if err != nil {
				return err
			}
			st, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			if err := st.ReplaceTariffs(ctx, tariff.ToStorage(cat.Rows())); err != nil {
				return fmt.Errorf("import %s: %w", file, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d tariffs from %s (%d warnings)\n", cat.Len(), file, len(cat.Warnings()))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "database.xlsx", "CSV or XLSX file to import")
	return cmd
}
