package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/gramoorja/landedcost/internal/cost"
	"github.com/gramoorja/landedcost/internal/report"
	"github.com/gramoorja/landedcost/internal/session"
)

type formFlags struct {
	name           string
	number         string
	connectionType string
	subCategory    string
	fac            string
	tax            string
	duty           string
}

func (f *formFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "consumer name")
	cmd.Flags().StringVar(&f.number, "number", "", "consumer number")
	cmd.Flags().StringVar(&f.connectionType, "connection-type", "", "connection type")
	cmd.Flags().StringVar(&f.subCategory, "sub-category", "", "sub category")
	cmd.Flags().StringVar(&f.fac, "fac", "0", "FAC (Rs./Unit)")
	cmd.Flags().StringVar(&f.tax, "tax", "0", "tax on sale (Rs./Unit)")
	cmd.Flags().StringVar(&f.duty, "duty", "0", "electricity duty (%)")
}

func (f *formFlags) form() (session.Form, error) {
	in, err := cost.ParseInputs(f.fac, f.tax, f.duty)
	if err != nil {
		return session.Form{}, err
	}
	return session.Form{
		ConsumerName:   f.name,
		ConsumerNumber: f.number,
		ConnectionType: f.connectionType,
		SubCategory:    f.subCategory,
		Inputs:         in,
	}, nil
}

func (a *app) newSession(cmd *cobra.Command) (*session.Session, error) {
	cat, err := a.loadCatalog(cmd.Context())
	if err != nil {
		return nil, err
	}
	return session.New(cat, a.reportOptions()), nil
}

func newCalcCmd(a *app) *cobra.Command {
	var f formFlags
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Print the landed cost breakdown for one selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := f.form()
			if err != nil {
				return err
			}
			sess, err := a.newSession(cmd)
			if err != nil {
				return err
			}
			b, err := sess.Calculate(form)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, row := range report.Rows(b, form.Consumer()) {
				fmt.Fprintf(tw, "%s\t%s\n", row.Label, row.Value)
			}
			return tw.Flush()
		},
	}
	f.bind(cmd)
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var f formFlags
	var out string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write the PDF report for one selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := f.form()
			if err != nil {
				return err
			}
			sess, err := a.newSession(cmd)
			if err != nil {
				return err
			}
			doc, err := sess.Export(form)
			if err != nil {
				return err
			}
			if err := writeFileAtomically(out, doc, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(doc))
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVar(&out, "out", report.Filename, "output path")
	return cmd
}
