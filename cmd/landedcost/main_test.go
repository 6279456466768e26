package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dataset = `Connection Type,Sub Category,Energy Charges (Rs./kWh),Wheeling Charges (Rs./kWh)
HT Industrial,General,5.00,0.50
LT Commercial,Shops,7.25,1.17
LT Commercial,Shops,7.30,1.17
`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tariffs.csv")
	require.NoError(t, os.WriteFile(path, []byte(dataset), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestCalcCommand(t *testing.T) {
	csv := writeDataset(t)

	out, err := run(t, "calc", "--catalog", csv,
		"--name", "Asha Patil",
		"--connection-type", "HT Industrial", "--sub-category", "General",
		"--fac", "0.20", "--tax", "0.10", "--duty", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "Asha Patil")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 9)
	assert.True(t, strings.HasPrefix(lines[8], "Landed Cost (Rs./Unit)"))
	assert.True(t, strings.HasSuffix(lines[8], "6.09"))
}

func TestCalcCommand_Errors(t *testing.T) {
	csv := writeDataset(t)

	_, err := run(t, "calc", "--catalog", csv, "--connection-type", "HT Industrial")
	assert.ErrorContains(t, err, "select both")

	_, err = run(t, "calc", "--catalog", csv, "--connection-type", "HT Industrial", "--sub-category", "General", "--fac", "-1")
	assert.ErrorContains(t, err, "invalid input")

	_, err = run(t, "calc", "--catalog", filepath.Join(t.TempDir(), "missing.xlsx"), "--connection-type", "A", "--sub-category", "B")
	assert.ErrorContains(t, err, "load tariff catalog")
}

func TestReportCommand(t *testing.T) {
	csv := writeDataset(t)
	out := filepath.Join(t.TempDir(), "report.pdf")
	t.Setenv("LANDEDCOST_LOGO_PATH", filepath.Join(t.TempDir(), "no-logo.png"))

	_, err := run(t, "report", "--catalog", csv,
		"--connection-type", "LT Commercial", "--sub-category", "Shops", "--out", out)
	require.NoError(t, err)

	doc, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF-")))
}

func TestCatalogListAndImport(t *testing.T) {
	csv := writeDataset(t)

	out, err := run(t, "catalog", "list", "--catalog", csv)
	require.NoError(t, err)
	assert.Contains(t, out, "HT Industrial\n  General")
	assert.Contains(t, out, "warning:")

	t.Setenv("LANDEDCOST_DB_DRIVER", "sqlite")
	t.Setenv("LANDEDCOST_DB_DSN", filepath.Join(t.TempDir(), "landedcost.db"))

	out, err = run(t, "catalog", "import", "--file", csv)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 2 tariffs")

	t.Setenv("LANDEDCOST_CATALOG_SOURCE", "db")
	out, err = run(t, "calc", "--connection-type", "LT Commercial", "--sub-category", "Shops")
	require.NoError(t, err)
	assert.Contains(t, out, "7.25")
}
