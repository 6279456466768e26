package tariff

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/gramoorja/landedcost/internal/storage"
)

const sampleCSV = `Connection Type,Sub Category,Energy Charges (Rs./kWh),Wheeling Charges (Rs./kWh)
HT Industrial,General,8.36,0.74
HT Industrial,Seasonal,7.92,0.74
LT Commercial,Shops,7.25,1.17
HT Industrial,Express Feeder,8.90,0.74
LT Commercial,Offices,7.60,1.17
`

func loadCSV(t *testing.T, body string) (*Catalog, error) {
	t.Helper()
	return Load(context.Background(), ReaderSource{Label: "test.csv", Reader: strings.NewReader(body)})
}

func TestLoad_ListsInFirstSeenOrder(t *testing.T) {
	cat, err := loadCSV(t, sampleCSV)
	require.NoError(t, err)

	assert.Equal(t, 5, cat.Len())
	assert.Equal(t, []string{"HT Industrial", "LT Commercial"}, cat.ConnectionTypes())
	assert.Equal(t, []string{"General", "Seasonal", "Express Feeder"}, cat.SubCategories("HT Industrial"))
	assert.Equal(t, []string{"Shops", "Offices"}, cat.SubCategories("LT Commercial"))
	assert.Empty(t, cat.SubCategories("Agricultural"))
	assert.Empty(t, cat.SubCategories(""))
	assert.Empty(t, cat.Warnings())
}

func TestLookup_EveryRowIsFound(t *testing.T) {
	cat, err := loadCSV(t, sampleCSV)
	require.NoError(t, err)

	for _, want := range cat.Rows() {
		got, err := cat.Lookup(want.ConnectionType, want.SubCategory)
		require.NoError(t, err)
		assert.Equal(t, want.ConnectionType, got.ConnectionType)
		assert.Equal(t, want.SubCategory, got.SubCategory)
		assert.True(t, want.EnergyCharge.Equal(got.EnergyCharge))
		assert.True(t, want.WheelingCharge.Equal(got.WheelingCharge))
	}

	row, err := cat.Lookup("LT Commercial", "Shops")
	require.NoError(t, err)
	assert.True(t, row.EnergyCharge.Equal(decimal.RequireFromString("7.25")))
}

func TestLookup_NotFound(t *testing.T) {
	cat, err := loadCSV(t, sampleCSV)
	require.NoError(t, err)

	pairs := [][2]string{
		{"HT Industrial", "Shops"},
		{"Agricultural", "General"},
		{"", ""},
		{"ht industrial", "general"},
	}
	for _, p := range pairs {
		_, err := cat.Lookup(p[0], p[1])
		assert.True(t, errors.Is(err, ErrNotFound), "pair %v: %v", p, err)
		assert.False(t, cat.Find(p[0], p[1]).Found)
	}
}

func TestLoad_MissingColumnFails(t *testing.T) {
	body := "Connection Type,Sub Category,Energy Charges (Rs./kWh)\nHT Industrial,General,8.36\n"
	cat, err := loadCSV(t, body)

	require.Error(t, err)
	assert.Nil(t, cat)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, err.Error(), ColumnWheelingCharge)
}

func TestLoad_MalformedValues(t *testing.T) {
	cases := map[string]string{
		"negative": "Connection Type,Sub Category,Energy Charges (Rs./kWh),Wheeling Charges (Rs./kWh)\nA,B,-1,0\n",
		"text":     "Connection Type,Sub Category,Energy Charges (Rs./kWh),Wheeling Charges (Rs./kWh)\nA,B,abc,0\n",
		"empty":    "Connection Type,Sub Category,Energy Charges (Rs./kWh),Wheeling Charges (Rs./kWh)\n",
		"no type":  "Connection Type,Sub Category,Energy Charges (Rs./kWh),Wheeling Charges (Rs./kWh)\n,B,1,0\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			cat, err := loadCSV(t, body)
			assert.Nil(t, cat)
			var le *LoadError
			assert.True(t, errors.As(err, &le), "got %v", err)
		})
	}
}

func TestLoad_HeaderIsCaseAndSpaceInsensitive(t *testing.T) {
	body := " connection type ,SUB CATEGORY,Notes,energy charges (rs./kwh),Wheeling Charges (Rs./kWh)\nHT Industrial,General,x,8.36,0.74\n\n,,,,\n"
	cat, err := loadCSV(t, body)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
}

func TestLoad_DuplicatePairWarns(t *testing.T) {
	body := sampleCSV + "HT Industrial,General,9.99,0.99\n"
	cat, err := loadCSV(t, body)
	require.NoError(t, err)

	require.Len(t, cat.Warnings(), 1)
	assert.Contains(t, cat.Warnings()[0], "row 7")
	assert.Equal(t, 5, cat.Len())

	row, err := cat.Lookup("HT Industrial", "General")
	require.NoError(t, err)
	assert.True(t, row.EnergyCharge.Equal(decimal.RequireFromString("8.36")), "first occurrence must win")
}

func TestFileSource_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "database.xlsx")
	cat, err := Load(context.Background(), FileSource{Path: path})

	assert.Nil(t, cat)
	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFileSource_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tariffs.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	cat, err := Load(context.Background(), FileSource{Path: path})
	require.NoError(t, err)
	assert.Equal(t, path, cat.Source())
	assert.Equal(t, 5, cat.Len())
}

func TestFileSource_Excel(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{ColumnConnectionType, ColumnSubCategory, ColumnEnergyCharge, ColumnWheelingCharge},
		{"HT Industrial", "General", 8.36, 0.74},
		{"LT Commercial", "Shops", 7.25, 1.17},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	path := filepath.Join(t.TempDir(), "database.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	cat, err := Load(context.Background(), FileSource{Path: path})
	require.NoError(t, err)
	assert.Equal(t, []string{"HT Industrial", "LT Commercial"}, cat.ConnectionTypes())

	row, err := cat.Lookup("LT Commercial", "Shops")
	require.NoError(t, err)
	assert.True(t, row.WheelingCharge.Equal(decimal.RequireFromString("1.17")), "got %s", row.WheelingCharge)
}

func TestFileSource_UnsupportedExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tariffs.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o644))

	_, err := Load(context.Background(), FileSource{Path: path})
	var le *LoadError
	assert.True(t, errors.As(err, &le))
}

func TestStorageSource_RoundTrip(t *testing.T) {
	src, err := loadCSV(t, sampleCSV)
	require.NoError(t, err)

	st := storage.NewMemoryWithTariffs(ToStorage(src.Rows()))
	cat, err := Load(context.Background(), StorageSource{Store: st})
	require.NoError(t, err)

	assert.Equal(t, src.ConnectionTypes(), cat.ConnectionTypes())
	assert.Equal(t, src.SubCategories("HT Industrial"), cat.SubCategories("HT Industrial"))
	assert.Equal(t, "storage", cat.Source())
}

func TestStorageSource_EmptyTable(t *testing.T) {
	_, err := Load(context.Background(), StorageSource{Store: storage.NewMemory()})
	var le *LoadError
	assert.True(t, errors.As(err, &le))
}
