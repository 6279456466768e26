package tariff

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/gramoorja/landedcost/internal/storage"
)

// Source yields the raw reference table: a header row and data records.
type Source interface {
	Name() string
	Records(ctx context.Context) (header []string, records [][]string, err error)
}

// FileSource reads a CSV or Excel workbook from disk, chosen by extension.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Records(ctx context.Context) ([]string, [][]string, error) {
	if s.Path == "" {
		return nil, nil, loadErrorf("<unset>", "no dataset path configured")
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, &LoadError{Source: s.Path, Err: fmt.Errorf("dataset not found: %w", err)}
		}
		return nil, nil, &LoadError{Source: s.Path, Err: err}
	}

	switch strings.ToLower(filepath.Ext(s.Path)) {
	case ".csv":
		return readCSV(s.Path, bytes.NewReader(data))
	case ".xlsx", ".xlsm":
		return readExcel(s.Path, bytes.NewReader(data))
	default:
		return nil, nil, loadErrorf(s.Path, "unsupported dataset format %q", filepath.Ext(s.Path))
	}
}

// ReaderSource reads CSV records from an in-memory reader. Readers that
// implement io.Seeker (strings.Reader, bytes.Reader, os.File) are rewound on
// every call, so the source can be reloaded; other readers are read once.
type ReaderSource struct {
	Label  string
	Reader io.Reader
}

func (s ReaderSource) Name() string { return s.Label }

func (s ReaderSource) Records(ctx context.Context) ([]string, [][]string, error) {
	if seeker, ok := s.Reader.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, nil, &LoadError{Source: s.Label, Err: err}
		}
	}
	return readCSV(s.Label, s.Reader)
}

func readCSV(name string, r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, nil, loadErrorf(name, "parse csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil, loadErrorf(name, "empty dataset")
	}
	return all[0], all[1:], nil
}

func readExcel(name string, r io.Reader) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, loadErrorf(name, "open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, loadErrorf(name, "workbook has no sheets")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, loadErrorf(name, "read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, loadErrorf(name, "sheet %q is empty", sheet)
	}
	return rows[0], rows[1:], nil
}

// StorageSource reads the reference table persisted in a SQL backend.
type StorageSource struct {
	Label string
	Store storage.Storage
}

func (s StorageSource) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "storage"
}

func (s StorageSource) Records(ctx context.Context) ([]string, [][]string, error) {
	if s.Store == nil {
		return nil, nil, loadErrorf(s.Name(), "no storage backend")
	}
	list, err := s.Store.ListTariffs(ctx)
	if err != nil {
		return nil, nil, &LoadError{Source: s.Name(), Err: err}
	}
	records := make([][]string, 0, len(list))
	for _, t := range list {
		records = append(records, []string{
			t.ConnectionType,
			t.SubCategory,
			t.EnergyCharge.String(),
			t.WheelingCharge.String(),
		})
	}
	header := make([]string, len(RequiredColumns))
	copy(header, RequiredColumns)
	return header, records, nil
}

// ToStorage converts catalog rows to storage records, keeping source order.
func ToStorage(rows []TariffRow) []storage.Tariff {
	out := make([]storage.Tariff, 0, len(rows))
	for i, r := range rows {
		out = append(out, storage.Tariff{
			Position:       i + 1,
			ConnectionType: r.ConnectionType,
			SubCategory:    r.SubCategory,
			EnergyCharge:   r.EnergyCharge,
			WheelingCharge: r.WheelingCharge,
		})
	}
	return out
}
