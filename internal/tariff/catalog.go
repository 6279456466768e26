package tariff

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"
)

// Catalog is an immutable, loaded reference table. It is safe for concurrent
// readers because nothing mutates it after Load returns.
type Catalog struct {
	source          string
	rows            []TariffRow
	index           map[pairKey]int
	connectionTypes []string
	subCategories   map[string][]string
	warnings        []string
}

// Load reads every record from src and builds a Catalog. Any structural
// problem yields a *LoadError and a nil catalog.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	header, records, err := src.Records(ctx)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			return nil, err
		}
		return nil, &LoadError{Source: src.Name(), Err: err}
	}
	return build(src.Name(), header, records)
}

func build(source string, header []string, records [][]string) (*Catalog, error) {
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}

	c := &Catalog{
		source:        source,
		index:         make(map[pairKey]int),
		subCategories: make(map[string][]string),
	}

	for i, rec := range records {
		line := i + 2 // header is line 1
		if blankRecord(rec) {
			continue
		}
		row, err := parseRecord(rec, cols)
		if err != nil {
			return nil, loadErrorf(source, "row %d: %w", line, err)
		}

		key := pairKey{row.ConnectionType, row.SubCategory}
		if _, dup := c.index[key]; dup {
			w := fmt.Sprintf("row %d: duplicate tariff %q / %q ignored, first occurrence kept",
				line, row.ConnectionType, row.SubCategory)
			log.Printf("tariff: %s: %s", source, w)
			c.warnings = append(c.warnings, w)
			continue
		}

		if _, seen := c.subCategories[row.ConnectionType]; !seen {
			c.connectionTypes = append(c.connectionTypes, row.ConnectionType)
		}
		c.subCategories[row.ConnectionType] = append(c.subCategories[row.ConnectionType], row.SubCategory)
		c.index[key] = len(c.rows)
		c.rows = append(c.rows, row)
	}

	if len(c.rows) == 0 {
		return nil, loadErrorf(source, "no tariff rows")
	}
	return c, nil
}

// resolveColumns maps each required column to its position in header.
func resolveColumns(header []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, ok := pos[name]; !ok {
			pos[name] = i
		}
	}

	cols := make(map[string]int, len(RequiredColumns))
	var missing []string
	for _, want := range RequiredColumns {
		i, ok := pos[strings.ToLower(want)]
		if !ok {
			missing = append(missing, want)
			continue
		}
		cols[want] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return cols, nil
}

func parseRecord(rec []string, cols map[string]int) (TariffRow, error) {
	field := func(col string) string {
		i := cols[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	row := TariffRow{
		ConnectionType: field(ColumnConnectionType),
		SubCategory:    field(ColumnSubCategory),
	}
	if row.ConnectionType == "" {
		return TariffRow{}, fmt.Errorf("empty %s", ColumnConnectionType)
	}
	if row.SubCategory == "" {
		return TariffRow{}, fmt.Errorf("empty %s", ColumnSubCategory)
	}

	var err error
	if row.EnergyCharge, err = parseCharge(ColumnEnergyCharge, field(ColumnEnergyCharge)); err != nil {
		return TariffRow{}, err
	}
	if row.WheelingCharge, err = parseCharge(ColumnWheelingCharge, field(ColumnWheelingCharge)); err != nil {
		return TariffRow{}, err
	}
	return row, nil
}

func parseCharge(col, raw string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("empty %s", col)
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid number %q", col, raw)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: negative value %s", col, raw)
	}
	return v, nil
}

func blankRecord(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// Source names where the catalog was loaded from.
func (c *Catalog) Source() string { return c.source }

// Len returns the number of distinct tariff rows.
func (c *Catalog) Len() int { return len(c.rows) }

// Rows returns a copy of the rows in source order.
func (c *Catalog) Rows() []TariffRow {
	out := make([]TariffRow, len(c.rows))
	copy(out, c.rows)
	return out
}

// Warnings returns the data-quality warnings raised while loading.
func (c *Catalog) Warnings() []string {
	out := make([]string, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// ConnectionTypes lists the distinct connection types in first-seen order.
func (c *Catalog) ConnectionTypes() []string {
	out := make([]string, len(c.connectionTypes))
	copy(out, c.connectionTypes)
	return out
}

// SubCategories lists the sub categories of connectionType in first-seen
// order. Unknown or empty connection types yield an empty slice.
func (c *Catalog) SubCategories(connectionType string) []string {
	subs := c.subCategories[connectionType]
	out := make([]string, len(subs))
	copy(out, subs)
	return out
}

// Find reports whether a row exists for the pair.
func (c *Catalog) Find(connectionType, subCategory string) Match {
	i, ok := c.index[pairKey{connectionType, subCategory}]
	if !ok {
		return Match{}
	}
	return Match{Row: c.rows[i], Found: true}
}

// Lookup returns the row for the pair or an error wrapping ErrNotFound.
func (c *Catalog) Lookup(connectionType, subCategory string) (TariffRow, error) {
	m := c.Find(connectionType, subCategory)
	if !m.Found {
		return TariffRow{}, fmt.Errorf("%w: %q / %q", ErrNotFound, connectionType, subCategory)
	}
	return m.Row, nil
}
