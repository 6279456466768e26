package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/gramoorja/landedcost/internal/cost"
)

const (
	// Filename is the download name of the exported document.
	Filename = "Electricity_Cost_Report.pdf"
	// ContentType is the MIME type of the exported document.
	ContentType = "application/pdf"

	Title    = "Electricity Cost to Consumer"
	Subtitle = "Delivered cost of electricity including all applicable charges"

	// DateLayout renders dates as dd-mm-yyyy.
	DateLayout = "02-01-2006"
)

// DefaultFooter is the contact block printed under the table.
var DefaultFooter = []string{
	"Mahendra Chourasiya | Project Manager & Solar Implementation Specialist",
	"Gram Oorja Solutions Private Limited",
	"+91-9689865168 | mahendra@gramoorja.in",
}

// ConsumerInfo is free-text metadata printed at the top of the table.
type ConsumerInfo struct {
	Name          string `json:"name"`
	AccountNumber string `json:"account_number"`
}

// Metadata carries the generation date. Callers inject it so output is
// reproducible.
type Metadata struct {
	Date time.Time
}

// Options control presentation only.
type Options struct {
	// LogoPath is an optional PNG, JPEG or GIF drawn in the top right corner.
	LogoPath string
	// LogoRequired turns a missing logo into a RenderError.
	LogoRequired bool
	// Footer replaces DefaultFooter when non-empty.
	Footer []string
	// Compress deflates page streams.
	Compress bool
}

// RenderError reports a document that could not be produced.
type RenderError struct {
	Op  string
	Err error
}

func (e *RenderError) Error() string { return fmt.Sprintf("render report: %s: %v", e.Op, e.Err) }

func (e *RenderError) Unwrap() error { return e.Err }

// Row is one labeled line of the report table.
type Row struct {
	Label string
	Value string
}

// Rows returns the table lines in their fixed order.
func Rows(b cost.Breakdown, c ConsumerInfo) []Row {
	return []Row{
		{"Consumer Name", c.Name},
		{"Consumer Number", c.AccountNumber},
		{"Connection Type", b.ConnectionType},
		{"Sub Category", b.SubCategory},
		{"Energy Charges (Rs./Unit)", b.EnergyCharge.StringFixed(2)},
		{"FAC (Rs./Unit)", b.FAC.StringFixed(2)},
		{"Tax on Sale (Rs./Unit)", b.TaxOnSale.StringFixed(2)},
		{"Electricity Duty (%)", b.ElectricityDutyPercent.StringFixed(2)},
		{"Landed Cost (Rs./Unit)", b.LandedCost.StringFixed(2)},
	}
}

// Render lays out the breakdown as a single A4 page PDF.
func Render(b cost.Breakdown, c ConsumerInfo, m Metadata, opts Options) ([]byte, error) {
	logo, err := readLogo(opts)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(m.Date)
	pdf.SetModificationDate(m.Date)
	pdf.SetCatalogSort(true)
	pdf.SetCompression(opts.Compress)
	pdf.SetTitle(Title, false)
	pdf.SetCreator("landedcost", false)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	if logo != nil {
		pdf.RegisterImageOptionsReader("logo", logo.options, bytes.NewReader(logo.data))
		pdf.ImageOptions("logo", 160, 10, 40, 0, false, logo.options, 0, "")
	}
	pdf.Ln(20)

	pdf.SetFont("Arial", "", 16)
	pdf.CellFormat(0, 10, Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 10, Subtitle, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 10, "Date: "+m.Date.Format(DateLayout), "", 1, "C", false, 0, "")
	pdf.Ln(10)

	pageW, _ := pdf.GetPageSize()
	colW := pageW / 2.2
	pdf.SetFillColor(240, 240, 240)
	for _, r := range Rows(b, c) {
		pdf.CellFormat(colW, 10, r.Label, "1", 0, "L", true, 0, "")
		pdf.CellFormat(colW, 10, tr(r.Value), "1", 0, "L", true, 0, "")
		pdf.Ln(-1)
	}

	footer := opts.Footer
	if len(footer) == 0 {
		footer = DefaultFooter
	}
	pdf.Ln(15)
	pdf.SetTextColor(50, 50, 50)
	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 8, tr(strings.Join(footer, "\n")), "", "C", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Op: "generate pdf", Err: err}
	}
	return buf.Bytes(), nil
}

type logoImage struct {
	data    []byte
	options gofpdf.ImageOptions
}

func readLogo(opts Options) (*logoImage, error) {
	if opts.LogoPath == "" {
		if opts.LogoRequired {
			return nil, &RenderError{Op: "logo", Err: errors.New("logo required but no path configured")}
		}
		return nil, nil
	}

	data, err := os.ReadFile(opts.LogoPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !opts.LogoRequired {
			return nil, nil
		}
		return nil, &RenderError{Op: "logo", Err: err}
	}

	var typ string
	switch strings.ToLower(filepath.Ext(opts.LogoPath)) {
	case ".png":
		typ = "PNG"
	case ".jpg", ".jpeg":
		typ = "JPG"
	case ".gif":
		typ = "GIF"
	default:
		return nil, &RenderError{Op: "logo", Err: fmt.Errorf("unsupported image type %q", filepath.Ext(opts.LogoPath))}
	}
	return &logoImage{data: data, options: gofpdf.ImageOptions{ImageType: typ}}, nil
}
