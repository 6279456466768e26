package cost

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/gramoorja/landedcost/internal/tariff"
)

// ErrInvalidInput is returned for negative or unparsable inputs.
var ErrInvalidInput = errors.New("invalid input")

var hundred = decimal.NewFromInt(100)

// Inputs are the per-calculation surcharges supplied by the user.
type Inputs struct {
	FAC                    decimal.Decimal `json:"fac"`
	TaxOnSale              decimal.Decimal `json:"tax_on_sale"`
	ElectricityDutyPercent decimal.Decimal `json:"electricity_duty_percent"`
}

// Breakdown is the itemized result of one calculation. DutyAmount keeps full
// precision; only LandedCost is rounded.
type Breakdown struct {
	ConnectionType         string          `json:"connection_type"`
	SubCategory            string          `json:"sub_category"`
	EnergyCharge           decimal.Decimal `json:"energy_charge"`
	WheelingCharge         decimal.Decimal `json:"wheeling_charge"`
	FAC                    decimal.Decimal `json:"fac"`
	TaxOnSale              decimal.Decimal `json:"tax_on_sale"`
	ElectricityDutyPercent decimal.Decimal `json:"electricity_duty_percent"`
	DutyAmount             decimal.Decimal `json:"duty_amount"`
	LandedCost             decimal.Decimal `json:"landed_cost"`
}

// Compute applies the landed cost formula:
//
//	duty   = (energy + wheeling + fac) * duty% / 100
//	landed = round(energy + wheeling + fac + tax + duty, 2)
//
// Rounding is half away from zero and happens once, on the total.
func Compute(row tariff.TariffRow, in Inputs) (Breakdown, error) {
	if err := validate(row, in); err != nil {
		return Breakdown{}, err
	}

	base := row.EnergyCharge.Add(row.WheelingCharge).Add(in.FAC)
	duty := base.Mul(in.ElectricityDutyPercent).Div(hundred)
	landed := base.Add(in.TaxOnSale).Add(duty).Round(2)

	return Breakdown{
		ConnectionType:         row.ConnectionType,
		SubCategory:            row.SubCategory,
		EnergyCharge:           row.EnergyCharge,
		WheelingCharge:         row.WheelingCharge,
		FAC:                    in.FAC,
		TaxOnSale:              in.TaxOnSale,
		ElectricityDutyPercent: in.ElectricityDutyPercent,
		DutyAmount:             duty,
		LandedCost:             landed,
	}, nil
}

func validate(row tariff.TariffRow, in Inputs) error {
	checks := []struct {
		name string
		v    decimal.Decimal
	}{
		{"energy charge", row.EnergyCharge},
		{"wheeling charge", row.WheelingCharge},
		{"fac", in.FAC},
		{"tax on sale", in.TaxOnSale},
		{"electricity duty percent", in.ElectricityDutyPercent},
	}
	for _, c := range checks {
		if c.v.IsNegative() {
			return fmt.Errorf("%w: %s must be >= 0, got %s", ErrInvalidInput, c.name, c.v)
		}
	}
	return nil
}

// ParseInputs parses the three surcharge fields as typed into a form or flag.
// Blank fields mean zero.
func ParseInputs(fac, taxOnSale, dutyPercent string) (Inputs, error) {
	var in Inputs
	var err error
	if in.FAC, err = parseField("fac", fac); err != nil {
		return Inputs{}, err
	}
	if in.TaxOnSale, err = parseField("tax on sale", taxOnSale); err != nil {
		return Inputs{}, err
	}
	if in.ElectricityDutyPercent, err = parseField("electricity duty percent", dutyPercent); err != nil {
		return Inputs{}, err
	}
	return in, nil
}

func parseField(name, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s is not a number: %q", ErrInvalidInput, name, raw)
	}
	if v.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: %s must be >= 0, got %s", ErrInvalidInput, name, raw)
	}
	return v, nil
}
