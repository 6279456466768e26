package cost

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramoorja/landedcost/internal/tariff"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleRow() tariff.TariffRow {
	return tariff.TariffRow{
		ConnectionType: "HT Industrial",
		SubCategory:    "General",
		EnergyCharge:   d("5.00"),
		WheelingCharge: d("0.50"),
	}
}

func TestCompute_Scenario(t *testing.T) {
	b, err := Compute(sampleRow(), Inputs{
		FAC:                    d("0.20"),
		TaxOnSale:              d("0.10"),
		ElectricityDutyPercent: d("5.0"),
	})
	require.NoError(t, err)

	assert.True(t, b.DutyAmount.Equal(d("0.285")), "duty amount = %s", b.DutyAmount)
	assert.Equal(t, "6.09", b.LandedCost.StringFixed(2))
	assert.Equal(t, "HT Industrial", b.ConnectionType)
	assert.Equal(t, "General", b.SubCategory)
}

func TestCompute_ZeroInputs(t *testing.T) {
	b, err := Compute(sampleRow(), Inputs{})
	require.NoError(t, err)

	assert.True(t, b.DutyAmount.IsZero())
	assert.True(t, b.LandedCost.Equal(d("5.50")), "landed cost = %s", b.LandedCost)
}

func TestCompute_Deterministic(t *testing.T) {
	in := Inputs{FAC: d("0.37"), TaxOnSale: d("0.13"), ElectricityDutyPercent: d("7.5")}

	first, err := Compute(sampleRow(), in)
	require.NoError(t, err)
	second, err := Compute(sampleRow(), in)
	require.NoError(t, err)

	assert.Equal(t, first.LandedCost.String(), second.LandedCost.String())
	assert.Equal(t, first.DutyAmount.String(), second.DutyAmount.String())
}

func TestCompute_MonotonicInFAC(t *testing.T) {
	in := Inputs{TaxOnSale: d("0.10"), ElectricityDutyPercent: d("5")}
	prev, err := Compute(sampleRow(), in)
	require.NoError(t, err)

	step := d("0.01")
	for i := 0; i < 200; i++ {
		in.FAC = in.FAC.Add(step)
		next, err := Compute(sampleRow(), in)
		require.NoError(t, err)
		require.True(t, next.LandedCost.GreaterThan(prev.LandedCost),
			"fac=%s landed=%s not greater than %s", in.FAC, next.LandedCost, prev.LandedCost)
		prev = next
	}
}

func TestCompute_RoundsOnlyTheTotal(t *testing.T) {
	row := tariff.TariffRow{EnergyCharge: d("0.994"), WheelingCharge: d("0")}
	b, err := Compute(row, Inputs{ElectricityDutyPercent: d("100")})
	require.NoError(t, err)

	// Rounding the duty first would give 0.994 + 0.99 = 1.98.
	assert.True(t, b.DutyAmount.Equal(d("0.994")))
	assert.Equal(t, "1.99", b.LandedCost.StringFixed(2))
}

func TestCompute_NegativeInput(t *testing.T) {
	cases := map[string]Inputs{
		"fac":  {FAC: d("-0.01")},
		"tax":  {TaxOnSale: d("-1")},
		"duty": {ElectricityDutyPercent: d("-5")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Compute(sampleRow(), in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}

	row := sampleRow()
	row.WheelingCharge = d("-0.5")
	_, err := Compute(row, Inputs{})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseInputs(t *testing.T) {
	in, err := ParseInputs("0.20", " 0.10 ", "")
	require.NoError(t, err)
	assert.True(t, in.FAC.Equal(d("0.2")))
	assert.True(t, in.TaxOnSale.Equal(d("0.1")))
	assert.True(t, in.ElectricityDutyPercent.IsZero())

	_, err = ParseInputs("abc", "0", "0")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ParseInputs("0", "-0.5", "0")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
