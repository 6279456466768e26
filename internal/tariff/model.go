package tariff

import "github.com/shopspring/decimal"

// Column headers the reference dataset must carry.
const (
	ColumnConnectionType = "Connection Type"
	ColumnSubCategory    = "Sub Category"
	ColumnEnergyCharge   = "Energy Charges (Rs./kWh)"
	ColumnWheelingCharge = "Wheeling Charges (Rs./kWh)"
)

// RequiredColumns lists the dataset headers in their canonical order.
var RequiredColumns = []string{
	ColumnConnectionType,
	ColumnSubCategory,
	ColumnEnergyCharge,
	ColumnWheelingCharge,
}

// TariffRow is one line of the reference table. Charges are per kWh.
type TariffRow struct {
	ConnectionType string          `json:"connection_type"`
	SubCategory    string          `json:"sub_category"`
	EnergyCharge   decimal.Decimal `json:"energy_charge"`
	WheelingCharge decimal.Decimal `json:"wheeling_charge"`
}

// Match is the result of Find: either a row, or Found == false.
type Match struct {
	Row   TariffRow
	Found bool
}

type pairKey struct {
	connectionType string
	subCategory    string
}
