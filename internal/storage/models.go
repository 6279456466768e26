package storage

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tariff is one persisted row of the reference table. Position keeps the
// order the rows were imported in, which drives first-seen ordering.
type Tariff struct {
	ID             uint            `json:"-" gorm:"primaryKey;column:id"`
	Position       int             `json:"position" gorm:"column:position;index"`
	ConnectionType string          `json:"connection_type" gorm:"column:connection_type;not null"`
	SubCategory    string          `json:"sub_category" gorm:"column:sub_category;not null"`
	EnergyCharge   decimal.Decimal `json:"energy_charge" gorm:"column:energy_charge;type:numeric;not null"`
	WheelingCharge decimal.Decimal `json:"wheeling_charge" gorm:"column:wheeling_charge;type:numeric;not null"`
	UpdatedAt      time.Time       `json:"updated_at" gorm:"column:updated_at"`
}

func (Tariff) TableName() string { return "tariffs" }
