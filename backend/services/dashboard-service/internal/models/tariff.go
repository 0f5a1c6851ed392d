package models

import "github.com/shopspring/decimal"

// TariffSlab prices the energy between the previous slab's bound and UpToKWh.
// UpToKWh of zero marks the open-ended last slab.
type TariffSlab struct {
	UpToKWh    float64 `yaml:"upToKWh" json:"up_to_kwh"`
	RatePerKWh float64 `yaml:"ratePerKWh" json:"rate_per_kwh"`
}

// SlabCharge is the portion of a bill billed at one slab's rate.
type SlabCharge struct {
	Slab      string          `json:"slab"`
	EnergyKWh decimal.Decimal `json:"energy_kwh"`
	Rate      decimal.Decimal `json:"rate_per_kwh"`
	Amount    decimal.Decimal `json:"amount"`
}

// BillEstimate is the slab-by-slab price of an energy total.
type BillEstimate struct {
	EnergyKWh decimal.Decimal `json:"energy_kwh"`
	Charges   []SlabCharge    `json:"charges"`
	Total     decimal.Decimal `json:"total"`
	Currency  string          `json:"currency"`
}
