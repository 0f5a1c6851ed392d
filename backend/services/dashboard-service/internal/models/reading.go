package models

import (
	"fmt"
	"strings"
	"time"
)

// PowerFactorClass is the quality bucket a power factor falls into.
type PowerFactorClass string

const (
	PowerFactorExcellent PowerFactorClass = "Excellent"
	PowerFactorGood      PowerFactorClass = "Good"
	PowerFactorPoor      PowerFactorClass = "Poor"
	// PowerFactorBad appears in meter exports but is never derived from an average.
	PowerFactorBad PowerFactorClass = "Bad"
)

// PowerFactorClasses lists every class in display order.
var PowerFactorClasses = []PowerFactorClass{
	PowerFactorExcellent,
	PowerFactorGood,
	PowerFactorPoor,
	PowerFactorBad,
}

// ParsePowerFactorClass matches a class name case-insensitively.
func ParsePowerFactorClass(raw string) (PowerFactorClass, error) {
	value := strings.TrimSpace(raw)
	for _, class := range PowerFactorClasses {
		if strings.EqualFold(value, string(class)) {
			return class, nil
		}
	}
	return "", fmt.Errorf("unknown power factor class %q", raw)
}

// EnergyReading is one timestamped smart-meter sample.
type EnergyReading struct {
	Time              time.Time        `db:"recorded_at" json:"time"`
	VoltageV          float64          `db:"voltage_v" json:"voltage_v"`
	FrequencyHz       float64          `db:"frequency_hz" json:"frequency_hz"`
	CurrentA          float64          `db:"current_a" json:"current_a"`
	ActivePowerKW     float64          `db:"active_power_kw" json:"active_power_kw"`
	PowerFactor       float64          `db:"power_factor" json:"power_factor"`
	ApparentPowerKVA  float64          `db:"apparent_power_kva" json:"apparent_power_kva"`
	ReactivePowerKVAr float64          `db:"reactive_power_kvar" json:"reactive_power_kvar"`
	EnergyKWh         float64          `db:"energy_kwh" json:"energy_kwh"`
	CostCumulative    float64          `db:"cost_cumulative" json:"cost_cumulative"`
	PFClass           PowerFactorClass `db:"pf_class" json:"pf_class"`
	CompressorOn      bool             `db:"compressor_on" json:"compressor_on"`
	DutyCyclePct24H   float64          `db:"duty_cycle_pct_24h" json:"duty_cycle_pct_24h"`
	CycleID           int64            `db:"cycle_id" json:"cycle_id"`
}
