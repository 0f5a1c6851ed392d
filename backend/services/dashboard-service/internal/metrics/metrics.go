// Package metrics derives dashboard figures from a timestamp-ordered reading sequence.
// Every function is total: empty input yields zero values, never a panic or NaN.
package metrics

import (
	"time"

	"energyprofile/backend/services/dashboard-service/internal/models"
)

const (
	excellentThreshold = 0.95
	goodThreshold      = 0.90
)

// Latest returns the most recent reading.
func Latest(seq []models.EnergyReading) (models.EnergyReading, bool) {
	if len(seq) == 0 {
		return models.EnergyReading{}, false
	}
	return seq[len(seq)-1], true
}

// TotalEnergy is the cumulative energy of the last reading.
func TotalEnergy(seq []models.EnergyReading) float64 {
	last, ok := Latest(seq)
	if !ok {
		return 0
	}
	return last.EnergyKWh
}

// CumulativeCost is the cumulative cost of the last reading.
func CumulativeCost(seq []models.EnergyReading) float64 {
	last, ok := Latest(seq)
	if !ok {
		return 0
	}
	return last.CostCumulative
}

// PeakPower is the largest active power in seq.
func PeakPower(seq []models.EnergyReading) float64 {
	if len(seq) == 0 {
		return 0
	}
	peak := seq[0].ActivePowerKW
	for _, r := range seq[1:] {
		if r.ActivePowerKW > peak {
			peak = r.ActivePowerKW
		}
	}
	return peak
}

// AveragePowerFactor is the arithmetic mean power factor, 0 for an empty sequence.
func AveragePowerFactor(seq []models.EnergyReading) float64 {
	if len(seq) == 0 {
		return 0
	}
	var sum float64
	for _, r := range seq {
		sum += r.PowerFactor
	}
	return sum / float64(len(seq))
}

// AverageCostPerUnit is cost per kWh, 0 while no energy has been recorded.
func AverageCostPerUnit(seq []models.EnergyReading) float64 {
	energy := TotalEnergy(seq)
	if energy <= 0 {
		return 0
	}
	return CumulativeCost(seq) / energy
}

// ClassifyPowerFactor buckets an average power factor.
// It never returns models.PowerFactorBad: meter rows may carry that class but no
// threshold for it is known.
func ClassifyPowerFactor(avg float64) models.PowerFactorClass {
	switch {
	case avg > excellentThreshold:
		return models.PowerFactorExcellent
	case avg > goodThreshold:
		return models.PowerFactorGood
	default:
		return models.PowerFactorPoor
	}
}

// Breakdown splits power into its components for proportional display.
type Breakdown struct {
	ActiveKW     float64 `json:"active_kw"`
	ReactiveKVAr float64 `json:"reactive_kvar"`
	ApparentKVA  float64 `json:"apparent_kva"`
}

// PowerBreakdown returns the power triple of a single reading.
func PowerBreakdown(latest models.EnergyReading) Breakdown {
	return Breakdown{
		ActiveKW:     latest.ActivePowerKW,
		ReactiveKVAr: latest.ReactivePowerKVAr,
		ApparentKVA:  latest.ApparentPowerKVA,
	}
}

// LatestDutyCycle is the rolling 24h duty cycle of the last reading.
func LatestDutyCycle(seq []models.EnergyReading) float64 {
	last, ok := Latest(seq)
	if !ok {
		return 0
	}
	return last.DutyCyclePct24H
}

// CompressorOnRatio is the share of samples taken while the compressor ran.
func CompressorOnRatio(seq []models.EnergyReading) float64 {
	if len(seq) == 0 {
		return 0
	}
	var on int
	for _, r := range seq {
		if r.CompressorOn {
			on++
		}
	}
	return float64(on) / float64(len(seq))
}

// PowerFactorDistribution counts rows per meter-reported class. Every class is present.
func PowerFactorDistribution(seq []models.EnergyReading) map[models.PowerFactorClass]int {
	dist := make(map[models.PowerFactorClass]int, len(models.PowerFactorClasses))
	for _, class := range models.PowerFactorClasses {
		dist[class] = 0
	}
	for _, r := range seq {
		dist[r.PFClass]++
	}
	return dist
}

// Cycle summarises the readings sharing one cycle identifier.
type Cycle struct {
	ID           int64     `json:"id"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	CompressorOn bool      `json:"compressor_on"`
	Samples      int       `json:"samples"`
	EnergyKWh    float64   `json:"energy_kwh"`
	PeakPowerKW  float64   `json:"peak_power_kw"`
}

// CompressorCycles groups readings by cycle identifier in order of first appearance.
// EnergyKWh is the cumulative energy gained across the cycle's samples; the compressor
// state is the one of the cycle's first sample.
func CompressorCycles(seq []models.EnergyReading) []Cycle {
	cycles := make([]Cycle, 0)
	index := make(map[int64]int)
	first := make(map[int64]float64)

	for _, r := range seq {
		pos, ok := index[r.CycleID]
		if !ok {
			index[r.CycleID] = len(cycles)
			first[r.CycleID] = r.EnergyKWh
			cycles = append(cycles, Cycle{
				ID:           r.CycleID,
				Start:        r.Time,
				End:          r.Time,
				CompressorOn: r.CompressorOn,
				Samples:      1,
				PeakPowerKW:  r.ActivePowerKW,
			})
			continue
		}

		c := &cycles[pos]
		c.Samples++
		if r.Time.After(c.End) {
			c.End = r.Time
		}
		if r.ActivePowerKW > c.PeakPowerKW {
			c.PeakPowerKW = r.ActivePowerKW
		}
		if delta := r.EnergyKWh - first[r.CycleID]; delta > c.EnergyKWh {
			c.EnergyKWh = delta
		}
	}
	return cycles
}
