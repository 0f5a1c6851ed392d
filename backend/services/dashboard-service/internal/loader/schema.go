package loader

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"energyprofile/backend/services/dashboard-service/internal/models"
)

// Column names as exported by the smart meter.
const (
	ColumnTime          = "Time"
	ColumnVoltage       = "Voltage_V"
	ColumnFrequency     = "Frequency_Hz"
	ColumnCurrent       = "Current_A"
	ColumnActivePower   = "ActivePower_kW"
	ColumnPowerFactor   = "PowerFactor"
	ColumnApparentPower = "ApparentPower_kVA"
	ColumnReactivePower = "ReactivePower_kVAr"
	ColumnEnergy        = "Energy_kWh"
	ColumnCost          = "Cost_cum_BDT"
	ColumnPFClass       = "PF_Class"
	ColumnCompressorOn  = "Compressor_ON"
	ColumnDutyCycle     = "DutyCycle_%_24H"
	ColumnCycleID       = "Cycle_ID"
)

type fieldParser func(r *models.EnergyReading, raw string, loc *time.Location) error

type column struct {
	name  string
	parse fieldParser
}

// schema maps every required column to the parser filling its field.
var schema = []column{
	{ColumnTime, func(r *models.EnergyReading, raw string, loc *time.Location) (err error) {
		r.Time, err = ParseTimestamp(raw, loc)
		return err
	}},
	{ColumnVoltage, floatField(func(r *models.EnergyReading, v float64) { r.VoltageV = v })},
	{ColumnFrequency, floatField(func(r *models.EnergyReading, v float64) { r.FrequencyHz = v })},
	{ColumnCurrent, floatField(func(r *models.EnergyReading, v float64) { r.CurrentA = v })},
	{ColumnActivePower, floatField(func(r *models.EnergyReading, v float64) { r.ActivePowerKW = v })},
	{ColumnPowerFactor, floatField(func(r *models.EnergyReading, v float64) { r.PowerFactor = v })},
	{ColumnApparentPower, floatField(func(r *models.EnergyReading, v float64) { r.ApparentPowerKVA = v })},
	{ColumnReactivePower, floatField(func(r *models.EnergyReading, v float64) { r.ReactivePowerKVAr = v })},
	{ColumnEnergy, floatField(func(r *models.EnergyReading, v float64) { r.EnergyKWh = v })},
	{ColumnCost, floatField(func(r *models.EnergyReading, v float64) { r.CostCumulative = v })},
	{ColumnPFClass, func(r *models.EnergyReading, raw string, _ *time.Location) (err error) {
		r.PFClass, err = models.ParsePowerFactorClass(raw)
		return err
	}},
	{ColumnCompressorOn, func(r *models.EnergyReading, raw string, _ *time.Location) (err error) {
		r.CompressorOn, err = parseFlag(raw)
		return err
	}},
	{ColumnDutyCycle, floatField(func(r *models.EnergyReading, v float64) { r.DutyCyclePct24H = v })},
	{ColumnCycleID, func(r *models.EnergyReading, raw string, _ *time.Location) error {
		id, err := parseInteger(raw)
		if err != nil {
			return err
		}
		r.CycleID = id
		return nil
	}},
}

// Columns returns the required header names in canonical order.
func Columns() []string {
	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.name
	}
	return names
}

func floatField(set func(*models.EnergyReading, float64)) fieldParser {
	return func(r *models.EnergyReading, raw string, _ *time.Location) error {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return err
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("not a finite number: %q", raw)
		}
		set(r, v)
		return nil
	}
}

func parseFlag(raw string) (bool, error) {
	switch strings.ToLower(raw) {
	case "1", "1.0", "true":
		return true, nil
	case "0", "0.0", "false":
		return false, nil
	}
	return false, fmt.Errorf("flag must be 0 or 1, got %q", raw)
}

// parseInteger accepts "12" and integral floats such as "12.0".
func parseInteger(raw string) (int64, error) {
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("not an integer: %q", raw)
	}
	return int64(f), nil
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp tries the supported layouts in order. Zone-less values are read in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, value, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}
