package service

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"energyprofile/backend/services/dashboard-service/internal/dataset"
	"energyprofile/backend/services/dashboard-service/internal/metrics"
	"energyprofile/backend/services/dashboard-service/internal/models"
)

// ErrDatasetLoading means the initial load has not finished yet.
var ErrDatasetLoading = errors.New("dashboard: dataset is loading")

// DatasetUnavailableError means the initial load failed and no data will be served.
type DatasetUnavailableError struct {
	Source string
	Err    error
}

func (e *DatasetUnavailableError) Error() string {
	return fmt.Sprintf("dashboard: could not load %s: %v", e.Source, e.Err)
}

func (e *DatasetUnavailableError) Unwrap() error {
	return e.Err
}

// SnapshotSource exposes the current dataset view.
type SnapshotSource interface {
	Snapshot() dataset.Snapshot
}

// Status describes the dataset lifecycle for clients.
type Status struct {
	Status   dataset.State `json:"status"`
	Source   string        `json:"source"`
	Readings int           `json:"readings"`
	LoadedAt *time.Time    `json:"loaded_at,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// Header carries the live figures of the latest reading.
type Header struct {
	Time     *time.Time `json:"time,omitempty"`
	PowerW   float64    `json:"power_w"`
	VoltageV float64    `json:"voltage_v"`
	CurrentA float64    `json:"current_a"`
}

// DashboardView backs the main metric cards.
type DashboardView struct {
	TotalEnergyKWh     float64                 `json:"total_energy_kwh"`
	CumulativeCost     float64                 `json:"cumulative_cost"`
	PeakPowerKW        float64                 `json:"peak_power_kw"`
	AveragePowerFactor float64                 `json:"average_power_factor"`
	PowerFactorClass   models.PowerFactorClass `json:"power_factor_class"`
	Currency           string                  `json:"currency"`
}

// AnalyticsView backs the compressor and power-quality charts.
type AnalyticsView struct {
	DutyCyclePct       float64                         `json:"duty_cycle_pct"`
	CompressorOnRatio  float64                         `json:"compressor_on_ratio"`
	PowerBreakdown     *metrics.Breakdown              `json:"power_breakdown,omitempty"`
	PowerFactorClasses map[models.PowerFactorClass]int `json:"power_factor_classes"`
	Cycles             []metrics.Cycle                 `json:"cycles"`
}

// CostView backs the cost page.
type CostView struct {
	TotalCost      float64             `json:"total_cost"`
	TotalEnergyKWh float64             `json:"total_energy_kwh"`
	CostPerKWh     float64             `json:"cost_per_kwh"`
	Currency       string              `json:"currency"`
	Tariff         []models.TariffSlab `json:"tariff"`
	TariffEstimate models.BillEstimate `json:"tariff_estimate"`
}

// DashboardService turns the frozen dataset into view models.
type DashboardService struct {
	source SnapshotSource
	tariff *TariffService
	logger *zap.Logger
}

// NewDashboardService returns service instance.
func NewDashboardService(source SnapshotSource, tariff *TariffService, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		source: source,
		tariff: tariff,
		logger: logger,
	}
}

// Status reports the dataset lifecycle. It never fails.
func (s *DashboardService) Status() Status {
	return StatusOf(s.source.Snapshot())
}

// StatusOf converts a snapshot into its client-facing status.
func StatusOf(snap dataset.Snapshot) Status {
	status := Status{
		Status:   snap.State,
		Source:   snap.Source,
		Readings: len(snap.Readings),
	}
	if !snap.LoadedAt.IsZero() {
		loadedAt := snap.LoadedAt
		status.LoadedAt = &loadedAt
	}
	if snap.Err != nil {
		status.Error = snap.Err.Error()
	}
	return status
}

// Header returns the latest live figures.
func (s *DashboardService) Header() (Header, error) {
	seq, err := s.readings()
	if err != nil {
		return Header{}, err
	}
	latest, ok := metrics.Latest(seq)
	if !ok {
		return Header{}, nil
	}
	ts := latest.Time
	return Header{
		Time:     &ts,
		PowerW:   latest.ActivePowerKW * 1000,
		VoltageV: latest.VoltageV,
		CurrentA: latest.CurrentA,
	}, nil
}

// Dashboard returns the headline metric cards.
func (s *DashboardService) Dashboard() (DashboardView, error) {
	seq, err := s.readings()
	if err != nil {
		return DashboardView{}, err
	}
	avg := metrics.AveragePowerFactor(seq)
	return DashboardView{
		TotalEnergyKWh:     metrics.TotalEnergy(seq),
		CumulativeCost:     metrics.CumulativeCost(seq),
		PeakPowerKW:        metrics.PeakPower(seq),
		AveragePowerFactor: avg,
		PowerFactorClass:   metrics.ClassifyPowerFactor(avg),
		Currency:           s.tariff.Currency(),
	}, nil
}

// Analytics returns duty-cycle and power-quality figures.
func (s *DashboardService) Analytics() (AnalyticsView, error) {
	seq, err := s.readings()
	if err != nil {
		return AnalyticsView{}, err
	}
	view := AnalyticsView{
		DutyCyclePct:       metrics.LatestDutyCycle(seq),
		CompressorOnRatio:  metrics.CompressorOnRatio(seq),
		PowerFactorClasses: metrics.PowerFactorDistribution(seq),
		Cycles:             metrics.CompressorCycles(seq),
	}
	if latest, ok := metrics.Latest(seq); ok {
		breakdown := metrics.PowerBreakdown(latest)
		view.PowerBreakdown = &breakdown
	}
	return view, nil
}

// Cost returns spend figures and the slab tariff estimate for the energy used.
func (s *DashboardService) Cost() (CostView, error) {
	seq, err := s.readings()
	if err != nil {
		return CostView{}, err
	}
	energy := metrics.TotalEnergy(seq)
	return CostView{
		TotalCost:      metrics.CumulativeCost(seq),
		TotalEnergyKWh: energy,
		CostPerKWh:     metrics.AverageCostPerUnit(seq),
		Currency:       s.tariff.Currency(),
		Tariff:         s.tariff.Slabs(),
		TariffEstimate: s.tariff.EstimateBill(energy),
	}, nil
}

// Readings returns the sequence, or its last limit entries when limit > 0.
// The returned slice is shared and must not be modified.
func (s *DashboardService) Readings(limit int) ([]models.EnergyReading, error) {
	seq, err := s.readings()
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(seq) {
		return seq[len(seq)-limit:], nil
	}
	return seq, nil
}

func (s *DashboardService) readings() ([]models.EnergyReading, error) {
	snap := s.source.Snapshot()
	switch snap.State {
	case dataset.StateReady:
		return snap.Readings, nil
	case dataset.StateFailed:
		return nil, &DatasetUnavailableError{Source: snap.Source, Err: snap.Err}
	default:
		return nil, ErrDatasetLoading
	}
}
