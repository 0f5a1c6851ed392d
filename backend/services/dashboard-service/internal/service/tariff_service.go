package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"energyprofile/backend/services/dashboard-service/internal/models"
)

// DefaultCurrency labels amounts when none is configured.
const DefaultCurrency = "BDT"

// DefaultTariff is the 2024 residential slab table.
func DefaultTariff() []models.TariffSlab {
	return []models.TariffSlab{
		{UpToKWh: 75, RatePerKWh: 5.26},
		{UpToKWh: 200, RatePerKWh: 7.20},
		{UpToKWh: 300, RatePerKWh: 7.59},
		{UpToKWh: 400, RatePerKWh: 8.02},
		{UpToKWh: 600, RatePerKWh: 12.67},
		{UpToKWh: 0, RatePerKWh: 14.61},
	}
}

// TariffService prices energy against a progressive slab table.
type TariffService struct {
	slabs    []models.TariffSlab
	currency string
}

// NewTariffService validates slabs. An empty table falls back to DefaultTariff.
func NewTariffService(slabs []models.TariffSlab, currency string) (*TariffService, error) {
	if len(slabs) == 0 {
		slabs = DefaultTariff()
	}
	if strings.TrimSpace(currency) == "" {
		currency = DefaultCurrency
	}

	var prev float64
	for i, slab := range slabs {
		if slab.RatePerKWh <= 0 {
			return nil, fmt.Errorf("tariff: slab %d has non-positive rate", i+1)
		}
		last := i == len(slabs)-1
		if slab.UpToKWh == 0 {
			if !last {
				return nil, fmt.Errorf("tariff: open-ended slab %d must be last", i+1)
			}
			continue
		}
		if slab.UpToKWh <= prev {
			return nil, fmt.Errorf("tariff: slab %d bound %v not above %v", i+1, slab.UpToKWh, prev)
		}
		prev = slab.UpToKWh
	}
	if slabs[len(slabs)-1].UpToKWh != 0 {
		return nil, errors.New("tariff: last slab must be open-ended")
	}

	return &TariffService{
		slabs:    append([]models.TariffSlab(nil), slabs...),
		currency: currency,
	}, nil
}

// Slabs returns a copy of the table.
func (s *TariffService) Slabs() []models.TariffSlab {
	return append([]models.TariffSlab(nil), s.slabs...)
}

// Currency returns the label used for amounts.
func (s *TariffService) Currency() string {
	return s.currency
}

// EstimateBill charges each slab's share of energyKWh at that slab's rate.
func (s *TariffService) EstimateBill(energyKWh float64) models.BillEstimate {
	if energyKWh < 0 {
		energyKWh = 0
	}
	remaining := decimal.NewFromFloat(energyKWh)
	estimate := models.BillEstimate{
		EnergyKWh: remaining,
		Charges:   make([]models.SlabCharge, 0, len(s.slabs)),
		Total:     decimal.Zero,
		Currency:  s.currency,
	}

	lower := decimal.Zero
	for _, slab := range s.slabs {
		if !remaining.IsPositive() {
			break
		}
		portion := remaining
		if slab.UpToKWh > 0 {
			width := decimal.NewFromFloat(slab.UpToKWh).Sub(lower)
			portion = decimal.Min(remaining, width)
		}
		rate := decimal.NewFromFloat(slab.RatePerKWh)
		amount := portion.Mul(rate).Round(2)

		estimate.Charges = append(estimate.Charges, models.SlabCharge{
			Slab:      slabLabel(lower, slab),
			EnergyKWh: portion,
			Rate:      rate,
			Amount:    amount,
		})
		estimate.Total = estimate.Total.Add(amount)
		remaining = remaining.Sub(portion)
		lower = decimal.NewFromFloat(slab.UpToKWh)
	}
	return estimate
}

func slabLabel(lower decimal.Decimal, slab models.TariffSlab) string {
	if slab.UpToKWh == 0 {
		return fmt.Sprintf("%s+ kWh", lower.String())
	}
	return fmt.Sprintf("%s-%s kWh", lower.String(), decimal.NewFromFloat(slab.UpToKWh).String())
}
