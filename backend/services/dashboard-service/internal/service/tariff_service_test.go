package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energyprofile/backend/services/dashboard-service/internal/models"
)

func mustTariff(t *testing.T, slabs []models.TariffSlab) *TariffService {
	t.Helper()
	svc, err := NewTariffService(slabs, "")
	require.NoError(t, err)
	return svc
}

func TestEstimateBillWithinFirstSlab(t *testing.T) {
	svc := mustTariff(t, nil)

	bill := svc.EstimateBill(10)
	require.Len(t, bill.Charges, 1)
	assert.Equal(t, "BDT", bill.Currency)
	assert.True(t, decimal.RequireFromString("52.6").Equal(bill.Total), bill.Total.String())
	assert.Equal(t, "0-75 kWh", bill.Charges[0].Slab)
}

func TestEstimateBillSpansSlabs(t *testing.T) {
	svc := mustTariff(t, nil)

	// 75*5.26 + 125*7.20 + 50*7.59 = 394.5 + 900 + 379.5
	bill := svc.EstimateBill(250)
	require.Len(t, bill.Charges, 3)
	assert.True(t, decimal.RequireFromString("1674").Equal(bill.Total), bill.Total.String())
	assert.True(t, decimal.NewFromInt(125).Equal(bill.Charges[1].EnergyKWh))
	assert.Equal(t, "200-300 kWh", bill.Charges[2].Slab)
}

func TestEstimateBillOpenEndedSlab(t *testing.T) {
	svc := mustTariff(t, []models.TariffSlab{
		{UpToKWh: 100, RatePerKWh: 1},
		{RatePerKWh: 2},
	})

	bill := svc.EstimateBill(150)
	require.Len(t, bill.Charges, 2)
	assert.True(t, decimal.NewFromInt(200).Equal(bill.Total))
	assert.Equal(t, "100+ kWh", bill.Charges[1].Slab)
}

func TestEstimateBillZeroAndNegative(t *testing.T) {
	svc := mustTariff(t, nil)

	for _, kwh := range []float64{0, -3} {
		bill := svc.EstimateBill(kwh)
		assert.Empty(t, bill.Charges)
		assert.True(t, bill.Total.IsZero())
	}
}

func TestNewTariffServiceRejectsInvalidTables(t *testing.T) {
	tables := map[string][]models.TariffSlab{
		"non ascending":    {{UpToKWh: 100, RatePerKWh: 1}, {UpToKWh: 50, RatePerKWh: 2}, {RatePerKWh: 3}},
		"zero rate":        {{UpToKWh: 100, RatePerKWh: 0}, {RatePerKWh: 3}},
		"open slab middle": {{UpToKWh: 100, RatePerKWh: 1}, {RatePerKWh: 2}, {UpToKWh: 300, RatePerKWh: 3}},
		"closed last slab": {{UpToKWh: 100, RatePerKWh: 1}},
	}
	for name, slabs := range tables {
		_, err := NewTariffService(slabs, "BDT")
		assert.Error(t, err, name)
	}
}

func TestSlabsReturnsCopy(t *testing.T) {
	svc := mustTariff(t, nil)
	slabs := svc.Slabs()
	slabs[0].RatePerKWh = 100
	assert.Equal(t, 5.26, svc.Slabs()[0].RatePerKWh)
}
