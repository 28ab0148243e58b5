package services_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/epeers/dashboard/internal/models"
	"github.com/epeers/dashboard/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

// series builds a daily series starting at day0
func series(prices ...float64) models.PriceSeries {
	s := make(models.PriceSeries, 0, len(prices))
	for i, p := range prices {
		s = append(s, models.Observation{Date: day0.AddDate(0, 0, i), Close: p})
	}
	return s
}

func table(cols map[string]models.PriceSeries) models.PriceTable {
	t := models.NewPriceTable()
	for k, v := range cols {
		t.Series[k] = v
	}
	return t
}

func TestComputeAssetReturn(t *testing.T) {
	testCases := []struct {
		name     string
		series   models.PriceSeries
		expected float64
		ok       bool
	}{
		{name: "gain", series: series(100, 120, 150), expected: 0.5, ok: true},
		{name: "loss", series: series(200, 190, 180), expected: -0.1, ok: true},
		{name: "flat with many points", series: series(42, 50, 10, 42), expected: 0, ok: true},
		{name: "single observation", series: series(87.3), expected: 0, ok: true},
		{name: "empty", series: series(), ok: false},
		{name: "only absent values", series: series(math.NaN(), 0), ok: false},
		{name: "leading gap skipped", series: series(math.NaN(), 100, 110), expected: 0.1, ok: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, ok := services.ComputeAssetReturn(tc.series)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.expected, r, 1e-12)
			}
		})
	}
}

func TestComputeAssetReturn_FlatIsExactlyZero(t *testing.T) {
	for _, p := range []float64{0.01, 1, 33.33, 1e6} {
		r, ok := services.ComputeAssetReturn(series(p, p*2, p))
		require.True(t, ok)
		assert.Equal(t, 0.0, r)

		r, ok = services.ComputeAssetReturn(series(p))
		require.True(t, ok)
		assert.Equal(t, 0.0, r)
	}
}

func TestEqualWeighted_Scenario(t *testing.T) {
	tbl := table(map[string]models.PriceSeries{
		"A": series(100, 150),
		"B": series(200, 180),
	})

	result, err := services.ComputeEqualWeightedPortfolio(tbl, models.AssetSelection{"A", "B"}, 1000)
	require.NoError(t, err)
	require.Len(t, result.Assets, 2)

	a, _ := result.Asset("A")
	b, _ := result.Asset("B")
	assert.InDelta(t, 1500, a.FinalValue, 1e-9)
	assert.InDelta(t, 0.5, a.ReturnFraction, 1e-12)
	assert.InDelta(t, 900, b.FinalValue, 1e-9)
	assert.InDelta(t, -0.1, b.ReturnFraction, 1e-12)

	require.NotNil(t, result.Aggregate)
	assert.InDelta(t, 2000, result.Aggregate.InitialCapital, 1e-9)
	assert.InDelta(t, 2400, result.Aggregate.FinalCapital, 1e-9)
	assert.InDelta(t, 400, result.Aggregate.ProfitLoss, 1e-9)
	assert.InDelta(t, 0.2, result.Aggregate.ReturnFraction, 1e-12)
}

func TestEqualWeighted_IdenticalAssetsMatchSingleReturn(t *testing.T) {
	for n := 1; n <= 6; n++ {
		cols := make(map[string]models.PriceSeries)
		var assets models.AssetSelection
		for i := 0; i < n; i++ {
			sym := string(rune('A' + i))
			cols[sym] = series(80, 90, 92)
			assets = append(assets, sym)
		}
		result, err := services.ComputeEqualWeightedPortfolio(table(cols), assets, 1000)
		require.NoError(t, err)
		require.NotNil(t, result.Aggregate)
		assert.InDelta(t, 92.0/80.0-1, result.Aggregate.ReturnFraction, 1e-12, "n=%d", n)
	}
}

func TestEqualWeighted_ExcludesAssetsWithoutData(t *testing.T) {
	tbl := table(map[string]models.PriceSeries{
		"A":   series(100, 150),
		"NEW": series(),
	})

	result, err := services.ComputeEqualWeightedPortfolio(tbl, models.AssetSelection{"A", "NEW"}, 1000)
	require.NoError(t, err)

	_, found := result.Asset("NEW")
	assert.False(t, found)
	assert.Equal(t, []string{"NEW"}, result.Excluded)
	assert.InDelta(t, 1000, result.Aggregate.InitialCapital, 1e-9)
	assert.InDelta(t, 0.5, result.Aggregate.ReturnFraction, 1e-12)
}

func TestEqualWeighted_NoValidAssetMeansNoAggregate(t *testing.T) {
	tbl := table(map[string]models.PriceSeries{"A": series(), "B": series()})

	result, err := services.ComputeEqualWeightedPortfolio(tbl, models.AssetSelection{"A", "B"}, 1000)
	require.NoError(t, err)
	assert.Empty(t, result.Assets)
	assert.Nil(t, result.Aggregate)
	assert.ElementsMatch(t, []string{"A", "B"}, result.Excluded)
}

func TestAverageReturn_DiffersFromCapitalWeighted(t *testing.T) {
	tbl := table(map[string]models.PriceSeries{
		"A": series(100, 150),
		"B": series(200, 180),
		"C": series(),
	})
	assets := models.AssetSelection{"A", "B", "C"}

	avg, err := services.ComputeAverageReturnPortfolio(tbl, assets, 1000)
	require.NoError(t, err)
	assert.Equal(t, models.StrategyAverage, avg.Strategy)
	assert.InDelta(t, (0.5-0.1)/2, avg.Aggregate.ReturnFraction, 1e-12)
	assert.InDelta(t, 2000, avg.Aggregate.InitialCapital, 1e-9)
	assert.Equal(t, []string{"C"}, avg.Excluded)

	tbl = table(map[string]models.PriceSeries{
		"A": series(100, 150),
		"B": series(100, 110),
		"C": series(100, 70),
	})
	avg, err = services.ComputeAverageReturnPortfolio(tbl, assets, 1000)
	require.NoError(t, err)
	eq, err := services.ComputeEqualWeightedPortfolio(tbl, assets, 1000)
	require.NoError(t, err)
	// equal stakes and no gaps: both strategies agree
	assert.InDelta(t, eq.Aggregate.ReturnFraction, avg.Aggregate.ReturnFraction, 1e-12)
}

func TestUserWeighted_Scenario(t *testing.T) {
	tbl := table(map[string]models.PriceSeries{
		"A": series(100, 110),
		"B": series(50, 40),
	})

	result, err := services.ComputeUserWeightedPortfolio(tbl, models.AssetSelection{"A", "B"},
		models.WeightAssignment{"A": 70, "B": 30}, 1000, models.MissingDataRetain)
	require.NoError(t, err)

	a, _ := result.Asset("A")
	b, _ := result.Asset("B")
	assert.InDelta(t, 700, a.AllocatedCapital, 1e-9)
	assert.InDelta(t, 770, a.FinalValue, 1e-9)
	assert.InDelta(t, 300, b.AllocatedCapital, 1e-9)
	assert.InDelta(t, 240, b.FinalValue, 1e-9)

	require.NotNil(t, result.Aggregate)
	assert.InDelta(t, 1000, result.Aggregate.InitialCapital, 1e-9)
	assert.InDelta(t, 1010, result.Aggregate.FinalCapital, 1e-9)
	assert.InDelta(t, 10, result.Aggregate.ProfitLoss, 1e-9)
	assert.InDelta(t, 0.01, result.Aggregate.ReturnFraction, 1e-12)
}

func TestUserWeighted_SingleAssetAtFullWeight(t *testing.T) {
	s := series(37.5, 41.2, 39.9)
	tbl := table(map[string]models.PriceSeries{"X": s})

	expected, ok := services.ComputeAssetReturn(s)
	require.True(t, ok)

	result, err := services.ComputeUserWeightedPortfolio(tbl, models.AssetSelection{"X"},
		models.WeightAssignment{"X": 100}, 5000, models.MissingDataRetain)
	require.NoError(t, err)
	assert.InDelta(t, expected, result.Aggregate.ReturnFraction, 1e-12)
}

func TestUserWeighted_RejectsBadSums(t *testing.T) {
	tbl := table(map[string]models.PriceSeries{
		"A": series(100, 110),
		"B": series(50, 40),
	})
	assets := models.AssetSelection{"A", "B"}

	testCases := []struct {
		name    string
		weights models.WeightAssignment
		wantErr bool
	}{
		{name: "exact", weights: models.WeightAssignment{"A": 60, "B": 40}},
		{name: "within tolerance above", weights: models.WeightAssignment{"A": 60.05, "B": 40}},
		{name: "within tolerance below", weights: models.WeightAssignment{"A": 59.9, "B": 40}},
		{name: "too high", weights: models.WeightAssignment{"A": 60.2, "B": 40}, wantErr: true},
		{name: "too low", weights: models.WeightAssignment{"A": 50, "B": 40}, wantErr: true},
		{name: "missing weight counts as zero", weights: models.WeightAssignment{"A": 60}, wantErr: true},
		{name: "all on one asset", weights: models.WeightAssignment{"A": 100}},
		{name: "empty", weights: models.WeightAssignment{}, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := services.ComputeUserWeightedPortfolio(tbl, assets, tc.weights, 1000, models.MissingDataRetain)
			if tc.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, services.ErrWeightsSum))
				assert.True(t, errors.Is(err, models.ErrValidation))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUserWeighted_WeightOutOfRange(t *testing.T) {
	tbl := table(map[string]models.PriceSeries{
		"A": series(100, 110),
		"B": series(50, 40),
	})

	_, err := services.ComputeUserWeightedPortfolio(tbl, models.AssetSelection{"A", "B"},
		models.WeightAssignment{"A": 120, "B": -20}, 1000, models.MissingDataRetain)
	assert.ErrorIs(t, err, services.ErrWeightOutOfRange)

	_, err = services.ComputeUserWeightedPortfolio(tbl, models.AssetSelection{"A"},
		models.WeightAssignment{"A": 50, "B": 50}, 1000, models.MissingDataRetain)
	assert.ErrorIs(t, err, models.ErrUnknownAsset)
}

func TestUserWeighted_MissingDataPolicy(t *testing.T) {
	tbl := table(map[string]models.PriceSeries{
		"A":   series(100, 110),
		"NEW": series(),
	})
	assets := models.AssetSelection{"A", "NEW"}
	weights := models.WeightAssignment{"A": 50, "NEW": 50}

	retained, err := services.ComputeUserWeightedPortfolio(tbl, assets, weights, 1000, models.MissingDataRetain)
	require.NoError(t, err)
	assert.Equal(t, []string{"NEW"}, retained.Excluded)
	assert.Len(t, retained.Assets, 1)
	assert.InDelta(t, 550+500, retained.Aggregate.FinalCapital, 1e-9)
	assert.InDelta(t, 0.05, retained.Aggregate.ReturnFraction, 1e-12)

	lost, err := services.ComputeUserWeightedPortfolio(tbl, assets, weights, 1000, models.MissingDataLoss)
	require.NoError(t, err)
	assert.InDelta(t, 550, lost.Aggregate.FinalCapital, 1e-9)
	assert.InDelta(t, -0.45, lost.Aggregate.ReturnFraction, 1e-12)
}

func TestValidationFailures(t *testing.T) {
	tbl := table(map[string]models.PriceSeries{"A": series(100, 110)})

	_, err := services.ComputeEqualWeightedPortfolio(tbl, nil, 1000)
	assert.ErrorIs(t, err, services.ErrEmptySelection)

	_, err = services.ComputeEqualWeightedPortfolio(tbl, models.AssetSelection{" ", ""}, 1000)
	assert.ErrorIs(t, err, services.ErrEmptySelection)

	_, err = services.ComputeEqualWeightedPortfolio(tbl, models.AssetSelection{"ZZZZ"}, 1000)
	assert.ErrorIs(t, err, models.ErrUnknownAsset)

	for _, capital := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		_, err = services.ComputeUserWeightedPortfolio(tbl, models.AssetSelection{"A"},
			models.WeightAssignment{"A": 100}, capital, models.MissingDataRetain)
		assert.ErrorIs(t, err, services.ErrInvalidCapital)
		assert.ErrorIs(t, err, models.ErrValidation)
	}

	_, err = services.ComputeEqualWeightedPortfolio(tbl, models.AssetSelection{"A"}, 0)
	assert.ErrorIs(t, err, services.ErrInvalidCapital)
}

func TestCompute_DateSubRange(t *testing.T) {
	full := series(100, 120, 130, 90, 200)
	tbl := table(map[string]models.PriceSeries{"A": full})

	middle := models.NewDateRange(day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 3))
	sliced := tbl.Slice(middle)
	require.Len(t, sliced.Series["A"], 3)

	result, err := services.Compute(services.CalculationInput{
		Table:         sliced,
		Assets:        models.AssetSelection{"A"},
		Strategy:      models.StrategyEqual,
		StakePerAsset: 1000,
	})
	require.NoError(t, err)
	assert.InDelta(t, 90.0/120.0-1, result.Assets[0].ReturnFraction, 1e-12)

	// the source table is untouched
	assert.Len(t, tbl.Series["A"], 5)
}

func TestCompute_UnknownStrategy(t *testing.T) {
	_, err := services.Compute(services.CalculationInput{Strategy: "momentum"})
	assert.ErrorIs(t, err, models.ErrValidation)
}
