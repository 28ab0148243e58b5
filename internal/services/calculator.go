package services

import (
	"fmt"
	"math"

	"github.com/epeers/dashboard/internal/models"
)

// WeightTolerance is how far, in percentage points, user weights may drift
// from 100 before a weighted computation is refused.
const WeightTolerance = 0.1

var (
	ErrEmptySelection   = fmt.Errorf("%w: no asset selected", models.ErrValidation)
	ErrInvalidCapital   = fmt.Errorf("%w: invalid capital", models.ErrValidation)
	ErrWeightsSum       = fmt.Errorf("%w: weights must sum to 100", models.ErrValidation)
	ErrWeightOutOfRange = fmt.Errorf("%w: weight out of range", models.ErrValidation)
)

// CalculationInput gathers everything a portfolio computation depends on.
// Table must already be restricted to the selected date range.
type CalculationInput struct {
	Table         models.PriceTable
	Assets        models.AssetSelection
	Strategy      models.Strategy
	StakePerAsset float64
	Capital       float64
	Weights       models.WeightAssignment
	Policy        models.MissingDataPolicy
}

// Compute runs the aggregation named by in.Strategy
func Compute(in CalculationInput) (*models.PortfolioResult, error) {
	switch in.Strategy {
	case models.StrategyEqual, "":
		return ComputeEqualWeightedPortfolio(in.Table, in.Assets, in.StakePerAsset)
	case models.StrategyAverage:
		return ComputeAverageReturnPortfolio(in.Table, in.Assets, in.StakePerAsset)
	case models.StrategyWeighted:
		return ComputeUserWeightedPortfolio(in.Table, in.Assets, in.Weights, in.Capital, in.Policy)
	}
	return nil, fmt.Errorf("%w: unknown strategy %q", models.ErrValidation, in.Strategy)
}

// ComputeAssetReturn returns last/first - 1 over the usable observations of
// series. It reports false when no usable observation is left, in which case
// the asset has no return at all (not a zero return).
func ComputeAssetReturn(series models.PriceSeries) (float64, bool) {
	var first, last float64
	found := false
	for _, o := range series {
		if !usablePrice(o.Close) {
			continue
		}
		if !found {
			first = o.Close
			found = true
		}
		last = o.Close
	}
	if !found {
		return 0, false
	}
	return last/first - 1, true
}

// ComputeEqualWeightedPortfolio gives each selected asset the same stake.
// Assets without a return are excluded and contribute neither stake nor
// final value.
func ComputeEqualWeightedPortfolio(table models.PriceTable, assets models.AssetSelection, stakePerAsset float64) (*models.PortfolioResult, error) {
	selection, err := validateSelection(table, assets)
	if err != nil {
		return nil, err
	}
	if err := validateCapital(stakePerAsset); err != nil {
		return nil, err
	}

	result := &models.PortfolioResult{Strategy: models.StrategyEqual, Assets: []models.AssetResult{}}
	var initial, final float64
	for _, symbol := range selection {
		r, ok := ComputeAssetReturn(table.Series[symbol])
		if !ok {
			result.Excluded = append(result.Excluded, symbol)
			continue
		}
		finalValue := stakePerAsset * (1 + r)
		result.Assets = append(result.Assets, models.AssetResult{
			Symbol:           symbol,
			ReturnFraction:   r,
			AllocatedCapital: stakePerAsset,
			FinalValue:       finalValue,
		})
		initial += stakePerAsset
		final += finalValue
	}

	if len(result.Assets) > 0 {
		result.Aggregate = newAggregate(initial, final)
	}
	return result, nil
}

// ComputeAverageReturnPortfolio reports the mean of the individual asset
// returns. It answers "how did the average asset do", which differs from the
// capital-weighted return whenever stakes differ or data is missing.
func ComputeAverageReturnPortfolio(table models.PriceTable, assets models.AssetSelection, stakePerAsset float64) (*models.PortfolioResult, error) {
	selection, err := validateSelection(table, assets)
	if err != nil {
		return nil, err
	}
	if err := validateCapital(stakePerAsset); err != nil {
		return nil, err
	}

	result := &models.PortfolioResult{Strategy: models.StrategyAverage, Assets: []models.AssetResult{}}
	var sum float64
	for _, symbol := range selection {
		r, ok := ComputeAssetReturn(table.Series[symbol])
		if !ok {
			result.Excluded = append(result.Excluded, symbol)
			continue
		}
		sum += r
		result.Assets = append(result.Assets, models.AssetResult{
			Symbol:           symbol,
			ReturnFraction:   r,
			AllocatedCapital: stakePerAsset,
			FinalValue:       stakePerAsset * (1 + r),
		})
	}

	if n := len(result.Assets); n > 0 {
		mean := sum / float64(n)
		initial := stakePerAsset * float64(n)
		final := initial * (1 + mean)
		result.Aggregate = &models.Aggregate{
			InitialCapital: initial,
			FinalCapital:   final,
			ProfitLoss:     final - initial,
			ReturnFraction: mean,
		}
	}
	return result, nil
}

// ComputeUserWeightedPortfolio splits totalCapital by the given percentages.
// Weights are never normalized: a sum outside 100 +/- WeightTolerance blocks
// the computation. The stake of an asset without a return is handled by
// policy.
func ComputeUserWeightedPortfolio(table models.PriceTable, assets models.AssetSelection, weights models.WeightAssignment, totalCapital float64, policy models.MissingDataPolicy) (*models.PortfolioResult, error) {
	selection, err := validateSelection(table, assets)
	if err != nil {
		return nil, err
	}
	if err := validateCapital(totalCapital); err != nil {
		return nil, err
	}
	if err := ValidateWeights(selection, weights); err != nil {
		return nil, err
	}

	result := &models.PortfolioResult{Strategy: models.StrategyWeighted, Assets: []models.AssetResult{}}
	var final float64
	for _, symbol := range selection {
		weight := weights[symbol]
		allocated := totalCapital * weight / 100
		r, ok := ComputeAssetReturn(table.Series[symbol])
		if !ok {
			result.Excluded = append(result.Excluded, symbol)
			if policy != models.MissingDataLoss {
				final += allocated
			}
			continue
		}
		finalValue := allocated * (1 + r)
		result.Assets = append(result.Assets, models.AssetResult{
			Symbol:           symbol,
			ReturnFraction:   r,
			Weight:           weight,
			AllocatedCapital: allocated,
			FinalValue:       finalValue,
		})
		final += finalValue
	}

	result.Aggregate = newAggregate(totalCapital, final)
	return result, nil
}

// ValidateWeights checks a weight assignment against the selection it
// applies to. A selected asset without a weight counts as 0%.
func ValidateWeights(selection models.AssetSelection, weights models.WeightAssignment) error {
	selected := make(map[string]bool, len(selection))
	for _, s := range selection {
		selected[s] = true
	}

	for symbol, w := range weights {
		if !selected[symbol] {
			return fmt.Errorf("%w: weight given for unselected asset %s", models.ErrUnknownAsset, symbol)
		}
		if math.IsNaN(w) || w < 0 || w > 100 {
			return fmt.Errorf("%w: %s=%g", ErrWeightOutOfRange, symbol, w)
		}
	}

	total := weights.Total()
	if math.Abs(total-100) > WeightTolerance+1e-9 {
		return fmt.Errorf("%w (got %.2f)", ErrWeightsSum, total)
	}
	return nil
}

func validateSelection(table models.PriceTable, assets models.AssetSelection) (models.AssetSelection, error) {
	selection := assets.Normalize()
	if len(selection) == 0 {
		return nil, ErrEmptySelection
	}
	for _, s := range selection {
		if !table.Has(s) {
			return nil, fmt.Errorf("%w: %s", models.ErrUnknownAsset, s)
		}
	}
	return selection, nil
}

func validateCapital(capital float64) error {
	if math.IsNaN(capital) || math.IsInf(capital, 0) || capital <= 0 {
		return fmt.Errorf("%w: %g", ErrInvalidCapital, capital)
	}
	return nil
}

func newAggregate(initial, final float64) *models.Aggregate {
	return &models.Aggregate{
		InitialCapital: initial,
		FinalCapital:   final,
		ProfitLoss:     final - initial,
		ReturnFraction: final/initial - 1,
	}
}

func usablePrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
