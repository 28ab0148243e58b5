package models

import (
	"fmt"
	"strings"
)

// Strategy selects how per-asset returns are aggregated
type Strategy string

const (
	// StrategyEqual gives every asset the same stake and reports the
	// capital-weighted return of the resulting portfolio.
	StrategyEqual Strategy = "equal"
	// StrategyAverage reports the arithmetic mean of the asset returns.
	StrategyAverage Strategy = "average"
	// StrategyWeighted splits a total capital by user supplied percentages.
	StrategyWeighted Strategy = "weighted"
)

// ParseStrategy maps user input to a Strategy, defaulting to equal weighting
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyEqual:
		return StrategyEqual, nil
	case StrategyAverage:
		return StrategyAverage, nil
	case StrategyWeighted:
		return StrategyWeighted, nil
	}
	return "", fmt.Errorf("%w: unknown strategy %q", ErrValidation, s)
}

// MissingDataPolicy decides what happens, in weighted mode, to the stake of
// an asset with no usable price in the selected range.
type MissingDataPolicy string

const (
	// MissingDataRetain keeps the stake uninvested: it comes back at face value.
	MissingDataRetain MissingDataPolicy = "retain"
	// MissingDataLoss counts the stake as a total loss.
	MissingDataLoss MissingDataPolicy = "loss"
)

// ParseMissingDataPolicy maps a config value to a policy
func ParseMissingDataPolicy(s string) (MissingDataPolicy, error) {
	switch MissingDataPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", MissingDataRetain:
		return MissingDataRetain, nil
	case MissingDataLoss:
		return MissingDataLoss, nil
	}
	return "", fmt.Errorf("unknown missing data policy %q", s)
}

// AssetSelection is the set of symbols picked by the user
type AssetSelection []string

// Normalize trims entries and drops blanks and duplicates, keeping order
func (a AssetSelection) Normalize() AssetSelection {
	seen := make(map[string]bool, len(a))
	out := make(AssetSelection, 0, len(a))
	for _, s := range a {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// WeightAssignment maps symbols to percentages (0-100)
type WeightAssignment map[string]float64

// Total sums all weights
func (w WeightAssignment) Total() float64 {
	var total float64
	for _, v := range w {
		total += v
	}
	return total
}

// AssetResult is the outcome of one asset over the selected range
type AssetResult struct {
	Symbol           string  `json:"symbol"`
	ReturnFraction   float64 `json:"return_fraction"`
	Weight           float64 `json:"weight,omitempty"`
	AllocatedCapital float64 `json:"allocated_capital"`
	FinalValue       float64 `json:"final_value"`
}

// Aggregate is the portfolio-level outcome
type Aggregate struct {
	InitialCapital float64 `json:"initial_capital"`
	FinalCapital   float64 `json:"final_capital"`
	ProfitLoss     float64 `json:"profit_loss"`
	ReturnFraction float64 `json:"return_fraction"`
}

// PortfolioResult is a pure projection of the current selection, range,
// capital and weights. Excluded lists assets without a usable price.
type PortfolioResult struct {
	Strategy  Strategy      `json:"strategy"`
	Assets    []AssetResult `json:"assets"`
	Excluded  []string      `json:"excluded,omitempty"`
	Aggregate *Aggregate    `json:"aggregate,omitempty"`
}

// Asset finds the result for symbol
func (r *PortfolioResult) Asset(symbol string) (AssetResult, bool) {
	for _, a := range r.Assets {
		if a.Symbol == symbol {
			return a, true
		}
	}
	return AssetResult{}, false
}
