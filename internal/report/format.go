package report

import (
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/epeers/dashboard/internal/models"
)

// Money formats amount in the given ISO currency with two-decimal grouping,
// e.g. R$1.234,56 for BRL. Unknown codes are registered on the fly by
// go-money and printed with the code as symbol.
func Money(amount float64, currency string) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "-"
	}
	cur := *money.New(0, currency).Currency()
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// Percent renders a return fraction as a percentage with two decimals
func Percent(fraction float64) string {
	if math.IsNaN(fraction) || math.IsInf(fraction, 0) {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", fraction*100)
}

// Performance turns a computed result into display strings
func Performance(result *models.PortfolioResult, currency string) models.PerformanceReport {
	rep := models.PerformanceReport{Assets: make([]models.AssetReport, 0, len(result.Assets))}
	for _, a := range result.Assets {
		rep.Assets = append(rep.Assets, models.AssetReport{
			Symbol:     a.Symbol,
			Return:     Percent(a.ReturnFraction),
			Allocated:  Money(a.AllocatedCapital, currency),
			FinalValue: Money(a.FinalValue, currency),
			Positive:   a.ReturnFraction >= 0,
		})
	}
	if agg := result.Aggregate; agg != nil {
		rep.Aggregate = &models.AggregateReport{
			InitialCapital: Money(agg.InitialCapital, currency),
			FinalCapital:   Money(agg.FinalCapital, currency),
			ProfitLoss:     Money(agg.ProfitLoss, currency),
			Return:         Percent(agg.ReturnFraction),
			Positive:       agg.ReturnFraction >= 0,
		}
	}
	return rep
}
