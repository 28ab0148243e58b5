package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/epeers/dashboard/internal/catalog"
	"github.com/epeers/dashboard/internal/charts"
	"github.com/epeers/dashboard/internal/models"
	"github.com/epeers/dashboard/internal/report"
	log "github.com/sirupsen/logrus"
)

// ErrOutsideHistory is returned when a requested date range does not
// overlap the configured history window at all.
var ErrOutsideHistory = fmt.Errorf("%w: dates outside the available history", models.ErrValidation)

// PriceTableSource is the part of PricingService the dashboard depends on
type PriceTableSource interface {
	GetPriceTable(ctx context.Context, symbols []string, r models.DateRange) (models.PriceTable, error)
}

// DashboardConfig holds the knobs of the dashboard pipeline
type DashboardConfig struct {
	History        models.DateRange
	Suffix         string
	StakePerAsset  float64
	DefaultCapital float64
	Currency       string
	Policy         models.MissingDataPolicy
}

// DashboardService runs the load → fetch → select → filter → compute →
// present pipeline for one request.
type DashboardService struct {
	catalog *catalog.Catalog
	prices  PriceTableSource
	cfg     DashboardConfig
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(cat *catalog.Catalog, prices PriceTableSource, cfg DashboardConfig) *DashboardService {
	return &DashboardService{
		catalog: cat,
		prices:  prices,
		cfg:     cfg,
	}
}

// Tickers returns the loaded catalog and reports its load warnings on ctx
func (s *DashboardService) Tickers(ctx context.Context) *catalog.Catalog {
	for _, w := range s.catalog.Warnings {
		AddWarning(ctx, w)
	}
	return s.catalog
}

// Prices returns the price table of the selected symbols over the resolved
// date range.
func (s *DashboardService) Prices(ctx context.Context, symbols []string, start, end models.FlexibleDate) (models.PriceTable, models.DateRange, error) {
	defer TrackTime("Prices", time.Now())

	selection, err := s.resolveSelection(symbols)
	if err != nil {
		return models.PriceTable{}, models.DateRange{}, err
	}
	r, err := s.resolveRange(ctx, start, end)
	if err != nil {
		return models.PriceTable{}, models.DateRange{}, err
	}
	table, err := s.filteredTable(ctx, selection, r)
	if err != nil {
		return models.PriceTable{}, models.DateRange{}, err
	}
	return table, r, nil
}

// Evaluate computes the portfolio performance described by req
func (s *DashboardService) Evaluate(ctx context.Context, req models.PerformanceRequest) (*models.PerformanceResponse, error) {
	defer TrackTime("Evaluate", time.Now())

	strategy, err := models.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}
	selection, err := s.resolveSelection(req.Assets)
	if err != nil {
		return nil, err
	}
	r, err := s.resolveRange(ctx, req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}

	capital := s.cfg.DefaultCapital
	if req.Capital != nil {
		capital = *req.Capital
	}
	weights := make(models.WeightAssignment, len(req.Weights))
	for symbol, w := range req.Weights {
		weights[catalog.NormalizeSymbol(symbol, s.cfg.Suffix)] += w
	}
	if strategy == models.StrategyWeighted {
		// Reject bad input before spending a network round trip on it.
		if err := validateCapital(capital); err != nil {
			return nil, err
		}
		if err := ValidateWeights(selection, weights); err != nil {
			return nil, err
		}
	}

	table, err := s.filteredTable(ctx, selection, r)
	if err != nil {
		return nil, err
	}

	result, err := Compute(CalculationInput{
		Table:         table,
		Assets:        selection,
		Strategy:      strategy,
		StakePerAsset: s.cfg.StakePerAsset,
		Capital:       capital,
		Weights:       weights,
		Policy:        s.cfg.Policy,
	})
	if err != nil {
		return nil, err
	}

	for _, symbol := range result.Excluded {
		Warnf(ctx, models.WarnAssetExcluded, "%s has no price between %s and %s and was left out.",
			symbol, r.Start.Format(models.DateLayout), r.End.Format(models.DateLayout))
	}
	if result.Aggregate == nil {
		Warnf(ctx, models.WarnNoAggregate, "No selected asset has prices in this range; there is no portfolio total.")
	}

	log.WithFields(log.Fields{
		"strategy": strategy,
		"assets":   len(selection),
		"excluded": len(result.Excluded),
		"range":    r.String(),
	}).Info("portfolio evaluated")

	return &models.PerformanceResponse{
		StartDate: r.Start.Format(models.DateLayout),
		EndDate:   r.End.Format(models.DateLayout),
		Result:    *result,
		Display:   report.Performance(result, s.cfg.Currency),
	}, nil
}

// Chart renders the closing prices of the selection as a PNG
func (s *DashboardService) Chart(ctx context.Context, symbols []string, start, end models.FlexibleDate) ([]byte, error) {
	defer TrackTime("Chart", time.Now())

	table, r, err := s.Prices(ctx, symbols, start, end)
	if err != nil {
		return nil, err
	}
	title := fmt.Sprintf("Closing prices %s to %s", r.Start.Format("02/01/2006"), r.End.Format("02/01/2006"))
	return charts.RenderPriceChart(table, title)
}

// resolveSelection normalizes the user's symbols and checks them against
// the catalog.
func (s *DashboardService) resolveSelection(symbols []string) (models.AssetSelection, error) {
	normalized := make(models.AssetSelection, 0, len(symbols))
	for _, sym := range symbols {
		if strings.TrimSpace(sym) == "" {
			continue
		}
		normalized = append(normalized, catalog.NormalizeSymbol(sym, s.cfg.Suffix))
	}
	selection := normalized.Normalize()
	if len(selection) == 0 {
		return nil, ErrEmptySelection
	}
	for _, sym := range selection {
		if !s.catalog.Contains(sym) {
			return nil, fmt.Errorf("%w: %s", models.ErrUnknownAsset, sym)
		}
	}
	return selection, nil
}

// resolveRange turns optional user dates into a range inside the history
// window. Missing bounds default to the window edges; bounds outside it are
// clamped with a W4001 warning.
func (s *DashboardService) resolveRange(ctx context.Context, start, end models.FlexibleDate) (models.DateRange, error) {
	window := s.cfg.History
	r := window
	if !start.IsZero() {
		r.Start = models.TruncateDate(start.Time)
	}
	if !end.IsZero() {
		r.End = models.TruncateDate(end.Time)
	}
	if r.End.Before(window.Start) || r.Start.After(window.End) {
		return models.DateRange{}, fmt.Errorf("%w: history covers %s", ErrOutsideHistory, window)
	}
	if err := r.Validate(); err != nil {
		return models.DateRange{}, err
	}

	if r.Start.Before(window.Start) {
		Warnf(ctx, models.WarnRangeClamped, "Start date moved to %s, the first date with history.", window.Start.Format(models.DateLayout))
		r.Start = window.Start
	}
	if r.End.After(window.End) {
		Warnf(ctx, models.WarnRangeClamped, "End date moved to %s, the last date with history.", window.End.Format(models.DateLayout))
		r.End = window.End
	}
	return r, nil
}

// filteredTable fetches the whole history window for the selection, so
// every sub-range of it is served from the same memoized table, then
// applies the column and date filters.
func (s *DashboardService) filteredTable(ctx context.Context, selection models.AssetSelection, r models.DateRange) (models.PriceTable, error) {
	full, err := s.prices.GetPriceTable(ctx, selection, s.cfg.History)
	if err != nil {
		return models.PriceTable{}, err
	}
	table, err := full.Select(selection)
	if err != nil {
		return models.PriceTable{}, err
	}
	return table.Slice(r), nil
}

// DataPoints counts the observations of a table
func DataPoints(table models.PriceTable) int {
	n := 0
	for _, series := range table.Series {
		n += len(series)
	}
	return n
}
