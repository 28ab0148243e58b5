package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/epeers/dashboard/internal/cache"
	"github.com/epeers/dashboard/internal/models"
	"github.com/epeers/dashboard/internal/repository"
	"github.com/epeers/dashboard/internal/util"
	"github.com/epeers/dashboard/internal/yahoo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// ErrUpstream is returned when the price provider could not serve any of the
// requested symbols.
var ErrUpstream = errors.New("price provider unavailable")

// PriceFetcher downloads daily closes from the market-data provider
type PriceFetcher interface {
	GetDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]yahoo.ParsedClose, error)
}

// PriceStore persists closes between runs
type PriceStore interface {
	GetDailyPrices(ctx context.Context, symbol string, startDate, endDate time.Time) (models.PriceSeries, error)
	StoreDailyPrices(ctx context.Context, symbol string, prices models.PriceSeries) error
	GetPriceRange(ctx context.Context, symbol string) (*repository.PriceRange, error)
	UpsertPriceRange(ctx context.Context, symbol string, startDate, endDate time.Time, nextUpdate time.Time) error
}

// PricingService builds price tables from the memory cache, the optional
// Postgres store and the provider, in that order.
type PricingService struct {
	fetcher     PriceFetcher
	store       PriceStore
	memCache    *cache.MemoryCache
	group       singleflight.Group
	concurrency int
	now         func() time.Time
}

// NewPricingService creates a new PricingService. store may be nil.
func NewPricingService(fetcher PriceFetcher, store PriceStore, memCache *cache.MemoryCache, concurrency int) *PricingService {
	if concurrency < 1 {
		concurrency = 1
	}
	return &PricingService{
		fetcher:     fetcher,
		store:       store,
		memCache:    memCache,
		concurrency: concurrency,
		now:         time.Now,
	}
}

type tableResult struct {
	table    models.PriceTable
	warnings []models.Warning
}

// GetPriceTable returns one column per requested symbol over r. A symbol the
// provider could not serve gets an empty column and a W2001 warning; such a
// table is not memoized so the next call retries. ErrUpstream is returned
// only when every symbol failed.
func (s *PricingService) GetPriceTable(ctx context.Context, symbols []string, r models.DateRange) (models.PriceTable, error) {
	defer TrackTime("GetPriceTable", time.Now())

	if err := r.Validate(); err != nil {
		return models.PriceTable{}, err
	}
	if table, ok := s.memCache.GetTable(symbols, r); ok {
		return table, nil
	}

	key := cache.TableKey(symbols, r)
	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		// Callers sharing this flight must not lose it to the first one's cancellation.
		return s.buildTable(context.WithoutCancel(ctx), symbols, r)
	})
	if err != nil {
		return models.PriceTable{}, err
	}
	if shared {
		log.Debugf("GetPriceTable: shared fetch for %s", key)
	}

	res := v.(*tableResult)
	for _, w := range res.warnings {
		AddWarning(ctx, w)
	}
	return res.table, nil
}

func (s *PricingService) buildTable(ctx context.Context, symbols []string, r models.DateRange) (*tableResult, error) {
	uniq := models.AssetSelection(symbols).Normalize()
	series := make([]models.PriceSeries, len(uniq))
	failures := make([]error, len(uniq))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, symbol := range uniq {
		g.Go(func() error {
			prices, err := s.getSeries(gctx, symbol, r)
			if err != nil {
				failures[i] = err
				return nil
			}
			series[i] = prices
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &tableResult{table: models.NewPriceTable()}
	failed := 0
	for i, symbol := range uniq {
		if failures[i] != nil {
			failed++
			log.Warnf("price fetch failed for %s: %v", symbol, failures[i])
			res.warnings = append(res.warnings, models.Warning{
				Code:    models.WarnPriceFetchFailed,
				Message: fmt.Sprintf("Could not load prices for %s; it has no data in this view.", symbol),
			})
			res.table.Series[symbol] = models.PriceSeries{}
			continue
		}
		res.table.Series[symbol] = series[i]
	}

	if failed > 0 && failed == len(uniq) {
		return nil, fmt.Errorf("%w: no symbol could be loaded", ErrUpstream)
	}
	if failed == 0 {
		s.memCache.SetTable(symbols, r, res.table)
	}
	return res, nil
}

// getSeries reads one symbol, through the store when there is one
func (s *PricingService) getSeries(ctx context.Context, symbol string, r models.DateRange) (models.PriceSeries, error) {
	if s.store == nil {
		return s.fetch(ctx, symbol, r)
	}

	priceRange, err := s.store.GetPriceRange(ctx, symbol)
	if err != nil {
		log.Errorf("failed to read price range for %s: %v", symbol, err)
		return s.fetch(ctx, symbol, r)
	}

	currentDT := s.now()
	needsFetch, fetchRange := DetermineFetch(priceRange, currentDT, r.Start, r.End)
	if needsFetch {
		prices, err := s.fetch(ctx, symbol, fetchRange)
		if err != nil {
			return nil, err
		}
		if err := s.store.StoreDailyPrices(ctx, symbol, prices); err != nil {
			log.Errorf("warning: failed to store prices for %s: %v", symbol, err)
			return prices.Slice(r), nil
		}
		// The requested span is recorded, not the data bounds: holidays at the
		// edges would otherwise make the range look uncovered forever. Sessions
		// not yet closed are left out so they get fetched later.
		covered := fetchRange
		if last := util.LastMarketDate(currentDT); covered.End.After(last) {
			covered.End = last
		}
		if !covered.End.Before(covered.Start) {
			if err := s.store.UpsertPriceRange(ctx, symbol, covered.Start, covered.End, util.NextMarketDate(currentDT)); err != nil {
				log.Errorf("warning: failed to update price range for %s: %v", symbol, err)
			}
		}
	}

	prices, err := s.store.GetDailyPrices(ctx, symbol, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to get prices from DB: %w", err)
	}
	return prices, nil
}

func (s *PricingService) fetch(ctx context.Context, symbol string, r models.DateRange) (models.PriceSeries, error) {
	closes, err := s.fetcher.GetDailyCloses(ctx, symbol, r.Start, r.End)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch prices for %s: %w", symbol, err)
	}
	obs := make([]models.Observation, 0, len(closes))
	for _, c := range closes {
		obs = append(obs, models.Observation{Date: c.Date, Close: c.Close})
	}
	return models.NewPriceSeries(obs).Slice(r), nil
}

// DetermineFetch decides whether the stored range covers [start, end] and is
// still fresh. When a fetch is needed it returns the span to download, which
// is widened to include the stored range so the merged coverage stays
// contiguous.
func DetermineFetch(priceRange *repository.PriceRange, currentDT time.Time, start, end time.Time) (bool, models.DateRange) {
	want := models.NewDateRange(start, end)
	if priceRange == nil {
		// No cached data at all
		return true, want
	}

	startCovered := !want.Start.Before(priceRange.StartDate)
	endCovered := !want.End.After(priceRange.EndDate)

	if startCovered && endCovered {
		return false, models.DateRange{}
	}

	// Only the tail is missing: it may simply not be published yet.
	if startCovered && priceRange.NextUpdate.After(currentDT) {
		return false, models.DateRange{}
	}

	fetch := want
	if priceRange.StartDate.Before(fetch.Start) {
		fetch.Start = priceRange.StartDate
	}
	if priceRange.EndDate.After(fetch.End) {
		fetch.End = priceRange.EndDate
	}
	return true, fetch
}
