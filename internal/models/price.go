package models

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrValidation is wrapped by every input validation failure so callers can
	// tell a blocked computation apart from an internal error.
	ErrValidation = errors.New("validation failed")

	ErrUnknownAsset  = fmt.Errorf("%w: unknown asset", ErrValidation)
	ErrInvertedRange = fmt.Errorf("%w: start date is after end date", ErrValidation)
)

const DateLayout = "2006-01-02"

// Observation is a single closing price for a symbol
type Observation struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is the ordered price history of one symbol. Dates are strictly
// increasing; a missing trading day is simply absent.
type PriceSeries []Observation

// First returns the earliest observation
func (s PriceSeries) First() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[0], true
}

// Last returns the latest observation
func (s PriceSeries) Last() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[len(s)-1], true
}

// NewPriceSeries sorts observations by date and keeps the last value seen for
// a duplicated date.
func NewPriceSeries(obs []Observation) PriceSeries {
	sorted := make([]Observation, len(obs))
	copy(sorted, obs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	series := make(PriceSeries, 0, len(sorted))
	for _, o := range sorted {
		if n := len(series); n > 0 && series[n-1].Date.Equal(o.Date) {
			series[n-1] = o
			continue
		}
		series = append(series, o)
	}
	return series
}

// DateRange is an inclusive [Start, End] pair of calendar dates
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange truncates both bounds to calendar dates in UTC
func NewDateRange(start, end time.Time) DateRange {
	return DateRange{Start: TruncateDate(start), End: TruncateDate(end)}
}

// Validate enforces start <= end
func (r DateRange) Validate() error {
	if r.Start.After(r.End) {
		return fmt.Errorf("%w (%s > %s)", ErrInvertedRange, r.Start.Format(DateLayout), r.End.Format(DateLayout))
	}
	return nil
}

// Contains reports whether t falls inside the range, bounds included
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// IsZero reports whether neither bound is set
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}

// TruncateDate drops the clock part of t, keeping its calendar date
func TruncateDate(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// PriceTable maps symbols to their price history on a shared date axis.
// A table is never mutated once built; filters return new tables.
type PriceTable struct {
	Series map[string]PriceSeries `json:"series"`
}

// NewPriceTable creates an empty table
func NewPriceTable() PriceTable {
	return PriceTable{Series: make(map[string]PriceSeries)}
}

// Has reports whether symbol is a column of the table
func (t PriceTable) Has(symbol string) bool {
	_, ok := t.Series[symbol]
	return ok
}

// Symbols returns the sorted column names
func (t PriceTable) Symbols() []string {
	symbols := make([]string, 0, len(t.Series))
	for s := range t.Series {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// Dates returns the union of all observation dates, sorted
func (t PriceTable) Dates() []time.Time {
	seen := make(map[time.Time]bool)
	var dates []time.Time
	for _, series := range t.Series {
		for _, o := range series {
			if !seen[o.Date] {
				seen[o.Date] = true
				dates = append(dates, o.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool {
		return dates[i].Before(dates[j])
	})
	return dates
}

// Bounds returns the earliest and latest dates present in any column
func (t PriceTable) Bounds() (DateRange, bool) {
	var r DateRange
	found := false
	for _, series := range t.Series {
		first, ok := series.First()
		if !ok {
			continue
		}
		last, _ := series.Last()
		if !found || first.Date.Before(r.Start) {
			r.Start = first.Date
		}
		if !found || last.Date.After(r.End) {
			r.End = last.Date
		}
		found = true
	}
	return r, found
}

// Select returns a table holding only the given columns. Values and dates of
// the kept columns are unchanged.
func (t PriceTable) Select(symbols []string) (PriceTable, error) {
	out := NewPriceTable()
	for _, s := range symbols {
		series, ok := t.Series[s]
		if !ok {
			return PriceTable{}, fmt.Errorf("%w: %s", ErrUnknownAsset, s)
		}
		out.Series[s] = series
	}
	return out, nil
}

// Slice keeps the observations inside r, bounds included. The caller
// guarantees r.Start <= r.End.
func (t PriceTable) Slice(r DateRange) PriceTable {
	out := NewPriceTable()
	for s, series := range t.Series {
		out.Series[s] = series.Slice(r)
	}
	return out
}

// Slice returns a copy of the observations inside r, bounds included
func (s PriceSeries) Slice(r DateRange) PriceSeries {
	lo := sort.Search(len(s), func(i int) bool {
		return !s[i].Date.Before(r.Start)
	})
	hi := sort.Search(len(s), func(i int) bool {
		return s[i].Date.After(r.End)
	})
	if lo >= hi {
		return PriceSeries{}
	}
	sliced := make(PriceSeries, hi-lo)
	copy(sliced, s[lo:hi])
	return sliced
}
