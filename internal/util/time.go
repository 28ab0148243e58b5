package util

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// MarketLocation is the B3 exchange timezone. Falls back to UTC-3 when the
// tz database is unavailable.
func MarketLocation() *time.Location {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		log.Errorf("Failed to load location 'America/Sao_Paulo': %v. Falling back to UTC-3.", err)
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// NextMarketDate predicts when the next daily close will be published.
// It returns the next weekday at 6:30 PM Sao Paulo time, in UTC.
func NextMarketDate(input time.Time) time.Time {
	loc := MarketLocation()
	nowBRT := input.In(loc)

	// Start with today at 6:30 PM BRT
	next := time.Date(nowBRT.Year(), nowBRT.Month(), nowBRT.Day(), 18, 30, 0, 0, loc)

	// If it's already past the close, move to the next day
	if nowBRT.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	// Skip weekends to find the next business day
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}

	return next.UTC()
}

// LastMarketDate returns the most recent weekday, as a UTC date, whose
// close has already been published at input.
func LastMarketDate(input time.Time) time.Time {
	loc := MarketLocation()
	nowBRT := input.In(loc)

	last := time.Date(nowBRT.Year(), nowBRT.Month(), nowBRT.Day(), 18, 30, 0, 0, loc)
	if nowBRT.Before(last) {
		last = last.AddDate(0, 0, -1)
	}
	for last.Weekday() == time.Saturday || last.Weekday() == time.Sunday {
		last = last.AddDate(0, 0, -1)
	}
	return time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, time.UTC)
}
