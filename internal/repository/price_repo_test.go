package repository_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/epeers/dashboard/internal/database"
	"github.com/epeers/dashboard/internal/models"
	"github.com/epeers/dashboard/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSymbol = "ZZTEST3.SA"

func getTestRepo(t *testing.T) *repository.PriceRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	pgURL := os.Getenv("PG_URL")
	if pgURL == "" {
		t.Skip("PG_URL not set, skipping database tests")
	}

	db, err := database.New(context.Background(), pgURL)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	repo := repository.NewPriceRepository(db.Pool)
	require.NoError(t, repo.DeleteSymbol(context.Background(), testSymbol))
	t.Cleanup(func() { repo.DeleteSymbol(context.Background(), testSymbol) })
	return repo
}

func date(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPriceRepository_StoreAndGet(t *testing.T) {
	repo := getTestRepo(t)
	ctx := context.Background()

	prices := models.PriceSeries{
		{Date: date(1, 2), Close: 30},
		{Date: date(1, 3), Close: 31},
		{Date: date(1, 6), Close: 33},
	}
	require.NoError(t, repo.StoreDailyPrices(ctx, testSymbol, prices))

	// Upsert overwrites an existing close
	require.NoError(t, repo.StoreDailyPrices(ctx, testSymbol, models.PriceSeries{{Date: date(1, 3), Close: 31.5}}))

	got, err := repo.GetDailyPrices(ctx, testSymbol, date(1, 3), date(1, 31))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, date(1, 3), got[0].Date)
	assert.Equal(t, 31.5, got[0].Close)
	assert.Equal(t, 33.0, got[1].Close)
}

func TestPriceRepository_PriceRange(t *testing.T) {
	repo := getTestRepo(t)
	ctx := context.Background()

	pr, err := repo.GetPriceRange(ctx, testSymbol)
	require.NoError(t, err)
	assert.Nil(t, pr)

	next := time.Date(2025, 3, 10, 21, 30, 0, 0, time.UTC)
	require.NoError(t, repo.UpsertPriceRange(ctx, testSymbol, date(2, 1), date(2, 28), next))
	require.NoError(t, repo.UpsertPriceRange(ctx, testSymbol, date(1, 1), date(2, 15), next.Add(24*time.Hour)))

	pr, err = repo.GetPriceRange(ctx, testSymbol)
	require.NoError(t, err)
	require.NotNil(t, pr)
	assert.Equal(t, date(1, 1), pr.StartDate, "range only grows")
	assert.Equal(t, date(2, 28), pr.EndDate)
	assert.True(t, pr.NextUpdate.Equal(next.Add(24*time.Hour)))
}
