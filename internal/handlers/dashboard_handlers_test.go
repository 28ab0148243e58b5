package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/epeers/dashboard/internal/catalog"
	"github.com/epeers/dashboard/internal/handlers"
	"github.com/epeers/dashboard/internal/models"
	"github.com/epeers/dashboard/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	table models.PriceTable
	err   error
}

func (f *fakeSource) GetPriceTable(ctx context.Context, symbols []string, r models.DateRange) (models.PriceTable, error) {
	if f.err != nil {
		return models.PriceTable{}, f.err
	}
	out := models.NewPriceTable()
	for _, s := range symbols {
		out.Series[s] = f.table.Series[s]
	}
	return out, nil
}

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func setupRouter(t *testing.T) (*gin.Engine, *fakeSource) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	src := &fakeSource{table: models.PriceTable{Series: map[string]models.PriceSeries{
		"PETR4.SA": {{Date: day(1, 2), Close: 100}, {Date: day(2, 3), Close: 110}, {Date: day(3, 3), Close: 120}},
		"VALE3.SA": {{Date: day(1, 2), Close: 50}, {Date: day(3, 3), Close: 40}},
		"HGLG11.SA": {},
	}}}
	cat := &catalog.Catalog{
		Stocks: []string{"PETR4.SA", "VALE3.SA"},
		REITs:  []string{"HGLG11.SA"},
		All:    []string{"HGLG11.SA", "PETR4.SA", "VALE3.SA"},
	}
	svc := services.NewDashboardService(cat, src, services.DashboardConfig{
		History:        models.NewDateRange(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)),
		Suffix:         ".SA",
		StakePerAsset:  1000,
		DefaultCapital: 10000,
		Currency:       "BRL",
		Policy:         models.MissingDataRetain,
	})

	router := gin.New()
	handlers.NewDashboardHandler(svc).Register(router)
	return router, src
}

func postJSON(router *gin.Engine, url, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func get(router *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestTickers(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(router, "/tickers")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.TickersResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"HGLG11.SA", "PETR4.SA", "VALE3.SA"}, resp.All)
	assert.Equal(t, []string{"HGLG11.SA"}, resp.REITs)
}

func TestPrices(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(router, "/prices?symbols=PETR4,VALE3.SA&start_date=2025-02-01&end_date=2025-03-31")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.PricesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "2025-02-01", resp.StartDate)
	assert.Equal(t, 3, resp.DataPoints)
	assert.Len(t, resp.Series["PETR4.SA"], 2)
	assert.Len(t, resp.Series["VALE3.SA"], 1)
}

func TestPrices_BadRequests(t *testing.T) {
	router, _ := setupRouter(t)

	assert.Equal(t, http.StatusBadRequest, get(router, "/prices").Code)
	assert.Equal(t, http.StatusBadRequest, get(router, "/prices?symbols=PETR4.SA&start_date=01/02/2025").Code)
	assert.Equal(t, http.StatusUnprocessableEntity, get(router, "/prices?symbols=NOPE3.SA").Code)
	assert.Equal(t, http.StatusUnprocessableEntity,
		get(router, "/prices?symbols=PETR4.SA&start_date=2025-03-01&end_date=2025-01-01").Code)
}

func TestPrices_Upstream(t *testing.T) {
	router, src := setupRouter(t)
	src.err = services.ErrUpstream

	w := get(router, "/prices?symbols=PETR4.SA")
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestPerformance_Equal(t *testing.T) {
	router, _ := setupRouter(t)

	w := postJSON(router, "/portfolio/performance", `{"assets":["PETR4.SA","VALE3.SA","HGLG11.SA"],"start_date":"2025-01-01","end_date":"2025-03-31"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.PerformanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result.Aggregate)
	// (1200 + 800) / 2000 - 1
	assert.InDelta(t, 0.0, resp.Result.Aggregate.ReturnFraction, 1e-12)
	assert.Equal(t, []string{"HGLG11.SA"}, resp.Result.Excluded)
	assert.Equal(t, "20.00%", resp.Display.Assets[0].Return)
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, models.WarnAssetExcluded, resp.Warnings[0].Code)
}

func TestPerformance_Errors(t *testing.T) {
	router, _ := setupRouter(t)

	w := postJSON(router, "/portfolio/performance", `{"assets":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = postJSON(router, "/portfolio/performance", `{"assets":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errResp))
	assert.Equal(t, "validation_failed", errResp.Error)

	w = postJSON(router, "/portfolio/performance", `{"assets":["PETR4.SA","VALE3.SA"],"strategy":"weighted","weights":{"PETR4.SA":50,"VALE3.SA":40}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "sum to 100")
}

func buildUpload(t *testing.T, csvContent string, fields map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	if csvContent != "" {
		part, err := writer.CreateFormFile("weights", "weights.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(csvContent))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/portfolio/performance/upload", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestPerformanceUpload(t *testing.T) {
	router, _ := setupRouter(t)

	req := buildUpload(t, "symbol,weight\nPETR4,75\nVALE3,25\n", map[string]string{
		"capital":  "20000",
		"end_date": "2025-03-31",
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.PerformanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.StrategyWeighted, resp.Result.Strategy)
	require.NotNil(t, resp.Result.Aggregate)
	// 15000 * 1.2 + 5000 * 0.8
	assert.InDelta(t, 22000, resp.Result.Aggregate.FinalCapital, 1e-9)
}

func TestPerformanceUpload_Errors(t *testing.T) {
	router, _ := setupRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, buildUpload(t, "", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing file")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, buildUpload(t, "symbol,pct\nPETR4,100\n", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing weight column")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, buildUpload(t, "symbol,weight\nPETR4,100\n", map[string]string{"capital": "-5"}))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code, "negative capital")
}

func TestChart(t *testing.T) {
	router, _ := setupRouter(t)

	w := get(router, "/portfolio/chart?symbols=PETR4.SA,VALE3.SA")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))

	w = get(router, "/portfolio/chart?symbols=HGLG11.SA")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
