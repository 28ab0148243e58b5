package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
)

// Yahoo Finance serves daily history through its public chart endpoint.
// There is no key; the endpoint only expects a browser-like user agent.
const (
	defaultBaseURL = "https://query1.finance.yahoo.com"
	userAgent      = "Mozilla/5.0 (compatible; dashboard/1.0)"
)

// ErrNoData is returned when the provider answers without any bar
var ErrNoData = errors.New("no price data returned")

// Client is an HTTP client for the Yahoo Finance chart API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Yahoo Finance client
func NewClient() *Client {
	return NewClientWithBaseURL(defaultBaseURL)
}

// NewClientWithBaseURL creates a new client with a custom base URL (for testing)
func NewClientWithBaseURL(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetDailyCloses fetches adjusted daily closes for symbol between start and
// end, both inclusive. Sessions without a close are left out.
func (c *Client) GetDailyCloses(ctx context.Context, symbol string, start, end time.Time) ([]ParsedClose, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	// period2 is exclusive
	params.Set("period2", strconv.FormatInt(end.AddDate(0, 0, 1).Unix(), 10))
	params.Set("events", "div,split")
	params.Set("includeAdjustedClose", "true")

	log.Debugf("GetDailyCloses %s %s..%s", symbol, start.Format("2006-01-02"), end.Format("2006-01-02"))

	body, err := c.doRequest(ctx, "/v8/finance/chart/"+url.PathEscape(symbol), params)
	if err != nil {
		return nil, err
	}

	var chartResp ChartResponse
	if err := json.Unmarshal(body, &chartResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if chartResp.Chart.Error != nil {
		return nil, fmt.Errorf("chart error for %s: %s", symbol, chartResp.Chart.Error.Description)
	}
	if len(chartResp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w for %s", ErrNoData, symbol)
	}

	return parseCloses(chartResp.Chart.Result[0]), nil
}

// parseCloses turns a chart result into dated closes, preferring the
// adjusted series. Dates are calendar days on the exchange clock.
func parseCloses(res ChartResult) []ParsedClose {
	var closes []*float64
	if len(res.Indicators.AdjClose) > 0 && len(res.Indicators.AdjClose[0].AdjClose) > 0 {
		closes = res.Indicators.AdjClose[0].AdjClose
	} else if len(res.Indicators.Quote) > 0 {
		closes = res.Indicators.Quote[0].Close
	}

	var prices []ParsedClose
	for i, ts := range res.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		local := time.Unix(ts+res.Meta.GMTOffset, 0).UTC()
		prices = append(prices, ParsedClose{
			Date:  time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC),
			Close: *closes[i],
		})
	}
	return prices
}

func (c *Client) doRequest(ctx context.Context, path string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var chartResp ChartResponse
		if json.Unmarshal(body, &chartResp) == nil && chartResp.Chart.Error != nil {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, chartResp.Chart.Error.Description)
		}
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	return body, nil
}
