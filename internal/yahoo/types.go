package yahoo

import "time"

// ChartResponse is the v8 chart endpoint payload
type ChartResponse struct {
	Chart ChartData `json:"chart"`
}

// ChartData wraps the result list and an optional error object
type ChartData struct {
	Result []ChartResult `json:"result"`
	Error  *ChartError   `json:"error"`
}

// ChartError is returned for unknown symbols and bad ranges
type ChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ChartResult holds one symbol's bars. Price arrays contain nulls for
// sessions without a trade, hence the pointers.
type ChartResult struct {
	Meta       ChartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators Indicators `json:"indicators"`
}

// ChartMeta carries exchange information
type ChartMeta struct {
	Currency             string `json:"currency"`
	Symbol               string `json:"symbol"`
	ExchangeName         string `json:"exchangeName"`
	ExchangeTimezoneName string `json:"exchangeTimezoneName"`
	GMTOffset            int64  `json:"gmtoffset"`
}

// Indicators groups raw and adjusted quotes
type Indicators struct {
	Quote    []Quote    `json:"quote"`
	AdjClose []AdjClose `json:"adjclose"`
}

// Quote is the raw OHLCV block
type Quote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// AdjClose is the split and dividend adjusted close
type AdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

// ParsedClose is one usable daily close
type ParsedClose struct {
	Date  time.Time
	Close float64
}
