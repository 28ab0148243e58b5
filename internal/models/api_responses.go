package models

// PerformanceRequest is the body of POST /portfolio/performance
type PerformanceRequest struct {
	Assets    []string         `json:"assets"`
	StartDate FlexibleDate     `json:"start_date"`
	EndDate   FlexibleDate     `json:"end_date"`
	Strategy  string           `json:"strategy"`
	Capital   *float64         `json:"capital,omitempty"`
	Weights   WeightAssignment `json:"weights,omitempty"`
}

// PerformanceResponse carries the raw result plus display strings
type PerformanceResponse struct {
	StartDate string            `json:"start_date"`
	EndDate   string            `json:"end_date"`
	Result    PortfolioResult   `json:"result"`
	Display   PerformanceReport `json:"display"`
	Warnings  []Warning         `json:"warnings,omitempty"`
}

// PerformanceReport is the formatted view of a PortfolioResult
type PerformanceReport struct {
	Assets    []AssetReport    `json:"assets"`
	Aggregate *AggregateReport `json:"aggregate,omitempty"`
}

// AssetReport is one formatted line of the per-asset table
type AssetReport struct {
	Symbol     string `json:"symbol"`
	Return     string `json:"return"`
	Allocated  string `json:"allocated"`
	FinalValue string `json:"final_value"`
	Positive   bool   `json:"positive"`
}

// AggregateReport is the formatted portfolio summary
type AggregateReport struct {
	InitialCapital string `json:"initial_capital"`
	FinalCapital   string `json:"final_capital"`
	ProfitLoss     string `json:"profit_loss"`
	Return         string `json:"return"`
	Positive       bool   `json:"positive"`
}

// PricesRequest holds the query parameters of GET /prices and GET /portfolio/chart
type PricesRequest struct {
	Symbols   string `form:"symbols" binding:"required"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

// PricesResponse is the filtered price table
type PricesResponse struct {
	StartDate  string                 `json:"start_date"`
	EndDate    string                 `json:"end_date"`
	DataPoints int                    `json:"data_points"`
	Series     map[string]PriceSeries `json:"series"`
	Warnings   []Warning              `json:"warnings,omitempty"`
}

// TickersResponse lists the tradeable symbols
type TickersResponse struct {
	Stocks   []string  `json:"stocks"`
	REITs    []string  `json:"reits"`
	All      []string  `json:"all"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
