package handlers

import (
	"net/http"
	"strings"

	"github.com/epeers/dashboard/internal/models"
	"github.com/epeers/dashboard/internal/services"
	"github.com/gin-gonic/gin"
)

// DashboardHandler serves the ticker catalog, price tables, portfolio
// performance and the price chart.
type DashboardHandler struct {
	dashboardSvc *services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardSvc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardSvc: dashboardSvc,
	}
}

// Register mounts the dashboard routes on r
func (h *DashboardHandler) Register(r gin.IRouter) {
	r.GET("/tickers", h.Tickers)
	r.GET("/prices", h.Prices)
	r.POST("/portfolio/performance", h.Performance)
	r.POST("/portfolio/performance/upload", h.PerformanceUpload)
	r.GET("/portfolio/chart", h.Chart)
}

// Tickers handles GET /tickers
// @Summary List tradeable symbols
// @Description Stocks from the IBOV file, REITs from the IFIX file and their sorted union
// @Tags catalog
// @Produce json
// @Success 200 {object} models.TickersResponse
// @Router /tickers [get]
func (h *DashboardHandler) Tickers(c *gin.Context) {
	ctx, wc := services.NewWarningContext(c.Request.Context())
	cat := h.dashboardSvc.Tickers(ctx)

	c.JSON(http.StatusOK, models.TickersResponse{
		Stocks:   cat.Stocks,
		REITs:    cat.REITs,
		All:      cat.All,
		Warnings: wc.GetWarnings(),
	})
}

// Prices handles GET /prices
// @Summary Get closing prices
// @Description Closing prices of the selected symbols over a date sub-range of the history window
// @Tags prices
// @Produce json
// @Param symbols query string true "Comma separated symbols, e.g. PETR4.SA,VALE3"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {object} models.PricesResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /prices [get]
func (h *DashboardHandler) Prices(c *gin.Context) {
	symbols, start, end, ok := bindPriceQuery(c)
	if !ok {
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	table, r, err := h.dashboardSvc.Prices(ctx, symbols, start, end)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.PricesResponse{
		StartDate:  r.Start.Format(models.DateLayout),
		EndDate:    r.End.Format(models.DateLayout),
		DataPoints: services.DataPoints(table),
		Series:     table.Series,
		Warnings:   wc.GetWarnings(),
	})
}

// Performance handles POST /portfolio/performance
// @Summary Compute portfolio performance
// @Description Buy-and-hold returns per asset and for the portfolio, equal, average or user weighted
// @Tags portfolio
// @Accept json
// @Produce json
// @Param request body models.PerformanceRequest true "Selection, dates, strategy and weights"
// @Success 200 {object} models.PerformanceResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /portfolio/performance [post]
func (h *DashboardHandler) Performance(c *gin.Context) {
	var req models.PerformanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	h.evaluate(c, req)
}

// PerformanceUpload handles POST /portfolio/performance/upload
// @Summary Compute a user weighted portfolio from a CSV file
// @Description The weights file has a header line and symbol,weight rows in percent
// @Tags portfolio
// @Accept multipart/form-data
// @Produce json
// @Param weights formData file true "CSV with symbol and weight columns"
// @Param capital formData number false "Total capital"
// @Param start_date formData string false "Start date (YYYY-MM-DD)"
// @Param end_date formData string false "End date (YYYY-MM-DD)"
// @Success 200 {object} models.PerformanceResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /portfolio/performance/upload [post]
func (h *DashboardHandler) PerformanceUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("weights")
	if err != nil {
		badRequest(c, "weights file is required")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "failed to open weights file: "+err.Error())
		return
	}
	defer f.Close()

	rows, err := ParseWeightsCSV(f)
	if err != nil {
		writeError(c, err)
		return
	}

	capital, err := ParseCapital(c.PostForm("capital"))
	if err != nil {
		writeError(c, err)
		return
	}
	start, err := models.ParseFlexibleDate(c.PostForm("start_date"))
	if err != nil {
		badRequest(c, "start_date must be in YYYY-MM-DD format")
		return
	}
	end, err := models.ParseFlexibleDate(c.PostForm("end_date"))
	if err != nil {
		badRequest(c, "end_date must be in YYYY-MM-DD format")
		return
	}

	assets, weights := weightRequest(rows)
	h.evaluate(c, models.PerformanceRequest{
		Assets:    assets,
		StartDate: start,
		EndDate:   end,
		Strategy:  string(models.StrategyWeighted),
		Capital:   capital,
		Weights:   weights,
	})
}

func (h *DashboardHandler) evaluate(c *gin.Context, req models.PerformanceRequest) {
	ctx, wc := services.NewWarningContext(c.Request.Context())
	resp, err := h.dashboardSvc.Evaluate(ctx, req)
	if err != nil {
		writeError(c, err)
		return
	}
	resp.Warnings = wc.GetWarnings()
	c.JSON(http.StatusOK, resp)
}

// Chart handles GET /portfolio/chart
// @Summary Price chart
// @Description PNG line chart of the closing prices of the selected symbols
// @Tags prices
// @Produce png
// @Param symbols query string true "Comma separated symbols"
// @Param start_date query string false "Start date (YYYY-MM-DD)"
// @Param end_date query string false "End date (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 422 {object} models.ErrorResponse
// @Router /portfolio/chart [get]
func (h *DashboardHandler) Chart(c *gin.Context) {
	symbols, start, end, ok := bindPriceQuery(c)
	if !ok {
		return
	}

	ctx, wc := services.NewWarningContext(c.Request.Context())
	png, err := h.dashboardSvc.Chart(ctx, symbols, start, end)
	if err != nil {
		writeError(c, err)
		return
	}

	if warnings := wc.GetWarnings(); len(warnings) > 0 {
		codes := make([]string, 0, len(warnings))
		for _, w := range warnings {
			codes = append(codes, string(w.Code))
		}
		c.Header("X-Warning-Codes", strings.Join(codes, ","))
	}
	c.Data(http.StatusOK, "image/png", png)
}

// bindPriceQuery reads symbols and the optional date bounds, writing a 400
// on malformed input.
func bindPriceQuery(c *gin.Context) ([]string, models.FlexibleDate, models.FlexibleDate, bool) {
	var req models.PricesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, err.Error())
		return nil, models.FlexibleDate{}, models.FlexibleDate{}, false
	}

	start, err := models.ParseFlexibleDate(req.StartDate)
	if err != nil {
		badRequest(c, "start_date must be in YYYY-MM-DD format")
		return nil, models.FlexibleDate{}, models.FlexibleDate{}, false
	}
	end, err := models.ParseFlexibleDate(req.EndDate)
	if err != nil {
		badRequest(c, "end_date must be in YYYY-MM-DD format")
		return nil, models.FlexibleDate{}, models.FlexibleDate{}, false
	}

	return strings.Split(req.Symbols, ","), start, end, true
}
