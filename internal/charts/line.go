package charts

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/vicanso/go-charts/v2"

	"github.com/epeers/dashboard/internal/models"
)

// ErrNothingToPlot is returned when no column of the table has a price
var ErrNothingToPlot = errors.New("no price data to plot")

const (
	chartWidth  = 1000
	chartHeight = 600
)

// Align lays every non-empty column of table on the union date axis. Interior
// gaps repeat the previous close and leading gaps take the first observed
// close, so each returned row has one value per date.
func Align(table models.PriceTable) ([]time.Time, []string, [][]float64) {
	dates := table.Dates()
	var names []string
	var values [][]float64

	for _, symbol := range table.Symbols() {
		series := table.Series[symbol]
		first, ok := series.First()
		if !ok {
			continue
		}
		row := make([]float64, len(dates))
		j := 0
		last := first.Close
		for i, d := range dates {
			if j < len(series) && series[j].Date.Equal(d) {
				last = series[j].Close
				j++
			}
			row[i] = last
		}
		names = append(names, symbol)
		values = append(values, row)
	}
	return dates, names, values
}

// RenderPriceChart draws the closing prices of table as a PNG line chart
func RenderPriceChart(table models.PriceTable, title string) ([]byte, error) {
	dates, names, values := Align(table)
	if len(values) == 0 || len(dates) == 0 {
		return nil, ErrNothingToPlot
	}

	xLabels := make([]string, len(dates))
	for i, d := range dates {
		xLabels[i] = d.Format("02/01/06")
	}

	yMin, yMax := math.Inf(1), math.Inf(-1)
	for _, row := range values {
		for _, v := range row {
			yMin = math.Min(yMin, v)
			yMax = math.Max(yMax, v)
		}
	}
	padding := (yMax - yMin) * 0.05
	if padding == 0 {
		padding = math.Max(math.Abs(yMax)*0.05, 1)
	}
	yMin -= padding
	yMax += padding

	// Determine split number for x-axis based on data points
	splitNum := 6
	if len(xLabels) <= 30 {
		splitNum = len(xLabels) / 3
		if splitNum < 3 {
			splitNum = 3
		}
	}

	seriesList := charts.NewSeriesListDataFromValues(values, charts.ChartTypeLine)
	for i := range seriesList {
		seriesList[i].Name = names[i]
	}

	p, err := charts.Render(
		charts.ChartOption{SeriesList: seriesList},
		charts.TitleTextOptionFunc(title),
		charts.XAxisOptionFunc(charts.XAxisOption{
			Data:        xLabels,
			SplitNumber: splitNum,
			BoundaryGap: charts.FalseFlag(),
		}),
		charts.YAxisOptionFunc(charts.YAxisOption{
			Min:         &yMin,
			Max:         &yMax,
			DivideCount: 5,
		}),
		charts.LegendOptionFunc(charts.LegendOption{Data: names}),
		charts.ThemeOptionFunc(charts.ThemeLight),
		charts.WidthOptionFunc(chartWidth),
		charts.HeightOptionFunc(chartHeight),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chart bytes: %w", err)
	}
	return buf, nil
}
