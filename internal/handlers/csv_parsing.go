package handlers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/epeers/dashboard/internal/models"
	"github.com/epeers/dashboard/internal/services"
)

// ErrBadCSV marks an uploaded file that could not be parsed
var ErrBadCSV = errors.New("malformed CSV")

// WeightRow is one line of an uploaded weights file
type WeightRow struct {
	Symbol string
	Weight float64
}

// ParseWeightsCSV parses a CSV file with symbol and weight columns. Weights
// are percentages (60 = 60%). Column names are case-insensitive and "ticker"
// is accepted for "symbol". Blank symbols are skipped; a repeated symbol is
// an error.
func ParseWeightsCSV(r io.Reader) ([]WeightRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	// Read header row
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", ErrBadCSV, err)
	}

	colIdx := make(map[string]int)
	for i, col := range header {
		colIdx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	if idx, ok := colIdx["ticker"]; ok {
		if _, has := colIdx["symbol"]; !has {
			colIdx["symbol"] = idx
		}
	}

	for _, col := range []string{"symbol", "weight"} {
		if _, ok := colIdx[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column: %s", ErrBadCSV, col)
		}
	}

	var rows []WeightRow
	seen := make(map[string]bool)
	rowNum := 1 // header is row 1, data starts at row 2
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrBadCSV, rowNum+1, err)
		}
		rowNum++

		symbol := strings.ToUpper(strings.TrimSpace(record[colIdx["symbol"]]))
		if symbol == "" {
			continue
		}
		if seen[symbol] {
			return nil, fmt.Errorf("%w: row %d: duplicate symbol %s", ErrBadCSV, rowNum, symbol)
		}
		seen[symbol] = true

		weightStr := strings.TrimSuffix(strings.TrimSpace(record[colIdx["weight"]]), "%")
		weight, err := strconv.ParseFloat(weightStr, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: invalid weight %q", ErrBadCSV, rowNum, weightStr)
		}

		rows = append(rows, WeightRow{Symbol: symbol, Weight: weight})
	}

	return rows, nil
}

// ParseCapital reads a capital amount from form input. Empty means the
// configured default.
func ParseCapital(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return nil, fmt.Errorf("%w: %q", services.ErrInvalidCapital, raw)
	}
	return &v, nil
}

// weightRequest turns parsed rows into a weighted performance request
func weightRequest(rows []WeightRow) ([]string, models.WeightAssignment) {
	assets := make([]string, 0, len(rows))
	weights := make(models.WeightAssignment, len(rows))
	for _, r := range rows {
		assets = append(assets, r.Symbol)
		weights[r.Symbol] = r.Weight
	}
	return assets, weights
}
