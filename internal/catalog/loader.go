package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/epeers/dashboard/internal/models"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/encoding/charmap"
)

// B3 index portfolio exports carry a title and a header line on top and two
// totals lines at the bottom.
const (
	headerRows = 2
	footerRows = 2
)

// Catalog is the set of tradeable symbols offered to the user
type Catalog struct {
	Stocks   []string
	REITs    []string
	All      []string
	Warnings []models.Warning
}

// Contains reports whether symbol is listed in either reference file
func (c *Catalog) Contains(symbol string) bool {
	i := sort.SearchStrings(c.All, symbol)
	return i < len(c.All) && c.All[i] == symbol
}

// Loader reads the stock (IBOV) and REIT (IFIX) reference files
type Loader struct {
	stocksPath string
	reitsPath  string
	suffix     string
}

// NewLoader creates a new Loader
func NewLoader(stocksPath, reitsPath, suffix string) *Loader {
	return &Loader{
		stocksPath: stocksPath,
		reitsPath:  reitsPath,
		suffix:     suffix,
	}
}

// Load reads both files. A missing or malformed file is logged, recorded in
// Catalog.Warnings and replaced by an empty list.
func (l *Loader) Load() *Catalog {
	c := &Catalog{}
	c.Stocks = l.loadOrEmpty(c, l.stocksPath)
	c.REITs = l.loadOrEmpty(c, l.reitsPath)
	c.All = union(c.Stocks, c.REITs)
	return c
}

func (l *Loader) loadOrEmpty(c *Catalog, path string) []string {
	symbols, err := LoadFile(path, l.suffix)
	if err != nil {
		log.WithField("path", path).Errorf("failed to load reference file: %v", err)
		c.Warnings = append(c.Warnings, models.Warning{
			Code:    models.WarnCatalogUnavailable,
			Message: fmt.Sprintf("Reference file %s could not be read; its symbols are unavailable.", path),
		})
		return []string{}
	}
	log.WithField("path", path).Infof("loaded %d symbols", len(symbols))
	return symbols
}

// LoadFile opens path and parses it with ParseReferenceFile
func LoadFile(path, suffix string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return ParseReferenceFile(f, suffix)
}

// ParseReferenceFile parses a Latin-1, ';' separated reference file. The
// first column of every data row holds the ticker, which is trimmed and
// given the market suffix. The result keeps file order without duplicates.
func ParseReferenceFile(r io.Reader, suffix string) ([]string, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read reference file: %w", err)
	}

	if len(records) < headerRows+footerRows {
		return nil, fmt.Errorf("reference file has %d rows, expected at least %d", len(records), headerRows+footerRows)
	}

	seen := make(map[string]bool)
	symbols := []string{}
	for _, record := range records[headerRows : len(records)-footerRows] {
		if len(record) == 0 {
			continue
		}
		symbol := NormalizeSymbol(record[0], suffix)
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}

// NormalizeSymbol upper-cases raw and appends suffix unless already present
func NormalizeSymbol(raw, suffix string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	suffix = strings.ToUpper(suffix)
	if !strings.HasSuffix(s, suffix) {
		s += suffix
	}
	return s
}

func union(lists ...[]string) []string {
	seen := make(map[string]bool)
	all := []string{}
	for _, list := range lists {
		for _, s := range list {
			if !seen[s] {
				seen[s] = true
				all = append(all, s)
			}
		}
	}
	sort.Strings(all)
	return all
}
