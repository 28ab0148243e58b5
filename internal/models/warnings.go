package models

// WarningCode categorizes warnings by subsystem.
// W1xxx = catalog, W2xxx = pricing, W3xxx = calculation, W4xxx = selection.
type WarningCode string

const (
	WarnCatalogUnavailable WarningCode = "W1001" // reference file missing or malformed, list replaced by an empty one
	WarnPriceFetchFailed   WarningCode = "W2001" // provider failed for a symbol, column left empty
	WarnAssetExcluded      WarningCode = "W3001" // no usable price in range, asset left out of the aggregate
	WarnNoAggregate        WarningCode = "W3002" // no asset produced a return
	WarnRangeClamped       WarningCode = "W4001" // requested dates adjusted to the available history
)

// Warning represents a non-fatal issue encountered during processing.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}
