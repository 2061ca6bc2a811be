package enums

import "fmt"

// StockEntryType labels the business reason behind a stock journal entry.
type StockEntryType string

const (
	StockEntryAddition   StockEntryType = "addition"
	StockEntrySale       StockEntryType = "sale"
	StockEntryReturn     StockEntryType = "return"
	StockEntryAdjustment StockEntryType = "adjustment"
)

var validStockEntryTypes = []StockEntryType{
	StockEntryAddition,
	StockEntrySale,
	StockEntryReturn,
	StockEntryAdjustment,
}

// String implements fmt.Stringer.
func (s StockEntryType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockEntryType.
func (s StockEntryType) IsValid() bool {
	for _, candidate := range validStockEntryTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockEntryType converts raw input into a StockEntryType.
func ParseStockEntryType(value string) (StockEntryType, error) {
	for _, candidate := range validStockEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock entry type %q", value)
}
