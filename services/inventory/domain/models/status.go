package models

// StockStatus is the denormalised availability label stored beside the stock count.
type StockStatus string

const (
	StatusInStock    StockStatus = "In Stock"
	StatusLowStock   StockStatus = "Low Stock"
	StatusOutOfStock StockStatus = "Out of Stock"
)

// LowStockThreshold is the highest stock count still reported as Low Stock.
const LowStockThreshold = 10

// DeriveStatus is the only source of an item's status.
func DeriveStatus(currentStock int) StockStatus {
	switch {
	case currentStock <= 0:
		return StatusOutOfStock
	case currentStock <= LowStockThreshold:
		return StatusLowStock
	default:
		return StatusInStock
	}
}

// ParseStockStatus reports whether s names a known status.
func ParseStockStatus(s string) (StockStatus, bool) {
	switch st := StockStatus(s); st {
	case StatusInStock, StatusLowStock, StatusOutOfStock:
		return st, true
	default:
		return "", false
	}
}

func (s StockStatus) String() string {
	return string(s)
}
