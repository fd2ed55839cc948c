package services

import (
	"fmt"

	"github.com/havenops/stockledger/services/inventory/domain/models"
)

// Audit descriptions embed the item's name and category, plus the resulting
// stock for create and update, so an entry reads on its own.

func DescribeView(item *models.Item) string {
	return fmt.Sprintf("Viewed inventory item %q (%s)", item.Name, item.Category)
}

func DescribeCreate(item *models.Item) string {
	return fmt.Sprintf("Added inventory item %q (%s) with %d %s in stock, status %s",
		item.Name, item.Category, item.CurrentStock, item.UnitType, item.Status)
}

// DescribeUpdate reports the stock transition when it changed.
func DescribeUpdate(before, after *models.Item) string {
	if before.CurrentStock == after.CurrentStock {
		return fmt.Sprintf("Updated inventory item %q (%s): %d %s in stock, status %s",
			after.Name, after.Category, after.CurrentStock, after.UnitType, after.Status)
	}
	return fmt.Sprintf("Updated inventory item %q (%s): stock %d -> %d %s, status %s",
		after.Name, after.Category, before.CurrentStock, after.CurrentStock, after.UnitType, after.Status)
}

func DescribeDelete(item *models.Item) string {
	return fmt.Sprintf("Deleted inventory item %q (%s)", item.Name, item.Category)
}
