package models

import (
	"strings"

	"github.com/havenops/stockledger/services/inventory/domain"
)

// Category is the closed set of inventory groupings used by housekeeping.
type Category string

const (
	CategoryGuestAmenities   Category = "Guest Amenities"
	CategoryBathroomSupplies Category = "Bathroom Supplies"
	CategoryCleaningSupplies Category = "Cleaning Supplies"
	CategoryLinensBedding    Category = "Linens & Bedding"
	CategoryKitchenSupplies  Category = "Kitchen Supplies"
	CategoryAddOns           Category = "Add-ons"
)

var categories = []Category{
	CategoryGuestAmenities,
	CategoryBathroomSupplies,
	CategoryCleaningSupplies,
	CategoryLinensBedding,
	CategoryKitchenSupplies,
	CategoryAddOns,
}

// Categories returns the allowed categories in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory matches s exactly against the vocabulary.
func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", domain.InvalidInput("category", "must be one of: "+categoryList())
}

func categoryList() string {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func (c Category) String() string {
	return string(c)
}
