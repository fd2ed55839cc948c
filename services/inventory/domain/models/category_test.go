package models

import (
	"errors"
	"testing"

	"github.com/havenops/stockledger/services/inventory/domain"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories() {
		got, err := ParseCategory(c.String())
		if err != nil {
			t.Fatalf("ParseCategory(%q): unexpected error: %v", c, err)
		}
		if got != c {
			t.Fatalf("ParseCategory(%q) = %q", c, got)
		}
	}

	for _, s := range []string{"Not A Category", "", "guest amenities", " Add-ons"} {
		_, err := ParseCategory(s)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("ParseCategory(%q): expected ErrInvalidInput, got %v", s, err)
		}
		if field, _, _ := domain.InvalidField(err); field != "category" {
			t.Fatalf("ParseCategory(%q): expected field category, got %q", s, field)
		}
	}
}

func TestCategories_ReturnsCopy(t *testing.T) {
	cs := Categories()
	if len(cs) != 6 {
		t.Fatalf("expected 6 categories, got %d", len(cs))
	}
	cs[0] = "Mutated"
	if Categories()[0] != CategoryGuestAmenities {
		t.Fatal("vocabulary must not be mutable through Categories()")
	}
}
