package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/havenops/stockledger/services/inventory/domain"
)

func TestNewItemName(t *testing.T) {
	t.Run("valid single character", func(t *testing.T) {
		n, err := NewItemName("a")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.String() != "a" {
			t.Fatalf("expected %q, got %q", "a", n.String())
		}
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		n, err := NewItemName("  Bath Towel  ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n.String() != "Bath Towel" {
			t.Fatalf("expected %q, got %q", "Bath Towel", n.String())
		}
	})

	t.Run("255 multibyte characters", func(t *testing.T) {
		s := strings.Repeat("é", 255)
		if _, err := NewItemName(s); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	invalid := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"only whitespace", "   \t "},
		{"256 characters", strings.Repeat("x", 256)},
		{"control character", "Soap\x00Bar"},
	}
	for _, tt := range invalid {
		t.Run(tt.name+" returns error", func(t *testing.T) {
			_, err := NewItemName(tt.input)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			if field, _, _ := domain.InvalidField(err); field != "item_name" {
				t.Fatalf("expected field item_name, got %q", field)
			}
		})
	}
}
