package handlers

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/havenops/stockledger/services/inventory/domain/models"
)

func TestPrice_Unmarshal(t *testing.T) {
	tests := []struct {
		in      string
		valid   bool
		want    string
		wantErr bool
	}{
		{`{"price_per_unit": 2.35}`, true, "2.35", false},
		{`{"price_per_unit": "12.50"}`, true, "12.5", false},
		{`{"price_per_unit": null}`, false, "", false},
		{`{}`, false, "", false},
		{`{"price_per_unit": "cheap"}`, false, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var req ItemRequest
			err := json.Unmarshal([]byte(tt.in), &req)
			if tt.wantErr {
				var typeErr *json.UnmarshalTypeError
				if err == nil || !errors.As(err, &typeErr) || typeErr.Field != "price_per_unit" {
					t.Fatalf("expected type error on price_per_unit, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.PricePerUnit.Valid != tt.valid {
				t.Fatalf("valid = %v, want %v", req.PricePerUnit.Valid, tt.valid)
			}
			if tt.valid && req.PricePerUnit.Decimal.String() != tt.want {
				t.Fatalf("price = %s, want %s", req.PricePerUnit.Decimal, tt.want)
			}
		})
	}
}

func TestToRecord_PriceAsNumber(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	item := &models.Item{
		ID:            uuid.New(),
		Name:          "Hand Soap",
		Category:      models.CategoryBathroomSupplies,
		CurrentStock:  5,
		MinimumStock:  2,
		UnitType:      "pcs",
		PricePerUnit:  decimal.NewNullDecimal(decimal.RequireFromString("2.3")),
		LastRestocked: now,
		Status:        models.StatusLowStock,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	b, err := json.Marshal(toRecord(item))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(b), `"price_per_unit":2.30`) {
		t.Fatalf("expected numeric price, got %s", b)
	}

	item.PricePerUnit = decimal.NullDecimal{}
	b, _ = json.Marshal(toRecord(item))
	if !strings.Contains(string(b), `"price_per_unit":null`) {
		t.Fatalf("expected null price, got %s", b)
	}
}
