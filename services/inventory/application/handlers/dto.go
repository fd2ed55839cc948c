package handlers

import (
	"encoding/json"
	"net/http"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/havenops/stockledger/pkg/auth"
	"github.com/havenops/stockledger/services/inventory/domain/models"
)

// ItemRequest is the body for POST /inventory and PUT /inventory/{itemID}.
// Updates replace every mutable field, so both use the same shape.
type ItemRequest struct {
	ItemName     string `json:"item_name"      validate:"required"         example:"Hand Soap"`
	Category     string `json:"category"       validate:"required"         example:"Bathroom Supplies" enums:"Guest Amenities,Bathroom Supplies,Cleaning Supplies,Linens & Bedding,Kitchen Supplies,Add-ons"`
	CurrentStock *int   `json:"current_stock"  validate:"required,gte=0"   example:"5"`
	MinimumStock *int   `json:"minimum_stock"  validate:"required,gte=0"   example:"2"`
	UnitType     string `json:"unit_type"      validate:"required"         example:"pcs"`
	PricePerUnit Price  `json:"price_per_unit" swaggertype:"number"        example:"2.35"`
	// Status is accepted from older clients and ignored; it is always
	// derived from current_stock.
	Status string `json:"status,omitempty" example:"In Stock"`
} // @name ItemRequest

func (req *ItemRequest) input() models.ItemInput {
	return models.ItemInput{
		Name:         req.ItemName,
		Category:     req.Category,
		CurrentStock: *req.CurrentStock,
		MinimumStock: *req.MinimumStock,
		UnitType:     req.UnitType,
		PricePerUnit: req.PricePerUnit.NullDecimal,
		StatusHint:   req.Status,
	}
}

// Price accepts a JSON number, a decimal string, or null.
type Price struct {
	decimal.NullDecimal
}

func (p *Price) UnmarshalJSON(b []byte) error {
	if err := p.NullDecimal.UnmarshalJSON(b); err != nil {
		return &json.UnmarshalTypeError{Value: string(b), Type: reflect.TypeOf(0.0)}
	}
	return nil
}

// ItemRecord is one inventory item as returned by the API.
type ItemRecord struct {
	ItemID        uuid.UUID    `json:"item_id"        example:"123e4567-e89b-12d3-a456-426614174000"`
	ItemName      string       `json:"item_name"      example:"Hand Soap"`
	Category      string       `json:"category"       example:"Bathroom Supplies"`
	CurrentStock  int          `json:"current_stock"  example:"5"`
	MinimumStock  int          `json:"minimum_stock"  example:"2"`
	UnitType      string       `json:"unit_type"      example:"pcs"`
	PricePerUnit  *json.Number `json:"price_per_unit" swaggertype:"number" example:"2.35"`
	LastRestocked time.Time    `json:"last_restocked" example:"2024-01-15T10:30:00Z"`
	Status        string       `json:"status"         example:"Low Stock" enums:"In Stock,Low Stock,Out of Stock"`
	CreatedAt     time.Time    `json:"created_at"     example:"2024-01-15T10:30:00Z"`
	UpdatedAt     time.Time    `json:"updated_at"     example:"2024-01-15T10:30:00Z"`
} // @name ItemRecord

func toRecord(item *models.Item) ItemRecord {
	rec := ItemRecord{
		ItemID:        item.ID,
		ItemName:      item.Name.String(),
		Category:      item.Category.String(),
		CurrentStock:  item.CurrentStock,
		MinimumStock:  item.MinimumStock,
		UnitType:      item.UnitType,
		LastRestocked: item.LastRestocked,
		Status:        item.Status.String(),
		CreatedAt:     item.CreatedAt,
		UpdatedAt:     item.UpdatedAt,
	}
	if item.PricePerUnit.Valid {
		n := json.Number(item.PricePerUnit.Decimal.StringFixed(2))
		rec.PricePerUnit = &n
	}
	return rec
}

// ItemListResponse is the data of GET /inventory.
type ItemListResponse struct {
	Records []ItemRecord `json:"records"`
	Count   int          `json:"count" example:"1"`
} // @name ItemListResponse

// ItemResponse is the data of single-item responses.
type ItemResponse struct {
	Record ItemRecord `json:"record"`
} // @name ItemResponse

// ItemEnvelope documents a successful single-item response.
type ItemEnvelope struct {
	Success bool         `json:"success" example:"true"`
	Data    ItemResponse `json:"data"`
} // @name ItemEnvelope

// ItemListEnvelope documents a successful list response.
type ItemListEnvelope struct {
	Success bool             `json:"success" example:"true"`
	Data    ItemListResponse `json:"data"`
} // @name ItemListEnvelope

// EmptyEnvelope documents a successful response without data.
type EmptyEnvelope struct {
	Success bool     `json:"success" example:"true"`
	Data    struct{} `json:"data"`
} // @name EmptyEnvelope

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Success bool              `json:"success" example:"false"`
	Error   string            `json:"error"   example:"invalid input"`
	Fields  map[string]string `json:"fields,omitempty"`
} // @name ErrorResponse

func actorFrom(r *http.Request) models.Actor {
	c := auth.CallerFromRequest(r)
	return models.Actor{
		EmployeeID: c.EmployeeID,
		IPAddress:  c.IPAddress,
		UserAgent:  c.UserAgent,
	}
}
