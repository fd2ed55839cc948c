package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/havenops/stockledger/pkg/errhttp"
	"github.com/havenops/stockledger/pkg/httpx"
	appsvcs "github.com/havenops/stockledger/services/inventory/application/services"
)

// ItemIDParam is the route parameter carrying the item ID.
const ItemIDParam = "itemID"

// GetItemHandler handles GET /inventory/{itemID}.
type GetItemHandler struct {
	svc *appsvcs.Services
}

// NewGetItemHandler returns a GetItemHandler backed by the given services.
func NewGetItemHandler(svc *appsvcs.Services) *GetItemHandler {
	return &GetItemHandler{svc: svc}
}

// Execute returns one item and records a VIEW audit entry.
//
//	@Summary		Get inventory item
//	@Description	Returns one item. Every successful read is audited.
//	@Tags			inventory
//	@Produce		json
//	@Param			itemID	path		string	true	"Item ID (UUID)"
//	@Success		200		{object}	ItemEnvelope
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/{itemID} [get]
func (h *GetItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Inventory.GetByID(r.Context(), actorFrom(r), chi.URLParam(r, ItemIDParam))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, ItemResponse{Record: toRecord(item)})
}
