package handlers

import (
	"net/http"

	"github.com/havenops/stockledger/pkg/errhttp"
	"github.com/havenops/stockledger/pkg/httpx"
	appsvcs "github.com/havenops/stockledger/services/inventory/application/services"
)

// ListItemsHandler handles GET /inventory.
type ListItemsHandler struct {
	svc *appsvcs.Services
}

// NewListItemsHandler returns a ListItemsHandler backed by the given services.
func NewListItemsHandler(svc *appsvcs.Services) *ListItemsHandler {
	return &ListItemsHandler{svc: svc}
}

// Execute lists every inventory item, newest first.
//
//	@Summary		List inventory
//	@Description	Returns every inventory item, newest first. Not audited.
//	@Tags			inventory
//	@Produce		json
//	@Success		200	{object}	ItemListEnvelope
//	@Failure		500	{object}	ErrorResponse
//	@Router			/inventory [get]
func (h *ListItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Inventory.List(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	records := make([]ItemRecord, 0, len(items))
	for _, item := range items {
		records = append(records, toRecord(item))
	}
	httpx.OK(w, http.StatusOK, ItemListResponse{Records: records, Count: len(records)})
}
