package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/havenops/stockledger/pkg/errhttp"
	"github.com/havenops/stockledger/pkg/httpx"
	appsvcs "github.com/havenops/stockledger/services/inventory/application/services"
)

// DeleteItemHandler handles DELETE /inventory/{itemID}.
type DeleteItemHandler struct {
	svc *appsvcs.Services
}

// NewDeleteItemHandler returns a DeleteItemHandler backed by the given services.
func NewDeleteItemHandler(svc *appsvcs.Services) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc}
}

// Execute removes an item.
//
//	@Summary		Delete inventory item
//	@Description	Removes an item under a row lock. Its audit history is kept.
//	@Tags			inventory
//	@Produce		json
//	@Param			itemID	path		string	true	"Item ID (UUID)"
//	@Success		200		{object}	EmptyEnvelope
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Item locked by another request; retry"
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/{itemID} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Inventory.Delete(r.Context(), actorFrom(r), chi.URLParam(r, ItemIDParam)); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, struct{}{})
}
