package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/havenops/stockledger/pkg/errhttp"
	"github.com/havenops/stockledger/pkg/httpx"
	pkgvalidator "github.com/havenops/stockledger/pkg/validator"
	appsvcs "github.com/havenops/stockledger/services/inventory/application/services"
	"github.com/havenops/stockledger/services/inventory/domain"
)

// PutItemHandler handles PUT /inventory/{itemID} requests.
type PutItemHandler struct {
	svc *appsvcs.Services
}

// NewPutItemHandler returns a PutItemHandler backed by the given services.
func NewPutItemHandler(svc *appsvcs.Services) *PutItemHandler {
	return &PutItemHandler{svc: svc}
}

// Execute replaces an item's mutable fields.
//
//	@Summary		Update inventory item
//	@Description	Replaces every mutable field under a row lock. Status is re-derived; last_restocked is unchanged.
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			itemID	path		string		true	"Item ID (UUID)"
//	@Param			request	body		ItemRequest	true	"New item values"
//	@Success		200		{object}	ItemEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse	"Item locked by another request; retry"
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory/{itemID} [put]
func (h *PutItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	if !actor.Authenticated() {
		errhttp.WriteError(w, domain.ErrUnauthorized)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[ItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Inventory.Update(r.Context(), actor, chi.URLParam(r, ItemIDParam), req.input())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, ItemResponse{Record: toRecord(item)})
}
