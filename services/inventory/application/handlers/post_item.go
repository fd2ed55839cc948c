package handlers

import (
	"net/http"

	"github.com/havenops/stockledger/pkg/errhttp"
	"github.com/havenops/stockledger/pkg/httpx"
	pkgvalidator "github.com/havenops/stockledger/pkg/validator"
	appsvcs "github.com/havenops/stockledger/services/inventory/application/services"
	"github.com/havenops/stockledger/services/inventory/domain"
)

// PostItemHandler handles POST /inventory requests.
type PostItemHandler struct {
	svc *appsvcs.Services
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services) *PostItemHandler {
	return &PostItemHandler{svc: svc}
}

// Execute creates a new inventory item.
//
//	@Summary		Create inventory item
//	@Description	Creates an item. Status is derived from current_stock; a client-supplied status is ignored.
//	@Tags			inventory
//	@Accept			json
//	@Produce		json
//	@Param			request	body		ItemRequest	true	"Item to create"
//	@Success		201		{object}	ItemEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Security		BearerAuth
//	@Router			/inventory [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	// Identity is checked before the body is read.
	actor := actorFrom(r)
	if !actor.Authenticated() {
		errhttp.WriteError(w, domain.ErrUnauthorized)
		return
	}

	req, ok := pkgvalidator.ValidateRequest[ItemRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Inventory.Create(r.Context(), actor, req.input())
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.OK(w, http.StatusCreated, ItemResponse{Record: toRecord(item)})
}
