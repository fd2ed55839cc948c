package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/havenops/stockledger/pkg/app"
	"github.com/havenops/stockledger/pkg/auth"
	"github.com/havenops/stockledger/pkg/logger"
	"github.com/havenops/stockledger/services/inventory/application/handlers"
	appsvcs "github.com/havenops/stockledger/services/inventory/application/services"
)

// InventoryRoutes registers inventory endpoints on the provided chi router.
func InventoryRoutes(r chi.Router, a *app.Application) {
	Mount(r, appsvcs.New(a), a.Identity, a.Logger)
}

// Mount registers the inventory endpoints backed by svcs. identity may be
// nil, in which case every request is anonymous.
func Mount(r chi.Router, svcs *appsvcs.Services, identity auth.IdentityProvider, log logger.Logger) {
	r.Route("/inventory", func(r chi.Router) {
		r.Use(auth.Authenticate(identity, log))

		r.Get("/", handlers.NewListItemsHandler(svcs).Execute)
		r.Post("/", handlers.NewPostItemHandler(svcs).Execute)
		r.Route("/{"+handlers.ItemIDParam+"}", func(r chi.Router) {
			r.Get("/", handlers.NewGetItemHandler(svcs).Execute)
			r.Put("/", handlers.NewPutItemHandler(svcs).Execute)
			r.Delete("/", handlers.NewDeleteItemHandler(svcs).Execute)
		})
	})
}
