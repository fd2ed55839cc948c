package app

import (
	"github.com/havenops/stockledger/pkg/auth"
	"github.com/havenops/stockledger/pkg/cache"
	"github.com/havenops/stockledger/pkg/config"
	"github.com/havenops/stockledger/pkg/database"
	"github.com/havenops/stockledger/pkg/events"
	"github.com/havenops/stockledger/pkg/logger"
)

// Application holds shared infrastructure dependencies for all services.
// Pass to each service's Routes function during server initialization.
//
// Logging: app.Logger is backed by a trace-aware handler. Use the context
// methods and trace_id, span_id, and request_id are injected automatically:
//
//	app.Logger.InfoContext(ctx, "item updated", "item_id", id)
//	app.Logger.ErrorContext(ctx, "failed to save", "error", err)
//
// Use app.Logger.Info/Error (no context) only for startup and shutdown messages.
type Application struct {
	Config   *config.Config
	Db       *database.Database
	Logger   logger.Logger
	EventBus *events.EventBus // nil disables change events
	Redis    *cache.RedisClient
	Identity auth.IdentityProvider // resolves the calling employee; nil in worker process
}
