package http

import (
	"go.uber.org/fx"

	"echosign-bridge/internal/delivery/http/handler"
	"echosign-bridge/internal/delivery/http/router"
)

var Module = fx.Module("http",
	fx.Provide(
		handler.NewAgreementHandler,
		handler.NewLibraryHandler,
		handler.NewWebhookHandler,
		handler.NewHealthHandler,
		router.NewRouter,
	),
)
