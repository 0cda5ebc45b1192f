package repository

import (
	"go.uber.org/fx"

	"echosign-bridge/internal/infrastructure/httpclient"
)

var Module = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			NewAPILogRepository,
			fx.As(new(httpclient.APILogSaver)),
		),
	),
)
