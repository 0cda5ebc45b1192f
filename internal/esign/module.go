package esign

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"echosign-bridge/internal/config"
	"echosign-bridge/internal/infrastructure/httpclient"
)

// NewSessionFromConfig adapts the library constructor to the fx graph: the
// bridge gets one session for its whole lifetime, built from the echosign
// config section with the Postgres-backed call audit attached.
func NewSessionFromConfig(cfg *config.Config, logSaver httpclient.APILogSaver, logger *zap.Logger) (*Session, error) {
	return NewSession(context.Background(), Options{
		AccessToken:  cfg.Echosign.AccessToken,
		UserID:       cfg.Echosign.UserID,
		UserEmail:    cfg.Echosign.UserEmail,
		DiscoveryURL: cfg.Echosign.DiscoveryURL,
		Timeout:      cfg.Echosign.Timeout,
		Logger:       logger,
		LogSaver:     logSaver,
	})
}

var Module = fx.Module("esign",
	fx.Provide(NewSessionFromConfig),
)
