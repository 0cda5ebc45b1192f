package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"echosign-bridge/internal/esign"
)

// RegisterWebhookRequest is the bridge's payload for registering a webhook
// with Echosign. Receiving the resulting callbacks is the caller's concern.
type RegisterWebhookRequest struct {
	Name                   string   `json:"name"`
	URL                    string   `json:"url"`
	Scope                  string   `json:"scope"`
	Events                 []string `json:"events"`
	ApplicationName        string   `json:"application_name,omitempty"`
	ApplicationDisplayName string   `json:"application_display_name,omitempty"`
}

type WebhookUsecase interface {
	// Register creates a webhook registration on Echosign and returns the
	// assigned id
	Register(ctx context.Context, req *RegisterWebhookRequest) (string, error)
	// Unregister deletes a webhook registration by id
	Unregister(ctx context.Context, webhookID string) error
}

type webhookUsecase struct {
	session *esign.Session
	logger  *zap.Logger
}

func NewWebhookUsecase(session *esign.Session, logger *zap.Logger) WebhookUsecase {
	return &webhookUsecase{
		session: session,
		logger:  logger,
	}
}

var validWebhookScopes = map[string]bool{
	string(esign.WebhookScopeAccount):  true,
	string(esign.WebhookScopeGroup):    true,
	string(esign.WebhookScopeUser):     true,
	string(esign.WebhookScopeResource): true,
}

func (u *webhookUsecase) Register(ctx context.Context, req *RegisterWebhookRequest) (string, error) {
	// Validate request
	if req.Name == "" {
		return "", fmt.Errorf("name is required")
	}
	if req.URL == "" {
		return "", fmt.Errorf("url is required")
	}
	if !validWebhookScopes[req.Scope] {
		return "", fmt.Errorf("scope must be one of: ACCOUNT, GROUP, USER, RESOURCE")
	}
	if len(req.Events) == 0 {
		return "", fmt.Errorf("at least one event is required")
	}

	u.logger.Info("Registering webhook",
		zap.String("name", req.Name),
		zap.String("url", req.URL),
		zap.String("scope", req.Scope),
		zap.Int("events_count", len(req.Events)),
	)

	events := make([]esign.WebhookEvent, 0, len(req.Events))
	for _, event := range req.Events {
		events = append(events, esign.WebhookEvent(event))
	}

	webhook := esign.NewWebhook(u.session)
	err := webhook.Create(ctx, esign.CreateWebhookParams{
		Name:                   req.Name,
		Scope:                  esign.WebhookScope(req.Scope),
		Events:                 events,
		URL:                    req.URL,
		ApplicationName:        req.ApplicationName,
		ApplicationDisplayName: req.ApplicationDisplayName,
	})
	if err != nil {
		u.logger.Error("Failed to register webhook",
			zap.String("name", req.Name),
			zap.Error(err),
		)
		return "", err
	}

	u.logger.Info("Webhook registered",
		zap.String("name", req.Name),
		zap.String("webhook_id", webhook.ID),
	)

	return webhook.ID, nil
}

func (u *webhookUsecase) Unregister(ctx context.Context, webhookID string) error {
	if webhookID == "" {
		return fmt.Errorf("webhook id is required")
	}

	u.logger.Info("Unregistering webhook", zap.String("webhook_id", webhookID))

	if err := u.session.Webhook(webhookID).Delete(ctx); err != nil {
		u.logger.Error("Failed to unregister webhook",
			zap.String("webhook_id", webhookID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
