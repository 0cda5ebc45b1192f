package usecase

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"echosign-bridge/internal/esign"
	"echosign-bridge/internal/infrastructure/redis"
)

const (
	// Redis key prefix for the agreement status mirror
	agreementStatusKeyPrefix = "echosign:agreement:"
)

// AgreementSummary is the bridge's flattened view of an agreement listing
// entry.
type AgreementSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Status       string    `json:"status"`
	Date         time.Time `json:"date,omitempty"`
	Participants []string  `json:"participants,omitempty"`
}

type AgreementUsecase interface {
	// ListAgreements lists agreements from Echosign and mirrors their
	// statuses to Redis
	ListAgreements(ctx context.Context, query string) ([]AgreementSummary, error)
	// GetCachedStatus reads an agreement status from the Redis mirror
	GetCachedStatus(ctx context.Context, agreementID string) (string, error)
	CancelAgreement(ctx context.Context, agreementID string) error
	SendReminder(ctx context.Context, agreementID, comment string) error
}

type agreementUsecase struct {
	session     *esign.Session
	redisClient *redis.RedisClient
	logger      *zap.Logger
}

func NewAgreementUsecase(session *esign.Session, redisClient *redis.RedisClient, logger *zap.Logger) AgreementUsecase {
	return &agreementUsecase{
		session:     session,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (u *agreementUsecase) ListAgreements(ctx context.Context, query string) ([]AgreementSummary, error) {
	u.logger.Info("Listing agreements", zap.String("query", query))

	agreements, err := u.session.ListAgreements(ctx, query)
	if err != nil {
		u.logger.Error("Failed to list agreements", zap.Error(err))
		return nil, err
	}

	summaries := make([]AgreementSummary, 0, len(agreements))
	for _, agreement := range agreements {
		summary := AgreementSummary{
			ID:     agreement.ID,
			Name:   agreement.Name,
			Status: string(agreement.Status),
			Date:   agreement.Date,
		}
		for _, user := range agreement.Users {
			summary.Participants = append(summary.Participants, user.Email)
		}
		summaries = append(summaries, summary)

		// Mirror the status to Redis so status lookups don't round-trip to
		// the vendor. Cache errors are logged, never surfaced.
		statusKey := agreementStatusKeyPrefix + agreement.ID
		if err := u.redisClient.Set(ctx, statusKey, string(agreement.Status), 0); err != nil {
			u.logger.Warn("Failed to mirror agreement status to Redis",
				zap.String("agreement_id", agreement.ID),
				zap.Error(err),
			)
		}
	}

	u.logger.Info("Successfully listed agreements", zap.Int("count", len(summaries)))

	return summaries, nil
}

func (u *agreementUsecase) GetCachedStatus(ctx context.Context, agreementID string) (string, error) {
	if agreementID == "" {
		return "", fmt.Errorf("agreement id is required")
	}

	status, err := u.redisClient.Get(ctx, agreementStatusKeyPrefix+agreementID)
	if err != nil {
		return "", fmt.Errorf("agreement status not found in cache: %w", err)
	}

	return status, nil
}

func (u *agreementUsecase) CancelAgreement(ctx context.Context, agreementID string) error {
	if agreementID == "" {
		return fmt.Errorf("agreement id is required")
	}

	u.logger.Info("Cancelling agreement", zap.String("agreement_id", agreementID))

	if err := u.session.Agreement(agreementID).Cancel(ctx); err != nil {
		u.logger.Error("Failed to cancel agreement",
			zap.String("agreement_id", agreementID),
			zap.Error(err),
		)
		return err
	}

	// The mirror entry is stale after a cancel; drop it so the next status
	// lookup misses instead of reporting the old state.
	if err := u.redisClient.Del(ctx, agreementStatusKeyPrefix+agreementID); err != nil {
		u.logger.Warn("Failed to invalidate cached agreement status",
			zap.String("agreement_id", agreementID),
			zap.Error(err),
		)
	}

	u.logger.Info("Agreement cancelled", zap.String("agreement_id", agreementID))

	return nil
}

func (u *agreementUsecase) SendReminder(ctx context.Context, agreementID, comment string) error {
	if agreementID == "" {
		return fmt.Errorf("agreement id is required")
	}

	u.logger.Info("Sending reminder",
		zap.String("agreement_id", agreementID),
		zap.Bool("has_comment", comment != ""),
	)

	if err := u.session.Agreement(agreementID).SendReminder(ctx, comment); err != nil {
		u.logger.Error("Failed to send reminder",
			zap.String("agreement_id", agreementID),
			zap.Error(err),
		)
		return err
	}

	return nil
}
