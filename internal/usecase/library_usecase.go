package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"echosign-bridge/internal/esign"
)

// LibraryDocumentSummary is the bridge's flattened view of a library
// template listing entry.
type LibraryDocumentSummary struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Scope          string    `json:"scope"`
	ModifiedDate   time.Time `json:"modified_date,omitempty"`
	Document       bool      `json:"document"`
	FormFieldLayer bool      `json:"form_field_layer"`
}

type LibraryUsecase interface {
	ListLibraryDocuments(ctx context.Context) ([]LibraryDocumentSummary, error)
}

type libraryUsecase struct {
	session *esign.Session
	logger  *zap.Logger
}

func NewLibraryUsecase(session *esign.Session, logger *zap.Logger) LibraryUsecase {
	return &libraryUsecase{
		session: session,
		logger:  logger,
	}
}

func (u *libraryUsecase) ListLibraryDocuments(ctx context.Context) ([]LibraryDocumentSummary, error) {
	u.logger.Info("Listing library documents")

	documents, err := u.session.ListLibraryDocuments(ctx)
	if err != nil {
		u.logger.Error("Failed to list library documents", zap.Error(err))
		return nil, err
	}

	summaries := make([]LibraryDocumentSummary, 0, len(documents))
	for _, doc := range documents {
		summaries = append(summaries, LibraryDocumentSummary{
			ID:             doc.ID,
			Name:           doc.Name,
			Scope:          string(doc.Scope),
			ModifiedDate:   doc.ModifiedDate,
			Document:       doc.Document,
			FormFieldLayer: doc.FormFieldLayer,
		})
	}

	u.logger.Info("Successfully listed library documents", zap.Int("count", len(summaries)))

	return summaries, nil
}
