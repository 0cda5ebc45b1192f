package esign

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"echosign-bridge/internal/infrastructure/httpclient"
)

// transientDocumentExpiry is how long Echosign keeps an uploaded transient
// document before garbage-collecting it remotely. The client never deletes
// transient documents itself.
const transientDocumentExpiry = 7 * 24 * time.Hour

// TransientDocument is a short-lived uploaded file staged for inclusion in an
// agreement. Echosign deletes it after seven days.
type TransientDocument struct {
	FileName string
	MimeType string

	// DocumentID is assigned by Echosign on upload and references the file
	// when creating agreements.
	DocumentID string
	// ExpirationDate is not provided by Echosign; it is computed locally as
	// upload time plus seven days for convenience.
	ExpirationDate time.Time
}

type transientDocumentResponse struct {
	TransientDocumentID string `json:"transientDocumentId"`
}

// UploadTransientDocument reads the file content and immediately uploads it
// as a multipart POST. A 2xx response without a transientDocumentId is
// treated as an API error. When mimeType is empty, application/pdf is
// assumed.
func UploadTransientDocument(ctx context.Context, session *Session, fileName string, content io.Reader, mimeType string) (*TransientDocument, error) {
	if mimeType == "" {
		mimeType = "application/pdf"
	}

	data, err := io.ReadAll(content)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	files := map[string]httpclient.FileUpload{
		"File": {
			Filename: fileName,
			MimeType: mimeType,
			Content:  data,
		},
	}

	var response transientDocumentResponse
	err = session.client.PostMultipart(ctx, "transientDocuments",
		map[string]string{"Mime-Type": mimeType},
		files,
		&response,
	)
	if err != nil {
		return nil, err
	}

	// If there is no document ID, something went wrong remotely even though
	// the call succeeded.
	if response.TransientDocumentID == "" {
		return nil, &httpclient.APIError{
			StatusCode: http.StatusOK,
			Message:    "response did not contain a transientDocumentId",
		}
	}

	return &TransientDocument{
		FileName:       fileName,
		MimeType:       mimeType,
		DocumentID:     response.TransientDocumentID,
		ExpirationDate: time.Now().Add(transientDocumentExpiry),
	}, nil
}

func (d *TransientDocument) String() string {
	return d.FileName
}

// AgreementDocument is a read-only document returned from an agreement's
// document listing. Supporting documents carry the form field they were
// uploaded through.
type AgreementDocument struct {
	ID         string
	MimeType   string
	Name       string
	NumPages   int
	Supporting bool
	FieldName  string
}
