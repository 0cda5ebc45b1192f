package esign

import (
	"context"
	"fmt"
	"time"
)

// LibraryScope is the visibility of a library document.
type LibraryScope string

const (
	ScopePersonal LibraryScope = "PERSONAL"
	ScopeShared   LibraryScope = "SHARED"
	ScopeGlobal   LibraryScope = "GLOBAL"
)

// LibraryDocument is a reusable template stored in Echosign. When pulled from
// the bulk listing only the id, template type flags, modified date, name and
// scope are populated; the remaining fields require RetrieveComplete, which
// Locale triggers on first access.
type LibraryDocument struct {
	session *Session

	ID           string
	Name         string
	ModifiedDate time.Time
	Scope        LibraryScope

	// Template-layer flags from libraryTemplateTypes.
	Document       bool
	FormFieldLayer bool

	fullyRetrieved  bool
	locale          string
	status          string
	securityOptions []string
}

type libraryDocumentDetailResponse struct {
	Locale          string   `json:"locale"`
	Status          string   `json:"status"`
	SecurityOptions []string `json:"securityOptions"`
}

// RetrieveComplete fetches the remaining data for the library document, such
// as locale, status and security options, and marks it fully retrieved. It
// re-fetches on every call; the fully-retrieved flag only gates the lazy
// accessors.
func (d *LibraryDocument) RetrieveComplete(ctx context.Context) error {
	var response libraryDocumentDetailResponse
	if err := d.session.client.Get(ctx, "libraryDocuments/"+d.ID, &response); err != nil {
		return fmt.Errorf("failed to retrieve library document %s: %w", d.ID, err)
	}

	d.locale = response.Locale
	d.status = response.Status
	d.securityOptions = response.SecurityOptions
	d.fullyRetrieved = true

	return nil
}

// Locale returns the document locale, fetching the complete document on first
// access. The fully-retrieved flag transitions once and is never reset.
func (d *LibraryDocument) Locale(ctx context.Context) (string, error) {
	if !d.fullyRetrieved {
		if err := d.RetrieveComplete(ctx); err != nil {
			return "", err
		}
	}
	return d.locale, nil
}

// Status returns the remote status of the document, fetching the complete
// document on first access.
func (d *LibraryDocument) Status(ctx context.Context) (string, error) {
	if !d.fullyRetrieved {
		if err := d.RetrieveComplete(ctx); err != nil {
			return "", err
		}
	}
	return d.status, nil
}

// Delete removes the library document from Echosign. It will no longer be
// visible on the Manage page.
func (d *LibraryDocument) Delete(ctx context.Context) error {
	return d.session.client.Delete(ctx, "libraryDocuments/"+d.ID, nil)
}

// AuditTrail fetches the audit trail PDF. The bytes are re-fetched on every
// call, never cached.
func (d *LibraryDocument) AuditTrail(ctx context.Context) ([]byte, error) {
	return d.session.client.GetRaw(ctx, "libraryDocuments/"+d.ID+"/auditTrail")
}
