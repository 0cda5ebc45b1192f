package esign

import (
	"context"
	"errors"
	"fmt"
)

// WebhookScope is the level at which a webhook registration operates.
type WebhookScope string

const (
	WebhookScopeAccount  WebhookScope = "ACCOUNT"
	WebhookScopeGroup    WebhookScope = "GROUP"
	WebhookScopeUser     WebhookScope = "USER"
	WebhookScopeResource WebhookScope = "RESOURCE"
)

// WebhookStatus is whether the registration is delivering notifications.
type WebhookStatus string

const (
	WebhookStatusActive   WebhookStatus = "ACTIVE"
	WebhookStatusInactive WebhookStatus = "INACTIVE"
)

// WebhookEvent is a remote-defined event name a webhook can subscribe to.
// The vocabulary is fixed by Echosign.
type WebhookEvent string

const (
	EventAgreementCreated                       WebhookEvent = "AGREEMENT_CREATED"
	EventAgreementActionDelegated               WebhookEvent = "AGREEMENT_ACTION_DELEGATED"
	EventAgreementRecalled                      WebhookEvent = "AGREEMENT_RECALLED"
	EventAgreementRejected                      WebhookEvent = "AGREEMENT_REJECTED"
	EventAgreementExpired                       WebhookEvent = "AGREEMENT_EXPIRED"
	EventAgreementActionCompleted               WebhookEvent = "AGREEMENT_ACTION_COMPLETED"
	EventAgreementWorkflowCompleted             WebhookEvent = "AGREEMENT_WORKFLOW_COMPLETED"
	EventAgreementEmailViewed                   WebhookEvent = "AGREEMENT_EMAIL_VIEWED"
	EventAgreementModified                      WebhookEvent = "AGREEMENT_MODIFIED"
	EventAgreementShared                        WebhookEvent = "AGREEMENT_SHARED"
	EventAgreementReadyToVault                  WebhookEvent = "AGREEMENT_READY_TO_VAULT"
	EventAgreementVaulted                       WebhookEvent = "AGREEMENT_VAULTED"
	EventAgreementActionRequested               WebhookEvent = "AGREEMENT_ACTION_REQUESTED"
	EventAgreementActionReplacedSigner          WebhookEvent = "AGREEMENT_ACTION_REPLACED_SIGNER"
	EventAgreementAutoCancelledConversionError  WebhookEvent = "AGREEMENT_AUTO_CANCELLED_CONVERSION_PROBLEM"
	EventAgreementDocumentsDeleted              WebhookEvent = "AGREEMENT_DOCUMENTS_DELETED"
	EventAgreementEmailBounced                  WebhookEvent = "AGREEMENT_EMAIL_BOUNCED"
	EventAgreementKBAAuthenticated              WebhookEvent = "AGREEMENT_KBA_AUTHENTICATED"
	EventAgreementOfflineSync                   WebhookEvent = "AGREEMENT_OFFLINE_SYNC"
	EventAgreementUserAckAgreementModified      WebhookEvent = "AGREEMENT_USER_ACK_AGREEMENT_MODIFIED"
	EventAgreementUploadedBySender              WebhookEvent = "AGREEMENT_UPLOADED_BY_SENDER"
	EventAgreementWebIdentityAuthenticated      WebhookEvent = "AGREEMENT_WEB_IDENTITY_AUTHENTICATED"
	EventAgreementAll                           WebhookEvent = "AGREEMENT_ALL"
	EventMegasignCreated                        WebhookEvent = "MEGASIGN_CREATED"
	EventMegasignRecalled                       WebhookEvent = "MEGASIGN_RECALLED"
	EventMegasignShared                         WebhookEvent = "MEGASIGN_SHARED"
	EventMegasignAll                            WebhookEvent = "MEGASIGN_ALL"
	EventWidgetCreated                          WebhookEvent = "WIDGET_CREATED"
	EventWidgetModified                         WebhookEvent = "WIDGET_MODIFIED"
	EventWidgetShared                           WebhookEvent = "WIDGET_SHARED"
	EventWidgetEnabled                          WebhookEvent = "WIDGET_ENABLED"
	EventWidgetDisabled                         WebhookEvent = "WIDGET_DISABLED"
	EventWidgetAutoCancelledConversionError     WebhookEvent = "WIDGET_AUTO_CANCELLED_CONVERSION_PROBLEM"
	EventWidgetAll                              WebhookEvent = "WIDGET_ALL"
	EventLibraryDocumentCreated                 WebhookEvent = "LIBRARY_DOCUMENT_CREATED"
	EventLibraryDocumentAutoCancelledConversion WebhookEvent = "LIBRARY_DOCUMENT_AUTO_CANCELLED_CONVERSION_PROBLEM"
	EventLibraryDocumentModified                WebhookEvent = "LIBRARY_DOCUMENT_MODIFIED"
	EventLibraryDocumentAll                     WebhookEvent = "LIBRARY_DOCUMENT_ALL"
)

// ErrWebhookNotCreated is returned when deleting a webhook whose remote id
// has never been set (neither created nor deserialized).
var ErrWebhookNotCreated = errors.New("webhook has no remote id")

// Webhook is a remote-side registration that pushes event notifications to a
// caller-supplied URL. Delivering and verifying those notifications is the
// caller's concern, not this library's.
type Webhook struct {
	session *Session

	ID                     string
	Name                   string
	ApplicationName        string
	ApplicationDisplayName string
	Status                 WebhookStatus
	Events                 []WebhookEvent
	URL                    string
	Scope                  WebhookScope
}

// CreateWebhookParams enumerates every field Echosign accepts when
// registering a webhook. Name, Scope, Events and URL are required.
type CreateWebhookParams struct {
	Name                   string
	Scope                  WebhookScope
	Events                 []WebhookEvent
	URL                    string
	ApplicationName        string
	ApplicationDisplayName string
}

type createWebhookRequest struct {
	Name                      string         `json:"name"`
	Scope                     WebhookScope   `json:"scope"`
	State                     string         `json:"state"`
	ApplicationDisplayName    string         `json:"applicationDisplayName,omitempty"`
	ApplicationName           string         `json:"applicationName,omitempty"`
	WebhookSubscriptionEvents []WebhookEvent `json:"webhookSubscriptionEvents"`
	WebhookURLInfo            webhookURLInfo `json:"webhookUrlInfo"`
}

type webhookURLInfo struct {
	URL string `json:"url"`
}

type createWebhookResponse struct {
	ID string `json:"id"`
}

// NewWebhook builds a local webhook bound to the session. It exists remotely
// only after Create succeeds.
func NewWebhook(session *Session) *Webhook {
	return &Webhook{
		session: session,
		Status:  WebhookStatusActive,
	}
}

// Webhook returns a handle to an existing remote webhook by id without
// fetching it, for deletion.
func (s *Session) Webhook(id string) *Webhook {
	return &Webhook{
		session: s,
		ID:      id,
		Status:  WebhookStatusActive,
	}
}

// Create registers the webhook with Echosign in the ACTIVE state and stores
// the assigned remote id. The target URL must be live and answer the vendor's
// verification challenge, which Echosign performs during this call.
func (w *Webhook) Create(ctx context.Context, params CreateWebhookParams) error {
	payload := createWebhookRequest{
		Name:                      params.Name,
		Scope:                     params.Scope,
		State:                     string(WebhookStatusActive),
		ApplicationDisplayName:    params.ApplicationDisplayName,
		ApplicationName:           params.ApplicationName,
		WebhookSubscriptionEvents: params.Events,
		WebhookURLInfo:            webhookURLInfo{URL: params.URL},
	}

	var response createWebhookResponse
	if err := w.session.client.Post(ctx, "webhooks", payload, &response); err != nil {
		return fmt.Errorf("failed to create webhook %s: %w", params.Name, err)
	}

	w.Name = params.Name
	w.Scope = params.Scope
	w.Events = params.Events
	w.URL = params.URL
	w.ApplicationName = params.ApplicationName
	w.ApplicationDisplayName = params.ApplicationDisplayName
	w.Status = WebhookStatusActive
	w.ID = response.ID

	return nil
}

// Delete removes the webhook registration. The remote id must already be set:
// calling Delete on a webhook that was never created is a programmer error
// and returns ErrWebhookNotCreated.
func (w *Webhook) Delete(ctx context.Context) error {
	if w.ID == "" {
		return ErrWebhookNotCreated
	}
	return w.session.client.Delete(ctx, "webhooks/"+w.ID, nil)
}
