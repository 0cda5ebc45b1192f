package esign

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// Signature-flow orderings verified against the vendor. Echosign documents a
// third ordering but its semantics are unconfirmed, so it is not exposed.
const (
	signatureFlowSenderSignsFirst  = "SENDER_SIGNS_FIRST"
	signatureFlowSenderNotRequired = "SENDER_SIGNATURE_NOT_REQUIRED"
)

// Agreement represents a signable document package tracked by Echosign.
//
// Status is a read-only snapshot set at deserialization time; the library
// never validates transitions, it mirrors what the remote system reported at
// fetch time. Action methods change remote state only — the local Status is
// NOT updated automatically, callers must re-fetch.
type Agreement struct {
	session *Session

	// ID is assigned by Echosign; empty until the agreement has been sent or
	// was deserialized from a listing.
	ID     string
	Name   string
	Status AgreementStatus
	Date   time.Time
	// Users is the display user set resolved inline from the bulk listing.
	Users []*DisplayUser

	files           []*TransientDocument
	templateIDs     []string
	participantSets []participantSet

	documents        []AgreementDocument
	documentsFetched bool
}

// participantSet is one ordered signing step; all recipients in the set are
// co-equal signers at that position.
type participantSet struct {
	recipients []*Recipient
	order      int
}

// NewAgreement builds a local agreement under the session, ready to receive
// files and signers before Send.
func NewAgreement(session *Session, name string) *Agreement {
	return &Agreement{
		session: session,
		Name:    name,
	}
}

// Agreement returns a handle to an existing remote agreement by id without
// fetching it. Only the action methods are usable on such a handle; Name,
// Status and Users stay empty.
func (s *Session) Agreement(id string) *Agreement {
	return &Agreement{
		session: s,
		ID:      id,
	}
}

// AddFile attaches an uploaded transient document. Local only.
func (a *Agreement) AddFile(documents ...*TransientDocument) {
	a.files = append(a.files, documents...)
}

// AddSigner appends one participant set at the next order position. All
// recipients passed in a single call become co-equal signers at that
// position. Local only, no remote call is made until Send.
func (a *Agreement) AddSigner(recipients ...*Recipient) {
	if len(recipients) == 0 {
		return
	}
	for _, r := range recipients {
		r.agreement = a
	}
	a.participantSets = append(a.participantSets, participantSet{
		recipients: recipients,
		order:      len(a.participantSets) + 1,
	})
}

// AddFieldLayerTemplate references library documents as form field layers.
// Inputs that are not form-field-layer templates are ignored. Local only.
func (a *Agreement) AddFieldLayerTemplate(documents ...*LibraryDocument) {
	for _, doc := range documents {
		if doc.FormFieldLayer {
			a.templateIDs = append(a.templateIDs, doc.ID)
		}
	}
}

type agreementStateRequest struct {
	State string `json:"state"`
}

// Cancel cancels the agreement on Echosign. It remains visible on the Manage
// page. The local Status field is not updated; re-fetch to observe the
// change.
func (a *Agreement) Cancel(ctx context.Context) error {
	body := agreementStateRequest{State: string(StatusCancelled)}
	if err := a.session.client.Put(ctx, "agreements/"+a.ID+"/state", body, nil); err != nil {
		return fmt.Errorf("failed to cancel agreement %s: %w", a.ID, err)
	}
	return nil
}

type agreementVisibilityRequest struct {
	Visibility string `json:"visibility"`
}

// Hide hides the agreement from the caller's view on Echosign. Remote
// visibility change only.
func (a *Agreement) Hide(ctx context.Context) error {
	body := agreementVisibilityRequest{Visibility: "HIDE"}
	if err := a.session.client.Put(ctx, "agreements/"+a.ID+"/me/visibility", body, nil); err != nil {
		return fmt.Errorf("failed to hide agreement %s: %w", a.ID, err)
	}
	return nil
}

// Delete deletes the agreement on Echosign. It will not be visible on the
// Manage page; remote retention rules still apply and are not enforced here.
func (a *Agreement) Delete(ctx context.Context) error {
	if err := a.session.client.Delete(ctx, "agreements/"+a.ID, nil); err != nil {
		return fmt.Errorf("failed to delete agreement %s: %w", a.ID, err)
	}
	return nil
}

type agreementDocumentsResponse struct {
	Documents []struct {
		ID       string `json:"id"`
		MimeType string `json:"mimeType"`
		Name     string `json:"name"`
		NumPages int    `json:"numPages"`
	} `json:"documents"`
	SupportingDocuments []struct {
		ID           string `json:"id"`
		MimeType     string `json:"mimeType"`
		DisplayLabel string `json:"displayLabel"`
		FieldName    string `json:"fieldName"`
	} `json:"supportingDocuments"`
}

// Documents lists the documents in the agreement, merging regular and
// supporting documents into one list. The result is fetched once and cached
// for the lifetime of the instance; there is no invalidation. This is the
// only cached sub-resource — the binary accessors below re-fetch every call.
func (a *Agreement) Documents(ctx context.Context) ([]AgreementDocument, error) {
	if a.documentsFetched {
		return a.documents, nil
	}

	var response agreementDocumentsResponse
	if err := a.session.client.Get(ctx, "agreements/"+a.ID+"/documents", &response); err != nil {
		return nil, fmt.Errorf("failed to list documents of agreement %s: %w", a.ID, err)
	}

	documents := make([]AgreementDocument, 0, len(response.Documents)+len(response.SupportingDocuments))
	for _, d := range response.Documents {
		documents = append(documents, AgreementDocument{
			ID:       d.ID,
			MimeType: d.MimeType,
			Name:     d.Name,
			NumPages: d.NumPages,
		})
	}
	for _, d := range response.SupportingDocuments {
		documents = append(documents, AgreementDocument{
			ID:         d.ID,
			MimeType:   d.MimeType,
			Name:       d.DisplayLabel,
			FieldName:  d.FieldName,
			Supporting: true,
		})
	}

	a.documents = documents
	a.documentsFetched = true

	return a.documents, nil
}

// SendOptions enumerates every field recognized when creating an agreement.
// Recipients, when set, are appended as one additional co-equal participant
// set. MergeFields maps form field names to their default values.
type SendOptions struct {
	Name             string
	Recipients       []*Recipient
	CCs              []string
	ExternalID       string
	Message          string
	MergeFields      map[string]string
	SenderSignsFirst bool
}

// SendResult is the structured response from creating an agreement. All
// fields are optional on the wire; absent fields are left empty, not treated
// as errors.
type SendResult struct {
	AgreementID  string
	EmbeddedCode string
	Expiration   string
	URL          string
}

type fileInfo struct {
	TransientDocumentID string `json:"transientDocumentId,omitempty"`
	LibraryDocumentID   string `json:"libraryDocumentId,omitempty"`
}

type securityOption struct {
	AuthenticationMethod AuthenticationMethod `json:"authenticationMethod"`
	Password             string               `json:"password,omitempty"`
}

type participantSetMemberInfo struct {
	Email          string          `json:"email"`
	SecurityOption *securityOption `json:"securityOption,omitempty"`
}

type participantSetInfo struct {
	MemberInfos []participantSetMemberInfo `json:"memberInfos"`
	Order       int                        `json:"order"`
	Role        string                     `json:"role"`
}

type ccInfo struct {
	Email string `json:"email"`
}

type externalID struct {
	ID string `json:"id"`
}

type mergeFieldInfo struct {
	FieldName    string `json:"fieldName"`
	DefaultValue string `json:"defaultValue"`
}

type createAgreementRequest struct {
	FileInfos           []fileInfo           `json:"fileInfos"`
	Name                string               `json:"name"`
	ParticipantSetsInfo []participantSetInfo `json:"participantSetsInfo"`
	SignatureType       string               `json:"signatureType"`
	State               string               `json:"state"`
	SignatureFlow       string               `json:"signatureFlow"`
	CCs                 []ccInfo             `json:"ccs,omitempty"`
	ExternalID          *externalID          `json:"externalId,omitempty"`
	Message             string               `json:"message,omitempty"`
	MergeFieldInfo      []mergeFieldInfo     `json:"mergeFieldInfo,omitempty"`
}

type createAgreementResponse struct {
	ID           string `json:"id"`
	EmbeddedCode string `json:"embeddedCode"`
	Expiration   string `json:"expiration"`
	URL          string `json:"url"`
}

// Send builds the creation payload from the accumulated local state (files,
// signers, field layer templates) plus the options, and posts it to Echosign.
// On success the assigned agreement id is stored locally.
func (a *Agreement) Send(ctx context.Context, opts SendOptions) (*SendResult, error) {
	if opts.Name != "" {
		a.Name = opts.Name
	}
	if len(opts.Recipients) > 0 {
		a.AddSigner(opts.Recipients...)
	}

	fileInfos := make([]fileInfo, 0, len(a.files)+len(a.templateIDs))
	for _, f := range a.files {
		fileInfos = append(fileInfos, fileInfo{TransientDocumentID: f.DocumentID})
	}
	for _, id := range a.templateIDs {
		fileInfos = append(fileInfos, fileInfo{LibraryDocumentID: id})
	}

	setInfos := make([]participantSetInfo, 0, len(a.participantSets))
	for _, set := range a.participantSets {
		members := make([]participantSetMemberInfo, 0, len(set.recipients))
		for _, r := range set.recipients {
			member := participantSetMemberInfo{Email: r.Email}
			if r.AuthenticationMethod != "" && r.AuthenticationMethod != AuthMethodNone {
				member.SecurityOption = &securityOption{
					AuthenticationMethod: r.AuthenticationMethod,
					Password:             r.Password,
				}
			}
			members = append(members, member)
		}
		setInfos = append(setInfos, participantSetInfo{
			MemberInfos: members,
			Order:       set.order,
			Role:        "SIGNER",
		})
	}

	signatureFlow := signatureFlowSenderNotRequired
	if opts.SenderSignsFirst {
		signatureFlow = signatureFlowSenderSignsFirst
	}

	payload := createAgreementRequest{
		FileInfos:           fileInfos,
		Name:                a.Name,
		ParticipantSetsInfo: setInfos,
		SignatureType:       "ESIGN",
		State:               "IN_PROCESS",
		SignatureFlow:       signatureFlow,
		Message:             opts.Message,
	}
	for _, cc := range opts.CCs {
		payload.CCs = append(payload.CCs, ccInfo{Email: cc})
	}
	if opts.ExternalID != "" {
		payload.ExternalID = &externalID{ID: opts.ExternalID}
	}
	for field, value := range opts.MergeFields {
		payload.MergeFieldInfo = append(payload.MergeFieldInfo, mergeFieldInfo{
			FieldName:    field,
			DefaultValue: value,
		})
	}

	var response createAgreementResponse
	if err := a.session.client.Post(ctx, "agreements", payload, &response); err != nil {
		return nil, fmt.Errorf("failed to send agreement %s: %w", a.Name, err)
	}

	if response.ID != "" {
		a.ID = response.ID
	}

	return &SendResult{
		AgreementID:  response.ID,
		EmbeddedCode: response.EmbeddedCode,
		Expiration:   response.Expiration,
		URL:          response.URL,
	}, nil
}

type signingURLsResponse struct {
	SigningURLSetInfos []struct {
		SigningURLs []struct {
			Email    string `json:"email"`
			EsignURL string `json:"esignUrl"`
		} `json:"signingUrls"`
	} `json:"signingUrlSetInfos"`
}

// SigningURLs fetches the per-recipient signing URLs and caches each one on
// the locally-held recipient with the matching email (linear scan). Entries
// whose email has no local match are silently skipped.
func (a *Agreement) SigningURLs(ctx context.Context) error {
	var response signingURLsResponse
	if err := a.session.client.Get(ctx, "agreements/"+a.ID+"/signingUrls", &response); err != nil {
		return fmt.Errorf("failed to get signing urls of agreement %s: %w", a.ID, err)
	}

	for _, setInfo := range response.SigningURLSetInfos {
		for _, entry := range setInfo.SigningURLs {
			if recipient := a.findRecipient(entry.Email); recipient != nil {
				recipient.signingURL = entry.EsignURL
			}
		}
	}

	return nil
}

// findRecipient scans the participant sets for a recipient by email.
func (a *Agreement) findRecipient(email string) *Recipient {
	for _, set := range a.participantSets {
		for _, r := range set.recipients {
			if r.Email == email {
				return r
			}
		}
	}
	return nil
}

type membersResponse struct {
	ParticipantSets []struct {
		ID          string `json:"id"`
		Status      string `json:"status"`
		MemberInfos []struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		} `json:"memberInfos"`
	} `json:"participantSets"`
}

type reminderRequest struct {
	RecipientParticipantIDs []string `json:"recipientParticipantIds"`
	Status                  string   `json:"status"`
	Comment                 string   `json:"comment,omitempty"`
}

// SendReminder reminds the participants whose signature the agreement is
// currently waiting on. The member listing is filtered to sets awaiting this
// account's signature; an empty id list is still posted so the remote records
// the attempt.
func (a *Agreement) SendReminder(ctx context.Context, comment string) error {
	var members membersResponse
	if err := a.session.client.Get(ctx, "agreements/"+a.ID+"/members", &members); err != nil {
		return fmt.Errorf("failed to list members of agreement %s: %w", a.ID, err)
	}

	var participantIDs []string
	for _, set := range members.ParticipantSets {
		if set.Status != string(StatusWaitingForMySignature) {
			continue
		}
		for _, member := range set.MemberInfos {
			participantIDs = append(participantIDs, member.ID)
		}
	}

	body := reminderRequest{
		RecipientParticipantIDs: participantIDs,
		Status:                  "ACTIVE",
		Comment:                 comment,
	}
	if err := a.session.client.Post(ctx, "agreements/"+a.ID+"/reminders", body, nil); err != nil {
		return fmt.Errorf("failed to send reminder for agreement %s: %w", a.ID, err)
	}

	return nil
}

// FormData fetches the form data of the agreement as CSV text, verbatim and
// uncached.
func (a *Agreement) FormData(ctx context.Context) ([]byte, error) {
	return a.session.client.GetRaw(ctx, "agreements/"+a.ID+"/formData")
}

// FormFields fetches the form field schema as raw JSON, uncached.
func (a *Agreement) FormFields(ctx context.Context) ([]byte, error) {
	return a.session.client.GetRaw(ctx, "agreements/"+a.ID+"/formFields")
}

// CombinedDocument fetches the merged PDF of all documents in the agreement.
// Re-fetched on every call since its content changes as participants sign.
func (a *Agreement) CombinedDocument(ctx context.Context) ([]byte, error) {
	return a.session.client.GetRaw(ctx, "agreements/"+a.ID+"/combinedDocument")
}

// AuditTrail fetches the audit trail PDF. Re-fetched on every call.
func (a *Agreement) AuditTrail(ctx context.Context) ([]byte, error) {
	return a.session.client.GetRaw(ctx, "agreements/"+a.ID+"/auditTrail")
}

func agreementsPath(query string) string {
	if query == "" {
		return "agreements"
	}
	return "agreements?query=" + url.QueryEscape(query)
}
