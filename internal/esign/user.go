package esign

import (
	"context"
	"errors"
)

// ErrMissingAgreement is returned when resolving a signing URL on a recipient
// that is not tied to any agreement.
var ErrMissingAgreement = errors.New("recipient is not associated with an agreement")

// AuthenticationMethod is how a recipient proves their identity before
// viewing and signing a document.
type AuthenticationMethod string

const (
	AuthMethodNone                  AuthenticationMethod = "NONE"
	AuthMethodInheritedFromDocument AuthenticationMethod = "INHERITED_FROM_DOCUMENT"
	AuthMethodPassword              AuthenticationMethod = "PASSWORD"
	AuthMethodWebIdentity           AuthenticationMethod = "WEB_IDENTITY"
	AuthMethodKBA                   AuthenticationMethod = "KBA"
	AuthMethodPhone                 AuthenticationMethod = "PHONE"
)

// DisplayUser maps to the display user info provided by Echosign for
// agreements fetched in bulk.
type DisplayUser struct {
	Email    string
	FullName string
	Company  string
}

func (u *DisplayUser) String() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

// Recipient is a participant a document can be sent to. It extends
// DisplayUser with the security options Echosign accepts when creating an
// agreement, and carries the signing URL once resolved.
type Recipient struct {
	DisplayUser

	AuthenticationMethod AuthenticationMethod
	// Password required for the recipient to view and sign, when
	// AuthenticationMethod is PASSWORD.
	Password string

	agreement  *Agreement
	signingURL string
}

// NewRecipient builds a recipient with no authentication requirement.
func NewRecipient(email string) *Recipient {
	return &Recipient{
		DisplayUser:          DisplayUser{Email: email},
		AuthenticationMethod: AuthMethodNone,
	}
}

// SigningURL returns the recipient's personal signing URL. The URL is
// resolved lazily: the first call fetches the agreement's signing URL set and
// caches the match for this recipient's email. The recipient must belong to
// an agreement (added via AddSigner or Send), otherwise ErrMissingAgreement
// is returned.
func (r *Recipient) SigningURL(ctx context.Context) (string, error) {
	if r.signingURL != "" {
		return r.signingURL, nil
	}
	if r.agreement == nil {
		return "", ErrMissingAgreement
	}
	if err := r.agreement.SigningURLs(ctx); err != nil {
		return "", err
	}
	return r.signingURL, nil
}
