package esign

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecipientSigningURLWithoutAgreement(t *testing.T) {
	recipient := NewRecipient("alice@example.com")
	_, err := recipient.SigningURL(context.Background())
	assert.ErrorIs(t, err, ErrMissingAgreement)
}

func TestRecipientSigningURLCached(t *testing.T) {
	recipient := NewRecipient("alice@example.com")
	recipient.signingURL = "https://echosign.example/sign/alice"

	// Cached URL short-circuits before the agreement check.
	url, err := recipient.SigningURL(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "https://echosign.example/sign/alice", url)
}

func TestDisplayUserString(t *testing.T) {
	assert.Equal(t, "Alice", (&DisplayUser{Email: "alice@example.com", FullName: "Alice"}).String())
	assert.Equal(t, "alice@example.com", (&DisplayUser{Email: "alice@example.com"}).String())
}

func TestNewRecipientDefaults(t *testing.T) {
	recipient := NewRecipient("alice@example.com")
	assert.Equal(t, "alice@example.com", recipient.Email)
	assert.Equal(t, AuthMethodNone, recipient.AuthenticationMethod)
}
