package esign

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookCreate(t *testing.T) {
	var gotBody map[string]interface{}
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/webhooks", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusCreated)
			fmt.Fprint(w, `{"id": "wh-1"}`)
		})
	})

	webhook := NewWebhook(session)
	err := webhook.Create(context.Background(), CreateWebhookParams{
		Name:   "agreement events",
		Scope:  WebhookScopeAccount,
		Events: []WebhookEvent{EventAgreementCreated, EventAgreementWorkflowCompleted},
		URL:    "https://callbacks.example.com/echosign",
	})
	require.NoError(t, err)
	assert.Equal(t, "wh-1", webhook.ID)
	assert.Equal(t, WebhookStatusActive, webhook.Status)

	assert.Equal(t, "agreement events", gotBody["name"])
	assert.Equal(t, "ACCOUNT", gotBody["scope"])
	assert.Equal(t, "ACTIVE", gotBody["state"])

	events := gotBody["webhookSubscriptionEvents"].([]interface{})
	require.Len(t, events, 2)
	assert.Equal(t, "AGREEMENT_CREATED", events[0])

	urlInfo := gotBody["webhookUrlInfo"].(map[string]interface{})
	assert.Equal(t, "https://callbacks.example.com/echosign", urlInfo["url"])

	// Optional application fields are omitted when unset.
	_, hasAppName := gotBody["applicationName"]
	assert.False(t, hasAppName)
}

func TestWebhookDelete(t *testing.T) {
	var gotMethod string
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/webhooks/wh-1", func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			w.WriteHeader(http.StatusNoContent)
		})
	})

	require.NoError(t, session.Webhook("wh-1").Delete(context.Background()))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestWebhookDeleteWithoutID(t *testing.T) {
	webhook := NewWebhook(nil)
	err := webhook.Delete(context.Background())
	assert.ErrorIs(t, err, ErrWebhookNotCreated)
}
