package esign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echosign-bridge/internal/infrastructure/httpclient"
)

func TestAgreementCancel(t *testing.T) {
	var gotBody []byte
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/state", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		})
	})

	agreement := session.Agreement("agr-1")
	require.NoError(t, agreement.Cancel(context.Background()))
	assert.JSONEq(t, `{"state": "CANCELLED"}`, string(gotBody))
}

func TestAgreementCancelUnauthorized(t *testing.T) {
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/state", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"code": "INVALID_ACCESS_TOKEN", "message": "Access token provided is invalid or has expired"}`)
		})
	})

	err := session.Agreement("agr-1").Cancel(context.Background())
	require.Error(t, err)

	var authErr *httpclient.AuthError
	assert.True(t, errors.As(err, &authErr))
}

func TestAgreementCancelServerError(t *testing.T) {
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/state", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"code": "MISC_SERVER_ERROR", "message": "Some miscellaneous error occurred"}`)
		})
	})

	err := session.Agreement("agr-1").Cancel(context.Background())
	require.Error(t, err)

	var apiErr *httpclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	assert.Equal(t, "MISC_SERVER_ERROR", apiErr.Code)
}

func TestAgreementHide(t *testing.T) {
	var gotBody []byte
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/me/visibility", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPut, r.Method)
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		})
	})

	require.NoError(t, session.Agreement("agr-1").Hide(context.Background()))
	assert.JSONEq(t, `{"visibility": "HIDE"}`, string(gotBody))
}

func TestAgreementDelete(t *testing.T) {
	var gotMethod string
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements/agr-1", func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			w.WriteHeader(http.StatusNoContent)
		})
	})

	require.NoError(t, session.Agreement("agr-1").Delete(context.Background()))
	assert.Equal(t, http.MethodDelete, gotMethod)
}

func TestAgreementDocumentsMergedAndCached(t *testing.T) {
	var calls int64
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/documents", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&calls, 1)
			fmt.Fprint(w, `{
				"documents": [
					{"id": "doc-1", "mimeType": "application/pdf", "name": "contract.pdf", "numPages": 4}
				],
				"supportingDocuments": [
					{"id": "doc-2", "mimeType": "image/png", "displayLabel": "Driver License", "fieldName": "id_upload"}
				]
			}`)
		})
	})

	agreement := session.Agreement("agr-1")

	documents, err := agreement.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, documents, 2)

	assert.Equal(t, "doc-1", documents[0].ID)
	assert.Equal(t, 4, documents[0].NumPages)
	assert.False(t, documents[0].Supporting)

	assert.Equal(t, "Driver License", documents[1].Name)
	assert.Equal(t, "id_upload", documents[1].FieldName)
	assert.True(t, documents[1].Supporting)

	// Second call is served from the cache.
	_, err = agreement.Documents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
}

func TestAgreementSend(t *testing.T) {
	var gotBody map[string]interface{}
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			fmt.Fprint(w, `{"id": "agr-new", "url": "https://echosign.example/view/agr-new"}`)
		})
	})

	agreement := NewAgreement(session, "NDA")
	agreement.AddFile(&TransientDocument{DocumentID: "trans-1"})
	agreement.AddSigner(NewRecipient("alice@example.com"))

	secured := NewRecipient("bob@example.com")
	secured.AuthenticationMethod = AuthMethodPassword
	secured.Password = "hunter2"
	agreement.AddSigner(secured)

	result, err := agreement.Send(context.Background(), SendOptions{
		CCs:         []string{"legal@example.com"},
		ExternalID:  "crm-42",
		Message:     "please sign",
		MergeFields: map[string]string{"company": "Acme"},
	})
	require.NoError(t, err)

	assert.Equal(t, "agr-new", result.AgreementID)
	assert.Equal(t, "https://echosign.example/view/agr-new", result.URL)
	assert.Empty(t, result.EmbeddedCode)
	assert.Equal(t, "agr-new", agreement.ID)

	assert.Equal(t, "NDA", gotBody["name"])
	assert.Equal(t, "ESIGN", gotBody["signatureType"])
	assert.Equal(t, "IN_PROCESS", gotBody["state"])
	assert.Equal(t, "SENDER_SIGNATURE_NOT_REQUIRED", gotBody["signatureFlow"])
	assert.Equal(t, "please sign", gotBody["message"])

	fileInfos := gotBody["fileInfos"].([]interface{})
	require.Len(t, fileInfos, 1)
	assert.Equal(t, "trans-1", fileInfos[0].(map[string]interface{})["transientDocumentId"])

	sets := gotBody["participantSetsInfo"].([]interface{})
	require.Len(t, sets, 2)
	first := sets[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["order"])
	assert.Equal(t, "SIGNER", first["role"])
	second := sets[1].(map[string]interface{})
	assert.Equal(t, float64(2), second["order"])
	member := second["memberInfos"].([]interface{})[0].(map[string]interface{})
	security := member["securityOption"].(map[string]interface{})
	assert.Equal(t, "PASSWORD", security["authenticationMethod"])
	assert.Equal(t, "hunter2", security["password"])

	ccs := gotBody["ccs"].([]interface{})
	require.Len(t, ccs, 1)
	assert.Equal(t, "legal@example.com", ccs[0].(map[string]interface{})["email"])

	external := gotBody["externalId"].(map[string]interface{})
	assert.Equal(t, "crm-42", external["id"])
}

func TestAgreementSendSenderSignsFirst(t *testing.T) {
	var gotBody map[string]interface{}
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			fmt.Fprint(w, `{"id": "agr-new"}`)
		})
	})

	agreement := NewAgreement(session, "NDA")
	agreement.AddSigner(NewRecipient("alice@example.com"))

	_, err := agreement.Send(context.Background(), SendOptions{SenderSignsFirst: true})
	require.NoError(t, err)
	assert.Equal(t, "SENDER_SIGNS_FIRST", gotBody["signatureFlow"])
}

func TestAddFieldLayerTemplateFiltersNonLayers(t *testing.T) {
	agreement := NewAgreement(nil, "NDA")
	agreement.AddFieldLayerTemplate(
		&LibraryDocument{ID: "lib-1", FormFieldLayer: true},
		&LibraryDocument{ID: "lib-2", Document: true},
	)
	require.Len(t, agreement.templateIDs, 1)
	assert.Equal(t, "lib-1", agreement.templateIDs[0])
}

func TestSigningURLsMatchByEmail(t *testing.T) {
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/signingUrls", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"signingUrlSetInfos": [
					{"signingUrls": [
						{"email": "alice@example.com", "esignUrl": "https://echosign.example/sign/alice"},
						{"email": "stranger@example.com", "esignUrl": "https://echosign.example/sign/stranger"}
					]}
				]
			}`)
		})
	})

	agreement := session.Agreement("agr-1")
	alice := NewRecipient("alice@example.com")
	agreement.AddSigner(alice)

	require.NoError(t, agreement.SigningURLs(context.Background()))

	url, err := alice.SigningURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://echosign.example/sign/alice", url)
}

func TestSendReminderFiltersParticipants(t *testing.T) {
	var gotBody map[string]interface{}
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/members", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"participantSets": [
					{"id": "set-1", "status": "WAITING_FOR_MY_SIGNATURE", "memberInfos": [
						{"id": "part-1", "email": "alice@example.com"},
						{"id": "part-2", "email": "bob@example.com"}
					]},
					{"id": "set-2", "status": "SIGNED", "memberInfos": [
						{"id": "part-3", "email": "carol@example.com"}
					]}
				]
			}`)
		})
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/reminders", func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			w.WriteHeader(http.StatusCreated)
		})
	})

	require.NoError(t, session.Agreement("agr-1").SendReminder(context.Background(), "ping"))

	ids := gotBody["recipientParticipantIds"].([]interface{})
	require.Len(t, ids, 2)
	assert.Equal(t, "part-1", ids[0])
	assert.Equal(t, "part-2", ids[1])
	assert.Equal(t, "ping", gotBody["comment"])
	assert.Equal(t, "ACTIVE", gotBody["status"])
}

func TestSendReminderEmptySetStillPosts(t *testing.T) {
	var posted bool
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/members", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"participantSets": [{"id": "set-1", "status": "SIGNED", "memberInfos": [{"id": "part-1"}]}]}`)
		})
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/reminders", func(w http.ResponseWriter, r *http.Request) {
			posted = true
			w.WriteHeader(http.StatusCreated)
		})
	})

	require.NoError(t, session.Agreement("agr-1").SendReminder(context.Background(), ""))
	assert.True(t, posted)
}

func TestFormDataVerbatim(t *testing.T) {
	csv := "name,email\nAlice,alice@example.com\n"
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/formData", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			fmt.Fprint(w, csv)
		})
	})

	data, err := session.Agreement("agr-1").FormData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, csv, string(data))
}

func TestCombinedDocumentRefetches(t *testing.T) {
	var calls int64
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements/agr-1/combinedDocument", func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt64(&calls, 1)
			fmt.Fprint(w, "%PDF-1.7 fake")
		})
	})

	agreement := session.Agreement("agr-1")
	for i := 0; i < 2; i++ {
		data, err := agreement.CombinedDocument(context.Background())
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(string(data), "%PDF"))
	}
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestAddSignerOrdering(t *testing.T) {
	agreement := NewAgreement(nil, "NDA")
	agreement.AddSigner(NewRecipient("a@example.com"), NewRecipient("b@example.com"))
	agreement.AddSigner(NewRecipient("c@example.com"))
	agreement.AddSigner()

	require.Len(t, agreement.participantSets, 2)
	assert.Equal(t, 1, agreement.participantSets[0].order)
	assert.Len(t, agreement.participantSets[0].recipients, 2)
	assert.Equal(t, 2, agreement.participantSets[1].order)
}
