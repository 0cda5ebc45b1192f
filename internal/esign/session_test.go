package esign

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echosign-bridge/internal/infrastructure/httpclient"
)

// newTestSession spins up a mock Echosign server whose discovery endpoint
// points back at itself, registers the given routes under the versioned API
// prefix, and returns a session bound to it.
func newTestSession(t *testing.T, register func(mux *http.ServeMux)) *Session {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	mux.HandleFunc("/base_uris", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"api_access_point": server.URL + "/",
		})
	})
	if register != nil {
		register(mux)
	}

	session, err := NewSession(context.Background(), Options{
		AccessToken:  "test-token",
		UserEmail:    "sender@example.com",
		DiscoveryURL: server.URL + "/base_uris",
	})
	require.NoError(t, err)

	return session
}

func TestNewSessionDiscoversEndpointOnce(t *testing.T) {
	var discoveryCalls int64

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/base_uris", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&discoveryCalls, 1)
		assert.Equal(t, "test-token", r.Header.Get("Access-Token"))
		json.NewEncoder(w).Encode(map[string]string{
			"api_access_point": server.URL + "/",
		})
	})
	mux.HandleFunc("/api/rest/v6/agreements", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"userAgreementList": []interface{}{}})
	})

	session, err := NewSession(context.Background(), Options{
		AccessToken:  "test-token",
		DiscoveryURL: server.URL + "/base_uris",
	})
	require.NoError(t, err)
	assert.Equal(t, server.URL+"/api/rest/v6/", session.BaseEndpoint())

	// Subsequent calls reuse the resolved endpoint.
	_, err = session.ListAgreements(context.Background(), "")
	require.NoError(t, err)
	_, err = session.ListAgreements(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, int64(1), atomic.LoadInt64(&discoveryCalls))
}

func TestNewSessionRejectedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := NewSession(context.Background(), Options{
		AccessToken:  "bad-token",
		DiscoveryURL: server.URL + "/base_uris",
	})
	require.Error(t, err)

	var authErr *httpclient.AuthError
	assert.True(t, errors.As(err, &authErr))
}

func TestNewSessionMissingAccessPoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	_, err := NewSession(context.Background(), Options{
		AccessToken:  "test-token",
		DiscoveryURL: server.URL + "/base_uris",
	})
	require.Error(t, err)

	var apiErr *httpclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Message, "access point")
}

func TestNewSessionRequiresAccessToken(t *testing.T) {
	_, err := NewSession(context.Background(), Options{})
	require.Error(t, err)
}

func TestListAgreements(t *testing.T) {
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "email:sender@example.com", r.Header.Get("x-api-user"))
			fmt.Fprint(w, `{
				"userAgreementList": [
					{
						"agreementId": "agr-1",
						"name": "NDA",
						"status": "OUT_FOR_SIGNATURE",
						"displayDate": "2024-03-01T10:00:00Z",
						"displayUserSetInfos": [
							{"displayUserSetMemberInfos": [
								{"email": "alice@example.com", "fullName": "Alice", "company": "Acme"},
								{"email": "bob@example.com", "fullName": "Bob", "company": ""}
							]}
						]
					},
					{
						"agreementId": "agr-2",
						"name": "MSA",
						"status": "SIGNED",
						"displayDate": "2024-02-15T08:30:00Z",
						"displayUserSetInfos": []
					}
				]
			}`)
		})
	})

	agreements, err := session.ListAgreements(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, agreements, 2)

	first := agreements[0]
	assert.Equal(t, "agr-1", first.ID)
	assert.Equal(t, "NDA", first.Name)
	assert.Equal(t, StatusOutForSignature, first.Status)
	assert.Equal(t, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC), first.Date)
	require.Len(t, first.Users, 2)
	assert.Equal(t, "alice@example.com", first.Users[0].Email)
	assert.Equal(t, "Alice", first.Users[0].FullName)

	assert.Equal(t, StatusSigned, agreements[1].Status)
	assert.Empty(t, agreements[1].Users)
}

func TestListAgreementsQueryEscaped(t *testing.T) {
	var gotQuery string
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements", func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("query")
			fmt.Fprint(w, `{"userAgreementList": []}`)
		})
	})

	_, err := session.ListAgreements(context.Background(), "contract & sow")
	require.NoError(t, err)
	assert.Equal(t, "contract & sow", gotQuery)
}

func TestListAgreementsUnknownStatus(t *testing.T) {
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/agreements", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"userAgreementList": [{"agreementId": "agr-1", "name": "NDA", "status": "SOMETHING_NEW"}]}`)
		})
	})

	_, err := session.ListAgreements(context.Background(), "")
	require.Error(t, err)

	var unknownErr *UnknownStatusError
	require.True(t, errors.As(err, &unknownErr))
	assert.Equal(t, "SOMETHING_NEW", unknownErr.Value)
}

func TestListLibraryDocuments(t *testing.T) {
	session := newTestSession(t, func(mux *http.ServeMux) {
		mux.HandleFunc("/api/rest/v6/libraryDocuments", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{
				"libraryDocumentList": [
					{
						"libraryDocumentId": "lib-1",
						"name": "Standard NDA",
						"modifiedDate": "2024-01-10T12:00:00Z",
						"scope": "SHARED",
						"libraryTemplateTypes": ["DOCUMENT"]
					},
					{
						"libraryDocumentId": "lib-2",
						"name": "Field Layer",
						"modifiedDate": "2024-01-11T12:00:00Z",
						"scope": "PERSONAL",
						"libraryTemplateTypes": ["DOCUMENT", "FORM_FIELD_LAYER"]
					}
				]
			}`)
		})
	})

	documents, err := session.ListLibraryDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, documents, 2)

	assert.Equal(t, "lib-1", documents[0].ID)
	assert.Equal(t, ScopeShared, documents[0].Scope)
	assert.True(t, documents[0].Document)
	assert.False(t, documents[0].FormFieldLayer)

	assert.True(t, documents[1].Document)
	assert.True(t, documents[1].FormFieldLayer)
}
