package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"echosign-bridge/internal/domain/entity"
)

func TestHeaders(t *testing.T) {
	h := Headers("tok-123", "application/json", "user@example.com")
	assert.Equal(t, "tok-123", h.Get("Access-Token"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "email:user@example.com", h.Get("x-api-user"))
}

func TestHeadersOptionalFieldsOmitted(t *testing.T) {
	h := Headers("tok-123", "", "")
	assert.Equal(t, "tok-123", h.Get("Access-Token"))
	_, hasContentType := h["Content-Type"]
	assert.False(t, hasContentType)
	_, hasAPIUser := h["X-Api-User"]
	assert.False(t, hasAPIUser)
}

func TestGetDecodesJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/things", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get("Access-Token"))
		fmt.Fprint(w, `{"value": "hello"}`)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", Options{AccessToken: "tok"}, nil, nil)

	var result struct {
		Value string `json:"value"`
	}
	require.NoError(t, client.Get(context.Background(), "things", &result))
	assert.Equal(t, "hello", result.Value)
}

func TestGetBadJSONOnSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "not json")
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", Options{AccessToken: "tok"}, nil, nil)

	var result struct{}
	err := client.Get(context.Background(), "things", &result)
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Contains(t, apiErr.Message, "unmarshal")
}

func TestGetRawReturnsBodyVerbatim(t *testing.T) {
	payload := "raw,bytes\nwith,commas\n"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No Content-Type is sent for raw fetches.
		_, hasContentType := r.Header["Content-Type"]
		assert.False(t, hasContentType)
		fmt.Fprint(w, payload)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", Options{AccessToken: "tok"}, nil, nil)

	data, err := client.GetRaw(context.Background(), "export")
	require.NoError(t, err)
	assert.Equal(t, payload, string(data))
}

// recordingSaver captures async audit log writes.
type recordingSaver struct {
	mu   sync.Mutex
	logs []*entity.APILog
	done chan struct{}
}

func (s *recordingSaver) Save(ctx context.Context, log *entity.APILog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	select {
	case s.done <- struct{}{}:
	default:
	}
	return nil
}

func TestPostSavesAPILog(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": "new"}`)
	}))
	defer server.Close()

	saver := &recordingSaver{done: make(chan struct{}, 1)}
	client := NewHTTPClient(server.URL+"/", Options{AccessToken: "tok", APIUserEmail: "user@example.com"}, saver, nil)

	var result struct {
		ID string `json:"id"`
	}
	body := map[string]string{"name": "thing"}
	require.NoError(t, client.Post(context.Background(), "things", body, &result))
	assert.Equal(t, "new", result.ID)

	select {
	case <-saver.done:
	case <-time.After(2 * time.Second):
		t.Fatal("audit log was never saved")
	}

	saver.mu.Lock()
	defer saver.mu.Unlock()
	require.Len(t, saver.logs, 1)
	logged := saver.logs[0]
	assert.Equal(t, http.MethodPost, logged.Method)
	assert.Equal(t, http.StatusCreated, logged.StatusCode)
	assert.Equal(t, "user@example.com", logged.Email)
	assert.Contains(t, logged.RequestBody, "thing")
}

func TestDeleteEmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL+"/", Options{AccessToken: "tok"}, nil, nil)
	require.NoError(t, client.Delete(context.Background(), "things/1", nil))
}

func TestTruncateBase64InJSON(t *testing.T) {
	long := `{"doc": "` + repeatBase64(300) + `"}`
	truncated := truncateBase64InJSON(long, 100)
	assert.Less(t, len(truncated), len(long))
	assert.Contains(t, truncated, "base64 truncated")

	short := `{"doc": "QUJD"}`
	assert.Equal(t, short, truncateBase64InJSON(short, 100))
}

func repeatBase64(n int) string {
	out := make([]byte, n)
	for i := range out {
		out[i] = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdef"[i%32]
	}
	return string(out)
}
