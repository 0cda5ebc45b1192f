package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"echosign-bridge/internal/domain/entity"
)

const (
	maxBodyLogLength = 500 // Maximum characters to log for body

	defaultTimeout = 30 * time.Second
)

// Options configures the Echosign transport. AccessToken is sent on every
// request; APIUserEmail, when set, is forwarded as the x-api-user header so
// calls are made on behalf of that user.
type Options struct {
	AccessToken  string
	APIUserEmail string
	Timeout      time.Duration
}

type HTTPClient interface {
	// Get performs a GET request and decodes the JSON response into result
	Get(ctx context.Context, path string, result interface{}) error
	// GetRaw performs a GET request and returns the response body verbatim
	GetRaw(ctx context.Context, path string) ([]byte, error)
	// Post performs a JSON POST request
	Post(ctx context.Context, path string, body interface{}, result interface{}) error
	// PostMultipart performs a multipart/form-data POST request
	PostMultipart(ctx context.Context, path string, fields map[string]string, files map[string]FileUpload, result interface{}) error
	// Put performs a JSON PUT request
	Put(ctx context.Context, path string, body interface{}, result interface{}) error
	// Delete performs a DELETE request
	Delete(ctx context.Context, path string, result interface{}) error
}

// FileUpload represents a file to be uploaded
type FileUpload struct {
	Filename string
	MimeType string
	Content  []byte
}

// APILogSaver interface for saving API logs
type APILogSaver interface {
	Save(ctx context.Context, log *entity.APILog) error
}

type httpClient struct {
	client      *http.Client
	baseURL     string
	opts        Options
	apiLogSaver APILogSaver
	logger      *zap.Logger
}

// NewHTTPClient builds a transport rooted at baseURL, the version-suffixed
// access point resolved at session construction. apiLogSaver may be nil when
// no call audit is wanted (library used standalone).
func NewHTTPClient(baseURL string, opts Options, apiLogSaver APILogSaver, logger *zap.Logger) HTTPClient {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &httpClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		opts:        opts,
		apiLogSaver: apiLogSaver,
		logger:      logger,
	}
}

// Headers builds the standard header set for an Echosign API request: the
// Access-Token, the Content-Type (omitted when empty, e.g. multipart uploads
// set their own boundary) and x-api-user when acting on behalf of a user.
// Pure function, no I/O.
func Headers(accessToken, contentType, apiUserEmail string) http.Header {
	h := http.Header{}
	h.Set("Access-Token", accessToken)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	if apiUserEmail != "" {
		h.Set("x-api-user", "email:"+apiUserEmail)
	}
	return h
}

// truncateString truncates a string if it exceeds maxLength
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + fmt.Sprintf("... [truncated, total %d chars]", len(s))
}

// truncateBase64InJSON truncates base64-like values in JSON string
func truncateBase64InJSON(jsonStr string, maxLength int) string {
	// Pattern to match base64-like content (long strings of alphanumeric + /+=)
	base64Pattern := regexp.MustCompile(`"([A-Za-z0-9+/=]{100,})"`)

	return base64Pattern.ReplaceAllStringFunc(jsonStr, func(match string) string {
		// Remove quotes for processing
		content := match[1 : len(match)-1]
		if len(content) > maxLength {
			return fmt.Sprintf(`"%s... [base64 truncated, total %d chars]"`, content[:maxLength], len(content))
		}
		return match
	})
}

// formatHeadersForLog formats HTTP headers for logging in "Header Key=Value" format
func formatHeadersForLog(headers http.Header) string {
	var sb strings.Builder
	for key, values := range headers {
		for _, value := range values {
			// Truncate very long header values
			if len(value) > 100 {
				value = value[:100] + "..."
			}
			sb.WriteString(fmt.Sprintf("Header %s=%s\n", key, value))
		}
	}
	return sb.String()
}

// logRequest logs the HTTP request details
func (c *httpClient) logRequest(method, url string, headers http.Header, body []byte) {
	var logBuilder strings.Builder

	logBuilder.WriteString("\n>>> [ECHOSIGN-REQ]\n")
	logBuilder.WriteString(fmt.Sprintf("Method: %s\n", method))
	logBuilder.WriteString(fmt.Sprintf("URL: %s\n", url))
	logBuilder.WriteString(formatHeadersForLog(headers))

	if len(body) > 0 {
		bodyStr := truncateBase64InJSON(string(body), 100)
		bodyStr = truncateString(bodyStr, maxBodyLogLength)
		logBuilder.WriteString(fmt.Sprintf("REQUEST BODY: %s\n", bodyStr))
	}

	c.logger.Debug(logBuilder.String())
}

// logResponse logs the HTTP response details
func (c *httpClient) logResponse(statusCode int, statusText string, duration time.Duration, headers http.Header, body []byte) {
	var logBuilder strings.Builder

	logBuilder.WriteString("\n>>> [ECHOSIGN-RESPONSE]\n")
	logBuilder.WriteString(fmt.Sprintf("Status: %d %s\n", statusCode, statusText))
	logBuilder.WriteString(fmt.Sprintf("Duration: %s\n", duration))
	logBuilder.WriteString(formatHeadersForLog(headers))

	bodyStr := truncateString(string(body), maxBodyLogLength)
	logBuilder.WriteString(fmt.Sprintf("Body: %s\n", bodyStr))

	c.logger.Debug(logBuilder.String())
}

// saveAPILog saves the API request/response log to the audit store
func (c *httpClient) saveAPILog(method, endpoint string, requestBody []byte, responseBody []byte, statusCode int, duration time.Duration) {
	if c.apiLogSaver == nil {
		return
	}

	// Truncate base64 in request body
	reqBodyStr := ""
	if len(requestBody) > 0 {
		reqBodyStr = truncateBase64InJSON(string(requestBody), 100)
		// Limit total size
		if len(reqBodyStr) > 10000 {
			reqBodyStr = reqBodyStr[:10000] + "... [truncated]"
		}
	}

	// Truncate response body if too long
	respBodyStr := string(responseBody)
	if len(respBodyStr) > 10000 {
		respBodyStr = respBodyStr[:10000] + "... [truncated]"
	}

	apiLog := &entity.APILog{
		Endpoint:     endpoint,
		Method:       method,
		RequestBody:  reqBodyStr,
		ResponseBody: respBodyStr,
		StatusCode:   statusCode,
		Duration:     duration.Milliseconds(),
		Email:        c.opts.APIUserEmail,
		CreatedAt:    time.Now(),
	}

	// Save asynchronously to not block the request
	go func() {
		if err := c.apiLogSaver.Save(context.Background(), apiLog); err != nil {
			c.logger.Warn("Failed to save API log",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}
	}()
}

func (c *httpClient) doRequest(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	fullURL := c.baseURL + path

	var bodyReader io.Reader
	var jsonBody []byte
	if body != nil {
		var err error
		jsonBody, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = Headers(c.opts.AccessToken, "application/json", c.opts.APIUserEmail)
	req.Header.Set("Accept", "application/json")

	// Log request details
	c.logRequest(method, fullURL, req.Header, jsonBody)

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(startTime)

	// Read response body
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Log response details
	c.logResponse(resp.StatusCode, resp.Status, duration, resp.Header, respBody)

	// Save API log to the audit store
	c.saveAPILog(method, fullURL, jsonBody, respBody, resp.StatusCode, duration)

	// Check for HTTP errors
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyError(resp.StatusCode, respBody)
	}

	// Parse response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return decodeError(resp.StatusCode, err)
		}
	}

	return nil
}

func (c *httpClient) Get(ctx context.Context, path string, result interface{}) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, result)
}

// GetRaw fetches a binary or text endpoint (combined documents, audit trails,
// form data CSV) and returns the body without any transformation.
func (c *httpClient) GetRaw(ctx context.Context, path string) ([]byte, error) {
	fullURL := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = Headers(c.opts.AccessToken, "", c.opts.APIUserEmail)

	c.logRequest(http.MethodGet, fullURL, req.Header, nil)

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(startTime)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logResponse(resp.StatusCode, resp.Status, duration, resp.Header, respBody)
	c.saveAPILog(http.MethodGet, fullURL, nil, respBody, resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyError(resp.StatusCode, respBody)
	}

	return respBody, nil
}

func (c *httpClient) Post(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.doRequest(ctx, http.MethodPost, path, body, result)
}

func (c *httpClient) Put(ctx context.Context, path string, body interface{}, result interface{}) error {
	return c.doRequest(ctx, http.MethodPut, path, body, result)
}

func (c *httpClient) Delete(ctx context.Context, path string, result interface{}) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, result)
}

// PostMultipart sends a multipart/form-data POST request. The Content-Type
// header is set by the multipart writer (boundary included), not by Headers.
func (c *httpClient) PostMultipart(ctx context.Context, path string, fields map[string]string, files map[string]FileUpload, result interface{}) error {
	fullURL := c.baseURL + path

	// Create multipart writer
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	// Add form fields
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("failed to write field %s: %w", key, err)
		}
	}

	// Add files
	for fieldName, file := range files {
		part, err := writer.CreateFormFile(fieldName, file.Filename)
		if err != nil {
			return fmt.Errorf("failed to create form file %s: %w", fieldName, err)
		}
		if _, err := part.Write(file.Content); err != nil {
			return fmt.Errorf("failed to write file content %s: %w", fieldName, err)
		}
	}

	// Close writer
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = Headers(c.opts.AccessToken, "", c.opts.APIUserEmail)
	// Set content type with boundary
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	// Build multipart body summary for logging
	var bodySummary strings.Builder
	bodySummary.WriteString("{fields: [")
	fieldKeys := make([]string, 0, len(fields))
	for k := range fields {
		fieldKeys = append(fieldKeys, k)
	}
	bodySummary.WriteString(strings.Join(fieldKeys, ", "))
	bodySummary.WriteString("], files: [")
	fileKeys := make([]string, 0, len(files))
	for k, f := range files {
		fileKeys = append(fileKeys, fmt.Sprintf("%s(%s, %d bytes)", k, f.Filename, len(f.Content)))
	}
	bodySummary.WriteString(strings.Join(fileKeys, ", "))
	bodySummary.WriteString("]}")

	// Log request details
	c.logRequest(http.MethodPost, fullURL, req.Header, []byte(bodySummary.String()))

	startTime := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(startTime)

	// Read response body
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	// Log response details
	c.logResponse(resp.StatusCode, resp.Status, duration, resp.Header, respBody)

	// Save API log (for multipart, log the body summary)
	c.saveAPILog(http.MethodPost, fullURL, []byte(bodySummary.String()), respBody, resp.StatusCode, duration)

	// Check for HTTP errors
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyError(resp.StatusCode, respBody)
	}

	// Parse response
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return decodeError(resp.StatusCode, err)
		}
	}

	return nil
}
