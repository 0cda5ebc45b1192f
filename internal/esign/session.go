package esign

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"echosign-bridge/internal/infrastructure/httpclient"
)

const (
	// DefaultDiscoveryURL is the global discovery endpoint. Accounts on a
	// regional shard get redirected by the api_access_point it returns.
	DefaultDiscoveryURL = "https://api.echosign.com/api/rest/v6/base_uris"

	// apiVersionPath is the fixed version segment appended to the discovered
	// access point. The operation surface implemented here (agreement state,
	// visibility, signing urls, members, reminders, form data) is the v6 API.
	apiVersionPath = "api/rest/v6/"
)

// Options configures a Session. AccessToken is required. UserEmail, when set,
// scopes every call to that user via the x-api-user header. DiscoveryURL
// defaults to DefaultDiscoveryURL. LogSaver and Logger are optional; leaving
// them nil disables call auditing and logging respectively.
type Options struct {
	AccessToken  string
	UserID       string
	UserEmail    string
	DiscoveryURL string
	Timeout      time.Duration
	Logger       *zap.Logger
	LogSaver     httpclient.APILogSaver
}

// Session is an authenticated connection to the Echosign API. The account's
// API access point is discovered exactly once, at construction; all resource
// operations go through the transport rooted there.
type Session struct {
	accessToken string
	userID      string
	userEmail   string
	endpoint    string
	client      httpclient.HTTPClient
	logger      *zap.Logger
}

type baseURIsResponse struct {
	APIAccessPoint string `json:"api_access_point"`
}

// NewSession discovers the account's API access point and returns a session
// bound to it. A 401 from discovery is an AuthError; any other failure, or a
// response without an access point, is an APIError.
func NewSession(ctx context.Context, opts Options) (*Session, error) {
	if opts.AccessToken == "" {
		return nil, fmt.Errorf("access token is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	discoveryURL := opts.DiscoveryURL
	if discoveryURL == "" {
		discoveryURL = DefaultDiscoveryURL
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	endpoint, err := discoverAccessPoint(ctx, discoveryURL, opts.AccessToken, timeout)
	if err != nil {
		return nil, err
	}

	logger.Info("Echosign session established",
		zap.String("endpoint", endpoint),
		zap.String("user_email", opts.UserEmail),
	)

	client := httpclient.NewHTTPClient(endpoint, httpclient.Options{
		AccessToken:  opts.AccessToken,
		APIUserEmail: opts.UserEmail,
		Timeout:      timeout,
	}, opts.LogSaver, logger)

	return &Session{
		accessToken: opts.AccessToken,
		userID:      opts.UserID,
		userEmail:   opts.UserEmail,
		endpoint:    endpoint,
		client:      client,
		logger:      logger,
	}, nil
}

// discoverAccessPoint performs the one-shot base_uris call with its own
// http.Client; the session transport does not exist until the access point is
// known.
func discoverAccessPoint(ctx context.Context, discoveryURL, accessToken string, timeout time.Duration) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create discovery request: %w", err)
	}
	req.Header.Set("Access-Token", accessToken)

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach discovery endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read discovery response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return "", &httpclient.AuthError{APIError: httpclient.APIError{
			StatusCode: resp.StatusCode,
			Message:    "access token rejected by discovery endpoint",
		}}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &httpclient.APIError{
			StatusCode: resp.StatusCode,
			Message:    "endpoint discovery failed",
		}
	}

	var response baseURIsResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", &httpclient.APIError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("failed to decode discovery response: %v", err),
		}
	}
	if response.APIAccessPoint == "" {
		return "", &httpclient.APIError{
			StatusCode: resp.StatusCode,
			Message:    "discovery response did not contain an api access point",
		}
	}

	return response.APIAccessPoint + apiVersionPath, nil
}

// BaseEndpoint returns the resolved, version-suffixed API endpoint.
func (s *Session) BaseEndpoint() string {
	return s.endpoint
}

type userAgreementListResponse struct {
	UserAgreementList []struct {
		ID                  string `json:"agreementId"`
		Name                string `json:"name"`
		Status              string `json:"status"`
		DisplayDate         string `json:"displayDate"`
		DisplayUserSetInfos []struct {
			DisplayUserSetMemberInfos []struct {
				Email    string `json:"email"`
				FullName string `json:"fullName"`
				Company  string `json:"company"`
			} `json:"displayUserSetMemberInfos"`
		} `json:"displayUserSetInfos"`
	} `json:"userAgreementList"`
}

// ListAgreements fetches the agreements visible to the session user, newest
// first as the remote orders them. query, when non-empty, is passed through
// as the remote's free-text search parameter. An agreement whose status is
// outside the known vocabulary fails the whole listing with
// UnknownStatusError rather than being silently coerced.
func (s *Session) ListAgreements(ctx context.Context, query string) ([]*Agreement, error) {
	var response userAgreementListResponse
	if err := s.client.Get(ctx, agreementsPath(query), &response); err != nil {
		return nil, fmt.Errorf("failed to list agreements: %w", err)
	}

	agreements := make([]*Agreement, 0, len(response.UserAgreementList))
	for _, item := range response.UserAgreementList {
		status, err := ParseAgreementStatus(item.Status)
		if err != nil {
			return nil, fmt.Errorf("agreement %s: %w", item.ID, err)
		}

		agreement := &Agreement{
			session: s,
			ID:      item.ID,
			Name:    item.Name,
			Status:  status,
		}

		if item.DisplayDate != "" {
			date, err := time.Parse(time.RFC3339, item.DisplayDate)
			if err != nil {
				return nil, fmt.Errorf("agreement %s: invalid display date %q: %w", item.ID, item.DisplayDate, err)
			}
			agreement.Date = date
		}

		// The display user set comes inline with the listing; no per-user
		// round-trips are needed.
		for _, setInfo := range item.DisplayUserSetInfos {
			for _, member := range setInfo.DisplayUserSetMemberInfos {
				agreement.Users = append(agreement.Users, &DisplayUser{
					Email:    member.Email,
					FullName: member.FullName,
					Company:  member.Company,
				})
			}
		}

		agreements = append(agreements, agreement)
	}

	s.logger.Debug("Listed agreements",
		zap.Int("count", len(agreements)),
		zap.String("query", query),
	)

	return agreements, nil
}

type libraryDocumentListResponse struct {
	LibraryDocumentList []struct {
		ID                   string   `json:"libraryDocumentId"`
		Name                 string   `json:"name"`
		ModifiedDate         string   `json:"modifiedDate"`
		Scope                string   `json:"scope"`
		LibraryTemplateTypes []string `json:"libraryTemplateTypes"`
	} `json:"libraryDocumentList"`
}

// ListLibraryDocuments fetches the reusable library templates visible to the
// session user. The listing carries only the summary fields; call
// RetrieveComplete on a document for the rest.
func (s *Session) ListLibraryDocuments(ctx context.Context) ([]*LibraryDocument, error) {
	var response libraryDocumentListResponse
	if err := s.client.Get(ctx, "libraryDocuments", &response); err != nil {
		return nil, fmt.Errorf("failed to list library documents: %w", err)
	}

	documents := make([]*LibraryDocument, 0, len(response.LibraryDocumentList))
	for _, item := range response.LibraryDocumentList {
		doc := &LibraryDocument{
			session: s,
			ID:      item.ID,
			Name:    item.Name,
			Scope:   LibraryScope(item.Scope),
		}

		if item.ModifiedDate != "" {
			date, err := time.Parse(time.RFC3339, item.ModifiedDate)
			if err != nil {
				return nil, fmt.Errorf("library document %s: invalid modified date %q: %w", item.ID, item.ModifiedDate, err)
			}
			doc.ModifiedDate = date
		}

		for _, templateType := range item.LibraryTemplateTypes {
			switch templateType {
			case "DOCUMENT":
				doc.Document = true
			case "FORM_FIELD_LAYER":
				doc.FormFieldLayer = true
			}
		}

		documents = append(documents, doc)
	}

	s.logger.Debug("Listed library documents", zap.Int("count", len(documents)))

	return documents, nil
}
