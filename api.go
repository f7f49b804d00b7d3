// Package hirewise provides a Go client for the HireWise service
// marketplace. It wraps the REST API for catalog and messaging operations
// and maintains a live, server-authoritative view of one conversation at a
// time by pairing a WebSocket event feed with history refetches.
package hirewise

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/gzhttp"
)

// APIClient communicates with the HireWise REST API. It works independently
// of the live socket — no open connection is needed for any call here.
type APIClient struct {
	apiServer  string
	tokens     TokenSource
	httpClient *http.Client
}

// DefaultAPIServer is the production HireWise API server.
const DefaultAPIServer = "https://api.hirewise.app"

// NewAPIClient creates a REST client. apiServer defaults to
// DefaultAPIServer when empty; tokens must not be nil.
func NewAPIClient(apiServer string, tokens TokenSource) *APIClient {
	if apiServer == "" {
		apiServer = DefaultAPIServer
	}
	return &APIClient{
		apiServer: strings.TrimRight(apiServer, "/"),
		tokens:    tokens,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: gzhttp.Transport(http.DefaultTransport),
		},
	}
}

// APIServer returns the base API server URL.
func (c *APIClient) APIServer() string { return c.apiServer }

// --------------------------------------------------------------------------
// Request plumbing
// --------------------------------------------------------------------------

// authedRequest creates an HTTP request carrying the bearer token and a
// fresh request id.
func (c *APIClient) authedRequest(ctx context.Context, method, path, contentType string, body io.Reader) (*http.Request, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiServer+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// doJSON sends an authed request and decodes the JSON response into dest.
func (c *APIClient) doJSON(ctx context.Context, method, path string, reqBody any, dest any) error {
	var body io.Reader
	contentType := ""
	if reqBody != nil {
		b, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	}

	req, err := c.authedRequest(ctx, method, path, contentType, body)
	if err != nil {
		return err
	}
	return c.do(req, dest)
}

func (c *APIClient) do(req *http.Request, dest any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HireWise returned %d: %s", resp.StatusCode, string(b))
	}

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// --------------------------------------------------------------------------
// Conversations
// --------------------------------------------------------------------------

// ListConversations fetches the conversation list, most recently active
// first (server orders by -last_message_at, -created_at).
func (c *APIClient) ListConversations(ctx context.Context, page, pageSize int) (*ConversationsPage, error) {
	params := url.Values{}
	params.Set("ordering", "-last_message_at,-created_at")
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}
	var resp ConversationsPage
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/conversations?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetConversation fetches a single conversation including its full message
// history, oldest first.
func (c *APIClient) GetConversation(ctx context.Context, id int64) (*ConversationDetail, error) {
	var resp ConversationDetail
	path := "/api/v1/conversations/" + strconv.FormatInt(id, 10)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchHistory returns the server-authoritative message list for a
// conversation. Implements HistoryFetcher.
func (c *APIClient) FetchHistory(ctx context.Context, conversationID int64) ([]Message, error) {
	detail, err := c.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	return detail.Messages, nil
}

// SendMessage submits a text message. The returned Message reflects the
// mutation outcome only — visibility in the conversation arrives via the
// live echo and the refetch it triggers.
func (c *APIClient) SendMessage(ctx context.Context, conversationID int64, body string) (*Message, error) {
	req := map[string]string{"body": body, "kind": string(KindText)}
	var resp Message
	path := "/api/v1/conversations/" + strconv.FormatInt(conversationID, 10) + "/messages"
	if err := c.doJSON(ctx, http.MethodPost, path, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SendAttachment submits a file or image message as multipart form data.
func (c *APIClient) SendAttachment(ctx context.Context, conversationID int64, upload AttachmentUpload) (*Message, error) {
	kind := upload.Kind
	if kind == "" {
		kind = KindFile
		if strings.HasPrefix(upload.MIMEType, "image/") {
			kind = KindImage
		}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("kind", string(kind)); err != nil {
		return nil, err
	}
	fw, err := mw.CreateFormFile("file", upload.Name)
	if err != nil {
		return nil, err
	}
	if _, err := fw.Write(upload.Data); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	path := "/api/v1/conversations/" + strconv.FormatInt(conversationID, 10) + "/messages"
	req, err := c.authedRequest(ctx, http.MethodPost, path, mw.FormDataContentType(), &buf)
	if err != nil {
		return nil, err
	}
	var resp Message
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --------------------------------------------------------------------------
// Catalog
// --------------------------------------------------------------------------

// ListCategories fetches the service category taxonomy.
func (c *APIClient) ListCategories(ctx context.Context) ([]Category, error) {
	var resp CategoriesResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

// ListJobs fetches the job board. If query is non-empty, searches by title.
func (c *APIClient) ListJobs(ctx context.Context, query, category string, page, pageSize int) (*JobsPage, error) {
	var resp JobsPage
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/jobs"+buildQuery(query, category, page, pageSize), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetJob fetches a single job by id.
func (c *APIClient) GetJob(ctx context.Context, id int64) (*Job, error) {
	var resp Job
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/jobs/"+strconv.FormatInt(id, 10), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetMyProfile fetches the authenticated user's profile.
func (c *APIClient) GetMyProfile(ctx context.Context) (*Profile, error) {
	var resp Profile
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/profile", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateProfile pushes profile edits.
func (c *APIClient) UpdateProfile(ctx context.Context, req UpdateProfileRequest) error {
	return c.doJSON(ctx, http.MethodPut, "/api/v1/profile", req, nil)
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func buildQuery(query, category string, page, pageSize int) string {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if category != "" {
		params.Set("category", category)
	}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if pageSize > 0 {
		params.Set("pageSize", strconv.Itoa(pageSize))
	}
	if len(params) == 0 {
		return ""
	}
	return "?" + params.Encode()
}
