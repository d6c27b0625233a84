package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrCredentialExpired marks a rejected call whose authorization is invalid
// or expired. Callers prompt for re-authorization instead of retrying.
var ErrCredentialExpired = errors.New("document credential expired")

// TokenFunc supplies the bearer credential for one call.
type TokenFunc func(ctx context.Context) (string, error)

type Client struct {
	http    *http.Client
	baseURL string
	token   TokenFunc
}

func NewClient(httpClient *http.Client, baseURL string, token TokenFunc) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL = strings.TrimSpace(strings.TrimRight(baseURL, "/"))
	if baseURL == "" {
		baseURL = "https://docs.googleapis.com"
	}
	return &Client{
		http:    httpClient,
		baseURL: baseURL,
		token:   token,
	}
}

type documentResponse struct {
	DocumentID string       `json:"documentId"`
	Title      string       `json:"title"`
	Body       bodyResponse `json:"body"`
}

type bodyResponse struct {
	Content []structuralElement `json:"content"`
}

type structuralElement struct {
	StartIndex int64              `json:"startIndex"`
	EndIndex   int64              `json:"endIndex"`
	Paragraph  *paragraphResponse `json:"paragraph,omitempty"`
}

type paragraphResponse struct {
	Elements []paragraphElement `json:"elements"`
}

type paragraphElement struct {
	TextRun *textRun `json:"textRun,omitempty"`
}

type textRun struct {
	Content string `json:"content"`
}

// Get fetches a full document snapshot.
func (c *Client) Get(ctx context.Context, documentID string) (*Document, error) {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return nil, fmt.Errorf("document_id is required")
	}
	body, err := c.do(ctx, http.MethodGet, "/v1/documents/"+url.PathEscape(documentID), nil)
	if err != nil {
		return nil, fmt.Errorf("document get: %w", err)
	}
	var out documentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("document get: %w", err)
	}
	return documentFromResponse(out), nil
}

type createDocumentRequest struct {
	Title string `json:"title"`
}

// Create creates a new document with the given title.
func (c *Client) Create(ctx context.Context, title string) (*Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	body, err := c.do(ctx, http.MethodPost, "/v1/documents", createDocumentRequest{Title: title})
	if err != nil {
		return nil, fmt.Errorf("document create: %w", err)
	}
	var out documentResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("document create: %w", err)
	}
	return documentFromResponse(out), nil
}

type batchUpdateRequest struct {
	Requests []Request `json:"requests"`
}

// BatchUpdate applies all requests in one atomic batch. The server applies
// every request or none of them.
func (c *Client) BatchUpdate(ctx context.Context, documentID string, requests []Request) error {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return fmt.Errorf("document_id is required")
	}
	if len(requests) == 0 {
		return fmt.Errorf("at least one request is required")
	}
	_, err := c.do(ctx, http.MethodPost, "/v1/documents/"+url.PathEscape(documentID)+":batchUpdate", batchUpdateRequest{Requests: requests})
	if err != nil {
		return fmt.Errorf("document batch update: %w", err)
	}
	return nil
}

func documentFromResponse(res documentResponse) *Document {
	doc := &Document{
		DocumentID: strings.TrimSpace(res.DocumentID),
		Title:      strings.TrimSpace(res.Title),
	}
	for _, elem := range res.Body.Content {
		if elem.Paragraph == nil {
			continue
		}
		var sb strings.Builder
		for _, pe := range elem.Paragraph.Elements {
			if pe.TextRun == nil {
				continue
			}
			sb.WriteString(pe.TextRun.Content)
		}
		doc.Paragraphs = append(doc.Paragraphs, Paragraph{
			Text:       sb.String(),
			StartIndex: elem.StartIndex,
			EndIndex:   elem.EndIndex,
		})
	}
	return doc
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

const maxAttempts = 2

func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	if c == nil || c.http == nil {
		return nil, fmt.Errorf("document client is not initialized")
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, status, headers, err := c.request(ctx, method, path, payload)
		if err != nil {
			lastErr = err
		} else if status >= 200 && status < 300 {
			return body, nil
		} else {
			lastErr = statusError(status, body)
			if status == http.StatusUnauthorized || status == http.StatusForbidden {
				return nil, lastErr
			}
		}
		if attempt >= maxAttempts {
			break
		}
		wait, retryable := retryDelay(lastErr, headers)
		if !retryable {
			break
		}
		if err := sleepWithContext(ctx, wait); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func (c *Client) request(ctx context.Context, method, path string, payload any) ([]byte, int, http.Header, error) {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, nil, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, nil, err
	}
	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return nil, 0, nil, fmt.Errorf("resolve credential: %w", err)
		}
		if strings.TrimSpace(token) == "" {
			return nil, 0, nil, ErrCredentialExpired
		}
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return nil, resp.StatusCode, resp.Header, readErr
	}
	return raw, resp.StatusCode, resp.Header, nil
}

type httpError struct {
	status  int
	message string
}

func (e *httpError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("document api http %d", e.status)
	}
	return fmt.Sprintf("document api http %d: %s", e.status, e.message)
}

func statusError(status int, body []byte) error {
	var parsed errorResponse
	message := ""
	if err := json.Unmarshal(body, &parsed); err == nil {
		message = strings.TrimSpace(parsed.Error.Message)
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		if message != "" {
			return fmt.Errorf("%w: http %d: %s", ErrCredentialExpired, status, message)
		}
		return fmt.Errorf("%w: http %d", ErrCredentialExpired, status)
	}
	return &httpError{status: status, message: message}
}

func retryDelay(err error, headers http.Header) (time.Duration, bool) {
	var he *httpError
	if !errors.As(err, &he) {
		return 0, false
	}
	switch {
	case he.status == http.StatusTooManyRequests:
		if headers != nil {
			retryAfter := strings.TrimSpace(headers.Get("Retry-After"))
			if secs, convErr := strconv.Atoi(retryAfter); convErr == nil && secs > 0 {
				return time.Duration(secs) * time.Second, true
			}
		}
		return 1 * time.Second, true
	case he.status >= 500 && he.status <= 599:
		return 500 * time.Millisecond, true
	default:
		return 0, false
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
