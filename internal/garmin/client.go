package garmin

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"gcexport/internal/logging"
	"gcexport/internal/services"
)

// The remote service rejects unknown clients, so every request presents a
// browser User-Agent.
const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/54.0.2816.0 Safari/537.36"

const requestTimeout = 60 * time.Second

// StatusError reports an HTTP status outside the documented set {200, 204}.
// It classifies as services.ErrTransport.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("bad return code (%d) for: %s", e.Code, e.URL)
}

func (e *StatusError) Is(target error) bool {
	return target == services.ErrTransport
}

// Client owns the authenticated session (cookie state plus base headers) and
// issues every request of a run. It is not safe for concurrent use; the
// exporter is strictly sequential.
type Client struct {
	httpClient *http.Client
	endpoints  endpoints
	userAgent  string
	logger     *slog.Logger
}

// Option customises Client construction.
type Option func(*Client)

// WithBaseURLs overrides the Connect and SSO hosts (used in tests).
func WithBaseURLs(connectURL, ssoURL string) Option {
	return func(c *Client) {
		c.endpoints.connect = strings.TrimRight(connectURL, "/")
		c.endpoints.sso = strings.TrimRight(ssoURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client. The client must carry
// a cookie jar or the session cookies will be lost between requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New constructs a Client with a fresh cookie jar. Session state lives for
// one run and is never persisted.
func New(logger *slog.Logger, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	client := &Client{
		httpClient: &http.Client{Jar: jar, Timeout: requestTimeout},
		endpoints:  endpoints{connect: defaultConnectURL, sso: defaultSSOURL},
		userAgent:  defaultUserAgent,
		logger:     logger,
	}
	if client.logger == nil {
		client.logger = logging.NewNop()
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// do issues one request. A GET is sent unless form is non-nil, in which case
// the values are submitted as a form POST. A 204 response yields an empty
// body and no error (the no-GPS-data case); any status other than 200 yields
// a *StatusError.
func (c *Client) do(ctx context.Context, target string, form url.Values) ([]byte, error) {
	method := http.MethodGet
	var body io.Reader
	if form != nil {
		method = http.MethodPost
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	attrs := []any{logging.String("method", method), logging.String("url", target)}
	if id, ok := services.ActivityIDFromContext(ctx); ok {
		attrs = append(attrs, logging.Int64(logging.FieldActivityID, id))
	}
	if runID, ok := services.RunIDFromContext(ctx); ok {
		attrs = append(attrs, logging.String("run_id", runID))
	}
	c.logger.Debug("request", attrs...)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", target, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return nil, nil
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response %s: %w", target, err)
		}
		return data, nil
	default:
		return nil, &StatusError{Code: resp.StatusCode, URL: target}
	}
}

// DownloadGPX fetches the GPX track export for one activity.
func (c *Client) DownloadGPX(ctx context.Context, activityID int64) ([]byte, error) {
	return c.do(ctx, c.endpoints.exportGPX(activityID), nil)
}

// DownloadTCX fetches the TCX track export for one activity.
func (c *Client) DownloadTCX(ctx context.Context, activityID int64) ([]byte, error) {
	return c.do(ctx, c.endpoints.exportTCX(activityID), nil)
}

// DownloadOriginal fetches the originally uploaded file (a zip archive) for
// one activity.
func (c *Client) DownloadOriginal(ctx context.Context, activityID int64) ([]byte, error) {
	return c.do(ctx, c.endpoints.original(activityID), nil)
}
