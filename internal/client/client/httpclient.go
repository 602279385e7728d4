package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"

	"github.com/medhelper/medhelper/internal/client/models"
	"github.com/medhelper/medhelper/internal/common"
	"github.com/medhelper/medhelper/internal/logging"
)

const maxBodySize = 1 << 20

type HTTPClient struct {
	baseURL        *url.URL
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func(ctx context.Context)
	log            logging.Logger
	newRequestID   func() string
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Its cookie jar is
// kept as given.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

// WithTimeout sets the per-request timeout of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

// WithTokenSource supplies the bearer token for authenticated reads.
func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

// WithUnauthorizedHandler registers fn to run when a request that carried a
// bearer token is answered with 401.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *HTTPClient) { c.onUnauthorized = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

// NewHTTPClient builds a client for the API at baseURL, e.g.
// "http://localhost:8000". Paths passed to the API methods are resolved
// against it.
func NewHTTPClient(baseURL string, opts ...Option) (*HTTPClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host required", baseURL)
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}

	c := &HTTPClient{
		baseURL:      u,
		http:         &http.Client{Jar: jar, Timeout: 15 * time.Second},
		log:          logging.Nop{},
		newRequestID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login/", nil, body, &resp, false); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: access_token missing", ErrBadResponse)
	}
	return resp.AccessToken, nil
}

func (c *HTTPClient) Register(ctx context.Context, req models.SignUp) error {
	return c.do(ctx, http.MethodPost, "/api/auth/register/", nil, req, nil, false)
}

func (c *HTTPClient) VerifyEmail(ctx context.Context, otp string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/verify-email/", nil, map[string]string{"otp": otp}, nil, false)
}

func (c *HTTPClient) ResendOTP(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/resend-otp/", nil, map[string]string{"email": email}, nil, false)
}

func (c *HTTPClient) RequestPasswordReset(ctx context.Context, email string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/request-password-reset/", nil, map[string]string{"email": email}, nil, false)
}

func (c *HTTPClient) SetNewPassword(ctx context.Context, req models.PasswordReset) error {
	return c.do(ctx, http.MethodPatch, "/api/auth/set-new-password/", nil, req, nil, false)
}

// CartCount returns the number of items in the signed-in user's cart.
func (c *HTTPClient) CartCount(ctx context.Context) (int, error) {
	var resp struct {
		Items []models.CartItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/cart/", nil, nil, &resp, true); err != nil {
		return 0, err
	}
	return len(resp.Items), nil
}

func (c *HTTPClient) Notifications(ctx context.Context, page, pageSize int) (*models.NotificationPage, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("page_size", strconv.Itoa(pageSize))

	var resp models.NotificationPage
	if err := c.do(ctx, http.MethodGet, "/api/notifications/", q, nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) MarkNotificationRead(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/notifications/%d/mark-read/", id)
	return c.do(ctx, http.MethodPatch, path, nil, nil, nil, true)
}

// do sends one JSON request. When authed is set the bearer token, if any,
// is attached. out may be nil when the reply body is not needed.
func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, in, out any, authed bool) error {
	u := c.baseURL.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := c.newRequestID()
	req.Header.Set(common.RequestIDHeader, reqID)

	bearer := false
	if authed && c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("load token: %w", err)
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
			bearer = true
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug(ctx, "request failed", "method", method, "path", path, "request_id", reqID, "error", err)
		return c.mapError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	c.log.Debug(ctx, "request done", "method", method, "path", path, "request_id", reqID, "status", resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized && bearer && c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if len(bytes.TrimSpace(data)) == 0 {
			return &APIError{Status: resp.StatusCode}
		}
		if err := json.Unmarshal(data, &eb); err != nil {
			return fmt.Errorf("%w: status %d: %v", ErrBadResponse, resp.StatusCode, err)
		}
		return &APIError{Status: resp.StatusCode, Message: eb.reason()}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		if out != nil {
			return fmt.Errorf("%w: empty body", ErrBadResponse)
		}
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

// mapError converts transport errors to package sentinels. Cancellation of
// the caller's context is passed through unchanged.
func (c *HTTPClient) mapError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
