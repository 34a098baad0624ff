package sessiongate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient configures the Client to use a custom http.Client.
//
// This is useful for setting timeouts, proxies, tracing, or test transports.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// Client is a backend-facing AuthGate HTTP client.
//
// The Client:
//   - never refreshes tokens
//   - never mutates authentication state
//   - forwards existing authentication context only
//   - treats "not authenticated" as a valid state
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new AuthGate backend client.
//
// baseURL must point to the AuthGate HTTP endpoint (e.g. "https://auth.example.com").
// Any trailing slash is trimmed.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ErrorResponse is the error envelope returned by AuthGate.
type ErrorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// doJSON performs req, decoding a 2xx body into out and any other body into
// errOut. Either target may be nil. The body is closed before returning.
func (c *Client) doJSON(req *http.Request, out any, errOut *ErrorResponse) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out != nil {
			if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
				return resp, err
			}
		}
		return resp, nil
	}

	if errOut != nil {
		_ = json.NewDecoder(resp.Body).Decode(errOut)
	}

	return resp, nil
}

// forwardAccessAuth forwards the AuthGate access cookie from an incoming
// request without inspecting it.
func forwardAccessAuth(req *http.Request, incoming *http.Request) {
	if incoming == nil {
		return
	}

	if c, err := incoming.Cookie(AccessCookieName); err == nil {
		req.AddCookie(c)
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, incoming *http.Request) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	forwardAccessAuth(req, incoming)

	return req, nil
}

// DoJSONRequest performs a raw HTTP request against the AuthGate API and
// optionally decodes a successful JSON response into out.
//
// Behavior and guarantees:
//   - Forwards the AuthGate access cookie from the incoming request, if present
//   - Does NOT refresh tokens
//   - Does NOT retry requests
//   - Does NOT interpret HTTP status codes
//   - Decodes JSON only for successful (2xx) responses
func DoJSONRequest[T any](
	ctx context.Context,
	client *Client,
	method string,
	path string,
	incoming *http.Request,
	out *T,
) (*http.Response, error) {
	req, err := client.newRequest(ctx, method, path, incoming)
	if err != nil {
		return nil, err
	}

	if out == nil {
		return client.doJSON(req, nil, nil)
	}
	return client.doJSON(req, out, nil)
}

// CurrentUser represents the authenticated user's identity attributes as
// returned by the AuthGate user endpoint.
type CurrentUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Disabled  bool      `json:"disabled"`
	CreatedAt time.Time `json:"created_at"`
}

// GetCurrentUser retrieves the identity of the currently authenticated user.
//
// Return values:
//   - (*CurrentUser, nil): the request is authenticated and the user exists
//   - (nil, nil): the request is not authenticated (401 Unauthorized)
//   - (nil, error): an unexpected failure occurred
func (c *Client) GetCurrentUser(ctx context.Context, incoming *http.Request) (*CurrentUser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, CurrentUserPath, incoming)
	if err != nil {
		return nil, err
	}

	var user CurrentUser
	var errResp ErrorResponse

	resp, err := c.doJSON(req, &user, &errResp)
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return &user, nil
	case http.StatusUnauthorized:
		return nil, nil
	default:
		if errResp.Error.Code != "" {
			return nil, fmt.Errorf("sessiongate: %s (%s)", errResp.Error.Code, errResp.Error.Message)
		}
		return nil, fmt.Errorf("sessiongate: unexpected status %d", resp.StatusCode)
	}
}
