package sessiongate

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AuthGateProvider resolves sessions against a hosted AuthGate instance.
//
// For each request it makes at most one outbound call:
//
//   - A valid access cookie resolves the user locally, no call is made.
//   - Without keys, the user is looked up through AuthGate's user endpoint.
//   - With keys and a base URL, a missing or invalid access cookie triggers a
//     single refresh. On success the rotated cookies are handed back for the
//     gate to persist and the new access token authenticates this request.
//
// A request without a user under one of the protected prefixes resolves to a
// terminal login response. Transport failures and 5xx answers are returned as
// errors wrapping ErrProviderUnavailable.
type AuthGateProvider struct {
	verifier   *verifier
	client     *Client
	baseURL    string
	audience   string
	httpClient *http.Client
	protected  []string
	log        zerolog.Logger
}

// NewAuthGateProvider validates cfg and builds a provider.
func NewAuthGateProvider(cfg ProviderConfig) (*AuthGateProvider, error) {
	if cfg.Issuer == "" {
		return nil, errors.New("sessiongate: issuer is required")
	}

	if len(cfg.Keys) == 0 && cfg.AuthGateBaseURL == "" {
		return nil, errors.New("sessiongate: at least one key or an AuthGate base URL is required")
	}

	p := &AuthGateProvider{
		baseURL:    strings.TrimRight(cfg.AuthGateBaseURL, "/"),
		audience:   cfg.Audience,
		httpClient: noRedirectClient(cfg.HTTPClient),
		log:        loggerOrNop(cfg.Logger),
	}

	if len(cfg.Keys) > 0 {
		p.verifier = newVerifier(cfg.Issuer, cfg.Audience, cfg.Keys)
	}
	if p.baseURL != "" {
		p.client = NewClient(p.baseURL, WithHTTPClient(p.httpClient))
	}

	for _, prefix := range cfg.ProtectedPrefixes {
		prefix = strings.TrimRight(prefix, "/")
		if prefix == "" || !strings.HasPrefix(prefix, "/") {
			return nil, fmt.Errorf("sessiongate: invalid protected prefix %q", prefix)
		}
		p.protected = append(p.protected, prefix)
	}

	return p, nil
}

// noRedirectClient copies hc so that AuthGate redirects reach the provider
// instead of being followed.
func noRedirectClient(hc *http.Client) *http.Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	c := *hc
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &c
}

// ResolveSession implements Provider.
func (p *AuthGateProvider) ResolveSession(r *http.Request) (Resolution, error) {
	var setCookies []string

	if p.verifier != nil {
		if c, err := r.Cookie(AccessCookieName); err == nil && c.Value != "" {
			u, err := p.verifier.verify(c.Value)
			if err == nil {
				return Resolved(Session{User: u}), nil
			}
			p.log.Debug().Err(err).Msg("Access cookie rejected")
		}

		if p.baseURL != "" && r.Header.Get("Cookie") != "" {
			res, ok, rotated, err := p.refresh(r)
			if err != nil {
				return Resolution{}, err
			}
			if ok {
				return res, nil
			}
			setCookies = rotated
		}
	} else {
		u, err := p.lookupUser(r)
		if err != nil {
			return Resolution{}, err
		}
		if u != nil {
			return Resolved(Session{User: u}), nil
		}
	}

	if p.isProtected(r.URL.Path) {
		loginURL := LoginPath + "?return_to=" + url.QueryEscape(buildReturnTo(r))
		return Terminal(unauthenticatedResponse(r, loginURL, setCookies)), nil
	}

	return Resolved(Session{SetCookies: setCookies}), nil
}

// lookupUser asks AuthGate who owns the forwarded access cookie.
func (p *AuthGateProvider) lookupUser(r *http.Request) (*User, error) {
	if _, err := r.Cookie(AccessCookieName); err != nil {
		return nil, nil
	}

	cu, err := p.client.GetCurrentUser(r.Context(), r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if cu == nil || cu.Disabled {
		return nil, nil
	}

	id, err := uuid.Parse(cu.ID)
	if err != nil {
		return nil, fmt.Errorf("sessiongate: user endpoint returned invalid id %q: %w", cu.ID, err)
	}

	return &User{ID: id, Email: cu.Email}, nil
}

// refresh performs the single refresh attempt.
//
// ok=false means the refresh did not yield a user and resolution continues
// as unauthenticated. A successful refresh has already rotated the refresh
// token, so its Set-Cookie values are returned even when ok is false.
func (p *AuthGateProvider) refresh(r *http.Request) (Resolution, bool, []string, error) {
	reqURL := p.baseURL + RefreshPath + "?audience=" + url.QueryEscape(p.audience)
	req, err := http.NewRequestWithContext(r.Context(), http.MethodPost, reqURL, nil)
	if err != nil {
		return Resolution{}, false, nil, err
	}

	// Cookie-based refresh needs the inbound cookies as is.
	req.Header.Set("Cookie", r.Header.Get("Cookie"))

	if token, ok := CSRFToken(r); ok {
		AttachCSRF(req, token)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return Resolution{}, false, nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	rawSetCookies := resp.Header.Values("Set-Cookie")

	switch {
	case resp.StatusCode >= 500:
		return Resolution{}, false, nil, fmt.Errorf("%w: refresh returned status %d", ErrProviderUnavailable, resp.StatusCode)

	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		h := http.Header{}
		if loc := resp.Header.Get("Location"); loc != "" {
			h.Set("Location", loc)
		}
		for _, sc := range rawSetCookies {
			h.Add("Set-Cookie", sc)
		}
		return Terminal(&Response{StatusCode: resp.StatusCode, Header: h}), true, nil, nil

	case resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent:
		p.log.Debug().Int("status", resp.StatusCode).Msg("Refresh rejected")
		return Resolution{}, false, nil, nil
	}

	if len(rawSetCookies) == 0 {
		return Resolution{}, false, nil, nil
	}

	// The browser only sends the new cookie on the next request, so this
	// request is authenticated with the token from the refresh response.
	var accessToken string
	for _, c := range resp.Cookies() {
		if c.Name == AccessCookieName {
			accessToken = c.Value
			break
		}
	}
	if accessToken == "" {
		p.log.Debug().Msg("Refresh response carried no access cookie")
		return Resolution{}, false, rawSetCookies, nil
	}

	u, err := p.verifier.verify(accessToken)
	if err != nil {
		p.log.Debug().Err(err).Msg("Refreshed access token rejected")
		return Resolution{}, false, rawSetCookies, nil
	}

	return Resolved(Session{User: u, SetCookies: rawSetCookies}), true, nil, nil
}

func (p *AuthGateProvider) isProtected(path string) bool {
	for _, prefix := range p.protected {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

// buildReturnTo preserves the request path and query string for the login
// round trip.
func buildReturnTo(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.RawQuery
}

// unauthenticatedResponse builds the login response by request type:
//
//   - HTMX requests (HX-Request: true): 200 with HX-Redirect
//   - API / SPA requests: 401 Unauthorized
//   - Browser navigations (Accept: text/html): 302 to the login page
//
// setCookies are attached verbatim whatever the request type.
func unauthenticatedResponse(r *http.Request, redirectURL string, setCookies []string) *Response {
	h := http.Header{}
	h.Add("Vary", "Accept")
	for _, sc := range setCookies {
		h.Add("Set-Cookie", sc)
	}

	switch {
	case r.Header.Get("HX-Request") == "true":
		h.Set("HX-Redirect", redirectURL)
		return &Response{StatusCode: http.StatusOK, Header: h}

	case isAPICall(r):
		h.Set("Content-Type", "text/plain; charset=utf-8")
		h.Set("X-Content-Type-Options", "nosniff")
		return &Response{StatusCode: http.StatusUnauthorized, Header: h, Body: []byte("unauthorized\n")}

	default:
		h.Set("Location", redirectURL)
		return &Response{StatusCode: http.StatusFound, Header: h}
	}
}

func isAPICall(r *http.Request) bool {
	accept := r.Header.Get("Accept")

	if accept == "" {
		return true
	}

	return !strings.Contains(accept, "text/html")
}
