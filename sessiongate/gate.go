package sessiongate

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strings"

	"github.com/rs/zerolog"
)

var errEmptyTerminal = errors.New("sessiongate: terminal resolution without response")

// DecisionKind tells what the gate does with a request.
type DecisionKind int

const (
	// DecisionPassThrough continues to the next handler with the refreshed
	// session cookies attached.
	DecisionPassThrough DecisionKind = iota

	// DecisionRedirect sends the client to the onboarding page.
	DecisionRedirect

	// DecisionTerminal returns the provider's response unchanged.
	DecisionTerminal
)

func (k DecisionKind) String() string {
	switch k {
	case DecisionPassThrough:
		return "pass_through"
	case DecisionRedirect:
		return "redirect"
	case DecisionTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Decision is the outcome of Gate.Decide.
//
// Response is set for DecisionTerminal, Location for DecisionRedirect. Session
// is set for both DecisionRedirect and DecisionPassThrough.
type Decision struct {
	Kind     DecisionKind
	Response *Response
	Location string
	Session  Session
}

// ErrorHandler writes the response for a failed session resolution.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// Option configures a Gate.
type Option func(*Gate)

// WithLogger sets the logger used for decisions and provider failures.
func WithLogger(log zerolog.Logger) Option {
	return func(g *Gate) {
		g.log = loggerOrNop(log)
	}
}

// loggerOrNop replaces the zero Logger, which has no writer, with a no-op
// logger.
func loggerOrNop(l zerolog.Logger) zerolog.Logger {
	if reflect.ValueOf(l).IsZero() {
		return zerolog.Nop()
	}
	return l
}

// WithMatcher replaces the default static-asset matcher.
func WithMatcher(m *Matcher) Option {
	return func(g *Gate) {
		if m != nil {
			g.matcher = m
		}
	}
}

// WithErrorHandler replaces the default 500 response used when the provider
// fails to resolve a session.
func WithErrorHandler(h ErrorHandler) Option {
	return func(g *Gate) {
		if h != nil {
			g.onError = h
		}
	}
}

// WithRedirectStatus sets the status code of the onboarding redirect.
// New rejects anything outside 300-399.
func WithRedirectStatus(code int) Option {
	return func(g *Gate) {
		g.redirectStatus = code
	}
}

// WithGatedPath changes the path that triggers the onboarding check.
func WithGatedPath(path string) Option {
	return func(g *Gate) {
		g.gatedPath = path
	}
}

// WithOnboardingPath changes the redirect target path.
func WithOnboardingPath(path string) Option {
	return func(g *Gate) {
		g.onboardingPath = path
	}
}

// Gate is the per-request session middleware.
//
// For every request that the matcher applies to, the gate resolves the
// session once through its Provider and then:
//
//   - returns the provider's terminal response unchanged, or
//   - redirects an authenticated user requesting exactly the gated path
//     without the onboarding marker cookie to the onboarding path, or
//   - passes the request through with the refreshed session cookies.
//
// A Gate holds no per-request state and is safe for concurrent use.
type Gate struct {
	provider       Provider
	matcher        *Matcher
	log            zerolog.Logger
	onError        ErrorHandler
	redirectStatus int
	gatedPath      string
	onboardingPath string
}

// New builds a Gate around provider.
func New(provider Provider, opts ...Option) (*Gate, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}

	g := &Gate{
		provider:       provider,
		matcher:        DefaultMatcher(),
		log:            zerolog.Nop(),
		redirectStatus: http.StatusTemporaryRedirect,
		gatedPath:      DashboardPath,
		onboardingPath: OnboardingPath,
	}
	for _, opt := range opts {
		opt(g)
	}

	if g.redirectStatus < 300 || g.redirectStatus > 399 {
		return nil, fmt.Errorf("sessiongate: redirect status %d is not a redirect", g.redirectStatus)
	}
	if !strings.HasPrefix(g.gatedPath, "/") || !strings.HasPrefix(g.onboardingPath, "/") {
		return nil, errors.New("sessiongate: gated and onboarding paths must be absolute")
	}
	if g.onError == nil {
		g.onError = g.defaultErrorHandler
	}

	return g, nil
}

// Applies reports whether the gate runs for r.
func (g *Gate) Applies(r *http.Request) bool {
	return g.matcher.Applies(r.URL.Path)
}

// Decide resolves the session of r and returns what should happen to it.
//
// Provider errors are returned unchanged. Decide performs exactly one
// resolution per call and never retries.
func (g *Gate) Decide(r *http.Request) (Decision, error) {
	res, err := g.provider.ResolveSession(r)
	if err != nil {
		return Decision{}, err
	}

	if res.Kind() == ResolutionTerminal {
		resp, ok := res.Response()
		if !ok {
			return Decision{}, errEmptyTerminal
		}
		return Decision{Kind: DecisionTerminal, Response: resp}, nil
	}

	session, _ := res.Session()
	if session.User != nil && r.URL.Path == g.gatedPath && !OnboardingCompleted(r) {
		return Decision{
			Kind:     DecisionRedirect,
			Location: redirectURL(r, g.onboardingPath),
			Session:  session,
		}, nil
	}

	return Decision{Kind: DecisionPassThrough, Session: session}, nil
}

// Apply writes the effects of d for r.
//
// It returns the request the next handler should receive and whether the
// chain continues. Only DecisionPassThrough continues; the returned request
// then carries the resolved user in its context.
func (g *Gate) Apply(w http.ResponseWriter, r *http.Request, d Decision) (*http.Request, bool) {
	switch d.Kind {
	case DecisionTerminal:
		d.Response.Write(w)
		return r, false

	case DecisionRedirect:
		forwardSetCookies(w, d.Session.SetCookies)
		http.Redirect(w, r, d.Location, g.redirectStatus)
		return r, false

	default:
		forwardSetCookies(w, d.Session.SetCookies)
		if d.Session.User != nil {
			r = r.WithContext(WithUser(r.Context(), d.Session.User))
		}
		return r, true
	}
}

// Fail hands a resolution error to the configured ErrorHandler.
func (g *Gate) Fail(w http.ResponseWriter, r *http.Request, err error) {
	g.onError(w, r, err)
}

// Middleware returns the gate as net/http middleware.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Applies(r) {
			next.ServeHTTP(w, r)
			return
		}

		d, err := g.Decide(r)
		if err != nil {
			g.Fail(w, r, err)
			return
		}

		g.log.Debug().
			Str("path", r.URL.Path).
			Str("decision", d.Kind.String()).
			Bool("authenticated", d.Session.User != nil).
			Msg("Session gate decision")

		r, ok := g.Apply(w, r, d)
		if !ok {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Gate) defaultErrorHandler(w http.ResponseWriter, r *http.Request, err error) {
	g.log.Error().Err(err).Str("path", r.URL.Path).Msg("Failed to resolve session")
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// forwardSetCookies adds raw Set-Cookie values exactly as the provider sent
// them.
func forwardSetCookies(w http.ResponseWriter, cookies []string) {
	for _, sc := range cookies {
		w.Header().Add("Set-Cookie", sc)
	}
}

// redirectURL rebuilds the request URL with its path replaced, keeping
// scheme, host and raw query.
func redirectURL(r *http.Request, path string) string {
	if r.Host == "" {
		if r.URL.RawQuery == "" {
			return path
		}
		return path + "?" + r.URL.RawQuery
	}

	u := url.URL{
		Scheme:   requestScheme(r),
		Host:     r.Host,
		Path:     path,
		RawQuery: r.URL.RawQuery,
	}
	return u.String()
}

func requestScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return "https"
	}
	return "http"
}
