package sessiongate

import (
	"net/http"

	"github.com/google/uuid"
)

// User is the identity an auth provider resolved for a request.
type User struct {
	ID    uuid.UUID
	Email string
	Roles []string
}

// Session is the non-terminal outcome of a session resolution.
//
// User is nil when the request is not authenticated. SetCookies holds raw
// Set-Cookie header values the provider wants persisted on the response
// (e.g. a rotated refresh token); they are forwarded exactly as given.
type Session struct {
	User       *User
	SetCookies []string
}

// Response is a complete HTTP response produced by the auth provider.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Write copies the response to w without modification.
func (r *Response) Write(w http.ResponseWriter) {
	dst := w.Header()
	for k, vs := range r.Header {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}

	status := r.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if len(r.Body) > 0 {
		_, _ = w.Write(r.Body)
	}
}

// ResolutionKind tells which branch of a Resolution is populated.
type ResolutionKind int

const (
	// ResolutionSession means the provider validated (or failed to find) a
	// session and the gate decides what happens next.
	ResolutionSession ResolutionKind = iota

	// ResolutionTerminal means the provider already produced the response.
	ResolutionTerminal
)

func (k ResolutionKind) String() string {
	switch k {
	case ResolutionSession:
		return "session"
	case ResolutionTerminal:
		return "terminal"
	default:
		return "unknown"
	}
}

// Resolution is what a Provider returns for a request: either a terminal
// response that must be returned as is, or a Session.
type Resolution struct {
	kind     ResolutionKind
	response *Response
	session  Session
}

// Terminal builds a Resolution carrying a provider-issued response.
func Terminal(resp *Response) Resolution {
	return Resolution{kind: ResolutionTerminal, response: resp}
}

// Resolved builds a Resolution carrying a session.
func Resolved(s Session) Resolution {
	return Resolution{kind: ResolutionSession, session: s}
}

// Kind reports which branch is populated.
func (r Resolution) Kind() ResolutionKind {
	return r.kind
}

// Response returns the terminal response, if any.
func (r Resolution) Response() (*Response, bool) {
	if r.kind != ResolutionTerminal || r.response == nil {
		return nil, false
	}
	return r.response, true
}

// Session returns the resolved session, if any.
func (r Resolution) Session() (Session, bool) {
	if r.kind != ResolutionSession {
		return Session{}, false
	}
	return r.session, true
}

// Provider resolves the session of an incoming request.
//
// Implementations must not write to the client. Anything that should reach the
// client is expressed through the returned Resolution. An error means the
// resolution itself failed (network, credentials) and is surfaced unchanged.
type Provider interface {
	ResolveSession(r *http.Request) (Resolution, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(r *http.Request) (Resolution, error)

func (f ProviderFunc) ResolveSession(r *http.Request) (Resolution, error) {
	return f(r)
}
