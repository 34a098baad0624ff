package sessiongate

import (
	"net/http"

	"github.com/rs/zerolog"
)

// ProviderConfig defines the configuration of an AuthGateProvider.
//
// Issuer is always required. At least one of Keys and AuthGateBaseURL must be
// set; NewAuthGateProvider returns an error otherwise.
type ProviderConfig struct {
	// Issuer is the expected issuer (iss claim) of AuthGate-issued access tokens.
	//
	// This must exactly match the issuer configured in the AuthGate server,
	// including scheme and host (e.g. "https://example.com").
	Issuer string

	// Audience is the expected audience (aud claim) of access tokens.
	Audience string

	// Keys maps key IDs (kid) to their corresponding HMAC secrets.
	//
	// When empty, access tokens are not verified locally and the user is
	// looked up through AuthGate's user endpoint instead.
	Keys map[string][]byte

	// AuthGateBaseURL enables the remote user lookup and the refresh attempt.
	//
	// Example: "https://auth.example.com", or with Docker "http://authgate:3000".
	AuthGateBaseURL string

	// HTTPClient is used for outbound calls to AuthGate.
	// If nil, http.DefaultClient is used. Redirects are never followed.
	HTTPClient *http.Client

	// ProtectedPrefixes lists path prefixes that require a user. Requests under
	// them without a user get a terminal login response.
	ProtectedPrefixes []string

	// Logger receives debug output about resolution steps.
	// The zero value discards everything.
	Logger zerolog.Logger
}
