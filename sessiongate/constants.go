package sessiongate

import "time"

const (
	// OnboardingCookieName is the name of the cookie that marks onboarding as
	// completed.
	//
	// The gate only checks for its presence. The value is never inspected.
	OnboardingCookieName = "onboarding_completed"

	// OnboardingCookieValue is the value written by MarkOnboardingCompleted.
	OnboardingCookieValue = "1"

	// OnboardingCookieMaxAge is the lifetime of the onboarding marker in
	// seconds (365 days).
	OnboardingCookieMaxAge = 31536000

	// DashboardPath is the only path the gate redirects from. Matching is
	// exact string equality.
	DashboardPath = "/dashboard"

	// OnboardingPath is where authenticated users without the marker are sent.
	OnboardingPath = "/onboarding"

	// AccessCookieName is the name of the cookie that stores the AuthGate
	// access token (JWT).
	AccessCookieName = "authgate_access"

	// LoginPath is the path to the AuthGate login endpoint.
	//
	// Unauthenticated users on protected prefixes are redirected to this path,
	// with a return_to query parameter appended.
	LoginPath = "/auth/login"

	// RefreshPath is the AuthGate endpoint that rotates the refresh token and
	// issues a new access token.
	RefreshPath = "/auth/refresh"

	// CurrentUserPath is the AuthGate endpoint returning the identity behind
	// the forwarded access cookie.
	CurrentUserPath = "/auth/api/v1/user"

	// clockSkew defines the allowed clock skew when validating JWT timestamps.
	clockSkew = 2 * time.Minute

	// CSRFCookieName is the name of the cookie that stores the CSRF token.
	//
	// It is forwarded to AuthGate as CSRFHeaderName on refresh.
	CSRFCookieName = "authgate_csrf"

	// CSRFHeaderName is the HTTP header used to forward the CSRF token.
	CSRFHeaderName = "X-CSRF-Token"

	// rolePrefix is the namespace every AuthGate role must carry.
	rolePrefix = "authgate:"
)
