package sessiongate

import "errors"

var (
	ErrInvalidToken         = errors.New("sessiongate: invalid access token")
	ErrTokenExpired         = errors.New("sessiongate: token is expired")
	ErrInvalidRoleNamespace = errors.New("sessiongate: role namespace is invalid")

	// ErrProviderUnavailable wraps transport failures and 5xx answers from the
	// auth provider. The gate never retries them.
	ErrProviderUnavailable = errors.New("sessiongate: auth provider unavailable")

	ErrNilProvider = errors.New("sessiongate: provider is required")
)
