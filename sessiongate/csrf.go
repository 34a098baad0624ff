package sessiongate

import "net/http"

// CSRFToken returns the CSRF cookie value of req, if any.
func CSRFToken(req *http.Request) (string, bool) {
	c, err := req.Cookie(CSRFCookieName)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// AttachCSRF sets the CSRF header on an outbound request.
func AttachCSRF(req *http.Request, token string) {
	if token == "" {
		return
	}
	req.Header.Set(CSRFHeaderName, token)
}
