package portal

import (
	"net/http"

	"vereinsportal/internal/session"
)

// authTransport attaches the session's credential to every outbound request.
// It is installed on the one http.Client the portal client uses, so no call
// can accidentally go out unauthenticated while a session exists.
type authTransport struct {
	sessions  *session.Store
	transport http.RoundTripper
}

// RoundTrip adds the bearer authorization header when a session exists.
func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if token, ok := t.sessions.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("User-Agent", "vereinsportal/1.0")
	return t.transport.RoundTrip(req)
}
