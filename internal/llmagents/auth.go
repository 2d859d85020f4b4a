package llmagents

import "context"

// StaticTokenAuthenticator implements httpapi.Authenticator against a
// single configured bearer token, standing in for the user/session
// management persistence spec §9 marks as an external collaborator.
type StaticTokenAuthenticator struct {
	Token  string
	UserID string
}

func (a StaticTokenAuthenticator) AuthenticateToken(ctx context.Context, token string) (string, bool) {
	if token == "" || token != a.Token {
		return "", false
	}
	return a.UserID, true
}
