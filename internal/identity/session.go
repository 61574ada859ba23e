// Package identity carries the authenticated user supplied by the external
// identity provider. Nothing here implements a login protocol: an ID token
// issued elsewhere is verified and turned into a Session that is passed
// explicitly to whoever needs it.
package identity

// Session identifies the user the local collection belongs to.
type Session struct {
	UserID string
	Email  string
}

// Anonymous is the session used when no identity was supplied.
func Anonymous() Session {
	return Session{}
}

func (s Session) IsAnonymous() bool {
	return s.UserID == ""
}

// String is what the terminal client shows in its prompt.
func (s Session) String() string {
	switch {
	case s.IsAnonymous():
		return "anonymous"
	case s.Email != "":
		return s.Email
	default:
		return s.UserID
	}
}
