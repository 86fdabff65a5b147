package domain

// AuthMethod represents how outbound API calls are authenticated.
type AuthMethod string

const (
	// AuthMethodNone sends unauthenticated requests (low rate limit).
	AuthMethodNone AuthMethod = "none"
	// AuthMethodPAT uses a pool of Personal Access Tokens.
	AuthMethodPAT AuthMethod = "pat"
)

// String returns the string representation.
func (m AuthMethod) String() string {
	return string(m)
}
