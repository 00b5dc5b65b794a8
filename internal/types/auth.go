package types

// TokenInfo holds the verified claims extracted from an OIDC ID token.
type TokenInfo struct {
	UserID        string
	Email         *string
	Name          *string
	FirstName     string
	LastName      string
	EmailVerified bool
}
