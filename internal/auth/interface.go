package auth

// TokenValidatorInterface defines the contract the HTTP layer needs from the
// token service. This enables mocking for handler tests.
type TokenValidatorInterface interface {
	// ValidateToken checks signature and expiry and returns the caller identity
	ValidateToken(tokenString string) (*Identity, error)
}

// Ensure Service implements TokenValidatorInterface
var _ TokenValidatorInterface = (*Service)(nil)
