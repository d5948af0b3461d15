package auth

import (
	"strings"
	"sync"
)

// MockCall records a method call for assertion
type MockCall struct {
	Method string
	Args   []interface{}
}

// MockTokenValidator is a mock implementation of TokenValidatorInterface for testing.
// Tokens of the form "user:<id>" or "user:<id>:<username>" are accepted by default.
type MockTokenValidator struct {
	mu sync.Mutex

	// Call tracking
	Calls []MockCall

	// Configurable function override
	ValidateTokenFunc func(tokenString string) (*Identity, error)

	// Default error to return
	DefaultError error
}

// NewMockTokenValidator creates a new mock validator
func NewMockTokenValidator() *MockTokenValidator {
	return &MockTokenValidator{Calls: make([]MockCall, 0)}
}

func (m *MockTokenValidator) recordCall(method string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockCall{Method: method, Args: args})
}

// GetCalls returns all recorded calls (thread-safe)
func (m *MockTokenValidator) GetCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]MockCall, len(m.Calls))
	copy(result, m.Calls)
	return result
}

func (m *MockTokenValidator) ValidateToken(tokenString string) (*Identity, error) {
	m.recordCall("ValidateToken", tokenString)
	if m.ValidateTokenFunc != nil {
		return m.ValidateTokenFunc(tokenString)
	}
	if m.DefaultError != nil {
		return nil, m.DefaultError
	}

	parts := strings.SplitN(tokenString, ":", 3)
	if len(parts) < 2 || parts[0] != "user" || parts[1] == "" {
		return nil, ErrInvalidToken
	}
	identity := &Identity{UserID: parts[1], Username: parts[1]}
	if len(parts) == 3 && parts[2] != "" {
		identity.Username = parts[2]
	}
	return identity, nil
}

// Ensure MockTokenValidator implements TokenValidatorInterface
var _ TokenValidatorInterface = (*MockTokenValidator)(nil)
