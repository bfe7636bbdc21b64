package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied is returned for every credential failure. Unknown email
	// and wrong password are deliberately indistinguishable to prevent user
	// enumeration.
	ErrAccessDenied = errors.New("access denied")

	// ErrMissingOrInvalidToken is returned when a token is absent, malformed,
	// unsigned, carries a bad signature, or lacks a user_id claim.
	ErrMissingOrInvalidToken = errors.New("missing or invalid token")
)

// SubjectNotFoundError is returned when a cryptographically valid token
// references a subject that no longer exists, e.g. deleted between issuance
// and use. It is distinct from ErrMissingOrInvalidToken because the caller
// held a genuine token.
type SubjectNotFoundError struct {
	UserID string
}

func (e SubjectNotFoundError) Error() string {
	return fmt.Sprintf("subject %s not found", e.UserID)
}
