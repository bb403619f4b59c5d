// Package mailbox wraps IMAP retrieval and SMTP sending for the
// configured mail account.
package mailbox

import (
	"errors"
	"fmt"
)

var errCredentialsMissing = errors.New("EMAIL_USER/EMAIL_PASS not configured")

// AuthError indicates bad or missing mailbox credentials
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: authentication failed: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// TransportError indicates a network or protocol failure reaching the
// mail provider
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsAuthError reports whether err is (or wraps) an AuthError
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsTransportError reports whether err is (or wraps) a TransportError
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
