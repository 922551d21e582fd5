package domain

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Store-level sentinels. The credential store returns these; the services
// translate them into the AuthError taxonomy below. Infrastructure failures
// (connectivity, timeouts) are wrapped with %w and propagate untranslated.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrRoleExists      = errors.New("role already exists")
	ErrVersionConflict = errors.New("account version conflict")
)

// ErrorCode identifies one member of the closed error taxonomy. Codes are
// stable across releases and grouped by operation family: 1–6 login,
// 7–11 refresh, 12–14 register.
type ErrorCode int

const (
	CodeEmailEmpty ErrorCode = iota + 1
	CodePasswordEmpty
	CodeAccountNotFound
	CodeAccountLockedOut
	CodeInvalidPassword
	CodeLoginPersistenceFailed

	CodeTokenPairInvalid
	CodeAccessTokenInvalid
	CodeRefreshTokenInvalid
	CodeRefreshAccountNotFound
	CodeRefreshPersistenceFailed

	CodeEmailAlreadyExists
	CodeCreateFailed
	CodeFetchAfterCreateFailed
)

// AuthError is a member of the closed taxonomy: a stable code plus the
// user-facing message for it. It satisfies errors.Is against any AuthError
// with the same code, so callers can match on the canonical values below
// even when the message was interpolated at response time.
type AuthError struct {
	Code    ErrorCode
	Message string
}

func (e *AuthError) Error() string { return e.Message }

func (e *AuthError) Is(target error) bool {
	var ae *AuthError
	if errors.As(target, &ae) {
		return e.Code == ae.Code
	}
	return false
}

// sessionExpiredMessage is shared by every refresh failure and is the one
// deliberate UX asymmetry: blank-input and lockout cases get specific
// wording, everything else signs the user out with this.
const sessionExpiredMessage = "Your session has expired - signing out..."

const serverErrorMessage = "Server error. Contact us for more information."

// Canonical taxonomy members.
var (
	ErrEmailEmpty             = &AuthError{CodeEmailEmpty, "Email is empty."}
	ErrPasswordEmpty          = &AuthError{CodePasswordEmpty, "Password is empty."}
	ErrLoginAccountNotFound   = &AuthError{CodeAccountNotFound, "Invalid email address."}
	ErrAccountLockedOut       = &AuthError{CodeAccountLockedOut, "You have attempted to login too many times."}
	ErrInvalidPassword        = &AuthError{CodeInvalidPassword, "Wrong password - try again."}
	ErrLoginPersistence       = &AuthError{CodeLoginPersistenceFailed, "Server error. Unable to login - contact us for more information."}
	ErrTokenPairInvalid       = &AuthError{CodeTokenPairInvalid, sessionExpiredMessage}
	ErrAccessTokenInvalid     = &AuthError{CodeAccessTokenInvalid, sessionExpiredMessage}
	ErrRefreshTokenInvalid    = &AuthError{CodeRefreshTokenInvalid, sessionExpiredMessage}
	ErrRefreshAccountNotFound = &AuthError{CodeRefreshAccountNotFound, sessionExpiredMessage}
	ErrRefreshPersistence     = &AuthError{CodeRefreshPersistenceFailed, sessionExpiredMessage}
	ErrCreateFailed           = &AuthError{CodeCreateFailed, "Server error. Unable to register - contact us for more information."}
	ErrFetchAfterCreate       = &AuthError{CodeFetchAfterCreateFailed, serverErrorMessage}
)

// ErrEmailTaken builds the duplicate-registration error for a given email.
func ErrEmailTaken(email string) *AuthError {
	return &AuthError{CodeEmailAlreadyExists, fmt.Sprintf("User with the email (%s) already exists.", email)}
}

// ErrLockedOutFor renders the lockout error with the remaining duration,
// computed at response time: whole seconds (ceiling) while 60s or less
// remain, whole minutes (ceiling) above that.
func ErrLockedOutFor(remaining time.Duration) *AuthError {
	var display string
	if minutes := math.Ceil(remaining.Minutes()); minutes <= 1 {
		display = fmt.Sprintf("%.0f seconds", math.Ceil(remaining.Seconds()))
	} else {
		display = fmt.Sprintf("%.0f minutes", minutes)
	}
	return &AuthError{
		Code:    CodeAccountLockedOut,
		Message: fmt.Sprintf("You have attempted to login too many times. Try again in %s.", display),
	}
}
