package auth

import "github.com/pkg/errors"

// Sentinel errors for the login and session paths. Handlers map these to
// distinct response codes; everything else is an upstream failure.
var (
	// ErrInvalidCredentials covers unknown email and wrong password alike so
	// that the response never enables account enumeration.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountLocked is returned while an admin is locked out after
	// repeated failures. Distinct from ErrInvalidCredentials so the caller
	// can show "try again later" instead of "check your password".
	ErrAccountLocked = errors.New("account temporarily locked")

	// ErrRateLimited is returned by the login endpoint gate, independent of
	// credential correctness.
	ErrRateLimited = errors.New("too many login attempts")

	// ErrSessionInvalid covers missing and expired tokens identically, to
	// avoid leaking session store internals.
	ErrSessionInvalid = errors.New("session expired or invalid")
)
