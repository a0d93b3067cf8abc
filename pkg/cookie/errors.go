package cookie

import "errors"

// Construction errors.
var (
	ErrNoSecret       = errors.New("cookie.no_secret")
	ErrSecretTooShort = errors.New("cookie.secret_too_short")
)

// Read errors. ErrCookieNotFound is the only one a caller should treat as
// "no value"; the others mean the client sent something that was not ours.
var (
	ErrCookieNotFound   = errors.New("cookie.not_found")
	ErrInvalidFormat    = errors.New("cookie.invalid_format")
	ErrInvalidSignature = errors.New("cookie.invalid_signature")
)
