package auth

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes let tests and audit sinks identify the internal failure
// kind; the HTTP layer collapses most of them into a single external
// message so callers cannot probe why a token was rejected.
const (
	TextCodeInvalidCredentials = "INVALID_CREDENTIALS"
	TextCodeTokenMissing       = "TOKEN_MISSING"
	TextCodeTokenMalformed     = "TOKEN_MALFORMED"
	TextCodeTokenBadSignature  = "TOKEN_BAD_SIGNATURE"
	TextCodeTokenExpired       = "TOKEN_EXPIRED"
	TextCodeUnknownSubject     = "TOKEN_UNKNOWN_SUBJECT"
	TextCodeAccountDeactivated = "ACCOUNT_DEACTIVATED"
	TextCodeInsufficientRole   = "INSUFFICIENT_ROLE"
	TextCodeUpstreamFailure    = "UPSTREAM_FAILURE"
	TextCodeTooManyAttempts    = "TOO_MANY_LOGIN_ATTEMPTS"
	TextCodeEmptyPassword      = "EMPTY_PASSWORD"
)

// ErrInvalidCredentials is returned for a failed login. Unknown email
// and wrong password produce the same error so accounts cannot be
// enumerated.
var ErrInvalidCredentials = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(goerrors.CodeBadRequest)

// ErrTokenMissing is returned when a request carries no bearer token.
var ErrTokenMissing = goerrors.New("no bearer token in request", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for tokens that cannot be parsed.
var ErrTokenMalformed = goerrors.New("token is malformed", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrInvalidSignature is returned when the signature does not match the
// current signing secret.
var ErrInvalidSignature = goerrors.New("token signature mismatch", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenBadSignature).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned once the encoded expiry has passed.
var ErrTokenExpired = goerrors.New("token is expired", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrUnknownSubject is returned when the token subject no longer
// resolves to a user record.
var ErrUnknownSubject = goerrors.New("token subject does not resolve", goerrors.CategoryAuth).
	WithTextCode(TextCodeUnknownSubject).
	WithCode(goerrors.CodeUnauthorized)

// ErrAccountDeactivated is returned when the resolved user exists but
// has been deactivated.
var ErrAccountDeactivated = goerrors.New("account is deactivated", goerrors.CategoryAuth).
	WithTextCode(TextCodeAccountDeactivated).
	WithCode(goerrors.CodeUnauthorized)

// ErrInsufficientRole is returned when a verified user does not meet a
// guard's minimum role.
var ErrInsufficientRole = goerrors.New("role does not meet the required level", goerrors.CategoryAuthz).
	WithTextCode(TextCodeInsufficientRole).
	WithCode(goerrors.CodeForbidden)

// ErrUpstreamFailure wraps repository/database failures. Detail stays
// in the error metadata for operator logs only.
var ErrUpstreamFailure = goerrors.New("upstream dependency failed", goerrors.CategoryInternal).
	WithTextCode(TextCodeUpstreamFailure).
	WithCode(goerrors.CodeInternal)

// ErrTooManyLoginAttempts is returned when the attempt counter exceeds
// MaxLoginAttempts inside the cooldown window.
var ErrTooManyLoginAttempts = goerrors.New("too many login attempts", goerrors.CategoryRateLimit).
	WithTextCode(TextCodeTooManyAttempts)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// verification-path failures, in the order the verifier checks them
var verificationErrors = []*goerrors.Error{
	ErrTokenMissing,
	ErrTokenMalformed,
	ErrInvalidSignature,
	ErrTokenExpired,
	ErrUnknownSubject,
	ErrAccountDeactivated,
}

// IsVerificationFailure reports whether err belongs to the token
// verification taxonomy. All of these collapse to the same external
// "Token invalid" response except the missing-token case.
func IsVerificationFailure(err error) bool {
	if err == nil {
		return false
	}
	for _, kind := range verificationErrors {
		if goerrors.Is(err, kind) {
			return true
		}
	}

	// wrapped errors keep the text code even when identity is lost
	switch FailureKind(err) {
	case TextCodeTokenMissing, TextCodeTokenMalformed, TextCodeTokenBadSignature,
		TextCodeTokenExpired, TextCodeUnknownSubject, TextCodeAccountDeactivated:
		return true
	}
	return false
}

// FailureKind returns the internal text code for audit logging, or an
// empty string when the error is not part of the taxonomy.
func FailureKind(err error) string {
	var rich *goerrors.Error
	if goerrors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

// IsTokenExpiredError matches expiry failures from this package or raw
// jwt parse errors that were not mapped yet.
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError matches parse failures from this package or from the
// middleware extractors.
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if goerrors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
