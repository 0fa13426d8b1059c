package auth

import "libportal/internal/pkg/apperr"

var (
	ErrWeakPassword    = apperr.Validation("password does not meet the security requirements")
	ErrMalformedCode   = apperr.Validation("the code must have exactly 6 digits")
	ErrInvalidResponse = apperr.New(apperr.KindAuth, "the server returned an unusable token")
)

const (
	msgLoginFailed = "invalid credentials"
	msgGeneric     = "the operation could not be completed"
)
