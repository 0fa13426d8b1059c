package admin

import (
	"errors"

	"libportal/internal/pkg/apperr"
)

var ErrNoScanner = errors.New("no scanner configured")

var (
	ErrNotAdmin  = apperr.New(apperr.KindAuth, "only staff accounts can validate entries")
	ErrEmptyCode = apperr.Validation("enter or scan a reservation code")
)
