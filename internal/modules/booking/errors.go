package booking

import (
	"errors"

	"libportal/internal/pkg/apperr"
)

var (
	ErrClosed         = errors.New("reservation dialog is closed")
	ErrWrongKind      = errors.New("operation does not apply to this item")
	ErrSubmitInFlight = errors.New("a reservation is already being submitted")
	ErrLoading        = errors.New("availability is still loading")
	ErrLoginRequired  = errors.New("login required before reserving")
	ErrConfirmed      = errors.New("reservation already confirmed")
)

// Validation failures shown inline; all match apperr.ErrValidation.
var (
	ErrRangeTooLong      = apperr.Validation("a loan can last at most 5 days")
	ErrRangeUnavailable  = apperr.Validation("the selected range includes days with no copies available")
	ErrRangeRequired     = apperr.Validation("select the start and end dates")
	ErrDateRequired      = apperr.Validation("select a date")
	ErrSlotRequired      = apperr.Validation("select a date and a time slot")
	ErrDateNotSelectable = apperr.Validation("that date cannot be reserved")
	ErrSlotTaken         = apperr.New(apperr.KindConflict, "that time slot is already taken")
)

const msgSubmitFailed = "the reservation could not be processed"
