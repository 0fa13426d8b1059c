package booking

import (
	"time"

	"libportal/internal/domain"
	"libportal/internal/pkg/apperr"
	"libportal/internal/pkg/validator"
)

const maxLoanDays = 5

var (
	startOfDay = domain.ClockTime{}
	endOfDay   = domain.ClockTime{Hour: 23, Minute: 59, Second: 59}
)

// BuildRequest derives the wire request from a complete draft. Timestamps are
// wall clock times in loc. Book drafts are validated again here, whatever the
// dialog showed before.
func BuildRequest(target domain.Target, draft Draft, now time.Time, loc *time.Location) (domain.ReservationRequest, error) {
	if draft == nil || draft.Kind() != target.Kind {
		return domain.ReservationRequest{}, ErrWrongKind
	}

	id := target.ID
	req := domain.ReservationRequest{Kind: target.Kind}

	switch d := draft.(type) {
	case *BookDraft:
		if d.Range == nil {
			return domain.ReservationRequest{}, ErrRangeRequired
		}
		if err := checkRange(d, *d.Range); err != nil {
			return domain.ReservationRequest{}, err
		}
		req.BookID = &id
		req.ReservedAt = now.In(loc)
		req.StartsAt = d.Range.Start.At(startOfDay, loc)
		req.EndsAt = d.Range.End.At(endOfDay, loc)

	case *RoomDraft:
		if d.Date == nil || d.Slot == nil {
			return domain.ReservationRequest{}, ErrSlotRequired
		}
		if d.IsOccupied(d.Slot.ID()) {
			return domain.ReservationRequest{}, ErrSlotTaken
		}
		req.ResourceID = &id
		req.ReservedAt = d.Date.In(loc)
		req.StartsAt = d.Date.At(d.Slot.Start, loc)
		req.EndsAt = d.Date.At(d.Slot.End, loc)
	}

	if fields := validator.Validate(req); fields != nil {
		return domain.ReservationRequest{}, apperr.Validation("invalid reservation: " + validator.Summary(fields))
	}
	return req, nil
}

// checkRange applies the loan rules and returns the first violation.
func checkRange(d *BookDraft, r domain.DateRange) error {
	if errs := rangeErrors(d, r); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// rangeErrors reports the length and availability rules independently.
func rangeErrors(d *BookDraft, r domain.DateRange) []error {
	var errs []error
	if r.DayCount() > maxLoanDays {
		errs = append(errs, ErrRangeTooLong)
	}
	if d.Overlaps(r) {
		errs = append(errs, ErrRangeUnavailable)
	}
	return errs
}
