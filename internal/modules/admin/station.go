package admin

import (
	"context"

	"libportal/internal/domain"
	"libportal/internal/modules/scanner"
)

// Station is the staff entry desk: scan a code, or type it.
type Station struct {
	svc  *Service
	open scanner.Opener
}

func NewStation(svc *Service, open scanner.Opener) *Station {
	return &Station{svc: svc, open: open}
}

// ScanAndValidate runs one scan session and validates what it read. The
// device is released before the validation call is made.
func (st *Station) ScanAndValidate(ctx context.Context) (*domain.EntryValidation, error) {
	if st.open == nil {
		return nil, ErrNoScanner
	}
	code, err := scanner.ScanOnce(ctx, st.open)
	if err != nil {
		return nil, err
	}
	return st.svc.ValidateQR(ctx, code)
}

// Validate is manual entry.
func (st *Station) Validate(ctx context.Context, code string) (*domain.EntryValidation, error) {
	return st.svc.ValidateQR(ctx, code)
}
