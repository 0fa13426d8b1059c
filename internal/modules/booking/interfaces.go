package booking

import (
	"context"

	"libportal/internal/domain"
	"libportal/internal/modules/auth"
)

// Coordinator is what the engine needs from the session/modal coordinator.
type Coordinator interface {
	Identity() *domain.Identity
	Subscribe(fn func(*domain.Identity)) (unsubscribe func())
	OpenAuthModal(view auth.View)
}

// AvailabilitySource answers the calendar queries.
type AvailabilitySource interface {
	UnavailableDates(ctx context.Context, bookID int64, month domain.YearMonth) ([]domain.Date, error)
	OccupiedSlots(ctx context.Context, resourceID int64, date domain.Date) ([]string, error)
}

// Reservations is the command side: one call per confirmed draft.
type Reservations interface {
	Create(ctx context.Context, req domain.ReservationRequest) (*domain.Confirmation, error)
}
