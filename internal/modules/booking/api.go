package booking

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"libportal/internal/domain"
	"libportal/internal/pkg/apperr"
)

// JSONPoster is the write side of the HTTP client.
type JSONPoster interface {
	PostJSON(ctx context.Context, path string, query url.Values, body, out any) error
}

// ReservationAPI creates reservations against the backend.
type ReservationAPI struct {
	api JSONPoster
}

func NewReservationAPI(api JSONPoster) *ReservationAPI {
	return &ReservationAPI{api: api}
}

func (r *ReservationAPI) Create(ctx context.Context, req domain.ReservationRequest) (*domain.Confirmation, error) {
	var out domain.Confirmation
	if err := r.api.PostJSON(ctx, "reservas/", nil, req, &out); err != nil {
		return nil, fmt.Errorf("create reservation: %w", classify(err))
	}
	return &out, nil
}

// conflictMarkers are the 400 details the backend uses when another
// reservation got there first.
var conflictMarkers = []string{"horario reservado", "no hay stock", "slot taken"}

func classify(err error) error {
	msg := strings.ToLower(apperr.Message(err, ""))
	for _, m := range conflictMarkers {
		if strings.Contains(msg, m) {
			return apperr.Remap(err, http.StatusBadRequest, apperr.KindConflict)
		}
	}
	return err
}
