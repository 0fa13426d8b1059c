package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"libportal/internal/domain"
	"libportal/internal/logging"
)

type Service struct {
	api    API
	logger *slog.Logger
}

func NewService(api API, logger *slog.Logger) *Service {
	return &Service{api: api, logger: logger}
}

/* ---------- CATALOG ---------- */

func (s *Service) ListSites(ctx context.Context) ([]domain.Site, error) {
	var sites []domain.Site
	if err := s.api.Get(ctx, "catalogo/sedes", nil, &sites); err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	return sites, nil
}

func (s *Service) SearchBooks(ctx context.Context, f BookFilter) ([]domain.Book, error) {
	q := url.Values{}
	if v := strings.TrimSpace(f.Query); v != "" {
		q.Set("q", v)
	}
	if f.SiteID > 0 {
		q.Set("sede_id", strconv.FormatInt(f.SiteID, 10))
	}
	if f.Category != "" {
		q.Set("categoria", f.Category)
	}

	var books []domain.Book
	if err := s.api.Get(ctx, "catalogo/libros", q, &books); err != nil {
		return nil, fmt.Errorf("search books: %w", err)
	}
	return books, nil
}

func (s *Service) ListResources(ctx context.Context, f ResourceFilter) ([]domain.Resource, error) {
	q := url.Values{}
	if f.Kind != "" {
		q.Set("tipo", string(f.Kind))
	}
	if f.SiteID > 0 {
		q.Set("sede_id", strconv.FormatInt(f.SiteID, 10))
	}

	var resources []domain.Resource
	if err := s.api.Get(ctx, "catalogo/recursos", q, &resources); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

/* ---------- AVAILABILITY ---------- */

// UnavailableDates returns the days of month on which the book has no copy
// left. Entries the backend sends in an unexpected shape are skipped.
func (s *Service) UnavailableDates(ctx context.Context, bookID int64, month domain.YearMonth) ([]domain.Date, error) {
	q := url.Values{}
	q.Set("tipo", string(domain.TargetBook))
	q.Set("libro_id", strconv.FormatInt(bookID, 10))
	q.Set("mes", month.String())

	var resp unavailableDatesResponse
	if err := s.api.Get(ctx, "reservas/disponibilidad", q, &resp); err != nil {
		return nil, fmt.Errorf("unavailable dates: %w", err)
	}

	dates := make([]domain.Date, 0, len(resp.Dates))
	for _, raw := range resp.Dates {
		d, err := domain.ParseDate(raw)
		if err != nil {
			s.log(ctx).Warn("skipping malformed unavailable date", "book_id", bookID, "value", raw)
			continue
		}
		dates = append(dates, d)
	}
	return dates, nil
}

// OccupiedSlots returns the start times ("HH:MM") already taken on date.
func (s *Service) OccupiedSlots(ctx context.Context, resourceID int64, date domain.Date) ([]string, error) {
	q := url.Values{}
	q.Set("tipo", string(domain.TargetRoom))
	q.Set("recurso_id", strconv.FormatInt(resourceID, 10))
	q.Set("fecha", date.String())

	var resp occupiedSlotsResponse
	if err := s.api.Get(ctx, "reservas/disponibilidad", q, &resp); err != nil {
		return nil, fmt.Errorf("occupied slots: %w", err)
	}

	out := make([]string, 0, len(resp.Occupied))
	for _, id := range resp.Occupied {
		// tolerate "HH:MM:SS"
		if len(id) > 5 {
			id = id[:5]
		}
		out = append(out, id)
	}
	return out, nil
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.FromContext(ctx)
}
