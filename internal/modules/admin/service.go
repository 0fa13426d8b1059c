package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"libportal/internal/domain"
	"libportal/internal/logging"
)

// Service validates reservation codes at the entrance: the first scan of a
// reservation checks the user in, the second checks them out.
type Service struct {
	api      API
	identity IdentitySource
	logger   *slog.Logger
}

func NewService(api API, identity IdentitySource, logger *slog.Logger) *Service {
	return &Service{api: api, identity: identity, logger: logger}
}

// ValidateQR sends the decoded string verbatim; it may be the opaque QR token
// or the human readable code.
func (s *Service) ValidateQR(ctx context.Context, code string) (*domain.EntryValidation, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	if s.identity != nil && !s.identity.Identity().IsAdmin() {
		return nil, ErrNotAdmin
	}

	q := url.Values{}
	q.Set("qr_token", code)

	var out domain.EntryValidation
	if err := s.api.PostJSON(ctx, "admin/validar-qr", q, nil, &out); err != nil {
		return nil, fmt.Errorf("validate entry: %w", err)
	}

	s.log(ctx).Info("entry validated", "status", out.Status, "dni", out.User.DNI)
	return &out, nil
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.FromContext(ctx)
}
