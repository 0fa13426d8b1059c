package admin

import (
	"context"
	"net/url"

	"libportal/internal/domain"
)

type API interface {
	PostJSON(ctx context.Context, path string, query url.Values, body, out any) error
}

// IdentitySource reports who is logged in; only admins may validate entries.
type IdentitySource interface {
	Identity() *domain.Identity
}
