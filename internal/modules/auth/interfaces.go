package auth

import (
	"context"
	"net/url"
)

// API is the subset of the HTTP client the coordinator uses.
type API interface {
	PostForm(ctx context.Context, path string, form url.Values, out any) error
	PostJSON(ctx context.Context, path string, query url.Values, body, out any) error
}

// TokenStore is the durable slot holding the bearer token.
type TokenStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type Route string

const (
	RouteLanding        Route = "/"
	RouteLogin          Route = "/login"
	RouteAdminDashboard Route = "/admin/dashboard"
)

// Navigator performs a full navigation of the surrounding UI.
type Navigator interface {
	Navigate(route Route)
}

type NavigatorFunc func(route Route)

func (f NavigatorFunc) Navigate(route Route) { f(route) }
