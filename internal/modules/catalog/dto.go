package catalog

import "libportal/internal/domain"

// BookFilter narrows a book search. Query matches title, author or ISBN.
type BookFilter struct {
	Query    string
	SiteID   int64
	Category string
}

type ResourceFilter struct {
	Kind   domain.ResourceKind
	SiteID int64
}

type unavailableDatesResponse struct {
	Dates []string `json:"fechas_sin_stock"`
}

type occupiedSlotsResponse struct {
	Occupied []string `json:"ocupados"`
}
