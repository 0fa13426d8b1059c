package mockapi

import (
	"time"

	"libportal/internal/domain"
)

type Status string

const (
	StatusPending   Status = "PENDIENTE"
	StatusInUse     Status = "EN_USO"
	StatusHandedOut Status = "ENTREGADO"
	StatusFinished  Status = "FINALIZADA"
	StatusNoShow    Status = "NO_SHOW"
)

type user struct {
	DNI         string
	Email       string
	Name        string
	Hash        []byte
	Role        domain.Role
	Strikes     int
	BannedUntil time.Time

	recoveryCode    string
	recoveryExpires time.Time
}

func (u *user) banned(now time.Time) bool {
	return !u.BannedUntil.IsZero() && u.BannedUntil.After(now)
}

// reservation times are wall clock in the portal's zone.
type reservation struct {
	ID         int64
	Code       string
	QRToken    string
	DNI        string
	Kind       domain.TargetKind
	BookID     int64
	ResourceID int64
	ReservedAt time.Time
	Start      time.Time
	End        time.Time
	Status     Status
	CheckInAt  time.Time
	CheckOutAt time.Time
}

// holdsBook reports whether r still takes a copy of its book.
func (r *reservation) holdsBook() bool {
	return r.Kind == domain.TargetBook && (r.Status == StatusPending || r.Status == StatusHandedOut)
}

// holdsSlot reports whether r still takes its room slot.
func (r *reservation) holdsSlot() bool {
	return r.Kind == domain.TargetRoom && (r.Status == StatusPending || r.Status == StatusInUse)
}

func (r *reservation) coversDay(d domain.Date) bool {
	return !domain.DateOf(r.Start).After(d) && !d.After(domain.DateOf(r.End))
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type registerRequest struct {
	DNI      string `json:"dni" binding:"required,len=8,numeric"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type recoveryRequest struct {
	DNI         string `json:"dni" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}
