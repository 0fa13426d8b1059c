package domain

import "time"

// ReservationRequest is the body of POST reservas/. Exactly one of BookID and
// ResourceID is set, matching Kind.
type ReservationRequest struct {
	Kind       TargetKind `json:"tipo" validate:"required,oneof=LIBRO SALA"`
	BookID     *int64     `json:"libro_id,omitempty" validate:"required_if=Kind LIBRO,excluded_if=Kind SALA"`
	ResourceID *int64     `json:"recurso_id,omitempty" validate:"required_if=Kind SALA,excluded_if=Kind LIBRO"`
	ReservedAt time.Time  `json:"fecha_reserva" validate:"required"`
	StartsAt   time.Time  `json:"hora_inicio" validate:"required"`
	EndsAt     time.Time  `json:"hora_fin" validate:"required,gtfield=StartsAt"`
}

// Confirmation is what a successful reservation returns. QRToken is opaque and
// is what the entry scanner reads back; Code is the human readable form.
type Confirmation struct {
	Message string `json:"msg,omitempty"`
	QRToken string `json:"qr_token"`
	Code    string `json:"code"`
}

type EntryUser struct {
	Name string `json:"nombre"`
	DNI  string `json:"dni"`
}

// EntryValidation is the answer of the staff QR validation endpoint.
type EntryValidation struct {
	Status  string    `json:"status"`
	Message string    `json:"mensaje"`
	User    EntryUser `json:"usuario"`
}
