package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"libportal/internal/domain"
	"libportal/internal/pkg/apperr"
)

type Field string

const (
	FieldDNI         Field = "dni"
	FieldEmail       Field = "email"
	FieldPassword    Field = "password"
	FieldCode        Field = "code"
	FieldNewPassword Field = "new_password"
)

// Outcome tells the caller where to go after a successful submit. Route is
// empty when the UI should stay where it is.
type Outcome struct {
	Identity *domain.Identity
	Route    Route
}

// Dialog is the form behind the authentication modal. Errors from Submit are
// kept inline and also returned; nothing escapes as a panic.
type Dialog struct {
	svc *Service

	mu         sync.Mutex
	values     map[Field]string
	touched    bool
	submitting bool
	errMsg     string
	notice     string
}

func NewDialog(svc *Service) *Dialog {
	return &Dialog{svc: svc, values: make(map[Field]string)}
}

// Set updates one field. DNI and code keep digits only; the code is capped at
// six characters.
func (d *Dialog) Set(field Field, value string) {
	switch field {
	case FieldDNI:
		value = DigitsOnly(value)
	case FieldCode:
		value = DigitsOnly(value)
		if len(value) > 6 {
			value = value[:6]
		}
	case FieldEmail:
		value = strings.TrimSpace(value)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[field] = value
	if field == FieldPassword || field == FieldNewPassword {
		d.touched = true
	}
	d.errMsg = ""
}

func (d *Dialog) Value(field Field) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[field]
}

func (d *Dialog) Error() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errMsg
}

func (d *Dialog) Notice() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.notice
}

func (d *Dialog) Submitting() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitting
}

// PasswordRequirements returns the per-criterion checklist for the password
// being chosen, or nil before the user has typed one or on views that do not
// choose a password.
func (d *Dialog) PasswordRequirements() *PasswordChecks {
	view := d.svc.Modal().State().View
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.touched {
		return nil
	}
	var c PasswordChecks
	switch view {
	case ViewRegister:
		c = CheckPassword(d.values[FieldPassword])
	case ViewReset:
		c = CheckPassword(d.values[FieldNewPassword])
	default:
		return nil
	}
	return &c
}

// CanSubmit reports whether the current view's required fields are present
// and, where a password is chosen, whether it passes the policy.
func (d *Dialog) CanSubmit() bool {
	view := d.svc.Modal().State().View
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitting {
		return false
	}
	v := d.values
	switch view {
	case ViewLogin:
		return v[FieldDNI] != "" && v[FieldPassword] != ""
	case ViewRegister:
		return v[FieldDNI] != "" && v[FieldEmail] != "" && CheckPassword(v[FieldPassword]).Valid()
	case ViewForgot:
		return v[FieldDNI] != "" && v[FieldEmail] != ""
	case ViewVerify:
		return isSixDigitCode(v[FieldCode])
	case ViewReset:
		return isSixDigitCode(v[FieldCode]) && CheckPassword(v[FieldNewPassword]).Valid()
	}
	return false
}

// Submit performs the current view's action and advances the modal.
func (d *Dialog) Submit(ctx context.Context) (Outcome, error) {
	modal := d.svc.Modal()
	view := modal.State().View

	d.mu.Lock()
	if d.submitting {
		d.mu.Unlock()
		return Outcome{}, apperr.Validation("a request is already in progress")
	}
	d.submitting = true
	d.errMsg = ""
	d.notice = ""
	v := make(map[Field]string, len(d.values))
	for k, val := range d.values {
		v[k] = val
	}
	d.mu.Unlock()

	var (
		out    Outcome
		err    error
		notice string
	)
	switch view {
	case ViewLogin:
		var id *domain.Identity
		id, err = d.svc.Login(ctx, v[FieldDNI], v[FieldPassword])
		if err == nil {
			modal.Close()
			out.Identity = id
			if id.IsAdmin() {
				out.Route = RouteAdminDashboard
			}
		}
	case ViewRegister:
		var id *domain.Identity
		id, err = d.svc.Register(ctx, RegisterRequest{
			DNI:      v[FieldDNI],
			Email:    v[FieldEmail],
			Password: v[FieldPassword],
		})
		if err == nil {
			modal.Close()
			out.Identity = id
		}
	case ViewForgot:
		err = d.svc.ForgotPassword(ctx, v[FieldDNI], v[FieldEmail])
		if err == nil {
			notice = "a verification code was sent to your email"
			modal.SwitchView(ViewVerify)
		}
	case ViewVerify:
		err = d.svc.VerifyCode(ctx, v[FieldDNI], v[FieldEmail], v[FieldCode])
		if err == nil {
			modal.SwitchView(ViewReset)
		}
	case ViewReset:
		err = d.svc.ResetPassword(ctx, v[FieldDNI], v[FieldEmail], v[FieldCode], v[FieldNewPassword])
		if err == nil {
			notice = "password updated, you can log in now"
			modal.SwitchView(ViewLogin)
		}
	default:
		err = apperr.Validation("unknown dialog view")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.submitting = false
	if err != nil {
		d.errMsg = messageFor(err)
		return Outcome{}, err
	}
	d.notice = notice
	switch view {
	case ViewLogin, ViewRegister:
		d.values = make(map[Field]string)
		d.touched = false
	case ViewReset:
		delete(d.values, FieldPassword)
		delete(d.values, FieldCode)
		delete(d.values, FieldNewPassword)
		d.touched = false
	}
	return out, nil
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, apperr.ErrAuth):
		return apperr.Message(err, msgLoginFailed)
	case errors.Is(err, apperr.ErrInvalidCode):
		return apperr.Message(err, "invalid or expired code")
	case errors.Is(err, apperr.ErrNotFound):
		return apperr.Message(err, "no account matches that DNI and email")
	}
	return apperr.Message(err, msgGeneric)
}
