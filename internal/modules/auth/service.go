package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"libportal/internal/domain"
	"libportal/internal/logging"
	"libportal/internal/pkg/apperr"
	"libportal/internal/pkg/jwt"
	"libportal/internal/pkg/validator"
)

// Service is the session/modal coordinator of one application context. It is
// the only reader and writer of the persisted token and of the in-memory
// identity.
type Service struct {
	api     API
	tokens  TokenStore
	nav     Navigator
	session *Session
	modal   *Modal
	now     func() time.Time
	logger  *slog.Logger

	mu       sync.RWMutex
	token    string
	hydrated bool
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(api API, tokens TokenStore, nav Navigator, opts ...Option) *Service {
	s := &Service{
		api:     api,
		tokens:  tokens,
		nav:     nav,
		session: NewSession(),
		modal:   NewModal(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.nav == nil {
		s.nav = NavigatorFunc(func(Route) {})
	}
	return s
}

func (s *Service) Session() *Session { return s.session }

func (s *Service) Modal() *Modal { return s.modal }

// Identity and Subscribe expose the session to collaborators that must not
// write it.
func (s *Service) Identity() *domain.Identity { return s.session.Identity() }

func (s *Service) Subscribe(fn func(*domain.Identity)) (unsubscribe func()) {
	return s.session.Subscribe(fn)
}

func (s *Service) OpenAuthModal(view View) { s.modal.Open(view) }

// Token is the bearer token to attach to outgoing requests.
func (s *Service) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Hydrate restores the identity from the persisted token. It never touches
// the network; a token that cannot be decoded, or has expired, is discarded.
// Only the first call does work.
func (s *Service) Hydrate(ctx context.Context) *domain.Identity {
	s.mu.Lock()
	if s.hydrated {
		s.mu.Unlock()
		return s.session.Identity()
	}
	s.hydrated = true
	s.mu.Unlock()

	log := s.log(ctx)

	token, err := s.tokens.Load(ctx)
	if err != nil {
		log.Warn("could not read persisted credential", "error", err)
		s.session.finishLoading(nil)
		return nil
	}
	if token == "" {
		s.session.finishLoading(nil)
		return nil
	}

	identity, err := s.decode(token)
	if err != nil {
		log.Info("discarding persisted credential", "reason", err)
		if err := s.tokens.Clear(ctx); err != nil {
			log.Warn("could not clear persisted credential", "error", err)
		}
		s.session.finishLoading(nil)
		return nil
	}

	s.setToken(token)
	s.session.finishLoading(identity)
	log.Debug("session restored", "dni", identity.Subject, "role", identity.Role)
	return identity
}

// Login exchanges credentials for a token using a form-encoded body and
// returns the identity so callers can branch on role.
func (s *Service) Login(ctx context.Context, dni, password string) (*domain.Identity, error) {
	form := url.Values{}
	form.Set("username", DigitsOnly(dni))
	form.Set("password", password)

	var resp loginResponse
	if err := s.api.PostForm(ctx, "auth/login", form, &resp); err != nil {
		err = apperr.Remap(err, http.StatusBadRequest, apperr.KindAuth)
		return nil, fmt.Errorf("login: %w", withFallback(err, apperr.KindAuth, msgLoginFailed))
	}
	if resp.AccessToken == "" {
		return nil, ErrInvalidResponse
	}

	identity, err := s.decode(resp.AccessToken)
	if err != nil {
		s.log(ctx).Warn("login returned an undecodable token", "error", err)
		return nil, ErrInvalidResponse
	}

	if err := s.tokens.Save(ctx, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("persist credential: %w", err)
	}
	s.setToken(resp.AccessToken)
	s.session.set(identity)

	s.log(ctx).Info("logged in", "dni", identity.Subject, "role", identity.Role)
	return copyIdentity(identity), nil
}

// Register creates the account and then logs in with the same credentials.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*domain.Identity, error) {
	req.DNI = DigitsOnly(req.DNI)
	req.Email = strings.TrimSpace(req.Email)

	if fields := validator.Validate(req); fields != nil {
		return nil, apperr.Validation("invalid registration data: " + validator.Summary(fields))
	}
	if !CheckPassword(req.Password).Valid() {
		return nil, ErrWeakPassword
	}

	if err := s.api.PostJSON(ctx, "auth/register", nil, req, nil); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return s.Login(ctx, req.DNI, req.Password)
}

// Logout always succeeds: local state is cleared even if the store fails.
func (s *Service) Logout(ctx context.Context) {
	s.clear(ctx)
	s.log(ctx).Info("logged out")
	s.nav.Navigate(RouteLanding)
}

// HandleUnauthorized is the transport hook for authentication-rejected
// responses: forced logout and navigation to the entry point.
func (s *Service) HandleUnauthorized() {
	ctx := context.Background()
	s.clear(ctx)
	s.log(ctx).Warn("session rejected by backend")
	s.nav.Navigate(RouteLogin)
}

func (s *Service) ForgotPassword(ctx context.Context, dni, email string) error {
	body := recoveryRequest{DNI: DigitsOnly(dni), Email: strings.TrimSpace(email)}
	if err := s.api.PostJSON(ctx, "auth/forgot", nil, body, nil); err != nil {
		return fmt.Errorf("forgot password: %w", err)
	}
	return nil
}

// VerifyCode checks the code shape locally before calling the backend.
func (s *Service) VerifyCode(ctx context.Context, dni, email, code string) error {
	if !isSixDigitCode(code) {
		return ErrMalformedCode
	}
	body := recoveryRequest{DNI: DigitsOnly(dni), Email: strings.TrimSpace(email), Code: code}
	if err := s.api.PostJSON(ctx, "auth/forgot/verify", nil, body, nil); err != nil {
		return fmt.Errorf("verify code: %w", apperr.Remap(err, http.StatusBadRequest, apperr.KindInvalidCode))
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, dni, email, code, newPassword string) error {
	if !CheckPassword(newPassword).Valid() {
		return ErrWeakPassword
	}
	if !isSixDigitCode(code) {
		return ErrMalformedCode
	}
	body := recoveryRequest{
		DNI:         DigitsOnly(dni),
		Email:       strings.TrimSpace(email),
		Code:        code,
		NewPassword: newPassword,
	}
	if err := s.api.PostJSON(ctx, "auth/forgot/reset", nil, body, nil); err != nil {
		return fmt.Errorf("reset password: %w", apperr.Remap(err, http.StatusBadRequest, apperr.KindInvalidCode))
	}
	return nil
}

func (s *Service) decode(token string) (*domain.Identity, error) {
	claims, err := jwt.Decode(token, s.now())
	if err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(claims.Role)
	if !ok {
		return nil, fmt.Errorf("unknown role %q", claims.Role)
	}
	return &domain.Identity{Subject: claims.Subject, Role: role}, nil
}

func (s *Service) clear(ctx context.Context) {
	if err := s.tokens.Clear(ctx); err != nil {
		s.log(ctx).Warn("could not clear persisted credential", "error", err)
	}
	s.setToken("")
	s.session.set(nil)
}

func (s *Service) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *Service) log(ctx context.Context) *slog.Logger {
	if s.logger != nil {
		return s.logger
	}
	return logging.FromContext(ctx)
}

// withFallback gives an error of the given kind a generic message when the
// backend did not send one.
func withFallback(err error, kind apperr.Kind, msg string) error {
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind != kind || e.Message != "" {
		return err
	}
	return &apperr.Error{Kind: e.Kind, Message: msg, Status: e.Status, Err: e.Err}
}
