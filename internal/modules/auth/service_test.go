package auth

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	"libportal/internal/domain"
	"libportal/internal/logging"
	"libportal/internal/pkg/apperr"
	"libportal/internal/pkg/jwt"
	"libportal/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAPI struct {
	mock.Mock
}

func (m *mockAPI) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	args := m.Called(ctx, path, form, out)
	return args.Error(0)
}

func (m *mockAPI) PostJSON(ctx context.Context, path string, query url.Values, body, out any) error {
	args := m.Called(ctx, path, query, body, out)
	return args.Error(0)
}

type failingStore struct{}

func (failingStore) Load(context.Context) (string, error) { return "", errors.New("disk gone") }
func (failingStore) Save(context.Context, string) error   { return errors.New("disk gone") }
func (failingStore) Clear(context.Context) error          { return errors.New("disk gone") }

type recordingNav struct {
	routes []Route
}

func (n *recordingNav) Navigate(r Route) { n.routes = append(n.routes, r) }

func issue(t *testing.T, subject, role string, ttl time.Duration) string {
	t.Helper()
	token, err := jwt.New("test-secret", ttl).GenerateToken(subject, role)
	require.NoError(t, err)
	return token
}

// replyToken makes a PostForm expectation fill the login response.
func replyToken(token string) func(mock.Arguments) {
	return func(args mock.Arguments) {
		out := args.Get(3).(*loginResponse)
		out.AccessToken = token
		out.TokenType = "bearer"
	}
}

func newTestService(api API, store TokenStore) (*Service, *recordingNav) {
	nav := &recordingNav{}
	return NewService(api, store, nav, WithLogger(logging.Discard())), nav
}

func TestService_Hydrate_NoToken(t *testing.T) {
	svc, _ := newTestService(new(mockAPI), repository.NewMemoryCredentialStore(""))

	assert.True(t, svc.Session().Loading())
	assert.Nil(t, svc.Hydrate(context.Background()))
	assert.False(t, svc.Session().Loading())
	assert.False(t, svc.Session().Authenticated())
}

func TestService_Hydrate_ValidToken(t *testing.T) {
	token := issue(t, "12345678", "ADMIN", time.Hour)
	svc, _ := newTestService(new(mockAPI), repository.NewMemoryCredentialStore(token))

	id := svc.Hydrate(context.Background())

	require.NotNil(t, id)
	assert.Equal(t, "12345678", id.Subject)
	assert.Equal(t, domain.RoleAdmin, id.Role)
	assert.Equal(t, token, svc.Token())
	assert.False(t, svc.Session().Loading())
}

func TestService_Hydrate_DefaultsRoleToUser(t *testing.T) {
	token := issue(t, "12345678", "", time.Hour)
	svc, _ := newTestService(new(mockAPI), repository.NewMemoryCredentialStore(token))

	id := svc.Hydrate(context.Background())

	require.NotNil(t, id)
	assert.Equal(t, domain.RoleUser, id.Role)
}

func TestService_Hydrate_DiscardsBadTokens(t *testing.T) {
	cases := map[string]string{
		"garbage":      "not-a-token",
		"expired":      issue(t, "12345678", "USER", -time.Hour),
		"unknown role": issue(t, "12345678", "SUPERUSER", time.Hour),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			store := repository.NewMemoryCredentialStore(token)
			svc, _ := newTestService(new(mockAPI), store)

			assert.Nil(t, svc.Hydrate(context.Background()))
			assert.False(t, svc.Session().Loading())
			assert.Empty(t, svc.Token())

			persisted, _ := store.Load(context.Background())
			assert.Empty(t, persisted)
		})
	}
}

func TestService_Hydrate_StoreFailureEndsLoading(t *testing.T) {
	svc, _ := newTestService(new(mockAPI), failingStore{})

	assert.Nil(t, svc.Hydrate(context.Background()))
	assert.False(t, svc.Session().Loading())
}

func TestService_Hydrate_OnlyOnce(t *testing.T) {
	store := repository.NewMemoryCredentialStore("")
	svc, _ := newTestService(new(mockAPI), store)
	svc.Hydrate(context.Background())

	_ = store.Save(context.Background(), issue(t, "12345678", "USER", time.Hour))

	assert.Nil(t, svc.Hydrate(context.Background()))
}

func TestService_Login_Success(t *testing.T) {
	api := new(mockAPI)
	store := repository.NewMemoryCredentialStore("")
	svc, _ := newTestService(api, store)
	token := issue(t, "12345678", "USER", time.Hour)

	form := url.Values{"username": {"12345678"}, "password": {"Abc$1234"}}
	api.On("PostForm", mock.Anything, "auth/login", form, mock.Anything).Run(replyToken(token)).Return(nil)

	var published []*domain.Identity
	svc.Session().Subscribe(func(id *domain.Identity) { published = append(published, id) })

	id, err := svc.Login(context.Background(), "1234-5678", "Abc$1234")

	require.NoError(t, err)
	assert.Equal(t, "12345678", id.Subject)
	assert.Equal(t, token, svc.Token())
	persisted, _ := store.Load(context.Background())
	assert.Equal(t, token, persisted)
	require.Len(t, published, 1)
	assert.Equal(t, "12345678", published[0].Subject)
	api.AssertExpectations(t)
}

func TestService_Login_Rejected(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(api, repository.NewMemoryCredentialStore(""))

	api.On("PostForm", mock.Anything, "auth/login", mock.Anything, mock.Anything).
		Return(apperr.FromStatus(http.StatusBadRequest, "DNI o contraseña incorrectos"))

	_, err := svc.Login(context.Background(), "12345678", "wrong")

	assert.ErrorIs(t, err, apperr.ErrAuth)
	assert.Equal(t, "DNI o contraseña incorrectos", apperr.Message(err, ""))
	assert.False(t, svc.Session().Authenticated())
}

func TestService_Login_RejectedWithoutDetail(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(api, repository.NewMemoryCredentialStore(""))

	api.On("PostForm", mock.Anything, "auth/login", mock.Anything, mock.Anything).
		Return(apperr.FromStatus(http.StatusUnauthorized, ""))

	_, err := svc.Login(context.Background(), "12345678", "wrong")

	assert.ErrorIs(t, err, apperr.ErrAuth)
	assert.Equal(t, msgLoginFailed, apperr.Message(err, ""))
}

func TestService_Login_UnusableToken(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(api, repository.NewMemoryCredentialStore(""))

	api.On("PostForm", mock.Anything, "auth/login", mock.Anything, mock.Anything).
		Run(replyToken("")).Return(nil)

	_, err := svc.Login(context.Background(), "12345678", "Abc$1234")

	assert.ErrorIs(t, err, ErrInvalidResponse)
	assert.False(t, svc.Session().Authenticated())
}

func TestService_Register_WeakPasswordMakesNoCall(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(api, repository.NewMemoryCredentialStore(""))

	_, err := svc.Register(context.Background(), RegisterRequest{
		DNI: "12345678", Email: "ana@example.com", Password: "abc12345",
	})

	assert.ErrorIs(t, err, ErrWeakPassword)
	api.AssertNotCalled(t, "PostJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_Register_InvalidDNI(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(api, repository.NewMemoryCredentialStore(""))

	_, err := svc.Register(context.Background(), RegisterRequest{
		DNI: "1234", Email: "ana@example.com", Password: "Abc$1234",
	})

	assert.ErrorIs(t, err, apperr.ErrValidation)
	api.AssertExpectations(t)
}

func TestService_Register_LogsIn(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(api, repository.NewMemoryCredentialStore(""))
	token := issue(t, "87654321", "USER", time.Hour)

	api.On("PostJSON", mock.Anything, "auth/register", url.Values(nil), RegisterRequest{
		DNI: "87654321", Email: "ana@example.com", Password: "Abc$1234",
	}, nil).Return(nil)
	api.On("PostForm", mock.Anything, "auth/login", mock.Anything, mock.Anything).Run(replyToken(token)).Return(nil)

	id, err := svc.Register(context.Background(), RegisterRequest{
		DNI: " 87654321", Email: " ana@example.com ", Password: "Abc$1234",
	})

	require.NoError(t, err)
	assert.Equal(t, "87654321", id.Subject)
	assert.True(t, svc.Session().Authenticated())
	api.AssertExpectations(t)
}

func TestService_Logout(t *testing.T) {
	token := issue(t, "12345678", "USER", time.Hour)
	store := repository.NewMemoryCredentialStore(token)
	svc, nav := newTestService(new(mockAPI), store)
	svc.Hydrate(context.Background())

	svc.Logout(context.Background())

	assert.False(t, svc.Session().Authenticated())
	assert.Empty(t, svc.Token())
	persisted, _ := store.Load(context.Background())
	assert.Empty(t, persisted)
	assert.Equal(t, []Route{RouteLanding}, nav.routes)
}

func TestService_Logout_StoreFailureStillClears(t *testing.T) {
	api := new(mockAPI)
	svc, nav := newTestService(api, failingStore{})
	token := issue(t, "12345678", "USER", time.Hour)
	svc.setToken(token)
	svc.Session().set(&domain.Identity{Subject: "12345678", Role: domain.RoleUser})

	svc.Logout(context.Background())

	assert.False(t, svc.Session().Authenticated())
	assert.Empty(t, svc.Token())
	assert.Equal(t, []Route{RouteLanding}, nav.routes)
}

func TestService_HandleUnauthorized(t *testing.T) {
	token := issue(t, "12345678", "USER", time.Hour)
	store := repository.NewMemoryCredentialStore(token)
	svc, nav := newTestService(new(mockAPI), store)
	svc.Hydrate(context.Background())

	svc.HandleUnauthorized()

	assert.False(t, svc.Session().Authenticated())
	persisted, _ := store.Load(context.Background())
	assert.Empty(t, persisted)
	assert.Equal(t, []Route{RouteLogin}, nav.routes)
}

func TestService_ForgotPassword_NotFound(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(api, repository.NewMemoryCredentialStore(""))

	api.On("PostJSON", mock.Anything, "auth/forgot", url.Values(nil),
		recoveryRequest{DNI: "12345678", Email: "ana@example.com"}, nil).
		Return(apperr.FromStatus(http.StatusNotFound, "Usuario no encontrado"))

	err := svc.ForgotPassword(context.Background(), "12345678", "ana@example.com")

	assert.ErrorIs(t, err, apperr.ErrNotFound)
	api.AssertExpectations(t)
}

func TestService_VerifyCode_MalformedMakesNoCall(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(api, repository.NewMemoryCredentialStore(""))

	for _, code := range []string{"", "12345", "1234567", "12a456"} {
		err := svc.VerifyCode(context.Background(), "12345678", "ana@example.com", code)
		assert.ErrorIs(t, err, ErrMalformedCode, code)
	}
	api.AssertNotCalled(t, "PostJSON", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_VerifyCode_Rejected(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(api, repository.NewMemoryCredentialStore(""))

	api.On("PostJSON", mock.Anything, "auth/forgot/verify", mock.Anything, mock.Anything, nil).
		Return(apperr.FromStatus(http.StatusBadRequest, "Código inválido o expirado"))

	err := svc.VerifyCode(context.Background(), "12345678", "ana@example.com", "123456")

	assert.ErrorIs(t, err, apperr.ErrInvalidCode)
}

func TestService_ResetPassword(t *testing.T) {
	api := new(mockAPI)
	svc, _ := newTestService(api, repository.NewMemoryCredentialStore(""))

	err := svc.ResetPassword(context.Background(), "12345678", "ana@example.com", "123456", "weak")
	assert.ErrorIs(t, err, ErrWeakPassword)

	api.On("PostJSON", mock.Anything, "auth/forgot/reset", url.Values(nil), recoveryRequest{
		DNI: "12345678", Email: "ana@example.com", Code: "123456", NewPassword: "Abc$1234",
	}, nil).Return(nil).Once()

	err = svc.ResetPassword(context.Background(), "12345678", "ana@example.com", "123456", "Abc$1234")
	assert.NoError(t, err)
	api.AssertExpectations(t)
}
