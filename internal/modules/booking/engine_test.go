package booking

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"libportal/internal/domain"
	"libportal/internal/logging"
	"libportal/internal/modules/auth"
	"libportal/internal/pkg/apperr"
	"libportal/internal/pkg/jwt"
	"libportal/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var lima = time.FixedZone("PET", -5*60*60)

func fixedNow() time.Time { return time.Date(2024, time.May, 1, 9, 30, 0, 0, lima) }

func june(day int) domain.Date { return domain.NewDate(2024, time.June, day) }

var (
	bookTarget = domain.Target{Kind: domain.TargetBook, ID: 7, Title: "Los ríos profundos"}
	roomTarget = domain.Target{Kind: domain.TargetRoom, ID: 3, Title: "Sala Vallejo"}
)

// authBackend answers the login exchange with a token for dni.
type authBackend struct {
	dni string
}

func (b *authBackend) PostForm(_ context.Context, _ string, _ url.Values, out any) error {
	token, err := jwt.New("secret", time.Hour).GenerateToken(b.dni, "USER")
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(`{"access_token":"`+token+`","token_type":"bearer"}`), out)
}

func (b *authBackend) PostJSON(context.Context, string, url.Values, any, any) error { return nil }

type mockReservations struct {
	mock.Mock
}

func (m *mockReservations) Create(ctx context.Context, req domain.ReservationRequest) (*domain.Confirmation, error) {
	args := m.Called(ctx, req)
	conf, _ := args.Get(0).(*domain.Confirmation)
	return conf, args.Error(1)
}

// fakeAvailability serves canned answers; a non-nil gate makes the call
// block until the test releases it.
type fakeAvailability struct {
	mu          sync.Mutex
	unavailable map[int64][]domain.Date
	occupied    map[int64][]string
	err         error
	gate        chan struct{}
	started     chan struct{}
}

func newFakeAvailability() *fakeAvailability {
	return &fakeAvailability{
		unavailable: map[int64][]domain.Date{},
		occupied:    map[int64][]string{},
	}
}

func (f *fakeAvailability) wait() {
	f.mu.Lock()
	gate, started := f.gate, f.started
	f.mu.Unlock()
	if started != nil {
		started <- struct{}{}
	}
	if gate != nil {
		<-gate
	}
}

func (f *fakeAvailability) UnavailableDates(_ context.Context, bookID int64, month domain.YearMonth) ([]domain.Date, error) {
	f.mu.Lock()
	var dates []domain.Date
	for _, day := range f.unavailable[bookID] {
		if day.YearMonth() == month {
			dates = append(dates, day)
		}
	}
	err := f.err
	f.mu.Unlock()
	f.wait()
	return dates, err
}

func (f *fakeAvailability) OccupiedSlots(_ context.Context, resourceID int64, _ domain.Date) ([]string, error) {
	f.mu.Lock()
	ids, err := f.occupied[resourceID], f.err
	f.mu.Unlock()
	f.wait()
	return ids, err
}

type fixture struct {
	auth   *auth.Service
	avail  *fakeAvailability
	res    *mockReservations
	engine *Engine
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	svc := auth.NewService(&authBackend{dni: "12345678"}, repository.NewMemoryCredentialStore(""), nil,
		auth.WithLogger(logging.Discard()))
	svc.Hydrate(context.Background())

	f := &fixture{auth: svc, avail: newFakeAvailability(), res: new(mockReservations)}
	opts = append([]Option{WithClock(fixedNow), WithLocation(lima), WithLogger(logging.Discard())}, opts...)
	f.engine = NewEngine(svc, f.avail, f.res, opts...)
	return f
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	_, err := f.auth.Login(context.Background(), "12345678", "Abc$1234")
	require.NoError(t, err)
}

func confirmation() *domain.Confirmation {
	return &domain.Confirmation{Message: "Ok", QRToken: "5f0c1f2e-qr", Code: "LI-4F2A9C"}
}

func TestEngine_BookRangeIsNormalized(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Open(bookTarget))

	require.NoError(t, f.engine.SelectDateRange(june(6), june(3)))

	d := f.engine.View().Draft.(*BookDraft)
	require.NotNil(t, d.Range)
	assert.Equal(t, june(3), d.Range.Start)
	assert.Equal(t, june(6), d.Range.End)
	assert.Equal(t, 4, d.Range.DayCount())
}

func TestEngine_BookRangeLengthBoundary(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.engine.Open(bookTarget))

	require.NoError(t, f.engine.SelectDateRange(june(3), june(3)))
	assert.True(t, f.engine.View().CanSubmit)

	require.NoError(t, f.engine.SelectDateRange(june(3), june(7)))
	assert.True(t, f.engine.View().CanSubmit)

	err := f.engine.SelectDateRange(june(3), june(8))
	assert.ErrorIs(t, err, ErrRangeTooLong)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	v := f.engine.View()
	assert.False(t, v.CanSubmit)
	assert.Equal(t, june(8), v.Draft.(*BookDraft).Range.End, "range is recorded even when too long")
	assert.NotEmpty(t, v.Error)

	assert.ErrorIs(t, f.engine.Submit(context.Background()), ErrRangeTooLong)
	f.res.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEngine_OverlapBlocksSubmit(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.avail.unavailable[bookTarget.ID] = []domain.Date{june(5)}
	require.NoError(t, f.engine.Open(bookTarget))
	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), domain.YearMonth{Year: 2024, Month: time.June}))

	assert.False(t, f.engine.IsSelectable(june(5)))
	assert.ErrorIs(t, f.engine.SelectDateRange(june(5), june(6)), ErrDateNotSelectable)

	err := f.engine.SelectDateRange(june(4), june(6))
	assert.ErrorIs(t, err, ErrRangeUnavailable)

	assert.Error(t, f.engine.Submit(context.Background()))
	f.res.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func july(day int) domain.Date { return domain.NewDate(2024, time.July, day) }

var (
	monthJune = domain.YearMonth{Year: 2024, Month: time.June}
	monthJuly = domain.YearMonth{Year: 2024, Month: time.July}
)

func TestEngine_MonthChangeKeepsOverlap(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.avail.unavailable[bookTarget.ID] = []domain.Date{june(5)}
	require.NoError(t, f.engine.Open(bookTarget))
	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), monthJune))
	require.ErrorIs(t, f.engine.SelectDateRange(june(3), june(6)), ErrRangeUnavailable)

	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), monthJuly))

	v := f.engine.View()
	assert.NotEmpty(t, v.Error)
	assert.False(t, v.CanSubmit)
	assert.Contains(t, v.Draft.(*BookDraft).Unavailable, june(5))
	assert.ErrorIs(t, f.engine.Submit(context.Background()), ErrRangeUnavailable)
	f.res.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEngine_RangeAcrossMonthsChecksBoth(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.avail.unavailable[bookTarget.ID] = []domain.Date{july(1)}
	require.NoError(t, f.engine.Open(bookTarget))
	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), monthJune))
	require.NoError(t, f.engine.SelectDateRange(june(28), july(2)))

	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), monthJuly))

	assert.NotEmpty(t, f.engine.Error())
	assert.ErrorIs(t, f.engine.Submit(context.Background()), ErrRangeUnavailable)
	f.res.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEngine_MonthReloadReplacesThatMonth(t *testing.T) {
	f := newFixture(t)
	f.avail.unavailable[bookTarget.ID] = []domain.Date{june(5), july(3)}
	require.NoError(t, f.engine.Open(bookTarget))
	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), monthJune))
	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), monthJuly))

	f.avail.mu.Lock()
	f.avail.unavailable[bookTarget.ID] = []domain.Date{june(6), july(3)}
	f.avail.mu.Unlock()
	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), monthJune))

	d := f.engine.View().Draft.(*BookDraft)
	assert.Equal(t, []domain.Date{june(6), july(3)}, d.UnavailableDates())
}

func TestEngine_FailedMonthKeepsKnownDays(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.avail.unavailable[bookTarget.ID] = []domain.Date{june(5)}
	require.NoError(t, f.engine.Open(bookTarget))
	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), monthJune))
	require.Error(t, f.engine.SelectDateRange(june(4), june(6)))

	f.avail.mu.Lock()
	f.avail.err = apperr.Transport(errors.New("connection refused"))
	f.avail.mu.Unlock()
	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), monthJune))

	v := f.engine.View()
	assert.False(t, v.Loading)
	assert.Contains(t, v.Draft.(*BookDraft).Unavailable, june(5))
	assert.NotEmpty(t, v.Error)
	assert.ErrorIs(t, f.engine.Submit(context.Background()), ErrRangeUnavailable)
}

func TestEngine_SubmitWaitsForOccupancy(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.avail.gate = make(chan struct{})
	f.avail.started = make(chan struct{}, 1)
	require.NoError(t, f.engine.Open(roomTarget))
	require.NoError(t, f.engine.SelectDate(june(10)))

	done := make(chan error, 1)
	go func() { done <- f.engine.LoadDailyOccupancy(context.Background()) }()
	<-f.avail.started
	require.True(t, f.engine.SelectSlot("10:00"))

	assert.ErrorIs(t, f.engine.Submit(context.Background()), ErrLoading)
	f.res.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	close(f.avail.gate)
	require.NoError(t, <-done)
	assert.False(t, f.engine.View().Loading)
}

func TestEngine_LengthAndOverlapAreIndependent(t *testing.T) {
	f := newFixture(t)
	f.avail.unavailable[bookTarget.ID] = []domain.Date{june(5)}
	require.NoError(t, f.engine.Open(bookTarget))
	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), domain.YearMonth{Year: 2024, Month: time.June}))

	err := f.engine.SelectDateRange(june(3), june(10))

	assert.ErrorIs(t, err, ErrRangeTooLong)
	assert.ErrorIs(t, err, ErrRangeUnavailable)
}

func TestEngine_UnselectableDates(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Open(roomTarget))

	assert.False(t, f.engine.IsSelectable(domain.NewDate(2024, time.April, 30)), "past")
	assert.False(t, f.engine.IsSelectable(june(2)), "sunday")
	assert.True(t, f.engine.IsSelectable(domain.NewDate(2024, time.May, 1)), "today")

	assert.ErrorIs(t, f.engine.SelectDate(june(2)), ErrDateNotSelectable)
}

func TestEngine_WrongKindOperations(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Open(roomTarget))

	assert.ErrorIs(t, f.engine.SelectDateRange(june(3), june(4)), ErrWrongKind)
	assert.ErrorIs(t, f.engine.LoadMonthlyAvailability(context.Background(), domain.YearMonth{Year: 2024, Month: time.June}), ErrWrongKind)
	assert.ErrorIs(t, f.engine.Open(domain.Target{Kind: "DVD"}), ErrWrongKind)
}

func TestEngine_ClosedEngineRejectsWork(t *testing.T) {
	f := newFixture(t)

	assert.ErrorIs(t, f.engine.Submit(context.Background()), ErrClosed)
	assert.ErrorIs(t, f.engine.SelectDate(june(10)), ErrClosed)
	assert.False(t, f.engine.SelectSlot("10:00"))
}

func TestEngine_UnauthenticatedSubmitDefers(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Open(bookTarget))
	require.NoError(t, f.engine.SelectDateRange(june(3), june(5)))
	assert.Equal(t, "Log in and confirm", f.engine.View().SubmitLabel)

	err := f.engine.Submit(context.Background())

	assert.ErrorIs(t, err, ErrLoginRequired)
	assert.True(t, f.engine.Pending())
	st := f.auth.Modal().State()
	assert.True(t, st.IsOpen)
	assert.Equal(t, auth.ViewLogin, st.View)
	assert.Equal(t, StepForm, f.engine.View().Step)
	f.res.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEngine_ResumesOnceAfterLogin(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Open(bookTarget))
	require.NoError(t, f.engine.SelectDateRange(june(3), june(5)))
	require.ErrorIs(t, f.engine.Submit(context.Background()), ErrLoginRequired)

	var pendingAtDispatch []bool
	f.res.On("Create", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { pendingAtDispatch = append(pendingAtDispatch, f.engine.Pending()) }).
		Return(confirmation(), nil)

	f.login(t)

	f.res.AssertNumberOfCalls(t, "Create", 1)
	assert.Equal(t, []bool{false}, pendingAtDispatch)
	assert.False(t, f.engine.Pending())
	v := f.engine.View()
	assert.Equal(t, StepConfirmed, v.Step)
	require.NotNil(t, v.Result)
	assert.Equal(t, "LI-4F2A9C", v.Result.Code)

	f.auth.Logout(context.Background())
	f.login(t)
	f.res.AssertNumberOfCalls(t, "Create", 1)
}

func TestEngine_ResumeFailureClearsPending(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Open(roomTarget))
	require.NoError(t, f.engine.SelectDate(june(10)))
	require.True(t, f.engine.SelectSlot("16:00"))
	require.ErrorIs(t, f.engine.Submit(context.Background()), ErrLoginRequired)

	f.res.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperr.FromStatus(http.StatusBadRequest, "Límite: 1 turno por día.")).Once()

	f.login(t)

	assert.False(t, f.engine.Pending())
	v := f.engine.View()
	assert.Equal(t, StepForm, v.Step)
	assert.Equal(t, "Límite: 1 turno por día.", v.Error)
	assert.True(t, v.CanSubmit, "a backend failure does not block a manual retry")
	f.res.AssertNumberOfCalls(t, "Create", 1)
}

func TestEngine_ResetDropsPendingSubmit(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.Open(bookTarget))
	require.NoError(t, f.engine.SelectDateRange(june(3), june(5)))
	require.ErrorIs(t, f.engine.Submit(context.Background()), ErrLoginRequired)

	f.engine.Close()
	f.login(t)

	assert.False(t, f.engine.Pending())
	f.res.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEngine_RoomSlotScenario(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.avail.occupied[roomTarget.ID] = []string{"10:00"}
	require.NoError(t, f.engine.Open(roomTarget))
	require.NoError(t, f.engine.SelectDate(june(10)))
	require.NoError(t, f.engine.LoadDailyOccupancy(context.Background()))

	assert.False(t, f.engine.SelectSlot("10:00"))
	assert.Nil(t, f.engine.View().Draft.(*RoomDraft).Slot)
	assert.False(t, f.engine.View().CanSubmit)

	assert.False(t, f.engine.SelectSlot("09:00"))

	assert.True(t, f.engine.SelectSlot("12:00"))
	v := f.engine.View()
	assert.True(t, v.CanSubmit)
	assert.Equal(t, "Confirm reservation", v.SubmitLabel)
}

func TestEngine_RoomRequestTimes(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.engine.Open(roomTarget))
	require.NoError(t, f.engine.SelectDate(june(10)))
	require.True(t, f.engine.SelectSlot("14:00"))

	var sent domain.ReservationRequest
	f.res.On("Create", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(domain.ReservationRequest) }).
		Return(confirmation(), nil)

	require.NoError(t, f.engine.Submit(context.Background()))

	const local = "2006-01-02T15:04:05"
	assert.Equal(t, domain.TargetRoom, sent.Kind)
	require.NotNil(t, sent.ResourceID)
	assert.Equal(t, int64(3), *sent.ResourceID)
	assert.Nil(t, sent.BookID)
	assert.Equal(t, "2024-06-10T14:00:00", sent.StartsAt.Format(local))
	assert.Equal(t, "2024-06-10T15:50:00", sent.EndsAt.Format(local))
	assert.Equal(t, "2024-06-10T00:00:00", sent.ReservedAt.Format(local))
	assert.True(t, sent.StartsAt.Equal(time.Date(2024, time.June, 10, 14, 0, 0, 0, lima)))
}

func TestEngine_BookScenario(t *testing.T) {
	var notified []domain.Confirmation
	f := newFixture(t, OnSuccess(func(c domain.Confirmation) { notified = append(notified, c) }))
	f.login(t)
	require.NoError(t, f.engine.Open(bookTarget))
	require.NoError(t, f.engine.LoadMonthlyAvailability(context.Background(), domain.YearMonth{Year: 2024, Month: time.June}))
	require.NoError(t, f.engine.SelectDateRange(june(1), june(3)))

	f.res.On("Create", mock.Anything, mock.MatchedBy(func(r domain.ReservationRequest) bool {
		return r.Kind == domain.TargetBook && r.BookID != nil && *r.BookID == 7 &&
			r.StartsAt.Equal(time.Date(2024, time.June, 1, 0, 0, 0, 0, lima)) &&
			r.EndsAt.Equal(time.Date(2024, time.June, 3, 23, 59, 59, 0, lima)) &&
			r.ReservedAt.Equal(fixedNow())
	})).Return(confirmation(), nil).Once()

	require.NoError(t, f.engine.Submit(context.Background()))

	v := f.engine.View()
	assert.Equal(t, StepConfirmed, v.Step)
	assert.Equal(t, "LI-4F2A9C", v.Result.Code)
	assert.Equal(t, "5f0c1f2e-qr", v.Result.QRToken)
	assert.Len(t, notified, 1)
	f.res.AssertExpectations(t)

	assert.ErrorIs(t, f.engine.SelectDateRange(june(4), june(5)), ErrConfirmed)
	f.engine.Reset()
	assert.Equal(t, StepForm, f.engine.View().Step)
	assert.Nil(t, f.engine.View().Draft.(*BookDraft).Range)
}

func TestEngine_ConflictReturnsToForm(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.engine.Open(roomTarget))
	require.NoError(t, f.engine.SelectDate(june(10)))
	require.True(t, f.engine.SelectSlot("18:00"))

	f.res.On("Create", mock.Anything, mock.Anything).
		Return(nil, apperr.New(apperr.KindConflict, "Horario reservado.")).Once()

	err := f.engine.Submit(context.Background())

	assert.ErrorIs(t, err, apperr.ErrConflict)
	v := f.engine.View()
	assert.Equal(t, StepForm, v.Step)
	assert.Equal(t, "Horario reservado.", v.Error)

	require.True(t, f.engine.SelectSlot("20:00"))
	assert.Empty(t, f.engine.Error())
}

func TestEngine_SecondSubmitWhileInFlight(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	require.NoError(t, f.engine.Open(roomTarget))
	require.NoError(t, f.engine.SelectDate(june(10)))
	require.True(t, f.engine.SelectSlot("12:00"))

	release := make(chan struct{})
	entered := make(chan struct{})
	f.res.On("Create", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(confirmation(), nil).Once()

	done := make(chan error, 1)
	go func() { done <- f.engine.Submit(context.Background()) }()
	<-entered

	assert.ErrorIs(t, f.engine.Submit(context.Background()), ErrSubmitInFlight)
	assert.False(t, f.engine.View().CanSubmit)
	assert.False(t, f.engine.SelectSlot("14:00"))

	close(release)
	require.NoError(t, <-done)
	f.res.AssertNumberOfCalls(t, "Create", 1)
}

func TestEngine_AvailabilityFailureFailsOpen(t *testing.T) {
	f := newFixture(t)
	f.avail.err = apperr.Transport(errors.New("connection refused"))
	require.NoError(t, f.engine.Open(bookTarget))

	err := f.engine.LoadMonthlyAvailability(context.Background(), domain.YearMonth{Year: 2024, Month: time.June})

	assert.NoError(t, err)
	v := f.engine.View()
	assert.False(t, v.Loading)
	assert.Empty(t, v.Draft.(*BookDraft).Unavailable)
	assert.True(t, f.engine.IsSelectable(june(5)))
}

func TestEngine_StaleResponseAfterReopen(t *testing.T) {
	f := newFixture(t)
	other := domain.Target{Kind: domain.TargetBook, ID: 8, Title: "El zorro de arriba"}
	f.avail.unavailable[bookTarget.ID] = []domain.Date{june(5), june(6)}
	f.avail.gate = make(chan struct{})
	f.avail.started = make(chan struct{}, 1)
	require.NoError(t, f.engine.Open(bookTarget))

	done := make(chan error, 1)
	go func() {
		done <- f.engine.LoadMonthlyAvailability(context.Background(), domain.YearMonth{Year: 2024, Month: time.June})
	}()
	<-f.avail.started

	f.engine.Close()
	require.NoError(t, f.engine.Open(other))
	close(f.avail.gate)
	require.NoError(t, <-done)

	v := f.engine.View()
	assert.Equal(t, other, v.Target)
	assert.Empty(t, v.Draft.(*BookDraft).Unavailable)
	assert.True(t, f.engine.IsSelectable(june(5)))
}

func TestEngine_LatestLoadWins(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.avail.occupied[roomTarget.ID] = []string{"10:00"}
	f.avail.gate = make(chan struct{})
	f.avail.started = make(chan struct{}, 1)
	require.NoError(t, f.engine.Open(roomTarget))
	require.NoError(t, f.engine.SelectDate(june(10)))

	first := make(chan error, 1)
	go func() { first <- f.engine.LoadDailyOccupancy(context.Background()) }()
	<-f.avail.started

	// the user moves to another day before the first answer lands
	require.NoError(t, f.engine.SelectDate(june(11)))
	f.avail.mu.Lock()
	firstGate := f.avail.gate
	f.avail.occupied[roomTarget.ID] = []string{"12:00"}
	f.avail.gate = nil
	f.avail.started = nil
	f.avail.mu.Unlock()
	require.NoError(t, f.engine.LoadDailyOccupancy(context.Background()))

	close(firstGate)
	require.NoError(t, <-first)

	d := f.engine.View().Draft.(*RoomDraft)
	assert.Equal(t, june(11), *d.Date)
	assert.True(t, d.IsOccupied("12:00"))
	assert.False(t, d.IsOccupied("10:00"))
}
