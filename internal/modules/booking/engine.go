package booking

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"libportal/internal/domain"
	"libportal/internal/logging"
	"libportal/internal/modules/auth"
	"libportal/internal/pkg/apperr"
	"libportal/internal/pkg/metrics"
)

type Step string

const (
	StepForm       Step = "FORM"
	StepSubmitting Step = "SUBMITTING"
	StepConfirmed  Step = "CONFIRMED"
)

const (
	labelConfirm      = "Confirm reservation"
	labelLoginConfirm = "Log in and confirm"
)

// Engine drives one reservation dialog: calendar availability, the draft,
// and submission, including the resume after an interrupting login.
//
// Every open and every reset starts a new generation; responses that arrive
// for an older generation are dropped. Within a generation only the most
// recently issued availability load may apply its result.
type Engine struct {
	coord   Coordinator
	avail   AvailabilitySource
	res     Reservations
	loc     *time.Location
	now     func() time.Time
	logger  *slog.Logger
	metrics *metrics.ClientMetrics
	onDone  func(domain.Confirmation)

	mu          sync.Mutex
	open        bool
	target      domain.Target
	draft       Draft
	step        Step
	loading     bool
	errs        []error
	failure     error
	result      *domain.Confirmation
	pending     bool
	resumeCtx   context.Context
	unsubscribe func()
	gen         uint64
	loadSeq     uint64
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(e *Engine) { e.loc = loc }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// OnSuccess registers a notification run after each confirmed reservation,
// outside the engine lock.
func OnSuccess(fn func(domain.Confirmation)) Option {
	return func(e *Engine) { e.onDone = fn }
}

func NewEngine(coord Coordinator, avail AvailabilitySource, res Reservations, opts ...Option) *Engine {
	e := &Engine{
		coord: coord,
		avail: avail,
		res:   res,
		loc:   time.Local,
		now:   time.Now,
		step:  StepForm,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open starts a fresh draft for target. Anything still in flight for a
// previous target is ignored when it lands.
func (e *Engine) Open(target domain.Target) error {
	if !target.Kind.Valid() {
		return ErrWrongKind
	}
	e.mu.Lock()
	unsub := e.resetLocked()
	e.open = true
	e.target = target
	e.draft = newDraft(target.Kind)
	e.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	return nil
}

// Reset returns the open dialog to its initial state and drops any pending
// resume. Called on explicit close, from FORM or after CONFIRMED.
func (e *Engine) Reset() {
	e.mu.Lock()
	unsub := e.resetLocked()
	e.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Close resets and detaches the engine from its target.
func (e *Engine) Close() {
	e.mu.Lock()
	unsub := e.resetLocked()
	e.open = false
	e.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

func (e *Engine) resetLocked() (unsubscribe func()) {
	e.gen++
	e.loadSeq++
	if e.open {
		e.draft = newDraft(e.target.Kind)
	}
	e.step = StepForm
	e.loading = false
	e.errs = nil
	e.failure = nil
	e.result = nil
	e.pending = false
	e.resumeCtx = nil
	unsubscribe = e.unsubscribe
	e.unsubscribe = nil
	return unsubscribe
}

/* ---------- AVAILABILITY ---------- */

// LoadMonthlyAvailability fetches the days of month with no copy left and
// replaces what was known for that month only; other months stay cached so a
// selected range keeps its overlap check while the calendar pages. A failed
// query is logged and adds no restrictions.
func (e *Engine) LoadMonthlyAvailability(ctx context.Context, month domain.YearMonth) error {
	e.mu.Lock()
	if err := e.checkLocked(domain.TargetBook); err != nil {
		e.mu.Unlock()
		return err
	}
	e.loadSeq++
	seq, gen, bookID := e.loadSeq, e.gen, e.target.ID
	e.loading = true
	e.mu.Unlock()

	dates, err := e.avail.UnavailableDates(ctx, bookID, month)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || seq != e.loadSeq {
		e.metrics.ObserveStale("monthly")
		e.log(ctx).Debug("dropping stale availability", "book_id", bookID, "month", month.String())
		return nil
	}
	e.loading = false

	if err != nil {
		e.log(ctx).Warn("availability query failed, no new restrictions applied",
			"book_id", bookID, "month", month.String(), "error", err)
		return nil
	}

	d := e.draft.(*BookDraft)
	for day := range d.Unavailable {
		if day.YearMonth() == month {
			delete(d.Unavailable, day)
		}
	}
	for _, day := range dates {
		d.Unavailable[day] = struct{}{}
	}
	if d.Range != nil {
		e.errs = rangeErrors(d, *d.Range)
	}
	return nil
}

// LoadDailyOccupancy fetches the taken slots of the selected date. The chosen
// slot is cleared.
func (e *Engine) LoadDailyOccupancy(ctx context.Context) error {
	e.mu.Lock()
	if err := e.checkLocked(domain.TargetRoom); err != nil {
		e.mu.Unlock()
		return err
	}
	d := e.draft.(*RoomDraft)
	if d.Date == nil {
		e.mu.Unlock()
		return ErrDateRequired
	}
	e.loadSeq++
	seq, gen, resourceID, date := e.loadSeq, e.gen, e.target.ID, *d.Date
	d.Slot = nil
	d.Occupied = map[string]struct{}{}
	e.loading = true
	e.mu.Unlock()

	occupied, err := e.avail.OccupiedSlots(ctx, resourceID, date)

	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.gen || seq != e.loadSeq {
		e.metrics.ObserveStale("daily")
		e.log(ctx).Debug("dropping stale occupancy", "resource_id", resourceID, "date", date.String())
		return nil
	}
	e.loading = false
	if err != nil {
		e.log(ctx).Warn("occupancy query failed", "resource_id", resourceID, "date", date.String(), "error", err)
		return nil
	}

	d = e.draft.(*RoomDraft)
	for _, id := range occupied {
		d.Occupied[id] = struct{}{}
	}
	if d.Slot != nil && d.IsOccupied(d.Slot.ID()) {
		d.Slot = nil
	}
	return nil
}

/* ---------- SELECTION ---------- */

// IsSelectable reports whether the calendar lets the user pick date: not in
// the past, not a Sunday, and for books not fully loaned out.
func (e *Engine) IsSelectable(date domain.Date) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectableLocked(date)
}

func (e *Engine) selectableLocked(date domain.Date) bool {
	today := domain.DateOf(e.now().In(e.loc))
	if date.Before(today) || date.Weekday() == time.Sunday {
		return false
	}
	if d, ok := e.draft.(*BookDraft); ok {
		if _, taken := d.Unavailable[date]; taken {
			return false
		}
	}
	return true
}

// SelectDateRange records a loan range; reversed ends are swapped. A range
// that is too long or crosses unavailable days is still recorded but blocks
// submission until changed.
func (e *Engine) SelectDateRange(start, end domain.Date) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkLocked(domain.TargetBook); err != nil {
		return err
	}
	if err := e.editableLocked(); err != nil {
		return err
	}
	if !e.selectableLocked(start) || !e.selectableLocked(end) {
		return ErrDateNotSelectable
	}

	d := e.draft.(*BookDraft)
	r := domain.NewDateRange(start, end)
	d.Range = &r
	e.failure = nil
	e.errs = rangeErrors(d, r)
	if len(e.errs) > 0 {
		return errors.Join(e.errs...)
	}
	return nil
}

// SelectDate picks the day for a slot reservation. The slot and the occupied
// cache are cleared until LoadDailyOccupancy runs for the new day.
func (e *Engine) SelectDate(date domain.Date) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkLocked(domain.TargetRoom); err != nil {
		return err
	}
	if err := e.editableLocked(); err != nil {
		return err
	}
	if !e.selectableLocked(date) {
		return ErrDateNotSelectable
	}

	d := e.draft.(*RoomDraft)
	d.Date = &date
	d.Slot = nil
	d.Occupied = map[string]struct{}{}
	e.loadSeq++
	e.loading = false
	e.errs = nil
	e.failure = nil
	return nil
}

// SelectSlot picks a daily slot by its start time. Unknown or occupied slots
// are ignored and false is returned.
func (e *Engine) SelectSlot(slotID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.checkLocked(domain.TargetRoom) != nil || e.step != StepForm {
		return false
	}
	d := e.draft.(*RoomDraft)
	if d.Date == nil || d.IsOccupied(slotID) {
		return false
	}
	slot, ok := domain.SlotByID(slotID)
	if !ok {
		return false
	}
	d.Slot = &slot
	e.errs = nil
	e.failure = nil
	return true
}

/* ---------- SUBMIT ---------- */

// Submit sends the draft. Without an identity it opens the login dialog,
// remembers the intent and returns ErrLoginRequired; the submit then resumes
// once, by itself, when a login lands.
func (e *Engine) Submit(ctx context.Context) error {
	e.mu.Lock()
	if !e.open {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.step == StepSubmitting {
		e.mu.Unlock()
		return ErrSubmitInFlight
	}
	if e.step == StepConfirmed {
		e.mu.Unlock()
		return nil
	}
	if e.loading {
		e.mu.Unlock()
		return ErrLoading
	}

	if e.coord.Identity() == nil {
		e.pending = true
		e.resumeCtx = context.WithoutCancel(ctx)
		if e.unsubscribe == nil {
			e.unsubscribe = e.coord.Subscribe(e.onIdentity)
		}
		e.mu.Unlock()
		e.coord.OpenAuthModal(auth.ViewLogin)
		return ErrLoginRequired
	}

	if len(e.errs) > 0 {
		err := e.errs[0]
		e.mu.Unlock()
		return err
	}

	req, err := BuildRequest(e.target, e.draft, e.now(), e.loc)
	if err != nil {
		e.errs = []error{err}
		e.pending = false
		e.mu.Unlock()
		return err
	}

	gen, targetID := e.gen, e.target.ID
	e.step = StepSubmitting
	e.loading = true
	e.failure = nil
	e.mu.Unlock()

	conf, err := e.res.Create(ctx, req)

	e.mu.Lock()
	if gen != e.gen {
		e.mu.Unlock()
		e.metrics.ObserveStale("submit")
		e.log(ctx).Info("reservation finished after the dialog closed", "kind", req.Kind, "error", err)
		return ErrClosed
	}
	e.loading = false
	if err != nil {
		e.step = StepForm
		e.failure = err
		e.pending = false
		e.mu.Unlock()
		e.log(ctx).Info("reservation rejected", "kind", req.Kind, "target_id", targetID, "error", err)
		return err
	}
	e.step = StepConfirmed
	e.result = conf
	onDone := e.onDone
	e.mu.Unlock()

	e.log(ctx).Info("reservation confirmed", "kind", req.Kind, "code", conf.Code)
	if onDone != nil {
		onDone(*conf)
	}
	return nil
}

// onIdentity runs on the goroutine that changed the identity. The pending
// flag and the subscription are dropped before the resumed submit starts, so
// it runs at most once.
func (e *Engine) onIdentity(id *domain.Identity) {
	if id == nil {
		return
	}
	e.mu.Lock()
	if !e.pending || !e.open {
		e.mu.Unlock()
		return
	}
	e.pending = false
	ctx := e.resumeCtx
	e.resumeCtx = nil
	unsub := e.unsubscribe
	e.unsubscribe = nil
	e.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := e.Submit(ctx); err != nil {
		e.log(ctx).Info("resumed reservation did not go through", "error", err)
	}
}

/* ---------- VIEW ---------- */

// View is a consistent snapshot for rendering the dialog.
type View struct {
	Target      domain.Target
	Open        bool
	Step        Step
	Loading     bool
	Error       string
	Draft       Draft
	Result      *domain.Confirmation
	PendingAuth bool
	CanSubmit   bool
	SubmitLabel string
}

func (e *Engine) View() View {
	authenticated := e.coord.Identity() != nil

	e.mu.Lock()
	defer e.mu.Unlock()
	v := View{
		Target:      e.target,
		Open:        e.open,
		Step:        e.step,
		Loading:     e.loading,
		Error:       e.errorTextLocked(),
		PendingAuth: e.pending,
		SubmitLabel: labelConfirm,
	}
	if !authenticated {
		v.SubmitLabel = labelLoginConfirm
	}
	if e.draft != nil {
		v.Draft = e.draft.clone()
	}
	if e.result != nil {
		r := *e.result
		v.Result = &r
	}
	v.CanSubmit = e.open && e.step == StepForm && !e.loading && len(e.errs) == 0 &&
		e.draft != nil && e.draft.Complete()
	return v
}

// Error is the inline error text, empty when there is none.
func (e *Engine) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errorTextLocked()
}

func (e *Engine) Pending() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

func (e *Engine) errorTextLocked() string {
	msgs := make([]string, 0, len(e.errs)+1)
	for _, err := range e.errs {
		msgs = append(msgs, apperr.Message(err, msgSubmitFailed))
	}
	if e.failure != nil {
		msgs = append(msgs, apperr.Message(e.failure, msgSubmitFailed))
	}
	return strings.Join(msgs, "; ")
}

func (e *Engine) editableLocked() error {
	switch e.step {
	case StepSubmitting:
		return ErrSubmitInFlight
	case StepConfirmed:
		return ErrConfirmed
	}
	return nil
}

func (e *Engine) checkLocked(kind domain.TargetKind) error {
	if !e.open {
		return ErrClosed
	}
	if e.target.Kind != kind {
		return ErrWrongKind
	}
	return nil
}

func (e *Engine) log(ctx context.Context) *slog.Logger {
	if e.logger != nil {
		return e.logger
	}
	return logging.FromContext(ctx)
}
