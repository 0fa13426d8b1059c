package mockapi

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"sort"
	"strings"
	"sync"
	"time"

	"libportal/internal/domain"
	"libportal/internal/logging"
	"libportal/internal/pkg/apperr"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxLoanDays     = 5
	maxActiveLoans  = 2
	checkInEarly    = 15 * time.Minute
	roomTolerance   = 20 * time.Minute
	strikesToBan    = 3
	banDuration     = 180 * 24 * time.Hour
	recoveryCodeTTL = 15 * time.Minute
)

// Store is the in-memory backend state. All rules the real portal enforces
// on reservations and entry validation live here.
type Store struct {
	mu           sync.Mutex
	users        map[string]*user
	sites        []domain.Site
	books        []domain.Book
	resources    []domain.Resource
	reservations []*reservation
	nextID       int64

	loc      *time.Location
	now      func() time.Time
	hashCost int
	codes    func() string
	logger   *slog.Logger
}

type StoreOption func(*Store)

func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

func WithLocation(loc *time.Location) StoreOption {
	return func(s *Store) { s.loc = loc }
}

// WithHashCost lowers the bcrypt cost; tests use bcrypt.MinCost.
func WithHashCost(cost int) StoreOption {
	return func(s *Store) { s.hashCost = cost }
}

// WithRecoveryCodes replaces the random six digit generator.
func WithRecoveryCodes(gen func() string) StoreOption {
	return func(s *Store) { s.codes = gen }
}

func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		users:    make(map[string]*user),
		loc:      time.Local,
		now:      time.Now,
		hashCost: bcrypt.DefaultCost,
		codes:    randomCode,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func fail(status int, msg string) error {
	return apperr.FromStatus(status, msg)
}

func (s *Store) clock() time.Time {
	return s.now().In(s.loc)
}

/* ---------- USERS ---------- */

func (s *Store) AddUser(dni, email, name, password string, role domain.Role) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[dni] = &user{DNI: dni, Email: email, Name: name, Hash: hash, Role: role}
	return nil
}

// Authenticate checks the credentials and returns the user's role.
func (s *Store) Authenticate(dni, password string) (domain.Role, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[dni]
	if !ok || bcrypt.CompareHashAndPassword(u.Hash, []byte(password)) != nil {
		return "", fail(400, "Credenciales incorrectas")
	}
	if u.banned(s.clock()) {
		return "", fail(403, "Usuario bloqueado")
	}
	return u.Role, nil
}

func (s *Store) Register(dni, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[dni]; ok {
		return fail(400, "El DNI ya está registrado")
	}
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return fail(400, "El email ya está registrado")
		}
	}
	s.users[dni] = &user{DNI: dni, Email: email, Name: "Usuario " + dni, Hash: hash, Role: domain.RoleUser}
	return nil
}

// StartRecovery issues a code for a matching account. An unknown account is
// not reported, so callers cannot probe which DNIs exist.
func (s *Store) StartRecovery(dni, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findLocked(dni, email)
	if u == nil {
		return
	}
	u.recoveryCode = s.codes()
	u.recoveryExpires = s.clock().Add(recoveryCodeTTL)
	// no mail relay; the code goes to the log
	s.logger.Info("recovery code issued", "dni", dni, "code", u.recoveryCode)
}

func (s *Store) VerifyRecovery(dni, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.checkCodeLocked(dni, email, code)
	return err
}

func (s *Store) ResetPassword(dni, email, code, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, err := s.checkCodeLocked(dni, email, code)
	if err != nil {
		return err
	}
	u.Hash = hash
	u.recoveryCode = ""
	u.recoveryExpires = time.Time{}
	return nil
}

func (s *Store) findLocked(dni, email string) *user {
	u, ok := s.users[dni]
	if !ok || !strings.EqualFold(u.Email, email) {
		return nil
	}
	return u
}

func (s *Store) checkCodeLocked(dni, email, code string) (*user, error) {
	u := s.findLocked(dni, email)
	if u == nil {
		return nil, fail(404, "Usuario no encontrado")
	}
	if u.recoveryCode == "" || u.recoveryCode != code {
		return nil, fail(400, "Código inválido")
	}
	if s.clock().After(u.recoveryExpires) {
		return nil, fail(400, "El código ha expirado")
	}
	return u, nil
}

func randomCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

/* ---------- CATALOG ---------- */

func (s *Store) AddSite(site domain.Site) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sites = append(s.sites, site)
}

func (s *Store) AddBook(b domain.Book) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.SiteName = s.siteNameLocked(b.SiteID)
	s.books = append(s.books, b)
}

func (s *Store) AddResource(r domain.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.SiteName = s.siteNameLocked(r.SiteID)
	s.resources = append(s.resources, r)
}

func (s *Store) siteNameLocked(id int64) string {
	for _, site := range s.sites {
		if site.ID == id {
			return site.Name
		}
	}
	return ""
}

func (s *Store) Sites() []domain.Site {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Site, 0, len(s.sites))
	for _, site := range s.sites {
		if site.Active {
			out = append(out, site)
		}
	}
	return out
}

// Books returns available books; q matches title, author or ISBN case
// insensitively.
func (s *Store) Books(q string, siteID int64, category string) []domain.Book {
	q = strings.ToLower(strings.TrimSpace(q))
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Book, 0)
	for _, b := range s.books {
		if !b.Available {
			continue
		}
		if siteID > 0 && b.SiteID != siteID {
			continue
		}
		if category != "" && b.Category != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(b.Title), q) &&
			!strings.Contains(strings.ToLower(b.Author), q) &&
			!strings.Contains(strings.ToLower(b.ISBN), q) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func (s *Store) Resources(kind domain.ResourceKind, siteID int64) []domain.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Resource, 0)
	for _, r := range s.resources {
		if !r.Available {
			continue
		}
		if siteID > 0 && r.SiteID != siteID {
			continue
		}
		if kind != "" && r.Kind != kind {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *Store) bookLocked(id int64) (domain.Book, bool) {
	for _, b := range s.books {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Book{}, false
}

func (s *Store) resourceLocked(id int64) (domain.Resource, bool) {
	for _, r := range s.resources {
		if r.ID == id {
			return r, true
		}
	}
	return domain.Resource{}, false
}

/* ---------- AVAILABILITY ---------- */

// UnavailableDates lists the days of month on which every copy of the book
// is taken.
func (s *Store) UnavailableDates(bookID int64, month domain.YearMonth) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	book, ok := s.bookLocked(bookID)
	if !ok {
		return nil, fail(404, "Libro no encontrado")
	}

	first := domain.NewDate(month.Year, month.Month, 1)
	out := make([]string, 0)
	for d := first; d.YearMonth() == month; d = d.AddDays(1) {
		if s.copiesInUseLocked(bookID, d) >= book.StockTotal {
			out = append(out, d.String())
		}
	}
	return out, nil
}

// OccupiedSlots lists the start times ("HH:MM") taken on date.
func (s *Store) OccupiedSlots(resourceID int64, date domain.Date) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0)
	for _, r := range s.reservations {
		if r.ResourceID == resourceID && r.holdsSlot() && domain.DateOf(r.Start) == date {
			out = append(out, r.Start.Format("15:04"))
		}
	}
	sort.Strings(out)
	return out
}

func (s *Store) copiesInUseLocked(bookID int64, d domain.Date) int {
	n := 0
	for _, r := range s.reservations {
		if r.BookID == bookID && r.holdsBook() && r.coversDay(d) {
			n++
		}
	}
	return n
}

/* ---------- RESERVATIONS ---------- */

// CreateReservation applies the portal's booking rules for dni and returns
// the QR token and human code of the new reservation.
func (s *Store) CreateReservation(dni string, req domain.ReservationRequest) (*domain.Confirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock()
	u, ok := s.users[dni]
	if !ok {
		return nil, fail(401, "Could not validate credentials")
	}
	if u.banned(now) {
		return nil, fail(403, fmt.Sprintf("Cuenta suspendida hasta %s", u.BannedUntil.Format("2006-01-02 15:04")))
	}

	start := req.StartsAt.In(s.loc)
	end := req.EndsAt.In(s.loc)
	r := &reservation{
		DNI:        dni,
		Kind:       req.Kind,
		ReservedAt: req.ReservedAt.In(s.loc),
		Start:      start,
		End:        end,
		Status:     StatusPending,
	}

	var item string
	switch req.Kind {
	case domain.TargetRoom:
		if req.ResourceID == nil {
			return nil, fail(400, "Falta recurso_id")
		}
		res, ok := s.resourceLocked(*req.ResourceID)
		if !ok {
			return nil, fail(404, "Recurso no encontrado")
		}
		if err := s.checkRoomLocked(dni, res.ID, start); err != nil {
			return nil, err
		}
		r.ResourceID = res.ID
		item = res.Name

	case domain.TargetBook:
		if req.BookID == nil {
			return nil, fail(400, "Falta libro_id")
		}
		book, ok := s.bookLocked(*req.BookID)
		if !ok {
			return nil, fail(404, "Libro no encontrado")
		}
		if err := s.checkLoanLocked(dni, book, start, end); err != nil {
			return nil, err
		}
		r.BookID = book.ID
		item = book.Title

	default:
		return nil, fail(422, "tipo inválido")
	}

	s.nextID++
	r.ID = s.nextID
	r.QRToken = uuid.NewString()
	r.Code = humanCode(req.Kind)
	s.reservations = append(s.reservations, r)

	s.logger.Info("reservation confirmed",
		"code", r.Code, "dni", dni, "kind", r.Kind, "item", item,
		"start", r.Start.Format(time.DateTime), "end", r.End.Format(time.DateTime))
	return &domain.Confirmation{Message: "Ok", QRToken: r.QRToken, Code: r.Code}, nil
}

func (s *Store) checkRoomLocked(dni string, resourceID int64, start time.Time) error {
	day := domain.DateOf(start)
	mine := 0
	for _, r := range s.reservations {
		if !r.holdsSlot() {
			continue
		}
		if r.ResourceID == resourceID && r.Start.Equal(start) {
			return fail(400, "Horario reservado.")
		}
		if r.DNI == dni && domain.DateOf(r.Start) == day {
			mine++
		}
	}
	if mine >= 1 {
		return fail(400, "Límite: 1 turno por día.")
	}
	return nil
}

func (s *Store) checkLoanLocked(dni string, book domain.Book, start, end time.Time) error {
	span := domain.NewDateRange(domain.DateOf(start), domain.DateOf(end))
	if span.DayCount() > maxLoanDays {
		return fail(400, "Máximo 5 días.")
	}
	for _, d := range span.Days() {
		if s.copiesInUseLocked(book.ID, d) >= book.StockTotal {
			return fail(400, fmt.Sprintf("No hay stock para el día %s", d))
		}
	}

	loans := 0
	for _, r := range s.reservations {
		if r.DNI == dni && r.holdsBook() {
			loans++
		}
	}
	if loans >= maxActiveLoans {
		return fail(400, "Límite excedido: Máx 2 préstamos.")
	}
	return nil
}

// humanCode is the two letter kind prefix plus six hex digits, e.g. SA-1F3A9C.
func humanCode(kind domain.TargetKind) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return string(kind)[:2] + "-" + strings.ToUpper(hex[:6])
}

/* ---------- ENTRY ---------- */

// ValidateEntry looks the reservation up by QR token or human code. The first
// validation checks the holder in; the second checks them out.
func (s *Store) ValidateEntry(token string) (*domain.EntryValidation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var r *reservation
	for _, cand := range s.reservations {
		if cand.QRToken == token || cand.Code == token {
			r = cand
			break
		}
	}
	if r == nil {
		return nil, fail(404, "Reserva no encontrada o código inválido.")
	}

	now := s.clock()
	holder := domain.EntryUser{DNI: r.DNI}
	if u, ok := s.users[r.DNI]; ok {
		holder.Name = u.Name
	}

	switch r.Status {
	case StatusPending:
		if now.Before(r.Start.Add(-checkInEarly)) {
			return nil, fail(400, fmt.Sprintf("Aún no inicia tu reserva. Faltan %s.", remaining(r.Start.Sub(now))))
		}
		if r.Kind == domain.TargetRoom && now.After(r.Start.Add(roomTolerance)) {
			r.Status = StatusNoShow
			s.strikeLocked(r.DNI, now)
			return nil, fail(400, "Tolerancia de 20 min excedida. Se aplicó Strike y se canceló el turno.")
		}

		r.Status = StatusHandedOut
		if r.Kind == domain.TargetRoom {
			r.Status = StatusInUse
		}
		r.CheckInAt = now
		return &domain.EntryValidation{
			Status:  "CHECK-IN EXITOSO",
			Message: fmt.Sprintf("Entrada registrada a las %s.", now.Format("15:04")),
			User:    holder,
		}, nil

	case StatusInUse, StatusHandedOut:
		r.Status = StatusFinished
		r.CheckOutAt = now
		msg := "Salida registrada."
		if now.After(r.End) {
			s.strikeLocked(r.DNI, now)
			msg += fmt.Sprintf(" ENTREGA TARDÍA (+%s). Se aplicó 1 Strike.", late(now.Sub(r.End)))
		}
		return &domain.EntryValidation{Status: "CHECK-OUT REGISTRADO", Message: msg, User: holder}, nil
	}

	return nil, fail(400, fmt.Sprintf("La reserva ya finalizó o fue cancelada (Estado: %s).", r.Status))
}

func (s *Store) strikeLocked(dni string, now time.Time) {
	u, ok := s.users[dni]
	if !ok {
		return
	}
	u.Strikes++
	if u.Strikes >= strikesToBan {
		u.BannedUntil = now.Add(banDuration)
	}
	s.logger.Warn("strike applied", "dni", dni, "strikes", u.Strikes, "banned_until", u.BannedUntil)
}

// Strikes reports the strike count of dni.
func (s *Store) Strikes(dni string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[dni]; ok {
		return u.Strikes
	}
	return 0
}

func remaining(d time.Duration) string {
	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	txt := fmt.Sprintf("%dh %dm", int(d/time.Hour), int(d%time.Hour/time.Minute))
	if days > 0 {
		return fmt.Sprintf("%d días, %s", days, txt)
	}
	return txt
}

func late(d time.Duration) string {
	if days := int(d / (24 * time.Hour)); days > 0 {
		return fmt.Sprintf("%d días", days)
	}
	return fmt.Sprintf("%d horas", int(d/time.Hour))
}
