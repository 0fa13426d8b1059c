package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"libportal/internal/domain"
	"libportal/internal/modules/admin"
	"libportal/internal/modules/auth"
	"libportal/internal/modules/booking"
	"libportal/internal/modules/catalog"
	"libportal/internal/modules/scanner"
)

var errUsage = errors.New("usage error")

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		a.auth.Logout(ctx)
		fmt.Fprintln(a.out, "logged out")
		return nil
	case "whoami":
		return a.whoami()
	case "forgot", "verify", "reset":
		return a.recovery(ctx, cmd, args)
	case "sites":
		return a.sites(ctx)
	case "books":
		return a.books(ctx, args)
	case "resources":
		return a.resources(ctx, args)
	case "reserve-book":
		return a.reserveBook(ctx, args)
	case "reserve-room":
		return a.reserveRoom(ctx, args)
	case "validate":
		return a.validate(ctx, args)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func parse(fs *flag.FlagSet, args []string) error {
	fs.SetOutput(new(strings.Builder))
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", errUsage, err)
	}
	return nil
}

/* ---------- SESSION ---------- */

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	dni := fs.String("dni", "", "DNI")
	password := fs.String("password", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}

	a.auth.OpenAuthModal(auth.ViewLogin)
	out, err := a.submitDialog(ctx, map[auth.Field]string{
		auth.FieldDNI:      *dni,
		auth.FieldPassword: *password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "logged in as %s (%s)\n", out.Identity.Subject, out.Identity.Role)
	if out.Route != "" {
		fmt.Fprintf(a.out, "staff dashboard: %s\n", out.Route)
	}
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	dni := fs.String("dni", "", "DNI (8 digits)")
	email := fs.String("email", "", "email")
	password := fs.String("password", "", "password")
	if err := parse(fs, args); err != nil {
		return err
	}

	a.auth.OpenAuthModal(auth.ViewRegister)
	out, err := a.submitDialog(ctx, map[auth.Field]string{
		auth.FieldDNI:      *dni,
		auth.FieldEmail:    *email,
		auth.FieldPassword: *password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "account created, logged in as %s\n", out.Identity.Subject)
	return nil
}

// recovery walks the three recovery steps; each command is one step.
func (a *app) recovery(ctx context.Context, step string, args []string) error {
	fs := flag.NewFlagSet(step, flag.ContinueOnError)
	dni := fs.String("dni", "", "DNI")
	email := fs.String("email", "", "email")
	code := fs.String("code", "", "six digit code")
	password := fs.String("password", "", "new password")
	if err := parse(fs, args); err != nil {
		return err
	}

	values := map[auth.Field]string{auth.FieldDNI: *dni, auth.FieldEmail: *email}
	view := auth.ViewForgot
	switch step {
	case "verify":
		view = auth.ViewVerify
		values[auth.FieldCode] = *code
	case "reset":
		view = auth.ViewReset
		values[auth.FieldCode] = *code
		values[auth.FieldNewPassword] = *password
	}

	a.auth.OpenAuthModal(view)
	d := auth.NewDialog(a.auth)
	for f, v := range values {
		d.Set(f, v)
	}
	if !d.CanSubmit() {
		return a.incomplete(d)
	}
	if _, err := d.Submit(ctx); err != nil {
		return err
	}
	switch {
	case d.Notice() != "":
		fmt.Fprintln(a.out, d.Notice())
	case step == "verify":
		fmt.Fprintln(a.out, "code accepted, choose a new password with: portal reset")
	}
	return nil
}

func (a *app) submitDialog(ctx context.Context, values map[auth.Field]string) (auth.Outcome, error) {
	d := auth.NewDialog(a.auth)
	for f, v := range values {
		d.Set(f, v)
	}
	if !d.CanSubmit() {
		return auth.Outcome{}, a.incomplete(d)
	}
	return d.Submit(ctx)
}

func (a *app) incomplete(d *auth.Dialog) error {
	if c := d.PasswordRequirements(); c != nil && !c.Valid() {
		var missing []string
		if !c.Length {
			missing = append(missing, "at least 8 characters")
		}
		if !c.Uppercase {
			missing = append(missing, "an uppercase letter")
		}
		if !c.Digit {
			missing = append(missing, "a digit")
		}
		if !c.Symbol {
			missing = append(missing, "a symbol")
		}
		return fmt.Errorf("%w: password needs %s", errUsage, strings.Join(missing, ", "))
	}
	return fmt.Errorf("%w: missing or malformed fields", errUsage)
}

func (a *app) whoami() error {
	id := a.auth.Identity()
	if id == nil {
		fmt.Fprintln(a.out, "not logged in")
		return nil
	}
	fmt.Fprintf(a.out, "%s (%s)\n", id.Subject, id.Role)
	return nil
}

/* ---------- CATALOG ---------- */

func (a *app) sites(ctx context.Context) error {
	sites, err := a.catalog.ListSites(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCODE\tNAME\tADDRESS")
	for _, s := range sites {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Code, s.Name, s.Address)
	}
	return w.Flush()
}

func (a *app) books(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("books", flag.ContinueOnError)
	q := fs.String("q", "", "title, author or ISBN")
	site := fs.Int64("site", 0, "site id")
	category := fs.String("category", "", "category")
	if err := parse(fs, args); err != nil {
		return err
	}

	books, err := a.catalog.SearchBooks(ctx, catalog.BookFilter{Query: *q, SiteID: *site, Category: *category})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tCATEGORY\tSITE\tSTOCK")
	for _, b := range books {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\n", b.ID, b.Title, b.Author, b.Category, b.SiteName, b.StockTotal)
	}
	return w.Flush()
}

func (a *app) resources(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("resources", flag.ContinueOnError)
	kind := fs.String("kind", "", "SALA or EQUIPO")
	site := fs.Int64("site", 0, "site id")
	if err := parse(fs, args); err != nil {
		return err
	}

	items, err := a.catalog.ListResources(ctx, catalog.ResourceFilter{Kind: domain.ResourceKind(strings.ToUpper(*kind)), SiteID: *site})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tKIND\tSITE\tCAPACITY")
	for _, r := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", r.ID, r.Name, r.Kind, r.SiteName, r.Capacity)
	}
	return w.Flush()
}

/* ---------- RESERVATIONS ---------- */

func (a *app) reserveBook(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reserve-book", flag.ContinueOnError)
	id := fs.Int64("id", 0, "book id")
	from := fs.String("from", "", "first day YYYY-MM-DD")
	to := fs.String("to", "", "last day YYYY-MM-DD")
	dni := fs.String("dni", "", "log in with this DNI if needed")
	password := fs.String("password", "", "password for -dni")
	if err := parse(fs, args); err != nil {
		return err
	}

	start, err := domain.ParseDate(*from)
	if err != nil {
		return fmt.Errorf("%w: -from: %s", errUsage, err)
	}
	end, err := domain.ParseDate(*to)
	if err != nil {
		return fmt.Errorf("%w: -to: %s", errUsage, err)
	}

	books, err := a.catalog.SearchBooks(ctx, catalog.BookFilter{})
	if err != nil {
		return err
	}
	var target *domain.Target
	for _, b := range books {
		if b.ID == *id {
			t := domain.BookTarget(b)
			target = &t
		}
	}
	if target == nil {
		return fmt.Errorf("book %d is not available", *id)
	}

	if err := a.engine.Open(*target); err != nil {
		return err
	}
	defer a.engine.Close()

	for _, month := range domain.NewDateRange(start, end).Months() {
		if err := a.engine.LoadMonthlyAvailability(ctx, month); err != nil {
			return err
		}
	}
	if err := a.engine.SelectDateRange(start, end); err != nil {
		return err
	}
	return a.submit(ctx, *dni, *password)
}

func (a *app) reserveRoom(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reserve-room", flag.ContinueOnError)
	id := fs.Int64("id", 0, "room or equipment id")
	date := fs.String("date", "", "day YYYY-MM-DD")
	slot := fs.String("slot", "", "slot start HH:MM")
	dni := fs.String("dni", "", "log in with this DNI if needed")
	password := fs.String("password", "", "password for -dni")
	if err := parse(fs, args); err != nil {
		return err
	}

	day, err := domain.ParseDate(*date)
	if err != nil {
		return fmt.Errorf("%w: -date: %s", errUsage, err)
	}

	items, err := a.catalog.ListResources(ctx, catalog.ResourceFilter{})
	if err != nil {
		return err
	}
	var target *domain.Target
	for _, r := range items {
		if r.ID == *id {
			t := domain.ResourceTarget(r)
			target = &t
		}
	}
	if target == nil {
		return fmt.Errorf("resource %d is not available", *id)
	}

	if err := a.engine.Open(*target); err != nil {
		return err
	}
	defer a.engine.Close()

	if err := a.engine.SelectDate(day); err != nil {
		return err
	}
	if err := a.engine.LoadDailyOccupancy(ctx); err != nil {
		return err
	}
	if !a.engine.SelectSlot(*slot) {
		return fmt.Errorf("slot %q is taken or does not exist; free slots: %s", *slot, freeSlots(a.engine.View()))
	}
	return a.submit(ctx, *dni, *password)
}

// submit sends the open draft. Without a session the engine opens the login
// dialog; with -dni it is filled in here and the reservation resumes on its
// own once the login lands.
func (a *app) submit(ctx context.Context, dni, password string) error {
	err := a.engine.Submit(ctx)
	if errors.Is(err, booking.ErrLoginRequired) {
		if dni == "" {
			return fmt.Errorf("log in first (portal login) or pass -dni and -password")
		}
		if _, err := a.submitDialog(ctx, map[auth.Field]string{
			auth.FieldDNI:      dni,
			auth.FieldPassword: password,
		}); err != nil {
			return err
		}
		err = nil
	}
	if err != nil {
		return err
	}

	v := a.engine.View()
	if v.Step != booking.StepConfirmed || v.Result == nil {
		if v.Error != "" {
			return errors.New(v.Error)
		}
		return fmt.Errorf("reservation was not confirmed")
	}
	fmt.Fprintf(a.out, "reservation confirmed: %s\nqr token: %s\n", v.Result.Code, v.Result.QRToken)
	return nil
}

func freeSlots(v booking.View) string {
	d, ok := v.Draft.(*booking.RoomDraft)
	if !ok {
		return ""
	}
	var free []string
	for _, s := range domain.DailySlots {
		if !d.IsOccupied(s.ID()) {
			free = append(free, s.ID())
		}
	}
	if len(free) == 0 {
		return "none"
	}
	return strings.Join(free, ", ")
}

/* ---------- STAFF ---------- */

func (a *app) validate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	code := fs.String("code", "", "QR token or reservation code")
	scannerURL := fs.String("scanner", "", "scanner bridge ws:// URL, overrides PORTAL_SCANNER_URL")
	if err := parse(fs, args); err != nil {
		return err
	}

	station := a.station
	if *scannerURL != "" {
		station = admin.NewStation(a.desk, scanner.DialOpener(*scannerURL, a.logger))
	}

	var (
		res *domain.EntryValidation
		err error
	)
	if *code != "" {
		res, err = station.Validate(ctx, *code)
	} else {
		fmt.Fprintln(a.out, "waiting for a scan...")
		res, err = station.ScanAndValidate(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s\n%s\n%s (%s)\n", res.Status, res.Message, res.User.Name, res.User.DNI)
	return nil
}
