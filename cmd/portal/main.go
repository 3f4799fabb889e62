// cmd/portal/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/jaswanth12321/carequo-insure-tech/internal/apiclient"
	"github.com/jaswanth12321/carequo-insure-tech/internal/apperr"
	"github.com/jaswanth12321/carequo-insure-tech/internal/claims"
	"github.com/jaswanth12321/carequo-insure-tech/internal/config"
	"github.com/jaswanth12321/carequo-insure-tech/internal/directory"
	"github.com/jaswanth12321/carequo-insure-tech/internal/guard"
	"github.com/jaswanth12321/carequo-insure-tech/internal/ledger"
	"github.com/jaswanth12321/carequo-insure-tech/internal/logger"
	"github.com/jaswanth12321/carequo-insure-tech/internal/models"
	"github.com/jaswanth12321/carequo-insure-tech/internal/portal"
	"github.com/jaswanth12321/carequo-insure-tech/internal/session"
)

const usage = `usage: portal <command> [flags]

commands:
  login         -email -password [-totp]
  register      -name -email -password -role [-company]
  logout
  whoami
  open <view>   [-status all|submitted|under_review|approved|rejected]
                views: dashboard employees claims financials wellness employee_home
  submit-claim  -type -amount -description [-docs key1,key2]
  review-claim  -id -status -notes
  record-tx     -type -amount [-description] [-ref]
  book          -partner -date YYYY-MM-DD -time HH:MM [-notes]
`

// stderrNotifier prints transient messages next to the command output.
type stderrNotifier struct {
	w        io.Writer
	reported bool
}

func (n *stderrNotifier) Success(msg string) { fmt.Fprintln(n.w, "ok:", msg) }

func (n *stderrNotifier) Failure(msg string) {
	n.reported = true
	fmt.Fprintln(n.w, "error:", msg)
}

type app struct {
	cfg      config.Portal
	log      *zap.Logger
	client   *apiclient.Client
	holder   *session.Holder
	notifier session.Notifier
	out      io.Writer
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.LoadPortal()
	log, err := logger.New(false, cfg.Debug)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	client := apiclient.New(cfg.APIURL, cfg.Timeout, log)
	notifier := &stderrNotifier{w: os.Stderr}
	a := &app{
		cfg:      cfg,
		log:      log,
		client:   client,
		holder:   session.NewHolder(session.NewFileStore(cfg.SessionFile), client, notifier, log),
		notifier: notifier,
		out:      os.Stdout,
	}

	if err := a.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		if !notifier.reported {
			fmt.Fprintln(os.Stderr, "error:", apperr.Detail(err))
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return a.login(ctx, args)
	case "register":
		return a.register(ctx, args)
	case "logout":
		_, err := a.holder.Logout()
		return err
	case "whoami":
		return a.whoami(ctx)
	case "open":
		return a.open(ctx, args)
	case "submit-claim":
		return a.submitClaim(ctx, args)
	case "review-claim":
		return a.reviewClaim(ctx, args)
	case "record-tx":
		return a.recordTx(ctx, args)
	case "book":
		return a.book(ctx, args)
	case "help", "-h", "--help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q\n%s", cmd, usage)
}

// =========================
// SESSION
// =========================

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	totp := fs.String("totp", "", "one-time code, if enabled")
	if err := fs.Parse(args); err != nil {
		return err
	}
	s, err := a.holder.Login(ctx, *email, *password, *totp)
	if err != nil {
		return err
	}
	a.greet(s)
	return nil
}

func (a *app) register(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	in := apiclient.RegisterRequest{}
	fs.StringVar(&in.Name, "name", "", "full name")
	fs.StringVar(&in.Email, "email", "", "account email")
	fs.StringVar(&in.Password, "password", "", "account password")
	fs.StringVar(&in.Role, "role", string(models.RoleEmployee), "super_admin|company_admin|hr_manager|employee")
	company := fs.String("company", "", "company id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *company != "" {
		in.CompanyID = company
	}
	s, err := a.holder.Register(ctx, in)
	if err != nil {
		return err
	}
	a.greet(s)
	return nil
}

func (a *app) whoami(ctx context.Context) error {
	s, err := a.holder.Restore(ctx)
	if err != nil {
		return err
	}
	if !s.Authenticated() {
		fmt.Fprintln(a.out, "not logged in")
		return nil
	}
	return a.print(s.Principal)
}

func (a *app) greet(s session.Session) {
	fmt.Fprintf(a.out, "logged in as %s (%s), home: %s\n", s.Principal.Name, s.Role(), guard.Home(s))
}

// =========================
// VIEWS AND ACTIONS
// =========================

// navigator restores the session once and binds the client to it.
func (a *app) navigator(ctx context.Context) (*portal.Navigator, session.Session, error) {
	s, err := a.holder.Restore(ctx)
	if err != nil {
		return nil, session.Anonymous, err
	}
	if !s.Authenticated() {
		return nil, s, apperr.Auth("not logged in, run: portal login")
	}
	return portal.NewNavigator(s, a.client.As(s), a.holder, a.notifier, a.log), s, nil
}

func (a *app) open(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return apperr.Validation("open needs a view")
	}
	view := guard.View(args[0])
	if !guard.Known(view) {
		return apperr.Validation("unknown view %q", args[0])
	}
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	status := fs.String("status", claims.FilterAll, "claims filter")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	// the persisted role answers the guard without a round trip
	if d := guard.Enter(view, a.holder.Peek()); !d.Allow {
		a.log.Debug("guard redirect", zap.String("view", string(view)), zap.String("target", string(d.Target)))
		if d.Target == guard.Landing {
			return apperr.Auth("not logged in, run: portal login")
		}
		view = d.Target
	}

	nav, _, err := a.navigator(ctx)
	if err != nil {
		return err
	}
	var page portal.Page
	if view == guard.Claims {
		page, err = nav.FilterClaims(ctx, *status)
	} else {
		page, err = nav.Navigate(ctx, view)
	}
	if err != nil {
		return err
	}
	return a.render(page)
}

func (a *app) submitClaim(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("submit-claim", flag.ContinueOnError)
	typ := fs.String("type", string(models.ClaimMedical), "medical|dental|vision|wellness")
	amount := fs.String("amount", "", "claimed amount")
	desc := fs.String("description", "", "what the claim is for")
	docs := fs.String("docs", "", "comma separated document keys")
	if err := fs.Parse(args); err != nil {
		return err
	}
	amt, err := parseAmount(*amount)
	if err != nil {
		return err
	}
	nav, s, err := a.navigator(ctx)
	if err != nil {
		return err
	}
	if _, err := nav.Navigate(ctx, guard.Home(s)); err != nil {
		return err
	}
	page, err := nav.SubmitClaim(ctx, claims.SubmitInput{
		ClaimType:   models.ClaimType(*typ),
		Amount:      amt,
		Description: *desc,
		Documents:   splitList(*docs),
	})
	if err != nil {
		return err
	}
	return a.render(page)
}

func (a *app) reviewClaim(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("review-claim", flag.ContinueOnError)
	id := fs.String("id", "", "claim id")
	status := fs.String("status", "", "under_review|approved|rejected")
	notes := fs.String("notes", "", "reviewer notes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	nav, _, err := a.navigator(ctx)
	if err != nil {
		return err
	}
	if _, err := nav.Navigate(ctx, guard.Claims); err != nil {
		return err
	}
	page, err := nav.ReviewClaim(ctx, *id, claims.ReviewInput{Status: models.ClaimStatus(*status), ReviewerNotes: *notes})
	if errors.Is(err, apperr.ErrInvalidState) {
		// show the refreshed list so the user sees who got there first
		_ = a.render(page)
	}
	if err != nil {
		return err
	}
	return a.render(page)
}

func (a *app) recordTx(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("record-tx", flag.ContinueOnError)
	typ := fs.String("type", string(models.TxPremiumPayment), "premium_payment|claim_payout")
	amount := fs.String("amount", "", "transaction amount")
	desc := fs.String("description", "", "description")
	ref := fs.String("ref", "", "reference id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	amt, err := parseAmount(*amount)
	if err != nil {
		return err
	}
	in := ledger.TransactionInput{TransactionType: models.TransactionType(*typ), Amount: amt, Description: *desc}
	if *ref != "" {
		in.ReferenceID = ref
	}
	nav, _, err := a.navigator(ctx)
	if err != nil {
		return err
	}
	if _, err := nav.Navigate(ctx, guard.Financials); err != nil {
		return err
	}
	page, err := nav.RecordTransaction(ctx, in)
	if err != nil {
		return err
	}
	return a.render(page)
}

func (a *app) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	in := directory.BookingInput{}
	fs.StringVar(&in.PartnerID, "partner", "", "wellness partner id")
	fs.StringVar(&in.BookingDate, "date", "", "YYYY-MM-DD")
	fs.StringVar(&in.BookingTime, "time", "", "HH:MM")
	fs.StringVar(&in.Notes, "notes", "", "notes for the partner")
	if err := fs.Parse(args); err != nil {
		return err
	}
	nav, s, err := a.navigator(ctx)
	if err != nil {
		return err
	}
	if _, err := nav.Navigate(ctx, guard.Home(s)); err != nil {
		return err
	}
	page, err := nav.BookPartner(ctx, in)
	if err != nil {
		return err
	}
	return a.render(page)
}

// =========================
// OUTPUT
// =========================

func (a *app) render(p portal.Page) error {
	for section, err := range p.Failed {
		fmt.Fprintf(os.Stderr, "warning: %s unavailable: %s\n", section, apperr.Detail(err))
	}
	return a.print(p)
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, apperr.Validation("invalid amount %q", raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
