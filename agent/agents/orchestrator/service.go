package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/google/uuid"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	matchx "github.com/fieldline/sales-copilot/agent/match"
	nodex "github.com/fieldline/sales-copilot/agent/nodes"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

var (
	ErrInvalidMessage    = nodex.ErrInvalidMessage
	ErrInvalidSession    = nodex.ErrInvalidSession
	ErrSessionNotStarted = nodex.ErrSessionNotStarted
	ErrDayEnded          = statex.ErrDayEnded
	ErrNoCurrentRetailer = errors.New("no retailer is selected")
)

// Deps are the orchestrator's collaborators. Store, Routes, Catalog, Orders,
// Metrics, and Models are required; Notifier may be nil.
type Deps struct {
	Store    statex.Store
	Routes   contractx.RoutePlanner
	Catalog  contractx.RetailerCatalog
	Orders   contractx.OrderLog
	Metrics  contractx.MetricsSource
	Models   contractx.Registry
	Notifier contractx.Notifier
}

type Option func(*Orchestrator)

func WithNow(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

func WithVisitIDFunc(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newVisitID = fn
		}
	}
}

func WithMatcherOptions(opts ...matchx.Option) Option {
	return func(o *Orchestrator) {
		o.matcherOpts = opts
	}
}

// Orchestrator runs the daily field-sales conversation. One instance serves
// many sessions; per-session state lives in the store.
type Orchestrator struct {
	store    statex.Store
	routes   contractx.RoutePlanner
	catalog  contractx.RetailerCatalog
	orders   contractx.OrderLog
	metrics  contractx.MetricsSource
	models   contractx.Registry
	notifier contractx.Notifier

	matcher     *matchx.Matcher
	matcherOpts []matchx.Option

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now        func() time.Time
	newVisitID func() string
}

func New(deps Deps, opts ...Option) (*Orchestrator, error) {
	if deps.Store == nil {
		return nil, errors.New("state store is required")
	}
	if deps.Routes == nil {
		return nil, errors.New("route planner is required")
	}
	if deps.Catalog == nil {
		return nil, errors.New("retailer catalog is required")
	}
	if deps.Orders == nil {
		return nil, errors.New("order log is required")
	}
	if deps.Metrics == nil {
		return nil, errors.New("metrics source is required")
	}
	if deps.Models == nil {
		return nil, errors.New("model registry is required")
	}

	o := &Orchestrator{
		store:      deps.Store,
		routes:     deps.Routes,
		catalog:    deps.Catalog,
		orders:     deps.Orders,
		metrics:    deps.Metrics,
		models:     deps.Models,
		notifier:   deps.Notifier,
		now:        time.Now,
		newVisitID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	o.matcher = matchx.New(o.models.Selector(), o.matcherOpts...)

	graphRunner, err := o.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	o.graphRunner = graphRunner

	return o, nil
}

// StartDay creates the session, loads the rep's beat and route, and returns
// the opening message. Must run once before HandleMessage.
func (o *Orchestrator) StartDay(ctx context.Context, sessionID, repID, weekday string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", ErrInvalidSession
	}
	repID = strings.TrimSpace(repID)
	if repID == "" {
		return "", fmt.Errorf("%w: rep id is empty", contractx.ErrValidation)
	}
	weekday = strings.TrimSpace(weekday)
	if weekday == "" {
		return "", fmt.Errorf("%w: weekday is empty", contractx.ErrValidation)
	}

	now := o.now().UTC()
	st := statex.NewSessionState(sessionID, repID, weekday, now)

	notice := nodex.PrimeRoute(ctx, st, o.routes)

	st.Touch(now)
	if err := st.Validate(); err != nil {
		return "", err
	}
	if err := o.store.Save(ctx, st); err != nil {
		return "", fmt.Errorf("save session %s: %w", sessionID, err)
	}

	if notice != "" {
		return notice, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Good day! Assigned Beat: %s (ID: %s) for %s.\n\nToday's route:\n", st.Beat.Name, st.Beat.ID, weekday)
	for _, line := range matchx.CandidateLines(st.Route) {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\nSay 'visit <number>', 'show my plan', or 'day summary'.")
	return b.String(), nil
}

// HandleMessage runs one conversational turn. Done reports that the day has
// ended and no further turns are expected.
func (o *Orchestrator) HandleMessage(ctx context.Context, sessionID, text string) (reply string, done bool, err error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		return "", false, err
	}
	return out.Reply, out.Done, nil
}

// SubmitOrder closes the current retailer visit with whatever is in the cart.
// An empty cart records the visit without an order.
func (o *Orchestrator) SubmitOrder(ctx context.Context, sessionID, feedback string) (reply string, done bool, err error) {
	out, err := o.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Submit:    true,
		Feedback:  feedback,
	})
	if err != nil {
		return "", false, err
	}
	return out.Reply, out.Done, nil
}

// AddCartLine stages one order line for the currently selected retailer.
// A zero unit price is resolved from the catalog. Lines for the same product
// merge by adding quantities.
func (o *Orchestrator) AddCartLine(ctx context.Context, sessionID string, line contractx.CartLine) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", ErrInvalidSession
	}
	if line.ProductID == "" {
		return "", fmt.Errorf("%w: product id is empty", contractx.ErrValidation)
	}
	if line.Quantity <= 0 {
		return "", fmt.Errorf("%w: quantity must be positive", contractx.ErrValidation)
	}

	st, err := o.store.Load(ctx, sessionID)
	if err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			return "", fmt.Errorf("%w: session=%s", ErrSessionNotStarted, sessionID)
		}
		return "", err
	}
	if st.DayEnded {
		return "", ErrDayEnded
	}
	if st.Current == nil || st.Phase != statex.PhasePitchReady {
		return "", ErrNoCurrentRetailer
	}

	if line.UnitPrice == 0 {
		price, err := o.catalog.ProductPrice(ctx, line.ProductID)
		if err != nil {
			return "", fmt.Errorf("resolve price for %s: %w", line.ProductID, err)
		}
		line.UnitPrice = price
	}
	if line.ProductName == "" {
		line.ProductName = productNameFromDetail(st.Current.Detail, line.ProductID)
	}

	merged := false
	for i := range st.Cart {
		if st.Cart[i].ProductID == line.ProductID {
			st.Cart[i].Quantity += line.Quantity
			st.Cart[i].UnitPrice = line.UnitPrice
			merged = true
			break
		}
	}
	if !merged {
		st.Cart = append(st.Cart, line)
	}

	st.Touch(o.now())
	if err := st.Validate(); err != nil {
		return "", err
	}
	if err := o.store.Save(ctx, st); err != nil {
		return "", fmt.Errorf("save session %s: %w", sessionID, err)
	}

	return fmt.Sprintf("Added %d x %s. Cart: %d line(s), total ₹%.2f.",
		line.Quantity, displayName(line), len(st.Cart), st.CartTotal()), nil
}

func productNameFromDetail(detail contractx.RetailerDetail, productID string) string {
	for _, rec := range detail.Recommendations {
		if rec.ProductID == productID {
			return rec.ProductName
		}
	}
	for _, stock := range detail.LastStock {
		if stock.ProductID == productID {
			return stock.ProductName
		}
	}
	return ""
}

func displayName(line contractx.CartLine) string {
	if line.ProductName != "" {
		return line.ProductName
	}
	return line.ProductID
}
