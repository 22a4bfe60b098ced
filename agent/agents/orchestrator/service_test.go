package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	matchx "github.com/fieldline/sales-copilot/agent/match"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

type fakeStore struct {
	states  map[string]*statex.SessionState
	loadErr error
	saveErr error
	saves   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{states: make(map[string]*statex.SessionState)}
}

func (f *fakeStore) Load(ctx context.Context, sessionID string) (*statex.SessionState, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	st, ok := f.states[sessionID]
	if !ok {
		return nil, statex.ErrStateNotFound
	}
	return cloneSessionState(st), nil
}

func (f *fakeStore) Save(ctx context.Context, st *statex.SessionState) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saves++
	f.states[st.SessionID] = cloneSessionState(st)
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, sessionID string) error {
	delete(f.states, sessionID)
	return nil
}

type fakeRoutes struct {
	beat    contractx.Beat
	beatErr error
	route   []contractx.RouteStop
	planErr error
}

func (f *fakeRoutes) AssignedBeat(ctx context.Context, repID, weekday string) (contractx.Beat, error) {
	if f.beatErr != nil {
		return contractx.Beat{}, f.beatErr
	}
	return f.beat, nil
}

func (f *fakeRoutes) RoutePlan(ctx context.Context, beatID string) ([]contractx.RouteStop, error) {
	if f.planErr != nil {
		return nil, f.planErr
	}
	return f.route, nil
}

type fakeCatalog struct {
	details   map[string]contractx.RetailerDetail
	detailErr error
	prices    map[string]float64
}

func (f *fakeCatalog) Detail(ctx context.Context, retailerID string) (contractx.RetailerDetail, error) {
	if f.detailErr != nil {
		return contractx.RetailerDetail{}, f.detailErr
	}
	detail, ok := f.details[retailerID]
	if !ok {
		return contractx.RetailerDetail{}, fmt.Errorf("%w: id=%s", contractx.ErrRetailerNotFound, retailerID)
	}
	return detail, nil
}

func (f *fakeCatalog) ProductPrice(ctx context.Context, productID string) (float64, error) {
	price, ok := f.prices[productID]
	if !ok {
		return 0, fmt.Errorf("product %s not found", productID)
	}
	return price, nil
}

type fakeOrders struct {
	logged []contractx.OrderRequest
	err    error
}

func (f *fakeOrders) LogOrder(ctx context.Context, req contractx.OrderRequest) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.logged = append(f.logged, req)
	return "INV_" + req.VisitID, nil
}

type fakeMetrics struct {
	metrics contractx.DayMetrics
	err     error
	calls   int
}

func (f *fakeMetrics) DayMetrics(ctx context.Context, repID string, date time.Time, weekday string) (contractx.DayMetrics, error) {
	f.calls++
	if f.err != nil {
		return contractx.DayMetrics{}, f.err
	}
	return f.metrics, nil
}

type fakeSelector struct {
	line  string
	err   error
	calls int
}

func (f *fakeSelector) SelectLine(ctx context.Context, userMessage string, candidates []string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.line, nil
}

type fakePitch struct {
	err error
}

func (f *fakePitch) WritePitch(ctx context.Context, detail contractx.RetailerDetail) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "Pitch for " + detail.Retailer.Name, nil
}

type fakeSummary struct {
	err error
}

func (f *fakeSummary) WriteSummary(ctx context.Context, repID string, date time.Time, metrics contractx.DayMetrics) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("Summary for %s: %d visits, revenue %.2f", repID, metrics.ActualVisits, metrics.Revenue), nil
}

type fakeRegistry struct {
	selector contractx.LineSelector
	pitch    contractx.PitchWriter
	summary  contractx.SummaryWriter
}

func (f *fakeRegistry) Selector() contractx.LineSelector { return f.selector }
func (f *fakeRegistry) Pitch() contractx.PitchWriter     { return f.pitch }
func (f *fakeRegistry) Summary() contractx.SummaryWriter { return f.summary }

type fakeNotifier struct {
	published []string
	err       error
}

func (f *fakeNotifier) PublishDayEnd(ctx context.Context, repID string, date time.Time, summary string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, repID)
	return nil
}

type testEnv struct {
	store    *fakeStore
	routes   *fakeRoutes
	catalog  *fakeCatalog
	orders   *fakeOrders
	metrics  *fakeMetrics
	selector *fakeSelector
	notifier *fakeNotifier
	copilot  *Orchestrator
}

func testRoute() []contractx.RouteStop {
	return []contractx.RouteStop{
		{RetailerID: "R1", Name: "Store A", City: "Pune", Channel: "GT", VisitSequence: 1},
		{RetailerID: "R2", Name: "Store B", City: "Pune", Channel: "MT", VisitSequence: 2},
	}
}

func testDetails() map[string]contractx.RetailerDetail {
	return map[string]contractx.RetailerDetail{
		"R1": {
			Retailer: contractx.RetailerInfo{ID: "R1", Name: "Store A", City: "Pune", Channel: "GT"},
			Recommendations: []contractx.ProductRec{
				{ProductID: "P1", ProductName: "Masala Chips", Score: 0.9},
			},
		},
		"R2": {
			Retailer: contractx.RetailerInfo{ID: "R2", Name: "Store B", City: "Pune", Channel: "MT"},
		},
	}
}

func newTestEnv(t *testing.T, mutate func(*testEnv)) *testEnv {
	t.Helper()

	env := &testEnv{
		store:   newFakeStore(),
		routes:  &fakeRoutes{beat: contractx.Beat{ID: "B1", Name: "Pune East"}, route: testRoute()},
		catalog: &fakeCatalog{details: testDetails(), prices: map[string]float64{"P1": 25}},
		orders:  &fakeOrders{},
		metrics: &fakeMetrics{metrics: contractx.DayMetrics{
			PlannedVisits: 2,
			ActualVisits:  2,
			OrderCount:    1,
			Revenue:       500,
			TopProducts:   []string{"Masala Chips (20)"},
		}},
		selector: &fakeSelector{line: "no match"},
		notifier: &fakeNotifier{},
	}
	if mutate != nil {
		mutate(env)
	}

	visitSeq := 0
	copilot, err := New(Deps{
		Store:    env.store,
		Routes:   env.routes,
		Catalog:  env.catalog,
		Orders:   env.orders,
		Metrics:  env.metrics,
		Models:   &fakeRegistry{selector: env.selector, pitch: &fakePitch{}, summary: &fakeSummary{}},
		Notifier: env.notifier,
	},
		WithNow(func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) }),
		WithVisitIDFunc(func() string {
			visitSeq++
			return fmt.Sprintf("V%03d", visitSeq)
		}),
		WithMatcherOptions(matchx.WithMaxAttempts(2)),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	env.copilot = copilot
	return env
}

func (e *testEnv) mustStartDay(t *testing.T) string {
	t.Helper()
	greeting, err := e.copilot.StartDay(context.Background(), "s1", "SR001", "Thursday")
	if err != nil {
		t.Fatalf("StartDay() error = %v", err)
	}
	return greeting
}

func (e *testEnv) saved(t *testing.T) *statex.SessionState {
	t.Helper()
	st, ok := e.store.states["s1"]
	if !ok {
		t.Fatal("no saved session")
	}
	return st
}

func TestStartDayGreetsWithRoute(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	greeting := env.mustStartDay(t)

	if !strings.Contains(greeting, "Assigned Beat: Pune East (ID: B1)") {
		t.Fatalf("greeting missing beat: %q", greeting)
	}
	if !strings.Contains(greeting, "1. Store A (ID: R1)") || !strings.Contains(greeting, "2. Store B (ID: R2)") {
		t.Fatalf("greeting missing route: %q", greeting)
	}

	st := env.saved(t)
	if st.Phase != statex.PhaseRouteReady {
		t.Fatalf("expected route_ready, got %s", st.Phase)
	}
	if len(st.Route) != 2 {
		t.Fatalf("expected 2 stops saved, got %d", len(st.Route))
	}
}

func TestStartDayNoBeatAssigned(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(e *testEnv) {
		e.routes.beatErr = contractx.ErrNoRouteFound
	})
	greeting := env.mustStartDay(t)

	if !strings.Contains(greeting, "No beats found for SR001 on Thursday.") {
		t.Fatalf("unexpected greeting: %q", greeting)
	}

	// The session exists so a later turn can retry the fetch.
	st := env.saved(t)
	if len(st.Route) != 0 {
		t.Fatalf("expected empty route, got %d stops", len(st.Route))
	}
}

func TestHandleMessageRequiresStartedSession(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)

	_, _, err := env.copilot.HandleMessage(context.Background(), "unknown", "hello")
	if !errors.Is(err, ErrSessionNotStarted) {
		t.Fatalf("expected ErrSessionNotStarted, got %v", err)
	}
}

func TestHandleMessageInvalidInput(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.mustStartDay(t)

	if _, _, err := env.copilot.HandleMessage(context.Background(), "  ", "hello"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
	if _, _, err := env.copilot.HandleMessage(context.Background(), "s1", "   "); !errors.Is(err, ErrInvalidMessage) {
		t.Fatalf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestVisitBySequencePresentsPitch(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.mustStartDay(t)

	reply, done, err := env.copilot.HandleMessage(context.Background(), "s1", "visit 1")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if done {
		t.Fatal("visit turn must not end the day")
	}
	if !strings.Contains(reply, "Visiting Store A (ID: R1)") {
		t.Fatalf("reply missing retailer detail: %q", reply)
	}
	if !strings.Contains(reply, "Pitch for Store A") {
		t.Fatalf("reply missing pitch: %q", reply)
	}
	if env.selector.calls != 0 {
		t.Fatalf("sequence match must not hit the selector, got %d calls", env.selector.calls)
	}

	st := env.saved(t)
	if st.Phase != statex.PhasePitchReady {
		t.Fatalf("expected pitch_ready, got %s", st.Phase)
	}
	if st.Current == nil || st.Current.Stop.RetailerID != "R1" {
		t.Fatalf("expected current retailer R1, got %+v", st.Current)
	}
}

func TestVisitUnmatchedReShowsRoute(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.mustStartDay(t)

	reply, _, err := env.copilot.HandleMessage(context.Background(), "s1", "visit the corner shop")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(reply, "Could not find that retailer on today's route.") {
		t.Fatalf("reply missing failure notice: %q", reply)
	}
	if !strings.Contains(reply, "1. Store A (ID: R1)") {
		t.Fatalf("reply must re-show the route: %q", reply)
	}

	st := env.saved(t)
	if !st.SelectionFailed {
		t.Fatal("selection failed guard must be set")
	}
	if st.Phase != statex.PhaseAwaitingAction {
		t.Fatalf("expected awaiting_action, got %s", st.Phase)
	}
}

func TestVisitSelectorOutageIsRecoverable(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(e *testEnv) {
		e.selector.err = errors.New("model down")
	})
	env.mustStartDay(t)

	reply, _, err := env.copilot.HandleMessage(context.Background(), "s1", "visit the corner shop")
	if err != nil {
		t.Fatalf("collaborator outage must not fail the turn: %v", err)
	}
	if !strings.Contains(reply, "Could not reach the store matcher.") {
		t.Fatalf("unexpected reply: %q", reply)
	}

	// The next well-formed request still works.
	reply, _, err = env.copilot.HandleMessage(context.Background(), "s1", "visit 2")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !strings.Contains(reply, "Visiting Store B (ID: R2)") {
		t.Fatalf("expected recovery to R2: %q", reply)
	}
}

func TestCartAndSubmitLogsOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.mustStartDay(t)

	if _, _, err := env.copilot.HandleMessage(context.Background(), "s1", "visit 1"); err != nil {
		t.Fatalf("visit turn error = %v", err)
	}

	confirm, err := env.copilot.AddCartLine(context.Background(), "s1", contractx.CartLine{ProductID: "P1", Quantity: 4})
	if err != nil {
		t.Fatalf("AddCartLine() error = %v", err)
	}
	if !strings.Contains(confirm, "Masala Chips") || !strings.Contains(confirm, "100.00") {
		t.Fatalf("unexpected cart confirmation: %q", confirm)
	}

	reply, done, err := env.copilot.SubmitOrder(context.Background(), "s1", "restock friday")
	if err != nil {
		t.Fatalf("SubmitOrder() error = %v", err)
	}
	if done {
		t.Fatal("one of two stops must not end the day")
	}
	if !strings.Contains(reply, "Order logged for Store A") || !strings.Contains(reply, "INV_V001") {
		t.Fatalf("unexpected submit reply: %q", reply)
	}

	if len(env.orders.logged) != 1 {
		t.Fatalf("expected one logged order, got %d", len(env.orders.logged))
	}
	req := env.orders.logged[0]
	if req.VisitID != "V001" || req.RetailerID != "R1" || req.RepID != "SR001" {
		t.Fatalf("unexpected order request: %+v", req)
	}
	if len(req.Lines) != 1 || req.Lines[0].UnitPrice != 25 {
		t.Fatalf("price must be resolved from the catalog: %+v", req.Lines)
	}
	if req.Feedback != "restock friday" {
		t.Fatalf("unexpected feedback: %q", req.Feedback)
	}

	st := env.saved(t)
	if !st.HasVisited("R1") {
		t.Fatal("R1 must be recorded as visited")
	}
	if len(st.Cart) != 0 || st.Current != nil {
		t.Fatalf("cart and current retailer must clear, got cart=%d current=%+v", len(st.Cart), st.Current)
	}
}

func TestEmptyCartSubmitClosesVisitWithoutOrder(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.mustStartDay(t)

	if _, _, err := env.copilot.HandleMessage(context.Background(), "s1", "visit 2"); err != nil {
		t.Fatalf("visit turn error = %v", err)
	}

	reply, _, err := env.copilot.SubmitOrder(context.Background(), "s1", "")
	if err != nil {
		t.Fatalf("SubmitOrder() error = %v", err)
	}
	if !strings.Contains(reply, "Visit to Store B closed without an order.") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if len(env.orders.logged) != 0 {
		t.Fatalf("no order must be written, got %d", len(env.orders.logged))
	}
	if !env.saved(t).HasVisited("R2") {
		t.Fatal("the visit must still count toward the day")
	}
}

func TestDoubleSubmitNeedsNewSelection(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.mustStartDay(t)

	if _, _, err := env.copilot.HandleMessage(context.Background(), "s1", "visit 1"); err != nil {
		t.Fatalf("visit turn error = %v", err)
	}
	if _, _, err := env.copilot.SubmitOrder(context.Background(), "s1", ""); err != nil {
		t.Fatalf("first submit error = %v", err)
	}

	reply, _, err := env.copilot.SubmitOrder(context.Background(), "s1", "")
	if err != nil {
		t.Fatalf("second submit error = %v", err)
	}
	if !strings.Contains(reply, "Select a retailer before submitting an order.") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if got := len(env.saved(t).VisitedIDs); got != 1 {
		t.Fatalf("retailer must be recorded once, got %d", got)
	}
}

func TestRenderPlanMarksVisitedAndFilters(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.mustStartDay(t)

	if _, _, err := env.copilot.HandleMessage(context.Background(), "s1", "visit 1"); err != nil {
		t.Fatalf("visit turn error = %v", err)
	}
	if _, _, err := env.copilot.SubmitOrder(context.Background(), "s1", ""); err != nil {
		t.Fatalf("submit error = %v", err)
	}

	reply, _, err := env.copilot.HandleMessage(context.Background(), "s1", "show my plan")
	if err != nil {
		t.Fatalf("plan turn error = %v", err)
	}
	if !strings.Contains(reply, "Store A (ID: R1) - Pune, GT (visited)") {
		t.Fatalf("plan must mark visited stops: %q", reply)
	}
	if !strings.Contains(reply, "Store B (ID: R2) - Pune, MT\n") {
		t.Fatalf("plan must list unvisited stops plainly: %q", reply)
	}

	reply, _, err = env.copilot.HandleMessage(context.Background(), "s1", "show my plan, only unvisited stores")
	if err != nil {
		t.Fatalf("filtered plan turn error = %v", err)
	}
	if strings.Contains(reply, "Store A") {
		t.Fatalf("filtered plan must drop visited stops: %q", reply)
	}
	if !strings.Contains(reply, "Store B") {
		t.Fatalf("filtered plan must keep unvisited stops: %q", reply)
	}
}

func TestDaySummaryEscapeEndsDay(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.mustStartDay(t)

	reply, done, err := env.copilot.HandleMessage(context.Background(), "s1", "I want the day summary now")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !done {
		t.Fatal("day summary must end the conversation")
	}
	if !strings.Contains(reply, "Summary for SR001") {
		t.Fatalf("reply missing summary: %q", reply)
	}
	if len(env.notifier.published) != 1 {
		t.Fatalf("expected one day-end notification, got %d", len(env.notifier.published))
	}

	st := env.saved(t)
	if !st.DayEnded || st.Phase != statex.PhaseEnded {
		t.Fatalf("expected ended session, got day_ended=%v phase=%s", st.DayEnded, st.Phase)
	}

	// Any later turn gets the closed-day reply without touching collaborators.
	reply, done, err = env.copilot.HandleMessage(context.Background(), "s1", "visit 1")
	if err != nil {
		t.Fatalf("post-end turn error = %v", err)
	}
	if !done || !strings.Contains(reply, "The work day has ended.") {
		t.Fatalf("unexpected post-end reply: %q done=%v", reply, done)
	}
	if env.metrics.calls != 1 {
		t.Fatalf("metrics must not rerun after the day ended, got %d calls", env.metrics.calls)
	}
}

func TestFullRouteTriggersAutoSummary(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(e *testEnv) {
		e.routes.route = testRoute()[:1]
	})
	env.mustStartDay(t)

	if _, _, err := env.copilot.HandleMessage(context.Background(), "s1", "visit 1"); err != nil {
		t.Fatalf("visit turn error = %v", err)
	}

	reply, done, err := env.copilot.SubmitOrder(context.Background(), "s1", "")
	if err != nil {
		t.Fatalf("SubmitOrder() error = %v", err)
	}
	if !done {
		t.Fatal("completing the route must end the day")
	}
	if !strings.Contains(reply, "Visit to Store A closed without an order.") {
		t.Fatalf("reply must keep the visit confirmation: %q", reply)
	}
	if !strings.Contains(reply, "Summary for SR001") {
		t.Fatalf("reply must append the summary: %q", reply)
	}
}

func TestSummaryMetricsFailureKeepsDayOpen(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(e *testEnv) {
		e.metrics.err = errors.New("db down")
	})
	env.mustStartDay(t)

	reply, done, err := env.copilot.HandleMessage(context.Background(), "s1", "day summary")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if done {
		t.Fatal("a failed summary must not end the day")
	}
	if !strings.Contains(reply, "Could not build the day summary.") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if env.saved(t).DayEnded {
		t.Fatal("day must stay open after a metrics failure")
	}
}

func TestNotifierFailureDoesNotBlockSummary(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(e *testEnv) {
		e.notifier.err = errors.New("queue down")
	})
	env.mustStartDay(t)

	reply, done, err := env.copilot.HandleMessage(context.Background(), "s1", "day summary")
	if err != nil {
		t.Fatalf("HandleMessage() error = %v", err)
	}
	if !done || !strings.Contains(reply, "Summary for SR001") {
		t.Fatalf("summary must complete despite notifier failure: %q done=%v", reply, done)
	}
}

func TestAddCartLineRequiresPitchReady(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.mustStartDay(t)

	_, err := env.copilot.AddCartLine(context.Background(), "s1", contractx.CartLine{ProductID: "P1", Quantity: 1})
	if !errors.Is(err, ErrNoCurrentRetailer) {
		t.Fatalf("expected ErrNoCurrentRetailer, got %v", err)
	}
}

func TestAddCartLineMergesSameProduct(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, nil)
	env.mustStartDay(t)

	if _, _, err := env.copilot.HandleMessage(context.Background(), "s1", "visit 1"); err != nil {
		t.Fatalf("visit turn error = %v", err)
	}
	if _, err := env.copilot.AddCartLine(context.Background(), "s1", contractx.CartLine{ProductID: "P1", Quantity: 2}); err != nil {
		t.Fatalf("first AddCartLine() error = %v", err)
	}
	confirm, err := env.copilot.AddCartLine(context.Background(), "s1", contractx.CartLine{ProductID: "P1", Quantity: 3})
	if err != nil {
		t.Fatalf("second AddCartLine() error = %v", err)
	}
	if !strings.Contains(confirm, "Cart: 1 line(s)") {
		t.Fatalf("same product must merge into one line: %q", confirm)
	}

	st := env.saved(t)
	if len(st.Cart) != 1 || st.Cart[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %+v", st.Cart)
	}
}

func TestOrderWriteFailureKeepsCart(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, func(e *testEnv) {
		e.orders.err = errors.New("insert failed")
	})
	env.mustStartDay(t)

	if _, _, err := env.copilot.HandleMessage(context.Background(), "s1", "visit 1"); err != nil {
		t.Fatalf("visit turn error = %v", err)
	}
	if _, err := env.copilot.AddCartLine(context.Background(), "s1", contractx.CartLine{ProductID: "P1", Quantity: 2}); err != nil {
		t.Fatalf("AddCartLine() error = %v", err)
	}

	reply, done, err := env.copilot.SubmitOrder(context.Background(), "s1", "")
	if err != nil {
		t.Fatalf("a failed order write must be recoverable: %v", err)
	}
	if done {
		t.Fatal("failed submit must not end the day")
	}
	if !strings.Contains(reply, "Your cart is unchanged") {
		t.Fatalf("unexpected reply: %q", reply)
	}

	st := env.saved(t)
	if len(st.Cart) != 1 {
		t.Fatalf("cart must survive a failed write, got %d lines", len(st.Cart))
	}
	if st.HasVisited("R1") {
		t.Fatal("a failed order must not record the visit")
	}
}

func cloneSessionState(in *statex.SessionState) *statex.SessionState {
	if in == nil {
		return nil
	}
	raw, err := json.Marshal(in)
	if err != nil {
		panic(err)
	}
	var out statex.SessionState
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	return &out
}
