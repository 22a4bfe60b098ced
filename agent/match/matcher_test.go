package match

import (
	"context"
	"errors"
	"testing"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
)

type fakeSelector struct {
	lines []string
	err   error
	calls int
}

func (f *fakeSelector) SelectLine(ctx context.Context, userMessage string, candidates []string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	idx := f.calls - 1
	if idx >= len(f.lines) {
		idx = len(f.lines) - 1
	}
	return f.lines[idx], nil
}

func testRoute() []contractx.RouteStop {
	return []contractx.RouteStop{
		{RetailerID: "R1", Name: "Store A", VisitSequence: 1},
		{RetailerID: "R2", Name: "Store B", VisitSequence: 2},
		{RetailerID: "R3", Name: "Big Bazaar Central", VisitSequence: 3},
	}
}

func TestMatchEmptyRoute(t *testing.T) {
	t.Parallel()

	m := New(&fakeSelector{})
	res, err := m.Match(context.Background(), "visit 1", nil)
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if res.Matched {
		t.Fatal("empty route must never match")
	}
}

func TestMatchBySequence(t *testing.T) {
	t.Parallel()

	selector := &fakeSelector{err: errors.New("must not be called")}
	m := New(selector)

	cases := map[string]string{
		"visit 2":              "R2",
		"Visit store number 3": "R3",
		"please visit 1 today": "R1",
	}
	for text, want := range cases {
		res, err := m.Match(context.Background(), text, testRoute())
		if err != nil {
			t.Fatalf("Match(%q) error = %v", text, err)
		}
		if !res.Matched || res.Stop.RetailerID != want {
			t.Fatalf("Match(%q) = %+v, want %s", text, res, want)
		}
	}
	if selector.calls != 0 {
		t.Fatalf("selector must not run on sequence matches, got %d calls", selector.calls)
	}
}

func TestMatchSequenceOutOfRangeFallsThrough(t *testing.T) {
	t.Parallel()

	selector := &fakeSelector{lines: []string{"no match"}}
	m := New(selector, WithMaxAttempts(1))

	res, err := m.Match(context.Background(), "visit 9", testRoute())
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if res.Matched {
		t.Fatalf("sequence 9 must not match, got %+v", res)
	}
}

func TestMatchByIdentifier(t *testing.T) {
	t.Parallel()

	selector := &fakeSelector{err: errors.New("must not be called")}
	m := New(selector)

	res, err := m.Match(context.Background(), "heading to r2 now", testRoute())
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if !res.Matched || res.Stop.RetailerID != "R2" {
		t.Fatalf("expected identifier match on R2, got %+v", res)
	}
	if selector.calls != 0 {
		t.Fatal("selector must not run on identifier matches")
	}
}

func TestMatchFuzzyAcceptsCloseLine(t *testing.T) {
	t.Parallel()

	selector := &fakeSelector{lines: []string{"2. Store B (ID: R2)"}}
	m := New(selector)

	res, err := m.Match(context.Background(), "drop by store bee", testRoute())
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if !res.Matched || res.Stop.RetailerID != "R2" {
		t.Fatalf("expected fuzzy match on R2, got %+v", res)
	}
}

func TestMatchFuzzyRejectsDistantLine(t *testing.T) {
	t.Parallel()

	selector := &fakeSelector{lines: []string{"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz"}}
	m := New(selector, WithMaxAttempts(2))

	res, err := m.Match(context.Background(), "go somewhere", testRoute())
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if res.Matched {
		t.Fatalf("distant line must not match, got %+v", res)
	}
	if selector.calls != 2 {
		t.Fatalf("expected the full attempt budget, got %d calls", selector.calls)
	}
}

func TestMatchFuzzyRetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	selector := &fakeSelector{lines: []string{
		"qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqq",
		"3. Big Bazaar Central (ID: R3)",
	}}
	m := New(selector)

	res, err := m.Match(context.Background(), "the big bazaar one", testRoute())
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if !res.Matched || res.Stop.RetailerID != "R3" {
		t.Fatalf("expected retry to land on R3, got %+v", res)
	}
	if selector.calls != 2 {
		t.Fatalf("expected 2 selector calls, got %d", selector.calls)
	}
}

func TestMatchFuzzySelectorErrorSurfaces(t *testing.T) {
	t.Parallel()

	selector := &fakeSelector{err: errors.New("model down")}
	m := New(selector, WithMaxAttempts(3))

	_, err := m.Match(context.Background(), "some store", testRoute())
	if !errors.Is(err, contractx.ErrCollaborator) {
		t.Fatalf("expected ErrCollaborator, got %v", err)
	}
	if selector.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", selector.calls)
	}
}

func TestMatchNilSelectorSkipsFuzzy(t *testing.T) {
	t.Parallel()

	m := New(nil)
	res, err := m.Match(context.Background(), "some store", testRoute())
	if err != nil {
		t.Fatalf("Match() error = %v", err)
	}
	if res.Matched {
		t.Fatal("no selector means no fuzzy match")
	}
}

func TestCandidateLines(t *testing.T) {
	t.Parallel()

	lines := CandidateLines(testRoute())
	want := []string{
		"1. Store A (ID: R1)",
		"2. Store B (ID: R2)",
		"3. Big Bazaar Central (ID: R3)",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d", len(want), len(lines))
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestSimilarity(t *testing.T) {
	t.Parallel()

	if got := similarity("store b", "store b"); got != 1 {
		t.Fatalf("identical strings must score 1, got %v", got)
	}
	if got := similarity("", ""); got != 1 {
		t.Fatalf("two empty strings must score 1, got %v", got)
	}
	if got := similarity("abcd", "abce"); got != 0.75 {
		t.Fatalf("one edit over four runes must score 0.75, got %v", got)
	}
}
