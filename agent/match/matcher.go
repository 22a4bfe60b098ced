// Package match resolves free text to a single stop on the day's route.
// Three strategies run in order, first success wins: explicit visit sequence,
// standalone retailer ID token, then an LLM-assisted fuzzy name match.
package match

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	contractx "github.com/fieldline/sales-copilot/agent/contract"
)

const (
	defaultMaxAttempts = 10
	defaultThreshold   = 0.4
)

// Result is the explicit outcome of a match attempt. An unmatched result is
// reported, never inferred from a zero value.
type Result struct {
	Stop    contractx.RouteStop
	Matched bool
}

type Option func(*Matcher)

func WithMaxAttempts(n int) Option {
	return func(m *Matcher) {
		if n > 0 {
			m.maxAttempts = n
		}
	}
}

func WithThreshold(t float64) Option {
	return func(m *Matcher) {
		if t > 0 && t <= 1 {
			m.threshold = t
		}
	}
}

type Matcher struct {
	selector    contractx.LineSelector
	maxAttempts int
	threshold   float64
}

func New(selector contractx.LineSelector, opts ...Option) *Matcher {
	m := &Matcher{
		selector:    selector,
		maxAttempts: defaultMaxAttempts,
		threshold:   defaultThreshold,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

var (
	// "visit 3" or "visit store number 3".
	sequencePattern = regexp.MustCompile(`(?i)\bvisit\s+(?:store\s+number\s+)?(\d+)\b`)
	tokenPattern    = regexp.MustCompile(`[A-Za-z0-9]+`)
)

// Match resolves user text against the route. An empty route is always
// unmatched. Collaborator failures on the fuzzy path surface as errors so the
// router can treat them as a recoverable collaborator fault.
func (m *Matcher) Match(ctx context.Context, text string, route []contractx.RouteStop) (Result, error) {
	if len(route) == 0 {
		return Result{}, nil
	}

	if stop, ok := matchBySequence(text, route); ok {
		return Result{Stop: stop, Matched: true}, nil
	}
	if stop, ok := matchByIdentifier(text, route); ok {
		return Result{Stop: stop, Matched: true}, nil
	}
	return m.matchFuzzy(ctx, text, route)
}

func matchBySequence(text string, route []contractx.RouteStop) (contractx.RouteStop, bool) {
	groups := sequencePattern.FindStringSubmatch(text)
	if groups == nil {
		return contractx.RouteStop{}, false
	}
	n, err := strconv.Atoi(groups[1])
	if err != nil {
		return contractx.RouteStop{}, false
	}
	// Duplicate sequence numbers violate the route invariant; first found wins.
	for _, stop := range route {
		if stop.VisitSequence == n {
			return stop, true
		}
	}
	return contractx.RouteStop{}, false
}

func matchByIdentifier(text string, route []contractx.RouteStop) (contractx.RouteStop, bool) {
	// Every standalone alphanumeric token is an identifier candidate; exact
	// equality against a stop ID decides, so no length heuristic is needed.
	for _, token := range tokenPattern.FindAllString(text, -1) {
		for _, stop := range route {
			if strings.EqualFold(token, stop.RetailerID) {
				return stop, true
			}
		}
	}
	return contractx.RouteStop{}, false
}

func (m *Matcher) matchFuzzy(ctx context.Context, text string, route []contractx.RouteStop) (Result, error) {
	if m.selector == nil {
		return Result{}, nil
	}

	candidates := CandidateLines(route)

	var lastErr error
	for attempt := 0; attempt < m.maxAttempts; attempt++ {
		line, err := m.selector.SelectLine(ctx, text, candidates)
		if err != nil {
			lastErr = err
			continue
		}

		if idx, ok := closestCandidate(line, candidates, m.threshold); ok {
			return Result{Stop: route[idx], Matched: true}, nil
		}
	}

	if lastErr != nil {
		return Result{}, fmt.Errorf("%w: line selector: %v", contractx.ErrCollaborator, lastErr)
	}
	return Result{}, nil
}

// CandidateLines renders the route the way it is shown to the selector model
// and to the rep when a selection fails: "seq. name (ID: id)".
func CandidateLines(route []contractx.RouteStop) []string {
	lines := make([]string, 0, len(route))
	for _, stop := range route {
		lines = append(lines, fmt.Sprintf("%d. %s (ID: %s)", stop.VisitSequence, stop.Name, stop.RetailerID))
	}
	return lines
}

// closestCandidate returns the index of the candidate most similar to the
// generated line, if its similarity clears the threshold.
func closestCandidate(line string, candidates []string, threshold float64) (int, bool) {
	needle := strings.ToLower(strings.TrimSpace(line))
	if needle == "" {
		return 0, false
	}

	bestIdx := -1
	bestScore := 0.0
	for i, candidate := range candidates {
		score := similarity(needle, strings.ToLower(candidate))
		if score > bestScore {
			bestIdx = i
			bestScore = score
		}
	}

	if bestIdx < 0 || bestScore < threshold {
		return 0, false
	}
	return bestIdx, true
}

// similarity is a normalized edit-distance ratio in [0, 1].
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1 - float64(dist)/float64(longest)
}
