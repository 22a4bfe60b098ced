// Package intent maps raw user text onto the small fixed set of actions the
// daily routine understands. The checks are ordered: the day-summary escape
// always wins, then visit, then plan.
package intent

import "strings"

type Intent int

const (
	Unknown Intent = iota
	ViewPlan
	Visit
	DaySummary
)

func (i Intent) String() string {
	switch i {
	case ViewPlan:
		return "view_plan"
	case Visit:
		return "visit"
	case DaySummary:
		return "day_summary"
	default:
		return "unknown"
	}
}

// Classification is the parsed turn intent plus modifiers.
type Classification struct {
	Intent Intent

	// OnlyUnvisited narrows a plan request to stops not yet visited.
	OnlyUnvisited bool
}

var unvisitedMarkers = []string{"unvisited", "remaining", "pending", "not visited"}

// Classify inspects a lowercased, trimmed copy of the message. Precedence is
// fixed: "day summary" before "visit" before "plan".
func Classify(text string) Classification {
	msg := strings.ToLower(strings.TrimSpace(text))
	if msg == "" {
		return Classification{Intent: Unknown}
	}

	if strings.Contains(msg, "day summary") {
		return Classification{Intent: DaySummary}
	}
	// "not visited" / "unvisited" are plan filters, not visit requests;
	// strip them before the visit check so "plan unvisited" routes to the
	// plan view.
	stripped := strings.ReplaceAll(msg, "not visited", "")
	stripped = strings.ReplaceAll(stripped, "unvisited", "")
	if strings.Contains(stripped, "visit") {
		return Classification{Intent: Visit}
	}
	if strings.Contains(msg, "plan") {
		return Classification{
			Intent:        ViewPlan,
			OnlyUnvisited: containsAny(msg, unvisitedMarkers),
		}
	}
	return Classification{Intent: Unknown}
}

func containsAny(msg string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
