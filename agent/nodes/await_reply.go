package dialognode

import (
	"fmt"
	"strings"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	matchx "github.com/fieldline/sales-copilot/agent/match"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

// AwaitReply is the fallback step: surface any pending notice, re-show the
// route, and prompt for the next action.
func AwaitReply(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	st := in.Session

	var b strings.Builder
	if st.Notice != "" {
		b.WriteString(st.Notice)
		b.WriteString("\n\n")
	}

	if len(st.Route) > 0 {
		fmt.Fprintf(&b, "Today's route (Beat: %s):\n", st.Beat.Name)
		for _, line := range matchx.CandidateLines(st.Route) {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\nSay 'visit <number>', 'show my plan', or 'day summary'.")
	} else {
		b.WriteString("No route is loaded yet. Send any message to retry, or say 'day summary' to wrap up.")
	}

	if st.Phase == statex.PhaseRouteReady || st.Phase == statex.PhaseAwaitingRep {
		st.Phase = statex.PhaseAwaitingAction
	}

	in.Reply = b.String()
	return in, nil
}

// EndedReply answers any turn that arrives after the day summary closed the
// session.
func EndedReply(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	in.Reply = "The work day has ended. Start a new session for the next field day."
	in.Done = true
	return in, nil
}
