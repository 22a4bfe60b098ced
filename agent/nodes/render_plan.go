package dialognode

import (
	"fmt"
	"strings"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

// RenderPlan answers a "show my plan" turn. Visited stops are marked, and the
// unvisited filter drops them entirely.
func RenderPlan(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	st := in.Session

	if len(st.Route) == 0 {
		st.Phase = statex.PhaseAwaitingAction
		in.Reply = "No route plan is loaded for today."
		return in, nil
	}

	var b strings.Builder
	if in.Cls.OnlyUnvisited {
		fmt.Fprintf(&b, "Remaining stops on today's route (Beat: %s):\n", st.Beat.Name)
	} else {
		fmt.Fprintf(&b, "Today's route plan (Beat: %s):\n", st.Beat.Name)
	}

	shown := 0
	for _, stop := range st.Route {
		visited := st.HasVisited(stop.RetailerID)
		if in.Cls.OnlyUnvisited && visited {
			continue
		}
		fmt.Fprintf(&b, "%d. %s (ID: %s) - %s, %s", stop.VisitSequence, stop.Name, stop.RetailerID, stop.City, stop.Channel)
		if visited {
			b.WriteString(" (visited)")
		}
		b.WriteString("\n")
		shown++
	}

	if shown == 0 {
		in.Reply = "All planned retailers have been visited. Say 'day summary' to wrap up."
	} else {
		b.WriteString("\nSay 'visit <number>' or name a store to start a visit.")
		in.Reply = b.String()
	}

	st.Phase = statex.PhaseAwaitingAction
	return in, nil
}
