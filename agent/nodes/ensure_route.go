package dialognode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

// EnsureRoute loads the day's beat and route plan if the session doesn't hold
// one yet. Fetch failures become a notice on the session, never an error out
// of the graph, so a later turn can retry.
func EnsureRoute(ctx context.Context, in *GraphState, routes contractx.RoutePlanner) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	PrimeRoute(ctx, in.Session, routes)
	return in, nil
}

// PrimeRoute fetches beat + route into the session. Returns the notice text
// when the fetch could not complete, empty on success or when the route is
// already present.
func PrimeRoute(ctx context.Context, st *statex.SessionState, routes contractx.RoutePlanner) string {
	if st.DayEnded || len(st.Route) > 0 {
		return ""
	}

	if st.Beat.ID == "" {
		beat, err := routes.AssignedBeat(ctx, st.RepID, st.Weekday)
		switch {
		case errors.Is(err, contractx.ErrNoRouteFound):
			st.Phase = statex.PhaseRouteReady
			st.Notice = fmt.Sprintf("No beats found for %s on %s.", st.RepID, st.Weekday)
			return st.Notice
		case err != nil:
			st.Phase = statex.PhaseRouteReady
			st.Notice = "Could not fetch the assigned beat. Please try again."
			return st.Notice
		}
		st.Beat = beat
	}

	stops, err := routes.RoutePlan(ctx, st.Beat.ID)
	if err != nil {
		st.Phase = statex.PhaseRouteReady
		st.Notice = "Could not fetch the route plan. Please try again."
		return st.Notice
	}
	if len(stops) == 0 {
		st.Phase = statex.PhaseRouteReady
		st.Notice = fmt.Sprintf("No route plan found for Beat ID %s.", st.Beat.ID)
		return st.Notice
	}

	st.Route = stops
	if st.Phase == statex.PhaseAwaitingRep {
		st.Phase = statex.PhaseRouteReady
	}
	return ""
}
