package dialognode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	matchx "github.com/fieldline/sales-copilot/agent/match"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

// SelectRetailer resolves the user's message to a route stop, fetches the
// retailer detail, and prepares a pitch. Every failure on this path is
// recoverable: the session gets a notice and the route is shown again.
func SelectRetailer(ctx context.Context, in *GraphState, matcher *matchx.Matcher, catalog contractx.RetailerCatalog, pitch contractx.PitchWriter) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	st := in.Session

	if len(st.Route) == 0 {
		return selectionFailed(in, "No route plan is loaded yet, so there is nothing to visit.")
	}

	st.Phase = statex.PhaseRetailerSelection

	res, err := matcher.Match(ctx, in.Text, st.Route)
	if err != nil {
		log.Warn().Err(err).Str("session_id", st.SessionID).Msg("retailer selection collaborator failed")
		return selectionFailed(in, "Could not reach the store matcher. Please try again.")
	}
	if !res.Matched {
		return selectionFailed(in, "Could not find that retailer on today's route.")
	}

	detail, err := catalog.Detail(ctx, res.Stop.RetailerID)
	if err != nil {
		log.Warn().Err(err).Str("retailer_id", res.Stop.RetailerID).Msg("retailer detail fetch failed")
		return selectionFailed(in, fmt.Sprintf("Could not load details for %s. Please try again.", res.Stop.Name))
	}

	// A new selection starts a fresh visit; any lines carted for the previous
	// retailer are discarded.
	st.ClearCart()
	st.Current = &statex.RetailerMatch{Stop: res.Stop, Detail: detail}
	st.Phase = statex.PhaseRetailerDetail

	text, err := pitch.WritePitch(ctx, detail)
	if err != nil {
		log.Warn().Err(err).Str("retailer_id", res.Stop.RetailerID).Msg("pitch generation failed")
		st.Notice = fmt.Sprintf("Details for %s are loaded, but the pitch could not be generated. Please try again.", res.Stop.Name)
		st.Phase = statex.PhaseAwaitingAction
		in.Reply = st.Notice + "\n\n" + detailBlock(res.Stop, detail)
		return in, nil
	}

	st.Current.Pitch = text
	st.Phase = statex.PhasePitchReady

	var b strings.Builder
	b.WriteString(detailBlock(res.Stop, detail))
	b.WriteString("\nSuggested pitch:\n")
	b.WriteString(text)
	b.WriteString("\n\nAdd products to the cart and submit to log the order, or submit with an empty cart to close the visit without one.")
	in.Reply = b.String()
	return in, nil
}

func selectionFailed(in *GraphState, notice string) (*GraphState, error) {
	st := in.Session
	st.SelectionFailed = true
	st.Notice = notice
	st.Phase = statex.PhaseAwaitingAction

	var b strings.Builder
	b.WriteString(notice)
	if len(st.Route) > 0 {
		b.WriteString("\n\nToday's route:\n")
		for _, line := range matchx.CandidateLines(st.Route) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	in.Reply = b.String()
	return in, nil
}

func detailBlock(stop contractx.RouteStop, detail contractx.RetailerDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Visiting %s (ID: %s), stop %d on today's route.\n", stop.Name, stop.RetailerID, stop.VisitSequence)
	fmt.Fprintf(&b, "Location: %s, %s channel.\n", detail.Retailer.City, detail.Retailer.Channel)

	if len(detail.LastStock) > 0 {
		b.WriteString("\nStock from the last visit:\n")
		for _, line := range detail.LastStock {
			fmt.Fprintf(&b, "- %s (%s): %d on hand\n", line.ProductName, line.PackSize, line.AvailableStock)
		}
	}
	if len(detail.Recommendations) > 0 {
		b.WriteString("\nRecommended products:\n")
		for _, rec := range detail.Recommendations {
			fmt.Fprintf(&b, "- %s (ID: %s)\n", rec.ProductName, rec.ProductID)
		}
	}
	return b.String()
}
