package dialognode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

// LogOrder closes the current retailer visit. A non-empty cart is written to
// the order log; an empty cart still records the visit so the stop counts
// toward the day. A failed write keeps the cart intact for a retry.
func LogOrder(ctx context.Context, in *GraphState, orders contractx.OrderLog, newVisitID func() string) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	st := in.Session

	if st.Current == nil {
		st.Notice = "Select a retailer before submitting an order."
		st.Phase = statex.PhaseAwaitingAction
		in.Reply = st.Notice
		return in, nil
	}

	stop := st.Current.Stop

	if len(st.Cart) == 0 {
		st.RecordVisit(stop.RetailerID)
		st.Current = nil
		st.Phase = statex.PhaseOrderLogged
		in.Reply = fmt.Sprintf("Visit to %s closed without an order.", stop.Name)
		return in, nil
	}

	req := contractx.OrderRequest{
		VisitID:    newVisitID(),
		RetailerID: stop.RetailerID,
		RepID:      st.RepID,
		Lines:      st.Cart,
		Feedback:   in.Feedback,
		Date:       in.Now,
	}

	invoiceID, err := orders.LogOrder(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("retailer_id", stop.RetailerID).Msg("order write failed")
		st.Notice = fmt.Sprintf("Could not log the order for %s. Your cart is unchanged, please submit again.", stop.Name)
		st.Phase = statex.PhaseAwaitingAction
		in.Reply = st.Notice
		return in, nil
	}

	total := st.CartTotal()
	lineCount := len(st.Cart)

	st.RecordVisit(stop.RetailerID)
	st.ClearCart()
	st.Current = nil
	st.Phase = statex.PhaseOrderLogged

	in.Reply = fmt.Sprintf("Order logged for %s: %d line(s), total ₹%.2f. Invoice %s.", stop.Name, lineCount, total, invoiceID)
	return in, nil
}
