package dialognode

import (
	"fmt"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	intentx "github.com/fieldline/sales-copilot/agent/intent"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

// Branch target node keys.
const (
	NodeEndedReply     = "ended_reply"
	NodeLogOrder       = "log_order"
	NodeSummarizeDay   = "summarize_day"
	NodeSelectRetailer = "select_retailer"
	NodeRenderPlan     = "render_plan"
	NodeAwaitReply     = "await_reply"
	NodeSaveState      = "save_state"
)

// RouteTurn decides which step runs for this turn. The day-summary escape
// always wins; a selection that just failed must not re-trigger from the same
// stale "visit" phrase.
func RouteTurn(in *GraphState) (string, error) {
	if in == nil || in.Session == nil {
		return "", fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	st := in.Session

	if st.DayEnded {
		return NodeEndedReply, nil
	}
	if in.Submit {
		return NodeLogOrder, nil
	}

	switch in.Cls.Intent {
	case intentx.DaySummary:
		return NodeSummarizeDay, nil
	case intentx.Visit:
		if !st.SelectionFailed {
			return NodeSelectRetailer, nil
		}
	case intentx.ViewPlan:
		return NodeRenderPlan, nil
	}

	// A pitch was presented and the cart already holds lines: log the order.
	if st.Phase == statex.PhasePitchReady && len(st.Cart) > 0 {
		return NodeLogOrder, nil
	}

	return NodeAwaitReply, nil
}

// AfterOrder runs once the order step completed: a full route forces the day
// summary, otherwise the turn ends and control returns to the rep.
func AfterOrder(in *GraphState) (string, error) {
	if in == nil || in.Session == nil {
		return "", fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	if in.Session.Phase == statex.PhaseOrderLogged && in.Session.IsDayComplete() {
		return NodeSummarizeDay, nil
	}
	return NodeSaveState, nil
}
