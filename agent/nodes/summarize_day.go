package dialognode

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

// SummarizeDay ends the work day: aggregate metrics, write the summary, and
// close the session. The end-of-day notification is best effort and never
// blocks the reply. Metric or summary failures leave the day open for a retry.
func SummarizeDay(ctx context.Context, in *GraphState, metrics contractx.MetricsSource, writer contractx.SummaryWriter, notifier contractx.Notifier) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	st := in.Session

	m, err := metrics.DayMetrics(ctx, st.RepID, in.Now, st.Weekday)
	if err != nil {
		log.Warn().Err(err).Str("rep_id", st.RepID).Msg("day metrics fetch failed")
		st.Notice = "Could not build the day summary. Please try again."
		st.Phase = statex.PhaseAwaitingAction
		in.Reply = joinReplies(in.Reply, st.Notice)
		return in, nil
	}

	st.Phase = statex.PhaseDaySummary

	summary, err := writer.WriteSummary(ctx, st.RepID, in.Now, m)
	if err != nil {
		log.Warn().Err(err).Str("rep_id", st.RepID).Msg("summary generation failed")
		st.Notice = "Could not generate the day summary. Please try again."
		st.Phase = statex.PhaseAwaitingAction
		in.Reply = joinReplies(in.Reply, st.Notice)
		return in, nil
	}

	if notifier != nil {
		if err := notifier.PublishDayEnd(ctx, st.RepID, in.Now, summary); err != nil {
			log.Warn().Err(err).Str("rep_id", st.RepID).Msg("day end notification failed")
		}
	}

	st.DayEnded = true
	st.Phase = statex.PhaseEnded
	st.Current = nil
	st.ClearCart()

	in.Reply = joinReplies(in.Reply, summary+"\n\nThat wraps up the day. Great work.")
	in.Done = true
	return in, nil
}

// joinReplies keeps an earlier step's reply visible when the summary runs in
// the same turn, as it does after the last order of the day.
func joinReplies(prev, next string) string {
	if prev == "" {
		return next
	}
	return prev + "\n\n" + next
}
