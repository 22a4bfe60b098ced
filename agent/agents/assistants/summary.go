package assistants

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
)

type summaryImpl struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.SummaryWriter = (*summaryImpl)(nil)

func newSummaryWriter(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*summaryImpl, error) {
	runner, err := compileTextGraph(ctx, chatModel, systemPrompt, "assistants.summary_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile summary graph: %v", contractx.ErrModelInvoke, err)
	}
	return &summaryImpl{runner: runner}, nil
}

func (s *summaryImpl) WriteSummary(ctx context.Context, repID string, date time.Time, metrics contractx.DayMetrics) (string, error) {
	out, err := s.runner.Invoke(ctx, map[string]any{
		"input": StructuredSummary(repID, date, metrics),
	})
	if err != nil {
		return "", fmt.Errorf("%w: summary invoke: %v", contractx.ErrModelInvoke, err)
	}
	if out == nil {
		return "", fmt.Errorf("%w: summary model returned nil message", contractx.ErrModelInvoke)
	}

	summary := strings.TrimSpace(out.Content)
	if summary == "" {
		return "", fmt.Errorf("%w: summary is empty", contractx.ErrModelInvoke)
	}
	return summary, nil
}

// StructuredSummary renders the metrics block fed to the summary model. Also
// usable as a plain-text fallback report.
func StructuredSummary(repID string, date time.Time, m contractx.DayMetrics) string {
	topProducts := strings.Join(m.TopProducts, ", ")
	if topProducts == "" {
		topProducts = "None"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Sales Rep %s summary for %s:\n", repID, date.Format("2006-01-02"))
	fmt.Fprintf(&b, "- Planned visits: %d\n", m.PlannedVisits)
	fmt.Fprintf(&b, "- Actual visits: %d\n", m.ActualVisits)
	fmt.Fprintf(&b, "- Total orders: %d\n", m.OrderCount)
	fmt.Fprintf(&b, "- Total revenue: ₹%.2f\n", m.Revenue)
	fmt.Fprintf(&b, "- Top products: %s\n", topProducts)
	return b.String()
}
