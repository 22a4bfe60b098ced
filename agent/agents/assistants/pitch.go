package assistants

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
)

type pitchImpl struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.PitchWriter = (*pitchImpl)(nil)

func newPitchWriter(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*pitchImpl, error) {
	runner, err := compileTextGraph(ctx, chatModel, systemPrompt, "assistants.pitch_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile pitch graph: %v", contractx.ErrModelInvoke, err)
	}
	return &pitchImpl{runner: runner}, nil
}

func (p *pitchImpl) WritePitch(ctx context.Context, detail contractx.RetailerDetail) (string, error) {
	out, err := p.runner.Invoke(ctx, map[string]any{
		"input": pitchPayload(detail),
	})
	if err != nil {
		return "", fmt.Errorf("%w: pitch invoke: %v", contractx.ErrModelInvoke, err)
	}
	if out == nil {
		return "", fmt.Errorf("%w: pitch model returned nil message", contractx.ErrModelInvoke)
	}

	pitch := strings.TrimSpace(out.Content)
	if pitch == "" {
		return "", fmt.Errorf("%w: pitch is empty", contractx.ErrModelInvoke)
	}
	return pitch, nil
}

func pitchPayload(detail contractx.RetailerDetail) string {
	recLines := make([]string, 0, len(detail.Recommendations))
	for _, rec := range detail.Recommendations {
		recLines = append(recLines, fmt.Sprintf("- %s (Score: %.2f)", rec.ProductName, rec.Score))
	}
	recText := strings.Join(recLines, "\n")
	if recText == "" {
		recText = "None"
	}

	stockLines := make([]string, 0, len(detail.LastStock))
	for _, line := range detail.LastStock {
		stockLines = append(stockLines, fmt.Sprintf("- %s (Available stock: %d units, Visit Date: %s)",
			line.ProductName, line.AvailableStock, line.VisitDate))
	}
	stockText := strings.Join(stockLines, "\n")
	if stockText == "" {
		stockText = "No stock data available."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Retailer Details:\n- Name: %s\n- Location: %s (%s channel)\n\n",
		detail.Retailer.Name, detail.Retailer.City, detail.Retailer.Channel)
	fmt.Fprintf(&b, "Last Visit Stock:\n%s\n\n", stockText)
	fmt.Fprintf(&b, "Recommended Products to Push:\n%s", recText)
	return b.String()
}
