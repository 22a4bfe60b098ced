package dialognode

import (
	"fmt"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	intentx "github.com/fieldline/sales-copilot/agent/intent"
)

// BeginTurn resets per-message session fields and classifies the turn intent.
// Submit turns carry no message, so they leave the last message and the
// selection-failed guard untouched.
func BeginTurn(in *GraphState) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	if !in.Submit && !in.Session.DayEnded {
		in.Session.BeginTurn(in.Text)
		in.Cls = intentx.Classify(in.Text)
	}

	return in, nil
}
