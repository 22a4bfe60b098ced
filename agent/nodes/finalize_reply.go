package dialognode

import (
	"fmt"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
)

// FinalizeReply converts the turn's graph state into the caller-facing output.
func FinalizeReply(in *GraphState) (GraphOutput, error) {
	if in == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}
	reply := in.Reply
	if reply == "" {
		reply = "Say 'visit <number>', 'show my plan', or 'day summary'."
	}
	return GraphOutput{Reply: reply, Done: in.Done}, nil
}
