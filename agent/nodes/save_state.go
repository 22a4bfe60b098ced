package dialognode

import (
	"context"
	"fmt"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

// SaveState persists the session at the end of the turn. Turns are atomic:
// nothing is written until every step of the turn has run.
func SaveState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	in.Session.Touch(in.Now)
	if err := in.Session.Validate(); err != nil {
		return nil, err
	}
	if err := store.Save(ctx, in.Session); err != nil {
		return nil, fmt.Errorf("save session %s: %w", in.SessionID, err)
	}
	return in, nil
}
