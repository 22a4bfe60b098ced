package dialognode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

// LoadState fetches the session. A missing session is a caller error:
// StartDay must run before the first message.
func LoadState(ctx context.Context, in *GraphState, store statex.Store) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	st, err := store.Load(ctx, in.SessionID)
	if err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			return nil, fmt.Errorf("%w: session=%s", ErrSessionNotStarted, in.SessionID)
		}
		return nil, err
	}

	in.Session = st
	return in, nil
}
