package dialognode

import (
	"errors"
	"strings"
	"time"

	intentx "github.com/fieldline/sales-copilot/agent/intent"
	statex "github.com/fieldline/sales-copilot/agent/state"
)

var (
	ErrInvalidMessage    = errors.New("message is empty")
	ErrInvalidSession    = errors.New("session id is empty")
	ErrSessionNotStarted = errors.New("session has not been started")
)

// GraphInput is one turn's request: a user message, or an order submission
// when Submit is set (submissions arrive from the cart surface, not as text).
type GraphInput struct {
	SessionID string
	Text      string
	Submit    bool
	Feedback  string
}

type GraphOutput struct {
	Reply string
	Done  bool
}

// GraphState is threaded through every node of one turn.
type GraphState struct {
	SessionID string
	Text      string
	Submit    bool
	Feedback  string
	Now       time.Time

	Session *statex.SessionState
	Cls     intentx.Classification

	Reply string
	Done  bool
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" && !in.Submit {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Submit:    in.Submit,
		Feedback:  strings.TrimSpace(in.Feedback),
		Now:       nowFn().UTC(),
	}, nil
}
