package state

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
)

// Phase labels where the conversation stands between turns.
type Phase string

const (
	PhaseAwaitingRep       Phase = "awaiting_rep"
	PhaseRouteReady        Phase = "route_ready"
	PhaseAwaitingAction    Phase = "awaiting_action"
	PhaseRetailerSelection Phase = "retailer_selection"
	PhaseRetailerDetail    Phase = "retailer_detail"
	PhasePitchReady        Phase = "pitch_ready"
	PhaseOrderLogged       Phase = "order_logged"
	PhaseDaySummary        Phase = "day_summary"
	PhaseEnded             Phase = "ended"
)

var (
	ErrNilSessionState = errors.New("session state is nil")
	ErrInvalidSession  = errors.New("session id is empty")
	ErrDayEnded        = errors.New("work day has ended")
)

// Route is the day's ordered visit plan. Its unmarshaler tolerates the legacy
// wrapped payload shape {"beat_route_plan": [...]} in addition to a bare
// array; anything else is a malformed route.
type Route []contractx.RouteStop

func (r *Route) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*r = nil
		return nil
	}

	if trimmed[0] == '[' {
		var stops []contractx.RouteStop
		if err := json.Unmarshal(trimmed, &stops); err != nil {
			return fmt.Errorf("%w: %v", contractx.ErrMalformedRoute, err)
		}
		*r = stops
		return nil
	}

	if trimmed[0] == '{' {
		var wrapped struct {
			Stops []contractx.RouteStop `json:"beat_route_plan"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return fmt.Errorf("%w: %v", contractx.ErrMalformedRoute, err)
		}
		if wrapped.Stops == nil {
			return fmt.Errorf("%w: wrapper object has no beat_route_plan key", contractx.ErrMalformedRoute)
		}
		*r = wrapped.Stops
		return nil
	}

	return fmt.Errorf("%w: expected array or wrapper object", contractx.ErrMalformedRoute)
}

// StopBySequence returns the stop with the given 1-based sequence number.
// Duplicate sequence numbers violate the route invariant; first found wins.
func (r Route) StopBySequence(n int) (contractx.RouteStop, bool) {
	for _, stop := range r {
		if stop.VisitSequence == n {
			return stop, true
		}
	}
	return contractx.RouteStop{}, false
}

// RetailerMatch is the currently selected retailer plus everything fetched
// and generated for the visit. Valid until the next match attempt or day end.
type RetailerMatch struct {
	Stop   contractx.RouteStop      `json:"stop"`
	Detail contractx.RetailerDetail `json:"detail"`
	Pitch  string                   `json:"pitch"`
}

// SessionState is the complete mutable record of one conversation.
// One instance per session; turns within a session are strictly sequential.
type SessionState struct {
	SessionID string `json:"session_id"`

	RepID   string         `json:"rep_id"`
	Weekday string         `json:"weekday"`
	Beat    contractx.Beat `json:"beat"`
	Route   Route          `json:"route,omitempty"`

	Current    *RetailerMatch       `json:"current_retailer,omitempty"`
	VisitedIDs []string             `json:"visited_ids,omitempty"`
	Cart       []contractx.CartLine `json:"cart,omitempty"`

	DayEnded    bool   `json:"day_ended"`
	LastMessage string `json:"last_message,omitempty"`

	// Notice carries a human-readable description of the last recoverable
	// failure, surfaced to the rep on the next prompt.
	Notice string `json:"notice,omitempty"`

	// SelectionFailed blocks an immediate selection retry from the same
	// stale "visit" phrase. Reset at the start of every user message.
	SelectionFailed bool `json:"selection_failed,omitempty"`

	Phase     Phase     `json:"phase"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSessionState(sessionID, repID, weekday string, now time.Time) *SessionState {
	return &SessionState{
		SessionID: sessionID,
		RepID:     repID,
		Weekday:   weekday,
		Phase:     PhaseAwaitingRep,
		UpdatedAt: now.UTC(),
	}
}

func (s *SessionState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

// BeginTurn resets per-message fields before the router runs.
func (s *SessionState) BeginTurn(message string) {
	s.LastMessage = message
	s.SelectionFailed = false
	s.Notice = ""
}

// RecordVisit marks a retailer's order step completed. Idempotent.
func (s *SessionState) RecordVisit(retailerID string) {
	if retailerID == "" {
		return
	}
	for _, id := range s.VisitedIDs {
		if id == retailerID {
			return
		}
	}
	s.VisitedIDs = append(s.VisitedIDs, retailerID)
}

func (s *SessionState) HasVisited(retailerID string) bool {
	for _, id := range s.VisitedIDs {
		if id == retailerID {
			return true
		}
	}
	return false
}

// IsDayComplete reports whether enough distinct retailers have been logged to
// cover the route. Deliberately count-based rather than set-equality: it does
// not check that the visited IDs are the route's IDs, and an over-count still
// reports complete.
func (s *SessionState) IsDayComplete() bool {
	if len(s.Route) == 0 {
		return false
	}
	return len(s.VisitedIDs) >= len(s.Route)
}

func (s *SessionState) ClearCart() {
	s.Cart = nil
}

func (s *SessionState) CartTotal() float64 {
	var total float64
	for _, line := range s.Cart {
		total += float64(line.Quantity) * line.UnitPrice
	}
	return total
}

func (s *SessionState) Validate() error {
	if s == nil {
		return ErrNilSessionState
	}
	if s.SessionID == "" {
		return ErrInvalidSession
	}
	if s.RepID == "" {
		return fmt.Errorf("%w: rep id is empty", contractx.ErrValidation)
	}
	if s.DayEnded && s.Phase != PhaseEnded {
		return fmt.Errorf("%w: day ended but phase=%s", contractx.ErrValidation, s.Phase)
	}
	if s.Phase == PhasePitchReady && s.Current == nil {
		return fmt.Errorf("%w: pitch ready without a matched retailer", contractx.ErrValidation)
	}
	if len(s.Cart) > 0 && s.Current == nil {
		return fmt.Errorf("%w: cart lines without a matched retailer", contractx.ErrValidation)
	}
	seen := make(map[int]bool, len(s.Route))
	for _, stop := range s.Route {
		if stop.VisitSequence < 1 {
			return fmt.Errorf("%w: visit sequence must be 1-based", contractx.ErrValidation)
		}
		if seen[stop.VisitSequence] {
			return fmt.Errorf("%w: duplicate visit sequence %d", contractx.ErrValidation, stop.VisitSequence)
		}
		seen[stop.VisitSequence] = true
	}
	return nil
}
