package contract

import (
	"context"
	"time"
)

// RoutePlanner resolves a rep's assignment for a weekday.
// AssignedBeat returns ErrNoRouteFound when the rep has no beat that day.
type RoutePlanner interface {
	AssignedBeat(ctx context.Context, repID, weekday string) (Beat, error)
	RoutePlan(ctx context.Context, beatID string) ([]RouteStop, error)
}

// RetailerCatalog serves retailer detail payloads and product prices.
// Detail returns ErrRetailerNotFound for unknown IDs.
type RetailerCatalog interface {
	Detail(ctx context.Context, retailerID string) (RetailerDetail, error)
	ProductPrice(ctx context.Context, productID string) (float64, error)
}

// OrderLog persists a completed order and returns the invoice ID.
type OrderLog interface {
	LogOrder(ctx context.Context, req OrderRequest) (string, error)
}

type MetricsSource interface {
	DayMetrics(ctx context.Context, repID string, date time.Time, weekday string) (DayMetrics, error)
}

// LineSelector asks a text-generation collaborator to echo the candidate line
// that best matches the user's message.
type LineSelector interface {
	SelectLine(ctx context.Context, userMessage string, candidates []string) (string, error)
}

type PitchWriter interface {
	WritePitch(ctx context.Context, detail RetailerDetail) (string, error)
}

type SummaryWriter interface {
	WriteSummary(ctx context.Context, repID string, date time.Time, metrics DayMetrics) (string, error)
}

// Registry exposes the LLM collaborators by role.
type Registry interface {
	Selector() LineSelector
	Pitch() PitchWriter
	Summary() SummaryWriter
}

// Notifier publishes the end-of-day summary to an external consumer.
// Implementations must be best-effort; the dialogue never depends on them.
type Notifier interface {
	PublishDayEnd(ctx context.Context, repID string, date time.Time, summary string) error
}
