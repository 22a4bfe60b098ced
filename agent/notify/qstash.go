// Package notify publishes end-of-day events to downstream consumers.
package notify

import (
	"context"
	"errors"
	"time"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
	qstashx "github.com/fieldline/sales-copilot/pkg/qstash"
)

type Config struct {
	// Destination is the consumer URL the day-end event is delivered to.
	Destination string `split_words:"true" required:"true"`
}

// DayEndPayload is the message body delivered for each closed work day.
type DayEndPayload struct {
	Event   string    `json:"event"`
	RepID   string    `json:"rep_id"`
	Date    string    `json:"date"`
	Summary string    `json:"summary"`
	SentAt  time.Time `json:"sent_at"`
}

// QStashNotifier delivers day-end summaries through the QStash publish API.
type QStashNotifier struct {
	client      *qstashx.Client
	destination string
	now         func() time.Time
}

func NewQStashNotifier(client *qstashx.Client, cfg Config) (*QStashNotifier, error) {
	if client == nil {
		return nil, errors.New("qstash client is required")
	}
	if cfg.Destination == "" {
		return nil, errors.New("qstash destination is required")
	}
	return &QStashNotifier{
		client:      client,
		destination: cfg.Destination,
		now:         time.Now,
	}, nil
}

var _ contractx.Notifier = (*QStashNotifier)(nil)

func (n *QStashNotifier) PublishDayEnd(ctx context.Context, repID string, date time.Time, summary string) error {
	return n.client.PublishJSON(ctx, n.destination, DayEndPayload{
		Event:   "day_end",
		RepID:   repID,
		Date:    date.UTC().Format("2006-01-02"),
		Summary: summary,
		SentAt:  n.now().UTC(),
	})
}
