package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	qstashx "github.com/fieldline/sales-copilot/pkg/qstash"
)

func TestPublishDayEnd(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotPayload DayEndPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	client, err := qstashx.NewClient(qstashx.Config{URL: srv.URL, Token: "tok"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	notifier, err := NewQStashNotifier(client, Config{Destination: "https://consumer.example.com/day-end"})
	if err != nil {
		t.Fatalf("NewQStashNotifier() error = %v", err)
	}
	notifier.now = func() time.Time { return time.Date(2026, 8, 28, 18, 30, 0, 0, time.UTC) }

	date := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	if err := notifier.PublishDayEnd(context.Background(), "SR001", date, "great day"); err != nil {
		t.Fatalf("PublishDayEnd() error = %v", err)
	}

	if !strings.HasPrefix(gotPath, "/v2/publish/") {
		t.Fatalf("unexpected publish path: %q", gotPath)
	}
	if gotPayload.Event != "day_end" || gotPayload.RepID != "SR001" {
		t.Fatalf("unexpected payload: %+v", gotPayload)
	}
	if gotPayload.Date != "2026-08-28" {
		t.Fatalf("unexpected date: %q", gotPayload.Date)
	}
	if gotPayload.Summary != "great day" {
		t.Fatalf("unexpected summary: %q", gotPayload.Summary)
	}
}

func TestNewQStashNotifierValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewQStashNotifier(nil, Config{Destination: "x"}); err == nil {
		t.Fatal("nil client must be rejected")
	}

	client, err := qstashx.NewClient(qstashx.Config{URL: "https://qstash.example.com", Token: "tok"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := NewQStashNotifier(client, Config{}); err == nil {
		t.Fatal("empty destination must be rejected")
	}
}
