package assistants

import (
	"strings"
	"testing"
	"time"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
)

func TestStructuredSummary(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 8, 28, 18, 0, 0, 0, time.UTC)
	got := StructuredSummary("SR001", date, contractx.DayMetrics{
		PlannedVisits: 8,
		ActualVisits:  6,
		OrderCount:    5,
		Revenue:       12450.5,
		TopProducts:   []string{"Masala Chips (40)", "Cola 500ml (22)"},
	})

	for _, want := range []string{
		"Sales Rep SR001 summary for 2026-08-28:",
		"- Planned visits: 8",
		"- Actual visits: 6",
		"- Total orders: 5",
		"- Total revenue: ₹12450.50",
		"- Top products: Masala Chips (40), Cola 500ml (22)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("summary missing %q:\n%s", want, got)
		}
	}
}

func TestStructuredSummaryNoProducts(t *testing.T) {
	t.Parallel()

	got := StructuredSummary("SR002", time.Now(), contractx.DayMetrics{})
	if !strings.Contains(got, "- Top products: None") {
		t.Fatalf("expected None placeholder:\n%s", got)
	}
}

func TestPitchPayload(t *testing.T) {
	t.Parallel()

	detail := contractx.RetailerDetail{
		Retailer: contractx.RetailerInfo{Name: "Store A", City: "Pune", Channel: "GT"},
		Recommendations: []contractx.ProductRec{
			{ProductID: "P1", ProductName: "Masala Chips", Score: 0.91},
		},
		LastStock: []contractx.StockLine{
			{ProductID: "P2", ProductName: "Cola 500ml", AvailableStock: 4, VisitDate: "2026-08-21"},
		},
	}

	got := pitchPayload(detail)
	for _, want := range []string{
		"- Name: Store A",
		"- Location: Pune (GT channel)",
		"- Cola 500ml (Available stock: 4 units, Visit Date: 2026-08-21)",
		"- Masala Chips (Score: 0.91)",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("payload missing %q:\n%s", want, got)
		}
	}
}

func TestPitchPayloadEmptySections(t *testing.T) {
	t.Parallel()

	got := pitchPayload(contractx.RetailerDetail{
		Retailer: contractx.RetailerInfo{Name: "Store B", City: "Pune", Channel: "MT"},
	})
	if !strings.Contains(got, "No stock data available.") {
		t.Fatalf("expected stock placeholder:\n%s", got)
	}
	if !strings.Contains(got, "Recommended Products to Push:\nNone") {
		t.Fatalf("expected recommendations placeholder:\n%s", got)
	}
}
