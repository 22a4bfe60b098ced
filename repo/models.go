package repo

import (
	"time"

	"github.com/uptrace/bun"
)

type SalesAgent struct {
	bun.BaseModel `bun:"table:sales_agents"`

	AgentID string `bun:"agent_id,pk"`
	Name    string `bun:"name"`
}

type BeatRow struct {
	bun.BaseModel `bun:"table:beats"`

	BeatID        string `bun:"beat_id,pk"`
	BeatName      string `bun:"beat_name"`
	AssignedAgent string `bun:"assigned_agent"`
	BeatDay       string `bun:"beat_day"`
}

type RetailerRow struct {
	bun.BaseModel `bun:"table:retailers"`

	RetailerID string  `bun:"retailer_id,pk"`
	Name       string  `bun:"name"`
	City       string  `bun:"city"`
	Channel    string  `bun:"channel"`
	Latitude   float64 `bun:"latitude"`
	Longitude  float64 `bun:"longitude"`
}

type RoutePlanRow struct {
	bun.BaseModel `bun:"table:beat_route_plan"`

	BeatID        string `bun:"beat_id"`
	RetailerID    string `bun:"retailer_id"`
	VisitSequence int    `bun:"visit_sequence"`
}

type ProductRow struct {
	bun.BaseModel `bun:"table:products"`

	ProductID   string  `bun:"product_id,pk"`
	ProductName string  `bun:"product_name"`
	PackSize    string  `bun:"pack_size"`
	Category    string  `bun:"category"`
	Price       float64 `bun:"price"`
}

type VisitRow struct {
	bun.BaseModel `bun:"table:visits"`

	VisitID           string    `bun:"visit_id,pk"`
	RetailerID        string    `bun:"retailer_id"`
	Date              time.Time `bun:"date"`
	ProductsSuggested string    `bun:"products_suggested"`
	Feedback          string    `bun:"feedback"`
	OrderPlaced       bool      `bun:"order_placed"`
	AgentID           string    `bun:"agent_id"`
}

type VisitStockRow struct {
	bun.BaseModel `bun:"table:visit_stock"`

	VisitID        string `bun:"visit_id"`
	ProductID      string `bun:"product_id"`
	RetailerID     string `bun:"retailer_id"`
	AvailableStock int    `bun:"available_stock"`
}

type SaleRow struct {
	bun.BaseModel `bun:"table:sales"`

	InvoiceID   string    `bun:"invoice_id"`
	VisitID     string    `bun:"visit_id"`
	RetailerID  string    `bun:"retailer_id"`
	ProductID   string    `bun:"product_id"`
	Quantity    int       `bun:"quantity"`
	Date        time.Time `bun:"date"`
	TotalAmount float64   `bun:"total_amount"`
}

type RecommendationRow struct {
	bun.BaseModel `bun:"table:product_recommendations_ml"`

	RetailerID string  `bun:"retailer_id"`
	ProductID  string  `bun:"product_id"`
	FinalScore float64 `bun:"final_score"`
}
