package contract

import "time"

// Beat is a named cluster of retail outlets assigned to a rep for one weekday.
type Beat struct {
	ID   string `json:"beat_id"`
	Name string `json:"beat_name"`
}

// RouteStop is one scheduled retailer visit in a beat route plan.
// VisitSequence is 1-based and unique within a route.
type RouteStop struct {
	RetailerID    string  `json:"retailer_id"`
	Name          string  `json:"name"`
	City          string  `json:"city"`
	Channel       string  `json:"channel"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	VisitSequence int     `json:"visit_sequence"`
}

type RetailerInfo struct {
	ID        string  `json:"retailer_id"`
	Name      string  `json:"name"`
	City      string  `json:"city"`
	Channel   string  `json:"channel"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type ProductRec struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Score       float64 `json:"score"`
}

// StockLine is one product's availability as recorded on the retailer's most
// recent visit.
type StockLine struct {
	VisitDate      string `json:"visit_date"`
	ProductID      string `json:"product_id"`
	ProductName    string `json:"product_name"`
	PackSize       string `json:"pack_size"`
	Category       string `json:"category"`
	AvailableStock int    `json:"available_stock"`
}

// RetailerDetail is the payload shown to the rep before a visit.
type RetailerDetail struct {
	Retailer        RetailerInfo `json:"retailer"`
	Recommendations []ProductRec `json:"recommendations"`
	LastStock       []StockLine  `json:"last_stock"`
}

// CartLine is one pending order line for the current retailer visit.
type CartLine struct {
	ProductID      string  `json:"product_id"`
	ProductName    string  `json:"product_name"`
	Quantity       int     `json:"quantity"`
	UnitPrice      float64 `json:"unit_price"`
	AvailableStock int     `json:"available_stock"`
}

// OrderRequest carries a full order submission to the order log.
type OrderRequest struct {
	VisitID    string     `json:"visit_id"`
	RetailerID string     `json:"retailer_id"`
	RepID      string     `json:"rep_id"`
	Lines      []CartLine `json:"lines"`
	Feedback   string     `json:"feedback"`
	Date       time.Time  `json:"date"`
}

// DayMetrics aggregates one rep's day for the end-of-day summary.
type DayMetrics struct {
	PlannedVisits int      `json:"planned_visits"`
	ActualVisits  int      `json:"actual_visits"`
	OrderCount    int      `json:"order_count"`
	Revenue       float64  `json:"revenue"`
	TopProducts   []string `json:"top_products"`
}

type SalesRep struct {
	ID   string `json:"agent_id"`
	Name string `json:"name"`
}
