package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	contractx "github.com/fieldline/sales-copilot/agent/contract"
)

// Store implements the dialogue's data-facing contracts over one bun handle.
type Store struct {
	db *bun.DB
}

func New(db *bun.DB) *Store {
	return &Store{db: db}
}

// ActiveReps lists every sales agent that can start a session.
func (s *Store) ActiveReps(ctx context.Context) ([]contractx.SalesRep, error) {
	var rows []SalesAgent
	if err := s.db.NewSelect().
		Model(&rows).
		Order("agent_id ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list sales agents: %w", err)
	}

	reps := make([]contractx.SalesRep, 0, len(rows))
	for _, row := range rows {
		reps = append(reps, contractx.SalesRep{ID: row.AgentID, Name: row.Name})
	}
	return reps, nil
}

// AssignedBeat resolves the rep's beat for the weekday. A rep has at most one
// beat per day; missing assignment is ErrNoRouteFound.
func (s *Store) AssignedBeat(ctx context.Context, repID, weekday string) (contractx.Beat, error) {
	var row BeatRow
	err := s.db.NewSelect().
		Model(&row).
		Column("beat_id", "beat_name").
		Where("assigned_agent = ?", repID).
		Where("beat_day = ?", weekday).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return contractx.Beat{}, fmt.Errorf("%w: rep=%s weekday=%s", contractx.ErrNoRouteFound, repID, weekday)
	}
	if err != nil {
		return contractx.Beat{}, fmt.Errorf("fetch assigned beat: %w", err)
	}
	return contractx.Beat{ID: row.BeatID, Name: row.BeatName}, nil
}

// RoutePlan returns the beat's stops joined with retailer detail, ordered by
// visit sequence.
func (s *Store) RoutePlan(ctx context.Context, beatID string) ([]contractx.RouteStop, error) {
	var rows []struct {
		RetailerID    string  `bun:"retailer_id"`
		Name          string  `bun:"name"`
		City          string  `bun:"city"`
		Channel       string  `bun:"channel"`
		Latitude      float64 `bun:"latitude"`
		Longitude     float64 `bun:"longitude"`
		VisitSequence int     `bun:"visit_sequence"`
	}
	err := s.db.NewSelect().
		TableExpr("beat_route_plan AS brp").
		ColumnExpr("brp.retailer_id, r.name, r.city, r.channel, r.latitude, r.longitude, brp.visit_sequence").
		Join("JOIN retailers AS r ON r.retailer_id = brp.retailer_id").
		Where("brp.beat_id = ?", beatID).
		OrderExpr("brp.visit_sequence ASC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch route plan: %w", err)
	}

	stops := make([]contractx.RouteStop, 0, len(rows))
	for _, row := range rows {
		stops = append(stops, contractx.RouteStop{
			RetailerID:    row.RetailerID,
			Name:          row.Name,
			City:          row.City,
			Channel:       row.Channel,
			Latitude:      row.Latitude,
			Longitude:     row.Longitude,
			VisitSequence: row.VisitSequence,
		})
	}
	return stops, nil
}

// Detail assembles the pre-visit payload: retailer master data, ranked
// product recommendations, and the stock captured on the most recent visit.
func (s *Store) Detail(ctx context.Context, retailerID string) (contractx.RetailerDetail, error) {
	var retailer RetailerRow
	err := s.db.NewSelect().
		Model(&retailer).
		Where("retailer_id = ?", retailerID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return contractx.RetailerDetail{}, fmt.Errorf("%w: id=%s", contractx.ErrRetailerNotFound, retailerID)
	}
	if err != nil {
		return contractx.RetailerDetail{}, fmt.Errorf("fetch retailer: %w", err)
	}

	detail := contractx.RetailerDetail{
		Retailer: contractx.RetailerInfo{
			ID:        retailer.RetailerID,
			Name:      retailer.Name,
			City:      retailer.City,
			Channel:   retailer.Channel,
			Latitude:  retailer.Latitude,
			Longitude: retailer.Longitude,
		},
	}

	recs, err := s.recommendations(ctx, retailerID)
	if err != nil {
		return contractx.RetailerDetail{}, err
	}
	detail.Recommendations = recs

	stock, err := s.lastVisitStock(ctx, retailerID)
	if err != nil {
		return contractx.RetailerDetail{}, err
	}
	detail.LastStock = stock

	return detail, nil
}

func (s *Store) recommendations(ctx context.Context, retailerID string) ([]contractx.ProductRec, error) {
	var rows []struct {
		ProductID   string  `bun:"product_id"`
		ProductName string  `bun:"product_name"`
		Score       float64 `bun:"score"`
	}
	err := s.db.NewSelect().
		TableExpr("product_recommendations_ml AS prm").
		ColumnExpr("prm.product_id, p.product_name, round(prm.final_score::numeric, 2) AS score").
		Join("JOIN products AS p ON p.product_id = prm.product_id").
		Where("prm.retailer_id = ?", retailerID).
		OrderExpr("prm.final_score DESC").
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch recommendations: %w", err)
	}

	recs := make([]contractx.ProductRec, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, contractx.ProductRec{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Score:       row.Score,
		})
	}
	return recs, nil
}

func (s *Store) lastVisitStock(ctx context.Context, retailerID string) ([]contractx.StockLine, error) {
	var visit VisitRow
	err := s.db.NewSelect().
		Model(&visit).
		Column("visit_id").
		Where("retailer_id = ?", retailerID).
		OrderExpr("date DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch latest visit: %w", err)
	}

	var rows []struct {
		VisitDate      time.Time `bun:"visit_date"`
		ProductID      string    `bun:"product_id"`
		ProductName    string    `bun:"product_name"`
		PackSize       string    `bun:"pack_size"`
		Category       string    `bun:"category"`
		AvailableStock int       `bun:"available_stock"`
	}
	err = s.db.NewSelect().
		TableExpr("visits AS v").
		ColumnExpr("v.date AS visit_date, vs.product_id, p.product_name, p.pack_size, p.category, vs.available_stock").
		Join("JOIN visit_stock AS vs ON vs.visit_id = v.visit_id").
		Join("JOIN products AS p ON p.product_id = vs.product_id").
		Where("vs.visit_id = ?", visit.VisitID).
		Scan(ctx, &rows)
	if err != nil {
		return nil, fmt.Errorf("fetch visit stock: %w", err)
	}

	lines := make([]contractx.StockLine, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, contractx.StockLine{
			VisitDate:      row.VisitDate.Format("2006-01-02"),
			ProductID:      row.ProductID,
			ProductName:    row.ProductName,
			PackSize:       row.PackSize,
			Category:       row.Category,
			AvailableStock: row.AvailableStock,
		})
	}
	return lines, nil
}

// ProductPrice returns the list price for one product.
func (s *Store) ProductPrice(ctx context.Context, productID string) (float64, error) {
	var product ProductRow
	err := s.db.NewSelect().
		Model(&product).
		Column("price").
		Where("product_id = ?", productID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("product %s not found", productID)
	}
	if err != nil {
		return 0, fmt.Errorf("fetch product price: %w", err)
	}
	return product.Price, nil
}

// LogOrder writes the visit, its stock snapshot, and the sales lines in one
// transaction. The invoice ID is derived from the visit ID.
func (s *Store) LogOrder(ctx context.Context, req contractx.OrderRequest) (string, error) {
	if req.VisitID == "" {
		return "", fmt.Errorf("%w: visit id is empty", contractx.ErrValidation)
	}
	if req.RetailerID == "" {
		return "", fmt.Errorf("%w: retailer id is empty", contractx.ErrValidation)
	}

	invoiceID := "INV_" + req.VisitID
	day := req.Date.UTC().Truncate(24 * time.Hour)

	productIDs := make([]string, 0, len(req.Lines))
	for _, line := range req.Lines {
		productIDs = append(productIDs, line.ProductID)
	}

	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		visit := &VisitRow{
			VisitID:           req.VisitID,
			RetailerID:        req.RetailerID,
			Date:              day,
			ProductsSuggested: strings.Join(productIDs, ", "),
			Feedback:          req.Feedback,
			OrderPlaced:       len(req.Lines) > 0,
			AgentID:           req.RepID,
		}
		if _, err := tx.NewInsert().Model(visit).Exec(ctx); err != nil {
			return fmt.Errorf("insert visit: %w", err)
		}

		for _, line := range req.Lines {
			stock := &VisitStockRow{
				VisitID:        req.VisitID,
				ProductID:      line.ProductID,
				RetailerID:     req.RetailerID,
				AvailableStock: line.AvailableStock,
			}
			if _, err := tx.NewInsert().Model(stock).Exec(ctx); err != nil {
				return fmt.Errorf("insert visit stock for %s: %w", line.ProductID, err)
			}

			sale := &SaleRow{
				InvoiceID:   invoiceID,
				VisitID:     req.VisitID,
				RetailerID:  req.RetailerID,
				ProductID:   line.ProductID,
				Quantity:    line.Quantity,
				Date:        day,
				TotalAmount: float64(line.Quantity) * line.UnitPrice,
			}
			if _, err := tx.NewInsert().Model(sale).Exec(ctx); err != nil {
				return fmt.Errorf("insert sale for %s: %w", line.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("log order for visit %s: %w", req.VisitID, err)
	}

	return invoiceID, nil
}

// DayMetrics aggregates the rep's day for the summary: plan size, distinct
// retailers actually visited, order and revenue totals, and the top three
// products by quantity.
func (s *Store) DayMetrics(ctx context.Context, repID string, date time.Time, weekday string) (contractx.DayMetrics, error) {
	var metrics contractx.DayMetrics
	day := date.UTC().Format("2006-01-02")

	planned, err := s.db.NewSelect().
		TableExpr("beat_route_plan AS brp").
		Join("JOIN beats AS b ON b.beat_id = brp.beat_id").
		Where("b.assigned_agent = ?", repID).
		Where("b.beat_day = ?", weekday).
		Count(ctx)
	if err != nil {
		return metrics, fmt.Errorf("count planned visits: %w", err)
	}
	metrics.PlannedVisits = planned

	err = s.db.NewSelect().
		TableExpr("visits").
		ColumnExpr("count(DISTINCT retailer_id)").
		Where("agent_id = ?", repID).
		Where("DATE(date) = ?", day).
		Scan(ctx, &metrics.ActualVisits)
	if err != nil {
		return metrics, fmt.Errorf("count actual visits: %w", err)
	}

	var totals struct {
		Orders  int     `bun:"orders"`
		Revenue float64 `bun:"revenue"`
	}
	err = s.db.NewSelect().
		TableExpr("sales AS s").
		ColumnExpr("count(DISTINCT s.invoice_id) AS orders, coalesce(sum(s.total_amount), 0) AS revenue").
		Join("JOIN visits AS v ON v.visit_id = s.visit_id").
		Where("v.agent_id = ?", repID).
		Where("DATE(s.date) = ?", day).
		Scan(ctx, &totals)
	if err != nil {
		return metrics, fmt.Errorf("sum sales: %w", err)
	}
	metrics.OrderCount = totals.Orders
	metrics.Revenue = totals.Revenue

	var top []struct {
		ProductName string `bun:"product_name"`
		Qty         int    `bun:"qty"`
	}
	err = s.db.NewSelect().
		TableExpr("sales AS s").
		ColumnExpr("p.product_name, sum(s.quantity) AS qty").
		Join("JOIN products AS p ON p.product_id = s.product_id").
		Join("JOIN visits AS v ON v.visit_id = s.visit_id").
		Where("v.agent_id = ?", repID).
		Where("DATE(s.date) = ?", day).
		GroupExpr("p.product_name").
		OrderExpr("qty DESC").
		Limit(3).
		Scan(ctx, &top)
	if err != nil {
		return metrics, fmt.Errorf("rank products: %w", err)
	}

	for _, row := range top {
		metrics.TopProducts = append(metrics.TopProducts, fmt.Sprintf("%s (%d)", row.ProductName, row.Qty))
	}
	return metrics, nil
}
