package models

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mmretail/pos_backend/config"
	"github.com/shopspring/decimal"
)

// Reporting is read-only and lock-free: aggregates run concurrently with
// writers and are not required to observe in-flight sales atomically.
// All windows are inclusive of both day boundaries in UTC: [start 00:00,
// end 00:00 next day).

type SalesSummary struct {
	Count   int64           `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
	Tax     decimal.Decimal `json:"tax"`
	Average decimal.Decimal `json:"average"`
}

type TopProduct struct {
	ProductId     int             `json:"product_id"`
	Name          string          `json:"name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

type RevenueBucket struct {
	BucketLabel string          `json:"bucket_label"`
	Revenue     decimal.Decimal `json:"revenue"`
	Count       int64           `json:"count"`
}

func reportWindow(start, end time.Time) (time.Time, time.Time) {
	s := start.UTC()
	e := end.UTC()
	from := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(e.Year(), e.Month(), e.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return from, to
}

// GetSalesSummary aggregates active (non-void) sales in the window.
// Average is revenue/count rounded to 2 places, zero when there are no sales.
func GetSalesSummary(ctx context.Context, start, end time.Time) (*SalesSummary, error) {
	db := config.GetDB()
	from, to := reportWindow(start, end)

	var row struct {
		Count   int64
		Revenue decimal.Decimal
		Tax     decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&Sale{}).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS revenue, COALESCE(SUM(tax), 0) AS tax").
		Where("is_void = ? AND created_at >= ? AND created_at < ?", false, from, to).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	summary := SalesSummary{
		Count:   row.Count,
		Revenue: row.Revenue,
		Tax:     row.Tax,
	}
	if row.Count > 0 {
		summary.Average = row.Revenue.DivRound(decimal.NewFromInt(row.Count), 2)
	}

	return &summary, nil
}

// GetTopProducts ranks products sold in active sales within the window by
// revenue. Ties break by quantity descending, then product id ascending, so
// the ordering is deterministic.
func GetTopProducts(ctx context.Context, start, end time.Time, limit int) ([]TopProduct, error) {
	db := config.GetDB()
	from, to := reportWindow(start, end)

	if limit <= 0 {
		limit = config.SearchLimit
	}
	if limit > config.MaxSearchLimit {
		limit = config.MaxSearchLimit
	}

	var rows []TopProduct
	err := db.WithContext(ctx).Raw(`
		SELECT si.product_id AS product_id,
		       p.name AS name,
		       SUM(si.quantity) AS total_quantity,
		       SUM(si.line_subtotal) AS total_revenue
		FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		JOIN products p ON p.id = si.product_id
		WHERE s.is_void = ? AND s.created_at >= ? AND s.created_at < ?
		GROUP BY si.product_id, p.name
		ORDER BY total_revenue DESC, total_quantity DESC, si.product_id ASC
		LIMIT ?`, false, from, to, limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return rows, nil
}

// GetRevenueTrends buckets active-sale totals by day, ISO-8601 week or month.
// The result is sparse: buckets with no activity are omitted, not zero-filled.
// Buckets are ordered chronologically.
func GetRevenueTrends(ctx context.Context, start, end time.Time, granularity TrendGranularity) ([]RevenueBucket, error) {
	db := config.GetDB()
	from, to := reportWindow(start, end)

	if !granularity.Valid() {
		return nil, &ValidationError{Field: "granularity", Message: "must be one of day, week, month"}
	}

	var rows []struct {
		CreatedAt time.Time
		Total     decimal.Decimal
	}
	err := db.WithContext(ctx).Model(&Sale{}).
		Select("created_at, total").
		Where("is_void = ? AND created_at >= ? AND created_at < ?", false, from, to).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	buckets := map[string]*RevenueBucket{}
	starts := map[string]time.Time{}
	for _, row := range rows {
		t := row.CreatedAt.UTC()
		label := bucketLabel(t, granularity)
		b, ok := buckets[label]
		if !ok {
			b = &RevenueBucket{BucketLabel: label}
			buckets[label] = b
			starts[label] = t
		}
		b.Revenue = b.Revenue.Add(row.Total)
		b.Count++
		if t.Before(starts[label]) {
			starts[label] = t
		}
	}

	result := make([]RevenueBucket, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return starts[result[i].BucketLabel].Before(starts[result[j].BucketLabel])
	})

	return result, nil
}

func bucketLabel(t time.Time, granularity TrendGranularity) string {
	switch granularity {
	case TrendGranularityWeek:
		// ISO week; stable across year boundaries.
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case TrendGranularityMonth:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}
