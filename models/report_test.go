package models_test

import (
	"context"
	"testing"
	"time"

	"github.com/mmretail/pos_backend/config"
	"github.com/mmretail/pos_backend/models"
	"github.com/mmretail/pos_backend/utils"
	"github.com/shopspring/decimal"
)

// insertSaleFixture writes a sale row directly, bypassing the orchestrator,
// so reporting tests can control created_at and void state.
func insertSaleFixture(t *testing.T, number string, createdAt time.Time, total decimal.Decimal, isVoid bool, items []models.SaleItem) *models.Sale {
	t.Helper()
	db := config.GetDB()

	tax := total.Div(decimal.NewFromFloat(1.12)).Mul(decimal.NewFromFloat(0.12)).Round(2)
	sale := models.Sale{
		SaleNumber:    number,
		ReceiptToken:  "tok-" + number,
		Items:         items,
		Subtotal:      total.Sub(tax),
		Tax:           tax,
		Total:         total,
		PaymentMethod: models.PaymentMethodCash,
		IsVoid:        utils.NewFalse(),
		CreatedAt:     createdAt,
	}
	if isVoid {
		sale.IsVoid = utils.NewTrue()
		now := createdAt.Add(time.Hour)
		sale.VoidedAt = &now
		sale.VoidedBy = 1
	}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("insert sale fixture %s: %v", number, err)
	}
	return &sale
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

// Fixture from the engine's contract: 5 persisted sales, 2 void; the summary
// must count revenue from the 3 active sales only.
func TestGetSalesSummary_ExcludesVoidSales(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	base := day(2026, time.March, 10)
	insertSaleFixture(t, "SALE-20260310-0001", base, decimal.NewFromInt(112), false, nil)
	insertSaleFixture(t, "SALE-20260310-0002", base, decimal.NewFromInt(224), false, nil)
	insertSaleFixture(t, "SALE-20260311-0001", base.AddDate(0, 0, 1), decimal.NewFromInt(336), false, nil)
	insertSaleFixture(t, "SALE-20260311-0002", base.AddDate(0, 0, 1), decimal.NewFromInt(100), true, nil)
	insertSaleFixture(t, "SALE-20260311-0003", base.AddDate(0, 0, 1), decimal.NewFromInt(200), true, nil)

	summary, err := models.GetSalesSummary(ctx, base, base.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("GetSalesSummary: %v", err)
	}

	if summary.Count != 3 {
		t.Fatalf("expected count 3, got %d", summary.Count)
	}
	wantRevenue := decimal.NewFromInt(112 + 224 + 336)
	if !summary.Revenue.Equal(wantRevenue) {
		t.Fatalf("expected revenue %s (voided 300 excluded), got %s", wantRevenue, summary.Revenue)
	}
	wantAverage := wantRevenue.DivRound(decimal.NewFromInt(3), 2)
	if !summary.Average.Equal(wantAverage) {
		t.Fatalf("expected average %s, got %s", wantAverage, summary.Average)
	}
}

func TestGetSalesSummary_EmptyWindow(t *testing.T) {
	setupTestDB(t)

	summary, err := models.GetSalesSummary(context.Background(), day(2026, time.January, 1), day(2026, time.January, 31))
	if err != nil {
		t.Fatalf("GetSalesSummary: %v", err)
	}
	if summary.Count != 0 {
		t.Fatalf("expected count 0, got %d", summary.Count)
	}
	if !summary.Revenue.IsZero() || !summary.Average.IsZero() {
		t.Fatalf("expected zero revenue and average, got %s / %s", summary.Revenue, summary.Average)
	}
}

// The window is inclusive of both boundary days.
func TestGetSalesSummary_InclusiveDayBoundaries(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	insertSaleFixture(t, "SALE-20260301-0001", day(2026, time.March, 1), decimal.NewFromInt(112), false, nil)
	insertSaleFixture(t, "SALE-20260305-0001", day(2026, time.March, 5), decimal.NewFromInt(112), false, nil)
	insertSaleFixture(t, "SALE-20260306-0001", day(2026, time.March, 6), decimal.NewFromInt(112), false, nil)

	summary, err := models.GetSalesSummary(ctx, day(2026, time.March, 1), day(2026, time.March, 5))
	if err != nil {
		t.Fatalf("GetSalesSummary: %v", err)
	}
	if summary.Count != 2 {
		t.Fatalf("expected the March 1 and March 5 sales only, got count %d", summary.Count)
	}
}

func TestGetTopProducts_OrderAndTieBreaks(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	big := createTestProduct(t, "Big", decimal.NewFromInt(50), 100)
	tieHighQty := createTestProduct(t, "TieHighQty", decimal.NewFromInt(10), 100)
	tieLowQty := createTestProduct(t, "TieLowQty", decimal.NewFromInt(20), 100)

	at := day(2026, time.April, 2)
	insertSaleFixture(t, "SALE-20260402-0001", at, decimal.NewFromInt(112), false, []models.SaleItem{
		{ProductId: big.ID, Quantity: 2, UnitPrice: decimal.NewFromInt(50), LineSubtotal: decimal.NewFromInt(100)},
		{ProductId: tieHighQty.ID, Quantity: 6, UnitPrice: decimal.NewFromInt(10), LineSubtotal: decimal.NewFromInt(60)},
	})
	insertSaleFixture(t, "SALE-20260402-0002", at, decimal.NewFromInt(112), false, []models.SaleItem{
		{ProductId: tieLowQty.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(20), LineSubtotal: decimal.NewFromInt(60)},
	})
	// A voided sale's items must not count.
	insertSaleFixture(t, "SALE-20260402-0003", at, decimal.NewFromInt(560), true, []models.SaleItem{
		{ProductId: tieLowQty.ID, Quantity: 10, UnitPrice: decimal.NewFromInt(20), LineSubtotal: decimal.NewFromInt(200)},
	})

	top, err := models.GetTopProducts(ctx, at, at, 10)
	if err != nil {
		t.Fatalf("GetTopProducts: %v", err)
	}
	if len(top) != 3 {
		t.Fatalf("expected 3 products, got %d", len(top))
	}
	if top[0].ProductId != big.ID {
		t.Fatalf("expected highest revenue product first, got %d", top[0].ProductId)
	}
	// Revenue tie (60 vs 60): higher quantity wins.
	if top[1].ProductId != tieHighQty.ID || top[2].ProductId != tieLowQty.ID {
		t.Fatalf("expected tie broken by quantity desc, got %d then %d", top[1].ProductId, top[2].ProductId)
	}
	if top[2].TotalQuantity != 3 {
		t.Fatalf("voided sale items must be excluded, got quantity %d", top[2].TotalQuantity)
	}

	limited, err := models.GetTopProducts(ctx, at, at, 1)
	if err != nil {
		t.Fatalf("GetTopProducts limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ProductId != big.ID {
		t.Fatalf("expected truncation to the top product, got %v", limited)
	}
}

func TestGetRevenueTrends_DailyBucketsAreSparse(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	insertSaleFixture(t, "SALE-20260501-0001", day(2026, time.May, 1), decimal.NewFromInt(112), false, nil)
	insertSaleFixture(t, "SALE-20260501-0002", day(2026, time.May, 1), decimal.NewFromInt(112), false, nil)
	// May 2 has no sales: the bucket must be omitted, not zero-filled.
	insertSaleFixture(t, "SALE-20260503-0001", day(2026, time.May, 3), decimal.NewFromInt(224), false, nil)
	insertSaleFixture(t, "SALE-20260503-0002", day(2026, time.May, 3), decimal.NewFromInt(560), true, nil)

	buckets, err := models.GetRevenueTrends(ctx, day(2026, time.May, 1), day(2026, time.May, 7), models.TrendGranularityDay)
	if err != nil {
		t.Fatalf("GetRevenueTrends: %v", err)
	}
	if len(buckets) != 2 {
		t.Fatalf("expected 2 sparse buckets, got %d", len(buckets))
	}
	if buckets[0].BucketLabel != "2026-05-01" || buckets[1].BucketLabel != "2026-05-03" {
		t.Fatalf("unexpected bucket order/labels: %v", buckets)
	}
	if buckets[0].Count != 2 || !buckets[0].Revenue.Equal(decimal.NewFromInt(224)) {
		t.Fatalf("unexpected first bucket: %+v", buckets[0])
	}
	if buckets[1].Count != 1 || !buckets[1].Revenue.Equal(decimal.NewFromInt(224)) {
		t.Fatalf("void sales must be excluded from trends: %+v", buckets[1])
	}
}

func TestGetRevenueTrends_WeekAndMonthLabels(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	// 2026-01-01 falls in ISO week 2026-W01; 2025-12-29 belongs to it too.
	insertSaleFixture(t, "SALE-20251229-0001", day(2025, time.December, 29), decimal.NewFromInt(112), false, nil)
	insertSaleFixture(t, "SALE-20260101-0001", day(2026, time.January, 1), decimal.NewFromInt(112), false, nil)

	weeks, err := models.GetRevenueTrends(ctx, day(2025, time.December, 28), day(2026, time.January, 4), models.TrendGranularityWeek)
	if err != nil {
		t.Fatalf("GetRevenueTrends week: %v", err)
	}
	if len(weeks) != 1 {
		t.Fatalf("expected both sales in one ISO week bucket, got %d buckets", len(weeks))
	}
	if weeks[0].BucketLabel != "2026-W01" {
		t.Fatalf("expected bucket 2026-W01, got %s", weeks[0].BucketLabel)
	}

	months, err := models.GetRevenueTrends(ctx, day(2025, time.December, 28), day(2026, time.January, 4), models.TrendGranularityMonth)
	if err != nil {
		t.Fatalf("GetRevenueTrends month: %v", err)
	}
	if len(months) != 2 {
		t.Fatalf("expected buckets 2025-12 and 2026-01, got %d", len(months))
	}
	if months[0].BucketLabel != "2025-12" || months[1].BucketLabel != "2026-01" {
		t.Fatalf("unexpected month labels: %v", months)
	}
}

func TestGetRevenueTrends_InvalidGranularity(t *testing.T) {
	setupTestDB(t)

	_, err := models.GetRevenueTrends(context.Background(), day(2026, time.May, 1), day(2026, time.May, 7), models.TrendGranularity("hour"))
	if err == nil {
		t.Fatal("expected validation error for unknown granularity")
	}
}
