package models_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mmretail/pos_backend/config"
	"github.com/mmretail/pos_backend/models"
	"github.com/shopspring/decimal"
)

func TestReserveStock_FailsWhenShort(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	product := createTestProduct(t, "Water", decimal.NewFromInt(500), 2)

	err := models.ReserveStock(ctx, config.GetDB(), product.ID, 5)
	var insufficient *models.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.Available != 2 || insufficient.Requested != 5 {
		t.Fatalf("expected available=2 requested=5, got available=%d requested=%d",
			insufficient.Available, insufficient.Requested)
	}
	if got := getStock(t, product.ID); got != 2 {
		t.Fatalf("stock must be untouched after failed reserve, got %d", got)
	}
}

func TestReserveStock_DecrementsWhenEnough(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	product := createTestProduct(t, "Water", decimal.NewFromInt(500), 2)

	if err := models.ReserveStock(ctx, config.GetDB(), product.ID, 2); err != nil {
		t.Fatalf("ReserveStock: %v", err)
	}
	if got := getStock(t, product.ID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}

func TestReserveStock_UnknownProduct(t *testing.T) {
	setupTestDB(t)

	err := models.ReserveStock(context.Background(), config.GetDB(), 9999, 1)
	var notFound *models.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestRestoreStock_Increments(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	product := createTestProduct(t, "Water", decimal.NewFromInt(500), 3)

	if err := models.RestoreStock(ctx, config.GetDB(), product.ID, 4); err != nil {
		t.Fatalf("RestoreStock: %v", err)
	}
	if got := getStock(t, product.ID); got != 7 {
		t.Fatalf("expected stock 7, got %d", got)
	}
}

// A multi-item reservation that fails on one product must leave every other
// product's stock exactly as it was.
func TestReserveStockItems_CompensatesOnFailure(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	productA := createTestProduct(t, "A", decimal.NewFromInt(100), 5)
	productB := createTestProduct(t, "B", decimal.NewFromInt(100), 0)

	err := models.ReserveStockItems(ctx, []models.StockRequest{
		{ProductId: productA.ID, Quantity: 2},
		{ProductId: productB.ID, Quantity: 1},
	})
	var insufficient *models.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.ProductId != productB.ID {
		t.Fatalf("expected failure on product %d, got %d", productB.ID, insufficient.ProductId)
	}
	if got := getStock(t, productA.ID); got != 5 {
		t.Fatalf("product A must be fully compensated, expected 5 got %d", got)
	}
	if got := getStock(t, productB.ID); got != 0 {
		t.Fatalf("product B must be untouched, expected 0 got %d", got)
	}
}

// After a compensated failure the movement trail must still match the stock
// counter exactly: the reservation never produced a row, so its reversal must
// not either. A surplus row here would make stock-recount "repair" healthy
// stock.
func TestReserveStockItems_TrailMatchesStockAfterCompensation(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	productA := createTestProduct(t, "A", decimal.NewFromInt(100), 10)
	productB := createTestProduct(t, "B", decimal.NewFromInt(100), 0)

	err := models.ReserveStockItems(ctx, []models.StockRequest{
		{ProductId: productA.ID, Quantity: 2},
		{ProductId: productB.ID, Quantity: 1},
	})
	var insufficient *models.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}

	if stock, sum := getStock(t, productA.ID), sumMovements(t, productA.ID); stock != 10 || sum != 10 {
		t.Fatalf("product A: expected stock 10 and movement sum 10, got stock=%d sum=%d", stock, sum)
	}
	if stock, sum := getStock(t, productB.ID), sumMovements(t, productB.ID); stock != 0 || sum != 0 {
		t.Fatalf("product B: expected stock 0 and movement sum 0, got stock=%d sum=%d", stock, sum)
	}
}

// A restore that fails mid-compensation must surface as IntegrityError with
// the failing product identified, while the remaining restores still run.
func TestCompensateReservations_EscalatesRestoreFailure(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()
	db := config.GetDB()

	kept := createTestProduct(t, "Kept", decimal.NewFromInt(100), 10)
	gone := createTestProduct(t, "Gone", decimal.NewFromInt(100), 10)

	if err := models.ReserveStock(ctx, db, kept.ID, 3); err != nil {
		t.Fatalf("ReserveStock kept: %v", err)
	}
	if err := models.ReserveStock(ctx, db, gone.ID, 3); err != nil {
		t.Fatalf("ReserveStock gone: %v", err)
	}
	// The product row vanishes before compensation runs, so its restore
	// cannot succeed.
	if err := db.Delete(&models.Product{}, gone.ID).Error; err != nil {
		t.Fatalf("delete product: %v", err)
	}

	cause := errors.New("persist failed")
	err := models.CompensateReservations([]models.StockRequest{
		{ProductId: gone.ID, Quantity: 3},
		{ProductId: kept.ID, Quantity: 3},
	}, cause)

	var integrity *models.IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected IntegrityError, got %v", err)
	}
	if integrity.ProductId != gone.ID {
		t.Fatalf("expected failing product %d in error, got %d", gone.ID, integrity.ProductId)
	}
	if integrity.Cause != cause {
		t.Fatalf("expected original cause to be carried, got %v", integrity.Cause)
	}
	if got := getStock(t, kept.ID); got != 10 {
		t.Fatalf("remaining restores must still run, expected stock 10 got %d", got)
	}
}

// Stock never goes negative regardless of how many reservations race.
func TestReserveStock_ConcurrentNeverNegative(t *testing.T) {
	setupTestDB(t)

	product := createTestProduct(t, "Hot", decimal.NewFromInt(100), 10)

	const workers = 20
	var wg sync.WaitGroup
	results := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- models.ReserveStock(context.Background(), config.GetDB(), product.ID, 1)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		var insufficient *models.InsufficientStockError
		if !errors.As(err, &insufficient) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if succeeded != 10 {
		t.Fatalf("expected exactly 10 successful reserves, got %d", succeeded)
	}
	if got := getStock(t, product.ID); got != 0 {
		t.Fatalf("expected stock 0, got %d", got)
	}
}
