package models_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/mmretail/pos_backend/models"
	"github.com/shopspring/decimal"
)

// Asking for more than the maximum page size caps at the maximum; it must not
// fall back to the small default.
func TestGetProducts_LimitClampsToMax(t *testing.T) {
	setupTestDB(t)
	ctx := context.Background()

	const total = 12
	for i := 0; i < total; i++ {
		createTestProduct(t, fmt.Sprintf("P%02d", i), decimal.NewFromInt(100), 1)
	}

	products, err := models.GetProducts(ctx, 150, 0)
	if err != nil {
		t.Fatalf("GetProducts: %v", err)
	}
	if len(products) != total {
		t.Fatalf("expected all %d products with an oversize limit, got %d", total, len(products))
	}

	defaulted, err := models.GetProducts(ctx, 0, 0)
	if err != nil {
		t.Fatalf("GetProducts: %v", err)
	}
	if len(defaulted) != 10 {
		t.Fatalf("expected default page size 10 for limit 0, got %d", len(defaulted))
	}
}
