// seed-dev populates a development database with a small retail catalogue so
// the sale endpoints can be exercised right away.
//
// Usage:
//
//	DB_USER=... DB_PASSWORD=... DB_HOST=... DB_PORT=... DB_NAME=... go run ./cmd/seed-dev
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mmretail/pos_backend/config"
	"github.com/mmretail/pos_backend/models"
	"github.com/shopspring/decimal"
)

func main() {
	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	if config.GetDB() == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}
	models.MigrateTable()

	beverages, err := models.CreateCategory(ctx, &models.NewCategory{Name: "Beverages"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create category: %v\n", err)
		os.Exit(1)
	}
	snacks, err := models.CreateCategory(ctx, &models.NewCategory{Name: "Snacks"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create category: %v\n", err)
		os.Exit(1)
	}

	supplier, err := models.CreateSupplier(ctx, &models.NewSupplier{
		Name:  "Golden Valley Distribution",
		Email: "orders@goldenvalley.test",
		Phone: "09-780-0001",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create supplier: %v\n", err)
		os.Exit(1)
	}

	seedProducts := []models.NewProduct{
		{Name: "Drinking Water 1L", Sku: "BEV-0001", CategoryId: beverages.ID, SupplierId: supplier.ID, SalesPrice: decimal.NewFromInt(500), OpeningStock: 120, LowStockThreshold: 24},
		{Name: "Green Tea 330ml", Sku: "BEV-0002", CategoryId: beverages.ID, SupplierId: supplier.ID, SalesPrice: decimal.NewFromInt(900), OpeningStock: 60, LowStockThreshold: 12},
		{Name: "Potato Chips 60g", Sku: "SNK-0001", CategoryId: snacks.ID, SupplierId: supplier.ID, SalesPrice: decimal.NewFromInt(1200), OpeningStock: 80, LowStockThreshold: 16},
		{Name: "Roasted Peanuts 100g", Sku: "SNK-0002", CategoryId: snacks.ID, SupplierId: supplier.ID, SalesPrice: decimal.NewFromInt(1500), OpeningStock: 40, LowStockThreshold: 8},
	}
	for _, p := range seedProducts {
		product, err := models.CreateProduct(ctx, &p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create product %s: %v\n", p.Sku, err)
			os.Exit(1)
		}
		fmt.Printf("created product %d (%s) stock=%d\n", product.ID, product.Sku, product.StockQuantity)
	}

	fmt.Println("seed-dev done")
}
