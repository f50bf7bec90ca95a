package models_test

import (
	"context"
	"testing"

	"github.com/mmretail/pos_backend/config"
	"github.com/mmretail/pos_backend/models"
	"github.com/shopspring/decimal"
)

// setupTestDB points the global DB at a fresh in-memory sqlite database and
// migrates the schema. Every test gets its own database; no cleanup needed.
func setupTestDB(t *testing.T) {
	t.Helper()
	if err := config.ConnectTestDatabase(); err != nil {
		t.Fatalf("ConnectTestDatabase: %v", err)
	}
	models.MigrateTable()
}

func createTestProduct(t *testing.T, name string, price decimal.Decimal, stock int) *models.Product {
	t.Helper()
	product, err := models.CreateProduct(context.Background(), &models.NewProduct{
		Name:         name,
		Sku:          "SKU-" + name,
		SalesPrice:   price,
		OpeningStock: stock,
	})
	if err != nil {
		t.Fatalf("CreateProduct %s: %v", name, err)
	}
	return product
}

func getStock(t *testing.T, productId int) int {
	t.Helper()
	product, err := models.GetProduct(context.Background(), productId)
	if err != nil {
		t.Fatalf("GetProduct %d: %v", productId, err)
	}
	return product.StockQuantity
}

func sumMovements(t *testing.T, productId int) int {
	t.Helper()
	var total int64
	err := config.GetDB().Model(&models.StockMovement{}).
		Where("product_id = ?", productId).
		Select("COALESCE(SUM(delta), 0)").
		Scan(&total).Error
	if err != nil {
		t.Fatalf("sum movements for product %d: %v", productId, err)
	}
	return int(total)
}
