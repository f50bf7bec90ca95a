package models

import (
	"context"
	"errors"
	"time"

	"github.com/mmretail/pos_backend/config"
	"github.com/mmretail/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID                int             `gorm:"primary_key" json:"id"`
	Name              string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Sku               string          `gorm:"uniqueIndex;size:100;not null" json:"sku" binding:"required"`
	Description       string          `gorm:"type:text" json:"description"`
	CategoryId        int             `gorm:"index;not null;default:0" json:"category_id"`
	SupplierId        int             `gorm:"index;not null;default:0" json:"supplier_id"`
	SalesPrice        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"sales_price"`
	StockQuantity     int             `gorm:"not null;default:0" json:"stock_quantity"`
	LowStockThreshold int             `gorm:"not null;default:0" json:"low_stock_threshold"`
	IsActive          *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewProduct struct {
	Name              string          `json:"name" binding:"required"`
	Sku               string          `json:"sku" binding:"required"`
	Description       string          `json:"description"`
	CategoryId        int             `json:"category_id"`
	SupplierId        int             `json:"supplier_id"`
	SalesPrice        decimal.Decimal `json:"sales_price"`
	OpeningStock      int             `json:"opening_stock"`
	LowStockThreshold int             `json:"low_stock_threshold"`
}

// UpdateProduct input deliberately has no stock field: stock_quantity is owned
// by the stock ledger (ReserveStock/RestoreStock) and is never written through
// product edits.
type UpdateProductInput struct {
	Name              *string          `json:"name"`
	Description       *string          `json:"description"`
	CategoryId        *int             `json:"category_id"`
	SupplierId        *int             `json:"supplier_id"`
	SalesPrice        *decimal.Decimal `json:"sales_price"`
	LowStockThreshold *int             `json:"low_stock_threshold"`
	IsActive          *bool            `json:"is_active"`
}

func (input NewProduct) validate(ctx context.Context) error {
	if input.CategoryId > 0 {
		if err := utils.ValidateResourceId[Category](ctx, input.CategoryId); err != nil {
			return errors.New("category not found")
		}
	}
	if input.SupplierId > 0 {
		if err := utils.ValidateResourceId[Supplier](ctx, input.SupplierId); err != nil {
			return errors.New("supplier not found")
		}
	}
	if input.OpeningStock < 0 {
		return &ValidationError{Field: "opening_stock", Message: "must not be negative"}
	}
	if input.SalesPrice.IsNegative() {
		return &ValidationError{Field: "sales_price", Message: "must not be negative"}
	}
	return nil
}

func CreateProduct(ctx context.Context, input *NewProduct) (*Product, error) {
	db := config.GetDB()

	if err := input.validate(ctx); err != nil {
		return nil, err
	}

	product := Product{
		Name:              input.Name,
		Sku:               input.Sku,
		Description:       input.Description,
		CategoryId:        input.CategoryId,
		SupplierId:        input.SupplierId,
		SalesPrice:        input.SalesPrice,
		StockQuantity:     input.OpeningStock,
		LowStockThreshold: input.LowStockThreshold,
	}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&product).Error; err != nil {
			return err
		}
		if product.StockQuantity > 0 {
			movement := StockMovement{
				ProductId: product.ID,
				Delta:     product.StockQuantity,
				Reason:    StockMovementReasonOpening,
			}
			if err := tx.Create(&movement).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &product, nil
}

func GetProduct(ctx context.Context, id int) (*Product, error) {
	db := config.GetDB()

	var product Product
	err := db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "product", ID: id}
		}
		return nil, err
	}

	return &product, nil
}

func GetProducts(ctx context.Context, limit int, offset int) ([]Product, error) {
	db := config.GetDB()

	if limit <= 0 {
		limit = config.SearchLimit
	}
	if limit > config.MaxSearchLimit {
		limit = config.MaxSearchLimit
	}
	var products []Product
	err := db.WithContext(ctx).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}

func UpdateProduct(ctx context.Context, id int, input *UpdateProductInput) (*Product, error) {
	db := config.GetDB()

	if _, err := GetProduct(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.CategoryId != nil {
		updates["category_id"] = *input.CategoryId
	}
	if input.SupplierId != nil {
		updates["supplier_id"] = *input.SupplierId
	}
	if input.SalesPrice != nil {
		if input.SalesPrice.IsNegative() {
			return nil, &ValidationError{Field: "sales_price", Message: "must not be negative"}
		}
		updates["sales_price"] = *input.SalesPrice
	}
	if input.LowStockThreshold != nil {
		updates["low_stock_threshold"] = *input.LowStockThreshold
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if len(updates) > 0 {
		if err := db.WithContext(ctx).Model(&Product{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return GetProduct(ctx, id)
}

// GetLowStockProducts lists active products at or below their low stock
// threshold, most depleted first.
func GetLowStockProducts(ctx context.Context) ([]Product, error) {
	db := config.GetDB()

	var products []Product
	err := db.WithContext(ctx).
		Where("is_active = ? AND stock_quantity <= low_stock_threshold", true).
		Order("stock_quantity ASC, id ASC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}

	return products, nil
}
