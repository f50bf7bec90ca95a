package models

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mmretail/pos_backend/config"
	"github.com/mmretail/pos_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// vatRate is the fixed VAT surcharge applied to every sale.
var vatRate = decimal.NewFromFloat(0.12)

type Sale struct {
	ID            int             `gorm:"primary_key" json:"id"`
	SaleNumber    string          `gorm:"uniqueIndex;size:20;not null" json:"sale_number"`
	ReceiptToken  string          `gorm:"uniqueIndex;size:36;not null" json:"receipt_token"`
	Items         []SaleItem      `gorm:"foreignKey:SaleId" json:"items"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"subtotal"`
	Tax           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax"`
	Discount      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"discount"`
	Total         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total"`
	PaymentMethod PaymentMethod   `gorm:"size:10;not null" json:"payment_method"`
	CustomerName  string          `gorm:"size:100" json:"customer_name"`
	CustomerEmail string          `gorm:"size:100" json:"customer_email"`
	CustomerPhone string          `gorm:"size:20" json:"customer_phone"`
	IsVoid        *bool           `gorm:"not null;default:false" json:"is_void"`
	VoidedAt      *time.Time      `json:"voided_at"`
	VoidedBy      int             `gorm:"default:0" json:"voided_by"`
	CashierId     int             `gorm:"index;default:0" json:"cashier_id"`
	CreatedAt     time.Time       `gorm:"autoCreateTime;index" json:"created_at"`
}

// SaleItem freezes the product's price at sale time. UnitPrice is a snapshot:
// later edits to the product never alter a persisted sale.
type SaleItem struct {
	ID           int             `gorm:"primary_key" json:"id"`
	SaleId       int             `gorm:"index;not null" json:"sale_id"`
	ProductId    int             `gorm:"index;not null" json:"product_id"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	LineSubtotal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"line_subtotal"`
}

type NewSaleItem struct {
	ProductId int `json:"product_id" binding:"required"`
	Quantity  int `json:"quantity" binding:"required"`
}

type NewSale struct {
	Items         []NewSaleItem   `json:"items" binding:"required"`
	PaymentMethod PaymentMethod   `json:"payment_method" binding:"required"`
	Discount      decimal.Decimal `json:"discount"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone"`
}

func (input NewSale) validate() error {
	if len(input.Items) == 0 {
		return ErrEmptyCart
	}
	if !input.PaymentMethod.Valid() {
		return &ValidationError{Field: "payment_method", Message: "must be one of cash, card, mobile, other"}
	}
	for _, item := range input.Items {
		if item.ProductId <= 0 {
			return &ValidationError{Field: "items.product_id", Message: "must be a positive id"}
		}
		if item.Quantity < 1 {
			return &ValidationError{Field: "items.quantity", Message: "must be at least 1"}
		}
	}
	if input.Discount.IsNegative() {
		return &ValidationError{Field: "discount", Message: "must not be negative"}
	}
	return nil
}

// CreateSale turns a cart into a durable sale record.
//
// Rounding order: tax is rounded to 2 places on its own, then the grand total
// is rounded again. With prices carrying more than 2 decimals this can differ
// sub-cent from a single rounding of subtotal*1.12-discount.
//
// Side effects happen in a fixed order: reserve stock for every item
// (all-or-nothing, see ReserveStockItems), then obtain a sale number and
// persist the sale in one transaction. Any failure after reservation
// compensates the reserved stock in full before the error surfaces.
func CreateSale(ctx context.Context, input *NewSale) (*Sale, error) {
	db := config.GetDB()

	if err := input.validate(); err != nil {
		return nil, err
	}

	// Resolve each product and freeze its current price. Inactive products
	// are not sellable and report as not found.
	products := make(map[int]*Product, len(input.Items))
	for _, item := range input.Items {
		if _, ok := products[item.ProductId]; ok {
			continue
		}
		var product Product
		err := db.WithContext(ctx).
			First(&product, "id = ? AND is_active = ?", item.ProductId, true).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "product", ID: item.ProductId}
		}
		if err != nil {
			return nil, err
		}
		products[item.ProductId] = &product
	}

	var saleItems []SaleItem
	var subtotal decimal.Decimal
	requests := make([]StockRequest, 0, len(input.Items))
	for _, item := range input.Items {
		product := products[item.ProductId]
		lineSubtotal := product.SalesPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		saleItems = append(saleItems, SaleItem{
			ProductId:    product.ID,
			Quantity:     item.Quantity,
			UnitPrice:    product.SalesPrice,
			LineSubtotal: lineSubtotal,
		})
		subtotal = subtotal.Add(lineSubtotal)
		requests = append(requests, StockRequest{ProductId: product.ID, Quantity: item.Quantity})
	}

	tax := subtotal.Mul(vatRate).Round(2)
	discount := input.Discount
	if discount.GreaterThan(subtotal.Add(tax)) {
		return nil, &ValidationError{Field: "discount", Message: "must not exceed subtotal plus tax"}
	}
	total := subtotal.Add(tax).Sub(discount).Round(2)

	cashierId, _ := utils.GetCashierIdFromContext(ctx)

	// Reserve before persisting. On any later failure the reservations are
	// rolled back via compensating restores; no stock leak survives a failed
	// sale.
	if err := ReserveStockItems(ctx, requests); err != nil {
		return nil, err
	}

	sale := Sale{
		ReceiptToken:  uuid.NewString(),
		Items:         saleItems,
		Subtotal:      subtotal,
		Tax:           tax,
		Discount:      discount,
		Total:         total,
		PaymentMethod: input.PaymentMethod,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		CustomerPhone: input.CustomerPhone,
		IsVoid:        utils.NewFalse(),
		CashierId:     cashierId,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, failSalePersist(requests, tx.Error)
	}

	saleNumber, err := NextSaleNumber(ctx, tx, time.Now())
	if err != nil {
		tx.Rollback()
		return nil, failSalePersist(requests, err)
	}
	sale.SaleNumber = saleNumber

	if err := tx.WithContext(ctx).Create(&sale).Error; err != nil {
		tx.Rollback()
		return nil, failSalePersist(requests, err)
	}

	for _, item := range sale.Items {
		movement := StockMovement{
			ProductId: item.ProductId,
			SaleId:    sale.ID,
			Delta:     -item.Quantity,
			Reason:    StockMovementReasonSale,
		}
		if err := tx.WithContext(ctx).Create(&movement).Error; err != nil {
			tx.Rollback()
			return nil, failSalePersist(requests, err)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, failSalePersist(requests, err)
	}

	return &sale, nil
}

// failSalePersist compensates a fully reserved cart after the persistence
// step failed. A compensation failure outranks the original error: it means
// stock may be inconsistent and must reach the operator.
func failSalePersist(requests []StockRequest, cause error) error {
	if cErr := CompensateReservations(requests, cause); cErr != nil {
		return cErr
	}
	return cause
}

func GetSale(ctx context.Context, id int) (*Sale, error) {
	db := config.GetDB()

	var sale Sale
	err := db.WithContext(ctx).Preload("Items").First(&sale, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "sale", ID: id}
		}
		return nil, err
	}

	return &sale, nil
}

type ListSalesInput struct {
	Limit       int
	Offset      int
	IncludeVoid bool
}

func GetSales(ctx context.Context, input ListSalesInput) ([]Sale, error) {
	db := config.GetDB()

	limit := input.Limit
	if limit <= 0 {
		limit = config.SearchLimit
	}
	if limit > config.MaxSearchLimit {
		limit = config.MaxSearchLimit
	}

	query := db.WithContext(ctx).Preload("Items").Order("id DESC").Limit(limit).Offset(input.Offset)
	if !input.IncludeVoid {
		query = query.Where("is_void = ?", false)
	}

	var sales []Sale
	if err := query.Find(&sales).Error; err != nil {
		return nil, err
	}

	return sales, nil
}

// VoidSale reverses a completed sale exactly once: it flips is_void with a
// compare-and-set on the flag, then restores stock for every line item. The
// CAS decides the single winner when void requests race; losers get
// AlreadyVoidError and cause no stock effect. The sale record is retained
// for audit and excluded from revenue reporting.
//
// Restores run on a background handle: once the flag has flipped, the
// reversal must complete even if the caller goes away. A restore failure at
// that point is escalated as IntegrityError.
func VoidSale(ctx context.Context, saleId int, actorId int) (*Sale, error) {
	db := config.GetDB()
	logger := config.GetLogger()

	sale, err := GetSale(ctx, saleId)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res := db.WithContext(ctx).Model(&Sale{}).
		Where("id = ? AND is_void = ?", saleId, false).
		Updates(map[string]interface{}{
			"is_void":   true,
			"voided_at": now,
			"voided_by": actorId,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, &AlreadyVoidError{SaleId: saleId}
	}

	restoreCtx := context.Background()
	var integrityErr error
	for _, item := range sale.Items {
		// Restore and its movement row commit together so the trail always
		// sums to the live counter.
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := RestoreStock(restoreCtx, tx, item.ProductId, item.Quantity); err != nil {
				return err
			}
			movement := StockMovement{
				ProductId: item.ProductId,
				SaleId:    saleId,
				Delta:     item.Quantity,
				Reason:    StockMovementReasonVoid,
			}
			return tx.WithContext(restoreCtx).Create(&movement).Error
		})
		if err != nil {
			ie := &IntegrityError{
				Op:        "void restore",
				SaleId:    saleId,
				ProductId: item.ProductId,
				Err:       err,
			}
			config.LogError(logger, "sale.go", "VoidSale", "RestoreStock", item, ie)
			if integrityErr == nil {
				integrityErr = ie
			}
		}
	}
	if integrityErr != nil {
		return nil, integrityErr
	}

	return GetSale(ctx, saleId)
}
