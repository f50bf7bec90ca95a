package models

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/mmretail/pos_backend/config"
	"gorm.io/gorm"
)

// StockMovement is the append-only audit trail of stock mutations. Rows for
// sales are written in the same transaction as the sale itself, so the trail
// only ever reflects durable state. Compensating restores are not recorded:
// the reservation they reverse never reached the trail, which keeps
// SUM(delta) equal to stock_quantity at all times.
type StockMovement struct {
	ID        int                 `gorm:"primary_key" json:"id"`
	ProductId int                 `gorm:"index;not null" json:"product_id"`
	SaleId    int                 `gorm:"index;default:0" json:"sale_id"`
	Delta     int                 `gorm:"not null" json:"delta"`
	Reason    StockMovementReason `gorm:"size:20;not null" json:"reason"`
	CreatedAt time.Time           `gorm:"autoCreateTime" json:"created_at"`
}

type StockRequest struct {
	ProductId int
	Quantity  int
}

// ReserveStock decrements a product's stock only if enough is on hand. The
// decrement is a single conditional UPDATE so two competing sales can never
// drive stock_quantity negative. Zero rows affected means either the product
// row is missing or the stock is short; the re-read distinguishes the two.
func ReserveStock(ctx context.Context, db *gorm.DB, productId int, qty int) error {
	if qty < 1 {
		return &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}

	res := db.WithContext(ctx).Model(&Product{}).
		Where("id = ? AND stock_quantity >= ?", productId, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var product Product
		err := db.WithContext(ctx).First(&product, productId).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Entity: "product", ID: productId}
		}
		if err != nil {
			return err
		}
		return &InsufficientStockError{
			ProductId: productId,
			Available: product.StockQuantity,
			Requested: qty,
		}
	}

	return nil
}

// RestoreStock increments a product's stock unconditionally.
func RestoreStock(ctx context.Context, db *gorm.DB, productId int, qty int) error {
	if qty < 1 {
		return &ValidationError{Field: "quantity", Message: "must be at least 1"}
	}

	res := db.WithContext(ctx).Model(&Product{}).
		Where("id = ?", productId).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Entity: "product", ID: productId}
	}

	return nil
}

// ReserveStockItems reserves stock for a whole cart with all-or-nothing
// semantics. Reservations run one at a time in product-id order (a fixed
// order keeps two carts sharing products from deadlocking each other); the
// first failure triggers compensating restores for everything already
// reserved before the error is returned. A restore failure during
// compensation escalates as IntegrityError.
func ReserveStockItems(ctx context.Context, requests []StockRequest) error {
	db := config.GetDB()

	sorted := make([]StockRequest, len(requests))
	copy(sorted, requests)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ProductId < sorted[j].ProductId })

	var reserved []StockRequest
	for _, r := range sorted {
		if err := ReserveStock(ctx, db, r.ProductId, r.Quantity); err != nil {
			if cErr := CompensateReservations(reserved, err); cErr != nil {
				return cErr
			}
			return err
		}
		reserved = append(reserved, r)
	}

	return nil
}

// CompensateReservations restores every already-applied reservation of a
// failed multi-step operation. It runs on a background context: a caller
// cancelling mid-operation must still observe full compensation, so the
// restore writes cannot share the caller's (possibly cancelled) context.
// All restores are attempted even after one fails; the first failure is
// returned as an IntegrityError.
func CompensateReservations(reserved []StockRequest, cause error) error {
	ctx := context.Background()
	db := config.GetDB()
	logger := config.GetLogger()

	var integrityErr error
	for _, r := range reserved {
		if err := RestoreStock(ctx, db, r.ProductId, r.Quantity); err != nil {
			ie := &IntegrityError{
				Op:        "reserve compensation",
				ProductId: r.ProductId,
				Cause:     cause,
				Err:       err,
			}
			config.LogError(logger, "stock.go", "CompensateReservations", "RestoreStock", r, ie)
			if integrityErr == nil {
				integrityErr = ie
			}
		}
	}

	return integrityErr
}
