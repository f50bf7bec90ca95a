package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodMobile PaymentMethod = "mobile"
	PaymentMethodOther  PaymentMethod = "other"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodMobile, PaymentMethodOther:
		return true
	}
	return false
}

func (m PaymentMethod) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid payment method %q", string(m))
	}
	return string(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*m = PaymentMethod(v)
	case []byte:
		*m = PaymentMethod(v)
	default:
		return errors.New("payment method must be string")
	}
	return nil
}

// TrendGranularity selects the bucket size for revenue trends.
type TrendGranularity string

const (
	TrendGranularityDay   TrendGranularity = "day"
	TrendGranularityWeek  TrendGranularity = "week"
	TrendGranularityMonth TrendGranularity = "month"
)

func (g TrendGranularity) Valid() bool {
	switch g {
	case TrendGranularityDay, TrendGranularityWeek, TrendGranularityMonth:
		return true
	}
	return false
}

// StockMovementReason records why a stock quantity changed.
type StockMovementReason string

const (
	StockMovementReasonOpening StockMovementReason = "opening"
	StockMovementReasonSale    StockMovementReason = "sale"
	StockMovementReasonVoid    StockMovementReason = "void"
)
