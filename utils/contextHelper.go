package utils

import (
	"context"

	"github.com/mmretail/pos_backend/appctx"
)

var (
	ContextKeyCashierId     = appctx.ContextKeyCashierId
	ContextKeyCashierName   = appctx.ContextKeyCashierName
	ContextKeyCorrelationId = appctx.ContextKeyCorrelationId
)

func GetCashierIdFromContext(ctx context.Context) (int, bool) {
	return appctx.GetInt(ctx, ContextKeyCashierId)
}

func GetCashierNameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCashierName)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCashierIdInContext(ctx context.Context, cashierId int) context.Context {
	return appctx.Set(ctx, ContextKeyCashierId, cashierId)
}

func SetCashierNameInContext(ctx context.Context, name string) context.Context {
	return appctx.Set(ctx, ContextKeyCashierName, name)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}
