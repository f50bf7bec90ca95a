package middlewares

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mmretail/pos_backend/utils"
)

// RequestContextMiddleware lifts the acting cashier and a correlation id into
// the request context. Authentication itself is handled upstream (gateway);
// this service trusts the forwarded identity headers.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if v := c.Request.Header.Get("X-Cashier-Id"); v != "" {
			if cashierId, err := strconv.Atoi(v); err == nil {
				ctx = utils.SetCashierIdInContext(ctx, cashierId)
			}
		}
		if v := c.Request.Header.Get("X-Cashier-Name"); v != "" {
			ctx = utils.SetCashierNameInContext(ctx, v)
		}

		correlationId := c.Request.Header.Get("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		ctx = utils.SetCorrelationIdInContext(ctx, correlationId)
		c.Header("X-Correlation-Id", correlationId)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
