// stock-recount audits stock_quantity against the stock movement trail and
// optionally repairs drift. It is the operator's answer to an escalated
// integrity error: a compensation write that failed leaves the trail and the
// counter out of step, and this tool reconciles them.
//
// Report only:
//
//	go run ./cmd/stock-recount
//
// Apply fixes:
//
//	go run ./cmd/stock-recount -fix
//
// A Redis lock guards against two recounts running at once; when Redis is not
// configured the guard is skipped.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/bsm/redislock"
	"github.com/mmretail/pos_backend/config"
	"github.com/mmretail/pos_backend/models"
)

func main() {
	fix := flag.Bool("fix", false, "write corrected stock quantities instead of only reporting drift")
	flag.Parse()

	ctx := context.Background()
	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized (config.GetDB returned nil). Set DB_* env vars.")
		os.Exit(1)
	}

	config.ConnectRedisWithRetry()
	if locker := config.GetRedisLock(); locker != nil {
		lock, err := locker.Obtain(ctx, "lock:stock-recount", 10*time.Minute, nil)
		if err == redislock.ErrNotObtained {
			fmt.Fprintln(os.Stderr, "another stock-recount is already running")
			os.Exit(2)
		} else if err != nil {
			fmt.Fprintf(os.Stderr, "failed to obtain recount lock: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = lock.Release(ctx) }()
	}

	var products []models.Product
	if err := db.WithContext(ctx).Order("id ASC").Find(&products).Error; err != nil {
		fmt.Fprintf(os.Stderr, "failed to list products: %v\n", err)
		os.Exit(1)
	}

	var drifted int
	for _, product := range products {
		var computed int64
		err := db.WithContext(ctx).Model(&models.StockMovement{}).
			Where("product_id = ?", product.ID).
			Select("COALESCE(SUM(delta), 0)").
			Scan(&computed).Error
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to sum movements for product %d: %v\n", product.ID, err)
			os.Exit(1)
		}

		if int(computed) == product.StockQuantity {
			continue
		}
		drifted++
		fmt.Printf("product %d (%s): stock_quantity=%d movements=%d drift=%d\n",
			product.ID, product.Sku, product.StockQuantity, computed, int(computed)-product.StockQuantity)

		if !*fix {
			continue
		}

		correction := int(computed) - product.StockQuantity
		if correction > 0 {
			if err := models.RestoreStock(ctx, db, product.ID, correction); err != nil {
				fmt.Fprintf(os.Stderr, "failed to correct product %d: %v\n", product.ID, err)
				os.Exit(1)
			}
		} else {
			if err := db.WithContext(ctx).Model(&models.Product{}).
				Where("id = ?", product.ID).
				UpdateColumn("stock_quantity", int(computed)).Error; err != nil {
				fmt.Fprintf(os.Stderr, "failed to correct product %d: %v\n", product.ID, err)
				os.Exit(1)
			}
		}
		fmt.Printf("product %d corrected to %d\n", product.ID, computed)
	}

	if drifted == 0 {
		fmt.Println("stock-recount: no drift detected")
	} else if !*fix {
		fmt.Printf("stock-recount: %d product(s) drifted; rerun with -fix to repair\n", drifted)
	}
}
