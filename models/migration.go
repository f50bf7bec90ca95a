package models

import (
	"log"

	"github.com/mmretail/pos_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Category{}, &Supplier{},
		&Product{},
		&Sale{}, &SaleItem{},
		&DailyCounter{},
		&StockMovement{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
