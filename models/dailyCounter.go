package models

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyCounter backs sale numbering: one row per calendar day (UTC), created
// lazily on the first sale of the day, incremented atomically, never
// decremented. Persisting the counter keeps numbering collision-free across
// multiple service instances.
type DailyCounter struct {
	Day       string    `gorm:"primaryKey;size:8" json:"day"`
	Seq       int64     `gorm:"not null;default:0" json:"seq"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// NextSaleNumber issues the next sale number for the given instant, formatted
// SALE-<YYYYMMDD>-<4-digit-seq>. The create-if-absent and increment happen in
// a single upsert, so concurrent transactions serialize on the counter row
// instead of racing a read-then-write. Must be called inside the transaction
// that persists the sale; the row lock the upsert takes holds until commit.
func NextSaleNumber(ctx context.Context, tx *gorm.DB, at time.Time) (string, error) {
	day := at.UTC().Format("20060102")

	counter := DailyCounter{Day: day, Seq: 1}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "day"}},
		DoUpdates: clause.Assignments(map[string]interface{}{"seq": gorm.Expr("seq + 1")}),
	}).Create(&counter).Error
	if err != nil {
		return "", err
	}

	// Re-read inside the same transaction; the upsert's row lock guarantees
	// this sees our own increment.
	if err := tx.WithContext(ctx).First(&counter, "day = ?", day).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("SALE-%s-%04d", day, counter.Seq), nil
}
