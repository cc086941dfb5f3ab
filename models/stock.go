package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Stock represents a tracked stock symbol
type Stock struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	Code        string          `gorm:"uniqueIndex;not null" json:"code"`
	Name        string          `json:"name"`
	MarketCap   decimal.Decimal `gorm:"type:decimal(20,2)" json:"market_cap"`
	Active      bool            `gorm:"default:true" json:"active"`
	Silenced    bool            `gorm:"default:false" json:"silenced"`
	LastAlertAt *time.Time      `json:"last_alert_at"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// DailyPrice represents one day of price data for a stock.
// At most one row exists per (stock code, date).
type DailyPrice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	StockCode     string          `gorm:"uniqueIndex:idx_code_date;not null" json:"stock_code"`
	Date          time.Time       `gorm:"uniqueIndex:idx_code_date;not null" json:"date"`
	Open          decimal.Decimal `gorm:"type:decimal(15,4)" json:"open"`
	High          decimal.Decimal `gorm:"type:decimal(15,4)" json:"high"`
	Low           decimal.Decimal `gorm:"type:decimal(15,4)" json:"low"`
	Close         decimal.Decimal `gorm:"type:decimal(15,4)" json:"close"`
	Volume        int64           `json:"volume"`
	AdjustedClose decimal.Decimal `gorm:"type:decimal(15,4)" json:"adjusted_close"`
	CreatedAt     time.Time       `json:"created_at"`
}

// MigrateStockModels runs database migrations for stock-related models
func MigrateStockModels(db *gorm.DB) error {
	return db.AutoMigrate(
		&Stock{},
		&DailyPrice{},
	)
}
