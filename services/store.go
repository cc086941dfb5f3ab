package services

import (
	"errors"
	"fmt"
	"time"

	"stockwatch/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Store is the narrow storage contract the alerting pipeline depends
// on. The gorm implementation below is the production one; tests use
// in-memory stubs.
type Store interface {
	ActiveStocks(minMarketCap, maxMarketCap decimal.Decimal) ([]models.Stock, error)
	StockByCode(code string) (*models.Stock, error)
	InsertStock(stock *models.Stock) error
	DeleteStock(code string) (bool, error)
	UpsertDailyPrice(price *models.DailyPrice) error
	PricesForStock(code string, from, to time.Time) ([]models.DailyPrice, error)
	LastPriceDate(code string) (time.Time, bool, error)
	SetSilenced(code string, silenced bool, lastAlertAt *time.Time) error
}

// GormStore is the database-backed Store.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ActiveStocks returns active stocks inside the market-cap range.
// A zero max means unbounded.
func (s *GormStore) ActiveStocks(minMarketCap, maxMarketCap decimal.Decimal) ([]models.Stock, error) {
	var stocks []models.Stock
	q := s.db.Where("active = ?", true)
	if minMarketCap.IsPositive() {
		q = q.Where("market_cap >= ?", minMarketCap)
	}
	if maxMarketCap.IsPositive() {
		q = q.Where("market_cap <= ?", maxMarketCap)
	}
	if err := q.Order("code").Find(&stocks).Error; err != nil {
		return nil, fmt.Errorf("load active stocks: %w", err)
	}
	return stocks, nil
}

// StockByCode loads one stock, or nil when the code is unknown.
func (s *GormStore) StockByCode(code string) (*models.Stock, error) {
	var stock models.Stock
	err := s.db.Where("code = ?", code).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load stock %s: %w", code, err)
	}
	return &stock, nil
}

// InsertStock creates a new tracked stock.
func (s *GormStore) InsertStock(stock *models.Stock) error {
	if err := s.db.Create(stock).Error; err != nil {
		return fmt.Errorf("insert stock %s: %w", stock.Code, err)
	}
	return nil
}

// DeleteStock removes a stock and its price history. Reports whether
// a row was actually deleted.
func (s *GormStore) DeleteStock(code string) (bool, error) {
	res := s.db.Where("code = ?", code).Delete(&models.Stock{})
	if res.Error != nil {
		return false, fmt.Errorf("delete stock %s: %w", code, res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if err := s.db.Where("stock_code = ?", code).Delete(&models.DailyPrice{}).Error; err != nil {
		return true, fmt.Errorf("delete prices for %s: %w", code, err)
	}
	return true, nil
}

// UpsertDailyPrice updates the row for (stock code, date) in place,
// or inserts it when absent.
func (s *GormStore) UpsertDailyPrice(price *models.DailyPrice) error {
	var existing models.DailyPrice
	err := s.db.Where("stock_code = ? AND date = ?", price.StockCode, price.Date).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.Create(price).Error; err != nil {
			return fmt.Errorf("insert price %s %s: %w", price.StockCode, price.Date.Format("2006-01-02"), err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("find price %s %s: %w", price.StockCode, price.Date.Format("2006-01-02"), err)
	}

	existing.Open = price.Open
	existing.High = price.High
	existing.Low = price.Low
	existing.Close = price.Close
	existing.Volume = price.Volume
	existing.AdjustedClose = price.AdjustedClose
	if err := s.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("update price %s %s: %w", price.StockCode, price.Date.Format("2006-01-02"), err)
	}
	return nil
}

// PricesForStock returns daily prices within [from, to], newest first.
func (s *GormStore) PricesForStock(code string, from, to time.Time) ([]models.DailyPrice, error) {
	var prices []models.DailyPrice
	err := s.db.Where("stock_code = ? AND date >= ? AND date <= ?", code, from, to).
		Order("date DESC").
		Find(&prices).Error
	if err != nil {
		return nil, fmt.Errorf("load prices for %s: %w", code, err)
	}
	return prices, nil
}

// LastPriceDate returns the newest stored price date for a stock; the
// bool reports whether any history exists.
func (s *GormStore) LastPriceDate(code string) (time.Time, bool, error) {
	var price models.DailyPrice
	err := s.db.Where("stock_code = ?", code).Order("date DESC").First(&price).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last price date for %s: %w", code, err)
	}
	return price.Date, true, nil
}

// SetSilenced updates a stock's silence flag and last-alert timestamp.
func (s *GormStore) SetSilenced(code string, silenced bool, lastAlertAt *time.Time) error {
	err := s.db.Model(&models.Stock{}).Where("code = ?", code).
		Updates(map[string]interface{}{
			"silenced":      silenced,
			"last_alert_at": lastAlertAt,
		}).Error
	if err != nil {
		return fmt.Errorf("update silence for %s: %w", code, err)
	}
	return nil
}
