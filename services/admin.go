package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"stockwatch/models"
)

// Administrative operations exposed through the HTTP API.

// ErrStockExists reports an add of a code that is already tracked.
var ErrStockExists = errors.New("stock code is already tracked")

// SayHello confirms the service is alive.
func (s *StockServer) SayHello() string {
	return "Hello, I'm the stock monitor service and I'm running."
}

// GetLastPrices formats the latest known price for every tracked
// stock, from the quotes built during the most recent cycle.
func (s *StockServer) GetLastPrices() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.quotes))
	for _, q := range s.quotes {
		out = append(out, fmt.Sprintf("%s - %.2fp", q.Symbol, q.LastPrice))
	}
	sort.Strings(out)
	return out
}

// GetLastPriceHistories formats the last bandPeriod stored sessions
// for every tracked stock.
func (s *StockServer) GetLastPriceHistories() ([]string, error) {
	stocks := s.snapshotStocks()
	now := s.now()
	from := now.AddDate(0, 0, -s.cfg.HistoryLookbackDays)

	var out []string
	for _, stock := range stocks {
		prices, err := s.store.PricesForStock(stock.Code, from, now)
		if err != nil {
			return nil, fmt.Errorf("price histories: %w", err)
		}
		if len(prices) > s.cfg.BandPeriod {
			prices = prices[:s.cfg.BandPeriod]
		}
		for _, p := range prices {
			out = append(out, fmt.Sprintf("%s - %s: %sp", stock.Code, p.Date.Format("2006-01-02"), p.Close.String()))
		}
	}
	return out, nil
}

// AddStock starts tracking a new stock. Code and name are required;
// duplicates are rejected.
func (s *StockServer) AddStock(code, name string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	name = strings.TrimSpace(name)
	if code == "" {
		return errors.New("stock code cannot be empty")
	}
	if name == "" {
		return errors.New("stock name cannot be empty")
	}

	existing, err := s.store.StockByCode(code)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrStockExists
	}

	stock := newTrackedStock(code, name)
	if err := s.store.InsertStock(stock); err != nil {
		return err
	}
	s.logQueue.Info("stock added: %s (%s)", code, name)
	return s.refreshStocks()
}

// DeleteStock stops tracking a stock. Deleting an unknown code is a
// silent no-op; only an empty code is an error.
func (s *StockServer) DeleteStock(code string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return errors.New("stock code cannot be empty")
	}

	deleted, err := s.store.DeleteStock(code)
	if err != nil {
		return err
	}
	if deleted {
		s.logQueue.Info("stock deleted: %s", code)
	}
	return s.refreshStocks()
}

func newTrackedStock(code, name string) *models.Stock {
	return &models.Stock{Code: code, Name: name, Active: true}
}

// Quotes returns a copy of the current quote snapshot.
func (s *StockServer) Quotes() map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.quotes))
	for code, q := range s.quotes {
		out[code] = q.LastPrice
	}
	return out
}

// LastCycleTime reports the newest quote timestamp, or zero when no
// cycle has completed yet.
func (s *StockServer) LastCycleTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var latest time.Time
	for _, q := range s.quotes {
		if q.LastUpdate.After(latest) {
			latest = q.LastUpdate
		}
	}
	return latest
}
