package services

import (
	"fmt"
	"sync"
	"time"

	"stockwatch/config"
	"stockwatch/models"
	"stockwatch/services/analysis"
	"stockwatch/services/datafetcher"
	"stockwatch/services/queue"

	"github.com/shopspring/decimal"
)

// StockServer wires the scheduler-driven pipeline together: it
// refreshes the tracked stock list, fans out price fetches, evaluates
// the enabled models and feeds the delivery queues. It also backs the
// administrative API.
type StockServer struct {
	cfg        *config.Config
	store      Store
	source     datafetcher.PriceSource
	registry   *analysis.Registry
	emailQueue *queue.EmailQueue
	logQueue   *queue.LogQueue
	alertHub   *AlertHub

	// guards the stock snapshot and quote map against concurrent
	// administrative mutation while a cycle reads them
	mu     sync.RWMutex
	stocks []models.Stock
	quotes map[string]*models.Quote

	// one evaluation cycle at a time
	cycleMu sync.Mutex

	now func() time.Time
}

// NewStockServer creates the orchestration root. The alert hub may be
// nil when no live feed is wanted.
func NewStockServer(cfg *config.Config, store Store, source datafetcher.PriceSource, registry *analysis.Registry, emailQueue *queue.EmailQueue, logQueue *queue.LogQueue, alertHub *AlertHub) *StockServer {
	return &StockServer{
		cfg:        cfg,
		store:      store,
		source:     source,
		registry:   registry,
		emailQueue: emailQueue,
		logQueue:   logQueue,
		alertHub:   alertHub,
		quotes:     make(map[string]*models.Quote),
		now:        time.Now,
	}
}

// Start loads the initial stock snapshot and announces the server.
func (s *StockServer) Start() error {
	if err := s.refreshStocks(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	s.sendStartedEmail()
	return nil
}

// Stop drains and stops both delivery queues. Every message and log
// entry queued before this call is processed before it returns.
func (s *StockServer) Stop() {
	s.emailQueue.StopProcessingQueue()
	s.logQueue.StopProcessingQueue()
}

// RunScheduledCycle is the scheduler's entry point. Weekends are
// skipped outright; the markets are closed and there is nothing new
// to fetch.
func (s *StockServer) RunScheduledCycle() {
	day := s.now().Weekday()
	if day == time.Saturday || day == time.Sunday {
		s.logQueue.Info("scheduled cycle skipped: %s", day)
		return
	}
	s.runCycle()
}

// ForcePrices runs a cycle immediately, outside the schedule. The
// weekend skip does not apply to an explicit manual request.
func (s *StockServer) ForcePrices() {
	s.runCycle()
}

// runCycle executes one fetch-evaluate-alert pass. Any error or panic
// is contained here: it is logged, reported by a best-effort system
// error email, and the next scheduled tick runs normally.
func (s *StockServer) runCycle() {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logQueue.Error("cycle panic: %v", r)
			s.queueSystemErrorEmail(fmt.Errorf("cycle panic: %v", r))
		}
	}()

	if err := s.refreshStocks(); err != nil {
		s.logQueue.Error("cycle aborted: %v", err)
		s.queueSystemErrorEmail(err)
		return
	}

	s.populateHistoricPrices()
	s.evaluateStocks()
}

// populateHistoricPrices fetches missing history for every tracked
// stock, one concurrent fetch per stock, and merges the results into
// storage. The cycle proceeds only after every fetch has finished or
// failed; one stock's network failure never aborts its siblings.
func (s *StockServer) populateHistoricPrices() {
	stocks := s.snapshotStocks()
	now := s.now()

	var wg sync.WaitGroup
	for i := range stocks {
		stock := stocks[i]
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.fetchStockHistory(stock, now)
		}()
	}
	wg.Wait()
}

func (s *StockServer) fetchStockHistory(stock models.Stock, now time.Time) {
	lastDate, hasHistory, err := s.store.LastPriceDate(stock.Code)
	if err != nil {
		s.logQueue.Error("fetch %s: %v", stock.Code, err)
		return
	}

	var from time.Time
	if hasHistory {
		if !datafetcher.ShouldCollectHistory(now, lastDate) {
			return
		}
		from = lastDate.AddDate(0, 0, 1)
	} else {
		from = now.AddDate(0, 0, -s.cfg.HistoryLookbackDays)
	}

	s.logQueue.Info("collecting prices for %s from %s", stock.Code, from.Format("2006-01-02"))
	prices, err := s.source.Fetch(stock.Code, from)
	if err != nil {
		s.logQueue.Error("fetch %s: %v", stock.Code, err)
		return
	}

	for i := range prices {
		if err := s.store.UpsertDailyPrice(&prices[i]); err != nil {
			s.logQueue.Error("merge %s: %v", stock.Code, err)
		}
	}
	s.logQueue.Info("collected %d prices for %s", len(prices), stock.Code)
}

// evaluateStocks runs the model registry over every eligible stock,
// sequentially, and handles silence transitions and alert delivery.
func (s *StockServer) evaluateStocks() {
	stocks := s.snapshotStocks()
	now := s.now()
	cooldown := time.Duration(s.cfg.SilenceDays) * 24 * time.Hour

	for i := range stocks {
		stock := &stocks[i]

		if stock.Silenced {
			if stock.LastAlertAt == nil || now.Sub(*stock.LastAlertAt) < cooldown {
				continue
			}
			// Cool-down elapsed: re-arm before this evaluation so the
			// flag is clear regardless of the outcome below.
			if err := s.store.SetSilenced(stock.Code, false, nil); err != nil {
				s.logQueue.Error("re-arm %s: %v", stock.Code, err)
				continue
			}
			stock.Silenced = false
			stock.LastAlertAt = nil
		}

		history, quote, ok := s.loadHistory(stock, now)
		if !ok {
			continue
		}
		s.storeQuote(quote)

		if s.cfg.PriceMin > 0 && quote.LastPrice < s.cfg.PriceMin {
			continue
		}
		if s.cfg.PriceMax > 0 && quote.LastPrice > s.cfg.PriceMax {
			continue
		}

		alerts := s.registry.EvaluateAll(stock, history, quote)
		if len(alerts) == 0 {
			continue
		}

		for _, alert := range alerts {
			s.emailQueue.QueueEmail(s.cfg.EmailRecipient, alert.Subject, alert.Body)
			s.logQueue.Info("alert queued for %s: %s", stock.Code, alert.Subject)
			if s.alertHub != nil {
				s.alertHub.Broadcast(stock.Code, alert)
			}
		}

		alertedAt := now
		if err := s.store.SetSilenced(stock.Code, true, &alertedAt); err != nil {
			s.logQueue.Error("silence %s: %v", stock.Code, err)
		}
	}
}

// loadHistory builds the model inputs for one stock: the history
// series excluding today, newest first, and a quote carrying today's
// price and volume (falling back to the newest stored session when
// today's fetch produced nothing).
func (s *StockServer) loadHistory(stock *models.Stock, now time.Time) ([]*models.ClosingPrice, *models.Quote, bool) {
	from := now.AddDate(0, 0, -s.cfg.HistoryLookbackDays)
	prices, err := s.store.PricesForStock(stock.Code, from, now)
	if err != nil {
		s.logQueue.Error("load history %s: %v", stock.Code, err)
		return nil, nil, false
	}
	if len(prices) == 0 {
		s.logQueue.Info("no historic prices for %s, cannot evaluate", stock.Code)
		return nil, nil, false
	}

	latest := prices[0]
	historyRows := prices
	if sameDay(latest.Date, now) {
		historyRows = prices[1:]
	}

	history := make([]*models.ClosingPrice, len(historyRows))
	var volumeSum float64
	volumeCount := 0
	for i := range historyRows {
		p := &historyRows[i]
		history[i] = &models.ClosingPrice{
			Date:   p.Date,
			Price:  p.Close.InexactFloat64(),
			Volume: p.Volume,
		}
		if volumeCount < 90 {
			volumeSum += float64(p.Volume)
			volumeCount++
		}
	}

	quote := &models.Quote{
		Symbol:        stock.Code,
		Name:          stock.Name,
		LastPrice:     latest.Close.InexactFloat64(),
		CurrentVolume: latest.Volume,
		LastUpdate:    latest.Date,
	}
	if volumeCount > 0 {
		quote.AverageVolume = volumeSum / float64(volumeCount)
	}
	return history, quote, true
}

// refreshStocks replaces the in-memory snapshot with the current
// active list. The swap happens under the lock so readers never see a
// half-built collection.
func (s *StockServer) refreshStocks() error {
	minCap := decimal.NewFromFloat(s.cfg.MarketCapMin)
	maxCap := decimal.NewFromFloat(s.cfg.MarketCapMax)
	stocks, err := s.store.ActiveStocks(minCap, maxCap)
	if err != nil {
		return fmt.Errorf("refresh stock list: %w", err)
	}

	s.mu.Lock()
	s.stocks = stocks
	quotes := make(map[string]*models.Quote, len(stocks))
	for _, stock := range stocks {
		if q, ok := s.quotes[stock.Code]; ok {
			quotes[stock.Code] = q
		}
	}
	s.quotes = quotes
	s.mu.Unlock()
	return nil
}

func (s *StockServer) snapshotStocks() []models.Stock {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Stock, len(s.stocks))
	copy(out, s.stocks)
	return out
}

func (s *StockServer) storeQuote(q *models.Quote) {
	s.mu.Lock()
	s.quotes[q.Symbol] = q
	s.mu.Unlock()
}

func (s *StockServer) sendStartedEmail() {
	if s.cfg.EmailRecipient == "" {
		return
	}
	s.emailQueue.QueueEmail(s.cfg.EmailRecipient, "Stock monitor started",
		fmt.Sprintf("Stock monitor started successfully at %s", s.now().Format("15:04:05 02/01/2006")))
}

func (s *StockServer) queueSystemErrorEmail(err error) {
	if s.cfg.EmailRecipient == "" {
		return
	}
	s.emailQueue.QueueEmail(s.cfg.EmailRecipient, "System Error", err.Error())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
