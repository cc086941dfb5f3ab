package analysis

import (
	"fmt"
	"time"

	"stockwatch/models"
)

// MACDModel alerts on a crossover between the MACD line (EMA12-EMA26)
// and its nine-period signal line. The full series is rebuilt from the
// history each evaluation with today's price appended, and only the
// last two chronological points decide the crossover.
type MACDModel struct {
	logQueue LogSink
	notified map[string]bool
}

// NewMACDModel creates the model.
func NewMACDModel(logQueue LogSink) *MACDModel {
	return &MACDModel{
		logQueue: logQueue,
		notified: make(map[string]bool),
	}
}

// Name identifies the model in logs and alerts.
func (m *MACDModel) Name() string { return "macd" }

// Evaluate rebuilds the MACD and signal series and fires when the
// MACD >= signal relation flipped between yesterday and today. With
// fewer than two points there is no decision.
func (m *MACDModel) Evaluate(stock *models.Stock, history []*models.ClosingPrice, quote *models.Quote) (bool, string, string) {
	// Copy so the caller's series is untouched, then append today.
	series := make([]*models.ClosingPrice, 0, len(history)+1)
	for _, p := range history {
		series = append(series, &models.ClosingPrice{Date: p.Date, Price: p.Price, Volume: p.Volume})
	}
	today := time.Now().Truncate(24 * time.Hour)
	series = append(series, &models.ClosingPrice{Date: today, Price: quote.LastPrice})
	models.SortClosingPricesAscending(series)

	if len(series) < 2 {
		m.logQueue.Queue(models.NewLogEntry(models.LogInfo,
			fmt.Sprintf("MACDModel: %s has %d prices, cannot evaluate", stock.Code, len(series))))
		return false, "", ""
	}

	ema12 := NewExponentialMovingAverage(12)
	ema26 := NewExponentialMovingAverage(26)
	signal := NewExponentialMovingAverage(9)
	for _, p := range series {
		p.EMA12 = ema12.Calculate(p.Price)
		p.EMA26 = ema26.Calculate(p.Price)
		p.MACDEMA9 = signal.Calculate(p.MACD())
	}

	todayPrice := series[len(series)-1]
	yesterdayPrice := series[len(series)-2]

	yesterdayAbove := yesterdayPrice.MACD() >= yesterdayPrice.MACDEMA9
	todayAbove := todayPrice.MACD() >= todayPrice.MACDEMA9

	if yesterdayAbove == todayAbove {
		m.notified[stock.Code] = false
		return false, "", ""
	}
	if m.notified[stock.Code] {
		return false, "", ""
	}
	m.notified[stock.Code] = true

	if yesterdayAbove {
		// Fell below the signal line, bearish.
		subject := fmt.Sprintf("POSSIBLE MACD SELL ACTION (%s)", stock.Code)
		body := fmt.Sprintf("POSSIBLE MACD SELL ACTION\r\n\r\nStock: %s\r\nCurrent Price: %.4f\r\nMACD: %.4f\r\nSignal: %.4f",
			stock.Code, quote.LastPrice, todayPrice.MACD(), todayPrice.MACDEMA9)
		return true, subject, body
	}
	// Rose above the signal line, bullish.
	subject := fmt.Sprintf("POSSIBLE MACD BUY ACTION (%s)", stock.Code)
	body := fmt.Sprintf("POSSIBLE MACD BUY ACTION\r\n\r\nStock: %s\r\nCurrent Price: %.4f\r\nMACD: %.4f\r\nSignal: %.4f",
		stock.Code, quote.LastPrice, todayPrice.MACD(), todayPrice.MACDEMA9)
	return true, subject, body
}
