package analysis

import (
	"fmt"

	"stockwatch/models"
)

// BollingerBandsModel alerts when the current price crosses outside
// the Bollinger bands: a possible sell above the upper band, a
// possible buy below the lower band. Bands are the mean of the most
// recent bandPeriod prices (today's included) plus/minus two standard
// deviations of the same window.
type BollingerBandsModel struct {
	bandPeriod int
	logQueue   LogSink
	notified   map[string]bool
}

// NewBollingerBandsModel creates the model with the configured band period.
func NewBollingerBandsModel(bandPeriod int, logQueue LogSink) *BollingerBandsModel {
	return &BollingerBandsModel{
		bandPeriod: bandPeriod,
		logQueue:   logQueue,
		notified:   make(map[string]bool),
	}
}

// Name identifies the model in logs and alerts.
func (m *BollingerBandsModel) Name() string { return "bollinger" }

// Evaluate checks the current price against the bands. While the price
// stays outside a band the alert fires only once; the notified flag
// clears when the price returns inside the bands.
func (m *BollingerBandsModel) Evaluate(stock *models.Stock, history []*models.ClosingPrice, quote *models.Quote) (bool, string, string) {
	// The window is today's price plus the most recent bandPeriod-1 closes.
	window := []float64{quote.LastPrice}
	for _, p := range history {
		if len(window) == m.bandPeriod {
			break
		}
		window = append(window, p.Price)
	}

	if len(window) < m.bandPeriod {
		m.logQueue.Queue(models.NewLogEntry(models.LogInfo,
			fmt.Sprintf("BollingerBandsModel: %s has %d of %d required prices, cannot evaluate", stock.Code, len(window), m.bandPeriod)))
		return false, "", ""
	}

	middleBand := mean(window)
	standardDeviation := CalculateStdDev(window)
	upperBand := middleBand + standardDeviation*2
	lowerBand := middleBand - standardDeviation*2

	if quote.LastPrice >= upperBand {
		if m.notified[stock.Code] {
			return false, "", ""
		}
		m.notified[stock.Code] = true
		subject := fmt.Sprintf("POSSIBLE BOLLINGER SELL ACTION (%s)", stock.Code)
		body := fmt.Sprintf("POSSIBLE BOLLINGER SELL ACTION\r\n\r\nStock: %s\r\nCurrent Price: %.4f\r\nUpper Band: %.4f", stock.Code, quote.LastPrice, upperBand)
		return true, subject, body
	}

	if quote.LastPrice <= lowerBand {
		if m.notified[stock.Code] {
			return false, "", ""
		}
		m.notified[stock.Code] = true
		subject := fmt.Sprintf("POSSIBLE BOLLINGER BUY ACTION (%s)", stock.Code)
		body := fmt.Sprintf("POSSIBLE BOLLINGER BUY ACTION\r\n\r\nStock: %s\r\nCurrent Price: %.4f\r\nLower Band: %.4f", stock.Code, quote.LastPrice, lowerBand)
		return true, subject, body
	}

	// Back inside the bands, re-arm.
	m.notified[stock.Code] = false
	return false, "", ""
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
