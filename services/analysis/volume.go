package analysis

import (
	"fmt"
	"math"

	"stockwatch/models"
)

// volumeWindow bounds the trailing sessions used for the trend check.
const volumeWindow = 90

// VolumeModel alerts when today's volume exceeds the trailing average
// by the configured threshold factor while recent closes are not
// trending downward. Volume spikes into a falling price are ignored.
type VolumeModel struct {
	alertThreshold float64
	logQueue       LogSink
	notified       map[string]bool
}

// NewVolumeModel creates the model with the configured threshold factor.
func NewVolumeModel(alertThreshold float64, logQueue LogSink) *VolumeModel {
	return &VolumeModel{
		alertThreshold: alertThreshold,
		logQueue:       logQueue,
		notified:       make(map[string]bool),
	}
}

// Name identifies the model in logs and alerts.
func (m *VolumeModel) Name() string { return "volume" }

// Evaluate compares today's volume against the quote's trailing
// average and gates the alert on a non-negative price trend. The
// notified flag keeps a continuing spike from alerting every cycle and
// clears once volume is back under the threshold.
func (m *VolumeModel) Evaluate(stock *models.Stock, history []*models.ClosingPrice, quote *models.Quote) (bool, string, string) {
	if len(history) == 0 {
		m.logQueue.Queue(models.NewLogEntry(models.LogError,
			fmt.Sprintf("VolumeModel: no historic prices found for %s", stock.Code)))
		return false, "", ""
	}

	window := history
	if len(window) > volumeWindow {
		window = window[:volumeWindow]
	}

	closes := make([]float64, len(window))
	for i, p := range window {
		// History arrives most-recent-first; the trend fit wants
		// oldest-first.
		closes[len(window)-1-i] = p.Price
	}

	if float64(quote.CurrentVolume) <= quote.AverageVolume*m.alertThreshold {
		m.notified[stock.Code] = false
		return false, "", ""
	}
	if LinearSlope(closes) < 0 {
		return false, "", ""
	}
	if m.notified[stock.Code] {
		return false, "", ""
	}
	m.notified[stock.Code] = true

	subject := fmt.Sprintf("POSSIBLE VOLUME ACTION (%s)", stock.Code)
	body := fmt.Sprintf("POSSIBLE VOLUME ACTION\r\n\r\nStock: %s\r\nCurrent Price: %.4f\r\nToday Volume: %d\r\nAverage Volume: %.0f",
		stock.Code, quote.LastPrice, quote.CurrentVolume, math.Round(quote.AverageVolume))
	return true, subject, body
}
