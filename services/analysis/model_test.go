package analysis

import (
	"strings"
	"testing"
	"time"

	"stockwatch/models"
)

// discardLog swallows model log entries in tests.
type discardLog struct{}

func (discardLog) Queue(models.LogEntry) {}

// historyDesc builds a most-recent-first history from closes given
// oldest-first, dated one weekday-agnostic day apart ending yesterday.
func historyDesc(closes []float64, volumes []int64) []*models.ClosingPrice {
	n := len(closes)
	out := make([]*models.ClosingPrice, n)
	yesterday := time.Now().Truncate(24*time.Hour).AddDate(0, 0, -1)
	for i := 0; i < n; i++ {
		// closes[n-1] is the most recent and sits at index 0.
		idx := n - 1 - i
		var vol int64
		if volumes != nil {
			vol = volumes[idx]
		}
		out[i] = &models.ClosingPrice{
			Date:   yesterday.AddDate(0, 0, -i),
			Price:  closes[idx],
			Volume: vol,
		}
	}
	return out
}

func repeat(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func stockAndQuote(code string, price float64, volume int64) (*models.Stock, *models.Quote) {
	return &models.Stock{Code: code, Name: code + " plc"},
		&models.Quote{Symbol: code, LastPrice: price, CurrentVolume: volume}
}

func TestBollingerFiresSellOnceAboveUpperBand(t *testing.T) {
	m := NewBollingerBandsModel(20, discardLog{})

	closes := []float64{100, 102, 98, 101, 99, 103, 97, 100, 102, 98, 101, 99, 103, 97, 100, 102, 98, 101, 99}
	history := historyDesc(closes, nil)

	// Compute the band the model will see: current price plus the 19
	// most recent closes.
	current := 130.0
	window := append([]float64{current}, reverse(closes)...)
	upper := mean(window) + 2*CalculateStdDev(window)
	if current < upper {
		t.Fatalf("test series invalid: current %v below upper band %v", current, upper)
	}

	stock, quote := stockAndQuote("VOD", current, 0)

	fired, subject, body := m.Evaluate(stock, history, quote)
	if !fired {
		t.Fatal("expected sell alert above upper band")
	}
	if !strings.Contains(subject, "SELL") || !strings.Contains(subject, "VOD") {
		t.Fatalf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, "Upper Band") {
		t.Fatalf("unexpected body %q", body)
	}

	// Still above the band: suppressed by the notified flag.
	if fired, _, _ = m.Evaluate(stock, history, quote); fired {
		t.Fatal("repeat fire while still outside the band")
	}

	// Back inside: no fire, flag clears.
	quote.LastPrice = 100
	if fired, _, _ = m.Evaluate(stock, history, quote); fired {
		t.Fatal("fire inside the bands")
	}

	// Re-breach fires again.
	quote.LastPrice = current
	if fired, _, _ = m.Evaluate(stock, history, quote); !fired {
		t.Fatal("expected re-fire after returning inside the bands")
	}
}

func TestBollingerFiresBuyBelowLowerBand(t *testing.T) {
	m := NewBollingerBandsModel(20, discardLog{})
	closes := []float64{100, 102, 98, 101, 99, 103, 97, 100, 102, 98, 101, 99, 103, 97, 100, 102, 98, 101, 99}
	history := historyDesc(closes, nil)
	stock, quote := stockAndQuote("BP", 70, 0)

	fired, subject, _ := m.Evaluate(stock, history, quote)
	if !fired || !strings.Contains(subject, "BUY") {
		t.Fatalf("expected buy alert, fired=%v subject=%q", fired, subject)
	}
}

func TestBollingerInsufficientHistory(t *testing.T) {
	m := NewBollingerBandsModel(20, discardLog{})
	history := historyDesc(repeat(100, 5), nil)
	stock, quote := stockAndQuote("GSK", 500, 0)

	if fired, _, _ := m.Evaluate(stock, history, quote); fired {
		t.Fatal("fired with insufficient history")
	}
}

func TestMACDFiresSellOnDownwardCrossover(t *testing.T) {
	m := NewMACDModel(discardLog{})

	// A flat run followed by a sustained rise holds MACD above the
	// signal line; a crash today flips the relation downward.
	closes := repeat(100, 40)
	for i := 1; i <= 20; i++ {
		closes = append(closes, 100+2*float64(i))
	}
	history := historyDesc(closes, nil)
	stock, quote := stockAndQuote("RIO", 80, 0)

	fired, subject, _ := m.Evaluate(stock, history, quote)
	if !fired || !strings.Contains(subject, "SELL") {
		t.Fatalf("expected sell crossover, fired=%v subject=%q", fired, subject)
	}
}

func TestMACDFiresBuyOnUpwardCrossover(t *testing.T) {
	m := NewMACDModel(discardLog{})

	// Flat run, one down day yesterday (MACD below signal), sharp
	// recovery today flips it back above.
	closes := append(repeat(100, 59), 80)
	history := historyDesc(closes, nil)
	stock, quote := stockAndQuote("AZN", 130, 0)

	fired, subject, _ := m.Evaluate(stock, history, quote)
	if !fired || !strings.Contains(subject, "BUY") {
		t.Fatalf("expected buy crossover, fired=%v subject=%q", fired, subject)
	}
}

func TestMACDFlatSeriesNeverFires(t *testing.T) {
	m := NewMACDModel(discardLog{})
	history := historyDesc(repeat(100, 60), nil)
	stock, quote := stockAndQuote("BT", 100, 0)

	if fired, _, _ := m.Evaluate(stock, history, quote); fired {
		t.Fatal("flat series fired")
	}
}

func TestMACDSinglePointNoDecision(t *testing.T) {
	m := NewMACDModel(discardLog{})
	stock, quote := stockAndQuote("HSBA", 100, 0)

	// Empty history means the series holds only today's point.
	if fired, _, _ := m.Evaluate(stock, nil, quote); fired {
		t.Fatal("fired with a single data point")
	}
}

func TestVolumeFiresAboveThresholdOnUpwardTrend(t *testing.T) {
	m := NewVolumeModel(2.0, discardLog{})

	closes := make([]float64, 90)
	volumes := make([]int64, 90)
	for i := range closes {
		closes[i] = 100 + float64(i)*0.1 // gently rising
		// Absurd stored volumes: the threshold must come from the
		// quote's average, not a recount of the rows.
		volumes[i] = 1_000_000
	}
	history := historyDesc(closes, volumes)
	stock, quote := stockAndQuote("LLOY", 109, 2001)
	quote.AverageVolume = 1000

	fired, subject, _ := m.Evaluate(stock, history, quote)
	if !fired || !strings.Contains(subject, "VOLUME") {
		t.Fatalf("expected volume alert, fired=%v subject=%q", fired, subject)
	}

	// A second spike in the same excursion stays quiet.
	if fired, _, _ = m.Evaluate(stock, history, quote); fired {
		t.Fatal("repeat fire while excursion persists")
	}

	// Volume back under the threshold re-arms the model.
	quote.CurrentVolume = 1999
	if fired, _, _ = m.Evaluate(stock, history, quote); fired {
		t.Fatal("fire below threshold")
	}
	quote.CurrentVolume = 2001
	if fired, _, _ = m.Evaluate(stock, history, quote); !fired {
		t.Fatal("expected re-fire after excursion reset")
	}
}

func TestVolumeBelowThresholdDoesNotFire(t *testing.T) {
	m := NewVolumeModel(2.0, discardLog{})
	volumes := make([]int64, 90)
	for i := range volumes {
		volumes[i] = 1000
	}
	history := historyDesc(repeat(100, 90), volumes)
	stock, quote := stockAndQuote("TSCO", 100, 1999)
	quote.AverageVolume = 1000

	if fired, _, _ := m.Evaluate(stock, history, quote); fired {
		t.Fatal("fired below threshold")
	}
}

func TestVolumeSpikeOnDownwardTrendSuppressed(t *testing.T) {
	m := NewVolumeModel(2.0, discardLog{})
	closes := make([]float64, 90)
	volumes := make([]int64, 90)
	for i := range closes {
		closes[i] = 200 - float64(i) // falling
		volumes[i] = 1000
	}
	history := historyDesc(closes, volumes)
	stock, quote := stockAndQuote("BARC", 110, 5000)
	quote.AverageVolume = 1000

	if fired, _, _ := m.Evaluate(stock, history, quote); fired {
		t.Fatal("volume spike on a downward trend fired")
	}
}

func TestVolumeEmptyHistoryNoFire(t *testing.T) {
	m := NewVolumeModel(2.0, discardLog{})
	stock, quote := stockAndQuote("NWG", 100, 5000)
	if fired, _, _ := m.Evaluate(stock, nil, quote); fired {
		t.Fatal("fired with no history")
	}
}

// orderModel records evaluation order for registry tests.
type orderModel struct {
	name  string
	fire  bool
	calls *[]string
}

func (m *orderModel) Name() string { return m.name }
func (m *orderModel) Evaluate(*models.Stock, []*models.ClosingPrice, *models.Quote) (bool, string, string) {
	*m.calls = append(*m.calls, m.name)
	return m.fire, "subject " + m.name, "body " + m.name
}

func TestRegistryEvaluatesInOrder(t *testing.T) {
	var calls []string
	reg := NewRegistry(
		&orderModel{name: "first", fire: true, calls: &calls},
		&orderModel{name: "second", fire: false, calls: &calls},
	)
	reg.Register(&orderModel{name: "third", fire: true, calls: &calls})

	stock, quote := stockAndQuote("VOD", 100, 0)
	alerts := reg.EvaluateAll(stock, nil, quote)

	if want := []string{"first", "second", "third"}; strings.Join(calls, ",") != strings.Join(want, ",") {
		t.Fatalf("evaluation order %v, want %v", calls, want)
	}
	if len(alerts) != 2 || alerts[0].Model != "first" || alerts[1].Model != "third" {
		t.Fatalf("unexpected alerts %+v", alerts)
	}
}

func reverse(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[len(values)-1-i] = v
	}
	return out
}
