package datafetcher

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestShouldCollectHistory(t *testing.T) {
	// 2026-08-26 is a Wednesday, 2026-08-29 a Saturday,
	// 2026-08-28 the Friday before it.
	wednesday := date(2026, time.August, 26)
	saturday := date(2026, time.August, 29)
	sunday := date(2026, time.August, 30)
	friday := date(2026, time.August, 28)

	tests := []struct {
		name         string
		now          time.Time
		lastRetrieve time.Time
		want         bool
	}{
		{"weekday, retrieved today", wednesday, wednesday, false},
		{"weekday, retrieved yesterday", wednesday, wednesday.AddDate(0, 0, -1), false},
		{"weekday, two days stale", wednesday, wednesday.AddDate(0, 0, -2), true},
		{"weekday, never retrieved", wednesday, time.Time{}, true},
		{"saturday, retrieved friday", saturday, friday, false},
		{"saturday, retrieved thursday", saturday, friday.AddDate(0, 0, -1), true},
		{"sunday, retrieved friday", sunday, friday, false},
		{"sunday, retrieved saturday", sunday, saturday, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldCollectHistory(tt.now, tt.lastRetrieve); got != tt.want {
				t.Fatalf("ShouldCollectHistory(%s, %s) = %v, want %v",
					tt.now.Format("2006-01-02"), tt.lastRetrieve.Format("2006-01-02"), got, tt.want)
			}
		})
	}
}

func TestParsePrices(t *testing.T) {
	body := []byte(`{"data":[
		{"date":"2026-08-24","open":101.5,"high":104,"low":100.5,"close":103.25,"volume":125000,"adjClose":103.25},
		{"date":"2026-08-25","open":103.5,"high":106,"low":103,"close":105,"volume":98000,"adjClose":105},
		{"date":"not-a-date","open":1,"high":1,"low":1,"close":1,"volume":1,"adjClose":1}
	]}`)

	prices, err := parsePrices("VOD", body)
	if err != nil {
		t.Fatalf("parsePrices: %v", err)
	}
	if len(prices) != 2 {
		t.Fatalf("parsed %d rows, want 2 (bad date row skipped)", len(prices))
	}
	first := prices[0]
	if first.StockCode != "VOD" {
		t.Fatalf("StockCode = %q", first.StockCode)
	}
	if !first.Date.Equal(date(2026, time.August, 24)) {
		t.Fatalf("Date = %s", first.Date)
	}
	if first.Volume != 125000 {
		t.Fatalf("Volume = %d", first.Volume)
	}
	if first.Close.String() != "103.25" {
		t.Fatalf("Close = %s", first.Close)
	}
}

func TestParsePricesMissingData(t *testing.T) {
	if _, err := parsePrices("VOD", []byte(`{"error":"rate limited"}`)); err == nil {
		t.Fatal("expected error for missing data array")
	}
}

func TestHTTPPriceSourceFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("code"); got != "VOD" {
			t.Errorf("code param = %q", got)
		}
		if got := r.URL.Query().Get("from"); got != "2026-08-01" {
			t.Errorf("from param = %q", got)
		}
		w.Write([]byte(`{"data":[{"date":"2026-08-24","open":100,"high":101,"low":99,"close":100.5,"volume":5000,"adjClose":100.5}]}`))
	}))
	defer srv.Close()

	source := NewHTTPPriceSource(srv.URL)
	prices, err := source.Fetch("VOD", date(2026, time.August, 1))
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(prices) != 1 || prices[0].Volume != 5000 {
		t.Fatalf("unexpected prices %+v", prices)
	}
}

func TestHTTPPriceSourceFetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	source := NewHTTPPriceSource(srv.URL)
	if _, err := source.Fetch("VOD", date(2026, time.August, 1)); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}
