package datafetcher

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"stockwatch/models"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// A hung upstream request should not stall a cycle forever; the
// timeout is generous because historical ranges can be slow.
const fetchTimeout = 3 * time.Minute

const dateLayout = "2006-01-02"

// PriceSource returns newly available daily prices for a stock from
// the given date forward. Implementations report transient network
// failure as an error rather than panicking; callers must consult
// ShouldCollectHistory before fetching.
type PriceSource interface {
	Fetch(code string, from time.Time) ([]models.DailyPrice, error)
}

// HTTPPriceSource fetches daily price history from an upstream JSON
// API over HTTP.
type HTTPPriceSource struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPPriceSource creates a source against the given endpoint.
func NewHTTPPriceSource(baseURL string) *HTTPPriceSource {
	return &HTTPPriceSource{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// Fetch requests daily rows for code from the given date through today
// and decodes the provider response.
func (s *HTTPPriceSource) Fetch(code string, from time.Time) ([]models.DailyPrice, error) {
	params := url.Values{}
	params.Set("code", code)
	params.Set("from", from.Format(dateLayout))
	params.Set("to", time.Now().Format(dateLayout))

	requestURL := fmt.Sprintf("%s?%s", s.baseURL, params.Encode())
	resp, err := s.httpClient.Get(requestURL)
	if err != nil {
		return nil, fmt.Errorf("fetch prices for %s: %w", code, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch prices for %s: unexpected status %d", code, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read price response for %s: %w", code, err)
	}

	return parsePrices(code, body)
}

// parsePrices decodes the provider's data array. Rows with unparseable
// dates are skipped rather than failing the whole batch.
func parsePrices(code string, body []byte) ([]models.DailyPrice, error) {
	data := gjson.GetBytes(body, "data")
	if !data.Exists() {
		return nil, fmt.Errorf("price response for %s: missing data array", code)
	}

	var prices []models.DailyPrice
	data.ForEach(func(_, row gjson.Result) bool {
		date, err := time.Parse(dateLayout, row.Get("date").String())
		if err != nil {
			return true
		}
		prices = append(prices, models.DailyPrice{
			StockCode:     code,
			Date:          date,
			Open:          decimal.NewFromFloat(row.Get("open").Float()),
			High:          decimal.NewFromFloat(row.Get("high").Float()),
			Low:           decimal.NewFromFloat(row.Get("low").Float()),
			Close:         decimal.NewFromFloat(row.Get("close").Float()),
			Volume:        row.Get("volume").Int(),
			AdjustedClose: decimal.NewFromFloat(row.Get("adjClose").Float()),
		})
		return true
	})
	return prices, nil
}

// ShouldCollectHistory applies the weekend-aware staleness rule: on a
// weekend the last retrieve must match the Friday before; on a weekday
// the last retrieve must be at least one day old.
func ShouldCollectHistory(now, lastRetrieve time.Time) bool {
	today := now.Truncate(24 * time.Hour)

	if today.Weekday() == time.Saturday || today.Weekday() == time.Sunday {
		friday := today
		for friday.Weekday() != time.Friday {
			friday = friday.AddDate(0, 0, -1)
		}
		return !sameDay(friday, lastRetrieve)
	}

	return lastRetrieve.Truncate(24 * time.Hour).Before(today.AddDate(0, 0, -1))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
