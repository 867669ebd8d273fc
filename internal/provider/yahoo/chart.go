package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/wonny/valuator/internal/contracts"
)

// chartResponse mirrors the v8 chart API payload. Quote arrays carry null
// entries for halted days; pointers keep those distinguishable from zero.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// DailyBars fetches the trailing daily history. The request window carries
// extra calendar days so weekends and holidays still leave lookbackDays
// trading days.
func (c *Client) DailyBars(ctx context.Context, symbol string, lookbackDays int) ([]contracts.PriceBar, error) {
	now := time.Now().UTC()
	start := now.AddDate(0, 0, -(lookbackDays*3/2 + 14))

	params := url.Values{}
	params.Set("period1", fmt.Sprintf("%d", start.Unix()))
	params.Set("period2", fmt.Sprintf("%d", now.Unix()))
	params.Set("interval", "1d")
	params.Set("events", "history")

	var payload chartResponse
	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))
	if err := c.getJSON(ctx, c.chartBaseURL, path, params, &payload); err != nil {
		return nil, fmt.Errorf("fetch chart for %s: %w", symbol, err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s: %w",
			symbol, payload.Chart.Error.Code, contracts.ErrDataUnavailable)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("empty chart result for %s: %w", symbol, contracts.ErrDataUnavailable)
	}

	result := payload.Chart.Result[0]
	quote := result.Indicators.Quote[0]

	bars := make([]contracts.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(quote.Open) || i >= len(quote.High) || i >= len(quote.Low) ||
			i >= len(quote.Close) || i >= len(quote.Volume) {
			break
		}
		// skip halted or partial days
		if quote.Open[i] == nil || quote.High[i] == nil || quote.Low[i] == nil ||
			quote.Close[i] == nil || quote.Volume[i] == nil {
			continue
		}
		day := time.Unix(ts, 0).UTC()
		bars = append(bars, contracts.PriceBar{
			Date:   time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC),
			Open:   *quote.Open[i],
			High:   *quote.High[i],
			Low:    *quote.Low[i],
			Close:  *quote.Close[i],
			Volume: *quote.Volume[i],
		})
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("no usable bars for %s: %w", symbol, contracts.ErrDataUnavailable)
	}
	if len(bars) > lookbackDays {
		bars = bars[len(bars)-lookbackDays:]
	}
	if err := contracts.ValidateBars(bars); err != nil {
		return nil, fmt.Errorf("chart data for %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol": symbol,
		"bars":   len(bars),
		"from":   bars[0].Date.Format("2006-01-02"),
		"to":     bars[len(bars)-1].Date.Format("2006-01-02"),
	}).Debug("daily bars fetched")

	return bars, nil
}
