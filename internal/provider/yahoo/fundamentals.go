package yahoo

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/valuator/internal/contracts"
)

// Fundamentals scrapes the key-statistics page for valuation ratios. Yahoo
// publishes no sector average, so that field stays undefined; missing or
// "N/A" cells stay undefined too, never zero.
func (c *Client) Fundamentals(ctx context.Context, symbol string) (contracts.FundamentalSnapshot, error) {
	pageURL := fmt.Sprintf("%s/quote/%s/key-statistics", c.statsBaseURL, url.PathEscape(symbol))

	resp, err := c.getHTML(ctx, pageURL)
	if err != nil {
		return contracts.FundamentalSnapshot{}, fmt.Errorf("fetch key statistics for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	snap, err := parseKeyStatistics(resp.Body)
	if err != nil {
		return contracts.FundamentalSnapshot{}, fmt.Errorf("parse key statistics for %s: %w", symbol, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"symbol":      symbol,
		"trailing_pe": snap.TrailingPE.Or(-1),
		"empty":       snap.Empty(),
	}).Debug("fundamentals fetched")

	return snap, nil
}

// statLabels map table row labels to snapshot fields
var statLabels = map[string]func(*contracts.FundamentalSnapshot, contracts.Value){
	"Trailing P/E": func(s *contracts.FundamentalSnapshot, v contracts.Value) { s.TrailingPE = v },
	"Price/Sales":  func(s *contracts.FundamentalSnapshot, v contracts.Value) { s.PS = v },
	"Price/Book":   func(s *contracts.FundamentalSnapshot, v contracts.Value) { s.PB = v },
	"PEG Ratio":    func(s *contracts.FundamentalSnapshot, v contracts.Value) { s.PEG = v },
}

func parseKeyStatistics(body io.Reader) (contracts.FundamentalSnapshot, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return contracts.FundamentalSnapshot{}, err
	}

	var snap contracts.FundamentalSnapshot
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		label := strings.TrimSpace(cells.First().Text())
		for prefix, assign := range statLabels {
			if strings.HasPrefix(label, prefix) {
				assign(&snap, parseStatValue(cells.Eq(1).Text()))
			}
		}
	})
	return snap, nil
}

// parseStatValue turns a table cell like "1,234.56" or "N/A" into a Value
func parseStatValue(raw string) contracts.Value {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", ""))
	if s == "" || s == "N/A" || s == "--" {
		return contracts.Undefined()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return contracts.Undefined()
	}
	return contracts.Defined(f)
}
