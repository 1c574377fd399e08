package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"GoldSentry/internal/model"
)

// QuoteAPIProvider talks to a general-purpose market data REST API
// (twelvedata-style /price and /time_series endpoints). Symbols the API does
// not list directly fall back to a secondary ticker.
type QuoteAPIProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client

	// SymbolMap maps internal symbols to the API's notation.
	SymbolMap map[string]string
	// FallbackMap holds a secondary ticker tried when the primary fails.
	FallbackMap map[string]string
}

// NewQuoteAPIProvider creates a provider with the default metals symbol maps.
func NewQuoteAPIProvider(baseURL, apiKey, proxyURL string) *QuoteAPIProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &QuoteAPIProvider{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Client: &http.Client{
			Transport: transport,
		},
		SymbolMap: map[string]string{
			"XAUUSD": "XAU/USD",
			"XAGUSD": "XAG/USD",
		},
		FallbackMap: map[string]string{
			"XAUUSD": "GLD",
			"XAGUSD": "SLV",
		},
	}
}

func (p *QuoteAPIProvider) Name() string { return "quote-api" }

func (p *QuoteAPIProvider) Supports(_ string) bool { return true }

func (p *QuoteAPIProvider) apiSymbol(symbol string) string {
	if mapped, ok := p.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// FetchQuote asks for the primary ticker and falls back to the secondary one
// when the API rejects it.
func (p *QuoteAPIProvider) FetchQuote(ctx context.Context, symbol string) (float64, error) {
	price, err := p.fetchPrice(ctx, p.apiSymbol(symbol))
	if err == nil {
		return price, nil
	}
	fallback, ok := p.FallbackMap[symbol]
	if !ok {
		return 0, err
	}
	price, fbErr := p.fetchPrice(ctx, fallback)
	if fbErr != nil {
		return 0, fmt.Errorf("quote-api: primary: %w; fallback %s: %v", err, fallback, fbErr)
	}
	return price, nil
}

func (p *QuoteAPIProvider) fetchPrice(ctx context.Context, apiSymbol string) (float64, error) {
	endpoint := fmt.Sprintf("%s/price?symbol=%s&apikey=%s",
		p.BaseURL, url.QueryEscape(apiSymbol), url.QueryEscape(p.APIKey))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return 0, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("quote-api fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("quote-api: status %d", resp.StatusCode)
	}
	var result struct {
		Price string `json:"price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("quote-api decode: %w", err)
	}
	price, err := strconv.ParseFloat(result.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("quote-api parse price %q: %w", result.Price, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("quote-api: non-positive price %v", price)
	}
	return price, nil
}

// tsValue is one bar as the time-series endpoint returns it (newest first).
type tsValue struct {
	Datetime string `json:"datetime"`
	Open     string `json:"open"`
	High     string `json:"high"`
	Low      string `json:"low"`
	Close    string `json:"close"`
}

// FetchCandles retrieves up to limit bars and returns them oldest first.
func (p *QuoteAPIProvider) FetchCandles(ctx context.Context, symbol string, limit int, interval model.Interval) ([]model.Candle, error) {
	apiInterval := "15min"
	if interval == model.Interval1Hour {
		apiInterval = "1h"
	}
	endpoint := fmt.Sprintf("%s/time_series?symbol=%s&interval=%s&outputsize=%d&apikey=%s",
		p.BaseURL, url.QueryEscape(p.apiSymbol(symbol)), apiInterval, limit, url.QueryEscape(p.APIKey))
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote-api fetch series: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote-api series: status %d", resp.StatusCode)
	}
	var result struct {
		Values []tsValue `json:"values"`
		Status string    `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("quote-api decode series: %w", err)
	}
	if result.Status != "" && result.Status != "ok" {
		return nil, fmt.Errorf("quote-api series: status %q", result.Status)
	}
	if len(result.Values) == 0 {
		return nil, fmt.Errorf("quote-api series: no bars returned")
	}

	bars := make([]model.Candle, 0, len(result.Values))
	for _, v := range result.Values {
		c, err := v.toCandle(symbol)
		if err != nil {
			return nil, fmt.Errorf("quote-api series: %w", err)
		}
		bars = append(bars, c)
	}
	// API delivers newest first; the contract is chronological order.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	if len(bars) > limit {
		bars = bars[len(bars)-limit:]
	}
	return bars, nil
}

func (v tsValue) toCandle(symbol string) (model.Candle, error) {
	ts, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
	if err != nil {
		// Daily granularity responses omit the clock part.
		ts, err = time.Parse("2006-01-02", v.Datetime)
		if err != nil {
			return model.Candle{}, fmt.Errorf("parse datetime %q: %w", v.Datetime, err)
		}
	}
	open, err := strconv.ParseFloat(v.Open, 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("parse open %q: %w", v.Open, err)
	}
	high, err := strconv.ParseFloat(v.High, 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("parse high %q: %w", v.High, err)
	}
	low, err := strconv.ParseFloat(v.Low, 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("parse low %q: %w", v.Low, err)
	}
	closePx, err := strconv.ParseFloat(v.Close, 64)
	if err != nil {
		return model.Candle{}, fmt.Errorf("parse close %q: %w", v.Close, err)
	}
	return model.Candle{
		Symbol:    symbol,
		Open:      open,
		High:      high,
		Low:       low,
		Close:     closePx,
		Timestamp: ts,
	}, nil
}

var (
	_ QuoteProvider  = (*QuoteAPIProvider)(nil)
	_ CandleProvider = (*QuoteAPIProvider)(nil)
)
