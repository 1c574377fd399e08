package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// GoldAPIProvider fetches spot gold quotes from a paid REST API
// (gold-api style: GET {base}/price/XAU with an access-token header).
// It only serves the gold symbol.
type GoldAPIProvider struct {
	BaseURL    string
	APIKey     string
	GoldSymbol string
	Client     *http.Client
}

// NewGoldAPIProvider creates a provider with optional proxy support.
func NewGoldAPIProvider(baseURL, apiKey, goldSymbol, proxyURL string) *GoldAPIProvider {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &GoldAPIProvider{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		GoldSymbol: goldSymbol,
		Client: &http.Client{
			Transport: transport,
		},
	}
}

func (p *GoldAPIProvider) Name() string { return "gold-api" }

func (p *GoldAPIProvider) Supports(symbol string) bool { return symbol == p.GoldSymbol }

func (p *GoldAPIProvider) FetchQuote(ctx context.Context, symbol string) (float64, error) {
	if !p.Supports(symbol) {
		return 0, fmt.Errorf("gold-api: unsupported symbol %s", symbol)
	}
	endpoint := fmt.Sprintf("%s/price/XAU", p.BaseURL)
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return 0, err
	}
	if p.APIKey != "" {
		req.Header.Set("x-access-token", p.APIKey)
	}
	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("gold-api fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("gold-api: status %d", resp.StatusCode)
	}
	var result struct {
		Price     float64 `json:"price"`
		UpdatedAt string  `json:"updatedAt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("gold-api decode: %w", err)
	}
	if result.Price <= 0 {
		return 0, fmt.Errorf("gold-api: non-positive price %v", result.Price)
	}
	return result.Price, nil
}

var _ QuoteProvider = (*GoldAPIProvider)(nil)
