package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// GoldScraper pulls the spot gold price out of a public quote page. It is a
// best-effort source and only serves the gold symbol; any markup change
// simply makes the aggregator move on to the next provider.
type GoldScraper struct {
	PageURL    string
	GoldSymbol string
	Client     *http.Client
}

// pricePattern matches a data-price attribute or a bare quote like 2,035.50.
var pricePattern = regexp.MustCompile(`data-price="([0-9][0-9,]*\.?[0-9]*)"|\$\s*([1-9][0-9,]{2,}\.[0-9]{2})`)

func NewGoldScraper(pageURL, goldSymbol, proxyURL string) *GoldScraper {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &GoldScraper{
		PageURL:    pageURL,
		GoldSymbol: goldSymbol,
		Client: &http.Client{
			Transport: transport,
		},
	}
}

func (p *GoldScraper) Name() string { return "scraper" }

func (p *GoldScraper) Supports(symbol string) bool { return symbol == p.GoldSymbol }

func (p *GoldScraper) FetchQuote(ctx context.Context, symbol string) (float64, error) {
	if !p.Supports(symbol) {
		return 0, fmt.Errorf("scraper: unsupported symbol %s", symbol)
	}
	req, err := http.NewRequestWithContext(ctx, "GET", p.PageURL, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := p.Client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("scraper fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("scraper: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, fmt.Errorf("scraper read body: %w", err)
	}

	m := pricePattern.FindSubmatch(body)
	if m == nil {
		return 0, fmt.Errorf("scraper: no price token found")
	}
	token := string(m[1])
	if token == "" {
		token = string(m[2])
	}
	price, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("scraper parse %q: %w", token, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("scraper: non-positive price %v", price)
	}
	return price, nil
}

var _ QuoteProvider = (*GoldScraper)(nil)
