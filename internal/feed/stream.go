package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"GoldSentry/internal/model"
)

// StreamFeed keeps a persistent websocket connection to the TradingView data
// endpoint and caches the last quote and the native 15m candle series per
// symbol. Callers only ever see the Price/Candles accessors; connection state
// and the reconnect loop stay inside this type.
type StreamFeed struct {
	endpoint string
	proxy    string
	symbols  []string // internal symbols, e.g. XAUUSD
	tickers  map[string]string

	mu      sync.RWMutex
	prices  map[string]float64
	candles map[string][]model.Candle

	conn   *websocket.Conn
	connMu sync.Mutex
}

var framePattern = regexp.MustCompile(`~m~\d+~m~`)

// NewStreamFeed creates a stream feed for the given symbols. Data is not
// available until Start has been called and the first quote arrives.
func NewStreamFeed(endpoint, proxy string, symbols []string) *StreamFeed {
	tickers := make(map[string]string, len(symbols))
	for _, s := range symbols {
		tickers[s] = "OANDA:" + s
	}
	return &StreamFeed{
		endpoint: endpoint,
		proxy:    proxy,
		symbols:  symbols,
		tickers:  tickers,
		prices:   make(map[string]float64),
		candles:  make(map[string][]model.Candle),
	}
}

func (f *StreamFeed) Name() string { return "stream" }

func (f *StreamFeed) Supports(_ string) bool { return true }

// FetchQuote satisfies QuoteProvider. A cached price <= 0 means the stream
// has not received data for the symbol yet.
func (f *StreamFeed) FetchQuote(_ context.Context, symbol string) (float64, error) {
	p := f.Price(symbol)
	if p <= 0 {
		return 0, fmt.Errorf("stream: no quote for %s yet", symbol)
	}
	return p, nil
}

// Price returns the last cached quote for symbol, or 0 if none arrived yet.
func (f *StreamFeed) Price(symbol string) float64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.prices[symbol]
}

// Candles returns a copy of the cached native-interval series for symbol.
func (f *StreamFeed) Candles(symbol string) []model.Candle {
	f.mu.RLock()
	defer f.mu.RUnlock()
	cached := f.candles[symbol]
	out := make([]model.Candle, len(cached))
	copy(out, cached)
	return out
}

// Start runs the connect/read/reconnect loop until ctx is cancelled.
func (f *StreamFeed) Start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := f.connectAndRead(ctx); err != nil && ctx.Err() == nil {
			log.Printf("[WARN] stream: connection lost: %v, reconnecting in 5s", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (f *StreamFeed) connectAndRead(ctx context.Context) error {
	dialer := *websocket.DefaultDialer
	if f.proxy != "" {
		if u, err := url.Parse(f.proxy); err == nil {
			dialer.Proxy = http.ProxyURL(u)
		}
	}
	header := http.Header{}
	header.Set("Origin", "https://www.tradingview.com")
	header.Set("User-Agent", "Mozilla/5.0")

	conn, _, err := dialer.DialContext(ctx, f.endpoint, header)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	f.connMu.Lock()
	f.conn = conn
	f.connMu.Unlock()
	defer conn.Close()

	log.Printf("[INFO] stream: connected to %s", f.endpoint)

	if err := f.subscribe(); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	// Drop the read when ctx is cancelled so the loop can exit. The watcher
	// is tied to this connection's lifetime; it must not outlive a reconnect.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		f.handleFrame(string(raw))
	}
}

func (f *StreamFeed) subscribe() error {
	quoteSession := sessionID("qs")
	chartSession := sessionID("cs")

	msgs := []string{
		frameMessage("set_auth_token", "unauthorized_user_token"),
		frameMessage("quote_create_session", quoteSession),
		frameMessage("quote_set_fields", quoteSession, "lp", "open", "high", "low", "close"),
	}
	addSymbols := []interface{}{quoteSession}
	for _, s := range f.symbols {
		addSymbols = append(addSymbols, f.tickers[s])
	}
	msgs = append(msgs, frameMessage("quote_add_symbols", addSymbols...))

	// One chart series per symbol carries the native 15m bars.
	msgs = append(msgs, frameMessage("chart_create_session", chartSession, ""))
	for i, s := range f.symbols {
		alias := fmt.Sprintf("sds_%d", i)
		series := fmt.Sprintf("s%d", i)
		msgs = append(msgs,
			frameMessage("resolve_symbol", chartSession, alias, f.tickers[s]),
			frameMessage("create_series", chartSession, series, series, alias, "15", 200),
		)
	}

	for _, m := range msgs {
		if err := f.writeRaw(m); err != nil {
			return err
		}
	}
	return nil
}

func (f *StreamFeed) writeRaw(payload string) error {
	f.connMu.Lock()
	defer f.connMu.Unlock()
	if f.conn == nil {
		return fmt.Errorf("not connected")
	}
	return f.conn.WriteMessage(websocket.TextMessage, []byte(payload))
}

// handleFrame splits a raw socket frame into packets and dispatches each.
// Heartbeats (~h~N) are echoed back to keep the connection alive.
func (f *StreamFeed) handleFrame(raw string) {
	for _, packet := range framePattern.Split(raw, -1) {
		if packet == "" {
			continue
		}
		if strings.HasPrefix(packet, "~h~") {
			hb := packet
			if err := f.writeRaw(fmt.Sprintf("~m~%d~m~%s", len(hb), hb)); err != nil {
				log.Printf("[WARN] stream: heartbeat echo failed: %v", err)
			}
			continue
		}
		f.handlePacket(packet)
	}
}

type streamEnvelope struct {
	Method string            `json:"m"`
	Params []json.RawMessage `json:"p"`
}

func (f *StreamFeed) handlePacket(packet string) {
	var env streamEnvelope
	if err := json.Unmarshal([]byte(packet), &env); err != nil {
		return // session handshake lines and other non-JSON noise
	}
	switch env.Method {
	case "qsd":
		f.handleQuote(env.Params)
	case "timeseries_data", "du":
		f.handleSeries(env.Params)
	}
}

func (f *StreamFeed) handleQuote(params []json.RawMessage) {
	if len(params) < 2 {
		return
	}
	var update struct {
		Status string `json:"s"`
		Ticker string `json:"n"`
		Values struct {
			LastPrice float64 `json:"lp"`
		} `json:"v"`
	}
	if err := json.Unmarshal(params[1], &update); err != nil || update.Status != "ok" {
		return
	}
	if update.Values.LastPrice <= 0 {
		return
	}
	for symbol, ticker := range f.tickers {
		if ticker == update.Ticker || strings.HasSuffix(update.Ticker, ":"+symbol) {
			f.mu.Lock()
			f.prices[symbol] = update.Values.LastPrice
			f.mu.Unlock()
		}
	}
}

func (f *StreamFeed) handleSeries(params []json.RawMessage) {
	if len(params) < 2 {
		return
	}
	var series map[string]struct {
		Bars []struct {
			Values []float64 `json:"v"` // [time, open, high, low, close, volume]
		} `json:"s"`
	}
	if err := json.Unmarshal(params[1], &series); err != nil {
		return
	}
	for i, symbol := range f.symbols {
		key := fmt.Sprintf("s%d", i)
		data, ok := series[key]
		if !ok || len(data.Bars) == 0 {
			continue
		}
		bars := make([]model.Candle, 0, len(data.Bars))
		for _, b := range data.Bars {
			if len(b.Values) < 5 {
				continue
			}
			bars = append(bars, model.Candle{
				Symbol:    symbol,
				Open:      b.Values[1],
				High:      b.Values[2],
				Low:       b.Values[3],
				Close:     b.Values[4],
				Timestamp: time.Unix(int64(b.Values[0]), 0),
			})
		}
		if len(bars) > 0 {
			f.mu.Lock()
			f.candles[symbol] = mergeBars(f.candles[symbol], bars)
			f.mu.Unlock()
		}
	}
}

// mergeBars overlays an update onto the cached series. Full snapshots replace
// the cache; incremental updates replace or append the trailing bars.
func mergeBars(cached, update []model.Candle) []model.Candle {
	if len(cached) == 0 || len(update) > len(cached)/2 {
		return update
	}
	out := cached
	for _, u := range update {
		replaced := false
		for i := len(out) - 1; i >= 0 && i >= len(out)-len(update); i-- {
			if out[i].Timestamp.Equal(u.Timestamp) {
				out[i] = u
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, u)
		}
	}
	if len(out) > 500 {
		out = out[len(out)-500:]
	}
	return out
}

func sessionID(prefix string) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 12)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return prefix + "_" + string(b)
}

func frameMessage(method string, params ...interface{}) string {
	payload, _ := json.Marshal(struct {
		Method string        `json:"m"`
		Params []interface{} `json:"p"`
	}{Method: method, Params: params})
	return fmt.Sprintf("~m~%d~m~%s", len(payload), payload)
}
