package server

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"GoldSentry/internal/history"
	"GoldSentry/internal/model"
)

// Ticker runs evaluation cycles and accepts manual signals.
type Ticker interface {
	RunTick(ctx context.Context, force bool) model.TickSummary
	InjectManual(sig model.Signal) error
}

// Prices is the batch price view exposed over HTTP.
type Prices interface {
	GetPricesBatch(ctx context.Context, symbols []string) map[string]float64
}

// Server exposes the bot's HTTP surface: health, tick trigger, and the
// read endpoints the dashboard used to consume.
type Server struct {
	ticker  Ticker
	prices  Prices
	history *history.Store
	symbols []string

	engine *gin.Engine
	srv    *http.Server
}

func New(ticker Ticker, prices Prices, hist *history.Store, symbols []string) *Server {
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		ticker:  ticker,
		prices:  prices,
		history: hist,
		symbols: symbols,
		engine:  gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.handleHealth)
	api := s.engine.Group("/api")
	{
		api.GET("/tick", s.handleTick)
		api.GET("/prices", s.handlePrices)
		api.GET("/signals", s.handleSignals)
		api.POST("/signals/manual", s.handleManualSignal)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleTick(c *gin.Context) {
	force := c.Query("force") == "true"
	summary := s.ticker.RunTick(c.Request.Context(), force)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"processedAt": summary.ProcessedAt,
		"count":       summary.Count,
		"signals":     summary.Signals,
		"forced":      summary.Forced,
		"skipped":     summary.Skipped,
	})
}

func (s *Server) handlePrices(c *gin.Context) {
	batch := s.prices.GetPricesBatch(c.Request.Context(), s.symbols)
	c.JSON(http.StatusOK, gin.H{"success": true, "prices": batch})
}

func (s *Server) handleSignals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"signals":       s.history.Snapshot(),
		"monthlyProfit": s.history.MonthlyProfit(),
	})
}

type manualSignalRequest struct {
	Symbol      string  `json:"symbol" binding:"required"`
	Type        string  `json:"type" binding:"required,oneof=BUY SELL"`
	EntryPrice  float64 `json:"entryPrice" binding:"required"`
	StopLoss    float64 `json:"stopLoss"`
	TakeProfit1 float64 `json:"takeProfit1"`
	TakeProfit2 float64 `json:"takeProfit2"`
	Reason      string  `json:"reason"`
}

func (s *Server) handleManualSignal(c *gin.Context) {
	var req manualSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	sig := model.Signal{
		Symbol:      req.Symbol,
		Type:        model.SignalType(req.Type),
		EntryPrice:  req.EntryPrice,
		StopLoss:    req.StopLoss,
		TakeProfit1: req.TakeProfit1,
		TakeProfit2: req.TakeProfit2,
		Reason:      req.Reason,
	}
	if err := s.ticker.InjectManual(sig); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "signal": sig})
}

// Run starts the HTTP listener and blocks until it stops.
func (s *Server) Run(addr string) error {
	s.srv = &http.Server{Addr: addr, Handler: s.engine}
	log.Printf("[INFO] HTTP server listening on %s", addr)
	return s.srv.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
