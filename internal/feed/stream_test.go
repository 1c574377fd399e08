package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// flakyStreamServer accepts websocket connections, drains the subscription
// writes briefly, then drops the link, forcing the client to reconnect.
func flakyStreamServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{
		CheckOrigin: func(*http.Request) bool { return true },
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c.SetReadDeadline(time.Now().Add(20 * time.Millisecond))
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
		c.Close()
	}))
}

func TestStreamFeed_ReconnectDoesNotLeakWatchers(t *testing.T) {
	srv := flakyStreamServer(t)
	defer srv.Close()
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")

	f := NewStreamFeed(endpoint, "", []string{"XAUUSD"})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Warm up so the runtime's own goroutine count settles.
	for i := 0; i < 3; i++ {
		if err := f.connectAndRead(ctx); err == nil {
			t.Fatal("expected the server to drop the connection")
		}
	}
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		f.connectAndRead(ctx)
	}
	time.Sleep(100 * time.Millisecond)
	after := runtime.NumGoroutine()

	// Each connection's watcher must exit with the connection; a count that
	// grows with the number of reconnects means they are piling up.
	if after > before+3 {
		t.Errorf("goroutines grew from %d to %d across 20 reconnects", before, after)
	}
}
