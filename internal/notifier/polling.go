package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"
)

// CommandFunc handles one inbound bot command and returns the reply text.
type CommandFunc func(ctx context.Context, command string) string

type update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		Text string `json:"text"`
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
	} `json:"message"`
}

type updatesResponse struct {
	OK     bool     `json:"ok"`
	Result []update `json:"result"`
}

// Poller long-polls Telegram getUpdates and dispatches commands.
type Poller struct {
	notifier *TelegramNotifier
	handler  CommandFunc
	offset   int64
}

func NewPoller(n *TelegramNotifier, handler CommandFunc) *Poller {
	return &Poller{notifier: n, handler: handler}
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	log.Println("[INFO] Telegram command polling started")
	for {
		select {
		case <-ctx.Done():
			log.Println("[INFO] Telegram command polling stopped")
			return
		default:
		}

		updates, err := p.fetchUpdates(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[WARN] getUpdates failed: %v", err)
			time.Sleep(5 * time.Second)
			continue
		}

		for _, u := range updates {
			p.offset = u.UpdateID + 1
			if u.Message == nil || u.Message.Text == "" {
				continue
			}
			// Only react to messages from the configured chat.
			if strconv.FormatInt(u.Message.Chat.ID, 10) != p.notifier.ChatID {
				continue
			}
			reply := p.handler(ctx, u.Message.Text)
			if reply == "" {
				continue
			}
			// Command replies are idempotent, so transient API errors are
			// worth retrying; signal delivery stays single-shot.
			if err := p.notifier.SendWithRetry(ctx, reply, 2); err != nil {
				log.Printf("[ERROR] command reply failed: %v", err)
			}
		}
	}
}

func (p *Poller) fetchUpdates(ctx context.Context) ([]update, error) {
	apiURL := fmt.Sprintf("https://api.telegram.org/bot%s/getUpdates?offset=%d&timeout=25",
		p.notifier.BotToken, p.offset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.notifier.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("getUpdates status %d", resp.StatusCode)
	}
	var parsed updatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	if !parsed.OK {
		return nil, fmt.Errorf("getUpdates returned ok=false")
	}
	return parsed.Result, nil
}
