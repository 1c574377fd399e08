package notifier

import (
	"fmt"
	"strings"

	"GoldSentry/internal/model"
)

func assetName(symbol string) string {
	switch symbol {
	case "XAUUSD":
		return "GOLD (XAU/USD)"
	case "XAGUSD":
		return "SILVER (XAG/USD)"
	default:
		return symbol
	}
}

func priceDecimals(symbol string) int {
	if symbol == "XAGUSD" {
		return 3
	}
	return 2
}

// FormatSignal renders a trade signal as the Telegram message body.
func FormatSignal(sig *model.Signal) string {
	emoji := "🟢"
	if sig.Type == model.SignalSell {
		emoji = "🔴"
	}
	dec := priceDecimals(sig.Symbol)
	risk := sig.EntryPrice - sig.StopLoss
	if risk < 0 {
		risk = -risk
	}
	reward := sig.TakeProfit1 - sig.EntryPrice
	if reward < 0 {
		reward = -reward
	}
	rr := 0.0
	if risk > 0 {
		rr = reward / risk
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s <b>%s SIGNAL</b> %s\n\n", emoji, sig.Type, emoji)
	fmt.Fprintf(&b, "📊 <b>Asset:</b> %s\n", assetName(sig.Symbol))
	fmt.Fprintf(&b, "📈 <b>Action:</b> %s\n", sig.Type)
	fmt.Fprintf(&b, "💰 <b>Entry:</b> %.*f\n", dec, sig.EntryPrice)
	fmt.Fprintf(&b, "🛑 <b>Stop Loss:</b> %.*f\n", dec, sig.StopLoss)
	fmt.Fprintf(&b, "🎯 <b>TP1:</b> %.*f\n", dec, sig.TakeProfit1)
	fmt.Fprintf(&b, "🎯 <b>TP2:</b> %.*f\n", dec, sig.TakeProfit2)
	fmt.Fprintf(&b, "⚖️ <b>R:R:</b> 1:%.1f\n\n", rr)
	fmt.Fprintf(&b, "📝 %s\n", sig.Reason)
	fmt.Fprintf(&b, "🕐 %s\n\n", sig.Time)
	b.WriteString("⚠️ <i>Trade at your own risk. Use proper risk management.</i>")
	return b.String()
}

// FormatHistory renders the recent-signal list for the /history command.
func FormatHistory(signals []model.Signal, monthlyProfit float64) string {
	if len(signals) == 0 {
		return "📭 No signals recorded yet."
	}
	var b strings.Builder
	b.WriteString("📜 <b>Recent Signals</b>\n\n")
	for i, sig := range signals {
		emoji := "🟢"
		if sig.Type == model.SignalSell {
			emoji = "🔴"
		}
		dec := priceDecimals(sig.Symbol)
		fmt.Fprintf(&b, "%d. %s %s %s @ %.*f (%s)\n",
			i+1, emoji, sig.Symbol, sig.Type, dec, sig.EntryPrice, sig.Time)
	}
	fmt.Fprintf(&b, "\n💵 <b>Monthly profit:</b> %.0f pips", monthlyProfit)
	return b.String()
}

// FormatPrices renders the live-price summary for the /prices command.
func FormatPrices(quotes []model.PriceQuote) string {
	var b strings.Builder
	b.WriteString("💹 <b>Live Prices</b>\n\n")
	for _, q := range quotes {
		dec := priceDecimals(q.Symbol)
		fmt.Fprintf(&b, "%s: <b>%.*f</b> (source: %s)\n", assetName(q.Symbol), dec, q.Price, q.Source)
	}
	return b.String()
}

// FormatStatus renders the bot status summary for the /status command.
func FormatStatus(session model.Session, historyCount int, monthlyProfit float64) string {
	var b strings.Builder
	b.WriteString("🤖 <b>GoldSentry Status</b>\n\n")
	fmt.Fprintf(&b, "🕐 Session: %s\n", session)
	fmt.Fprintf(&b, "📜 Signals in history: %d\n", historyCount)
	fmt.Fprintf(&b, "💵 Monthly profit: %.0f pips\n", monthlyProfit)
	return b.String()
}
