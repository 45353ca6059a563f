// Package notifier pushes trade events to Telegram. Delivery is best
// effort: a failed push is logged and never blocks the trading loop.
package notifier

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Alias1177/Sniper/internal/risk"
	"github.com/Alias1177/Sniper/models"
)

// Telegram sends formatted messages to a single chat.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegram creates a Telegram notifier. An empty token disables
// notifications: the returned notifier accepts calls and does nothing.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	logger := log.With().Str("component", "notifier").Logger()
	if token == "" {
		logger.Warn().Msg("no telegram token configured, notifications disabled")
		return &Telegram{logger: logger}, nil
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID, logger: logger}, nil
}

// NotifySignal pushes a fired signal together with its sized volume.
func (t *Telegram) NotifySignal(sig *models.Signal, size *risk.PositionSizeResult) {
	text := fmt.Sprintf(
		"%s %s %s\nvolume: %.2f (risk %.2f, %.1f%%)\nprice: %.5f\nstop loss: %.5f\ntake profit: %.5f\n%s",
		strings.ToUpper(string(sig.Action)), sig.Symbol, sig.Strategy,
		size.Volume, size.RiskAmount, size.RiskPercent,
		sig.Price, sig.StopLoss, sig.TakeProfit,
		sig.Comment,
	)
	t.send(text)
}

// NotifyDailySummary pushes the day's trade recap.
func (t *Telegram) NotifyDailySummary(trades []models.Trade) {
	if len(trades) == 0 {
		t.send("daily summary: no closed trades today")
		return
	}

	var total float64
	wins := 0
	for _, tr := range trades {
		total += tr.Profit
		if tr.Profit > 0 {
			wins++
		}
	}
	t.send(fmt.Sprintf(
		"daily summary: %d trades, %d wins, total P&L %.2f",
		len(trades), wins, total,
	))
}

// NotifyError pushes an operational warning.
func (t *Telegram) NotifyError(msg string) {
	t.send("⚠️ " + msg)
}

func (t *Telegram) send(text string) {
	if t.bot == nil {
		return
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		t.logger.Error().Err(err).Msg("failed to send telegram message")
	}
}
