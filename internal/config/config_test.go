package config

import (
	"testing"

	"github.com/Alias1177/Sniper/models"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.BridgeURL != "http://localhost:8787" {
		t.Errorf("unexpected bridge url: %s", cfg.BridgeURL)
	}
	if len(cfg.Symbols) != 1 || cfg.Symbols[0] != "EURUSD" {
		t.Errorf("unexpected symbols: %v", cfg.Symbols)
	}
	if cfg.Timeframe != models.M15 {
		t.Errorf("unexpected timeframe: %v", cfg.Timeframe)
	}
	if cfg.EnableSniper || cfg.EnableSmartSniper || cfg.EnableSmartMoney {
		t.Error("strategies must default to disabled")
	}
	if cfg.RiskPerTrade != 1.0 || cfg.RiskAllTrades != 5.0 || cfg.DailyRisk != 10.0 {
		t.Errorf("unexpected risk defaults: %v %v %v", cfg.RiskPerTrade, cfg.RiskAllTrades, cfg.DailyRisk)
	}
	if cfg.SummarySchedule != "0 21 * * *" {
		t.Errorf("unexpected summary schedule: %s", cfg.SummarySchedule)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SYMBOLS", "EURUSD, GBPUSD ,USDJPY,")
	t.Setenv("TIMEFRAME", "5")
	t.Setenv("ENABLE_SNIPER", "true")
	t.Setenv("RISK_PER_TRADE", "2.5")
	t.Setenv("TELEGRAM_CHAT_ID", "-100200300")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"EURUSD", "GBPUSD", "USDJPY"}
	if len(cfg.Symbols) != len(expected) {
		t.Fatalf("unexpected symbols: %v", cfg.Symbols)
	}
	for i, s := range expected {
		if cfg.Symbols[i] != s {
			t.Errorf("symbol %d: expected %s, got %s", i, s, cfg.Symbols[i])
		}
	}
	if cfg.Timeframe != models.M5 {
		t.Errorf("unexpected timeframe: %v", cfg.Timeframe)
	}
	if !cfg.EnableSniper {
		t.Error("ENABLE_SNIPER=true must enable the strategy")
	}
	if cfg.RiskPerTrade != 2.5 {
		t.Errorf("unexpected per-trade risk: %v", cfg.RiskPerTrade)
	}
	if cfg.TelegramChatID != -100200300 {
		t.Errorf("unexpected chat id: %v", cfg.TelegramChatID)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "soon")
	t.Setenv("RISK_PER_TRADE", "a lot")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PollInterval != 60 {
		t.Errorf("malformed int must fall back to the default, got %d", cfg.PollInterval)
	}
	if cfg.RiskPerTrade != 1.0 {
		t.Errorf("malformed float must fall back to the default, got %v", cfg.RiskPerTrade)
	}
}
