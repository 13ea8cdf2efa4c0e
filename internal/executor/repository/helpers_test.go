package repository

import (
	"golang-stock-signal/internal/executor/config"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.YahooFinance.SymbolSuffix = ".VN"
	cfg.YahooFinance.MaxRequestPerMinute = 6000
	cfg.Fundamental.MaxRequestPerMinute = 6000
	cfg.TradingView.MaxRequestPerMinute = 6000
	cfg.TradingView.Market = "vietnam"
	cfg.Gemini.MaxRequestPerMinute = 6000
	cfg.Gemini.Model = "gemini-test"
	return cfg
}
