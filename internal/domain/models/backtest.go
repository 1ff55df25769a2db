package models

import "time"

// TradeSide distinguishes long and short trades.
type TradeSide string

const (
	TradeLong  TradeSide = "LONG"
	TradeShort TradeSide = "SHORT"
)

// Trade is one simulated round trip taken during a backtest.
type Trade struct {
	ID         string     `json:"id"`
	EntryTime  time.Time  `json:"entry_time"`
	ExitTime   *time.Time `json:"exit_time,omitempty"`
	Symbol     string     `json:"symbol"`
	Side       TradeSide  `json:"side"`
	Quantity   float64    `json:"quantity"`
	EntryPrice float64    `json:"entry_price"`
	ExitPrice  float64    `json:"exit_price,omitempty"`
	PnL        float64    `json:"pnl"`
	PnLPercent float64    `json:"pnl_percent"`
	Fees       float64    `json:"fees,omitempty"`
}

// EquityPoint is one sample of the equity curve. Drawdown is a fraction
// of the running peak.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
	Drawdown  float64   `json:"drawdown"`
}

// BacktestMetrics is the metrics bundle summarizing a backtest.
type BacktestMetrics struct {
	TotalReturn      float64 `json:"total_return"`
	AnnualizedReturn float64 `json:"annualized_return"`
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	CalmarRatio      float64 `json:"calmar_ratio"`

	MaxDrawdown float64 `json:"max_drawdown"`
	Volatility  float64 `json:"volatility"`

	TotalTrades  int     `json:"total_trades"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
	AvgWin       float64 `json:"avg_win"`
	AvgLoss      float64 `json:"avg_loss"`
	LargestWin   float64 `json:"largest_win"`
	LargestLoss  float64 `json:"largest_loss"`
}

// BacktestResult is the full output of one evaluation phase.
type BacktestResult struct {
	Phase          Phase           `json:"phase"`
	PeriodStart    time.Time       `json:"period_start"`
	PeriodEnd      time.Time       `json:"period_end"`
	InitialCapital float64         `json:"initial_capital"`
	FinalCapital   float64         `json:"final_capital"`
	Metrics        BacktestMetrics `json:"metrics"`
	EquityCurve    []EquityPoint   `json:"equity_curve"`
	Trades         []Trade         `json:"trades"`
}
