package models

import "time"

// IndicatorType is the closed set of supported indicator kinds.
type IndicatorType string

const (
	IndicatorMA     IndicatorType = "MA"
	IndicatorEMA    IndicatorType = "EMA"
	IndicatorRSI    IndicatorType = "RSI"
	IndicatorMACD   IndicatorType = "MACD"
	IndicatorBB     IndicatorType = "BB"
	IndicatorStoch  IndicatorType = "STOCH"
	IndicatorADX    IndicatorType = "ADX"
	IndicatorCustom IndicatorType = "CUSTOM"
)

// Valid reports whether t is a known indicator type.
func (t IndicatorType) Valid() bool {
	switch t {
	case IndicatorMA, IndicatorEMA, IndicatorRSI, IndicatorMACD,
		IndicatorBB, IndicatorStoch, IndicatorADX, IndicatorCustom:
		return true
	}
	return false
}

// Indicator is one technical indicator referenced by a blueprint.
type Indicator struct {
	Name      string         `json:"name"`
	Type      IndicatorType  `json:"type"`
	Params    map[string]any `json:"params"`
	Timeframe string         `json:"timeframe,omitempty"`
}

// RuleAction is what a trading rule does when its condition fires.
type RuleAction string

const (
	ActionBuy        RuleAction = "BUY"
	ActionSell       RuleAction = "SELL"
	ActionHold       RuleAction = "HOLD"
	ActionCloseLong  RuleAction = "CLOSE_LONG"
	ActionCloseShort RuleAction = "CLOSE_SHORT"
)

// Valid reports whether a is a known action.
func (a RuleAction) Valid() bool {
	switch a {
	case ActionBuy, ActionSell, ActionHold, ActionCloseLong, ActionCloseShort:
		return true
	}
	return false
}

// TradingRule pairs a condition expression with an action. Size is a
// position-size fraction of the portfolio.
type TradingRule struct {
	ID        string     `json:"id"`
	Condition string     `json:"condition"`
	Action    RuleAction `json:"action"`
	Size      float64    `json:"size,omitempty"`
	Priority  int        `json:"priority"`
}

// RiskConstraints bound how aggressively a strategy may trade. All fields
// are fractions in [0,1] except TakeProfit which is only bounded below.
type RiskConstraints struct {
	MaxPositionSize float64 `json:"max_position_size"`
	StopLoss        float64 `json:"stop_loss,omitempty"`
	TakeProfit      float64 `json:"take_profit,omitempty"`
	MaxDailyLoss    float64 `json:"max_daily_loss,omitempty"`
	MaxDrawdown     float64 `json:"max_drawdown,omitempty"`
}

// Blueprint is the structured strategy specification produced by the first
// pipeline phase and consumed read-only by every later phase.
type Blueprint struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Version     string          `json:"version"`
	CreatedAt   time.Time       `json:"created_at"`
	Indicators  []Indicator     `json:"indicators"`
	Rules       []TradingRule   `json:"rules"`
	Constraints RiskConstraints `json:"constraints"`
	Assets      []string        `json:"assets"`
	Timeframes  []string        `json:"timeframes"`
	Tags        []string        `json:"tags,omitempty"`
}

// Strategy is a synthesized candidate derived from a blueprint.
type Strategy struct {
	Name  string   `json:"name"`
	Rules []string `json:"rules"`
}

// ValidTimeframes is the closed set of bar intervals the system trades on.
var ValidTimeframes = map[string]bool{
	"1m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}
