package models

import "time"

// AssetStatus is the lifecycle state of a portfolio asset.
type AssetStatus string

const (
	AssetActive   AssetStatus = "active"
	AssetPaused   AssetStatus = "paused"
	AssetArchived AssetStatus = "archived"
	AssetError    AssetStatus = "error"
)

// AssetPerformance tracks how a deployed strategy has done.
type AssetPerformance struct {
	LiveReturn          float64 `json:"live_return,omitempty"`
	PaperReturn         float64 `json:"paper_return,omitempty"`
	BacktestSharpe      float64 `json:"backtest_sharpe"`
	BacktestMaxDrawdown float64 `json:"backtest_max_drawdown"`
	TradesCount         int     `json:"trades_count,omitempty"`
}

// PortfolioAsset is one packaged strategy held inside a portfolio.
// AllocationPercent is expressed in percent, not a fraction.
type PortfolioAsset struct {
	ID                   string           `json:"id"`
	Name                 string           `json:"name"`
	PackageURI           string           `json:"package_uri"`
	AllocationPercent    float64          `json:"allocation_percent"`
	MaxAllocationPercent float64          `json:"max_allocation_percent,omitempty"`
	Performance          AssetPerformance `json:"performance"`
	Status               AssetStatus      `json:"status"`
	AddedAt              time.Time        `json:"added_at"`
}

// Portfolio groups deployed strategies for live or paper trading.
// Asset allocations must sum to 100 percent within a small tolerance.
type Portfolio struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Description   string           `json:"description,omitempty"`
	Assets        []PortfolioAsset `json:"assets"`
	BaseCurrency  string           `json:"base_currency"`
	RiskTolerance RiskTier         `json:"risk_tolerance"`
	TotalValue    float64          `json:"total_value"`
	TotalReturn   float64          `json:"total_return"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
