package models

import "time"

// StockReportLine is one produce position within a branch stock report.
type StockReportLine struct {
	ProduceName string  `json:"produce_name"`
	ProduceType string  `json:"produce_type"`
	QuantityKg  float64 `json:"quantity_kg"`
	UnitPrice   float64 `json:"unit_price"`
	StockValue  float64 `json:"stock_value"`
}

// BranchStockReport aggregates the current ledger state of one branch.
type BranchStockReport struct {
	Branch      string            `json:"branch"`
	GeneratedAt time.Time         `json:"generated_at"`
	Lines       []StockReportLine `json:"lines"`
	TotalValue  float64           `json:"total_value"`
}
