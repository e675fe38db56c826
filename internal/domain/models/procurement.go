package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProcurementEvent captures one produce intake transaction. Each event owns a
// contribution to exactly one stock record at a time; revising the produce
// identity or branch migrates that contribution.
type ProcurementEvent struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProduceName  string             `bson:"produce_name" json:"produce_name"`
	ProduceType  string             `bson:"produce_type" json:"produce_type"`
	Branch       string             `bson:"branch" json:"branch"`
	TonnageKg    float64            `bson:"tonnage_kg" json:"tonnage_kg"`
	Cost         float64            `bson:"cost" json:"cost"`
	DealerName   string             `bson:"dealer_name" json:"dealer_name"`
	SellingPrice float64            `bson:"selling_price" json:"selling_price"`
	RecordedBy   string             `bson:"recorded_by" json:"recorded_by"`
	Date         time.Time          `bson:"date" json:"date"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// Key returns the ledger key the event currently contributes to.
func (e ProcurementEvent) Key() LedgerKey {
	return LedgerKey{ProduceName: e.ProduceName, ProduceType: e.ProduceType, Branch: e.Branch}
}

// ProcurementInput is a validated intake or revision payload. The dealer name
// historically arrived under two field names; FirstNonEmpty resolves the pair.
type ProcurementInput struct {
	ProduceName  string    `json:"produce_name"`
	ProduceType  string    `json:"produce_type"`
	Branch       string    `json:"branch"`
	TonnageKg    float64   `json:"tonnage_kg"`
	Cost         float64   `json:"cost"`
	DealerName   string    `json:"dealer_name"`
	SourceName   string    `json:"source_name"`
	SellingPrice float64   `json:"selling_price"`
	Date         time.Time `json:"date"`
}

// Key returns the ledger key addressed by the input.
func (in ProcurementInput) Key() LedgerKey {
	return LedgerKey{ProduceName: in.ProduceName, ProduceType: in.ProduceType, Branch: in.Branch}
}

// Dealer resolves the dealer/source alias pair, preferring dealer_name.
func (in ProcurementInput) Dealer() string {
	return FirstNonEmpty(in.DealerName, in.SourceName)
}

// FirstNonEmpty returns the first candidate with non-blank content.
func FirstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if strings.TrimSpace(c) != "" {
			return c
		}
	}
	return ""
}
