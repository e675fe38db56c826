package models

import "time"

// LedgerKey identifies one stock counter: a produce identity within a branch.
type LedgerKey struct {
	ProduceName string `bson:"produce_name" json:"produce_name"`
	ProduceType string `bson:"produce_type" json:"produce_type"`
	Branch      string `bson:"branch" json:"branch"`
}

// StockRecord is the current state of one ledger key. Records are created on
// first intake and never deleted; the quantity may reach zero and stay there.
type StockRecord struct {
	LedgerKey  `bson:",inline"`
	QuantityKg float64   `bson:"quantity_kg" json:"quantity_kg"`
	UnitPrice  float64   `bson:"unit_price" json:"unit_price"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// Key returns the identity tuple of the record.
func (r StockRecord) Key() LedgerKey {
	return r.LedgerKey
}
