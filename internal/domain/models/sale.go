package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SettlementVariant distinguishes how a sale is settled. The variant is fixed
// at creation and cannot be changed by a revision.
type SettlementVariant string

const (
	// SettlementImmediate is paid in full at the counter.
	SettlementImmediate SettlementVariant = "immediate"
	// SettlementDeferred is taken on credit by a known dealer.
	SettlementDeferred SettlementVariant = "deferred"
)

// SaleEvent captures one produce outflow transaction.
type SaleEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Variant     SettlementVariant  `bson:"variant" json:"variant"`
	ProduceName string             `bson:"produce_name" json:"produce_name"`
	ProduceType string             `bson:"produce_type" json:"produce_type"`
	Branch      string             `bson:"branch" json:"branch"`
	TonnageKg   float64            `bson:"tonnage_kg" json:"tonnage_kg"`
	UnitPrice   float64            `bson:"unit_price" json:"unit_price"`
	Total       float64            `bson:"total" json:"total"`

	// Immediate settlement fields.
	BuyerName  string  `bson:"buyer_name,omitempty" json:"buyer_name,omitempty"`
	AmountPaid float64 `bson:"amount_paid,omitempty" json:"amount_paid,omitempty"`

	// Deferred settlement fields.
	DealerName     string     `bson:"dealer_name,omitempty" json:"dealer_name,omitempty"`
	DealerLocation string     `bson:"dealer_location,omitempty" json:"dealer_location,omitempty"`
	DealerContact  string     `bson:"dealer_contact,omitempty" json:"dealer_contact,omitempty"`
	AmountDue      float64    `bson:"amount_due,omitempty" json:"amount_due,omitempty"`
	DueDate        *time.Time `bson:"due_date,omitempty" json:"due_date,omitempty"`

	SoldBy    string    `bson:"sold_by" json:"sold_by"`
	Date      time.Time `bson:"date" json:"date"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Key returns the ledger key the event drew stock from.
func (e SaleEvent) Key() LedgerKey {
	return LedgerKey{ProduceName: e.ProduceName, ProduceType: e.ProduceType, Branch: e.Branch}
}

// SaleRequest is a validated outflow payload. ProduceType may be omitted when
// the produce name is unambiguous within the branch.
type SaleRequest struct {
	ProduceName    string     `json:"produce_name"`
	ProduceType    string     `json:"produce_type"`
	Branch         string     `json:"branch"`
	TonnageKg      float64    `json:"tonnage_kg"`
	Amount         float64    `json:"amount"`
	BuyerName      string     `json:"buyer_name"`
	DealerName     string     `json:"dealer_name"`
	DealerLocation string     `json:"dealer_location"`
	DealerContact  string     `json:"dealer_contact"`
	DueDate        *time.Time `json:"due_date"`
	Date           time.Time  `json:"date"`
}
