package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AlertKind enumerates the stock notifications the system records.
type AlertKind string

const (
	// AlertOutOfStock fires when an adjustment drives a counter to exactly zero.
	AlertOutOfStock AlertKind = "out_of_stock"
	// AlertStockUnavailable fires when a sale names produce with no record.
	AlertStockUnavailable AlertKind = "stock_unavailable"
	// AlertLowStockBlock fires when a sale is refused for insufficient stock.
	AlertLowStockBlock AlertKind = "low_stock_block"
)

// StockAlert is a persisted notification about a stock-exhaustion event.
// Writing the record is the trigger; delivery is handled elsewhere.
type StockAlert struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind        AlertKind          `bson:"kind" json:"kind"`
	ProduceName string             `bson:"produce_name" json:"produce_name"`
	ProduceType string             `bson:"produce_type,omitempty" json:"produce_type,omitempty"`
	Branch      string             `bson:"branch" json:"branch"`
	QuantityKg  float64            `bson:"quantity_kg" json:"quantity_kg"`
	Message     string             `bson:"message" json:"message"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
