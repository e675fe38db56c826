package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	stockRecordsColl      = "stock_records"
	procurementEventsColl = "procurement_events"
	saleEventsColl        = "sale_events"
	staffRosterColl       = "staff_roster"
	stockAlertsColl       = "stock_alerts"
)

// Repository owns the MongoDB connection shared by the collection stores.
type Repository struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewRepository connects to MongoDB and verifies the connection.
func NewRepository(ctx context.Context, uri string, dbName string) (*Repository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Repository{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// Database exposes the underlying handle for the collection stores.
func (r *Repository) Database() *mongo.Database {
	return r.db
}

// EnsureIndexes creates the unique indexes the write paths rely on: one stock
// counter per (produce name, produce type, branch), and one occupant per
// active (branch, role, slot) for floor-governed roles.
func (r *Repository) EnsureIndexes(ctx context.Context) error {
	_, err := r.db.Collection(stockRecordsColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "produce_name", Value: 1},
			{Key: "produce_type", Value: 1},
			{Key: "branch", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("uniq_ledger_key"),
	})
	if err != nil {
		return fmt.Errorf("create stock_records index: %w", err)
	}

	_, err = r.db.Collection(staffRosterColl).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "branch", Value: 1},
			{Key: "role", Value: 1},
			{Key: "slot", Value: 1},
		},
		Options: options.Index().
			SetUnique(true).
			SetName("uniq_roster_slot").
			SetPartialFilterExpression(bson.D{
				{Key: "active", Value: true},
				{Key: "role", Value: bson.D{{Key: "$in", Value: bson.A{"manager", "sales_agent"}}}},
			}),
	})
	if err != nil {
		return fmt.Errorf("create staff_roster index: %w", err)
	}

	return nil
}

// Close closes the MongoDB connection.
func (r *Repository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}
