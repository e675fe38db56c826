package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mbazira/agrostock/internal/domain/models"
)

// SaleStore defines persistence for the sale event log.
type SaleStore interface {
	Insert(ctx context.Context, event models.SaleEvent) (models.SaleEvent, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.SaleEvent, error)
	Update(ctx context.Context, event models.SaleEvent) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByBranch(ctx context.Context, branch string) ([]models.SaleEvent, error)
}

// SaleRepository implements SaleStore on MongoDB.
type SaleRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewSaleRepository builds a store backed by the sale_events collection.
func NewSaleRepository(db *mongo.Database) *SaleRepository {
	return &SaleRepository{
		coll: db.Collection(saleEventsColl),
		now:  time.Now,
	}
}

// Insert persists a new sale event and returns it with its assigned ID.
func (r *SaleRepository) Insert(ctx context.Context, event models.SaleEvent) (models.SaleEvent, error) {
	now := r.now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, event)
	if err != nil {
		return models.SaleEvent{}, fmt.Errorf("insert sale event: %w", err)
	}
	event.ID = result.InsertedID.(primitive.ObjectID)
	return event, nil
}

// Get fetches one event by ID.
func (r *SaleRepository) Get(ctx context.Context, id primitive.ObjectID) (models.SaleEvent, error) {
	var event models.SaleEvent
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.SaleEvent{}, ErrEventNotFound
	}
	if err != nil {
		return models.SaleEvent{}, fmt.Errorf("fetch sale event: %w", err)
	}
	return event, nil
}

// Update rewrites the mutable fields of an existing event. The settlement
// variant is immutable and deliberately absent from the update document.
func (r *SaleRepository) Update(ctx context.Context, event models.SaleEvent) error {
	event.UpdatedAt = r.now().UTC()

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": event.ID}, bson.M{"$set": bson.M{
		"produce_name":    event.ProduceName,
		"produce_type":    event.ProduceType,
		"branch":          event.Branch,
		"tonnage_kg":      event.TonnageKg,
		"unit_price":      event.UnitPrice,
		"total":           event.Total,
		"buyer_name":      event.BuyerName,
		"amount_paid":     event.AmountPaid,
		"dealer_name":     event.DealerName,
		"dealer_location": event.DealerLocation,
		"dealer_contact":  event.DealerContact,
		"amount_due":      event.AmountDue,
		"due_date":        event.DueDate,
		"date":            event.Date,
		"updated_at":      event.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update sale event: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes an event from the log.
func (r *SaleRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete sale event: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ListByBranch returns the branch's sale history, newest first.
func (r *SaleRepository) ListByBranch(ctx context.Context, branch string) ([]models.SaleEvent, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"branch": branch},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list sale events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.SaleEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode sale events: %w", err)
	}
	return events, nil
}
