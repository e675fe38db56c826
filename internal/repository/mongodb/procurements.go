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

// ErrEventNotFound reports a lookup for an event that does not exist.
var ErrEventNotFound = errors.New("event not found")

// ProcurementStore defines persistence for the procurement event log.
type ProcurementStore interface {
	Insert(ctx context.Context, event models.ProcurementEvent) (models.ProcurementEvent, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.ProcurementEvent, error)
	Update(ctx context.Context, event models.ProcurementEvent) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByBranch(ctx context.Context, branch string) ([]models.ProcurementEvent, error)
}

// ProcurementRepository implements ProcurementStore on MongoDB.
type ProcurementRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewProcurementRepository builds a store backed by the procurement_events collection.
func NewProcurementRepository(db *mongo.Database) *ProcurementRepository {
	return &ProcurementRepository{
		coll: db.Collection(procurementEventsColl),
		now:  time.Now,
	}
}

// Insert persists a new intake event and returns it with its assigned ID.
func (r *ProcurementRepository) Insert(ctx context.Context, event models.ProcurementEvent) (models.ProcurementEvent, error) {
	now := r.now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, event)
	if err != nil {
		return models.ProcurementEvent{}, fmt.Errorf("insert procurement event: %w", err)
	}
	event.ID = result.InsertedID.(primitive.ObjectID)
	return event, nil
}

// Get fetches one event by ID.
func (r *ProcurementRepository) Get(ctx context.Context, id primitive.ObjectID) (models.ProcurementEvent, error) {
	var event models.ProcurementEvent
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.ProcurementEvent{}, ErrEventNotFound
	}
	if err != nil {
		return models.ProcurementEvent{}, fmt.Errorf("fetch procurement event: %w", err)
	}
	return event, nil
}

// Update rewrites the mutable fields of an existing event.
func (r *ProcurementRepository) Update(ctx context.Context, event models.ProcurementEvent) error {
	event.UpdatedAt = r.now().UTC()

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": event.ID}, bson.M{"$set": bson.M{
		"produce_name":  event.ProduceName,
		"produce_type":  event.ProduceType,
		"branch":        event.Branch,
		"tonnage_kg":    event.TonnageKg,
		"cost":          event.Cost,
		"dealer_name":   event.DealerName,
		"selling_price": event.SellingPrice,
		"date":          event.Date,
		"updated_at":    event.UpdatedAt,
	}})
	if err != nil {
		return fmt.Errorf("update procurement event: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Delete removes an event from the log.
func (r *ProcurementRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete procurement event: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ListByBranch returns the branch's intake history, newest first.
func (r *ProcurementRepository) ListByBranch(ctx context.Context, branch string) ([]models.ProcurementEvent, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"branch": branch},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list procurement events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []models.ProcurementEvent
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("decode procurement events: %w", err)
	}
	return events, nil
}
