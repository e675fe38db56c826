package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mbazira/agrostock/internal/domain/models"
)

// LedgerStore defines the persistence operations of the stock ledger. Adjust
// is the single concurrency-safety primitive of the whole system: every stock
// mutation goes through it, never through a blind read-modify-write.
type LedgerStore interface {
	Get(ctx context.Context, key models.LedgerKey) (models.StockRecord, error)

	// Adjust atomically applies quantity += deltaKg only if the post-adjust
	// quantity stays at or above requiredFloor, optionally rewriting the unit
	// price in the same step. A missing key is created when deltaKg > 0.
	// It returns the record as it was before the adjustment (nil when the
	// record was created) and as it is after.
	Adjust(ctx context.Context, key models.LedgerKey, deltaKg, requiredFloor float64, priceOverride *float64) (before *models.StockRecord, after models.StockRecord, err error)

	ListByNameAndBranch(ctx context.Context, produceName, branch string) ([]models.StockRecord, error)
	ListByBranch(ctx context.Context, branch string) ([]models.StockRecord, error)
	Branches(ctx context.Context) ([]string, error)
}

// LedgerRepository implements LedgerStore on MongoDB.
type LedgerRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewLedgerRepository builds a ledger store backed by the stock_records collection.
func NewLedgerRepository(db *mongo.Database) *LedgerRepository {
	return &LedgerRepository{
		coll: db.Collection(stockRecordsColl),
		now:  time.Now,
	}
}

func keyFilter(key models.LedgerKey) bson.M {
	return bson.M{
		"produce_name": key.ProduceName,
		"produce_type": key.ProduceType,
		"branch":       key.Branch,
	}
}

// Get fetches the current record for a key.
func (r *LedgerRepository) Get(ctx context.Context, key models.LedgerKey) (models.StockRecord, error) {
	var record models.StockRecord
	err := r.coll.FindOne(ctx, keyFilter(key)).Decode(&record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StockRecord{}, &models.LedgerKeyNotFoundError{Key: key}
	}
	if err != nil {
		return models.StockRecord{}, fmt.Errorf("fetch stock record: %w", err)
	}
	return record, nil
}

// Adjust performs the guarded conditional update as one FindOneAndUpdate. The
// floor condition lives in the filter, so two concurrent adjustments against
// the same key serialize at the store: the loser's filter no longer matches
// and it observes the guard failure instead of corrupting the counter.
func (r *LedgerRepository) Adjust(ctx context.Context, key models.LedgerKey, deltaKg, requiredFloor float64, priceOverride *float64) (*models.StockRecord, models.StockRecord, error) {
	now := r.now().UTC()

	filter := keyFilter(key)
	filter["quantity_kg"] = bson.M{"$gte": requiredFloor - deltaKg}

	set := bson.M{"updated_at": now}
	if priceOverride != nil {
		set["unit_price"] = *priceOverride
	}
	update := bson.M{
		"$inc":         bson.M{"quantity_kg": deltaKg},
		"$set":         set,
		"$setOnInsert": bson.M{"created_at": now},
	}

	upsert := deltaKg > 0
	opts := options.FindOneAndUpdate().
		SetUpsert(upsert).
		SetReturnDocument(options.Before)

	var before models.StockRecord
	err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&before)
	if err == nil {
		after := before
		after.QuantityKg += deltaKg
		after.UpdatedAt = now
		if priceOverride != nil {
			after.UnitPrice = *priceOverride
		}
		return &before, after, nil
	}

	if errors.Is(err, mongo.ErrNoDocuments) {
		if upsert {
			// No prior document matched, so the update inserted a fresh record.
			price := 0.0
			if priceOverride != nil {
				price = *priceOverride
			}
			after := models.StockRecord{
				LedgerKey:  key,
				QuantityKg: deltaKg,
				UnitPrice:  price,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			return nil, after, nil
		}
		return nil, models.StockRecord{}, r.guardFailure(ctx, key, deltaKg)
	}

	if mongo.IsDuplicateKeyError(err) {
		// Lost an upsert race against a concurrent creator; the record exists
		// now, so a single retry resolves against it.
		return r.Adjust(ctx, key, deltaKg, requiredFloor, priceOverride)
	}

	return nil, models.StockRecord{}, fmt.Errorf("adjust stock record: %w", err)
}

// guardFailure distinguishes a missing record from an insufficient one.
func (r *LedgerRepository) guardFailure(ctx context.Context, key models.LedgerKey, deltaKg float64) error {
	current, err := r.Get(ctx, key)
	if err != nil {
		var notFound *models.LedgerKeyNotFoundError
		if errors.As(err, &notFound) {
			return notFound
		}
		return err
	}
	return &models.InsufficientStockError{
		Key:         key,
		RequestedKg: -deltaKg,
		AvailableKg: current.QuantityKg,
	}
}

// ListByNameAndBranch returns every record sharing a produce name within a
// branch, used to resolve sales that omit the produce type.
func (r *LedgerRepository) ListByNameAndBranch(ctx context.Context, produceName, branch string) ([]models.StockRecord, error) {
	return r.list(ctx, bson.M{"produce_name": produceName, "branch": branch})
}

// ListByBranch returns the full ledger state of one branch.
func (r *LedgerRepository) ListByBranch(ctx context.Context, branch string) ([]models.StockRecord, error) {
	return r.list(ctx, bson.M{"branch": branch})
}

func (r *LedgerRepository) list(ctx context.Context, filter bson.M) ([]models.StockRecord, error) {
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{
		{Key: "produce_name", Value: 1},
		{Key: "produce_type", Value: 1},
	}))
	if err != nil {
		return nil, fmt.Errorf("list stock records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []models.StockRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode stock records: %w", err)
	}
	return records, nil
}

// Branches lists every branch holding at least one stock record.
func (r *LedgerRepository) Branches(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "branch", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}

	branches := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			branches = append(branches, s)
		}
	}
	return branches, nil
}
