package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mbazira/agrostock/internal/domain/models"
)

// AlertStore defines persistence for stock alerts.
type AlertStore interface {
	Insert(ctx context.Context, alert models.StockAlert) (models.StockAlert, error)
	ListRecent(ctx context.Context, branch string, limit int64) ([]models.StockAlert, error)
}

// AlertRepository implements AlertStore on MongoDB.
type AlertRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewAlertRepository builds a store backed by the stock_alerts collection.
func NewAlertRepository(db *mongo.Database) *AlertRepository {
	return &AlertRepository{
		coll: db.Collection(stockAlertsColl),
		now:  time.Now,
	}
}

// Insert records one alert.
func (r *AlertRepository) Insert(ctx context.Context, alert models.StockAlert) (models.StockAlert, error) {
	alert.CreatedAt = r.now().UTC()

	result, err := r.coll.InsertOne(ctx, alert)
	if err != nil {
		return models.StockAlert{}, fmt.Errorf("insert stock alert: %w", err)
	}
	alert.ID = result.InsertedID.(primitive.ObjectID)
	return alert, nil
}

// ListRecent returns the branch's latest alerts.
func (r *AlertRepository) ListRecent(ctx context.Context, branch string, limit int64) ([]models.StockAlert, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"branch": branch},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list stock alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []models.StockAlert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, fmt.Errorf("decode stock alerts: %w", err)
	}
	return alerts, nil
}
