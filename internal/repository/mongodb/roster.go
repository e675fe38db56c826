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

// RosterStore defines persistence for the staff roster.
type RosterStore interface {
	Insert(ctx context.Context, member models.StaffMember) (models.StaffMember, error)
	Get(ctx context.Context, id primitive.ObjectID) (models.StaffMember, error)
	CountActive(ctx context.Context, branch string, role models.StaffRole) (int, error)
	Reassign(ctx context.Context, id primitive.ObjectID, branch string, role models.StaffRole, slot int) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
	ListByBranch(ctx context.Context, branch string) ([]models.StaffMember, error)
}

// RosterRepository implements RosterStore on MongoDB. Slot uniqueness is
// enforced by the uniq_roster_slot partial index rather than application-level
// pre-checks, so concurrent placements cannot double-book a slot.
type RosterRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewRosterRepository builds a store backed by the staff_roster collection.
func NewRosterRepository(db *mongo.Database) *RosterRepository {
	return &RosterRepository{
		coll: db.Collection(staffRosterColl),
		now:  time.Now,
	}
}

// Insert places a new person on the roster.
func (r *RosterRepository) Insert(ctx context.Context, member models.StaffMember) (models.StaffMember, error) {
	now := r.now().UTC()
	member.Active = true
	member.CreatedAt = now
	member.UpdatedAt = now

	result, err := r.coll.InsertOne(ctx, member)
	if mongo.IsDuplicateKeyError(err) {
		return models.StaffMember{}, &models.DuplicateRosterSlotError{
			Branch: member.Branch,
			Role:   member.Role,
			Slot:   member.Slot,
		}
	}
	if err != nil {
		return models.StaffMember{}, fmt.Errorf("insert roster entry: %w", err)
	}
	member.ID = result.InsertedID.(primitive.ObjectID)
	return member, nil
}

// Get fetches one roster entry by ID.
func (r *RosterRepository) Get(ctx context.Context, id primitive.ObjectID) (models.StaffMember, error) {
	var member models.StaffMember
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&member)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.StaffMember{}, ErrEventNotFound
	}
	if err != nil {
		return models.StaffMember{}, fmt.Errorf("fetch roster entry: %w", err)
	}
	return member, nil
}

// CountActive counts the active occupants of (branch, role).
func (r *RosterRepository) CountActive(ctx context.Context, branch string, role models.StaffRole) (int, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{
		"branch": branch,
		"role":   role,
		"active": true,
	})
	if err != nil {
		return 0, fmt.Errorf("count roster entries: %w", err)
	}
	return int(count), nil
}

// Reassign moves a person to a new branch, role and slot.
func (r *RosterRepository) Reassign(ctx context.Context, id primitive.ObjectID, branch string, role models.StaffRole, slot int) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"branch":     branch,
		"role":       role,
		"slot":       slot,
		"updated_at": r.now().UTC(),
	}})
	if mongo.IsDuplicateKeyError(err) {
		return &models.DuplicateRosterSlotError{Branch: branch, Role: role, Slot: slot}
	}
	if err != nil {
		return fmt.Errorf("reassign roster entry: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Deactivate removes a person from the active roster without erasing history.
func (r *RosterRepository) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"active":     false,
		"updated_at": r.now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("deactivate roster entry: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrEventNotFound
	}
	return nil
}

// ListByBranch returns the active roster of one branch.
func (r *RosterRepository) ListByBranch(ctx context.Context, branch string) ([]models.StaffMember, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"branch": branch, "active": true},
		options.Find().SetSort(bson.D{{Key: "role", Value: 1}, {Key: "slot", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list roster entries: %w", err)
	}
	defer cursor.Close(ctx)

	var members []models.StaffMember
	if err := cursor.All(ctx, &members); err != nil {
		return nil, fmt.Errorf("decode roster entries: %w", err)
	}
	return members, nil
}
