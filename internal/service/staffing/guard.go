package staffing

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
)

// Service guards roster mutations against the branch staffing floors: one
// manager and two sales agents per branch. Removal or reassignment that would
// drop a branch to or below its floor is refused. The headcount check and the
// subsequent mutation are two store operations, not one atomic step; a race
// between them is a documented residual risk.
type Service struct {
	roster mongodb.RosterStore
	logger *zap.Logger
	now    func() time.Time
}

// NewService constructs a staffing guard over the roster store.
func NewService(roster mongodb.RosterStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{roster: roster, logger: logger, now: time.Now}
}

// CanRemoveOrReassign checks whether taking one person of the given role out
// of the branch keeps the branch at its mandated staffing level. Directors
// carry no branch floor and always pass.
func (s *Service) CanRemoveOrReassign(ctx context.Context, branch string, role models.StaffRole) error {
	floor, ok := models.StaffingFloor(role)
	if !ok {
		return nil
	}

	count, err := s.roster.CountActive(ctx, branch, role)
	if err != nil {
		return err
	}

	if count <= floor {
		return &models.StaffingFloorViolationError{
			Branch:    branch,
			Role:      role,
			Headcount: count,
			Floor:     floor,
		}
	}
	return nil
}

// Hire places a new person on the roster. Branch capacity (one manager, two
// distinctly slotted agents) is enforced by the store's unique slot index.
func (s *Service) Hire(ctx context.Context, actor models.Actor, member models.StaffMember) (models.StaffMember, error) {
	hired, err := s.roster.Insert(ctx, member)
	if err != nil {
		return models.StaffMember{}, err
	}

	s.logger.Info("staff hired",
		zap.String("name", hired.Name),
		zap.String("role", string(hired.Role)),
		zap.String("branch", hired.Branch),
		zap.String("hired_by", actor.Name))

	return hired, nil
}

// Remove deactivates a roster entry after the floor guard passes.
func (s *Service) Remove(ctx context.Context, actor models.Actor, memberID primitive.ObjectID) error {
	member, err := s.roster.Get(ctx, memberID)
	if err != nil {
		return err
	}

	if err := s.CanRemoveOrReassign(ctx, member.Branch, member.Role); err != nil {
		return err
	}

	if err := s.roster.Deactivate(ctx, memberID); err != nil {
		return err
	}

	s.logger.Info("staff removed",
		zap.String("name", member.Name),
		zap.String("branch", member.Branch),
		zap.String("removed_by", actor.Name))

	return nil
}

// Reassign moves a person to a new branch, role and slot. The floor guard runs
// against the assignment being vacated; the destination's capacity is enforced
// by the unique slot index.
func (s *Service) Reassign(ctx context.Context, actor models.Actor, memberID primitive.ObjectID, branch string, role models.StaffRole, slot int) error {
	member, err := s.roster.Get(ctx, memberID)
	if err != nil {
		return err
	}

	if err := s.CanRemoveOrReassign(ctx, member.Branch, member.Role); err != nil {
		return err
	}

	if err := s.roster.Reassign(ctx, memberID, branch, role, slot); err != nil {
		return err
	}

	s.logger.Info("staff reassigned",
		zap.String("name", member.Name),
		zap.String("from_branch", member.Branch),
		zap.String("to_branch", branch),
		zap.String("reassigned_by", actor.Name))

	return nil
}
