package staffing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/mbazira/agrostock/internal/domain/models"
	"github.com/mbazira/agrostock/internal/repository/mongodb"
)

// fakeRoster mirrors the store's slot uniqueness: an active (branch, role,
// slot) triple can be held by at most one manager or sales agent.
type fakeRoster struct {
	members map[primitive.ObjectID]models.StaffMember
}

func newFakeRoster() *fakeRoster {
	return &fakeRoster{members: make(map[primitive.ObjectID]models.StaffMember)}
}

func (f *fakeRoster) slotTaken(branch string, role models.StaffRole, slot int, except primitive.ObjectID) bool {
	if role == models.RoleDirector {
		return false
	}
	for id, m := range f.members {
		if id != except && m.Active && m.Branch == branch && m.Role == role && m.Slot == slot {
			return true
		}
	}
	return false
}

func (f *fakeRoster) Insert(_ context.Context, member models.StaffMember) (models.StaffMember, error) {
	if f.slotTaken(member.Branch, member.Role, member.Slot, primitive.NilObjectID) {
		return models.StaffMember{}, &models.DuplicateRosterSlotError{
			Branch: member.Branch,
			Role:   member.Role,
			Slot:   member.Slot,
		}
	}
	member.ID = primitive.NewObjectID()
	member.Active = true
	f.members[member.ID] = member
	return member, nil
}

func (f *fakeRoster) Get(_ context.Context, id primitive.ObjectID) (models.StaffMember, error) {
	member, ok := f.members[id]
	if !ok {
		return models.StaffMember{}, mongodb.ErrEventNotFound
	}
	return member, nil
}

func (f *fakeRoster) CountActive(_ context.Context, branch string, role models.StaffRole) (int, error) {
	count := 0
	for _, m := range f.members {
		if m.Active && m.Branch == branch && m.Role == role {
			count++
		}
	}
	return count, nil
}

func (f *fakeRoster) Reassign(_ context.Context, id primitive.ObjectID, branch string, role models.StaffRole, slot int) error {
	member, ok := f.members[id]
	if !ok {
		return mongodb.ErrEventNotFound
	}
	if f.slotTaken(branch, role, slot, id) {
		return &models.DuplicateRosterSlotError{Branch: branch, Role: role, Slot: slot}
	}
	member.Branch = branch
	member.Role = role
	member.Slot = slot
	f.members[id] = member
	return nil
}

func (f *fakeRoster) Deactivate(_ context.Context, id primitive.ObjectID) error {
	member, ok := f.members[id]
	if !ok {
		return mongodb.ErrEventNotFound
	}
	member.Active = false
	f.members[id] = member
	return nil
}

func (f *fakeRoster) ListByBranch(_ context.Context, branch string) ([]models.StaffMember, error) {
	var members []models.StaffMember
	for _, m := range f.members {
		if m.Active && m.Branch == branch {
			members = append(members, m)
		}
	}
	return members, nil
}

var director = models.Actor{Name: "Nakato", Role: models.RoleDirector}

func hire(t *testing.T, svc *Service, name string, role models.StaffRole, branch string, slot int) models.StaffMember {
	t.Helper()
	member, err := svc.Hire(context.Background(), director, models.StaffMember{
		Name:   name,
		Role:   role,
		Branch: branch,
		Slot:   slot,
	})
	require.NoError(t, err)
	return member
}

func TestRemoveSoleManagerRefused(t *testing.T) {
	roster := newFakeRoster()
	svc := NewService(roster, nil)

	manager := hire(t, svc, "Okello", models.RoleManager, "Maganjo", 0)

	err := svc.Remove(context.Background(), director, manager.ID)

	var violation *models.StaffingFloorViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "Maganjo", violation.Branch)
	assert.Equal(t, models.RoleManager, violation.Role)
	assert.Equal(t, 1, violation.Headcount)

	kept, err := roster.Get(context.Background(), manager.ID)
	require.NoError(t, err)
	assert.True(t, kept.Active, "refused removal leaves the roster unchanged")
}

func TestRemoveAgentAtFloorRefused(t *testing.T) {
	roster := newFakeRoster()
	svc := NewService(roster, nil)

	agent := hire(t, svc, "Achen", models.RoleSalesAgent, "Maganjo", 1)
	hire(t, svc, "Babirye", models.RoleSalesAgent, "Maganjo", 2)

	err := svc.Remove(context.Background(), director, agent.ID)

	var violation *models.StaffingFloorViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, 2, violation.Floor)
}

func TestRemoveAboveFloorSucceeds(t *testing.T) {
	roster := newFakeRoster()
	svc := NewService(roster, nil)

	hire(t, svc, "Achen", models.RoleSalesAgent, "Maganjo", 1)
	hire(t, svc, "Babirye", models.RoleSalesAgent, "Maganjo", 2)
	extra := hire(t, svc, "Chandiru", models.RoleSalesAgent, "Maganjo", 3)

	require.NoError(t, svc.Remove(context.Background(), director, extra.ID))

	count, err := roster.CountActive(context.Background(), "Maganjo", models.RoleSalesAgent)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRemoveDirectorAlwaysAllowed(t *testing.T) {
	roster := newFakeRoster()
	svc := NewService(roster, nil)

	boss := hire(t, svc, "Nakato", models.RoleDirector, "", 0)
	require.NoError(t, svc.Remove(context.Background(), director, boss.ID))
}

func TestHireRefusesOccupiedSlot(t *testing.T) {
	roster := newFakeRoster()
	svc := NewService(roster, nil)

	hire(t, svc, "Okello", models.RoleManager, "Maganjo", 0)

	_, err := svc.Hire(context.Background(), director, models.StaffMember{
		Name:   "Opio",
		Role:   models.RoleManager,
		Branch: "Maganjo",
		Slot:   0,
	})

	var duplicate *models.DuplicateRosterSlotError
	require.ErrorAs(t, err, &duplicate)
	assert.Equal(t, models.RoleManager, duplicate.Role)
}

func TestReassignGuardsVacatedAssignment(t *testing.T) {
	roster := newFakeRoster()
	svc := NewService(roster, nil)

	manager := hire(t, svc, "Okello", models.RoleManager, "Maganjo", 0)

	err := svc.Reassign(context.Background(), director, manager.ID, "Matugga", models.RoleManager, 0)

	var violation *models.StaffingFloorViolationError
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, "Maganjo", violation.Branch, "the branch being vacated is the one guarded")
}

func TestReassignAboveFloorMovesBranches(t *testing.T) {
	roster := newFakeRoster()
	svc := NewService(roster, nil)

	hire(t, svc, "Okello", models.RoleManager, "Maganjo", 0)
	// A second manager in the branch keeps it above the floor of one.
	spare, err := svc.Hire(context.Background(), director, models.StaffMember{
		Name:   "Opio",
		Role:   models.RoleManager,
		Branch: "Maganjo",
		Slot:   1,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Reassign(context.Background(), director, spare.ID, "Matugga", models.RoleManager, 0))

	moved, err := roster.Get(context.Background(), spare.ID)
	require.NoError(t, err)
	assert.Equal(t, "Matugga", moved.Branch)
}

func TestReassignRefusesOccupiedDestinationSlot(t *testing.T) {
	roster := newFakeRoster()
	svc := NewService(roster, nil)

	hire(t, svc, "Achen", models.RoleSalesAgent, "Maganjo", 1)
	hire(t, svc, "Babirye", models.RoleSalesAgent, "Maganjo", 2)
	extra := hire(t, svc, "Chandiru", models.RoleSalesAgent, "Maganjo", 3)
	hire(t, svc, "Dembe", models.RoleSalesAgent, "Matugga", 1)

	err := svc.Reassign(context.Background(), director, extra.ID, "Matugga", models.RoleSalesAgent, 1)

	var duplicate *models.DuplicateRosterSlotError
	require.ErrorAs(t, err, &duplicate)
}
