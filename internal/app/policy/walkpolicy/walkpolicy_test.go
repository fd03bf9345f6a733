package walkpolicy_test

import (
	"testing"

	"github.com/kaizenlab/gembatrack/internal/app/policy/walkpolicy"
	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestResolve(t *testing.T) {
	creator := primitive.NewObjectID()
	leader := primitive.NewObjectID()
	participant := primitive.NewObjectID()
	responsible := primitive.NewObjectID()
	stranger := primitive.NewObjectID()

	walk := models.Walk{
		ID:             primitive.NewObjectID(),
		CreatedBy:      creator,
		LeaderID:       &leader,
		ParticipantIDs: []primitive.ObjectID{participant, responsible},
	}
	finding := &models.Finding{
		ID:            primitive.NewObjectID(),
		WalkID:        walk.ID,
		ResponsibleID: responsible,
	}

	tests := []struct {
		name    string
		userID  primitive.ObjectID
		finding *models.Finding
		want    []walkpolicy.Role
	}{
		{"creator", creator, nil, []walkpolicy.Role{walkpolicy.RoleCreator}},
		{"leader", leader, nil, []walkpolicy.Role{walkpolicy.RoleLeader}},
		{"participant", participant, nil, []walkpolicy.Role{walkpolicy.RoleParticipant}},
		{"stranger", stranger, nil, nil},
		{"responsible without finding", responsible, nil, []walkpolicy.Role{walkpolicy.RoleParticipant}},
		{"responsible with finding", responsible, finding,
			[]walkpolicy.Role{walkpolicy.RoleParticipant, walkpolicy.RoleResponsible}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := walkpolicy.Resolve(tt.userID, walk, tt.finding)
			if len(set) != len(tt.want) {
				t.Fatalf("got %d roles %v, want %d", len(set), set, len(tt.want))
			}
			for _, role := range tt.want {
				if !set.Has(role) {
					t.Errorf("missing role %q in %v", role, set)
				}
			}
		})
	}
}

func TestResolve_MultipleRoles(t *testing.T) {
	// The creator who also leads the walk holds both roles at once.
	both := primitive.NewObjectID()
	walk := models.Walk{
		ID:        primitive.NewObjectID(),
		CreatedBy: both,
		LeaderID:  &both,
	}

	set := walkpolicy.Resolve(both, walk, nil)
	if !set.Has(walkpolicy.RoleCreator) || !set.Has(walkpolicy.RoleLeader) {
		t.Errorf("expected creator+leader, got %v", set)
	}
}

func TestResolve_NoLeader(t *testing.T) {
	walk := models.Walk{ID: primitive.NewObjectID(), CreatedBy: primitive.NewObjectID()}
	set := walkpolicy.Resolve(primitive.NewObjectID(), walk, nil)
	if !set.Empty() {
		t.Errorf("expected empty set for stranger on leaderless walk, got %v", set)
	}
}

func TestGuards(t *testing.T) {
	leaderOnly := walkpolicy.RoleSet{walkpolicy.RoleLeader: {}}
	creatorOnly := walkpolicy.RoleSet{walkpolicy.RoleCreator: {}}
	responsibleOnly := walkpolicy.RoleSet{walkpolicy.RoleResponsible: {}}
	none := walkpolicy.RoleSet{}

	if !walkpolicy.CanCreateFinding(leaderOnly) {
		t.Error("leader should create findings")
	}
	if walkpolicy.CanCreateFinding(creatorOnly) {
		t.Error("creator alone should not create findings")
	}

	if !walkpolicy.CanSetDueDate(responsibleOnly) {
		t.Error("responsible should set due date")
	}
	if walkpolicy.CanSetDueDate(creatorOnly) || walkpolicy.CanSetDueDate(leaderOnly) {
		t.Error("due-date setting is exclusively the responsible party's")
	}

	if !walkpolicy.CanClose(responsibleOnly) {
		t.Error("responsible should close")
	}
	if walkpolicy.CanClose(creatorOnly) {
		t.Error("creator should not close on someone else's behalf")
	}

	if !walkpolicy.CanOverrideStatus(creatorOnly) || !walkpolicy.CanOverrideStatus(responsibleOnly) {
		t.Error("creator and responsible should both reach the override path")
	}
	if walkpolicy.CanOverrideStatus(none) {
		t.Error("empty role set should have no override access")
	}
}
