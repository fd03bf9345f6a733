// internal/app/policy/walkpolicy/walkpolicy.go

// Package walkpolicy resolves which roles a user holds relative to a
// specific walk and, optionally, one of its findings.
//
// Roles are relative capabilities, not account traits: the same user can
// be creator of one walk, participant on another, and responsible for a
// finding on a third. A user may hold several roles on the same walk at
// once (e.g. creator and leader). An empty role set means no mutation
// access; read access is not role-gated in this design — any signed-in
// user may view any walk and its findings.
package walkpolicy

import (
	"github.com/kaizenlab/gembatrack/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a capability a user holds relative to a walk or finding.
type Role string

const (
	RoleCreator     Role = "creator"
	RoleLeader      Role = "leader"
	RoleParticipant Role = "participant"
	RoleResponsible Role = "responsible"
)

// RoleSet is the set of roles resolved for one (user, walk, finding) triple.
type RoleSet map[Role]struct{}

// Has reports whether the set contains the role.
func (s RoleSet) Has(role Role) bool {
	_, ok := s[role]
	return ok
}

// Empty reports whether no roles were resolved.
func (s RoleSet) Empty() bool { return len(s) == 0 }

// Resolve computes the role set for userID relative to walk and, when
// finding is non-nil, that finding. All membership data lives on the walk
// and finding documents, so no database access is needed here.
func Resolve(userID primitive.ObjectID, walk models.Walk, finding *models.Finding) RoleSet {
	set := RoleSet{}
	if userID == walk.CreatedBy {
		set[RoleCreator] = struct{}{}
	}
	if walk.LeaderID != nil && userID == *walk.LeaderID {
		set[RoleLeader] = struct{}{}
	}
	if walk.HasParticipant(userID) {
		set[RoleParticipant] = struct{}{}
	}
	if finding != nil && userID == finding.ResponsibleID {
		set[RoleResponsible] = struct{}{}
	}
	return set
}

// CanCreateFinding reports whether the role set permits recording a new
// finding on the walk. Only the walk's leader may.
func CanCreateFinding(set RoleSet) bool {
	return set.Has(RoleLeader)
}

// CanSetDueDate reports whether the role set permits setting the finding's
// due date. Exclusively the responsible party's prerogative — creators and
// leaders are rejected too.
func CanSetDueDate(set RoleSet) bool {
	return set.Has(RoleResponsible)
}

// CanClose reports whether the role set permits closing the finding.
// Only the responsible party closes; there is no close-on-behalf path.
func CanClose(set RoleSet) bool {
	return set.Has(RoleResponsible)
}

// CanOverrideStatus reports whether the role set permits the
// administrative status override. The walk's creator or the finding's
// responsible may use it, but transitions into closed remain
// responsible-only (enforced by the lifecycle controller).
func CanOverrideStatus(set RoleSet) bool {
	return set.Has(RoleCreator) || set.Has(RoleResponsible)
}
