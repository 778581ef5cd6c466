// Package authz decides which actor may read or change which record in the
// trainer/student graph.
package authz

import (
	"context"
	"fmt"

	"alcyxob/fitness-coach/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Action is the kind of operation being attempted.
type Action int

const (
	Read Action = iota
	Create
	Update
	Delete
)

func (a Action) String() string {
	switch a {
	case Read:
		return "read"
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Resource is the kind of record an action targets.
type Resource int

const (
	Identity Resource = iota
	Assessment
	WorkoutPlan
	WorkoutCompletionLog
	TrainerStudentLink
)

func (r Resource) String() string {
	switch r {
	case Identity:
		return "identity"
	case Assessment:
		return "assessment"
	case WorkoutPlan:
		return "workout_plan"
	case WorkoutCompletionLog:
		return "workout_completion_log"
	case TrainerStudentLink:
		return "trainer_student_link"
	}
	return fmt.Sprintf("Resource(%d)", int(r))
}

// Reason explains a denial. It is for logs; clients only see a generic message.
type Reason string

const (
	ReasonUnauthorized Reason = "unauthorized"
	ReasonForbidden    Reason = "forbidden"
)

// Decision is the outcome of an authorization check.
type Decision struct {
	Permit bool
	Reason Reason
}

var permit = Decision{Permit: true}

func deny(r Reason) Decision { return Decision{Reason: r} }

// Err converts a denial into a *domain.AuthorizationError.
func (d Decision) Err() error {
	if d.Permit {
		return nil
	}
	return &domain.AuthorizationError{Reason: string(d.Reason)}
}

// Request describes one attempted operation.
//
// OwnerID is the identity the target record belongs to: the student for
// assessments, plans and logs, the target account for Identity, and the
// identity whose links are listed for TrainerStudentLink reads.
type Request struct {
	Actor    domain.Actor
	Action   Action
	Resource Resource
	OwnerID  primitive.ObjectID
	// TrainerOnly marks operations restricted to trainers beyond what the
	// resource rules already imply (search, dashboard).
	TrainerOnly bool
}

// LinkChecker reports whether a trainer is linked to a student.
type LinkChecker interface {
	IsLinked(ctx context.Context, trainerID, studentID primitive.ObjectID) (bool, error)
}

// Policy tunes the decision table.
type Policy struct {
	// RequireLink makes trainer access to a student's records depend on an
	// existing TrainerStudentLink. Disabling it restores the legacy rule where
	// any trainer may read and change any student's records.
	RequireLink bool
}

// DefaultPolicy is the hardened policy.
var DefaultPolicy = Policy{RequireLink: true}

// Guard evaluates requests. It keeps no state between calls.
type Guard struct {
	links  LinkChecker
	policy Policy
}

// NewGuard creates a Guard. links may be nil only when the policy does not
// require links.
func NewGuard(links LinkChecker, policy Policy) *Guard {
	return &Guard{links: links, policy: policy}
}

// Policy returns the policy the guard was built with.
func (g *Guard) Policy() Policy { return g.policy }

// Authorize decides req. A non-nil error means the link lookup failed and no
// decision was reached.
func (g *Guard) Authorize(ctx context.Context, req Request) (Decision, error) {
	role := req.Actor.Role
	if !role.Valid() {
		return deny(ReasonUnauthorized), nil
	}
	if requiresTrainer(req) && role != domain.RoleTrainer {
		return deny(ReasonUnauthorized), nil
	}

	self := req.Actor.ID == req.OwnerID

	switch req.Resource {
	case Identity:
		switch req.Action {
		case Read:
			if self {
				return permit, nil
			}
			if role == domain.RoleTrainer {
				return g.trainerAccess(ctx, req)
			}
			return deny(ReasonForbidden), nil
		case Update:
			if self {
				return permit, nil
			}
			return deny(ReasonForbidden), nil
		case Create:
			return permit, nil
		default:
			return deny(ReasonForbidden), nil
		}

	case Assessment, WorkoutPlan:
		if req.Action == Read && self {
			return permit, nil
		}
		if role == domain.RoleTrainer {
			return g.trainerAccess(ctx, req)
		}
		return deny(ReasonForbidden), nil

	case WorkoutCompletionLog:
		switch req.Action {
		case Read:
			if self {
				return permit, nil
			}
			if role == domain.RoleTrainer {
				return g.trainerAccess(ctx, req)
			}
			return deny(ReasonForbidden), nil
		case Create:
			if self && role == domain.RoleStudent {
				return permit, nil
			}
			return deny(ReasonForbidden), nil
		default:
			// append-only
			return deny(ReasonForbidden), nil
		}

	case TrainerStudentLink:
		if req.Action == Read {
			if self {
				return permit, nil
			}
			return deny(ReasonForbidden), nil
		}
		// Create/Delete: the acting trainer is always the trainer side.
		return permit, nil
	}

	return deny(ReasonForbidden), nil
}

// Check is Authorize folded into a single error: nil, a
// *domain.AuthorizationError, or the link lookup failure.
func (g *Guard) Check(ctx context.Context, req Request) error {
	d, err := g.Authorize(ctx, req)
	if err != nil {
		return err
	}
	return d.Err()
}

func (g *Guard) trainerAccess(ctx context.Context, req Request) (Decision, error) {
	if !g.policy.RequireLink {
		return permit, nil
	}
	if req.OwnerID.IsZero() {
		return deny(ReasonForbidden), nil
	}
	linked, err := g.links.IsLinked(ctx, req.Actor.ID, req.OwnerID)
	if err != nil {
		return Decision{}, err
	}
	if !linked {
		return deny(ReasonForbidden), nil
	}
	return permit, nil
}

func requiresTrainer(req Request) bool {
	if req.TrainerOnly {
		return true
	}
	switch req.Resource {
	case Assessment, WorkoutPlan:
		return req.Action != Read
	case TrainerStudentLink:
		return req.Action == Create || req.Action == Delete
	case Identity:
		return req.Action == Create
	}
	return false
}
