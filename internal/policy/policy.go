// Package policy decides whether an actor may perform an action on a
// resource.  Every rule is a plain predicate over an explicit *Actor;
// endpoints combine predicates with && and || and hand the result to
// Authorize, which turns a denial into the right error.
package policy

import (
	"errors"

	"github.com/iliyamo/yamdb/internal/model"
)

// Tier is an ordered authorization level.  A higher tier satisfies every
// check that a lower tier satisfies.
type Tier uint8

const (
	TierNone Tier = iota // anonymous
	TierUser
	TierModerator
	TierAdmin
)

func (t Tier) String() string {
	switch t {
	case TierUser:
		return model.RoleUser
	case TierModerator:
		return model.RoleModerator
	case TierAdmin:
		return model.RoleAdmin
	}
	return "anonymous"
}

// TierOf collapses the stored role and the legacy staff/superuser flags
// into a single tier.
func TierOf(u *model.User) Tier {
	switch {
	case u == nil:
		return TierNone
	case u.IsSuperuser || u.Role == model.RoleAdmin:
		return TierAdmin
	case u.IsStaff || u.Role == model.RoleModerator:
		return TierModerator
	}
	return TierUser
}

// Actor is the identity a request runs as.  A nil *Actor is anonymous.
type Actor struct {
	UserID   uint64
	Username string
	Role     string
	Tier     Tier
}

// ActorFor builds the actor for a loaded user.
func ActorFor(u *model.User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{UserID: u.ID, Username: u.Username, Role: u.Role, Tier: TierOf(u)}
}

// Action is what the actor is trying to do with a resource.
type Action uint8

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

var (
	// ErrAuthenticationRequired is returned when an anonymous actor is
	// denied.  Handlers translate it into 401.
	ErrAuthenticationRequired = errors.New("authentication credentials were not provided")
	// ErrPermissionDenied is returned when an authenticated actor is
	// denied.  Handlers translate it into 403.
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)

// IsSafe reports whether the action only reads state.
func IsSafe(act Action) bool { return act == ActionRead }

// IsAuthenticated reports whether the actor is a known user.
func IsAuthenticated(a *Actor) bool { return a != nil && a.UserID != 0 }

// HasTier reports whether the actor is authenticated with at least tier min.
func HasTier(a *Actor, min Tier) bool { return IsAuthenticated(a) && a.Tier >= min }

// IsAuthor reports whether the actor wrote the resource owned by authorID.
func IsAuthor(a *Actor, authorID uint64) bool { return IsAuthenticated(a) && a.UserID == authorID }

// Authorize converts a policy decision into an error.
func Authorize(a *Actor, allowed bool) error {
	if allowed {
		return nil
	}
	if !IsAuthenticated(a) {
		return ErrAuthenticationRequired
	}
	return ErrPermissionDenied
}
