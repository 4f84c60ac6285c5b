// Package gate holds the access-control decision for registry entries.
// Authorize is pure: callers pass an explicit identity, never ambient state,
// so the rules can be tested without storage.
package gate

import (
	"github.com/google/uuid"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/registry"
)

// Action is an operation a caller may attempt on an entry.
type Action string

const (
	ActionRead             Action = "read"
	ActionToggleVisibility Action = "toggleVisibility"
	ActionDelete           Action = "delete"
)

// Reason explains a denial.
type Reason string

const (
	ReasonForbidden    Reason = "forbidden"
	ReasonUnauthorized Reason = "unauthorized"
)

// Caller is the resolved identity behind a request. The zero value is an
// anonymous caller.
type Caller struct {
	ID            uuid.UUID
	Role          accounts.Role
	Authenticated bool
}

// Anonymous returns the caller used for requests without a session.
func Anonymous() Caller {
	return Caller{}
}

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  Reason // empty when allowed
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason Reason) Decision {
	return Decision{Reason: reason}
}

// Authorize decides whether the caller may perform the action on the entry.
// Reads of public entries are open to everyone, including anonymous callers;
// everything else requires ownership or the admin role.
func Authorize(caller Caller, entry *registry.Entry, action Action) Decision {
	if action == ActionRead && entry.Visibility == registry.VisibilityPublic {
		return allow()
	}

	if !caller.Authenticated {
		if action == ActionRead {
			return deny(ReasonForbidden)
		}

		return deny(ReasonUnauthorized)
	}

	if caller.ID == entry.OwnerID || caller.Role == accounts.RoleAdmin {
		return allow()
	}

	if action == ActionRead {
		return deny(ReasonForbidden)
	}

	return deny(ReasonUnauthorized)
}
