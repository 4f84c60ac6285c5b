package gate_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/trimly/trimly/internal/accounts"
	"github.com/trimly/trimly/internal/gate"
	"github.com/trimly/trimly/internal/registry"
)

func TestAuthorize(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	admin := uuid.New()

	publicEntry := &registry.Entry{ID: uuid.New(), OwnerID: owner, Visibility: registry.VisibilityPublic}
	privateEntry := &registry.Entry{ID: uuid.New(), OwnerID: owner, Visibility: registry.VisibilityPrivate}

	ownerCaller := gate.Caller{ID: owner, Role: accounts.RoleUser, Authenticated: true}
	strangerCaller := gate.Caller{ID: stranger, Role: accounts.RoleUser, Authenticated: true}
	adminCaller := gate.Caller{ID: admin, Role: accounts.RoleAdmin, Authenticated: true}

	tests := []struct {
		name       string
		caller     gate.Caller
		entry      *registry.Entry
		action     gate.Action
		allowed    bool
		wantReason gate.Reason
	}{
		{"anonymous reads public", gate.Anonymous(), publicEntry, gate.ActionRead, true, ""},
		{"stranger reads public", strangerCaller, publicEntry, gate.ActionRead, true, ""},
		{"anonymous reads private", gate.Anonymous(), privateEntry, gate.ActionRead, false, gate.ReasonForbidden},
		{"stranger reads private", strangerCaller, privateEntry, gate.ActionRead, false, gate.ReasonForbidden},
		{"owner reads private", ownerCaller, privateEntry, gate.ActionRead, true, ""},
		{"admin reads private", adminCaller, privateEntry, gate.ActionRead, true, ""},
		{"anonymous toggles public", gate.Anonymous(), publicEntry, gate.ActionToggleVisibility, false, gate.ReasonUnauthorized},
		{"stranger toggles public", strangerCaller, publicEntry, gate.ActionToggleVisibility, false, gate.ReasonUnauthorized},
		{"owner toggles public", ownerCaller, publicEntry, gate.ActionToggleVisibility, true, ""},
		{"admin toggles private", adminCaller, privateEntry, gate.ActionToggleVisibility, true, ""},
		{"anonymous deletes public", gate.Anonymous(), publicEntry, gate.ActionDelete, false, gate.ReasonUnauthorized},
		{"stranger deletes private", strangerCaller, privateEntry, gate.ActionDelete, false, gate.ReasonUnauthorized},
		{"owner deletes private", ownerCaller, privateEntry, gate.ActionDelete, true, ""},
		{"admin deletes public", adminCaller, publicEntry, gate.ActionDelete, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := gate.Authorize(tt.caller, tt.entry, tt.action)

			assert.Equal(t, tt.allowed, decision.Allowed)
			assert.Equal(t, tt.wantReason, decision.Reason)
		})
	}
}

func TestAnonymous(t *testing.T) {
	t.Run("anonymous caller carries no identity", func(t *testing.T) {
		caller := gate.Anonymous()

		assert.False(t, caller.Authenticated)
		assert.Equal(t, uuid.Nil, caller.ID)
	})

	t.Run("zero value is anonymous", func(t *testing.T) {
		entry := &registry.Entry{ID: uuid.New(), OwnerID: uuid.New(), Visibility: registry.VisibilityPrivate}

		decision := gate.Authorize(gate.Caller{}, entry, gate.ActionRead)

		assert.False(t, decision.Allowed)
		assert.Equal(t, gate.ReasonForbidden, decision.Reason)

		decision = gate.Authorize(gate.Caller{}, entry, gate.ActionDelete)

		assert.False(t, decision.Allowed)
		assert.Equal(t, gate.ReasonUnauthorized, decision.Reason)
	})
}
