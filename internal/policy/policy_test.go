package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/yamdb/internal/model"
)

func actor(id uint64, role string) *Actor {
	return ActorFor(&model.User{ID: id, Username: "u", Role: role})
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		name string
		user *model.User
		want Tier
	}{
		{"nil", nil, TierNone},
		{"plain user", &model.User{Role: model.RoleUser}, TierUser},
		{"moderator role", &model.User{Role: model.RoleModerator}, TierModerator},
		{"staff flag", &model.User{Role: model.RoleUser, IsStaff: true}, TierModerator},
		{"admin role", &model.User{Role: model.RoleAdmin}, TierAdmin},
		{"superuser flag", &model.User{Role: model.RoleUser, IsSuperuser: true}, TierAdmin},
		{"staff and superuser", &model.User{IsStaff: true, IsSuperuser: true}, TierAdmin},
		{"unknown role", &model.User{Role: "guest"}, TierUser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TierOf(tt.user))
		})
	}
}

func TestTierOrder(t *testing.T) {
	assert.True(t, TierNone < TierUser)
	assert.True(t, TierUser < TierModerator)
	assert.True(t, TierModerator < TierAdmin)
	assert.Equal(t, "moderator", TierModerator.String())
	assert.Equal(t, "anonymous", TierNone.String())
}

func TestCanManageCatalog(t *testing.T) {
	user := actor(1, model.RoleUser)
	mod := actor(2, model.RoleModerator)
	admin := actor(3, model.RoleAdmin)

	for _, a := range []*Actor{nil, user, mod, admin} {
		assert.True(t, CanManageCatalog(a, ActionRead))
	}
	for _, act := range []Action{ActionCreate, ActionUpdate, ActionDelete} {
		assert.False(t, CanManageCatalog(nil, act))
		assert.False(t, CanManageCatalog(user, act))
		assert.False(t, CanManageCatalog(mod, act))
		assert.True(t, CanManageCatalog(admin, act))
	}
}

func TestCanWriteAuthored(t *testing.T) {
	author := actor(1, model.RoleUser)
	other := actor(2, model.RoleUser)
	mod := actor(3, model.RoleModerator)
	admin := actor(4, model.RoleAdmin)
	const authorID = 1

	assert.True(t, CanWriteAuthored(nil, ActionRead, authorID))
	assert.False(t, CanWriteAuthored(nil, ActionCreate, 0))
	assert.True(t, CanWriteAuthored(other, ActionCreate, 0))

	for _, act := range []Action{ActionUpdate, ActionDelete} {
		assert.False(t, CanWriteAuthored(nil, act, authorID))
		assert.True(t, CanWriteAuthored(author, act, authorID))
		assert.False(t, CanWriteAuthored(other, act, authorID))
		assert.True(t, CanWriteAuthored(mod, act, authorID))
		assert.True(t, CanWriteAuthored(admin, act, authorID))
	}
}

func TestAdminTierFromFlags(t *testing.T) {
	assert.False(t, HasTier(nil, TierAdmin))
	assert.False(t, HasTier(actor(1, model.RoleModerator), TierAdmin))
	assert.True(t, HasTier(ActorFor(&model.User{ID: 9, IsSuperuser: true}), TierAdmin))
	assert.True(t, HasTier(ActorFor(&model.User{ID: 9, IsStaff: true}), TierModerator))
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize(nil, true))
	assert.ErrorIs(t, Authorize(nil, false), ErrAuthenticationRequired)
	assert.ErrorIs(t, Authorize(&Actor{}, false), ErrAuthenticationRequired)
	assert.ErrorIs(t, Authorize(actor(1, model.RoleUser), false), ErrPermissionDenied)
}

func TestPreservedRole(t *testing.T) {
	assert.Equal(t, model.RoleModerator, PreservedRole(actor(1, model.RoleModerator)))
}
