package model

import "time"

// Role values stored in users.role.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// Roles lists every accepted role value in tier order.
var Roles = []string{RoleUser, RoleModerator, RoleAdmin}

// User represents an account as stored in the `users` table.  Accounts
// are created either by an administrator or implicitly by the
// confirmation-code flow; there is no password.
//
// Fields:
//  ID               – primary key identifier of the user.
//  Username         – unique public handle, used in URLs.
//  Email            – unique email address the confirmation code goes to.
//  FirstName        – optional given name.
//  LastName         – optional family name.
//  Bio              – optional free text about the user.
//  Role             – one of RoleUser, RoleModerator or RoleAdmin.
//  IsStaff          – legacy flag, grants the moderator tier.
//  IsSuperuser      – legacy flag, grants the admin tier.
//  ConfirmationCode – bcrypt hash of the last issued code, empty when none.
//  CreatedAt        – timestamp of creation.
//  UpdatedAt        – timestamp of last update.
type User struct {
	ID               uint64    // users.id
	Username         string    // users.username
	Email            string    // users.email
	FirstName        string    // users.first_name
	LastName         string    // users.last_name
	Bio              string    // users.bio
	Role             string    // users.role
	IsStaff          bool      // users.is_staff
	IsSuperuser      bool      // users.is_superuser
	ConfirmationCode string    // users.confirmation_code
	CreatedAt        time.Time // users.created_at
	UpdatedAt        time.Time // users.updated_at
}
