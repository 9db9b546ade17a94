package model

import (
	"time"

	"tablebook/shared/model"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID          = "id"
	FieldUsername    = "username"
	FieldPassword    = "password"
	FieldDisplayName = "display_name"
	FieldRole        = "role"
	FieldProvider    = "provider"
	FieldProviderID  = "provider_id"
	FieldActive      = "active"
	FieldLastLogin   = "last_login"
)

// User is either a local account (username + bcrypt password) or a provider
// account keyed by (provider, provider_id).
type User struct {
	ID          string     `db:"id"`
	Username    string     `db:"username"`
	Password    string     `db:"password"`
	DisplayName string     `db:"display_name"`
	Role        string     `db:"role"`
	Provider    string     `db:"provider"`
	ProviderID  *string    `db:"provider_id"`
	Active      bool       `db:"active"`
	LastLogin   *time.Time `db:"last_login"`
	model.Metadata
}

func (u User) Exists() bool {
	return u.ID != ""
}
