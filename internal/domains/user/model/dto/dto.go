package dto

import (
	"time"

	"tablebook/internal/domains/user/model"
	"tablebook/shared/constant"
	gDto "tablebook/shared/dto"
	"tablebook/shared/timezone"
)

type UserResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"display_name"`
	Role        string  `json:"role"`
	Provider    string  `json:"provider"`
	LastLogin   *string `json:"last_login,omitempty"`
	Active      bool    `json:"active"`
	gDto.Metadata
}

func NewUserResponse(m model.User) UserResponse {
	res := UserResponse{
		ID:          m.ID,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		Role:        m.Role,
		Provider:    m.Provider,
		Active:      m.Active,
		Metadata:    gDto.NewMetadata(m.Metadata),
	}

	if m.LastLogin != nil {
		lastLogin := timezone.Format(*m.LastLogin, constant.DateFormat)
		res.LastLogin = &lastLogin
	}

	return res
}

// UpdateLastLoginRequest is applied through shared.TransformFields after a
// successful login.
type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login"`
}

// UpdateProfileRequest refreshes the provider-supplied name on every OAuth login.
type UpdateProfileRequest struct {
	DisplayName string    `db:"display_name" update:"always"`
	LastLogin   time.Time `db:"last_login"`
}
