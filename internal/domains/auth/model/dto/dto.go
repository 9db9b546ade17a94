package dto

import (
	"tablebook/infras/jwt"
	userModel "tablebook/internal/domains/user/model"
	"tablebook/shared/constant"
	gModel "tablebook/shared/model"
	"tablebook/shared/timezone"
	"tablebook/shared/validator"

	"github.com/google/uuid"
)

// facebookUsernamePrefix cannot clash with local usernames, which are alphanumeric.
const facebookUsernamePrefix = "fb_"

type RegisterRequest struct {
	Username    string `json:"username"     validate:"required,alphanum,min=3,max=50" example:"mario"`
	Password    string `json:"password"     validate:"required,min=8"                 example:"s3cretpass"`
	DisplayName string `json:"display_name" validate:"omitempty,max=100"              example:"Mario Rossi"`
}

func (r *RegisterRequest) Validate() error {
	return validator.ValidateStruct(r) //nolint:wrapcheck
}

func (r *RegisterRequest) ToUserModel(hashedPassword string) userModel.User {
	displayName := r.DisplayName
	if displayName == "" {
		displayName = r.Username
	}

	return userModel.User{
		ID:          uuid.NewString(),
		Username:    r.Username,
		Password:    hashedPassword,
		DisplayName: displayName,
		Role:        constant.RoleUser,
		Provider:    constant.ProviderLocal,
		Active:      true,
		Metadata:    gModel.NewMetadata(constant.ContextGuest, timezone.Now()),
	}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required" example:"mario"`
	Password string `json:"password" validate:"required" example:"s3cretpass"`
}

func (l *LoginRequest) Validate() error {
	return validator.ValidateStruct(l) //nolint:wrapcheck
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (r *RefreshTokenRequest) Validate() error {
	return validator.ValidateStruct(r) //nolint:wrapcheck
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

func NewTokenResponse(tokenPair *jwt.TokenPair) TokenResponse {
	return TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		TokenType:    tokenPair.TokenType,
		ExpiresIn:    tokenPair.ExpiresIn,
	}
}

// FacebookUser builds the account created on a first Facebook login.
func FacebookUser(providerID, name string) userModel.User {
	return userModel.User{
		ID:          uuid.NewString(),
		Username:    facebookUsernamePrefix + providerID,
		DisplayName: name,
		Role:        constant.RoleUser,
		Provider:    constant.ProviderFacebook,
		ProviderID:  &providerID,
		Active:      true,
		Metadata:    gModel.NewMetadata(constant.ProviderFacebook, timezone.Now()),
	}
}

type FacebookCallbackRequest struct {
	State string `json:"state" validate:"required"`
	Code  string `json:"code"  validate:"required"`
}

func (f *FacebookCallbackRequest) Validate() error {
	return validator.ValidateStruct(f) //nolint:wrapcheck
}
