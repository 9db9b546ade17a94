package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tablebook/config"
	"tablebook/infras/facebook"
	"tablebook/infras/jwt"
	"tablebook/infras/otel"
	"tablebook/internal/domains/auth/model/dto"
	userModel "tablebook/internal/domains/user/model"
	userDto "tablebook/internal/domains/user/model/dto"
	userRepo "tablebook/internal/domains/user/repository"
	"tablebook/shared"
	"tablebook/shared/cache"
	"tablebook/shared/constant"
	gDto "tablebook/shared/dto"
	"tablebook/shared/failure"
	"tablebook/shared/password"
	gRepo "tablebook/shared/repository"
	"tablebook/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	cacheRevokedToken = "auth:revoked"
	cacheOAuthState   = "auth:oauth_state"

	MessageUsernameTaken = "Username already taken"
	MessageUserNotFound  = "User not found"
)

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) (userDto.UserResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.TokenResponse, error)
	// Logout revokes the access token carried by ctx until it would have expired anyway.
	Logout(ctx context.Context) error
	IsRevoked(ctx context.Context, tokenID string) bool
	Me(ctx context.Context) (userDto.UserResponse, error)
	FacebookLoginURL(ctx context.Context) (string, error)
	FacebookCallback(ctx context.Context, req dto.FacebookCallbackRequest) (dto.TokenResponse, error)
}

type serviceImpl struct {
	userRepo   userRepo.User
	cfg        *config.Config
	cache      cache.RedisCache
	jwtService jwt.JWT
	facebook   facebook.Provider
	otel       otel.Otel
}

func New(userRepo userRepo.User, cfg *config.Config, cache cache.RedisCache, jwt jwt.JWT, facebook facebook.Provider, otel otel.Otel) Auth {
	return &serviceImpl{
		userRepo:   userRepo,
		cfg:        cfg,
		cache:      cache,
		jwtService: jwt,
		facebook:   facebook,
		otel:       otel,
	}
}

func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (res userDto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Validate(); err != nil {
		return res, err //nolint:wrapcheck
	}

	exists, err := s.userRepo.Exist(ctx, byUsername(req.Username))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if user exists")

		return res, fmt.Errorf("failed to check if user exists: %w", err)
	}

	if exists {
		return res, failure.Conflict(MessageUsernameTaken) // nolint:wrapcheck
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return res, fmt.Errorf("failed to hash password: %w", err)
	}

	user := req.ToUserModel(hashedPassword)

	if err = s.userRepo.Insert(ctx, user); err != nil {
		if errors.Is(err, gRepo.ErrUniqueViolation) {
			return res, failure.Conflict(MessageUsernameTaken) // nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create user")

		return res, fmt.Errorf("failed to create user: %w", err)
	}

	return userDto.NewUserResponse(user), nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Validate(); err != nil {
		return res, err //nolint:wrapcheck
	}

	filter := byUsername(req.Username)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.Exists() || user.Password == "" {
		log.Warn().Str("username", req.Username).Msg("login attempt with unknown username")

		return res, failure.InvalidCredentialsError
	}

	if err = password.Verify(req.Password, user.Password); err != nil {
		log.Warn().Str("username", req.Username).Msg("login attempt with wrong password")

		return res, failure.InvalidCredentialsError
	}

	if !user.Active {
		return res, failure.Forbidden("Account is deactivated") // nolint:wrapcheck
	}

	res, err = s.issue(user)
	if err != nil {
		return res, err
	}

	s.touch(ctx, user, userDto.UpdateLastLoginRequest{LastLogin: timezone.Now()})

	return res, nil
}

// RefreshToken exchanges a refresh token for a new pair. The old refresh
// token is claimed in the revocation list first, so only one exchange wins.
func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Validate(); err != nil {
		return res, err //nolint:wrapcheck
	}

	claims, err := s.jwtService.ValidateToken(req.RefreshToken, jwt.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to validate refresh token")

		return res, failure.Unauthorized("Invalid refresh token") // nolint:wrapcheck
	}

	claimed, err := s.cache.Claim(ctx, shared.BuildCacheKey(cacheRevokedToken, claims.TokenID), true, max(int(claims.Remaining().Seconds()), 1))
	if err != nil {
		log.Error().Err(err).Str("token_id", claims.TokenID).Msg("failed to claim refresh token")

		return res, fmt.Errorf("failed to claim refresh token: %w", err)
	}

	if !claimed {
		log.Warn().Str("token_id", claims.TokenID).Msg("refresh token reused")

		return res, failure.Unauthorized("Refresh token has been revoked") // nolint:wrapcheck
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(claims.UserID, claims.Username, claims.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return dto.NewTokenResponse(tokenPair), nil
}

func (s *serviceImpl) Logout(ctx context.Context) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Logout")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tokenID, _ := ctx.Value(constant.ContextKeyTokenID).(string)
	if tokenID == "" {
		return failure.Unauthorized("Login required") // nolint:wrapcheck
	}

	expiresAt, _ := ctx.Value(constant.ContextKeyTokenExp).(time.Time)

	return s.revoke(ctx, tokenID, time.Until(expiresAt))
}

// IsRevoked reports whether tokenID was logged out. A cache failure is
// treated as not revoked.
func (s *serviceImpl) IsRevoked(ctx context.Context, tokenID string) bool {
	var revoked bool

	err := s.cache.Get(ctx, shared.BuildCacheKey(cacheRevokedToken, tokenID), &revoked)
	if err != nil && !errors.Is(err, cache.Nil) {
		log.Warn().Err(err).Str("token_id", tokenID).Msg("failed to check token revocation")
	}

	return err == nil && revoked
}

func (s *serviceImpl) Me(ctx context.Context) (res userDto.UserResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Me")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == "" {
		return res, failure.Unauthorized("Login required") // nolint:wrapcheck
	}

	user, err := s.userRepo.Get(ctx, shared.FilterByID(userID, userModel.FieldID, userModel.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", userID).Msg("failed to get user")

		return res, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.Exists() {
		return res, failure.NotFound(MessageUserNotFound) // nolint:wrapcheck
	}

	return userDto.NewUserResponse(user), nil
}

func (s *serviceImpl) FacebookLoginURL(ctx context.Context) (url string, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FacebookLoginURL")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	state := uuid.NewString()

	url, err = s.facebook.AuthCodeURL(state)
	if errors.Is(err, facebook.ErrNotConfigured) {
		return "", failure.NotFound("Facebook login is not available") // nolint:wrapcheck
	}

	if err != nil {
		return "", fmt.Errorf("failed to build facebook login url: %w", err)
	}

	if err = s.cache.Save(ctx, shared.BuildCacheKey(cacheOAuthState, state), true, s.cfg.OAuth.Facebook.StateTTL); err != nil {
		return "", fmt.Errorf("failed to save oauth state: %w", err)
	}

	return url, nil
}

func (s *serviceImpl) FacebookCallback(ctx context.Context, req dto.FacebookCallbackRequest) (res dto.TokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FacebookCallback")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Validate(); err != nil {
		return res, err //nolint:wrapcheck
	}

	var known bool
	if err = s.cache.Take(ctx, shared.BuildCacheKey(cacheOAuthState, req.State), &known); err != nil || !known {
		log.Warn().Err(err).Msg("facebook callback with unknown state")

		return res, failure.Unauthorized("Invalid or expired login state") // nolint:wrapcheck
	}

	profile, err := s.facebook.Exchange(ctx, req.Code)
	if err != nil {
		log.Warn().Err(err).Msg("failed to exchange facebook code")

		return res, failure.Unauthorized("Facebook login failed") // nolint:wrapcheck
	}

	user, err := s.upsertFacebookUser(ctx, profile)
	if err != nil {
		return res, err
	}

	if !user.Active {
		return res, failure.Forbidden("Account is deactivated") // nolint:wrapcheck
	}

	return s.issue(user)
}

func (s *serviceImpl) upsertFacebookUser(ctx context.Context, profile facebook.Profile) (userModel.User, error) {
	filter := gDto.And(
		gDto.Eq(userModel.TableName, userModel.FieldProvider, constant.ProviderFacebook),
		gDto.Eq(userModel.TableName, userModel.FieldProviderID, profile.ID),
	)

	user, err := s.userRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get facebook user")

		return user, fmt.Errorf("failed to get facebook user: %w", err)
	}

	if user.Exists() {
		user.DisplayName = profile.Name
		s.touch(ctx, user, userDto.UpdateProfileRequest{DisplayName: profile.Name, LastLogin: timezone.Now()})

		return user, nil
	}

	user = dto.FacebookUser(profile.ID, profile.Name)

	if err = s.userRepo.Insert(ctx, user); err != nil {
		// A concurrent callback for the same account created it first.
		if errors.Is(err, gRepo.ErrUniqueViolation) {
			return s.userRepo.Get(ctx, filter) //nolint:wrapcheck
		}

		log.Error().Err(err).Msg("failed to create facebook user")

		return user, fmt.Errorf("failed to create facebook user: %w", err)
	}

	return user, nil
}

func (s *serviceImpl) issue(user userModel.User) (dto.TokenResponse, error) {
	tokenPair, err := s.jwtService.GenerateTokenPair(user.ID, user.Username, user.Role)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return dto.TokenResponse{}, fmt.Errorf("failed to generate tokens: %w", err)
	}

	return dto.NewTokenResponse(tokenPair), nil
}

// touch records a login. It never fails the login itself.
func (s *serviceImpl) touch(ctx context.Context, user userModel.User, fields any) {
	updated := shared.TransformFields(fields, user.ID)

	if _, err := s.userRepo.Update(ctx, updated, shared.FilterByID(user.ID, userModel.FieldID, userModel.TableName)); err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to update last login")
	}
}

func (s *serviceImpl) revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	seconds := int(ttl.Seconds())
	if seconds <= 0 {
		return nil
	}

	if err := s.cache.Save(ctx, shared.BuildCacheKey(cacheRevokedToken, tokenID), true, seconds); err != nil {
		log.Error().Err(err).Str("token_id", tokenID).Msg("failed to revoke token")

		return fmt.Errorf("failed to revoke token: %w", err)
	}

	return nil
}

func byUsername(username string) gDto.FilterGroup {
	return gDto.And(gDto.Eq(userModel.TableName, userModel.FieldUsername, username))
}
