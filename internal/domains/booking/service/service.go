package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"tablebook/config"
	"tablebook/infras/broker"
	"tablebook/infras/otel"
	"tablebook/internal/domains/booking/model"
	"tablebook/internal/domains/booking/model/dto"
	"tablebook/internal/domains/booking/repository"
	"tablebook/shared"
	"tablebook/shared/cache"
	"tablebook/shared/constant"
	gDto "tablebook/shared/dto"
	"tablebook/shared/failure"
	gRepo "tablebook/shared/repository"
	"tablebook/shared/timezone"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

const (
	cacheBookingList       = "booking:list"
	cacheBookingMine       = "booking:mine"
	cacheBookingGeneration = "booking:generation"

	MessageNotFound = "Booking not found"
)

type Booking interface {
	// AvailableTables lists the tables of [1, N] with no booking at (date, timeSlot).
	AvailableTables(ctx context.Context, date, timeSlot string) (dto.AvailabilityResponse, error)
	Slots(ctx context.Context) dto.SlotsResponse
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.BookingResponse, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter dto.BookingFilter) (dto.GetBookingsResponse, error)
	GetMine(ctx context.Context, params gDto.QueryParams) (dto.GetBookingsResponse, error)
	Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (dto.BookingResponse, error)
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo   repository.Booking
	cfg    *config.Config
	cache  cache.RedisCache
	broker broker.Broker
	otel   otel.Otel
}

func New(repo repository.Booking, cfg *config.Config, cache cache.RedisCache, broker broker.Broker, otel otel.Otel) Booking {
	return &serviceImpl{
		repo:   repo,
		cfg:    cfg,
		cache:  cache,
		broker: broker,
		otel:   otel,
	}
}

func (s *serviceImpl) AvailableTables(ctx context.Context, date, timeSlot string) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".AvailableTables")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	req := dto.AvailabilityRequest{Date: date, TimeSlot: timeSlot}
	if err = req.Validate(s.cfg); err != nil {
		return res, err //nolint:wrapcheck
	}

	booked, err := s.repo.GetAll(ctx, gDto.QueryParams{}, dto.SlotFilter(date, timeSlot), model.FieldTableNumber)
	if err != nil {
		log.Error().Err(err).Str("date", date).Str("time_slot", timeSlot).Msg("failed to get booked tables")

		return res, fmt.Errorf("failed to get booked tables: %w", err)
	}

	bookedTables := lo.Uniq(lo.Map(booked, func(b model.Booking, _ int) int { return b.TableNumber }))
	slices.Sort(bookedTables)

	res = dto.AvailabilityResponse{
		Date:            date,
		TimeSlot:        timeSlot,
		AvailableTables: lo.Without(lo.RangeFrom(1, s.cfg.Booking.Tables()), bookedTables...),
		BookedTables:    bookedTables,
	}

	return res, nil
}

func (s *serviceImpl) Slots(_ context.Context) dto.SlotsResponse {
	return dto.SlotsResponse{
		TimeSlots:  lo.Ternary(s.cfg.Booking.TimeSlots == nil, []string{}, s.cfg.Booking.TimeSlots),
		TableCount: s.cfg.Booking.Tables(),
	}
}

func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Create")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Validate(s.cfg); err != nil {
		return res, err //nolint:wrapcheck
	}

	owner, err := s.actor(ctx)
	if err != nil {
		return res, err
	}

	booking := req.ToModel(owner)
	conflict := failure.Conflict(model.ConflictMessage(booking.Date, booking.TimeSlot, booking.TableNumber))

	taken, err := s.repo.Exist(ctx, dto.TableFilter(booking.Date, booking.TimeSlot, booking.TableNumber, ""))
	if err != nil {
		log.Error().Err(err).Msg("failed to check table availability")

		return res, fmt.Errorf("failed to check table availability: %w", err)
	}

	if taken {
		return res, conflict
	}

	if err = s.repo.Insert(ctx, booking); err != nil {
		if errors.Is(err, gRepo.ErrUniqueViolation) {
			log.Warn().Str("date", booking.Date).Str("time_slot", booking.TimeSlot).Int("table", booking.TableNumber).Msg("lost booking race")

			return res, conflict
		}

		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	s.afterWrite(ctx, dto.EventCreated, booking, owner)

	return dto.NewBookingResponse(booking), nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Get")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	booking, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	return dto.NewBookingResponse(booking), nil
}

func (s *serviceImpl) GetAll(ctx context.Context, params gDto.QueryParams, filter dto.BookingFilter) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetAll")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	return s.list(ctx, cacheBookingList, params, filter.ToFilterGroup())
}

func (s *serviceImpl) GetMine(ctx context.Context, params gDto.QueryParams) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".GetMine")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	userID, _ := ctx.Value(constant.ContextKeyUserID).(string)
	if userID == "" {
		return res, failure.Unauthorized("Login required") // nolint:wrapcheck
	}

	filter := dto.BookingFilter{OwnerID: userID}

	return s.list(ctx, shared.BuildCacheKey(cacheBookingMine, userID), params, filter.ToFilterGroup())
}

// list serves listings from the cache. Keys carry the cache generation read
// before the store, so a listing saved after a write is never served again.
func (s *serviceImpl) list(ctx context.Context, prefix string, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	generation, err := s.generation(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("failed to read bookings cache generation, skipping cache")

		return s.load(ctx, params, filter)
	}

	cacheKey := shared.BuildCacheKeyWithQuery(shared.BuildCacheKey(prefix, strconv.FormatInt(generation, 10)), params, filter)

	if err = s.cache.Get(ctx, cacheKey, &res); err == nil {
		log.Debug().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	res, err = s.load(ctx, params, filter)
	if err != nil {
		return res, err
	}

	if err := s.cache.Save(ctx, cacheKey, res, s.cfg.Cache.TTL); err != nil {
		log.Error().Err(err).Msg("failed to save bookings to cache")
	}

	return res, nil
}

func (s *serviceImpl) load(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, params, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	return dto.NewGetBookingsResponse(models, total, params.Limit), nil
}

// generation is zero until the first write.
func (s *serviceImpl) generation(ctx context.Context) (int64, error) {
	var generation int64

	err := s.cache.Get(ctx, cacheBookingGeneration, &generation)
	if err != nil && !errors.Is(err, cache.Nil) {
		return 0, err //nolint:wrapcheck
	}

	return generation, nil
}

func (s *serviceImpl) Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Update")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	if err = req.Validate(s.cfg); err != nil {
		return res, err //nolint:wrapcheck
	}

	actor, err := s.actor(ctx)
	if err != nil {
		return res, err
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return res, err
	}

	updated := req.Apply(current, actor, timezone.Now())
	conflict := failure.Conflict(model.ConflictMessage(updated.Date, updated.TimeSlot, updated.TableNumber))

	taken, err := s.repo.Exist(ctx, dto.TableFilter(updated.Date, updated.TimeSlot, updated.TableNumber, id))
	if err != nil {
		log.Error().Err(err).Msg("failed to check table availability")

		return res, fmt.Errorf("failed to check table availability: %w", err)
	}

	if taken {
		return res, conflict
	}

	fields := shared.TransformFields(req, actor)
	fields[constant.FieldModifiedAt] = updated.ModifiedAt

	affected, err := s.repo.Update(ctx, fields, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		if errors.Is(err, gRepo.ErrUniqueViolation) {
			return res, conflict
		}

		log.Error().Err(err).Str("id", id).Msg("failed to update booking")

		return res, fmt.Errorf("failed to update booking: %w", err)
	}

	if affected == 0 {
		return res, failure.NotFound(MessageNotFound) // nolint:wrapcheck
	}

	s.afterWrite(ctx, dto.EventUpdated, updated, actor)

	return dto.NewBookingResponse(updated), nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Delete")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	actor, err := s.actor(ctx)
	if err != nil {
		return err
	}

	affected, err := s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	if affected == 0 {
		return failure.NotFound(MessageNotFound) // nolint:wrapcheck
	}

	s.afterWrite(ctx, dto.EventDeleted, model.Booking{ID: id}, actor)

	return nil
}

func (s *serviceImpl) find(ctx context.Context, id string) (model.Booking, error) {
	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Str("id", id).Msg("failed to get booking")

		return booking, fmt.Errorf("failed to get booking: %w", err)
	}

	if !booking.Exists() {
		return booking, failure.NotFound(MessageNotFound) // nolint:wrapcheck
	}

	return booking, nil
}

// actor resolves who is writing: the session user, or the API sentinel for
// internal callers and, when allowed, anonymous ones.
func (s *serviceImpl) actor(ctx context.Context) (string, error) {
	if internal, _ := ctx.Value(constant.ContextKeyInternal).(bool); internal {
		return s.cfg.Booking.Owner(), nil
	}

	if userID, _ := ctx.Value(constant.ContextKeyUserID).(string); userID != "" {
		return userID, nil
	}

	if !s.cfg.Booking.AllowAnonymous {
		return "", failure.AnonymousBookingError
	}

	return s.cfg.Booking.Owner(), nil
}

// afterWrite retires cached listings before the write returns, then drops
// them and publishes the event. Neither affects the outcome of the write.
func (s *serviceImpl) afterWrite(ctx context.Context, eventType string, booking model.Booking, actor string) {
	_, bumpErr := s.cache.Incr(ctx, cacheBookingGeneration)
	if bumpErr != nil {
		log.Error().Err(bumpErr).Msg("failed to bump bookings cache generation")

		shared.InvalidateCaches(ctx, s.cache, cacheBookingList)
		shared.InvalidateCaches(ctx, s.cache, cacheBookingMine)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if bumpErr == nil {
			shared.InvalidateCaches(c, s.cache, cacheBookingList)
			shared.InvalidateCaches(c, s.cache, cacheBookingMine)
		}

		if err := s.broker.Publish(c, booking.ID, dto.NewBookingEvent(eventType, booking, actor)); err != nil {
			log.Error().Err(err).Str("event", eventType).Str("id", booking.ID).Msg("failed to publish booking event")
		}
	}()
}
