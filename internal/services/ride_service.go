// Package services defines the business logic for rides and accounts.
//
// Services sit between the HTTP handlers and the repository layer. Every
// failure they surface is already a taxonomy error (*apierr.Error): repo
// sentinels become not_found, and anything unanticipated is logged and
// wrapped as internal before it crosses the service boundary. Handlers never
// see raw gorm errors.
package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/velotrack/go-ride-backend/internal/apierr"
	"github.com/velotrack/go-ride-backend/internal/domain"
	"github.com/velotrack/go-ride-backend/internal/repo"
)

// RideRepo defines the repository contract required by RideService.
// Implementations are responsible for persistence of ride records.
type RideRepo interface {
	// CreateRide inserts a new ride row and returns it with its assigned id.
	CreateRide(ctx context.Context, db *gorm.DB, ride *domain.Ride) (*domain.Ride, error)

	// ListRides returns rides ordered by ascending id, optionally filtered
	// by owner.
	ListRides(ctx context.Context, db *gorm.DB, ownerID *uint) ([]domain.Ride, error)

	// GetRide fetches a ride by id, returning repo.ErrNotFound when absent.
	GetRide(ctx context.Context, db *gorm.DB, id uint) (*domain.Ride, error)

	// UpdateRideFields applies the given column/value pairs and returns the
	// refreshed record.
	UpdateRideFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) (*domain.Ride, error)

	// DeleteRide removes a ride permanently.
	DeleteRide(ctx context.Context, db *gorm.DB, id uint) error
}

// CreateRideInput carries the validated fields for a new ride. The owner is
// supplied separately by the caller from the authenticated principal, never
// from the payload.
type CreateRideInput struct {
	Name            string
	DistanceKm      float64
	DurationMinutes *int
	Type            *string
	Notes           *string
}

// UpdateRideInput carries a partial update. Nil fields are left untouched;
// a fully-nil input is a successful no-op.
type UpdateRideInput struct {
	Name            *string
	DistanceKm      *float64
	DurationMinutes *int
	Type            *string
	Notes           *string
}

// fields collects the present fields into column/value pairs. The column
// names form a fixed enumerated set; they are never derived from request
// input, and values are bound as statement parameters by the repo.
func (in UpdateRideInput) fields() map[string]any {
	f := map[string]any{}
	if in.Name != nil {
		f["name"] = *in.Name
	}
	if in.DistanceKm != nil {
		f["distance_km"] = *in.DistanceKm
	}
	if in.DurationMinutes != nil {
		f["duration_minutes"] = *in.DurationMinutes
	}
	if in.Type != nil {
		f["type"] = *in.Type
	}
	if in.Notes != nil {
		f["notes"] = *in.Notes
	}
	return f
}

// RideService provides CRUD over ride records. It enforces existence
// semantics (not_found) and leaves the ownership rule to the caller, which
// must locate the record first so that existence is checked strictly before
// ownership.
type RideService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the ride repository used by this service.
	Repo RideRepo
}

// NewRideService constructs a RideService over the given handle and repo.
func NewRideService(db *gorm.DB, r RideRepo) *RideService {
	return &RideService{DB: db, Repo: r}
}

// List returns rides ordered by ascending id. A nil ownerID returns every
// ride (the admin path); otherwise only that owner's rides.
func (s *RideService) List(ctx context.Context, ownerID *uint) ([]domain.Ride, *apierr.Error) {
	out, err := s.Repo.ListRides(ctx, s.DB, ownerID)
	if err != nil {
		return nil, s.internal("list rides", err)
	}
	return out, nil
}

// Create persists a new ride owned by ownerID and returns it with the
// store-assigned identifier.
func (s *RideService) Create(ctx context.Context, in CreateRideInput, ownerID uint) (*domain.Ride, *apierr.Error) {
	ride := &domain.Ride{
		Name:            in.Name,
		DistanceKm:      in.DistanceKm,
		DurationMinutes: in.DurationMinutes,
		Type:            in.Type,
		Notes:           in.Notes,
		UserID:          ownerID,
	}
	created, err := s.Repo.CreateRide(ctx, s.DB, ride)
	if err != nil {
		return nil, s.internal("create ride", err)
	}
	return created, nil
}

// Get fetches a ride by id, failing with not_found when it does not exist.
func (s *RideService) Get(ctx context.Context, id uint) (*domain.Ride, *apierr.Error) {
	ride, err := s.Repo.GetRide(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.NotFound("Ride", id)
		}
		return nil, s.internal("get ride", err)
	}
	return ride, nil
}

// Update applies the present fields of in to the ride with the given id.
// A ride that does not exist fails with not_found. An input with no
// recognized fields returns the record unchanged; the no-op is a success,
// not an error.
func (s *RideService) Update(ctx context.Context, id uint, in UpdateRideInput) (*domain.Ride, *apierr.Error) {
	existing, aerr := s.Get(ctx, id)
	if aerr != nil {
		return nil, aerr
	}

	fields := in.fields()
	if len(fields) == 0 {
		return existing, nil
	}

	updated, err := s.Repo.UpdateRideFields(ctx, s.DB, id, fields)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, apierr.NotFound("Ride", id)
		}
		return nil, s.internal("update ride", err)
	}
	return updated, nil
}

// Delete removes a ride permanently. Deleting a ride that does not exist
// (including a second delete of the same id) fails with not_found.
func (s *RideService) Delete(ctx context.Context, id uint) *apierr.Error {
	if err := s.Repo.DeleteRide(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return apierr.NotFound("Ride", id)
		}
		return s.internal("delete ride", err)
	}
	return nil
}

// internal logs the underlying failure with detail and returns the generic
// internal error; the detail never reaches the response body.
func (s *RideService) internal(op string, err error) *apierr.Error {
	log.Error().Err(err).Str("op", op).Msg("ride storage failure")
	return apierr.Internal("")
}
