// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Ride model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a ride is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated. Translation into the API error
//     taxonomy happens one layer up, in services.RideService.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/velotrack/go-ride-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateRide inserts a new Ride row and returns the persisted record,
// including the store-assigned identifier.
func CreateRide(ctx context.Context, db *gorm.DB, ride *domain.Ride) (*domain.Ride, error) {
	if err := db.WithContext(ctx).Create(ride).Error; err != nil {
		return nil, err
	}
	return ride, nil
}

// ListRides returns rides ordered by ascending identifier. When ownerID is
// non-nil only that owner's rides are returned; a nil filter returns every
// ride (the admin path). It returns an empty slice when nothing matches.
func ListRides(ctx context.Context, db *gorm.DB, ownerID *uint) ([]domain.Ride, error) {
	q := db.WithContext(ctx).Order("id asc")
	if ownerID != nil {
		q = q.Where("user_id = ?", *ownerID)
	}
	out := []domain.Ride{}
	err := q.Find(&out).Error
	return out, err
}

// GetRide fetches a single ride by its identifier. If the record does not
// exist it returns ErrNotFound; other DB errors are returned raw.
func GetRide(ctx context.Context, db *gorm.DB, id uint) (*domain.Ride, error) {
	var r domain.Ride
	if err := db.WithContext(ctx).First(&r, id).Error; err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateRideFields applies the given column/value pairs to the ride with the
// given id and returns the refreshed record. The caller is responsible for
// restricting the map to the fixed set of recognized columns; values are
// always bound as parameters, never interpolated. An empty map is a no-op
// handled by the caller, not here.
func UpdateRideFields(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) (*domain.Ride, error) {
	res := db.WithContext(ctx).
		Model(&domain.Ride{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return GetRide(ctx, db, id)
}

// DeleteRide removes the ride with the given id permanently. It returns
// ErrNotFound when no row was deleted.
func DeleteRide(ctx context.Context, db *gorm.DB, id uint) error {
	res := db.WithContext(ctx).Delete(&domain.Ride{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
