// Ride HTTP handlers.
//
// This file exposes REST endpoints for ride resources:
//   - GET    /rides        (list: own rides, or all for admins)
//   - POST   /rides        (create)
//   - GET    /rides/{id}   (detail)
//   - PUT    /rides/{id}   (partial update)
//   - DELETE /rides/{id}   (delete)
//
// Handlers are transport-thin: bodies arrive pre-validated by middleware,
// handlers call application services and translate results into HTTP
// responses. Ownership checks happen here, strictly after the resource is
// known to exist, so callers cannot distinguish foreign rides from absent
// ones by the order of failures.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/velotrack/go-ride-backend/internal/apierr"
	"github.com/velotrack/go-ride-backend/internal/auth"
	"github.com/velotrack/go-ride-backend/internal/domain"
	"github.com/velotrack/go-ride-backend/internal/http/middleware"
	"github.com/velotrack/go-ride-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// RideService defines ride lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RideService interface {
	// List returns rides ordered by id; a nil owner returns every ride.
	List(ctx context.Context, ownerID *uint) ([]domain.Ride, *apierr.Error)
	// Create records a new ride owned by ownerID.
	Create(ctx context.Context, in services.CreateRideInput, ownerID uint) (*domain.Ride, *apierr.Error)
	// Get fetches a single ride by id.
	Get(ctx context.Context, id uint) (*domain.Ride, *apierr.Error)
	// Update applies the non-nil fields of in to the ride.
	Update(ctx context.Context, id uint, in services.UpdateRideInput) (*domain.Ride, *apierr.Error)
	// Delete permanently removes the ride.
	Delete(ctx context.Context, id uint) *apierr.Error
}

// AccountService defines registration and login operations consumed by HTTP
// handlers.
type AccountService interface {
	// Register creates a user account and returns it with a signed token.
	Register(ctx context.Context, email, password string) (*domain.User, string, *apierr.Error)
	// Login verifies credentials and returns the user with a signed token.
	Login(ctx context.Context, email, password string) (*domain.User, string, *apierr.Error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for rides, accounts, and health.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	rideSvc    RideService
	accountSvc AccountService
	health     *HealthChecker
}

// New constructs and returns a Handlers instance bound to the given services.
func New(rideSvc RideService, accountSvc AccountService, health *HealthChecker) *Handlers {
	return &Handlers{rideSvc: rideSvc, accountSvc: accountSvc, health: health}
}

// principal extracts the authenticated principal set by the auth middleware.
// Routes mounting these handlers always run RequireAuth first; the guard is
// for defensive completeness only.
func principal(c *gin.Context) (auth.Principal, bool) {
	p, ok := middleware.PrincipalFrom(c)
	if !ok {
		fail(c, apierr.Authentication(apierr.CodeMissingAuthHeader, "Authentication required"))
		return auth.Principal{}, false
	}
	return p, true
}

//
// DTOs
//

// CreateRideRequest is the JSON payload for recording a ride.
type CreateRideRequest struct {
	// Name labels the ride (1–255 chars).
	Name string `json:"name" binding:"required,min=1,max=255" example:"Morning commute"`
	// DistanceKm is the distance covered, strictly positive.
	DistanceKm float64 `json:"distance_km" binding:"required,gt=0" example:"12.5"`
	// DurationMinutes optionally records how long the ride took.
	DurationMinutes *int `json:"duration_minutes" binding:"omitempty,gte=0" example:"42"`
	// Type optionally classifies the ride (e.g. road, gravel).
	Type *string `json:"type" binding:"omitempty,max=50" example:"road"`
	// Notes optionally carries free-form text.
	Notes *string `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateRideRequest is the JSON payload for a partial ride update. Absent
// fields are left untouched; an empty object is a successful no-op.
type UpdateRideRequest struct {
	Name            *string  `json:"name" binding:"omitempty,min=1,max=255"`
	DistanceKm      *float64 `json:"distance_km" binding:"omitempty,gt=0"`
	DurationMinutes *int     `json:"duration_minutes" binding:"omitempty,gte=0"`
	Type            *string  `json:"type" binding:"omitempty,max=50"`
	Notes           *string  `json:"notes" binding:"omitempty,max=2000"`
}

// ListRidesResponse wraps the ride collection returned by ListRides.
type ListRidesResponse struct {
	Rides []domain.Ride `json:"rides"`
}

//
// Handlers
//

// ListRides godoc
// @ID          listRides
// @Summary     List rides
// @Description Returns the caller's rides ordered by id. Admins receive every ride in the system.
// @Tags        Rides
// @Produce     json
// @Security    BearerAuth
//
// @Success     200  {object}  handlers.ListRidesResponse
// @Failure     401  {object}  apierr.Envelope  "Not authenticated"
// @Failure     500  {object}  apierr.Envelope  "Internal error"
// @Router      /rides [get]
func (h *Handlers) ListRides(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}

	var owner *uint
	if !p.IsAdmin() {
		owner = &p.ID
	}
	rides, aerr := h.rideSvc.List(c.Request.Context(), owner)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	ok(c, http.StatusOK, ListRidesResponse{Rides: rides})
}

// CreateRide godoc
// @ID          createRide
// @Summary     Record a new ride
// @Description Creates a ride owned by the authenticated user and returns the stored resource.
// @Tags        Rides
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       body  body  handlers.CreateRideRequest  true  "Ride payload"
//
// @Success     201  {object}  domain.Ride
// @Failure     400  {object}  apierr.Envelope  "Validation error"
// @Failure     401  {object}  apierr.Envelope  "Not authenticated"
// @Failure     500  {object}  apierr.Envelope  "Internal error"
// @Router      /rides [post]
func (h *Handlers) CreateRide(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	req := BodyFrom[CreateRideRequest](c)

	ride, aerr := h.rideSvc.Create(c.Request.Context(), services.CreateRideInput{
		Name:            req.Name,
		DistanceKm:      req.DistanceKm,
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		Notes:           req.Notes,
	}, p.ID)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	ok(c, http.StatusCreated, ride)
}

// GetRide godoc
// @ID          getRide
// @Summary     Get ride details
// @Description Returns a single ride. Non-admins may only view rides they own.
// @Tags        Rides
// @Produce     json
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Ride ID"  minimum(1)
//
// @Success     200  {object}  domain.Ride
// @Failure     400  {object}  apierr.Envelope  "Invalid id"
// @Failure     401  {object}  apierr.Envelope  "Not authenticated"
// @Failure     403  {object}  apierr.Envelope  "Not the owner"
// @Failure     404  {object}  apierr.Envelope  "Ride not found"
// @Router      /rides/{id} [get]
func (h *Handlers) GetRide(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}

	ride, aerr := h.rideSvc.Get(c.Request.Context(), idFrom(c))
	if aerr != nil {
		fail(c, aerr)
		return
	}
	if aerr := auth.Authorize(p, ride.UserID, "view"); aerr != nil {
		fail(c, aerr)
		return
	}
	ok(c, http.StatusOK, ride)
}

// UpdateRide godoc
// @ID          updateRide
// @Summary     Update a ride
// @Description Applies a partial update to a ride and returns the updated resource. Non-admins may only update rides they own.
// @Tags        Rides
// @Accept      json
// @Produce     json
// @Security    BearerAuth
//
// @Param       id    path  int                          true  "Ride ID"  minimum(1)
// @Param       body  body  handlers.UpdateRideRequest   true  "Fields to change"
//
// @Success     200  {object}  domain.Ride
// @Failure     400  {object}  apierr.Envelope  "Validation error"
// @Failure     401  {object}  apierr.Envelope  "Not authenticated"
// @Failure     403  {object}  apierr.Envelope  "Not the owner"
// @Failure     404  {object}  apierr.Envelope  "Ride not found"
// @Router      /rides/{id} [put]
func (h *Handlers) UpdateRide(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	id := idFrom(c)

	existing, aerr := h.rideSvc.Get(c.Request.Context(), id)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	if aerr := auth.Authorize(p, existing.UserID, "update"); aerr != nil {
		fail(c, aerr)
		return
	}

	req := BodyFrom[UpdateRideRequest](c)
	ride, aerr := h.rideSvc.Update(c.Request.Context(), id, services.UpdateRideInput{
		Name:            req.Name,
		DistanceKm:      req.DistanceKm,
		DurationMinutes: req.DurationMinutes,
		Type:            req.Type,
		Notes:           req.Notes,
	})
	if aerr != nil {
		fail(c, aerr)
		return
	}
	ok(c, http.StatusOK, ride)
}

// DeleteRide godoc
// @ID          deleteRide
// @Summary     Delete a ride
// @Description Permanently removes a ride. Non-admins may only delete rides they own.
// @Tags        Rides
// @Security    BearerAuth
//
// @Param       id  path  int  true  "Ride ID"  minimum(1)
//
// @Success     204  "Deleted"
// @Failure     400  {object}  apierr.Envelope  "Invalid id"
// @Failure     401  {object}  apierr.Envelope  "Not authenticated"
// @Failure     403  {object}  apierr.Envelope  "Not the owner"
// @Failure     404  {object}  apierr.Envelope  "Ride not found"
// @Router      /rides/{id} [delete]
func (h *Handlers) DeleteRide(c *gin.Context) {
	p, okP := principal(c)
	if !okP {
		return
	}
	id := idFrom(c)

	existing, aerr := h.rideSvc.Get(c.Request.Context(), id)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	if aerr := auth.Authorize(p, existing.UserID, "delete"); aerr != nil {
		fail(c, aerr)
		return
	}

	if aerr := h.rideSvc.Delete(c.Request.Context(), id); aerr != nil {
		fail(c, aerr)
		return
	}
	noContent(c)
}
