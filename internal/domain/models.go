// Package domain defines the persistence models for users and rides. These
// types are mapped with GORM and form the core data layer of the ride API.
package domain

import "time"

// Roles a user account can hold. Admins bypass the ownership rule on rides.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account that can authenticate and own rides.
//
// Fields:
//   - ID: autoincrement primary key.
//   - Email: login identifier, unique.
//   - Password: bcrypt hash, never serialized.
//   - Role: "user" or "admin" (enforced by DB constraint).
//   - CreatedAt: timestamp managed by GORM.
type User struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex"`
	Password  string    `json:"-"          gorm:"type:varchar(255);not null"`
	Role      string    `json:"role"       gorm:"type:varchar(16);not null;default:'user';check:role IN ('user','admin')"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Ride represents a single recorded ride owned by exactly one user. Ownership
// is assigned at creation time and never transferred; deletion is permanent
// (no soft-delete marker).
//
// Fields:
//   - ID: autoincrement primary key, assigned by the store.
//   - Name: short human-readable label.
//   - DistanceKm: covered distance in kilometers.
//   - DurationMinutes / Type / Notes: optional detail fields; nil means unset.
//   - UserID: owner foreign key; indexed for the per-user list path.
//   - CreatedAt: timestamp managed by GORM.
type Ride struct {
	ID              uint      `json:"id"               gorm:"primaryKey"`
	Name            string    `json:"name"             gorm:"type:varchar(255);not null"`
	DistanceKm      float64   `json:"distance_km"      gorm:"not null"`
	DurationMinutes *int      `json:"duration_minutes" gorm:"default:null"`
	Type            *string   `json:"type"             gorm:"type:varchar(50);default:null"`
	Notes           *string   `json:"notes"            gorm:"type:text;default:null"`
	UserID          uint      `json:"user_id"          gorm:"not null;index:idx_user_rides"`
	CreatedAt       time.Time `json:"created_at"`

	// User is the owning account. Rides are cascade-deleted if the owner
	// is removed.
	User User `json:"-" gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Ride.
func (Ride) TableName() string { return "rides" }
