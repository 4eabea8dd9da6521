package repo

import (
	"context"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/velotrack/go-ride-backend/internal/domain"
)

// newTestDB opens a unique in-memory database per call so tests cannot
// contaminate each other, mirrors the PRAGMAs from OpenSQLite, and migrates
// the schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *domain.User {
	t.Helper()
	u, err := CreateUser(context.Background(), db, &domain.User{
		Email:    email,
		Password: "x",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedRide(t *testing.T, db *gorm.DB, owner uint, name string) *domain.Ride {
	t.Helper()
	r, err := CreateRide(context.Background(), db, &domain.Ride{
		Name:       name,
		DistanceKm: 12.5,
		UserID:     owner,
	})
	if err != nil {
		t.Fatalf("seed ride: %v", err)
	}
	return r
}

func TestCreateRide_AssignsID(t *testing.T) {
	db := newTestDB(t)
	u := seedUser(t, db, "a@example.com", domain.RoleUser)

	r := seedRide(t, db, u.ID, "morning loop")
	if r.ID == 0 {
		t.Fatal("expected store-assigned id")
	}
	if r.UserID != u.ID {
		t.Errorf("owner = %d, want %d", r.UserID, u.ID)
	}
}

func TestListRides_FilterAndOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u1 := seedUser(t, db, "a@example.com", domain.RoleUser)
	u2 := seedUser(t, db, "b@example.com", domain.RoleUser)

	seedRide(t, db, u1.ID, "one")
	seedRide(t, db, u2.ID, "two")
	seedRide(t, db, u1.ID, "three")

	mine, err := ListRides(ctx, db, &u1.ID)
	if err != nil {
		t.Fatalf("ListRides(owner): %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("len = %d, want 2", len(mine))
	}
	if mine[0].ID > mine[1].ID {
		t.Errorf("not ordered by ascending id: %d, %d", mine[0].ID, mine[1].ID)
	}

	all, err := ListRides(ctx, db, nil)
	if err != nil {
		t.Fatalf("ListRides(nil): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].ID > all[i].ID {
			t.Errorf("not ordered by ascending id at %d", i)
		}
	}
}

func TestListRides_EmptyIsSliceNotNil(t *testing.T) {
	db := newTestDB(t)
	owner := uint(42)
	out, err := ListRides(context.Background(), db, &owner)
	if err != nil {
		t.Fatalf("ListRides: %v", err)
	}
	if out == nil {
		t.Error("expected empty slice, got nil")
	}
}

func TestGetRide_NotFound(t *testing.T) {
	db := newTestDB(t)
	if _, err := GetRide(context.Background(), db, 999); err != ErrNotFound {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestUpdateRideFields(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com", domain.RoleUser)
	r := seedRide(t, db, u.ID, "before")

	updated, err := UpdateRideFields(ctx, db, r.ID, map[string]any{"name": "after"})
	if err != nil {
		t.Fatalf("UpdateRideFields: %v", err)
	}
	if updated.Name != "after" {
		t.Errorf("name = %q", updated.Name)
	}
	if updated.DistanceKm != r.DistanceKm {
		t.Errorf("untouched field changed: %v -> %v", r.DistanceKm, updated.DistanceKm)
	}

	if _, err := UpdateRideFields(ctx, db, 999, map[string]any{"name": "x"}); err != ErrNotFound {
		t.Fatalf("missing id err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRide_Permanent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "a@example.com", domain.RoleUser)
	r := seedRide(t, db, u.ID, "gone")

	if err := DeleteRide(ctx, db, r.ID); err != nil {
		t.Fatalf("DeleteRide: %v", err)
	}
	if _, err := GetRide(ctx, db, r.ID); err != ErrNotFound {
		t.Fatalf("after delete err = %v, want ErrNotFound", err)
	}
	// Second delete is not a repeated success.
	if err := DeleteRide(ctx, db, r.ID); err != ErrNotFound {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestFindUserByEmail(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, "a@example.com", domain.RoleAdmin)

	u, err := FindUserByEmail(ctx, db, "a@example.com")
	if err != nil || u == nil {
		t.Fatalf("FindUserByEmail: u=%v err=%v", u, err)
	}
	if u.Role != domain.RoleAdmin {
		t.Errorf("role = %q", u.Role)
	}

	miss, err := FindUserByEmail(ctx, db, "nobody@example.com")
	if err != nil {
		t.Fatalf("miss should not error: %v", err)
	}
	if miss != nil {
		t.Errorf("miss = %v, want nil", miss)
	}
}
