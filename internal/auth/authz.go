package auth

import (
	"fmt"

	"github.com/velotrack/go-ride-backend/internal/apierr"
)

// Authorize applies the ownership rule: a principal may act on a resource if
// they are its owner or hold the admin role. On deny it returns an
// authorization/access_denied error whose message names the attempted action,
// e.g. "You can only view your own rides".
//
// Callers must locate the resource before invoking Authorize so that a
// missing resource surfaces as not_found rather than leaking existence
// through an authorization failure.
func Authorize(p Principal, ownerID uint, action string) *apierr.Error {
	if p.IsAdmin() || p.ID == ownerID {
		return nil
	}
	return apierr.Authorization(fmt.Sprintf("You can only %s your own rides", action))
}
