// Account HTTP handlers.
//
// This file exposes the unauthenticated endpoints for account creation and
// login:
//   - POST /auth/register  (create account, returns a token)
//   - POST /auth/login     (verify credentials, returns a token)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

//
// DTOs
//

// CredentialsRequest is the JSON payload shared by register and login.
type CredentialsRequest struct {
	// Email is the account identifier.
	Email string `json:"email" binding:"required,email" example:"rider@example.com"`
	// Password must be at least 8 characters.
	Password string `json:"password" binding:"required,min=8"`
}

// AuthUser is the public projection of an account returned alongside tokens.
// The password hash never appears here.
type AuthUser struct {
	ID    uint   `json:"id" example:"7"`
	Email string `json:"email,omitempty" example:"rider@example.com"`
	Role  string `json:"role" example:"user"`
}

// AuthResponse carries a signed bearer token and the account it belongs to.
type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

//
// Handlers
//

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Registers a new user with the default role and returns a signed bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CredentialsRequest  true  "Account credentials"
//
// @Success     201  {object}  handlers.AuthResponse
// @Failure     400  {object}  apierr.Envelope  "Validation error or duplicate email"
// @Failure     503  {object}  apierr.Envelope  "Token signing unavailable"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	req := BodyFrom[CredentialsRequest](c)

	user, token, aerr := h.accountSvc.Register(c.Request.Context(), req.Email, req.Password)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	ok(c, http.StatusCreated, AuthResponse{
		Token: token,
		User:  AuthUser{ID: user.ID, Role: user.Role},
	})
}

// Login godoc
// @ID          login
// @Summary     Log in
// @Description Verifies credentials and returns a signed bearer token.
// @Tags        Auth
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CredentialsRequest  true  "Account credentials"
//
// @Success     200  {object}  handlers.AuthResponse
// @Failure     400  {object}  apierr.Envelope  "Validation error"
// @Failure     401  {object}  apierr.Envelope  "Invalid credentials"
// @Failure     503  {object}  apierr.Envelope  "Token signing unavailable"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	req := BodyFrom[CredentialsRequest](c)

	user, token, aerr := h.accountSvc.Login(c.Request.Context(), req.Email, req.Password)
	if aerr != nil {
		fail(c, aerr)
		return
	}
	ok(c, http.StatusOK, AuthResponse{
		Token: token,
		User:  AuthUser{ID: user.ID, Email: user.Email, Role: user.Role},
	})
}
