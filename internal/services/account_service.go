package services

import (
	"context"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/velotrack/go-ride-backend/internal/apierr"
	"github.com/velotrack/go-ride-backend/internal/auth"
	"github.com/velotrack/go-ride-backend/internal/domain"
	"github.com/velotrack/go-ride-backend/internal/repo"
)

// AccountService implements registration and login. Passwords are stored as
// bcrypt hashes; successful calls return a signed bearer token from the
// injected Authenticator.
type AccountService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Auth issues tokens for freshly authenticated accounts.
	Auth *auth.Authenticator
	// BcryptCost is the hashing work factor.
	BcryptCost int
}

// NewAccountService constructs an AccountService with the given dependencies.
func NewAccountService(db *gorm.DB, a *auth.Authenticator, cost int) *AccountService {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &AccountService{DB: db, Auth: a, BcryptCost: cost}
}

// Register creates a new account with role "user" and returns it together
// with a signed token. A duplicate email fails as a validation error; the
// closed taxonomy has no conflict kind.
func (s *AccountService) Register(ctx context.Context, email, password string) (*domain.User, string, *apierr.Error) {
	existing, err := repo.FindUserByEmail(ctx, s.DB, email)
	if err != nil {
		return nil, "", s.internal("find user", err)
	}
	if existing != nil {
		return nil, "", apierr.Validation("User already exists")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.BcryptCost)
	if err != nil {
		return nil, "", s.internal("hash password", err)
	}

	user, err := repo.CreateUser(ctx, s.DB, &domain.User{
		Email:    email,
		Password: string(hashed),
		Role:     domain.RoleUser,
	})
	if err != nil {
		return nil, "", s.internal("create user", err)
	}

	token, aerr := s.Auth.Issue(user.ID, user.Role)
	if aerr != nil {
		return nil, "", aerr
	}
	return user, token, nil
}

// Login verifies the credentials and returns the account with a fresh token.
// Unknown email and wrong password are indistinguishable to the caller:
// both fail authentication/invalid_credentials.
func (s *AccountService) Login(ctx context.Context, email, password string) (*domain.User, string, *apierr.Error) {
	user, err := repo.FindUserByEmail(ctx, s.DB, email)
	if err != nil {
		return nil, "", s.internal("find user", err)
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, "", apierr.Authentication(apierr.CodeInvalidCredentials, "Invalid email or password")
	}

	token, aerr := s.Auth.Issue(user.ID, user.Role)
	if aerr != nil {
		return nil, "", aerr
	}
	return user, token, nil
}

func (s *AccountService) internal(op string, err error) *apierr.Error {
	log.Error().Err(err).Str("op", op).Msg("account storage failure")
	return apierr.Internal("")
}
