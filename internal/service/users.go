package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/Feaman/elven-keep-server/internal/models"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

// ErrInvalidCredentials is returned by Login for an unknown email and for a
// wrong password alike.
var ErrInvalidCredentials = fmt.Errorf("%w: wrong email or password", models.ErrNotFound)

// UserService registers users, checks their credentials and edits profiles.
type UserService struct {
	repo UserRepository
	// cost is the bcrypt work factor.
	cost int
}

// NewUserService constructs a UserService hashing with bcrypt.DefaultCost.
func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt work factor.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

// Register validates the input, hashes the password and stores a new user.
// A taken email is reported as a validation failure.
func (s *UserService) Register(ctx context.Context, firstName, secondName, email, password string) (*models.User, error) {
	u := &models.User{
		FirstName:  strings.TrimSpace(firstName),
		SecondName: strings.TrimSpace(secondName),
		Email:      strings.ToLower(strings.TrimSpace(email)),
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, models.NewValidationError(fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = hash

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login returns the user owning email if password matches its hash.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetByID returns the user with the given id.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile overwrites the names and email of user id.
func (s *UserService) UpdateProfile(ctx context.Context, id int64, firstName, secondName, email string) (*models.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	u.FirstName = strings.TrimSpace(firstName)
	u.SecondName = strings.TrimSpace(secondName)
	u.Email = strings.ToLower(strings.TrimSpace(email))
	if err := u.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
