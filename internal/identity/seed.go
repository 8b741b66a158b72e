package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"careport/internal/identity/models"
	userstore "careport/internal/identity/store/user"
	id "careport/pkg/domain"
	dErrors "careport/pkg/domain-errors"
)

// NewUser builds an account with a bcrypt-hashed password.
func NewUser(email, fullName, password string, now time.Time) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	return &models.User{
		ID:           id.UserID(uuid.New()),
		Email:        email,
		FullName:     fullName,
		PasswordHash: hash,
		Status:       models.UserStatusActive,
		CreatedAt:    now,
	}, nil
}

// SeedDevUsers creates a default account for local development.
func SeedDevUsers(store *userstore.InMemory) (*models.User, error) {
	u, err := NewUser("dev@careport.health", "Dev User", "devpass", time.Now())
	if err != nil {
		return nil, err
	}
	if err := store.Create(context.Background(), u); err != nil {
		return nil, err
	}
	return u, nil
}
