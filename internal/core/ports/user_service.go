package ports

import (
	"context"

	"github.com/tourbooking/auth-service/internal/core/domain"
)

// RegistrationInput carries the details submitted for a new account.
type RegistrationInput struct {
	FirstName   string
	LastName    string
	Email       string
	Password    string
	PhoneNumber string
}

// UserService provisions accounts bound to one of the fixed roles.
type UserService interface {
	Register(ctx context.Context, input RegistrationInput, role domain.RoleName) (*domain.Account, error)
}
