package ports

import (
	"context"

	"github.com/tourbooking/auth-service/internal/core/domain"
)

// AuthService orchestrates login and refresh-token rotation.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, pair domain.TokenPair) (*domain.TokenPair, error)
}
