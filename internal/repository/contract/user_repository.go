package contract

import (
	"context"

	"lexai-be/internal/entity"
	"lexai-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	ActivateUser(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	CreateProvider(ctx context.Context, provider *entity.UserProvider) error
	FindProvider(ctx context.Context, providerName, providerUserId string) (*entity.UserProvider, error)

	CreateEmailVerificationToken(ctx context.Context, token *entity.EmailVerificationToken) error
	FindEmailVerificationToken(ctx context.Context, specs ...specification.Specification) (*entity.EmailVerificationToken, error)
	DeleteEmailVerificationToken(ctx context.Context, id uuid.UUID) error

	CreateRefreshToken(ctx context.Context, token *entity.UserRefreshToken) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
}
