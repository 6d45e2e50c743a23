package repository

import (
	"context"

	"github.com/fastygo/user-service/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Search(ctx context.Context, filter domain.UserFilter) (*domain.UserPage, error)
	Create(ctx context.Context, input domain.UserInput) (*domain.User, error)
	Update(ctx context.Context, id int64, input domain.UserInput) (*domain.User, error)
	// Delete removes the user; owned cards go with it via the store's cascade.
	Delete(ctx context.Context, id int64) error
	// SetActive flips the activity flag without loading the full row.
	SetActive(ctx context.Context, id int64, active bool) error
}
