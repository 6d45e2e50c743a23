package repository

import (
	"context"

	"github.com/fastygo/user-service/domain"
)

type CardRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Card, error)
	GetByNumber(ctx context.Context, number string) (*domain.Card, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Card, error)
	CountByOwner(ctx context.Context, ownerID int64) (int, error)
	Exists(ctx context.Context, id int64) (bool, error)
	Create(ctx context.Context, ownerID int64, input domain.CardInput) (*domain.Card, error)
	Update(ctx context.Context, id int64, input domain.CardInput) (*domain.Card, error)
	Delete(ctx context.Context, id int64) error
	// SetActive flips the activity flag without loading the full row.
	SetActive(ctx context.Context, id int64, active bool) error
}
