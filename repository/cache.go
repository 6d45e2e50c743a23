package repository

import (
	"context"
	"fmt"

	"github.com/fastygo/user-service/domain"
)

// EntityCache is the read-through cache in front of the authoritative store.
//
// Every method is best-effort: a cache that is down or slow must never fail a
// business operation, so gets report a plain miss on transport errors and
// puts/evicts swallow them (implementations log). Point entries (single user,
// single card) are kept precisely synchronized by direct key eviction or
// refresh; search pages can only be invalidated namespace-wide.
type EntityCache interface {
	GetUser(ctx context.Context, id int64) (*domain.User, bool)
	PutUser(ctx context.Context, user *domain.User)
	EvictUser(ctx context.Context, id int64)

	GetSearchPage(ctx context.Context, key string) (*domain.UserPage, bool)
	PutSearchPage(ctx context.Context, key string, page *domain.UserPage)
	// EvictSearchPages clears the whole search-page namespace. Any user write
	// may change any page, so the coarse grain is the correctness-first choice.
	EvictSearchPages(ctx context.Context)

	GetCards(ctx context.Context, ownerID int64) ([]domain.Card, bool)
	PutCards(ctx context.Context, ownerID int64, cards []domain.Card)
	EvictCards(ctx context.Context, ownerID int64)

	GetCard(ctx context.Context, id int64) (*domain.Card, bool)
	PutCard(ctx context.Context, card *domain.Card)
	EvictCard(ctx context.Context, id int64)
}

// SearchKey derives the cache key for one exact filter/page/sort combination.
func SearchKey(f domain.UserFilter) string {
	active := "any"
	if f.Active != nil {
		active = fmt.Sprintf("%t", *f.Active)
	}
	return fmt.Sprintf("%s|%s|%s|%d|%d|%s", f.Name, f.Surname, active, f.Page, f.Size, f.Sort)
}
