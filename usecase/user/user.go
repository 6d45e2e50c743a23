// Package user implements the user domain operations. Every mutating
// operation composes the same sequence: authorization check, business
// invariant checks against the authoritative store, store mutation, then
// cache synchronization. Cache calls are explicit so their ordering relative
// to the store write is an auditable contract.
package user

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/fastygo/user-service/domain"
	"github.com/fastygo/user-service/repository"
	"github.com/fastygo/user-service/usecase"
	"github.com/fastygo/user-service/usecase/authz"
)

type UseCase struct {
	users  repository.UserRepository
	cards  repository.CardRepository
	cache  repository.EntityCache
	audit  usecase.AuditRecorder
	logger *zap.Logger
}

func New(
	users repository.UserRepository,
	cards repository.CardRepository,
	cache repository.EntityCache,
	audit usecase.AuditRecorder,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		cards:  cards,
		cache:  cache,
		audit:  audit,
		logger: logger,
	}
}

// Get returns a user with its owned cards, serving from the point cache when
// possible and populating it on a miss.
func (uc *UseCase) Get(ctx context.Context, ident domain.Identity, id int64) (*domain.User, error) {
	if err := authz.Decide(ident, authz.OpUserGet, id); err != nil {
		return nil, err
	}

	if cached, ok := uc.cache.GetUser(ctx, id); ok {
		return cached, nil
	}

	user, err := uc.loadWithCards(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.cache.PutUser(ctx, user)
	return user, nil
}

// Search returns one page of filtered results, cached per exact
// filter/page/sort combination.
func (uc *UseCase) Search(ctx context.Context, ident domain.Identity, filter domain.UserFilter) (*domain.UserPage, error) {
	if err := authz.Decide(ident, authz.OpUserSearch, 0); err != nil {
		return nil, err
	}

	filter = filter.Normalized()
	key := repository.SearchKey(filter)
	if cached, ok := uc.cache.GetSearchPage(ctx, key); ok {
		return cached, nil
	}

	page, err := uc.users.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	uc.cache.PutSearchPage(ctx, key, page)
	return page, nil
}

// Create inserts a new user. Email uniqueness is checked immediately before
// the write; the store's unique constraint settles any check-then-act race.
func (uc *UseCase) Create(ctx context.Context, ident domain.Identity, input domain.UserInput) (*domain.User, error) {
	if err := authz.Decide(ident, authz.OpUserCreate, 0); err != nil {
		return nil, err
	}

	taken, err := uc.users.ExistsByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domain.ErrEmailTaken
	}

	created, err := uc.users.Create(ctx, input)
	if err != nil {
		return nil, err
	}

	uc.cache.PutUser(ctx, created)
	uc.cache.EvictSearchPages(ctx)
	uc.recordAudit(ctx, ident, string(authz.OpUserCreate), created.ID)
	return created, nil
}

// Update replaces the user's attributes. A changed email must not collide
// with a different user's email.
func (uc *UseCase) Update(ctx context.Context, ident domain.Identity, id int64, input domain.UserInput) (*domain.User, error) {
	if err := authz.Decide(ident, authz.OpUserUpdate, id); err != nil {
		return nil, err
	}

	if holder, err := uc.users.GetByEmail(ctx, input.Email); err == nil {
		if holder.ID != id {
			return nil, domain.ErrEmailTaken
		}
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	// Load the card list before the write. Once the store row has changed
	// there is no failure path left that could return without synchronizing
	// the cache.
	cards, err := uc.cards.ListByOwner(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := uc.users.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	updated.Cards = cards

	uc.cache.PutUser(ctx, updated)
	uc.cache.EvictSearchPages(ctx)
	uc.recordAudit(ctx, ident, string(authz.OpUserUpdate), id)
	return updated, nil
}

// Delete removes the user; owned cards are deleted atomically by the store's
// cascade. Their point cache entries are evicted alongside the user's.
func (uc *UseCase) Delete(ctx context.Context, ident domain.Identity, id int64) error {
	if err := authz.Decide(ident, authz.OpUserDelete, id); err != nil {
		return err
	}

	owned, err := uc.cards.ListByOwner(ctx, id)
	if err != nil {
		return err
	}

	if err := uc.users.Delete(ctx, id); err != nil {
		return err
	}

	uc.cache.EvictUser(ctx, id)
	uc.cache.EvictCards(ctx, id)
	for _, card := range owned {
		uc.cache.EvictCard(ctx, card.ID)
	}
	uc.cache.EvictSearchPages(ctx)
	uc.recordAudit(ctx, ident, string(authz.OpUserDelete), id)
	return nil
}

// SetActivity toggles the active flag via the store's narrow conditional
// update, without loading the full row.
func (uc *UseCase) SetActivity(ctx context.Context, ident domain.Identity, id int64, active bool) error {
	if err := authz.Decide(ident, authz.OpUserSetActivity, id); err != nil {
		return err
	}

	if err := uc.users.SetActive(ctx, id, active); err != nil {
		return err
	}

	uc.cache.EvictUser(ctx, id)
	uc.cache.EvictSearchPages(ctx)
	uc.recordAudit(ctx, ident, string(authz.OpUserSetActivity), id)
	return nil
}

// GetByEmail backs the auth service's login flow.
func (uc *UseCase) GetByEmail(ctx context.Context, ident domain.Identity, email string) (*domain.User, error) {
	if err := authz.Decide(ident, authz.OpUserGetByEmail, 0); err != nil {
		return nil, err
	}

	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	cards, err := uc.cards.ListByOwner(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Cards = cards

	// The point key is known once the row is loaded, so populate it even
	// though the lookup came in by email.
	uc.cache.PutUser(ctx, user)
	return user, nil
}

func (uc *UseCase) loadWithCards(ctx context.Context, id int64) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cards, err := uc.cards.ListByOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	user.Cards = cards
	return user, nil
}

func (uc *UseCase) recordAudit(ctx context.Context, ident domain.Identity, operation string, entityID int64) {
	if uc.audit == nil {
		return
	}
	entry := usecase.AuditEntry{
		Actor:     usecase.ActorLabel(ident),
		Operation: operation,
		Entity:    usecase.EntityUser,
		EntityID:  entityID,
	}
	if err := uc.audit.Record(ctx, entry); err != nil {
		uc.logger.Warn("audit record failed", zap.String("operation", operation), zap.Error(err))
	}
}
