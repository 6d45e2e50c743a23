// Package card implements the payment-card domain operations. See
// usecase/user for the shared composition order: authorization first, then
// invariants against the store, then the mutation, then cache sync.
package card

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
	cards  repository.CardRepository
	users  repository.UserRepository
	cache  repository.EntityCache
	audit  usecase.AuditRecorder
	logger *zap.Logger
}

func New(
	cards repository.CardRepository,
	users repository.UserRepository,
	cache repository.EntityCache,
	audit usecase.AuditRecorder,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		cards:  cards,
		users:  users,
		cache:  cache,
		audit:  audit,
		logger: logger,
	}
}

// List returns every card owned by the user, cached per owner id.
func (uc *UseCase) List(ctx context.Context, ident domain.Identity, ownerID int64) ([]domain.Card, error) {
	if err := authz.Decide(ident, authz.OpCardList, ownerID); err != nil {
		return nil, err
	}

	if cached, ok := uc.cache.GetCards(ctx, ownerID); ok {
		return cached, nil
	}

	exists, err := uc.users.Exists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	cards, err := uc.cards.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	uc.cache.PutCards(ctx, ownerID, cards)
	return cards, nil
}

// Add attaches a new card to the user. The card number must be globally
// unique and the owner strictly below the per-user limit before the insert.
func (uc *UseCase) Add(ctx context.Context, ident domain.Identity, ownerID int64, input domain.CardInput) (*domain.Card, error) {
	if err := authz.Decide(ident, authz.OpCardAdd, ownerID); err != nil {
		return nil, err
	}

	exists, err := uc.users.Exists(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUserNotFound
	}

	if _, err := uc.cards.GetByNumber(ctx, input.Number); err == nil {
		return nil, domain.ErrCardNumberTaken
	} else if !errors.Is(err, domain.ErrCardNotFound) {
		return nil, err
	}

	count, err := uc.cards.CountByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if count >= domain.MaxCardsPerUser {
		return nil, domain.ErrCardLimitReached
	}

	created, err := uc.cards.Create(ctx, ownerID, input)
	if err != nil {
		return nil, err
	}

	uc.cache.PutCard(ctx, created)
	uc.cache.EvictCards(ctx, ownerID)
	// The cached user aggregate embeds its card list.
	uc.cache.EvictUser(ctx, ownerID)
	uc.recordAudit(ctx, ident, string(authz.OpCardAdd), created.ID)
	return created, nil
}

// Update replaces the card's attributes. Ownership is derived from the
// stored card, so the authorization decision cannot be spoofed by input.
func (uc *UseCase) Update(ctx context.Context, ident domain.Identity, cardID int64, input domain.CardInput) (*domain.Card, error) {
	current, err := uc.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, err
	}

	if err := authz.Decide(ident, authz.OpCardUpdate, current.UserID); err != nil {
		return nil, err
	}

	if input.Number != current.Number {
		if holder, err := uc.cards.GetByNumber(ctx, input.Number); err == nil {
			if holder.ID != cardID {
				return nil, domain.ErrCardNumberTaken
			}
		} else if !errors.Is(err, domain.ErrCardNotFound) {
			return nil, err
		}
	}

	updated, err := uc.cards.Update(ctx, cardID, input)
	if err != nil {
		return nil, err
	}

	uc.cache.PutCard(ctx, updated)
	uc.cache.EvictCards(ctx, updated.UserID)
	uc.cache.EvictUser(ctx, updated.UserID)
	uc.recordAudit(ctx, ident, string(authz.OpCardUpdate), cardID)
	return updated, nil
}

// Delete removes the card. Admin only.
func (uc *UseCase) Delete(ctx context.Context, ident domain.Identity, cardID int64) error {
	if err := authz.Decide(ident, authz.OpCardDelete, 0); err != nil {
		return err
	}

	card, err := uc.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}

	if err := uc.cards.Delete(ctx, cardID); err != nil {
		return err
	}

	uc.cache.EvictCard(ctx, cardID)
	uc.cache.EvictCards(ctx, card.UserID)
	uc.cache.EvictUser(ctx, card.UserID)
	uc.recordAudit(ctx, ident, string(authz.OpCardDelete), cardID)
	return nil
}

// SetActivity toggles the active flag via the store's narrow conditional
// update. Admin only.
func (uc *UseCase) SetActivity(ctx context.Context, ident domain.Identity, cardID int64, active bool) error {
	if err := authz.Decide(ident, authz.OpCardSetActivity, 0); err != nil {
		return err
	}

	card, err := uc.cards.GetByID(ctx, cardID)
	if err != nil {
		return err
	}

	if err := uc.cards.SetActive(ctx, cardID, active); err != nil {
		return err
	}

	uc.cache.EvictCard(ctx, cardID)
	uc.cache.EvictCards(ctx, card.UserID)
	uc.cache.EvictUser(ctx, card.UserID)
	uc.recordAudit(ctx, ident, string(authz.OpCardSetActivity), cardID)
	return nil
}

func (uc *UseCase) recordAudit(ctx context.Context, ident domain.Identity, operation string, entityID int64) {
	if uc.audit == nil {
		return
	}
	entry := usecase.AuditEntry{
		Actor:     usecase.ActorLabel(ident),
		Operation: operation,
		Entity:    usecase.EntityCard,
		EntityID:  entityID,
	}
	if err := uc.audit.Record(ctx, entry); err != nil {
		uc.logger.Warn("audit record failed", zap.String("operation", operation), zap.Error(err))
	}
}
