package card

import (
	"context"
	"sort"
	"time"

	"github.com/fastygo/user-service/domain"
	"github.com/fastygo/user-service/usecase"
)

// memStore holds users and cards together so ownership checks see one world.
type memStore struct {
	users    map[int64]domain.User
	cards    map[int64]domain.Card
	nextUser int64
	nextCard int64
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]domain.User),
		cards: make(map[int64]domain.Card),
	}
}

func (s *memStore) addUser() domain.User {
	s.nextUser++
	u := domain.User{ID: s.nextUser, Name: "Jane", Surname: "Doe", Email: "jane@example.com", Active: true}
	s.users[u.ID] = u
	return u
}

func (s *memStore) addCard(ownerID int64, number string) domain.Card {
	s.nextCard++
	c := domain.Card{
		ID:             s.nextCard,
		UserID:         ownerID,
		Number:         number,
		Holder:         "JANE DOE",
		ExpirationDate: time.Now().AddDate(2, 0, 0),
		Active:         true,
	}
	s.cards[c.ID] = c
	return c
}

// memUserRepo implements only what the card flows exercise; the remaining
// methods return not-found.
type memUserRepo struct{ s *memStore }

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *memUserRepo) GetByEmail(context.Context, string) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.s.users[id]
	return ok, nil
}

func (r *memUserRepo) ExistsByEmail(context.Context, string) (bool, error) {
	return false, nil
}

func (r *memUserRepo) Search(context.Context, domain.UserFilter) (*domain.UserPage, error) {
	return &domain.UserPage{}, nil
}

func (r *memUserRepo) Create(context.Context, domain.UserInput) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Update(context.Context, int64, domain.UserInput) (*domain.User, error) {
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Delete(context.Context, int64) error { return domain.ErrUserNotFound }

func (r *memUserRepo) SetActive(context.Context, int64, bool) error { return domain.ErrUserNotFound }

type memCardRepo struct{ s *memStore }

func (r *memCardRepo) GetByID(_ context.Context, id int64) (*domain.Card, error) {
	c, ok := r.s.cards[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	return &c, nil
}

func (r *memCardRepo) GetByNumber(_ context.Context, number string) (*domain.Card, error) {
	for _, c := range r.s.cards {
		if c.Number == number {
			return &c, nil
		}
	}
	return nil, domain.ErrCardNotFound
}

func (r *memCardRepo) ListByOwner(_ context.Context, ownerID int64) ([]domain.Card, error) {
	var cards []domain.Card
	for _, c := range r.s.cards {
		if c.UserID == ownerID {
			cards = append(cards, c)
		}
	}
	sort.Slice(cards, func(i, j int) bool { return cards[i].ID < cards[j].ID })
	return cards, nil
}

func (r *memCardRepo) CountByOwner(ctx context.Context, ownerID int64) (int, error) {
	cards, err := r.ListByOwner(ctx, ownerID)
	return len(cards), err
}

func (r *memCardRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := r.s.cards[id]
	return ok, nil
}

func (r *memCardRepo) Create(_ context.Context, ownerID int64, input domain.CardInput) (*domain.Card, error) {
	for _, c := range r.s.cards {
		if c.Number == input.Number {
			return nil, domain.ErrCardNumberTaken
		}
	}
	r.s.nextCard++
	c := domain.Card{
		ID:             r.s.nextCard,
		UserID:         ownerID,
		Number:         input.Number,
		Holder:         input.Holder,
		ExpirationDate: input.ExpirationDate,
		Active:         input.Active,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	r.s.cards[c.ID] = c
	return &c, nil
}

func (r *memCardRepo) Update(_ context.Context, id int64, input domain.CardInput) (*domain.Card, error) {
	c, ok := r.s.cards[id]
	if !ok {
		return nil, domain.ErrCardNotFound
	}
	for _, other := range r.s.cards {
		if other.ID != id && other.Number == input.Number {
			return nil, domain.ErrCardNumberTaken
		}
	}
	c.Number = input.Number
	c.Holder = input.Holder
	c.ExpirationDate = input.ExpirationDate
	c.Active = input.Active
	c.UpdatedAt = time.Now()
	r.s.cards[id] = c
	return &c, nil
}

func (r *memCardRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.cards[id]; !ok {
		return domain.ErrCardNotFound
	}
	delete(r.s.cards, id)
	return nil
}

func (r *memCardRepo) SetActive(_ context.Context, id int64, active bool) error {
	c, ok := r.s.cards[id]
	if !ok {
		return domain.ErrCardNotFound
	}
	c.Active = active
	c.UpdatedAt = time.Now()
	r.s.cards[id] = c
	return nil
}

type memCache struct {
	users map[int64]domain.User
	cards map[int64][]domain.Card
	card  map[int64]domain.Card
	pages map[string]domain.UserPage
}

func newMemCache() *memCache {
	return &memCache{
		users: make(map[int64]domain.User),
		cards: make(map[int64][]domain.Card),
		card:  make(map[int64]domain.Card),
		pages: make(map[string]domain.UserPage),
	}
}

func (c *memCache) GetUser(_ context.Context, id int64) (*domain.User, bool) {
	u, ok := c.users[id]
	if !ok {
		return nil, false
	}
	return &u, true
}

func (c *memCache) PutUser(_ context.Context, user *domain.User) {
	if user != nil {
		c.users[user.ID] = *user
	}
}

func (c *memCache) EvictUser(_ context.Context, id int64) { delete(c.users, id) }

func (c *memCache) GetSearchPage(_ context.Context, key string) (*domain.UserPage, bool) {
	p, ok := c.pages[key]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *memCache) PutSearchPage(_ context.Context, key string, page *domain.UserPage) {
	if page != nil {
		c.pages[key] = *page
	}
}

func (c *memCache) EvictSearchPages(_ context.Context) { c.pages = make(map[string]domain.UserPage) }

func (c *memCache) GetCards(_ context.Context, ownerID int64) ([]domain.Card, bool) {
	cards, ok := c.cards[ownerID]
	return cards, ok
}

func (c *memCache) PutCards(_ context.Context, ownerID int64, cards []domain.Card) {
	c.cards[ownerID] = cards
}

func (c *memCache) EvictCards(_ context.Context, ownerID int64) { delete(c.cards, ownerID) }

func (c *memCache) GetCard(_ context.Context, id int64) (*domain.Card, bool) {
	card, ok := c.card[id]
	if !ok {
		return nil, false
	}
	return &card, true
}

func (c *memCache) PutCard(_ context.Context, card *domain.Card) {
	if card != nil {
		c.card[card.ID] = *card
	}
}

func (c *memCache) EvictCard(_ context.Context, id int64) { delete(c.card, id) }

type recordedAudit struct {
	entries []usecase.AuditEntry
}

func (a *recordedAudit) Record(_ context.Context, entry usecase.AuditEntry) error {
	a.entries = append(a.entries, entry)
	return nil
}
