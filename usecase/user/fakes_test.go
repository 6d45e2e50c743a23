package user

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/fastygo/user-service/domain"
	"github.com/fastygo/user-service/usecase"
)

var errStoreDown = errors.New("store unavailable")

// memStore backs the repository fakes. Users and cards share it so the
// cascade on user delete behaves like the real schema.
type memStore struct {
	users        map[int64]domain.User
	cards        map[int64]domain.Card
	nextUser     int64
	nextCard     int64
	failing      bool
	cardsFailing bool
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]domain.User),
		cards: make(map[int64]domain.Card),
	}
}

func (s *memStore) addUser(email string) domain.User {
	s.nextUser++
	u := domain.User{
		ID:        s.nextUser,
		Name:      "Jane",
		Surname:   "Doe",
		BirthDate: time.Date(1990, 4, 1, 0, 0, 0, 0, time.UTC),
		Email:     email,
		Active:    true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
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

type memUserRepo struct{ s *memStore }

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	if r.s.failing {
		return nil, errStoreDown
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.Cards = nil
	return &u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.s.failing {
		return nil, errStoreDown
	}
	for _, u := range r.s.users {
		if u.Email == email {
			u.Cards = nil
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Exists(_ context.Context, id int64) (bool, error) {
	if r.s.failing {
		return false, errStoreDown
	}
	_, ok := r.s.users[id]
	return ok, nil
}

func (r *memUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	if r.s.failing {
		return false, errStoreDown
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *memUserRepo) Search(_ context.Context, filter domain.UserFilter) (*domain.UserPage, error) {
	if r.s.failing {
		return nil, errStoreDown
	}
	filter = filter.Normalized()

	var matched []domain.User
	for _, u := range r.s.users {
		if filter.Name != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Surname != "" && !strings.Contains(strings.ToLower(u.Surname), strings.ToLower(filter.Surname)) {
			continue
		}
		if filter.Active != nil && u.Active != *filter.Active {
			continue
		}
		u.Cards = nil
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	total := int64(len(matched))
	start := filter.Page * filter.Size
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.Size
	if end > len(matched) {
		end = len(matched)
	}
	return &domain.UserPage{
		Users: matched[start:end],
		Total: total,
		Page:  filter.Page,
		Size:  filter.Size,
	}, nil
}

func (r *memUserRepo) Create(_ context.Context, input domain.UserInput) (*domain.User, error) {
	if r.s.failing {
		return nil, errStoreDown
	}
	for _, u := range r.s.users {
		if u.Email == input.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	r.s.nextUser++
	u := domain.User{
		ID:        r.s.nextUser,
		Name:      input.Name,
		Surname:   input.Surname,
		BirthDate: input.BirthDate,
		Email:     input.Email,
		Active:    input.Active,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	r.s.users[u.ID] = u
	return &u, nil
}

func (r *memUserRepo) Update(_ context.Context, id int64, input domain.UserInput) (*domain.User, error) {
	if r.s.failing {
		return nil, errStoreDown
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	for _, other := range r.s.users {
		if other.ID != id && other.Email == input.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	u.Name = input.Name
	u.Surname = input.Surname
	u.BirthDate = input.BirthDate
	u.Email = input.Email
	u.Active = input.Active
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	u.Cards = nil
	return &u, nil
}

func (r *memUserRepo) Delete(_ context.Context, id int64) error {
	if r.s.failing {
		return errStoreDown
	}
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.s.users, id)
	for cid, c := range r.s.cards {
		if c.UserID == id {
			delete(r.s.cards, cid)
		}
	}
	return nil
}

func (r *memUserRepo) SetActive(_ context.Context, id int64, active bool) error {
	if r.s.failing {
		return errStoreDown
	}
	u, ok := r.s.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.Active = active
	u.UpdatedAt = time.Now()
	r.s.users[id] = u
	return nil
}

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
	if r.s.cardsFailing {
		return nil, errStoreDown
	}
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

// memCache mimics the best-effort entity cache. With disabled set, every get
// misses and every put is dropped, like a Redis outage.
type memCache struct {
	users    map[int64]domain.User
	pages    map[string]domain.UserPage
	cards    map[int64][]domain.Card
	card     map[int64]domain.Card
	disabled bool
}

func newMemCache() *memCache {
	return &memCache{
		users: make(map[int64]domain.User),
		pages: make(map[string]domain.UserPage),
		cards: make(map[int64][]domain.Card),
		card:  make(map[int64]domain.Card),
	}
}

func (c *memCache) GetUser(_ context.Context, id int64) (*domain.User, bool) {
	if c.disabled {
		return nil, false
	}
	u, ok := c.users[id]
	if !ok {
		return nil, false
	}
	return &u, true
}

func (c *memCache) PutUser(_ context.Context, user *domain.User) {
	if c.disabled || user == nil {
		return
	}
	c.users[user.ID] = *user
}

func (c *memCache) EvictUser(_ context.Context, id int64) {
	delete(c.users, id)
}

func (c *memCache) GetSearchPage(_ context.Context, key string) (*domain.UserPage, bool) {
	if c.disabled {
		return nil, false
	}
	p, ok := c.pages[key]
	if !ok {
		return nil, false
	}
	return &p, true
}

func (c *memCache) PutSearchPage(_ context.Context, key string, page *domain.UserPage) {
	if c.disabled || page == nil {
		return
	}
	c.pages[key] = *page
}

func (c *memCache) EvictSearchPages(_ context.Context) {
	c.pages = make(map[string]domain.UserPage)
}

func (c *memCache) GetCards(_ context.Context, ownerID int64) ([]domain.Card, bool) {
	if c.disabled {
		return nil, false
	}
	cards, ok := c.cards[ownerID]
	return cards, ok
}

func (c *memCache) PutCards(_ context.Context, ownerID int64, cards []domain.Card) {
	if c.disabled {
		return
	}
	c.cards[ownerID] = cards
}

func (c *memCache) EvictCards(_ context.Context, ownerID int64) {
	delete(c.cards, ownerID)
}

func (c *memCache) GetCard(_ context.Context, id int64) (*domain.Card, bool) {
	if c.disabled {
		return nil, false
	}
	card, ok := c.card[id]
	if !ok {
		return nil, false
	}
	return &card, true
}

func (c *memCache) PutCard(_ context.Context, card *domain.Card) {
	if c.disabled || card == nil {
		return
	}
	c.card[card.ID] = *card
}

func (c *memCache) EvictCard(_ context.Context, id int64) {
	delete(c.card, id)
}

type recordedAudit struct {
	entries []usecase.AuditEntry
}

func (a *recordedAudit) Record(_ context.Context, entry usecase.AuditEntry) error {
	a.entries = append(a.entries, entry)
	return nil
}
