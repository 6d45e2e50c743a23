package domain

import "time"

// User is an identity subject owning up to MaxCardsPerUser payment cards.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	BirthDate time.Time `json:"birth_date"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Cards     []Card    `json:"cards,omitempty"`
}

// UserInput carries pre-validated attributes for create and full-update operations.
type UserInput struct {
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	BirthDate time.Time `json:"birth_date"`
	Email     string    `json:"email"`
	Active    bool      `json:"active"`
}

// UserFilter describes a paginated, filtered user search.
type UserFilter struct {
	Name    string
	Surname string
	Active  *bool
	Page    int
	Size    int
	Sort    string
}

// Normalized clamps paging values so the store query and the cache key are
// derived from the same effective filter.
func (f UserFilter) Normalized() UserFilter {
	if f.Page < 0 {
		f.Page = 0
	}
	if f.Size <= 0 || f.Size > 100 {
		f.Size = 20
	}
	return f
}

// UserPage is one page of search results together with the total match count.
type UserPage struct {
	Users []User `json:"users"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

func (u *User) IsActive() bool {
	return u != nil && u.Active
}
