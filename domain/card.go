package domain

import "time"

// MaxCardsPerUser caps the number of cards a single user may own.
const MaxCardsPerUser = 5

// Card is a payment instrument owned by exactly one user.
type Card struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Number         string    `json:"number"`
	Holder         string    `json:"holder"`
	ExpirationDate time.Time `json:"expiration_date"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CardInput carries pre-validated attributes for create and full-update operations.
// Number format is XXXX-XXXX-XXXX-XXXX; the binding layer rejects anything else.
type CardInput struct {
	Number         string    `json:"number"`
	Holder         string    `json:"holder"`
	ExpirationDate time.Time `json:"expiration_date"`
	Active         bool      `json:"active"`
}

func (c *Card) IsExpired(reference time.Time) bool {
	if c == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !c.ExpirationDate.After(reference)
}
