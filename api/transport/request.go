package transport

// UserRequest is the body of user create and full-update calls.
// dateOnly fields use the YYYY-MM-DD layout.
type UserRequest struct {
	Name      string `json:"name"`
	Surname   string `json:"surname"`
	BirthDate string `json:"birth_date"`
	Email     string `json:"email"`
	Active    bool   `json:"active"`
}

// CardRequest is the body of card create and full-update calls.
type CardRequest struct {
	Number         string `json:"number"`
	Holder         string `json:"holder"`
	ExpirationDate string `json:"expiration_date"`
	Active         bool   `json:"active"`
}

// ActivityRequest toggles an entity's active flag.
type ActivityRequest struct {
	Active *bool `json:"active"`
}
