package domain

// Account holds the credentials and contact data of a User in the record store.
// Account.ID is the User.ID it belongs to.
type Account struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	Email        string `json:"email"`
}

// Transaction is a ledger line owned by a single account.
type Transaction struct {
	ID          int64   `json:"id"`
	UserID      int     `json:"-"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// Feedback is a free-text comment left by a logged-in user. Comment is stored
// and returned verbatim.
type Feedback struct {
	ID      int64  `json:"-"`
	User    string `json:"user"`
	Comment string `json:"comment"`
}
