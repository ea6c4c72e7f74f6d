// Package fixtures holds the static lab data loaded at startup: the user and
// order directory plus the seed rows of the record store.
package fixtures

import (
	"fmt"

	"github.com/appsec-lab/gateway/internal/core/domain"
)

// Account is a record store seed row. Password is hashed when seeded.
type Account struct {
	ID       int
	Username string
	Password string
	Email    string
}

func Users() []domain.User {
	return []domain.User{
		{ID: 1, Name: "Alice", Role: domain.RoleCustomer, Department: "north"},
		{ID: 2, Name: "Bob", Role: domain.RoleCustomer, Department: "south"},
		{ID: 3, Name: "Charlie", Role: domain.RoleSupport, Department: "north"},
	}
}

func Orders() []domain.Order {
	return []domain.Order{
		{ID: 1, OwnerID: 1, Item: "Laptop", Region: "north", Total: 2000},
		{ID: 2, OwnerID: 1, Item: "Mouse", Region: "north", Total: 40},
		{ID: 3, OwnerID: 2, Item: "Monitor", Region: "south", Total: 300},
		{ID: 4, OwnerID: 2, Item: "Keyboard", Region: "south", Total: 60},
	}
}

func Accounts() []Account {
	return []Account{
		{ID: 1, Username: "alice", Password: "password123", Email: "alice@example.com"},
		{ID: 2, Username: "bob", Password: "bobsecret1", Email: "bob@example.com"},
		{ID: 3, Username: "charlie", Password: "support123", Email: "charlie@example.com"},
	}
}

func Transactions() []domain.Transaction {
	return []domain.Transaction{
		{ID: 1, UserID: 1, Amount: 25.50, Description: "Coffee shop"},
		{ID: 2, UserID: 1, Amount: 100.00, Description: "Groceries"},
		{ID: 3, UserID: 2, Amount: 900.00, Description: "Rent"},
		{ID: 4, UserID: 2, Amount: 18.20, Description: "Book store"},
	}
}

// Validate checks referential integrity: unique ids, known roles, every order
// owner and every account id is a user, every transaction belongs to an account.
func Validate(users []domain.User, orders []domain.Order, accounts []Account, txs []domain.Transaction) error {
	userIDs := make(map[int]struct{}, len(users))
	for _, u := range users {
		if _, dup := userIDs[u.ID]; dup {
			return fmt.Errorf("fixtures: duplicate user id %d", u.ID)
		}
		if !domain.ValidRole(u.Role) {
			return fmt.Errorf("fixtures: user %d has unknown role %q", u.ID, u.Role)
		}
		userIDs[u.ID] = struct{}{}
	}

	orderIDs := make(map[int]struct{}, len(orders))
	for _, o := range orders {
		if _, dup := orderIDs[o.ID]; dup {
			return fmt.Errorf("fixtures: duplicate order id %d", o.ID)
		}
		if _, ok := userIDs[o.OwnerID]; !ok {
			return fmt.Errorf("fixtures: order %d references unknown owner %d", o.ID, o.OwnerID)
		}
		orderIDs[o.ID] = struct{}{}
	}

	accountIDs := make(map[int]struct{}, len(accounts))
	usernames := make(map[string]struct{}, len(accounts))
	for _, a := range accounts {
		if _, ok := userIDs[a.ID]; !ok {
			return fmt.Errorf("fixtures: account %q references unknown user %d", a.Username, a.ID)
		}
		if _, dup := accountIDs[a.ID]; dup {
			return fmt.Errorf("fixtures: duplicate account id %d", a.ID)
		}
		if _, dup := usernames[a.Username]; dup {
			return fmt.Errorf("fixtures: duplicate username %q", a.Username)
		}
		if a.Username == "" || a.Password == "" {
			return fmt.Errorf("fixtures: account %d has empty credentials", a.ID)
		}
		accountIDs[a.ID] = struct{}{}
		usernames[a.Username] = struct{}{}
	}

	for _, tx := range txs {
		if _, ok := accountIDs[tx.UserID]; !ok {
			return fmt.Errorf("fixtures: transaction %d references unknown account %d", tx.ID, tx.UserID)
		}
	}
	return nil
}
