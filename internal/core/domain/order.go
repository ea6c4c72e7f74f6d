package domain

// Order is an owner-scoped resource. OwnerID always references an existing User.
type Order struct {
	ID      int     `json:"id"`
	OwnerID int     `json:"ownerId"`
	Item    string  `json:"item"`
	Region  string  `json:"region"`
	Total   float64 `json:"total"`
}

// CanAccess reports whether identity may read order: privileged roles read
// everything, everyone else only what they own.
func CanAccess(identity *User, order *Order) bool {
	if identity == nil || order == nil {
		return false
	}
	return identity.IsPrivileged() || order.OwnerID == identity.ID
}
