package models

import "errors"

// ErrInvalidGroup is returned when a group fails validation.
var ErrInvalidGroup = errors.New("invalid group")

// Member is one participant in a group.
type Member struct {
	// UserID is the unique identifier of the user (UUID format).
	UserID string

	// DisplayName is the name shown in balances and plans.
	DisplayName string
}

// Group represents a set of people who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Ski Trip").
	Name string

	// BaseCurrency is the 3-letter code expenses are mirrored into at
	// creation time. It never changes what balances are tracked in; it only
	// feeds the stored base-currency equivalent on each expense.
	BaseCurrency string

	// Members is the current set of active members.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID is an active member of the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the user IDs of all active members.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}
