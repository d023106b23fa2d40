package group

import "time"

// Group is a set of people sharing costs in one currency
type Group struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Currency    string    `json:"currency"` // ISO-4217, fixed after creation
	CreatedAt   time.Time `json:"created_at"`
}

// Member is a person's membership in a group
type Member struct {
	GroupID     string    `json:"group_id"`
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	JoinedAt    time.Time `json:"joined_at"`
}
