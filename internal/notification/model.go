package notification

import "time"

// Notification is one message in a member's inbox
type Notification struct {
	ID                string    `json:"id"`
	RecipientID       string    `json:"recipient_id"`
	GroupID           string    `json:"group_id"`
	Type              Type      `json:"type"`
	Message           string    `json:"message"`
	IsRead            bool      `json:"is_read"`
	RelatedEntityType *string   `json:"related_entity_type,omitempty"` // "EXPENSE" or "SETTLEMENT"
	RelatedEntityID   *string   `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// Type represents the type of notification
type Type string

const (
	TypeExpenseAdded      Type = "EXPENSE_ADDED"
	TypeExpenseRemoved    Type = "EXPENSE_REMOVED"
	TypeSettlement        Type = "SETTLEMENT"
	TypeSettlementRemoved Type = "SETTLEMENT_REMOVED"
)

// Related entity types
const (
	EntityExpense    = "EXPENSE"
	EntitySettlement = "SETTLEMENT"
)
