package notification

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fkhayef/groupledger/pkg/response"
)

// Common errors
var (
	ErrNotificationNotFound = errors.New("notification not found")
	ErrNotRecipient         = errors.New("not the recipient of this notification")
)

// Service handles notification business logic
type Service struct {
	store Store
	now   func() time.Time
	newID func() string
}

// NewService creates a new notification service
func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create stores a new unread notification for recipientID
func (s *Service) Create(ctx context.Context, recipientID, groupID string, t Type, message, entityType, entityID string) (*Notification, error) {
	n := &Notification{
		ID:                s.newID(),
		RecipientID:       recipientID,
		GroupID:           groupID,
		Type:              t,
		Message:           message,
		RelatedEntityType: &entityType,
		RelatedEntityID:   &entityID,
		CreatedAt:         s.now().UTC(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// GetByID retrieves a notification by its ID
func (s *Service) GetByID(ctx context.Context, id string) (*Notification, error) {
	n, err := s.store.GetNotification(ctx, id)
	if err != nil {
		return nil, err
	}
	if n == nil {
		return nil, ErrNotificationNotFound
	}
	return n, nil
}

// ListByRecipientID retrieves a member's notifications
func (s *Service) ListByRecipientID(ctx context.Context, recipientID string, page, perPage int, unreadOnly bool) ([]*Notification, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	offset := response.Offset(page, perPage)
	return s.store.ListNotifications(ctx, recipientID, perPage, offset, unreadOnly)
}

// MarkAsRead marks a notification as read on behalf of its recipient
func (s *Service) MarkAsRead(ctx context.Context, id, memberID string) error {
	n, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.RecipientID != memberID {
		return ErrNotRecipient
	}
	return s.store.MarkNotificationRead(ctx, id)
}

// MarkAllAsRead marks all notifications as read for a member
func (s *Service) MarkAllAsRead(ctx context.Context, memberID string) error {
	return s.store.MarkAllNotificationsRead(ctx, memberID)
}

// GetUnreadCount returns the count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, memberID string) (int, error) {
	return s.store.UnreadNotificationCount(ctx, memberID)
}
