package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

const notificationsTable = "notifications"

var notificationColumns = []interface{}{
	"id", "user_id", "type", "title", "message", "appointment_id", "is_read", "created_at",
}

// NotificationAdapter implements the NotificationRepository interface
type NotificationAdapter struct {
	baseAdapter
}

// NewNotificationAdapter creates a new notification adapter
func NewNotificationAdapter(client *postgres.Client) repositories.NotificationRepository {
	return &NotificationAdapter{baseAdapter: newBaseAdapter(client)}
}

// Create stores an in-app notification
func (a *NotificationAdapter) Create(ctx context.Context, n *entities.Notification) error {
	_, err := a.exec(ctx, a.db.Insert(notificationsTable).Rows(goqu.Record{
		"id":             n.ID,
		"user_id":        n.UserID,
		"type":           n.Type,
		"title":          n.Title,
		"message":        n.Message,
		"appointment_id": nullableString(n.AppointmentID),
		"is_read":        n.IsRead,
		"created_at":     n.CreatedAt,
	}), "create notification")
	return err
}

// List returns one page of a user's notifications, newest first
func (a *NotificationAdapter) List(ctx context.Context, userID string, unreadOnly bool, page pagination.Params) ([]*entities.Notification, int, error) {
	ds := a.db.Select(notificationColumns...).From(notificationsTable).Where(goqu.Ex{"user_id": userID})
	if unreadOnly {
		ds = ds.Where(goqu.Ex{"is_read": false})
	}

	total, err := a.count(ctx, ds)
	if err != nil {
		return nil, 0, err
	}

	page.SortBy = "created_at"
	page.SortDir = pagination.SortDesc

	notifications := make([]*entities.Notification, 0)
	if err := a.selectAll(ctx, &notifications, paginate(ds, page)); err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead marks one of the user's notifications as read
func (a *NotificationAdapter) MarkRead(ctx context.Context, id, userID string) error {
	rowsAffected, err := a.exec(ctx, a.db.Update(notificationsTable).
		Set(goqu.Record{"is_read": true}).
		Where(goqu.Ex{"id": id, "user_id": userID}), "mark notification read")
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError("notification not found")
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read
func (a *NotificationAdapter) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return a.exec(ctx, a.db.Update(notificationsTable).
		Set(goqu.Record{"is_read": true}).
		Where(goqu.Ex{"user_id": userID, "is_read": false}), "mark notifications read")
}

// UnreadCount counts the user's unread notifications
func (a *NotificationAdapter) UnreadCount(ctx context.Context, userID string) (int, error) {
	return a.count(ctx, a.db.From(notificationsTable).Where(goqu.Ex{"user_id": userID, "is_read": false}))
}
