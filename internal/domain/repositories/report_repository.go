package repositories

import (
	"context"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// ReportRepository persists generated report snapshots
type ReportRepository interface {
	Create(ctx context.Context, report *entities.Report) error
	GetByID(ctx context.Context, id, agentID string) (*entities.Report, error)
	List(ctx context.Context, agentID string, page pagination.Params) ([]*entities.Report, int, error)
}

// NotificationRepository defines the interface for in-app notifications
type NotificationRepository interface {
	Create(ctx context.Context, notification *entities.Notification) error
	List(ctx context.Context, userID string, unreadOnly bool, page pagination.Params) ([]*entities.Notification, int, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}
