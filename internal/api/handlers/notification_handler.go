package handlers

import (
	"context"
	"net/http"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

var notificationSorting = pagination.Sorting{
	Allowed:    map[string]string{"createdAt": "created_at"},
	DefaultKey: "createdAt",
	DefaultDir: pagination.SortDesc,
}

// NotificationService defines the inbox operations used by the handler
type NotificationService interface {
	List(ctx context.Context, userID string, unreadOnly bool, page pagination.Params) (pagination.Page[*entities.Notification], error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// NotificationHandler handles the in-app notification inbox
type NotificationHandler struct {
	service NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(service NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// ListNotifications handles GET /api/notifications?unread=true
func (h *NotificationHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	page, err := h.service.List(r.Context(), claims.UserID, q.Get("unread") == "true", pagination.FromQuery(q, notificationSorting))
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", page)
}

// UnreadCount handles GET /api/notifications/unread-count
func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	count, err := h.service.UnreadCount(r.Context(), claims.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "", map[string]int{"count": count})
}

// MarkRead handles PATCH /api/notifications/{id}/read
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	if err := h.service.MarkRead(r.Context(), claims.UserID, r.PathValue("id")); err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "notification marked as read", nil)
}

// MarkAllRead handles PATCH /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireClaims(w, r)
	if !ok {
		return
	}

	marked, err := h.service.MarkAllRead(r.Context(), claims.UserID)
	if err != nil {
		respondWithAppError(w, r, err)
		return
	}
	respondWithData(w, http.StatusOK, "notifications marked as read", map[string]int64{"updated": marked})
}
