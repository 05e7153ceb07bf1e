package client

import (
	"context"

	"panel/internal/models"
)

// Notifications implements notify.Remote against the mock API.
type Notifications struct {
	api *Client
}

func NewNotifications(api *Client) *Notifications {
	return &Notifications{api: api}
}

type notificationListResponse struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unreadCount"`
	Pagination    models.Page           `json:"pagination"`
}

func (n *Notifications) FetchNotifications(ctx context.Context, page, limit int, category string, onlyUnread bool) ([]models.Notification, models.Page, error) {
	params := ListParams{Page: page, Limit: limit, Category: category}
	path := "/api/notifications" + params.encode()
	if onlyUnread {
		sep := "?"
		if len(path) > len("/api/notifications") {
			sep = "&"
		}
		path += sep + "onlyUnread=true"
	}
	var resp notificationListResponse
	if err := n.api.Get(ctx, path, &resp); err != nil {
		return nil, models.Page{}, err
	}
	return resp.Notifications, resp.Pagination, nil
}

func (n *Notifications) MarkNotificationRead(ctx context.Context, id string) error {
	return n.api.Patch(ctx, "/api/notifications/"+id+"/read", nil, nil)
}

func (n *Notifications) MarkNotificationUnread(ctx context.Context, id string) error {
	return n.api.Patch(ctx, "/api/notifications/"+id+"/unread", nil, nil)
}

func (n *Notifications) DeleteNotification(ctx context.Context, id string) error {
	return n.api.Delete(ctx, "/api/notifications/"+id)
}

func (n *Notifications) MarkAllNotificationsRead(ctx context.Context) error {
	return n.api.Post(ctx, "/api/notifications/read-all", nil, nil)
}
