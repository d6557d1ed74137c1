package core

import (
	"time"

	"go.uber.org/zap"
)

// Notification is a fire-and-forget event for one user. Delivery beyond
// the store is out of scope; the list endpoint is the inbox.
type Notification struct {
	ID           string
	RecipientUID string
	Kind         string
	TargetType   string
	TargetID     string
	Body         string
	TsCreated    int64
	TsRead       int64 // zero means unread
}

type NotificationDB interface {
	GetNotification(id string) (*Notification, error)
	GetNotifications(uid string, limit, offset int) ([]*Notification, error) // newest first
	InsertNotification(n *Notification) error                                // assigns ID
	MarkNotificationRead(id string, ts int64) error
}

// NotifyUsers emits one notification per recipient. Failures are logged
// and swallowed; notifications never block or fail a transition.
func (c *CoreDB) NotifyUsers(uids []string, kind, targetType, targetID, body string) {

	var now = time.Now().Unix()
	for _, uid := range uids {
		if uid == "" {
			continue
		}
		var err = c.NotificationDB.InsertNotification(&Notification{
			RecipientUID: uid,
			Kind:         kind,
			TargetType:   targetType,
			TargetID:     targetID,
			Body:         body,
			TsCreated:    now,
		})
		if err != nil {
			c.Logger.Warn("could not store notification",
				zap.String("recipient", uid), zap.String("kind", kind), zap.Error(err))
		}
	}
}

// ReadNotification marks one of the acting user's notifications as read.
func (c *CoreDB) ReadNotification(actor *User, id string) error {

	n, err := c.NotificationDB.GetNotification(id)
	if err != nil {
		return err
	}

	if actor == nil || actor.ID != n.RecipientUID {
		return ErrUnauthorized
	}

	return c.NotificationDB.MarkNotificationRead(id, time.Now().Unix())
}
