package sqldb

import (
	"database/sql"

	"github.com/ephraimraxy/docflow/core"
)

type NotificationDB struct {
	*sql.DB
	get      *sql.Stmt
	byUser   *sql.Stmt
	insert   *sql.Stmt
	markRead *sql.Stmt
}

func NewNotificationDB(db *sql.DB) *NotificationDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS notification (
			id varchar(36) PRIMARY KEY,
			recipientUid varchar(36) NOT NULL,
			kind varchar(64) NOT NULL,
			targetType varchar(32) NOT NULL,
			targetId varchar(36) NOT NULL,
			body text NOT NULL,
			tsCreated bigint NOT NULL,
			tsRead bigint NOT NULL
		);
		CREATE INDEX IF NOT EXISTS notification_recipient_idx ON notification(recipientUid);`)

	var scanCols = "id, recipientUid, kind, targetType, targetId, body, tsCreated, tsRead"

	var notificationDB = &NotificationDB{}
	notificationDB.DB = db
	notificationDB.get = mustPrepare(db, "SELECT "+scanCols+" FROM notification WHERE id = ? LIMIT 1")
	notificationDB.byUser = mustPrepare(db, "SELECT "+scanCols+" FROM notification WHERE recipientUid = ? ORDER BY tsCreated DESC, id DESC LIMIT ? OFFSET ?")
	notificationDB.insert = mustPrepare(db, "INSERT INTO notification ("+scanCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)")
	notificationDB.markRead = mustPrepare(db, "UPDATE notification SET tsRead = ? WHERE id = ?")
	return notificationDB
}

func scanNotification(scan func(...interface{}) error) (*core.Notification, error) {
	var n = &core.Notification{}
	var err = scan(&n.ID, &n.RecipientUID, &n.Kind, &n.TargetType, &n.TargetID, &n.Body, &n.TsCreated, &n.TsRead)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (db *NotificationDB) GetNotification(id string) (*core.Notification, error) {
	n, err := scanNotification(db.get.QueryRow(id).Scan)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("notification %s not found", id)
	}
	return n, err
}

func (db *NotificationDB) GetNotifications(uid string, limit, offset int) ([]*core.Notification, error) {

	if limit <= 0 {
		limit = 100
	}

	rows, err := db.byUser.Query(uid, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []*core.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows.Scan)
		if err != nil {
			return nil, err
		}
		all = append(all, n)
	}

	return all, nil
}

func (db *NotificationDB) InsertNotification(n *core.Notification) error {
	n.ID = newID()
	_, err := db.insert.Exec(n.ID, n.RecipientUID, n.Kind, n.TargetType, n.TargetID, n.Body, n.TsCreated, n.TsRead)
	return err
}

func (db *NotificationDB) MarkNotificationRead(id string, ts int64) error {
	res, err := db.markRead.Exec(ts, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NotFoundf("notification %s not found", id)
	}
	return nil
}
