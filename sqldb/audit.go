package sqldb

import (
	"database/sql"

	"github.com/ephraimraxy/docflow/core"
)

type AuditDB struct {
	*sql.DB
	insert   *sql.Stmt
	byTarget *sql.Stmt
}

func NewAuditDB(db *sql.DB) *AuditDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS audit_log (
			id varchar(36) PRIMARY KEY,
			actorUid varchar(36) NOT NULL,
			action varchar(64) NOT NULL,
			targetType varchar(32) NOT NULL,
			targetId varchar(36) NOT NULL,
			ts bigint NOT NULL,
			ip varchar(64) NOT NULL,
			userAgent varchar(256) NOT NULL,
			meta text NOT NULL
		);
		CREATE INDEX IF NOT EXISTS audit_target_idx ON audit_log(targetType, targetId);`)

	var auditDB = &AuditDB{}
	auditDB.DB = db
	auditDB.insert = mustPrepare(db, "INSERT INTO audit_log (id, actorUid, action, targetType, targetId, ts, ip, userAgent, meta) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	auditDB.byTarget = mustPrepare(db, "SELECT id, actorUid, action, targetType, targetId, ts, ip, userAgent, meta FROM audit_log WHERE targetType = ? AND targetId = ? ORDER BY ts DESC, id DESC LIMIT ? OFFSET ?")
	return auditDB
}

func (db *AuditDB) InsertAuditLog(e *core.AuditLog) error {
	e.ID = newID()
	meta, err := encodeMeta(e.Meta)
	if err != nil {
		return err
	}
	_, err = db.insert.Exec(e.ID, e.ActorUID, e.Action, e.TargetType, e.TargetID, e.Ts, e.IP, e.UserAgent, meta)
	return err
}

func (db *AuditDB) GetAuditLogs(targetType, targetID string, limit, offset int) ([]*core.AuditLog, error) {

	if limit <= 0 {
		limit = 100
	}

	rows, err := db.byTarget.Query(targetType, targetID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []*core.AuditLog{}
	for rows.Next() {
		var e = &core.AuditLog{}
		var meta string
		if err := rows.Scan(&e.ID, &e.ActorUID, &e.Action, &e.TargetType, &e.TargetID, &e.Ts, &e.IP, &e.UserAgent, &meta); err != nil {
			return nil, err
		}
		if e.Meta, err = decodeMeta(meta); err != nil {
			return nil, err
		}
		all = append(all, e)
	}

	return all, nil
}
