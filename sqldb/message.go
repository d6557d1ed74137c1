package sqldb

import (
	"database/sql"

	"github.com/ephraimraxy/docflow/core"
)

type MessageDB struct {
	*sql.DB
	get        *sql.Stmt
	forOffice  *sql.Stmt
	insert     *sql.Stmt
	readers    *sql.Stmt
	insertRead *sql.Stmt
}

func NewMessageDB(db *sql.DB) *MessageDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS message (
			id varchar(36) PRIMARY KEY,
			subject varchar(256) NOT NULL,
			body text NOT NULL,
			officeId varchar(36) NOT NULL,
			createdBy varchar(36) NOT NULL,
			tsCreated bigint NOT NULL
		);
		CREATE TABLE IF NOT EXISTS message_read (
			messageId varchar(36) NOT NULL,
			readerKey varchar(64) NOT NULL,
			PRIMARY KEY (messageId, readerKey)
		);`)

	var messageDB = &MessageDB{}
	messageDB.DB = db
	messageDB.get = mustPrepare(db, "SELECT id, subject, body, officeId, createdBy, tsCreated FROM message WHERE id = ? LIMIT 1")
	messageDB.forOffice = mustPrepare(db, "SELECT id, subject, body, officeId, createdBy, tsCreated FROM message WHERE officeId = '' OR officeId = ? ORDER BY tsCreated DESC, id DESC LIMIT ? OFFSET ?")
	messageDB.insert = mustPrepare(db, "INSERT INTO message (id, subject, body, officeId, createdBy, tsCreated) VALUES (?, ?, ?, ?, ?, ?)")
	messageDB.readers = mustPrepare(db, "SELECT readerKey FROM message_read WHERE messageId = ?")
	messageDB.insertRead = mustPrepare(db, "INSERT INTO message_read (messageId, readerKey) VALUES (?, ?)")
	return messageDB
}

func (db *MessageDB) loadReaders(m *core.Message) error {

	rows, err := db.readers.Query(m.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return err
		}
		m.ReadBy = append(m.ReadBy, key)
	}

	return nil
}

func (db *MessageDB) GetMessage(id string) (*core.Message, error) {
	var m = &core.Message{}
	var err = db.get.QueryRow(id).Scan(&m.ID, &m.Subject, &m.Body, &m.OfficeID, &m.CreatedBy, &m.TsCreated)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("message %s not found", id)
	}
	if err != nil {
		return nil, err
	}
	return m, db.loadReaders(m)
}

func (db *MessageDB) GetMessages(officeID string, limit, offset int) ([]*core.Message, error) {

	if limit <= 0 {
		limit = 100
	}

	rows, err := db.forOffice.Query(officeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []*core.Message{}
	for rows.Next() {
		var m = &core.Message{}
		if err := rows.Scan(&m.ID, &m.Subject, &m.Body, &m.OfficeID, &m.CreatedBy, &m.TsCreated); err != nil {
			return nil, err
		}
		all = append(all, m)
	}

	for _, m := range all {
		if err := db.loadReaders(m); err != nil {
			return nil, err
		}
	}

	return all, nil
}

func (db *MessageDB) InsertMessage(m *core.Message) error {
	m.ID = newID()
	_, err := db.insert.Exec(m.ID, m.Subject, m.Body, m.OfficeID, m.CreatedBy, m.TsCreated)
	return err
}

func (db *MessageDB) MarkMessageRead(id, readerKey string) error {

	if _, err := db.GetMessage(id); err != nil {
		return err
	}

	// already-read is not an error
	rows, err := db.readers.Query(id)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return err
		}
		if key == readerKey {
			return nil
		}
	}

	_, err = db.insertRead.Exec(id, readerKey)
	return err
}
