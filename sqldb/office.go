package sqldb

import (
	"database/sql"

	"github.com/ephraimraxy/docflow/core"
)

type OfficeDB struct {
	*sql.DB
	get           *sql.Stmt
	getByCode     *sql.Stmt
	getAll        *sql.Stmt
	insert        *sql.Stmt
	insertSession *sql.Stmt
	getSession    *sql.Stmt
	deactivate    *sql.Stmt
	deleteStale   *sql.Stmt
}

func NewOfficeDB(db *sql.DB) *OfficeDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS office (
			id varchar(36) PRIMARY KEY,
			officeId varchar(64) NOT NULL,
			name varchar(128) NOT NULL,
			officeCode varchar(64) NOT NULL,
			password varchar(64) NOT NULL,
			tsCreated bigint NOT NULL,
			UNIQUE (officeCode)
		);
		CREATE TABLE IF NOT EXISTS office_session (
			token varchar(36) PRIMARY KEY,
			officeId varchar(36) NOT NULL,
			issuedAt bigint NOT NULL,
			expiresAt bigint NOT NULL,
			isActive int NOT NULL
		);
		CREATE INDEX IF NOT EXISTS office_session_expiry_idx ON office_session(expiresAt);`)

	var officeDB = &OfficeDB{}
	officeDB.DB = db
	officeDB.get = mustPrepare(db, "SELECT id, officeId, name, officeCode, password, tsCreated FROM office WHERE id = ? LIMIT 1")
	officeDB.getByCode = mustPrepare(db, "SELECT id, officeId, name, officeCode, password, tsCreated FROM office WHERE officeCode = ? LIMIT 1")
	officeDB.getAll = mustPrepare(db, "SELECT id, officeId, name, officeCode, password, tsCreated FROM office ORDER BY name LIMIT ? OFFSET ?")
	officeDB.insert = mustPrepare(db, "INSERT INTO office (id, officeId, name, officeCode, password, tsCreated) VALUES (?, ?, ?, ?, ?, ?)")
	officeDB.insertSession = mustPrepare(db, "INSERT INTO office_session (token, officeId, issuedAt, expiresAt, isActive) VALUES (?, ?, ?, ?, ?)")
	officeDB.getSession = mustPrepare(db, "SELECT token, officeId, issuedAt, expiresAt, isActive FROM office_session WHERE token = ? LIMIT 1")
	officeDB.deactivate = mustPrepare(db, "UPDATE office_session SET isActive = 0 WHERE token = ?")
	officeDB.deleteStale = mustPrepare(db, "DELETE FROM office_session WHERE isActive = 0 OR expiresAt <= ?")
	return officeDB
}

func scanOffice(scan func(...interface{}) error) (*core.Office, error) {
	var o = &core.Office{}
	var err = scan(&o.ID, &o.OfficeID, &o.Name, &o.OfficeCode, &o.PasswordHash, &o.TsCreated)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (db *OfficeDB) GetOffice(id string) (*core.Office, error) {
	o, err := scanOffice(db.get.QueryRow(id).Scan)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("office %s not found", id)
	}
	return o, err
}

func (db *OfficeDB) GetOfficeByCode(code string) (*core.Office, error) {
	o, err := scanOffice(db.getByCode.QueryRow(code).Scan)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("office not found")
	}
	return o, err
}

func (db *OfficeDB) GetAllOffices(limit, offset int) ([]*core.Office, error) {

	if limit <= 0 {
		limit = 100
	}

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []*core.Office{}
	for rows.Next() {
		o, err := scanOffice(rows.Scan)
		if err != nil {
			return nil, err
		}
		all = append(all, o)
	}

	return all, nil
}

func (db *OfficeDB) InsertOffice(o *core.Office) error {
	o.ID = newID()
	_, err := db.insert.Exec(o.ID, o.OfficeID, o.Name, o.OfficeCode, o.PasswordHash, o.TsCreated)
	return err
}

func (db *OfficeDB) InsertSession(s *core.OfficeSession) error {
	var active = 0
	if s.IsActive {
		active = 1
	}
	_, err := db.insertSession.Exec(s.Token, s.OfficeID, s.IssuedAt, s.ExpiresAt, active)
	return err
}

func (db *OfficeDB) GetSession(token string) (*core.OfficeSession, error) {
	var s = &core.OfficeSession{}
	var active int
	var err = db.getSession.QueryRow(token).Scan(&s.Token, &s.OfficeID, &s.IssuedAt, &s.ExpiresAt, &active)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("session not found")
	}
	if err != nil {
		return nil, err
	}
	s.IsActive = active != 0
	return s, nil
}

func (db *OfficeDB) DeactivateSession(token string) error {
	res, err := db.deactivate.Exec(token)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NotFoundf("session not found")
	}
	return nil
}

func (db *OfficeDB) DeleteStaleSessions(now int64) (int, error) {
	res, err := db.deleteStale.Exec(now)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
