package sqldb

import (
	"database/sql"
	"strings"

	"github.com/ephraimraxy/docflow/core"
)

func cleanEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type UserDB struct {
	*sql.DB
	get         *sql.Stmt
	getByEmail  *sql.Stmt
	getAll      *sql.Stmt
	insert      *sql.Stmt
	update      *sql.Stmt
	setPassword *sql.Stmt
	credentials *sql.Stmt
}

func NewUserDB(db *sql.DB) *UserDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS usr (
			id varchar(36) PRIMARY KEY,
			email varchar(128) NOT NULL,
			firstName varchar(64) NOT NULL,
			lastName varchar(64) NOT NULL,
			roles varchar(128) NOT NULL,
			officeId varchar(36) NOT NULL,
			password varchar(64) NOT NULL,
			tsCreated bigint NOT NULL,
			UNIQUE (email)
		);`)

	var scanCols = "id, email, firstName, lastName, roles, officeId, tsCreated"

	var userDB = &UserDB{}
	userDB.DB = db
	userDB.get = mustPrepare(db, "SELECT "+scanCols+" FROM usr WHERE id = ? LIMIT 1")
	userDB.getByEmail = mustPrepare(db, "SELECT "+scanCols+" FROM usr WHERE email = ? LIMIT 1")
	userDB.getAll = mustPrepare(db, "SELECT "+scanCols+" FROM usr ORDER BY email LIMIT ? OFFSET ?")
	// empty password field is safe because no bcrypt hash equals it
	userDB.insert = mustPrepare(db, "INSERT INTO usr (id, email, firstName, lastName, roles, officeId, password, tsCreated) VALUES (?, ?, ?, ?, ?, ?, '', ?)")
	userDB.update = mustPrepare(db, "UPDATE usr SET email = ?, firstName = ?, lastName = ?, roles = ?, officeId = ? WHERE id = ?")
	userDB.setPassword = mustPrepare(db, "UPDATE usr SET password = ? WHERE id = ?")
	userDB.credentials = mustPrepare(db, "SELECT id, password FROM usr WHERE email = ? LIMIT 1")
	return userDB
}

func scanUser(scan func(...interface{}) error) (*core.User, error) {
	var u = &core.User{}
	var roles string
	var err = scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &roles, &u.OfficeID, &u.TsCreated)
	if err != nil {
		return nil, err
	}
	u.Roles = core.ParseRoles(roles)
	return u, nil
}

func (db *UserDB) GetUser(id string) (*core.User, error) {
	u, err := scanUser(db.get.QueryRow(id).Scan)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("user %s not found", id)
	}
	return u, err
}

func (db *UserDB) GetUserByEmail(email string) (*core.User, error) {
	u, err := scanUser(db.getByEmail.QueryRow(cleanEmail(email)).Scan)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("user %s not found", email)
	}
	return u, err
}

func (db *UserDB) GetAllUsers(limit, offset int) ([]*core.User, error) {

	if limit <= 0 {
		limit = 100
	}

	rows, err := db.getAll.Query(limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []*core.User{}
	for rows.Next() {
		u, err := scanUser(rows.Scan)
		if err != nil {
			return nil, err
		}
		all = append(all, u)
	}

	return all, nil
}

func (db *UserDB) InsertUser(u *core.User) error {
	u.ID = newID()
	u.Email = cleanEmail(u.Email)
	_, err := db.insert.Exec(u.ID, u.Email, u.FirstName, u.LastName, u.Roles.String(), u.OfficeID, u.TsCreated)
	return err
}

// UpdateUser does not check RowsAffected: MySQL counts changed rows, not
// matched rows, so re-saving identical values would read as not found.
// Callers load the user before updating it.
func (db *UserDB) UpdateUser(u *core.User) error {
	_, err := db.update.Exec(cleanEmail(u.Email), u.FirstName, u.LastName, u.Roles.String(), u.OfficeID, u.ID)
	return err
}

func (db *UserDB) SetPassword(id string, hash string) error {
	res, err := db.setPassword.Exec(hash, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NotFoundf("user %s not found", id)
	}
	return nil
}

func (db *UserDB) Credentials(email string) (string, string, error) {
	var uid, hash string
	var err = db.credentials.QueryRow(cleanEmail(email)).Scan(&uid, &hash)
	if err == sql.ErrNoRows {
		return "", "", core.NotFoundf("user %s not found", email)
	}
	return uid, hash, err
}
