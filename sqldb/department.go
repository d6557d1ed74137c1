package sqldb

import (
	"database/sql"

	"github.com/ephraimraxy/docflow/core"
)

type DepartmentDB struct {
	*sql.DB
	get      *sql.Stmt
	getAll   *sql.Stmt
	byOffice *sql.Stmt
	insert   *sql.Stmt
}

func NewDepartmentDB(db *sql.DB) *DepartmentDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS department (
			id varchar(36) PRIMARY KEY,
			name varchar(128) NOT NULL,
			officeId varchar(36) NOT NULL,
			tsCreated bigint NOT NULL
		);`)

	var departmentDB = &DepartmentDB{}
	departmentDB.DB = db
	departmentDB.get = mustPrepare(db, "SELECT id, name, officeId, tsCreated FROM department WHERE id = ? LIMIT 1")
	departmentDB.getAll = mustPrepare(db, "SELECT id, name, officeId, tsCreated FROM department ORDER BY name")
	departmentDB.byOffice = mustPrepare(db, "SELECT id, name, officeId, tsCreated FROM department WHERE officeId = ? ORDER BY name")
	departmentDB.insert = mustPrepare(db, "INSERT INTO department (id, name, officeId, tsCreated) VALUES (?, ?, ?, ?)")
	return departmentDB
}

func (db *DepartmentDB) GetDepartment(id string) (*core.Department, error) {
	var d = &core.Department{}
	var err = db.get.QueryRow(id).Scan(&d.ID, &d.Name, &d.OfficeID, &d.TsCreated)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("department %s not found", id)
	}
	return d, err
}

func (db *DepartmentDB) GetDepartments(officeID string) ([]*core.Department, error) {

	var rows *sql.Rows
	var err error
	if officeID == "" {
		rows, err = db.getAll.Query()
	} else {
		rows, err = db.byOffice.Query(officeID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []*core.Department{}
	for rows.Next() {
		var d = &core.Department{}
		if err := rows.Scan(&d.ID, &d.Name, &d.OfficeID, &d.TsCreated); err != nil {
			return nil, err
		}
		all = append(all, d)
	}

	return all, nil
}

func (db *DepartmentDB) InsertDepartment(d *core.Department) error {
	d.ID = newID()
	_, err := db.insert.Exec(d.ID, d.Name, d.OfficeID, d.TsCreated)
	return err
}
