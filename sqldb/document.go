package sqldb

import (
	"database/sql"
	"strings"

	"github.com/ephraimraxy/docflow/core"
)

type DocumentDB struct {
	*sql.DB
	get          *sql.Stmt
	insert       *sql.Stmt
	update       *sql.Stmt
	delete       *sql.Stmt
	participants *sql.Stmt
	clearParts   *sql.Stmt
	insertPart   *sql.Stmt
	acl          *sql.Stmt
	clearACL     *sql.Stmt
	insertACL    *sql.Stmt
}

func NewDocumentDB(db *sql.DB) *DocumentDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS document (
			id varchar(36) PRIMARY KEY,
			title varchar(256) NOT NULL,
			content text NOT NULL,
			ownerUid varchar(36) NOT NULL,
			departmentId varchar(36) NOT NULL,
			status varchar(32) NOT NULL,
			currentVersionId varchar(36) NOT NULL,
			tsCreated bigint NOT NULL,
			tsUpdated bigint NOT NULL
		);
		CREATE TABLE IF NOT EXISTS participant (
			docId varchar(36) NOT NULL,
			role varchar(16) NOT NULL,
			uid varchar(36) NOT NULL,
			PRIMARY KEY (docId, role, uid)
		);
		CREATE TABLE IF NOT EXISTS acl (
			docId varchar(36) NOT NULL,
			mode varchar(8) NOT NULL,
			uid varchar(36) NOT NULL,
			PRIMARY KEY (docId, mode, uid)
		);`)

	var documentDB = &DocumentDB{}
	documentDB.DB = db
	documentDB.get = mustPrepare(db, "SELECT id, title, content, ownerUid, departmentId, status, currentVersionId, tsCreated, tsUpdated FROM document WHERE id = ? LIMIT 1")
	documentDB.insert = mustPrepare(db, "INSERT INTO document (id, title, content, ownerUid, departmentId, status, currentVersionId, tsCreated, tsUpdated) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	documentDB.update = mustPrepare(db, "UPDATE document SET title = ?, content = ?, departmentId = ?, currentVersionId = ?, tsUpdated = ? WHERE id = ?")
	documentDB.delete = mustPrepare(db, "DELETE FROM document WHERE id = ?")
	documentDB.participants = mustPrepare(db, "SELECT role, uid FROM participant WHERE docId = ?")
	documentDB.clearParts = mustPrepare(db, "DELETE FROM participant WHERE docId = ?")
	documentDB.insertPart = mustPrepare(db, "INSERT INTO participant (docId, role, uid) VALUES (?, ?, ?)")
	documentDB.acl = mustPrepare(db, "SELECT mode, uid FROM acl WHERE docId = ?")
	documentDB.clearACL = mustPrepare(db, "DELETE FROM acl WHERE docId = ?")
	documentDB.insertACL = mustPrepare(db, "INSERT INTO acl (docId, mode, uid) VALUES (?, ?, ?)")
	return documentDB
}

func (db *DocumentDB) scanDocument(row *sql.Row) (*core.Document, error) {
	var d = &core.Document{}
	var err = row.Scan(&d.ID, &d.Title, &d.Content, &d.OwnerUID, &d.DepartmentID, &d.Status, &d.CurrentVersionID, &d.TsCreated, &d.TsUpdated)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("document not found")
	}
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (db *DocumentDB) loadLists(d *core.Document) error {

	rows, err := db.participants.Query(d.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var role, uid string
		if err := rows.Scan(&role, &uid); err != nil {
			return err
		}
		switch role {
		case "editor":
			d.Participants.Editors = append(d.Participants.Editors, uid)
		case "reviewer":
			d.Participants.Reviewers = append(d.Participants.Reviewers, uid)
		case "approver":
			d.Participants.Approvers = append(d.Participants.Approvers, uid)
		case "viewer":
			d.Participants.Viewers = append(d.Participants.Viewers, uid)
		}
	}

	aclRows, err := db.acl.Query(d.ID)
	if err != nil {
		return err
	}
	defer aclRows.Close()

	for aclRows.Next() {
		var mode, uid string
		if err := aclRows.Scan(&mode, &uid); err != nil {
			return err
		}
		switch mode {
		case "read":
			d.ACL.Read = append(d.ACL.Read, uid)
		case "write":
			d.ACL.Write = append(d.ACL.Write, uid)
		}
	}

	return nil
}

func (db *DocumentDB) GetDocument(id string) (*core.Document, error) {
	d, err := db.scanDocument(db.get.QueryRow(id))
	if err != nil {
		return nil, err
	}
	return d, db.loadLists(d)
}

func (db *DocumentDB) GetDocuments(f core.DocumentFilter) ([]*core.Document, error) {

	var where []string
	var args []interface{}

	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.OwnerUID != "" {
		where = append(where, "ownerUid = ?")
		args = append(args, f.OwnerUID)
	}
	if f.DepartmentID != "" {
		where = append(where, "departmentId = ?")
		args = append(args, f.DepartmentID)
	}
	if len(f.DepartmentIDs) > 0 {
		var placeholders = strings.TrimSuffix(strings.Repeat("?, ", len(f.DepartmentIDs)), ", ")
		where = append(where, "departmentId IN ("+placeholders+")")
		for _, id := range f.DepartmentIDs {
			args = append(args, id)
		}
	}
	if f.Query != "" {
		where = append(where, "(title LIKE ? OR content LIKE ?)")
		var pattern = "%" + f.Query + "%"
		args = append(args, pattern, pattern)
	}

	var query = "SELECT id, title, content, ownerUid, departmentId, status, currentVersionId, tsCreated, tsUpdated FROM document"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY tsCreated DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []*core.Document{}
	for rows.Next() {
		var d = &core.Document{}
		if err := rows.Scan(&d.ID, &d.Title, &d.Content, &d.OwnerUID, &d.DepartmentID, &d.Status, &d.CurrentVersionID, &d.TsCreated, &d.TsUpdated); err != nil {
			return nil, err
		}
		all = append(all, d)
	}

	for _, d := range all {
		if err := db.loadLists(d); err != nil {
			return nil, err
		}
	}

	return all, nil
}

func participantRows(d *core.Document) [][2]string {
	var rows [][2]string
	for _, uid := range d.Participants.Editors {
		rows = append(rows, [2]string{"editor", uid})
	}
	for _, uid := range d.Participants.Reviewers {
		rows = append(rows, [2]string{"reviewer", uid})
	}
	for _, uid := range d.Participants.Approvers {
		rows = append(rows, [2]string{"approver", uid})
	}
	for _, uid := range d.Participants.Viewers {
		rows = append(rows, [2]string{"viewer", uid})
	}
	return rows
}

func aclRows(d *core.Document) [][2]string {
	var rows [][2]string
	for _, uid := range d.ACL.Read {
		rows = append(rows, [2]string{"read", uid})
	}
	for _, uid := range d.ACL.Write {
		rows = append(rows, [2]string{"write", uid})
	}
	return rows
}

func (db *DocumentDB) writeLists(tx *sql.Tx, d *core.Document) error {

	if _, err := tx.Stmt(db.clearParts).Exec(d.ID); err != nil {
		return err
	}
	for _, row := range participantRows(d) {
		if _, err := tx.Stmt(db.insertPart).Exec(d.ID, row[0], row[1]); err != nil {
			return err
		}
	}

	if _, err := tx.Stmt(db.clearACL).Exec(d.ID); err != nil {
		return err
	}
	for _, row := range aclRows(d) {
		if _, err := tx.Stmt(db.insertACL).Exec(d.ID, row[0], row[1]); err != nil {
			return err
		}
	}

	return nil
}

// InsertDocument creates the document and its workflow in one
// transaction. Both ids are assigned here.
func (db *DocumentDB) InsertDocument(d *core.Document, w *core.Workflow) error {

	d.ID = newID()
	w.ID = newID()
	w.DocID = d.ID

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	_, err = tx.Stmt(db.insert).Exec(d.ID, d.Title, d.Content, d.OwnerUID, d.DepartmentID, string(d.Status), d.CurrentVersionID, d.TsCreated, d.TsUpdated)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := db.writeLists(tx, d); err != nil {
		tx.Rollback()
		return err
	}

	_, err = tx.Exec("INSERT INTO workflow (id, docId, state, tsCreated) VALUES (?, ?, ?, ?)", w.ID, w.DocID, string(w.State), w.TsCreated)
	if err != nil {
		tx.Rollback()
		return err
	}

	for _, row := range assigneeRows(w.Assignees) {
		_, err = tx.Exec("INSERT INTO assignee (docId, stage, uid) VALUES (?, ?, ?)", w.DocID, row[0], row[1])
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (db *DocumentDB) UpdateDocument(d *core.Document) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	// RowsAffected is not checked here. MySQL counts changed rows, not
	// matched rows, so a no-op edit would look like a missing document.
	// Callers load the document before updating it.
	_, err = tx.Stmt(db.update).Exec(d.Title, d.Content, d.DepartmentID, d.CurrentVersionID, d.TsUpdated, d.ID)
	if err != nil {
		tx.Rollback()
		return err
	}

	if err := db.writeLists(tx, d); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// DeleteDocument cascades over versions, workflow, history, assignees,
// tasks and comments.
func (db *DocumentDB) DeleteDocument(id string) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	res, err := tx.Stmt(db.delete).Exec(id)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		tx.Rollback()
		return core.NotFoundf("document %s not found", id)
	}

	for _, query := range []string{
		"DELETE FROM participant WHERE docId = ?",
		"DELETE FROM acl WHERE docId = ?",
		"DELETE FROM version WHERE docId = ?",
		"DELETE FROM workflow WHERE docId = ?",
		"DELETE FROM workflow_history WHERE docId = ?",
		"DELETE FROM assignee WHERE docId = ?",
		"DELETE FROM task WHERE docId = ?",
		"DELETE FROM comment WHERE docId = ?",
	} {
		if _, err := tx.Exec(query, id); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}
