package sqldb

import (
	"database/sql"

	"github.com/ephraimraxy/docflow/core"
)

type WorkflowDB struct {
	*sql.DB
	get            *sql.Stmt
	assignees      *sql.Stmt
	clearAssignees *sql.Stmt
	insertAssignee *sql.Stmt
	history        *sql.Stmt
	countHistory   *sql.Stmt
	appendHistory  *sql.Stmt
	setState       *sql.Stmt
	setStatus      *sql.Stmt
}

func NewWorkflowDB(db *sql.DB) *WorkflowDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS workflow (
			id varchar(36) PRIMARY KEY,
			docId varchar(36) NOT NULL,
			state varchar(32) NOT NULL,
			tsCreated bigint NOT NULL,
			UNIQUE (docId)
		);
		CREATE TABLE IF NOT EXISTS assignee (
			docId varchar(36) NOT NULL,
			stage varchar(16) NOT NULL,
			uid varchar(36) NOT NULL,
			PRIMARY KEY (docId, stage, uid)
		);
		CREATE TABLE IF NOT EXISTS workflow_history (
			docId varchar(36) NOT NULL,
			position int NOT NULL,
			ts bigint NOT NULL,
			actorUid varchar(36) NOT NULL,
			action varchar(64) NOT NULL,
			meta text NOT NULL,
			PRIMARY KEY (docId, position)
		);`)

	var workflowDB = &WorkflowDB{}
	workflowDB.DB = db
	workflowDB.get = mustPrepare(db, "SELECT id, docId, state, tsCreated FROM workflow WHERE docId = ? LIMIT 1")
	workflowDB.assignees = mustPrepare(db, "SELECT stage, uid FROM assignee WHERE docId = ?")
	workflowDB.clearAssignees = mustPrepare(db, "DELETE FROM assignee WHERE docId = ?")
	workflowDB.insertAssignee = mustPrepare(db, "INSERT INTO assignee (docId, stage, uid) VALUES (?, ?, ?)")
	workflowDB.history = mustPrepare(db, "SELECT ts, actorUid, action, meta FROM workflow_history WHERE docId = ? ORDER BY position")
	workflowDB.countHistory = mustPrepare(db, "SELECT COUNT(*) FROM workflow_history WHERE docId = ?")
	workflowDB.appendHistory = mustPrepare(db, "INSERT INTO workflow_history (docId, position, ts, actorUid, action, meta) VALUES (?, ?, ?, ?, ?, ?)")
	workflowDB.setState = mustPrepare(db, "UPDATE workflow SET state = ? WHERE docId = ?")
	workflowDB.setStatus = mustPrepare(db, "UPDATE document SET status = ?, tsUpdated = ? WHERE id = ?")
	return workflowDB
}

func assigneeRows(a core.Assignees) [][2]string {
	var rows [][2]string
	for _, uid := range a.Review {
		rows = append(rows, [2]string{"review", uid})
	}
	for _, uid := range a.Sign {
		rows = append(rows, [2]string{"sign", uid})
	}
	for _, uid := range a.Approve {
		rows = append(rows, [2]string{"approve", uid})
	}
	return rows
}

func (db *WorkflowDB) GetWorkflow(docID string) (*core.Workflow, error) {

	var w = &core.Workflow{}
	var err = db.get.QueryRow(docID).Scan(&w.ID, &w.DocID, &w.State, &w.TsCreated)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("workflow for document %s not found", docID)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.assignees.Query(docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var stage, uid string
		if err := rows.Scan(&stage, &uid); err != nil {
			return nil, err
		}
		switch stage {
		case "review":
			w.Assignees.Review = append(w.Assignees.Review, uid)
		case "sign":
			w.Assignees.Sign = append(w.Assignees.Sign, uid)
		case "approve":
			w.Assignees.Approve = append(w.Assignees.Approve, uid)
		}
	}

	return w, nil
}

func (db *WorkflowDB) UpdateAssignees(docID string, a core.Assignees) error {

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	if _, err := tx.Stmt(db.clearAssignees).Exec(docID); err != nil {
		tx.Rollback()
		return err
	}

	for _, row := range assigneeRows(a) {
		if _, err := tx.Stmt(db.insertAssignee).Exec(docID, row[0], row[1]); err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (db *WorkflowDB) GetHistory(docID string) ([]core.HistoryEntry, error) {

	rows, err := db.history.Query(docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries = []core.HistoryEntry{}
	for rows.Next() {
		var e core.HistoryEntry
		var meta string
		if err := rows.Scan(&e.Ts, &e.ActorUID, &e.Action, &meta); err != nil {
			return nil, err
		}
		if e.Meta, err = decodeMeta(meta); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	return entries, nil
}

// ApplyTransition updates the document status, the workflow state and the
// history in one transaction, so a crash never leaves the pair apart.
func (db *WorkflowDB) ApplyTransition(docID string, status core.Status, state core.WFState, entry core.HistoryEntry) error {

	meta, err := encodeMeta(entry.Meta)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	res, err := tx.Stmt(db.setStatus).Exec(string(status), entry.Ts, docID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		tx.Rollback()
		return core.NotFoundf("document %s not found", docID)
	}

	res, err = tx.Stmt(db.setState).Exec(string(state), docID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		tx.Rollback()
		return core.NotFoundf("workflow for document %s not found", docID)
	}

	var position int
	if err := tx.Stmt(db.countHistory).QueryRow(docID).Scan(&position); err != nil {
		tx.Rollback()
		return err
	}

	if _, err := tx.Stmt(db.appendHistory).Exec(docID, position, entry.Ts, entry.ActorUID, entry.Action, meta); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}
