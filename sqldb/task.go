package sqldb

import (
	"database/sql"
	"time"

	"github.com/ephraimraxy/docflow/core"
)

type TaskDB struct {
	*sql.DB
	get      *sql.Stmt
	byUser   *sql.Stmt
	byDoc    *sql.Stmt
	insert   *sql.Stmt
	update   *sql.Stmt
	complete *sql.Stmt
	cancel   *sql.Stmt
}

func NewTaskDB(db *sql.DB) *TaskDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS task (
			id varchar(36) PRIMARY KEY,
			type varchar(16) NOT NULL,
			docId varchar(36) NOT NULL,
			workflowId varchar(36) NOT NULL,
			state varchar(16) NOT NULL,
			assignedTo varchar(36) NOT NULL,
			notes text NOT NULL,
			tsCreated bigint NOT NULL,
			tsDone bigint NOT NULL
		);
		CREATE INDEX IF NOT EXISTS task_assignedTo_idx ON task(assignedTo);
		CREATE INDEX IF NOT EXISTS task_docId_idx ON task(docId);`)

	var scanCols = "id, type, docId, workflowId, state, assignedTo, notes, tsCreated, tsDone"

	var taskDB = &TaskDB{}
	taskDB.DB = db
	taskDB.get = mustPrepare(db, "SELECT "+scanCols+" FROM task WHERE id = ? LIMIT 1")
	taskDB.byUser = mustPrepare(db, "SELECT "+scanCols+" FROM task WHERE assignedTo = ? AND (? = '' OR state = ?) ORDER BY tsCreated DESC, id DESC")
	taskDB.byDoc = mustPrepare(db, "SELECT "+scanCols+" FROM task WHERE docId = ? ORDER BY tsCreated DESC, id DESC")
	taskDB.insert = mustPrepare(db, "INSERT INTO task ("+scanCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)")
	taskDB.update = mustPrepare(db, "UPDATE task SET state = ?, notes = ?, tsDone = ? WHERE id = ?")
	taskDB.complete = mustPrepare(db, "UPDATE task SET state = 'DONE', notes = ?, tsDone = ? WHERE docId = ? AND assignedTo = ? AND state = 'OPEN'")
	taskDB.cancel = mustPrepare(db, "UPDATE task SET state = 'CANCELLED', tsDone = ? WHERE docId = ? AND state = 'OPEN'")
	return taskDB
}

func scanTask(scan func(...interface{}) error) (*core.Task, error) {
	var t = &core.Task{}
	var err = scan(&t.ID, &t.Type, &t.DocID, &t.WorkflowID, &t.State, &t.AssignedTo, &t.Notes, &t.TsCreated, &t.TsDone)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (db *TaskDB) GetTask(id string) (*core.Task, error) {
	t, err := scanTask(db.get.QueryRow(id).Scan)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("task %s not found", id)
	}
	return t, err
}

func collectTasks(rows *sql.Rows) ([]*core.Task, error) {
	defer rows.Close()
	var all = []*core.Task{}
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		all = append(all, t)
	}
	return all, nil
}

func (db *TaskDB) GetTasks(uid string, state core.TaskState) ([]*core.Task, error) {
	rows, err := db.byUser.Query(uid, string(state), string(state))
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (db *TaskDB) GetDocumentTasks(docID string) ([]*core.Task, error) {
	rows, err := db.byDoc.Query(docID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (db *TaskDB) InsertTasks(tasks []*core.Task) error {

	if len(tasks) == 0 {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	for _, t := range tasks {
		t.ID = newID()
		_, err := tx.Stmt(db.insert).Exec(t.ID, string(t.Type), t.DocID, t.WorkflowID, string(t.State), t.AssignedTo, t.Notes, t.TsCreated, t.TsDone)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (db *TaskDB) UpdateTask(t *core.Task) error {
	res, err := db.update.Exec(string(t.State), t.Notes, t.TsDone, t.ID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NotFoundf("task %s not found", t.ID)
	}
	return nil
}

func (db *TaskDB) CompleteTasks(docID, uid, notes string) (int, error) {
	res, err := db.complete.Exec(notes, time.Now().Unix(), docID, uid)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (db *TaskDB) CancelOpenTasks(docID string) (int, error) {
	res, err := db.cancel.Exec(time.Now().Unix(), docID)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}
