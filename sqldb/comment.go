package sqldb

import (
	"database/sql"

	"github.com/ephraimraxy/docflow/core"
)

type CommentDB struct {
	*sql.DB
	byDoc  *sql.Stmt
	insert *sql.Stmt
}

func NewCommentDB(db *sql.DB) *CommentDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS comment (
			id varchar(36) PRIMARY KEY,
			docId varchar(36) NOT NULL,
			authorUid varchar(36) NOT NULL,
			text text NOT NULL,
			tsCreated bigint NOT NULL
		);
		CREATE INDEX IF NOT EXISTS comment_docId_idx ON comment(docId);`)

	var commentDB = &CommentDB{}
	commentDB.DB = db
	commentDB.byDoc = mustPrepare(db, "SELECT id, docId, authorUid, text, tsCreated FROM comment WHERE docId = ? ORDER BY tsCreated, id")
	commentDB.insert = mustPrepare(db, "INSERT INTO comment (id, docId, authorUid, text, tsCreated) VALUES (?, ?, ?, ?, ?)")
	return commentDB
}

func (db *CommentDB) GetComments(docID string) ([]*core.Comment, error) {

	rows, err := db.byDoc.Query(docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []*core.Comment{}
	for rows.Next() {
		var cm = &core.Comment{}
		if err := rows.Scan(&cm.ID, &cm.DocID, &cm.AuthorUID, &cm.Text, &cm.TsCreated); err != nil {
			return nil, err
		}
		all = append(all, cm)
	}

	return all, nil
}

func (db *CommentDB) InsertComment(cm *core.Comment) error {
	cm.ID = newID()
	_, err := db.insert.Exec(cm.ID, cm.DocID, cm.AuthorUID, cm.Text, cm.TsCreated)
	return err
}
