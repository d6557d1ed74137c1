package sqldb

import (
	"database/sql"

	"github.com/ephraimraxy/docflow/core"
)

type VersionDB struct {
	*sql.DB
	get        *sql.Stmt
	getAll     *sql.Stmt
	latest     *sql.Stmt
	maxNo      *sql.Stmt
	insert     *sql.Stmt
	setCurrent *sql.Stmt
}

func NewVersionDB(db *sql.DB) *VersionDB {

	db.Exec(`
		CREATE TABLE IF NOT EXISTS version (
			id varchar(36) PRIMARY KEY,
			docId varchar(36) NOT NULL,
			versionNo int NOT NULL,
			storagePath varchar(512) NOT NULL,
			sha256 varchar(64) NOT NULL,
			createdBy varchar(36) NOT NULL,
			fileName varchar(256) NOT NULL,
			fileSize bigint NOT NULL,
			mimeType varchar(128) NOT NULL,
			changeSummary text NOT NULL,
			tsCreated bigint NOT NULL,
			UNIQUE (docId, versionNo)
		);`)

	var scanCols = "id, docId, versionNo, storagePath, sha256, createdBy, fileName, fileSize, mimeType, changeSummary, tsCreated"

	var versionDB = &VersionDB{}
	versionDB.DB = db
	versionDB.get = mustPrepare(db, "SELECT "+scanCols+" FROM version WHERE id = ? LIMIT 1")
	versionDB.getAll = mustPrepare(db, "SELECT "+scanCols+" FROM version WHERE docId = ? ORDER BY tsCreated DESC, versionNo DESC")
	versionDB.latest = mustPrepare(db, "SELECT "+scanCols+" FROM version WHERE docId = ? ORDER BY tsCreated DESC, versionNo DESC LIMIT 1")
	versionDB.maxNo = mustPrepare(db, "SELECT COALESCE(MAX(versionNo), 0) FROM version WHERE docId = ?")
	versionDB.insert = mustPrepare(db, "INSERT INTO version ("+scanCols+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
	versionDB.setCurrent = mustPrepare(db, "UPDATE document SET currentVersionId = ?, tsUpdated = ? WHERE id = ?")
	return versionDB
}

func scanVersion(scan func(...interface{}) error) (*core.Version, error) {
	var v = &core.Version{}
	var err = scan(&v.ID, &v.DocID, &v.VersionNo, &v.StoragePath, &v.SHA256, &v.CreatedBy, &v.FileName, &v.FileSize, &v.MimeType, &v.ChangeSummary, &v.TsCreated)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (db *VersionDB) GetVersion(id string) (*core.Version, error) {
	v, err := scanVersion(db.get.QueryRow(id).Scan)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("version %s not found", id)
	}
	return v, err
}

func (db *VersionDB) GetVersions(docID string) ([]*core.Version, error) {

	rows, err := db.getAll.Query(docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all = []*core.Version{}
	for rows.Next() {
		v, err := scanVersion(rows.Scan)
		if err != nil {
			return nil, err
		}
		all = append(all, v)
	}

	return all, nil
}

func (db *VersionDB) GetLatestVersion(docID string) (*core.Version, error) {
	v, err := scanVersion(db.latest.QueryRow(docID).Scan)
	if err == sql.ErrNoRows {
		return nil, core.NotFoundf("document %s has no versions", docID)
	}
	return v, err
}

// InsertVersion assigns the next version number inside the transaction
// that writes the row, so two concurrent uploads can not both read the
// same stale maximum. The document's current version pointer moves in
// the same transaction.
func (db *VersionDB) InsertVersion(v *core.Version) error {

	v.ID = newID()

	tx, err := db.Begin()
	if err != nil {
		return err
	}

	var max int
	if err := tx.Stmt(db.maxNo).QueryRow(v.DocID).Scan(&max); err != nil {
		tx.Rollback()
		return err
	}
	v.VersionNo = max + 1

	_, err = tx.Stmt(db.insert).Exec(v.ID, v.DocID, v.VersionNo, v.StoragePath, v.SHA256, v.CreatedBy, v.FileName, v.FileSize, v.MimeType, v.ChangeSummary, v.TsCreated)
	if err != nil {
		tx.Rollback()
		return err
	}

	res, err := tx.Stmt(db.setCurrent).Exec(v.ID, v.TsCreated, v.DocID)
	if err != nil {
		tx.Rollback()
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		tx.Rollback()
		return core.NotFoundf("document %s not found", v.DocID)
	}

	return tx.Commit()
}
