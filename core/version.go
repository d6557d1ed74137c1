package core

import (
	"io"
	"strconv"
	"time"
)

// Version is one immutable file attachment of a document. The version
// number is assigned by the store inside the insert transaction, so
// concurrent uploads can not compute the same number from a stale read.
type Version struct {
	ID            string
	DocID         string
	VersionNo     int // monotonic per document, starting at 1
	StoragePath   string
	SHA256        string // recorded, never verified
	CreatedBy     string
	FileName      string
	FileSize      int64
	MimeType      string
	ChangeSummary string
	TsCreated     int64
}

// Label renders the major-integer version string, e.g. "2.0".
func (v *Version) Label() string {
	return strconv.Itoa(v.VersionNo) + ".0"
}

type VersionDB interface {
	GetVersion(id string) (*Version, error)
	GetVersions(docID string) ([]*Version, error)  // newest first
	GetLatestVersion(docID string) (*Version, error) // most recent TsCreated
	InsertVersion(v *Version) error // assigns ID and VersionNo, repoints the document
}

// AddVersion stores the uploaded file and records a new version. The
// document status is deliberately not checked, so a file can be
// re-uploaded after rejection. Calling it twice creates two versions.
func (c *CoreDB) AddVersion(actor *User, docID, fileName, mimeType, changeSummary string, src io.Reader) (*Version, error) {

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return nil, err
	}

	if !CanEdit(doc, actor) {
		return nil, ErrUnauthorized
	}

	saved, err := c.Uploads.Save(docID, fileName, src)
	if err != nil {
		return nil, err
	}

	var v = &Version{
		DocID:         docID,
		StoragePath:   saved.Path,
		SHA256:        saved.SHA256,
		CreatedBy:     actor.ID,
		FileName:      fileName,
		FileSize:      saved.Size,
		MimeType:      mimeType,
		ChangeSummary: changeSummary,
		TsCreated:     time.Now().Unix(),
	}

	if err := c.VersionDB.InsertVersion(v); err != nil {
		// the version row does not exist, remove the orphaned file
		_ = c.Uploads.Delete(saved.Path)
		return nil, err
	}

	return v, nil
}
