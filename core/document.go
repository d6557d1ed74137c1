package core

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// Participants are the per-document role memberships, distinct from
// global user roles. The four lists are disjoint by convention only.
type Participants struct {
	Editors   []string
	Reviewers []string
	Approvers []string
	Viewers   []string
}

// ACL carries read/write uid lists. No transition consults it yet; it is
// stored for forward extension.
type ACL struct {
	Read  []string
	Write []string
}

type Document struct {
	ID               string
	Title            string
	Content          string // lightweight text documents, Markdown
	OwnerUID         string
	DepartmentID     string
	Status           Status
	CurrentVersionID string // weak reference to the latest version
	Participants     Participants
	ACL              ACL
	TsCreated        int64
	TsUpdated        int64
}

// DocumentFilter narrows GetDocuments. Zero values mean "any".
type DocumentFilter struct {
	Status        Status
	DepartmentID  string
	DepartmentIDs []string // office scoping, ORed with DepartmentID
	OwnerUID      string
	Query         string // substring match on title and content
	Limit         int
	Offset        int
}

type DocumentDB interface {
	GetDocument(id string) (*Document, error)
	GetDocuments(filter DocumentFilter) ([]*Document, error) // newest first
	InsertDocument(d *Document, w *Workflow) error           // assigns ids, atomic pair
	UpdateDocument(d *Document) error
	DeleteDocument(id string) error // cascades versions, workflow, tasks, comments
}

// CreateDocument creates a document in DRAFT together with its workflow
// record. No document exists without a paired workflow.
func (c *CoreDB) CreateDocument(actor *User, title, content, departmentID string, participants Participants) (*Document, error) {

	if actor == nil {
		return nil, ErrUnauthorized
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, Validationf("missing_title", "title is required")
	}

	var now = time.Now().Unix()

	var doc = &Document{
		Title:        title,
		Content:      content,
		OwnerUID:     actor.ID,
		DepartmentID: departmentID,
		Status:       StatusDraft,
		Participants: participants,
		TsCreated:    now,
		TsUpdated:    now,
	}

	var wf = &Workflow{
		State: WFDraft,
		Assignees: Assignees{
			Review:  participants.Reviewers,
			Sign:    participants.Approvers,
			Approve: participants.Approvers,
		},
		TsCreated: now,
	}

	if err := c.DocumentDB.InsertDocument(doc, wf); err != nil {
		return nil, err
	}

	return doc, nil
}

// EditDocument changes title and/or content. Nil arguments leave the
// field untouched. Permitted only while the status is editable.
func (c *CoreDB) EditDocument(actor *User, docID string, title, content *string) (*Document, error) {

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return nil, err
	}

	if !CanEdit(doc, actor) {
		return nil, ErrUnauthorized
	}

	if !doc.Status.Editable() {
		return nil, Conflictf("not_editable", "document is %s, editing requires DRAFT or REJECTED", doc.Status)
	}

	if title != nil {
		var t = strings.TrimSpace(*title)
		if t == "" {
			return nil, Validationf("missing_title", "title is required")
		}
		doc.Title = t
	}
	if content != nil {
		doc.Content = *content
	}
	doc.TsUpdated = time.Now().Unix()

	if err := c.DocumentDB.UpdateDocument(doc); err != nil {
		return nil, err
	}

	return doc, nil
}

// SetParticipants replaces the participant lists and keeps the workflow
// assignees in step. Already-open tasks are untouched; new assignees get
// tasks when the next stage opens.
func (c *CoreDB) SetParticipants(actor *User, docID string, p Participants) (*Document, error) {

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return nil, err
	}

	if actor == nil || (!actor.IsAdmin() && actor.ID != doc.OwnerUID) {
		return nil, ErrUnauthorized
	}

	doc.Participants = p
	doc.TsUpdated = time.Now().Unix()

	if err := c.DocumentDB.UpdateDocument(doc); err != nil {
		return nil, err
	}

	var a = Assignees{
		Review:  p.Reviewers,
		Sign:    p.Approvers,
		Approve: p.Approvers,
	}
	if err := c.WorkflowDB.UpdateAssignees(docID, a); err != nil {
		return nil, err
	}

	return doc, nil
}

// DeleteDocument removes a document with its versions, workflow, tasks
// and comments. Stored version files are deleted best-effort.
func (c *CoreDB) DeleteDocument(actor *User, docID string) error {

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return err
	}

	if actor == nil || (!actor.IsAdmin() && actor.ID != doc.OwnerUID) {
		return ErrUnauthorized
	}

	versions, err := c.VersionDB.GetVersions(docID)
	if err != nil {
		return err
	}

	if err := c.DocumentDB.DeleteDocument(docID); err != nil {
		return err
	}

	for _, v := range versions {
		if err := c.Uploads.Delete(v.StoragePath); err != nil {
			c.Logger.Warn("could not delete version file",
				zap.String("path", v.StoragePath), zap.Error(err))
		}
	}

	return nil
}
