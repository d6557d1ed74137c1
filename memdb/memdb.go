// Package memdb backs the core store interfaces with in-process maps.
// It serves tests and development; sqldb is the production counterpart.
package memdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ephraimraxy/docflow/core"
	"github.com/google/uuid"
)

func nowUnix() int64 {
	return time.Now().Unix()
}

// DB implements every store interface of core.CoreDB. One mutex guards
// all maps, which also makes ApplyTransition and InsertVersion atomic.
type DB struct {
	mu sync.Mutex

	users         map[string]*core.User
	passwords     map[string]string // uid -> bcrypt hash
	documents     map[string]*core.Document
	versions      map[string]*core.Version
	workflows     map[string]*core.Workflow // keyed by doc id
	history       map[string][]core.HistoryEntry
	tasks         map[string]*core.Task
	audits        []*core.AuditLog
	comments      map[string]*core.Comment
	offices       map[string]*core.Office
	sessions      map[string]*core.OfficeSession
	messages      map[string]*core.Message
	notifications map[string]*core.Notification
	departments   map[string]*core.Department
}

func New() *DB {
	return &DB{
		users:         make(map[string]*core.User),
		passwords:     make(map[string]string),
		documents:     make(map[string]*core.Document),
		versions:      make(map[string]*core.Version),
		workflows:     make(map[string]*core.Workflow),
		history:       make(map[string][]core.HistoryEntry),
		tasks:         make(map[string]*core.Task),
		comments:      make(map[string]*core.Comment),
		offices:       make(map[string]*core.Office),
		sessions:      make(map[string]*core.OfficeSession),
		messages:      make(map[string]*core.Message),
		notifications: make(map[string]*core.Notification),
		departments:   make(map[string]*core.Department),
	}
}

// Wire populates every store field of a CoreDB with this DB.
func (db *DB) Wire(c *core.CoreDB) {
	c.DocumentDB = db
	c.VersionDB = db
	c.WorkflowDB = db
	c.TransitionDB = db
	c.TaskDB = db
	c.AuditDB = db
	c.UserDB = db
	c.CommentDB = db
	c.OfficeDB = db
	c.MessageDB = db
	c.NotificationDB = db
	c.DepartmentDB = db
}

// users

func (db *DB) GetUser(id string) (*core.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u, ok := db.users[id]
	if !ok {
		return nil, core.NotFoundf("user %s not found", id)
	}
	var copied = *u
	return &copied, nil
}

func (db *DB) GetUserByEmail(email string) (*core.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			var copied = *u
			return &copied, nil
		}
	}
	return nil, core.NotFoundf("user %s not found", email)
}

func (db *DB) GetAllUsers(limit, offset int) ([]*core.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all []*core.User
	for _, u := range db.users {
		var copied = *u
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	return window(all, limit, offset), nil
}

func (db *DB) InsertUser(u *core.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, existing := range db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return core.Validationf("email_taken", "email %s is taken", u.Email)
		}
	}
	u.ID = uuid.NewString()
	var copied = *u
	db.users[u.ID] = &copied
	return nil
}

func (db *DB) UpdateUser(u *core.User) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.users[u.ID]; !ok {
		return core.NotFoundf("user %s not found", u.ID)
	}
	var copied = *u
	db.users[u.ID] = &copied
	return nil
}

func (db *DB) SetPassword(id string, hash string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.users[id]; !ok {
		return core.NotFoundf("user %s not found", id)
	}
	db.passwords[id] = hash
	return nil
}

func (db *DB) Credentials(email string) (string, string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			return u.ID, db.passwords[u.ID], nil
		}
	}
	return "", "", core.NotFoundf("user %s not found", email)
}

// documents

func (db *DB) GetDocument(id string) (*core.Document, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	d, ok := db.documents[id]
	if !ok {
		return nil, core.NotFoundf("document %s not found", id)
	}
	var copied = *d
	return &copied, nil
}

func matches(d *core.Document, f core.DocumentFilter) bool {
	if f.Status != "" && d.Status != f.Status {
		return false
	}
	if f.OwnerUID != "" && d.OwnerUID != f.OwnerUID {
		return false
	}
	if f.DepartmentID != "" && d.DepartmentID != f.DepartmentID {
		return false
	}
	if len(f.DepartmentIDs) > 0 {
		var hit bool
		for _, id := range f.DepartmentIDs {
			if d.DepartmentID == id {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	if f.Query != "" {
		var q = strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(d.Title), q) && !strings.Contains(strings.ToLower(d.Content), q) {
			return false
		}
	}
	return true
}

func (db *DB) GetDocuments(f core.DocumentFilter) ([]*core.Document, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all []*core.Document
	for _, d := range db.documents {
		if matches(d, f) {
			var copied = *d
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TsCreated != all[j].TsCreated {
			return all[i].TsCreated > all[j].TsCreated
		}
		return all[i].ID > all[j].ID
	})
	return window(all, f.Limit, f.Offset), nil
}

func (db *DB) InsertDocument(d *core.Document, w *core.Workflow) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	d.ID = uuid.NewString()
	w.ID = uuid.NewString()
	w.DocID = d.ID
	var dc = *d
	var wc = *w
	db.documents[d.ID] = &dc
	db.workflows[d.ID] = &wc
	db.history[d.ID] = []core.HistoryEntry{}
	return nil
}

func (db *DB) UpdateDocument(d *core.Document) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.documents[d.ID]; !ok {
		return core.NotFoundf("document %s not found", d.ID)
	}
	var copied = *d
	db.documents[d.ID] = &copied
	return nil
}

func (db *DB) DeleteDocument(id string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.documents[id]; !ok {
		return core.NotFoundf("document %s not found", id)
	}
	delete(db.documents, id)
	delete(db.workflows, id)
	delete(db.history, id)
	for vid, v := range db.versions {
		if v.DocID == id {
			delete(db.versions, vid)
		}
	}
	for tid, t := range db.tasks {
		if t.DocID == id {
			delete(db.tasks, tid)
		}
	}
	for cid, cm := range db.comments {
		if cm.DocID == id {
			delete(db.comments, cid)
		}
	}
	return nil
}

// versions

func (db *DB) GetVersion(id string) (*core.Version, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	v, ok := db.versions[id]
	if !ok {
		return nil, core.NotFoundf("version %s not found", id)
	}
	var copied = *v
	return &copied, nil
}

func (db *DB) docVersions(docID string) []*core.Version {
	var all []*core.Version
	for _, v := range db.versions {
		if v.DocID == docID {
			var copied = *v
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TsCreated != all[j].TsCreated {
			return all[i].TsCreated > all[j].TsCreated
		}
		return all[i].VersionNo > all[j].VersionNo
	})
	return all
}

func (db *DB) GetVersions(docID string) ([]*core.Version, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.docVersions(docID), nil
}

func (db *DB) GetLatestVersion(docID string) (*core.Version, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all = db.docVersions(docID)
	if len(all) == 0 {
		return nil, core.NotFoundf("document %s has no versions", docID)
	}
	return all[0], nil
}

func (db *DB) InsertVersion(v *core.Version) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	doc, ok := db.documents[v.DocID]
	if !ok {
		return core.NotFoundf("document %s not found", v.DocID)
	}
	var max int
	for _, existing := range db.versions {
		if existing.DocID == v.DocID && existing.VersionNo > max {
			max = existing.VersionNo
		}
	}
	v.ID = uuid.NewString()
	v.VersionNo = max + 1
	var copied = *v
	db.versions[v.ID] = &copied
	doc.CurrentVersionID = v.ID
	doc.TsUpdated = v.TsCreated
	return nil
}

// workflows

func (db *DB) GetWorkflow(docID string) (*core.Workflow, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	w, ok := db.workflows[docID]
	if !ok {
		return nil, core.NotFoundf("workflow for document %s not found", docID)
	}
	var copied = *w
	return &copied, nil
}

func (db *DB) UpdateAssignees(docID string, a core.Assignees) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	w, ok := db.workflows[docID]
	if !ok {
		return core.NotFoundf("workflow for document %s not found", docID)
	}
	w.Assignees = a
	return nil
}

func (db *DB) GetHistory(docID string) ([]core.HistoryEntry, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.workflows[docID]; !ok {
		return nil, core.NotFoundf("workflow for document %s not found", docID)
	}
	return append([]core.HistoryEntry{}, db.history[docID]...), nil
}

func (db *DB) ApplyTransition(docID string, status core.Status, state core.WFState, entry core.HistoryEntry) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	doc, ok := db.documents[docID]
	if !ok {
		return core.NotFoundf("document %s not found", docID)
	}
	w, ok := db.workflows[docID]
	if !ok {
		return core.NotFoundf("workflow for document %s not found", docID)
	}
	doc.Status = status
	doc.TsUpdated = entry.Ts
	w.State = state
	db.history[docID] = append(db.history[docID], entry)
	return nil
}

// tasks

func (db *DB) GetTask(id string) (*core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	t, ok := db.tasks[id]
	if !ok {
		return nil, core.NotFoundf("task %s not found", id)
	}
	var copied = *t
	return &copied, nil
}

func (db *DB) GetTasks(uid string, state core.TaskState) ([]*core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all []*core.Task
	for _, t := range db.tasks {
		if t.AssignedTo != uid {
			continue
		}
		if state != "" && t.State != state {
			continue
		}
		var copied = *t
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TsCreated != all[j].TsCreated {
			return all[i].TsCreated > all[j].TsCreated
		}
		return all[i].ID > all[j].ID
	})
	return all, nil
}

func (db *DB) GetDocumentTasks(docID string) ([]*core.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all []*core.Task
	for _, t := range db.tasks {
		if t.DocID == docID {
			var copied = *t
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].TsCreated > all[j].TsCreated })
	return all, nil
}

func (db *DB) InsertTasks(tasks []*core.Task) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, t := range tasks {
		t.ID = uuid.NewString()
		var copied = *t
		db.tasks[t.ID] = &copied
	}
	return nil
}

func (db *DB) UpdateTask(t *core.Task) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if _, ok := db.tasks[t.ID]; !ok {
		return core.NotFoundf("task %s not found", t.ID)
	}
	var copied = *t
	db.tasks[t.ID] = &copied
	return nil
}

func (db *DB) CompleteTasks(docID, uid, notes string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var n int
	for _, t := range db.tasks {
		if t.DocID == docID && t.AssignedTo == uid && t.State == core.TaskOpen {
			t.State = core.TaskDone
			t.Notes = notes
			t.TsDone = nowUnix()
			n++
		}
	}
	return n, nil
}

func (db *DB) CancelOpenTasks(docID string) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var n int
	for _, t := range db.tasks {
		if t.DocID == docID && t.State == core.TaskOpen {
			t.State = core.TaskCancelled
			t.TsDone = nowUnix()
			n++
		}
	}
	return n, nil
}

// audit

func (db *DB) InsertAuditLog(e *core.AuditLog) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	e.ID = uuid.NewString()
	var copied = *e
	db.audits = append(db.audits, &copied)
	return nil
}

func (db *DB) GetAuditLogs(targetType, targetID string, limit, offset int) ([]*core.AuditLog, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all []*core.AuditLog
	for i := len(db.audits) - 1; i >= 0; i-- { // insertion order, newest first
		var e = db.audits[i]
		if targetType != "" && e.TargetType != targetType {
			continue
		}
		if targetID != "" && e.TargetID != targetID {
			continue
		}
		var copied = *e
		all = append(all, &copied)
	}
	return window(all, limit, offset), nil
}

// comments

func (db *DB) GetComments(docID string) ([]*core.Comment, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all []*core.Comment
	for _, cm := range db.comments {
		if cm.DocID == docID {
			var copied = *cm
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TsCreated != all[j].TsCreated {
			return all[i].TsCreated < all[j].TsCreated
		}
		return all[i].ID < all[j].ID
	})
	return all, nil
}

func (db *DB) InsertComment(cm *core.Comment) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	cm.ID = uuid.NewString()
	var copied = *cm
	db.comments[cm.ID] = &copied
	return nil
}

// offices and sessions

func (db *DB) GetOffice(id string) (*core.Office, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	o, ok := db.offices[id]
	if !ok {
		return nil, core.NotFoundf("office %s not found", id)
	}
	var copied = *o
	return &copied, nil
}

func (db *DB) GetOfficeByCode(code string) (*core.Office, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, o := range db.offices {
		if o.OfficeCode == code {
			var copied = *o
			return &copied, nil
		}
	}
	return nil, core.NotFoundf("office %s not found", code)
}

func (db *DB) GetAllOffices(limit, offset int) ([]*core.Office, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all []*core.Office
	for _, o := range db.offices {
		var copied = *o
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return window(all, limit, offset), nil
}

func (db *DB) InsertOffice(o *core.Office) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, existing := range db.offices {
		if existing.OfficeCode == o.OfficeCode {
			return core.Validationf("office_code_taken", "office code is taken")
		}
	}
	o.ID = uuid.NewString()
	var copied = *o
	db.offices[o.ID] = &copied
	return nil
}

func (db *DB) InsertSession(s *core.OfficeSession) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	var copied = *s
	db.sessions[s.Token] = &copied
	return nil
}

func (db *DB) GetSession(token string) (*core.OfficeSession, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	s, ok := db.sessions[token]
	if !ok {
		return nil, core.NotFoundf("session not found")
	}
	var copied = *s
	return &copied, nil
}

func (db *DB) DeactivateSession(token string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	s, ok := db.sessions[token]
	if !ok {
		return core.NotFoundf("session not found")
	}
	s.IsActive = false
	return nil
}

func (db *DB) DeleteStaleSessions(now int64) (int, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var n int
	for token, s := range db.sessions {
		if !s.IsActive || now >= s.ExpiresAt {
			delete(db.sessions, token)
			n++
		}
	}
	return n, nil
}

// messages

func (db *DB) GetMessage(id string) (*core.Message, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	m, ok := db.messages[id]
	if !ok {
		return nil, core.NotFoundf("message %s not found", id)
	}
	return copyMessage(m), nil
}

func copyMessage(m *core.Message) *core.Message {
	var copied = *m
	copied.ReadBy = append([]string{}, m.ReadBy...)
	return &copied
}

func (db *DB) GetMessages(officeID string, limit, offset int) ([]*core.Message, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all []*core.Message
	for _, m := range db.messages {
		if m.OfficeID == "" || m.OfficeID == officeID {
			all = append(all, copyMessage(m))
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TsCreated != all[j].TsCreated {
			return all[i].TsCreated > all[j].TsCreated
		}
		return all[i].ID > all[j].ID
	})
	return window(all, limit, offset), nil
}

func (db *DB) InsertMessage(m *core.Message) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	m.ID = uuid.NewString()
	db.messages[m.ID] = copyMessage(m)
	return nil
}

func (db *DB) MarkMessageRead(id, readerKey string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	m, ok := db.messages[id]
	if !ok {
		return core.NotFoundf("message %s not found", id)
	}
	for _, key := range m.ReadBy {
		if key == readerKey {
			return nil
		}
	}
	m.ReadBy = append(m.ReadBy, readerKey)
	return nil
}

// notifications

func (db *DB) GetNotification(id string) (*core.Notification, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	n, ok := db.notifications[id]
	if !ok {
		return nil, core.NotFoundf("notification %s not found", id)
	}
	var copied = *n
	return &copied, nil
}

func (db *DB) GetNotifications(uid string, limit, offset int) ([]*core.Notification, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all []*core.Notification
	for _, n := range db.notifications {
		if n.RecipientUID == uid {
			var copied = *n
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TsCreated != all[j].TsCreated {
			return all[i].TsCreated > all[j].TsCreated
		}
		return all[i].ID > all[j].ID
	})
	return window(all, limit, offset), nil
}

func (db *DB) InsertNotification(n *core.Notification) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	n.ID = uuid.NewString()
	var copied = *n
	db.notifications[n.ID] = &copied
	return nil
}

func (db *DB) MarkNotificationRead(id string, ts int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	n, ok := db.notifications[id]
	if !ok {
		return core.NotFoundf("notification %s not found", id)
	}
	n.TsRead = ts
	return nil
}

// departments

func (db *DB) GetDepartment(id string) (*core.Department, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	d, ok := db.departments[id]
	if !ok {
		return nil, core.NotFoundf("department %s not found", id)
	}
	var copied = *d
	return &copied, nil
}

func (db *DB) GetDepartments(officeID string) ([]*core.Department, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var all []*core.Department
	for _, d := range db.departments {
		if officeID == "" || d.OfficeID == officeID {
			var copied = *d
			all = append(all, &copied)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}

func (db *DB) InsertDepartment(d *core.Department) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	d.ID = uuid.NewString()
	var copied = *d
	db.departments[d.ID] = &copied
	return nil
}

func window[T any](all []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(all) {
			return []T{}
		}
		all = all[offset:]
	}
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all
}
