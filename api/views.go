package api

import "github.com/ephraimraxy/docflow/core"

type participantsView struct {
	Editors   []string `json:"editors"`
	Reviewers []string `json:"reviewers"`
	Approvers []string `json:"approvers"`
	Viewers   []string `json:"viewers"`
}

type documentView struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Content          string           `json:"content"`
	OwnerUID         string           `json:"ownerUid"`
	DepartmentID     string           `json:"departmentId"`
	Status           string           `json:"status"`
	CurrentVersionID string           `json:"currentVersionId,omitempty"`
	Participants     participantsView `json:"participants"`
	TsCreated        int64            `json:"createdAt"`
	TsUpdated        int64            `json:"updatedAt"`
}

func list(uids []string) []string {
	if uids == nil {
		return []string{}
	}
	return uids
}

func newDocumentView(d *core.Document) documentView {
	return documentView{
		ID:               d.ID,
		Title:            d.Title,
		Content:          d.Content,
		OwnerUID:         d.OwnerUID,
		DepartmentID:     d.DepartmentID,
		Status:           string(d.Status),
		CurrentVersionID: d.CurrentVersionID,
		Participants: participantsView{
			Editors:   list(d.Participants.Editors),
			Reviewers: list(d.Participants.Reviewers),
			Approvers: list(d.Participants.Approvers),
			Viewers:   list(d.Participants.Viewers),
		},
		TsCreated: d.TsCreated,
		TsUpdated: d.TsUpdated,
	}
}

func newDocumentViews(docs []*core.Document) []documentView {
	var views = make([]documentView, len(docs))
	for i, d := range docs {
		views[i] = newDocumentView(d)
	}
	return views
}

type versionView struct {
	ID            string `json:"id"`
	DocID         string `json:"docId"`
	VersionNumber string `json:"versionNumber"`
	SHA256        string `json:"sha256"`
	CreatedBy     string `json:"createdBy"`
	FileName      string `json:"fileName"`
	FileSize      int64  `json:"fileSize"`
	MimeType      string `json:"mimeType"`
	ChangeSummary string `json:"changeSummary"`
	TsCreated     int64  `json:"createdAt"`
}

func newVersionView(v *core.Version) versionView {
	return versionView{
		ID:            v.ID,
		DocID:         v.DocID,
		VersionNumber: v.Label(),
		SHA256:        v.SHA256,
		CreatedBy:     v.CreatedBy,
		FileName:      v.FileName,
		FileSize:      v.FileSize,
		MimeType:      v.MimeType,
		ChangeSummary: v.ChangeSummary,
		TsCreated:     v.TsCreated,
	}
}

type taskView struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	DocID      string `json:"docId"`
	WorkflowID string `json:"workflowId"`
	State      string `json:"state"`
	AssignedTo string `json:"assignedTo"`
	Notes      string `json:"notes,omitempty"`
	TsCreated  int64  `json:"createdAt"`
	TsDone     int64  `json:"doneAt,omitempty"`
}

func newTaskView(t *core.Task) taskView {
	return taskView{
		ID:         t.ID,
		Type:       string(t.Type),
		DocID:      t.DocID,
		WorkflowID: t.WorkflowID,
		State:      string(t.State),
		AssignedTo: t.AssignedTo,
		Notes:      t.Notes,
		TsCreated:  t.TsCreated,
		TsDone:     t.TsDone,
	}
}

type historyView struct {
	Ts       int64             `json:"ts"`
	ActorUID string            `json:"byUid"`
	Action   string            `json:"action"`
	Meta     map[string]string `json:"meta,omitempty"`
}

type notificationView struct {
	ID         string `json:"id"`
	Kind       string `json:"kind"`
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
	Body       string `json:"body"`
	TsCreated  int64  `json:"createdAt"`
	TsRead     int64  `json:"readAt,omitempty"`
}

func newNotificationView(n *core.Notification) notificationView {
	return notificationView{
		ID:         n.ID,
		Kind:       n.Kind,
		TargetType: n.TargetType,
		TargetID:   n.TargetID,
		Body:       n.Body,
		TsCreated:  n.TsCreated,
		TsRead:     n.TsRead,
	}
}

type userView struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Roles     []string `json:"roles"`
	OfficeID  string   `json:"officeId,omitempty"`
}

func newUserView(u *core.User) userView {
	var roles = make([]string, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = string(r)
	}
	return userView{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Roles:     roles,
		OfficeID:  u.OfficeID,
	}
}
