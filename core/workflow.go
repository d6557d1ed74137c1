package core

import (
	"strings"
	"time"
)

// Assignees are the uid lists per workflow stage.
type Assignees struct {
	Review  []string
	Sign    []string
	Approve []string
}

// Workflow is the per-document process record, created atomically with
// its document.
type Workflow struct {
	ID        string
	DocID     string
	State     WFState
	Assignees Assignees
	TsCreated int64
}

// HistoryEntry is one step of the append-only workflow narrative.
type HistoryEntry struct {
	Ts       int64
	ActorUID string
	Action   string
	Meta     map[string]string
}

type WorkflowDB interface {
	GetWorkflow(docID string) (*Workflow, error)
	UpdateAssignees(docID string, a Assignees) error
	GetHistory(docID string) ([]HistoryEntry, error) // oldest first
}

// TransitionDB applies one lifecycle transition atomically: document
// status and workflow state change together and the history entry is
// appended, or nothing happens at all.
type TransitionDB interface {
	ApplyTransition(docID string, status Status, state WFState, entry HistoryEntry) error
}

func entry(actor *User, action string, meta map[string]string) HistoryEntry {
	return HistoryEntry{
		Ts:       time.Now().Unix(),
		ActorUID: actor.ID,
		Action:   action,
		Meta:     meta,
	}
}

// SubmitDocument moves a DRAFT document into review and opens one REVIEW
// task per reviewer.
func (c *CoreDB) SubmitDocument(actor *User, docID string) (*Document, error) {

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return nil, err
	}

	if !CanEdit(doc, actor) {
		return nil, ErrUnauthorized
	}

	if doc.Status != StatusDraft {
		return nil, Conflictf("not_draft", "document is %s, submit requires DRAFT", doc.Status)
	}

	wf, err := c.WorkflowDB.GetWorkflow(docID)
	if err != nil {
		return nil, err
	}

	if err := c.TransitionDB.ApplyTransition(docID, StatusInReview, WFReview, entry(actor, ActionSubmit, nil)); err != nil {
		return nil, err
	}
	doc.Status = StatusInReview

	if err := c.openTasks(doc, wf, TaskReview, wf.Assignees.Review); err != nil {
		return nil, err
	}

	c.NotifyUsers(wf.Assignees.Review, "review_requested", "document", doc.ID,
		"Document \""+doc.Title+"\" is awaiting your review")

	return doc, nil
}

// RequestSignature forwards a reviewed document to the signing stage and
// opens one SIGN task per approver.
func (c *CoreDB) RequestSignature(actor *User, docID string) (*Document, error) {

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return nil, err
	}

	if !CanReview(doc, actor) {
		return nil, ErrUnauthorized
	}

	if doc.Status != StatusInReview {
		return nil, Conflictf("not_in_review", "document is %s, requesting signature requires IN_REVIEW", doc.Status)
	}

	wf, err := c.WorkflowDB.GetWorkflow(docID)
	if err != nil {
		return nil, err
	}

	if err := c.TransitionDB.ApplyTransition(docID, StatusPendingSignature, WFSign, entry(actor, ActionRequestSignature, nil)); err != nil {
		return nil, err
	}
	doc.Status = StatusPendingSignature

	if err := c.openTasks(doc, wf, TaskSign, wf.Assignees.Sign); err != nil {
		return nil, err
	}

	c.NotifyUsers(wf.Assignees.Sign, "signature_requested", "document", doc.ID,
		"Document \""+doc.Title+"\" is awaiting your signature")

	return doc, nil
}

// SignDocument records a signature and moves the document to the final
// approval stage, opening one APPROVE task per approver.
func (c *CoreDB) SignDocument(actor *User, docID string) (*Document, error) {

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return nil, err
	}

	if !CanApprove(doc, actor) {
		return nil, ErrUnauthorized
	}

	if doc.Status != StatusPendingSignature {
		return nil, Conflictf("not_pending_signature", "document is %s, signing requires PENDING_SIGNATURE", doc.Status)
	}

	wf, err := c.WorkflowDB.GetWorkflow(docID)
	if err != nil {
		return nil, err
	}

	if err := c.TransitionDB.ApplyTransition(docID, StatusInApproval, WFApproval, entry(actor, ActionSign, nil)); err != nil {
		return nil, err
	}
	doc.Status = StatusInApproval

	if _, err := c.TaskDB.CompleteTasks(docID, actor.ID, "Signed"); err != nil {
		return nil, err
	}

	if err := c.openTasks(doc, wf, TaskApprove, wf.Assignees.Approve); err != nil {
		return nil, err
	}

	return doc, nil
}

// ApproveDocument is the terminal positive transition. The acting user's
// open tasks for the document are marked done.
func (c *CoreDB) ApproveDocument(actor *User, docID, notes string) (*Document, error) {

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return nil, err
	}

	if !CanApprove(doc, actor) {
		return nil, ErrUnauthorized
	}

	switch doc.Status {
	case StatusInReview, StatusPendingSignature, StatusInApproval:
	default:
		return nil, Conflictf("not_approvable", "document is %s, approval requires IN_REVIEW, PENDING_SIGNATURE or IN_APPROVAL", doc.Status)
	}

	var meta map[string]string
	if notes = strings.TrimSpace(notes); notes != "" {
		meta = map[string]string{"notes": notes}
	}

	if err := c.TransitionDB.ApplyTransition(docID, StatusApproved, WFDone, entry(actor, ActionApprove, meta)); err != nil {
		return nil, err
	}
	doc.Status = StatusApproved

	var taskNotes = notes
	if taskNotes == "" {
		taskNotes = "Approved"
	}
	if _, err := c.TaskDB.CompleteTasks(docID, actor.ID, taskNotes); err != nil {
		return nil, err
	}

	c.NotifyUsers([]string{doc.OwnerUID}, "document_approved", "document", doc.ID,
		"Document \""+doc.Title+"\" was approved")

	return doc, nil
}

// RejectDocument rejects from any stage a reviewer or approver can still
// act on. A non-empty reason is required before anything is written. All
// open tasks for the document are cancelled.
func (c *CoreDB) RejectDocument(actor *User, docID, reason string) (*Document, error) {

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, Validationf("missing_reason", "a rejection reason is required")
	}

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return nil, err
	}

	if !CanApprove(doc, actor) && !CanReview(doc, actor) {
		return nil, ErrUnauthorized
	}

	switch doc.Status {
	case StatusInReview, StatusPendingSignature, StatusInApproval, StatusApproved:
	default:
		return nil, Conflictf("not_rejectable", "document is %s and can not be rejected", doc.Status)
	}

	var meta = map[string]string{"reason": reason}

	if err := c.TransitionDB.ApplyTransition(docID, StatusRejected, WFRejected, entry(actor, ActionReject, meta)); err != nil {
		return nil, err
	}
	doc.Status = StatusRejected

	if _, err := c.TaskDB.CancelOpenTasks(docID); err != nil {
		return nil, err
	}

	c.NotifyUsers([]string{doc.OwnerUID}, "document_rejected", "document", doc.ID,
		"Document \""+doc.Title+"\" was rejected: "+reason)

	return doc, nil
}

// ReviseDocument returns a REJECTED document to DRAFT so it can be edited
// and submitted again.
func (c *CoreDB) ReviseDocument(actor *User, docID string) (*Document, error) {

	doc, err := c.DocumentDB.GetDocument(docID)
	if err != nil {
		return nil, err
	}

	if !CanEdit(doc, actor) {
		return nil, ErrUnauthorized
	}

	if doc.Status != StatusRejected {
		return nil, Conflictf("not_rejected", "document is %s, revising requires REJECTED", doc.Status)
	}

	if err := c.TransitionDB.ApplyTransition(docID, StatusDraft, WFDraft, entry(actor, ActionRevise, nil)); err != nil {
		return nil, err
	}
	doc.Status = StatusDraft

	return doc, nil
}

// openTasks materializes one OPEN task per assignee.
func (c *CoreDB) openTasks(doc *Document, wf *Workflow, taskType TaskType, assignees []string) error {

	var now = time.Now().Unix()
	var tasks = make([]*Task, 0, len(assignees))
	for _, uid := range assignees {
		tasks = append(tasks, &Task{
			Type:       taskType,
			DocID:      doc.ID,
			WorkflowID: wf.ID,
			State:      TaskOpen,
			AssignedTo: uid,
			TsCreated:  now,
		})
	}

	return c.TaskDB.InsertTasks(tasks)
}
