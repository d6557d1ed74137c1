package core_test

import (
	"testing"

	"github.com/ephraimraxy/docflow/core"
)

func TestFullLifecycle(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)
	if doc.Status != core.StatusDraft {
		t.Fatalf("new document status = %s, want DRAFT", doc.Status)
	}

	wf, err := db.WorkflowDB.GetWorkflow(doc.ID)
	if err != nil {
		t.Fatalf("get workflow: %v", err)
	}
	if wf.State != core.WFDraft {
		t.Fatalf("new workflow state = %s, want DRAFT", wf.State)
	}

	// submit

	doc, err = db.SubmitDocument(owner, doc.ID)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if doc.Status != core.StatusInReview {
		t.Fatalf("status after submit = %s, want IN_REVIEW", doc.Status)
	}

	tasks, err := db.TaskDB.GetTasks(reviewer.ID, core.TaskOpen)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Type != core.TaskReview {
		t.Fatalf("reviewer tasks after submit = %v, want one REVIEW task", tasks)
	}

	// submitting twice conflicts

	if _, err := db.SubmitDocument(owner, doc.ID); core.KindOf(err) != core.KindStateConflict {
		t.Fatalf("second submit error = %v, want state conflict", err)
	}

	// request signature, sign

	doc, err = db.RequestSignature(reviewer, doc.ID)
	if err != nil {
		t.Fatalf("request signature: %v", err)
	}
	if doc.Status != core.StatusPendingSignature {
		t.Fatalf("status after request = %s, want PENDING_SIGNATURE", doc.Status)
	}

	doc, err = db.SignDocument(approver, doc.ID)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if doc.Status != core.StatusInApproval {
		t.Fatalf("status after sign = %s, want IN_APPROVAL", doc.Status)
	}

	// approve

	doc, err = db.ApproveDocument(approver, doc.ID, "looks good")
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if doc.Status != core.StatusApproved {
		t.Fatalf("status after approve = %s, want APPROVED", doc.Status)
	}

	wf, err = db.WorkflowDB.GetWorkflow(doc.ID)
	if err != nil {
		t.Fatalf("get workflow: %v", err)
	}
	if !core.Paired(doc.Status, wf.State) {
		t.Fatalf("status %s and workflow state %s are not paired", doc.Status, wf.State)
	}

	open, err := db.TaskDB.GetTasks(approver.ID, core.TaskOpen)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("approver still has %d open tasks after approving", len(open))
	}

	history, err := db.WorkflowDB.GetHistory(doc.ID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	var wantActions = []string{core.ActionSubmit, core.ActionRequestSignature, core.ActionSign, core.ActionApprove}
	if len(history) != len(wantActions) {
		t.Fatalf("history has %d entries, want %d", len(history), len(wantActions))
	}
	for i, want := range wantActions {
		if history[i].Action != want {
			t.Errorf("history[%d].Action = %s, want %s", i, history[i].Action, want)
		}
	}
	if history[3].Meta["notes"] != "looks good" {
		t.Errorf("approve notes not recorded in history meta: %v", history[3].Meta)
	}

	// terminal state

	if _, err := db.ApproveDocument(approver, doc.ID, ""); core.KindOf(err) != core.KindStateConflict {
		t.Fatalf("approving APPROVED error = %v, want state conflict", err)
	}
}

func TestDirectApprovalFromReview(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)
	if _, err := db.SubmitDocument(owner, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	// approvers may short-circuit the signature stage
	doc, err := db.ApproveDocument(approver, doc.ID, "")
	if err != nil {
		t.Fatalf("approve from IN_REVIEW: %v", err)
	}
	if doc.Status != core.StatusApproved {
		t.Fatalf("status = %s, want APPROVED", doc.Status)
	}
}

func TestRejectRequiresReason(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)
	if _, err := db.SubmitDocument(owner, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	before, err := db.WorkflowDB.GetHistory(doc.ID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}

	if _, err := db.RejectDocument(reviewer, doc.ID, "  "); core.KindOf(err) != core.KindValidation {
		t.Fatalf("reject without reason error = %v, want validation", err)
	}

	after, err := db.WorkflowDB.GetHistory(doc.ID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(after) != len(before) {
		t.Fatal("failed reject must not append history")
	}

	got, err := db.DocumentDB.GetDocument(doc.ID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if got.Status != core.StatusInReview {
		t.Fatalf("status after failed reject = %s, want IN_REVIEW", got.Status)
	}
}

func TestRejectCancelsTasksAndReviseReopens(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)
	if _, err := db.SubmitDocument(owner, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	doc, err := db.RejectDocument(reviewer, doc.ID, "numbers are off")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if doc.Status != core.StatusRejected {
		t.Fatalf("status after reject = %s, want REJECTED", doc.Status)
	}

	open, err := db.TaskDB.GetTasks(reviewer.ID, core.TaskOpen)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if len(open) != 0 {
		t.Fatalf("reviewer still has %d open tasks after reject", len(open))
	}

	all, err := db.TaskDB.GetDocumentTasks(doc.ID)
	if err != nil {
		t.Fatalf("get document tasks: %v", err)
	}
	for _, task := range all {
		if task.State == core.TaskOpen {
			t.Errorf("task %s still OPEN after reject", task.ID)
		}
	}

	// the owner revises and the cycle starts over

	doc, err = db.ReviseDocument(owner, doc.ID)
	if err != nil {
		t.Fatalf("revise: %v", err)
	}
	if doc.Status != core.StatusDraft {
		t.Fatalf("status after revise = %s, want DRAFT", doc.Status)
	}

	if _, err := db.SubmitDocument(owner, doc.ID); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
}

func TestTransitionAuthorization(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")
	var stranger = addUser(t, db, "stranger@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)

	if _, err := db.SubmitDocument(stranger, doc.ID); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("stranger submit error = %v, want unauthorized", err)
	}
	if _, err := db.SubmitDocument(reviewer, doc.ID); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("reviewer submit error = %v, want unauthorized", err)
	}

	if _, err := db.SubmitDocument(owner, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := db.RequestSignature(owner, doc.ID); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("owner request-signature error = %v, want unauthorized", err)
	}
	if _, err := db.ApproveDocument(reviewer, doc.ID, ""); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("reviewer approve error = %v, want unauthorized", err)
	}
}

func TestCompleteTaskByAssignee(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)
	if _, err := db.SubmitDocument(owner, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	tasks, err := db.TaskDB.GetTasks(reviewer.ID, core.TaskOpen)
	if err != nil || len(tasks) != 1 {
		t.Fatalf("get tasks: %v %v", tasks, err)
	}

	if _, err := db.CompleteTask(owner, tasks[0].ID, ""); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("completing someone else's task error = %v, want unauthorized", err)
	}

	done, err := db.CompleteTask(reviewer, tasks[0].ID, "read it")
	if err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if done.State != core.TaskDone || done.Notes != "read it" {
		t.Fatalf("completed task = %+v", done)
	}

	if _, err := db.CompleteTask(reviewer, tasks[0].ID, ""); core.KindOf(err) != core.KindStateConflict {
		t.Fatalf("completing a DONE task error = %v, want state conflict", err)
	}
}

func TestNotificationsOnSubmit(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)
	if _, err := db.SubmitDocument(owner, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	notifications, err := db.NotificationDB.GetNotifications(reviewer.ID, 0, 0)
	if err != nil {
		t.Fatalf("get notifications: %v", err)
	}
	if len(notifications) != 1 || notifications[0].Kind != "review_requested" {
		t.Fatalf("reviewer notifications = %v, want one review_requested", notifications)
	}
	if notifications[0].TargetID != doc.ID {
		t.Errorf("notification target = %s, want %s", notifications[0].TargetID, doc.ID)
	}
}
