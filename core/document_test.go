package core_test

import (
	"strings"
	"testing"

	"github.com/ephraimraxy/docflow/core"
)

func strPtr(s string) *string { return &s }

func TestCreateDocumentRequiresTitle(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")

	if _, err := db.CreateDocument(owner, "   ", "", "", core.Participants{}); core.KindOf(err) != core.KindValidation {
		t.Fatalf("create without title error = %v, want validation", err)
	}
	if _, err := db.CreateDocument(nil, "Untitled", "", "", core.Participants{}); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("create without actor error = %v, want unauthorized", err)
	}
}

func TestEditGuards(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)

	doc, err := db.EditDocument(owner, doc.ID, strPtr("Annual Report"), nil)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if doc.Title != "Annual Report" {
		t.Fatalf("title = %q", doc.Title)
	}
	if !strings.Contains(doc.Content, "Numbers") {
		t.Fatal("nil content argument must leave content untouched")
	}

	if _, err := db.EditDocument(reviewer, doc.ID, strPtr("x"), nil); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("reviewer edit error = %v, want unauthorized", err)
	}

	if _, err := db.SubmitDocument(owner, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := db.EditDocument(owner, doc.ID, strPtr("x"), nil); core.KindOf(err) != core.KindStateConflict {
		t.Fatalf("editing IN_REVIEW error = %v, want state conflict", err)
	}
}

func TestSetParticipantsSyncsAssignees(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")
	var second = addUser(t, db, "second@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)

	if _, err := db.SetParticipants(reviewer, doc.ID, core.Participants{}); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("non-owner set participants error = %v, want unauthorized", err)
	}

	_, err := db.SetParticipants(owner, doc.ID, core.Participants{
		Reviewers: []string{reviewer.ID, second.ID},
		Approvers: []string{approver.ID},
	})
	if err != nil {
		t.Fatalf("set participants: %v", err)
	}

	wf, err := db.WorkflowDB.GetWorkflow(doc.ID)
	if err != nil {
		t.Fatalf("get workflow: %v", err)
	}
	if len(wf.Assignees.Review) != 2 {
		t.Fatalf("review assignees = %v, want both reviewers", wf.Assignees.Review)
	}

	// both reviewers get a task on submit
	if _, err := db.SubmitDocument(owner, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	tasks, err := db.TaskDB.GetTasks(second.ID, core.TaskOpen)
	if err != nil {
		t.Fatalf("get tasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("second reviewer has %d open tasks, want 1", len(tasks))
	}
}

func TestVersionNumbering(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)

	v1, err := db.AddVersion(owner, doc.ID, "report.pdf", "application/pdf", "first draft", strings.NewReader("pdf bytes"))
	if err != nil {
		t.Fatalf("add version: %v", err)
	}
	if v1.VersionNo != 1 || v1.Label() != "1.0" {
		t.Fatalf("first version = %d (%s), want 1 (1.0)", v1.VersionNo, v1.Label())
	}
	if v1.SHA256 == "" || v1.FileSize != int64(len("pdf bytes")) {
		t.Fatalf("version file metadata = %+v", v1)
	}

	v2, err := db.AddVersion(owner, doc.ID, "report.pdf", "application/pdf", "typo fixes", strings.NewReader("more pdf bytes"))
	if err != nil {
		t.Fatalf("add second version: %v", err)
	}
	if v2.VersionNo != 2 || v2.Label() != "2.0" {
		t.Fatalf("second version = %d (%s), want 2 (2.0)", v2.VersionNo, v2.Label())
	}

	got, err := db.DocumentDB.GetDocument(doc.ID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if got.CurrentVersionID != v2.ID {
		t.Fatalf("document current version = %s, want %s", got.CurrentVersionID, v2.ID)
	}

	versions, err := db.VersionDB.GetVersions(doc.ID)
	if err != nil {
		t.Fatalf("get versions: %v", err)
	}
	if len(versions) != 2 || versions[0].ID != v2.ID {
		t.Fatalf("versions are not newest first: %v", versions)
	}

	// content can be read back
	src, err := db.Uploads.Open(v2.StoragePath)
	if err != nil {
		t.Fatalf("open version file: %v", err)
	}
	src.Close()

	if _, err := db.AddVersion(reviewer, doc.ID, "x.pdf", "application/pdf", "", strings.NewReader("x")); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("reviewer add version error = %v, want unauthorized", err)
	}
}

func TestDeleteDocumentCascades(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)
	if _, err := db.AddVersion(owner, doc.ID, "report.pdf", "application/pdf", "", strings.NewReader("pdf bytes")); err != nil {
		t.Fatalf("add version: %v", err)
	}
	if _, err := db.SubmitDocument(owner, doc.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if err := db.DeleteDocument(reviewer, doc.ID); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("reviewer delete error = %v, want unauthorized", err)
	}

	if err := db.DeleteDocument(owner, doc.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := db.DocumentDB.GetDocument(doc.ID); !core.IsNotFound(err) {
		t.Fatalf("get deleted document error = %v, want not found", err)
	}
	if _, err := db.WorkflowDB.GetWorkflow(doc.ID); !core.IsNotFound(err) {
		t.Fatalf("get deleted workflow error = %v, want not found", err)
	}
	tasks, err := db.TaskDB.GetDocumentTasks(doc.ID)
	if err != nil {
		t.Fatalf("get document tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("%d tasks survived the delete", len(tasks))
	}
}

func TestDocumentFilter(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var other = addUser(t, db, "other@example.com")

	if _, err := db.CreateDocument(owner, "Budget 2026", "numbers", "", core.Participants{}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := db.CreateDocument(other, "Travel Policy", "rules", "", core.Participants{}); err != nil {
		t.Fatalf("create: %v", err)
	}

	docs, err := db.DocumentDB.GetDocuments(core.DocumentFilter{OwnerUID: owner.ID})
	if err != nil {
		t.Fatalf("filter by owner: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "Budget 2026" {
		t.Fatalf("filter by owner = %v", docs)
	}

	docs, err = db.DocumentDB.GetDocuments(core.DocumentFilter{Query: "policy"})
	if err != nil {
		t.Fatalf("filter by query: %v", err)
	}
	if len(docs) != 1 || docs[0].Title != "Travel Policy" {
		t.Fatalf("filter by query = %v", docs)
	}

	docs, err = db.DocumentDB.GetDocuments(core.DocumentFilter{Status: core.StatusApproved})
	if err != nil {
		t.Fatalf("filter by status: %v", err)
	}
	if len(docs) != 0 {
		t.Fatalf("no document is APPROVED yet, got %v", docs)
	}
}

func TestGetLatestVersion(t *testing.T) {

	db, mem := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)

	if _, err := db.VersionDB.GetLatestVersion(doc.ID); core.KindOf(err) != core.KindNotFound {
		t.Fatalf("latest of document without versions error = %v, want not found", err)
	}

	var older = &core.Version{DocID: doc.ID, CreatedBy: owner.ID, FileName: "a.pdf", TsCreated: 100}
	var newer = &core.Version{DocID: doc.ID, CreatedBy: owner.ID, FileName: "b.pdf", TsCreated: 200}
	if err := mem.InsertVersion(older); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := mem.InsertVersion(newer); err != nil {
		t.Fatalf("insert: %v", err)
	}

	latest, err := db.VersionDB.GetLatestVersion(doc.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.ID != newer.ID {
		t.Fatalf("latest = %s, want %s", latest.FileName, newer.FileName)
	}

	// uploads within the same second resolve by version number
	var tied = &core.Version{DocID: doc.ID, CreatedBy: owner.ID, FileName: "c.pdf", TsCreated: 200}
	if err := mem.InsertVersion(tied); err != nil {
		t.Fatalf("insert: %v", err)
	}

	latest, err = db.VersionDB.GetLatestVersion(doc.ID)
	if err != nil {
		t.Fatalf("latest after tie: %v", err)
	}
	if latest.ID != tied.ID || latest.VersionNo != 3 {
		t.Fatalf("latest after tie = %s (version %d), want %s", latest.FileName, latest.VersionNo, tied.FileName)
	}
}

func TestEditUnchangedValues(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)

	// re-sending the stored values is a valid edit, not a missing document
	same, err := db.EditDocument(owner, doc.ID, strPtr(doc.Title), strPtr(doc.Content))
	if err != nil {
		t.Fatalf("no-op edit: %v", err)
	}
	if same.Title != doc.Title || same.Content != doc.Content {
		t.Fatalf("no-op edit changed the document: %+v", same)
	}
}
