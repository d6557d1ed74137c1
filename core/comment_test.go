package core_test

import (
	"strings"
	"testing"

	"github.com/ephraimraxy/docflow/core"
)

func TestComments(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var reviewer = addUser(t, db, "reviewer@example.com")
	var approver = addUser(t, db, "approver@example.com")
	var stranger = addUser(t, db, "stranger@example.com")

	var doc = newTestDocument(t, db, owner, reviewer, approver)

	if _, err := db.AddComment(owner, doc.ID, "   "); core.KindOf(err) != core.KindValidation {
		t.Fatalf("empty comment error = %v, want validation", err)
	}
	if _, err := db.AddComment(stranger, doc.ID, "hi"); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("stranger comment error = %v, want unauthorized", err)
	}

	if _, err := db.AddComment(owner, doc.ID, "first"); err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if _, err := db.AddComment(reviewer, doc.ID, "second"); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	comments, err := db.DocumentComments(reviewer, doc.ID)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if len(comments) != 2 || comments[0].Text != "first" {
		t.Fatalf("comments = %v, want oldest first", comments)
	}

	if _, err := db.DocumentComments(stranger, doc.ID); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("stranger list comments error = %v, want unauthorized", err)
	}
}

func TestRenderDocument(t *testing.T) {

	db, _ := newTestDB(t)
	var owner = addUser(t, db, "owner@example.com")
	var stranger = addUser(t, db, "stranger@example.com")

	doc, err := db.CreateDocument(owner, "Readme", "# Heading\n\nSome *emphasis* here.", "", core.Participants{})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	html, excerpt, err := db.RenderDocument(owner, doc.ID, 10)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "<h1>") || !strings.Contains(html, "<em>") {
		t.Fatalf("html = %q", html)
	}
	if excerpt == "" || strings.Contains(excerpt, "<") {
		t.Fatalf("excerpt = %q, want plain text", excerpt)
	}

	if _, _, err := db.RenderDocument(stranger, doc.ID, 10); core.KindOf(err) != core.KindUnauthorized {
		t.Fatalf("stranger render error = %v, want unauthorized", err)
	}
}

func TestAuditTrail(t *testing.T) {

	db, _ := newTestDB(t)

	db.Audit("u1", "CREATE_DOCUMENT", "document", "d1", "127.0.0.1", "test", nil)
	db.Audit("u2", "APPROVE", "document", "d1", "127.0.0.1", "test", map[string]string{"notes": "ok"})
	db.Audit("u1", "LOGIN", "user", "u1", "127.0.0.1", "test", nil)

	entries, err := db.AuditDB.GetAuditLogs("document", "d1", 0, 0)
	if err != nil {
		t.Fatalf("get audit logs: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("document audit trail has %d entries, want 2", len(entries))
	}
	for _, e := range entries {
		if e.TargetID != "d1" {
			t.Errorf("entry for wrong target: %+v", e)
		}
	}
}
