package core_test

import (
	"testing"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/ephraimraxy/docflow/core"
	"github.com/ephraimraxy/docflow/filestore"
	"github.com/ephraimraxy/docflow/memdb"
)

func newTestDB(t *testing.T) (*core.CoreDB, *memdb.DB) {
	t.Helper()

	var mem = memdb.New()
	var db = &core.CoreDB{}
	mem.Wire(db)
	db.Init(memstore.New(), "", nil)
	db.Uploads = filestore.New(t.TempDir())

	return db, mem
}

func addUser(t *testing.T, db *core.CoreDB, email string, roles ...core.Role) *core.User {
	t.Helper()

	var u = &core.User{Email: email, Roles: core.RoleSet(roles)}
	if err := db.UserDB.InsertUser(u); err != nil {
		t.Fatalf("insert user %s: %v", email, err)
	}
	return u
}

// newTestDocument creates a document owned by owner with one reviewer
// and one approver.
func newTestDocument(t *testing.T, db *core.CoreDB, owner, reviewer, approver *core.User) *core.Document {
	t.Helper()

	doc, err := db.CreateDocument(owner, "Quarterly Report", "# Numbers\n\nAll good.", "", core.Participants{
		Reviewers: []string{reviewer.ID},
		Approvers: []string{approver.ID},
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}
	return doc
}
