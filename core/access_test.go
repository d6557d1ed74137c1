package core_test

import (
	"testing"

	"github.com/ephraimraxy/docflow/core"
)

func accessDoc() *core.Document {
	return &core.Document{
		ID:       "doc1",
		OwnerUID: "owner",
		Participants: core.Participants{
			Editors:   []string{"editor"},
			Reviewers: []string{"reviewer"},
			Approvers: []string{"approver"},
			Viewers:   []string{"viewer"},
		},
	}
}

func u(id string, roles ...core.Role) *core.User {
	return &core.User{ID: id, Roles: core.RoleSet(roles)}
}

func TestAccessPredicates(t *testing.T) {

	var doc = accessDoc()

	var tests = []struct {
		name      string
		user      *core.User
		access    bool
		edit      bool
		review    bool
		approve   bool
	}{
		{"nil user", nil, false, false, false, false},
		{"stranger", u("nobody"), false, false, false, false},
		{"owner", u("owner"), true, true, false, false},
		{"editor", u("editor"), true, true, false, false},
		{"reviewer", u("reviewer"), true, false, true, false},
		{"approver", u("approver"), true, false, false, true},
		{"viewer", u("viewer"), true, false, false, false},
		{"admin", u("root", core.RoleAdmin), true, true, true, true},
		{"global approver", u("cfo", core.RoleApprover), false, false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := core.CanAccess(doc, tt.user); got != tt.access {
				t.Errorf("CanAccess = %v, want %v", got, tt.access)
			}
			if got := core.CanEdit(doc, tt.user); got != tt.edit {
				t.Errorf("CanEdit = %v, want %v", got, tt.edit)
			}
			if got := core.CanReview(doc, tt.user); got != tt.review {
				t.Errorf("CanReview = %v, want %v", got, tt.review)
			}
			if got := core.CanApprove(doc, tt.user); got != tt.approve {
				t.Errorf("CanApprove = %v, want %v", got, tt.approve)
			}
		})
	}
}

func TestAccessNilDocument(t *testing.T) {
	var admin = u("root", core.RoleAdmin)
	if core.CanAccess(nil, admin) || core.CanEdit(nil, admin) || core.CanReview(nil, admin) || core.CanApprove(nil, admin) {
		t.Error("nil document must deny everything")
	}
}
