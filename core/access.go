package core

// Access predicates are the only gates for document mutation. They are
// pure functions over (document, user); a nil user always gets false.

func contains(uids []string, uid string) bool {
	for _, u := range uids {
		if u == uid {
			return true
		}
	}
	return false
}

// CanAccess reports whether the user may see the document at all: admin,
// owner, or member of any participant list.
func CanAccess(doc *Document, u *User) bool {
	if doc == nil || u == nil {
		return false
	}
	if u.IsAdmin() || u.ID == doc.OwnerUID {
		return true
	}
	var p = doc.Participants
	return contains(p.Editors, u.ID) ||
		contains(p.Reviewers, u.ID) ||
		contains(p.Approvers, u.ID) ||
		contains(p.Viewers, u.ID)
}

// CanEdit reports whether the user may change content or attach versions.
func CanEdit(doc *Document, u *User) bool {
	if doc == nil || u == nil {
		return false
	}
	return u.IsAdmin() || u.ID == doc.OwnerUID || contains(doc.Participants.Editors, u.ID)
}

// CanReview reports whether the user may act on the review stage.
func CanReview(doc *Document, u *User) bool {
	if doc == nil || u == nil {
		return false
	}
	return u.IsAdmin() || contains(doc.Participants.Reviewers, u.ID)
}

// CanApprove reports whether the user may sign or approve.
func CanApprove(doc *Document, u *User) bool {
	if doc == nil || u == nil {
		return false
	}
	return u.IsAdmin() || u.Roles.Has(RoleApprover) || contains(doc.Participants.Approvers, u.ID)
}
