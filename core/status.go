package core

// Status is the document lifecycle status.
type Status string

const (
	StatusDraft            Status = "DRAFT"
	StatusInReview         Status = "IN_REVIEW"
	StatusPendingSignature Status = "PENDING_SIGNATURE"
	StatusInApproval       Status = "IN_APPROVAL"
	StatusApproved         Status = "APPROVED"
	StatusRejected         Status = "REJECTED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusInReview, StatusPendingSignature, StatusInApproval, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Editable reports whether the document content may be changed in this status.
func (s Status) Editable() bool {
	return s == StatusDraft || s == StatusRejected
}

// WFState is the workflow process state. It is kept in lockstep with the
// document status through the pairing table below; both are only ever
// written together by TransitionDB.ApplyTransition.
type WFState string

const (
	WFDraft    WFState = "DRAFT"
	WFReview   WFState = "REVIEW"
	WFSign     WFState = "SIGN"
	WFApproval WFState = "APPROVAL"
	WFDone     WFState = "DONE"
	WFRejected WFState = "REJECTED"
)

func (s WFState) Valid() bool {
	switch s {
	case WFDraft, WFReview, WFSign, WFApproval, WFDone, WFRejected:
		return true
	}
	return false
}

// pairing maps each document status to the workflow state it must
// accompany. The mapping is bijective.
var pairing = map[Status]WFState{
	StatusDraft:            WFDraft,
	StatusInReview:         WFReview,
	StatusPendingSignature: WFSign,
	StatusInApproval:       WFApproval,
	StatusApproved:         WFDone,
	StatusRejected:         WFRejected,
}

// PairedState returns the workflow state belonging to a document status.
func PairedState(s Status) WFState {
	return pairing[s]
}

// Paired reports whether a (document status, workflow state) combination
// is a member of the pairing table.
func Paired(s Status, w WFState) bool {
	return pairing[s] == w
}

// History action codes.
const (
	ActionSubmit           = "SUBMIT_FOR_REVIEW"
	ActionRequestSignature = "REQUEST_SIGNATURE"
	ActionSign             = "SIGN"
	ActionApprove          = "APPROVE"
	ActionReject           = "REJECT"
	ActionRevise           = "REVISE"
)
