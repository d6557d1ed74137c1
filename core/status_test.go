package core_test

import (
	"testing"

	"github.com/ephraimraxy/docflow/core"
)

var allStatuses = []core.Status{
	core.StatusDraft,
	core.StatusInReview,
	core.StatusPendingSignature,
	core.StatusInApproval,
	core.StatusApproved,
	core.StatusRejected,
}

func TestPairingIsBijective(t *testing.T) {

	var seen = make(map[core.WFState]core.Status)
	for _, status := range allStatuses {
		var state = core.PairedState(status)
		if !state.Valid() {
			t.Errorf("status %s pairs with invalid workflow state %q", status, state)
		}
		if other, ok := seen[state]; ok {
			t.Errorf("statuses %s and %s both pair with %s", other, status, state)
		}
		seen[state] = status

		if !core.Paired(status, state) {
			t.Errorf("Paired(%s, %s) = false", status, state)
		}
	}

	if len(seen) != len(allStatuses) {
		t.Errorf("expected %d distinct workflow states, got %d", len(allStatuses), len(seen))
	}
}

func TestPairedRejectsMismatch(t *testing.T) {
	if core.Paired(core.StatusDraft, core.WFDone) {
		t.Error("DRAFT must not pair with DONE")
	}
	if core.Paired(core.StatusApproved, core.WFReview) {
		t.Error("APPROVED must not pair with REVIEW")
	}
}

func TestEditable(t *testing.T) {
	for _, status := range allStatuses {
		var want = status == core.StatusDraft || status == core.StatusRejected
		if got := status.Editable(); got != want {
			t.Errorf("%s.Editable() = %v, want %v", status, got, want)
		}
	}
}

func TestStatusValid(t *testing.T) {
	for _, status := range allStatuses {
		if !status.Valid() {
			t.Errorf("%s.Valid() = false", status)
		}
	}
	if core.Status("ARCHIVED").Valid() {
		t.Error(`Status("ARCHIVED").Valid() = true`)
	}
}
