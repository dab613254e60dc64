package domain

import "testing"

func TestTicketPatchApply(t *testing.T) {
	agent := "agent-1"
	ticket := Ticket{
		Status:     TicketStatusOpen,
		Priority:   TicketPriorityLow,
		AssigneeID: &agent,
	}

	status := TicketStatusPending
	patched := TicketPatch{Status: &status}.Apply(ticket)
	if patched.Status != TicketStatusPending {
		t.Fatalf("status not applied")
	}
	if patched.AssigneeID == nil || *patched.AssigneeID != agent {
		t.Fatalf("untouched field must survive the patch")
	}

	// SetAssignee with a nil pointer is an explicit unassign, not a no-op.
	cleared := TicketPatch{SetAssignee: true}.Apply(ticket)
	if cleared.AssigneeID != nil {
		t.Fatalf("explicit unassign should clear the assignee")
	}

	untouched := TicketPatch{}.Apply(ticket)
	if untouched.AssigneeID == nil {
		t.Fatalf("zero patch must not clear the assignee")
	}
	if !(TicketPatch{}).IsZero() {
		t.Fatalf("zero patch should report IsZero")
	}
}

func TestFormatEmailSubject(t *testing.T) {
	if got := FormatEmailSubject(42, "printer jammed"); got != "[Ticket #42] printer jammed" {
		t.Fatalf("got %q", got)
	}
}
