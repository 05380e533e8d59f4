package models

import "strings"

// ActionKind identifies what an action node does when executed.
type ActionKind string

const (
	// KindTrigger marks the fixed trigger node. It never executes.
	KindTrigger ActionKind = "trigger"

	KindSendEmail    ActionKind = "send_email"
	KindUpdateStatus ActionKind = "update_status"
	KindCreateTask   ActionKind = "create_task"

	// KindError tags the synthetic result appended when the execution loop
	// itself fails. It never appears in a definition.
	KindError ActionKind = "error"

	// Declared by the designer palette but not wired to any execution
	// logic. Extraction drops nodes of these kinds.
	KindScheduleFollowup    ActionKind = "schedule_followup"
	KindAssignRep           ActionKind = "assign_rep"
	KindSendSMS             ActionKind = "send_sms"
	KindCreateCalendarEvent ActionKind = "create_calendar_event"
)

// executableKinds are the action kinds the executor knows how to dispatch.
var executableKinds = map[ActionKind]bool{
	KindSendEmail:    true,
	KindUpdateStatus: true,
	KindCreateTask:   true,
}

// IsExecutable reports whether the kind is wired to execution logic.
func (k ActionKind) IsExecutable() bool {
	return executableKinds[k]
}

// labelKinds maps designer label substrings to kinds, for documents written
// before nodes carried an explicit kind field.
var labelKinds = []struct {
	substring string
	kind      ActionKind
}{
	{"Send Email", KindSendEmail},
	{"Update Status", KindUpdateStatus},
	{"Create Task", KindCreateTask},
}

// KindForNode classifies a node. The explicit kind set at creation time
// wins; label substring matching is the legacy fallback. Returns false when
// the node matches nothing executable.
func KindForNode(node WorkflowNode) (ActionKind, bool) {
	if node.Data.Kind != "" {
		return node.Data.Kind, node.Data.Kind.IsExecutable()
	}

	for _, lk := range labelKinds {
		if strings.Contains(node.Data.Label, lk.substring) {
			return lk.kind, true
		}
	}

	return "", false
}

// WorkflowAction is one executable step extracted from a definition. ID is
// copied from the source node.
type WorkflowAction struct {
	ID    string     `json:"id"`
	Kind  ActionKind `json:"kind"`
	Label string     `json:"label"`
}
