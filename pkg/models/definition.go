package models

// The trigger node is fixed: every definition contains exactly one, it is
// never deletable in the designer, and it carries no executable behavior.
const (
	TriggerNodeID    = "trigger"
	TriggerNodeLabel = "Lead Created"
)

// NodeData carries the designer-visible payload of a node. Kind is set at
// node creation time; Label alone is kept for documents written by older
// designers that only recorded display text.
type NodeData struct {
	Label string     `json:"label" validate:"required,min=1"`
	Kind  ActionKind `json:"kind,omitempty"`
}

// WorkflowNode is one entry in the designer canvas.
type WorkflowNode struct {
	ID   string   `json:"id" validate:"required"`
	Data NodeData `json:"data"`
}

// IsTrigger reports whether the node is the fixed "Lead Created" trigger.
func (n *WorkflowNode) IsTrigger() bool {
	return n.ID == TriggerNodeID || n.Data.Kind == KindTrigger
}

// WorkflowEdge connects two nodes on the canvas. Edges are a designer
// artifact only; execution order never consults them.
type WorkflowEdge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}

// WorkflowDefinition is the persisted designer graph: the single current
// workflow, stored whole under a well-known key with overwrite semantics.
type WorkflowDefinition struct {
	Nodes []WorkflowNode `json:"nodes" validate:"required,min=1,dive"`
	Edges []WorkflowEdge `json:"edges"`
}

// NewDefaultDefinition returns the initial definition: the trigger node and
// nothing else. Clearing the store resets to this.
func NewDefaultDefinition() *WorkflowDefinition {
	return &WorkflowDefinition{
		Nodes: []WorkflowNode{
			{
				ID: TriggerNodeID,
				Data: NodeData{
					Label: TriggerNodeLabel,
					Kind:  KindTrigger,
				},
			},
		},
		Edges: []WorkflowEdge{},
	}
}

// TriggerNode returns the definition's trigger node, or nil if the document
// somehow lacks one.
func (d *WorkflowDefinition) TriggerNode() *WorkflowNode {
	for i := range d.Nodes {
		if d.Nodes[i].IsTrigger() {
			return &d.Nodes[i]
		}
	}

	return nil
}
