// Package workflow contains the action extractor and the sequential executor
// that runs extracted actions against a lead.
package workflow

import (
	"log/slog"

	"github.com/piazza-crm/leadflow/pkg/models"
)

// ExtractActions projects a definition into the ordered action list the
// executor consumes. The trigger node is filtered out, every remaining node
// is classified by its explicit kind (or its label for legacy documents),
// and unrecognized nodes are dropped with a log line. Edges are never
// consulted: membership, not connectivity, determines what runs, and the
// output order is the definition's node order.
func ExtractActions(def *models.WorkflowDefinition, logger *slog.Logger) []models.WorkflowAction {
	actions := make([]models.WorkflowAction, 0, len(def.Nodes))

	for _, node := range def.Nodes {
		if node.IsTrigger() {
			continue
		}

		kind, ok := models.KindForNode(node)
		if !ok {
			logger.Warn("Dropping unrecognized workflow node",
				"node_id", node.ID,
				"label", node.Data.Label,
				"kind", node.Data.Kind)

			continue
		}

		actions = append(actions, models.WorkflowAction{
			ID:    node.ID,
			Kind:  kind,
			Label: node.Data.Label,
		})
	}

	return actions
}
