package graph

import (
	"fmt"
	"strings"

	"github.com/techwithparamesh/agentflow/pkg/domain"
)

// Overlay carries per-node state to colour on the chart, typically the
// statuses derived by the node validator.
type Overlay struct {
	Status map[string]domain.NodeStatus
}

// GenerateMermaid produces a Mermaid flowchart for the flow.
// Shapes follow the node role:
// - Trigger: ((Circle))
// - Condition/Router: {Rhombus}
// - Delay/Loop: [/Parallelogram/]
// - AI nodes: [[Subroutine]]
// - Default: [Rectangle]
// Branch handles (true, false, numbered outputs) label their edges.
func GenerateMermaid(flow *domain.Flow, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range flow.Nodes {
		opener, closer := shape(node.Type)
		label := escape(node.Label())
		if node.AppID != "" {
			label = fmt.Sprintf("%s <br/> %s", label, escape(node.AppID))
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(node.ID), opener, label, closer)
	}

	for _, c := range flow.Connections {
		arrow := "-->"
		switch c.SourceHandle {
		case domain.HandleBottom, domain.HandleTop, "":
		default:
			arrow = fmt.Sprintf("-- \"%s\" -->", escape(string(c.SourceHandle)))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(c.Source), arrow, sanitizeMermaidID(c.Target))
	}

	if overlay != nil && len(overlay.Status) > 0 {
		sb.WriteString("\n    %% Status Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef configured fill:#e8f5e9,stroke:#2e7d32,color:#000;\n")
		sb.WriteString("    classDef incomplete fill:#fff8e1,stroke:#f9a825,color:#000;\n")
		sb.WriteString("    classDef error fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef running fill:#e1f5fe,stroke:#01579b,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef success fill:#c8e6c9,stroke:#1b5e20,color:#000;\n")
		for _, node := range flow.Nodes {
			if st, ok := overlay.Status[node.ID]; ok && st != "" {
				fmt.Fprintf(&sb, "    class %s %s;\n", sanitizeMermaidID(node.ID), st)
			}
		}
	}

	return sb.String()
}

func shape(t domain.NodeType) (string, string) {
	switch t {
	case domain.NodeTypeTrigger:
		return "((", "))"
	case domain.NodeTypeCondition, domain.NodeTypeRouter:
		return "{", "}"
	case domain.NodeTypeDelay, domain.NodeTypeLoop:
		return "[/", "/]"
	case domain.NodeTypeAIAgent, domain.NodeTypeAIMemory, domain.NodeTypeAITool:
		return "[[", "]]"
	}
	return "[", "]"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
