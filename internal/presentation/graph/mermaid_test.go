package graph_test

import (
	"strings"
	"testing"

	"github.com/techwithparamesh/agentflow/internal/presentation/graph"
	"github.com/techwithparamesh/agentflow/pkg/domain"
)

func TestGenerateMermaid(t *testing.T) {
	flow := &domain.Flow{
		ID: "f",
		Nodes: []domain.Node{
			{ID: "on-email", Name: "New \"Email\"", Type: domain.NodeTypeTrigger, AppID: "gmail"},
			{ID: "check", Type: domain.NodeTypeCondition},
			{ID: "notify.slack", Type: domain.NodeTypeAction},
			{ID: "wait", Type: domain.NodeTypeDelay},
			{ID: "agent", Type: domain.NodeTypeAIAgent},
		},
		Connections: []domain.Connection{
			{Source: "on-email", SourceHandle: domain.HandleBottom, Target: "check"},
			{Source: "check", SourceHandle: domain.HandleTrue, Target: "notify.slack"},
			{Source: "check", SourceHandle: domain.HandleFalse, Target: "wait"},
		},
	}

	tests := []struct {
		name     string
		overlay  *graph.Overlay
		contains []string
		absent   []string
	}{
		{
			name: "Shapes and Labels",
			contains: []string{
				"graph TD",
				`on_email(("New 'Email' <br/> gmail"))`,
				`check{"check"}`,
				`notify_slack["notify.slack"]`,
				`wait[/"wait"/]`,
				`agent[["agent"]]`,
			},
			absent: []string{"classDef"},
		},
		{
			name: "Edges",
			contains: []string{
				"on_email --> check",
				`check -- "true" --> notify_slack`,
				`check -- "false" --> wait`,
			},
		},
		{
			name:    "Status Overlay",
			overlay: &graph.Overlay{Status: map[string]domain.NodeStatus{"check": domain.StatusError, "wait": domain.StatusConfigured}},
			contains: []string{
				"classDef error",
				"class check error;",
				"class wait configured;",
			},
			absent: []string{"class agent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(flow, tt.overlay)
			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("expected output to contain %q, got:\n%s", s, got)
				}
			}
			for _, s := range tt.absent {
				if strings.Contains(got, s) {
					t.Errorf("expected output not to contain %q, got:\n%s", s, got)
				}
			}
		})
	}
}
