package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwithparamesh/agentflow/pkg/domain"
)

func TestBuilder_SimpleFlow(t *testing.T) {
	b := New("wf-1", "Inbox to Slack")

	b.Trigger("mail", "gmail").
		Name("New Email").
		On("new_email").
		Set("triggerType", "poll").
		At(10, 20).
		Go("check")

	b.Logic("check", domain.NodeTypeCondition).
		Set("conditions", []any{"{{ $json.important }}"}).
		Branch(domain.HandleTrue, "notify")

	b.Action("notify", "slack", "send").
		ConfigMap(map[string]any{"target": "channel", "text": "{{ $json.subject }}"})

	flow, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "wf-1", flow.ID)
	assert.Equal(t, "Inbox to Slack", flow.Name)
	require.Len(t, flow.Nodes, 3)
	assert.Equal(t, []string{"mail", "check", "notify"}, []string{flow.Nodes[0].ID, flow.Nodes[1].ID, flow.Nodes[2].ID})

	mail := flow.Node("mail")
	assert.Equal(t, domain.NodeTypeTrigger, mail.Type)
	assert.Equal(t, "new_email", mail.TriggerID)
	assert.Equal(t, "New Email", mail.Name)
	assert.Equal(t, domain.Position{X: 10, Y: 20}, mail.Position)
	assert.Equal(t, domain.StatusIncomplete, mail.Status)

	notify := flow.Node("notify")
	assert.Equal(t, "send", notify.ActionID)
	assert.Equal(t, "channel", notify.Config["target"])

	assert.Equal(t, []domain.Connection{
		{Source: "mail", SourceHandle: domain.HandleBottom, Target: "check"},
		{Source: "check", SourceHandle: domain.HandleTrue, Target: "notify"},
	}, flow.Connections)
}

func TestBuilder_LogicReturnsExisting(t *testing.T) {
	b := New("wf", "")
	first := b.Trigger("t", "webhook")
	second := b.Logic("t", domain.NodeTypeAction)

	assert.Same(t, first, second)
	assert.Equal(t, domain.NodeTypeTrigger, second.Build().Type)
}

func TestBuilder_RejectsInvalidGraph(t *testing.T) {
	tests := []struct {
		name  string
		build func(b *Builder)
	}{
		{"unknown target", func(b *Builder) {
			b.Trigger("t", "webhook").Then("ghost")
		}},
		{"cycle", func(b *Builder) {
			b.Trigger("t", "webhook").Then("a")
			b.Action("a", "http", "call").Then("b")
			b.Action("b", "http", "call").Then("a")
		}},
		{"into trigger", func(b *Builder) {
			b.Trigger("t", "webhook")
			b.Action("a", "http", "call").Then("t")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("wf", "")
			tt.build(b)
			_, err := b.Build()
			assert.ErrorIs(t, err, domain.ErrInvalidConnection)
		})
	}
}

func TestBuilder_RejectsInvalidNode(t *testing.T) {
	b := New("wf", "")
	b.Logic("x", domain.NodeType("teleport"))

	_, err := b.Build()
	assert.ErrorIs(t, err, domain.ErrInvalidNode)
}

func TestNodeBuilder_BuildReturnsCopy(t *testing.T) {
	b := New("wf", "")
	nb := b.Action("a", "http", "call").Config("url", "https://example.com")

	n := nb.Build()
	n.Config["url"] = "changed"

	assert.Equal(t, "https://example.com", nb.Build().Config["url"])
}
