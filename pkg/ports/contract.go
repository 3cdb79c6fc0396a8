package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwithparamesh/agentflow/pkg/domain"
)

// RunFlowStoreContract runs a suite of tests to verify that a FlowStore
// implementation adheres to the interface contract.
func RunFlowStoreContract(t *testing.T, store FlowStore) {
	ctx := context.Background()
	flowID := "contract-flow-" + time.Now().Format("20060102150405")

	sample := func(id string) *domain.Flow {
		f := domain.NewFlow(id, "Contract")
		f.Nodes = append(f.Nodes,
			domain.Node{ID: "t", Type: domain.NodeTypeTrigger, AppID: "gmail", Status: domain.StatusConfigured,
				Config: map[string]any{"triggerType": "poll", "labels": []any{"inbox"}}},
			domain.Node{ID: "a", Type: domain.NodeTypeAction, ActionID: "send", Status: domain.StatusIncomplete,
				Config: map[string]any{"text": "{{ $json.subject }}"}, Position: domain.Position{X: 10, Y: 20}},
		)
		f.Connections = append(f.Connections, domain.Connection{Source: "t", SourceHandle: domain.HandleBottom, Target: "a"})
		return f
	}

	t.Run("Save and Load", func(t *testing.T) {
		flow := sample(flowID)
		require.NoError(t, store.Save(ctx, flow), "Save should not return error")

		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err, "Load should not return error")
		assert.True(t, flow.Equal(loaded), "loaded flow should equal the saved one")
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		flow := sample(flowID)
		require.NoError(t, store.Save(ctx, flow))
		flow.Nodes[0].Config["triggerType"] = "mutated"

		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err)
		assert.Equal(t, "poll", loaded.Nodes[0].Config["triggerType"])
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		flow := sample(flowID)
		flow.Name = "Renamed"
		flow.Active = true
		require.NoError(t, store.Save(ctx, flow))

		loaded, err := store.Load(ctx, flowID)
		require.NoError(t, err)
		assert.Equal(t, "Renamed", loaded.Name)
		assert.True(t, loaded.Active)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sample(flowID)))
		require.NoError(t, store.Delete(ctx, flowID), "Delete should not return error")

		_, err := store.Load(ctx, flowID)
		assert.ErrorIs(t, err, domain.ErrFlowNotFound, "Load after Delete should return ErrFlowNotFound")
		assert.NoError(t, store.Delete(ctx, flowID), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := flowID+"-1", flowID+"-2"
		require.NoError(t, store.Save(ctx, sample(id1)))
		require.NoError(t, store.Save(ctx, sample(id2)))
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}
