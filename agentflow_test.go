package agentflow_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techwithparamesh/agentflow"
	"github.com/techwithparamesh/agentflow/internal/metrics"
	"github.com/techwithparamesh/agentflow/pkg/adapters/memory"
	"github.com/techwithparamesh/agentflow/pkg/adapters/redis"
	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/editor"
	"github.com/techwithparamesh/agentflow/pkg/expression"
	"github.com/techwithparamesh/agentflow/pkg/validation"
)

// buildReady fills an open flow with a webhook trigger feeding an HTTP call.
func buildReady(t *testing.T, ed *editor.Manager) {
	t.Helper()
	require.NoError(t, ed.Group("build",
		&editor.AddNode{Node: domain.Node{
			ID: "hook", Type: domain.NodeTypeTrigger, AppID: "webhook", TriggerID: "incoming",
			Config: map[string]any{"triggerType": "webhook", "path": "/orders"},
		}},
		&editor.AddNode{Node: domain.Node{
			ID: "call", Type: domain.NodeTypeAction, AppID: "http", ActionID: "call",
			Config: map[string]any{"url": "https://example.com/{{ $json.id }}"},
		}},
		&editor.AddConnection{Connection: domain.Connection{Source: "hook", SourceHandle: domain.HandleBottom, Target: "call"}},
	))
}

func TestWorkspace_CreateOpenSave(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ws, err := agentflow.New(agentflow.WithStore(store))
	require.NoError(t, err)

	ed, err := ws.Create(ctx, "Orders")
	require.NoError(t, err)
	id := ed.Flow().ID
	require.NotEmpty(t, id)

	again, err := ws.Open(ctx, id)
	require.NoError(t, err)
	assert.Same(t, ed, again)

	buildReady(t, ed)

	stored, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, stored.Nodes, "edits are not persisted before Save")

	require.NoError(t, ws.Save(ctx, id))
	stored, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, stored.Nodes, 2)
	assert.Equal(t, "Orders", stored.Name)

	ids, err := ws.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}

func TestWorkspace_OpenUnknown(t *testing.T) {
	ws, err := agentflow.New()
	require.NoError(t, err)

	_, err = ws.Open(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestWorkspace_OpenLoadsFromStore(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore(domain.NewFlow("seeded", "Seeded"))
	ws, err := agentflow.New(agentflow.WithStore(store))
	require.NoError(t, err)

	ed, err := ws.Open(ctx, "seeded")
	require.NoError(t, err)
	assert.Equal(t, "Seeded", ed.Flow().Name)
}

// gatedStore holds Load of one id until gate is closed.
type gatedStore struct {
	*memory.Store
	id      string
	entered chan struct{}
	gate    chan struct{}
}

func (s *gatedStore) Load(ctx context.Context, id string) (*domain.Flow, error) {
	if id == s.id {
		close(s.entered)
		<-s.gate
	}
	return s.Store.Load(ctx, id)
}

func TestWorkspace_OpenDoesNotBlockOnSlowLoad(t *testing.T) {
	ctx := context.Background()
	store := &gatedStore{
		Store:   memory.NewStore(domain.NewFlow("slow", "Slow"), domain.NewFlow("fast", "Fast")),
		id:      "slow",
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	ws, err := agentflow.New(agentflow.WithStore(store))
	require.NoError(t, err)

	slow := make(chan *editor.Manager, 1)
	go func() {
		ed, err := ws.Open(ctx, "slow")
		assert.NoError(t, err)
		slow <- ed
	}()
	<-store.entered

	fast := make(chan error, 1)
	go func() {
		_, err := ws.Open(ctx, "fast")
		fast <- err
	}()
	select {
	case err := <-fast:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Open of another flow blocked behind a slow load")
	}

	close(store.gate)
	ed := <-slow
	again, err := ws.Open(ctx, "slow")
	require.NoError(t, err)
	assert.Same(t, ed, again)
}

func TestWorkspace_ValidateUsesCatalog(t *testing.T) {
	ctx := context.Background()
	ws, err := agentflow.New()
	require.NoError(t, err)

	ed, err := ws.Create(ctx, "Orders")
	require.NoError(t, err)
	assert.Equal(t, validation.StageSetup, ws.Validate(ed.Flow()).Stage)

	buildReady(t, ed)
	res := ws.Validate(ed.Flow())
	assert.Equal(t, validation.StageReady, res.Stage, "issues: %v", res.Issues)
	assert.True(t, res.CanExecute)

	require.NoError(t, ed.UpdateConfig("call", "url", nil))
	res = ws.Validate(ed.Flow())
	assert.Equal(t, validation.StageConfigure, res.Stage)
	assert.True(t, res.IsValid)
	assert.False(t, res.CanExecute)
}

func TestWorkspace_Panel(t *testing.T) {
	ctx := context.Background()
	ws, err := agentflow.New()
	require.NoError(t, err)
	ed, err := ws.Create(ctx, "Orders")
	require.NoError(t, err)
	buildReady(t, ed)

	view, err := ws.Panel(ed.Flow(), "call")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfigured, view.Status)
	assert.Contains(t, view.ActiveFields, "url")
	assert.NotContains(t, view.ActiveFields, "body", "body only shows for POST and PUT")

	_, err = ws.Panel(ed.Flow(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNodeNotFound)
}

func TestWorkspace_Activate(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ws, err := agentflow.New(agentflow.WithStore(store))
	require.NoError(t, err)
	ed, err := ws.Create(ctx, "Orders")
	require.NoError(t, err)
	id := ed.Flow().ID

	res, err := ws.Activate(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotExecutable)
	assert.Equal(t, validation.StageSetup, res.Stage)
	assert.False(t, ed.Flow().Active)

	buildReady(t, ed)
	_, err = ws.Activate(ctx, id)
	require.NoError(t, err)
	assert.True(t, ed.Flow().Active)

	stored, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.True(t, stored.Active)

	require.NoError(t, ws.Deactivate(ctx, id))
	stored, err = store.Load(ctx, id)
	require.NoError(t, err)
	assert.False(t, stored.Active)
}

func TestWorkspace_PutResetsHistory(t *testing.T) {
	ctx := context.Background()
	ws, err := agentflow.New()
	require.NoError(t, err)
	ed, err := ws.Create(ctx, "Orders")
	require.NoError(t, err)
	buildReady(t, ed)
	require.True(t, ed.CanUndo())

	replaced := ed.Flow()
	replaced.Name = "Renamed"
	next, err := ws.Put(ctx, replaced)
	require.NoError(t, err)
	assert.False(t, next.CanUndo())

	opened, err := ws.Open(ctx, replaced.ID)
	require.NoError(t, err)
	assert.Same(t, next, opened)
	assert.Equal(t, "Renamed", opened.Flow().Name)

	_, err = ws.Put(ctx, &domain.Flow{})
	assert.Error(t, err)
}

func TestWorkspace_PutRejectsBrokenFlow(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	ws, err := agentflow.New(agentflow.WithStore(store))
	require.NoError(t, err)

	broken := domain.NewFlow("wf-x", "Broken")
	broken.Nodes = []domain.Node{{ID: "t", Type: domain.NodeTypeTrigger}}
	broken.Connections = []domain.Connection{{Source: "t", SourceHandle: domain.HandleBottom, Target: "ghost"}}

	_, err = ws.Put(ctx, broken)
	assert.ErrorIs(t, err, domain.ErrInvalidConnection)

	_, err = store.Load(ctx, "wf-x")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
	_, err = ws.Open(ctx, "wf-x")
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestWorkspace_OpenRejectsBrokenStoredFlow(t *testing.T) {
	broken := domain.NewFlow("wf-x", "Broken")
	broken.Nodes = []domain.Node{{ID: "a", Type: domain.NodeTypeAction}, {ID: "a", Type: domain.NodeTypeAction}}
	ws, err := agentflow.New(agentflow.WithStore(memory.NewStore(broken)))
	require.NoError(t, err)

	_, err = ws.Open(context.Background(), "wf-x")
	assert.ErrorIs(t, err, domain.ErrDuplicateNode)
}

func TestWorkspace_Delete(t *testing.T) {
	ctx := context.Background()
	ws, err := agentflow.New()
	require.NoError(t, err)
	ed, err := ws.Create(ctx, "Temp")
	require.NoError(t, err)
	id := ed.Flow().ID

	require.NoError(t, ws.Delete(ctx, id))
	_, err = ws.Open(ctx, id)
	assert.ErrorIs(t, err, domain.ErrFlowNotFound)
}

func TestWorkspace_NeedsAuthOverride(t *testing.T) {
	ctx := context.Background()
	ws, err := agentflow.New(agentflow.WithNeedsAuth("webhook"))
	require.NoError(t, err)
	ed, err := ws.Create(ctx, "Orders")
	require.NoError(t, err)
	buildReady(t, ed)

	res := ws.Validate(ed.Flow())
	require.NotEmpty(t, res.Issues)
	assert.Equal(t, domain.KindMissingAuthentication, res.Issues[0].Kind)
	assert.Equal(t, validation.StageSetup, res.Stage)
}

func TestWorkspace_Resolve(t *testing.T) {
	ws, err := agentflow.New()
	require.NoError(t, err)

	res, err := ws.Resolve("Order {{ $json.id }}", &expression.DataContext{
		Trigger: map[string]any{"json": map[string]any{"id": 42}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Order 42", res.Value)
	assert.True(t, res.Resolved())
}

func TestWorkspace_Metrics(t *testing.T) {
	ctx := context.Background()
	m := metrics.New()
	ws, err := agentflow.New(agentflow.WithMetrics(m))
	require.NoError(t, err)
	ed, err := ws.Create(ctx, "Orders")
	require.NoError(t, err)
	buildReady(t, ed)
	ws.Validate(ed.Flow())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `agentflow_editor_commands_total{command="build",op="apply"} 1`)
	assert.Contains(t, body, `agentflow_workflow_validations_total{stage="ready"} 1`)
}

func TestWorkspace_RedisStoreAndLocker(t *testing.T) {
	ctx := context.Background()
	srv := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := redis.NewFromClient(client, redis.WithTTL(time.Hour))
	ws, err := agentflow.New(
		agentflow.WithStore(store),
		agentflow.WithLocker(redis.NewLocker(client, redis.DefaultPrefix)),
	)
	require.NoError(t, err)

	ed, err := ws.Create(ctx, "Orders")
	require.NoError(t, err)
	buildReady(t, ed)
	require.NoError(t, ws.Save(ctx, ed.Flow().ID))

	stored, err := store.Load(ctx, ed.Flow().ID)
	require.NoError(t, err)
	assert.True(t, stored.Equal(ed.Flow()))
}
