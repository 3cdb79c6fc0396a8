package agentflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/techwithparamesh/agentflow/internal/catalog"
	"github.com/techwithparamesh/agentflow/internal/logging"
	"github.com/techwithparamesh/agentflow/internal/metrics"
	"github.com/techwithparamesh/agentflow/pkg/adapters/memory"
	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/editor"
	"github.com/techwithparamesh/agentflow/pkg/expression"
	"github.com/techwithparamesh/agentflow/pkg/ports"
	"github.com/techwithparamesh/agentflow/pkg/schema"
	"github.com/techwithparamesh/agentflow/pkg/validation"
)

// lockTTL bounds how long a save may hold the per-flow lock.
const lockTTL = 10 * time.Second

// Workspace is the high-level entry point of the library. It ties the schema
// registry, a flow store and one editor per open flow together.
type Workspace struct {
	registry     schema.Registry
	store        ports.FlowStore
	locker       ports.DistributedLocker
	metrics      *metrics.Metrics
	needsAuth    []string
	historyLimit int
	logger       *slog.Logger

	mu       sync.Mutex
	managers map[string]*editor.Manager
}

// Option defines a functional option for configuring the Workspace.
type Option func(*Workspace)

// WithRegistry sets the schema registry. The default is the embedded catalog.
func WithRegistry(r schema.Registry) Option {
	return func(w *Workspace) {
		w.registry = r
	}
}

// WithStore sets where flows are persisted. The default keeps them in memory.
func WithStore(s ports.FlowStore) Option {
	return func(w *Workspace) {
		w.store = s
	}
}

// WithLocker serializes saves of the same flow across processes. The default
// serializes them within this process only.
func WithLocker(l ports.DistributedLocker) Option {
	return func(w *Workspace) {
		w.locker = l
	}
}

// WithMetrics records editor and validation activity.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workspace) {
		w.metrics = m
	}
}

// WithNeedsAuth replaces the list of apps whose triggers require credentials.
func WithNeedsAuth(appIDs ...string) Option {
	return func(w *Workspace) {
		w.needsAuth = appIDs
	}
}

// WithHistoryLimit bounds the undo history of every editor.
func WithHistoryLimit(n int) Option {
	return func(w *Workspace) {
		w.historyLimit = n
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Workspace) {
		w.logger = logger
	}
}

// New creates a Workspace.
func New(opts ...Option) (*Workspace, error) {
	w := &Workspace{managers: make(map[string]*editor.Manager)}
	for _, opt := range opts {
		opt(w)
	}
	if w.registry == nil {
		c, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		w.registry = c
	}
	if w.store == nil {
		w.store = memory.NewStore()
	}
	if w.locker == nil {
		w.locker = memory.NewLocker()
	}
	w.logger = logging.OrNop(w.logger)
	return w, nil
}

// Registry returns the schema registry in use.
func (w *Workspace) Registry() schema.Registry {
	return w.registry
}

func (w *Workspace) newManager(flow *domain.Flow) (*editor.Manager, error) {
	opts := []editor.Option{
		editor.WithLogger(w.logger.With("flow_id", flow.ID)),
		editor.WithHistoryLimit(w.historyLimit),
	}
	if w.metrics != nil {
		opts = append(opts, editor.WithHooks(w.metrics.EditorHooks()))
	}
	return editor.New(flow, opts...)
}

// Create stores a new empty flow and opens it.
func (w *Workspace) Create(ctx context.Context, name string) (*editor.Manager, error) {
	flow := domain.NewFlow(uuid.NewString(), name)
	m, err := w.newManager(flow)
	if err != nil {
		return nil, err
	}
	if err := w.store.Save(ctx, flow); err != nil {
		return nil, fmt.Errorf("failed to create flow: %w", err)
	}
	w.mu.Lock()
	w.managers[flow.ID] = m
	w.mu.Unlock()
	w.logger.Info("flow created", "flow_id", flow.ID, "name", name)
	return m, nil
}

// Open returns the editor of a flow, loading it from the store on first use.
// Later calls return the same editor. A stored flow that breaks a graph
// invariant is not opened.
func (w *Workspace) Open(ctx context.Context, id string) (*editor.Manager, error) {
	w.mu.Lock()
	m, ok := w.managers[id]
	w.mu.Unlock()
	if ok {
		return m, nil
	}

	flow, err := w.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	loaded, err := w.newManager(flow)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if m, ok := w.managers[id]; ok {
		return m, nil
	}
	w.managers[id] = loaded
	return loaded, nil
}

// Put replaces a flow wholesale and persists it. The flow's editor history
// restarts. Flows that break a graph invariant are rejected before anything
// is stored.
func (w *Workspace) Put(ctx context.Context, flow *domain.Flow) (*editor.Manager, error) {
	if flow == nil || flow.ID == "" {
		return nil, fmt.Errorf("flow id cannot be empty")
	}
	m, err := w.newManager(flow)
	if err != nil {
		return nil, err
	}
	if err := w.persist(ctx, flow); err != nil {
		return nil, err
	}
	w.mu.Lock()
	w.managers[flow.ID] = m
	w.mu.Unlock()
	return m, nil
}

// Save persists the current state of an open flow.
func (w *Workspace) Save(ctx context.Context, id string) error {
	m, err := w.Open(ctx, id)
	if err != nil {
		return err
	}
	return w.persist(ctx, m.Flow())
}

func (w *Workspace) persist(ctx context.Context, flow *domain.Flow) error {
	unlock, err := w.locker.Lock(ctx, flow.ID, lockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock flow %q: %w", flow.ID, err)
	}
	defer func() {
		if err := unlock(ctx); err != nil {
			w.logger.Warn("failed to release flow lock", "flow_id", flow.ID, "error", err)
		}
	}()
	if err := w.store.Save(ctx, flow); err != nil {
		return fmt.Errorf("failed to save flow %q: %w", flow.ID, err)
	}
	w.logger.Debug("flow saved", "flow_id", flow.ID)
	return nil
}

// List returns the ids of every stored flow.
func (w *Workspace) List(ctx context.Context) ([]string, error) {
	ids, err := w.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes a flow from the store and closes its editor.
func (w *Workspace) Delete(ctx context.Context, id string) error {
	w.mu.Lock()
	delete(w.managers, id)
	w.mu.Unlock()
	return w.store.Delete(ctx, id)
}

// SchemaLookup resolves node fields from the workspace registry.
func (w *Workspace) SchemaLookup() validation.SchemaLookup {
	return validation.RegistryLookup(w.registry)
}

// Validate runs the workflow checks against the workspace registry.
func (w *Workspace) Validate(flow *domain.Flow) validation.WorkflowValidationResult {
	opts := []validation.Option{validation.WithSchemaLookup(w.SchemaLookup())}
	if w.needsAuth != nil {
		opts = append(opts, validation.WithNeedsAuth(w.needsAuth...))
	}
	if w.metrics != nil {
		opts = append(opts, validation.WithObserver(w.metrics.ValidationObserver()))
	}
	return validation.ValidateWorkflow(flow, opts...)
}

// Panel returns the configuration panel view of one node.
func (w *Workspace) Panel(flow *domain.Flow, nodeID string) (validation.NodeView, error) {
	n := flow.Node(nodeID)
	if n == nil {
		return validation.NodeView{}, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, nodeID)
	}
	return validation.Panel(*n, w.SchemaLookup())
}

// Activate switches a flow on after validating it. Activation is refused with
// domain.ErrNotExecutable unless the flow can execute.
func (w *Workspace) Activate(ctx context.Context, id string) (validation.WorkflowValidationResult, error) {
	m, err := w.Open(ctx, id)
	if err != nil {
		return validation.WorkflowValidationResult{}, err
	}
	res := w.Validate(m.Flow())
	if !res.CanExecute {
		w.logger.Info("activation refused", "flow_id", id, "stage", res.Stage, "errors", len(res.Errors), "warnings", len(res.Warnings))
		return res, fmt.Errorf("%w: stage %s", domain.ErrNotExecutable, res.Stage)
	}
	if err := m.Apply(&editor.SetActive{Active: true}); err != nil {
		return res, err
	}
	if err := w.Save(ctx, id); err != nil {
		return res, err
	}
	w.logger.Info("flow activated", "flow_id", id)
	return res, nil
}

// Deactivate switches a flow off.
func (w *Workspace) Deactivate(ctx context.Context, id string) error {
	m, err := w.Open(ctx, id)
	if err != nil {
		return err
	}
	if err := m.Apply(&editor.SetActive{Active: false}); err != nil {
		return err
	}
	return w.Save(ctx, id)
}

// Resolve materializes a field value against a data context.
func (w *Workspace) Resolve(template string, data *expression.DataContext) (expression.Result, error) {
	return expression.Resolve(template, data)
}
