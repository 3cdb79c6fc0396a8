package editor

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/techwithparamesh/agentflow/internal/logging"
	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/graph"
)

// DefaultHistoryLimit bounds the undo stack when no limit is configured.
const DefaultHistoryLimit = 100

// Hooks are called after the flow changed, with the command name.
type Hooks struct {
	OnApply func(command string)
	OnUndo  func(command string)
	OnRedo  func(command string)
}

// Option configures a Manager.
type Option func(*Manager)

// WithHistoryLimit caps the number of undoable commands. Values below 1 are ignored.
func WithHistoryLimit(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.limit = n
		}
	}
}

// WithHooks registers change callbacks.
func WithHooks(h Hooks) Option {
	return func(m *Manager) {
		m.hooks = h
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logging.OrNop(l)
	}
}

// entry is one step of history: the name of the command the user applied and
// the command that moves the flow back across that step. Entries are never
// modified once recorded.
type entry struct {
	name   string
	revert Command
}

// Manager owns one flow and its linear command history.
// It is safe for concurrent use.
type Manager struct {
	mu        sync.Mutex
	flow      *domain.Flow
	past      []entry
	future    []entry
	selection []string
	revision  uint64

	limit  int
	hooks  Hooks
	logger *slog.Logger
}

// New creates a manager editing a copy of flow. It rejects flows that break a
// graph invariant, such as connections to missing nodes.
func New(flow *domain.Flow, opts ...Option) (*Manager, error) {
	if flow == nil {
		flow = domain.NewFlow("", "")
	}
	if err := graph.Check(flow); err != nil {
		return nil, fmt.Errorf("flow %q: %w", flow.ID, err)
	}
	m := &Manager{
		flow:   flow.Clone(),
		limit:  DefaultHistoryLimit,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Apply runs cmd and records it. A failing command leaves the flow and the
// history untouched. A successful one discards the redo stack.
func (m *Manager) Apply(cmd Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.flow.Clone()
	inverse, err := cmd.Do(next)
	if err != nil {
		m.logger.Debug("command rejected", "flow_id", m.flow.ID, "command", cmd.Name(), "error", err)
		return fmt.Errorf("%s: %w", cmd.Name(), err)
	}
	m.commit(next)
	m.past = append(m.past, entry{name: cmd.Name(), revert: inverse})
	if over := len(m.past) - m.limit; over > 0 {
		m.past = slices.Delete(m.past, 0, over)
	}
	m.future = nil

	m.logger.Debug("command applied", "flow_id", m.flow.ID, "command", cmd.Name(), "revision", m.revision)
	if m.hooks.OnApply != nil {
		m.hooks.OnApply(cmd.Name())
	}
	return nil
}

// Group applies cmds as a single undoable step.
func (m *Manager) Group(label string, cmds ...Command) error {
	return m.Apply(&Compound{Label: label, Commands: cmds})
}

// Undo reverts the most recent command. It returns false when there is
// nothing to undo or the inverse could not be applied.
func (m *Manager) Undo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.past) == 0 {
		return false
	}
	e := m.past[len(m.past)-1]
	next := m.flow.Clone()
	redo, err := e.revert.Do(next)
	if err != nil {
		m.logger.Error("undo failed", "flow_id", m.flow.ID, "command", e.name, "error", err)
		return false
	}
	m.commit(next)
	m.past = m.past[:len(m.past)-1]
	m.future = append(m.future, entry{name: e.name, revert: redo})

	m.logger.Debug("command undone", "flow_id", m.flow.ID, "command", e.name)
	if m.hooks.OnUndo != nil {
		m.hooks.OnUndo(e.name)
	}
	return true
}

// Redo re-applies the most recently undone command.
func (m *Manager) Redo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.future) == 0 {
		return false
	}
	e := m.future[len(m.future)-1]
	next := m.flow.Clone()
	undo, err := e.revert.Do(next)
	if err != nil {
		m.logger.Error("redo failed", "flow_id", m.flow.ID, "command", e.name, "error", err)
		return false
	}
	m.commit(next)
	m.future = m.future[:len(m.future)-1]
	m.past = append(m.past, entry{name: e.name, revert: undo})

	m.logger.Debug("command redone", "flow_id", m.flow.ID, "command", e.name)
	if m.hooks.OnRedo != nil {
		m.hooks.OnRedo(e.name)
	}
	return true
}

func (m *Manager) commit(next *domain.Flow) {
	m.flow = next
	m.revision++
	m.selection = slices.DeleteFunc(m.selection, func(id string) bool {
		return !next.HasNode(id)
	})
}

// CanUndo reports whether Undo has something to revert.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

// CanRedo reports whether Redo has something to re-apply.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// Flow returns a copy of the current flow.
func (m *Manager) Flow() *domain.Flow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flow.Clone()
}

// Revision increases by one on every applied, undone or redone command.
// Hosts use it to discard stale asynchronous results.
func (m *Manager) Revision() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revision
}

// Select replaces the selection. Unknown ids are dropped.
// Selection is not part of the undo history.
func (m *Manager) Select(ids ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selection = m.selection[:0]
	for _, id := range ids {
		if m.flow.HasNode(id) && !slices.Contains(m.selection, id) {
			m.selection = append(m.selection, id)
		}
	}
}

// Selection returns the selected node ids.
func (m *Manager) Selection() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.selection)
}

// UpdateConfig is the panel entry point: it sets nodeID's config key to value,
// or removes the key when value is nil.
func (m *Manager) UpdateConfig(nodeID, key string, value any) error {
	return m.Apply(&UpdateConfig{NodeID: nodeID, Key: key, Value: value, Delete: value == nil})
}
