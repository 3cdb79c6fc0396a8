package schema

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry is the read-only catalog of app schemas consumed by validators.
type Registry interface {
	GetApp(appID string) (AppSchema, bool)
	GetResource(appID, resourceID string) (Resource, bool)
	GetOperation(appID, resourceID, operationID string) (Operation, bool)
	GetTrigger(appID, triggerID string) (TriggerSchema, bool)
	// FindOperation searches the app's resources in order for the operation.
	FindOperation(appID, operationID string) (Resource, Operation, bool)
	SearchApps(query string) []AppSchema
}

// Catalog is an in-memory Registry. Safe for concurrent use.
type Catalog struct {
	mu   sync.RWMutex
	apps map[string]AppSchema
}

var _ Registry = (*Catalog)(nil)

// NewCatalog creates a catalog holding the given apps.
func NewCatalog(apps ...AppSchema) (*Catalog, error) {
	c := &Catalog{apps: make(map[string]AppSchema)}
	for _, app := range apps {
		if err := c.Register(app); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Register adds an app. An app with the same id is overwritten.
func (c *Catalog) Register(app AppSchema) error {
	if app.ID == "" {
		return fmt.Errorf("app schema missing id")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apps[app.ID] = app
	return nil
}

// Apps returns every app sorted by id.
func (c *Catalog) Apps() []AppSchema {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]AppSchema, 0, len(c.apps))
	for _, app := range c.apps {
		out = append(out, app)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Catalog) GetApp(appID string) (AppSchema, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	app, ok := c.apps[appID]
	return app, ok
}

func (c *Catalog) GetResource(appID, resourceID string) (Resource, bool) {
	app, ok := c.GetApp(appID)
	if !ok {
		return Resource{}, false
	}
	for _, r := range app.Resources {
		if r.ID == resourceID {
			return r, true
		}
	}
	return Resource{}, false
}

func (c *Catalog) GetOperation(appID, resourceID, operationID string) (Operation, bool) {
	r, ok := c.GetResource(appID, resourceID)
	if !ok {
		return Operation{}, false
	}
	for _, op := range r.Operations {
		if op.ID == operationID {
			return op, true
		}
	}
	return Operation{}, false
}

func (c *Catalog) GetTrigger(appID, triggerID string) (TriggerSchema, bool) {
	app, ok := c.GetApp(appID)
	if !ok {
		return TriggerSchema{}, false
	}
	for _, t := range app.Triggers {
		if t.ID == triggerID {
			return t, true
		}
	}
	return TriggerSchema{}, false
}

func (c *Catalog) FindOperation(appID, operationID string) (Resource, Operation, bool) {
	app, ok := c.GetApp(appID)
	if !ok {
		return Resource{}, Operation{}, false
	}
	for _, r := range app.Resources {
		for _, op := range r.Operations {
			if op.ID == operationID {
				return r, op, true
			}
		}
	}
	return Resource{}, Operation{}, false
}

// SearchApps matches the query case-insensitively against id, name and category.
// An empty query returns every app.
func (c *Catalog) SearchApps(query string) []AppSchema {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []AppSchema
	for _, app := range c.Apps() {
		if q == "" ||
			strings.Contains(strings.ToLower(app.ID), q) ||
			strings.Contains(strings.ToLower(app.Name), q) ||
			strings.Contains(strings.ToLower(app.Category), q) {
			out = append(out, app)
		}
	}
	return out
}
