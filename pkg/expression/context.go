package expression

import (
	"time"

	"github.com/google/uuid"
)

// DataContext is the run-time data an expression resolves against.
type DataContext struct {
	// Trigger is the trigger payload.
	Trigger any `json:"trigger,omitempty"`
	// Nodes holds prior node outputs keyed by node id or name.
	Nodes map[string]any `json:"nodes,omitempty"`
	Env   map[string]string `json:"env,omitempty"`
	// Input is the current step input. When nil, $json falls back to the
	// trigger's "json" member, then to the trigger itself.
	Input any `json:"input,omitempty"`

	// Now and RandomID default to time.Now and uuid.NewString.
	Now      func() time.Time `json:"-"`
	RandomID func() string    `json:"-"`
}

func (c *DataContext) now() time.Time {
	if c != nil && c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *DataContext) randomID() string {
	if c != nil && c.RandomID != nil {
		return c.RandomID()
	}
	return uuid.NewString()
}

func (c *DataContext) currentInput() any {
	if c == nil {
		return nil
	}
	if c.Input != nil {
		return c.Input
	}
	if m, ok := c.Trigger.(map[string]any); ok {
		if v, ok := m["json"]; ok {
			return v
		}
	}
	return c.Trigger
}
