package domain

import "strconv"

// NodeType selects the role a node plays in a workflow.
type NodeType string

const (
	NodeTypeTrigger      NodeType = "trigger"
	NodeTypeAction       NodeType = "action"
	NodeTypeCondition    NodeType = "condition"
	NodeTypeDelay        NodeType = "delay"
	NodeTypeLoop         NodeType = "loop"
	NodeTypeRouter       NodeType = "router"
	NodeTypeErrorHandler NodeType = "error-handler"
	NodeTypeAIAgent      NodeType = "ai-agent"
	NodeTypeAIMemory     NodeType = "ai-memory"
	NodeTypeAITool       NodeType = "ai-tool"
)

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool {
	switch t {
	case NodeTypeTrigger, NodeTypeAction, NodeTypeCondition, NodeTypeDelay,
		NodeTypeLoop, NodeTypeRouter, NodeTypeErrorHandler,
		NodeTypeAIAgent, NodeTypeAIMemory, NodeTypeAITool:
		return true
	}
	return false
}

// NodeStatus is derived by the node validator, except Running and Success
// which only an execution runner sets.
type NodeStatus string

const (
	StatusIncomplete NodeStatus = "incomplete"
	StatusConfigured NodeStatus = "configured"
	StatusError      NodeStatus = "error"
	StatusRunning    NodeStatus = "running"
	StatusSuccess    NodeStatus = "success"
)

// IsRuntime reports whether the status is owned by the execution runner.
func (s NodeStatus) IsRuntime() bool {
	return s == StatusRunning || s == StatusSuccess
}

// Well-known config keys.
const (
	KeyTriggerType = "triggerType"
	KeyAPIKey      = "apiKey"
	KeyOAuthToken  = "oauthToken"
	KeyAccessToken = "accessToken"
	KeyResource    = "resource"
)

// Trigger types accepted in config.triggerType.
const (
	TriggerWebhook  = "webhook"
	TriggerPoll     = "poll"
	TriggerSchedule = "schedule"
	TriggerEmail    = "email"
	TriggerManual   = "manual"
)

// TriggerTypes lists every accepted trigger type.
var TriggerTypes = []string{TriggerWebhook, TriggerPoll, TriggerSchedule, TriggerEmail, TriggerManual}

// Position is the canvas location of a node. It has no semantic meaning.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a vertex in the workflow graph.
type Node struct {
	ID   string   `json:"id" yaml:"id"`
	Name string   `json:"name,omitempty" yaml:"name,omitempty"`
	Type NodeType `json:"type" yaml:"type"`

	// AppID, TriggerID and ActionID select the schema governing Config.
	// Pure logic nodes leave them empty.
	AppID     string `json:"appId,omitempty" yaml:"appId,omitempty"`
	TriggerID string `json:"triggerId,omitempty" yaml:"triggerId,omitempty"`
	ActionID  string `json:"actionId,omitempty" yaml:"actionId,omitempty"`

	// Config is the authoritative configuration state, keyed by field name.
	Config map[string]any `json:"config" yaml:"config"`

	// Status is informational. Validators derive it from Config.
	Status NodeStatus `json:"status,omitempty" yaml:"status,omitempty"`

	Position Position `json:"position" yaml:"position"`
}

// Label returns the display name of the node, falling back to its id.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

// ConfigString returns Config[key] when it is a string.
func (n Node) ConfigString(key string) string {
	s, _ := n.Config[key].(string)
	return s
}

// Handle names the output port a connection leaves from.
type Handle string

const (
	HandleTop    Handle = "top"
	HandleBottom Handle = "bottom"
	HandleTrue   Handle = "true"
	HandleFalse  Handle = "false"
)

// Valid accepts the named handles and non-negative integer indices.
func (h Handle) Valid() bool {
	switch h {
	case HandleTop, HandleBottom, HandleTrue, HandleFalse:
		return true
	}
	n, err := strconv.Atoi(string(h))
	return err == nil && n >= 0
}
