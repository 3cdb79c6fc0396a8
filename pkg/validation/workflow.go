package validation

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/expression"
	"github.com/techwithparamesh/agentflow/pkg/graph"
)

// Stage is how far a workflow has progressed toward being executable.
type Stage string

const (
	StageSetup     Stage = "setup"
	StageConfigure Stage = "configure"
	StageReady     Stage = "ready"
)

// Rank orders stages: setup < configure < ready.
func (s Stage) Rank() int {
	switch s {
	case StageConfigure:
		return 1
	case StageReady:
		return 2
	}
	return 0
}

// Severity separates blocking problems from advisory ones.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one structured workflow problem. Errors and Warnings carry the
// same problems as plain messages.
type Issue struct {
	Severity Severity         `json:"severity"`
	Kind     domain.ErrorKind `json:"kind"`
	NodeID   string           `json:"nodeId,omitempty"`
	Message  string           `json:"message"`
}

// WorkflowValidationResult summarizes the readiness of a flow.
type WorkflowValidationResult struct {
	IsValid    bool     `json:"isValid"`
	CanExecute bool     `json:"canExecute"`
	Errors     []string `json:"errors"`
	Warnings   []string `json:"warnings"`
	Stage      Stage    `json:"stage"`
	Issues     []Issue  `json:"issues"`
}

// MsgNoTrigger is the single error reported for a flow without triggers.
const MsgNoTrigger = "Workflow must start with a trigger node"

// DefaultNeedsAuth lists the apps whose triggers require credentials.
var DefaultNeedsAuth = []string{
	"gmail", "slack", "google-sheets", "google-drive", "github", "notion",
	"hubspot", "salesforce", "stripe", "airtable", "discord", "telegram",
	"twitter", "shopify", "trello", "asana", "jira", "dropbox", "outlook",
	"mailchimp", "openai",
}

// Observer is notified after every validation run.
type Observer func(res WorkflowValidationResult, took time.Duration)

type options struct {
	lookup    SchemaLookup
	needsAuth map[string]bool
	observer  Observer
}

// Option configures ValidateWorkflow.
type Option func(*options)

// WithSchemaLookup sets how node fields are found. The default is NoSchema.
func WithSchemaLookup(l SchemaLookup) Option {
	return func(o *options) {
		if l != nil {
			o.lookup = l
		}
	}
}

// WithNeedsAuth replaces the needs-auth allowlist.
func WithNeedsAuth(appIDs ...string) Option {
	return func(o *options) {
		o.needsAuth = toSet(appIDs)
	}
}

// WithObserver registers a callback run after validation.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// ValidateWorkflow runs the staged readiness checks over flow. It does not
// modify the flow.
func ValidateWorkflow(flow *domain.Flow, opts ...Option) WorkflowValidationResult {
	o := options{lookup: NoSchema, needsAuth: toSet(DefaultNeedsAuth)}
	for _, opt := range opts {
		opt(&o)
	}

	start := time.Now()
	v := &run{stage: StageSetup}
	v.check(flow, o)
	res := v.result()
	if o.observer != nil {
		o.observer(res, time.Since(start))
	}
	return res
}

type run struct {
	stage  Stage
	issues []Issue
}

func (r *run) errorf(kind domain.ErrorKind, nodeID, format string, args ...any) {
	r.issues = append(r.issues, Issue{Severity: SeverityError, Kind: kind, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
}

func (r *run) warnf(kind domain.ErrorKind, nodeID, format string, args ...any) {
	r.issues = append(r.issues, Issue{Severity: SeverityWarning, Kind: kind, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
}

func (r *run) check(flow *domain.Flow, o options) {
	if flow == nil {
		flow = &domain.Flow{}
	}

	triggers := flow.NodesOfType(domain.NodeTypeTrigger)
	if len(triggers) == 0 {
		r.errorf(domain.KindMissingTrigger, "", MsgNoTrigger)
		return
	}

	unconfigured := false
	for _, t := range triggers {
		if t.ConfigString(domain.KeyTriggerType) == "" {
			r.errorf(domain.KindUnconfiguredTrigger, t.ID, "Trigger %q needs a trigger type selected", t.Label())
			unconfigured = true
		}
	}
	if unconfigured {
		return
	}

	for _, p := range graph.Inspect(flow) {
		if p.Connection != nil {
			r.errorf(domain.KindInvalidConnection, p.NodeID, "Connection %s is invalid: %v", p.Connection.Key(), p.Err)
			continue
		}
		r.errorf(domain.KindInvalidNode, p.NodeID, "Node %q is invalid: %v", p.NodeID, p.Err)
	}

	for _, t := range triggers {
		if o.needsAuth[t.AppID] && !authenticated(t) {
			r.errorf(domain.KindMissingAuthentication, t.ID, "Trigger %q must be connected to %s with an API key or OAuth token", t.Label(), t.AppID)
			continue
		}
		r.stage = StageConfigure
	}

	ids := make([]string, len(triggers))
	for i, t := range triggers {
		ids[i] = t.ID
	}
	reached := graph.ReachableFromAny(flow, ids...)

	for _, n := range flow.Nodes {
		if n.Type != domain.NodeTypeAction {
			continue
		}
		if !reached[n.ID] {
			r.warnf(domain.KindOrphanedAction, n.ID, "Action %q is not connected to any trigger", n.Label())
		}
		if n.ActionID == "" {
			r.errorf(domain.KindMissingAction, n.ID, "Action %q has no action selected", n.Label())
		}
	}

	for _, n := range flow.Nodes {
		res, err := ValidateNode(n, o.lookup)
		switch {
		case err != nil:
			r.errorf(domain.KindSchemaNotFound, n.ID, "Node %q: %v", n.Label(), err)
		case res.Status == domain.StatusError:
			r.errorf(domain.KindInvalidNodeConfig, n.ID, "Node %q has invalid configuration: %s", n.Label(), fieldList(res))
		case res.Status == domain.StatusIncomplete:
			r.warnf(domain.KindIncompleteNode, n.ID, "Node %q is incomplete: %s", n.Label(), fieldList(res))
		}
	}

	r.checkReferences(flow)
}

// checkReferences warns about expressions that cannot parse or that read
// from nodes not present in the flow.
func (r *run) checkReferences(flow *domain.Flow) {
	known := make(map[string]bool, len(flow.Nodes)*2)
	for _, n := range flow.Nodes {
		known[n.ID] = true
		if n.Name != "" {
			known[n.Name] = true
		}
	}
	for _, n := range flow.Nodes {
		refs, errs := expression.ConfigReferences(n.Config)
		for _, err := range errs {
			r.warnf(domain.KindUnresolvedExpression, n.ID, "Node %q: %v", n.Label(), err)
		}
		reported := make(map[string]bool)
		for _, ref := range refs {
			if !ref.IsNodeRef() || known[ref.Node] || reported[ref.Node] {
				continue
			}
			reported[ref.Node] = true
			r.warnf(domain.KindUnknownReference, n.ID, "Node %q references unknown step %q", n.Label(), ref.Node)
		}
	}
}

func (r *run) result() WorkflowValidationResult {
	res := WorkflowValidationResult{
		Errors:   []string{},
		Warnings: []string{},
		Issues:   r.issues,
		Stage:    r.stage,
	}
	if res.Issues == nil {
		res.Issues = []Issue{}
	}
	for _, is := range r.issues {
		if is.Severity == SeverityError {
			res.Errors = append(res.Errors, is.Message)
		} else {
			res.Warnings = append(res.Warnings, is.Message)
		}
	}
	if len(res.Errors) == 0 && len(res.Warnings) == 0 {
		res.Stage = StageReady
	}
	res.IsValid = len(res.Errors) == 0
	res.CanExecute = res.Stage == StageReady
	return res
}

func authenticated(n domain.Node) bool {
	return n.ConfigString(domain.KeyAPIKey) != "" ||
		n.ConfigString(domain.KeyOAuthToken) != "" ||
		n.ConfigString(domain.KeyAccessToken) != ""
}

func fieldList(res NodeValidationResult) string {
	fields := make([]string, 0, len(res.Errors))
	for _, e := range res.Errors {
		if !slices.Contains(fields, e.Field) {
			fields = append(fields, e.Field)
		}
	}
	return strings.Join(fields, ", ")
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
