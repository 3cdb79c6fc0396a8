package validation

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/schema"
)

// NodeValidationResult is the derived status of a node and every field problem.
type NodeValidationResult struct {
	Status domain.NodeStatus   `json:"status"`
	Errors []schema.FieldError `json:"errors"`
}

// TriggerSettings is the typed view of the config keys every trigger shares.
type TriggerSettings struct {
	TriggerType  string        `mapstructure:"triggerType"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
	Cron         string        `mapstructure:"cron"`
	Path         string        `mapstructure:"path"`
}

// DecodeTriggerSettings reads the shared trigger keys out of a config map.
// Durations may be given as strings ("5m") or as integer nanoseconds.
func DecodeTriggerSettings(cfg map[string]any) (TriggerSettings, error) {
	var s TriggerSettings
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &s,
	})
	if err != nil {
		return s, err
	}
	if err := dec.Decode(cfg); err != nil {
		return s, fmt.Errorf("invalid trigger settings: %w", err)
	}
	return s, nil
}

// ValidateNode validates a node's config against the fields lookup returns
// and the rules of its type. The returned error is non-nil only when the
// node references schema data that does not exist.
func ValidateNode(node domain.Node, lookup SchemaLookup) (NodeValidationResult, error) {
	if lookup == nil {
		lookup = NoSchema
	}

	set, err := lookup(node)
	if err != nil {
		kind := domain.KindInvalidNodeConfig
		if errors.Is(err, domain.ErrSchemaNotFound) {
			kind = domain.KindSchemaNotFound
		}
		res := NodeValidationResult{
			Status: keepRuntime(node.Status, domain.StatusError),
			Errors: []schema.FieldError{{Field: node.ID, Kind: kind, Message: err.Error()}},
		}
		return res, err
	}

	errs := schema.ValidateFields(set.All(), node.Config)
	errs = append(errs, typeRules(node)...)

	return NodeValidationResult{
		Status: keepRuntime(node.Status, deriveStatus(errs)),
		Errors: errs,
	}, nil
}

// typeRules applies the checks that depend on the node type rather than its schema.
func typeRules(node domain.Node) schema.Errors {
	var errs schema.Errors
	switch node.Type {
	case domain.NodeTypeTrigger:
		settings, err := DecodeTriggerSettings(node.Config)
		if err != nil {
			errs = append(errs, schema.FieldError{Field: domain.KeyTriggerType, Kind: domain.KindInvalidNodeConfig, Message: err.Error()})
			break
		}
		switch {
		case settings.TriggerType == "":
			errs = append(errs, schema.FieldError{Field: domain.KeyTriggerType, Kind: domain.KindMissingRequiredField, Message: "select a trigger type"})
		case !slices.Contains(domain.TriggerTypes, settings.TriggerType):
			errs = append(errs, schema.FieldError{Field: domain.KeyTriggerType, Kind: domain.KindInvalidNodeConfig,
				Message: fmt.Sprintf("unknown trigger type %q", settings.TriggerType)})
		case settings.PollInterval < 0:
			errs = append(errs, schema.FieldError{Field: "pollInterval", Kind: domain.KindOutOfRange, Message: "poll interval must be positive"})
		}
	case domain.NodeTypeAction:
		if node.ActionID == "" {
			errs = append(errs, schema.FieldError{Field: "actionId", Kind: domain.KindMissingRequiredField, Message: "select an action"})
		}
	case domain.NodeTypeCondition:
		if !hasAny(node.Config, "conditions", "rules") {
			errs = append(errs, schema.FieldError{Field: "conditions", Kind: domain.KindMissingRequiredField, Message: "add at least one condition"})
		}
	case domain.NodeTypeRouter:
		if !hasAny(node.Config, "routes", "rules") {
			errs = append(errs, schema.FieldError{Field: "routes", Kind: domain.KindMissingRequiredField, Message: "add at least one route"})
		}
	}
	return errs
}

// deriveStatus: a failure on a populated value wins over a missing one.
func deriveStatus(errs schema.Errors) domain.NodeStatus {
	status := domain.StatusConfigured
	for _, e := range errs {
		if e.Kind == domain.KindMissingRequiredField {
			status = domain.StatusIncomplete
			continue
		}
		return domain.StatusError
	}
	return status
}

func keepRuntime(current, derived domain.NodeStatus) domain.NodeStatus {
	if current.IsRuntime() {
		return current
	}
	return derived
}

// hasAny reports whether any key holds a non-empty value.
func hasAny(cfg map[string]any, keys ...string) bool {
	for _, k := range keys {
		switch v := cfg[k].(type) {
		case nil:
		case string:
			if v != "" {
				return true
			}
		case []any:
			if len(v) > 0 {
				return true
			}
		case map[string]any:
			if len(v) > 0 {
				return true
			}
		default:
			return true
		}
	}
	return false
}
