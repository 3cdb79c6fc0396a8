package validation

import (
	"fmt"

	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/schema"
)

// FieldSet is the schema that governs one node's config.
type FieldSet struct {
	Required []schema.FieldSchema
	Optional []schema.FieldSchema
}

// All returns required and optional fields in declaration order of each group.
func (s FieldSet) All() []schema.FieldSchema {
	out := make([]schema.FieldSchema, 0, len(s.Required)+len(s.Optional))
	out = append(out, s.Required...)
	return append(out, s.Optional...)
}

// SchemaLookup resolves the field set for a node. Unknown references are
// reported with an error wrapping domain.ErrSchemaNotFound.
type SchemaLookup func(node domain.Node) (FieldSet, error)

// NoSchema treats every node as having no schema fields.
func NoSchema(domain.Node) (FieldSet, error) {
	return FieldSet{}, nil
}

// RegistryLookup resolves fields from a schema registry.
//
// Nodes without an app id, and nodes whose trigger or action has not been
// chosen yet, get an empty field set. Actions are resolved through the
// "resource" config value when present, otherwise by searching the app's
// resources in order.
func RegistryLookup(reg schema.Registry) SchemaLookup {
	return func(node domain.Node) (FieldSet, error) {
		if node.AppID == "" {
			return FieldSet{}, nil
		}
		if _, ok := reg.GetApp(node.AppID); !ok {
			return FieldSet{}, fmt.Errorf("%w: app %q", domain.ErrSchemaNotFound, node.AppID)
		}

		var fields []schema.FieldSchema
		switch node.Type {
		case domain.NodeTypeTrigger:
			if node.TriggerID == "" {
				return FieldSet{}, nil
			}
			trig, ok := reg.GetTrigger(node.AppID, node.TriggerID)
			if !ok {
				return FieldSet{}, fmt.Errorf("%w: trigger %q of app %q", domain.ErrSchemaNotFound, node.TriggerID, node.AppID)
			}
			fields = trig.Fields
		default:
			if node.ActionID == "" {
				return FieldSet{}, nil
			}
			op, ok := findOperation(reg, node)
			if !ok {
				return FieldSet{}, fmt.Errorf("%w: operation %q of app %q", domain.ErrSchemaNotFound, node.ActionID, node.AppID)
			}
			fields = op.Fields
		}

		required, optional := schema.SplitRequired(fields)
		return FieldSet{Required: required, Optional: optional}, nil
	}
}

func findOperation(reg schema.Registry, node domain.Node) (schema.Operation, bool) {
	if res := node.ConfigString(domain.KeyResource); res != "" {
		return reg.GetOperation(node.AppID, res, node.ActionID)
	}
	_, op, ok := reg.FindOperation(node.AppID, node.ActionID)
	return op, ok
}
