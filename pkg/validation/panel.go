package validation

import (
	"github.com/techwithparamesh/agentflow/pkg/domain"
	"github.com/techwithparamesh/agentflow/pkg/schema"
)

// NodeView is what a configuration panel needs to render one node: the
// derived status, inline errors, and only the fields relevant right now.
type NodeView struct {
	NodeID        string               `json:"nodeId"`
	Status        domain.NodeStatus    `json:"status"`
	Errors        []schema.FieldError  `json:"errors"`
	ActiveFields  []string             `json:"activeFields"`
	VisibleFields []schema.FieldSchema `json:"visibleFields"`
}

// Panel builds the panel view of a node. A schema lookup failure still yields
// a view carrying the SchemaNotFound error, along with the error itself.
func Panel(node domain.Node, lookup SchemaLookup) (NodeView, error) {
	if lookup == nil {
		lookup = NoSchema
	}
	res, err := ValidateNode(node, lookup)
	view := NodeView{
		NodeID:        node.ID,
		Status:        res.Status,
		Errors:        res.Errors,
		ActiveFields:  []string{},
		VisibleFields: []schema.FieldSchema{},
	}
	if view.Errors == nil {
		view.Errors = []schema.FieldError{}
	}
	if err != nil {
		return view, err
	}

	set, _ := lookup(node)
	for _, f := range schema.VisibleFields(set.All(), node.Config) {
		view.ActiveFields = append(view.ActiveFields, f.Name)
		view.VisibleFields = append(view.VisibleFields, f)
	}
	return view, nil
}
