package graph

import (
	"errors"

	"github.com/techwithparamesh/agentflow/pkg/domain"
)

// Problem is one node or connection that breaks a graph invariant.
// Connection is nil for node problems.
type Problem struct {
	NodeID     string
	Connection *domain.Connection
	Err        error
}

// Inspect replays flow onto an empty flow through AddNode and AddConnection
// and reports everything they reject, nodes first, in flow order. A flow
// built only through this package has no problems.
func Inspect(flow *domain.Flow) []Problem {
	if flow == nil {
		return nil
	}
	scratch := domain.NewFlow(flow.ID, flow.Name)
	var problems []Problem
	for _, n := range flow.Nodes {
		if err := AddNode(scratch, n); err != nil {
			problems = append(problems, Problem{NodeID: n.ID, Err: err})
		}
	}
	for _, c := range flow.Connections {
		if err := AddConnection(scratch, c); err != nil {
			conn := c
			problems = append(problems, Problem{NodeID: c.Source, Connection: &conn, Err: err})
		}
	}
	return problems
}

// Check returns nil when flow satisfies every graph invariant. Otherwise the
// joined error matches domain.ErrInvalidNode, domain.ErrDuplicateNode or
// domain.ErrInvalidConnection.
func Check(flow *domain.Flow) error {
	problems := Inspect(flow)
	if len(problems) == 0 {
		return nil
	}
	errs := make([]error, len(problems))
	for i, p := range problems {
		errs[i] = p.Err
	}
	return errors.Join(errs...)
}
