// Package graph provides the structural operations over a domain.Flow.
//
// Every mutation checks its preconditions before touching the flow, so a
// rejected call leaves the flow exactly as it was. Connections never dangle,
// never point into a trigger and never close a cycle.
package graph
