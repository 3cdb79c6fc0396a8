// Package middleware decorates a FlowStore: sealing credentials at rest and
// masking sensitive config before it is written.
package middleware

import (
	"github.com/techwithparamesh/agentflow/pkg/ports"
)

// Middleware wraps a FlowStore with extra behavior.
type Middleware func(ports.FlowStore) ports.FlowStore

// Chain applies mws to store. The first middleware is the outermost.
func Chain(store ports.FlowStore, mws ...Middleware) ports.FlowStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
