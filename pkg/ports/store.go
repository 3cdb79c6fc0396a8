package ports

import (
	"context"

	"github.com/techwithparamesh/agentflow/pkg/domain"
)

// FlowStore persists flows.
type FlowStore interface {
	// Save stores the flow under flow.ID, replacing any previous version.
	Save(ctx context.Context, flow *domain.Flow) error

	// Load retrieves a flow by id.
	// Returns domain.ErrFlowNotFound if the flow does not exist.
	Load(ctx context.Context, id string) (*domain.Flow, error)

	// Delete removes a flow. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// List returns the ids of every stored flow.
	List(ctx context.Context) ([]string, error)
}
