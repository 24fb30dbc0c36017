package ports

import (
	"context"

	"github.com/aretw0/heartaxis/pkg/domain"
)

// OutcomePublisher delivers the outcome of a session mutation to consumers
// outside the request that caused it.
type OutcomePublisher interface {
	Publish(ctx context.Context, sessionID string, outcome domain.Outcome) error
}
