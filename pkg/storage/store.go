package storage

import (
	"context"

	"github.com/trademate/supportdesk/pkg/api"
)

// Store persists partners and their support interactions.
//
// Partner reads and writes honor the tenant in ctx (see SetTenant): a
// request scoped to one partner sees every other partner as ErrNotFound.
// Timestamps are Unix seconds.
type Store interface {
	// CreatePartner inserts a new partner. It returns ErrConflict if the ID
	// or API key lookup prefix is already taken.
	CreatePartner(ctx context.Context, p *api.Partner) error

	// UpsertPartner inserts p, or replaces the partner with the same ID
	// while that partner is still provisional. It returns ErrConflict if the
	// stored partner is fully onboarded or the API key lookup prefix belongs
	// to another partner. The stored CreatedAt of a replaced partner is kept.
	UpsertPartner(ctx context.Context, p *api.Partner) error

	// GetPartner returns the partner with the given ID, or ErrNotFound.
	GetPartner(ctx context.Context, id string) (*api.Partner, error)

	// GetPartnerByKeyPrefix returns the partner owning the API key with the
	// given lookup prefix. It ignores the tenant in ctx since it runs
	// before authentication.
	GetPartnerByKeyPrefix(ctx context.Context, lookup string) (*api.Partner, error)

	// ListPartners returns all partners ordered by creation time.
	ListPartners(ctx context.Context) ([]*api.Partner, error)

	// CountPartners returns the number of stored partners.
	CountPartners(ctx context.Context) (int, error)

	// SaveInteraction records a processed support request.
	SaveInteraction(ctx context.Context, in *api.Interaction) error

	// ListInteractions returns the partner's interactions created at or
	// after since, oldest first.
	ListInteractions(ctx context.Context, partnerID string, since int64) ([]*api.Interaction, error)

	// CountInteractions returns the number of stored interactions.
	CountInteractions(ctx context.Context) (int, error)

	// HealthCheck verifies the backend is reachable.
	HealthCheck(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}
