// Package memory provides an in-memory implementation of storage.Store for
// tests, the narrative demo, and lightweight deployments. Data is lost when
// the process restarts. Optional eviction limits how many interactions are
// retained.
package memory

import (
	"container/list"
	"context"
	"sort"
	"sync"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/storage"
)

// Store is an in-memory storage.Store. Partners are never evicted;
// interactions are kept in insertion order and the oldest are dropped once
// maxSize is exceeded.
type Store struct {
	mu           sync.RWMutex
	partners     map[string]*api.Partner
	byKey        map[string]string // key lookup prefix -> partner ID
	interactions *list.List        // front = newest, back = oldest
	maxSize      int               // 0 = unlimited
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new in-memory store. If maxSize is 0, interactions grow
// without limit. If maxSize > 0, the oldest interaction is evicted when the
// limit is reached.
func New(maxSize int) *Store {
	return &Store{
		partners:     make(map[string]*api.Partner),
		byKey:        make(map[string]string),
		interactions: list.New(),
		maxSize:      maxSize,
	}
}

// CreatePartner inserts a partner, failing with ErrConflict on duplicates.
func (s *Store) CreatePartner(ctx context.Context, p *api.Partner) error {
	if !storage.TenantAllows(ctx, p.ID) {
		return storage.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.partners[p.ID]; exists {
		return storage.ErrConflict
	}
	if p.APIKeyLookup != "" {
		if _, taken := s.byKey[p.APIKeyLookup]; taken {
			return storage.ErrConflict
		}
	}
	s.putLocked(p)
	return nil
}

// UpsertPartner inserts p or replaces a provisional partner with the same ID.
func (s *Store) UpsertPartner(ctx context.Context, p *api.Partner) error {
	if !storage.TenantAllows(ctx, p.ID) {
		return storage.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if p.APIKeyLookup != "" {
		if owner, taken := s.byKey[p.APIKeyLookup]; taken && owner != p.ID {
			return storage.ErrConflict
		}
	}
	old, ok := s.partners[p.ID]
	if ok && !old.Provisional {
		return storage.ErrConflict
	}
	if ok {
		if old.APIKeyLookup != "" {
			delete(s.byKey, old.APIKeyLookup)
		}
		cp := *p
		cp.CreatedAt = old.CreatedAt
		p = &cp
	}
	s.putLocked(p)
	return nil
}

// putLocked stores a copy of p. Must be called with s.mu held.
func (s *Store) putLocked(p *api.Partner) {
	cp := clonePartner(p)
	s.partners[p.ID] = cp
	if cp.APIKeyLookup != "" {
		s.byKey[cp.APIKeyLookup] = cp.ID
	}
}

// GetPartner retrieves a partner by ID, scoped by tenant.
func (s *Store) GetPartner(ctx context.Context, id string) (*api.Partner, error) {
	if !storage.TenantAllows(ctx, id) {
		return nil, storage.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.partners[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clonePartner(p), nil
}

// GetPartnerByKeyPrefix resolves a partner from its API key lookup prefix.
func (s *Store) GetPartnerByKeyPrefix(_ context.Context, lookup string) (*api.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byKey[lookup]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clonePartner(s.partners[id]), nil
}

// ListPartners returns the partners visible to the caller, oldest first.
func (s *Store) ListPartners(ctx context.Context) ([]*api.Partner, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*api.Partner, 0, len(s.partners))
	for _, p := range s.partners {
		if !storage.TenantAllows(ctx, p.ID) {
			continue
		}
		out = append(out, clonePartner(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// CountPartners returns the number of stored partners.
func (s *Store) CountPartners(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.partners), nil
}

// SaveInteraction appends an interaction, evicting the oldest one when the
// store is at capacity.
func (s *Store) SaveInteraction(ctx context.Context, in *api.Interaction) error {
	if !storage.TenantAllows(ctx, in.PartnerID) {
		return storage.ErrNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxSize > 0 && s.interactions.Len() >= s.maxSize {
		s.evictOldest()
	}
	cp := *in
	s.interactions.PushFront(&cp)
	return nil
}

// ListInteractions returns a partner's interactions created at or after
// since, oldest first.
func (s *Store) ListInteractions(ctx context.Context, partnerID string, since int64) ([]*api.Interaction, error) {
	if !storage.TenantAllows(ctx, partnerID) {
		return nil, storage.ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.Interaction
	for e := s.interactions.Back(); e != nil; e = e.Prev() {
		in := e.Value.(*api.Interaction)
		if in.PartnerID != partnerID || in.CreatedAt < since {
			continue
		}
		cp := *in
		out = append(out, &cp)
	}
	return out, nil
}

// CountInteractions returns the number of retained interactions.
func (s *Store) CountInteractions(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interactions.Len(), nil
}

// HealthCheck always returns nil for the in-memory store.
func (s *Store) HealthCheck(_ context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// evictOldest removes the oldest interaction.
// Must be called with s.mu held.
func (s *Store) evictOldest() {
	if back := s.interactions.Back(); back != nil {
		s.interactions.Remove(back)
	}
}

func clonePartner(p *api.Partner) *api.Partner {
	cp := *p
	cp.Languages = append([]string(nil), p.Languages...)
	if p.KnowledgeBase != nil {
		cp.KnowledgeBase = make(map[string]any, len(p.KnowledgeBase))
		for k, v := range p.KnowledgeBase {
			cp.KnowledgeBase[k] = v
		}
	}
	if p.FeaturesEnabled != nil {
		cp.FeaturesEnabled = make(map[string]bool, len(p.FeaturesEnabled))
		for k, v := range p.FeaturesEnabled {
			cp.FeaturesEnabled[k] = v
		}
	}
	if p.WhatsApp != nil {
		wa := *p.WhatsApp
		cp.WhatsApp = &wa
	}
	cp.APIKeyHash = append([]byte(nil), p.APIKeyHash...)
	return &cp
}
