// Package postgres provides a PostgreSQL implementation of storage.Store.
// It uses pgx/v5 for connection pooling and JSONB for partner languages,
// knowledge base, WhatsApp settings, and feature flags.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/storage"
)

// Store is a PostgreSQL-backed storage.Store.
type Store struct {
	pool *pgxpool.Pool
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// New creates a new PostgreSQL store with the given configuration.
// If MigrateOnStart is true, schema migrations are applied automatically.
func New(ctx context.Context, cfg Config) (*Store, error) {
	cfg.defaults()

	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing DSN: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &Store{pool: pool}

	if cfg.MigrateOnStart {
		if err := s.migrate(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
	}

	return s, nil
}

const partnerColumns = `id, company_name, business_type, platform_tier, integration_type,
	languages, knowledge_base, whatsapp, gdpr_required, rbi_required, sebi_required,
	features_enabled, provisional, api_key_lookup, api_key_hash, created_at`

const insertPartner = `INSERT INTO partners (` + partnerColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

// upsertProvisional keeps created_at and only overwrites provisional rows.
const upsertProvisional = `
	ON CONFLICT (id) DO UPDATE SET
		company_name = EXCLUDED.company_name,
		business_type = EXCLUDED.business_type,
		platform_tier = EXCLUDED.platform_tier,
		integration_type = EXCLUDED.integration_type,
		languages = EXCLUDED.languages,
		knowledge_base = EXCLUDED.knowledge_base,
		whatsapp = EXCLUDED.whatsapp,
		gdpr_required = EXCLUDED.gdpr_required,
		rbi_required = EXCLUDED.rbi_required,
		sebi_required = EXCLUDED.sebi_required,
		features_enabled = EXCLUDED.features_enabled,
		provisional = EXCLUDED.provisional,
		api_key_lookup = EXCLUDED.api_key_lookup,
		api_key_hash = EXCLUDED.api_key_hash
	WHERE partners.provisional`

// CreatePartner inserts a partner, failing with ErrConflict on duplicates.
func (s *Store) CreatePartner(ctx context.Context, p *api.Partner) error {
	if !storage.TenantAllows(ctx, p.ID) {
		return storage.ErrNotFound
	}
	args, err := partnerArgs(p)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, insertPartner, args...); err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting partner: %w", err)
	}
	return nil
}

// UpsertPartner inserts p or replaces a provisional partner with the same ID.
// A fully onboarded partner is left untouched and reported as ErrConflict.
func (s *Store) UpsertPartner(ctx context.Context, p *api.Partner) error {
	if !storage.TenantAllows(ctx, p.ID) {
		return storage.ErrNotFound
	}
	args, err := partnerArgs(p)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx, insertPartner+upsertProvisional, args...)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("upserting partner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrConflict
	}
	return nil
}

// GetPartner retrieves a partner by ID, scoped by tenant.
func (s *Store) GetPartner(ctx context.Context, id string) (*api.Partner, error) {
	if !storage.TenantAllows(ctx, id) {
		return nil, storage.ErrNotFound
	}
	row := s.pool.QueryRow(ctx, "SELECT "+partnerColumns+" FROM partners WHERE id = $1", id)
	return scanPartner(row)
}

// GetPartnerByKeyPrefix resolves a partner from its API key lookup prefix.
func (s *Store) GetPartnerByKeyPrefix(ctx context.Context, lookup string) (*api.Partner, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+partnerColumns+" FROM partners WHERE api_key_lookup = $1", lookup)
	return scanPartner(row)
}

// ListPartners returns the partners visible to the caller, oldest first.
func (s *Store) ListPartners(ctx context.Context) ([]*api.Partner, error) {
	query := "SELECT " + partnerColumns + " FROM partners"
	var args []any
	if tenantID := storage.GetTenant(ctx); tenantID != "" {
		query += " WHERE id = $1"
		args = append(args, tenantID)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing partners: %w", err)
	}
	defer rows.Close()

	var out []*api.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// CountPartners returns the number of stored partners.
func (s *Store) CountPartners(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM partners").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting partners: %w", err)
	}
	return n, nil
}

// SaveInteraction records a processed support request.
func (s *Store) SaveInteraction(ctx context.Context, in *api.Interaction) error {
	if !storage.TenantAllows(ctx, in.PartnerID) {
		return storage.ErrNotFound
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO interactions (
			id, partner_id, customer_id, channel, language, query_text, intent,
			response_text, escalated, processing_time, privacy_level, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		in.ID, in.PartnerID, in.CustomerID, string(in.Channel), in.Language, in.QueryText, in.Intent,
		in.ResponseText, in.Escalated, in.ProcessingTime, string(in.PrivacyLevel), in.CreatedAt,
	)
	if err != nil {
		if isDuplicateKey(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("inserting interaction: %w", err)
	}
	return nil
}

// ListInteractions returns a partner's interactions created at or after
// since, oldest first.
func (s *Store) ListInteractions(ctx context.Context, partnerID string, since int64) ([]*api.Interaction, error) {
	if !storage.TenantAllows(ctx, partnerID) {
		return nil, storage.ErrNotFound
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, partner_id, customer_id, channel, language, query_text, intent,
		       response_text, escalated, processing_time, privacy_level, created_at
		FROM interactions
		WHERE partner_id = $1 AND created_at >= $2
		ORDER BY created_at, id`,
		partnerID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("listing interactions: %w", err)
	}
	defer rows.Close()

	var out []*api.Interaction
	for rows.Next() {
		var in api.Interaction
		var channel, privacy string
		if err := rows.Scan(
			&in.ID, &in.PartnerID, &in.CustomerID, &channel, &in.Language, &in.QueryText, &in.Intent,
			&in.ResponseText, &in.Escalated, &in.ProcessingTime, &privacy, &in.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning interaction: %w", err)
		}
		in.Channel = api.Channel(channel)
		in.PrivacyLevel = api.PrivacyLevel(privacy)
		out = append(out, &in)
	}
	return out, rows.Err()
}

// CountInteractions returns the number of stored interactions.
func (s *Store) CountInteractions(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM interactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting interactions: %w", err)
	}
	return n, nil
}

// HealthCheck verifies the database connection.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func partnerArgs(p *api.Partner) ([]any, error) {
	languages, err := json.Marshal(p.Languages)
	if err != nil {
		return nil, fmt.Errorf("marshaling languages: %w", err)
	}
	features, err := json.Marshal(p.FeaturesEnabled)
	if err != nil {
		return nil, fmt.Errorf("marshaling features: %w", err)
	}
	var kb, wa []byte
	if len(p.KnowledgeBase) > 0 {
		if kb, err = json.Marshal(p.KnowledgeBase); err != nil {
			return nil, fmt.Errorf("marshaling knowledge base: %w", err)
		}
	}
	if p.WhatsApp != nil {
		if wa, err = json.Marshal(p.WhatsApp); err != nil {
			return nil, fmt.Errorf("marshaling whatsapp config: %w", err)
		}
	}
	return []any{
		p.ID, p.CompanyName, p.BusinessType, string(p.Tier), string(p.Integration),
		languages, nullJSON(kb), nullJSON(wa), p.Compliance.GDPR, p.Compliance.RBI, p.Compliance.SEBI,
		features, p.Provisional, nullString(p.APIKeyLookup), p.APIKeyHash, p.CreatedAt,
	}, nil
}

func scanPartner(row pgx.Row) (*api.Partner, error) {
	var p api.Partner
	var tier, integration string
	var languages, kb, wa, features []byte
	var lookup *string

	err := row.Scan(
		&p.ID, &p.CompanyName, &p.BusinessType, &tier, &integration,
		&languages, &kb, &wa, &p.Compliance.GDPR, &p.Compliance.RBI, &p.Compliance.SEBI,
		&features, &p.Provisional, &lookup, &p.APIKeyHash, &p.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying partner: %w", err)
	}

	p.Tier = api.PlatformTier(tier)
	p.Integration = api.IntegrationType(integration)
	if lookup != nil {
		p.APIKeyLookup = *lookup
	}
	if err := json.Unmarshal(languages, &p.Languages); err != nil {
		return nil, fmt.Errorf("unmarshaling languages: %w", err)
	}
	if err := json.Unmarshal(features, &p.FeaturesEnabled); err != nil {
		return nil, fmt.Errorf("unmarshaling features: %w", err)
	}
	if len(kb) > 0 {
		if err := json.Unmarshal(kb, &p.KnowledgeBase); err != nil {
			return nil, fmt.Errorf("unmarshaling knowledge base: %w", err)
		}
	}
	if len(wa) > 0 {
		p.WhatsApp = &api.WhatsAppConfig{}
		if err := json.Unmarshal(wa, p.WhatsApp); err != nil {
			return nil, fmt.Errorf("unmarshaling whatsapp config: %w", err)
		}
	}
	return &p, nil
}

// nullString converts an empty string to nil for nullable TEXT columns.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// nullJSON converts an empty byte slice to nil for nullable JSONB columns.
func nullJSON(b []byte) *[]byte {
	if len(b) == 0 {
		return nil
	}
	return &b
}

// isDuplicateKey reports whether err is a PostgreSQL unique violation (23505).
func isDuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
