// Package sqlite provides a single-file SQLite implementation of
// storage.Store using the pure-Go modernc.org/sqlite driver. JSON-valued
// partner fields are stored as TEXT.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/trademate/supportdesk/pkg/api"
	"github.com/trademate/supportdesk/pkg/storage"
)

// Store is a SQLite-backed storage.Store.
type Store struct {
	db *sql.DB
}

// Ensure Store implements storage.Store at compile time.
var _ storage.Store = (*Store)(nil)

// Open opens (or creates) the database at path and applies embedded
// migrations. The special path ":memory:" yields a private in-memory
// database.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if path != ":memory:" {
		path = filepath.Clean(path)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer; also keeps ":memory:" on a single shared connection.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return &Store{db: db}, nil
}

const partnerColumns = `id, company_name, business_type, platform_tier, integration_type,
	languages, knowledge_base, whatsapp, gdpr_required, rbi_required, sebi_required,
	features_enabled, provisional, api_key_lookup, api_key_hash, created_at`

const insertPartner = `INSERT INTO partners (` + partnerColumns + `)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// upsertProvisional keeps created_at and only overwrites provisional rows.
const upsertProvisional = `
	ON CONFLICT (id) DO UPDATE SET
		company_name = excluded.company_name,
		business_type = excluded.business_type,
		platform_tier = excluded.platform_tier,
		integration_type = excluded.integration_type,
		languages = excluded.languages,
		knowledge_base = excluded.knowledge_base,
		whatsapp = excluded.whatsapp,
		gdpr_required = excluded.gdpr_required,
		rbi_required = excluded.rbi_required,
		sebi_required = excluded.sebi_required,
		features_enabled = excluded.features_enabled,
		provisional = excluded.provisional,
		api_key_lookup = excluded.api_key_lookup,
		api_key_hash = excluded.api_key_hash
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
	if _, err := s.db.ExecContext(ctx, insertPartner, args...); err != nil {
		if isUniqueViolation(err) {
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
	res, err := s.db.ExecContext(ctx, insertPartner+upsertProvisional, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrConflict
		}
		return fmt.Errorf("upserting partner: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("upserting partner: %w", err)
	}
	if n == 0 {
		return storage.ErrConflict
	}
	return nil
}

// GetPartner retrieves a partner by ID, scoped by tenant.
func (s *Store) GetPartner(ctx context.Context, id string) (*api.Partner, error) {
	if !storage.TenantAllows(ctx, id) {
		return nil, storage.ErrNotFound
	}
	return scanPartner(s.db.QueryRowContext(ctx, "SELECT "+partnerColumns+" FROM partners WHERE id = ?", id))
}

// GetPartnerByKeyPrefix resolves a partner from its API key lookup prefix.
func (s *Store) GetPartnerByKeyPrefix(ctx context.Context, lookup string) (*api.Partner, error) {
	return scanPartner(s.db.QueryRowContext(ctx, "SELECT "+partnerColumns+" FROM partners WHERE api_key_lookup = ?", lookup))
}

// ListPartners returns the partners visible to the caller, oldest first.
func (s *Store) ListPartners(ctx context.Context) ([]*api.Partner, error) {
	query := "SELECT " + partnerColumns + " FROM partners"
	var args []any
	if tenantID := storage.GetTenant(ctx); tenantID != "" {
		query += " WHERE id = ?"
		args = append(args, tenantID)
	}
	query += " ORDER BY created_at, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
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
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM partners").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting partners: %w", err)
	}
	return n, nil
}

// SaveInteraction records a processed support request.
func (s *Store) SaveInteraction(ctx context.Context, in *api.Interaction) error {
	if !storage.TenantAllows(ctx, in.PartnerID) {
		return storage.ErrNotFound
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO interactions (
			id, partner_id, customer_id, channel, language, query_text, intent,
			response_text, escalated, processing_time, privacy_level, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.PartnerID, in.CustomerID, string(in.Channel), in.Language, in.QueryText, in.Intent,
		in.ResponseText, in.Escalated, in.ProcessingTime, string(in.PrivacyLevel), in.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
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
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, partner_id, customer_id, channel, language, query_text, intent,
		       response_text, escalated, processing_time, privacy_level, created_at
		FROM interactions
		WHERE partner_id = ? AND created_at >= ?
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
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM interactions").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting interactions: %w", err)
	}
	return n, nil
}

// HealthCheck verifies the database handle.
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
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
	var kb, wa sql.NullString
	if len(p.KnowledgeBase) > 0 {
		b, err := json.Marshal(p.KnowledgeBase)
		if err != nil {
			return nil, fmt.Errorf("marshaling knowledge base: %w", err)
		}
		kb = sql.NullString{String: string(b), Valid: true}
	}
	if p.WhatsApp != nil {
		b, err := json.Marshal(p.WhatsApp)
		if err != nil {
			return nil, fmt.Errorf("marshaling whatsapp config: %w", err)
		}
		wa = sql.NullString{String: string(b), Valid: true}
	}
	lookup := sql.NullString{String: p.APIKeyLookup, Valid: p.APIKeyLookup != ""}

	return []any{
		p.ID, p.CompanyName, p.BusinessType, string(p.Tier), string(p.Integration),
		string(languages), kb, wa, p.Compliance.GDPR, p.Compliance.RBI, p.Compliance.SEBI,
		string(features), p.Provisional, lookup, p.APIKeyHash, p.CreatedAt,
	}, nil
}

func scanPartner(row scanner) (*api.Partner, error) {
	var p api.Partner
	var tier, integration, languages, features string
	var kb, wa, lookup sql.NullString

	err := row.Scan(
		&p.ID, &p.CompanyName, &p.BusinessType, &tier, &integration,
		&languages, &kb, &wa, &p.Compliance.GDPR, &p.Compliance.RBI, &p.Compliance.SEBI,
		&features, &p.Provisional, &lookup, &p.APIKeyHash, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying partner: %w", err)
	}

	p.Tier = api.PlatformTier(tier)
	p.Integration = api.IntegrationType(integration)
	p.APIKeyLookup = lookup.String
	if err := json.Unmarshal([]byte(languages), &p.Languages); err != nil {
		return nil, fmt.Errorf("unmarshaling languages: %w", err)
	}
	if err := json.Unmarshal([]byte(features), &p.FeaturesEnabled); err != nil {
		return nil, fmt.Errorf("unmarshaling features: %w", err)
	}
	if kb.Valid {
		if err := json.Unmarshal([]byte(kb.String), &p.KnowledgeBase); err != nil {
			return nil, fmt.Errorf("unmarshaling knowledge base: %w", err)
		}
	}
	if wa.Valid {
		p.WhatsApp = &api.WhatsAppConfig{}
		if err := json.Unmarshal([]byte(wa.String), p.WhatsApp); err != nil {
			return nil, fmt.Errorf("unmarshaling whatsapp config: %w", err)
		}
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
