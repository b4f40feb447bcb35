package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"tunebridge/internal/platforms"
)

// Store persists per-server settings in Postgres. Pipeline components hold no
// state of their own; they re-read through the store on every message.
type Store struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	defaults CustomSettings
}

// PlatformSetting is one platform's registry metadata joined with a server's
// resolved enabled flag. Absence of a preference row reads as disabled.
type PlatformSetting struct {
	Key            string
	Name           string
	Prefix         string
	DefaultEnabled bool
	Enabled        bool
}

// CustomSettings holds a server's cosmetic overrides. Animation is empty when
// the server uses the global default thumbnail.
type CustomSettings struct {
	Name        string
	Color       string
	Animation   string
	EmbedSearch string
	EmbedFinal  string
}

// New connects a pool and pings it. defaults supplies the global cosmetic
// values blank customization fields resolve to.
func New(ctx context.Context, databaseURL string, defaults CustomSettings, logger *zap.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.ConnConfig.RuntimeParams["timezone"] = "UTC"

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{pool: pool, logger: logger, defaults: defaults}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// SeedPlatforms inserts any registry platform missing from the platforms
// table. Existing rows are left untouched.
func (s *Store) SeedPlatforms(ctx context.Context) error {
	for _, p := range platforms.All {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO platforms (key_name, name, prefix, default_enabled)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (key_name) DO NOTHING`,
			p.Key, p.Name, p.Prefix, p.DefaultEnabled)
		if err != nil {
			return fmt.Errorf("seed platform %s: %w", p.Key, err)
		}
	}
	return nil
}

// EnsureServerInitialized idempotently upserts the server row and, on first
// initialization only, seeds default-enabled preference rows and the
// customization row. Safe under concurrent calls: the seeding inserts are
// conflict-ignoring and re-running the whole sequence is harmless.
func (s *Store) EnsureServerInitialized(ctx context.Context, serverID int64, serverName string) error {
	var initialized bool
	err := s.pool.QueryRow(ctx, `
		INSERT INTO servers (id, name)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET name = COALESCE(NULLIF(EXCLUDED.name, ''), servers.name)
		RETURNING initialized`,
		serverID, serverName).Scan(&initialized)
	if err != nil {
		return fmt.Errorf("upsert server %d: %w", serverID, err)
	}
	if initialized {
		return nil
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO server_platforms (server_id, platform_id, enabled)
		SELECT $1, id, TRUE FROM platforms WHERE default_enabled
		ON CONFLICT (server_id, platform_id) DO NOTHING`,
		serverID)
	if err != nil {
		return fmt.Errorf("seed preferences for %d: %w", serverID, err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO server_customs (server_id, name, color, animation, embed_search, embed_final)
		VALUES ($1, $2, $3, NULL, $4, $5)
		ON CONFLICT (server_id) DO NOTHING`,
		serverID, s.defaults.Name, s.defaults.Color, s.defaults.EmbedSearch, s.defaults.EmbedFinal)
	if err != nil {
		return fmt.Errorf("seed customs for %d: %w", serverID, err)
	}

	if _, err := s.pool.Exec(ctx, `UPDATE servers SET initialized = TRUE WHERE id = $1`, serverID); err != nil {
		return fmt.Errorf("mark server %d initialized: %w", serverID, err)
	}

	s.logger.Info("initialized server settings", zap.Int64("server_id", serverID))
	return nil
}

// PlatformSettings returns one entry per known platform in registry order,
// with the server's resolved enabled flag. Initializes the server lazily.
func (s *Store) PlatformSettings(ctx context.Context, serverID int64) ([]PlatformSetting, error) {
	if err := s.EnsureServerInitialized(ctx, serverID, ""); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT p.key_name, p.name, p.prefix, p.default_enabled, sp.enabled IS NOT NULL AND sp.enabled
		FROM platforms p
		LEFT JOIN server_platforms sp ON sp.platform_id = p.id AND sp.server_id = $1
		ORDER BY p.id`,
		serverID)
	if err != nil {
		return nil, fmt.Errorf("query platform settings for %d: %w", serverID, err)
	}
	defer rows.Close()

	var settings []PlatformSetting
	for rows.Next() {
		var ps PlatformSetting
		if err := rows.Scan(&ps.Key, &ps.Name, &ps.Prefix, &ps.DefaultEnabled, &ps.Enabled); err != nil {
			return nil, err
		}
		settings = append(settings, ps)
	}
	return settings, rows.Err()
}

// SetPlatformEnabled enables by insert-or-ignore, disables by deleting the
// preference row. An unknown platform key is logged and ignored.
func (s *Store) SetPlatformEnabled(ctx context.Context, serverID int64, platformKey string, enabled bool) error {
	if err := s.EnsureServerInitialized(ctx, serverID, ""); err != nil {
		return err
	}

	var platformID int
	err := s.pool.QueryRow(ctx, `SELECT id FROM platforms WHERE key_name = $1`, platformKey).Scan(&platformID)
	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Warn("unknown platform key", zap.String("key", platformKey))
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve platform %s: %w", platformKey, err)
	}

	if enabled {
		_, err = s.pool.Exec(ctx, `
			INSERT INTO server_platforms (server_id, platform_id, enabled)
			VALUES ($1, $2, TRUE)
			ON CONFLICT (server_id, platform_id) DO NOTHING`,
			serverID, platformID)
	} else {
		_, err = s.pool.Exec(ctx, `
			DELETE FROM server_platforms WHERE server_id = $1 AND platform_id = $2`,
			serverID, platformID)
	}
	if err != nil {
		return fmt.Errorf("set platform %s enabled=%t for %d: %w", platformKey, enabled, serverID, err)
	}
	return nil
}

// CustomSettings reads the server's cosmetic overrides. A missing row reads as
// the global defaults.
func (s *Store) CustomSettings(ctx context.Context, serverID int64) (CustomSettings, error) {
	var cs CustomSettings
	var animation *string
	err := s.pool.QueryRow(ctx, `
		SELECT name, color, animation, embed_search, embed_final
		FROM server_customs WHERE server_id = $1`,
		serverID).Scan(&cs.Name, &cs.Color, &animation, &cs.EmbedSearch, &cs.EmbedFinal)
	if errors.Is(err, pgx.ErrNoRows) {
		return s.defaults, nil
	}
	if err != nil {
		return CustomSettings{}, fmt.Errorf("query customs for %d: %w", serverID, err)
	}
	if animation != nil {
		cs.Animation = *animation
	}
	return cs, nil
}

// SetCustomSettings upserts the customization row. Blank or whitespace-only
// fields are replaced by the global defaults before persisting, so an empty
// string never survives a write. A blank animation clears the override.
func (s *Store) SetCustomSettings(ctx context.Context, serverID int64, cs CustomSettings) error {
	if err := s.EnsureServerInitialized(ctx, serverID, ""); err != nil {
		return err
	}

	cs = s.normalize(cs)
	var animation *string
	if cs.Animation != "" {
		animation = &cs.Animation
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO server_customs (server_id, name, color, animation, embed_search, embed_final)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (server_id) DO UPDATE SET
			name = EXCLUDED.name,
			color = EXCLUDED.color,
			animation = EXCLUDED.animation,
			embed_search = EXCLUDED.embed_search,
			embed_final = EXCLUDED.embed_final`,
		serverID, cs.Name, cs.Color, animation, cs.EmbedSearch, cs.EmbedFinal)
	if err != nil {
		return fmt.Errorf("upsert customs for %d: %w", serverID, err)
	}
	return nil
}

// Country returns the server's configured country code.
func (s *Store) Country(ctx context.Context, serverID int64) (string, error) {
	if err := s.EnsureServerInitialized(ctx, serverID, ""); err != nil {
		return "", err
	}

	var country string
	if err := s.pool.QueryRow(ctx, `SELECT country FROM servers WHERE id = $1`, serverID).Scan(&country); err != nil {
		return "", fmt.Errorf("query country for %d: %w", serverID, err)
	}
	return country, nil
}

// SetCountry updates the server's country code after ensuring initialization.
func (s *Store) SetCountry(ctx context.Context, serverID int64, code string) error {
	if err := s.EnsureServerInitialized(ctx, serverID, ""); err != nil {
		return err
	}

	tag, err := s.pool.Exec(ctx, `UPDATE servers SET country = $1 WHERE id = $2`, code, serverID)
	if err != nil {
		return fmt.Errorf("update country for %d: %w", serverID, err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("country update touched %d rows for server %d", tag.RowsAffected(), serverID)
	}
	return nil
}

// DeleteServerSettings removes the server row; preference, customization and
// lookup rows go with it via cascade.
func (s *Store) DeleteServerSettings(ctx context.Context, serverID int64) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM server_platforms WHERE server_id = $1`, serverID); err != nil {
		return fmt.Errorf("delete preferences for %d: %w", serverID, err)
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM servers WHERE id = $1`, serverID); err != nil {
		return fmt.Errorf("delete server %d: %w", serverID, err)
	}
	s.logger.Info("deleted server settings", zap.Int64("server_id", serverID))
	return nil
}

// RecordLookup logs one successful cross-platform resolution.
func (s *Store) RecordLookup(ctx context.Context, serverID int64, platformKey, title, artist string) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO lookups (server_id, platform, title, artist)
		VALUES ($1, $2, $3, $4)`,
		serverID, platformKey, title, artist)
	if err != nil {
		return fmt.Errorf("record lookup for %d: %w", serverID, err)
	}
	return nil
}

// LookupCount returns how many links the bot has resolved for the server.
func (s *Store) LookupCount(ctx context.Context, serverID int64) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM lookups WHERE server_id = $1`, serverID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count lookups for %d: %w", serverID, err)
	}
	return count, nil
}

func (s *Store) normalize(cs CustomSettings) CustomSettings {
	if strings.TrimSpace(cs.Name) == "" {
		cs.Name = s.defaults.Name
	}
	if strings.TrimSpace(cs.Color) == "" {
		cs.Color = s.defaults.Color
	}
	if strings.TrimSpace(cs.EmbedSearch) == "" {
		cs.EmbedSearch = s.defaults.EmbedSearch
	}
	if strings.TrimSpace(cs.EmbedFinal) == "" {
		cs.EmbedFinal = s.defaults.EmbedFinal
	}
	cs.Animation = strings.TrimSpace(cs.Animation)
	return cs
}
