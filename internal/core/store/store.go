package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/scriptseq/scriptseq/internal/config"
	"github.com/scriptseq/scriptseq/internal/core"
)

const driverLibsql = "libsql"

// Backend is a single-slot sequence record store.
type Backend interface {
	Read(ctx context.Context) (*core.SequenceRecord, error)
	Write(ctx context.Context, record core.SequenceRecord) error
	Location() string
	Driver() string
	Close() error
}

// Open returns the backend selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StateConfig, db config.StoreConfig) (Backend, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = backendFile
	}

	switch backend {
	case backendFile:
		s, err := NewFileStore(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case driverLibsql:
		s, err := OpenSQL(ctx, db)
		if err != nil {
			return nil, err
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported state backend: %s", backend)
	}
}

// SQLStore keeps the sequence record in a libsql database.
type SQLStore struct {
	DB       *sql.DB
	location string
}

// OpenSQL initializes a libsql connection using the provided configuration.
func OpenSQL(ctx context.Context, cfg config.StoreConfig) (*SQLStore, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	dsn, err := buildLibsqlDSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverLibsql, dsn)
	if err != nil {
		return nil, fmt.Errorf("open libsql store: %w", err)
	}
	// One connection keeps ":memory:" databases coherent across statements.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping libsql store: %w", err)
	}

	return &SQLStore{DB: db, location: redactDSN(dsn)}, nil
}

// Read returns the stored record, or nil when no generation has happened yet.
func (s *SQLStore) Read(ctx context.Context) (*core.SequenceRecord, error) {
	if s == nil || s.DB == nil {
		return nil, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var (
		ticks sql.NullString
		token sql.NullString
	)

	row := s.DB.QueryRowContext(ctx, `
		SELECT CAST(issued_at_ticks AS TEXT), token
		FROM sequence_state
		WHERE slot = 1
	`)
	if err := row.Scan(&ticks, &token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch sequence state: %w", err)
	}

	record, err := decodeFields(ticks.String, token.String)
	if err != nil {
		return nil, withLocation(err, s.location)
	}
	return record, nil
}

// Write upserts the single sequence record.
func (s *SQLStore) Write(ctx context.Context, record core.SequenceRecord) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateToken(record.Token); err != nil {
		return err
	}

	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO sequence_state (slot, issued_at_ticks, token)
		VALUES (1, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			issued_at_ticks = excluded.issued_at_ticks,
			token = excluded.token
	`, TicksFromTime(record.IssuedAt), record.Token)
	if err != nil {
		return fmt.Errorf("store sequence state: %w", err)
	}
	return nil
}

// Location returns the database location with credentials removed.
func (s *SQLStore) Location() string {
	if s == nil {
		return ""
	}
	return s.location
}

// Driver returns the backend name.
func (s *SQLStore) Driver() string {
	return driverLibsql
}

// Close releases database resources.
func (s *SQLStore) Close() error {
	if s == nil || s.DB == nil {
		return nil
	}
	return s.DB.Close()
}

func buildLibsqlDSN(cfg config.StoreConfig) (string, error) {
	if dsn := strings.TrimSpace(cfg.URL); dsn != "" {
		return addAuthToken(dsn, cfg.AuthToken)
	}

	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return "", errors.New("store path or url is required")
	}

	if path == ":memory:" {
		return path, nil
	}

	if strings.HasPrefix(path, "file:") {
		localPath, err := extractFilePath(path)
		if err != nil {
			return "", err
		}
		if err := ensureStoreDir(localPath); err != nil {
			return "", err
		}
		return path, nil
	}

	if strings.HasPrefix(path, "libsql:") {
		return path, nil
	}

	if err := ensureStoreDir(path); err != nil {
		return "", err
	}
	return "file:" + filepath.Clean(path), nil
}

func addAuthToken(dsn string, token string) (string, error) {
	if strings.TrimSpace(token) == "" {
		return dsn, nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid store url: %w", err)
	}

	query := parsed.Query()
	if query.Get("authToken") == "" {
		query.Set("authToken", token)
		parsed.RawQuery = query.Encode()
	}

	return parsed.String(), nil
}

func redactDSN(dsn string) string {
	parsed, err := url.Parse(dsn)
	if err != nil || parsed.RawQuery == "" {
		return dsn
	}
	query := parsed.Query()
	if query.Get("authToken") == "" {
		return dsn
	}
	query.Del("authToken")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

func extractFilePath(dsn string) (string, error) {
	parsed, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid store path: %w", err)
	}

	if parsed.Path != "" {
		return strings.TrimPrefix(parsed.Path, "//"), nil
	}

	return strings.TrimPrefix(parsed.Opaque, "//"), nil
}

func ensureStoreDir(path string) error {
	if strings.TrimSpace(path) == "" || path == ":memory:" {
		return nil
	}

	dir := filepath.Dir(filepath.Clean(path))
	if dir == "." || dir == string(filepath.Separator) {
		return nil
	}

	// #nosec G301 -- data directories use 0755 for multi-user access compatibility
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	return nil
}
