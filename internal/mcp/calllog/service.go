// Package calllog persists an audit record for every MCP tool invocation.
package calllog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	errors "github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Status enumerations for recorded tool calls.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Clock provides the current time in UTC.
type Clock func() time.Time

// DB defines the database capabilities required by the call log service.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Service persists and queries tool invocation call logs.
type Service struct {
	db     DB
	logger logSDK.Logger
	clock  Clock
}

// RecordInput captures the information required to persist a tool invocation.
type RecordInput struct {
	ToolName     string
	ProviderKey  string
	Status       string
	Duration     time.Duration
	Parameters   map[string]any
	ErrorMessage string
	OccurredAt   time.Time
}

// Entry represents a single persisted record.
type Entry struct {
	ID              uuid.UUID
	ToolName        string
	ProviderKeyHash string
	Status          string
	DurationMillis  int64
	Parameters      map[string]any
	ErrorMessage    string
	OccurredAt      time.Time
}

const createTableSQL = `
CREATE TABLE IF NOT EXISTS mcp_call_logs (
    id UUID PRIMARY KEY,
    tool_name TEXT NOT NULL,
    provider_key_hash TEXT NOT NULL,
    status TEXT NOT NULL,
    duration_ms BIGINT NOT NULL,
    parameters JSONB,
    error_message TEXT NOT NULL DEFAULT '',
    occurred_at TIMESTAMPTZ NOT NULL
)`

// NewService builds a call log service over the provided database handle.
func NewService(db DB, logger logSDK.Logger, clock Clock) (*Service, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}

	return &Service{db: db, logger: logger, clock: clock}, nil
}

// EnsureSchema creates the call log table when it does not exist yet.
func (s *Service) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTableSQL); err != nil {
		return errors.Wrap(err, "create call log table")
	}

	return nil
}

// Record persists one tool invocation. The provider credential is stored only
// as a SHA-256 hash; the raw key never reaches the database.
func (s *Service) Record(ctx context.Context, input RecordInput) error {
	toolName := strings.TrimSpace(input.ToolName)
	if toolName == "" {
		return errors.New("tool name is required")
	}

	status := input.Status
	if status != StatusSuccess && status != StatusError {
		return errors.Errorf("unknown status %q", status)
	}

	occurredAt := input.OccurredAt.UTC()
	if input.OccurredAt.IsZero() {
		occurredAt = s.clock()
	}

	duration := input.Duration
	if duration < 0 {
		duration = 0
	}

	var params []byte
	if len(input.Parameters) != 0 {
		var err error
		if params, err = json.Marshal(input.Parameters); err != nil {
			return errors.Wrap(err, "marshal parameters")
		}
	}

	id := uuid.New()
	_, err := s.db.Exec(ctx,
		`INSERT INTO mcp_call_logs
		    (id, tool_name, provider_key_hash, status, duration_ms, parameters, error_message, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, toolName, hashProviderKey(input.ProviderKey), status,
		duration.Milliseconds(), params, input.ErrorMessage, occurredAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert call log")
	}

	s.logger.Debug("recorded tool invocation",
		zap.String("tool", toolName),
		zap.String("status", status),
		zap.String("id", id.String()),
	)

	return nil
}

// ListRecent returns up to limit entries ordered by occurrence, newest first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(ctx,
		`SELECT id, tool_name, provider_key_hash, status, duration_ms, parameters, error_message, occurred_at
		 FROM mcp_call_logs
		 ORDER BY occurred_at DESC
		 LIMIT $1`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query call logs")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var entry Entry
		var params []byte
		if err := rows.Scan(&entry.ID, &entry.ToolName, &entry.ProviderKeyHash, &entry.Status,
			&entry.DurationMillis, &params, &entry.ErrorMessage, &entry.OccurredAt); err != nil {
			return nil, errors.Wrap(err, "scan call log row")
		}
		if len(params) != 0 {
			if err := json.Unmarshal(params, &entry.Parameters); err != nil {
				return nil, errors.Wrap(err, "decode parameters")
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate call log rows")
	}

	return entries, nil
}

// hashProviderKey derives the stable non-reversible identifier stored in
// place of the raw credential.
func hashProviderKey(key string) string {
	if key == "" {
		return ""
	}

	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

var _ DB = (*pgxpool.Pool)(nil)
