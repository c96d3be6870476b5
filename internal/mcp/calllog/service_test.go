package calllog

import (
	"context"
	"testing"
	"time"

	logSDK "github.com/Laisky/go-utils/v6/log"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	logger, err := logSDK.NewConsoleWithName("test", logSDK.LevelError)
	require.NoError(t, err)

	fixed := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	service, err := NewService(mock, logger, func() time.Time { return fixed })
	require.NoError(t, err)
	return service, mock
}

func TestRecordInsertsHashedCredential(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectExec("INSERT INTO mcp_call_logs").
		WithArgs(
			pgxmock.AnyArg(), // id
			"general_search",
			hashProviderKey("tvly-secret"),
			StatusSuccess,
			int64(1500),
			pgxmock.AnyArg(), // parameters json
			"",
			pgxmock.AnyArg(), // occurred_at
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := service.Record(context.Background(), RecordInput{
		ToolName:    "general_search",
		ProviderKey: "tvly-secret",
		Status:      StatusSuccess,
		Duration:    1500 * time.Millisecond,
		Parameters:  map[string]any{"query": "golang"},
		OccurredAt:  time.Date(2025, time.June, 1, 11, 59, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRejectsUnknownStatus(t *testing.T) {
	service, _ := newTestService(t)

	err := service.Record(context.Background(), RecordInput{
		ToolName: "general_search",
		Status:   "partial",
	})
	require.Error(t, err)
}

func TestRecordRejectsEmptyToolName(t *testing.T) {
	service, _ := newTestService(t)

	err := service.Record(context.Background(), RecordInput{
		ToolName: "   ",
		Status:   StatusSuccess,
	})
	require.Error(t, err)
}

func TestEnsureSchema(t *testing.T) {
	service, mock := newTestService(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS mcp_call_logs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, service.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHashProviderKey(t *testing.T) {
	require.Empty(t, hashProviderKey(""))
	require.Len(t, hashProviderKey("tvly-secret"), 64)
	require.NotEqual(t, hashProviderKey("a"), hashProviderKey("b"))
}
