package trends

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRecordDocumentShape(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local)
	rec := FetchRecord{ID: "abc", Topics: []string{"A", "B"}, Timestamp: ts, Address: "203.0.113.7"}
	doc := rec.Document()

	require.Equal(t, "abc", doc.ID)
	require.Equal(t, []string{"A", "B"}, doc.Topics)
	require.Equal(t, "2024-03-09 14:05:07", doc.Timestamp)
	require.Equal(t, "203.0.113.7", doc.Address)

	doc.Topics[0] = "mutated"
	require.Equal(t, "A", rec.Topics[0])
}

func TestOutcomeConstructors(t *testing.T) {
	t.Parallel()

	topics := []string{"x"}
	ok := Success(FetchRecord{ID: "1", Topics: topics})
	require.True(t, ok.OK())
	topics[0] = "changed"
	require.Equal(t, "x", ok.Record.Topics[0])

	bad := Failure("")
	require.False(t, bad.OK())
	require.Equal(t, "unknown error", bad.Reason)
}

func TestStatusString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "idle", StatusIdle.String())
	require.Equal(t, "fetching", StatusFetching.String())
	require.Equal(t, "completed", StatusCompleted.String())
	require.Equal(t, "unknown", Status(42).String())
}
