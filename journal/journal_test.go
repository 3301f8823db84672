package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDecision(id string, at time.Time, approved bool) DecisionRecord {
	reason := "APPROVED"
	if !approved {
		reason = "RR_RATIO_TOO_LOW"
	}
	return DecisionRecord{
		ID:        id,
		Time:      at,
		Symbol:    "EUR_USD",
		Direction: "BUY",
		Timeframe: "M15",
		Notional:  16000,
		Approved:  approved,
		Reason:    reason,
		Source:    "inference",
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "helm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordDecision(sampleDecision("D1", base, true)))
	require.NoError(t, j.RecordDecision(sampleDecision("D2", base.Add(time.Minute), false)))

	require.NoError(t, j.RecordOrder(OrderRecord{
		ClientOrderID: "HELM-01ARZ3",
		Time:          base,
		Symbol:        "EUR_USD",
		Direction:     "BUY",
		Notional:      16000,
		Venue:         "OANDA",
		OK:            true,
		TradeID:       "9001",
	}))

	got, err := j.RecentDecisions(10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "D2", got[0].ID, "newest first")
	assert.False(t, got[0].Approved)
	assert.Equal(t, "RR_RATIO_TOO_LOW", got[0].Reason)
	assert.Equal(t, "D1", got[1].ID)
	assert.InDelta(t, 16000.0, got[1].Notional, 1e-9)
}

func TestSQLiteDuplicateOrderIDRejected(t *testing.T) {
	t.Parallel()

	j, err := NewSQLite(filepath.Join(t.TempDir(), "helm.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })

	rec := OrderRecord{ClientOrderID: "HELM-DUP", Time: time.Now().UTC(), Symbol: "EUR_USD", Direction: "BUY", Venue: "OANDA"}
	require.NoError(t, j.RecordOrder(rec))
	assert.Error(t, j.RecordOrder(rec), "client order id is the primary key")
}

func TestCSVWritesRows(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	dPath := filepath.Join(dir, "decisions.csv")
	oPath := filepath.Join(dir, "orders.csv")

	j, err := NewCSV(dPath, oPath)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, j.RecordDecision(sampleDecision("D1", at, true)))
	require.NoError(t, j.Close())

	fh, err := os.Open(dPath)
	require.NoError(t, err)
	defer fh.Close()

	rows, err := csv.NewReader(fh).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "id", rows[0][0])
	assert.Equal(t, []string{"D1", "2026-03-01T09:00:00Z", "EUR_USD", "BUY", "M15", "16000", "true", "APPROVED", "inference"}, rows[1])
}
