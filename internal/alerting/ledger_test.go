package alerting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"telemetry-service/internal/logging"
	"telemetry-service/internal/models"
)

type captureNotifier struct {
	ch chan models.Alert
}

func (n *captureNotifier) Notify(a models.Alert) { n.ch <- a }

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	logger, err := logging.New(t.TempDir(), "error")
	require.NoError(t, err)
	return logger
}

func newTestLedger(t *testing.T) (*Ledger, *captureNotifier) {
	t.Helper()
	n := &captureNotifier{ch: make(chan models.Alert, 10)}
	return NewLedger(10*time.Second, 10, n, testLogger(t)), n
}

func TestLedgerDebounceSuppressesWithinWindow(t *testing.T) {
	l, _ := newTestLedger(t)
	now := time.UnixMilli(1_000_000)

	first, created := l.Record("ward-a-methane", models.SeverityWarning, "Elevated Methane levels at Ward A: 850ppm", now)
	require.True(t, created)

	// Second qualifying reading 5s later, first still unacknowledged.
	second, created := l.Record("ward-a-methane", models.SeverityWarning, "Elevated Methane levels at Ward A: 860ppm", now.Add(5*time.Second))
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, l.Active(), 1)
}

func TestLedgerDebounceExpires(t *testing.T) {
	l, _ := newTestLedger(t)
	now := time.UnixMilli(1_000_000)

	_, created := l.Record("ward-a-methane", models.SeverityWarning, "m1", now)
	require.True(t, created)

	_, created = l.Record("ward-a-methane", models.SeverityWarning, "m2", now.Add(10*time.Second))
	assert.True(t, created)
	assert.Len(t, l.Active(), 2)
}

func TestLedgerAcknowledgementReArmsChannel(t *testing.T) {
	l, _ := newTestLedger(t)
	now := time.UnixMilli(1_000_000)

	first, created := l.Record("ward-a-methane", models.SeverityWarning, "m1", now)
	require.True(t, created)

	_, err := l.Acknowledge(first.ID)
	require.NoError(t, err)

	// Still inside the window, but the previous alert is acknowledged.
	_, created = l.Record("ward-a-methane", models.SeverityWarning, "m2", now.Add(3*time.Second))
	assert.True(t, created)
}

func TestLedgerDebounceIsPerChannel(t *testing.T) {
	l, _ := newTestLedger(t)
	now := time.UnixMilli(1_000_000)

	_, created := l.Record("ward-a-methane", models.SeverityWarning, "m1", now)
	require.True(t, created)
	_, created = l.Record("ward-b-methane", models.SeverityWarning, "m2", now.Add(time.Second))
	assert.True(t, created)
}

func TestLedgerAcknowledgeExactlyOnce(t *testing.T) {
	l, _ := newTestLedger(t)
	now := time.UnixMilli(1_000_000)
	a, _ := l.Record("ward-a-methane", models.SeverityWarning, "m", now)

	got, err := l.Acknowledge(a.ID)
	require.NoError(t, err)
	assert.True(t, got.Acknowledged)

	_, err = l.Acknowledge(a.ID)
	assert.ErrorIs(t, err, ErrAlreadyAcknowledged)

	_, err = l.Acknowledge("no-such-id")
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestLedgerActiveOrdering(t *testing.T) {
	l, _ := newTestLedger(t)
	base := time.UnixMilli(1_000_000)

	l.Record("ward-a-temperature", models.SeverityWarning, "w1", base)
	l.Record("ward-a-methane", models.SeverityCritical, "c1", base.Add(time.Second))
	l.Record("ward-b-temperature", models.SeverityWarning, "w2", base.Add(2*time.Second))
	l.Record("ward-b-methane", models.SeverityCritical, "c2", base.Add(3*time.Second))

	active := l.Active()
	require.Len(t, active, 4)
	assert.Equal(t, "c2", active[0].Message)
	assert.Equal(t, "c1", active[1].Message)
	assert.Equal(t, "w2", active[2].Message)
	assert.Equal(t, "w1", active[3].Message)
}

func TestLedgerHistory(t *testing.T) {
	l, _ := newTestLedger(t)
	base := time.UnixMilli(1_000_000)

	var acked []models.Alert
	for i := 0; i < 15; i++ {
		a, created := l.Record("ward-a-methane", models.SeverityWarning, "m", base.Add(time.Duration(i)*20*time.Second))
		require.True(t, created)
		_, err := l.Acknowledge(a.ID)
		require.NoError(t, err)
		acked = append(acked, a)
	}

	// Display cap applies, most recent first; full history stays retained.
	history := l.History(0)
	require.Len(t, history, 10)
	assert.Equal(t, acked[14].ID, history[0].ID)

	all := l.History(100)
	assert.Len(t, all, 15)
	assert.Empty(t, l.Active())
}

func TestLedgerNotifiesOnCriticalOnly(t *testing.T) {
	l, n := newTestLedger(t)
	now := time.UnixMilli(1_000_000)

	l.Record("ward-a-temperature", models.SeverityWarning, "w", now)
	select {
	case a := <-n.ch:
		t.Fatalf("unexpected notification for warning alert %s", a.ID)
	case <-time.After(100 * time.Millisecond):
	}

	created, ok := l.Record("ward-a-methane", models.SeverityCritical, "c", now)
	require.True(t, ok)
	select {
	case a := <-n.ch:
		assert.Equal(t, created.ID, a.ID)
		assert.Equal(t, models.SeverityCritical, a.Severity)
	case <-time.After(time.Second):
		t.Fatal("expected notification for critical alert")
	}

	// Debounced creation does not re-notify.
	_, ok = l.Record("ward-a-methane", models.SeverityCritical, "c2", now.Add(2*time.Second))
	require.False(t, ok)
	select {
	case <-n.ch:
		t.Fatal("unexpected notification for suppressed alert")
	case <-time.After(100 * time.Millisecond):
	}
}
