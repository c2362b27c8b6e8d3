package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/presencewatch/presencewatch/internal/core/status"
	"github.com/presencewatch/presencewatch/internal/data/logfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	mu    sync.Mutex
	snaps []status.Snapshot
	err   error
	ch    chan status.Snapshot
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan status.Snapshot, 16)}
}

func (f *fakeNotifier) Publish(ctx context.Context, snap status.Snapshot) error {
	f.mu.Lock()
	f.snaps = append(f.snaps, snap)
	f.mu.Unlock()
	f.ch <- snap
	return f.err
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.snaps)
}

func waitForPublish(t *testing.T, notifier *fakeNotifier) status.Snapshot {
	t.Helper()
	select {
	case snap := <-notifier.ch:
		return snap
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for a hub update")
		return status.Snapshot{}
	}
}

func assertNoPublish(t *testing.T, notifier *fakeNotifier, wait time.Duration) {
	t.Helper()
	select {
	case snap := <-notifier.ch:
		t.Fatalf("unexpected hub update: %+v", snap)
	case <-time.After(wait):
	}
}

func writeLog(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.WriteString(content)
	require.NoError(t, err)
	require.NoError(t, f.Close())
}

func startWatcher(t *testing.T, dir string, notifier Notifier) (context.CancelFunc, chan error) {
	t.Helper()
	w := New(Config{
		LogDir:       dir,
		FilePrefix:   "MSTeams",
		PollInterval: 25 * time.Millisecond,
	}, notifier)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(3 * time.Second):
			t.Error("watcher did not shut down")
		}
	})
	return cancel, done
}

func TestStartupEmptyFilePublishesSentinelOnce(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "MSTeams_2024-02-07_10-00-00.000000.log", "")
	notifier := newFakeNotifier()

	startWatcher(t, dir, notifier)

	snap := waitForPublish(t, notifier)
	assert.Equal(t, status.Unknown, snap.Availability)
	assert.Equal(t, status.Unknown, snap.NotificationCount)
	assert.Equal(t, status.CallNotInCall, snap.CallStatus)

	// No further updates without log activity.
	assertNoPublish(t, notifier, 150*time.Millisecond)
	assert.Equal(t, 1, notifier.count())
}

func TestStartupFullScanReflectsLastMatches(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "MSTeams_2024-02-07_10-00-00.000000.log",
		"availability: Available, unread notification count: 0\n"+
			"WebViewWindowWin: tags=Call Window previously was visible = false\n"+
			"availability: Busy, unread notification count: 5\n"+
			"BluetoothRadioManager: Device watcher is Started.\n")
	notifier := newFakeNotifier()

	startWatcher(t, dir, notifier)

	snap := waitForPublish(t, notifier)
	assert.Equal(t, "Busy", snap.Availability)
	assert.Equal(t, "5", snap.NotificationCount)
	assert.Equal(t, status.CallNotInCall, snap.CallStatus)
}

func TestIncrementalMostRecentMatchWins(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "MSTeams_2024-02-07_10-00-00.000000.log",
		"availability: Available, unread notification count: 0\n")
	notifier := newFakeNotifier()

	startWatcher(t, dir, notifier)
	first := waitForPublish(t, notifier)
	require.Equal(t, "Available", first.Availability)

	// One batch: oldest line changes availability, newest starts a call.
	// Only the most recent match is surfaced.
	appendLog(t, path,
		"availability: Busy, unread notification count: 2\n"+
			"unrelated line\n"+
			"WebViewWindowWin: tags=Call Window previously was visible = false\n")

	snap := waitForPublish(t, notifier)
	assert.Equal(t, status.CallInCall, snap.CallStatus)
	assert.Equal(t, "Available", snap.Availability, "older availability change in the same batch is skipped")
	assert.Equal(t, 2, notifier.count())
}

func TestIdenticalContentTwiceNoSecondUpdate(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "MSTeams_2024-02-07_10-00-00.000000.log", "")
	notifier := newFakeNotifier()

	startWatcher(t, dir, notifier)
	waitForPublish(t, notifier)

	line := "availability: Away, unread notification count: 3\n"
	appendLog(t, path, line)
	snap := waitForPublish(t, notifier)
	require.Equal(t, "Away", snap.Availability)

	appendLog(t, path, line)
	assertNoPublish(t, notifier, 150*time.Millisecond)
}

func TestRotationToNewerFileTriggersFullScan(t *testing.T) {
	dir := t.TempDir()
	writeLog(t, dir, "MSTeams_2024-02-07_10-00-00.000000.log",
		"availability: Available, unread notification count: 0\n")
	notifier := newFakeNotifier()

	startWatcher(t, dir, notifier)
	first := waitForPublish(t, notifier)
	require.Equal(t, "Available", first.Availability)

	writeLog(t, dir, "MSTeams_2024-02-07_10-05-30.500000.log",
		"availability: BeRightBack, unread notification count: 7\n")

	snap := waitForPublish(t, notifier)
	assert.Equal(t, "BeRightBack", snap.Availability)
	assert.Equal(t, "7", snap.NotificationCount)
	assert.Equal(t, status.CallNotInCall, snap.CallStatus)
}

func TestDirectoryRemovedStopsLoop(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "logs")
	require.NoError(t, os.Mkdir(dir, 0755))
	writeLog(t, dir, "MSTeams_2024-02-07_10-00-00.000000.log", "")
	notifier := newFakeNotifier()

	_, done := startWatcher(t, dir, notifier)
	waitForPublish(t, notifier)

	require.NoError(t, os.RemoveAll(dir))

	select {
	case err := <-done:
		assert.ErrorIs(t, err, logfile.ErrDirectoryNotFound)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop after the directory disappeared")
	}
}

func TestMissingDirectoryAtStartupIsFatal(t *testing.T) {
	notifier := newFakeNotifier()
	w := New(Config{
		LogDir:       filepath.Join(t.TempDir(), "gone"),
		FilePrefix:   "MSTeams",
		PollInterval: 25 * time.Millisecond,
	}, notifier)

	err := w.Run(context.Background())

	assert.ErrorIs(t, err, logfile.ErrDirectoryNotFound)
	assert.Equal(t, StateStopped, w.State())
	assert.Zero(t, notifier.count())
}

func TestWaitsForFirstLogFile(t *testing.T) {
	dir := t.TempDir()
	notifier := newFakeNotifier()

	startWatcher(t, dir, notifier)
	assertNoPublish(t, notifier, 100*time.Millisecond)

	writeLog(t, dir, "MSTeams_2024-02-07_10-00-00.000000.log",
		"availability: Away, unread notification count: 1\n")

	snap := waitForPublish(t, notifier)
	assert.Equal(t, "Away", snap.Availability)
}

func TestNotifierFailureDoesNotStopLoop(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "MSTeams_2024-02-07_10-00-00.000000.log", "")
	notifier := newFakeNotifier()
	notifier.err = errors.New("hub unreachable")

	startWatcher(t, dir, notifier)
	waitForPublish(t, notifier)

	// The failed update is logged and the loop keeps tailing; local state
	// stays optimistic so the next change still publishes.
	appendLog(t, path, "availability: Busy, unread notification count: 4\n")
	snap := waitForPublish(t, notifier)
	assert.Equal(t, "Busy", snap.Availability)
}

func TestNonMatchingLinesProduceNoUpdates(t *testing.T) {
	dir := t.TempDir()
	path := writeLog(t, dir, "MSTeams_2024-02-07_10-00-00.000000.log", "")
	notifier := newFakeNotifier()

	startWatcher(t, dir, notifier)
	waitForPublish(t, notifier)

	appendLog(t, path, "noise\nmore noise\nstill nothing interesting\n")
	assertNoPublish(t, notifier, 150*time.Millisecond)
}
