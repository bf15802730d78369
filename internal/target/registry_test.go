package target

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/seatwatch/seatwatch/internal/errors"
	"github.com/seatwatch/seatwatch/internal/logging"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(filepath.Join(t.TempDir(), "targets.json"), nil)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func fullTarget() *Target {
	onSale := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	return &Target{
		ID:                "ET00312876",
		Name:              "Arena Tour Final",
		URL:               "https://tickets.example.com/events/ET00312876",
		Venue:             "City Arena",
		City:              "Mumbai",
		EventDate:         "2026-10-15",
		PredictedOnSale:   &onSale,
		Quantity:          2,
		PriceCeiling:      2500,
		PreferredSections: []string{"Gold", "Silver"},
		TrackingEnabled:   true,
	}
}

func TestRegistryAddGetRemove(t *testing.T) {
	r := newTestRegistry(t)
	tg := fullTarget()

	if err := r.Add(tg); err != nil {
		t.Fatalf("Add() error: %v", err)
	}
	if err := r.Add(fullTarget()); !errors.Is(err, errors.ErrTargetExists) {
		t.Errorf("duplicate Add() error = %v, want ErrTargetExists", err)
	}

	got, err := r.Get(tg.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !reflect.DeepEqual(got, tg) {
		t.Errorf("Get() = %+v, want %+v", got, tg)
	}

	if err := r.Remove(tg.ID); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, err := r.Get(tg.ID); !errors.Is(err, errors.ErrTargetNotFound) {
		t.Errorf("Get() after Remove error = %v, want ErrTargetNotFound", err)
	}
	if err := r.Remove(tg.ID); !errors.Is(err, errors.ErrTargetNotFound) {
		t.Errorf("second Remove() error = %v, want ErrTargetNotFound", err)
	}
}

func TestRegistryRejectsEmptyID(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Add(&Target{Name: "nameless"}); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("Add() error = %v, want ErrInvalidInput", err)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	r, err := NewRegistry(path, nil)
	if err != nil {
		t.Fatal(err)
	}

	tg := fullTarget()
	if err := r.Add(tg); err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	if err := r.UpdateStatus(tg.ID, func(s *Status) {
		s.MergeCheck(true, false, now)
	}); err != nil {
		t.Fatal(err)
	}

	// A fresh registry over the same file sees identical records.
	reopened, err := NewRegistry(path, nil)
	if err != nil {
		t.Fatalf("reopening registry: %v", err)
	}

	want, _ := r.Get(tg.ID)
	got, err := reopened.Get(tg.ID)
	if err != nil {
		t.Fatalf("Get() after reload: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("reloaded target = %+v, want %+v", got, want)
	}
	if got.Status.CheckCount != 1 || !got.Status.Available {
		t.Errorf("reloaded status = %+v", got.Status)
	}
	if got.Status.LastAvailable == nil || !got.Status.LastAvailable.Equal(now) {
		t.Errorf("LastAvailable = %v, want %v", got.Status.LastAvailable, now)
	}
}

func TestMissingSnapshotIsEmptyRegistry(t *testing.T) {
	r, err := NewRegistry(filepath.Join(t.TempDir(), "does-not-exist.json"), nil)
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	if n := r.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0", n)
	}
}

func TestCorruptedSnapshotIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := NewRegistry(path, nil)
	if !errors.Is(err, errors.ErrSnapshotCorrupted) {
		t.Errorf("NewRegistry() error = %v, want ErrSnapshotCorrupted", err)
	}
}

func TestAtomicWriteLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	r, err := NewRegistry(filepath.Join(dir, "targets.json"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Add(fullTarget()); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Errorf("temp file %s left behind after save", e.Name())
		}
	}
}

func TestGetReturnsAClone(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Add(fullTarget()); err != nil {
		t.Fatal(err)
	}

	got, _ := r.Get("ET00312876")
	got.Name = "mutated"
	got.PreferredSections[0] = "mutated"
	got.Status.CheckCount = 99

	again, _ := r.Get("ET00312876")
	if again.Name != "Arena Tour Final" || again.PreferredSections[0] != "Gold" || again.Status.CheckCount != 0 {
		t.Errorf("registry state leaked through a Get clone: %+v", again)
	}
}

func TestEnabledFiltersTracking(t *testing.T) {
	r := newTestRegistry(t)

	on := fullTarget()
	off := fullTarget()
	off.ID = "ET999"
	off.TrackingEnabled = false
	if err := r.Add(on); err != nil {
		t.Fatal(err)
	}
	if err := r.Add(off); err != nil {
		t.Fatal(err)
	}

	enabled := r.Enabled()
	if len(enabled) != 1 || enabled[0].ID != on.ID {
		t.Errorf("Enabled() = %v, want only %s", enabled, on.ID)
	}
	if got := r.List(); len(got) != 2 {
		t.Errorf("List() returned %d targets, want 2", len(got))
	}

	if err := r.SetTracking("ET999", true); err != nil {
		t.Fatal(err)
	}
	if got := r.Enabled(); len(got) != 2 {
		t.Errorf("Enabled() after SetTracking = %d targets, want 2", len(got))
	}
}

func TestStatusMergeSemantics(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	var s Status

	// Three failures in a row accumulate.
	for i := 1; i <= 3; i++ {
		s.MergeError("connection reset", now.Add(time.Duration(i)*time.Minute))
		if s.ConsecutiveErrors != i {
			t.Fatalf("ConsecutiveErrors = %d after failure %d", s.ConsecutiveErrors, i)
		}
	}
	if s.CheckCount != 3 {
		t.Errorf("CheckCount = %d, want 3", s.CheckCount)
	}
	if s.LastError == "" {
		t.Error("LastError should record the failure")
	}

	// The next success resets the streak and clears the error.
	s.MergeCheck(false, false, now.Add(4*time.Minute))
	if s.ConsecutiveErrors != 0 {
		t.Errorf("ConsecutiveErrors = %d after a success, want 0", s.ConsecutiveErrors)
	}
	if s.LastError != "" {
		t.Errorf("LastError = %q after a success, want empty", s.LastError)
	}
	if s.CheckCount != 4 {
		t.Errorf("CheckCount = %d, want 4", s.CheckCount)
	}
	if s.LastAvailable != nil {
		t.Error("LastAvailable should stay unset until inventory is seen")
	}

	s.MergeCheck(true, false, now.Add(5*time.Minute))
	if s.LastAvailable == nil {
		t.Error("LastAvailable should be set when inventory is seen")
	}
}

func TestSaveRetriesOnceThenSurfacesPersistenceError(t *testing.T) {
	dir := t.TempDir()
	logDir := t.TempDir()
	logger, err := logging.NewLogger(logDir, "warn", logging.RotationConfig{})
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, "targets.json")
	r, err := NewRegistry(path, logger)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Add(fullTarget()); err != nil {
		t.Fatal(err)
	}

	// A directory squatting on the temp path makes every snapshot write
	// fail, first attempt and retry alike.
	if err := os.Mkdir(path+".tmp", 0755); err != nil {
		t.Fatal(err)
	}

	err = r.UpdateStatus("ET00312876", func(s *Status) {
		s.MergeCheck(true, false, time.Now())
	})
	var perr *errors.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("UpdateStatus() error = %v, want *errors.PersistenceError", err)
	}

	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}
	logData, err := os.ReadFile(filepath.Join(logDir, "seatwatch.log"))
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(logData), "retrying once"); got != 1 {
		t.Errorf("write retried %d times, want exactly 1", got)
	}

	// The failure is scoped to that mutation: the registry keeps serving,
	// and the next save succeeds once the obstruction clears.
	if _, err := r.Get("ET00312876"); err != nil {
		t.Errorf("Get() after failed save: %v", err)
	}
	if err := os.Remove(path + ".tmp"); err != nil {
		t.Fatal(err)
	}
	if err := r.SetTracking("ET00312876", false); err != nil {
		t.Errorf("SetTracking() after obstruction cleared: %v", err)
	}

	reopened, err := NewRegistry(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.Get("ET00312876")
	if err != nil {
		t.Fatal(err)
	}
	if got.TrackingEnabled {
		t.Error("recovered save never reached the snapshot")
	}
}

func TestUpdateStatusUnknownTarget(t *testing.T) {
	r := newTestRegistry(t)
	err := r.UpdateStatus("nope", func(*Status) {})
	if !errors.Is(err, errors.ErrTargetNotFound) {
		t.Errorf("UpdateStatus() error = %v, want ErrTargetNotFound", err)
	}
}

func TestWatchReloadsOnExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	r, err := NewRegistry(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Add(fullTarget()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan int, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Watch(ctx, func(count int) {
			select {
			case reloaded <- count:
			default:
			}
		})
	}()

	// Give the watcher a moment to arm before editing the file.
	time.Sleep(100 * time.Millisecond)

	// A second process (say, `seatwatch add` in another terminal) rewrites
	// the snapshot with an extra target.
	external, err := NewRegistry(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	extra := fullTarget()
	extra.ID = "ET999"
	if err := external.Add(extra); err != nil {
		t.Fatal(err)
	}

	select {
	case count := <-reloaded:
		if count != 2 {
			t.Errorf("reload reported %d targets, want 2", count)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher never reported the external edit")
	}

	if _, err := r.Get("ET999"); err != nil {
		t.Errorf("externally added target not visible after reload: %v", err)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop on context cancellation")
	}
}

func TestWatchIgnoresOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	r, err := NewRegistry(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Add(fullTarget()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan int, 4)
	go func() {
		_ = r.Watch(ctx, func(count int) { reloads <- count })
	}()
	time.Sleep(100 * time.Millisecond)

	// The registry's own saves must not bounce back as reloads.
	if err := r.UpdateStatus("ET00312876", func(s *Status) {
		s.MergeCheck(false, false, time.Now())
	}); err != nil {
		t.Fatal(err)
	}

	select {
	case count := <-reloads:
		t.Errorf("own write triggered a reload of %d targets", count)
	case <-time.After(2 * reloadDebounce):
	}
}
