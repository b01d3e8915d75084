package checkinlog

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStoreRequiresPath(t *testing.T) {
	if _, err := NewStore(""); err == nil {
		t.Fatal("expected an error for an empty database path")
	}
}

func TestLoadSessionMissingAccount(t *testing.T) {
	store := newTestStore(t)

	cookie, savedAt, lastAt, err := store.LoadSession("nobody")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if cookie != "" || savedAt != nil || lastAt != nil {
		t.Errorf("missing account must come back zero-valued, got %q %v %v", cookie, savedAt, lastAt)
	}
}

func TestSaveCookieRoundTrip(t *testing.T) {
	store := newTestStore(t)
	saved := time.Date(2026, 8, 31, 9, 30, 0, 0, time.UTC)

	if err := store.SaveCookie("Tester", "ff14risingstones=XYZ", saved); err != nil {
		t.Fatalf("SaveCookie: %v", err)
	}

	// Account lookup is case-insensitive.
	cookie, savedAt, lastAt, err := store.LoadSession("tester")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if cookie != "ff14risingstones=XYZ" {
		t.Errorf("cookie = %q", cookie)
	}
	if savedAt == nil || !savedAt.Equal(saved) {
		t.Errorf("savedAt = %v, want %v", savedAt, saved)
	}
	if lastAt != nil {
		t.Errorf("lastAt = %v, want nil before any check-in", lastAt)
	}

	// Overwrite replaces, never duplicates.
	later := saved.Add(time.Hour)
	if err := store.SaveCookie("tester", "ff14risingstones=NEW", later); err != nil {
		t.Fatalf("SaveCookie: %v", err)
	}
	cookie, savedAt, _, err = store.LoadSession("tester")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if cookie != "ff14risingstones=NEW" || savedAt == nil || !savedAt.Equal(later) {
		t.Errorf("overwrite not applied: %q %v", cookie, savedAt)
	}
}

func TestMarkCheckInAndDailyStatus(t *testing.T) {
	store := newTestStore(t)
	day := time.Date(2026, 8, 31, 8, 0, 0, 0, time.FixedZone("CST", 8*60*60))

	if err := store.MarkCheckIn("tester", day, 2, "check-in: (10000)ok"); err != nil {
		t.Fatalf("MarkCheckIn: %v", err)
	}

	done, claimed, message, err := store.DailyStatus("tester", day)
	if err != nil {
		t.Fatalf("DailyStatus: %v", err)
	}
	if !done || claimed != 2 || message != "check-in: (10000)ok" {
		t.Errorf("status = %v %d %q", done, claimed, message)
	}

	// The session's last-check-in timestamp advances too.
	_, _, lastAt, err := store.LoadSession("tester")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if lastAt == nil || !lastAt.Equal(day) {
		t.Errorf("lastAt = %v, want %v", lastAt, day)
	}

	// Another day is untouched.
	done, _, _, err = store.DailyStatus("tester", day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("DailyStatus: %v", err)
	}
	if done {
		t.Error("next day must not be marked done")
	}
}

func TestMarkCheckInSameDayUpserts(t *testing.T) {
	store := newTestStore(t)
	day := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)

	if err := store.MarkCheckIn("tester", day, 0, "first"); err != nil {
		t.Fatalf("MarkCheckIn: %v", err)
	}
	if err := store.MarkCheckIn("tester", day.Add(time.Hour), 3, "second"); err != nil {
		t.Fatalf("MarkCheckIn: %v", err)
	}

	done, claimed, message, err := store.DailyStatus("tester", day)
	if err != nil {
		t.Fatalf("DailyStatus: %v", err)
	}
	if !done || claimed != 3 || message != "second" {
		t.Errorf("status = %v %d %q, want updated row", done, claimed, message)
	}
}

func TestStoreReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "persist.db")

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	saved := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	if err := store.SaveCookie("tester", "ff14risingstones=XYZ", saved); err != nil {
		t.Fatalf("SaveCookie: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	cookie, _, _, err := reopened.LoadSession("tester")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if cookie != "ff14risingstones=XYZ" {
		t.Errorf("cookie lost across reopen: %q", cookie)
	}
}
