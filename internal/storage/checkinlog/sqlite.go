package checkinlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = time.RFC3339
)

// Store persists the authenticated session (cookie plus timestamps) and a
// per-day check-in log. Day keys are derived from the caller-supplied time,
// which the worker always passes in China time since that is the service's
// check-in day boundary.
type Store struct {
	db *sql.DB
}

func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) init() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
        account TEXT PRIMARY KEY,
        cookie TEXT,
        cookie_saved_at TEXT,
        last_checkin_at TEXT
    )`,
		`CREATE TABLE IF NOT EXISTS checkin_logs (
        account TEXT NOT NULL,
        signed_date TEXT NOT NULL,
        checkin_done INTEGER NOT NULL DEFAULT 0,
        rewards_claimed INTEGER NOT NULL DEFAULT 0,
        message TEXT,
        PRIMARY KEY(account, signed_date)
    )`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return s.ensureColumns()
}

func (s *Store) ensureColumns() error {
	columns := map[string]bool{}
	rows, err := s.db.Query(`PRAGMA table_info(checkin_logs)`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return err
		}
		columns[strings.ToLower(name)] = true
	}

	alterStatements := []string{}
	addColumn := func(name, definition string) {
		if !columns[name] {
			alterStatements = append(alterStatements, definition)
		}
	}

	addColumn("checkin_done", `ALTER TABLE checkin_logs ADD COLUMN checkin_done INTEGER NOT NULL DEFAULT 0`)
	addColumn("rewards_claimed", `ALTER TABLE checkin_logs ADD COLUMN rewards_claimed INTEGER NOT NULL DEFAULT 0`)
	addColumn("message", `ALTER TABLE checkin_logs ADD COLUMN message TEXT`)

	for _, stmt := range alterStatements {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// LoadSession returns the persisted cookie and timestamps for an account.
// A missing row is not an error: everything comes back zero-valued.
func (s *Store) LoadSession(account string) (cookie string, cookieSavedAt, lastCheckInAt *time.Time, err error) {
	acc := normalizeAccount(account)

	var cookieNS, savedNS, lastNS sql.NullString
	err = s.db.QueryRow(`SELECT cookie, cookie_saved_at, last_checkin_at FROM sessions WHERE account = ?`, acc).
		Scan(&cookieNS, &savedNS, &lastNS)
	if err == sql.ErrNoRows {
		return "", nil, nil, nil
	}
	if err != nil {
		return "", nil, nil, err
	}
	if cookieNS.Valid {
		cookie = cookieNS.String
	}
	cookieSavedAt = parseTimePtr(savedNS)
	lastCheckInAt = parseTimePtr(lastNS)
	return cookie, cookieSavedAt, lastCheckInAt, nil
}

func (s *Store) SaveCookie(account, cookie string, savedAt time.Time) error {
	acc := normalizeAccount(account)

	_, err := s.db.Exec(`INSERT INTO sessions(account, cookie, cookie_saved_at)
    VALUES(?, ?, ?)
    ON CONFLICT(account) DO UPDATE SET cookie = excluded.cookie, cookie_saved_at = excluded.cookie_saved_at`,
		acc, cookie, savedAt.Format(timeLayout))
	return err
}

// MarkCheckIn records a completed check-in for the given day and advances the
// session's last-check-in timestamp.
func (s *Store) MarkCheckIn(account string, day time.Time, rewardsClaimed int, message string) error {
	acc := normalizeAccount(account)
	dateStr := day.Format(dateLayout)

	_, err := s.db.Exec(`INSERT INTO checkin_logs(account, signed_date, checkin_done, rewards_claimed, message)
    VALUES(?, ?, 1, ?, ?)
    ON CONFLICT(account, signed_date) DO UPDATE SET
        checkin_done = 1,
        rewards_claimed = excluded.rewards_claimed,
        message = excluded.message`, acc, dateStr, rewardsClaimed, message)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`INSERT INTO sessions(account, last_checkin_at)
    VALUES(?, ?)
    ON CONFLICT(account) DO UPDATE SET last_checkin_at = excluded.last_checkin_at`,
		acc, day.Format(timeLayout))
	return err
}

func (s *Store) DailyStatus(account string, day time.Time) (done bool, rewardsClaimed int, message string, err error) {
	acc := normalizeAccount(account)
	dateStr := day.Format(dateLayout)

	var doneInt int
	var messageNS sql.NullString
	err = s.db.QueryRow(`SELECT checkin_done, rewards_claimed, message FROM checkin_logs WHERE account = ? AND signed_date = ?`, acc, dateStr).
		Scan(&doneInt, &rewardsClaimed, &messageNS)
	if err == sql.ErrNoRows {
		return false, 0, "", nil
	}
	if err != nil {
		return false, 0, "", err
	}
	done = doneInt == 1
	if messageNS.Valid {
		message = messageNS.String
	}
	return done, rewardsClaimed, message, nil
}

func parseTimePtr(ns sql.NullString) *time.Time {
	if !ns.Valid || strings.TrimSpace(ns.String) == "" {
		return nil
	}
	t, err := time.Parse(timeLayout, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func normalizeAccount(account string) string {
	return strings.ToLower(strings.TrimSpace(account))
}
