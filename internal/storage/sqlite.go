// Package storage provides SQLite-based persistence for dungeon run
// results and race history. Uses the pure-Go modernc.org/sqlite driver
// to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-dungeon/internal/race"
)

// Run outcomes as stored in the runs table.
const (
	OutcomeEscaped   = "escaped"   // Reached the victory gate
	OutcomeDied      = "died"      // Run ended in death
	OutcomeAbandoned = "abandoned" // Player quit mid-run
)

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// RunEntry represents a single finished (or abandoned) dungeon run.
type RunEntry struct {
	ID            int64
	Mode          string // "campaign", "arena", or "race"
	Score         int
	Outcome       string // OutcomeEscaped, OutcomeDied, OutcomeAbandoned
	Stage         string // Stage the run ended on
	StagesCleared int
	CreatedAt     time.Time
}

// RaceRecord represents the outcome of a head-to-head race.
type RaceRecord struct {
	ID             int64
	MatchID        string
	Racer1Session  string
	Racer2Session  string
	Score1         int
	Score2         int
	StagesCleared1 int
	StagesCleared2 int
	WinnerSession  string // Empty if draw
	EndReason      string
	Duration       int // Duration in seconds
	CreatedAt      time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			mode TEXT NOT NULL,
			score INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			stage TEXT NOT NULL DEFAULT '',
			stages_cleared INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(mode, score DESC);

		CREATE TABLE IF NOT EXISTS race_matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			racer1_session TEXT NOT NULL,
			racer2_session TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			stages_cleared1 INTEGER NOT NULL DEFAULT 0,
			stages_cleared2 INTEGER NOT NULL DEFAULT 0,
			winner_session TEXT,
			end_reason TEXT NOT NULL,
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_race_matches_racer1 ON race_matches(racer1_session);
		CREATE INDEX IF NOT EXISTS idx_race_matches_racer2 ON race_matches(racer2_session);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// scanTime normalizes a scanned created_at value; the sqlite driver
// may hand back either a time.Time or its string form.
func scanTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// SaveRun records a finished dungeon run.
// Returns the ID of the inserted record.
func (s *Store) SaveRun(run RunEntry) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs (mode, score, outcome, stage, stages_cleared)
		 VALUES (?, ?, ?, ?, ?)`,
		run.Mode, run.Score, run.Outcome, run.Stage, run.StagesCleared,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopRuns retrieves the top N runs for the given mode.
// Results are ordered by score descending.
func (s *Store) TopRuns(mode string, limit int) ([]RunEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, mode, score, outcome, stage, stages_cleared, created_at
		 FROM runs
		 WHERE mode = ?
		 ORDER BY score DESC
		 LIMIT ?`,
		mode, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// AllRuns retrieves all runs for the given mode (no limit).
func (s *Store) AllRuns(mode string) ([]RunEntry, error) {
	rows, err := s.db.Query(
		`SELECT id, mode, score, outcome, stage, stages_cleared, created_at
		 FROM runs
		 WHERE mode = ?
		 ORDER BY score DESC`,
		mode,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	return collectRuns(rows)
}

// collectRuns scans the remaining rows of a runs query.
func collectRuns(rows *sql.Rows) ([]RunEntry, error) {
	var entries []RunEntry
	for rows.Next() {
		var e RunEntry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.Mode, &e.Score, &e.Outcome, &e.Stage, &e.StagesCleared, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = scanTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// HighScore returns the highest score for the given mode.
// Returns 0 if no runs exist.
func (s *Store) HighScore(mode string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM runs WHERE mode = ?",
		mode,
	).Scan(&score)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query high score: %w", err)
	}

	if !score.Valid {
		return 0, nil
	}

	return int(score.Int64), nil
}

// ClearRuns deletes all runs for the given mode.
func (s *Store) ClearRuns(mode string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE mode = ?", mode)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// SaveRaceMatch records the result of a race.
// Returns the ID of the inserted record.
func (s *Store) SaveRaceMatch(rec RaceRecord) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO race_matches
		 (match_id, racer1_session, racer2_session, score1, score2,
		  stages_cleared1, stages_cleared2, winner_session, end_reason, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.MatchID,
		rec.Racer1Session,
		rec.Racer2Session,
		rec.Score1,
		rec.Score2,
		rec.StagesCleared1,
		rec.StagesCleared2,
		rec.WinnerSession,
		rec.EndReason,
		rec.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save race: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// rowScanner covers both sql.Row and sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRace reads one race_matches row.
func scanRace(row rowScanner) (RaceRecord, error) {
	var rec RaceRecord
	var createdAt any
	var winnerSession sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.MatchID,
		&rec.Racer1Session,
		&rec.Racer2Session,
		&rec.Score1,
		&rec.Score2,
		&rec.StagesCleared1,
		&rec.StagesCleared2,
		&winnerSession,
		&rec.EndReason,
		&rec.Duration,
		&createdAt,
	)
	if err != nil {
		return RaceRecord{}, err
	}

	if winnerSession.Valid {
		rec.WinnerSession = winnerSession.String
	}
	rec.CreatedAt = scanTime(createdAt)
	return rec, nil
}

const raceColumns = `id, match_id, racer1_session, racer2_session,
	score1, score2, stages_cleared1, stages_cleared2,
	winner_session, end_reason, duration_secs, created_at`

// RaceByID retrieves a race by its match ID.
// Returns nil if no such race was recorded.
func (s *Store) RaceByID(matchID string) (*RaceRecord, error) {
	row := s.db.QueryRow(
		`SELECT `+raceColumns+` FROM race_matches WHERE match_id = ?`,
		matchID,
	)

	rec, err := scanRace(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query race: %w", err)
	}

	return &rec, nil
}

// RecentRaces retrieves the most recent races.
func (s *Store) RecentRaces(limit int) ([]RaceRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+raceColumns+` FROM race_matches ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query races: %w", err)
	}
	defer rows.Close()

	return collectRaces(rows)
}

// RacerHistory retrieves race history for a specific session.
func (s *Store) RacerHistory(sessionID string, limit int) ([]RaceRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+raceColumns+` FROM race_matches
		 WHERE racer1_session = ? OR racer2_session = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		sessionID, sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query racer history: %w", err)
	}
	defer rows.Close()

	return collectRaces(rows)
}

// collectRaces scans the remaining rows of a race_matches query.
func collectRaces(rows *sql.Rows) ([]RaceRecord, error) {
	var records []RaceRecord
	for rows.Next() {
		rec, err := scanRace(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// SaveRaceResult implements race.ResultSaver.
// This adapter lets the coordinator save race results without a direct
// storage dependency.
func (s *Store) SaveRaceResult(data race.ResultData) error {
	rec := RaceRecord{
		MatchID:        data.MatchID,
		Racer1Session:  data.Racer1Session,
		Racer2Session:  data.Racer2Session,
		Score1:         data.Score1,
		Score2:         data.Score2,
		StagesCleared1: data.StagesCleared1,
		StagesCleared2: data.StagesCleared2,
		WinnerSession:  data.WinnerSession,
		EndReason:      data.EndReason,
		Duration:       data.DurationSecs,
	}
	_, err := s.SaveRaceMatch(rec)
	return err
}

// Ensure Store implements ResultSaver
var _ race.ResultSaver = (*Store)(nil)

// ModeStats contains aggregated statistics for a game mode.
type ModeStats struct {
	Mode       string
	RunCount   int
	HighScore  int
	AvgScore   float64
	TotalScore int64
	Escapes    int // Runs that reached the victory gate
	LastPlayed time.Time
}

// GetModeStats retrieves aggregated statistics for a specific mode.
func (s *Store) GetModeStats(mode string) (*ModeStats, error) {
	stats := &ModeStats{Mode: mode}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(AVG(score), 0), COALESCE(SUM(score), 0),
		        COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0)
		 FROM runs WHERE mode = ?`,
		OutcomeEscaped, mode,
	).Scan(&stats.RunCount, &stats.HighScore, &stats.AvgScore, &stats.TotalScore, &stats.Escapes)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get mode stats: %w", err)
	}

	// Get last played
	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM runs WHERE mode = ? ORDER BY created_at DESC LIMIT 1`,
		mode,
	).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		stats.LastPlayed = scanTime(lastPlayed)
	}

	return stats, nil
}

// GetAllModeStats retrieves statistics for every mode that has runs.
func (s *Store) GetAllModeStats() (map[string]*ModeStats, error) {
	rows, err := s.db.Query(
		`SELECT mode, COUNT(*), MAX(score), AVG(score), SUM(score),
		        SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), MAX(created_at)
		 FROM runs
		 GROUP BY mode`,
		OutcomeEscaped,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all mode stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*ModeStats)
	for rows.Next() {
		var m ModeStats
		var lastPlayed any
		if err := rows.Scan(&m.Mode, &m.RunCount, &m.HighScore, &m.AvgScore, &m.TotalScore, &m.Escapes, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}

		m.LastPlayed = scanTime(lastPlayed)
		stats[m.Mode] = &m
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}
