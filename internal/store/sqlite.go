// Package store persists classified thoughts, sessions, and viral
// moments in SQLite.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ihavespoons/feelsy/internal/logger"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

const maxStoredOutputLen = 2000

// Store defines the interface for thought/session persistence.
type Store interface {
	// Thought management
	InsertThought(t *Thought) error
	RecentThoughts(limit int) ([]*Thought, error)
	SessionThoughts(sessionID string, limit int) ([]*Thought, error)

	// Session management
	StartSession(sessionID, projectDir string) error
	EndSession(sessionID, dominantEmotion string) error
	GetSession(sessionID string) (*Session, error)
	ListSessions() ([]*Session, error)

	// Viral moments
	InsertViralMoment(m *ViralMoment) error
	RecentViralMoments(limit int) ([]*ViralMoment, error)

	// Aggregates and maintenance
	Stats() (*Stats, error)
	Purge() error

	// Lifecycle
	Close() error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewSQLiteStore creates a new SQLite-backed store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".feelsy", "feelsy.db")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL mode for better concurrency between the ingestion pipeline and
	// API readers.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug().
		Str("path", dbPath).
		Msg("Opened thought store")

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS thoughts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT,
		session_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		tool_name TEXT,
		tool_input TEXT,
		tool_output TEXT,
		tool_success INTEGER,
		thinking TEXT,
		monologue TEXT,
		emotion TEXT,
		note TEXT,
		observation TEXT,
		context_usage REAL,
		cue TEXT,
		gif_url TEXT,
		gif_title TEXT,
		gif_id TEXT,
		intensity INTEGER DEFAULT 5,
		display TEXT DEFAULT 'normal',
		viral INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		project_dir TEXT,
		total_thoughts INTEGER DEFAULT 0,
		dominant_emotion TEXT
	);

	CREATE TABLE IF NOT EXISTS viral_moments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		sequence_name TEXT,
		event_ids TEXT,
		virality INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_thoughts_session ON thoughts(session_id);
	CREATE INDEX IF NOT EXISTS idx_thoughts_timestamp ON thoughts(timestamp DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// InsertThought stores a classified thought and bumps the session's
// thought counter. Oversized tool output is truncated before storage.
func (s *SQLiteStore) InsertThought(t *Thought) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	output := t.ToolOutput
	if len(output) > maxStoredOutputLen {
		output = output[:maxStoredOutputLen]
	}

	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}

	var success any
	if t.ToolSuccess != nil {
		success = *t.ToolSuccess
	}
	var usage any
	if t.ContextUsage != nil {
		usage = *t.ContextUsage
	}

	result, err := s.db.Exec(
		`INSERT INTO thoughts (
			event_id, session_id, timestamp, tool_name, tool_input, tool_output,
			tool_success, thinking, monologue, emotion, note, observation,
			context_usage, cue, gif_url, gif_title, gif_id, intensity, display, viral
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.EventID, t.SessionID, t.Timestamp.Unix(), t.ToolName, t.ToolInput, output,
		success, t.Thinking, t.Monologue, t.Emotion, t.Note, t.Observation,
		usage, t.Cue, t.GIFURL, t.GIFTitle, t.GIFID, t.Intensity, t.Display, t.Viral,
	)
	if err != nil {
		return fmt.Errorf("failed to insert thought: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		t.ID = id
	}

	_, err = s.db.Exec(
		"UPDATE sessions SET total_thoughts = total_thoughts + 1 WHERE id = ?",
		t.SessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to bump session counter: %w", err)
	}

	return nil
}

// RecentThoughts returns the latest thoughts across all sessions in
// chronological order.
func (s *SQLiteStore) RecentThoughts(limit int) ([]*Thought, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		thoughtColumns+` FROM thoughts ORDER BY timestamp DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent thoughts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	thoughts, err := scanThoughts(rows)
	if err != nil {
		return nil, err
	}
	reverseThoughts(thoughts)
	return thoughts, nil
}

// SessionThoughts returns the latest thoughts for one session in
// chronological order.
func (s *SQLiteStore) SessionThoughts(sessionID string, limit int) ([]*Thought, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		thoughtColumns+` FROM thoughts WHERE session_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get session thoughts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	thoughts, err := scanThoughts(rows)
	if err != nil {
		return nil, err
	}
	reverseThoughts(thoughts)
	return thoughts, nil
}

// StartSession records a session start, or refreshes the start time for
// an id seen before (a resumed session keeps its history).
func (s *SQLiteStore) StartSession(sessionID, projectDir string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, started_at, project_dir) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET ended_at = NULL, project_dir = excluded.project_dir`,
		sessionID, time.Now().Unix(), projectDir,
	)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	return nil
}

// EndSession marks a session as ended with its dominant emotion.
func (s *SQLiteStore) EndSession(sessionID, dominantEmotion string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(
		"UPDATE sessions SET ended_at = ?, dominant_emotion = ? WHERE id = ?",
		time.Now().Unix(), dominantEmotion, sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("session not found: %s", sessionID)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (s *SQLiteStore) GetSession(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var session Session
	var startedAt int64
	var endedAt sql.NullInt64
	var projectDir, dominant sql.NullString

	err := s.db.QueryRow(
		`SELECT id, started_at, ended_at, project_dir, total_thoughts, dominant_emotion
		 FROM sessions WHERE id = ?`,
		sessionID,
	).Scan(&session.ID, &startedAt, &endedAt, &projectDir, &session.TotalThoughts, &dominant)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session not found: %s", sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	session.StartedAt = time.Unix(startedAt, 0)
	if endedAt.Valid {
		t := time.Unix(endedAt.Int64, 0)
		session.EndedAt = &t
	}
	session.ProjectDir = projectDir.String
	session.DominantEmotion = dominant.String
	return &session, nil
}

// ListSessions returns all sessions, most recently started first.
func (s *SQLiteStore) ListSessions() ([]*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, started_at, ended_at, project_dir, total_thoughts, dominant_emotion
		 FROM sessions ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sessions []*Session
	for rows.Next() {
		var session Session
		var startedAt int64
		var endedAt sql.NullInt64
		var projectDir, dominant sql.NullString

		if err := rows.Scan(&session.ID, &startedAt, &endedAt, &projectDir, &session.TotalThoughts, &dominant); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		session.StartedAt = time.Unix(startedAt, 0)
		if endedAt.Valid {
			t := time.Unix(endedAt.Int64, 0)
			session.EndedAt = &t
		}
		session.ProjectDir = projectDir.String
		session.DominantEmotion = dominant.String
		sessions = append(sessions, &session)
	}

	return sessions, rows.Err()
}

// InsertViralMoment stores a completed sequence.
func (s *SQLiteStore) InsertViralMoment(m *ViralMoment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := json.Marshal(m.EventIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal event ids: %w", err)
	}

	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}

	result, err := s.db.Exec(
		`INSERT INTO viral_moments (session_id, timestamp, sequence_name, event_ids, virality)
		 VALUES (?, ?, ?, ?, ?)`,
		m.SessionID, m.Timestamp.Unix(), m.SequenceName, string(ids), m.Virality,
	)
	if err != nil {
		return fmt.Errorf("failed to insert viral moment: %w", err)
	}

	if id, err := result.LastInsertId(); err == nil {
		m.ID = id
	}
	return nil
}

// RecentViralMoments returns the latest viral moments, newest first.
func (s *SQLiteStore) RecentViralMoments(limit int) ([]*ViralMoment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT id, session_id, timestamp, sequence_name, event_ids, virality
		 FROM viral_moments ORDER BY timestamp DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get viral moments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var moments []*ViralMoment
	for rows.Next() {
		var m ViralMoment
		var timestamp int64
		var name, ids sql.NullString

		if err := rows.Scan(&m.ID, &m.SessionID, &timestamp, &name, &ids, &m.Virality); err != nil {
			return nil, fmt.Errorf("failed to scan viral moment: %w", err)
		}

		m.Timestamp = time.Unix(timestamp, 0)
		m.SequenceName = name.String
		if ids.Valid && ids.String != "" {
			if err := json.Unmarshal([]byte(ids.String), &m.EventIDs); err != nil {
				logger.Debug().Err(err).Msg("Failed to unmarshal event ids")
			}
		}
		moments = append(moments, &m)
	}

	return moments, rows.Err()
}

// Stats aggregates totals and per-emotion counts.
func (s *SQLiteStore) Stats() (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &Stats{EmotionCounts: make(map[string]int)}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM thoughts").Scan(&stats.TotalThoughts); err != nil {
		return nil, fmt.Errorf("failed to count thoughts: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&stats.TotalSessions); err != nil {
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	if err := s.db.QueryRow("SELECT COUNT(*) FROM viral_moments").Scan(&stats.TotalViral); err != nil {
		return nil, fmt.Errorf("failed to count viral moments: %w", err)
	}

	rows, err := s.db.Query(
		"SELECT emotion, COUNT(*) FROM thoughts WHERE emotion != '' GROUP BY emotion",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to count emotions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var emotion string
		var count int
		if err := rows.Scan(&emotion, &count); err != nil {
			return nil, fmt.Errorf("failed to scan emotion count: %w", err)
		}
		stats.EmotionCounts[emotion] = count
	}

	return stats, rows.Err()
}

// Purge deletes all stored data.
func (s *SQLiteStore) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"thoughts", "sessions", "viral_moments"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("failed to purge %s: %w", table, err)
		}
	}

	return tx.Commit()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const thoughtColumns = `SELECT id, event_id, session_id, timestamp, tool_name, tool_input,
	tool_output, tool_success, thinking, monologue, emotion, note, observation,
	context_usage, cue, gif_url, gif_title, gif_id, intensity, display, viral`

func scanThoughts(rows *sql.Rows) ([]*Thought, error) {
	var thoughts []*Thought

	for rows.Next() {
		var t Thought
		var timestamp int64
		var success sql.NullBool
		var usage sql.NullFloat64
		var eventID, toolName, toolInput, toolOutput, thinking sql.NullString
		var monologue, emotion, note, observation, cue sql.NullString
		var gifURL, gifTitle, gifID, display sql.NullString

		if err := rows.Scan(
			&t.ID, &eventID, &t.SessionID, &timestamp, &toolName, &toolInput,
			&toolOutput, &success, &thinking, &monologue, &emotion, &note, &observation,
			&usage, &cue, &gifURL, &gifTitle, &gifID, &t.Intensity, &display, &t.Viral,
		); err != nil {
			return nil, fmt.Errorf("failed to scan thought: %w", err)
		}

		t.Timestamp = time.Unix(timestamp, 0)
		if success.Valid {
			v := success.Bool
			t.ToolSuccess = &v
		}
		if usage.Valid {
			v := usage.Float64
			t.ContextUsage = &v
		}
		t.EventID = eventID.String
		t.ToolName = toolName.String
		t.ToolInput = toolInput.String
		t.ToolOutput = toolOutput.String
		t.Thinking = thinking.String
		t.Monologue = monologue.String
		t.Emotion = emotion.String
		t.Note = note.String
		t.Observation = observation.String
		t.Cue = cue.String
		t.GIFURL = gifURL.String
		t.GIFTitle = gifTitle.String
		t.GIFID = gifID.String
		t.Display = display.String

		thoughts = append(thoughts, &t)
	}

	return thoughts, rows.Err()
}

func reverseThoughts(thoughts []*Thought) {
	for i, j := 0, len(thoughts)-1; i < j; i, j = i+1, j-1 {
		thoughts[i], thoughts[j] = thoughts[j], thoughts[i]
	}
}
