// Package store persists the session snapshot, voice preferences, eval
// results and provenance in SQLite. The snapshot lives in a key-value
// table addressed by fixed string keys and is written in one
// transaction, so a crash mid-write can never be read back as a
// half-updated object.
package store

// #region imports
import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iskra-project/spark-engine/internal/audit"
	"github.com/iskra-project/spark-engine/internal/metrics"
	"github.com/iskra-project/spark-engine/internal/phase"
	"github.com/iskra-project/spark-engine/internal/voice"
)

// #endregion

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS snapshot_kv (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS voice_preferences (
	voice      TEXT PRIMARY KEY,
	multiplier REAL NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS eval_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	response_id TEXT NOT NULL,
	overall     REAL NOT NULL,
	grade       TEXT NOT NULL,
	result_json TEXT NOT NULL,
	created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_eval_log_response ON eval_log(response_id);

CREATE TABLE IF NOT EXISTS provenance_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	kind         TEXT NOT NULL,
	decision     TEXT NOT NULL,
	reason       TEXT,
	signals_json TEXT,
	created_at   TEXT NOT NULL
);
`

// Fixed snapshot keys.
const (
	KeyMetrics   = "spark.metrics"
	KeyPhase     = "spark.phase"
	KeyLastVoice = "spark.last_voice"
)

// #endregion

// #region snapshot

// Snapshot is the persisted session state.
type Snapshot struct {
	Metrics   metrics.Vector     `json:"metrics"`
	Phase     phase.Phase        `json:"phase"`
	Prefs     map[string]float64 `json:"voice_preferences"`
	LastVoice string             `json:"last_voice"`
}

// DefaultSnapshot is the hardcoded reseed state.
func DefaultSnapshot() Snapshot {
	v := metrics.Defaults()
	v.Normalize()
	return Snapshot{
		Metrics:   v,
		Phase:     phase.Classify(v),
		Prefs:     map[string]float64{},
		LastVoice: voice.DefaultVoice,
	}
}

// #endregion

// #region store-struct

// Store manages session state in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use by other packages.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion

// #region save-snapshot

// SaveSnapshot writes the whole snapshot in one transaction.
func (s *Store) SaveSnapshot(snap Snapshot) error {
	metricsJSON, err := json.Marshal(snap.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	upsert := `INSERT INTO snapshot_kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	for _, kv := range []struct{ key, value string }{
		{KeyMetrics, string(metricsJSON)},
		{KeyPhase, string(snap.Phase)},
		{KeyLastVoice, snap.LastVoice},
	} {
		if _, err := tx.Exec(upsert, kv.key, kv.value, now); err != nil {
			return fmt.Errorf("upsert %s: %w", kv.key, err)
		}
	}

	for name, mult := range snap.Prefs {
		if _, err := tx.Exec(
			`INSERT INTO voice_preferences (voice, multiplier, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(voice) DO UPDATE SET multiplier = excluded.multiplier, updated_at = excluded.updated_at`,
			name, mult, now,
		); err != nil {
			return fmt.Errorf("upsert preference %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// #endregion

// #region load-snapshot

// LoadSnapshot reads the snapshot. Missing keys, unparseable metrics or
// an unknown phase all surface as errors so the caller can reseed.
func (s *Store) LoadSnapshot() (Snapshot, error) {
	var snap Snapshot

	metricsJSON, err := s.getKV(KeyMetrics)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load metrics: %w", err)
	}
	if err := json.Unmarshal([]byte(metricsJSON), &snap.Metrics); err != nil {
		return Snapshot{}, fmt.Errorf("corrupt metrics snapshot: %w", err)
	}
	snap.Metrics.Normalize()

	phaseStr, err := s.getKV(KeyPhase)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load phase: %w", err)
	}
	snap.Phase = phase.Phase(phaseStr)
	if !phase.Known(snap.Phase) {
		return Snapshot{}, fmt.Errorf("corrupt phase snapshot: %q", phaseStr)
	}

	snap.LastVoice, err = s.getKV(KeyLastVoice)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load last voice: %w", err)
	}

	snap.Prefs, err = s.Preferences()
	if err != nil {
		return Snapshot{}, fmt.Errorf("load preferences: %w", err)
	}
	return snap, nil
}

// LoadOrReseed loads the snapshot; on any failure it discards the
// stored state, persists the hardcoded defaults and returns them. The
// second return reports whether a reseed happened. Startup never fails
// on a bad snapshot.
func (s *Store) LoadOrReseed() (Snapshot, bool, error) {
	snap, err := s.LoadSnapshot()
	if err == nil {
		return snap, false, nil
	}
	snap = DefaultSnapshot()
	if saveErr := s.SaveSnapshot(snap); saveErr != nil {
		return snap, true, fmt.Errorf("reseed after %v: %w", err, saveErr)
	}
	return snap, true, nil
}

func (s *Store) getKV(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM snapshot_kv WHERE key = ?`, key).Scan(&value)
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// #endregion

// #region preferences

// Preferences returns all persisted voice multipliers. Implements
// voice.PreferenceStore.
func (s *Store) Preferences() (map[string]float64, error) {
	rows, err := s.db.Query(`SELECT voice, multiplier FROM voice_preferences`)
	if err != nil {
		return nil, fmt.Errorf("query preferences: %w", err)
	}
	defer rows.Close()

	prefs := map[string]float64{}
	for rows.Next() {
		var name string
		var mult float64
		if err := rows.Scan(&name, &mult); err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs[name] = mult
	}
	return prefs, rows.Err()
}

// SetPreference upserts one voice multiplier. Implements
// voice.PreferenceStore.
func (s *Store) SetPreference(voiceName string, multiplier float64) error {
	_, err := s.db.Exec(
		`INSERT INTO voice_preferences (voice, multiplier, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(voice) DO UPDATE SET multiplier = excluded.multiplier, updated_at = excluded.updated_at`,
		voiceName, multiplier, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set preference %s: %w", voiceName, err)
	}
	return nil
}

// #endregion

// #region eval-log

// AppendEval appends one audit result. Implements audit.Log.
func (s *Store) AppendEval(id string, res audit.EvalResult) error {
	resultJSON, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal eval: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO eval_log (response_id, overall, grade, result_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		id, res.Overall, res.Grade, string(resultJSON),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append eval: %w", err)
	}
	return nil
}

// GetEval returns the most recent audit result for a response id.
func (s *Store) GetEval(responseID string) (audit.EvalResult, error) {
	var resultJSON string
	err := s.db.QueryRow(
		`SELECT result_json FROM eval_log WHERE response_id = ? ORDER BY id DESC LIMIT 1`,
		responseID,
	).Scan(&resultJSON)
	if err != nil {
		return audit.EvalResult{}, fmt.Errorf("get eval %s: %w", responseID, err)
	}
	var res audit.EvalResult
	if err := json.Unmarshal([]byte(resultJSON), &res); err != nil {
		return audit.EvalResult{}, fmt.Errorf("unmarshal eval %s: %w", responseID, err)
	}
	return res, nil
}

// RecentEvals returns the latest audit results, newest first.
func (s *Store) RecentEvals(limit int) ([]audit.EvalResult, error) {
	rows, err := s.db.Query(
		`SELECT result_json FROM eval_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list evals: %w", err)
	}
	defer rows.Close()

	var out []audit.EvalResult
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("scan eval: %w", err)
		}
		var res audit.EvalResult
		if err := json.Unmarshal([]byte(resultJSON), &res); err != nil {
			return nil, fmt.Errorf("unmarshal eval: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// #endregion
