// Package provenance records why the engine did what it did: phase
// changes, ritual triggers and executions, playbook decisions, manual
// overrides and snapshot reseeds, each with its reason string. The log
// is append-only and shares the store's database.
package provenance

// #region imports
import (
	"database/sql"
	"fmt"
	"time"
)

// #endregion

// #region entry

// Entry kinds.
const (
	KindPhaseChange    = "phase_change"
	KindRitualTrigger  = "ritual_trigger"
	KindRitualExecuted = "ritual_executed"
	KindRitualDeferred = "ritual_deferred"
	KindPlaybook       = "playbook"
	KindOverride       = "override"
	KindReseed         = "reseed"
)

// Entry is a single row in the provenance_log table.
type Entry struct {
	ID          int64
	Kind        string
	Decision    string
	Reason      string
	SignalsJSON string
	CreatedAt   time.Time
}

// #endregion

// #region append

// Append writes one provenance entry.
func Append(db *sql.DB, entry Entry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := db.Exec(
		`INSERT INTO provenance_log (kind, decision, reason, signals_json, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.Kind,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.SignalsJSON),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append provenance: %w", err)
	}
	return nil
}

// #endregion

// #region recent

// Recent returns the latest entries, newest first.
func Recent(db *sql.DB, limit int) ([]Entry, error) {
	rows, err := db.Query(
		`SELECT id, kind, decision, reason, signals_json, created_at
		 FROM provenance_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list provenance: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var reason, signals sql.NullString
		var createdStr string
		if err := rows.Scan(&e.ID, &e.Kind, &e.Decision, &reason, &signals, &createdStr); err != nil {
			return nil, fmt.Errorf("scan provenance: %w", err)
		}
		if reason.Valid {
			e.Reason = reason.String
		}
		if signals.Valid {
			e.SignalsJSON = signals.String
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, e)
	}
	return out, rows.Err()
}

// #endregion

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion
