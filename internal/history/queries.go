package history

import (
	"database/sql"
	"fmt"
)

// Run statuses.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// ReleaseRun represents a row in the release_runs table.
type ReleaseRun struct {
	ID          string
	ProjectType string
	ProjectName string
	Version     string
	DisplayName string
	Status      string
	Detail      string
	StartedAt   string
	FinishedAt  string
}

// PublishEvent represents a row in the publish_events table.
type PublishEvent struct {
	ID        int
	RunID     string
	Target    string
	OK        bool
	RemoteRef string
	Detail    string
	Timestamp string
}

// StartRun records the beginning of a release run.
func (d *DB) StartRun(id, projectType, projectName, version, displayName string) error {
	_, err := d.conn.Exec(
		`INSERT INTO release_runs (id, project_type, project_name, version, display_name, status) VALUES (?, ?, ?, ?, ?, ?)`,
		id, projectType, projectName, version, displayName, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// SetRunDisplayName records the resolved release name once version
// resolution has produced it.
func (d *DB) SetRunDisplayName(id, name string) error {
	res, err := d.conn.Exec(`UPDATE release_runs SET display_name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("set run display name: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %q not found", id)
	}
	return nil
}

// FinishRun marks a run done or failed and records its finish time.
func (d *DB) FinishRun(id, status, detail string) error {
	res, err := d.conn.Exec(
		`UPDATE release_runs SET status = ?, detail = ?, finished_at = datetime('now') WHERE id = ?`,
		status, detail, id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %q not found", id)
	}
	return nil
}

// LogPublishEvent records the outcome of one publish target within a run.
func (d *DB) LogPublishEvent(runID, target string, ok bool, remoteRef, detail string) error {
	_, err := d.conn.Exec(
		`INSERT INTO publish_events (run_id, target, ok, remote_ref, detail) VALUES (?, ?, ?, ?, ?)`,
		runID, target, ok, remoteRef, detail,
	)
	if err != nil {
		return fmt.Errorf("log publish event: %w", err)
	}
	return nil
}

// GetRun returns a single run by ID, or nil if it does not exist.
func (d *DB) GetRun(id string) (*ReleaseRun, error) {
	row := d.conn.QueryRow(
		`SELECT id, project_type, project_name, version, display_name, status, detail, started_at, finished_at
		 FROM release_runs WHERE id = ?`,
		id,
	)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// RecentRuns returns the most recent runs, newest first.
func (d *DB) RecentRuns(limit int) ([]ReleaseRun, error) {
	rows, err := d.conn.Query(
		`SELECT id, project_type, project_name, version, display_name, status, detail, started_at, finished_at
		 FROM release_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent runs: %w", err)
	}
	defer rows.Close()

	var runs []ReleaseRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// EventsForRun returns the publish events of a run in execution order.
func (d *DB) EventsForRun(runID string) ([]PublishEvent, error) {
	rows, err := d.conn.Query(
		`SELECT id, run_id, target, ok, remote_ref, detail, timestamp
		 FROM publish_events WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list publish events: %w", err)
	}
	defer rows.Close()

	var events []PublishEvent
	for rows.Next() {
		var e PublishEvent
		var remoteRef, detail sql.NullString
		if err := rows.Scan(&e.ID, &e.RunID, &e.Target, &e.OK, &remoteRef, &detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan publish event: %w", err)
		}
		if remoteRef.Valid {
			e.RemoteRef = remoteRef.String
		}
		if detail.Valid {
			e.Detail = detail.String
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*ReleaseRun, error) {
	var r ReleaseRun
	var detail, finishedAt sql.NullString
	err := row.Scan(&r.ID, &r.ProjectType, &r.ProjectName, &r.Version, &r.DisplayName, &r.Status, &detail, &r.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	if detail.Valid {
		r.Detail = detail.String
	}
	if finishedAt.Valid {
		r.FinishedAt = finishedAt.String
	}
	return &r, nil
}
