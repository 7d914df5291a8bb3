package analytics

import (
	"database/sql"
	"fmt"
	"math"
)

// DB is the interface for database queries used by analytics.
type DB interface {
	Conn() *sql.DB
}

// TargetReliability holds publish success stats for one target.
type TargetReliability struct {
	Target     string  `json:"target"`
	Attempts   int     `json:"attempts"`
	Succeeded  int     `json:"succeeded"`
	SuccessPct float64 `json:"success_pct"`
}

// QueryTargetReliability returns per-target publish success rates across
// all recorded runs.
func QueryTargetReliability(database DB, since string) ([]TargetReliability, error) {
	query := `
		SELECT target,
			COUNT(*) as attempts,
			SUM(CASE WHEN ok = 1 THEN 1 ELSE 0 END) as succeeded
		FROM publish_events`

	args := []interface{}{}
	if since != "" {
		query += ` WHERE timestamp >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY target ORDER BY target`

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query target reliability: %w", err)
	}
	defer rows.Close()

	var results []TargetReliability
	for rows.Next() {
		var r TargetReliability
		if err := rows.Scan(&r.Target, &r.Attempts, &r.Succeeded); err != nil {
			return nil, fmt.Errorf("scan target reliability: %w", err)
		}
		r.SuccessPct = pct(r.Succeeded, r.Attempts)
		results = append(results, r)
	}
	return results, rows.Err()
}

// RunOutcomes holds run counts per project type. SuccessPct counts only
// finished runs; an in-flight run is neither a success nor a failure.
type RunOutcomes struct {
	ProjectType string  `json:"project_type"`
	Total       int     `json:"total"`
	Done        int     `json:"done"`
	Failed      int     `json:"failed"`
	SuccessPct  float64 `json:"success_pct"`
}

// QueryRunOutcomes returns release outcomes grouped by project type.
func QueryRunOutcomes(database DB, since string) ([]RunOutcomes, error) {
	query := `
		SELECT project_type,
			COUNT(*) as total,
			SUM(CASE WHEN status = 'done' THEN 1 ELSE 0 END) as done,
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) as failed
		FROM release_runs`

	args := []interface{}{}
	if since != "" {
		query += ` WHERE started_at >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY project_type ORDER BY project_type`

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query run outcomes: %w", err)
	}
	defer rows.Close()

	var results []RunOutcomes
	for rows.Next() {
		var r RunOutcomes
		if err := rows.Scan(&r.ProjectType, &r.Total, &r.Done, &r.Failed); err != nil {
			return nil, fmt.Errorf("scan run outcomes: %w", err)
		}
		r.SuccessPct = pct(r.Done, r.Done+r.Failed)
		results = append(results, r)
	}
	return results, rows.Err()
}

// WeeklyThroughput holds release counts for one ISO week.
type WeeklyThroughput struct {
	Period string `json:"period"`
	Runs   int    `json:"runs"`
	Done   int    `json:"done"`
	Failed int    `json:"failed"`
}

// QueryWeeklyThroughput returns release counts grouped by week, most recent
// first, capped at ten weeks.
func QueryWeeklyThroughput(database DB, since string) ([]WeeklyThroughput, error) {
	query := `
		SELECT
			strftime('%Y-W%W', started_at) as period,
			COUNT(*) as runs,
			SUM(CASE WHEN status = 'done' THEN 1 ELSE 0 END) as done,
			SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END) as failed
		FROM release_runs`

	args := []interface{}{}
	if since != "" {
		query += ` WHERE started_at >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY period ORDER BY period DESC LIMIT 10`

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query weekly throughput: %w", err)
	}
	defer rows.Close()

	var results []WeeklyThroughput
	for rows.Next() {
		var r WeeklyThroughput
		if err := rows.Scan(&r.Period, &r.Runs, &r.Done, &r.Failed); err != nil {
			return nil, fmt.Errorf("scan weekly throughput: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// FailureCause pairs a recurring failure detail with its occurrence count.
type FailureCause struct {
	Detail string `json:"detail"`
	Count  int    `json:"count"`
}

// QueryFailureCauses returns the most common failure details among failed
// runs, most frequent first.
func QueryFailureCauses(database DB, since string) ([]FailureCause, error) {
	query := `
		SELECT detail, COUNT(*) as cnt
		FROM release_runs
		WHERE status = 'failed' AND detail IS NOT NULL AND detail != ''`

	args := []interface{}{}
	if since != "" {
		query += ` AND started_at >= ?`
		args = append(args, since)
	}
	query += ` GROUP BY detail ORDER BY cnt DESC, detail LIMIT 5`

	rows, err := database.Conn().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failure causes: %w", err)
	}
	defer rows.Close()

	var results []FailureCause
	for rows.Next() {
		var r FailureCause
		if err := rows.Scan(&r.Detail, &r.Count); err != nil {
			return nil, fmt.Errorf("scan failure cause: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// --- helpers ---

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*1000) / 10
}
