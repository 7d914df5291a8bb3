package analytics

import (
	"database/sql"
	"testing"

	"github.com/LilydevMC/mrpack-distributor/internal/history"
)

func testDB(t *testing.T) *history.DB {
	t.Helper()
	d, err := history.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := d.Migrate(); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func exec(t *testing.T, conn *sql.DB, query string, args ...interface{}) {
	t.Helper()
	if _, err := conn.Exec(query, args...); err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
}

func seedRun(t *testing.T, conn *sql.DB, id, projectType, status, detail, startedAt string) {
	t.Helper()
	exec(t, conn, `INSERT INTO release_runs (id, project_type, project_name, version, display_name, status, detail, started_at)
		VALUES (?, ?, 'Test Pack', '1.0.0', 'Test Pack 1.0.0', ?, ?, ?)`,
		id, projectType, status, detail, startedAt)
}

func TestQueryTargetReliability(t *testing.T) {
	d := testDB(t)
	c := d.Conn()
	seedRun(t, c, "r1", "modpack", "done", "", "2024-06-01 10:00:00")

	exec(t, c, `INSERT INTO publish_events (run_id, target, ok) VALUES ('r1', 'github', 1)`)
	exec(t, c, `INSERT INTO publish_events (run_id, target, ok) VALUES ('r1', 'github', 1)`)
	exec(t, c, `INSERT INTO publish_events (run_id, target, ok) VALUES ('r1', 'github', 0)`)
	exec(t, c, `INSERT INTO publish_events (run_id, target, ok) VALUES ('r1', 'modrinth', 1)`)

	results, err := QueryTargetReliability(d, "")
	if err != nil {
		t.Fatalf("QueryTargetReliability: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(results))
	}

	gh := results[0]
	if gh.Target != "github" || gh.Attempts != 3 || gh.Succeeded != 2 {
		t.Errorf("github: %+v, want 3 attempts / 2 succeeded", gh)
	}
	if gh.SuccessPct != 66.7 {
		t.Errorf("github success pct = %v, want 66.7", gh.SuccessPct)
	}
	mr := results[1]
	if mr.Target != "modrinth" || mr.SuccessPct != 100.0 {
		t.Errorf("modrinth: %+v, want 100%%", mr)
	}
}

func TestQueryTargetReliability_Since(t *testing.T) {
	d := testDB(t)
	c := d.Conn()
	seedRun(t, c, "r1", "modpack", "done", "", "2024-01-01 10:00:00")

	exec(t, c, `INSERT INTO publish_events (run_id, target, ok, timestamp) VALUES ('r1', 'github', 0, '2024-01-01 10:00:00')`)
	exec(t, c, `INSERT INTO publish_events (run_id, target, ok, timestamp) VALUES ('r1', 'github', 1, '2024-06-01 10:00:00')`)

	results, err := QueryTargetReliability(d, "2024-03-01")
	if err != nil {
		t.Fatalf("QueryTargetReliability: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 target, got %d", len(results))
	}
	if results[0].Attempts != 1 || results[0].SuccessPct != 100.0 {
		t.Errorf("since filter not applied: %+v", results[0])
	}
}

func TestQueryRunOutcomes(t *testing.T) {
	d := testDB(t)
	c := d.Conn()
	seedRun(t, c, "r1", "modpack", "done", "", "2024-06-01 10:00:00")
	seedRun(t, c, "r2", "modpack", "done", "", "2024-06-02 10:00:00")
	seedRun(t, c, "r3", "modpack", "failed", "build: packwiz exited with status 1", "2024-06-03 10:00:00")
	seedRun(t, c, "r4", "mod", "done", "", "2024-06-04 10:00:00")
	seedRun(t, c, "r5", "mod", "running", "", "2024-06-05 10:00:00")

	results, err := QueryRunOutcomes(d, "")
	if err != nil {
		t.Fatalf("QueryRunOutcomes: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 project types, got %d", len(results))
	}

	mod := results[0]
	if mod.ProjectType != "mod" || mod.Total != 2 || mod.Done != 1 || mod.Failed != 0 {
		t.Errorf("mod outcomes: %+v", mod)
	}
	if mod.SuccessPct != 100.0 {
		t.Errorf("mod success pct = %v, want 100 (running run excluded)", mod.SuccessPct)
	}
	pack := results[1]
	if pack.ProjectType != "modpack" || pack.Total != 3 || pack.Done != 2 || pack.Failed != 1 {
		t.Errorf("modpack outcomes: %+v", pack)
	}
	if pack.SuccessPct != 66.7 {
		t.Errorf("modpack success pct = %v, want 66.7", pack.SuccessPct)
	}
}

func TestQueryWeeklyThroughput(t *testing.T) {
	d := testDB(t)
	c := d.Conn()
	// Two runs in one week, one in the next.
	seedRun(t, c, "r1", "modpack", "done", "", "2024-06-03 10:00:00")
	seedRun(t, c, "r2", "modpack", "failed", "x", "2024-06-04 10:00:00")
	seedRun(t, c, "r3", "modpack", "done", "", "2024-06-10 10:00:00")

	results, err := QueryWeeklyThroughput(d, "")
	if err != nil {
		t.Fatalf("QueryWeeklyThroughput: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(results))
	}

	// Most recent week first.
	if results[0].Runs != 1 || results[0].Done != 1 || results[0].Failed != 0 {
		t.Errorf("latest week: %+v", results[0])
	}
	if results[1].Runs != 2 || results[1].Done != 1 || results[1].Failed != 1 {
		t.Errorf("earlier week: %+v", results[1])
	}
	if results[0].Period <= results[1].Period {
		t.Errorf("weeks not in descending order: %s, %s", results[0].Period, results[1].Period)
	}
}

func TestQueryFailureCauses(t *testing.T) {
	d := testDB(t)
	c := d.Conn()
	seedRun(t, c, "r1", "modpack", "failed", "build: packwiz exited with status 1", "2024-06-01 10:00:00")
	seedRun(t, c, "r2", "modpack", "failed", "build: packwiz exited with status 1", "2024-06-02 10:00:00")
	seedRun(t, c, "r3", "modpack", "failed", "publish: MODRINTH_TOKEN is not set", "2024-06-03 10:00:00")
	seedRun(t, c, "r4", "modpack", "done", "", "2024-06-04 10:00:00")

	results, err := QueryFailureCauses(d, "")
	if err != nil {
		t.Fatalf("QueryFailureCauses: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 causes, got %d", len(results))
	}
	if results[0].Detail != "build: packwiz exited with status 1" || results[0].Count != 2 {
		t.Errorf("top cause: %+v", results[0])
	}
	if results[1].Count != 1 {
		t.Errorf("second cause: %+v", results[1])
	}
}

func TestQueriesEmptyJournal(t *testing.T) {
	d := testDB(t)

	if r, err := QueryTargetReliability(d, ""); err != nil || len(r) != 0 {
		t.Errorf("target reliability on empty journal: %v, %v", r, err)
	}
	if r, err := QueryRunOutcomes(d, ""); err != nil || len(r) != 0 {
		t.Errorf("run outcomes on empty journal: %v, %v", r, err)
	}
	if r, err := QueryWeeklyThroughput(d, ""); err != nil || len(r) != 0 {
		t.Errorf("weekly throughput on empty journal: %v, %v", r, err)
	}
	if r, err := QueryFailureCauses(d, ""); err != nil || len(r) != 0 {
		t.Errorf("failure causes on empty journal: %v, %v", r, err)
	}
}
