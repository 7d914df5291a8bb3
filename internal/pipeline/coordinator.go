package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/LilydevMC/mrpack-distributor/internal/build"
	"github.com/LilydevMC/mrpack-distributor/internal/changelog"
	"github.com/LilydevMC/mrpack-distributor/internal/config"
	"github.com/LilydevMC/mrpack-distributor/internal/github"
	"github.com/LilydevMC/mrpack-distributor/internal/history"
	"github.com/LilydevMC/mrpack-distributor/internal/httpclient"
	"github.com/LilydevMC/mrpack-distributor/internal/logging"
	"github.com/LilydevMC/mrpack-distributor/internal/pack"
	"github.com/LilydevMC/mrpack-distributor/internal/scratch"
	"github.com/LilydevMC/mrpack-distributor/internal/version"
)

// State is a pipeline lifecycle state.
type State string

const (
	StateInit                State = "init"
	StateBuilding            State = "building"
	StateResolvingVersion    State = "resolving_version"
	StateGeneratingChangelog State = "generating_changelog"
	StatePublishing          State = "publishing"
	StateCleaningUp          State = "cleaning_up"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

// Publish target names, also used for journaling.
const (
	TargetGitHub   = "github"
	TargetModrinth = "modrinth"
	TargetDiscord  = "discord"
)

// Credential environment variables. Each is read once per run when its
// target is reached, held for the run, and never persisted or logged.
const (
	EnvGithubToken   = "GITHUB_TOKEN"
	EnvModrinthToken = "MODRINTH_TOKEN"
	EnvWebhookURL    = "WEBHOOK_URL"
)

// TargetResult records one publish target's outcome.
type TargetResult struct {
	Target string
	OK     bool
	Ref    string // remote reference: release URL, version ID
	Err    error
}

// RunSummary reports a release run. Targets holds every publish target that
// was attempted, in execution order; Err is the fatal error when the run
// failed.
type RunSummary struct {
	RunID        string
	State        State
	Version      string
	Name         string
	ArtifactName string
	Targets      []TargetResult
	Err          *StageError
}

// ArtifactExporter produces the modpack artifact from the scratch copy.
// Interface for testing.
type ArtifactExporter interface {
	Export(ctx context.Context, dir string) (*build.Output, error)
}

// ModBuilder compiles the mod artifact from the scratch copy. Interface
// for testing.
type ModBuilder interface {
	Build(ctx context.Context, dir string, args []string) (*build.Output, error)
}

// Coordinator drives a release run through its stages: build the artifact
// in a scratch copy, resolve the publish version, generate release notes,
// fan out to the publish targets, and clean up. Stage failures carry a
// severity; the coordinator is the only place that acts on it.
type Coordinator struct {
	exec     *httpclient.Executor
	scratch  *scratch.Manager
	history  *history.DB // nil disables journaling
	exporter ArtifactExporter
	gradle   ModBuilder
	progress io.Writer // live progress output; nil = silent
	now      func() time.Time
	getenv   func(string) string

	// endpoint overrides, empty = live services
	githubAPI    string
	githubUpload string
	modrinthAPI  string
}

// NewCoordinator creates a Coordinator with real build tools.
func NewCoordinator(exec *httpclient.Executor, sm *scratch.Manager, hist *history.DB) *Coordinator {
	return &Coordinator{
		exec:     exec,
		scratch:  sm,
		history:  hist,
		exporter: build.NewPackwizExporter(&build.ExecRunner{}),
		gradle:   build.NewGradleBuilder(&build.ExecRunner{}),
		now:      time.Now,
		getenv:   os.Getenv,
	}
}

// SetProgress sets a writer for live progress output (e.g. stdout).
func (c *Coordinator) SetProgress(w io.Writer) {
	c.progress = w
}

// SetExporter overrides the modpack exporter. For testing.
func (c *Coordinator) SetExporter(e ArtifactExporter) {
	c.exporter = e
}

// SetModBuilder overrides the mod builder. For testing.
func (c *Coordinator) SetModBuilder(b ModBuilder) {
	c.gradle = b
}

// SetGetenv overrides environment lookup. For testing.
func (c *Coordinator) SetGetenv(fn func(string) string) {
	c.getenv = fn
}

// SetNow overrides the clock. For testing.
func (c *Coordinator) SetNow(fn func() time.Time) {
	c.now = fn
}

// SetEndpoints overrides the publish API endpoints. For testing.
func (c *Coordinator) SetEndpoints(githubAPI, githubUpload, modrinthAPI string) {
	c.githubAPI = githubAPI
	c.githubUpload = githubUpload
	c.modrinthAPI = modrinthAPI
}

// logf prints a progress line if a progress writer is configured.
func (c *Coordinator) logf(format string, args ...interface{}) {
	if c.progress != nil {
		fmt.Fprintf(c.progress, "  → "+format+"\n", args...)
	}
}

// ModpackOpts configures a modpack release run.
type ModpackOpts struct {
	ProjectDir      string
	Config          *config.ModpackConfig
	VersionOverride string
	Notify          bool
}

// RunModpack executes the full modpack release pipeline. The returned
// summary is always non-nil; the error, when set, is the fatal StageError
// that moved the run to Failed.
func (c *Coordinator) RunModpack(ctx context.Context, opts ModpackOpts) (*RunSummary, error) {
	run := &RunSummary{RunID: uuid.NewString(), State: StateInit}
	cfg := opts.Config
	logging.L().Info("run.start", "run_id", run.RunID, "kind", "modpack", "project_dir", opts.ProjectDir)

	c.logf("copying project to scratch directory")
	dir, err := c.scratch.Acquire(opts.ProjectDir)
	if err != nil {
		return c.fail(run, Fatal(StageInit, err))
	}
	defer c.release(dir)

	desc, err := pack.LoadDir(dir.Path)
	if err != nil {
		return c.fail(run, Fatal(StageInit, err))
	}
	desc, err = version.ApplyOverride(dir.Path, desc, opts.VersionOverride)
	if err != nil {
		return c.fail(run, Fatal(StageVersion, err))
	}
	c.journalStart(run.RunID, "modpack", desc.Name, desc.Version)

	run.State = StateBuilding
	c.logf("exporting modpack with packwiz")
	out, err := c.exporter.Export(ctx, dir.Path)
	if err != nil {
		return c.fail(run, Fatal(StageBuild, err))
	}
	run.ArtifactName = out.Name
	c.logf("built %s", out.Name)
	logging.L().Info("build.done", "run_id", run.RunID, "artifact", out.Name)

	run.State = StateResolvingVersion
	src, err := version.FromPack(desc)
	if err != nil {
		return c.fail(run, Fatal(StageVersion, err))
	}
	info := version.Resolve(src, cfg.VersionNameFormat)
	run.Version = info.Number
	run.Name = info.Name
	c.journalDisplayName(run.RunID, info.Name)
	c.logf("resolved version %s (%q)", info.Number, info.Name)
	logging.L().Info("version.resolved", "run_id", run.RunID, "version", info.Number, "name", info.Name)

	spec := releaseSpec{
		github:   cfg.Github,
		modrinth: cfg.Modrinth,
		discord:  cfg.Discord,
		info:     info,
		artifact: out,
		notify:   opts.Notify,
	}
	return c.finishRun(ctx, run, dir, spec)
}

// ModOpts configures a mod release run.
type ModOpts struct {
	ProjectDir string
	Config     *config.ModConfig
	GradleArgs string // overrides the config's gradle_args when set
	Notify     bool
}

// RunMod executes the full mod release pipeline. Artifact metadata comes
// from the [mod] config section instead of a pack descriptor, and the
// build step drives the project's gradle wrapper.
func (c *Coordinator) RunMod(ctx context.Context, opts ModOpts) (*RunSummary, error) {
	run := &RunSummary{RunID: uuid.NewString(), State: StateInit}
	cfg := opts.Config
	logging.L().Info("run.start", "run_id", run.RunID, "kind", "mod", "project_dir", opts.ProjectDir)

	loader, err := pack.ParseLoader(cfg.Mod.Loader)
	if err != nil {
		return c.fail(run, Fatal(StageVersion, err))
	}

	c.logf("copying project to scratch directory")
	dir, err := c.scratch.Acquire(opts.ProjectDir)
	if err != nil {
		return c.fail(run, Fatal(StageInit, err))
	}
	defer c.release(dir)
	c.journalStart(run.RunID, "mod", cfg.Mod.Name, cfg.Mod.Version)

	run.State = StateBuilding
	gradleArgs := opts.GradleArgs
	if gradleArgs == "" {
		gradleArgs = cfg.Mod.GradleArgs
	}
	c.logf("building mod with gradle")
	out, err := c.gradle.Build(ctx, dir.Path, strings.Fields(gradleArgs))
	if err != nil {
		return c.fail(run, Fatal(StageBuild, err))
	}
	run.ArtifactName = out.Name
	c.logf("built %s", out.Name)
	logging.L().Info("build.done", "run_id", run.RunID, "artifact", out.Name)

	run.State = StateResolvingVersion
	src := version.Source{
		Name:        cfg.Mod.Name,
		Version:     cfg.Mod.Version,
		GameVersion: cfg.Mod.McVersion,
		Loader:      loader,
	}
	info := version.Resolve(src, cfg.VersionNameFormat)
	run.Version = info.Number
	run.Name = info.Name
	c.journalDisplayName(run.RunID, info.Name)
	c.logf("resolved version %s (%q)", info.Number, info.Name)
	logging.L().Info("version.resolved", "run_id", run.RunID, "version", info.Number, "name", info.Name)

	spec := releaseSpec{
		github:   cfg.Github,
		modrinth: cfg.Modrinth,
		discord:  cfg.Discord,
		info:     info,
		artifact: out,
		notify:   opts.Notify,
	}
	return c.finishRun(ctx, run, dir, spec)
}

// finishRun drives the changelog, publish, and cleanup stages shared by
// both release kinds. The deferred release in the caller backstops the
// explicit one here; releasing twice is harmless.
func (c *Coordinator) finishRun(ctx context.Context, run *RunSummary, dir *scratch.Dir, spec releaseSpec) (*RunSummary, error) {
	run.State = StateGeneratingChangelog
	spec.changelog = c.generateChangelog(ctx, run.RunID, spec.github)

	run.State = StatePublishing
	if serr := c.publishAll(ctx, run, spec); serr != nil {
		return c.fail(run, serr)
	}

	run.State = StateCleaningUp
	c.logf("cleaning up scratch directory")
	c.release(dir)

	run.State = StateDone
	c.journalFinish(run.RunID, history.StatusDone, "")
	logging.L().Info("run.done", "run_id", run.RunID, "version", run.Version)
	return run, nil
}

// generateChangelog returns release notes text, falling back to the default
// text on lookup failure. Never fatal.
func (c *Coordinator) generateChangelog(ctx context.Context, runID string, gh config.GithubConfig) string {
	client := c.newGithubClient(gh)
	gen := changelog.NewGenerator(client, gh.RepoOwner, gh.RepoName)
	text, err := gen.Generate(ctx)
	if err != nil {
		c.logf("changelog lookup failed, using default text: %v", err)
		logging.L().Warn("changelog.fallback", "run_id", runID, "error", err.Error())
	}
	return text
}

// fail moves the run to Failed. The deferred scratch release still runs on
// this path, so cleanup is guaranteed before the caller sees the error.
func (c *Coordinator) fail(run *RunSummary, serr *StageError) (*RunSummary, error) {
	run.State = StateFailed
	run.Err = serr
	c.journalFinish(run.RunID, history.StatusFailed, serr.Error())
	logging.L().Error("run.failed", "run_id", run.RunID, "stage", string(serr.Stage), "error", serr.Err.Error())
	return run, serr
}

// release frees the scratch directory. Safe to call on every exit path;
// releasing twice is a no-op.
func (c *Coordinator) release(dir *scratch.Dir) {
	if err := dir.Release(); err != nil {
		c.logf("scratch cleanup failed: %v", err)
		logging.L().Warn("cleanup.failed", "error", err.Error())
	}
}

func (c *Coordinator) newGithubClient(gh config.GithubConfig) *github.Client {
	client := github.NewClient(c.exec, gh.RepoOwner, gh.RepoName, c.getenv(EnvGithubToken))
	if c.githubAPI != "" {
		client.SetBaseURLs(c.githubAPI, c.githubUpload)
	}
	return client
}

// --- Journal helpers (best-effort; a broken journal never blocks a release) ---

func (c *Coordinator) journalStart(runID, kind, name, ver string) {
	if c.history != nil {
		_ = c.history.StartRun(runID, kind, name, ver, "")
	}
}

func (c *Coordinator) journalDisplayName(runID, name string) {
	if c.history != nil {
		_ = c.history.SetRunDisplayName(runID, name)
	}
}

func (c *Coordinator) journalFinish(runID, status, detail string) {
	if c.history != nil {
		_ = c.history.FinishRun(runID, status, detail)
	}
}

func (c *Coordinator) journalTarget(runID string, res TargetResult) {
	if c.history != nil {
		detail := ""
		if res.Err != nil {
			detail = res.Err.Error()
		}
		_ = c.history.LogPublishEvent(runID, res.Target, res.OK, res.Ref, detail)
	}
}
