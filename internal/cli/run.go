package cli

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LilydevMC/mrpack-distributor/internal/build"
	"github.com/LilydevMC/mrpack-distributor/internal/config"
	"github.com/LilydevMC/mrpack-distributor/internal/history"
	"github.com/LilydevMC/mrpack-distributor/internal/httpclient"
	"github.com/LilydevMC/mrpack-distributor/internal/logging"
	"github.com/LilydevMC/mrpack-distributor/internal/pipeline"
	"github.com/LilydevMC/mrpack-distributor/internal/scratch"
)

// loadModpackConfig reads the project config, overlays user defaults, and
// validates the result.
func loadModpackConfig(dir string) (*config.ModpackConfig, error) {
	cfg, err := config.LoadModpack(filepath.Join(dir, config.ModpackFileName))
	if err != nil {
		return nil, err
	}
	defaults, err := loadUserDefaults()
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults(defaults)
	if errs := config.ValidateModpack(cfg); len(errs) > 0 {
		return nil, configError(config.ModpackFileName, errs)
	}
	return cfg, nil
}

// loadModConfig is the mod counterpart of loadModpackConfig.
func loadModConfig(dir string) (*config.ModConfig, error) {
	cfg, err := config.LoadMod(filepath.Join(dir, config.ModFileName))
	if err != nil {
		return nil, err
	}
	defaults, err := loadUserDefaults()
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults(defaults)
	if errs := config.ValidateMod(cfg); len(errs) > 0 {
		return nil, configError(config.ModFileName, errs)
	}
	return cfg, nil
}

// loadUserDefaults reads the per-user overlay. No home directory means no
// overlay, not an error.
func loadUserDefaults() (*config.UserDefaults, error) {
	path, err := config.DefaultsPath()
	if err != nil {
		return nil, nil
	}
	return config.LoadUserDefaults(path)
}

func configError(file string, errs []config.ValidationError) error {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = "  " + e.Error()
	}
	return fmt.Errorf("invalid %s:\n%s", file, strings.Join(lines, "\n"))
}

// newCoordinator wires the release pipeline with its real dependencies:
// file logging, the SQLite run journal, and build tools streaming to the
// command's output. The returned cleanup closes the journal and log file.
func newCoordinator(cmd *cobra.Command) (*pipeline.Coordinator, func(), error) {
	debug, _ := cmd.Root().PersistentFlags().GetBool("debug")
	logCleanup, err := logging.Setup(logging.Config{Debug: debug})
	if err != nil {
		return nil, nil, fmt.Errorf("set up logging: %w", err)
	}

	hist := openJournal(cmd.ErrOrStderr())

	runner := &build.ExecRunner{Stream: cmd.OutOrStdout()}
	coord := pipeline.NewCoordinator(httpclient.NewExecutor(), scratch.NewManager(""), hist)
	coord.SetExporter(build.NewPackwizExporter(runner))
	coord.SetModBuilder(build.NewGradleBuilder(runner))
	coord.SetProgress(cmd.OutOrStdout())

	cleanup := func() {
		if hist != nil {
			hist.Close()
		}
		_ = logCleanup()
	}
	return coord, cleanup, nil
}

// openJournal opens the run journal. Journal failures never block a
// release; the run proceeds unrecorded with a warning on stderr.
func openJournal(stderr io.Writer) *history.DB {
	path, err := history.DefaultDBPath()
	if err != nil {
		fmt.Fprintf(stderr, "warning: release journal unavailable: %v\n", err)
		return nil
	}
	d, err := history.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "warning: release journal unavailable: %v\n", err)
		return nil
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		fmt.Fprintf(stderr, "warning: release journal unavailable: %v\n", err)
		return nil
	}
	return d
}

// printSummary reports the run outcome, one line per publish target.
func printSummary(w io.Writer, run *pipeline.RunSummary) {
	if run == nil {
		return
	}

	fmt.Fprintln(w)
	switch run.State {
	case pipeline.StateDone:
		fmt.Fprintf(w, "Released %s (version %s)\n", run.Name, run.Version)
	case pipeline.StateFailed:
		fmt.Fprint(w, "Release failed")
		if run.Err != nil {
			fmt.Fprintf(w, " during %s: %v", run.Err.Stage, run.Err.Err)
		}
		fmt.Fprintln(w)
	}

	if len(run.Targets) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, res := range run.Targets {
		status := "ok"
		detail := res.Ref
		if !res.OK {
			status = "FAILED"
			if res.Err != nil {
				detail = res.Err.Error()
			}
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\n", res.Target, status, detail)
	}
	tw.Flush()
}
