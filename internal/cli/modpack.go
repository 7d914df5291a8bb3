package cli

import (
	"github.com/spf13/cobra"

	"github.com/LilydevMC/mrpack-distributor/internal/config"
	"github.com/LilydevMC/mrpack-distributor/internal/pipeline"
)

var modpackCmd = &cobra.Command{
	Use:   "modpack",
	Short: "Build and publish a modpack release",
	Long: `Exports the modpack with packwiz, creates a GitHub release with the
.mrpack attached, publishes a new Modrinth version, and with --discord
announces the release on the configured webhook.

Reads ` + config.ModpackFileName + ` from the project directory. The build runs in a
scratch copy; the project directory is never modified.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, _ := cmd.Flags().GetString("dir")
		versionOverride, _ := cmd.Flags().GetString("version")
		notify, _ := cmd.Flags().GetBool("discord")

		cfg, err := loadModpackConfig(projectDir)
		if err != nil {
			return err
		}

		coord, cleanup, err := newCoordinator(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		run, err := coord.RunModpack(cmd.Context(), pipeline.ModpackOpts{
			ProjectDir:      projectDir,
			Config:          cfg,
			VersionOverride: versionOverride,
			Notify:          notify,
		})
		printSummary(cmd.OutOrStdout(), run)
		return err
	},
}

func init() {
	modpackCmd.Flags().String("dir", ".", "Project directory containing "+config.ModpackFileName)
	modpackCmd.Flags().String("version", "", "Override the pack version for this release")
	modpackCmd.Flags().Bool("discord", false, "Announce the release on Discord")
}
