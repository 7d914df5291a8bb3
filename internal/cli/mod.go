package cli

import (
	"github.com/spf13/cobra"

	"github.com/LilydevMC/mrpack-distributor/internal/config"
	"github.com/LilydevMC/mrpack-distributor/internal/pipeline"
)

var modCmd = &cobra.Command{
	Use:   "mod",
	Short: "Build and publish a mod release",
	Long: `Builds the mod with the project's gradle wrapper, creates a GitHub
release with the jar attached, publishes a new Modrinth version, and
with --discord announces the release on the configured webhook.

Reads ` + config.ModFileName + ` from the project directory; the [mod] section
supplies the name, version, and loader a modpack would read from its
pack descriptor.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, _ := cmd.Flags().GetString("dir")
		gradleArgs, _ := cmd.Flags().GetString("gradle-args")
		notify, _ := cmd.Flags().GetBool("discord")

		cfg, err := loadModConfig(projectDir)
		if err != nil {
			return err
		}

		coord, cleanup, err := newCoordinator(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		run, err := coord.RunMod(cmd.Context(), pipeline.ModOpts{
			ProjectDir: projectDir,
			Config:     cfg,
			GradleArgs: gradleArgs,
			Notify:     notify,
		})
		printSummary(cmd.OutOrStdout(), run)
		return err
	},
}

func init() {
	modCmd.Flags().String("dir", ".", "Project directory containing "+config.ModFileName)
	modCmd.Flags().String("gradle-args", "", "Override the configured gradle arguments")
	modCmd.Flags().Bool("discord", false, "Announce the release on Discord")
}
