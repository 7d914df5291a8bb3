package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

func SetVersion(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "mrpack-distributor",
	Short: "Release automation for Minecraft modpacks and mods",
	Long: `mrpack-distributor builds a Minecraft modpack or mod and publishes the
release everywhere it needs to go: a GitHub release with the artifact
attached, a new Modrinth version, and optionally a Discord announcement.

Project settings live in mrpack.toml (mrpack_mod.toml for mods).
Credentials come from the GITHUB_TOKEN, MODRINTH_TOKEN, and WEBHOOK_URL
environment variables, loaded from the environment or a local .env file.
Past runs are recorded in ~/.mrpack-distributor/history.db.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Credentials commonly live in a project-local .env file.
		_ = godotenv.Load()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(modpackCmd)
	rootCmd.AddCommand(modCmd)
	rootCmd.AddCommand(historyCmd)
}
