package config

// ModpackFileName is the project config file the modpack command reads.
const ModpackFileName = "mrpack.toml"

// ModFileName is the project config file the mod command reads.
const ModFileName = "mrpack_mod.toml"

// ModpackConfig is the top-level configuration parsed from mrpack.toml.
type ModpackConfig struct {
	VersionNameFormat string         `toml:"version_name_format"`
	Github            GithubConfig   `toml:"github"`
	Modrinth          ModrinthConfig `toml:"modrinth"`
	Discord           *DiscordConfig `toml:"discord"`
}

// ModConfig is the top-level configuration parsed from mrpack_mod.toml.
// Gradle projects carry no pack descriptor, so the [mod] section supplies
// the artifact metadata a modpack would read from pack.toml.
type ModConfig struct {
	VersionNameFormat string         `toml:"version_name_format"`
	Mod               ModSection     `toml:"mod"`
	Github            GithubConfig   `toml:"github"`
	Modrinth          ModrinthConfig `toml:"modrinth"`
	Discord           *DiscordConfig `toml:"discord"`
}

// GithubConfig identifies the repository releases are created against.
type GithubConfig struct {
	RepoOwner string `toml:"repo_owner"`
	RepoName  string `toml:"repo_name"`
}

// ModrinthConfig identifies the Modrinth project and publish policy.
// Environment is resolved from the staging flag once at load time.
type ModrinthConfig struct {
	ProjectID   string      `toml:"project_id"`
	Staging     bool        `toml:"staging"`
	Featured    bool        `toml:"featured"`
	FailureMode FailureMode `toml:"failure_mode"`
	Environment Environment `toml:"-"`
}

// DiscordConfig holds the webhook notification settings. The block is
// optional; when present, all fields except EmbedColor are required.
type DiscordConfig struct {
	GithubEmojiID   string `toml:"github_emoji_id"`
	ModrinthEmojiID string `toml:"modrinth_emoji_id"`
	PingRole        string `toml:"discord_ping_role"`
	TitleEmoji      string `toml:"title_emoji"`
	EmbedImageURL   string `toml:"embed_image_url"`
	EmbedColor      *int   `toml:"embed_color"`
}

// ModSection describes the mod being built and published.
type ModSection struct {
	Name       string `toml:"name"`
	Version    string `toml:"version"`
	McVersion  string `toml:"mc_version"`
	Loader     string `toml:"loader"`
	GradleArgs string `toml:"gradle_args"`
}

// FailureMode selects how a failed Modrinth publish affects the run.
type FailureMode string

const (
	// FailureFatal fails the whole run on a Modrinth publish error.
	FailureFatal FailureMode = "fatal"
	// FailureAdvisory reports the error and lets the run continue.
	FailureAdvisory FailureMode = "advisory"
)

// Environment selects which Modrinth deployment a run talks to.
type Environment int

const (
	Production Environment = iota
	Staging
)

func (e Environment) String() string {
	if e == Staging {
		return "staging"
	}
	return "production"
}
