package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// ErrMissingFile indicates the project config file does not exist.
var ErrMissingFile = errors.New("config file not found")

// LoadModpack reads and parses a modpack configuration from the given TOML
// file path, then resolves the Modrinth environment and failure mode.
func LoadModpack(path string) (*ModpackConfig, error) {
	var cfg ModpackConfig
	if err := loadTOML(path, &cfg); err != nil {
		return nil, err
	}
	resolveModrinth(&cfg.Modrinth)
	return &cfg, nil
}

// LoadMod reads and parses a mod configuration from the given TOML file path.
func LoadMod(path string) (*ModConfig, error) {
	var cfg ModConfig
	if err := loadTOML(path, &cfg); err != nil {
		return nil, err
	}
	resolveModrinth(&cfg.Modrinth)
	return &cfg, nil
}

func loadTOML(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrMissingFile, path)
		}
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing config TOML: %w", err)
	}
	return nil
}

// resolveModrinth derives the environment enum from the staging flag and
// fills the default failure mode. Call sites read only the resolved values.
func resolveModrinth(m *ModrinthConfig) {
	m.Environment = Production
	if m.Staging {
		m.Environment = Staging
	}
	if m.FailureMode == "" {
		m.FailureMode = FailureFatal
	}
}

// UserDefaults is the optional per-user overlay filling fields a project
// config left empty. Notification emoji and image settings are typically
// shared across all of a user's packs, so they live here once.
type UserDefaults struct {
	VersionNameFormat string `yaml:"version_name_format"`
	Discord           struct {
		GithubEmojiID   string `yaml:"github_emoji_id"`
		ModrinthEmojiID string `yaml:"modrinth_emoji_id"`
		PingRole        string `yaml:"discord_ping_role"`
		TitleEmoji      string `yaml:"title_emoji"`
		EmbedImageURL   string `yaml:"embed_image_url"`
	} `yaml:"discord"`
}

// DefaultsPath returns ~/.mrpack-distributor/defaults.yaml.
func DefaultsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".mrpack-distributor", "defaults.yaml"), nil
}

// LoadUserDefaults reads the defaults overlay at path. A missing file is
// not an error; it returns (nil, nil).
func LoadUserDefaults(path string) (*UserDefaults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading defaults file: %w", err)
	}
	var d UserDefaults
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing defaults YAML: %w", err)
	}
	return &d, nil
}

// ApplyDefaults fills empty fields from the user overlay. The overlay never
// introduces a [discord] block on its own; notification stays opt-in per
// project.
func (c *ModpackConfig) ApplyDefaults(d *UserDefaults) {
	if d == nil {
		return
	}
	if c.VersionNameFormat == "" {
		c.VersionNameFormat = d.VersionNameFormat
	}
	applyDiscordDefaults(c.Discord, d)
}

// ApplyDefaults fills empty fields from the user overlay.
func (c *ModConfig) ApplyDefaults(d *UserDefaults) {
	if d == nil {
		return
	}
	if c.VersionNameFormat == "" {
		c.VersionNameFormat = d.VersionNameFormat
	}
	applyDiscordDefaults(c.Discord, d)
}

func applyDiscordDefaults(dc *DiscordConfig, d *UserDefaults) {
	if dc == nil {
		return
	}
	if dc.GithubEmojiID == "" {
		dc.GithubEmojiID = d.Discord.GithubEmojiID
	}
	if dc.ModrinthEmojiID == "" {
		dc.ModrinthEmojiID = d.Discord.ModrinthEmojiID
	}
	if dc.PingRole == "" {
		dc.PingRole = d.Discord.PingRole
	}
	if dc.TitleEmoji == "" {
		dc.TitleEmoji = d.Discord.TitleEmoji
	}
	if dc.EmbedImageURL == "" {
		dc.EmbedImageURL = d.Discord.EmbedImageURL
	}
}
