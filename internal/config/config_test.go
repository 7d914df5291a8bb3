package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validModpackConfig = `
version_name_format = "{name} {version} ({loader} {mc_version})"

[github]
repo_owner = "acme"
repo_name = "pack"

[modrinth]
project_id = "xyz123"

[discord]
github_emoji_id = "<:github:123>"
modrinth_emoji_id = "<:modrinth:456>"
discord_ping_role = "<@&789>"
title_emoji = ":tada:"
embed_image_url = "https://example.com/banner.png"
embed_color = 2037028
`

const validModConfig = `
[mod]
name = "Test Mod"
version = "0.3.0"
mc_version = "1.20.1"
loader = "quilt"
gradle_args = "build --no-daemon"

[github]
repo_owner = "acme"
repo_name = "mod"

[modrinth]
project_id = "abc987"
staging = true
`

func writeTestConfig(t *testing.T, name string, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadModpackValidConfig(t *testing.T) {
	path := writeTestConfig(t, ModpackFileName, validModpackConfig)
	cfg, err := LoadModpack(path)
	if err != nil {
		t.Fatalf("LoadModpack() error: %v", err)
	}

	if cfg.Github.RepoOwner != "acme" {
		t.Errorf("RepoOwner = %q, want %q", cfg.Github.RepoOwner, "acme")
	}
	if cfg.Github.RepoName != "pack" {
		t.Errorf("RepoName = %q, want %q", cfg.Github.RepoName, "pack")
	}
	if cfg.Modrinth.ProjectID != "xyz123" {
		t.Errorf("ProjectID = %q, want %q", cfg.Modrinth.ProjectID, "xyz123")
	}
	if cfg.Discord == nil {
		t.Fatal("expected discord block to be parsed")
	}
	if cfg.Discord.EmbedColor == nil || *cfg.Discord.EmbedColor != 2037028 {
		t.Errorf("EmbedColor = %v, want 2037028", cfg.Discord.EmbedColor)
	}
}

func TestLoadModpackResolvesEnvironmentOnce(t *testing.T) {
	path := writeTestConfig(t, ModpackFileName, validModpackConfig)
	cfg, err := LoadModpack(path)
	if err != nil {
		t.Fatalf("LoadModpack() error: %v", err)
	}
	if cfg.Modrinth.Environment != Production {
		t.Errorf("Environment = %v, want Production", cfg.Modrinth.Environment)
	}
	if cfg.Modrinth.FailureMode != FailureFatal {
		t.Errorf("FailureMode = %q, want fatal by default", cfg.Modrinth.FailureMode)
	}
}

func TestLoadModStagingEnvironment(t *testing.T) {
	path := writeTestConfig(t, ModFileName, validModConfig)
	cfg, err := LoadMod(path)
	if err != nil {
		t.Fatalf("LoadMod() error: %v", err)
	}
	if cfg.Modrinth.Environment != Staging {
		t.Errorf("Environment = %v, want Staging", cfg.Modrinth.Environment)
	}
	if cfg.Mod.Loader != "quilt" {
		t.Errorf("Loader = %q, want quilt", cfg.Mod.Loader)
	}
	if cfg.Mod.GradleArgs != "build --no-daemon" {
		t.Errorf("GradleArgs = %q", cfg.Mod.GradleArgs)
	}
}

func TestLoadModpackMissingFile(t *testing.T) {
	_, err := LoadModpack(filepath.Join(t.TempDir(), ModpackFileName))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errors.Is(err, ErrMissingFile) {
		t.Errorf("expected ErrMissingFile, got %v", err)
	}
}

func TestLoadModpackInvalidTOML(t *testing.T) {
	path := writeTestConfig(t, ModpackFileName, "[github\nrepo_owner=")
	_, err := LoadModpack(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidateModpack(t *testing.T) {
	path := writeTestConfig(t, ModpackFileName, validModpackConfig)
	cfg, err := LoadModpack(path)
	if err != nil {
		t.Fatalf("LoadModpack() error: %v", err)
	}
	if errs := ValidateModpack(cfg); len(errs) != 0 {
		t.Errorf("expected no validation errors, got %v", errs)
	}
}

func TestValidateModpackMissingFields(t *testing.T) {
	cfg := &ModpackConfig{}
	resolveModrinth(&cfg.Modrinth)
	errs := ValidateModpack(cfg)

	wantFields := []string{"github.repo_owner", "github.repo_name", "modrinth.project_id"}
	for _, want := range wantFields {
		found := false
		for _, e := range errs {
			if e.Field == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("expected validation error for %s, got %v", want, errs)
		}
	}
}

func TestValidateModpackBadFailureMode(t *testing.T) {
	cfg := &ModpackConfig{
		Github:   GithubConfig{RepoOwner: "a", RepoName: "b"},
		Modrinth: ModrinthConfig{ProjectID: "p", FailureMode: "ignore"},
	}
	errs := ValidateModpack(cfg)
	if len(errs) != 1 || errs[0].Field != "modrinth.failure_mode" {
		t.Errorf("expected single failure_mode error, got %v", errs)
	}
}

func TestValidateModpackIncompleteDiscord(t *testing.T) {
	cfg := &ModpackConfig{
		Github:   GithubConfig{RepoOwner: "a", RepoName: "b"},
		Modrinth: ModrinthConfig{ProjectID: "p", FailureMode: FailureFatal},
		Discord:  &DiscordConfig{TitleEmoji: ":tada:"},
	}
	errs := ValidateModpack(cfg)
	if len(errs) != 4 {
		t.Errorf("expected 4 errors for missing discord fields, got %d: %v", len(errs), errs)
	}
}

func TestValidateMod(t *testing.T) {
	path := writeTestConfig(t, ModFileName, validModConfig)
	cfg, err := LoadMod(path)
	if err != nil {
		t.Fatalf("LoadMod() error: %v", err)
	}
	if errs := ValidateMod(cfg); len(errs) != 0 {
		t.Errorf("expected no validation errors, got %v", errs)
	}
}

func TestValidateModBadLoader(t *testing.T) {
	cfg := &ModConfig{
		Mod:      ModSection{Name: "m", Version: "1.0.0", McVersion: "1.20.1", Loader: "neoforge"},
		Github:   GithubConfig{RepoOwner: "a", RepoName: "b"},
		Modrinth: ModrinthConfig{ProjectID: "p", FailureMode: FailureFatal},
	}
	errs := ValidateMod(cfg)
	if len(errs) != 1 || errs[0].Field != "mod.loader" {
		t.Errorf("expected single mod.loader error, got %v", errs)
	}
}

func TestLoadUserDefaultsMissingFile(t *testing.T) {
	d, err := LoadUserDefaults(filepath.Join(t.TempDir(), "defaults.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != nil {
		t.Errorf("expected nil defaults for missing file, got %+v", d)
	}
}

func TestApplyDefaultsFillsOnlyEmptyFields(t *testing.T) {
	defaultsYAML := `
version_name_format: "{name} v{version}"
discord:
  github_emoji_id: "<:gh:1>"
  modrinth_emoji_id: "<:mr:2>"
  title_emoji: ":rocket:"
`
	path := writeTestConfig(t, "defaults.yaml", defaultsYAML)
	d, err := LoadUserDefaults(path)
	if err != nil {
		t.Fatalf("LoadUserDefaults() error: %v", err)
	}

	cfg := &ModpackConfig{
		Discord: &DiscordConfig{
			GithubEmojiID: "<:custom:9>",
			PingRole:      "<@&5>",
		},
	}
	cfg.ApplyDefaults(d)

	if cfg.VersionNameFormat != "{name} v{version}" {
		t.Errorf("VersionNameFormat = %q, want overlay value", cfg.VersionNameFormat)
	}
	if cfg.Discord.GithubEmojiID != "<:custom:9>" {
		t.Errorf("GithubEmojiID overwritten: %q", cfg.Discord.GithubEmojiID)
	}
	if cfg.Discord.ModrinthEmojiID != "<:mr:2>" {
		t.Errorf("ModrinthEmojiID = %q, want overlay value", cfg.Discord.ModrinthEmojiID)
	}
	if cfg.Discord.TitleEmoji != ":rocket:" {
		t.Errorf("TitleEmoji = %q, want overlay value", cfg.Discord.TitleEmoji)
	}
}

func TestApplyDefaultsDoesNotCreateDiscordBlock(t *testing.T) {
	d := &UserDefaults{}
	d.Discord.GithubEmojiID = "<:gh:1>"

	cfg := &ModpackConfig{}
	cfg.ApplyDefaults(d)
	if cfg.Discord != nil {
		t.Error("overlay must not introduce a discord block")
	}
}
