package config

import (
	"fmt"

	"github.com/LilydevMC/mrpack-distributor/internal/pack"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateModpack checks a ModpackConfig for structural errors.
// It returns a slice of all validation errors found (empty if valid).
func ValidateModpack(cfg *ModpackConfig) []ValidationError {
	var errs []ValidationError
	validateCommon(cfg.Github, cfg.Modrinth, cfg.Discord, &errs)
	return errs
}

// ValidateMod checks a ModConfig for structural errors.
func ValidateMod(cfg *ModConfig) []ValidationError {
	var errs []ValidationError

	if cfg.Mod.Name == "" {
		errs = append(errs, ValidationError{Field: "mod.name", Message: "is required"})
	}
	if cfg.Mod.Version == "" {
		errs = append(errs, ValidationError{Field: "mod.version", Message: "is required"})
	}
	if cfg.Mod.McVersion == "" {
		errs = append(errs, ValidationError{Field: "mod.mc_version", Message: "is required"})
	}
	if cfg.Mod.Loader == "" {
		errs = append(errs, ValidationError{Field: "mod.loader", Message: "is required"})
	} else if _, err := pack.ParseLoader(cfg.Mod.Loader); err != nil {
		errs = append(errs, ValidationError{Field: "mod.loader", Message: err.Error()})
	}

	validateCommon(cfg.Github, cfg.Modrinth, cfg.Discord, &errs)
	return errs
}

func validateCommon(gh GithubConfig, mr ModrinthConfig, dc *DiscordConfig, errs *[]ValidationError) {
	if gh.RepoOwner == "" {
		*errs = append(*errs, ValidationError{Field: "github.repo_owner", Message: "is required"})
	}
	if gh.RepoName == "" {
		*errs = append(*errs, ValidationError{Field: "github.repo_name", Message: "is required"})
	}
	if mr.ProjectID == "" {
		*errs = append(*errs, ValidationError{Field: "modrinth.project_id", Message: "is required"})
	}
	if mr.FailureMode != FailureFatal && mr.FailureMode != FailureAdvisory {
		*errs = append(*errs, ValidationError{
			Field:   "modrinth.failure_mode",
			Message: fmt.Sprintf("unrecognized mode %q: must be fatal or advisory", mr.FailureMode),
		})
	}

	if dc == nil {
		return
	}
	discordRequired := []struct {
		field string
		value string
	}{
		{"discord.github_emoji_id", dc.GithubEmojiID},
		{"discord.modrinth_emoji_id", dc.ModrinthEmojiID},
		{"discord.discord_ping_role", dc.PingRole},
		{"discord.title_emoji", dc.TitleEmoji},
		{"discord.embed_image_url", dc.EmbedImageURL},
	}
	for _, f := range discordRequired {
		if f.value == "" {
			*errs = append(*errs, ValidationError{Field: f.field, Message: "is required"})
		}
	}
}
