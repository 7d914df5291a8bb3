package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/LilydevMC/mrpack-distributor/internal/build"
	"github.com/LilydevMC/mrpack-distributor/internal/config"
	"github.com/LilydevMC/mrpack-distributor/internal/discord"
	"github.com/LilydevMC/mrpack-distributor/internal/github"
	"github.com/LilydevMC/mrpack-distributor/internal/logging"
	"github.com/LilydevMC/mrpack-distributor/internal/modrinth"
	"github.com/LilydevMC/mrpack-distributor/internal/version"
)

// releaseSpec carries everything the publish fan-out needs, assembled by
// the run entry points.
type releaseSpec struct {
	github    config.GithubConfig
	modrinth  config.ModrinthConfig
	discord   *config.DiscordConfig
	info      *version.Info
	artifact  *build.Output
	changelog string
	notify    bool
}

// publishAll fans the release out to the publish targets, strictly in
// order: GitHub, Modrinth, then the Discord announcement. A fatal target
// failure stops the fan-out; targets already published stay published and
// stay recorded in the summary.
func (c *Coordinator) publishAll(ctx context.Context, run *RunSummary, spec releaseSpec) *StageError {
	data, err := spec.artifact.Bytes()
	if err != nil {
		return Fatal(StagePublish, fmt.Errorf("read artifact %s: %w", spec.artifact.Name, err))
	}

	record := func(res TargetResult) {
		run.Targets = append(run.Targets, res)
		c.journalTarget(run.RunID, res)
		if res.Err != nil {
			logging.L().Warn("publish.target_failed", "run_id", run.RunID, "target", res.Target, "error", res.Err.Error())
		} else {
			logging.L().Info("publish.target_done", "run_id", run.RunID, "target", res.Target, "ref", res.Ref)
		}
	}

	record(c.publishGitHub(ctx, spec, data))

	token := c.getenv(EnvModrinthToken)
	if token == "" {
		err := fmt.Errorf("%s is not set", EnvModrinthToken)
		record(TargetResult{Target: TargetModrinth, Err: err})
		return Fatal(StagePublish, err)
	}
	urls := modrinth.URLsFor(spec.modrinth.Environment)
	client := modrinth.NewClient(c.exec, urls, token)
	if c.modrinthAPI != "" {
		client.SetAPIBase(c.modrinthAPI)
	}

	res, serr := c.publishModrinth(ctx, spec, data, client)
	record(res)
	if serr != nil {
		return serr
	}

	if spec.notify {
		res, serr := c.notifyDiscord(ctx, spec, client, urls.Site)
		record(res)
		if serr != nil {
			return serr
		}
	}
	return nil
}

// publishGitHub creates the GitHub release and attaches the artifact. A
// GitHub failure never fails the run; the release can be created by hand
// afterwards, and the other targets matter more.
func (c *Coordinator) publishGitHub(ctx context.Context, spec releaseSpec, data []byte) TargetResult {
	res := TargetResult{Target: TargetGitHub}

	c.logf("creating GitHub release %s", spec.info.Number)
	client := c.newGithubClient(spec.github)
	rel, err := client.CreateRelease(ctx, github.ReleaseParams{
		TagName: spec.info.Number,
		Name:    spec.info.Name,
		Body:    spec.changelog,
	})
	if err != nil {
		res.Err = err
		c.logf("GitHub release failed, continuing: %v", err)
		return res
	}
	res.Ref = rel.HTMLURL

	if err := client.UploadAsset(ctx, rel.ID, spec.artifact.Name, data); err != nil {
		res.Err = err
		c.logf("GitHub asset upload failed, continuing: %v", err)
		return res
	}
	res.OK = true
	c.logf("created GitHub release %s", rel.HTMLURL)
	return res
}

// publishModrinth uploads the release as a new project version. Failure
// severity follows the configured failure_mode; the default fails the run.
func (c *Coordinator) publishModrinth(ctx context.Context, spec releaseSpec, data []byte, client *modrinth.Client) (TargetResult, *StageError) {
	res := TargetResult{Target: TargetModrinth}

	c.logf("creating Modrinth version %s", spec.info.Number)
	ver, err := client.CreateVersion(ctx, modrinth.VersionParams{
		Name:          spec.info.Name,
		VersionNumber: spec.info.Number,
		Changelog:     spec.changelog,
		GameVersions:  []string{spec.info.GameVersion},
		Loaders:       []string{spec.info.Loader.String()},
		ProjectID:     spec.modrinth.ProjectID,
		Featured:      spec.modrinth.Featured,
		FileName:      spec.artifact.Name,
		FileData:      data,
	})
	if err != nil {
		res.Err = err
		if spec.modrinth.FailureMode == config.FailureAdvisory {
			c.logf("Modrinth publish failed, continuing: %v", err)
			return res, nil
		}
		return res, Fatal(StagePublish, err)
	}
	res.OK = true
	res.Ref = ver.ID
	c.logf("created Modrinth version %s", ver.ID)
	return res, nil
}

// notifyDiscord posts the release announcement to the configured webhook.
// An explicitly requested notification that cannot be sent fails the run,
// but never unwinds releases already created.
func (c *Coordinator) notifyDiscord(ctx context.Context, spec releaseSpec, client *modrinth.Client, siteURL string) (TargetResult, *StageError) {
	res := TargetResult{Target: TargetDiscord}

	if spec.discord == nil {
		res.Err = errors.New("discord notification requested but config has no [discord] section")
		return res, Fatal(StagePublish, res.Err)
	}
	webhookURL := c.getenv(EnvWebhookURL)
	if webhookURL == "" {
		res.Err = fmt.Errorf("%s is not set", EnvWebhookURL)
		return res, Fatal(StagePublish, res.Err)
	}

	c.logf("sending Discord announcement")
	project, err := client.GetProject(ctx, spec.modrinth.ProjectID)
	if err != nil {
		res.Err = err
		return res, Fatal(StagePublish, err)
	}

	msg := discord.BuildAnnouncement(discord.AnnouncementParams{
		Config:       spec.discord,
		RepoOwner:    spec.github.RepoOwner,
		RepoName:     spec.github.RepoName,
		SiteURL:      siteURL,
		ProjectSlug:  project.Slug,
		ProjectType:  project.ProjectType,
		ProjectColor: project.Color,
		VersionName:  spec.info.Name,
		Changelog:    spec.changelog,
		When:         c.now(),
	})
	if err := discord.NewWebhook(c.exec, webhookURL).Execute(ctx, msg); err != nil {
		res.Err = err
		return res, Fatal(StagePublish, err)
	}
	res.OK = true
	c.logf("sent Discord announcement")
	return res, nil
}
