package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/LilydevMC/mrpack-distributor/internal/config"
	"github.com/LilydevMC/mrpack-distributor/internal/httpclient"
)

// defaultEmbedColor is the Discord dark-theme background tone, used when
// neither the config nor the project metadata supplies a color.
const defaultEmbedColor = 0x1e1f22

const footerTimeFormat = "Jan, 02 2006 03:04:05 PM"

// Embed mirrors the Discord embed object fields the announcement uses.
type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Image       *EmbedImage  `json:"image,omitempty"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

type EmbedImage struct {
	URL string `json:"url"`
}

type EmbedFooter struct {
	Text string `json:"text"`
}

// Message is a webhook execution payload.
type Message struct {
	Content string  `json:"content"`
	Embeds  []Embed `json:"embeds"`
}

// AnnouncementParams collects everything the release announcement shows.
type AnnouncementParams struct {
	Config       *config.DiscordConfig
	RepoOwner    string
	RepoName     string
	SiteURL      string
	ProjectSlug  string
	ProjectType  string
	ProjectColor *int
	VersionName  string
	Changelog    string
	When         time.Time
}

// BuildAnnouncement composes the release message: a pinged content line and
// one embed with deep links to the GitHub release and the Modrinth page.
func BuildAnnouncement(p AnnouncementParams) Message {
	description := fmt.Sprintf(
		"**New release!**\n\n%s [GitHub](https://github.com/%s/%s/releases/latest)\n%s [Modrinth](%s/%s/%s)\n\n%s",
		p.Config.GithubEmojiID,
		p.RepoOwner,
		p.RepoName,
		p.Config.ModrinthEmojiID,
		p.SiteURL,
		p.ProjectType,
		p.ProjectSlug,
		p.Changelog,
	)

	embed := Embed{
		Title:       fmt.Sprintf("%s %s", p.Config.TitleEmoji, p.VersionName),
		Description: description,
		Color:       embedColor(p.Config.EmbedColor, p.ProjectColor),
		Footer: &EmbedFooter{
			Text: fmt.Sprintf("%s | %s UTC", formatProjectType(p.ProjectType), p.When.UTC().Format(footerTimeFormat)),
		},
	}
	if p.Config.EmbedImageURL != "" {
		embed.Image = &EmbedImage{URL: p.Config.EmbedImageURL}
	}

	return Message{
		Content: p.Config.PingRole,
		Embeds:  []Embed{embed},
	}
}

// embedColor picks the configured color, then the project's own color,
// then the default.
func embedColor(configured, project *int) int {
	if configured != nil {
		return *configured
	}
	if project != nil {
		return *project
	}
	return defaultEmbedColor
}

func formatProjectType(t string) string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(t[:1]) + t[1:]
}

// Webhook posts messages to a Discord webhook URL.
type Webhook struct {
	exec *httpclient.Executor
	url  string
}

func NewWebhook(exec *httpclient.Executor, url string) *Webhook {
	return &Webhook{exec: exec, url: url}
}

// Execute posts the message. The wait flag asks Discord to confirm delivery
// in the response instead of returning 204 immediately.
func (w *Webhook) Execute(ctx context.Context, msg Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal webhook message: %w", err)
	}

	u := w.url
	if strings.Contains(u, "?") {
		u += "&wait=true"
	} else {
		u += "?wait=true"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.exec.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("execute webhook: %w", err)
	}
	if resp.Status/100 != 2 {
		return fmt.Errorf("execute webhook: status %d: %s", resp.Status, strings.TrimSpace(string(resp.BodyBytes)))
	}
	return nil
}
