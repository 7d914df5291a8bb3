package version

import (
	"fmt"
	"regexp"

	"github.com/LilydevMC/mrpack-distributor/internal/pack"
)

// DefaultNameFormat is the version name template used when a config
// specifies none.
const DefaultNameFormat = "{name} {version}"

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Info is the resolved publish identity: the display name expanded from the
// version name template, and the version number used for tags and uploads.
type Info struct {
	Name        string
	Number      string
	GameVersion string
	Loader      pack.Loader
}

// Source holds the artifact metadata version resolution reads. For modpacks
// it comes from the pack descriptor, for mods from the [mod] config section.
type Source struct {
	Name        string
	Version     string
	GameVersion string
	Loader      pack.Loader
}

// FromPack extracts a resolution source from a pack descriptor. Fails when
// the descriptor does not declare exactly one loader.
func FromPack(f *pack.File) (Source, error) {
	loader, err := f.ResolveLoader()
	if err != nil {
		return Source{}, err
	}
	return Source{
		Name:        f.Name,
		Version:     f.Version,
		GameVersion: f.Versions.Minecraft,
		Loader:      loader,
	}, nil
}

// Resolve derives the publish identity from a source. An empty format falls
// back to DefaultNameFormat.
func Resolve(src Source, format string) *Info {
	if format == "" {
		format = DefaultNameFormat
	}
	vars := map[string]string{
		"name":       src.Name,
		"version":    src.Version,
		"mc_version": src.GameVersion,
		"loader":     src.Loader.Display(),
	}
	return &Info{
		Name:        Expand(format, vars),
		Number:      src.Version,
		GameVersion: src.GameVersion,
		Loader:      src.Loader,
	}
}

// Expand substitutes {placeholder} occurrences in the template. Placeholders
// with no known value are left verbatim rather than failing; a typo in the
// format shows up in the release name instead of blocking the release.
func Expand(format string, vars map[string]string) string {
	return placeholderRe.ReplaceAllStringFunc(format, func(match string) string {
		m := placeholderRe.FindStringSubmatch(match)
		if m == nil {
			return match
		}
		if val, ok := vars[m[1]]; ok {
			return val
		}
		return match
	})
}

// ApplyOverride rewrites the scratch copy's descriptor with the override
// version so the export bakes it in, and returns the updated descriptor.
// With no override it returns the descriptor unchanged.
func ApplyOverride(dir string, f *pack.File, override string) (*pack.File, error) {
	if override == "" {
		return f, nil
	}

	updated := *f
	updated.Version = override
	if err := updated.SaveDir(dir); err != nil {
		return nil, fmt.Errorf("rewrite descriptor with version %s: %w", override, err)
	}
	return &updated, nil
}
