package pack

import (
	"errors"
	"fmt"
	"strings"
)

// Loader identifies the mod loader a pack targets. Values are the lowercase
// identifiers the Modrinth API expects in a version's loaders list.
type Loader string

const (
	LoaderFabric     Loader = "fabric"
	LoaderQuilt      Loader = "quilt"
	LoaderForge      Loader = "forge"
	LoaderLiteLoader Loader = "liteloader"
)

// ErrLoaderUndetermined indicates the descriptor declares zero or more than
// one loader, so no single loader name can be resolved.
var ErrLoaderUndetermined = errors.New("loader undetermined")

func (l Loader) String() string {
	return string(l)
}

// Display returns the loader's human-readable name.
func (l Loader) Display() string {
	switch l {
	case LoaderFabric:
		return "Fabric"
	case LoaderQuilt:
		return "Quilt"
	case LoaderForge:
		return "Forge"
	case LoaderLiteLoader:
		return "LiteLoader"
	}
	return string(l)
}

// ParseLoader converts a user-supplied loader name into a Loader.
func ParseLoader(s string) (Loader, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fabric":
		return LoaderFabric, nil
	case "quilt":
		return LoaderQuilt, nil
	case "forge":
		return LoaderForge, nil
	case "liteloader":
		return LoaderLiteLoader, nil
	}
	return "", fmt.Errorf("unknown loader %q: must be fabric, quilt, forge, or liteloader", s)
}

// ResolveLoader returns the single loader the descriptor declares a version
// for. Zero or multiple declared loaders fail with ErrLoaderUndetermined.
func (f *File) ResolveLoader() (Loader, error) {
	var found []Loader
	if f.Versions.Fabric != "" {
		found = append(found, LoaderFabric)
	}
	if f.Versions.Quilt != "" {
		found = append(found, LoaderQuilt)
	}
	if f.Versions.Forge != "" {
		found = append(found, LoaderForge)
	}
	if f.Versions.LiteLoader != "" {
		found = append(found, LoaderLiteLoader)
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("%w: no loader version declared in %s", ErrLoaderUndetermined, FileName)
	case 1:
		return found[0], nil
	}

	names := make([]string, len(found))
	for i, l := range found {
		names[i] = l.String()
	}
	return "", fmt.Errorf("%w: multiple loaders declared (%s)", ErrLoaderUndetermined, strings.Join(names, ", "))
}
