package version

import (
	"errors"
	"testing"

	"github.com/LilydevMC/mrpack-distributor/internal/pack"
)

func TestExpand(t *testing.T) {
	vars := map[string]string{
		"name":       "Fantasy Pack",
		"version":    "1.2.0",
		"mc_version": "1.20.1",
		"loader":     "Quilt",
	}

	tests := []struct {
		name   string
		format string
		want   string
	}{
		{"default shape", "{name} {version}", "Fantasy Pack 1.2.0"},
		{"all placeholders", "[{mc_version}] {name} {version} ({loader})", "[1.20.1] Fantasy Pack 1.2.0 (Quilt)"},
		{"no placeholders", "static name", "static name"},
		{"unknown left verbatim", "{name} {build_number}", "Fantasy Pack {build_number}"},
		{"repeated placeholder", "{version}-{version}", "1.2.0-1.2.0"},
		{"unmatched brace untouched", "{name", "{name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Expand(tt.format, vars)
			if got != tt.want {
				t.Errorf("Expand(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	src := Source{
		Name:        "Fantasy Pack",
		Version:     "1.2.0",
		GameVersion: "1.20.1",
		Loader:      pack.LoaderFabric,
	}

	info := Resolve(src, "{name} {version} for {mc_version}")
	if info.Name != "Fantasy Pack 1.2.0 for 1.20.1" {
		t.Errorf("Name = %q", info.Name)
	}
	if info.Number != "1.2.0" {
		t.Errorf("Number = %q, want %q", info.Number, "1.2.0")
	}
	if info.GameVersion != "1.20.1" {
		t.Errorf("GameVersion = %q", info.GameVersion)
	}
	if info.Loader != pack.LoaderFabric {
		t.Errorf("Loader = %q", info.Loader)
	}
}

func TestResolveDefaultFormat(t *testing.T) {
	src := Source{Name: "Fantasy Pack", Version: "1.2.0", Loader: pack.LoaderQuilt}

	info := Resolve(src, "")
	if info.Name != "Fantasy Pack 1.2.0" {
		t.Errorf("Name = %q, want default format expansion", info.Name)
	}
}

func TestFromPack(t *testing.T) {
	f := &pack.File{
		Name:    "Fantasy Pack",
		Version: "1.2.0",
		Versions: pack.Versions{
			Minecraft: "1.20.1",
			Quilt:     "0.21.0",
		},
	}

	src, err := FromPack(f)
	if err != nil {
		t.Fatalf("FromPack: %v", err)
	}
	if src.Name != "Fantasy Pack" || src.Version != "1.2.0" {
		t.Errorf("source = %+v", src)
	}
	if src.Loader != pack.LoaderQuilt {
		t.Errorf("Loader = %q, want quilt", src.Loader)
	}
}

func TestFromPackLoaderUndetermined(t *testing.T) {
	f := &pack.File{
		Name:     "Fantasy Pack",
		Version:  "1.2.0",
		Versions: pack.Versions{Minecraft: "1.20.1"},
	}

	_, err := FromPack(f)
	if !errors.Is(err, pack.ErrLoaderUndetermined) {
		t.Fatalf("err = %v, want ErrLoaderUndetermined", err)
	}
}

func TestApplyOverride(t *testing.T) {
	dir := t.TempDir()
	f := &pack.File{
		Name:    "Fantasy Pack",
		Version: "1.2.0",
		Versions: pack.Versions{
			Minecraft: "1.20.1",
			Fabric:    "0.15.0",
		},
	}

	updated, err := ApplyOverride(dir, f, "2.0.0-beta.1")
	if err != nil {
		t.Fatalf("ApplyOverride: %v", err)
	}
	if updated.Version != "2.0.0-beta.1" {
		t.Errorf("updated version = %q, want override", updated.Version)
	}
	if f.Version != "1.2.0" {
		t.Errorf("original descriptor mutated: %q", f.Version)
	}

	onDisk, err := pack.LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir after override: %v", err)
	}
	if onDisk.Version != "2.0.0-beta.1" {
		t.Errorf("on-disk version = %q, want override", onDisk.Version)
	}
	if onDisk.Name != "Fantasy Pack" {
		t.Errorf("on-disk name = %q, other fields must survive", onDisk.Name)
	}
}

func TestApplyOverrideEmpty(t *testing.T) {
	dir := t.TempDir()
	f := &pack.File{Name: "Fantasy Pack", Version: "1.2.0"}

	got, err := ApplyOverride(dir, f, "")
	if err != nil {
		t.Fatalf("ApplyOverride: %v", err)
	}
	if got != f {
		t.Error("no-override call must return the descriptor unchanged")
	}
	if _, err := pack.LoadDir(dir); err == nil {
		t.Error("no-override call must not write a descriptor")
	}
}
