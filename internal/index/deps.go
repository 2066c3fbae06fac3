package index

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Cargo.lock shape: a flat list of [[package]] tables. Only the triple we
// care about is decoded; unknown keys are ignored.
type lockfile struct {
	Package []lockPackage `toml:"package"`
}

type lockPackage struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
	Source  string `toml:"source"`
}

// discoverDependencyFiles resolves external dependency sources named by the
// project's lock-file manifest. Every failure degrades to fewer (or zero)
// files; dependency discovery never fails a load.
func discoverDependencyFiles(root, cargoHome string, fileCap int) []string {
	lockPath := filepath.Join(root, "Cargo.lock")
	data, err := os.ReadFile(lockPath)
	if err != nil {
		slog.Debug("no lockfile; skipping dependency discovery", "path", lockPath)
		return nil
	}

	var lf lockfile
	if _, err := toml.Decode(string(data), &lf); err != nil {
		slog.Warn("failed to parse lockfile", "path", lockPath, "error", err)
		return nil
	}

	srcRoots := registrySrcRoots(cargoHome)
	if len(srcRoots) == 0 {
		slog.Debug("no dependency source cache found")
		return nil
	}

	var files []string
	for _, pkg := range lf.Package {
		if pkg.Source == "" || !strings.HasPrefix(pkg.Source, "registry+") {
			// workspace members and non-registry sources have no cached
			// source directory
			continue
		}
		if len(files) >= fileCap {
			break
		}
		dir := findPackageSrc(srcRoots, pkg.Name, pkg.Version)
		if dir == "" {
			continue
		}
		files = appendRustSources(files, dir, fileCap)
	}

	if len(files) > 0 {
		slog.Info("discovered dependency sources", "files", len(files), "cap", fileCap)
	}
	return files
}

// registrySrcRoots lists the per-index extraction directories under the
// conventional cargo cache (`$CARGO_HOME/registry/src/<index>/`).
func registrySrcRoots(cargoHome string) []string {
	if cargoHome == "" {
		cargoHome = os.Getenv("CARGO_HOME")
	}
	if cargoHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		cargoHome = filepath.Join(home, ".cargo")
	}

	srcDir := filepath.Join(cargoHome, "registry", "src")
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil
	}
	var roots []string
	for _, e := range entries {
		if e.IsDir() {
			roots = append(roots, filepath.Join(srcDir, e.Name()))
		}
	}
	return roots
}

// findPackageSrc locates the extracted `<name>-<version>/src` directory of a
// package in any registry index directory.
func findPackageSrc(srcRoots []string, name, version string) string {
	for _, root := range srcRoots {
		dir := filepath.Join(root, name+"-"+version, "src")
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

func appendRustSources(files []string, dir string, fileCap int) []string {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtree: keep what we have
		}
		if len(files) >= fileCap {
			return filepath.SkipAll
		}
		if !d.IsDir() && strings.HasSuffix(path, ".rs") {
			files = append(files, path)
		}
		return nil
	})
	return files
}
