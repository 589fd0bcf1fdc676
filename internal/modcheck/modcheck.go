// Package modcheck inspects the go.mod of a module built against the
// engine (a game module or plugin) and decides whether the engine version
// it requires can be loaded by this build.
package modcheck

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/semver"
)

// EnginePath is the module path plugins require.
const EnginePath = "github.com/kolkov/enginecore"

// Report describes how a module depends on the engine.
type Report struct {
	GoMod    string // Path of the inspected go.mod.
	Module   string // Module path declared by the go.mod.
	Requires string // Required engine version; empty when not required.
	Replace  string // Replacement target, absolute for local paths.
	Local    bool   // Replace points at a directory.
}

// Find walks up from startDir looking for go.mod. It returns "" if none
// is found.
func Find(startDir string) string {
	dir := startDir
	for {
		modPath := filepath.Join(dir, "go.mod")
		if _, err := os.Stat(modPath); err == nil {
			return modPath
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// Inspect parses the go.mod at path.
func Inspect(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("modcheck: %w", err)
	}
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return Report{}, fmt.Errorf("modcheck: %w", err)
	}

	r := Report{GoMod: path}
	if f.Module != nil {
		r.Module = f.Module.Mod.Path
	}
	for _, req := range f.Require {
		if req.Mod.Path == EnginePath {
			r.Requires = req.Mod.Version
		}
	}
	for _, rep := range f.Replace {
		if rep.Old.Path != EnginePath {
			continue
		}
		if rep.Old.Version != "" && rep.Old.Version != r.Requires {
			continue
		}
		r.Replace = rep.New.Path
		if rep.New.Version == "" && isLocalPath(rep.New.Path) {
			r.Local = true
			if !filepath.IsAbs(r.Replace) {
				if abs, err := filepath.Abs(filepath.Join(filepath.Dir(path), r.Replace)); err == nil {
					r.Replace = abs
				}
			}
		} else if rep.New.Version != "" {
			r.Replace += " " + rep.New.Version
		}
	}
	return r, nil
}

// Compatible reports whether a module requiring the engine at required can
// be loaded by an engine at host. Both versions must share a major
// version, and on v0 also a minor version. The module must not require a
// newer engine than the host. A local replacement is always compatible.
func (r Report) Compatible(host string) error {
	if r.Local {
		return nil
	}
	if r.Requires == "" {
		return fmt.Errorf("modcheck: %s does not require %s", r.Module, EnginePath)
	}
	host = canonical(host)
	if !semver.IsValid(host) {
		return fmt.Errorf("modcheck: invalid host version %q", host)
	}
	req := r.Requires
	switch {
	case semver.Major(req) != semver.Major(host):
		return fmt.Errorf("modcheck: %s requires %s, host is %s: major versions differ", r.Module, req, host)
	case semver.Major(host) == "v0" && semver.MajorMinor(req) != semver.MajorMinor(host):
		return fmt.Errorf("modcheck: %s requires %s, host is %s: unstable minor versions differ", r.Module, req, host)
	case semver.Compare(req, host) > 0:
		return fmt.Errorf("modcheck: %s requires %s, newer than host %s", r.Module, req, host)
	}
	return nil
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

// isLocalPath reports whether a replacement is a filesystem path rather
// than a module path.
func isLocalPath(path string) bool {
	if strings.HasPrefix(path, "./") || strings.HasPrefix(path, "../") {
		return true
	}
	if filepath.IsAbs(path) {
		return true
	}
	// Windows drive letter, e.g. C:\
	return len(path) >= 2 && path[1] == ':'
}
