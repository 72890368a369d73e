package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/nsidnev/edgedb-go/edgeerr"
)

// projectFile is the subset of edgedb.toml this driver reads; schema
// fields beyond connection resolution (hooks, dependencies) are not the
// core's concern and are left unparsed by go-toml/v2's default "unknown
// keys are ignored" behavior.
type projectFile struct {
	Instance struct {
		Name string `toml:"name"`
	} `toml:"instance"`
}

// discoverProject walks upward from dir until it finds edgedb.toml or
// crosses a filesystem device boundary, per §4.I point "Project
// discovery". It returns the project root directory, or ok=false if no
// edgedb.toml was found before the boundary.
func discoverProject(dir string) (root string, ok bool, err error) {
	dir, err = filepath.Abs(dir)
	if err != nil {
		return "", false, edgeerr.Wrap(edgeerr.ClientConnectionError, err, "resolving project directory")
	}

	startDev, haveDev, err := deviceID(dir)
	if err != nil {
		return "", false, err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "edgedb.toml")); err == nil {
			return dir, true, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false, nil
		}
		if haveDev {
			parentDev, parentHaveDev, err := deviceID(parent)
			if err != nil {
				return "", false, err
			}
			if parentHaveDev && parentDev != startDev {
				return "", false, nil
			}
		}
		dir = parent
	}
}

// resolveProject reads the project's stash directory, producing level-4
// Options. A project root with no stash is a fatal "project not
// initialized" per §4.I.
func resolveProject(root string) (Options, error) {
	dir, err := credentialsDir()
	if err != nil {
		return Options{}, err
	}
	stashDir := filepath.Join(filepath.Dir(dir), "projects", stashDirName(root))

	instanceFile := filepath.Join(stashDir, "instance-name")
	nameBytes, err := os.ReadFile(instanceFile)
	if err != nil {
		return Options{}, edgeerr.New(edgeerr.ClientConnectionError,
			"project at %s is not initialized (no stash at %s)", root, stashDir)
	}
	name := trimNewline(string(nameBytes))

	var o Options
	o.InstanceName = &name

	if b, err := os.ReadFile(filepath.Join(stashDir, "cloud-profile")); err == nil {
		v := trimNewline(string(b))
		o.CloudProfile = &v
	}
	if b, err := os.ReadFile(filepath.Join(stashDir, "database")); err == nil {
		v := trimNewline(string(b))
		o.Database = &v
	}
	if b, err := os.ReadFile(filepath.Join(stashDir, "branch")); err == nil {
		v := trimNewline(string(b))
		o.Branch = &v
	}
	return o, nil
}

func parseProjectFile(path string) (*projectFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, edgeerr.Wrap(edgeerr.ClientConnectionError, err, "reading %s", path)
	}
	var pf projectFile
	if err := toml.Unmarshal(b, &pf); err != nil {
		return nil, edgeerr.Wrap(edgeerr.ClientConnectionError, err, "parsing %s", path)
	}
	return &pf, nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
