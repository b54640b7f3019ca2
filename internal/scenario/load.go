package scenario

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/specialistvlad/tutorburst/internal/fsutil"
)

// Loader turns a file into a Scenario.
type Loader interface {
	Load(ctx context.Context, path string) (*Scenario, error)
}

// Load picks a loader by file extension, loads the scenario and applies the
// overrides. An empty path yields the built-in default scenario; a directory
// must hold exactly one scenario file.
func Load(ctx context.Context, path string, o Overrides) (*Scenario, error) {
	var sc *Scenario
	if path == "" {
		sc = Default()
	} else {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("scenario file not accessible: %w", err)
		}
		if info.IsDir() {
			if path, err = singleScenarioIn(path); err != nil {
				return nil, err
			}
		}
		loader, err := loaderFor(path)
		if err != nil {
			return nil, err
		}
		sc, err = loader.Load(ctx, path)
		if err != nil {
			return nil, err
		}
	}

	sc.Apply(o)
	if err := sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", sc.Name, err)
	}
	return sc, nil
}

func loaderFor(path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return &HCLLoader{}, nil
	case ".yaml", ".yml":
		return &YAMLLoader{}, nil
	default:
		return nil, fmt.Errorf("unsupported scenario file %s: expected .hcl, .yaml or .yml", path)
	}
}

// singleScenarioIn resolves a directory to the one scenario file inside it.
func singleScenarioIn(dir string) (string, error) {
	files, err := fsutil.FindFilesByExtension(dir, ".hcl", ".yaml", ".yml")
	if err != nil {
		return "", fmt.Errorf("failed to search %s for scenarios: %w", dir, err)
	}
	if len(files) != 1 {
		return "", fmt.Errorf("directory %s must contain exactly one scenario file, found %d", dir, len(files))
	}
	return files[0], nil
}
