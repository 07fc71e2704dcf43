package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/voltlab/cdckit/pkg/cache"
	"github.com/voltlab/cdckit/pkg/circuit"
)

// loadRegistry returns the builtin element registry, extended with custom
// definitions from a TOML file when one is given.
func loadRegistry(defsPath string) (*circuit.Registry, error) {
	reg := circuit.Builtin()
	if defsPath != "" {
		if err := reg.LoadDefinitions(defsPath); err != nil {
			return nil, fmt.Errorf("load element definitions: %w", err)
		}
	}
	return reg, nil
}

// defaultCacheDir returns the per-user cache directory for cdckit.
func defaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".cdckit-cache"
	}
	return filepath.Join(dir, "cdckit")
}

// openCache picks a cache backend: Redis when a URL is given, otherwise a
// file cache in dir (or the default directory), or a null cache when
// caching is disabled.
func openCache(ctx context.Context, redisURL, dir string, disable bool) (cache.Cache, error) {
	if disable {
		return cache.NewNullCache(), nil
	}
	if redisURL != "" {
		return cache.NewRedisCache(ctx, redisURL)
	}
	if dir == "" {
		dir = defaultCacheDir()
	}
	return cache.NewFileCache(dir)
}

// readCDC resolves the circuit text for a command: from the positional
// argument, from --file, or from stdin when the argument is "-".
func readCDC(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read circuit file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
