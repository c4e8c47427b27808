package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

var ErrConfigNotFound = errors.New("config: no config file found")

// DefaultConfigCandidates returns relative paths that will be checked (in order)
// when searching for a default config.
func DefaultConfigCandidates() []string {
	return []string{
		"kubeless.yaml",
		"kubeless.yml",
		"function.yaml",
		"function.yml",
	}
}

// FindDefaultConfigFile searches for a config file in a small set of
// well-known locations (CWD then executable directory).
func FindDefaultConfigFile() (string, error) {
	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}
	return findConfigFile(dirs, DefaultConfigCandidates())
}

func findConfigFile(dirs, candidates []string) (string, error) {
	for _, dir := range dirs {
		for _, rel := range candidates {
			p := rel
			if dir != "." {
				p = filepath.Join(dir, rel)
			}
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, nil
			}
		}
	}

	return "", fmt.Errorf("%w (expected %v)", ErrConfigNotFound, candidates)
}

// WithDefaultConfigFile loads the default config file if there is one.
// A missing file yields a nil option and no error.
func WithDefaultConfigFile() (Option, error) {
	p, err := FindDefaultConfigFile()
	if errors.Is(err, ErrConfigNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return WithConfigFile(p)
}

// LoadDotEnv copies variables from the given .env files (".env" when none
// are given) into the process environment. Variables already set are kept
// and missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config.LoadDotEnv(%s): %w", p, err)
		}
	}
	return nil
}
