package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Env looks up a variable: the real environment first, then .env files in
// the order they were loaded.
type Env struct {
	files []map[string]string
}

// LoadEnv reads ./.env and <dir>/.env when present. A malformed file is an
// error; a missing one is not.
func LoadEnv(dir string) (*Env, error) {
	paths := []string{envFile}
	if dir != "" {
		paths = append(paths, filepath.Join(dir, envFile))
	}

	e := &Env{}
	seen := map[string]bool{}
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err == nil {
			if seen[abs] {
				continue
			}
			seen[abs] = true
		}
		vars, err := godotenv.Read(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", p, err)
		}
		e.files = append(e.files, vars)
	}
	return e, nil
}

// Get returns the value for key, or "".
func (e *Env) Get(key string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	if e == nil {
		return ""
	}
	for _, vars := range e.files {
		if v, ok := vars[key]; ok {
			return v
		}
	}
	return ""
}
