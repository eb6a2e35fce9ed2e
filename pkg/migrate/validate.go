package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"

	"go.uber.org/multierr"
)

var migrationName = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

var requiredMarkers = []string{"-- +goose Up", "-- +goose Down"}

// ValidateDir runs Validate against a directory on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}
	return Validate(os.DirFS(dir), ".")
}

// Validate checks every .sql file in dir: the name must carry a 14-digit
// version, versions must be unique, and both goose sections must be present.
// All problems are reported together.
func Validate(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", dir, err)
	}

	var (
		problems error
		versions = map[string]string{}
	)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".sql" {
			continue
		}
		match := migrationName.FindStringSubmatch(name)
		if match == nil {
			problems = multierr.Append(problems, fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name))
			continue
		}
		if first, dup := versions[match[1]]; dup {
			problems = multierr.Append(problems, fmt.Errorf("version %s used by both %q and %q", match[1], first, name))
			continue
		}
		versions[match[1]] = name
		problems = multierr.Append(problems, checkMarkers(fsys, path.Join(dir, name)))
	}

	if len(versions) == 0 && problems == nil {
		return fmt.Errorf("no migrations found in %q", dir)
	}
	return problems
}

func checkMarkers(fsys fs.FS, file string) error {
	body, err := fs.ReadFile(fsys, file)
	if err != nil {
		return fmt.Errorf("read %q: %w", file, err)
	}
	var missing error
	for _, marker := range requiredMarkers {
		if !strings.Contains(string(body), marker) {
			missing = multierr.Append(missing, fmt.Errorf("migration %q missing %q", path.Base(file), marker))
		}
	}
	return missing
}
