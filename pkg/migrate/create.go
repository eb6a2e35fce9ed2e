package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const versionLayout = "20060102150405"

var slugJunk = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases name and collapses every run of other characters into a
// single underscore.
func slugify(name string) string {
	return strings.Trim(slugJunk.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

const sqlSkeleton = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- rollback %[1]s
-- +goose StatementEnd
`

// CreateSQLMigration writes an empty goose migration named
// <dir>/<YYYYMMDDHHMMSS>_<slug>.sql and returns its path.
func CreateSQLMigration(dir string, name string) (string, error) {
	return createSQLMigration(dir, name, time.Now())
}

func createSQLMigration(dir string, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", errors.New("dir is required")
	}
	slug := slugify(name)
	if slug == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}

	target := filepath.Join(dir, now.UTC().Format(versionLayout)+"_"+slug+".sql")
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("migration already exists: %s", target)
	}
	if err != nil {
		return "", fmt.Errorf("create %q: %w", target, err)
	}
	if _, err := fmt.Fprintf(f, sqlSkeleton, slug); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write %q: %w", target, err)
	}
	return target, f.Close()
}
