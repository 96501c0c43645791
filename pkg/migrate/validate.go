package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/pressly/goose/v3"
)

var timestampName = regexp.MustCompile(`^\d{14}_[a-z0-9_]+\.sql$`)

// ValidateDir checks every dialect folder under dir: goose must be able to
// collect it, files must be timestamp-named with Up and Down sections, and
// all dialects must carry the same versions.
func ValidateDir(dir string) error {
	if dir == "" {
		return errors.New("dir is required")
	}

	var want []int64
	for i, dialect := range Dirs() {
		got, err := dialectVersions(filepath.Join(dir, dialect))
		if err != nil {
			return err
		}
		if i == 0 {
			want = got
			continue
		}
		if !slices.Equal(want, got) {
			return fmt.Errorf("%s migrations %v do not match %s migrations %v", dialect, got, Dirs()[0], want)
		}
	}
	return nil
}

func dialectVersions(dir string) ([]int64, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migration dir: %w", err)
	}
	collected, err := goose.CollectMigrations(dir, 0, goose.MaxVersion)
	if err != nil {
		return nil, fmt.Errorf("collect %s: %w", dir, err)
	}

	versions := make([]int64, 0, len(collected))
	for _, m := range collected {
		if err := checkSQLFile(m.Source); err != nil {
			return nil, err
		}
		versions = append(versions, m.Version)
	}
	return versions, nil
}

func checkSQLFile(path string) error {
	name := filepath.Base(path)
	if !timestampName.MatchString(name) {
		return fmt.Errorf("migration %q must be named YYYYMMDDHHMMSS_name.sql", name)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	for _, marker := range []string{"-- +goose Up", "-- +goose Down"} {
		if !strings.Contains(string(body), marker) {
			return fmt.Errorf("migration %s is missing %q", name, marker)
		}
	}
	return nil
}
