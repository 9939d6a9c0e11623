package migration

import (
	"cmp"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"text/template"
	"time"

	"github.com/golang-migrate/migrate/v4/source"
)

var migrationFile = template.Must(template.New("migration").Parse(
	`-- {{.Version}} {{.Name}}{{if .Rollback}} (rollback){{end}}
-- Created: {{.Created}}
{{- if and .Description (not .Rollback)}}
-- {{.Description}}
{{- end}}

`))

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// MigrationFile is a freshly written up/down pair.
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// CreateMigration writes an empty pair into dir, numbered one past the
// highest version already there. Existing files are never overwritten.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}
	next, err := NextVersion(os.DirFS(dir))
	if err != nil {
		return nil, err
	}

	mf := &MigrationFile{
		Version:     fmt.Sprintf("%06d", next),
		Name:        slug,
		Description: description,
	}
	base := filepath.Join(dir, mf.Version+"_"+slug)
	mf.UpPath = base + "." + string(source.Up) + ".sql"
	mf.DownPath = base + "." + string(source.Down) + ".sql"

	created := time.Now().Format(time.RFC3339)
	if err := mf.write(mf.UpPath, created, false); err != nil {
		return nil, err
	}
	if err := mf.write(mf.DownPath, created, true); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func (mf *MigrationFile) write(path, created string, rollback bool) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	return migrationFile.Execute(f, struct {
		*MigrationFile
		Created  string
		Rollback bool
	}{mf, created, rollback})
}

// NextVersion returns the highest migration version in fsys plus one.
func NextVersion(fsys fs.FS) (uint, error) {
	ups, err := upMigrations(fsys)
	if err != nil {
		return 0, err
	}
	var highest uint
	for _, m := range ups {
		highest = max(highest, m.Version)
	}
	return highest + 1, nil
}

// ListMigrations returns the version_name of every up migration in fsys,
// oldest first. A missing directory lists nothing.
func ListMigrations(fsys fs.FS) ([]string, error) {
	ups, err := upMigrations(fsys)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(ups))
	for _, m := range ups {
		names = append(names, fmt.Sprintf("%06d_%s", m.Version, m.Identifier))
	}
	return names, nil
}

// upMigrations parses file names the same way the migrate source drivers do.
func upMigrations(fsys fs.FS) ([]*source.Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations: %w", err)
	}

	var ups []*source.Migration
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m, err := source.Parse(entry.Name())
		if err != nil || m.Direction != source.Up {
			continue
		}
		ups = append(ups, m)
	}
	slices.SortFunc(ups, func(a, b *source.Migration) int {
		return cmp.Compare(a.Version, b.Version)
	})
	return ups, nil
}

// sanitizeName lower-cases name and joins its words with underscores.
func sanitizeName(name string) string {
	return strings.Trim(slugSeparators.ReplaceAllString(strings.ToLower(name), "_"), "_")
}
