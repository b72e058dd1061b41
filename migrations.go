package main

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	upSuffix   = ".up.sql"
	downSuffix = ".down.sql"
)

// Migration pairs an up script with its optional down script
type Migration struct {
	Name     string
	UpFile   string
	DownFile string
}

// ParseMigrations walks migrationDir and returns its migrations sorted by name.
// Down files without a matching up file are ignored.
func ParseMigrations(migrationDir string) ([]Migration, error) {
	slog.Debug("scanning migration directory", "directory", migrationDir)
	upFiles := make(map[string]string)
	downFiles := make(map[string]string)

	err := filepath.WalkDir(migrationDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		switch name := d.Name(); {
		case strings.HasSuffix(name, upSuffix):
			upFiles[strings.TrimSuffix(name, upSuffix)] = path
		case strings.HasSuffix(name, downSuffix):
			downFiles[strings.TrimSuffix(name, downSuffix)] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk migration directory: %w", err)
	}

	migrations := make([]Migration, 0, len(upFiles))
	for baseName, upFile := range upFiles {
		migrations = append(migrations, Migration{
			Name:     baseName,
			UpFile:   upFile,
			DownFile: downFiles[baseName],
		})
	}

	for baseName, downFile := range downFiles {
		if _, ok := upFiles[baseName]; !ok {
			slog.Warn("down migration without up migration", "name", baseName, "file", downFile)
		}
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Name < migrations[j].Name
	})

	slog.Info("parsed migrations", "count", len(migrations), "upFiles", len(upFiles), "downFiles", len(downFiles))
	return migrations, nil
}

// runMigrations executes every up script in order, stopping at the first failure
func runMigrations(ctx context.Context, db *sql.DB, migrations []Migration) error {
	if db == nil {
		return fmt.Errorf("database is not set up")
	}

	for _, migration := range migrations {
		slog.Info("running migration", "name", migration.Name, "file", migration.UpFile)

		content, err := os.ReadFile(migration.UpFile)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %w", migration.UpFile, err)
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Name, err)
		}

		slog.Debug("migration completed successfully", "name", migration.Name)
	}

	slog.Info("all migrations completed successfully", "count", len(migrations))
	return nil
}
