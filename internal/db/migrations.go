package db

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	embeddedmigrations "github.com/agrosoft/agrosoft/migrations"
	"gorm.io/gorm"
)

var migrationFilePattern = regexp.MustCompile(`^(\d{3})_[a-z0-9_]+\.sql$`)

type migration struct {
	Version  int
	Name     string
	SQL      string
	Checksum string
}

type appliedMigration struct {
	Version  int    `gorm:"column:version"`
	Name     string `gorm:"column:name"`
	Checksum string `gorm:"column:checksum"`
}

// migrate applies the embedded scripts for dialect in version order. A script
// that changed after it was applied stops the boot instead of silently
// diverging from the recorded schema.
func migrate(database *gorm.DB, dialect string) error {
	if err := createMigrationTable(database, dialect); err != nil {
		return err
	}

	pending, err := loadMigrations(dialect)
	if err != nil {
		return err
	}

	applied := make([]appliedMigration, 0)
	if err := database.Raw(`SELECT version, name, checksum FROM schema_migrations`).Scan(&applied).Error; err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}
	checksums := make(map[int]appliedMigration, len(applied))
	for _, record := range applied {
		checksums[record.Version] = record
	}

	for _, script := range pending {
		record, done := checksums[script.Version]
		if done {
			if record.Checksum != script.Checksum {
				return fmt.Errorf("migration %s was modified after it was applied", script.Name)
			}
			continue
		}
		if err := runMigration(database, script); err != nil {
			return err
		}
	}
	return nil
}

func createMigrationTable(database *gorm.DB, dialect string) error {
	timestampType := "DATETIME"
	if dialect == DialectPostgres {
		timestampType = "TIMESTAMPTZ"
	}
	statement := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  checksum TEXT NOT NULL,
  applied_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP
)`, timestampType)
	if err := database.Exec(statement).Error; err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func loadMigrations(dialect string) ([]migration, error) {
	entries, err := fs.ReadDir(embeddedmigrations.Files, dialect)
	if err != nil {
		return nil, fmt.Errorf("read %s migrations: %w", dialect, err)
	}

	scripts := make([]migration, 0, len(entries))
	for _, entry := range entries {
		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if entry.IsDir() || matches == nil {
			continue
		}
		version, _ := strconv.Atoi(matches[1])
		if len(scripts) > 0 && scripts[len(scripts)-1].Version == version {
			return nil, fmt.Errorf("duplicate migration version %03d in %s", version, dialect)
		}

		raw, err := fs.ReadFile(embeddedmigrations.Files, path.Join(dialect, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", entry.Name(), err)
		}
		sum := sha256.Sum256(raw)
		scripts = append(scripts, migration{
			Version:  version,
			Name:     entry.Name(),
			SQL:      string(raw),
			Checksum: hex.EncodeToString(sum[:]),
		})
	}

	// fs.ReadDir sorts by name; the zero-padded prefix keeps that equal to version order.
	if !slices.IsSortedFunc(scripts, func(a, b migration) int { return a.Version - b.Version }) {
		return nil, fmt.Errorf("%s migrations are not in version order", dialect)
	}
	return scripts, nil
}

func runMigration(database *gorm.DB, script migration) error {
	statements := splitSQLStatements(script.SQL)
	if len(statements) == 0 {
		return fmt.Errorf("migration %s is empty", script.Name)
	}

	return database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range statements {
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("migration %s: %w", script.Name, err)
			}
		}
		if err := tx.Exec(
			`INSERT INTO schema_migrations (version, name, checksum) VALUES (?, ?, ?)`,
			script.Version, script.Name, script.Checksum,
		).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", script.Name, err)
		}
		return nil
	})
}

// splitSQLStatements drops "--" comment lines and splits on semicolons. The
// scripts never contain semicolons inside literals.
func splitSQLStatements(script string) []string {
	var cleaned strings.Builder
	for _, line := range strings.Split(script, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		cleaned.WriteString(line)
		cleaned.WriteByte('\n')
	}

	statements := make([]string, 0)
	for _, part := range strings.Split(cleaned.String(), ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}
