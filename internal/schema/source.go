package schema

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// LoadFS reads migration files named <version>_<title>.up.sql from dir. Each
// file becomes the incremental step from the previous file's version (0 for
// the first file) to its own version. Down files are ignored.
func LoadFS(fsys fs.FS, dir string) ([]Migration, error) {
	driver, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("schema: open migration files: %w", err)
	}
	defer func() {
		_ = driver.Close()
	}()

	version, err := driver.First()
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("schema: list migration files: %w", err)
	}

	var (
		result []Migration
		prev   int
	)
	for {
		m, err := readUp(driver, prev, version)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
		prev = int(version)

		next, err := driver.Next(version)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("schema: list migration files: %w", err)
		}
		version = next
	}

	return result, nil
}

func readUp(driver source.Driver, from int, version uint) (Migration, error) {
	key := Key{From: from, To: int(version)}

	r, identifier, err := driver.ReadUp(version)
	if errors.Is(err, fs.ErrNotExist) {
		return Migration{}, &InvalidMigrationError{Key: key, Reason: "missing up file"}
	}
	if err != nil {
		return Migration{}, fmt.Errorf("schema: read migration %d: %w", version, err)
	}
	defer func() {
		_ = r.Close()
	}()

	body, err := io.ReadAll(r)
	if err != nil {
		return Migration{}, fmt.Errorf("schema: read migration %d: %w", version, err)
	}

	stmts := SplitStatements(string(body))
	if len(stmts) == 0 {
		return Migration{}, &InvalidMigrationError{Key: key, Reason: "empty up file"}
	}

	return Migration{
		From:       from,
		To:         int(version),
		Name:       strings.TrimSpace(identifier),
		Statements: stmts,
	}, nil
}
