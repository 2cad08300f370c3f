// Package migrations contains the embedded SQL migrations of the PwnEyes
// store and the registry built from them.
package migrations

import (
	"embed"
	"fmt"
	"sync"

	"github.com/antbear/pwnstore/internal/schema"
)

// Latest is the schema version the application expects.
const Latest = 3

// Files exposes the compiled-in migration SQL files.
//
//go:embed *.sql
var Files embed.FS

var loadRegistry = sync.OnceValues(func() (*schema.Registry, error) {
	steps, err := schema.LoadFS(Files, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	reg, err := schema.NewRegistry(steps...)
	if err != nil {
		return nil, fmt.Errorf("failed to register migrations: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	if reg.Latest() != Latest {
		return nil, fmt.Errorf("embedded migrations end at version %d, expected %d", reg.Latest(), Latest)
	}

	return reg, nil
})

// Registry returns the validated registry of embedded migrations. It is
// built once and shared.
func Registry() (*schema.Registry, error) {
	return loadRegistry()
}
