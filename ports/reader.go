package ports

import (
	"context"

	"abkpi/domain/grid"
)

// GridReader turns a report export into a raw grid.
type GridReader interface {
	ReadFile(ctx context.Context, path string) (*grid.Grid, error)
	// ReadBytes parses uploaded content; name carries the extension that selects the format.
	ReadBytes(ctx context.Context, name string, data []byte) (*grid.Grid, error)
}
