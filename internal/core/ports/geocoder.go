package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
)

// Geocoder resolves an address to coordinates. On failure the caller
// substitutes the depot's coordinates rather than failing the operation.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (kernel.Location, error)
}
