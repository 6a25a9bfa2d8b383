// internal/core/ports/catalog_registry.go
package ports

import (
	"context"

	"github.com/ammerola/ils-tools/internal/core/domain"
)

// CatalogRegistry defines the port for the external catalog backend.
// Records are exchanged as raw JSON objects so writes round-trip every field.
type CatalogRegistry interface {
	SearchInstances(ctx context.Context, identifier string) ([]domain.Record, error)
	HoldingsByInstance(ctx context.Context, instanceID string) ([]domain.Record, error)
	GetHolding(ctx context.Context, id string) (domain.Record, error)
	PutHolding(ctx context.Context, record domain.Record) error
	GetItem(ctx context.Context, id string) (domain.Record, error)
	PutItem(ctx context.Context, record domain.Record) error
	ItemsByBarcode(ctx context.Context, barcode string) ([]domain.Record, error)
	// ItemsByHolding returns the first page of items and the total number of
	// items the holding has.
	ItemsByHolding(ctx context.Context, holdingID string) ([]domain.Record, int, error)
	ListLocations(ctx context.Context) ([]domain.Location, error)
}
