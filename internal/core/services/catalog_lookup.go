// internal/core/services/catalog_lookup.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/ports"
)

// CatalogLookup resolves identifiers into working sets and serves the
// location list from the cache.
type CatalogLookup struct {
	registry     ports.CatalogRegistry
	cache        ports.CacheRepository
	tenant       string
	locationsTTL time.Duration
	concurrency  int
	logger       *slog.Logger
}

var _ ports.CatalogLookup = (*CatalogLookup)(nil)

// NewCatalogLookup creates a new catalog lookup. cache may be nil.
func NewCatalogLookup(registry ports.CatalogRegistry, cache ports.CacheRepository, tenant string,
	locationsTTL time.Duration, concurrency int, logger *slog.Logger) *CatalogLookup {
	return &CatalogLookup{
		registry:     registry,
		cache:        cache,
		tenant:       tenant,
		locationsTTL: locationsTTL,
		concurrency:  concurrency,
		logger:       logger.With(slog.String("service", "catalog_lookup")),
	}
}

// WorkingSet finds the instances matching identifier with their holdings
// and items. Records keep the order the registry returned them in.
func (l *CatalogLookup) WorkingSet(ctx context.Context, identifier string) (*domain.WorkingSetView, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return nil, fmt.Errorf("%w: identifier is required", domain.ErrInvalidInput)
	}

	instances, err := l.registry.SearchInstances(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to search instances: %w", err)
	}

	holdingsByInstance := make([][]domain.Record, len(instances))
	g, gctx := errgroup.WithContext(ctx)
	if l.concurrency > 0 {
		g.SetLimit(l.concurrency)
	}
	for i, inst := range instances {
		g.Go(func() error {
			holdings, err := l.registry.HoldingsByInstance(gctx, inst.ID())
			if err != nil {
				return fmt.Errorf("failed to fetch holdings of instance %s: %w", inst.ID(), err)
			}
			holdingsByInstance[i] = holdings
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var holdings []domain.Record
	for _, hs := range holdingsByInstance {
		holdings = append(holdings, hs...)
	}

	itemsByHolding := make([][]domain.Record, len(holdings))
	g, gctx = errgroup.WithContext(ctx)
	if l.concurrency > 0 {
		g.SetLimit(l.concurrency)
	}
	for i, h := range holdings {
		g.Go(func() error {
			items, _, err := l.registry.ItemsByHolding(gctx, h.ID())
			if err != nil && !isNotFound(err) {
				return fmt.Errorf("failed to fetch items of holding %s: %w", h.ID(), err)
			}
			itemsByHolding[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	view := &domain.WorkingSetView{
		Identifier: identifier,
		Instances:  instances,
		Holdings:   []domain.Record{},
		Items:      []domain.Record{},
	}
	view.Holdings = append(view.Holdings, holdings...)
	for _, items := range itemsByHolding {
		view.Items = append(view.Items, items...)
	}

	l.logger.InfoContext(ctx, "working set resolved",
		slog.String("identifier", identifier),
		slog.Int("instances", len(view.Instances)),
		slog.Int("holdings", len(view.Holdings)),
		slog.Int("items", len(view.Items)))

	return view, nil
}

// Locations returns the registry's location list
func (l *CatalogLookup) Locations(ctx context.Context) ([]domain.Location, error) {
	if l.cache == nil {
		return l.fetchLocations(ctx)
	}

	var locations []domain.Location
	err := l.cache.GetOrSet(ctx, l.locationsKey(), &locations, func() (interface{}, error) {
		return l.fetchLocations(ctx)
	}, l.locationsTTL)
	if err != nil {
		return nil, err
	}
	return locations, nil
}

// InvalidateLocations drops the cached location list
func (l *CatalogLookup) InvalidateLocations(ctx context.Context) error {
	if l.cache == nil {
		return nil
	}
	return l.cache.Delete(ctx, l.locationsKey())
}

func (l *CatalogLookup) fetchLocations(ctx context.Context) ([]domain.Location, error) {
	locations, err := l.registry.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

func (l *CatalogLookup) locationsKey() string {
	return ports.BuildKey(ports.PrefixLocations, l.tenant)
}
