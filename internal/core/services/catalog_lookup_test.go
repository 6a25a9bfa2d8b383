// internal/core/services/catalog_lookup_test.go
package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	redis_a "github.com/ammerola/ils-tools/internal/adapters/redis_adapter"
	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/services"
	"github.com/ammerola/ils-tools/test/helpers"
	"github.com/ammerola/ils-tools/test/mocks"
)

func TestCatalogLookup_WorkingSet(t *testing.T) {
	tests := []struct {
		name          string
		identifier    string
		setupMocks    func(m *mocks.MockCatalogRegistry)
		expectedError error
		expectHold    []string
		expectItems   []string
	}{
		{
			name:       "collects_holdings_and_items_in_order",
			identifier: "978-0",
			setupMocks: func(m *mocks.MockCatalogRegistry) {
				m.EXPECT().SearchInstances(gomock.Any(), "978-0").
					Return([]domain.Record{{"id": "in1"}, {"id": "in2"}}, nil)
				m.EXPECT().HoldingsByInstance(gomock.Any(), "in1").
					Return([]domain.Record{{"id": "h1"}, {"id": "h2"}}, nil)
				m.EXPECT().HoldingsByInstance(gomock.Any(), "in2").
					Return([]domain.Record{{"id": "h3"}}, nil)
				m.EXPECT().ItemsByHolding(gomock.Any(), "h1").
					Return([]domain.Record{{"id": "i1"}, {"id": "i2"}}, 2, nil)
				m.EXPECT().ItemsByHolding(gomock.Any(), "h2").
					Return(nil, 0, &domain.NotFoundError{Message: "No items found for holding h2."})
				m.EXPECT().ItemsByHolding(gomock.Any(), "h3").
					Return([]domain.Record{{"id": "i3"}}, 1, nil)
			},
			expectHold:  []string{"h1", "h2", "h3"},
			expectItems: []string{"i1", "i2", "i3"},
		},
		{
			name:          "blank_identifier",
			identifier:    " ",
			setupMocks:    func(m *mocks.MockCatalogRegistry) {},
			expectedError: domain.ErrInvalidInput,
		},
		{
			name:       "no_instance",
			identifier: "nothing",
			setupMocks: func(m *mocks.MockCatalogRegistry) {
				m.EXPECT().SearchInstances(gomock.Any(), "nothing").
					Return(nil, &domain.NotFoundError{Message: `No instance found for "nothing".`})
			},
			expectedError: domain.ErrNotFound,
		},
		{
			name:       "holdings_fetch_fails",
			identifier: "978-0",
			setupMocks: func(m *mocks.MockCatalogRegistry) {
				m.EXPECT().SearchInstances(gomock.Any(), "978-0").
					Return([]domain.Record{{"id": "in1"}}, nil)
				m.EXPECT().HoldingsByInstance(gomock.Any(), "in1").
					Return(nil, &domain.RegistryError{Op: "holdings_by_instance", StatusCode: 500, Body: "boom"})
			},
			expectedError: domain.ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			registry := mocks.NewMockCatalogRegistry(ctrl)
			tt.setupMocks(registry)
			lookup := services.NewCatalogLookup(registry, nil, "diku", time.Minute, 2, helpers.TestLogger())

			view, err := lookup.WorkingSet(context.Background(), tt.identifier)
			if tt.expectedError != nil {
				assert.True(t, errors.Is(err, tt.expectedError), "got %v", err)
				return
			}
			require.NoError(t, err)

			ws := view.WorkingSet()
			assert.Equal(t, tt.expectHold, ws.Holdings)
			assert.Equal(t, tt.expectItems, ws.Items)
		})
	}
}

func TestCatalogLookup_LocationsAreCached(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockCatalogRegistry(ctrl)
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Hour, helpers.TestLogger())

	locs := []domain.Location{{ID: "loc-1", Name: "Main", Code: "MAIN"}}
	registry.EXPECT().ListLocations(gomock.Any()).Return(locs, nil).Times(2)

	lookup := services.NewCatalogLookup(registry, cache, "diku", time.Minute, 2, helpers.TestLogger())

	for i := 0; i < 3; i++ {
		got, err := lookup.Locations(ctx)
		require.NoError(t, err)
		assert.Equal(t, locs, got)
	}
	assert.True(t, tr.Server.Exists("ils:locations:diku"))

	require.NoError(t, lookup.InvalidateLocations(ctx))
	_, err := lookup.Locations(ctx)
	require.NoError(t, err)
}

func TestCatalogLookup_LocationsErrorIsNotCached(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	registry := mocks.NewMockCatalogRegistry(ctrl)
	tr := helpers.SetupTestRedis(t)
	cache := redis_a.NewCache(tr.Client, time.Hour, helpers.TestLogger())

	registry.EXPECT().ListLocations(gomock.Any()).
		Return(nil, &domain.RegistryError{Op: "list_locations", StatusCode: 503, Body: "down"})

	lookup := services.NewCatalogLookup(registry, cache, "diku", time.Minute, 2, helpers.TestLogger())
	_, err := lookup.Locations(ctx)
	assert.True(t, errors.Is(err, domain.ErrNetwork))
	assert.False(t, tr.Server.Exists("ils:locations:diku"))
}
