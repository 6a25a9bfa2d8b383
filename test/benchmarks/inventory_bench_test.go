// test/benchmarks/inventory_bench_test.go
package benchmarks

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ammerola/ils-tools/internal/adapters/okapi"
	redis_a "github.com/ammerola/ils-tools/internal/adapters/redis_adapter"
	"github.com/ammerola/ils-tools/internal/core/domain"
	"github.com/ammerola/ils-tools/internal/core/services"
	"github.com/ammerola/ils-tools/internal/workers"
	"github.com/ammerola/ils-tools/test/helpers"
)

func BenchmarkScanOperations(b *testing.B) {
	fake := helpers.NewFakeOkapi(b)
	barcodes := seedHoldings(fake, 20, 10)
	testRedis := helpers.SetupTestRedis(b)

	logger := helpers.TestLogger()
	store := redis_a.NewScanStore(testRedis.Client, logger)
	registry := okapi.NewClient(&okapi.Config{URL: fake.URL(), Tenant: fake.Tenant, Token: "bench"}, nil, logger)
	aggregator := services.NewScanAggregator(registry, store, nil, services.ScanSettings{
		Highlight:       time.Millisecond,
		StoreLocationID: "loc-store",
	}, logger)
	ctx := context.Background()

	b.Run("RecordScan", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			station := fmt.Sprintf("bench-%d", i/len(barcodes))
			_, _ = aggregator.RecordScan(ctx, station, barcodes[i%len(barcodes)])
		}
	})

	// Pre-scan a full station for read benchmarks
	for _, bc := range barcodes {
		_, _ = aggregator.RecordScan(ctx, "bench-read", bc)
	}

	b.Run("Snapshot", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = aggregator.Snapshot(ctx, "bench-read")
		}
	})

	b.Run("AlreadyKnown", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = aggregator.RecordScan(ctx, "bench-read", barcodes[i%len(barcodes)])
		}
	})
}

func BenchmarkDiscardScan(b *testing.B) {
	testRedis := helpers.SetupTestRedis(b)
	logger := helpers.TestLogger()
	discard := services.NewDiscardLog(redis_a.NewScanStore(testRedis.Client, logger), nil, time.Millisecond, logger)
	ctx := context.Background()

	entries := discardEntries(5000)
	if _, err := discard.ReplaceList(ctx, entries); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		station := fmt.Sprintf("bench-%d", i/len(entries))
		_, _ = discard.RecordScan(ctx, station, entries[i%len(entries)].Barcode)
	}
}

func BenchmarkDiscardListParsing(b *testing.B) {
	entries := discardEntries(2000)

	b.Run("JSON", func(b *testing.B) {
		data := discardJSON(entries)
		b.SetBytes(int64(len(data)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = workers.ParseDiscardJSON(bytes.NewReader(data))
		}
	})

	b.Run("XLSX", func(b *testing.B) {
		path := discardWorkbook(b, entries)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _, _ = workers.ParseDiscardXLSX(path)
		}
	})

	b.Run("Normalize", func(b *testing.B) {
		list := domain.DiscardList{Items: append(entries, entries[:200]...)}
		b.ReportAllocs()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = list.Normalize()
		}
	})
}

// Summary derivation benchmarks
func BenchmarkSummaries(b *testing.B) {
	events := scanLog(2000, 150)

	b.Run("CountScanned", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = domain.CountScanned(events, fmt.Sprintf("h%04d", i%150))
		}
	})

	b.Run("Summarize", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			_ = domain.Summarize("h0001", "Title", "Author", 14, events, false)
		}
	})
}
