package monitoring

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/djenkins26/products-app/internal/repository"
)

// Counter is implemented by the user and product repositories.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// Service holds runtime context for monitoring and reporting.
type Service struct {
	startedAt time.Time
	backend   string
	pinger    repository.Pinger
	users     Counter
	products  Counter
	metrics   *Metrics
}

type Snapshot struct {
	TimestampUTC       string `json:"timestamp_utc"`
	UptimeSeconds      int64  `json:"uptime_seconds"`
	StoreBackend       string `json:"store_backend"`
	StoreState         string `json:"store_state"`
	HTTPActiveRequests int64  `json:"http_active_requests"`
	HTTPTotalRequests  uint64 `json:"http_total_requests"`
	Goroutines         int    `json:"goroutines"`
	GoMemoryAllocBytes uint64 `json:"go_memory_alloc_bytes"`
	GoMemorySysBytes   uint64 `json:"go_memory_sys_bytes"`
	GoHeapInUseBytes   uint64 `json:"go_heap_in_use_bytes"`
	GoGCCount          uint32 `json:"go_gc_count"`
	UsersTotal         int64  `json:"users_total"`
	ProductsTotal      int64  `json:"products_total"`
}

func NewService(startedAt time.Time, backend string, pinger repository.Pinger, users, products Counter, metrics *Metrics) *Service {
	return &Service{
		startedAt: startedAt,
		backend:   backend,
		pinger:    pinger,
		users:     users,
		products:  products,
		metrics:   metrics,
	}
}

// StoreState is "ok" or "error: <cause>".
func (s *Service) StoreState(ctx context.Context) string {
	if err := s.pinger.Ping(ctx); err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

func (s *Service) Snapshot(ctx context.Context) Snapshot {
	activeHTTP, totalHTTP := s.metrics.HTTPStats()

	var memory runtime.MemStats
	runtime.ReadMemStats(&memory)

	snap := Snapshot{
		TimestampUTC:       time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds:      int64(time.Since(s.startedAt).Seconds()),
		StoreBackend:       s.backend,
		StoreState:         s.StoreState(ctx),
		HTTPActiveRequests: activeHTTP,
		HTTPTotalRequests:  totalHTTP,
		Goroutines:         runtime.NumGoroutine(),
		GoMemoryAllocBytes: memory.Alloc,
		GoMemorySysBytes:   memory.Sys,
		GoHeapInUseBytes:   memory.HeapInuse,
		GoGCCount:          memory.NumGC,
	}

	// Totals are best effort; a failing store already shows in StoreState.
	snap.UsersTotal, _ = s.users.Count(ctx)
	snap.ProductsTotal, _ = s.products.Count(ctx)

	return snap
}

func (s *Service) StatusText(ctx context.Context) string {
	snap := s.Snapshot(ctx)

	return strings.Join([]string{
		"Products API Status",
		fmt.Sprintf("Uptime: %s", time.Since(s.startedAt).Round(time.Second)),
		fmt.Sprintf("Store (%s): %s", snap.StoreBackend, snap.StoreState),
		fmt.Sprintf("HTTP active requests: %d", snap.HTTPActiveRequests),
		fmt.Sprintf("HTTP total requests: %d", snap.HTTPTotalRequests),
		fmt.Sprintf("Users total: %d", snap.UsersTotal),
		fmt.Sprintf("Products total: %d", snap.ProductsTotal),
		fmt.Sprintf("Go goroutines: %d", snap.Goroutines),
		fmt.Sprintf("Memory alloc: %s", formatBytes(int64(snap.GoMemoryAllocBytes))),
		fmt.Sprintf("Heap in use: %s", formatBytes(int64(snap.GoHeapInUseBytes))),
	}, "\n")
}

func formatBytes(value int64) string {
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(value)
	unit := 0

	for size >= 1024 && unit < len(units)-1 {
		size /= 1024
		unit++
	}

	if unit == 0 {
		return fmt.Sprintf("%d %s", value, units[unit])
	}
	return fmt.Sprintf("%.2f %s", size, units[unit])
}
