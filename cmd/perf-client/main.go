package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/sethvargo/go-envconfig"
	"golang.org/x/time/rate"

	"github.com/namidia/namidia/internal/api"
)

// PerfResult gathers aggregated metrics for the test run.
// LatencySum and P95Latency are in nanoseconds.
type PerfResult struct {
	TotalRequests int64
	SuccessCount  int64
	RejectedCount int64 // ok=false responses
	ErrorCount    int64 // transport errors
	LatencySum    int64
	P95Latency    int64
}

// Settings for a run, overridable with PERF_* variables
type Settings struct {
	BaseURL  string        `env:"BASE_URL,default=http://localhost:8080"`
	EventID  string        `env:"EVENT_ID"`
	Workers  int           `env:"WORKERS,default=50"`
	RPS      int           `env:"RPS,default=300"`
	Duration time.Duration `env:"DURATION,default=30s"`
	Timeout  time.Duration `env:"TIMEOUT,default=30s"`
}

func (s Settings) validate() error {
	if s.Workers < 1 {
		return fmt.Errorf("PERF_WORKERS must be at least 1, got %d", s.Workers)
	}
	if s.RPS < 1 {
		return fmt.Errorf("PERF_RPS must be at least 1, got %d", s.RPS)
	}
	if s.Duration <= 0 {
		return fmt.Errorf("PERF_DURATION must be positive, got %v", s.Duration)
	}
	return nil
}

func main() {
	ctx := context.Background()

	var settings Settings
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &settings,
		Lookuper: envconfig.PrefixLookuper("PERF_", envconfig.OsLookuper()),
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid settings: %v\n", err)
		os.Exit(1)
	}
	if err := settings.validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid settings: %v\n", err)
		os.Exit(1)
	}
	if settings.EventID == "" {
		settings.EventID = "perf-" + uuid.NewString()
	}

	// ─── HTTP Client & Transport ─────────────────────────────────
	transport := &http.Transport{
		MaxIdleConns:        settings.Workers * 4,
		MaxIdleConnsPerHost: settings.Workers * 4,
		IdleConnTimeout:     90 * time.Second,
	}
	httpClient := &http.Client{
		Transport: transport,
		Timeout:   settings.Timeout,
	}
	client := api.NewConfirmationServiceClient(httpClient, settings.BaseURL)

	// ─── Banner ──────────────────────────────────────────────────
	fmt.Println("==========================================")
	fmt.Println("ConfirmPresence load test")
	fmt.Println("==========================================")
	fmt.Printf("Event     : %s\n", settings.EventID)
	fmt.Printf("RPS       : %d\n", settings.RPS)
	fmt.Printf("Duration  : %v\n", settings.Duration)
	fmt.Println("==========================================")

	// ─── Rate limiter & context ─────────────────────────────────
	burst := settings.RPS / settings.Workers
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(settings.RPS), burst)

	runCtx, cancel := context.WithTimeout(ctx, settings.Duration)
	defer cancel()

	var result PerfResult
	var attendee atomic.Int64
	var wg sync.WaitGroup

	latencyChan := make(chan time.Duration, 4096)
	p95Done := make(chan struct{})
	go func() {
		trackP95(latencyChan, &result)
		close(p95Done)
	}()

	// ─── Workers ────────────────────────────────────────────────
	for i := 0; i < settings.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				if err := limiter.Wait(runCtx); err != nil {
					return
				}
				name := fmt.Sprintf("attendee-%07d", attendee.Add(1))
				doRequest(client, settings, name, &result, latencyChan)
			}
		}()
	}

	start := time.Now()
	<-runCtx.Done()

	wg.Wait()
	close(latencyChan)
	<-p95Done

	totalDur := time.Since(start)

	// ─── Report ─────────────────────────────────────────────────
	fmt.Println("==========================================")
	fmt.Println("Results")
	fmt.Println("==========================================")
	fmt.Printf("Elapsed          : %.2fs\n", totalDur.Seconds())
	fmt.Printf("Requests         : %d\n", result.TotalRequests)
	fmt.Printf("Confirmed        : %d\n", result.SuccessCount)
	fmt.Printf("Rejected         : %d\n", result.RejectedCount)
	fmt.Printf("Transport errors : %d\n", result.ErrorCount)

	var avgLatency time.Duration
	if result.SuccessCount > 0 {
		avgLatency = time.Duration(result.LatencySum / result.SuccessCount)
	}
	var successRate float64
	if result.TotalRequests > 0 {
		successRate = float64(result.SuccessCount) / float64(result.TotalRequests) * 100
	}

	fmt.Printf("Throughput       : %.2f confirmations/s\n", float64(result.SuccessCount)/totalDur.Seconds())
	fmt.Printf("Success rate     : %.2f%%\n", successRate)
	fmt.Printf("Avg latency      : %v\n", avgLatency)
	fmt.Printf("P95 latency      : %v\n", time.Duration(result.P95Latency))

	// ─── Data Consistency Check ─────────────────────────────────
	fmt.Println("==========================================")
	fmt.Println("Consistency check")
	fmt.Println("==========================================")

	if err := verifyDataConsistency(client, settings.EventID, result.SuccessCount); err != nil {
		fmt.Printf("FAILED: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("OK")
}

// doRequest performs a single ConfirmPresence RPC and collects metrics
func doRequest(client *api.ConfirmationServiceClient, settings Settings, name string, result *PerfResult, latencyChan chan<- time.Duration) {
	// Independent context so in-flight calls finish when the run ends
	ctx, cancel := context.WithTimeout(context.Background(), settings.Timeout)
	defer cancel()

	req := connect.NewRequest(&api.ConfirmPresenceRequest{
		EventID:  settings.EventID,
		UserName: name,
	})

	start := time.Now()
	atomic.AddInt64(&result.TotalRequests, 1)

	resp, err := client.ConfirmPresence(ctx, req)
	latency := time.Since(start)

	switch {
	case err != nil:
		atomic.AddInt64(&result.ErrorCount, 1)
	case !resp.Msg.OK:
		atomic.AddInt64(&result.RejectedCount, 1)
	default:
		atomic.AddInt64(&result.SuccessCount, 1)
		atomic.AddInt64(&result.LatencySum, latency.Nanoseconds())
		select {
		case latencyChan <- latency:
		default:
		}
	}
}

// trackP95 keeps a rolling P95 estimate over a bounded sample
func trackP95(latencies <-chan time.Duration, result *PerfResult) {
	const size = 1000
	buf := make([]int64, 0, size)
	var seen int

	for lat := range latencies {
		seen++
		if len(buf) < size {
			buf = append(buf, lat.Nanoseconds())
		} else {
			buf[seen%size] = lat.Nanoseconds()
		}

		if seen%100 == 0 {
			sorted := slices.Clone(buf)
			slices.Sort(sorted)
			idx := int(float64(len(sorted)) * 0.95)
			if idx >= len(sorted) {
				idx = len(sorted) - 1
			}
			atomic.StoreInt64(&result.P95Latency, sorted[idx])
		}
	}
}

// verifyDataConsistency checks that every confirmation the run saw
// succeed has exactly one coupon, and nothing more was issued.
func verifyDataConsistency(client *api.ConfirmationServiceClient, eventID string, expectedIssued int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, err := client.GetEventStats(ctx, connect.NewRequest(&api.GetEventStatsRequest{
		EventID:      eventID,
		IncludeCodes: true,
	}))
	if err != nil {
		return fmt.Errorf("failed to get event stats: %w", err)
	}

	stats := resp.Msg
	fmt.Printf("Event                 : %s\n", eventID)
	fmt.Printf("Confirmations (store) : %d\n", stats.Confirmations)
	fmt.Printf("Coupons (store)       : %d\n", stats.CouponsIssued)
	fmt.Printf("Coupons (client)      : %d\n", expectedIssued)

	if stats.CouponsIssued != expectedIssued {
		return fmt.Errorf("coupon count mismatch: store=%d, client=%d", stats.CouponsIssued, expectedIssued)
	}
	if stats.CouponsIssued > stats.Confirmations {
		return fmt.Errorf("more coupons than confirmations: %d > %d", stats.CouponsIssued, stats.Confirmations)
	}

	unique := make(map[string]struct{}, len(stats.IssuedCouponCodes))
	for _, code := range stats.IssuedCouponCodes {
		if _, dup := unique[code]; dup {
			return fmt.Errorf("coupon code issued twice: %s", code)
		}
		unique[code] = struct{}{}
	}
	if int64(len(unique)) != stats.CouponsIssued {
		return fmt.Errorf("listed %d codes, counted %d", len(unique), stats.CouponsIssued)
	}
	return nil
}
