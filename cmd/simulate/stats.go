package main

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

type OperationStats struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	latencies []time.Duration
	mu        sync.Mutex
}

func (o *OperationStats) Record(latency time.Duration, success, conflict bool) {
	atomic.AddInt64(&o.Total, 1)
	switch {
	case success:
		atomic.AddInt64(&o.Success, 1)
	case conflict:
		atomic.AddInt64(&o.Conflict, 1)
	default:
		atomic.AddInt64(&o.Error, 1)
	}

	o.mu.Lock()
	o.latencies = append(o.latencies, latency)
	o.mu.Unlock()
}

// Percentiles returns avg, p50, p95 and max latency.
func (o *OperationStats) Percentiles() (avg, p50, p95, maxLatency time.Duration) {
	o.mu.Lock()
	latencies := slices.Clone(o.latencies)
	o.mu.Unlock()

	if len(latencies) == 0 {
		return 0, 0, 0, 0
	}
	slices.Sort(latencies)

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}

	at := func(pct int) time.Duration {
		idx := min(len(latencies)*pct/100, len(latencies)-1)
		return latencies[idx]
	}
	return sum / time.Duration(len(latencies)), at(50), at(95), latencies[len(latencies)-1]
}

type Stats struct {
	Book      OperationStats
	Cancel    OperationStats
	Slots     OperationStats
	ListParty OperationStats
}

func (s *Stats) Print(duration time.Duration, workers int, duplicates int) {
	line := strings.Repeat("=", 80)
	fmt.Println("\n" + line)
	fmt.Println("SIMULATION REPORT")
	fmt.Println(line)
	fmt.Printf("Duration: %s\n", duration)
	fmt.Printf("Workers: %d\n\n", workers)

	printOperation("Book", &s.Book)
	printOperation("Cancel", &s.Cancel)
	printOperation("Free slots", &s.Slots)
	printOperation("List appointments", &s.ListParty)

	if duplicates < 0 {
		fmt.Println("Double-booking check: skipped")
		return
	}
	fmt.Printf("Double-booking check: %d slot(s) with more than one scheduled appointment\n", duplicates)
}

func printOperation(name string, o *OperationStats) {
	total := atomic.LoadInt64(&o.Total)
	if total == 0 {
		return
	}

	pct := func(n int64) float64 { return float64(n) / float64(total) * 100 }
	success := atomic.LoadInt64(&o.Success)
	conflict := atomic.LoadInt64(&o.Conflict)
	failed := atomic.LoadInt64(&o.Error)
	avg, p50, p95, maxLatency := o.Percentiles()

	fmt.Printf("%s:\n", name)
	fmt.Printf("  Total: %d\n", total)
	fmt.Printf("  Success: %d (%.1f%%)\n", success, pct(success))
	if conflict > 0 {
		fmt.Printf("  Conflicts: %d (%.1f%%)\n", conflict, pct(conflict))
	}
	if failed > 0 {
		fmt.Printf("  Errors: %d (%.1f%%)\n", failed, pct(failed))
	}
	fmt.Printf("  Latency: avg=%s p50=%s p95=%s max=%s\n\n",
		avg.Round(time.Millisecond), p50.Round(time.Millisecond),
		p95.Round(time.Millisecond), maxLatency.Round(time.Millisecond))
}
