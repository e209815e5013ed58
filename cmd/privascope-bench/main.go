package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/privascope-ai/privascope/internal/analyzer"
	"github.com/privascope-ai/privascope/internal/mockprovider"
	"github.com/privascope-ai/privascope/internal/provider"
	"github.com/privascope-ai/privascope/internal/rubric"
)

const defaultPolicy = `We collect your email address, device identifiers and usage data.
We share data with analytics and advertising partners. Data is retained
for as long as your account is active.`

func main() {
	n := flag.Int("n", 200, "number of analyses")
	policy := flag.String("policy", defaultPolicy, "policy text to analyze")
	rubricVersion := flag.String("rubric", "", "rubric version (v1|v2, empty = default)")
	flag.Parse()

	// MOCK_DELAY_MS controls the simulated upstream latency.
	shutdown, baseURL, err := mockprovider.StartMockProvider("")
	if err != nil {
		log.Fatalf("start mock provider: %v", err)
	}
	defer shutdown(context.Background())

	rb, err := rubric.ForVersion(*rubricVersion)
	if err != nil {
		log.Fatalf("rubric: %v", err)
	}

	prov := provider.NewOpenAI(baseURL+"/v1", "bench-key", 10*time.Second, 4*1024*1024)
	an := analyzer.New(prov, rb, "mock-analyzer")

	ctx := context.Background()

	// Warmup
	for i := 0; i < 5; i++ {
		if _, err := an.Analyze(ctx, *policy); err != nil {
			log.Fatalf("warmup analyze failed: %v", err)
		}
	}

	if *n <= 0 {
		*n = 1
	}

	durations := make([]time.Duration, 0, *n)
	for i := 0; i < *n; i++ {
		start := time.Now()
		if _, err := an.Analyze(ctx, *policy); err != nil {
			log.Fatalf("analyze failed: %v", err)
		}
		durations = append(durations, time.Since(start))
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	percentile := func(q float64) float64 {
		idx := int(float64(len(durations)) * q)
		if idx >= len(durations) {
			idx = len(durations) - 1
		}
		return float64(durations[idx].Microseconds()) / 1000.0
	}

	avg := float64(total.Microseconds()) / 1000.0 / float64(len(durations))

	fmt.Printf("bench: n=%d avg_ms=%.2f p50_ms=%.2f p90_ms=%.2f p99_ms=%.2f rubric=%s upstream=%s\n",
		len(durations),
		avg,
		percentile(0.50),
		percentile(0.90),
		percentile(0.99),
		rb.Version,
		baseURL,
	)
}
