// Package main provides a performance benchmarking tool for the barrace CLI.
// It measures keyframe and rollup times across sources and interpolation
// settings, running each test multiple times, treating the first successful
// cached run as cold and averaging the rest as warm, and writes CSV output
// for performance analysis.
//
// Prerequisites:
// - barrace binary installed and available in PATH
// - Sources reachable as local paths or http(s) URLs
//
// Usage: go run benchmark/main.go source [source...]
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Source         string
	Command        string
	Interpolations int
	NoCacheTime    string
	ColdTime       string
	WarmTime       string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Sources        []string
	Timeout        time.Duration
	NoCacheRuns    int
	CacheRuns      int
	Interpolations []int
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s source [source...]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		Sources:        os.Args[1:],
		Timeout:        5 * time.Minute,
		NoCacheRuns:    3,
		CacheRuns:      4,
		Interpolations: []int{10, 60, 240},
	}

	if _, err := exec.LookPath("barrace"); err != nil {
		fmt.Printf("Prerequisites check failed: barrace binary not found in PATH\n")
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("barrace", "cache", "clear")
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// runBenchmarks executes all benchmark tests across configured sources
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d sources, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Sources), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, source := range config.Sources {
		fmt.Printf("Benchmarking %s\n", source)

		results = append(results, runBenchmarkSuite(config, source, "rollup", 0))
		for _, n := range config.Interpolations {
			results = append(results, runBenchmarkSuite(config, source, "keyframes", n))
		}
	}

	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a command
func runBenchmarkSuite(config BenchmarkConfig, source, command string, interpolations int) BenchmarkResult {
	args := []string{command, source, "--output", "csv", "--output-file", os.DevNull}
	if interpolations > 0 {
		args = append(args, "--interpolations", strconv.Itoa(interpolations))
	}
	fmt.Printf("Running %s\n", strings.Join(args, " "))

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, args, cacheBackend, numRuns)
		if len(times) == 0 {
			return cold, "TIMEOUT"
		}
		var sum float64
		for _, t := range times {
			sum += t
		}
		return cold, fmt.Sprintf("%.3fs", sum/float64(len(times)))
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Source:         source,
		Command:        command,
		Interpolations: interpolations,
		NoCacheTime:    noCacheAvg,
		ColdTime:       coldTimeStr,
		WarmTime:       warmAvg,
	}
}

// runBenchmark executes a barrace command multiple times with the given cache backend and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, args []string, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args = append(slices.Clone(args), "--cache-backend", cacheBackend)

	var times []float64
	for range numRuns {
		ctx, cancel := context.WithTimeout(context.Background(), config.Timeout)
		start := time.Now()
		err := exec.CommandContext(ctx, "barrace", args...).Run()
		elapsed := time.Since(start).Seconds()
		cancel()
		if err == nil {
			times = append(times, elapsed)
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/barrace_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"source", "cmd", "interpolations", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range results {
		row := []string{r.Source, r.Command, strconv.Itoa(r.Interpolations), r.NoCacheTime, r.ColdTime, r.WarmTime}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, r := range results {
		label := r.Command
		if r.Interpolations > 0 {
			label = fmt.Sprintf("%s x%d", r.Command, r.Interpolations)
		}
		fmt.Printf("  %-40s %-16s: No-cache: %s, Cold: %s, Warm: %s\n", r.Source, label, r.NoCacheTime, r.ColdTime, r.WarmTime)
	}
}
