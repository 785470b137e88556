package text

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dPool/cmd/util"
	textService "github.com/ValentinKolb/dPool/services/text"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Load test the text service and its client pool",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfReqIDBase  int64 = 1 << 40
	perfNumThreads       = 10
	perfRequests         = 10000
	perfTextSize         = 256
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. upload,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of concurrent callers"))
	key = "requests"
	perfTestCmd.Flags().Int(key, 10000, util.WrapString("Number of requests per benchmark"))
	key = "text-size"
	perfTestCmd.Flags().Int(key, 256, util.WrapString("Length of the uploaded review texts (in characters)"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

// perfResult is the outcome of a single benchmark
type perfResult struct {
	name     string
	timer    gometrics.Timer
	errors   int64
	duration time.Duration
	skipped  bool
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfRequests = viper.GetInt("requests")
	perfTextSize = viper.GetInt("text-size")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runPerf(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	fmt.Println("Performance testing tool for the text service")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	poolConfig := composePool.Config()
	fmt.Println(poolConfig.String())
	fmt.Println(util.GetClientConfig().String())
	fmt.Printf("Threads: %d, Requests: %d\n", perfNumThreads, perfRequests)
	fmt.Println()

	fmt.Println("starting tests...")

	text := strings.Repeat("x", perfTextSize)
	results := make([]perfResult, 0, 3)

	upload := benchmark(ctx, "upload", func(ctx context.Context, i int) error {
		return handler.UploadText(ctx, perfReqIDBase+int64(i), text)
	})
	results = append(results, upload)

	get := benchmark(ctx, "get", func(ctx context.Context, i int) error {
		_, _, err := handler.GetReview(ctx, perfReqIDBase+int64(i))
		return err
	})
	results = append(results, get)

	mixed := benchmark(ctx, "mixed", func(ctx context.Context, i int) error {
		if i%2 == 0 {
			return handler.UploadText(ctx, perfReqIDBase+int64(perfRequests+i), text)
		}
		// reads the reviews written by the upload benchmark
		_, _, err := handler.GetReview(ctx, perfReqIDBase+int64(i))
		return err
	})
	results = append(results, mixed)

	fmt.Println()
	fmt.Println("Pool metrics:")
	composePool.WriteMetrics(os.Stdout)

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// benchmark runs perfRequests calls of op on perfNumThreads goroutines and records their latency
func benchmark(ctx context.Context, name string, op func(ctx context.Context, i int) error) perfResult {
	result := perfResult{name: name, timer: gometrics.NewTimer()}
	if shouldSkip(name) {
		result.skipped = true
		printResult(result)
		return result
	}

	var next atomic.Int64
	var failed atomic.Int64

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < perfNumThreads; w++ {
		g.Go(func() error {
			for {
				i := int(next.Add(1) - 1)
				if i >= perfRequests {
					return nil
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				begin := time.Now()
				if err := op(ctx, i); err != nil {
					failed.Add(1)
					textService.Logger.Warningf("(%s) - request %d failed: %v", name, i, err)
					continue
				}
				result.timer.UpdateSince(begin)
			}
		})
	}
	if err := g.Wait(); err != nil {
		textService.Logger.Errorf("(%s) - benchmark aborted: %v", name, err)
	}

	result.duration = time.Since(start)
	result.errors = failed.Load()
	printResult(result)
	return result
}

func shouldSkip(test string) bool {
	// Check if the test is in the skip list
	for _, skip := range perfSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// opsPerSec returns the successful requests per second of a result
func (r perfResult) opsPerSec() float64 {
	if r.duration <= 0 {
		return 0
	}
	return float64(r.timer.Count()) / r.duration.Seconds()
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(r perfResult) {
	if r.skipped {
		fmt.Printf("%-10sskipped\n", r.name)
		return
	}

	ps := r.timer.Percentiles([]float64{0.5, 0.99})
	fmt.Printf("%-10smean %s\tp50 %s\tp99 %s\t%.0f ops/sec\t%d errors\n",
		r.name,
		time.Duration(r.timer.Mean()),
		time.Duration(ps[0]),
		time.Duration(ps[1]),
		r.opsPerSec(),
		r.errors,
	)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results []perfResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	poolConfig := composePool.Config()

	// Write header
	header := []string{
		"Test", "Requests", "Errors", "MeanNs", "P50Ns", "P99Ns", "OpsPerSec", "Skipped",
		"Endpoint", "PoolMin", "PoolMax", "PoolTimeoutMs", "Retries",
		"Serializer", "Transport", "Threads", "TextSize",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for _, r := range results {
		ps := r.timer.Percentiles([]float64{0.5, 0.99})
		row := []string{
			r.name,
			strconv.FormatInt(r.timer.Count(), 10),
			strconv.FormatInt(r.errors, 10),
			fmt.Sprintf("%.0f", r.timer.Mean()),
			fmt.Sprintf("%.0f", ps[0]),
			fmt.Sprintf("%.0f", ps[1]),
			fmt.Sprintf("%.0f", r.opsPerSec()),
			strconv.FormatBool(r.skipped),
			poolConfig.Endpoint(),
			strconv.Itoa(poolConfig.MinSize),
			strconv.Itoa(poolConfig.MaxSize),
			strconv.FormatInt(poolConfig.AcquireTimeout.Milliseconds(), 10),
			strconv.Itoa(util.GetRetries()),
			viper.GetString("serializer"),
			viper.GetString("transport"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfTextSize),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", r.name, err)
		}
	}

	return nil
}
