package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nDmitry/spacetravelling/internal/app"
	"github.com/nDmitry/spacetravelling/internal/warmer"
	"github.com/spf13/cobra"
)

var (
	flagMaxDepth    int
	flagParallelism int
	flagDelay       time.Duration
	flagTimeout     time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "warmer [base-url]",
	Short: "Prime the page cache of a running blog",
	Long: "warmer crawls a running blog from its home page, following the post, " +
		"pagination and feed links, so that every page is rendered and cached.",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runWarm,
}

func init() {
	rootCmd.Flags().IntVar(&flagMaxDepth, "max-depth", warmer.DefaultMaxDepth, "how many links away from the home page to follow")
	rootCmd.Flags().IntVar(&flagParallelism, "parallelism", warmer.DefaultParallelism, "concurrent requests")
	rootCmd.Flags().DurationVar(&flagDelay, "delay", 0, "delay between requests")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", warmer.DefaultTimeout, "request timeout")
}

func runWarm(cmd *cobra.Command, args []string) error {
	logger := app.Logger()

	baseURL := os.Getenv("SITE_URL")

	if len(args) == 1 {
		baseURL = args[0]
	}

	if baseURL == "" {
		return fmt.Errorf("base URL is required, pass it as an argument or set SITE_URL")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()

	stats, err := warmer.Warm(ctx, baseURL, warmer.Options{
		MaxDepth:    flagMaxDepth,
		Parallelism: flagParallelism,
		Delay:       flagDelay,
		Timeout:     flagTimeout,
	})

	logger.Info("Warming finished",
		"base_url", baseURL,
		"visited", stats.Visited,
		"failed", stats.Failed,
		"hits", stats.Hits,
		"misses", stats.Misses,
		"duration_ms", time.Since(start).Milliseconds())

	return err
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		app.Logger().Error("Warmer failed", "error", err)
		os.Exit(1)
	}
}
