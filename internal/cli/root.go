package cmd

import (
	"context"
	"fmt"
	"math/rand"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/pypi-scraper/internal/build"
	"github.com/rohmanhakim/pypi-scraper/internal/config"
	"github.com/rohmanhakim/pypi-scraper/internal/scheduler"
	"github.com/rohmanhakim/pypi-scraper/internal/telemetry"
	"github.com/rohmanhakim/pypi-scraper/pkg/timeutil"
)

var (
	cfgFile           string
	indexURL          string
	dataDir           string
	maxAttempts       int
	backoffInitial    time.Duration
	backoffMultiplier float64
	backoffMax        time.Duration
	baseDelay         time.Duration
	jitter            time.Duration
	timeout           time.Duration
	userAgent         string
	concurrency       int
	randomSeed        int64
	dryRun            bool
	interval          time.Duration
	jsonLogs          bool
	logLevel          string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pypi-scraper",
	Short: "Scrape a package index and persist per-package JSON metadata.",
	Long: `pypi-scraper resolves the list of packages published on a package-index
homepage, fetches each package's JSON metadata document with bounded retry,
and persists the raw bytes to disk, one file per package.

A run is a single pass over the index. Transient HTTP failures are retried
with exponential backoff; a package that stays unreachable is reported and
the run moves on. Use --interval to run repeatedly, or leave it at zero and
drive the binary from an external scheduler.`,
	Version: build.FullVersion(),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := InitConfigWithError()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			_ = cmd.Usage()
			os.Exit(1)
		}

		os.Exit(runScraper(cfg))
	},
}

// runScraper executes runs until the interval loop ends (immediately, for a
// zero interval) and returns the process exit code. A completed run exits 0
// even when individual packages failed; only fatal resolution errors and
// invalid configuration are non-zero.
func runScraper(cfg config.Config) int {
	log := telemetry.NewLogger(telemetry.LogOptions{
		Level: logLevel,
		JSON:  jsonLogs,
	})
	defer func() { _ = log.Sync() }()

	recorder := telemetry.NewRecorder(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rng := rand.New(rand.NewSource(cfg.RandomSeed()))

	for {
		sched := scheduler.NewScheduler(cfg, recorder)
		report, err := sched.Run(ctx, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Fatal: %s\n", err)
			return 1
		}

		PrintReport(os.Stdout, report)

		if cfg.Interval() <= 0 {
			return 0
		}

		// Jittered pause between runs; an interrupt during the pause ends
		// the loop cleanly.
		pause := cfg.Interval() + timeutil.ComputeJitter(cfg.Jitter(), *rng)
		select {
		case <-time.After(pause):
		case <-ctx.Done():
			return 0
		}
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringVar(&indexURL, "index-url", "", "package index homepage URL (required unless --config-file is set)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory to save one JSON document per package")
	rootCmd.PersistentFlags().IntVar(&maxAttempts, "max-attempts", 0, "maximum attempts per HTTP call")
	rootCmd.PersistentFlags().DurationVar(&backoffInitial, "backoff-initial", 0, "initial retry backoff delay")
	rootCmd.PersistentFlags().Float64Var(&backoffMultiplier, "backoff-multiplier", 0, "retry backoff multiplier")
	rootCmd.PersistentFlags().DurationVar(&backoffMax, "backoff-max", 0, "cap on the retry backoff delay")
	rootCmd.PersistentFlags().DurationVar(&baseDelay, "base-delay", 0, "polite delay between requests to the index host")
	rootCmd.PersistentFlags().DurationVar(&jitter, "jitter", 0, "random jitter added to delays")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for a single HTTP request")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().IntVar(&concurrency, "concurrency", 0, "number of concurrent package workers")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for random number generation (0 for current time)")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "fetch without writing output")
	rootCmd.PersistentFlags().DurationVar(&interval, "interval", 0, "run repeatedly with this much time between runs (0 for a single run)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
}

// InitConfigWithError reads the config file if one was given, otherwise builds
// the config from CLI flags over defaults, returning any validation error.
func InitConfigWithError() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	if indexURL == "" {
		return config.Config{}, fmt.Errorf("%w: --index-url is required", config.ErrInvalidConfig)
	}
	parsedURL, err := url.Parse(indexURL)
	if err != nil {
		return config.Config{}, fmt.Errorf("%w: index URL %q: %s", config.ErrInvalidConfig, indexURL, err.Error())
	}

	// Start with defaults and apply overrides using method chaining
	configBuilder := config.WithDefault(*parsedURL)

	if dataDir != "" {
		configBuilder = configBuilder.WithDataDir(dataDir)
	}
	if maxAttempts > 0 {
		configBuilder = configBuilder.WithMaxAttempts(maxAttempts)
	}
	if backoffInitial > 0 {
		configBuilder = configBuilder.WithBackoffInitialDuration(backoffInitial)
	}
	if backoffMultiplier > 0 {
		configBuilder = configBuilder.WithBackoffMultiplier(backoffMultiplier)
	}
	if backoffMax > 0 {
		configBuilder = configBuilder.WithBackoffMaxDuration(backoffMax)
	}
	if baseDelay > 0 {
		configBuilder = configBuilder.WithBaseDelay(baseDelay)
	}
	if jitter > 0 {
		configBuilder = configBuilder.WithJitter(jitter)
	}
	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}
	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}
	if concurrency > 0 {
		configBuilder = configBuilder.WithConcurrency(concurrency)
	}
	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}
	if dryRun {
		configBuilder = configBuilder.WithDryRun(dryRun)
	}
	if interval > 0 {
		configBuilder = configBuilder.WithInterval(interval)
	}

	cfg, err := configBuilder.Build()
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// Test helper functions to set flag values from tests
func SetConfigFileForTest(path string) {
	cfgFile = path
}

func SetIndexURLForTest(u string) {
	indexURL = u
}

func SetDataDirForTest(dir string) {
	dataDir = dir
}

func SetMaxAttemptsForTest(attempts int) {
	maxAttempts = attempts
}

func SetBackoffInitialForTest(d time.Duration) {
	backoffInitial = d
}

func SetBackoffMultiplierForTest(m float64) {
	backoffMultiplier = m
}

func SetBackoffMaxForTest(d time.Duration) {
	backoffMax = d
}

func SetBaseDelayForTest(delay time.Duration) {
	baseDelay = delay
}

func SetJitterForTest(j time.Duration) {
	jitter = j
}

func SetTimeoutForTest(t time.Duration) {
	timeout = t
}

func SetUserAgentForTest(agent string) {
	userAgent = agent
}

func SetConcurrencyForTest(conc int) {
	concurrency = conc
}

func SetRandomSeedForTest(seed int64) {
	randomSeed = seed
}

func SetDryRunForTest(dry bool) {
	dryRun = dry
}

func SetIntervalForTest(d time.Duration) {
	interval = d
}

// ResetFlags restores all flag variables to their zero values between tests.
func ResetFlags() {
	cfgFile = ""
	indexURL = ""
	dataDir = ""
	maxAttempts = 0
	backoffInitial = 0
	backoffMultiplier = 0
	backoffMax = 0
	baseDelay = 0
	jitter = 0
	timeout = 0
	userAgent = ""
	concurrency = 0
	randomSeed = 0
	dryRun = false
	interval = 0
	jsonLogs = false
	logLevel = "info"
}
