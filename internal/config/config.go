package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"
)

type Config struct {
	//===============
	//  Scrape scope
	//===============
	// Homepage of the package index; package names are extracted from it and
	// per-package metadata URLs are derived from it.
	indexURL url.URL

	//===============
	// Output
	//===============
	// Directory in which to store one JSON document per package
	dataDir string
	// Whether the program simulates what it would do without
	// actually writing any files
	dryRun bool

	//===============
	// Retry
	//===============
	// maximum attempts per HTTP call
	maxAttempts int
	// initial delay for backoff
	backoffInitialDuration time.Duration
	// multiplier during exponential backoff
	backoffMultiplier float64
	// capped maximum delay for backoff to stop exponential multiplication
	backoffMaxDuration time.Duration

	//===============
	// Politeness
	//===============
	// Number of worker goroutines processing package names concurrently
	concurrency int
	// Minimum waiting time enforced between two HTTP requests to the index host
	baseDelay time.Duration
	// Randomized variation added on top of the base delay and backoff delays
	jitter time.Duration
	// Controls the random number generator
	randomSeed int64

	//===============
	// Fetch
	//===============
	// Maximum time for a single fetch request
	timeout time.Duration
	// User agent used in the request header
	userAgent string

	//===============
	// Scheduling
	//===============
	// When > 0, the process runs repeatedly with this much (jittered) time
	// between runs. Zero means a single run, for external schedulers.
	interval time.Duration
}

type configDTO struct {
	IndexURL               string        `json:"indexUrl"`
	DataDir                string        `json:"dataDir,omitempty"`
	DryRun                 bool          `json:"dryRun,omitempty"`
	MaxAttempts            int           `json:"maxAttempts,omitempty"`
	BackoffInitialDuration time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier      float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration     time.Duration `json:"backoffMaxDuration,omitempty"`
	Concurrency            int           `json:"concurrency,omitempty"`
	BaseDelay              time.Duration `json:"baseDelay,omitempty"`
	Jitter                 time.Duration `json:"jitter,omitempty"`
	RandomSeed             int64         `json:"randomSeed,omitempty"`
	Timeout                time.Duration `json:"timeout,omitempty"`
	UserAgent              string        `json:"userAgent,omitempty"`
	Interval               time.Duration `json:"interval,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	parsedURL, err := url.Parse(dto.IndexURL)
	if err != nil {
		return Config{}, fmt.Errorf("%w: indexUrl %q: %s", ErrInvalidConfig, dto.IndexURL, err.Error())
	}

	// Only override defaults where the file provides a non-zero value; Build
	// runs last so file-supplied values go through the same validation as flags.
	builder := WithDefault(*parsedURL).WithDryRun(dto.DryRun)
	if dto.DataDir != "" {
		builder = builder.WithDataDir(dto.DataDir)
	}
	if dto.MaxAttempts != 0 {
		builder = builder.WithMaxAttempts(dto.MaxAttempts)
	}
	if dto.BackoffInitialDuration != 0 {
		builder = builder.WithBackoffInitialDuration(dto.BackoffInitialDuration)
	}
	if dto.BackoffMultiplier != 0 {
		builder = builder.WithBackoffMultiplier(dto.BackoffMultiplier)
	}
	if dto.BackoffMaxDuration != 0 {
		builder = builder.WithBackoffMaxDuration(dto.BackoffMaxDuration)
	}
	if dto.Concurrency != 0 {
		builder = builder.WithConcurrency(dto.Concurrency)
	}
	if dto.BaseDelay != 0 {
		builder = builder.WithBaseDelay(dto.BaseDelay)
	}
	if dto.Jitter != 0 {
		builder = builder.WithJitter(dto.Jitter)
	}
	if dto.RandomSeed != 0 {
		builder = builder.WithRandomSeed(dto.RandomSeed)
	}
	if dto.Timeout != 0 {
		builder = builder.WithTimeout(dto.Timeout)
	}
	if dto.UserAgent != "" {
		builder = builder.WithUserAgent(dto.UserAgent)
	}
	if dto.Interval != 0 {
		builder = builder.WithInterval(dto.Interval)
	}

	return builder.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided index URL and default values
// for all other fields. indexURL is mandatory and must be an absolute http(s) URL.
func WithDefault(indexURL url.URL) *Config {
	defaultConfig := Config{
		indexURL:               indexURL,
		dataDir:                "data",
		dryRun:                 false,
		maxAttempts:            3,
		backoffInitialDuration: time.Second,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     30 * time.Second,
		concurrency:            1,
		baseDelay:              time.Second,
		jitter:                 500 * time.Millisecond,
		randomSeed:             time.Now().UnixNano(),
		timeout:                10 * time.Second,
		userAgent:              "pypi-scraper/1.0",
		interval:               0,
	}
	return &defaultConfig
}

func (c *Config) WithIndexURL(u url.URL) *Config {
	c.indexURL = u
	return c
}

func (c *Config) WithDataDir(dir string) *Config {
	c.dataDir = dir
	return c
}

func (c *Config) WithDryRun(dryRun bool) *Config {
	c.dryRun = dryRun
	return c
}

func (c *Config) WithMaxAttempts(attempts int) *Config {
	c.maxAttempts = attempts
	return c
}

func (c *Config) WithBackoffInitialDuration(duration time.Duration) *Config {
	c.backoffInitialDuration = duration
	return c
}

func (c *Config) WithBackoffMultiplier(multiplier float64) *Config {
	c.backoffMultiplier = multiplier
	return c
}

func (c *Config) WithBackoffMaxDuration(duration time.Duration) *Config {
	c.backoffMaxDuration = duration
	return c
}

func (c *Config) WithConcurrency(concurrency int) *Config {
	c.concurrency = concurrency
	return c
}

func (c *Config) WithBaseDelay(delay time.Duration) *Config {
	c.baseDelay = delay
	return c
}

func (c *Config) WithJitter(jitter time.Duration) *Config {
	c.jitter = jitter
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithInterval(interval time.Duration) *Config {
	c.interval = interval
	return c
}

func (c *Config) Build() (Config, error) {
	if c.indexURL.Scheme != "http" && c.indexURL.Scheme != "https" {
		return Config{}, fmt.Errorf("%w: indexUrl must be an absolute http(s) URL, got %q", ErrInvalidConfig, c.indexURL.String())
	}
	if c.indexURL.Host == "" {
		return Config{}, fmt.Errorf("%w: indexUrl has no host", ErrInvalidConfig)
	}
	if c.dataDir == "" {
		return Config{}, fmt.Errorf("%w: dataDir cannot be empty", ErrInvalidConfig)
	}
	if c.maxAttempts < 1 {
		return Config{}, fmt.Errorf("%w: maxAttempts must be >= 1, got %d", ErrInvalidConfig, c.maxAttempts)
	}
	if c.backoffInitialDuration <= 0 {
		return Config{}, fmt.Errorf("%w: backoffInitialDuration must be > 0", ErrInvalidConfig)
	}
	if c.timeout <= 0 {
		return Config{}, fmt.Errorf("%w: timeout must be > 0", ErrInvalidConfig)
	}
	if c.concurrency < 1 {
		return Config{}, fmt.Errorf("%w: concurrency must be >= 1, got %d", ErrInvalidConfig, c.concurrency)
	}

	return *c, nil
}

func (c Config) IndexURL() url.URL {
	return c.indexURL
}

func (c Config) DataDir() string {
	return c.dataDir
}

func (c Config) DryRun() bool {
	return c.dryRun
}

func (c Config) MaxAttempts() int {
	return c.maxAttempts
}

func (c Config) BackoffInitialDuration() time.Duration {
	return c.backoffInitialDuration
}

func (c Config) BackoffMultiplier() float64 {
	return c.backoffMultiplier
}

func (c Config) BackoffMaxDuration() time.Duration {
	return c.backoffMaxDuration
}

func (c Config) Concurrency() int {
	return c.concurrency
}

func (c Config) BaseDelay() time.Duration {
	return c.baseDelay
}

func (c Config) Jitter() time.Duration {
	return c.jitter
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) Interval() time.Duration {
	return c.interval
}
