package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	dErrors "landscape/pkg/domain-errors"
)

// DefaultRegistryURL is the Eclipse SDV working group project listing.
const DefaultRegistryURL = "https://projects.eclipse.org/api/projects?working_group=sdv"

// Config captures everything one generator run needs. Environment variables
// provide defaults; command-line flags override them.
type Config struct {
	CategoriesPath string
	OutputPath     string
	// InputPath, when set, replaces the registry API with a local export.
	InputPath string

	RegistryURL  string
	PageSize     int
	Concurrency  int
	Retries      int
	RetryInitial time.Duration
	RetryMax     time.Duration
	Timeout      time.Duration

	UnmappedPolicy      string
	FallbackCategory    string
	FallbackSubcategory string
	DefaultSubcategory  string

	LogosDir    string
	MetricsFile string

	LogLevel  string
	LogFormat string
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		RegistryURL:         DefaultRegistryURL,
		PageSize:            20,
		Concurrency:         4,
		Retries:             3,
		RetryInitial:        500 * time.Millisecond,
		RetryMax:            5 * time.Second,
		Timeout:             30 * time.Second,
		UnmappedPolicy:      "bucket",
		FallbackCategory:    "Unmapped",
		FallbackSubcategory: "Misc",
		DefaultSubcategory:  "General",
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// FromEnv layers LANDSCAPE_* environment variables over Defaults. A variable
// that is set but does not parse is a config error.
func FromEnv() (Config, error) {
	cfg := Defaults()
	env := envReader{}

	env.str("LANDSCAPE_CATEGORIES", &cfg.CategoriesPath)
	env.str("LANDSCAPE_OUTPUT", &cfg.OutputPath)
	env.str("LANDSCAPE_INPUT", &cfg.InputPath)
	env.str("LANDSCAPE_REGISTRY_URL", &cfg.RegistryURL)
	env.integer("LANDSCAPE_PAGE_SIZE", &cfg.PageSize)
	env.integer("LANDSCAPE_CONCURRENCY", &cfg.Concurrency)
	env.integer("LANDSCAPE_RETRIES", &cfg.Retries)
	env.duration("LANDSCAPE_RETRY_INITIAL", &cfg.RetryInitial)
	env.duration("LANDSCAPE_RETRY_MAX", &cfg.RetryMax)
	env.duration("LANDSCAPE_TIMEOUT", &cfg.Timeout)
	env.str("LANDSCAPE_UNMAPPED", &cfg.UnmappedPolicy)
	env.str("LANDSCAPE_FALLBACK_CATEGORY", &cfg.FallbackCategory)
	env.str("LANDSCAPE_FALLBACK_SUBCATEGORY", &cfg.FallbackSubcategory)
	env.str("LANDSCAPE_DEFAULT_SUBCATEGORY", &cfg.DefaultSubcategory)
	env.str("LANDSCAPE_LOGOS_DIR", &cfg.LogosDir)
	env.str("LANDSCAPE_METRICS_FILE", &cfg.MetricsFile)
	env.str("LANDSCAPE_LOG_LEVEL", &cfg.LogLevel)
	env.str("LANDSCAPE_LOG_FORMAT", &cfg.LogFormat)

	if len(env.errs) > 0 {
		return cfg, dErrors.New(dErrors.CodeConfig, strings.Join(env.errs, "; "))
	}
	return cfg, nil
}

type envReader struct {
	errs []string
}

func (r *envReader) str(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

func (r *envReader) integer(key string, dst *int) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s=%q is not an integer", key, v))
		return
	}
	*dst = n
}

func (r *envReader) duration(key string, dst *time.Duration) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		r.errs = append(r.errs, fmt.Sprintf("%s=%q is not a duration", key, v))
		return
	}
	*dst = d
}

// Validate reports every problem at once as a single config error.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.CategoriesPath) == "" {
		add("category map path is required")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		add("output path is required")
	}
	if c.InputPath == "" {
		if u, err := url.Parse(c.RegistryURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			add("registry url %q must be an absolute http(s) URL", c.RegistryURL)
		}
	}
	if c.PageSize < 1 {
		add("page size must be positive, got %d", c.PageSize)
	}
	if c.Concurrency < 1 {
		add("concurrency must be positive, got %d", c.Concurrency)
	}
	if c.Retries < 0 {
		add("retries must not be negative, got %d", c.Retries)
	}
	if c.RetryInitial <= 0 {
		add("initial retry interval must be positive")
	}
	if c.RetryMax < c.RetryInitial {
		add("max retry interval %s is below the initial interval %s", c.RetryMax, c.RetryInitial)
	}
	if c.Timeout <= 0 {
		add("timeout must be positive")
	}
	switch strings.ToLower(c.UnmappedPolicy) {
	case "bucket", "reject":
	default:
		add("unmapped policy %q must be bucket or reject", c.UnmappedPolicy)
	}
	if strings.TrimSpace(c.FallbackCategory) == "" {
		add("fallback category must not be empty")
	}
	if strings.TrimSpace(c.FallbackSubcategory) == "" {
		add("fallback subcategory must not be empty")
	}
	if strings.TrimSpace(c.DefaultSubcategory) == "" {
		add("default subcategory must not be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		add("log level %q must be debug, info, warn or error", c.LogLevel)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		add("log format %q must be text or json", c.LogFormat)
	}

	if len(problems) > 0 {
		return dErrors.New(dErrors.CodeConfig, "invalid configuration: "+strings.Join(problems, "; "))
	}
	return nil
}
