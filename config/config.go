// config/config.go
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingCredential is returned by Validate when the content-source key
// or the store connection string is absent.
var ErrMissingCredential = errors.New("missing credential")

// DefaultMinAcceptedYear is the earliest year a parsed date may carry before
// it is treated as numeric noise.
const DefaultMinAcceptedYear = 2024

const (
	defaultPort            = "3000"
	defaultContentBaseURL  = "https://api.firecrawl.dev"
	defaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	defaultWaitFor         = 20 * time.Second
	defaultRequestTimeout  = 60 * time.Second
	defaultBatchSize       = 3
	defaultFetchDelay      = 2 * time.Second
	defaultBatchDelay      = 10 * time.Second
	defaultRetryAttempts   = 3
	defaultRetryDelay      = 5 * time.Second
	defaultContextLines    = 3
	defaultRateLimit       = 100
	defaultRateWindow      = 15 * time.Minute
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5 * time.Minute
	defaultRedisStream     = "fundscout:runs"
	defaultErrorLog        = "error.log"
)

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ReadTimeoutStr  string        `yaml:"read_timeout"`
	WriteTimeoutStr string        `yaml:"write_timeout"`
	AdminToken      string        `yaml:"admin_token"`
	ReadTimeout     time.Duration `yaml:"-"`
	WriteTimeout    time.Duration `yaml:"-"`
}

type DatabaseConfig struct {
	Driver             string        `yaml:"driver"` // "postgres" or "mysql"; inferred from URL when empty
	URL                string        `yaml:"url"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetimeStr string        `yaml:"conn_max_lifetime"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
}

type ContentSourceConfig struct {
	BaseURL           string            `yaml:"base_url"`
	APIKey            string            `yaml:"api_key"`
	WaitForStr        string            `yaml:"wait_for"`
	RequestTimeoutStr string            `yaml:"request_timeout"`
	Headers           map[string]string `yaml:"headers"`
	WaitFor           time.Duration     `yaml:"-"`
	RequestTimeout    time.Duration     `yaml:"-"`

	// MaxRequestsPerMinute caps calls to the scrape API; 0 means no cap.
	MaxRequestsPerMinute int `yaml:"max_requests_per_minute"`
}

// SourceConfig is one agency page to ingest.
type SourceConfig struct {
	URL    string `yaml:"url"`
	Format string `yaml:"format"` // "markup" or "prose"
	// AllowSameHost lets links on the page's own host be paired with titles.
	AllowSameHost bool `yaml:"allow_same_host"`
}

// AgencyRule maps a URL substring to an agency code.
type AgencyRule struct {
	Match string `yaml:"match"`
	Code  string `yaml:"code"`
}

// PacingConfig is the self-imposed rate limit of a run.
type PacingConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FetchDelayStr string        `yaml:"fetch_delay"`
	BatchDelayStr string        `yaml:"batch_delay"`
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelayStr string        `yaml:"retry_delay"`
	FetchDelay    time.Duration `yaml:"-"`
	BatchDelay    time.Duration `yaml:"-"`
	RetryDelay    time.Duration `yaml:"-"`
}

type ExtractionConfig struct {
	MinAcceptedYear int `yaml:"min_accepted_year"`
	ContextLines    int `yaml:"context_lines"`
}

type APIConfig struct {
	RateLimit     int           `yaml:"rate_limit"`
	RateWindowStr string        `yaml:"rate_window"`
	CORSOrigins   []string      `yaml:"cors_origins"`
	RateWindow    time.Duration `yaml:"-"`

	// TrustedProxies are addresses or CIDRs whose X-Forwarded-For header is
	// believed. Requests from anywhere else are keyed by their peer address.
	TrustedProxies []string       `yaml:"trusted_proxies"`
	ProxyPrefixes  []netip.Prefix `yaml:"-"`
}

type ScheduleConfig struct {
	Cron string `yaml:"cron"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Stream   string `yaml:"stream"`
}

type ReportConfig struct {
	CSVPath  string `yaml:"csv_path"`
	DebugDir string `yaml:"debug_dir"`
	ErrorLog string `yaml:"error_log"`
}

type Config struct {
	Debug         bool                `yaml:"debug"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	ContentSource ContentSourceConfig `yaml:"content_source"`
	Sources       []SourceConfig      `yaml:"sources"`
	Agencies      []AgencyRule        `yaml:"agencies"`
	Pacing        PacingConfig        `yaml:"pacing"`
	Extraction    ExtractionConfig    `yaml:"extraction"`
	API           APIConfig           `yaml:"api"`
	Schedule      ScheduleConfig      `yaml:"schedule"`
	Redis         RedisConfig         `yaml:"redis"`
	Report        ReportConfig        `yaml:"report"`
}

// Load reads the YAML file at path, loads a .env file if one exists,
// applies environment overrides and defaults, and parses durations.
// An empty path skips the file and builds the config from env and defaults.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if path != "" {
		file, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
	}

	applyEnv(cfg)
	setDefaults(cfg)
	if err := parseDurations(cfg); err != nil {
		return nil, err
	}
	prefixes, err := ParseTrustedProxies(cfg.API.TrustedProxies)
	if err != nil {
		return nil, err
	}
	cfg.API.ProxyPrefixes = prefixes
	return cfg, nil
}

func applyEnv(cfg *Config) {
	overrides := []struct {
		key    string
		target *string
	}{
		{"FIRECRAWL_API_KEY", &cfg.ContentSource.APIKey},
		{"FIRECRAWL_BASE_URL", &cfg.ContentSource.BaseURL},
		{"DATABASE_URL", &cfg.Database.URL},
		{"DATABASE_DRIVER", &cfg.Database.Driver},
		{"PORT", &cfg.Server.Port},
		{"REDIS_ADDRESS", &cfg.Redis.Address},
		{"ADMIN_TOKEN", &cfg.Server.AdminToken},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && v != "" {
			*o.target = v
		}
	}
}

func setDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultPort
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = InferDriver(cfg.Database.URL)
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.ContentSource.BaseURL == "" {
		cfg.ContentSource.BaseURL = defaultContentBaseURL
	}
	if cfg.ContentSource.Headers == nil {
		cfg.ContentSource.Headers = map[string]string{"User-Agent": defaultUserAgent}
	}
	for i := range cfg.Sources {
		if cfg.Sources[i].Format == "" {
			cfg.Sources[i].Format = "markup"
		}
	}
	if len(cfg.Agencies) == 0 {
		cfg.Agencies = DefaultAgencies()
	}
	if cfg.Pacing.BatchSize <= 0 {
		cfg.Pacing.BatchSize = defaultBatchSize
	}
	if cfg.Pacing.RetryAttempts <= 0 {
		cfg.Pacing.RetryAttempts = defaultRetryAttempts
	}
	if cfg.Extraction.MinAcceptedYear == 0 {
		cfg.Extraction.MinAcceptedYear = DefaultMinAcceptedYear
	}
	if cfg.Extraction.ContextLines <= 0 {
		cfg.Extraction.ContextLines = defaultContextLines
	}
	if cfg.API.RateLimit <= 0 {
		cfg.API.RateLimit = defaultRateLimit
	}
	if len(cfg.API.CORSOrigins) == 0 {
		cfg.API.CORSOrigins = []string{"*"}
	}
	if cfg.Redis.Stream == "" {
		cfg.Redis.Stream = defaultRedisStream
	}
	if cfg.Report.ErrorLog == "" {
		cfg.Report.ErrorLog = defaultErrorLog
	}
}

// parseDurations fills every time.Duration field from its string twin.
// Pacing delays default only when unset, so "0s" disables a pause.
func parseDurations(cfg *Config) error {
	fields := []struct {
		name   string
		raw    string
		target *time.Duration
		def    time.Duration
	}{
		{"server.read_timeout", cfg.Server.ReadTimeoutStr, &cfg.Server.ReadTimeout, 15 * time.Second},
		{"server.write_timeout", cfg.Server.WriteTimeoutStr, &cfg.Server.WriteTimeout, 30 * time.Second},
		{"database.conn_max_lifetime", cfg.Database.ConnMaxLifetimeStr, &cfg.Database.ConnMaxLifetime, defaultConnMaxLifetime},
		{"content_source.wait_for", cfg.ContentSource.WaitForStr, &cfg.ContentSource.WaitFor, defaultWaitFor},
		{"content_source.request_timeout", cfg.ContentSource.RequestTimeoutStr, &cfg.ContentSource.RequestTimeout, defaultRequestTimeout},
		{"pacing.fetch_delay", cfg.Pacing.FetchDelayStr, &cfg.Pacing.FetchDelay, defaultFetchDelay},
		{"pacing.batch_delay", cfg.Pacing.BatchDelayStr, &cfg.Pacing.BatchDelay, defaultBatchDelay},
		{"pacing.retry_delay", cfg.Pacing.RetryDelayStr, &cfg.Pacing.RetryDelay, defaultRetryDelay},
		{"api.rate_window", cfg.API.RateWindowStr, &cfg.API.RateWindow, defaultRateWindow},
	}
	for _, f := range fields {
		if f.raw == "" {
			*f.target = f.def
			continue
		}
		d, err := time.ParseDuration(f.raw)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", f.name, err)
		}
		*f.target = d
	}
	return nil
}

// ParseTrustedProxies accepts plain addresses and CIDR prefixes.
func ParseTrustedProxies(entries []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if strings.Contains(e, "/") {
			p, err := netip.ParsePrefix(e)
			if err != nil {
				return nil, fmt.Errorf("invalid api.trusted_proxies entry %q: %w", e, err)
			}
			prefixes = append(prefixes, p.Masked())
			continue
		}
		addr, err := netip.ParseAddr(e)
		if err != nil {
			return nil, fmt.Errorf("invalid api.trusted_proxies entry %q: %w", e, err)
		}
		addr = addr.Unmap()
		prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return prefixes, nil
}

// Validate checks the settings a run cannot start without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ContentSource.APIKey) == "" {
		return fmt.Errorf("%w: content_source.api_key (FIRECRAWL_API_KEY)", ErrMissingCredential)
	}
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("%w: database.url (DATABASE_URL)", ErrMissingCredential)
	}
	switch c.Database.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported database.driver %q", c.Database.Driver)
	}
	for i, s := range c.Sources {
		if s.URL == "" {
			return fmt.Errorf("sources[%d].url is required", i)
		}
		if s.Format != "markup" && s.Format != "prose" {
			return fmt.Errorf("sources[%d].format must be markup or prose, got %q", i, s.Format)
		}
	}
	return nil
}

// InferDriver picks the SQL driver from the connection string's shape.
func InferDriver(url string) string {
	lower := strings.ToLower(url)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") ||
		strings.Contains(lower, "sslmode=") || strings.HasPrefix(lower, "host=") {
		return "postgres"
	}
	if strings.Contains(lower, "@tcp(") || strings.HasPrefix(lower, "mysql://") {
		return "mysql"
	}
	return "postgres"
}

// DefaultAgencies is the built-in URL substring to agency code table.
func DefaultAgencies() []AgencyRule {
	return []AgencyRule{
		{Match: "anrfonline.in", Code: "ANRF"},
		{Match: "serbonline.in", Code: "SERB"},
		{Match: "serb.gov.in", Code: "SERB"},
		{Match: "dst.gov.in", Code: "DST"},
		{Match: "dbtindia.gov.in", Code: "DBT"},
		{Match: "birac.nic.in", Code: "BIRAC"},
		{Match: "icmr.gov.in", Code: "ICMR"},
		{Match: "icmr.nic.in", Code: "ICMR"},
		{Match: "csir.res.in", Code: "CSIR"},
		{Match: "meity.gov.in", Code: "MeitY"},
		{Match: "drdo.gov.in", Code: "DRDO"},
		{Match: "isro.gov.in", Code: "ISRO"},
		{Match: "ugc.gov.in", Code: "UGC"},
		{Match: "aicte-india.org", Code: "AICTE"},
		{Match: "vit.ac.in", Code: "VIT"},
	}
}
