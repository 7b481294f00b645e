package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration shared by the api and worker
// processes.
type Config struct {
	ServiceID string
	LogLevel  string

	HTTPPort int
	GRPCPort int
	// TrustedProxies lists addresses or CIDR ranges whose X-Forwarded-For is honoured.
	TrustedProxies []string

	DatabaseURL string
	RedisURL    string
	MaxDBConns  int32

	JWTPrivateKeyPEM  string
	JWTPublicKeyPEM   string
	JWTKeyID          string
	AllowEphemeralJWT bool
	BcryptCost        int

	TokenTTL         time.Duration
	SessionTTL       time.Duration
	LockoutDuration  time.Duration
	FailedThreshold  int
	LoginIPThreshold int
	LoginIPWindow    time.Duration
	CookieName       string
	CookieSecure     bool

	BootstrapAdminEmail    string
	BootstrapAdminPassword string
	BootstrapAdminName     string

	MaxUploadBytes   int64
	ThumbnailWidth   int
	ThumbnailQuality int

	BlobBackend           string
	LocalBlobDir          string
	AzureAccountURL       string
	AzureConnectionString string
	AzureContainer        string
	AzurePublicBaseURL    string

	SiteName             string
	ContactInbox         []string
	ContactRatePerMinute float64
	ContactBurst         int
	PublicCacheTTL       time.Duration

	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPFrom       string
	SMTPRequireTLS bool

	KafkaBrokers     []string
	KafkaTopicPrefix string
	KafkaTopics      map[string]string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int

	PublishCron       string
	SchedulerTimezone string
	DuePostsBatch     int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
type configFile struct {
	Service struct {
		ID             string   `yaml:"id"`
		HTTPPort       int      `yaml:"http_port"`
		GRPCPort       int      `yaml:"grpc_port"`
		LogLevel       string   `yaml:"log_level"`
		TrustedProxies []string `yaml:"trusted_proxies"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
		MaxDBConns  int32  `yaml:"max_db_conns"`
	} `yaml:"dependencies"`
	Auth struct {
		JWTKeyID          string        `yaml:"jwt_key_id"`
		AllowEphemeralJWT *bool         `yaml:"allow_ephemeral_jwt"`
		BcryptCost        int           `yaml:"bcrypt_cost"`
		TokenTTL          time.Duration `yaml:"token_ttl"`
		SessionTTL        time.Duration `yaml:"session_ttl"`
		LockoutDuration   time.Duration `yaml:"lockout_duration"`
		FailedThreshold   int           `yaml:"failed_login_threshold"`
		LoginIPThreshold  int           `yaml:"login_ip_threshold"`
		LoginIPWindow     time.Duration `yaml:"login_ip_window"`
		CookieName        string        `yaml:"cookie_name"`
		CookieSecure      *bool         `yaml:"cookie_secure"`
	} `yaml:"auth"`
	Media struct {
		MaxUploadBytes   int64  `yaml:"max_upload_bytes"`
		ThumbnailWidth   int    `yaml:"thumbnail_width"`
		ThumbnailQuality int    `yaml:"thumbnail_quality"`
		Backend          string `yaml:"backend"`
		LocalDir         string `yaml:"local_dir"`
		Azure            struct {
			AccountURL    string `yaml:"account_url"`
			Container     string `yaml:"container"`
			PublicBaseURL string `yaml:"public_base_url"`
		} `yaml:"azure"`
	} `yaml:"media"`
	Site struct {
		Name                 string        `yaml:"name"`
		ContactInbox         []string      `yaml:"contact_inbox"`
		ContactRatePerMinute float64       `yaml:"contact_rate_per_minute"`
		ContactBurst         int           `yaml:"contact_burst"`
		PublicCacheTTL       time.Duration `yaml:"public_cache_ttl"`
	} `yaml:"site"`
	SMTP struct {
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		Username   string `yaml:"username"`
		From       string `yaml:"from"`
		RequireTLS *bool  `yaml:"require_tls"`
	} `yaml:"smtp"`
	Kafka struct {
		Brokers     []string          `yaml:"brokers"`
		TopicPrefix string            `yaml:"topic_prefix"`
		Topics      map[string]string `yaml:"topics"`
	} `yaml:"kafka"`
	Worker struct {
		OutboxPollInterval time.Duration `yaml:"outbox_poll_interval"`
		OutboxBatchSize    int           `yaml:"outbox_batch_size"`
		OutboxClaimTTL     time.Duration `yaml:"outbox_claim_ttl"`
		OutboxMaxRetries   int           `yaml:"outbox_max_retries"`
		PublishCron        string        `yaml:"publish_cron"`
		Timezone           string        `yaml:"timezone"`
		DuePostsBatch      int           `yaml:"due_posts_batch"`
	} `yaml:"worker"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:            "asof-site",
		LogLevel:             "info",
		HTTPPort:             8080,
		GRPCPort:             9090,
		MaxDBConns:           10,
		JWTKeyID:             "asof-site-key-1",
		AllowEphemeralJWT:    true,
		BcryptCost:           12,
		TokenTTL:             12 * time.Hour,
		SessionTTL:           7 * 24 * time.Hour,
		LockoutDuration:      15 * time.Minute,
		FailedThreshold:      5,
		LoginIPThreshold:     30,
		LoginIPWindow:        15 * time.Minute,
		CookieName:           "asof_session",
		CookieSecure:         true,
		MaxUploadBytes:       10 << 20,
		ThumbnailWidth:       480,
		ThumbnailQuality:     82,
		BlobBackend:          "local",
		LocalBlobDir:         "data/uploads",
		SiteName:             "ASOF",
		ContactRatePerMinute: 1,
		ContactBurst:         3,
		PublicCacheTTL:       5 * time.Minute,
		SMTPPort:             587,
		KafkaTopicPrefix:     "asof.site.",
		OutboxPollInterval:   2 * time.Second,
		OutboxBatchSize:      100,
		OutboxClaimTTL:       30 * time.Second,
		OutboxMaxRetries:     5,
		PublishCron:          "* * * * *",
		SchedulerTimezone:    "America/Sao_Paulo",
		DuePostsBatch:        50,
	}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		applyFile(&cfg, f)
	case !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	applyEnv(&cfg)

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}
	if (cfg.JWTPrivateKeyPEM == "" || cfg.JWTPublicKeyPEM == "") && !cfg.AllowEphemeralJWT {
		return Config{}, fmt.Errorf("missing JWT_PRIVATE_KEY_PEM or JWT_PUBLIC_KEY_PEM")
	}
	switch cfg.BlobBackend {
	case "local":
		if cfg.LocalBlobDir == "" {
			return Config{}, fmt.Errorf("missing MEDIA_LOCAL_DIR for local blob backend")
		}
	case "azure":
		if cfg.AzureContainer == "" || (cfg.AzureAccountURL == "" && cfg.AzureConnectionString == "") {
			return Config{}, fmt.Errorf("azure blob backend needs AZURE_STORAGE_CONTAINER and an account url or connection string")
		}
	default:
		return Config{}, fmt.Errorf("unknown MEDIA_BACKEND %q", cfg.BlobBackend)
	}
	if cfg.SMTPHost != "" && cfg.SMTPFrom == "" {
		return Config{}, fmt.Errorf("missing SMTP_FROM")
	}
	return cfg, nil
}

func applyFile(cfg *Config, f configFile) {
	setString(&cfg.ServiceID, f.Service.ID)
	setString(&cfg.LogLevel, f.Service.LogLevel)
	setInt(&cfg.HTTPPort, f.Service.HTTPPort)
	setInt(&cfg.GRPCPort, f.Service.GRPCPort)
	if len(f.Service.TrustedProxies) > 0 {
		cfg.TrustedProxies = f.Service.TrustedProxies
	}

	setString(&cfg.DatabaseURL, f.Dependencies.PostgresURL)
	setString(&cfg.RedisURL, f.Dependencies.RedisURL)
	if f.Dependencies.MaxDBConns > 0 {
		cfg.MaxDBConns = f.Dependencies.MaxDBConns
	}

	setString(&cfg.JWTKeyID, f.Auth.JWTKeyID)
	if f.Auth.AllowEphemeralJWT != nil {
		cfg.AllowEphemeralJWT = *f.Auth.AllowEphemeralJWT
	}
	setInt(&cfg.BcryptCost, f.Auth.BcryptCost)
	setDuration(&cfg.TokenTTL, f.Auth.TokenTTL)
	setDuration(&cfg.SessionTTL, f.Auth.SessionTTL)
	setDuration(&cfg.LockoutDuration, f.Auth.LockoutDuration)
	setInt(&cfg.FailedThreshold, f.Auth.FailedThreshold)
	setInt(&cfg.LoginIPThreshold, f.Auth.LoginIPThreshold)
	setDuration(&cfg.LoginIPWindow, f.Auth.LoginIPWindow)
	setString(&cfg.CookieName, f.Auth.CookieName)
	if f.Auth.CookieSecure != nil {
		cfg.CookieSecure = *f.Auth.CookieSecure
	}

	if f.Media.MaxUploadBytes > 0 {
		cfg.MaxUploadBytes = f.Media.MaxUploadBytes
	}
	setInt(&cfg.ThumbnailWidth, f.Media.ThumbnailWidth)
	setInt(&cfg.ThumbnailQuality, f.Media.ThumbnailQuality)
	setString(&cfg.BlobBackend, f.Media.Backend)
	setString(&cfg.LocalBlobDir, f.Media.LocalDir)
	setString(&cfg.AzureAccountURL, f.Media.Azure.AccountURL)
	setString(&cfg.AzureContainer, f.Media.Azure.Container)
	setString(&cfg.AzurePublicBaseURL, f.Media.Azure.PublicBaseURL)

	setString(&cfg.SiteName, f.Site.Name)
	if len(f.Site.ContactInbox) > 0 {
		cfg.ContactInbox = f.Site.ContactInbox
	}
	if f.Site.ContactRatePerMinute > 0 {
		cfg.ContactRatePerMinute = f.Site.ContactRatePerMinute
	}
	setInt(&cfg.ContactBurst, f.Site.ContactBurst)
	setDuration(&cfg.PublicCacheTTL, f.Site.PublicCacheTTL)

	setString(&cfg.SMTPHost, f.SMTP.Host)
	setInt(&cfg.SMTPPort, f.SMTP.Port)
	setString(&cfg.SMTPUsername, f.SMTP.Username)
	setString(&cfg.SMTPFrom, f.SMTP.From)
	if f.SMTP.RequireTLS != nil {
		cfg.SMTPRequireTLS = *f.SMTP.RequireTLS
	}

	if len(f.Kafka.Brokers) > 0 {
		cfg.KafkaBrokers = f.Kafka.Brokers
	}
	setString(&cfg.KafkaTopicPrefix, f.Kafka.TopicPrefix)
	if len(f.Kafka.Topics) > 0 {
		cfg.KafkaTopics = f.Kafka.Topics
	}

	setDuration(&cfg.OutboxPollInterval, f.Worker.OutboxPollInterval)
	setInt(&cfg.OutboxBatchSize, f.Worker.OutboxBatchSize)
	setDuration(&cfg.OutboxClaimTTL, f.Worker.OutboxClaimTTL)
	setInt(&cfg.OutboxMaxRetries, f.Worker.OutboxMaxRetries)
	setString(&cfg.PublishCron, f.Worker.PublishCron)
	setString(&cfg.SchedulerTimezone, f.Worker.Timezone)
	setInt(&cfg.DuePostsBatch, f.Worker.DuePostsBatch)
}

func applyEnv(cfg *Config) {
	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.TrustedProxies = envCSV("TRUSTED_PROXIES", cfg.TrustedProxies)

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))

	cfg.JWTPrivateKeyPEM = envOrDefault("JWT_PRIVATE_KEY_PEM", cfg.JWTPrivateKeyPEM)
	cfg.JWTPublicKeyPEM = envOrDefault("JWT_PUBLIC_KEY_PEM", cfg.JWTPublicKeyPEM)
	cfg.JWTKeyID = envOrDefault("JWT_KEY_ID", cfg.JWTKeyID)
	cfg.AllowEphemeralJWT = envBool("ALLOW_EPHEMERAL_JWT", cfg.AllowEphemeralJWT)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.TokenTTL = envDuration("TOKEN_TTL", cfg.TokenTTL)
	cfg.SessionTTL = envDuration("SESSION_TTL", cfg.SessionTTL)
	cfg.LockoutDuration = envDuration("ACCOUNT_LOCKOUT_DURATION", cfg.LockoutDuration)
	cfg.FailedThreshold = envInt("FAILED_LOGIN_THRESHOLD", cfg.FailedThreshold)
	cfg.LoginIPThreshold = envInt("LOGIN_IP_THRESHOLD", cfg.LoginIPThreshold)
	cfg.LoginIPWindow = envDuration("LOGIN_IP_WINDOW", cfg.LoginIPWindow)
	cfg.CookieName = envOrDefault("SESSION_COOKIE_NAME", cfg.CookieName)
	cfg.CookieSecure = envBool("SESSION_COOKIE_SECURE", cfg.CookieSecure)

	cfg.BootstrapAdminEmail = envOrDefault("BOOTSTRAP_ADMIN_EMAIL", cfg.BootstrapAdminEmail)
	cfg.BootstrapAdminPassword = envOrDefault("BOOTSTRAP_ADMIN_PASSWORD", cfg.BootstrapAdminPassword)
	cfg.BootstrapAdminName = envOrDefault("BOOTSTRAP_ADMIN_NAME", cfg.BootstrapAdminName)

	cfg.MaxUploadBytes = int64(envInt("MEDIA_MAX_UPLOAD_BYTES", int(cfg.MaxUploadBytes)))
	cfg.ThumbnailWidth = envInt("MEDIA_THUMBNAIL_WIDTH", cfg.ThumbnailWidth)
	cfg.ThumbnailQuality = envInt("MEDIA_THUMBNAIL_QUALITY", cfg.ThumbnailQuality)
	cfg.BlobBackend = strings.ToLower(strings.TrimSpace(envOrDefault("MEDIA_BACKEND", cfg.BlobBackend)))
	cfg.LocalBlobDir = envOrDefault("MEDIA_LOCAL_DIR", cfg.LocalBlobDir)
	cfg.AzureAccountURL = envOrDefault("AZURE_STORAGE_ACCOUNT_URL", cfg.AzureAccountURL)
	cfg.AzureConnectionString = envOrDefault("AZURE_STORAGE_CONNECTION_STRING", cfg.AzureConnectionString)
	cfg.AzureContainer = envOrDefault("AZURE_STORAGE_CONTAINER", cfg.AzureContainer)
	cfg.AzurePublicBaseURL = envOrDefault("AZURE_STORAGE_PUBLIC_BASE_URL", cfg.AzurePublicBaseURL)

	cfg.SiteName = envOrDefault("SITE_NAME", cfg.SiteName)
	cfg.ContactInbox = envCSV("CONTACT_INBOX", cfg.ContactInbox)
	cfg.ContactRatePerMinute = envFloat("CONTACT_RATE_PER_MINUTE", cfg.ContactRatePerMinute)
	cfg.ContactBurst = envInt("CONTACT_BURST", cfg.ContactBurst)
	cfg.PublicCacheTTL = envDuration("PUBLIC_CACHE_TTL", cfg.PublicCacheTTL)

	cfg.SMTPHost = envOrDefault("SMTP_HOST", cfg.SMTPHost)
	cfg.SMTPPort = envInt("SMTP_PORT", cfg.SMTPPort)
	cfg.SMTPUsername = envOrDefault("SMTP_USERNAME", cfg.SMTPUsername)
	cfg.SMTPPassword = envOrDefault("SMTP_PASSWORD", cfg.SMTPPassword)
	cfg.SMTPFrom = envOrDefault("SMTP_FROM", cfg.SMTPFrom)
	cfg.SMTPRequireTLS = envBool("SMTP_REQUIRE_TLS", cfg.SMTPRequireTLS)

	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicPrefix = envOrDefault("KAFKA_TOPIC_PREFIX", cfg.KafkaTopicPrefix)

	cfg.OutboxPollInterval = envDuration("OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxClaimTTL = envDuration("OUTBOX_CLAIM_TTL", cfg.OutboxClaimTTL)
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)
	cfg.PublishCron = envOrDefault("PUBLISH_CRON", cfg.PublishCron)
	cfg.SchedulerTimezone = envOrDefault("SCHEDULER_TIMEZONE", cfg.SchedulerTimezone)
	cfg.DuePostsBatch = envInt("DUE_POSTS_BATCH", cfg.DuePostsBatch)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v > 0 {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// envDuration accepts Go duration strings such as "15m" or "12h".
func envDuration(name string, fallback time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

// envBool parses common boolean env forms while keeping a deterministic fallback.
func envBool(name string, fallback bool) bool {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return fallback
	}
}

// envCSV parses comma-separated env vars and removes empty segments.
func envCSV(name string, fallback []string) []string {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	parts := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		parts = append(parts, trimmed)
	}
	if len(parts) == 0 {
		return fallback
	}
	return parts
}
