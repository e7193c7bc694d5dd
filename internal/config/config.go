package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML file at configPath and returns a normalized AppConfig.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	if path == "" {
		path = DefaultConfigPath
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}
	cfg, err := Parse(content)
	if err != nil {
		return nil, fmt.Errorf("config file %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML content strictly and applies defaults.
func Parse(content []byte) (*AppConfig, error) {
	cfg := defaultAppConfig()
	raw := rawAppConfig{}
	if len(bytes.TrimSpace(content)) > 0 {
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
	}

	if err := applyRawAppConfig(&cfg, raw); err != nil {
		return nil, err
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *AppConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", cfg.Port)
	}
	if cfg.Database.Port < 1 || cfg.Database.Port > 65535 {
		return fmt.Errorf("invalid database.port %d, expected 1-65535", cfg.Database.Port)
	}
	switch cfg.Database.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		return fmt.Errorf("invalid database.driver %q, expected mysql or postgres", cfg.Database.Driver)
	}
	if cfg.Redis.Port < 1 || cfg.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", cfg.Redis.Port)
	}
	if cfg.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", cfg.Redis.DB)
	}
	if cfg.Project.PageSize < 1 {
		return fmt.Errorf("invalid project.page_size %d, expected >= 1", cfg.Project.PageSize)
	}
	if cfg.RateLimit.Max < 1 {
		return fmt.Errorf("invalid rate_limit.max %d, expected >= 1", cfg.RateLimit.Max)
	}
	switch cfg.Media.Driver {
	case MediaLocal:
	case MediaS3:
		s3 := cfg.Media.S3
		if s3.Bucket == "" || s3.Region == "" || s3.AccessKeyID == "" || s3.SecretAccessKey == "" {
			return fmt.Errorf("incomplete media.s3 config: bucket/region/access_key_id/secret_access_key are required")
		}
	default:
		return fmt.Errorf("invalid media.driver %q, expected local or s3", cfg.Media.Driver)
	}
	if cfg.Kafka.Enable && len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.enable requires at least one broker")
	}
	return nil
}

func defaultAppConfig() AppConfig {
	cfg := AppConfig{
		Port:     defaultPort,
		Env:      defaultEnv,
		TokenTTL: defaultTokenTTL,
		Database: DatabaseRuntimeConfig{
			Driver:    defaultDBDriver,
			Host:      defaultDBHost,
			Port:      defaultDBPort,
			User:      defaultDBUser,
			Password:  defaultDBPassword,
			Name:      defaultDBName,
			Charset:   defaultDBCharset,
			ParseTime: true,
			Loc:       defaultDBLoc,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		RateLimit: RateLimitConfig{
			Max:    defaultRateLimitMax,
			Window: defaultRateLimitWindow,
		},
		Project: ProjectConfig{
			PageSize:         defaultPageSize,
			EnforceOwnership: true,
		},
		Media: MediaConfig{
			Driver: defaultMediaDriver,
			Tiler:  TilerConfig{Timeout: defaultTilerTimeout},
		},
		Kafka: KafkaConfig{TopicPrefix: defaultTopicPrefix},
	}
	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	return cfg
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) error {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	cfg.Database = applyRawDatabaseConfig(cfg.Database, raw.Database)
	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw.Redis)
	cfg.Paths = normalizeRuntimePaths(raw.Paths)

	if raw.AllowedOrigins != nil {
		cfg.AllowedOrigins = normalizeList(raw.AllowedOrigins)
	}
	if raw.AdminAccounts != nil {
		cfg.AdminAccounts = normalizeList(raw.AdminAccounts)
	}
	if v := strings.TrimSpace(raw.JWTSecret); v != "" {
		cfg.JWTSecret = v
	}
	if v := strings.TrimSpace(raw.Timezone); v != "" {
		cfg.Timezone = v
	}

	var err error
	if cfg.TokenTTL, err = parseDuration("token_ttl", raw.TokenTTL, cfg.TokenTTL); err != nil {
		return err
	}

	if raw.RateLimit.Max != 0 {
		cfg.RateLimit.Max = raw.RateLimit.Max
	}
	if cfg.RateLimit.Window, err = parseDuration("rate_limit.window", raw.RateLimit.Window, cfg.RateLimit.Window); err != nil {
		return err
	}

	if raw.Project.PageSize != 0 {
		cfg.Project.PageSize = raw.Project.PageSize
	}
	if raw.Project.EnforceOwnership != nil {
		cfg.Project.EnforceOwnership = *raw.Project.EnforceOwnership
	}

	if v := strings.ToLower(strings.TrimSpace(raw.Media.Driver)); v != "" {
		cfg.Media.Driver = v
	}
	cfg.Media.S3 = normalizeS3Options(raw.Media.S3)
	if raw.Media.Tiler.Command != nil {
		cfg.Media.Tiler.Command = normalizeList(raw.Media.Tiler.Command)
	}
	if cfg.Media.Tiler.Timeout, err = parseDuration("media.tiler.timeout", raw.Media.Tiler.Timeout, cfg.Media.Tiler.Timeout); err != nil {
		return err
	}

	cfg.Kafka.Enable = raw.Kafka.Enable
	cfg.Kafka.Brokers = normalizeList(raw.Kafka.Brokers)
	if v := strings.TrimSpace(raw.Kafka.TopicPrefix); v != "" {
		cfg.Kafka.TopicPrefix = v
	}

	cfg.DSN = cfg.Database.DSNValue()
	cfg.RedisURL = cfg.Redis.URLValue()
	cfg.Env = normalizeEnv(cfg.Env)
	return nil
}

func applyRawDatabaseConfig(cfg DatabaseRuntimeConfig, raw rawDatabaseConfig) DatabaseRuntimeConfig {
	if v := strings.ToLower(strings.TrimSpace(raw.Driver)); v != "" {
		cfg.Driver = v
		if v == DriverPostgres && raw.Port == 0 {
			cfg.Port = defaultPGPort
		}
	}
	if v := strings.TrimSpace(raw.DSN); v != "" {
		cfg.DSN = v
	}
	if v := strings.TrimSpace(raw.Host); v != "" {
		cfg.Host = v
	}
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.User); v != "" {
		cfg.User = v
	}
	if raw.Password != "" {
		cfg.Password = raw.Password
	}
	if v := strings.TrimSpace(raw.Name); v != "" {
		cfg.Name = v
	}
	if v := strings.TrimSpace(raw.Charset); v != "" {
		cfg.Charset = v
	}
	if raw.ParseTime != nil {
		cfg.ParseTime = *raw.ParseTime
	}
	if v := strings.TrimSpace(raw.Loc); v != "" {
		cfg.Loc = v
	}
	if raw.Params != nil {
		cfg.Params = copyStringMap(raw.Params)
	}
	return cfg
}

func applyRawRedisConfig(cfg RedisRuntimeConfig, raw rawRedisConfig) RedisRuntimeConfig {
	if v := normalizeRedisRawURL(raw.URL); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(raw.Host); v != "" {
		cfg.Host = v
	}
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Username); v != "" {
		cfg.Username = v
	}
	if raw.Password != "" {
		cfg.Password = raw.Password
	}
	if raw.DB != nil {
		cfg.DB = *raw.DB
	}
	if raw.TLS != nil {
		cfg.TLS = *raw.TLS
	}
	if raw.Params != nil {
		cfg.Params = copyStringMap(raw.Params)
	}
	return cfg
}

func parseDuration(key, raw string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return fallback, nil
	}
	if strings.HasSuffix(trimmed, "d") {
		var days int
		if _, err := fmt.Sscanf(trimmed, "%dd", &days); err == nil && days > 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return d, nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

// StaticDir is the public asset root served under /static.
func (c *AppConfig) StaticDir() string {
	if c == nil {
		return ResolveRuntimePath("", "public")
	}
	return ResolveRuntimePath(c.Paths.Static, "public")
}

// UploadDir holds staged uploads before they are processed.
func (c *AppConfig) UploadDir() string {
	if c == nil {
		return ResolveRuntimePath("", "uploads")
	}
	return ResolveRuntimePath(c.Paths.Uploads, "uploads")
}

// IsAdminAccount reports whether account is listed in admin_accounts.
func (c *AppConfig) IsAdminAccount(account string) bool {
	account = strings.TrimSpace(account)
	for _, a := range c.AdminAccounts {
		if strings.EqualFold(a, account) {
			return true
		}
	}
	return false
}
