package config

import "time"

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                   `yaml:"port"`
	Env            string                `yaml:"env"` // "development" | "production"
	DSN            string                `yaml:"-"`
	RedisURL       string                `yaml:"-"`
	Database       DatabaseRuntimeConfig `yaml:"database"`
	Redis          RedisRuntimeConfig    `yaml:"redis"`
	Paths          RuntimePathsConfig    `yaml:"paths"`
	AllowedOrigins []string              `yaml:"allowed_origins"`
	JWTSecret      string                `yaml:"jwt_secret"`
	TokenTTL       time.Duration         `yaml:"token_ttl"`
	Timezone       string                `yaml:"timezone"`
	AdminAccounts  []string              `yaml:"admin_accounts"`
	RateLimit      RateLimitConfig       `yaml:"rate_limit"`
	Project        ProjectConfig         `yaml:"project"`
	Media          MediaConfig           `yaml:"media"`
	Kafka          KafkaConfig           `yaml:"kafka"`
}

type DatabaseRuntimeConfig struct {
	Driver    string            `yaml:"driver"`
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime bool              `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type RedisRuntimeConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       int               `yaml:"db"`
	TLS      bool              `yaml:"tls"`
	Params   map[string]string `yaml:"params"`
}

type RuntimePathsConfig struct {
	Logs    string `yaml:"logs"`
	Static  string `yaml:"static"`
	Uploads string `yaml:"uploads"`
}

type RateLimitConfig struct {
	Max    int           `yaml:"max"`
	Window time.Duration `yaml:"window"`
}

type ProjectConfig struct {
	PageSize         int  `yaml:"page_size"`
	EnforceOwnership bool `yaml:"enforce_ownership"`
}

type MediaConfig struct {
	Driver string      `yaml:"driver"` // "local" | "s3"
	S3     S3Options   `yaml:"s3"`
	Tiler  TilerConfig `yaml:"tiler"`
}

type S3Options struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	CustomDomain    string `yaml:"custom_domain"`
	PathStyleAccess bool   `yaml:"path_style"`
}

// TilerConfig describes the external panorama tiler. Command is a program
// followed by arguments; {input}, {output} and {format} (multires or cube)
// are substituted per run.
type TilerConfig struct {
	Command []string      `yaml:"command"`
	Timeout time.Duration `yaml:"timeout"`
}

type KafkaConfig struct {
	Enable      bool     `yaml:"enable"`
	Brokers     []string `yaml:"brokers"`
	TopicPrefix string   `yaml:"topic_prefix"`
}

type rawAppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"`
	Database       rawDatabaseConfig  `yaml:"database"`
	Redis          rawRedisConfig     `yaml:"redis"`
	Paths          RuntimePathsConfig `yaml:"paths"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	JWTSecret      string             `yaml:"jwt_secret"`
	TokenTTL       string             `yaml:"token_ttl"`
	Timezone       string             `yaml:"timezone"`
	AdminAccounts  []string           `yaml:"admin_accounts"`
	RateLimit      rawRateLimit       `yaml:"rate_limit"`
	Project        rawProjectConfig   `yaml:"project"`
	Media          rawMediaConfig     `yaml:"media"`
	Kafka          KafkaConfig        `yaml:"kafka"`
}

type rawDatabaseConfig struct {
	Driver    string            `yaml:"driver"`
	DSN       string            `yaml:"dsn"`
	Host      string            `yaml:"host"`
	Port      int               `yaml:"port"`
	User      string            `yaml:"user"`
	Password  string            `yaml:"password"`
	Name      string            `yaml:"name"`
	Charset   string            `yaml:"charset"`
	ParseTime *bool             `yaml:"parse_time"`
	Loc       string            `yaml:"loc"`
	Params    map[string]string `yaml:"params"`
}

type rawRedisConfig struct {
	URL      string            `yaml:"url"`
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	DB       *int              `yaml:"db"`
	TLS      *bool             `yaml:"tls"`
	Params   map[string]string `yaml:"params"`
}

type rawRateLimit struct {
	Max    int    `yaml:"max"`
	Window string `yaml:"window"`
}

type rawProjectConfig struct {
	PageSize         int   `yaml:"page_size"`
	EnforceOwnership *bool `yaml:"enforce_ownership"`
}

type rawMediaConfig struct {
	Driver string         `yaml:"driver"`
	S3     S3Options      `yaml:"s3"`
	Tiler  rawTilerConfig `yaml:"tiler"`
}

type rawTilerConfig struct {
	Command []string `yaml:"command"`
	Timeout string   `yaml:"timeout"`
}
