package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 8000
	defaultEnv        = "development"

	defaultDBDriver   = DriverMySQL
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultPGPort     = 5432
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "panotour"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379
	defaultRedisDB    = 0

	defaultTokenTTL        = 7 * 24 * time.Hour
	defaultRateLimitMax    = 50
	defaultRateLimitWindow = time.Minute
	defaultPageSize        = 10
	defaultTilerTimeout    = 5 * time.Minute
	defaultTopicPrefix     = "panotour"
	defaultMediaDriver     = MediaLocal
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	MediaLocal = "local"
	MediaS3    = "s3"
)
