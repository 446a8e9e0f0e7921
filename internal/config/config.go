package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/CyberXLTR/CyberXLTR-Admin/internal/apperrors"
)

const secretMask = "******"

type Config struct {
	App        `yaml:"app"`
	Logger     `yaml:"log"`
	Database   `yaml:"database"`
	Redis      `yaml:"redis"`
	HTTPServer `yaml:"http_server"`
	Mailer     `yaml:"mailer"`
	Key        `yaml:"key"`
	Admin      `yaml:"admin"`
	Sync       `yaml:"sync"`
}

type App struct {
	ServiceName string `yaml:"service_name" env:"APP_SERVICE_NAME" env-default:"CyberXLTR Admin Platform"`
	Version     string `yaml:"version" env:"APP_VERSION" env-default:"1.0.0"`
}

type Logger struct {
	Level      string   `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
	FormatJSON bool     `yaml:"format_json" env:"LOG_FORMAT_JSON"`
	Rotation   Rotation `yaml:"rotation"`
}

type Rotation struct {
	File       string `yaml:"file" env:"LOG_FILE"`
	MaxSize    int    `yaml:"max_size" env:"LOG_MAX_SIZE" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS" env-default:"3"`
	MaxAge     int    `yaml:"max_age" env:"LOG_MAX_AGE" env-default:"28"`
}

type Database struct {
	Host      string    `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port      uint16    `yaml:"port" env:"DB_PORT" env-default:"5433"`
	User      string    `yaml:"user" env:"DB_USER" env-default:"admin"`
	Password  string    `yaml:"password" env:"DB_PASSWORD"`
	Name      string    `yaml:"name" env:"DB_NAME" env-default:"cyberxltr_admin"`
	SSLMode   string    `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxConns  int32     `yaml:"max_conns" env:"DB_MAX_CONNS" env-default:"10"`
	MinConns  int32     `yaml:"min_conns" env:"DB_MIN_CONNS" env-default:"1"`
	Migration Migration `yaml:"migration"`
}

type Migration struct {
	Path      string `yaml:"path" env:"DB_MIGRATION_PATH" env-default:"migrations"`
	AutoApply bool   `yaml:"auto_apply" env:"DB_MIGRATION_AUTO_APPLY"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     uint16 `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type HTTPServer struct {
	Host     string  `yaml:"host" env:"HOST" env-default:"0.0.0.0"`
	Port     uint16  `yaml:"port" env:"PORT" env-default:"8001"`
	BasePath string  `yaml:"base_path" env:"HTTP_BASE_PATH" env-default:"/api/v1"`
	Timeout  Timeout `yaml:"timeout"`
	CORS     CORS    `yaml:"cors"`
	JWT      JWT     `yaml:"jwt"`
}

type Timeout struct {
	Request time.Duration `yaml:"request" env:"HTTP_TIMEOUT_REQUEST" env-default:"15m"`
	Read    time.Duration `yaml:"read" env:"HTTP_TIMEOUT_READ" env-default:"10s"`
	Write   time.Duration `yaml:"write" env:"HTTP_TIMEOUT_WRITE" env-default:"15m"`
	Idle    time.Duration `yaml:"idle" env:"HTTP_TIMEOUT_IDLE" env-default:"60s"`
}

type CORS struct {
	Enabled          bool          `yaml:"enabled" env:"CORS_ENABLED"`
	AllowAllOrigins  bool          `yaml:"allow_all_origins"`
	AllowOrigins     []string      `yaml:"allow_origins" env:"CORS_ORIGINS" env-separator:","`
	AllowMethods     []string      `yaml:"allow_methods"`
	AllowHeaders     []string      `yaml:"allow_headers"`
	ExposeHeaders    []string      `yaml:"expose_headers"`
	AllowCredentials bool          `yaml:"allow_credentials"`
	MaxAge           time.Duration `yaml:"max_age"`
}

type JWT struct {
	Issuer          string        `yaml:"issuer" env:"JWT_ISSUER" env-default:"cyberxltr-admin"`
	Audience        string        `yaml:"audience" env:"JWT_AUDIENCE" env-default:"cyberxltr-admin-api"`
	AccessTokenTTL  time.Duration `yaml:"access_token_ttl" env:"JWT_ACCESS_TOKEN_TTL" env-default:"24h"`
	RefreshTokenTTL time.Duration `yaml:"refresh_token_ttl" env:"JWT_REFRESH_TOKEN_TTL" env-default:"168h"`
}

type Mailer struct {
	Host     string `yaml:"host" env:"MAILER_HOST"`
	Port     int    `yaml:"port" env:"MAILER_PORT" env-default:"465"`
	Username string `yaml:"username" env:"MAILER_USERNAME"`
	Password string `yaml:"password" env:"MAILER_PASSWORD"`
	From     string `yaml:"from" env:"MAILER_FROM"`
	UseTLS   bool   `yaml:"use_tls" env:"MAILER_USE_TLS"`
}

type Key struct {
	PublicKey  string `yaml:"public" env:"KEY_PUBLIC" env-default:"ecdsa_public.pem"`
	PrivateKey string `yaml:"private" env:"KEY_PRIVATE" env-default:"ecdsa_private.pem"`
}

type Admin struct {
	Emails []string `yaml:"emails" env:"ADMIN_EMAILS" env-separator:"," env-default:"admin@cyberxltr.com"`
}

// Sync configures delivery of local mutations to the downstream service.
// RetryDelay and Timeout are whole seconds.
type Sync struct {
	ServiceURL        string        `yaml:"service_url" env:"CYBERXLTR_SERVICE_URL" env-default:"http://localhost:8000"`
	APIKey            string        `yaml:"api_key" env:"INTER_SERVICE_API_KEY"`
	Enabled           bool          `yaml:"enabled" env:"SYNC_ENABLED"`
	MaxRetries        int           `yaml:"max_retries" env:"SYNC_MAX_RETRIES" env-default:"3"`
	RetryDelay        int           `yaml:"retry_delay" env:"SYNC_RETRY_DELAY" env-default:"5"`
	Timeout           int           `yaml:"timeout" env:"SYNC_TIMEOUT" env-default:"30"`
	BulkConcurrency   int           `yaml:"bulk_concurrency" env:"SYNC_BULK_CONCURRENCY" env-default:"1"`
	BulkLockTTL       time.Duration `yaml:"bulk_lock_ttl" env:"SYNC_BULK_LOCK_TTL" env-default:"30m"`
	StoreWriteTimeout time.Duration `yaml:"store_write_timeout" env:"SYNC_STORE_WRITE_TIMEOUT" env-default:"5s"`
	Breaker           Breaker       `yaml:"breaker"`
	AutoRetry         AutoRetry     `yaml:"auto_retry"`
	Alert             Alert         `yaml:"alert"`
}

type Breaker struct {
	Enabled             bool          `yaml:"enabled" env:"SYNC_BREAKER_ENABLED"`
	ConsecutiveFailures uint32        `yaml:"consecutive_failures" env-default:"5"`
	OpenTimeout         time.Duration `yaml:"open_timeout" env-default:"30s"`
	HalfOpenRequests    uint32        `yaml:"half_open_requests" env-default:"1"`
}

type AutoRetry struct {
	Enabled  bool          `yaml:"enabled" env:"SYNC_AUTO_RETRY_ENABLED"`
	Interval time.Duration `yaml:"interval" env:"SYNC_AUTO_RETRY_INTERVAL" env-default:"15m"`
}

type Alert struct {
	Recipients []string      `yaml:"recipients" env:"SYNC_ALERT_RECIPIENTS" env-separator:","`
	Cooldown   time.Duration `yaml:"cooldown" env:"SYNC_ALERT_COOLDOWN" env-default:"15m"`
}

func (s Sync) RetryDelayDuration() time.Duration {
	return time.Duration(s.RetryDelay) * time.Second
}

func (s Sync) TimeoutDuration() time.Duration {
	return time.Duration(s.Timeout) * time.Second
}

func (c *Config) Validate() error {
	if c.Sync.MaxRetries < 1 {
		return fmt.Errorf("%w: sync.max_retries must be at least 1, got %d", apperrors.ErrInvalidConfig, c.Sync.MaxRetries)
	}

	if c.Sync.RetryDelay < 0 {
		return fmt.Errorf("%w: sync.retry_delay must not be negative", apperrors.ErrInvalidConfig)
	}

	if c.Sync.Timeout < 0 {
		return fmt.Errorf("%w: sync.timeout must not be negative", apperrors.ErrInvalidConfig)
	}

	if c.Sync.BulkConcurrency < 1 {
		return fmt.Errorf("%w: sync.bulk_concurrency must be at least 1, got %d", apperrors.ErrInvalidConfig, c.Sync.BulkConcurrency)
	}

	if c.Sync.AutoRetry.Enabled && c.Sync.AutoRetry.Interval <= 0 {
		return fmt.Errorf("%w: sync.auto_retry.interval must be positive", apperrors.ErrInvalidConfig)
	}

	return nil
}

func MustLoadConfig() *Config {
	cfg, err := LoadConfig()
	if err != nil {
		panic(err)
	}

	return cfg
}

func LoadConfig() (*Config, error) {
	return LoadConfigFromPath(fetchConfigPath())
}

// LoadConfigFromPath reads the yaml file at path, or only the environment when path is empty.
func LoadConfigFromPath(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}

		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaultConfig presets booleans that default to true; cleanenv treats false as unset.
func defaultConfig() *Config {
	return &Config{
		Sync: Sync{
			Enabled: true,
		},
	}
}

func MustPrintConfig(cfg *Config) {
	if err := PrintConfig(cfg); err != nil {
		panic(err)
	}
}

func PrintConfig(cfg *Config) error {
	masked := *cfg
	masked.Database.Password = mask(masked.Database.Password)
	masked.Redis.Password = mask(masked.Redis.Password)
	masked.Mailer.Password = mask(masked.Mailer.Password)
	masked.Sync.APIKey = mask(masked.Sync.APIKey)

	data, err := yaml.Marshal(&masked)
	if err != nil {
		return err
	}

	println(string(data))

	return nil
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}

	return secretMask
}

func fetchConfigPath() string {
	var result string

	flag.StringVar(&result, "config", "", "Path to config file")
	flag.Parse()

	if result == "" {
		result = os.Getenv("CONFIG_PATH")
	}

	return result
}
