package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"storefront/internal/domain"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/wb-go/wbf/retry"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local" validate:"oneof=local dev prod test"`
	Server   ServerConfig   `yaml:"server"`
	Storage  StorageConfig  `yaml:"storage"`
	Minio    MinioConfig    `yaml:"minio"`
	DB       DBConfig       `yaml:"db"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Worker   WorkerConfig   `yaml:"worker"`
	Upload   UploadConfig   `yaml:"upload"`
	Notify   NotifyConfig   `yaml:"notify"`
	Forms    FormsConfig    `yaml:"forms"`
	Sessions SessionsConfig `yaml:"sessions"`
	Retry    RetryConfig    `yaml:"retry"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"SERVER_ADDR" env-default:"8080" validate:"required"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT" env-default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"SERVER_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
	StaticDir       string        `yaml:"static_dir" env:"SERVER_STATIC_DIR" env-default:"static"`
	TemplatesDir    string        `yaml:"templates_dir" env:"SERVER_TEMPLATES_DIR" env-default:"templates"`
}

type StorageConfig struct {
	Backend    string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"file" validate:"oneof=file minio postgres"`
	Dir        string `yaml:"dir" env:"STORAGE_DIR" env-default:"data"`
	QuotaBytes int    `yaml:"quota_bytes" env:"STORAGE_QUOTA_BYTES" env-default:"5242880" validate:"gt=0"`
}

type MinioConfig struct {
	Endpoint  string `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"localhost:9000"`
	AccessKey string `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	Bucket    string `yaml:"bucket" env:"MINIO_BUCKET" env-default:"storefront"`
	UseSSL    bool   `yaml:"use_ssl" env:"MINIO_USE_SSL" env-default:"false"`
}

type DBConfig struct {
	Host            string        `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int           `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string        `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string        `yaml:"password" env:"DB_PASSWORD"`
	Name            string        `yaml:"name" env:"DB_NAME" env-default:"storefront"`
	SSLMode         string        `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"5m"`
}

// KafkaConfig selects the submission transport. With no brokers the in-memory
// loopback broker is used.
type KafkaConfig struct {
	Brokers          []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	SubmissionsTopic string   `yaml:"submissions_topic" env:"KAFKA_SUBMISSIONS_TOPIC"`
	GroupID          string   `yaml:"group_id" env:"KAFKA_GROUP_ID"`
}

type WorkerConfig struct {
	Concurrency int `yaml:"concurrency" env:"WORKER_CONCURRENCY" env-default:"2" validate:"gte=1,lte=64"`
}

type UploadConfig struct {
	Background    domain.Target `yaml:"background"`
	Logo          domain.Target `yaml:"logo"`
	Quality       int           `yaml:"quality" env:"UPLOAD_QUALITY" env-default:"80" validate:"gte=1,lte=100"`
	OutputFormat  string        `yaml:"output_format" env:"UPLOAD_OUTPUT_FORMAT" env-default:"jpeg" validate:"oneof=jpeg webp"`
	MaxConcurrent int           `yaml:"max_concurrent" env:"UPLOAD_MAX_CONCURRENT" env-default:"2" validate:"gte=1"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes" env:"UPLOAD_MAX_BODY_BYTES" env-default:"8388608" validate:"gt=0"`
}

type NotifyConfig struct {
	TTL           time.Duration `yaml:"ttl" env:"NOTIFY_TTL" env-default:"3s"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"NOTIFY_SWEEP_INTERVAL" env-default:"30s"`
}

type FormsConfig struct {
	SimulatedLatency time.Duration `yaml:"simulated_latency" env:"FORMS_SIMULATED_LATENCY" env-default:"2s"`
}

// SessionsConfig bounds the per-session state held in memory: page
// controllers, header drafts and upload counters.
type SessionsConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl" env:"SESSIONS_IDLE_TTL" env-default:"30m"`
	MaxActive     int           `yaml:"max_active" env:"SESSIONS_MAX_ACTIVE" env-default:"10000" validate:"gte=0"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"SESSIONS_SWEEP_INTERVAL" env-default:"1m"`
}

type RetryConfig struct {
	Attempts int           `yaml:"attempts" env:"RETRY_ATTEMPTS" env-default:"3" validate:"gte=1"`
	Delay    time.Duration `yaml:"delay" env:"RETRY_DELAY" env-default:"200ms"`
	Backoff  float64       `yaml:"backoff" env:"RETRY_BACKOFF" env-default:"2"`
}

// MustLoad reads .env, then CONFIG_PATH (if set) and the environment, applies
// slot defaults and validates the result.
func MustLoad() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read env config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Upload.Background == (domain.Target{}) {
		c.Upload.Background = domain.Target{
			MaxWidth:  domain.BackgroundMaxWidth,
			MaxHeight: domain.BackgroundMaxHeight,
			MaxBytes:  domain.BackgroundMaxBytes,
		}
	}
	if c.Upload.Logo == (domain.Target{}) {
		c.Upload.Logo = domain.Target{
			MaxWidth:  domain.LogoMaxWidth,
			MaxHeight: domain.LogoMaxHeight,
			MaxBytes:  domain.LogoMaxBytes,
		}
	}
	if c.Kafka.SubmissionsTopic == "" {
		c.Kafka.SubmissionsTopic = domain.KafkaTopicSubmissions
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = domain.KafkaGroupID
	}
	if c.Notify.TTL <= 0 {
		c.Notify.TTL = domain.DefaultNotificationTTL
	}
	if c.Notify.SweepInterval <= 0 {
		c.Notify.SweepInterval = 10 * c.Notify.TTL
	}
	c.Sessions.IdleTTL = c.SessionLimits().IdleTTL
	c.Sessions.MaxActive = c.SessionLimits().MaxActive
	if c.Sessions.SweepInterval <= 0 {
		c.Sessions.SweepInterval = c.Sessions.IdleTTL / 2
	}
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid config field %s: failed on %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.Upload.MaxBodyBytes < c.Upload.Background.MaxBytes || c.Upload.MaxBodyBytes < c.Upload.Logo.MaxBytes {
		return fmt.Errorf("upload max_body_bytes (%d) must cover every slot limit", c.Upload.MaxBodyBytes)
	}
	if c.Storage.Backend == "minio" && (c.Minio.AccessKey == "" || c.Minio.SecretKey == "") {
		return errors.New("minio backend requires MINIO_ACCESS_KEY and MINIO_SECRET_KEY")
	}
	return nil
}

// Target returns the configured bounds for an upload slot.
func (c *Config) Target(slot domain.Slot) domain.Target {
	if slot == domain.SlotLogo {
		return c.Upload.Logo
	}
	return c.Upload.Background
}

func (c *Config) SessionLimits() domain.SessionLimits {
	return domain.SessionLimits{
		MaxActive: c.Sessions.MaxActive,
		IdleTTL:   c.Sessions.IdleTTL,
	}.WithDefaults()
}

func (c *Config) UseKafka() bool {
	return len(c.Kafka.Brokers) > 0
}

func (c *Config) DBDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name, c.DB.SSLMode)
}

func (c *Config) DefaultRetryStrategy() retry.Strategy {
	return retry.Strategy{
		Attempts: c.Retry.Attempts,
		Delay:    c.Retry.Delay,
		Backoff:  c.Retry.Backoff,
	}
}
