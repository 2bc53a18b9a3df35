package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"

	"github.com/lendinglab/lending-service/pkg/kafka"
	"github.com/lendinglab/lending-service/pkg/logger"
	"github.com/lendinglab/lending-service/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"15s"`
	WriteTimeout time.Duration
}

type Redis struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// Features are the recognized operational flags. The struct is resolved once
// at wiring time and injected immutably; business logic never reads the
// environment on its own.
type Features struct {
	ReserveOnRequest        bool `envconfig:"RESERVE_ON_REQUEST" default:"false"`
	BackgroundJobsEnabled   bool `envconfig:"BACKGROUND_JOBS_ENABLED" default:"true"`
	NotificationsEnabled    bool `envconfig:"NOTIFICATIONS_ENABLED" default:"true"`
	OverdueDetectionEnabled bool `envconfig:"OVERDUE_DETECTION_ENABLED" default:"true"`
	IdempotencyEnabled      bool `envconfig:"IDEMPOTENCY_ENABLED" default:"true"`
	AuditLoggingEnabled     bool `envconfig:"AUDIT_LOGGING_ENABLED" default:"true"`
	EmergencyDisableAll     bool `envconfig:"EMERGENCY_DISABLE_ALL" default:"false"`
}

// Effective resolves the emergency kill switch: when set, every other flag
// is forced off.
func (f Features) Effective() Features {
	if !f.EmergencyDisableAll {
		return f
	}
	return Features{EmergencyDisableAll: true}
}

type Config struct {
	Server   HTTPServer `yaml:"server"`
	Database postgres.Config
	Kafka    kafka.Config
	Redis    Redis
	Features Features
	Log      logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

type Option func(*Config)

func WithLogLevel(lvl zapcore.Level) Option {
	return func(c *Config) {
		c.Log.LogLevel = lvl
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Server.WriteTimeout = d
	}
}

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return &cfg
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
