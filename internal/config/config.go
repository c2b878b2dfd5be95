package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DB       *DBconfig       `yaml:"db"`
	RabbitMq *RabbitMqconfig `yaml:"rabbitmq"`
	Redis    *Redisconfig    `yaml:"redis"`
	Mqtt     *Mqttconfig     `yaml:"mqtt"`
	Srv      *Serviceconfig  `yaml:"services"`
	Tracking *Trackingconfig `yaml:"tracking"`
	Log      *Loggerconfig   `yaml:"log"`
	App      *Appconfig      `yaml:"app"`
}

type DBconfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port" validate:"gt=0"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Database   string `yaml:"database"`
	MaxRetries int    `yaml:"max_retries" validate:"gte=1"`
}
type RabbitMqconfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port" validate:"gt=0"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}
type Redisconfig struct {
	Addr string `yaml:"addr"`
	DB   int    `yaml:"db"`
	// CurrentTTL bounds how long a cached position stays servable.
	CurrentTTL time.Duration `yaml:"current_ttl" validate:"gt=0"`
}
type Mqttconfig struct {
	BrokerURL string `yaml:"broker_url"`
	ClientID  string `yaml:"client_id"`
	Topic     string `yaml:"topic"`
}
type Serviceconfig struct {
	TrackingServicePort string `yaml:"tracking_service"`
	MetricsPort         string `yaml:"metrics"`
}
type Trackingconfig struct {
	SpeedLimitKmh          float64       `yaml:"speed_limit_kmh" validate:"gt=0"`
	WarningKmh             float64       `yaml:"warning_kmh" validate:"gt=0"`
	ViolationKmh           float64       `yaml:"violation_kmh" validate:"gt=0"`
	CriticalKmh            float64       `yaml:"critical_kmh" validate:"gt=0"`
	CleanupDaysToKeep      int           `yaml:"cleanup_days_to_keep" validate:"gt=0"`
	ScheduledArrivalOffset time.Duration `yaml:"scheduled_arrival_offset" validate:"gt=0"`
}
type Loggerconfig struct {
	Level string `yaml:"level"`
}
type Appconfig struct {
	PublicJwtSecret string `yaml:"public_jwt_secret"`
}

func New() (*Config, error) {
	getEnv := func(key, def string) string {
		val := os.Getenv(key)
		if val == "" {
			return def
		}
		return val
	}

	getEnvInt := func(key string, def int) int {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := strconv.Atoi(valStr)
		if err != nil {
			fmt.Printf("invalid %v, using default %v\n", key, def)
			return def
		}
		return val
	}

	getEnvFloat := func(key string, def float64) float64 {
		valStr := os.Getenv(key)
		if valStr == "" {
			return def
		}
		val, err := strconv.ParseFloat(valStr, 64)
		if err != nil {
			fmt.Printf("invalid %v, using default %v\n", key, def)
			return def
		}
		return val
	}

	cnf := &Config{
		DB: &DBconfig{
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnvInt("DB_PORT", 5432),
			User:       getEnv("DB_USER", "busfleet_user"),
			Password:   getEnv("DB_PASSWORD", "busfleet_pass"),
			Database:   getEnv("DB_NAME", "busfleet_db"),
			MaxRetries: getEnvInt("DB_MAX_RETRIES", 5),
		},
		RabbitMq: &RabbitMqconfig{
			Host:     getEnv("RABBITMQ_HOST", "localhost"),
			Port:     getEnvInt("RABBITMQ_PORT", 5672),
			User:     getEnv("RABBITMQ_USER", "guest"),
			Password: getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getEnv("RABBITMQ_VHOST", ""),
		},
		Redis: &Redisconfig{
			Addr:       getEnv("REDIS_ADDR", "localhost:6379"),
			DB:         getEnvInt("REDIS_DB", 0),
			CurrentTTL: time.Duration(getEnvInt("REDIS_CURRENT_TTL_SECONDS", 120)) * time.Second,
		},
		Mqtt: &Mqttconfig{
			BrokerURL: getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"),
			ClientID:  getEnv("MQTT_CLIENT_ID", "tracking-service"),
			Topic:     getEnv("MQTT_TOPIC", "fleet/+/location"),
		},
		Srv: &Serviceconfig{
			TrackingServicePort: getEnv("TRACKING_SERVICE_PORT", "3000"),
			MetricsPort:         getEnv("METRICS_PORT", "9100"),
		},
		Tracking: &Trackingconfig{
			SpeedLimitKmh:          getEnvFloat("SPEED_LIMIT_KMH", 50),
			WarningKmh:             getEnvFloat("SPEED_WARNING_KMH", 55),
			ViolationKmh:           getEnvFloat("SPEED_VIOLATION_KMH", 65),
			CriticalKmh:            getEnvFloat("SPEED_CRITICAL_KMH", 80),
			CleanupDaysToKeep:      getEnvInt("CLEANUP_DAYS_TO_KEEP", 90),
			ScheduledArrivalOffset: time.Duration(getEnvInt("SCHEDULED_ARRIVAL_OFFSET_MINUTES", 120)) * time.Minute,
		},
		Log: &Loggerconfig{
			Level: getEnv("LOG_LEVEL", "INFO"),
		},
		App: &Appconfig{
			PublicJwtSecret: getEnv("PUBLIC_JWT_SECRET", "dev-secret"),
		},
	}

	return cnf, nil
}

// NewFromYAML reads the config file and validates it. Env-based New is the
// default path; the file loader exists for deployments that mount a config.
func NewFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cnf := &Config{}
	if err := yaml.Unmarshal(data, cnf); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	v := validator.New()
	for name, section := range map[string]any{
		"db": cnf.DB, "rabbitmq": cnf.RabbitMq, "redis": cnf.Redis, "tracking": cnf.Tracking,
	} {
		if section == nil {
			return nil, fmt.Errorf("config section %q missing", name)
		}
		if err := v.Struct(section); err != nil {
			return nil, fmt.Errorf("validate config: %w", err)
		}
	}

	return cnf, nil
}
