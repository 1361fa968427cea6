package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	PresenterLog  = "log"
	PresenterMQTT = "mqtt"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Log       LogConfig
	Carrier   CarrierConfig
	Pipeline  PipelineConfig
	Reminder  ReminderConfig
	Presenter PresenterConfig
	Exports   ExportsConfig
}

type DatabaseConfig struct {
	Driver       string
	Path         string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig controls bearer token checks for the radio producer and settings UI.
type AuthConfig struct {
	Enabled    bool
	Secret     string
	Issuer     string
	Expiration time.Duration
	Clients    []AuthClient
}

// AuthClient is a collaborator allowed to exchange a secret for a token.
// SecretHash is a bcrypt hash.
type AuthClient struct {
	ID         string
	Role       string
	SecretHash string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CarrierConfig carries carrier-provided channel ranges and regional policy switches.
type CarrierConfig struct {
	ChannelRanges           []string
	ForceDisableTestAlerts  bool
	AlwaysShowAlertToggle   bool
	PresidentialToneVibrate bool
	AlertToneEnable         bool
	RegionalWEAReminder     bool
	DefaultSlot             int
}

// PipelineConfig tunes broadcast ingestion.
type PipelineConfig struct {
	BufferSize     int
	DedupCapacity  int
	IngestRate     float64
	IngestBurst    int
	ProcessTimeout time.Duration
}

type ReminderConfig struct {
	StateTTL time.Duration
}

// PresenterConfig selects where alert-presentation requests are delivered.
type PresenterConfig struct {
	Kind         string
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string
	MQTTUsername string
	MQTTPassword string
}

type ExportsConfig struct {
	StorageDir string
	Retention  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		Path:         v.GetString("DB_PATH"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		Enabled:    v.GetBool("AUTH_ENABLED"),
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		Clients:    parseAuthClients(v.GetString("AUTH_CLIENTS")),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"), ",")}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Carrier = CarrierConfig{
		ChannelRanges:           splitAndTrim(v.GetString("CARRIER_CHANNEL_RANGES"), ";"),
		ForceDisableTestAlerts:  v.GetBool("CARRIER_FORCE_DISABLE_TEST_ALERTS"),
		AlwaysShowAlertToggle:   v.GetBool("CARRIER_ALWAYS_SHOW_ALERT_TOGGLE"),
		PresidentialToneVibrate: v.GetBool("REGIONAL_PRESIDENTIAL_TONE_VIBRATE"),
		AlertToneEnable:         v.GetBool("REGIONAL_ALERT_TONE_ENABLE"),
		RegionalWEAReminder:     v.GetBool("REGIONAL_WEA_REMINDER"),
		DefaultSlot:             v.GetInt("DEFAULT_SLOT"),
	}

	cfg.Pipeline = PipelineConfig{
		BufferSize:     v.GetInt("PIPELINE_BUFFER_SIZE"),
		DedupCapacity:  v.GetInt("DEDUP_CAPACITY"),
		IngestRate:     v.GetFloat64("INGEST_RATE_LIMIT"),
		IngestBurst:    v.GetInt("INGEST_RATE_BURST"),
		ProcessTimeout: parseDuration(v.GetString("PIPELINE_PROCESS_TIMEOUT"), 10*time.Second),
	}

	cfg.Reminder = ReminderConfig{
		StateTTL: parseDuration(v.GetString("REMINDER_STATE_TTL"), 24*time.Hour),
	}

	cfg.Presenter = PresenterConfig{
		Kind:         strings.ToLower(v.GetString("PRESENTER")),
		MQTTBroker:   v.GetString("MQTT_BROKER"),
		MQTTClientID: v.GetString("MQTT_CLIENT_ID"),
		MQTTTopic:    v.GetString("MQTT_TOPIC"),
		MQTTUsername: v.GetString("MQTT_USERNAME"),
		MQTTPassword: v.GetString("MQTT_PASSWORD"),
	}

	cfg.Exports = ExportsConfig{
		StorageDir: v.GetString("EXPORTS_STORAGE_DIR"),
		Retention:  parseDuration(v.GetString("EXPORTS_RETENTION"), 24*time.Hour),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "./data/cellbroadcasts.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "cellbroadcasts")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "cellbroadcast-api")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CARRIER_CHANNEL_RANGES", "")
	v.SetDefault("CARRIER_FORCE_DISABLE_TEST_ALERTS", false)
	v.SetDefault("CARRIER_ALWAYS_SHOW_ALERT_TOGGLE", false)
	v.SetDefault("REGIONAL_PRESIDENTIAL_TONE_VIBRATE", false)
	v.SetDefault("REGIONAL_ALERT_TONE_ENABLE", false)
	v.SetDefault("REGIONAL_WEA_REMINDER", false)
	v.SetDefault("DEFAULT_SLOT", 0)

	v.SetDefault("PIPELINE_BUFFER_SIZE", 64)
	v.SetDefault("DEDUP_CAPACITY", 65535)
	v.SetDefault("INGEST_RATE_LIMIT", 20.0)
	v.SetDefault("INGEST_RATE_BURST", 40)
	v.SetDefault("PIPELINE_PROCESS_TIMEOUT", "10s")

	v.SetDefault("REMINDER_STATE_TTL", "24h")

	v.SetDefault("PRESENTER", PresenterLog)
	v.SetDefault("MQTT_BROKER", "tcp://127.0.0.1:1883")
	v.SetDefault("MQTT_CLIENT_ID", "cellbroadcast-api")
	v.SetDefault("MQTT_TOPIC", "cellbroadcast/alerts/present")
	v.SetDefault("MQTT_USERNAME", "")
	v.SetDefault("MQTT_PASSWORD", "")

	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_RETENTION", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

// parseAuthClients reads "id:role:bcrypt-hash" entries separated by commas.
// Malformed entries are skipped.
func parseAuthClients(raw string) []AuthClient {
	var clients []AuthClient
	for _, entry := range splitAndTrim(raw, ",") {
		parts := strings.SplitN(entry, ":", 3)
		if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
			continue
		}
		clients = append(clients, AuthClient{ID: parts[0], Role: parts[1], SecretHash: parts[2]})
	}
	return clients
}

func splitAndTrim(raw, sep string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, sep)
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
