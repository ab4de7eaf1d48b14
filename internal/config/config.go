package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// 通知通道
const (
	TransportSMTP    = "smtp"
	TransportWebhook = "webhook"
	TransportMQTT    = "mqtt"
	TransportRedis   = "redis"
	TransportLog     = "log"
)

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode)
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MQTTConfig MQTT配置
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
	QoS      byte
}

// SMTPConfig 邮件通知配置
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Config 生命体征服务配置
type Config struct {
	HTTP struct {
		Addr string
	}

	DBEnabled bool
	Database  DatabaseConfig

	RedisEnabled bool
	Redis        RedisConfig

	// 报警通知配置
	Notifier struct {
		Transport  string // smtp / webhook / mqtt / redis / log
		Recipient  string // 固定收件人
		SMTP       SMTPConfig
		WebhookURL string
		MQTT       MQTTConfig
		Stream     string // Redis Streams 名称
	}

	// 实时数据缓存配置
	Cache struct {
		KeyPrefix string // 如 "vitals:patient:"
		TTL       int    // 秒
	}

	// 启动时预注册的患者（可选）
	Patient struct {
		Name string
		ID   string
	}

	Log struct {
		Level  string
		Format string
	}
}

// Load 加载配置
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	// 归档默认关闭：内存存储是唯一权威数据源
	cfg.DBEnabled = parseBool(getEnv("DB_ENABLED", "false"), false)
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Database = getEnv("DB_NAME", "owlrd")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "5"), 5)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "2"), 2)

	cfg.RedisEnabled = parseBool(getEnv("REDIS_ENABLED", "false"), false)
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Notifier.Transport = strings.ToLower(getEnv("NOTIFIER_TRANSPORT", TransportSMTP))
	cfg.Notifier.Recipient = getEnv("ALERT_RECIPIENT", "")
	cfg.Notifier.SMTP.Host = getEnv("SMTP_HOST", "smtp.gmail.com")
	cfg.Notifier.SMTP.Port = parseInt(getEnv("SMTP_PORT", "587"), 587)
	cfg.Notifier.SMTP.Username = getEnv("SMTP_USERNAME", "")
	cfg.Notifier.SMTP.Password = getEnv("SMTP_PASSWORD", "")
	cfg.Notifier.SMTP.From = getEnv("SMTP_FROM", cfg.Notifier.SMTP.Username)
	cfg.Notifier.WebhookURL = getEnv("WEBHOOK_URL", "")
	cfg.Notifier.MQTT.Broker = getEnv("MQTT_BROKER", "tcp://localhost:1883")
	cfg.Notifier.MQTT.ClientID = getEnv("MQTT_CLIENT_ID", "wisefido-vitals")
	cfg.Notifier.MQTT.Username = getEnv("MQTT_USERNAME", "")
	cfg.Notifier.MQTT.Password = getEnv("MQTT_PASSWORD", "")
	cfg.Notifier.MQTT.Topic = getEnv("MQTT_TOPIC", "vitals/alerts")
	cfg.Notifier.MQTT.QoS = byte(parseInt(getEnv("MQTT_QOS", "1"), 1))
	cfg.Notifier.Stream = getEnv("ALERT_STREAM", "vitals:alerts")

	cfg.Cache.KeyPrefix = getEnv("CACHE_KEY_PREFIX", "vitals:patient:")
	cfg.Cache.TTL = parseInt(getEnv("CACHE_TTL", "300"), 300)

	cfg.Patient.Name = getEnv("PATIENT_NAME", "")
	cfg.Patient.ID = getEnv("PATIENT_ID", "")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Notifier.Transport {
	case TransportSMTP, TransportLog, TransportMQTT:
	case TransportWebhook:
		if c.Notifier.WebhookURL == "" {
			return fmt.Errorf("WEBHOOK_URL is required for webhook transport")
		}
	case TransportRedis:
		if !c.RedisEnabled {
			return fmt.Errorf("REDIS_ENABLED must be true for redis transport")
		}
	default:
		return fmt.Errorf("unknown notifier transport: %s", c.Notifier.Transport)
	}
	if (c.Patient.Name == "") != (c.Patient.ID == "") {
		return fmt.Errorf("PATIENT_NAME and PATIENT_ID must be set together")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}

func parseBool(s string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return b
}
