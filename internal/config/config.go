package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config представляет полную конфигурацию приложения
type Config struct {
	Logs       LogsConfig       `toml:"logs"`
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Redis      RedisConfig      `toml:"redis"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Telegram   TelegramConfig   `toml:"telegram"`
	CDN        CDNConfig        `toml:"cdn"`
	Broadcast  BroadcastConfig  `toml:"broadcast"`
	Worker     WorkerConfig     `toml:"worker"`
	Tasks      TasksConfig      `toml:"tasks"`
	SiteConfig SiteConfigConfig `toml:"siteconfig"`
}

// LogsConfig содержит настройки логирования
type LogsConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// RedisConfig содержит настройки Redis (хранилище сессий)
type RedisConfig struct {
	Address  string `toml:"address"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// MetricsConfig содержит настройки метрик Prometheus
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// TelegramConfig содержит настройки вторичного канала доставки через Telegram
// Канал опционален: при enabled = false уведомления доставляются только в веб
type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
}

// CDNConfig содержит настройки интеграции с CDN для сброса кэша
type CDNConfig struct {
	Endpoint string `toml:"endpoint"`
	Timeout  int    `toml:"timeout"` // в секундах
}

// BroadcastConfig содержит настройки рассылок
type BroadcastConfig struct {
	WindowSize  int      `toml:"window_size"`  // Размер окна user id при фан-ауте по всем пользователям
	DefaultMode string   `toml:"default_mode"` // sync | deferred
	MaxAttempts int      `toml:"max_attempts"` // Максимум попыток выполнения отложенной задачи
	Icons       []string `toml:"icons"`        // Допустимые идентификаторы иконок
}

// WorkerConfig содержит настройки worker'ов
type WorkerConfig struct {
	ProcessorInterval  int `toml:"processor_interval"`   // Интервал опроса pending событий (в секундах)
	ProcessorBatchSize int `toml:"processor_batch_size"` // Количество событий за один опрос
	JobInterval        int `toml:"job_interval"`         // Интервал опроса очереди задач рассылки (в секундах)
}

// TasksConfig содержит настройки задач обслуживания аккаунтов
type TasksConfig struct {
	MinPasswordLength int `toml:"min_password_length"` // Минимальная длина пароля при смене
}

// SiteConfigConfig содержит настройки отображения конфигурации сайта
type SiteConfigConfig struct {
	SiteName       string   `toml:"site_name"`
	ServerURL      string   `toml:"server_url"`
	RestrictedKeys []string `toml:"restricted_keys"` // Ключи, которые не показываются в панели
}

// DSN формирует строку подключения к PostgreSQL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// Load загружает конфигурацию из TOML файла с поддержкой переменных окружения
func Load(path string) (*Config, error) {
	var cfg Config

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode TOML config: %w", err)
	}

	overrideFromEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// overrideFromEnv переопределяет значения из переменных окружения
func overrideFromEnv(cfg *Config) {
	// Database
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Database.DBName = v
	}
	if v := os.Getenv("DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}

	// Redis
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		cfg.Redis.Address = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}

	// Server
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.HTTPPort = port
		}
	}

	// Logs
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logs.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Logs.File = v
	}

	// Metrics
	if v := os.Getenv("METRICS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Metrics.Enabled = enabled
		}
	}
	if v := os.Getenv("METRICS_PATH"); v != "" {
		cfg.Metrics.Path = v
	}
	if v := os.Getenv("METRICS_SERVICE_NAME"); v != "" {
		cfg.Metrics.ServiceName = v
	}

	// Telegram
	if v := os.Getenv("TELEGRAM_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Telegram.Enabled = enabled
		}
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}

	// CDN
	if v := os.Getenv("CDN_ENDPOINT"); v != "" {
		cfg.CDN.Endpoint = v
	}
	if v := os.Getenv("CDN_TIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			cfg.CDN.Timeout = timeout
		}
	}

	// Broadcast
	if v := os.Getenv("BROADCAST_WINDOW_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			cfg.Broadcast.WindowSize = size
		}
	}
	if v := os.Getenv("BROADCAST_DEFAULT_MODE"); v != "" {
		cfg.Broadcast.DefaultMode = v
	}

	// Worker
	if v := os.Getenv("WORKER_PROCESSOR_INTERVAL"); v != "" {
		if interval, err := strconv.Atoi(v); err == nil {
			cfg.Worker.ProcessorInterval = interval
		}
	}
	if v := os.Getenv("WORKER_PROCESSOR_BATCH_SIZE"); v != "" {
		if batchSize, err := strconv.Atoi(v); err == nil {
			cfg.Worker.ProcessorBatchSize = batchSize
		}
	}
	if v := os.Getenv("WORKER_JOB_INTERVAL"); v != "" {
		if interval, err := strconv.Atoi(v); err == nil {
			cfg.Worker.JobInterval = interval
		}
	}
}

// validate проверяет корректность конфигурации
func validate(cfg *Config) error {
	// Database validation
	if cfg.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}
	if cfg.Database.Port <= 0 || cfg.Database.Port > 65535 {
		return fmt.Errorf("database port must be between 1 and 65535")
	}
	if cfg.Database.User == "" {
		return fmt.Errorf("database user is required")
	}
	if cfg.Database.DBName == "" {
		return fmt.Errorf("database name is required")
	}

	// Server validation
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("HTTP port must be between 1 and 65535")
	}

	// Logs validation
	if cfg.Logs.Level == "" {
		cfg.Logs.Level = "info"
	}
	if cfg.Logs.File == "" {
		cfg.Logs.File = "./logs/app.log"
	}

	// Set defaults for timeouts if not specified
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10
	}

	// Set defaults for database connection pool
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 300 // 5 minutes
	}

	// Redis validation
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = "localhost:6379"
	}

	// Metrics validation and defaults
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.ServiceName == "" {
		cfg.Metrics.ServiceName = "wikicontrolservice"
	}

	// Telegram validation
	if cfg.Telegram.Enabled && cfg.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required when telegram channel is enabled")
	}

	// CDN validation and defaults
	if cfg.CDN.Timeout == 0 {
		cfg.CDN.Timeout = 10 // 10 seconds default
	}

	// Broadcast validation and defaults
	if cfg.Broadcast.WindowSize == 0 {
		cfg.Broadcast.WindowSize = 500
	}
	if cfg.Broadcast.WindowSize < 0 {
		return fmt.Errorf("broadcast window size must be positive")
	}
	if cfg.Broadcast.DefaultMode == "" {
		cfg.Broadcast.DefaultMode = "deferred"
	}
	if cfg.Broadcast.DefaultMode != "sync" && cfg.Broadcast.DefaultMode != "deferred" {
		return fmt.Errorf("broadcast default mode must be sync or deferred, got %q", cfg.Broadcast.DefaultMode)
	}
	if cfg.Broadcast.MaxAttempts == 0 {
		cfg.Broadcast.MaxAttempts = 3
	}
	if len(cfg.Broadcast.Icons) == 0 {
		cfg.Broadcast.Icons = []string{"robot", "speechBubbles", "alert", "tray"}
	}

	// Worker validation and defaults
	if cfg.Worker.ProcessorInterval == 0 {
		cfg.Worker.ProcessorInterval = 30 // 30 seconds default
	}
	if cfg.Worker.ProcessorBatchSize == 0 {
		cfg.Worker.ProcessorBatchSize = 100
	}
	if cfg.Worker.JobInterval == 0 {
		cfg.Worker.JobInterval = 15
	}

	// Tasks defaults
	if cfg.Tasks.MinPasswordLength == 0 {
		cfg.Tasks.MinPasswordLength = 8
	}

	// SiteConfig defaults
	if cfg.SiteConfig.SiteName == "" {
		cfg.SiteConfig.SiteName = "wiki"
	}
	if len(cfg.SiteConfig.RestrictedKeys) == 0 {
		cfg.SiteConfig.RestrictedKeys = []string{
			"database.password",
			"redis.password",
			"telegram.bot_token",
		}
	}
	for i, k := range cfg.SiteConfig.RestrictedKeys {
		cfg.SiteConfig.RestrictedKeys[i] = strings.ToLower(k)
	}

	return nil
}
