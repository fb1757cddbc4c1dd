package siteconfig

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/m04kA/SMC-WikiControlService/internal/config"
)

// RedactedValue подставляется вместо значений закрытых ключей
const RedactedValue = "***"

// Snapshot срез конфигурации сервиса для панели администратора
type Snapshot struct {
	SiteName  string
	ServerURL string
	Hostname  string
	GoVersion string
	StartedAt time.Time
	Sections  map[string]map[string]interface{}
}

// Service отдаёт текущую конфигурацию с закрытыми секретами
// Снимок собирается на каждый запрос, закрытые ключи задаются конфигом
type Service struct {
	cfg       *config.Config
	startedAt time.Time
}

// NewService создает новый экземпляр сервиса конфигурации
func NewService(cfg *config.Config) *Service {
	return &Service{
		cfg:       cfg,
		startedAt: time.Now(),
	}
}

// View возвращает снимок конфигурации с отредактированными секретами
func (s *Service) View() *Snapshot {
	sections := map[string]map[string]interface{}{
		"server": {
			"http_port":        s.cfg.Server.HTTPPort,
			"read_timeout":     s.cfg.Server.ReadTimeout,
			"write_timeout":    s.cfg.Server.WriteTimeout,
			"idle_timeout":     s.cfg.Server.IdleTimeout,
			"shutdown_timeout": s.cfg.Server.ShutdownTimeout,
		},
		"database": {
			"host":           s.cfg.Database.Host,
			"port":           s.cfg.Database.Port,
			"user":           s.cfg.Database.User,
			"password":       s.cfg.Database.Password,
			"dbname":         s.cfg.Database.DBName,
			"sslmode":        s.cfg.Database.SSLMode,
			"max_open_conns": s.cfg.Database.MaxOpenConns,
		},
		"redis": {
			"address":  s.cfg.Redis.Address,
			"password": s.cfg.Redis.Password,
			"db":       s.cfg.Redis.DB,
		},
		"metrics": {
			"enabled":      s.cfg.Metrics.Enabled,
			"path":         s.cfg.Metrics.Path,
			"service_name": s.cfg.Metrics.ServiceName,
		},
		"telegram": {
			"enabled":   s.cfg.Telegram.Enabled,
			"bot_token": s.cfg.Telegram.BotToken,
		},
		"cdn": {
			"endpoint": s.cfg.CDN.Endpoint,
			"timeout":  s.cfg.CDN.Timeout,
		},
		"broadcast": {
			"window_size":  s.cfg.Broadcast.WindowSize,
			"default_mode": s.cfg.Broadcast.DefaultMode,
			"max_attempts": s.cfg.Broadcast.MaxAttempts,
			"icons":        s.cfg.Broadcast.Icons,
		},
		"worker": {
			"processor_interval":   s.cfg.Worker.ProcessorInterval,
			"processor_batch_size": s.cfg.Worker.ProcessorBatchSize,
			"job_interval":         s.cfg.Worker.JobInterval,
		},
		"tasks": {
			"min_password_length": s.cfg.Tasks.MinPasswordLength,
		},
	}

	s.redact(sections)

	hostname, _ := os.Hostname()

	return &Snapshot{
		SiteName:  s.cfg.SiteConfig.SiteName,
		ServerURL: s.cfg.SiteConfig.ServerURL,
		Hostname:  hostname,
		GoVersion: runtime.Version(),
		StartedAt: s.startedAt,
		Sections:  sections,
	}
}

// redact заменяет значения закрытых ключей вида "секция.ключ"
func (s *Service) redact(sections map[string]map[string]interface{}) {
	for _, restricted := range s.cfg.SiteConfig.RestrictedKeys {
		parts := strings.SplitN(restricted, ".", 2)
		if len(parts) != 2 {
			continue
		}

		if section, ok := sections[parts[0]]; ok {
			if _, ok := section[parts[1]]; ok {
				section[parts[1]] = RedactedValue
			}
		}
	}
}
