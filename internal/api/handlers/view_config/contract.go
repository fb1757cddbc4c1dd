package view_config

import (
	"github.com/m04kA/SMC-WikiControlService/internal/service/siteconfig"
)

// SiteConfigService интерфейс сервиса конфигурации
type SiteConfigService interface {
	View() *siteconfig.Snapshot
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
