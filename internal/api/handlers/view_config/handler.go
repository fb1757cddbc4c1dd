package view_config

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers"
)

type Handler struct {
	service SiteConfigService
	logger  Logger
}

func NewHandler(service SiteConfigService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// ConfigResponse HTTP ответ со снимком конфигурации
type ConfigResponse struct {
	SiteName  string                            `json:"site_name"`
	ServerURL string                            `json:"server_url"`
	Hostname  string                            `json:"hostname"`
	GoVersion string                            `json:"go_version"`
	StartedAt time.Time                         `json:"started_at"`
	Sections  map[string]map[string]interface{} `json:"sections"`
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	snapshot := h.service.View()

	handlers.RespondJSON(w, http.StatusOK, &ConfigResponse{
		SiteName:  snapshot.SiteName,
		ServerURL: snapshot.ServerURL,
		Hostname:  snapshot.Hostname,
		GoVersion: snapshot.GoVersion,
		StartedAt: snapshot.StartedAt,
		Sections:  snapshot.Sections,
	})
}
