package list_broadcasts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers"
	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers/list_broadcasts/models"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	serviceModels "github.com/m04kA/SMC-WikiControlService/internal/service/broadcast/models"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

var errInvalidActorID = errors.New("некорректный actor_id")

type Handler struct {
	service BroadcastService
	logger  Logger
}

func NewHandler(service BroadcastService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseFilter(r)
	if err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	events, err := h.service.ListEvents(r.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list broadcast events: %v", err)
		handlers.RespondInternalError(w)
		return
	}

	response := &models.ListEventsResponse{
		Events: make([]*models.EventResponse, len(events)),
		Total:  len(events),
	}
	for i, e := range events {
		response.Events[i] = models.FromDomainEvent(e)
	}

	handlers.RespondJSON(w, http.StatusOK, response)
}

// parseFilter собирает фильтр из query-параметров
func (h *Handler) parseFilter(r *http.Request) (serviceModels.ListEventsFilter, error) {
	query := r.URL.Query()
	filter := serviceModels.ListEventsFilter{Limit: defaultLimit}

	if v := query.Get("status"); v != "" {
		status := domain.EventStatus(v)
		filter.Status = &status
	}
	if v := query.Get("kind"); v != "" {
		kind := domain.BroadcastKind(v)
		filter.Kind = &kind
	}
	if v := query.Get("target_type"); v != "" {
		targetType := domain.TargetType(v)
		filter.TargetType = &targetType
	}
	if v := query.Get("actor_id"); v != "" {
		actorID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return filter, errInvalidActorID
		}
		filter.ActorID = &actorID
	}
	if v := query.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if v := query.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	return filter, nil
}
