package run_task

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers"
	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers/run_task/models"
	tasksSvc "github.com/m04kA/SMC-WikiControlService/internal/service/tasks"
)

const (
	msgInvalidRequestBody = "неверный формат тела запроса"
	msgUnknownTask        = "неизвестная задача"
	msgUserNotFound       = "пользователь не найден"
	msgSelfTarget         = "задачу нельзя выполнить над собственным аккаунтом"
	msgInvalidInput       = "некорректные параметры задачи"
	msgPasswordTooWeak    = "пароль не соответствует требованиям к длине"
)

type Handler struct {
	service TasksService
	logger  Logger
}

func NewHandler(service TasksService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Парсинг request body
	var req models.RunTaskRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("Failed to decode request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Run(r.Context(), req.ToServiceInput())
	if err != nil {
		// Обработка ошибок сервисного слоя
		switch {
		case errors.Is(err, tasksSvc.ErrUnknownTask):
			handlers.RespondBadRequest(w, msgUnknownTask)
		case errors.Is(err, tasksSvc.ErrUserNotFound):
			handlers.RespondNotFound(w, msgUserNotFound)
		case errors.Is(err, tasksSvc.ErrSelfTarget):
			handlers.RespondBadRequest(w, msgSelfTarget)
		case errors.Is(err, tasksSvc.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidInput)
		case errors.Is(err, tasksSvc.ErrPasswordTooWeak):
			handlers.RespondBadRequest(w, msgPasswordTooWeak)
		default:
			h.logger.Error("Task %s failed: %v", req.Task, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("Task %s completed (target: %s, actor: %d)", req.Task, req.Username, req.ActorID)

	handlers.RespondJSON(w, http.StatusOK, models.FromServiceResult(result))
}
