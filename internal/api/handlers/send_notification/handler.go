package send_notification

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers"
	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers/send_notification/models"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	broadcastSvc "github.com/m04kA/SMC-WikiControlService/internal/service/broadcast"
)

const (
	msgInvalidRequestBody = "неверный формат тела запроса"
	msgInvalidKind        = "неизвестный тип уведомления"
	msgInvalidMode        = "неизвестная стратегия отправки"
	msgInvalidIcon        = "недопустимая иконка"
	msgEmptyHeader        = "заголовок не может быть пустым"
	msgNoValidRecipients  = "ни один из получателей не найден"
)

type Handler struct {
	service   BroadcastService
	scheduler Scheduler
	logger    Logger
}

func NewHandler(service BroadcastService, scheduler Scheduler, logger Logger) *Handler {
	return &Handler{
		service:   service,
		scheduler: scheduler,
		logger:    logger,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Парсинг request body
	var req models.SendNotificationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("Failed to decode request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Send(r.Context(), req.ToServiceInput())
	if err != nil {
		// Обработка ошибок сервисного слоя
		switch {
		case errors.Is(err, broadcastSvc.ErrInvalidKind):
			handlers.RespondBadRequest(w, msgInvalidKind)
		case errors.Is(err, broadcastSvc.ErrInvalidMode):
			handlers.RespondBadRequest(w, msgInvalidMode)
		case errors.Is(err, broadcastSvc.ErrInvalidIcon):
			handlers.RespondBadRequest(w, msgInvalidIcon)
		case errors.Is(err, broadcastSvc.ErrEmptyHeader):
			handlers.RespondBadRequest(w, msgEmptyHeader)
		case errors.Is(err, broadcastSvc.ErrNoValidRecipients):
			handlers.RespondBadRequest(w, msgNoValidRecipients)
		default:
			h.logger.Error("Failed to dispatch notification: %v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Если задача отложена по времени - регистрируем в scheduler'е
	if result.Job != nil && result.Job.Status == domain.JobStatusScheduled {
		if err := h.scheduler.ScheduleJob(result.Job); err != nil {
			h.logger.Error("Failed to schedule broadcast job %d: %v", result.Job.ID, err)
			// Ошибку клиенту не возвращаем: задача уже создана в БД,
			// scheduler подхватит её при следующей загрузке scheduled задач
		}
	}

	if result.JobID != nil {
		h.logger.Info("Enqueued broadcast job %d (mode: %s)", *result.JobID, result.Mode)
	} else {
		h.logger.Info("Emitted %d broadcast events (mode: %s)", len(result.EventIDs), result.Mode)
	}

	handlers.RespondJSON(w, http.StatusCreated, models.FromServiceResult(result))
}
