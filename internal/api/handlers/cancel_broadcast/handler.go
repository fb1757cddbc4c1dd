package cancel_broadcast

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers"
	broadcastSvc "github.com/m04kA/SMC-WikiControlService/internal/service/broadcast"
)

const (
	msgInvalidJobID = "некорректный идентификатор задачи"
	msgJobNotFound  = "задача рассылки не найдена"
	msgCannotCancel = "задача уже выполняется или завершена"
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
	vars := mux.Vars(r)

	jobID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidJobID)
		return
	}

	if err := h.service.CancelJob(r.Context(), jobID); err != nil {
		if errors.Is(err, broadcastSvc.ErrJobNotFound) {
			handlers.RespondNotFound(w, msgJobNotFound)
			return
		}
		if errors.Is(err, broadcastSvc.ErrCannotCancel) {
			handlers.RespondConflict(w, msgCannotCancel)
			return
		}

		h.logger.Error("Failed to cancel broadcast job %d: %v", jobID, err)
		handlers.RespondInternalError(w)
		return
	}

	// Убираем задачу и из планировщика, если она ждала run_at
	h.scheduler.CancelJob(jobID)

	h.logger.Info("Cancelled broadcast job %d", jobID)
	w.WriteHeader(http.StatusNoContent)
}
