package get_user

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers"
	"github.com/m04kA/SMC-WikiControlService/internal/api/handlers/get_user/models"
	usersSvc "github.com/m04kA/SMC-WikiControlService/internal/service/users"
)

const (
	msgEmptyUsername = "имя пользователя не указано"
	msgUserNotFound  = "пользователь не найден"
)

type Handler struct {
	service UsersService
	logger  Logger
}

func NewHandler(service UsersService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	username := vars["username"]
	if username == "" {
		handlers.RespondBadRequest(w, msgEmptyUsername)
		return
	}

	details, err := h.service.Lookup(r.Context(), username)
	if err != nil {
		if errors.Is(err, usersSvc.ErrUserNotFound) {
			handlers.RespondNotFound(w, msgUserNotFound)
			return
		}

		h.logger.Error("Failed to look up user %q: %v", username, err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, models.FromServiceDetails(details))
}
