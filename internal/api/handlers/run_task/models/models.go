package models

import (
	serviceModels "github.com/m04kA/SMC-WikiControlService/internal/service/tasks/models"
)

// RunTaskRequest HTTP запрос на выполнение задачи обслуживания
type RunTaskRequest struct {
	Task       serviceModels.TaskType `json:"task"`
	ActorID    int64                  `json:"actor_id"`
	Username   string                 `json:"username,omitempty"`
	Email      string                 `json:"email,omitempty"`
	Password   string                 `json:"password,omitempty"`
	ToUsername string                 `json:"to_username,omitempty"`
	URLs       []string               `json:"urls,omitempty"`
	Comment    *string                `json:"comment,omitempty"`
}

// ToServiceInput преобразует HTTP модель в сервисную модель
func (r *RunTaskRequest) ToServiceInput() *serviceModels.RunTaskInput {
	return &serviceModels.RunTaskInput{
		Task:       r.Task,
		ActorID:    r.ActorID,
		Username:   r.Username,
		Email:      r.Email,
		Password:   r.Password,
		ToUsername: r.ToUsername,
		URLs:       r.URLs,
		Comment:    r.Comment,
	}
}

// RunTaskResponse HTTP ответ с результатом задачи
type RunTaskResponse struct {
	Task          serviceModels.TaskType `json:"task"`
	Status        string                 `json:"status"`
	Warning       *string                `json:"warning,omitempty"`
	AffectedRows  int64                  `json:"affected_rows,omitempty"`
	NewUsername   *string                `json:"new_username,omitempty"`
	SessionsEnded int64                  `json:"sessions_ended,omitempty"`
}

// FromServiceResult преобразует сервисный результат в HTTP ответ
func FromServiceResult(result *serviceModels.TaskResult) *RunTaskResponse {
	return &RunTaskResponse{
		Task:          result.Task,
		Status:        "done",
		Warning:       result.Warning,
		AffectedRows:  result.AffectedRows,
		NewUsername:   result.NewUsername,
		SessionsEnded: result.SessionsEnded,
	}
}
