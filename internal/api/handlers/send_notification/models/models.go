package models

import (
	"time"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	serviceModels "github.com/m04kA/SMC-WikiControlService/internal/service/broadcast/models"
)

// SendNotificationRequest HTTP запрос на отправку уведомления
type SendNotificationRequest struct {
	Kind         domain.BroadcastKind `json:"kind"`
	ActorID      int64                `json:"actor_id"`
	Header       string               `json:"header"`
	Content      *string              `json:"content,omitempty"`
	URL          *string              `json:"url,omitempty"`
	Icon         *string              `json:"icon,omitempty"`
	TargetType   domain.TargetType    `json:"target_type"`
	Recipients   []string             `json:"recipients,omitempty"`
	Mode         *string              `json:"mode,omitempty"`
	ScheduledFor *time.Time           `json:"scheduled_for,omitempty"`
}

// ToServiceInput преобразует HTTP модель в сервисную модель
func (r *SendNotificationRequest) ToServiceInput() *serviceModels.SendNotificationInput {
	input := &serviceModels.SendNotificationInput{
		Kind:         r.Kind,
		ActorID:      r.ActorID,
		Header:       r.Header,
		Content:      r.Content,
		URL:          r.URL,
		Icon:         r.Icon,
		TargetType:   r.TargetType,
		Recipients:   r.Recipients,
		ScheduledFor: r.ScheduledFor,
	}

	if r.Mode != nil {
		mode := domain.DispatchMode(*r.Mode)
		input.Mode = &mode
	}

	return input
}

// SendNotificationResponse HTTP ответ с результатом постановки рассылки
type SendNotificationResponse struct {
	EventIDs        []int64             `json:"event_ids,omitempty"`
	JobID           *int64              `json:"job_id,omitempty"`
	SpanID          *string             `json:"span_id,omitempty"`
	Mode            domain.DispatchMode `json:"mode"`
	WindowCount     int                 `json:"window_count,omitempty"`
	FailedUsernames []string            `json:"failed_usernames,omitempty"`
}

// FromServiceResult преобразует сервисный результат в HTTP ответ
func FromServiceResult(result *serviceModels.SendNotificationResult) *SendNotificationResponse {
	return &SendNotificationResponse{
		EventIDs:        result.EventIDs,
		JobID:           result.JobID,
		SpanID:          result.SpanID,
		Mode:            result.Mode,
		WindowCount:     result.WindowCount,
		FailedUsernames: result.FailedUsernames,
	}
}
