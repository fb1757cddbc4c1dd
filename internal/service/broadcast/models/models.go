package models

import (
	"time"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// SendNotificationInput входные данные для отправки уведомления
// Для target_type = users получатели приходят именами и разрешаются в id на сабмите
type SendNotificationInput struct {
	Kind         domain.BroadcastKind
	ActorID      int64
	Header       string
	Content      *string
	URL          *string
	Icon         *string
	TargetType   domain.TargetType
	Recipients   []string
	Mode         *domain.DispatchMode
	ScheduledFor *time.Time
}

// IsScheduled проверяет, отложена ли рассылка на будущее время
func (i *SendNotificationInput) IsScheduled() bool {
	return i.ScheduledFor != nil && i.ScheduledFor.After(time.Now())
}

// SendNotificationResult результат постановки рассылки
// Заполнены либо EventIDs (синхронная эмиссия), либо JobID (отложенная задача)
type SendNotificationResult struct {
	EventIDs        []int64
	JobID           *int64
	SpanID          *string
	Job             *domain.BroadcastJob
	Mode            domain.DispatchMode
	WindowCount     int
	FailedUsernames []string
}

// ListEventsFilter фильтр для получения списка событий рассылки
type ListEventsFilter struct {
	Status     *domain.EventStatus
	Kind       *domain.BroadcastKind
	TargetType *domain.TargetType
	ActorID    *int64
	Limit      int
	Offset     int
}
