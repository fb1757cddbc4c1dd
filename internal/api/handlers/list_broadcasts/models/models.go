package models

import (
	"time"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// EventResponse HTTP представление события рассылки
type EventResponse struct {
	ID           int64                `json:"id"`
	Kind         domain.BroadcastKind `json:"kind"`
	ActorID      int64                `json:"actor_id"`
	Target       domain.Target        `json:"target"`
	Header       string               `json:"header"`
	Content      *string              `json:"content,omitempty"`
	URL          *string              `json:"url,omitempty"`
	Icon         string               `json:"icon"`
	Status       domain.EventStatus   `json:"status"`
	ErrorMessage *string              `json:"error_message,omitempty"`
	RetryCount   int                  `json:"retry_count"`
	DeliveredAt  *time.Time           `json:"delivered_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
}

// ListEventsResponse HTTP ответ со списком событий
type ListEventsResponse struct {
	Events []*EventResponse `json:"events"`
	Total  int              `json:"total"`
}

// FromDomainEvent преобразует доменную модель в HTTP представление
func FromDomainEvent(e *domain.Event) *EventResponse {
	return &EventResponse{
		ID:           e.ID,
		Kind:         e.Type,
		ActorID:      e.ActorID,
		Target:       e.Target,
		Header:       e.Header,
		Content:      e.Content,
		URL:          e.URL,
		Icon:         e.IconOrDefault(),
		Status:       e.Status,
		ErrorMessage: e.ErrorMessage,
		RetryCount:   e.RetryCount,
		DeliveredAt:  e.DeliveredAt,
		CreatedAt:    e.CreatedAt,
	}
}
