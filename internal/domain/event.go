package domain

import "time"

// EventStatus статус эмитированного события
type EventStatus string

const (
	EventStatusPending   EventStatus = "pending"   // Ожидает обработки воркером доставки
	EventStatusDelivered EventStatus = "delivered" // Получатели разрезолвлены, уведомления созданы
	EventStatusFailed    EventStatus = "failed"    // Доставка завершилась ошибкой
)

// Event эмитированное событие рассылки
// Одна строка в events - одна единица работы для воркера доставки
// После вставки диспетчер не держит на событие никаких ссылок
type Event struct {
	ID           int64         `db:"id"`
	Type         BroadcastKind `db:"event_type"`
	ActorID      int64         `db:"actor_id"`
	Target       Target        `db:"target"`
	Header       string        `db:"header"`
	Content      *string       `db:"content"`
	URL          *string       `db:"url"`
	Icon         *string       `db:"icon"`
	Status       EventStatus   `db:"status"`
	ErrorMessage *string       `db:"error_message"`
	RetryCount   int           `db:"retry_count"`
	DeliveredAt  *time.Time    `db:"delivered_at"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

// IsPending проверяет, ожидает ли событие доставки
func (e *Event) IsPending() bool {
	return e.Status == EventStatusPending
}

// IconOrDefault возвращает иконку события с фолбэком на иконку по умолчанию
func (e *Event) IconOrDefault() string {
	if e.Icon == nil || *e.Icon == "" {
		return DefaultIcon
	}
	return *e.Icon
}
