package domain

import "time"

// JobStatus статус отложенной задачи рассылки
type JobStatus string

const (
	JobStatusScheduled JobStatus = "scheduled" // Ждёт наступления run_at
	JobStatusQueued    JobStatus = "queued"    // Готова к выполнению воркером
	JobStatusRunning   JobStatus = "running"   // Выполняется
	JobStatusDone      JobStatus = "done"      // Успешно завершена
	JobStatusFailed    JobStatus = "failed"    // Завершилась ошибкой
	JobStatusCancelled JobStatus = "cancelled" // Отменена оператором
)

// BroadcastJob отложенная задача рассылки
// Очередь живёт в БД и обрабатывается JobRunner'ом с контрактом at-least-once:
// повторный запуск задачи заново планирует окна и может эмитить дубликаты событий
type BroadcastJob struct {
	ID           int64         `db:"id"`
	SpanID       string        `db:"span_id"` // UUID для группировки событий одной задачи
	Kind         BroadcastKind `db:"kind"`
	ActorID      int64         `db:"actor_id"`
	Target       Target        `db:"target"`
	Header       string        `db:"header"`
	Content      *string       `db:"content"`
	URL          *string       `db:"url"`
	Icon         *string       `db:"icon"`
	Status       JobStatus     `db:"status"`
	RunAt        *time.Time    `db:"run_at"`
	Attempts     int           `db:"attempts"`
	ErrorMessage *string       `db:"error_message"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

// CanBeCancelled проверяет, можно ли ещё отменить задачу
func (j *BroadcastJob) CanBeCancelled() bool {
	return j.Status == JobStatusScheduled || j.Status == JobStatusQueued
}

// IsScheduled проверяет, отложена ли задача на конкретное время
func (j *BroadcastJob) IsScheduled() bool {
	return j.Status == JobStatusScheduled && j.RunAt != nil
}
