package domain

import "time"

// UserNotification уведомление, доставленное конкретному пользователю
// Создаётся воркером доставки по результатам резолвинга аудитории события
type UserNotification struct {
	ID        int64         `db:"id"`
	EventID   int64         `db:"event_id"`
	UserID    int64         `db:"user_id"`
	Kind      BroadcastKind `db:"kind"`
	Icon      string        `db:"icon"`
	Header    string        `db:"header"`
	Content   *string       `db:"content"`
	URL       *string       `db:"url"`
	LinkLabel *string       `db:"link_label"`
	ReadAt    *time.Time    `db:"read_at"`
	CreatedAt time.Time     `db:"created_at"`
}

// HasLink проверяет, есть ли у уведомления основная ссылка
func (n *UserNotification) HasLink() bool {
	return n.URL != nil && *n.URL != ""
}
