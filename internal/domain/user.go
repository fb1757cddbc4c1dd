package domain

import (
	"time"

	"github.com/lib/pq"
)

// User учётная запись вики
type User struct {
	ID                   int64          `db:"id"`
	Name                 string         `db:"name"`
	RealName             string         `db:"real_name"`
	Email                string         `db:"email"`
	PasswordHash         string         `db:"password_hash"`
	EmailAuthenticatedAt *time.Time     `db:"email_authenticated_at"`
	TelegramChatID       *int64         `db:"telegram_chat_id"`
	EditCount            int64          `db:"edit_count"`
	Groups               pq.StringArray `db:"groups"`
	IsSystem             bool           `db:"is_system"`
	RegisteredAt         time.Time      `db:"registered_at"`
	TouchedAt            time.Time      `db:"touched_at"`
	DeletedAt            *time.Time     `db:"deleted_at"`
	BlockedBy            *string        `db:"blocked_by"`
	BlockedAt            *time.Time     `db:"blocked_at"`
	BlockExpiresAt       *time.Time     `db:"block_expires_at"`
}

// IsRegistered проверяет, что это живая зарегистрированная учётка
// Удалённые и системные (placeholder) учётки не получают уведомления
func (u *User) IsRegistered() bool {
	return u.DeletedAt == nil && !u.IsSystem
}

// IsBlocked проверяет, есть ли на учётке активная блокировка
func (u *User) IsBlocked() bool {
	if u.BlockedAt == nil {
		return false
	}
	if u.BlockExpiresAt == nil {
		return true // Бессрочная блокировка
	}
	return u.BlockExpiresAt.After(time.Now())
}

// NeedsPasswordMigration проверяет, что у учётки нет локального пароля
func (u *User) NeedsPasswordMigration() bool {
	return u.PasswordHash == ""
}

// HasTelegram проверяет, привязан ли к учётке Telegram чат
func (u *User) HasTelegram() bool {
	return u.TelegramChatID != nil
}
