package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TargetType способ выбора аудитории рассылки
type TargetType string

const (
	TargetTypeUsers    TargetType = "users"     // Конкретный список пользователей
	TargetTypeAllUsers TargetType = "all_users" // Все пользователи вики
)

// Target типизированный payload выбора аудитории, хранится в событии как JSONB
// Для users заполняется Recipients, для all_users - границы окна (включительно)
// Резолвинг аудитории выполняется поздно, воркером доставки по сохранённому событию
type Target struct {
	Type       TargetType `json:"target_type"`
	Recipients []int64    `json:"recipients,omitempty"`
	Start      int64      `json:"start,omitempty"`
	End        int64      `json:"end,omitempty"`
}

// UsersTarget создаёт селектор для списка конкретных пользователей
func UsersTarget(recipients []int64) Target {
	return Target{
		Type:       TargetTypeUsers,
		Recipients: recipients,
	}
}

// AllUsersTarget создаёт селектор для окна из общего фан-аута
func AllUsersTarget(w Window) Target {
	return Target{
		Type:  TargetTypeAllUsers,
		Start: w.StartID,
		End:   w.EndID,
	}
}

// Value реализует driver.Valuer для записи в БД
func (t Target) Value() (driver.Value, error) {
	return json.Marshal(t)
}

// Scan реализует sql.Scanner для чтения из БД
func (t *Target) Scan(value interface{}) error {
	if value == nil {
		*t = Target{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan Target: expected []byte, got %T", value)
	}

	return json.Unmarshal(bytes, t)
}
