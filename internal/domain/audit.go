package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// AuditAction тип действия в журнале аудита
type AuditAction string

const (
	AuditActionChangeEmail    AuditAction = "task.change_email"
	AuditActionChangePassword AuditAction = "task.change_password"
	AuditActionReassignEdits  AuditAction = "task.reassign_edits"
	AuditActionAnonymize      AuditAction = "task.anonymize"
	AuditActionNotify         AuditAction = "notification.send"
)

// AuditDetails дополнительные данные записи аудита, хранятся как JSONB
type AuditDetails map[string]interface{}

// Value реализует driver.Valuer для записи в БД
func (d AuditDetails) Value() (driver.Value, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d)
}

// Scan реализует sql.Scanner для чтения из БД
func (d *AuditDetails) Scan(value interface{}) error {
	if value == nil {
		*d = make(AuditDetails)
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("failed to scan AuditDetails: expected []byte, got %T", value)
	}

	return json.Unmarshal(bytes, d)
}

// AuditRecord запись журнала административных действий
type AuditRecord struct {
	ID           int64        `db:"id"`
	ActorID      int64        `db:"actor_id"`
	Action       AuditAction  `db:"action"`
	TargetUserID *int64       `db:"target_user_id"`
	Comment      *string      `db:"comment"`
	Details      AuditDetails `db:"details"`
	CreatedAt    time.Time    `db:"created_at"`
}
