package models

import (
	"time"

	serviceModels "github.com/m04kA/SMC-WikiControlService/internal/service/users/models"
)

// UserResponse HTTP представление сводки по учётной записи
type UserResponse struct {
	ID                     int64      `json:"id"`
	Name                   string     `json:"name"`
	RealName               string     `json:"real_name,omitempty"`
	Email                  string     `json:"email,omitempty"`
	EmailAuthenticatedAt   *time.Time `json:"email_authenticated_at,omitempty"`
	EditCount              int64      `json:"edit_count"`
	Groups                 []string   `json:"groups"`
	RegisteredAt           time.Time  `json:"registered_at"`
	TouchedAt              time.Time  `json:"touched_at"`
	LastEditAt             *time.Time `json:"last_edit_at,omitempty"`
	NeedsPasswordMigration bool       `json:"needs_password_migration"`
	HasTelegram            bool       `json:"has_telegram"`
	Blocked                bool       `json:"blocked"`
	BlockedBy              *string    `json:"blocked_by,omitempty"`
	BlockExpiresAt         *time.Time `json:"block_expires_at,omitempty"`
}

// FromServiceDetails преобразует сервисную модель в HTTP ответ
func FromServiceDetails(d *serviceModels.UserDetails) *UserResponse {
	return &UserResponse{
		ID:                     d.ID,
		Name:                   d.Name,
		RealName:               d.RealName,
		Email:                  d.Email,
		EmailAuthenticatedAt:   d.EmailAuthenticatedAt,
		EditCount:              d.EditCount,
		Groups:                 d.Groups,
		RegisteredAt:           d.RegisteredAt,
		TouchedAt:              d.TouchedAt,
		LastEditAt:             d.LastEditAt,
		NeedsPasswordMigration: d.NeedsPasswordMigration,
		HasTelegram:            d.HasTelegram,
		Blocked:                d.Blocked,
		BlockedBy:              d.BlockedBy,
		BlockExpiresAt:         d.BlockExpiresAt,
	}
}
