package models

import (
	"time"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// UserDetails сводка по учётной записи для панели администратора
type UserDetails struct {
	ID                     int64
	Name                   string
	RealName               string
	Email                  string
	EmailAuthenticatedAt   *time.Time
	EditCount              int64
	Groups                 []string
	RegisteredAt           time.Time
	TouchedAt              time.Time
	LastEditAt             *time.Time
	NeedsPasswordMigration bool
	HasTelegram            bool
	Blocked                bool
	BlockedBy              *string
	BlockExpiresAt         *time.Time
}

// FromDomainUser собирает сводку из доменной модели
func FromDomainUser(u *domain.User, lastEditAt *time.Time) *UserDetails {
	return &UserDetails{
		ID:                     u.ID,
		Name:                   u.Name,
		RealName:               u.RealName,
		Email:                  u.Email,
		EmailAuthenticatedAt:   u.EmailAuthenticatedAt,
		EditCount:              u.EditCount,
		Groups:                 []string(u.Groups),
		RegisteredAt:           u.RegisteredAt,
		TouchedAt:              u.TouchedAt,
		LastEditAt:             lastEditAt,
		NeedsPasswordMigration: u.NeedsPasswordMigration(),
		HasTelegram:            u.HasTelegram(),
		Blocked:                u.IsBlocked(),
		BlockedBy:              u.BlockedBy,
		BlockExpiresAt:         u.BlockExpiresAt,
	}
}
