package event

import "github.com/m04kA/SMC-WikiControlService/internal/domain"

// ListFilter параметры для фильтрации списка событий
type ListFilter struct {
	Status     *domain.EventStatus
	Type       *domain.BroadcastKind
	TargetType *domain.TargetType
	ActorID    *int64
	Limit      int
	Offset     int
}
